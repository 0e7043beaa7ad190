//go:build !fftw || !cgo

package main

const fftwEngineHelp = ""
