//go:build fftw && cgo

package main

import "github.com/cwbudde/algo-fftw/engine/fftw"

const fftwEngineHelp = ", fftw"

func init() {
	engines["fftw"] = fftw.Load
}
