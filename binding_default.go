//go:build !fftw || !cgo

package algofftw

import (
	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/engine/goengine"
)

var defaultLoader engine.Loader = goengine.Load
