//go:build fftw && cgo

package algofftw

import (
	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/engine/fftw"
)

var defaultLoader engine.Loader = fftw.Load
