// Package scale divides complex buffers by a real divisor in place.
package scale

import (
	"math"
	"unsafe"

	"github.com/cwbudde/algo-vecmath"
)

// Complex64InPlace divides each element in dst by d.
func Complex64InPlace(dst []complex64, d float32) {
	if d == 1 || len(dst) == 0 {
		return
	}

	for i, v := range dst {
		dst[i] = complex(real(v)/d, imag(v)/d)
	}
}

// Complex128InPlace divides each element in dst by d.
//
// When d is a power of two its reciprocal is exact and the buffer is scaled
// through the SIMD block kernel, viewed as interleaved float64 pairs.
// Any other divisor is applied by true division so every element is
// correctly rounded.
func Complex128InPlace(dst []complex128, d float64) {
	if d == 1 || len(dst) == 0 {
		return
	}

	if exactReciprocal(d) {
		flat := unsafe.Slice((*float64)(unsafe.Pointer(&dst[0])), 2*len(dst))
		vecmath.ScaleBlockInPlace(flat, 1/d)

		return
	}

	for i, v := range dst {
		dst[i] = complex(real(v)/d, imag(v)/d)
	}
}

// exactReciprocal reports whether d is a power of two whose reciprocal is a
// normal float64.
func exactReciprocal(d float64) bool {
	if d <= 0 || math.IsInf(d, 0) {
		return false
	}

	frac, exp := math.Frexp(d)

	return frac == 0.5 && exp >= -1021 && exp <= 1023
}
