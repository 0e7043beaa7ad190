package algofftw

import (
	"fmt"
	"math"
	"runtime"

	"github.com/cwbudde/algo-fftw/internal/scale"
)

func validateNormalization(n Normalization) error {
	switch n {
	case NormNone, NormFull, NormSqrt:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidNormalization, uint8(n))
	}
}

// normalizationDivisor returns what every element of an output of count
// elements is divided by.
func normalizationDivisor(n Normalization, count int) float64 {
	switch n {
	case NormFull:
		return float64(count)
	case NormSqrt:
		return math.Sqrt(float64(count))
	default:
		return 1
	}
}

// normalize scales the bound output in place. The element count is the one
// captured at construction.
func (p *Plan) normalize(n Normalization) error {
	if err := validateNormalization(n); err != nil {
		return err
	}

	if n == NormNone {
		return nil
	}

	d := normalizationDivisor(n, p.n)

	switch p.kind {
	case Complex64:
		data, _ := p.out.Complex64()
		scale.Complex64InPlace(data, float32(d))
	case Complex128:
		data, _ := p.out.Complex128()
		scale.Complex128InPlace(data, d)
	default:
		if p.sym.Scale == nil {
			return fmt.Errorf("%w: engine %q cannot scale %s output", ErrEngineUnavailable, p.engineName, p.kind)
		}

		p.sym.Scale(p.out.Pointer(), p.n, d)
		runtime.KeepAlive(p)
	}

	return nil
}
