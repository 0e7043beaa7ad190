package algofftw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fftw/engine/enginetest"
)

// newFake returns an instrumented engine and a binding that loads it.
func newFake(t *testing.T, opts ...enginetest.Option) (*enginetest.Engine, *Binding) {
	t.Helper()

	fake := enginetest.New(opts...)

	return fake, NewBinding(fake.Load)
}

func normalComplex128(rng *rand.Rand, n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	return out
}

func normalComplex64(rng *rand.Rand, n int) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(float32(rng.NormFloat64()), float32(rng.NormFloat64()))
	}

	return out
}

func mustComplex128(t *testing.T, data []complex128, shape ...int) Buffer {
	t.Helper()

	b, err := Complex128Buffer(data, shape...)
	require.NoError(t, err)

	return b
}

func mustComplex64(t *testing.T, data []complex64, shape ...int) Buffer {
	t.Helper()

	b, err := Complex64Buffer(data, shape...)
	require.NoError(t, err)

	return b
}

// closePlan closes p at test end and fails if Close reports an error.
func closePlan(t *testing.T, p *Plan) {
	t.Helper()
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
}
