package goengine

import (
	"math/cmplx"
	"time"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Complex is the element constraint of the engine's plans.
type Complex interface {
	complex64 | complex128
}

// lineKernel computes an unnormalized forward DFT of a single contiguous line.
type lineKernel[T Complex] interface {
	forward(dst, src []T) error
	name() string
}

type algoKernel64 struct {
	plan *algofft.Plan[complex64]
}

func (k *algoKernel64) forward(dst, src []complex64) error {
	return k.plan.Forward(dst, src)
}

func (k *algoKernel64) name() string { return "algo-fft" }

type algoKernel128 struct {
	plan *algofft.Plan[complex128]
}

func (k *algoKernel128) forward(dst, src []complex128) error {
	return k.plan.Forward(dst, src)
}

func (k *algoKernel128) name() string { return "algo-fft" }

type gonumKernel128 struct {
	fft *fourier.CmplxFFT
}

func (k *gonumKernel128) forward(dst, src []complex128) error {
	k.fft.Coefficients(dst, src)
	return nil
}

func (k *gonumKernel128) name() string { return "gonum" }

// gonumKernel64 widens single precision lines to run them through gonum.
type gonumKernel64 struct {
	fft      *fourier.CmplxFFT
	src, dst []complex128
}

func (k *gonumKernel64) forward(dst, src []complex64) error {
	for i, v := range src {
		k.src[i] = complex128(v)
	}

	k.fft.Coefficients(k.dst, k.src)

	for i, v := range k.dst {
		dst[i] = complex64(v)
	}

	return nil
}

func (k *gonumKernel64) name() string { return "gonum" }

// newAlgoKernel returns nil if algo-fft has no plan for length m. chirp
// reports whether the plan falls back to Bluestein's algorithm.
func newAlgoKernel[T Complex](m int) (k lineKernel[T], chirp bool) {
	var zero T

	switch any(zero).(type) {
	case complex64:
		p, err := algofft.NewPlan32(m)
		if err != nil {
			return nil, false
		}

		return any(&algoKernel64{plan: p}).(lineKernel[T]), p.KernelStrategy() == algofft.KernelBluestein
	case complex128:
		p, err := algofft.NewPlan64(m)
		if err != nil {
			return nil, false
		}

		return any(&algoKernel128{plan: p}).(lineKernel[T]), p.KernelStrategy() == algofft.KernelBluestein
	default:
		return nil, false
	}
}

func newGonumKernel[T Complex](m int) lineKernel[T] {
	var zero T

	switch any(zero).(type) {
	case complex64:
		return any(&gonumKernel64{
			fft: fourier.NewCmplxFFT(m),
			src: make([]complex128, m),
			dst: make([]complex128, m),
		}).(lineKernel[T])
	case complex128:
		return any(&gonumKernel128{fft: fourier.NewCmplxFFT(m)}).(lineKernel[T])
	default:
		return nil
	}
}

// selectKernel picks the kernel for an axis of length m. With trials == 0 the
// algo-fft kernel wins unless it would run Bluestein's algorithm, whose
// chirp-z convolution rounds even integer sums; FFTPACK handles those
// lengths. Otherwise every candidate is timed over trials runs and the
// fastest is kept. The returned duration is the best per-line time, or zero
// when nothing was measured.
func selectKernel[T Complex](m, trials int) (lineKernel[T], time.Duration) {
	algo, chirp := newAlgoKernel[T](m)
	gonum := newGonumKernel[T](m)

	if algo == nil {
		return gonum, 0
	}

	if trials <= 0 {
		if chirp {
			return gonum, 0
		}

		return algo, 0
	}

	candidates := []lineKernel[T]{algo, gonum}

	src := make([]T, m)
	dst := make([]T, m)
	fillProbe(src)

	var (
		best     lineKernel[T]
		bestTime time.Duration
	)

	for _, k := range candidates {
		elapsed, ok := timeKernel(k, dst, src, trials)
		if !ok {
			continue
		}

		if best == nil || elapsed < bestTime {
			best, bestTime = k, elapsed
		}
	}

	if best == nil {
		return candidates[len(candidates)-1], 0
	}

	return best, bestTime
}

func timeKernel[T Complex](k lineKernel[T], dst, src []T, trials int) (time.Duration, bool) {
	// warmup
	if err := k.forward(dst, src); err != nil {
		return 0, false
	}

	var best time.Duration

	for i := 0; i < trials; i++ {
		start := time.Now()
		if err := k.forward(dst, src); err != nil {
			return 0, false
		}

		elapsed := time.Since(start)
		if i == 0 || elapsed < best {
			best = elapsed
		}
	}

	return best, true
}

func fillProbe[T Complex](data []T) {
	switch d := any(data).(type) {
	case []complex64:
		for i := range d {
			d[i] = complex(float32(i%7)-3, float32(i%5)-2)
		}
	case []complex128:
		for i := range d {
			d[i] = complex(float64(i%7)-3, float64(i%5)-2)
		}
	}
}

func conjInPlace[T Complex](data []T) {
	switch d := any(data).(type) {
	case []complex64:
		for i, v := range d {
			d[i] = complex(real(v), -imag(v))
		}
	case []complex128:
		for i, v := range d {
			d[i] = cmplx.Conj(v)
		}
	}
}
