package goengine

import (
	"math"
	"time"
	"unsafe"
)

type axis[T Complex] struct {
	length int
	stride int
	kernel lineKernel[T]
}

// plan is the engine-side state behind an engine.Handle.
type plan[T Complex] struct {
	shape []int
	n     int
	sign  int

	// addresses the plan was created against
	in, out unsafe.Pointer

	axes       []axis[T]
	line, freq []T

	measured time.Duration
}

func newPlan[T Complex](shape []int, in, out unsafe.Pointer, sign, trials int) *plan[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}

	p := &plan[T]{
		shape: append([]int(nil), shape...),
		n:     n,
		sign:  sign,
		in:    in,
		out:   out,
		axes:  make([]axis[T], len(shape)),
	}

	// Axes of equal length share one kernel.
	kernels := make(map[int]lineKernel[T], len(shape))
	perLine := make(map[int]time.Duration, len(shape))
	maxLen := 0
	stride := n

	for i, m := range shape {
		stride /= m

		k, ok := kernels[m]
		if !ok {
			var elapsed time.Duration

			k, elapsed = selectKernel[T](m, trials)
			kernels[m] = k
			perLine[m] = elapsed
		}

		p.axes[i] = axis[T]{length: m, stride: stride, kernel: k}
		p.measured += perLine[m] * time.Duration(n/m)

		if m > maxLen {
			maxLen = m
		}
	}

	p.line = make([]T, maxLen)
	p.freq = make([]T, maxLen)

	return p
}

// execute computes out = DFT(in) with the plan's sign. in is left untouched
// unless it aliases out.
func (p *plan[T]) execute(in, out unsafe.Pointer) error {
	src := unsafe.Slice((*T)(in), p.n)
	dst := unsafe.Slice((*T)(out), p.n)

	if in != out {
		copy(dst, src)
	}

	for _, ax := range p.axes {
		if err := p.transformAxis(dst, ax); err != nil {
			return err
		}
	}

	return nil
}

// transformAxis runs the axis kernel over every line of data along ax,
// gathering and scattering through the plan's scratch with the axis stride.
func (p *plan[T]) transformAxis(data []T, ax axis[T]) error {
	m := ax.length
	if m == 1 {
		return nil
	}

	line := p.line[:m]
	freq := p.freq[:m]
	block := m * ax.stride

	for base := 0; base < p.n; base += block {
		for off := 0; off < ax.stride; off++ {
			start := base + off

			for i := range line {
				line[i] = data[start+i*ax.stride]
			}

			// A backward transform is the conjugate of the forward
			// transform of the conjugate; no 1/n scaling is applied.
			if p.sign > 0 {
				conjInPlace(line)
			}

			if err := ax.kernel.forward(freq, line); err != nil {
				return err
			}

			if p.sign > 0 {
				conjInPlace(freq)
			}

			for i, v := range freq {
				data[start+i*ax.stride] = v
			}
		}
	}

	return nil
}

// flops estimates 5·n·log2(m) operations per axis of length m, split into
// 3 additions and 2 multiplications per butterfly element.
func (p *plan[T]) flops() (add, mul, fma float64) {
	for _, ax := range p.axes {
		if ax.length < 2 {
			continue
		}

		ops := float64(p.n) * math.Log2(float64(ax.length))
		add += 3 * ops
		mul += 2 * ops
	}

	return add, mul, 0
}

func (p *plan[T]) estimateCost() float64 {
	add, mul, fma := p.flops()
	return add + mul + fma
}

// cost reports the measured nanoseconds per execution, falling back to the
// flop estimate for plans created without measurement.
func (p *plan[T]) cost() float64 {
	if p.measured > 0 {
		return float64(p.measured.Nanoseconds())
	}

	return p.estimateCost()
}

func (p *plan[T]) kernelNames() []string {
	names := make([]string, len(p.axes))
	for i, ax := range p.axes {
		names[i] = ax.kernel.name()
	}

	return names
}

func (p *plan[T]) release() {
	p.axes = nil
	p.line = nil
	p.freq = nil
	p.in = nil
	p.out = nil
}
