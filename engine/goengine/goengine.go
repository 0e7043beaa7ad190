// Package goengine is a DFT engine written in Go.
//
// It exports single and double precision complex transforms through the
// engine capability table, using algo-fft kernels where available and
// gonum's FFTPACK port for every other length. Extended precision is not
// exported: Go has no native long double type.
//
// Planner flags follow FFTW semantics where they make sense for a Go engine:
// Estimate selects kernels heuristically, Measure, Patient and Exhaustive time
// the candidate kernels, and WisdomOnly always fails because the engine keeps
// no wisdom.
//
// Estimate keeps lengths with a prime factor above 5 on FFTPACK, so sums of
// small integers such as the DC bin of an all-ones input come out exact.
// A measured plan may pick algo-fft's Bluestein kernel for those lengths,
// which can be a few ulps off on such bins.
package goengine

import (
	"sync/atomic"
	"unsafe"

	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/internal/cpu"
)

// Version of the engine reported in its Info.
const Version = "0.3"

// Measurement trials per planning effort.
const (
	measureTrials    = 3
	patientTrials    = 10
	exhaustiveTrials = 30
)

var livePlans atomic.Int64

// LivePlans reports the number of plans created and not yet destroyed.
func LivePlans() int64 {
	return livePlans.Load()
}

// Load returns the engine's symbol table. It never fails.
func Load() (*engine.Table, error) {
	return &engine.Table{
		Info: engine.Info{
			Name:        "go",
			Version:     Version,
			Description: "pure Go engine (algo-fft, gonum fallback); cpu: " + cpu.DetectFeatures().String(),
		},
		Constants: engine.FFTWConstants,
		Single:    symbols[complex64](),
		Double:    symbols[complex128](),
	}, nil
}

func symbols[T Complex]() *engine.Symbols {
	return &engine.Symbols{
		PlanDFT: func(rank int, shape []int, in, out unsafe.Pointer, sign int, flags uint) engine.Handle {
			if !validShape(rank, shape) || in == nil || out == nil || (sign != -1 && sign != 1) {
				return nil
			}

			if flags&engine.FFTWConstants.WisdomOnly != 0 {
				return nil
			}

			p := newPlan[T](shape[:rank], in, out, sign, trialsFor(flags))
			livePlans.Add(1)

			return engine.Handle(p)
		},
		Execute: func(h engine.Handle) error {
			p := (*plan[T])(h)
			return p.execute(p.in, p.out)
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			return (*plan[T])(h).execute(in, out)
		},
		DestroyPlan: func(h engine.Handle) {
			(*plan[T])(h).release()
			livePlans.Add(-1)
		},
		Flops: func(h engine.Handle) (float64, float64, float64) {
			return (*plan[T])(h).flops()
		},
		Cost: func(h engine.Handle) float64 {
			return (*plan[T])(h).cost()
		},
		EstimateCost: func(h engine.Handle) float64 {
			return (*plan[T])(h).estimateCost()
		},
	}
}

// KernelNames reports the kernel chosen for each axis of a plan created by
// this engine at precision p.
func KernelNames(p engine.Precision, h engine.Handle) []string {
	switch p {
	case engine.Single:
		return (*plan[complex64])(h).kernelNames()
	case engine.Double:
		return (*plan[complex128])(h).kernelNames()
	default:
		return nil
	}
}

func validShape(rank int, shape []int) bool {
	if rank < 1 || rank > len(shape) {
		return false
	}

	for _, d := range shape[:rank] {
		if d < 1 {
			return false
		}
	}

	return true
}

func trialsFor(flags uint) int {
	c := engine.FFTWConstants

	switch {
	case flags&c.Exhaustive != 0:
		return exhaustiveTrials
	case flags&c.Patient != 0:
		return patientTrials
	case flags&c.Estimate != 0:
		return 0
	default:
		// FFTW_MEASURE is the zero flag.
		return measureTrials
	}
}
