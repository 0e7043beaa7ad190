//go:build fftw && cgo

// Package fftw exposes libfftw3 through the engine capability table.
//
// All three precisions are exported: double from libfftw3, single from
// libfftw3f and extended from libfftw3l. Planning and plan destruction go
// through a package-wide lock because the FFTW planner is not thread-safe;
// execution is not serialized.
//
// Plans created against Go memory keep that memory pinned until the plan is
// destroyed, so FFTW may hold the addresses between calls.
//
// ExecuteDFT on new arrays assumes they have the alignment of the arrays the
// plan was created with unless the plan was made with FFTW_UNALIGNED. Go
// slices carry no such guarantee; plan with the unaligned flag or allocate
// every buffer with AllocComplex128 and AllocExtended.
package fftw

/*
#cgo pkg-config: fftw3 fftw3f fftw3l
#include <stdlib.h>
#include <fftw3.h>

#define ALGOFFTW_DEFINE(P, S)                                                   \
static void *plan_dft_##S(int rank, const int *n, void *in, void *out,         \
                          int sign, unsigned flags) {                          \
	return (void *)P##_plan_dft(rank, n, (P##_complex *)in,                    \
	                            (P##_complex *)out, sign, flags);              \
}                                                                              \
static void execute_##S(void *p) { P##_execute((P##_plan)p); }                 \
static void execute_dft_##S(void *p, void *in, void *out) {                    \
	P##_execute_dft((P##_plan)p, (P##_complex *)in, (P##_complex *)out);       \
}                                                                              \
static void destroy_##S(void *p) { P##_destroy_plan((P##_plan)p); }            \
static void flops_##S(void *p, double *add, double *mul, double *fma) {        \
	P##_flops((P##_plan)p, add, mul, fma);                                     \
}                                                                              \
static double cost_##S(void *p) { return P##_cost((P##_plan)p); }             \
static double estimate_cost_##S(void *p) {                                     \
	return P##_estimate_cost((P##_plan)p);                                     \
}

ALGOFFTW_DEFINE(fftw, d)
ALGOFFTW_DEFINE(fftwf, f)
ALGOFFTW_DEFINE(fftwl, l)

static const char *version(void) { return fftw_version; }
static const char *compiler(void) { return fftw_cc; }
static int extended_size(void) { return (int)sizeof(fftwl_complex); }

static void scale_l(void *data, int n, double divisor) {
	long double *x = (long double *)data;
	long double d = (long double)divisor;
	for (int i = 0; i < 2 * n; i++) {
		x[i] /= d;
	}
}
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/cwbudde/algo-fftw/engine"
)

// ExtendedElementSize is the size in bytes of one fftwl_complex.
var ExtendedElementSize = int(C.extended_size())

// ErrAlloc is returned when fftw_malloc fails.
var ErrAlloc = errors.New("fftw: allocation failed")

var (
	plannerMu sync.Mutex
	pinned    = map[engine.Handle]*runtime.Pinner{}
)

// Constants returns the direction and flag values defined by fftw3.h.
func Constants() engine.Constants {
	return engine.Constants{
		Forward:        C.FFTW_FORWARD,
		Backward:       C.FFTW_BACKWARD,
		Measure:        C.FFTW_MEASURE,
		DestroyInput:   C.FFTW_DESTROY_INPUT,
		Unaligned:      C.FFTW_UNALIGNED,
		ConserveMemory: C.FFTW_CONSERVE_MEMORY,
		Exhaustive:     C.FFTW_EXHAUSTIVE,
		PreserveInput:  C.FFTW_PRESERVE_INPUT,
		Patient:        C.FFTW_PATIENT,
		Estimate:       C.FFTW_ESTIMATE,
		WisdomOnly:     C.FFTW_WISDOM_ONLY,
	}
}

// Load returns the symbol table of the linked FFTW libraries.
func Load() (*engine.Table, error) {
	version := C.GoString(C.version())

	return &engine.Table{
		Info: engine.Info{
			Name:        "fftw",
			Version:     version,
			Description: fmt.Sprintf("%s (cc %s)", version, C.GoString(C.compiler())),
		},
		Constants: Constants(),
		Single:    singleSymbols(),
		Double:    doubleSymbols(),
		Extended:  extendedSymbols(),
	}, nil
}

type planFunc func(rank C.int, n *C.int, in, out unsafe.Pointer, sign C.int, flags C.uint) unsafe.Pointer

// planDFT pins in and out for the lifetime of the plan and runs the planner
// under the package lock.
func planDFT(create planFunc) func(int, []int, unsafe.Pointer, unsafe.Pointer, int, uint) engine.Handle {
	return func(rank int, shape []int, in, out unsafe.Pointer, sign int, flags uint) engine.Handle {
		if rank < 1 || rank > len(shape) || in == nil || out == nil {
			return nil
		}

		dims := make([]C.int, rank)
		for i, d := range shape[:rank] {
			dims[i] = C.int(d)
		}

		pinner := new(runtime.Pinner)
		pinner.Pin(in)
		pinner.Pin(out)

		plannerMu.Lock()
		defer plannerMu.Unlock()

		h := create(C.int(rank), &dims[0], in, out, C.int(sign), C.uint(flags))
		if h == nil {
			pinner.Unpin()
			return nil
		}

		pinned[h] = pinner

		return h
	}
}

func destroyPlan(destroy func(unsafe.Pointer)) func(engine.Handle) {
	return func(h engine.Handle) {
		plannerMu.Lock()
		defer plannerMu.Unlock()

		destroy(h)

		if pinner, ok := pinned[h]; ok {
			pinner.Unpin()
			delete(pinned, h)
		}
	}
}

func doubleSymbols() *engine.Symbols {
	return &engine.Symbols{
		PlanDFT: planDFT(func(rank C.int, n *C.int, in, out unsafe.Pointer, sign C.int, flags C.uint) unsafe.Pointer {
			return C.plan_dft_d(rank, n, in, out, sign, flags)
		}),
		Execute: func(h engine.Handle) error {
			C.execute_d(h)
			return nil
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			C.execute_dft_d(h, in, out)
			return nil
		},
		DestroyPlan: destroyPlan(func(h unsafe.Pointer) { C.destroy_d(h) }),
		Flops: func(h engine.Handle) (add, mul, fma float64) {
			var a, m, f C.double
			C.flops_d(h, &a, &m, &f)

			return float64(a), float64(m), float64(f)
		},
		Cost:         func(h engine.Handle) float64 { return float64(C.cost_d(h)) },
		EstimateCost: func(h engine.Handle) float64 { return float64(C.estimate_cost_d(h)) },
	}
}

func singleSymbols() *engine.Symbols {
	return &engine.Symbols{
		PlanDFT: planDFT(func(rank C.int, n *C.int, in, out unsafe.Pointer, sign C.int, flags C.uint) unsafe.Pointer {
			return C.plan_dft_f(rank, n, in, out, sign, flags)
		}),
		Execute: func(h engine.Handle) error {
			C.execute_f(h)
			return nil
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			C.execute_dft_f(h, in, out)
			return nil
		},
		DestroyPlan: destroyPlan(func(h unsafe.Pointer) { C.destroy_f(h) }),
		Flops: func(h engine.Handle) (add, mul, fma float64) {
			var a, m, f C.double
			C.flops_f(h, &a, &m, &f)

			return float64(a), float64(m), float64(f)
		},
		Cost:         func(h engine.Handle) float64 { return float64(C.cost_f(h)) },
		EstimateCost: func(h engine.Handle) float64 { return float64(C.estimate_cost_f(h)) },
	}
}

func extendedSymbols() *engine.Symbols {
	return &engine.Symbols{
		PlanDFT: planDFT(func(rank C.int, n *C.int, in, out unsafe.Pointer, sign C.int, flags C.uint) unsafe.Pointer {
			return C.plan_dft_l(rank, n, in, out, sign, flags)
		}),
		Execute: func(h engine.Handle) error {
			C.execute_l(h)
			return nil
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			C.execute_dft_l(h, in, out)
			return nil
		},
		DestroyPlan: destroyPlan(func(h unsafe.Pointer) { C.destroy_l(h) }),
		Flops: func(h engine.Handle) (add, mul, fma float64) {
			var a, m, f C.double
			C.flops_l(h, &a, &m, &f)

			return float64(a), float64(m), float64(f)
		},
		Cost:         func(h engine.Handle) float64 { return float64(C.cost_l(h)) },
		EstimateCost: func(h engine.Handle) float64 { return float64(C.estimate_cost_l(h)) },
		Scale: func(data unsafe.Pointer, n int, divisor float64) {
			C.scale_l(data, C.int(n), C.double(divisor))
		},
	}
}

// AllocComplex128 returns n zeroed elements allocated with fftw_malloc, which
// aligns them for SIMD. The memory is not managed by Go and must be released
// with Free.
func AllocComplex128(n int) ([]complex128, error) {
	p, err := alloc(n, int(unsafe.Sizeof(complex128(0))))
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*complex128)(p), n), nil
}

// AllocExtended returns zeroed memory for n fftwl_complex elements, suitable
// for a ComplexLongDouble buffer. Release it with Free.
func AllocExtended(n int) (unsafe.Pointer, error) {
	return alloc(n, ExtendedElementSize)
}

func alloc(n, size int) (unsafe.Pointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d elements", ErrAlloc, n)
	}

	p := C.fftw_malloc(C.size_t(n * size))
	if p == nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrAlloc, n*size)
	}

	clear(unsafe.Slice((*byte)(p), n*size))

	return p, nil
}

// Free releases memory obtained from AllocComplex128 or AllocExtended.
func Free(p unsafe.Pointer) {
	if p != nil {
		C.fftw_free(p)
	}
}
