// Package enginetest provides an instrumented engine for tests.
//
// The fake delegates real transforms to the pure Go engine and records every
// call crossing the engine boundary, so tests can assert how often plans were
// created, executed and destroyed. Failures can be injected at load, plan and
// execute time.
package enginetest

import (
	"errors"
	"sync"
	"time"
	"unsafe"

	"github.com/cwbudde/algo-fftw/engine"
	"github.com/cwbudde/algo-fftw/engine/goengine"
)

// ErrLoad is returned by Load while injected load failures remain.
var ErrLoad = errors.New("enginetest: injected load failure")

// ExtendedElementSize is the byte size of one element of the fake extended
// precision: a complex128 followed by 16 bytes of padding, mirroring the
// footprint of an x86-64 long double complex.
const ExtendedElementSize = 32

// Counts is a snapshot of the calls recorded by an Engine.
type Counts struct {
	Loads          int
	Plans          int
	FailedPlans    int
	Executes       int
	ExecuteDFTs    int
	Destroys       int
	DoubleDestroys int
	Scales         int
	Live           int
}

// Option configures an Engine.
type Option func(*Engine)

// FailLoads makes the first n Load calls fail with ErrLoad.
func FailLoads(n int) Option {
	return func(e *Engine) { e.failLoads = n }
}

// FailPlans makes every PlanDFT call return a nil handle.
func FailPlans() Option {
	return func(e *Engine) { e.failPlans = true }
}

// FailExecute makes Execute and ExecuteDFT return err.
func FailExecute(err error) Option {
	return func(e *Engine) { e.execErr = err }
}

// LoadDelay stalls every Load call, widening race windows in tests.
func LoadDelay(d time.Duration) Option {
	return func(e *Engine) { e.loadDelay = d }
}

// WithExtended exports a fake extended precision whose elements are laid out
// as described by ExtendedElementSize. Its transform copies input to output.
func WithExtended() Option {
	return func(e *Engine) { e.extended = true }
}

// Engine is an instrumented engine.
type Engine struct {
	mu     sync.Mutex
	counts Counts
	live   map[engine.Handle]*engine.Symbols

	failLoads int
	failPlans bool
	execErr   error
	loadDelay time.Duration
	extended  bool
}

// New returns a fake engine.
func New(opts ...Option) *Engine {
	e := &Engine{live: make(map[engine.Handle]*engine.Symbols)}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Counts returns the calls recorded so far.
func (e *Engine) Counts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.counts
	c.Live = len(e.live)

	return c
}

// Load is an engine.Loader.
func (e *Engine) Load() (*engine.Table, error) {
	if e.loadDelay > 0 {
		time.Sleep(e.loadDelay)
	}

	e.mu.Lock()
	e.counts.Loads++
	fail := e.failLoads > 0
	if fail {
		e.failLoads--
	}
	e.mu.Unlock()

	if fail {
		return nil, ErrLoad
	}

	inner, err := goengine.Load()
	if err != nil {
		return nil, err
	}

	table := &engine.Table{
		Info: engine.Info{
			Name:        "fake",
			Version:     goengine.Version,
			Description: "instrumented wrapper around " + inner.Info.Name,
		},
		Constants: inner.Constants,
		Single:    e.wrap(inner.Single),
		Double:    e.wrap(inner.Double),
	}

	if e.extended {
		table.Extended = e.wrap(extendedSymbols())
	}

	return table, nil
}

func (e *Engine) wrap(inner *engine.Symbols) *engine.Symbols {
	s := &engine.Symbols{
		PlanDFT: func(rank int, shape []int, in, out unsafe.Pointer, sign int, flags uint) engine.Handle {
			e.mu.Lock()
			defer e.mu.Unlock()

			if e.failPlans {
				e.counts.FailedPlans++
				return nil
			}

			h := inner.PlanDFT(rank, shape, in, out, sign, flags)
			if h == nil {
				e.counts.FailedPlans++
				return nil
			}

			e.counts.Plans++
			e.live[h] = inner

			return h
		},
		Execute: func(h engine.Handle) error {
			e.mu.Lock()
			e.counts.Executes++
			err := e.execErr
			e.mu.Unlock()

			if err != nil {
				return err
			}

			return inner.Execute(h)
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			e.mu.Lock()
			e.counts.ExecuteDFTs++
			err := e.execErr
			e.mu.Unlock()

			if err != nil {
				return err
			}

			return inner.ExecuteDFT(h, in, out)
		},
		DestroyPlan: func(h engine.Handle) {
			e.mu.Lock()
			defer e.mu.Unlock()

			if _, ok := e.live[h]; !ok {
				e.counts.DoubleDestroys++
				return
			}

			delete(e.live, h)
			e.counts.Destroys++
			inner.DestroyPlan(h)
		},
		Flops:        inner.Flops,
		Cost:         inner.Cost,
		EstimateCost: inner.EstimateCost,
	}

	if inner.Scale != nil {
		s.Scale = func(data unsafe.Pointer, n int, divisor float64) {
			e.mu.Lock()
			e.counts.Scales++
			e.mu.Unlock()

			inner.Scale(data, n, divisor)
		}
	}

	return s
}

type extendedPlan struct {
	n       int
	in, out unsafe.Pointer
}

func extendedSymbols() *engine.Symbols {
	copyElems := func(p *extendedPlan, in, out unsafe.Pointer) error {
		if in != out {
			src := unsafe.Slice((*byte)(in), p.n*ExtendedElementSize)
			dst := unsafe.Slice((*byte)(out), p.n*ExtendedElementSize)
			copy(dst, src)
		}

		return nil
	}

	return &engine.Symbols{
		PlanDFT: func(rank int, shape []int, in, out unsafe.Pointer, _ int, _ uint) engine.Handle {
			n := 1
			for _, d := range shape[:rank] {
				n *= d
			}

			return engine.Handle(&extendedPlan{n: n, in: in, out: out})
		},
		Execute: func(h engine.Handle) error {
			p := (*extendedPlan)(h)
			return copyElems(p, p.in, p.out)
		},
		ExecuteDFT: func(h engine.Handle, in, out unsafe.Pointer) error {
			return copyElems((*extendedPlan)(h), in, out)
		},
		DestroyPlan: func(engine.Handle) {},
		Scale: func(data unsafe.Pointer, n int, divisor float64) {
			for i := 0; i < n; i++ {
				c := (*complex128)(unsafe.Add(data, i*ExtendedElementSize))
				*c = complex(real(*c)/divisor, imag(*c)/divisor)
			}
		},
	}
}
