// Package engine defines the capability surface algofftw consumes from a
// DFT engine.
//
// An engine exports, per supported precision, the four plan entry points
// (create, execute, execute against caller-supplied addresses, destroy) plus
// a few optional introspection hooks. Engines are loaded through a Loader,
// which algofftw invokes lazily and at most once per successful load.
package engine

import (
	"fmt"
	"unsafe"
)

// Precision identifies one of the three complex element precisions an engine
// may support.
type Precision uint8

const (
	Single Precision = iota
	Double
	Extended
)

// String returns the conventional engine prefix for the precision.
func (p Precision) String() string {
	switch p {
	case Single:
		return "single"
	case Double:
		return "double"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("precision(%d)", uint8(p))
	}
}

// Handle is an opaque engine plan. A nil Handle returned from PlanDFT
// signals that the engine refused to produce a plan.
type Handle = unsafe.Pointer

// Symbols is the entry point table for a single precision.
//
// PlanDFT, Execute, ExecuteDFT and DestroyPlan are mandatory. Flops, Cost,
// EstimateCost and Scale may be nil.
type Symbols struct {
	// PlanDFT creates a complex-to-complex plan of the given rank and shape.
	// in and out are the addresses the plan is created against; the engine
	// may overwrite both during planning.
	PlanDFT func(rank int, shape []int, in, out unsafe.Pointer, sign int, flags uint) Handle

	// Execute runs the plan on the addresses it was created with.
	Execute func(plan Handle) error

	// ExecuteDFT runs the plan on the supplied addresses, which must describe
	// arrays of the planned shape and precision.
	ExecuteDFT func(plan Handle, in, out unsafe.Pointer) error

	// DestroyPlan releases the plan. It must be called exactly once.
	DestroyPlan func(plan Handle)

	Flops        func(plan Handle) (add, mul, fma float64)
	Cost         func(plan Handle) float64
	EstimateCost func(plan Handle) float64

	// Scale divides n complex elements starting at data by divisor.
	Scale func(data unsafe.Pointer, n int, divisor float64)
}

// Constants carries the engine's numeric codes for directions and planner
// flags.
type Constants struct {
	Forward  int
	Backward int

	Measure        uint
	DestroyInput   uint
	Unaligned      uint
	ConserveMemory uint
	Exhaustive     uint
	PreserveInput  uint
	Patient        uint
	Estimate       uint
	WisdomOnly     uint
}

// FFTWConstants are the values defined by fftw3.h. Engines that follow the
// FFTW planner interface can reuse them directly.
var FFTWConstants = Constants{
	Forward:        -1,
	Backward:       1,
	Measure:        0,
	DestroyInput:   1 << 0,
	Unaligned:      1 << 1,
	ConserveMemory: 1 << 2,
	Exhaustive:     1 << 3,
	PreserveInput:  1 << 4,
	Patient:        1 << 5,
	Estimate:       1 << 6,
	WisdomOnly:     1 << 21,
}

// Info describes an engine implementation.
type Info struct {
	Name        string
	Version     string
	Description string
}

// Table is the resolved symbol table of a loaded engine.
type Table struct {
	Info      Info
	Constants Constants

	Single   *Symbols
	Double   *Symbols
	Extended *Symbols
}

// Symbols returns the entry points for p, or false if the engine does not
// export that precision.
func (t *Table) Symbols(p Precision) (*Symbols, bool) {
	if t == nil {
		return nil, false
	}

	var s *Symbols

	switch p {
	case Single:
		s = t.Single
	case Double:
		s = t.Double
	case Extended:
		s = t.Extended
	}

	return s, s != nil
}

// Validate reports the first missing mandatory entry point.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("engine: nil symbol table")
	}

	if t.Single == nil && t.Double == nil && t.Extended == nil {
		return fmt.Errorf("engine %q: no precision exported", t.Info.Name)
	}

	for _, p := range []Precision{Single, Double, Extended} {
		s, ok := t.Symbols(p)
		if !ok {
			continue
		}

		switch {
		case s.PlanDFT == nil:
			return fmt.Errorf("engine %q: missing %s plan_dft", t.Info.Name, p)
		case s.Execute == nil:
			return fmt.Errorf("engine %q: missing %s execute", t.Info.Name, p)
		case s.ExecuteDFT == nil:
			return fmt.Errorf("engine %q: missing %s execute_dft", t.Info.Name, p)
		case s.DestroyPlan == nil:
			return fmt.Errorf("engine %q: missing %s destroy_plan", t.Info.Name, p)
		}
	}

	return nil
}

// Loader resolves an engine's symbol table. It may be called again after a
// failed attempt.
type Loader func() (*Table, error)
