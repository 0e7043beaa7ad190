package algofftw

import (
	"fmt"

	"github.com/cwbudde/algo-fftw/engine"
)

var precisions = [...]struct {
	kind      ElementKind
	precision engine.Precision
}{
	{Complex64, engine.Single},
	{Complex128, engine.Double},
	{ComplexLongDouble, engine.Extended},
}

// precisionOf maps an element kind to the engine precision that plans it.
func precisionOf(kind ElementKind) (engine.Precision, error) {
	for _, p := range precisions {
		if p.kind == kind {
			return p.precision, nil
		}
	}

	return 0, &UnsupportedPrecisionError{Kind: kind}
}

// dispatch resolves the entry points for kind from a loaded table.
func dispatch(table *engine.Table, kind ElementKind) (*engine.Symbols, error) {
	p, err := precisionOf(kind)
	if err != nil {
		return nil, err
	}

	sym, ok := table.Symbols(p)
	if !ok {
		return nil, fmt.Errorf("%w: engine %q exports no %s precision entry points", ErrEngineUnavailable, table.Info.Name, p)
	}

	return sym, nil
}

// engineFlags translates a flag set into the engine's bit encoding.
func engineFlags(c engine.Constants, f Flags) uint {
	mapping := [...]struct {
		flag Flags
		bits uint
	}{
		{FlagMeasure, c.Measure},
		{FlagEstimate, c.Estimate},
		{FlagPatient, c.Patient},
		{FlagExhaustive, c.Exhaustive},
		{FlagDestroyInput, c.DestroyInput},
		{FlagPreserveInput, c.PreserveInput},
		{FlagUnaligned, c.Unaligned},
		{FlagConserveMemory, c.ConserveMemory},
		{FlagWisdomOnly, c.WisdomOnly},
	}

	var out uint

	for _, m := range mapping {
		if f&m.flag != 0 {
			out |= m.bits
		}
	}

	return out
}

func engineSign(c engine.Constants, d Direction) int {
	if d == Backward {
		return c.Backward
	}

	return c.Forward
}
