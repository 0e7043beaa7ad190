package engine

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSymbols() *Symbols {
	return &Symbols{
		PlanDFT:     func(int, []int, unsafe.Pointer, unsafe.Pointer, int, uint) Handle { return nil },
		Execute:     func(Handle) error { return nil },
		ExecuteDFT:  func(Handle, unsafe.Pointer, unsafe.Pointer) error { return nil },
		DestroyPlan: func(Handle) {},
	}
}

func TestTableValidate(t *testing.T) {
	t.Parallel()

	var nilTable *Table
	require.Error(t, nilTable.Validate())

	require.ErrorContains(t, (&Table{Info: Info{Name: "empty"}}).Validate(), "no precision exported")

	ok := &Table{Info: Info{Name: "ok"}, Double: completeSymbols()}
	require.NoError(t, ok.Validate())

	missing := []struct {
		name  string
		strip func(*Symbols)
	}{
		{"plan_dft", func(s *Symbols) { s.PlanDFT = nil }},
		{"execute", func(s *Symbols) { s.Execute = nil }},
		{"execute_dft", func(s *Symbols) { s.ExecuteDFT = nil }},
		{"destroy_plan", func(s *Symbols) { s.DestroyPlan = nil }},
	}

	for _, m := range missing {
		s := completeSymbols()
		m.strip(s)

		table := &Table{Info: Info{Name: "broken"}, Single: completeSymbols(), Extended: s}
		err := table.Validate()
		require.Error(t, err, m.name)
		assert.Contains(t, err.Error(), "extended "+m.name)
	}
}

func TestTableSymbols(t *testing.T) {
	t.Parallel()

	table := &Table{Single: completeSymbols()}

	s, ok := table.Symbols(Single)
	assert.True(t, ok)
	assert.Same(t, table.Single, s)

	_, ok = table.Symbols(Double)
	assert.False(t, ok)

	_, ok = table.Symbols(Precision(9))
	assert.False(t, ok)

	var nilTable *Table
	_, ok = nilTable.Symbols(Single)
	assert.False(t, ok)
}

func TestPrecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "double", Double.String())
	assert.Equal(t, "extended", Extended.String())
	assert.Equal(t, "precision(7)", Precision(7).String())
}

func TestFFTWConstants(t *testing.T) {
	t.Parallel()

	c := FFTWConstants
	assert.Equal(t, -1, c.Forward)
	assert.Equal(t, 1, c.Backward)
	assert.Zero(t, c.Measure)
	assert.Equal(t, uint(64), c.Estimate)
	assert.Equal(t, uint(1<<21), c.WisdomOnly)
}
