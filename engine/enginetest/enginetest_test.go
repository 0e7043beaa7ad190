package enginetest

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fftw/engine"
)

func TestEngineCountsCalls(t *testing.T) {
	t.Parallel()

	e := New()

	table, err := e.Load()
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	data := []complex128{1, 2, 3, 4}
	p := unsafe.Pointer(&data[0])
	c := table.Constants

	h := table.Double.PlanDFT(1, []int{4}, p, p, c.Forward, c.Estimate)
	require.NotNil(t, h)

	require.NoError(t, table.Double.Execute(h))
	require.NoError(t, table.Double.ExecuteDFT(h, p, p))

	table.Double.DestroyPlan(h)
	table.Double.DestroyPlan(h)

	assert.Equal(t, Counts{
		Loads:          1,
		Plans:          1,
		Executes:       1,
		ExecuteDFTs:    1,
		Destroys:       1,
		DoubleDestroys: 1,
	}, e.Counts())
}

func TestEngineInjectedFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := New(FailLoads(1), FailPlans(), FailExecute(boom))

	_, err := e.Load()
	require.ErrorIs(t, err, ErrLoad)

	table, err := e.Load()
	require.NoError(t, err)
	assert.Nil(t, table.Extended)

	data := make([]complex64, 8)
	p := unsafe.Pointer(&data[0])

	assert.Nil(t, table.Single.PlanDFT(1, []int{8}, p, p, -1, 0))
	assert.Equal(t, 1, e.Counts().FailedPlans)

	require.ErrorIs(t, table.Single.Execute(nil), boom)
	require.ErrorIs(t, table.Single.ExecuteDFT(nil, p, p), boom)
}

func TestEngineExtended(t *testing.T) {
	t.Parallel()

	e := New(WithExtended())

	table, err := e.Load()
	require.NoError(t, err)

	sym, ok := table.Symbols(engine.Extended)
	require.True(t, ok)
	require.NotNil(t, sym.Scale)

	in := make([]byte, 2*ExtendedElementSize)
	out := make([]byte, 2*ExtendedElementSize)
	*(*complex128)(unsafe.Pointer(&in[0])) = 2 + 4i
	*(*complex128)(unsafe.Pointer(&in[ExtendedElementSize])) = -6

	h := sym.PlanDFT(1, []int{2}, unsafe.Pointer(&in[0]), unsafe.Pointer(&out[0]), -1, 0)
	require.NotNil(t, h)
	require.NoError(t, sym.Execute(h))

	sym.Scale(unsafe.Pointer(&out[0]), 2, 2)

	assert.Equal(t, complex128(1+2i), *(*complex128)(unsafe.Pointer(&out[0])))
	assert.Equal(t, complex128(-3), *(*complex128)(unsafe.Pointer(&out[ExtendedElementSize])))

	sym.DestroyPlan(h)

	counts := e.Counts()
	assert.Equal(t, 1, counts.Scales)
	assert.Zero(t, counts.Live)
}
