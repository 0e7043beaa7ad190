package goengine

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/cwbudde/algo-fftw/engine"
)

// naiveDFT computes the unnormalized N-D DFT of a row-major array.
func naiveDFT(src []complex128, shape []int, sign int) []complex128 {
	n := len(src)
	out := make([]complex128, n)
	idx := make([]int, len(shape))
	kdx := make([]int, len(shape))

	unravel := func(flat int, dst []int) {
		for d := len(shape) - 1; d >= 0; d-- {
			dst[d] = flat % shape[d]
			flat /= shape[d]
		}
	}

	for k := 0; k < n; k++ {
		unravel(k, kdx)

		var sum complex128

		for j := 0; j < n; j++ {
			unravel(j, idx)

			phase := 0.0
			for d := range shape {
				phase += float64(idx[d]*kdx[d]) / float64(shape[d])
			}

			sum += src[j] * cmplx.Exp(complex(0, float64(sign)*2*math.Pi*phase))
		}

		out[k] = sum
	}

	return out
}

func randomComplex128(rng *rand.Rand, n int) []complex128 {
	data := make([]complex128, n)
	for i := range data {
		data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	return data
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

func mustLoad(t *testing.T) *engine.Table {
	t.Helper()

	table, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	return table
}

func TestLoadExportsSingleAndDouble(t *testing.T) {
	t.Parallel()

	table := mustLoad(t)

	if _, ok := table.Symbols(engine.Single); !ok {
		t.Error("single precision missing")
	}

	if _, ok := table.Symbols(engine.Double); !ok {
		t.Error("double precision missing")
	}

	if _, ok := table.Symbols(engine.Extended); ok {
		t.Error("extended precision should not be exported")
	}

	if table.Info.Name != "go" {
		t.Errorf("Info.Name = %q", table.Info.Name)
	}
}

func TestDoubleMatchesNaiveDFT(t *testing.T) {
	t.Parallel()

	shapes := [][]int{{8}, {12}, {7}, {4, 6}, {2, 3, 4}, {1, 5}}
	rng := rand.New(rand.NewSource(7))
	sym := mustLoad(t).Double

	for _, shape := range shapes {
		for _, sign := range []int{-1, 1} {
			n := product(shape)
			src := randomComplex128(rng, n)
			orig := append([]complex128(nil), src...)
			dst := make([]complex128, n)

			h := sym.PlanDFT(len(shape), shape, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0]), sign, engine.FFTWConstants.Estimate)
			if h == nil {
				t.Fatalf("PlanDFT(%v) returned nil", shape)
			}

			if err := sym.Execute(h); err != nil {
				t.Fatalf("Execute(%v): %v", shape, err)
			}

			want := naiveDFT(orig, shape, sign)
			for i := range want {
				if cmplx.Abs(dst[i]-want[i]) > 1e-9*float64(n) {
					t.Fatalf("shape %v sign %d: dst[%d] = %v, want %v", shape, sign, i, dst[i], want[i])
				}
			}

			for i := range src {
				if src[i] != orig[i] {
					t.Fatalf("shape %v: input modified at %d", shape, i)
				}
			}

			sym.DestroyPlan(h)
		}
	}
}

func TestSingleMatchesNaiveDFT(t *testing.T) {
	t.Parallel()

	shape := []int{8, 4}
	n := product(shape)
	rng := rand.New(rand.NewSource(3))
	ref := randomComplex128(rng, n)

	src := make([]complex64, n)
	for i, v := range ref {
		src[i] = complex64(v)
		ref[i] = complex128(src[i])
	}

	dst := make([]complex64, n)
	sym := mustLoad(t).Single

	h := sym.PlanDFT(2, shape, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0]), -1, engine.FFTWConstants.Estimate)
	if h == nil {
		t.Fatal("PlanDFT returned nil")
	}
	defer sym.DestroyPlan(h)

	if err := sym.ExecuteDFT(h, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0])); err != nil {
		t.Fatalf("ExecuteDFT: %v", err)
	}

	want := naiveDFT(ref, shape, -1)
	for i := range want {
		if cmplx.Abs(complex128(dst[i])-want[i]) > 1e-3 {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestInPlaceExecution(t *testing.T) {
	t.Parallel()

	data := randomComplex128(rand.New(rand.NewSource(11)), 16)
	want := naiveDFT(data, []int{16}, -1)
	sym := mustLoad(t).Double

	ptr := unsafe.Pointer(&data[0])

	h := sym.PlanDFT(1, []int{16}, ptr, ptr, -1, engine.FFTWConstants.Estimate)
	if h == nil {
		t.Fatal("PlanDFT returned nil")
	}
	defer sym.DestroyPlan(h)

	if err := sym.ExecuteDFT(h, ptr, ptr); err != nil {
		t.Fatalf("ExecuteDFT: %v", err)
	}

	for i := range want {
		if cmplx.Abs(data[i]-want[i]) > 1e-9 {
			t.Fatalf("data[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestPlanRejections(t *testing.T) {
	t.Parallel()

	sym := mustLoad(t).Double
	buf := make([]complex128, 8)
	ptr := unsafe.Pointer(&buf[0])
	c := engine.FFTWConstants

	cases := []struct {
		name  string
		rank  int
		shape []int
		sign  int
		flags uint
	}{
		{"wisdom only", 1, []int{8}, -1, c.WisdomOnly | c.Estimate},
		{"zero rank", 0, []int{8}, -1, c.Estimate},
		{"zero dim", 2, []int{8, 0}, -1, c.Estimate},
		{"bad sign", 1, []int{8}, 0, c.Estimate},
	}

	for _, tc := range cases {
		if h := sym.PlanDFT(tc.rank, tc.shape, ptr, ptr, tc.sign, tc.flags); h != nil {
			sym.DestroyPlan(h)
			t.Errorf("%s: PlanDFT returned a plan", tc.name)
		}
	}
}

func TestMeasuredPlanReportsCost(t *testing.T) {
	t.Parallel()

	src := make([]complex128, 64)
	dst := make([]complex128, 64)
	sym := mustLoad(t).Double

	h := sym.PlanDFT(1, []int{64}, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0]), -1, engine.FFTWConstants.Measure)
	if h == nil {
		t.Fatal("PlanDFT returned nil")
	}
	defer sym.DestroyPlan(h)

	if cost := sym.Cost(h); cost <= 0 {
		t.Errorf("Cost = %v, want > 0", cost)
	}

	add, mul, fma := sym.Flops(h)
	if add != 3*64*6 || mul != 2*64*6 || fma != 0 {
		t.Errorf("Flops = (%v, %v, %v)", add, mul, fma)
	}

	if est := sym.EstimateCost(h); est != 5*64*6 {
		t.Errorf("EstimateCost = %v", est)
	}

	names := KernelNames(engine.Double, h)
	if len(names) != 1 || names[0] == "" {
		t.Errorf("KernelNames = %v", names)
	}
}

func TestTrialsFor(t *testing.T) {
	t.Parallel()

	c := engine.FFTWConstants
	cases := map[uint]int{
		c.Estimate:                   0,
		c.Measure:                    measureTrials,
		c.Patient:                    patientTrials,
		c.Exhaustive:                 exhaustiveTrials,
		c.Patient | c.DestroyInput:   patientTrials,
		c.Estimate | c.Unaligned:     0,
		c.Exhaustive | c.Patient:     exhaustiveTrials,
		c.ConserveMemory | c.Measure: measureTrials,
	}

	for flags, want := range cases {
		if got := trialsFor(flags); got != want {
			t.Errorf("trialsFor(%#x) = %d, want %d", flags, got, want)
		}
	}
}

func TestEstimateKernelChoice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		shape []int
		want  []string
	}{
		{[]int{64}, []string{"algo-fft"}},
		{[]int{12, 10}, []string{"algo-fft", "algo-fft"}},
		{[]int{7, 64}, []string{"gonum", "algo-fft"}},
		{[]int{49}, []string{"gonum"}},
	}

	sym := mustLoad(t).Double

	for _, tc := range cases {
		buf := make([]complex128, product(tc.shape))
		ptr := unsafe.Pointer(&buf[0])

		h := sym.PlanDFT(len(tc.shape), tc.shape, ptr, ptr, -1, engine.FFTWConstants.Estimate)
		if h == nil {
			t.Fatalf("%v: PlanDFT returned nil", tc.shape)
		}

		names := KernelNames(engine.Double, h)
		sym.DestroyPlan(h)

		if len(names) != len(tc.want) {
			t.Fatalf("%v: KernelNames = %v, want %v", tc.shape, names, tc.want)
		}

		for i := range names {
			if names[i] != tc.want[i] {
				t.Errorf("%v: KernelNames = %v, want %v", tc.shape, names, tc.want)
				break
			}
		}
	}
}

func TestEstimateAllOnesDCIsExact(t *testing.T) {
	t.Parallel()

	sym := mustLoad(t).Double

	for _, shape := range [][]int{{49}, {7, 7}, {98}, {64, 64}} {
		n := product(shape)
		src := make([]complex128, n)
		dst := make([]complex128, n)

		for i := range src {
			src[i] = 1
		}

		h := sym.PlanDFT(len(shape), shape, unsafe.Pointer(&src[0]), unsafe.Pointer(&dst[0]), -1, engine.FFTWConstants.Estimate)
		if h == nil {
			t.Fatalf("%v: PlanDFT returned nil", shape)
		}

		err := sym.Execute(h)
		sym.DestroyPlan(h)

		if err != nil {
			t.Fatalf("%v: Execute: %v", shape, err)
		}

		if dst[0] != complex(float64(n), 0) {
			t.Errorf("%v: DC = %v, want %d", shape, dst[0], n)
		}
	}
}
