package main

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	algofftw "github.com/cwbudde/algo-fftw"
	"github.com/cwbudde/algo-fftw/internal/config"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		shape     []int
		kind      string
		direction string
		flags     []string
		norm      string
		repeat    int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan and execute one transform job",
		Long: `Plan a transform, fill the input with standard normal samples and
execute it --repeat times. Flags override the job section of --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jc := a.cfg.Job
			f := cmd.Flags()

			if f.Changed("shape") {
				jc.Shape = shape
			}

			if f.Changed("kind") {
				jc.Kind = kind
			}

			if f.Changed("direction") {
				jc.Direction = direction
			}

			if f.Changed("flags") {
				jc.Flags = flags
			}

			if f.Changed("norm") {
				jc.Normalization = norm
			}

			if f.Changed("repeat") {
				jc.Repeat = repeat
			}

			if f.Changed("seed") {
				jc.Seed = seed
			}

			job, err := jc.Resolve()
			if err != nil {
				return err
			}

			binding, err := bindingFor(a.cfg.Engine, a.logger)
			if err != nil {
				return err
			}

			return runJob(cmd.OutOrStdout(), job, binding, a.logger)
		},
	}

	cmd.Flags().IntSliceVar(&shape, "shape", nil, "Array shape, e.g. 64,64")
	cmd.Flags().StringVar(&kind, "kind", "", "Element kind: complex64, complex128, complexlongdouble")
	cmd.Flags().StringVar(&direction, "direction", "", "forward or backward")
	cmd.Flags().StringSliceVar(&flags, "flags", nil, "Planner flags, e.g. measure,destroy_input")
	cmd.Flags().StringVar(&norm, "norm", "", "Normalization: none, full, sqrt")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Number of executions")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for the input")

	return cmd
}

// jobBuffers allocates input and output storage for a job.
type jobBuffers struct {
	in, out algofftw.Buffer
	fill    func(rng *rand.Rand)
}

func newJobBuffers(job config.Job) (*jobBuffers, error) {
	n := 1
	for _, d := range job.Shape {
		n *= d
	}

	jb := &jobBuffers{}

	switch job.Kind {
	case algofftw.Complex64:
		src := make([]complex64, n)
		dst := make([]complex64, n)

		in, err := algofftw.Complex64Buffer(src, job.Shape...)
		if err != nil {
			return nil, err
		}

		out, err := algofftw.Complex64Buffer(dst, job.Shape...)
		if err != nil {
			return nil, err
		}

		jb.in, jb.out = in, out
		jb.fill = func(rng *rand.Rand) {
			for i := range src {
				src[i] = complex(float32(rng.NormFloat64()), float32(rng.NormFloat64()))
			}
		}
	case algofftw.Complex128:
		src := make([]complex128, n)
		dst := make([]complex128, n)

		in, err := algofftw.Complex128Buffer(src, job.Shape...)
		if err != nil {
			return nil, err
		}

		out, err := algofftw.Complex128Buffer(dst, job.Shape...)
		if err != nil {
			return nil, err
		}

		jb.in, jb.out = in, out
		jb.fill = func(rng *rand.Rand) {
			for i := range src {
				src[i] = complex(rng.NormFloat64(), rng.NormFloat64())
			}
		}
	default:
		// Extended and real kinds are passed to the engine as raw bytes; the
		// engine decides whether it can plan them. Input stays zero.
		size := job.Kind.Size()
		if size == 0 {
			return nil, &algofftw.UnsupportedPrecisionError{Kind: job.Kind}
		}

		in, err := algofftw.BytesBuffer(job.Kind, make([]byte, n*size), job.Shape...)
		if err != nil {
			return nil, err
		}

		out, err := algofftw.BytesBuffer(job.Kind, make([]byte, n*size), job.Shape...)
		if err != nil {
			return nil, err
		}

		jb.in, jb.out = in, out
		jb.fill = func(*rand.Rand) {}
	}

	return jb, nil
}

// energy returns the sum of squared magnitudes for complex buffers.
func energy(b algofftw.Buffer) (float64, bool) {
	var sum float64

	if data, ok := b.Complex128(); ok {
		for _, v := range data {
			sum += real(v)*real(v) + imag(v)*imag(v)
		}

		return sum, true
	}

	if data, ok := b.Complex64(); ok {
		for _, v := range data {
			re, im := float64(real(v)), float64(imag(v))
			sum += re*re + im*im
		}

		return sum, true
	}

	return 0, false
}

func runJob(w io.Writer, job config.Job, binding *algofftw.Binding, logger *zap.Logger) error {
	jb, err := newJobBuffers(job)
	if err != nil {
		return err
	}

	start := time.Now()

	plan, err := algofftw.NewPlan(jb.in, jb.out, job.Direction, job.Flags,
		algofftw.WithBinding(binding), algofftw.WithLogger(logger))
	if err != nil {
		return err
	}
	defer plan.Close()

	planning := time.Since(start)

	// Planning may overwrite both buffers.
	jb.fill(rand.New(rand.NewSource(job.Seed)))

	inEnergy, haveEnergy := energy(jb.in)

	var total time.Duration

	for i := range job.Repeat {
		start := time.Now()

		if _, err := plan.Run(algofftw.RunNormalization(job.Normalization)); err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}

		total += time.Since(start)
	}

	fmt.Fprintf(w, "plan      %s\n", plan)
	fmt.Fprintf(w, "id        %s\n", plan.ID())
	fmt.Fprintf(w, "planning  %s\n", planning)
	fmt.Fprintf(w, "runs      %d, %s/run\n", job.Repeat, total/time.Duration(job.Repeat))
	fmt.Fprintf(w, "norm      %s\n", job.Normalization)

	if add, mul, fma, err := plan.Flops(); err == nil {
		fmt.Fprintf(w, "flops     add=%.0f mul=%.0f fma=%.0f\n", add, mul, fma)
	}

	if cost, err := plan.EstimateCost(); err == nil {
		fmt.Fprintf(w, "estimate  %.1f\n", cost)
	}

	if haveEnergy && job.Repeat == 1 {
		outEnergy, _ := energy(jb.out)
		if inEnergy > 0 {
			fmt.Fprintf(w, "energy    out/in=%.6g\n", outEnergy/inEnergy)
		}
	}

	return nil
}
