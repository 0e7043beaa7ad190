package main

import (
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	algofftw "github.com/cwbudde/algo-fftw"
	"github.com/cwbudde/algo-fftw/internal/config"
)

type benchResult struct {
	size    int
	effort  algofftw.Flags
	nsPerOp float64
}

// benchEfforts are the planner efforts compared for every size.
var benchEfforts = []algofftw.Flags{
	algofftw.FlagEstimate,
	algofftw.FlagMeasure,
	algofftw.FlagPatient,
}

func newBenchCmd(a *app) *cobra.Command {
	var (
		sizes  []int
		iters  int
		warmup int
		mode   string
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare planner efforts on 1-D complex128 transforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc := a.cfg.Bench
			f := cmd.Flags()

			if f.Changed("sizes") {
				bc.Sizes = sizes
			}

			if f.Changed("iters") {
				bc.Iters = iters
			}

			if f.Changed("warmup") {
				bc.Warmup = warmup
			}

			if f.Changed("mode") {
				bc.Mode = mode
			}

			check := config.DefaultConfig()
			check.Bench = bc

			if err := check.Validate(); err != nil {
				return err
			}

			binding, err := bindingFor(a.cfg.Engine, a.logger)
			if err != nil {
				return err
			}

			return runBench(cmd.OutOrStdout(), bc, rand.New(rand.NewSource(seed)), binding, a.logger)
		},
	}

	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "Comma-separated transform sizes")
	cmd.Flags().IntVar(&iters, "iters", 50, "Benchmark iterations")
	cmd.Flags().IntVar(&warmup, "warmup", 5, "Warmup iterations")
	cmd.Flags().StringVar(&mode, "mode", "forward", "Benchmark mode: forward, backward, roundtrip, all")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")

	return cmd
}

func resolveModes(mode string) []string {
	if mode == "all" {
		return []string{"forward", "backward", "roundtrip"}
	}

	return []string{mode}
}

func runBench(w io.Writer, bc config.BenchConfig, rnd *rand.Rand, binding *algofftw.Binding, logger *zap.Logger) error {
	fmt.Fprintf(w, "iters=%d warmup=%d\n", bc.Iters, bc.Warmup)
	fmt.Fprintf(w, "%8s  %10s  %10s  %12s\n", "size", "mode", "effort", "ns/op")

	for _, n := range bc.Sizes {
		for _, mode := range resolveModes(bc.Mode) {
			results, err := benchmarkSize(rnd, n, bc.Iters, bc.Warmup, mode, binding, logger)
			if err != nil {
				return err
			}

			sort.Slice(results, func(i, j int) bool {
				return results[i].nsPerOp < results[j].nsPerOp
			})

			for _, res := range results {
				fmt.Fprintf(w, "%8d  %10s  %10s  %12.1f\n", n, mode, res.effort, res.nsPerOp)
			}
		}
	}

	return nil
}

func benchmarkSize(rnd *rand.Rand, n, iters, warmup int, mode string, binding *algofftw.Binding, logger *zap.Logger) ([]benchResult, error) {
	src := make([]complex128, n)
	freq := make([]complex128, n)
	dst := make([]complex128, n)

	srcBuf, err := algofftw.Complex128Buffer(src)
	if err != nil {
		return nil, err
	}

	freqBuf, err := algofftw.Complex128Buffer(freq)
	if err != nil {
		return nil, err
	}

	dstBuf, err := algofftw.Complex128Buffer(dst)
	if err != nil {
		return nil, err
	}

	results := make([]benchResult, 0, len(benchEfforts))

	for _, effort := range benchEfforts {
		fwd, err := algofftw.NewPlan(srcBuf, freqBuf, algofftw.Forward, effort,
			algofftw.WithBinding(binding), algofftw.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		bwd, err := algofftw.NewPlan(freqBuf, dstBuf, algofftw.Backward, effort,
			algofftw.WithBinding(binding), algofftw.WithLogger(logger))
		if err != nil {
			fwd.Close()
			return nil, err
		}

		for i := range src {
			src[i] = complex(rnd.Float64(), rnd.Float64())
		}

		nsPerOp, err := timePlans(fwd, bwd, iters, warmup, mode)

		fwd.Close()
		bwd.Close()

		if err != nil {
			return nil, err
		}

		results = append(results, benchResult{size: n, effort: effort, nsPerOp: nsPerOp})
	}

	return results, nil
}

func timePlans(fwd, bwd *algofftw.Plan, iters, warmup int, mode string) (float64, error) {
	step := func() error {
		switch mode {
		case "backward":
			return bwd.Execute()
		case "roundtrip":
			if err := fwd.Execute(); err != nil {
				return err
			}

			_, err := bwd.Run(algofftw.RunNormalization(algofftw.NormFull))

			return err
		default:
			return fwd.Execute()
		}
	}

	if mode == "backward" {
		if err := fwd.Execute(); err != nil {
			return 0, err
		}
	}

	for range warmup {
		if err := step(); err != nil {
			return 0, err
		}
	}

	runtime.GC()

	start := time.Now()

	for range iters {
		if err := step(); err != nil {
			return 0, err
		}
	}

	return float64(time.Since(start).Nanoseconds()) / float64(iters), nil
}
