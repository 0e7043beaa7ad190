package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	algofftw "github.com/cwbudde/algo-fftw"
	"github.com/cwbudde/algo-fftw/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestRunJobSqrtPreservesEnergy(t *testing.T) {
	binding, err := bindingFor("go", zap.NewNop())
	require.NoError(t, err)

	job := config.Job{
		Shape:         []int{16, 8},
		Kind:          algofftw.Complex128,
		Direction:     algofftw.Forward,
		Flags:         algofftw.FlagEstimate,
		Normalization: algofftw.NormSqrt,
		Repeat:        1,
		Seed:          3,
	}

	var out bytes.Buffer
	require.NoError(t, runJob(&out, job, binding, zap.NewNop()))

	assert.Contains(t, out.String(), "forward complex128[16 8] estimate (go)")
	assert.Contains(t, out.String(), "energy    out/in=1\n")
}

func TestRunCommandWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: go
job:
  shape: [32]
  kind: complex64
  normalization: full
logging:
  level: error
`), 0o644))

	out, err := execute(t, "run", "--config", path, "--direction", "backward", "--repeat", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "backward complex64[32] estimate (go)")
	assert.Contains(t, out, "runs      2")
	assert.Contains(t, out, "norm      full")
}

func TestRunCommandRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "run", "--engine", "go", "--flags", "turbo")
	require.ErrorIs(t, err, algofftw.ErrInvalidFlag)

	_, err = execute(t, "run", "--engine", "nope")
	require.ErrorIs(t, err, algofftw.ErrEngineUnavailable)

	_, err = execute(t, "run", "--engine", "go", "--kind", "complexlongdouble", "--shape", "4")
	require.ErrorIs(t, err, algofftw.ErrEngineUnavailable)
}

func TestBenchCommand(t *testing.T) {
	out, err := execute(t, "bench", "--engine", "go", "--sizes", "16,12", "--iters", "2", "--warmup", "1", "--mode", "all")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, column titles, 2 sizes x 3 modes x 3 efforts
	assert.Len(t, lines, 2+2*3*3)
	assert.Contains(t, out, "roundtrip")
	assert.Contains(t, out, "patient")

	_, err = execute(t, "bench", "--mode", "sideways")
	require.Error(t, err)
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "info", "--engine", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "engine       go")
	assert.Contains(t, out, "double       available, flops")
	assert.Contains(t, out, "extended     unavailable")
	assert.Contains(t, out, "cpu ")
}
