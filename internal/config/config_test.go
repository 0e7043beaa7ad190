package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	algofftw "github.com/cwbudde/algo-fftw"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	job, err := cfg.Job.Resolve()
	require.NoError(t, err)

	want := Job{
		Shape:         []int{64, 64},
		Kind:          algofftw.Complex128,
		Direction:     algofftw.Forward,
		Flags:         algofftw.FlagEstimate,
		Normalization: algofftw.NormNone,
		Repeat:        1,
		Seed:          1,
	}
	if diff := cmp.Diff(want, job); diff != "" {
		t.Fatalf("resolved job mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
engine: go
job:
  shape: [8, 16]
  kind: csingle
  direction: backward
  flags: [measure, "destroy_input|unaligned"]
  normalization: sqrt
  repeat: 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "go", cfg.Engine)
	assert.Equal(t, 50, cfg.Bench.Iters)

	job, err := cfg.Job.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 16}, job.Shape)
	assert.Equal(t, algofftw.Complex64, job.Kind)
	assert.Equal(t, algofftw.Backward, job.Direction)
	assert.Equal(t, algofftw.FlagMeasure|algofftw.FlagDestroyInput|algofftw.FlagUnaligned, job.Flags)
	assert.Equal(t, algofftw.NormSqrt, job.Normalization)
	assert.Equal(t, 3, job.Repeat)
	assert.Equal(t, int64(1), job.Seed)

	level, err := cfg.Logging.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown key", "job:\n  shap: [4]\n", nil},
		{"direction", "job:\n  direction: sideways\n", algofftw.ErrInvalidDirection},
		{"flag", "job:\n  flags: [estimate, turbo]\n", algofftw.ErrInvalidFlag},
		{"normalization", "job:\n  normalization: ortho\n", algofftw.ErrInvalidNormalization},
		{"kind", "job:\n  kind: float16\n", algofftw.ErrUnsupportedPrecision},
		{"shape", "job:\n  shape: [4, 0]\n", algofftw.ErrInvalidShape},
		{"repeat", "job:\n  repeat: 0\n", nil},
		{"bench mode", "bench:\n  mode: sideways\n", nil},
		{"log level", "logging:\n  level: loud\n", nil},
	}

	for _, tt := range tests {
		_, err := Load(writeFile(t, tt.body))
		require.Error(t, err, tt.name)

		if tt.want != nil {
			require.ErrorIs(t, err, tt.want, tt.name)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "job.yaml")

	cfg := DefaultConfig()
	cfg.Job.Shape = []int{32}
	cfg.Bench.Mode = "all"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
