package cpu

import (
	"runtime"
	"strings"
	"testing"
)

func TestDetectFeaturesCached(t *testing.T) {
	t.Parallel()

	a := DetectFeatures()
	b := DetectFeatures()

	if a != b {
		t.Fatalf("DetectFeatures not stable: %+v vs %+v", a, b)
	}

	if a.Architecture != runtime.GOARCH {
		t.Errorf("Architecture = %q, want %q", a.Architecture, runtime.GOARCH)
	}
}

func TestFeaturesString(t *testing.T) {
	t.Parallel()

	f := Features{Architecture: "amd64", HasSSE2: true, HasAVX2: true}
	if got := f.String(); got != "amd64 sse2 avx2" {
		t.Errorf("String() = %q", got)
	}

	bare := Features{Architecture: "wasm"}
	if got := bare.String(); !strings.HasSuffix(got, "generic") {
		t.Errorf("String() = %q, want generic suffix", got)
	}
}
