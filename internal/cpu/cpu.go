// Package cpu reports the SIMD features of the host processor.
//
// Detection runs once on first use and is cached. The result only feeds
// engine descriptions and diagnostics; kernel selection itself is left to
// the FFT libraries the engines call into.
package cpu

import (
	"runtime"
	"strings"
	"sync"
)

// Features describes CPU capabilities relevant to FFT kernels.
type Features struct {
	HasSSE2   bool
	HasSSE3   bool
	HasSSE41  bool
	HasAVX    bool
	HasAVX2   bool
	HasFMA    bool
	HasAVX512 bool
	HasNEON   bool
	HasSVE    bool

	Architecture string
}

var (
	detectOnce sync.Once
	detected   Features
)

// DetectFeatures returns the cached feature set of the host.
func DetectFeatures() Features {
	detectOnce.Do(func() {
		detected = detectFeaturesImpl()
		detected.Architecture = runtime.GOARCH
	})

	return detected
}

// String lists the detected extensions, e.g. "amd64 sse2 avx avx2 fma".
func (f Features) String() string {
	parts := []string{f.Architecture}

	add := func(ok bool, name string) {
		if ok {
			parts = append(parts, name)
		}
	}

	add(f.HasSSE2, "sse2")
	add(f.HasSSE3, "sse3")
	add(f.HasSSE41, "sse4.1")
	add(f.HasAVX, "avx")
	add(f.HasAVX2, "avx2")
	add(f.HasFMA, "fma")
	add(f.HasAVX512, "avx512")
	add(f.HasNEON, "neon")
	add(f.HasSVE, "sve")

	if len(parts) == 1 {
		parts = append(parts, "generic")
	}

	return strings.Join(parts, " ")
}
