//go:build arm64

package cpu

import "golang.org/x/sys/cpu"

func detectFeaturesImpl() Features {
	return Features{
		HasNEON: cpu.ARM64.HasASIMD,
		HasSVE:  cpu.ARM64.HasSVE,
	}
}
