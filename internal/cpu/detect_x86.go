//go:build 386 || amd64

package cpu

import "golang.org/x/sys/cpu"

func detectFeaturesImpl() Features {
	return Features{
		HasSSE2:   cpu.X86.HasSSE2,
		HasSSE3:   cpu.X86.HasSSE3,
		HasSSE41:  cpu.X86.HasSSE41,
		HasAVX:    cpu.X86.HasAVX,
		HasAVX2:   cpu.X86.HasAVX2,
		HasFMA:    cpu.X86.HasFMA,
		HasAVX512: cpu.X86.HasAVX512F,
	}
}
