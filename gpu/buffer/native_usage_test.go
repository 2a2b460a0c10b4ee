package buffer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestToNativeUsageMapsEachFlag(t *testing.T) {
	cases := []struct {
		in   Usage
		want wgpu.BufferUsage
	}{
		{UsageVertex, wgpu.BufferUsageVertex},
		{UsageIndex, wgpu.BufferUsageIndex},
		{UsageUniform, wgpu.BufferUsageUniform},
		{UsageStorage, wgpu.BufferUsageStorage},
		{UsageIndirect, wgpu.BufferUsageIndirect},
		{UsageCopySrc, wgpu.BufferUsageCopySrc},
		{UsageCopyDst, wgpu.BufferUsageCopyDst},
		{UsageMapRead, wgpu.BufferUsageMapRead},
	}
	for _, c := range cases {
		if got := toNativeUsage(c.in); got != c.want {
			t.Errorf("toNativeUsage(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToNativeUsageCombinesFlags(t *testing.T) {
	got := toNativeUsage(UsageVertex | UsageCopyDst)
	want := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if got != want {
		t.Errorf("toNativeUsage(Vertex|CopyDst) = %v, want %v", got, want)
	}
}

func TestToNativeUsageZeroIsZero(t *testing.T) {
	if got := toNativeUsage(0); got != 0 {
		t.Errorf("toNativeUsage(0) = %v, want 0", got)
	}
}
