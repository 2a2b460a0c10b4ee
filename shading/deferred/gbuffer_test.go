package deferred

import (
	"testing"

	"github.com/lumenforge/framegraph/rendergraph"
)

func newTestGraph() *rendergraph.Graph {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	return g
}

func TestClearGBufferAssignsNineDistinctHandles(t *testing.T) {
	g := newTestGraph()
	s := &Strategy{Graph: g}
	frame := &FrameData{Width: 1920, Height: 1080}

	s.clearGBuffer(frame, false)

	handles := append(frame.GBuffer.colorTargets(), frame.GBuffer.Depth)
	seen := make(map[rendergraph.Handle]bool, len(handles))
	for i, h := range handles {
		if h == 0 {
			t.Errorf("GBuffer target %d got the zero handle", i)
		}
		if seen[h] {
			t.Errorf("GBuffer target %d duplicates an earlier handle %v", i, h)
		}
		seen[h] = true
	}
}

func TestResetGBufferLoadOpsIsANoOp(t *testing.T) {
	s := &Strategy{}
	// Must not touch s.Graph at all, since it is nil here.
	s.resetGBufferLoadOps(true)
	s.resetGBufferLoadOps(false)
}
