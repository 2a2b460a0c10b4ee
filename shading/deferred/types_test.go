package deferred

import (
	"testing"

	"github.com/lumenforge/framegraph/rendergraph"
)

func TestGBufferColorTargetsOrderAndCount(t *testing.T) {
	g := GBuffer{
		Albedo:             1,
		Emissive:           2,
		SMRA:               3,
		Normal:             4,
		Position:           5,
		EntityID:           6,
		TransparencyAccum:  7,
		TransparencyReveal: 8,
		Depth:              9,
	}
	targets := g.colorTargets()
	want := []rendergraph.Handle{1, 2, 3, 4, 5, 6, 7, 8}
	if len(targets) != len(want) {
		t.Fatalf("colorTargets() len = %d, want %d", len(targets), len(want))
	}
	for i, h := range want {
		if targets[i] != h {
			t.Errorf("colorTargets()[%d] = %v, want %v", i, targets[i], h)
		}
	}
	// Depth must never appear among the color targets.
	for _, h := range targets {
		if h == g.Depth {
			t.Errorf("colorTargets() must not include the depth handle")
		}
	}
}

func TestNewStrategyWiresFields(t *testing.T) {
	graph := rendergraph.New(nil, nil, nil, 2)
	s := New(graph, nil, nil, nil)
	if s.Graph != graph {
		t.Errorf("expected New() to store the given graph")
	}
}

func TestNotifyResolutionChangeSetsAndConsumeClears(t *testing.T) {
	s := &Strategy{}
	if s.consumeResolutionDirty() {
		t.Errorf("expected a fresh Strategy to not report resolution dirty")
	}
	s.NotifyResolutionChange()
	if !s.consumeResolutionDirty() {
		t.Errorf("expected consumeResolutionDirty() to report true right after NotifyResolutionChange()")
	}
	if s.consumeResolutionDirty() {
		t.Errorf("expected consumeResolutionDirty() to clear the flag after being read once")
	}
}
