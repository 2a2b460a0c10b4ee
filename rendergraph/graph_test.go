package rendergraph

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
)

func TestRegisterImageIsAlwaysPersistentAndMaterialized(t *testing.T) {
	g := newTestGraph()
	g.Begin()

	h := g.RegisterImage(common.NewName("existing_texture"))
	r, err := g.resourceAt(h)
	if err != nil {
		t.Fatalf("resourceAt: %v", err)
	}
	if !r.isPersistent {
		t.Errorf("expected a registered image to be marked persistent")
	}
	if !r.materialized {
		t.Errorf("expected a registered image to be marked materialized immediately")
	}
}

func TestCreateImageIsNotPersistentUntilMaterialized(t *testing.T) {
	g := newTestGraph()
	g.Begin()

	h := g.CreateImage(common.NewName("transient_texture"), ImageDesc{Width: 64, Height: 64})
	r, err := g.resourceAt(h)
	if err != nil {
		t.Fatalf("resourceAt: %v", err)
	}
	if r.isPersistent {
		t.Errorf("expected a created (not registered) image to not be persistent")
	}
	if r.materialized {
		t.Errorf("expected a created image to be unmaterialized until first use")
	}
}

func TestMarkPassCacheBindGroupsDirtySetsFlag(t *testing.T) {
	g := newTestGraph()
	name := common.NewName("some_pass")
	if g.dirtyBindGroups[name] {
		t.Fatalf("expected a fresh graph to have no dirty bind groups")
	}
	g.MarkPassCacheBindGroupsDirty(name)
	if !g.dirtyBindGroups[name] {
		t.Errorf("expected MarkPassCacheBindGroupsDirty to set the flag for the named pass")
	}
}

func TestQueuePostCommandAppendsAndResetClears(t *testing.T) {
	g := newTestGraph()
	if len(g.postCommands) != 0 {
		t.Fatalf("expected a fresh graph to have no queued post commands")
	}
	g.QueuePostCommand(func(_ *wgpu.CommandEncoder) {})
	g.QueuePostCommand(func(_ *wgpu.CommandEncoder) {})
	if len(g.postCommands) != 2 {
		t.Fatalf("expected 2 queued post commands, got %d", len(g.postCommands))
	}
	g.Reset()
	if len(g.postCommands) != 0 {
		t.Errorf("expected Reset to clear queued post commands, got %d remaining", len(g.postCommands))
	}
}

func TestQueueReadbackDrainAppendsAndResetClears(t *testing.T) {
	g := newTestGraph()
	g.QueueReadbackDrain(func() {})
	if len(g.readbackDrains) != 1 {
		t.Fatalf("expected 1 queued readback drain, got %d", len(g.readbackDrains))
	}
	g.Reset()
	if len(g.readbackDrains) != 0 {
		t.Errorf("expected Reset to clear queued readback drains, got %d remaining", len(g.readbackDrains))
	}
}
