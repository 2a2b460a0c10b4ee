package postprocess

import (
	"testing"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

func TestCompileNoPassesReturnsInput(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	input := g.RegisterImage(common.NewName("input"))

	c := NewChain(g.RegisterImage(common.NewName("ping")), g.RegisterImage(common.NewName("pong")))
	if got := c.Compile(g, input); got != input {
		t.Fatalf("expected Compile with no registered passes to return input unchanged")
	}
}

func TestCompileDisabledPassDoesNotFlipDirection(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	input := g.RegisterImage(common.NewName("input"))
	ping := g.RegisterImage(common.NewName("ping"))
	pong := g.RegisterImage(common.NewName("pong"))

	c := NewChain(ping, pong)
	c.Register(Pass{Name: common.NewName("disabled"), Enabled: false, Setup: func(graph *rendergraph.Graph, src, dst rendergraph.Handle) {
		t.Fatalf("Setup must not run for a disabled pass")
	}})

	if got := c.Compile(g, input); got != input {
		t.Fatalf("expected disabled-only chain to return input unchanged")
	}
}

func TestCompilePingPongDirectionAlternates(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	input := g.RegisterImage(common.NewName("input"))
	ping := g.RegisterImage(common.NewName("ping"))
	pong := g.RegisterImage(common.NewName("pong"))

	setup := func(graph *rendergraph.Graph, src, dst rendergraph.Handle) {}

	for enabledCount := 1; enabledCount <= 4; enabledCount++ {
		c := NewChain(ping, pong)
		for i := 0; i < enabledCount; i++ {
			c.Register(Pass{Name: common.NewName("p"), Enabled: true, Setup: setup})
		}
		got := c.Compile(g, input)

		wantPing := enabledCount%2 == 1
		if wantPing && got != ping {
			t.Errorf("k=%d enabled passes: expected Ping, got Pong", enabledCount)
		}
		if !wantPing && got != pong {
			t.Errorf("k=%d enabled passes: expected Pong, got Ping", enabledCount)
		}
	}
}

func TestCompileSkipsDisabledWithoutConsumingDirection(t *testing.T) {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	input := g.RegisterImage(common.NewName("input"))
	ping := g.RegisterImage(common.NewName("ping"))
	pong := g.RegisterImage(common.NewName("pong"))
	setup := func(graph *rendergraph.Graph, src, dst rendergraph.Handle) {}

	c := NewChain(ping, pong)
	c.Register(Pass{Name: common.NewName("a"), Enabled: true, Setup: setup})
	c.Register(Pass{Name: common.NewName("disabled"), Enabled: false, Setup: func(graph *rendergraph.Graph, src, dst rendergraph.Handle) {
		t.Fatalf("disabled pass Setup must not run")
	}})
	c.Register(Pass{Name: common.NewName("b"), Enabled: true, Setup: setup})

	// Two enabled passes (a, b) with one disabled pass skipped in between:
	// k=2 enabled passes -> Pong.
	if got := c.Compile(g, input); got != pong {
		t.Fatalf("expected 2 enabled passes around a skipped disabled pass to land on Pong")
	}
}
