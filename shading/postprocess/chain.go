// Package postprocess implements the post-process pass chain: a sequence
// of enabled passes run in scene-registered order, each reading the prior
// pass's output and writing into one of two ping-pong render targets.
package postprocess

import (
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

// Pass is one post-process effect. Setup receives the image the prior pass
// (or the chain's initial input) wrote, and the image this pass should
// write to, and is responsible for calling graph.AddPass to record it.
type Pass struct {
	Name    common.Name
	Enabled bool
	// Setup records this pass's render-graph entry. src is the handle to
	// read from, dst is the ping/pong handle this pass must write to.
	Setup func(graph *rendergraph.Graph, src, dst rendergraph.Handle)
}

// Chain runs a fixed ping/pong image pair through every enabled Pass in
// registration order, inverting direction after each one.
type Chain struct {
	Ping, Pong rendergraph.Handle
	passes     []Pass
}

// NewChain wraps the two ping-pong targets a scene allocates once per
// resolution (or once, persistently, if full-resolution post-process
// targets are not resized with the swapchain).
//
// Parameters:
//   - ping: the first ping-pong target
//   - pong: the second ping-pong target
func NewChain(ping, pong rendergraph.Handle) *Chain {
	return &Chain{Ping: ping, Pong: pong}
}

// Register appends a pass to the chain. Passes run in the order
// registered; Enabled==false passes are skipped without toggling the
// ping/pong direction.
func (c *Chain) Register(p Pass) {
	c.passes = append(c.passes, p)
}

// Compile records every enabled pass's render-graph entry, threading input
// from the previous output and flipping ping/pong direction each time.
// input is the image the chain starts from (e.g. the deferred lighting
// pass's output). Returns the final image holding the chain's result,
// which the caller feeds to the present pass.
//
// Testable property: after k >= 1 enabled passes, the returned image is
// Ping iff k is odd, else Pong (starting direction is Ping, i.e. the first
// enabled pass writes to Ping); with no enabled pass, input is returned.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - input: the image the first enabled pass reads from
func (c *Chain) Compile(graph *rendergraph.Graph, input rendergraph.Handle) rendergraph.Handle {
	current := input
	usingPing := true
	for _, p := range c.passes {
		if !p.Enabled {
			continue
		}
		dst := c.Pong
		if usingPing {
			dst = c.Ping
		}
		p.Setup(graph, current, dst)
		current = dst
		usingPing = !usingPing
	}
	return current
}
