package rendergraph

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
)

// Context is handed to a pass's executor once the graph has begun the
// pass's physical render or compute pass and bound whatever bind groups
// and pipeline SkipBindGroupSetup/SkipPipelineSetup didn't opt out of.
type Context struct {
	graph *Graph

	Encoder     *wgpu.CommandEncoder
	RenderPass  *wgpu.RenderPassEncoder
	ComputePass *wgpu.ComputePassEncoder

	DispatchX, DispatchY, DispatchZ uint32
}

// Image resolves handle to its physical texture, materializing it first if
// this is the pass referencing it for the first time this frame.
func (c *Context) Image(handle Handle) (*wgpu.Texture, *wgpu.TextureView, error) {
	return c.graph.resolveImage(handle)
}

// Buffer resolves handle to its physical buffer.
func (c *Context) Buffer(handle Handle) (*wgpu.Buffer, error) {
	return c.graph.resolveBuffer(handle)
}

// Name returns the Name a handle was created or registered under, for
// diagnostics or further cache lookups the executor needs to perform
// itself (e.g. fetching a Mesh or Material by the same Name convention).
func (c *Context) Name(handle Handle) (common.Name, error) {
	r, err := c.graph.resourceAt(handle)
	if err != nil {
		return 0, err
	}
	return r.name, nil
}
