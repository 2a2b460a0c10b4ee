package asvsm

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/meshqueue"
	"github.com/lumenforge/framegraph/readback"
	"github.com/lumenforge/framegraph/rendergraph"
)

// Shaders names every compute/graphics shader the AS-VSM pass sequence
// dispatches, resolved and created by the caller before AddPasses runs.
type Shaders struct {
	Histogram       common.Name
	SplitDepthSum   common.Name
	Feedback        common.Name
	Gather          common.Name
	UpdatePageTable common.Name
	RenderTile      common.Name
	Debug           common.Name
}

const (
	histogramTileGroup = 16
)

// ActiveTileCount is read back one frame late from the CPU shadow of the
// requested-tiles buffer's count header, per spec: "The active tile count
// is consumed one frame late, by design."
type ActiveTileCount struct {
	entry *readback.Entry
}

// NewActiveTileCount wraps the requested-tiles buffer owner for the
// one-frame-late CPU readback of its count header.
func NewActiveTileCount(owner readback.Owner) *ActiveTileCount {
	return &ActiveTileCount{entry: readback.NewEntry(owner, 4)}
}

// Count returns the last successfully read-back active request count, or
// 0 if no readback has landed yet.
func (a *ActiveTileCount) Count() uint32 {
	if !a.entry.Available() || len(a.entry.Dst) < 4 {
		return 0
	}
	return uint32(a.entry.Dst[0]) | uint32(a.entry.Dst[1])<<8 | uint32(a.entry.Dst[2])<<16 | uint32(a.entry.Dst[3])<<24
}

// Entry exposes the underlying readback entry for registration with a
// BufferSync.
func (a *ActiveTileCount) Entry() *readback.Entry { return a.entry }

// Init (per-frame step 1) performs CPU-written clears of histogram,
// settings, bitmask, and the request-count header. These are small
// uploads issued directly via the device queue rather than compute
// passes, since they're unconditional zero-fills with no GPU-side
// dependency.
//
// Parameters:
//   - queue: device queue to write through
//   - histogram, settingsBuf, bitmask, requested: the native buffers to clear
func Init(queue *wgpu.Queue, histogram, settingsBuf, bitmask, requested buffer.Buffer) {
	zero := func(b buffer.Buffer) {
		b.Write(queue, make([]byte, b.Size()), 0)
	}
	zero(histogram)
	zero(settingsBuf)
	zero(bitmask)
	// Only the count header (first word) of requested needs clearing;
	// the rest is overwritten by Gather this frame.
	requested.Write(queue, make([]byte, 4), 0)
}

// AddPasses records the per-frame Histogram -> Split-Depth-Sum -> Feedback
// -> Gather -> Update-Page-Table -> Render-Tiles sequence for one light
// set's State.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - st: the AS-VSM state these passes read/write
//   - shaders: the shader Names used across the sequence
//   - depth: the full-resolution depth image to histogram/feedback from
//   - denseShadowLights: the compacted shadow-casting-lights buffer
//   - activeRequests: last frame's readback of the request count, driving
//     how many Render-Tiles passes get added this frame
//   - views: per-request visible-instance view state and draw batches,
//     keyed by request index (one view per shadow-casting light)
//   - renderTileBind: binds the tiny per-request uniform (request index)
//     before the indexed-indirect draw
func AddPasses(graph *rendergraph.Graph, st *State, shaders Shaders, depth rendergraph.Handle, denseShadowLights rendergraph.Handle, activeRequests uint32, views []*meshqueue.View, batches [][]meshqueue.Batch, renderTileBind func(pass *wgpu.RenderPassEncoder, requestIndex uint32)) {
	s := st.Settings

	graph.AddPass(common.NewName("asvsm_histogram"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{depth},
		Outputs:     []rendergraph.Handle{st.Histogram},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.Histogram},
		DispatchX:   (s.VirtualTilesPerRow()*s.MaxLODs*s.PhysicalTilesPerRow()*s.MaxLODs + (histogramTileGroup*histogramTileGroup - 1)) / (histogramTileGroup * histogramTileGroup),
		DispatchY:   1,
		DispatchZ:   1,
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})

	graph.AddPass(common.NewName("asvsm_split_depth_sum"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{st.Histogram},
		Outputs:     []rendergraph.Handle{st.SettingsBuffer},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.SplitDepthSum},
		DispatchX:   1,
		DispatchY:   1,
		DispatchZ:   1,
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(1, 1, 1)
	})

	graph.AddPass(common.NewName("asvsm_feedback"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{depth, st.SettingsBuffer},
		Outputs:     []rendergraph.Handle{st.Bitmask},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.Feedback},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, 1)
	})

	graph.AddPass(common.NewName("asvsm_gather"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{st.Bitmask, st.PageTable, denseShadowLights},
		Outputs:     []rendergraph.Handle{st.Requested},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.Gather},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, 1)
	})

	graph.AddPass(common.NewName("asvsm_update_page_table"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{st.Requested, st.PhysicalToVirtual},
		Outputs:     []rendergraph.Handle{st.PageTable, st.PhysicalToVirtual},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.UpdatePageTable},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})

	for i := uint32(0); i < activeRequests; i++ {
		if int(i) >= len(views) || int(i) >= len(batches) {
			break
		}
		requestIndex := i
		view := views[i]
		batch := batches[i]
		name := common.NewName(fmt.Sprintf("asvsm_render_tile_%d", i))
		graph.AddPass(name, rendergraph.FlagGraphics, rendergraph.Params{
			Outputs:     []rendergraph.Handle{st.ShadowAtlas},
			ShaderSetup: rendergraph.ShaderSetup{Vertex: shaders.RenderTile, Fragment: shaders.RenderTile},
		}, func(ctx *rendergraph.Context) {
			if renderTileBind != nil {
				renderTileBind(ctx.RenderPass, requestIndex)
			}
			meshqueue.SubmitIndexedIndirectDraws(ctx.RenderPass, view, batch, meshqueue.SubmitOptions{SkipMaterialBind: true}, nil)
		})
	}
}

// AddDebugPass (when debug_view selects ShadowAtlas or ShadowPageTable)
// records a fullscreen pass writing the requested internal buffer into a
// color image the final present pass can select as its source.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - st: the AS-VSM state to visualize
//   - debugShader: the fullscreen visualization shader
//   - output: the debug color image to write
//   - showPageTable: true to visualize PageTable, false for ShadowAtlas
func AddDebugPass(graph *rendergraph.Graph, st *State, debugShader common.Name, output rendergraph.Handle, showPageTable bool) {
	source := st.ShadowAtlas
	if showPageTable {
		source = st.PageTable
	}
	graph.AddPass(common.NewName("asvsm_debug"), rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:      []rendergraph.Handle{source},
		Outputs:     []rendergraph.Handle{output},
		ShaderSetup: rendergraph.ShaderSetup{Vertex: debugShader, Fragment: debugShader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawQuad(ctx.RenderPass)
	})
}
