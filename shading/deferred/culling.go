package deferred

import (
	"fmt"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/meshqueue"
	"github.com/lumenforge/framegraph/rendergraph"
)

// compactActiveLights (step 2) packs sparse LightFragment rows into dense
// all-lights and shadow-casting-lights buffers plus a 2xu32 count buffer,
// via one compute pass with 128-thread workgroups and atomic indexing
// performed by the shader.
func (s *Strategy) compactActiveLights(l LightCompaction) {
	s.Graph.AddPass(common.NewName("compact_active_lights"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{l.SparseLights},
		Outputs:     []rendergraph.Handle{l.DenseLights, l.ShadowLights, l.Counts},
		ShaderSetup: rendergraph.ShaderSetup{Compute: l.Shader},
		DispatchX:   (l.SparseCount + lightCompactionWorkgroupSize - 1) / lightCompactionWorkgroupSize,
		DispatchY:   1,
		DispatchZ:   1,
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})
}

// skybox (step 3) draws a cube against a cubemap texture into the
// G-Buffer's albedo+depth, when enabled.
func (s *Strategy) skybox(frame *FrameData) {
	if !frame.Skybox.Enabled {
		return
	}
	s.Graph.AddPass(common.NewName("skybox"), rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:                 []rendergraph.Handle{frame.Skybox.Cubemap},
		Outputs:                []rendergraph.Handle{frame.GBuffer.Albedo},
		DepthStencilAttachment: frame.GBuffer.Depth,
		HasDepthStencil:        true,
		ShaderSetup:            rendergraph.ShaderSetup{Vertex: frame.Skybox.VertexShader, Fragment: frame.Skybox.FragmentShader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawCube(ctx.RenderPass)
	})
}

// clearVisibility (step 5) zeroes a view's visibility-instance buffers
// before this frame's frustum/occlusion culling writes into them.
func (s *Strategy) clearVisibility(v ViewData, shader common.Name) {
	name := common.NewName(fmt.Sprintf("clear_visibility_view%d", v.Index))
	visible := v.Mesh.VisiblePreOcclusion
	s.Graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
		Outputs:     []rendergraph.Handle{s.Graph.RegisterBuffer(visible.Name())},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shader},
		DispatchX:   1,
		DispatchY:   1,
		DispatchZ:   1,
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})
}

// frustumCull (step 6) reads entity AABBs and per-instance AABB-node
// indices, emitting pre-occlusion visibility for the view.
func (s *Strategy) frustumCull(v ViewData, shader common.Name) {
	name := common.NewName(fmt.Sprintf("frustum_cull_view%d", v.Index))
	s.Graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{v.AABBBuffer, v.AABBNodeIndexBuffer},
		Outputs:     []rendergraph.Handle{s.Graph.RegisterBuffer(v.Mesh.VisiblePreOcclusion.Name())},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shader},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, ctx.DispatchZ)
	})
}

// depthPrepass (step 7) draws opaque-only, depth-only indexed-indirect
// draws, when enabled, to seed the HZB with conservative depth.
func (s *Strategy) depthPrepass(frame *FrameData, v ViewData, shader common.Name) {
	if !frame.DepthPrepassEnabled {
		return
	}
	var all []meshqueue.Batch
	for _, b := range frame.Buckets {
		if b.Family == meshqueue.FamilyOpaque {
			all = append(all, b.Batches...)
		}
	}
	name := common.NewName(fmt.Sprintf("depth_prepass_view%d", v.Index))
	s.Graph.AddPass(name, rendergraph.FlagGraphics, rendergraph.Params{
		DepthStencilAttachment: frame.GBuffer.Depth,
		HasDepthStencil:        true,
		ShaderSetup:            rendergraph.ShaderSetup{Vertex: shader},
		SkipBindGroupSetup:     true,
	}, func(ctx *rendergraph.Context) {
		meshqueue.SubmitIndexedIndirectDraws(ctx.RenderPass, v.Mesh, all, meshqueue.SubmitOptions{OpaqueOnly: true, DepthOnly: true, SkipMaterialBind: true}, nil)
	})
}

// resetInstanceCounts (step 9) zeroes each indirect entry's instance count
// before occlusion culling re-increments it.
func (s *Strategy) resetInstanceCounts(v ViewData, shader common.Name) {
	name := common.NewName(fmt.Sprintf("reset_instance_counts_view%d", v.Index))
	s.Graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
		Outputs:     []rendergraph.Handle{s.Graph.RegisterBuffer(v.Mesh.IndirectDraw.Name())},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shader},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})
}

// occlusionCull (step 10) reads the HZB plus pre-occlusion visibility and
// emits final per-view visibility, incrementing indirect instance counts
// atomically in the shader.
func (s *Strategy) occlusionCull(v ViewData, shader common.Name) {
	name := common.NewName(fmt.Sprintf("occlusion_cull_view%d", v.Index))
	s.Graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{v.HZB.Image, s.Graph.RegisterBuffer(v.Mesh.VisiblePreOcclusion.Name())},
		Outputs:     []rendergraph.Handle{s.Graph.RegisterBuffer(v.Mesh.Visible.Name()), s.Graph.RegisterBuffer(v.Mesh.IndirectDraw.Name())},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shader},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, ctx.DispatchZ)
	})
}

// computeRasterization (step 11) runs optional software-raster passes
// writing directly into G-Buffer color+depth, via the compute-raster task
// queue already populated this frame.
func (s *Strategy) computeRasterization(frame *FrameData) {
	if frame.ComputeRaster == nil {
		return
	}
	frame.ComputeRaster.CompileRGPasses(s.Graph)
}
