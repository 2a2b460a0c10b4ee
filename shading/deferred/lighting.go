package deferred

import (
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/meshqueue"
	"github.com/lumenforge/framegraph/rendergraph"
)

// gBufferBase (step 12) draws one graphics pass per material bucket:
// opaque buckets write albedo, transparent buckets write the
// transparency accum/reveal pair; every bucket writes SMRA, position,
// normal, emissive, depth, and entity id.
func (s *Strategy) gBufferBase(frame *FrameData, v ViewData) {
	for _, bucket := range frame.Buckets {
		outputs := []rendergraph.Handle{frame.GBuffer.SMRA, frame.GBuffer.Position, frame.GBuffer.Normal, frame.GBuffer.Emissive, frame.GBuffer.EntityID}
		if bucket.Family == meshqueue.FamilyOpaque {
			outputs = append(outputs, frame.GBuffer.Albedo)
		} else {
			outputs = append(outputs, frame.GBuffer.TransparencyAccum, frame.GBuffer.TransparencyReveal)
		}
		s.Graph.AddPass(bucket.Name, rendergraph.FlagGraphics, rendergraph.Params{
			DepthStencilAttachment: frame.GBuffer.Depth,
			HasDepthStencil:        true,
			Outputs:                outputs,
			ShaderSetup:            rendergraph.ShaderSetup{Vertex: bucket.VertexShader, Fragment: bucket.FragmentShader},
		}, func(ctx *rendergraph.Context) {
			meshqueue.SubmitMaterialIndexedIndirectDraws(ctx.RenderPass, v.Mesh, bucket.Batches, meshqueue.SubmitOptions{OpaqueOnly: bucket.Family == meshqueue.FamilyOpaque}, bucket.Bind)
		})
	}
}

// transparencyComposite (step 13) blends the accum/reveal targets into
// albedo with src-alpha / one-minus-src-alpha, via a fullscreen quad.
func (s *Strategy) transparencyComposite(frame *FrameData, shader common.Name) {
	s.Graph.AddPass(common.NewName("transparency_composite"), rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:      []rendergraph.Handle{frame.GBuffer.TransparencyAccum, frame.GBuffer.TransparencyReveal},
		Outputs:     []rendergraph.Handle{frame.GBuffer.Albedo},
		ShaderSetup: rendergraph.ShaderSetup{Vertex: shader, Fragment: shader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawQuad(ctx.RenderPass)
	})
}

// lineRenderer (step 14) builds per-line transforms in a compute pass,
// then draws a quad instanced by the visible line count, when enabled.
func (s *Strategy) lineRenderer(frame *FrameData) {
	l := frame.Line
	if !l.Enabled {
		return
	}
	s.Graph.AddPass(common.NewName("line_transform"), rendergraph.FlagCompute, rendergraph.Params{
		Inputs:      []rendergraph.Handle{l.RawLines},
		Outputs:     []rendergraph.Handle{l.LineTransforms, l.VisibleLineCount},
		ShaderSetup: rendergraph.ShaderSetup{Compute: l.TransformShader},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})

	s.Graph.AddPass(common.NewName("line_draw"), rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:                 []rendergraph.Handle{l.LineTransforms, l.VisibleLineCount},
		Outputs:                []rendergraph.Handle{frame.GBuffer.Albedo},
		DepthStencilAttachment: frame.GBuffer.Depth,
		HasDepthStencil:        true,
		ShaderSetup:            rendergraph.ShaderSetup{Vertex: l.VertexShader, Fragment: l.FragmentShader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawQuad(ctx.RenderPass)
	})
}

// deferredLighting (step 17) is the fullscreen graphics pass consuming
// skybox + G-Buffer + dense lights + (optionally) DDGI volumes + AS-VSM
// atlas/page-table; shader variants are selected upstream by the caller
// choosing DeferredLightingShader per the GI_ENABLED/SHADOWS_ENABLED
// defines resolved at shader-creation time.
func (s *Strategy) deferredLighting(frame *FrameData, output rendergraph.Handle) {
	inputs := append(frame.GBuffer.colorTargets(), frame.GBuffer.Depth, frame.Lights.DenseLights)
	if frame.GI.Enabled && frame.GI.Volume != nil {
		inputs = append(inputs, frame.GI.Volume.Irradiance, frame.GI.Volume.Depth)
	}
	if frame.AS != nil {
		inputs = append(inputs, frame.AS.ShadowAtlas, frame.AS.PageTable)
	}

	name := common.NewName("deferred_lighting")
	s.Graph.AddPass(name, rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:      inputs,
		Outputs:     []rendergraph.Handle{output},
		ShaderSetup: rendergraph.ShaderSetup{Vertex: frame.DeferredLightingShader, Fragment: frame.DeferredLightingShader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawQuad(ctx.RenderPass)
	})
}

// clearDirtyFlags (step 22) zeroes entity dirty flags for the next frame.
func (s *Strategy) clearDirtyFlags(frame *FrameData, shader common.Name) {
	if frame.EntityDirtyFlags == 0 {
		return
	}
	s.Graph.AddPass(common.NewName("clear_dirty_flags"), rendergraph.FlagCompute, rendergraph.Params{
		Outputs:     []rendergraph.Handle{frame.EntityDirtyFlags},
		ShaderSetup: rendergraph.ShaderSetup{Compute: shader},
	}, func(ctx *rendergraph.Context) {
		ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, 1, 1)
	})
}
