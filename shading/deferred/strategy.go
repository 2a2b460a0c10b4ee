package deferred

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/meshqueue"
	"github.com/lumenforge/framegraph/rendergraph"
	"github.com/lumenforge/framegraph/shading/asvsm"
	"github.com/lumenforge/framegraph/shading/bloom"
	"github.com/lumenforge/framegraph/shading/ddgi"
)

// ASVSMConfig supplies this frame's shadow-paging inputs; nil disables
// step 15 and the SHADOWS_ENABLED shader variant.
type ASVSMConfig struct {
	Shaders           asvsm.Shaders
	DebugShader       common.Name
	DenseShadowLights rendergraph.Handle
	ActiveRequests    uint32
	Views             []*meshqueue.View
	Batches           [][]meshqueue.Batch
	RenderTileBind    func(pass *wgpu.RenderPassEncoder, requestIndex uint32)

	// Histogram/Settings/Bitmask/Requested are the same native buffers
	// frame.AS's corresponding Handles resolve to; AS-VSM's Init clears
	// them directly through the queue before any compute pass runs, so it
	// needs the native handles rather than graph Handles.
	Histogram buffer.Buffer
	Settings  buffer.Buffer
	Bitmask   buffer.Buffer
	Requested buffer.Buffer
}

// DDGIConfig supplies this frame's probe-update inputs; nil disables step
// 16 and the GI_ENABLED shader variant regardless of frame.GI.Enabled.
type DDGIConfig struct {
	Shaders  ddgi.Shaders
	Uniforms []buffer.Buffer
	Raster   ddgi.RasterScene
}

// ComposeConfig names every shader the steps not already carrying their
// own shader reference (via FrameData's buckets/line/skybox/etc.) need,
// plus the optional AS-VSM/DDGI per-frame inputs.
type ComposeConfig struct {
	ClearVisibilityShader     common.Name
	FrustumCullShader         common.Name
	DepthPrepassShader        common.Name
	ResetInstanceCountsShader common.Name
	OcclusionCullShader       common.Name
	HZBReduceShader           common.Name
	ClearDirtyFlagsShader     common.Name

	ASVSM *ASVSMConfig
	DDGI  *DDGIConfig
}

// Compose records the full 22-step deferred-shading pass sequence into
// s.Graph for one frame, in order.
//
// Parameters:
//   - frame: this frame's resources and scene content
//   - cfg: shader names and optional AS-VSM/DDGI inputs
func (s *Strategy) Compose(frame *FrameData, cfg ComposeConfig) error {
	force := s.consumeResolutionDirty()

	// Step 1.
	s.clearGBuffer(frame, force)
	// Step 2.
	s.compactActiveLights(frame.Lights)
	// Step 3.
	s.skybox(frame)
	// Step 4.
	s.resetGBufferLoadOps(true)

	for i := range frame.Views {
		v := &frame.Views[i]
		// Step 5.
		s.clearVisibility(*v, cfg.ClearVisibilityShader)
		// Step 6.
		s.frustumCull(*v, cfg.FrustumCullShader)
		// Step 7.
		s.depthPrepass(frame, *v, cfg.DepthPrepassShader)
		// Step 8.
		if force || len(v.HZB.MipSizes) == 0 {
			v.HZB = NewHZBPyramid(frame.Width, frame.Height)
		}
		ReduceHZB(s.Graph, v.Index, frame.GBuffer.Depth, v.HZB, s.Queue, cfg.HZBReduceShader)
		// Step 9.
		s.resetInstanceCounts(*v, cfg.ResetInstanceCountsShader)
		// Step 10.
		s.occlusionCull(*v, cfg.OcclusionCullShader)
	}

	// Step 11.
	s.computeRasterization(frame)

	for _, v := range frame.Views {
		// Step 12.
		s.gBufferBase(frame, v)
	}
	// Step 13.
	s.transparencyComposite(frame, frame.DeferredLightingShader)
	// Step 14.
	s.lineRenderer(frame)

	// Step 15.
	if frame.AS != nil && cfg.ASVSM != nil {
		a := cfg.ASVSM
		asvsm.Init(s.Queue, a.Histogram, a.Settings, a.Bitmask, a.Requested)
		asvsm.AddPasses(s.Graph, frame.AS, a.Shaders, frame.GBuffer.Depth, a.DenseShadowLights, a.ActiveRequests, a.Views, a.Batches, a.RenderTileBind)
		switch frame.Present.Debug {
		case DebugViewASVSMShadowAtlas:
			asvsm.AddDebugPass(s.Graph, frame.AS, a.DebugShader, frame.GBuffer.Albedo, false)
		case DebugViewASVSMShadowPageTable:
			asvsm.AddDebugPass(s.Graph, frame.AS, a.DebugShader, frame.GBuffer.Albedo, true)
		}
	}

	// Step 16.
	if frame.GI.Enabled && frame.GI.Volume != nil && cfg.DDGI != nil {
		d := cfg.DDGI
		if err := ddgi.Update(s.Graph, frame.GI.Volume, s.Queue, d.Uniforms, d.Shaders, d.Raster); err != nil {
			return err
		}
	}

	// Step 17.
	lightingOutput := frame.GBuffer.Albedo
	s.deferredLighting(frame, lightingOutput)

	postInput := lightingOutput
	if frame.Bloom.Enabled {
		// Step 18.
		params := frame.Bloom.Params
		params.Source = lightingOutput
		params.Queue = s.Queue
		if err := bloom.AddPasses(s.Graph, params); err != nil {
			return err
		}
		postInput = params.Output
	}

	// Step 19.
	finalImage := postInput
	if frame.PostProcess != nil {
		finalImage = frame.PostProcess.Compile(s.Graph, postInput)
	}

	// Step 20.
	presentSource := finalImage
	switch frame.Present.Debug {
	case DebugViewASVSMShadowAtlas, DebugViewASVSMShadowPageTable:
		presentSource = frame.GBuffer.Albedo
	}
	s.present(frame, presentSource)

	// Step 21.
	s.resetGBufferLoadOps(false)
	// Step 22.
	s.clearDirtyFlags(frame, cfg.ClearDirtyFlagsShader)

	return nil
}

// present (step 20) draws a fullscreen pass writing the final image into
// the swapchain. When a debug view is active, source is the G-Buffer
// albedo image the AS-VSM debug pass wrote into instead.
func (s *Strategy) present(frame *FrameData, source rendergraph.Handle) {
	s.Graph.AddPass(common.NewName("fullscreen_present"), rendergraph.FlagGraphics|rendergraph.FlagPresent, rendergraph.Params{
		Inputs:      []rendergraph.Handle{source},
		Outputs:     []rendergraph.Handle{frame.Present.Swapchain},
		ShaderSetup: rendergraph.ShaderSetup{Vertex: frame.Present.Shader, Fragment: frame.Present.Shader},
	}, func(ctx *rendergraph.Context) {
		meshqueue.DrawQuad(ctx.RenderPass)
	})
}
