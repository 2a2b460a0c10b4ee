// Package deferred composes the per-frame deferred-shading pass graph:
// G-Buffer fill, two-pass GPU culling, HZB generation, material-bucketed
// G-Buffer base passes, AS-VSM shadows, DDGI, deferred lighting, bloom,
// the post-process chain, and present.
package deferred

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/computequeue"
	"github.com/lumenforge/framegraph/meshqueue"
	"github.com/lumenforge/framegraph/rendergraph"
	"github.com/lumenforge/framegraph/shading/asvsm"
	"github.com/lumenforge/framegraph/shading/bloom"
	"github.com/lumenforge/framegraph/shading/ddgi"
	"github.com/lumenforge/framegraph/shading/postprocess"
)

// DebugView selects an alternate image the present pass reads from
// instead of the post-process chain's output, for inspecting internal
// buffers.
type DebugView uint8

const (
	DebugViewNone DebugView = iota
	DebugViewASVSMShadowAtlas
	DebugViewASVSMShadowPageTable
)

// GBuffer names the nine render targets cleared once per frame and
// written by the G-Buffer base passes.
type GBuffer struct {
	Albedo             rendergraph.Handle
	Emissive           rendergraph.Handle
	SMRA               rendergraph.Handle // specular/metallic/roughness/AO
	Normal             rendergraph.Handle
	Position           rendergraph.Handle
	EntityID           rendergraph.Handle
	TransparencyAccum  rendergraph.Handle
	TransparencyReveal rendergraph.Handle
	Depth              rendergraph.Handle
}

func (g GBuffer) colorTargets() []rendergraph.Handle {
	return []rendergraph.Handle{g.Albedo, g.Emissive, g.SMRA, g.Normal, g.Position, g.EntityID, g.TransparencyAccum, g.TransparencyReveal}
}

// ViewData is one active camera/view's per-frame culling/visibility state.
type ViewData struct {
	Index uint32
	Mesh  *meshqueue.View

	// HZB is the hierarchical-Z mip pyramid built from Depth each frame;
	// len(HZB.MipSizes) == HZBMipCount(width, height).
	HZB HZBPyramid

	AABBBuffer          rendergraph.Handle // entity AABBs
	AABBNodeIndexBuffer rendergraph.Handle // per-instance AABB-node indices
}

// MaterialBucket is one material-family/shader-permutation group the
// G-Buffer base pass draws, per spec's "one graphics pass per material
// bucket".
type MaterialBucket struct {
	Name           common.Name
	Family         meshqueue.MaterialFamily
	Batches        []meshqueue.Batch
	VertexShader   common.Name
	FragmentShader common.Name
	Bind           meshqueue.MaterialBinder
}

// LineData is the optional debug/gizmo line renderer's per-frame state.
type LineData struct {
	Enabled          bool
	TransformShader  common.Name
	VertexShader     common.Name
	FragmentShader   common.Name
	LineTransforms   rendergraph.Handle
	VisibleLineCount rendergraph.Handle
	RawLines         rendergraph.Handle
}

// FrameData carries everything one Compose call needs: the resources
// allocated for this frame/resolution plus the scene content to draw.
type FrameData struct {
	Width, Height uint32

	GBuffer GBuffer
	Views   []ViewData

	Skybox struct {
		Enabled        bool
		Cubemap        rendergraph.Handle
		VertexShader   common.Name
		FragmentShader common.Name
	}

	DepthPrepassEnabled bool
	Buckets             []MaterialBucket

	Lights LightCompaction
	Line   LineData

	AS    *asvsm.State
	GI    struct {
		Enabled bool
		Volume  *ddgi.ProbeVolume
	}

	DeferredLightingShader common.Name

	Bloom struct {
		Enabled bool
		Params  bloom.Params
	}
	PostProcess *postprocess.Chain

	Present struct {
		Swapchain rendergraph.Handle
		Shader    common.Name
		Debug     DebugView
	}

	ComputeRaster *computequeue.ComputeRasterTaskQueue

	EntityDirtyFlags rendergraph.Handle
}

// LightCompaction is the per-frame sparse-to-dense light packing state.
type LightCompaction struct {
	Shader        common.Name
	SparseLights  rendergraph.Handle
	DenseLights   rendergraph.Handle
	ShadowLights  rendergraph.Handle
	Counts        rendergraph.Handle
	SparseCount   uint32
}

const lightCompactionWorkgroupSize = 128

// Strategy owns the render graph and mesh/compute queues the deferred
// pass sequence is compiled against each frame.
type Strategy struct {
	Graph   *rendergraph.Graph
	Mesh    *meshqueue.Queue
	Compute *computequeue.ComputeTaskQueue
	Queue   *wgpu.Queue

	// resolutionDirty is set by NotifyResolutionChange and consumed by the
	// next Compose call, which then rebuilds each view's HZB mip sizes.
	resolutionDirty bool
}

// New creates a Strategy around an already-constructed graph and queues.
func New(graph *rendergraph.Graph, mesh *meshqueue.Queue, compute *computequeue.ComputeTaskQueue, queue *wgpu.Queue) *Strategy {
	return &Strategy{Graph: graph, Mesh: mesh, Compute: compute, Queue: queue}
}

// NotifyResolutionChange records that the swapchain resized; the next
// Compose call rebuilds each view's HZB mip sizes (NewHZBPyramid) for the
// frame's size. The flag also reaches clearGBuffer, which does not use it;
// no cached GPU object is destroyed or recreated, and the GI volume is not
// touched.
func (s *Strategy) NotifyResolutionChange() {
	s.resolutionDirty = true
}

func (s *Strategy) consumeResolutionDirty() bool {
	dirty := s.resolutionDirty
	s.resolutionDirty = false
	return dirty
}
