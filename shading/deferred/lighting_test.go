package deferred

import (
	"testing"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/meshqueue"
)

// These guard-clause tests leave s.Graph nil: the methods under test must
// return before ever dereferencing it, otherwise they panic.

func TestLineRendererSkipsWhenDisabled(t *testing.T) {
	s := &Strategy{}
	frame := &FrameData{Line: LineData{Enabled: false}}
	s.lineRenderer(frame)
}

func TestLineRendererRecordsPassesWhenEnabled(t *testing.T) {
	g := newTestGraph()
	s := &Strategy{Graph: g}
	frame := &FrameData{
		GBuffer: GBuffer{Albedo: g.RegisterImage(common.NewName("albedo")), Depth: g.RegisterImage(common.NewName("depth"))},
		Line: LineData{
			Enabled:          true,
			TransformShader:  common.NewName("line_transform"),
			VertexShader:     common.NewName("line_vs"),
			FragmentShader:   common.NewName("line_fs"),
			LineTransforms:   g.RegisterBuffer(common.NewName("line_transforms")),
			VisibleLineCount: g.RegisterBuffer(common.NewName("visible_line_count")),
			RawLines:         g.RegisterBuffer(common.NewName("raw_lines")),
		},
	}
	// Must not panic when the graph is real but the queue/device backing
	// it are nil: AddPass only touches the pass/resource bookkeeping.
	s.lineRenderer(frame)
}

func TestClearDirtyFlagsSkipsWhenHandleIsZero(t *testing.T) {
	s := &Strategy{}
	frame := &FrameData{EntityDirtyFlags: 0}
	s.clearDirtyFlags(frame, common.NewName("clear_dirty_flags"))
}

func TestDeferredLightingOmitsOptionalInputsWhenAbsent(t *testing.T) {
	g := newTestGraph()
	s := &Strategy{Graph: g}
	frame := &FrameData{
		GBuffer: GBuffer{
			Albedo: g.RegisterImage(common.NewName("albedo")), Emissive: g.RegisterImage(common.NewName("emissive")),
			SMRA: g.RegisterImage(common.NewName("smra")), Normal: g.RegisterImage(common.NewName("normal")),
			Position: g.RegisterImage(common.NewName("position")), EntityID: g.RegisterImage(common.NewName("entity_id")),
			TransparencyAccum: g.RegisterImage(common.NewName("accum")), TransparencyReveal: g.RegisterImage(common.NewName("reveal")),
			Depth: g.RegisterImage(common.NewName("depth")),
		},
		Lights:                 LightCompaction{DenseLights: g.RegisterBuffer(common.NewName("dense_lights"))},
		DeferredLightingShader: common.NewName("deferred_lighting"),
	}
	// GI and AS are both nil; must not dereference frame.GI.Volume or frame.AS.
	output := g.RegisterImage(common.NewName("output"))
	s.deferredLighting(frame, output)
}

func TestGBufferBaseSplitsOpaqueAndTransparentOutputs(t *testing.T) {
	g := newTestGraph()
	s := &Strategy{Graph: g}
	frame := &FrameData{
		GBuffer: GBuffer{
			SMRA: g.RegisterImage(common.NewName("smra")), Position: g.RegisterImage(common.NewName("position")),
			Normal: g.RegisterImage(common.NewName("normal")), Emissive: g.RegisterImage(common.NewName("emissive")),
			EntityID: g.RegisterImage(common.NewName("entity_id")), Albedo: g.RegisterImage(common.NewName("albedo")),
			TransparencyAccum: g.RegisterImage(common.NewName("accum")), TransparencyReveal: g.RegisterImage(common.NewName("reveal")),
			Depth: g.RegisterImage(common.NewName("depth")),
		},
		Buckets: []MaterialBucket{
			{Name: common.NewName("opaque_bucket"), Family: meshqueue.FamilyOpaque, VertexShader: common.NewName("vs"), FragmentShader: common.NewName("fs")},
		},
	}
	s.gBufferBase(frame, ViewData{})
}
