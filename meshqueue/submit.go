package meshqueue

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
)

// SubmitOptions filters which batches a submission call draws.
type SubmitOptions struct {
	// SkipMaterialBind skips rebinding the material bind group between
	// batches, for passes (e.g. depth pre-pass) that don't read material
	// textures.
	SkipMaterialBind bool
	OpaqueOnly       bool
	DepthOnly        bool
}

func (o SubmitOptions) includes(b Batch) bool {
	if o.OpaqueOnly && b.Family != FamilyOpaque {
		return false
	}
	return true
}

// MaterialBinder binds the material bind group for a batch's MaterialID.
// Passes that set SkipMaterialBind never invoke it.
type MaterialBinder func(pass *wgpu.RenderPassEncoder, materialID, meshID common.Name)

const indirectDrawStride = 5 * wordSize

// SubmitIndexedIndirectDraws issues one DrawIndexedIndirect per batch in
// view's indirect-draw table, in upload order. indirectOverride, when
// non-nil, replaces view.IndirectDraw as the source of draw arguments
// (used by passes that draw from a GPU-culled copy rather than the
// CPU-authored table).
//
// Parameters:
//   - pass: the active render pass encoder
//   - view: the per-view indirect-draw state
//   - batches: the batches to iterate, in the order they were uploaded
//   - opts: filters and per-batch bind skipping
//   - indirectOverride: an alternate indirect-draw buffer, or nil to use view.IndirectDraw
func SubmitIndexedIndirectDraws(pass *wgpu.RenderPassEncoder, view *View, batches []Batch, opts SubmitOptions, indirectOverride *wgpu.Buffer) {
	source := view.IndirectDraw.Native()
	if indirectOverride != nil {
		source = indirectOverride
	}
	for i, b := range batches {
		if !opts.includes(b) {
			continue
		}
		pass.DrawIndexedIndirect(source, uint64(i)*indirectDrawStride)
	}
}

// SubmitMaterialIndexedIndirectDraws is SubmitIndexedIndirectDraws plus a
// material bind group rebind before each batch, unless opts.SkipMaterialBind
// is set.
//
// Parameters:
//   - pass: the active render pass encoder
//   - view: the per-view indirect-draw state
//   - batches: the batches to iterate
//   - opts: filters and per-batch bind skipping
//   - bind: invoked per batch to bind its material, unless skipped
func SubmitMaterialIndexedIndirectDraws(pass *wgpu.RenderPassEncoder, view *View, batches []Batch, opts SubmitOptions, bind MaterialBinder) {
	for i, b := range batches {
		if !opts.includes(b) {
			continue
		}
		if !opts.SkipMaterialBind && bind != nil {
			bind(pass, b.MaterialID, b.MeshID)
		}
		pass.DrawIndexedIndirect(view.IndirectDraw.Native(), uint64(i)*indirectDrawStride)
	}
}

// SubmitIndexedDraws draws every batch with a direct (non-indirect)
// DrawIndexed call, for small counts where the indirect dispatch overhead
// isn't worth it (shadow casters, debug overlays).
//
// Parameters:
//   - pass: the active render pass encoder
//   - batches: the batches to draw
//   - opts: filters
func SubmitIndexedDraws(pass *wgpu.RenderPassEncoder, batches []Batch, opts SubmitOptions) {
	for _, b := range batches {
		if !opts.includes(b) {
			continue
		}
		pass.DrawIndexed(b.IndexCount, b.InstanceCount, b.FirstIndex, b.BaseVertex, b.BaseInstance)
	}
}

// DrawQuad issues a single non-indexed full-screen-triangle-style quad
// draw: 6 vertices (two triangles), one instance, via a vertex shader that
// synthesizes positions from the vertex index.
//
// Parameters:
//   - pass: the active render pass encoder
func DrawQuad(pass *wgpu.RenderPassEncoder) {
	pass.Draw(6, 1, 0, 0)
}

// DrawCube issues a single indexed cube draw: 36 indices, one instance,
// against an already-bound unit-cube index/vertex buffer pair.
//
// Parameters:
//   - pass: the active render pass encoder
func DrawCube(pass *wgpu.RenderPassEncoder) {
	pass.DrawIndexed(36, 1, 0, 0, 0)
}
