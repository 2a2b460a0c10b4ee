// Package meshqueue implements the Mesh Task Queue: per-frame mesh draw
// collection, Szudzik-keyed deduplication, sort-and-batch into
// indirect-draw batches, and per-view visibility buffer allocation.
package meshqueue

import "github.com/lumenforge/framegraph/common"

// MaterialFamily orders batches within the sorted batch list: every
// Opaque batch precedes every Transparent one.
type MaterialFamily uint8

const (
	FamilyOpaque MaterialFamily = iota
	FamilyTransparent
)

// MeshTask is one entity's request to draw a mesh with a material.
// Dedup key is (MeshID, MaterialID) per Entity.
type MeshTask struct {
	MeshID        common.Name
	Entity        uint32
	MaterialID    common.Name
	InstanceCount uint32
}

// Batch is a coalesced run of tasks sharing (MeshID, MaterialID), ready to
// upload as one indirect-draw table entry.
type Batch struct {
	MeshID       common.Name
	MaterialID   common.Name
	IndexBuffer  common.Name
	FirstIndex   uint32
	IndexCount   uint32
	BaseVertex   int32
	BaseInstance uint32
	// InstanceCount is always written as zero to the GPU indirect table;
	// the two-pass culling compute passes increment it atomically. This
	// field holds the CPU-known total for invariant checking only.
	InstanceCount uint32
	Family        MaterialFamily
	Entities      []uint32
}

// ObjectInstanceEntry maps one flattened entity draw to its batch and ECS
// storage row.
type ObjectInstanceEntry struct {
	BatchIndex uint32
	Row        uint32
}

// MeshGeometry is the per-mesh index-buffer metadata SortAndBatch needs to
// populate a batch's indirect-draw fields. Supplied by the caller's mesh
// registry, which the queue itself does not own.
type MeshGeometry struct {
	IndexBuffer common.Name
	FirstIndex  uint32
	IndexCount  uint32
	BaseVertex  int32
}

// Lookups bundles the external data sources SortAndBatch consults: mesh
// geometry by id, material family by id, and ECS storage row by entity.
// The queue holds only Names and entity ids; it never owns mesh, material,
// or ECS state.
type Lookups struct {
	Mesh   func(meshID common.Name) (MeshGeometry, bool)
	Family func(materialID common.Name) MaterialFamily
	Row    func(entity uint32) uint32
}
