package meshqueue

import (
	"sort"

	"github.com/lumenforge/framegraph/common"
)

// szudzik pairs two non-negative integers into one with no collisions,
// used to fold (MeshID, MaterialID) into a single dedup key per entity.
func szudzik(a, b uint64) uint64 {
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

type taskKey struct {
	entity uint32
	pair   uint64
}

// Queue accumulates per-entity mesh draw tasks across a frame and turns
// them into coalesced indirect-draw batches on demand.
type Queue struct {
	lookups Lookups

	tasks     map[taskKey]*MeshTask
	order     []taskKey // insertion order, for stable iteration before sort
	needSort  bool

	batches         []Batch
	objectInstances []ObjectInstanceEntry
}

// New creates an empty task queue. lookups supplies the mesh geometry,
// material family, and ECS row data SortAndBatch needs; the queue itself
// holds no mesh, material, or ECS state.
func New(lookups Lookups) *Queue {
	return &Queue{
		lookups: lookups,
		tasks:   make(map[taskKey]*MeshTask),
	}
}

// NewTask records entity's request to draw meshID with materialID,
// deduplicating on (meshID, materialID) per entity: a second call with the
// same pair for the same entity increments that task's instance count
// instead of creating a duplicate. resort forces the next SortAndBatch
// regardless of whether anything actually changed.
//
// Parameters:
//   - meshID: the mesh to draw
//   - entity: the requesting entity id
//   - materialID: the material to draw with
//   - resort: force NeedsSort true even on an idempotent call
func (q *Queue) NewTask(meshID common.Name, entity uint32, materialID common.Name, resort bool) {
	pair := szudzik(uint64(meshID), uint64(materialID))
	key := taskKey{entity: entity, pair: pair}

	if existing, ok := q.tasks[key]; ok {
		existing.InstanceCount++
	} else {
		q.tasks[key] = &MeshTask{
			MeshID:        meshID,
			Entity:        entity,
			MaterialID:    materialID,
			InstanceCount: 1,
		}
		q.order = append(q.order, key)
		q.needSort = true
	}
	if resort {
		q.needSort = true
	}
}

// Remove drops every task belonging to entity.
//
// Parameters:
//   - entity: the entity whose tasks should be dropped
func (q *Queue) Remove(entity uint32) {
	removed := false
	kept := q.order[:0]
	for _, key := range q.order {
		if key.entity == entity {
			delete(q.tasks, key)
			removed = true
			continue
		}
		kept = append(kept, key)
	}
	q.order = kept
	if removed {
		q.needSort = true
	}
}

// NeedsSort reports whether SortAndBatch has unprocessed changes.
func (q *Queue) NeedsSort() bool { return q.needSort }

// SortAndBatch orders all current tasks by (MeshID, MaterialID), coalesces
// consecutive same-pair tasks into batches, re-sorts the resulting batches
// by material family (Opaque before Transparent, stable otherwise), and
// flattens each batch's entities into the object-instance table in batch
// order. Invariant: the sum of every batch's InstanceCount equals
// len(ObjectInstances()) afterward.
func (q *Queue) SortAndBatch() {
	tasks := make([]*MeshTask, 0, len(q.tasks))
	for _, key := range q.order {
		tasks = append(tasks, q.tasks[key])
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].MeshID != tasks[j].MeshID {
			return tasks[i].MeshID < tasks[j].MeshID
		}
		return tasks[i].MaterialID < tasks[j].MaterialID
	})

	batches := make([]Batch, 0)
	var cumulative uint32
	for _, t := range tasks {
		if n := len(batches); n > 0 {
			last := &batches[n-1]
			if last.MeshID == t.MeshID && last.MaterialID == t.MaterialID {
				last.InstanceCount += t.InstanceCount
				for k := uint32(0); k < t.InstanceCount; k++ {
					last.Entities = append(last.Entities, t.Entity)
				}
				cumulative += t.InstanceCount
				continue
			}
		}
		entities := make([]uint32, 0, t.InstanceCount)
		for k := uint32(0); k < t.InstanceCount; k++ {
			entities = append(entities, t.Entity)
		}
		geom, _ := q.lookups.Mesh(t.MeshID)
		batches = append(batches, Batch{
			MeshID:        t.MeshID,
			MaterialID:    t.MaterialID,
			IndexBuffer:   geom.IndexBuffer,
			FirstIndex:    geom.FirstIndex,
			IndexCount:    geom.IndexCount,
			BaseVertex:    geom.BaseVertex,
			BaseInstance:  cumulative,
			InstanceCount: t.InstanceCount,
			Entities:      entities,
		})
		cumulative += t.InstanceCount
	}

	for i := range batches {
		batches[i].Family = q.lookups.Family(batches[i].MaterialID)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].Family < batches[j].Family
	})

	// BaseInstance was computed against the mesh/material sort order, not
	// the post-family-sort order; recompute cumulative offsets now that
	// batches sit in their final upload order.
	cumulative = 0
	for i := range batches {
		batches[i].BaseInstance = cumulative
		cumulative += batches[i].InstanceCount
	}

	objectInstances := make([]ObjectInstanceEntry, 0, cumulative)
	for batchIndex := range batches {
		for _, entity := range batches[batchIndex].Entities {
			objectInstances = append(objectInstances, ObjectInstanceEntry{
				BatchIndex: uint32(batchIndex),
				Row:        q.lookups.Row(entity),
			})
		}
	}

	q.batches = batches
	q.objectInstances = objectInstances
	q.needSort = false
}

// Batches returns the batches produced by the most recent SortAndBatch.
func (q *Queue) Batches() []Batch { return q.batches }

// ObjectInstances returns the flattened per-entity rows produced by the
// most recent SortAndBatch, in batch order.
func (q *Queue) ObjectInstances() []ObjectInstanceEntry { return q.objectInstances }

// IndirectDrawWords encodes the current batches as the GPU indirect-draw
// table: 5 uint32s per batch (index_count, instance_count, first_index,
// base_vertex, base_instance). instance_count is always written zero; the
// GPU cull passes increment it atomically per surviving instance.
func (q *Queue) IndirectDrawWords() []uint32 {
	words := make([]uint32, 0, len(q.batches)*5)
	for _, b := range q.batches {
		words = append(words,
			b.IndexCount,
			0,
			b.FirstIndex,
			uint32(b.BaseVertex),
			b.BaseInstance,
		)
	}
	return words
}

// ObjectInstanceWords encodes the current object-instance table: 2 uint32s
// per entry (batch_index, row).
func (q *Queue) ObjectInstanceWords() []uint32 {
	words := make([]uint32, 0, len(q.objectInstances)*2)
	for _, e := range q.objectInstances {
		words = append(words, e.BatchIndex, e.Row)
	}
	return words
}
