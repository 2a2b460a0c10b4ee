package meshqueue

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

const wordSize = 4

// growthFactor is the geometric growth applied to a table's buffer when a
// write would overflow its current capacity.
const growthFactor = 2

// View is one view's per-frame indirect-draw state: the indirect-draw
// table GPU culling reads and writes, and the two visible-instance
// buffers (pre-occlusion and post-occlusion survivors) the two-pass
// culling passes populate.
type View struct {
	ViewIndex int

	IndirectDraw        buffer.Buffer
	VisiblePreOcclusion buffer.Buffer
	Visible             buffer.Buffer

	drawCapacityWords     uint32
	instanceCapacityWords uint32

	// drawCursor/instanceCursor track how many words of the latest
	// SortAndBatch output have been uploaded, bounding how many words a
	// single Upload call writes so one oversized frame's tables don't
	// stall the queue on a single submission.
	drawCursor     int
	instanceCursor int

	// Dirty is set whenever a buffer is reallocated, signalling that any
	// bind group referencing it must be rebuilt.
	Dirty bool
}

// AllocateViewData creates the indirect-draw and visible-instance buffers
// for viewIndex, sized for initialBatches batches and initialInstances
// object instances.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to store the buffers in
//   - viewIndex: the view this data belongs to
//   - initialBatches: initial indirect-draw table capacity, in batches
//   - initialInstances: initial visible-instance buffer capacity, in instances
//
// Returns:
//   - *View: the newly-allocated per-view state
//   - error: an error if native buffer creation failed
func AllocateViewData(dev *wgpu.Device, cache resourcecache.Cache, viewIndex int, initialBatches, initialInstances uint32) (*View, error) {
	v := &View{ViewIndex: viewIndex}

	drawWords := initialBatches * 5
	if drawWords == 0 {
		drawWords = 5
	}
	instanceWords := initialInstances
	if instanceWords == 0 {
		instanceWords = 1
	}

	var err error
	v.IndirectDraw, err = buffer.Create(dev, cache, buffer.Config{
		Name:  common.NewName(fmt.Sprintf("meshqueue.indirect_draw.view%d", viewIndex)),
		Size:  uint64(drawWords) * wordSize,
		Usage: buffer.UsageIndirect | buffer.UsageStorage,
	}, 1)
	if err != nil {
		return nil, fmt.Errorf("meshqueue: allocate indirect draw buffer for view %d: %w", viewIndex, err)
	}
	v.drawCapacityWords = drawWords

	v.VisiblePreOcclusion, err = buffer.Create(dev, cache, buffer.Config{
		Name:  common.NewName(fmt.Sprintf("meshqueue.visible_pre_occlusion.view%d", viewIndex)),
		Size:  uint64(instanceWords) * wordSize,
		Usage: buffer.UsageStorage,
	}, 1)
	if err != nil {
		return nil, fmt.Errorf("meshqueue: allocate pre-occlusion visibility buffer for view %d: %w", viewIndex, err)
	}

	v.Visible, err = buffer.Create(dev, cache, buffer.Config{
		Name:  common.NewName(fmt.Sprintf("meshqueue.visible.view%d", viewIndex)),
		Size:  uint64(instanceWords) * wordSize,
		Usage: buffer.UsageStorage,
	}, 1)
	if err != nil {
		return nil, fmt.Errorf("meshqueue: allocate visibility buffer for view %d: %w", viewIndex, err)
	}
	v.instanceCapacityWords = instanceWords

	return v, nil
}

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*wordSize)
	for i, w := range words {
		out[i*4+0] = byte(w)
		out[i*4+1] = byte(w >> 8)
		out[i*4+2] = byte(w >> 16)
		out[i*4+3] = byte(w >> 24)
	}
	return out
}

func nextCapacity(have, need uint32) uint32 {
	capacity := have
	if capacity == 0 {
		capacity = 1
	}
	for capacity < need {
		capacity *= growthFactor
	}
	return capacity
}

// UploadIndirectDraws writes up to budget words of the indirect-draw
// table, resuming from where the previous call left off so a table
// larger than one frame's write budget is spread over several frames.
// When drawWords no longer fits the table's capacity the buffer is grown
// geometrically and Dirty is set, forcing a full rewrite from word 0.
//
// Parameters:
//   - dev: the native device, used only on reallocation
//   - cache: the resource cache, used only on reallocation
//   - queue: the device queue to write through
//   - drawWords: the full current indirect-draw table, from Queue.IndirectDrawWords
//   - budget: maximum words to write this call
//
// Returns:
//   - error: an error if reallocation failed
func (v *View) UploadIndirectDraws(dev *wgpu.Device, cache resourcecache.Cache, queue *wgpu.Queue, drawWords []uint32, budget int) error {
	need := uint32(len(drawWords))
	if need > v.drawCapacityWords {
		grown := nextCapacity(v.drawCapacityWords, need)
		recreated, err := buffer.Create(dev, cache, buffer.Config{
			Name:  v.IndirectDraw.Name(),
			Size:  uint64(grown) * wordSize,
			Usage: buffer.UsageIndirect | buffer.UsageStorage,
			Force: true,
		}, 1)
		if err != nil {
			return fmt.Errorf("meshqueue: grow indirect draw buffer for view %d: %w", v.ViewIndex, err)
		}
		v.IndirectDraw = recreated
		v.drawCapacityWords = grown
		v.drawCursor = 0
		v.Dirty = true
	}

	end := v.drawCursor + budget
	if end > len(drawWords) {
		end = len(drawWords)
	}
	if end > v.drawCursor {
		chunk := drawWords[v.drawCursor:end]
		v.IndirectDraw.Write(queue, wordsToBytes(chunk), uint64(v.drawCursor)*wordSize)
	}
	v.drawCursor = end
	if v.drawCursor >= len(drawWords) {
		v.drawCursor = 0
	}
	return nil
}

// UploadObjectInstances writes up to budget words of the object-instance
// table with the same bounded, resumable, grow-on-overflow behavior as
// UploadIndirectDraws.
func (v *View) UploadObjectInstances(dev *wgpu.Device, cache resourcecache.Cache, queue *wgpu.Queue, instanceWords []uint32, budget int) error {
	need := uint32(len(instanceWords))
	if need > v.instanceCapacityWords {
		grown := nextCapacity(v.instanceCapacityWords, need)
		recreatedPre, err := buffer.Create(dev, cache, buffer.Config{
			Name:  v.VisiblePreOcclusion.Name(),
			Size:  uint64(grown) * wordSize,
			Usage: buffer.UsageStorage,
			Force: true,
		}, 1)
		if err != nil {
			return fmt.Errorf("meshqueue: grow pre-occlusion visibility buffer for view %d: %w", v.ViewIndex, err)
		}
		recreated, err := buffer.Create(dev, cache, buffer.Config{
			Name:  v.Visible.Name(),
			Size:  uint64(grown) * wordSize,
			Usage: buffer.UsageStorage,
			Force: true,
		}, 1)
		if err != nil {
			return fmt.Errorf("meshqueue: grow visibility buffer for view %d: %w", v.ViewIndex, err)
		}
		v.VisiblePreOcclusion = recreatedPre
		v.Visible = recreated
		v.instanceCapacityWords = grown
		v.instanceCursor = 0
		v.Dirty = true
	}

	end := v.instanceCursor + budget
	if end > len(instanceWords) {
		end = len(instanceWords)
	}
	if end > v.instanceCursor {
		chunk := instanceWords[v.instanceCursor:end]
		bytes := wordsToBytes(chunk)
		v.VisiblePreOcclusion.Write(queue, bytes, uint64(v.instanceCursor)*wordSize)
	}
	v.instanceCursor = end
	if v.instanceCursor >= len(instanceWords) {
		v.instanceCursor = 0
	}
	return nil
}

// ClearDirty acknowledges a reallocation; called by the bind group owner
// after rebuilding whatever referenced the grown buffer.
func (v *View) ClearDirty() { v.Dirty = false }
