// Package buffer implements the Buffer GPU resource wrapper: cached
// creation, queue-backed writes, and the N-shadow-buffer CPU readback
// protocol described for buffered readback.
package buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

// MapState models the per-shadow-buffer async readback state machine:
// Unmapped -> MappingPending -> Mapped -> Unmapped. The core never blocks
// on a map; it only peeks the state each frame.
type MapState uint8

const (
	Unmapped MapState = iota
	MappingPending
	Mapped
)

// Config enumerates everything Buffer.Create needs, mirroring the core's
// buffer configuration surface.
type Config struct {
	Name        common.Name
	Size        uint64
	Usage       Usage
	Data        []byte // optional initial contents, written at creation
	CPUReadback bool
	Dispatch    bool // stored only; Create and Write emit no event for it
	Force       bool // destroy-and-recreate if already cached
}

// Buffer wraps a native GPU buffer plus, when configured with
// CPUReadback, the shadow-buffer ring that decouples CPU reads from the
// GPU timeline by the buffered-frame count.
type Buffer interface {
	Name() common.Name
	Native() *wgpu.Buffer
	Size() uint64

	// Write copies data into the buffer at offset via the device queue.
	//
	// Parameters:
	//   - queue: the device queue to write through
	//   - data: source bytes
	//   - offset: destination byte offset
	Write(queue *wgpu.Queue, data []byte, offset uint64)

	// EnqueueShadowCopy records a copyBufferToBuffer from the device buffer
	// into the next shadow slot when CPUReadback is enabled. Nothing in this
	// module calls it: the render graph does not schedule shadow copies.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	EnqueueShadowCopy(encoder *wgpu.CommandEncoder)

	// RequestMap issues an async map of the oldest unmapped shadow slot if
	// one is Unmapped. Returns false if a map is already pending or mapped
	// and unconsumed.
	//
	// Returns:
	//   - bool: true if a new map request was issued
	RequestMap() bool

	// MapState reports the state of the shadow slot most recently requested.
	MapState() MapState

	// ReadMapped copies out of the mapped shadow slot into dst and unmaps
	// it, returning to Unmapped. Returns false if the slot is not Mapped.
	//
	// Parameters:
	//   - dst: destination slice, must be >= buffer size
	//
	// Returns:
	//   - bool: true if data was copied
	ReadMapped(dst []byte) bool

	// Release destroys the native buffer and any shadow buffers.
	Release()
}

type buffer struct {
	name  common.Name
	size  uint64
	usage Usage
	dev   *wgpu.Device
	nat   *wgpu.Buffer

	cpuReadback bool
	shadows     []*wgpu.Buffer
	shadowState []MapState
	shadowCur   int // index of the slot due for this frame's copy
	shadowArmed int // index of the slot a RequestMap/ReadMapped pair targets
}

var _ Buffer = &buffer{}

func toNativeUsage(u Usage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u.Has(UsageVertex) {
		out |= wgpu.BufferUsageVertex
	}
	if u.Has(UsageIndex) {
		out |= wgpu.BufferUsageIndex
	}
	if u.Has(UsageUniform) {
		out |= wgpu.BufferUsageUniform
	}
	if u.Has(UsageStorage) {
		out |= wgpu.BufferUsageStorage
	}
	if u.Has(UsageIndirect) {
		out |= wgpu.BufferUsageIndirect
	}
	if u.Has(UsageCopySrc) {
		out |= wgpu.BufferUsageCopySrc
	}
	if u.Has(UsageCopyDst) {
		out |= wgpu.BufferUsageCopyDst
	}
	if u.Has(UsageMapRead) {
		out |= wgpu.BufferUsageMapRead
	}
	return out
}

// Create fetches or creates the buffer named in cfg.Name from cache. When
// cfg.Force is set, any existing cached buffer is released and rebuilt.
// When cfg.CPUReadback is set, bufferedFrameCount shadow buffers are
// allocated to stage device->CPU copies.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to fetch/store the wrapper in
//   - cfg: buffer configuration
//   - bufferedFrameCount: number of shadow buffers to allocate for readback
//
// Returns:
//   - Buffer: the cached or newly-created buffer wrapper
//   - error: an error if native buffer creation failed
func Create(dev *wgpu.Device, cache resourcecache.Cache, cfg Config, bufferedFrameCount uint32) (Buffer, error) {
	if existing, ok := cache.Fetch(resourcecache.Buffer, cfg.Name); ok && !cfg.Force {
		return existing.(Buffer), nil
	}
	if existing, ok := cache.Fetch(resourcecache.Buffer, cfg.Name); ok && cfg.Force {
		existing.(Buffer).Release()
		cache.Remove(resourcecache.Buffer, cfg.Name)
	}

	usage := toNativeUsage(cfg.Usage) | wgpu.BufferUsageCopyDst
	if cfg.CPUReadback {
		usage |= wgpu.BufferUsageCopySrc
	}

	nat, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            cfg.Name.String(),
		Size:             cfg.Size,
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("buffer: create %s: %w", cfg.Name, err)
	}

	b := &buffer{
		name:        cfg.Name,
		size:        cfg.Size,
		usage:       cfg.Usage,
		dev:         dev,
		nat:         nat,
		cpuReadback: cfg.CPUReadback,
	}

	if cfg.CPUReadback {
		n := int(bufferedFrameCount)
		if n < 1 {
			n = 1
		}
		b.shadows = make([]*wgpu.Buffer, n)
		b.shadowState = make([]MapState, n)
		for i := 0; i < n; i++ {
			shadow, shadowErr := dev.CreateBuffer(&wgpu.BufferDescriptor{
				Label:            fmt.Sprintf("%s shadow %d", cfg.Name, i),
				Size:             cfg.Size,
				Usage:            wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
				MappedAtCreation: false,
			})
			if shadowErr != nil {
				return nil, fmt.Errorf("buffer: create shadow %d for %s: %w", i, cfg.Name, shadowErr)
			}
			b.shadows[i] = shadow
		}
	}

	if len(cfg.Data) > 0 {
		b.Write(dev.GetQueue(), cfg.Data, 0)
	}

	cache.Store(resourcecache.Buffer, cfg.Name, Buffer(b))
	return b, nil
}

func (b *buffer) Name() common.Name    { return b.name }
func (b *buffer) Native() *wgpu.Buffer { return b.nat }
func (b *buffer) Size() uint64         { return b.size }

func (b *buffer) Write(queue *wgpu.Queue, data []byte, offset uint64) {
	queue.WriteBuffer(b.nat, offset, data)
}

func (b *buffer) EnqueueShadowCopy(encoder *wgpu.CommandEncoder) {
	if !b.cpuReadback || len(b.shadows) == 0 {
		return
	}
	dst := b.shadows[b.shadowCur]
	encoder.CopyBufferToBuffer(b.nat, 0, dst, 0, b.size)
	b.shadowCur = (b.shadowCur + 1) % len(b.shadows)
}

func (b *buffer) RequestMap() bool {
	if !b.cpuReadback || len(b.shadows) == 0 {
		return false
	}
	if b.shadowState[b.shadowArmed] != Unmapped {
		return false
	}
	slot := b.shadowArmed
	b.shadowState[slot] = MappingPending
	shadow := b.shadows[slot]
	shadow.MapAsync(wgpu.MapModeRead, 0, b.size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			b.shadowState[slot] = Mapped
		} else {
			b.shadowState[slot] = Unmapped
		}
	})
	return true
}

func (b *buffer) MapState() MapState {
	if !b.cpuReadback || len(b.shadows) == 0 {
		return Unmapped
	}
	return b.shadowState[b.shadowArmed]
}

func (b *buffer) ReadMapped(dst []byte) bool {
	if !b.cpuReadback || len(b.shadows) == 0 {
		return false
	}
	slot := b.shadowArmed
	if b.shadowState[slot] != Mapped {
		return false
	}
	shadow := b.shadows[slot]
	mapped := shadow.GetMappedRange(0, uint(b.size))
	copy(dst, mapped)
	shadow.Unmap()
	b.shadowState[slot] = Unmapped
	b.shadowArmed = (b.shadowArmed + 1) % len(b.shadows)
	return true
}

func (b *buffer) Release() {
	for _, s := range b.shadows {
		s.Release()
	}
	b.nat.Release()
}
