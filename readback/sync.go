// Package readback implements the buffered CPU-readback synchronizer: it
// collects buffers that requested a readback this frame and drains their
// mapped shadow slots once the GPU timeline has caught up, decoupling CPU
// reads from the device by exactly the buffered-frame count.
package readback

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
)

// Owner is anything that can stage and hand back its own readback bytes.
// gpu/buffer.Buffer satisfies this directly; callers needing a named,
// per-frame latest-value view wrap a Buffer in an Entry (see NewEntry).
type Owner interface {
	Name() common.Name
	RequestMap() bool
	MapState() buffer.MapState
	ReadMapped(dst []byte) bool
}

// Entry pairs an Owner with the destination bytes its latest readback lands
// in, plus whether that destination has ever been populated.
type Entry struct {
	Owner     Owner
	Dst       []byte
	available bool
}

// NewEntry wraps owner with a same-size destination buffer.
//
// Parameters:
//   - owner: the buffer to read back from
//   - size: byte length to allocate for Dst
func NewEntry(owner Owner, size uint64) *Entry {
	return &Entry{Owner: owner, Dst: make([]byte, size)}
}

// Available reports whether at least one readback has landed in Dst.
func (e *Entry) Available() bool { return e.available }

// BufferSync collects per-frame readback requests and drains them once
// mapped, spreading the await work for many simultaneously-requested
// buffers across a worker pool so one slow map doesn't stall the others.
type BufferSync struct {
	mu      sync.Mutex
	pending map[common.Name]*Entry
	pool    worker.DynamicWorkerPool
}

// New creates a BufferSync backed by a worker pool sized for workers
// concurrent readback drains.
//
// Parameters:
//   - workers: number of concurrent drain workers
func New(workers int) *BufferSync {
	if workers < 1 {
		workers = 1
	}
	return &BufferSync{
		pending: make(map[common.Name]*Entry),
		pool:    worker.NewDynamicWorkerPool(workers, 256, time.Second),
	}
}

// RequestReadback enqueues owner for readback this frame. Re-requesting an
// already-pending owner is a no-op; the caller keeps entry to read
// Dst/Available once ProcessReadbacks has run.
//
// Parameters:
//   - entry: the owner/destination pair to track
func (s *BufferSync) RequestReadback(entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[entry.Owner.Name()]; ok {
		return
	}
	s.pending[entry.Owner.Name()] = entry
	entry.Owner.RequestMap()
}

// ProcessReadbacks drains every pending entry whose shadow slot has become
// mapped, copying into Dst and re-arming the next map request. Entries
// still MappingPending are left in the pending set for a future call,
// retaining the prior frame's Dst contents per the stale-read-on-race
// policy.
func (s *BufferSync) ProcessReadbacks() {
	s.mu.Lock()
	entries := make([]*Entry, 0, len(s.pending))
	for _, e := range s.pending {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for i, e := range entries {
		if e.Owner.MapState() != buffer.Mapped {
			continue
		}
		wg.Add(1)
		entry := e
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if entry.Owner.ReadMapped(entry.Dst) {
					entry.available = true
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.mu.Lock()
	for _, e := range s.pending {
		if e.Owner.MapState() == buffer.Unmapped {
			e.Owner.RequestMap()
		}
	}
	s.mu.Unlock()
}

// Cancel stops tracking owner, e.g. when its buffer is destroyed.
//
// Parameters:
//   - name: the Name of the buffer to stop tracking
func (s *BufferSync) Cancel(name common.Name) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, name)
}
