package asvsm

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
)

// fakeBuffer is a minimal buffer.Buffer that just records Write calls,
// for exercising Init's CPU-side clears without a real device.
type fakeBuffer struct {
	name       common.Name
	size       uint64
	lastData   []byte
	lastOffset uint64
	writeCalls int
}

func (f *fakeBuffer) Name() common.Name { return f.name }
func (f *fakeBuffer) Native() *wgpu.Buffer { return nil }
func (f *fakeBuffer) Size() uint64 { return f.size }
func (f *fakeBuffer) Write(queue *wgpu.Queue, data []byte, offset uint64) {
	f.writeCalls++
	f.lastData = data
	f.lastOffset = offset
}
func (f *fakeBuffer) EnqueueShadowCopy(encoder *wgpu.CommandEncoder) {}
func (f *fakeBuffer) RequestMap() bool                               { return false }
func (f *fakeBuffer) MapState() buffer.MapState                      { return buffer.Unmapped }
func (f *fakeBuffer) ReadMapped(dst []byte) bool                     { return false }
func (f *fakeBuffer) Release()                                       {}

var _ buffer.Buffer = &fakeBuffer{}

func TestInitZeroFillsFullBuffersAndOnlyCountHeaderForRequested(t *testing.T) {
	histogram := &fakeBuffer{size: 64}
	settings := &fakeBuffer{size: 16}
	bitmask := &fakeBuffer{size: 512}
	requested := &fakeBuffer{size: 1 + DefaultMaxRequestsPerView*3*4}

	Init(nil, histogram, settings, bitmask, requested)

	if len(histogram.lastData) != 64 {
		t.Errorf("expected histogram to be zero-filled for its full %d-byte size, got %d", 64, len(histogram.lastData))
	}
	if len(settings.lastData) != 16 {
		t.Errorf("expected settings buffer to be zero-filled fully, got %d", len(settings.lastData))
	}
	if len(bitmask.lastData) != 512 {
		t.Errorf("expected bitmask to be zero-filled fully, got %d", len(bitmask.lastData))
	}
	if len(requested.lastData) != 4 {
		t.Errorf("expected only the 4-byte count header of requested to be cleared, got %d bytes", len(requested.lastData))
	}
	for _, b := range [][]byte{histogram.lastData, settings.lastData, bitmask.lastData, requested.lastData} {
		for _, v := range b {
			if v != 0 {
				t.Fatalf("expected all-zero clear data, found non-zero byte")
			}
		}
	}
}

func TestActiveTileCountUnavailableBeforeFirstReadback(t *testing.T) {
	owner := &fakeOwner{name: common.NewName("requested")}
	a := NewActiveTileCount(owner)
	if got := a.Count(); got != 0 {
		t.Errorf("expected Count()==0 before any readback landed, got %d", got)
	}
}

// fakeOwner is a minimal readback.Owner for ActiveTileCount tests.
type fakeOwner struct {
	name common.Name
}

func (f *fakeOwner) Name() common.Name         { return f.name }
func (f *fakeOwner) RequestMap() bool          { return true }
func (f *fakeOwner) MapState() buffer.MapState { return buffer.Unmapped }
func (f *fakeOwner) ReadMapped(dst []byte) bool { return false }
