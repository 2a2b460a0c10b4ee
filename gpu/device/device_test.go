package device

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestAcquireSurfaceTextureRejectsDoubleAcquire(t *testing.T) {
	d := &device{acquiredTexture: &wgpu.Texture{}}
	_, _, err := d.AcquireSurfaceTexture()
	if err == nil {
		t.Errorf("expected an error when a previous surface texture has not been presented")
	}
}

func TestSupportsHalfFloatReflectsField(t *testing.T) {
	d := &device{halfFloat: true}
	if !d.SupportsHalfFloat() {
		t.Errorf("expected SupportsHalfFloat() to report true when halfFloat is set")
	}
	d2 := &device{halfFloat: false}
	if d2.SupportsHalfFloat() {
		t.Errorf("expected SupportsHalfFloat() to report false by default")
	}
}

func TestPresentIsNoOpWithoutAcquiredTexture(t *testing.T) {
	d := &device{}
	// Present() returns immediately when acquiredTexture is nil, never
	// touching d.surface — this must not panic on a zero-value device.
	d.Present()
}

func TestSurfaceFormatAccessor(t *testing.T) {
	d := &device{}
	if d.SurfaceFormat() != 0 {
		t.Errorf("expected zero-value SurfaceFormat before ConfigureSurface, got %v", d.SurfaceFormat())
	}
}
