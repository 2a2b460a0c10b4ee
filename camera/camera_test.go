package camera

import (
	"math"
	"testing"

	"github.com/lumenforge/framegraph/common"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera(common.NewName("main"))
	if c.Name() != common.NewName("main") {
		t.Errorf("Name() mismatch")
	}
	if got := c.Aspect(); got != 1.0 {
		t.Errorf("Aspect() = %v, want 1.0", got)
	}
	if got := c.Near(); got != 0.1 {
		t.Errorf("Near() = %v, want 0.1", got)
	}
	if got := c.Far(); got != 100.0 {
		t.Errorf("Far() = %v, want 100.0", got)
	}
	want := float32(45.0 * (math.Pi / 180.0))
	if got := c.Fov(); got != want {
		t.Errorf("Fov() = %v, want %v", got, want)
	}
}

func TestUpdateWithoutControllerIsNoop(t *testing.T) {
	c := NewCamera(common.NewName("main"))
	before := c.ViewMatrix()
	c.Update()
	after := c.ViewMatrix()
	if before != after {
		t.Errorf("Update() with no controller should not change the view matrix")
	}
}

func TestSetControllerThenUpdateRecomputesMatrices(t *testing.T) {
	ctrl := NewCameraController(WithTarget(0, 0, 0), WithRadius(10))
	c := NewCamera(common.NewName("main"), WithAspect(1.77))

	identity := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if c.ViewMatrix() != identity {
		t.Fatalf("expected identity view matrix before a controller is attached")
	}

	c.SetController(ctrl)
	c.Update()

	if c.ViewMatrix() == identity {
		t.Errorf("expected Update() to recompute the view matrix once a controller is attached")
	}
	if c.ViewProjectionMatrix() == identity {
		t.Errorf("expected Update() to recompute the view-projection matrix")
	}
}

func TestUniformCarriesPositionAndViewProj(t *testing.T) {
	ctrl := NewCameraController(WithTarget(0, 0, 0), WithRadius(50), WithAzimuth(0), WithElevation(0))
	c := NewCamera(common.NewName("main"), WithController(ctrl))
	c.Update()

	u := c.Uniform()
	px, py, pz := ctrl.Position()
	if u.CameraPosition != [3]float32{px, py, pz} {
		t.Errorf("Uniform().CameraPosition = %v, want controller position %v,%v,%v", u.CameraPosition, px, py, pz)
	}
	if u.ViewProj != c.ViewProjectionMatrix() {
		t.Errorf("Uniform().ViewProj did not match ViewProjectionMatrix()")
	}
}

func TestGPUCameraUniformMarshalSize(t *testing.T) {
	u := GPUCameraUniform{}
	if got := u.Size(); got != 80 {
		t.Errorf("Size() = %d, want 80", got)
	}
	if got := len(u.Marshal()); got != 80 {
		t.Errorf("len(Marshal()) = %d, want 80", got)
	}
}
