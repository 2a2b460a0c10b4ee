package ddgi

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/rendergraph"
)

func TestRotationToIdentity(t *testing.T) {
	q := RotationTo([3]float32{0, 0, 1}, [3]float32{0, 0, 1})
	const eps = 1e-4
	if math.Abs(float64(q.X)) > eps || math.Abs(float64(q.Y)) > eps || math.Abs(float64(q.Z)) > eps {
		t.Errorf("expected zero imaginary part for identity rotation, got %+v", q)
	}
	if math.Abs(float64(q.W)-1) > eps {
		t.Errorf("expected W=1 for identity rotation, got %+v", q)
	}
}

func TestRotationToOppositeVectors(t *testing.T) {
	q := RotationTo([3]float32{0, 0, 1}, [3]float32{0, 0, -1})
	const eps = 1e-4
	if math.Abs(float64(q.W)) > eps {
		t.Errorf("expected a 180-degree rotation to have W=0, got %+v", q)
	}
	l := math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W))
	if math.Abs(l-1) > eps {
		t.Errorf("expected a unit quaternion, got length %v (%+v)", l, q)
	}
}

func TestGiParamsBytesLayout(t *testing.T) {
	p := giParams{WorldPos: [3]float32{1, 2, 3}, Spacing: 4, DimsX: 5, DimsY: 6, DimsZ: 7, ProbeIndex: 8}
	b := p.bytes()
	if len(b) != 32 {
		t.Fatalf("expected 32-byte layout, got %d", len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])); got != 1 {
		t.Errorf("WorldPos.X = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[12:16])); got != 4 {
		t.Errorf("Spacing = %v, want 4", got)
	}
	if got := binary.LittleEndian.Uint32(b[16:20]); got != 5 {
		t.Errorf("DimsX = %d, want 5", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:32]); got != 8 {
		t.Errorf("ProbeIndex = %d, want 8", got)
	}
}

func TestProbeWorldPosDecodesFlatIndex(t *testing.T) {
	v := &ProbeVolume{Origin: [3]float32{0, 0, 0}, Dims: Dims{NX: 2, NY: 2, NZ: 2}, Spacing: 1}
	got := probeWorldPos(v, 5) // 5 = 1*4 + 0*2 + 1 -> z=1,y=0,x=1
	want := [3]float32{1, 0, 1}
	if got != want {
		t.Errorf("probeWorldPos(5) = %+v, want %+v", got, want)
	}
}

func TestDimsCount(t *testing.T) {
	d := Dims{NX: 4, NY: 3, NZ: 2}
	if got := d.Count(); got != 24 {
		t.Errorf("Count() = %d, want 24", got)
	}
}

// fakeUniformBuffer is a minimal buffer.Buffer for exercising Update's
// per-slot gi_params upload without a real device.
type fakeUniformBuffer struct {
	writes [][]byte
}

func (f *fakeUniformBuffer) Name() common.Name            { return common.NewName("gi_params") }
func (f *fakeUniformBuffer) Native() *wgpu.Buffer         { return nil }
func (f *fakeUniformBuffer) Size() uint64                 { return 32 }
func (f *fakeUniformBuffer) Write(queue *wgpu.Queue, data []byte, offset uint64) {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes = append(f.writes, cp)
}
func (f *fakeUniformBuffer) EnqueueShadowCopy(encoder *wgpu.CommandEncoder) {}
func (f *fakeUniformBuffer) RequestMap() bool                               { return false }
func (f *fakeUniformBuffer) MapState() buffer.MapState                      { return buffer.Unmapped }
func (f *fakeUniformBuffer) ReadMapped(dst []byte) bool                     { return false }
func (f *fakeUniformBuffer) Release()                                       {}

var _ buffer.Buffer = &fakeUniformBuffer{}

func newTestGraph() *rendergraph.Graph {
	g := rendergraph.New(nil, nil, nil, 2)
	g.Begin()
	return g
}

func TestUpdateAdvancesCurrentProbeIndexByProbesPerFrame(t *testing.T) {
	g := newTestGraph()
	v := &ProbeVolume{
		Dims:           Dims{NX: 2, NY: 1, NZ: 1},
		Spacing:        1,
		ProbesPerFrame: 1,
		ProbeCubemap:   g.RegisterImage(common.NewName("probe_cubemap")),
		Irradiance:     g.RegisterImage(common.NewName("irradiance")),
		Depth:          g.RegisterImage(common.NewName("depth")),
	}
	uniforms := []buffer.Buffer{&fakeUniformBuffer{}}

	if err := Update(g, v, nil, uniforms, Shaders{Raster: common.NewName("raster"), Accum: common.NewName("accum")}, nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if v.CurrentProbeIndex != 1 {
		t.Errorf("expected CurrentProbeIndex=1 after touching one probe out of two, got %d", v.CurrentProbeIndex)
	}

	fb := uniforms[0].(*fakeUniformBuffer)
	if len(fb.writes) != 1 {
		t.Fatalf("expected exactly one gi_params write for a single-probe update, got %d", len(fb.writes))
	}
	if got := binary.LittleEndian.Uint32(fb.writes[0][28:32]); got != 0 {
		t.Errorf("expected probe index 0 written into gi_params, got %d", got)
	}
}

func TestUpdateWrapsAroundProbeCount(t *testing.T) {
	g := newTestGraph()
	v := &ProbeVolume{
		Dims:              Dims{NX: 2, NY: 1, NZ: 1},
		ProbesPerFrame:    1,
		CurrentProbeIndex: 1,
		ProbeCubemap:      g.RegisterImage(common.NewName("probe_cubemap")),
		Irradiance:        g.RegisterImage(common.NewName("irradiance")),
		Depth:             g.RegisterImage(common.NewName("depth")),
	}
	uniforms := []buffer.Buffer{&fakeUniformBuffer{}}

	if err := Update(g, v, nil, uniforms, Shaders{Raster: common.NewName("raster"), Accum: common.NewName("accum")}, nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if v.CurrentProbeIndex != 0 {
		t.Errorf("expected CurrentProbeIndex to wrap from 1 back to 0, got %d", v.CurrentProbeIndex)
	}
}

func TestUpdateErrorsOnZeroProbeVolume(t *testing.T) {
	g := newTestGraph()
	v := &ProbeVolume{Dims: Dims{NX: 0, NY: 0, NZ: 0}, ProbesPerFrame: 1}
	if err := Update(g, v, nil, nil, Shaders{}, nil); err == nil {
		t.Fatalf("expected an error for a zero-probe volume")
	}
}

func TestUpdateErrorsOnTooFewUniforms(t *testing.T) {
	g := newTestGraph()
	v := &ProbeVolume{Dims: Dims{NX: 2, NY: 1, NZ: 1}, ProbesPerFrame: 2}
	if err := Update(g, v, nil, []buffer.Buffer{&fakeUniformBuffer{}}, Shaders{}, nil); err == nil {
		t.Fatalf("expected an error when fewer uniforms than ProbesPerFrame are supplied")
	}
}

func TestUpdateDefersRasterUntilPassExecution(t *testing.T) {
	g := newTestGraph()
	v := &ProbeVolume{
		Dims:           Dims{NX: 1, NY: 1, NZ: 1},
		ProbesPerFrame: 1,
		ProbeCubemap:   g.RegisterImage(common.NewName("probe_cubemap")),
		Irradiance:     g.RegisterImage(common.NewName("irradiance")),
		Depth:          g.RegisterImage(common.NewName("depth")),
	}
	uniforms := []buffer.Buffer{&fakeUniformBuffer{}}

	seen := map[int]bool{}
	raster := func(ctx *rendergraph.Context, probeIndex uint32, face int, rotation Quaternion) {
		seen[face] = true
	}
	if err := Update(g, v, nil, uniforms, Shaders{Raster: common.NewName("raster"), Accum: common.NewName("accum")}, raster); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("raster callback must only run when the pass executes, not during graph recording; got %d calls", len(seen))
	}
}
