package ddgi

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/rendergraph"
)

const probeResolution = 16

var faceDirections = [6][3]float32{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Quaternion is a minimal (x,y,z,w) rotation used only to orient a probe
// view toward a cubemap face direction.
type Quaternion struct{ X, Y, Z, W float32 }

// RotationTo returns the shortest-arc rotation taking unit vector from to
// unit vector to, matching the "rotationTo([0,0,1], face_dir)" convention
// used to orient each probe view.
func RotationTo(from, to [3]float32) Quaternion {
	dot := from[0]*to[0] + from[1]*to[1] + from[2]*to[2]
	if dot < -0.999999 {
		// Opposite vectors: pick any orthogonal axis for a 180-degree turn.
		axis := cross(from, [3]float32{1, 0, 0})
		if length(axis) < 1e-6 {
			axis = cross(from, [3]float32{0, 1, 0})
		}
		axis = normalize(axis)
		return Quaternion{X: axis[0], Y: axis[1], Z: axis[2], W: 0}
	}
	axis := cross(from, to)
	w := float32(math.Sqrt(float64(1+dot))) * float32(math.Sqrt2)
	inv := 1 / w
	return normalizeQuat(Quaternion{X: axis[0] * inv, Y: axis[1] * inv, Z: axis[2] * inv, W: w * 0.5})
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func length(v [3]float32) float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

func normalize(v [3]float32) [3]float32 {
	l := length(v)
	if l < 1e-8 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func normalizeQuat(q Quaternion) Quaternion {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l < 1e-8 {
		return q
	}
	return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// giParams is the 32-byte (8x4-byte) uniform layout: probe world position, spacing,
// dims, and flat probe index.
type giParams struct {
	WorldPos            [3]float32
	Spacing             float32
	DimsX, DimsY, DimsZ uint32
	ProbeIndex          uint32
}

func (p giParams) bytes() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.WorldPos[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.WorldPos[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.WorldPos[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.Spacing))
	binary.LittleEndian.PutUint32(buf[16:20], p.DimsX)
	binary.LittleEndian.PutUint32(buf[20:24], p.DimsY)
	binary.LittleEndian.PutUint32(buf[24:28], p.DimsZ)
	binary.LittleEndian.PutUint32(buf[28:32], p.ProbeIndex)
	return buf
}

// probeWorldPos computes a probe's world-space center from its flat index
// within the grid and the volume's origin/spacing.
func probeWorldPos(v *ProbeVolume, index uint32) [3]float32 {
	x := index % v.Dims.NX
	y := (index / v.Dims.NX) % v.Dims.NY
	z := index / (v.Dims.NX * v.Dims.NY)
	return [3]float32{
		v.Origin[0] + float32(x)*v.Spacing,
		v.Origin[1] + float32(y)*v.Spacing,
		v.Origin[2] + float32(z)*v.Spacing,
	}
}

// Shaders names the raster and convolution shaders the per-probe update
// dispatches.
type Shaders struct {
	Raster common.Name
	Accum  common.Name
}

// RasterScene draws the scene into one probe's cubemap face; the caller
// supplies the concrete draw calls (the set of visible geometry doesn't
// differ from the main view's G-Buffer base geometry, just the camera).
type RasterScene func(ctx *rendergraph.Context, probeIndex uint32, face int, rotation Quaternion)

// Update (spec §4.11) advances v.CurrentProbeIndex by ProbesPerFrame probes
// each call, recording one gi_params uniform write plus 6
// ddgi_raster_{i}_face_{f} graphics passes and one ddgi_accum_{i} compute
// pass per probe touched this frame.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - v: the probe volume being updated
//   - queue: device queue, used to write each touched probe's gi_params uniform
//   - uniforms: one gi_params uniform buffer per in-flight probe slot (length >= ProbesPerFrame)
//   - shaders: raster and convolution shader Names
//   - raster: issues the actual scene draw for one probe face
func Update(graph *rendergraph.Graph, v *ProbeVolume, queue *wgpu.Queue, uniforms []buffer.Buffer, shaders Shaders, raster RasterScene) error {
	total := v.Dims.Count()
	if total == 0 {
		return fmt.Errorf("ddgi: probe volume has zero probes")
	}
	if uint32(len(uniforms)) < v.ProbesPerFrame {
		return fmt.Errorf("ddgi: need %d gi_params uniforms, got %d", v.ProbesPerFrame, len(uniforms))
	}

	start := v.CurrentProbeIndex
	for slot := uint32(0); slot < v.ProbesPerFrame; slot++ {
		probeIndex := (start + slot) % total

		params := giParams{
			WorldPos: probeWorldPos(v, probeIndex),
			Spacing:  v.Spacing,
			DimsX:    v.Dims.NX, DimsY: v.Dims.NY, DimsZ: v.Dims.NZ,
			ProbeIndex: probeIndex,
		}
		uniforms[slot].Write(queue, params.bytes(), 0)
		uniformBinding := []rendergraph.BufferBinding{{Binding: 0, Buffer: uniforms[slot].Native(), Size: uniforms[slot].Size()}}

		for f := 0; f < 6; f++ {
			rotation := RotationTo([3]float32{0, 0, 1}, faceDirections[f])
			viewIdx := probeIndex*6 + uint32(f)
			var viewHandle rendergraph.Handle
			if int(viewIdx) < len(v.ProbeViews) {
				viewHandle = v.ProbeViews[viewIdx]
			}
			_ = viewHandle // passed neither to raster nor to the graph; raster receives the face rotation instead

			name := common.NewName(fmt.Sprintf("ddgi_raster_%d_face_%d", probeIndex, f))
			face := f
			graph.AddPass(name, rendergraph.FlagGraphics, rendergraph.Params{
				Outputs:     []rendergraph.Handle{v.ProbeCubemap},
				OutputViews: map[rendergraph.Handle]rendergraph.View{v.ProbeCubemap: {UseLayer: true, Layer: probeIndex*6 + uint32(face)}},
				PassBuffers: uniformBinding,
				ShaderSetup: rendergraph.ShaderSetup{Vertex: shaders.Raster, Fragment: shaders.Raster},
			}, func(ctx *rendergraph.Context) {
				if raster != nil {
					raster(ctx, probeIndex, face, rotation)
				}
			})
		}

		accumName := common.NewName(fmt.Sprintf("ddgi_accum_%d", probeIndex))
		graph.AddPass(accumName, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      []rendergraph.Handle{v.ProbeCubemap},
			Outputs:     []rendergraph.Handle{v.Irradiance, v.Depth},
			PassBuffers: uniformBinding,
			ShaderSetup: rendergraph.ShaderSetup{Compute: shaders.Accum},
			// Open question left undecided upstream: whether (1,1,1) is a
			// deliberate placeholder dispatch pending a real convolution
			// kernel, or a stub. Kept as-is rather than guessing a real
			// workgroup count.
			DispatchX: 1, DispatchY: 1, DispatchZ: 1,
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(1, 1, 1)
		})
	}

	v.CurrentProbeIndex = (start + v.ProbesPerFrame) % total
	return nil
}
