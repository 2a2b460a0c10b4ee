// Package computequeue implements the Compute and Compute-Raster Task
// Queues: CPU-side dispatch requests that get promoted into render graph
// compute passes at graph-compile time.
package computequeue

import "github.com/lumenforge/framegraph/common"

// Primitive selects the topology a compute-raster task rasterizes.
type Primitive uint8

const (
	PrimitivePoint Primitive = iota
	PrimitiveLine
	PrimitiveTriangle
	PrimitiveQuad
)

// ResourceKind distinguishes the two kinds of GPU object a task's
// input/output Names can refer to, since the render graph registers
// images and buffers through different handles.
type ResourceKind uint8

const (
	KindBuffer ResourceKind = iota
	KindImage
)

// ResourceRef names one resource a task reads or writes, already
// materialized under Name in the resource cache (the render graph
// registers it, rather than creating it, when the task is promoted to a
// pass).
type ResourceRef struct {
	Name common.Name
	Kind ResourceKind
}

// Task is one compute dispatch request: a shader and its input/output
// resources plus the workgroup count to dispatch.
type Task struct {
	Name       common.Name
	Shader     common.Name
	Inputs     []ResourceRef
	Outputs    []ResourceRef
	DX, DY, DZ uint32
}

// RasterTask is one compute-raster request: a point/connection buffer pair
// rasterized by a fixed-size-256-workgroup compute shader instead of the
// traditional rasterizer, writing into storage-image outputs.
type RasterTask struct {
	Name        common.Name
	Shader      common.Name
	Points      common.Name
	Connections common.Name
	Inputs      []ResourceRef
	Outputs     []ResourceRef
	Primitive   Primitive
	// NumPrimitives is the count of points/lines/triangles/quads to
	// rasterize, used to compute the dispatch workgroup count.
	NumPrimitives uint32
}

// rasterWorkgroupSize is the fixed workgroup size every compute-raster
// dispatch uses regardless of primitive kind.
const rasterWorkgroupSize = 256

// DispatchCount returns the workgroup count a raster task dispatches:
// ceil(NumPrimitives / 256).
func (t RasterTask) DispatchCount() uint32 {
	if t.NumPrimitives == 0 {
		return 0
	}
	return (t.NumPrimitives + rasterWorkgroupSize - 1) / rasterWorkgroupSize
}
