package computequeue

import (
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

// ComputeTaskQueue accumulates compute dispatch requests across a frame,
// promoting each into a render graph compute pass at compile time.
type ComputeTaskQueue struct {
	tasks []Task
}

// NewComputeTaskQueue creates an empty queue.
func NewComputeTaskQueue() *ComputeTaskQueue {
	return &ComputeTaskQueue{}
}

// NewTask enqueues a dispatch of shader with the given inputs/outputs and
// workgroup counts. dy/dz default to 1 when zero, matching the common
// one-dimensional dispatch case.
//
// Parameters:
//   - name: identifies the resulting pass
//   - shaderName: the compute shader to dispatch
//   - inputs: resources read by the dispatch
//   - outputs: resources written by the dispatch
//   - dx: workgroup count along X
//   - dy: workgroup count along Y, 1 if zero
//   - dz: workgroup count along Z, 1 if zero
func (q *ComputeTaskQueue) NewTask(name, shaderName common.Name, inputs, outputs []ResourceRef, dx, dy, dz uint32) {
	if dy == 0 {
		dy = 1
	}
	if dz == 0 {
		dz = 1
	}
	q.tasks = append(q.tasks, Task{
		Name:    name,
		Shader:  shaderName,
		Inputs:  inputs,
		Outputs: outputs,
		DX:      dx,
		DY:      dy,
		DZ:      dz,
	})
}

// Tasks returns the queue's current tasks.
func (q *ComputeTaskQueue) Tasks() []Task { return q.tasks }

// Reset clears the queue for the next frame.
func (q *ComputeTaskQueue) Reset() { q.tasks = q.tasks[:0] }

func registerRefs(g *rendergraph.Graph, refs []ResourceRef) []rendergraph.Handle {
	handles := make([]rendergraph.Handle, len(refs))
	for i, ref := range refs {
		if ref.Kind == KindImage {
			handles[i] = g.RegisterImage(ref.Name)
		} else {
			handles[i] = g.RegisterBuffer(ref.Name)
		}
	}
	return handles
}

// CompileRGPasses registers every queued task as a compute pass on g, auto-
// promoting each task's input/output Names to graph handles via
// RegisterImage/RegisterBuffer (the physical resources must already be
// materialized in the resource cache under those Names).
//
// Parameters:
//   - g: the render graph to add passes to
func (q *ComputeTaskQueue) CompileRGPasses(g *rendergraph.Graph) {
	for _, t := range q.tasks {
		inputs := registerRefs(g, t.Inputs)
		outputs := registerRefs(g, t.Outputs)
		task := t
		g.AddPass(task.Name, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      inputs,
			Outputs:     outputs,
			ShaderSetup: rendergraph.ShaderSetup{Compute: task.Shader},
			DispatchX:   task.DX,
			DispatchY:   task.DY,
			DispatchZ:   task.DZ,
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(task.DX, task.DY, task.DZ)
		})
	}
}

// ComputeRasterTaskQueue accumulates compute-raster requests, each
// rasterized by a 256-wide compute dispatch instead of the fixed-function
// rasterizer.
type ComputeRasterTaskQueue struct {
	tasks []RasterTask
}

// NewComputeRasterTaskQueue creates an empty queue.
func NewComputeRasterTaskQueue() *ComputeRasterTaskQueue {
	return &ComputeRasterTaskQueue{}
}

// NewTask enqueues a compute-raster dispatch over points/connections.
//
// Parameters:
//   - name: identifies the resulting pass
//   - shaderName: the compute shader to dispatch
//   - points: the point buffer resource
//   - connections: the connection (index/topology) buffer resource
//   - inputs: additional resources read by the dispatch
//   - outputs: storage-image outputs written by the dispatch
//   - primitive: the topology being rasterized
//   - numPrimitives: point/line/triangle/quad count, used to size the dispatch
func (q *ComputeRasterTaskQueue) NewTask(name, shaderName common.Name, points, connections common.Name, inputs, outputs []ResourceRef, primitive Primitive, numPrimitives uint32) {
	q.tasks = append(q.tasks, RasterTask{
		Name:          name,
		Shader:        shaderName,
		Points:        points,
		Connections:   connections,
		Inputs:        inputs,
		Outputs:       outputs,
		Primitive:     primitive,
		NumPrimitives: numPrimitives,
	})
}

// Tasks returns the queue's current tasks.
func (q *ComputeRasterTaskQueue) Tasks() []RasterTask { return q.tasks }

// Reset clears the queue for the next frame.
func (q *ComputeRasterTaskQueue) Reset() { q.tasks = q.tasks[:0] }

// CompileRGPasses registers every queued raster task as a compute pass,
// dispatching ceil(NumPrimitives/256) workgroups.
//
// Parameters:
//   - g: the render graph to add passes to
func (q *ComputeRasterTaskQueue) CompileRGPasses(g *rendergraph.Graph) {
	for _, t := range q.tasks {
		inputs := registerRefs(g, t.Inputs)
		outputs := registerRefs(g, t.Outputs)
		pointsHandle := g.RegisterBuffer(t.Points)
		connectionsHandle := g.RegisterBuffer(t.Connections)
		inputs = append(inputs, pointsHandle, connectionsHandle)

		task := t
		count := task.DispatchCount()
		g.AddPass(task.Name, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      inputs,
			Outputs:     outputs,
			ShaderSetup: rendergraph.ShaderSetup{Compute: task.Shader},
			DispatchX:   count,
			DispatchY:   1,
			DispatchZ:   1,
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(count, 1, 1)
		})
	}
}
