package computequeue

import (
	"testing"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/rendergraph"
)

func newTestGraph() *rendergraph.Graph {
	return rendergraph.New(nil, nil, nil, 2)
}

func TestComputeTaskQueueDefaultsDYDZ(t *testing.T) {
	q := NewComputeTaskQueue()
	q.NewTask(common.NewName("t"), common.NewName("shader"), nil, nil, 4, 0, 0)
	tasks := q.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].DY != 1 || tasks[0].DZ != 1 {
		t.Fatalf("expected DY/DZ to default to 1, got DY=%d DZ=%d", tasks[0].DY, tasks[0].DZ)
	}
	if tasks[0].DX != 4 {
		t.Fatalf("expected DX=4, got %d", tasks[0].DX)
	}
}

func TestComputeTaskQueueResetClears(t *testing.T) {
	q := NewComputeTaskQueue()
	q.NewTask(common.NewName("t"), common.NewName("shader"), nil, nil, 1, 1, 1)
	q.Reset()
	if len(q.Tasks()) != 0 {
		t.Fatalf("expected queue to be empty after Reset, got %d", len(q.Tasks()))
	}
}

func TestComputeTaskQueueCompileRGPassesRegistersResources(t *testing.T) {
	g := newTestGraph()
	g.Begin()

	out := common.NewName("out_buf")
	q := NewComputeTaskQueue()
	q.NewTask(common.NewName("dispatch_a"), common.NewName("shader_a"), nil, []ResourceRef{{Name: out, Kind: KindBuffer}}, 8, 1, 1)

	// Promoting a task to a graph pass must not panic even with a nil
	// device/cache/queue, since AddPass/RegisterBuffer never touch them.
	q.CompileRGPasses(g)
}

func TestRasterTaskDispatchCount(t *testing.T) {
	cases := []struct {
		n    uint32
		want uint32
	}{
		{0, 0},
		{1, 1},
		{256, 1},
		{257, 2},
		{512, 2},
	}
	for _, c := range cases {
		rt := RasterTask{NumPrimitives: c.n}
		if got := rt.DispatchCount(); got != c.want {
			t.Errorf("DispatchCount(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestComputeRasterTaskQueueCompileKeepsTasksUntilReset(t *testing.T) {
	g := newTestGraph()
	g.Begin()

	points := common.NewName("points")
	connections := common.NewName("connections")
	out := common.NewName("raster_out")

	q := NewComputeRasterTaskQueue()
	q.NewTask(common.NewName("raster_a"), common.NewName("shader"), points, connections, nil, []ResourceRef{{Name: out, Kind: KindImage}}, PrimitiveTriangle, 300)

	q.CompileRGPasses(g)
	if len(q.Tasks()) != 1 {
		t.Fatalf("expected 1 raster task, got %d", len(q.Tasks()))
	}

	q.Reset()
	if len(q.Tasks()) != 0 {
		t.Fatalf("expected queue to be empty after Reset")
	}
}
