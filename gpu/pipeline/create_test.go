package pipeline

import (
	"testing"

	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/shader"
)

func TestBindGroupLayoutNameIsDeterministic(t *testing.T) {
	name := common.NewName("gbuffer_base")
	a := bindGroupLayoutName(name, shader.GroupMaterial)
	b := bindGroupLayoutName(name, shader.GroupMaterial)
	if a != b {
		t.Errorf("expected bindGroupLayoutName to be deterministic for the same inputs")
	}
}

func TestBindGroupLayoutNameDistinctPerGroup(t *testing.T) {
	name := common.NewName("gbuffer_base")
	global := bindGroupLayoutName(name, shader.GroupGlobal)
	material := bindGroupLayoutName(name, shader.GroupMaterial)
	if global == material {
		t.Errorf("expected distinct groups to derive distinct cache keys")
	}
}

func TestBindGroupLayoutNameDistinctPerPipeline(t *testing.T) {
	a := bindGroupLayoutName(common.NewName("pipeline_a"), shader.GroupPass)
	b := bindGroupLayoutName(common.NewName("pipeline_b"), shader.GroupPass)
	if a == b {
		t.Errorf("expected distinct pipeline names to derive distinct cache keys")
	}
}
