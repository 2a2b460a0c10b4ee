package resourcecache

import (
	"testing"

	"github.com/lumenforge/framegraph/common"
)

func TestStoreFetchRoundTrip(t *testing.T) {
	c := New()
	name := common.NewName("albedo_shader")
	c.Store(Shader, name, "shader-object")

	got, ok := c.Fetch(Shader, name)
	if !ok || got != "shader-object" {
		t.Errorf("Fetch() = (%v,%v), want (\"shader-object\",true)", got, ok)
	}
}

func TestFetchMissingReturnsFalse(t *testing.T) {
	c := New()
	if _, ok := c.Fetch(Buffer, common.NewName("nope")); ok {
		t.Errorf("expected Fetch on an empty cache to report ok=false")
	}
}

func TestCategoriesAreIndependentBuckets(t *testing.T) {
	c := New()
	name := common.NewName("shared_name")
	c.Store(Shader, name, "shader-value")
	c.Store(Buffer, name, "buffer-value")

	gotShader, _ := c.Fetch(Shader, name)
	gotBuffer, _ := c.Fetch(Buffer, name)
	if gotShader == gotBuffer {
		t.Errorf("expected distinct categories to not collide on the same Name")
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	c := New()
	name := common.NewName("x")
	c.Store(Mesh, name, 1)
	if ok := c.Remove(Mesh, name); !ok {
		t.Fatalf("expected Remove on a present entry to report true")
	}
	if _, ok := c.Fetch(Mesh, name); ok {
		t.Errorf("expected entry to be gone after Remove")
	}
}

func TestRemoveMissingReturnsFalse(t *testing.T) {
	c := New()
	if c.Remove(Mesh, common.NewName("absent")) {
		t.Errorf("expected Remove on an absent entry to report false")
	}
}

func TestSizeTracksEntryCount(t *testing.T) {
	c := New()
	if c.Size(Pipeline) != 0 {
		t.Fatalf("expected a fresh cache to report Size=0")
	}
	c.Store(Pipeline, common.NewName("a"), 1)
	c.Store(Pipeline, common.NewName("b"), 2)
	if c.Size(Pipeline) != 2 {
		t.Errorf("expected Size=2 after two stores, got %d", c.Size(Pipeline))
	}
	c.Remove(Pipeline, common.NewName("a"))
	if c.Size(Pipeline) != 1 {
		t.Errorf("expected Size=1 after one removal, got %d", c.Size(Pipeline))
	}
}

func TestStoreOverwritesExistingEntry(t *testing.T) {
	c := New()
	name := common.NewName("x")
	c.Store(Sampler, name, "first")
	c.Store(Sampler, name, "second")
	got, _ := c.Fetch(Sampler, name)
	if got != "second" {
		t.Errorf("expected Store to overwrite, got %v", got)
	}
	if c.Size(Sampler) != 1 {
		t.Errorf("expected overwrite to not grow Size, got %d", c.Size(Sampler))
	}
}

func TestCategoryStringLabels(t *testing.T) {
	cases := map[Category]string{
		Shader:          "Shader",
		Pipeline:        "Pipeline",
		Pass:            "Pass",
		BindGroup:       "BindGroup",
		BindGroupLayout: "BindGroupLayout",
		Buffer:          "Buffer",
		Image:           "Image",
		Sampler:         "Sampler",
		Mesh:            "Mesh",
		Material:        "Material",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", cat, got, want)
		}
	}
	if got := Category(255).String(); got != "Unknown" {
		t.Errorf("out-of-range Category.String() = %q, want \"Unknown\"", got)
	}
}
