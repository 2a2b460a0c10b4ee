package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
)

type fakeReflectedShader struct {
	shaderType ShaderType
	groups     map[Group][]Binding
}

func (f fakeReflectedShader) Key() common.Name             { return common.NewName("fake") }
func (f fakeReflectedShader) Source() string                { return "" }
func (f fakeReflectedShader) ShaderType() ShaderType         { return f.shaderType }
func (f fakeReflectedShader) EntryPoint() string             { return "" }
func (f fakeReflectedShader) WorkgroupSize() [3]uint32       { return [3]uint32{1, 1, 1} }
func (f fakeReflectedShader) VertexLayouts() map[int][]wgpu.VertexBufferLayout { return nil }
func (f fakeReflectedShader) Module() *wgpu.ShaderModuleDescriptor { return nil }
func (f fakeReflectedShader) Reflection() Reflection          { return Reflection{Groups: f.groups} }
func (f fakeReflectedShader) BindGroupLayoutDescriptor(group Group) (wgpu.BindGroupLayoutDescriptor, bool) {
	return wgpu.BindGroupLayoutDescriptor{}, false
}

func TestShaderStageMapsEachType(t *testing.T) {
	cases := map[ShaderType]wgpu.ShaderStage{
		ShaderTypeVertex:   wgpu.ShaderStageVertex,
		ShaderTypeFragment: wgpu.ShaderStageFragment,
		ShaderTypeCompute:  wgpu.ShaderStageCompute,
	}
	for in, want := range cases {
		if got := shaderStage(in); got != want {
			t.Errorf("shaderStage(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestToLayoutEntryUniform(t *testing.T) {
	entry := toLayoutEntry(Binding{Index: 0, Kind: BindingUniform}, wgpu.ShaderStageVertex)
	if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("expected uniform buffer binding type, got %v", entry.Buffer.Type)
	}
	if entry.Visibility != wgpu.ShaderStageVertex {
		t.Errorf("expected visibility to carry through, got %v", entry.Visibility)
	}
}

func TestToLayoutEntryStorageReadOnlyVsReadWrite(t *testing.T) {
	readOnly := toLayoutEntry(Binding{Kind: BindingStorage, Access: AccessRead}, 0)
	if readOnly.Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("expected read-only storage type, got %v", readOnly.Buffer.Type)
	}
	readWrite := toLayoutEntry(Binding{Kind: BindingStorage, Access: AccessReadWrite}, 0)
	if readWrite.Buffer.Type != wgpu.BufferBindingTypeStorage {
		t.Errorf("expected read-write storage type, got %v", readWrite.Buffer.Type)
	}
}

func TestToLayoutEntryStorageTextureAccessModes(t *testing.T) {
	cases := map[Access]wgpu.StorageTextureAccess{
		AccessWrite:     wgpu.StorageTextureAccessWriteOnly,
		AccessRead:      wgpu.StorageTextureAccessReadOnly,
		AccessReadWrite: wgpu.StorageTextureAccessReadWrite,
	}
	for access, want := range cases {
		entry := toLayoutEntry(Binding{Kind: BindingStorageTexture, Access: access}, 0)
		if entry.StorageTexture.Access != want {
			t.Errorf("access %v -> %v, want %v", access, entry.StorageTexture.Access, want)
		}
	}
}

func TestMergeReflectionsUnionsVisibilityAcrossStages(t *testing.T) {
	vs := fakeReflectedShader{
		shaderType: ShaderTypeVertex,
		groups:     map[Group][]Binding{GroupGlobal: {{Index: 0, Kind: BindingUniform}}},
	}
	fs := fakeReflectedShader{
		shaderType: ShaderTypeFragment,
		groups:     map[Group][]Binding{GroupGlobal: {{Index: 0, Kind: BindingUniform}}},
	}
	merged := MergeReflections(vs, fs)
	desc, ok := merged[GroupGlobal]
	if !ok || len(desc.Entries) != 1 {
		t.Fatalf("expected 1 merged entry in GroupGlobal, got %+v", desc)
	}
	wantVisibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	if desc.Entries[0].Visibility != wantVisibility {
		t.Errorf("expected unioned visibility %v, got %v", wantVisibility, desc.Entries[0].Visibility)
	}
}

func TestMergeReflectionsSortsEntriesByBindingIndex(t *testing.T) {
	vs := fakeReflectedShader{
		shaderType: ShaderTypeVertex,
		groups: map[Group][]Binding{GroupGlobal: {
			{Index: 2, Kind: BindingUniform},
			{Index: 0, Kind: BindingUniform},
			{Index: 1, Kind: BindingUniform},
		}},
	}
	merged := MergeReflections(vs)
	entries := merged[GroupGlobal].Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Binding != uint32(i) {
			t.Errorf("entries[%d].Binding = %d, want %d (sorted ascending)", i, e.Binding, i)
		}
	}
}

func TestMergeReflectionsSkipsNilShaders(t *testing.T) {
	merged := MergeReflections(nil)
	if len(merged) != 0 {
		t.Errorf("expected a nil shader to contribute nothing, got %+v", merged)
	}
}

func TestMergeReflectionsKeepsGroupsSeparate(t *testing.T) {
	vs := fakeReflectedShader{
		shaderType: ShaderTypeVertex,
		groups: map[Group][]Binding{
			GroupGlobal:   {{Index: 0, Kind: BindingUniform}},
			GroupMaterial: {{Index: 0, Kind: BindingTexture}},
		},
	}
	merged := MergeReflections(vs)
	if len(merged) != 2 {
		t.Fatalf("expected 2 distinct groups, got %d", len(merged))
	}
	if merged[GroupGlobal].Entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("expected GroupGlobal entry to stay a uniform buffer binding")
	}
}
