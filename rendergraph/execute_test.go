package rendergraph

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/pipeline"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
	"github.com/lumenforge/framegraph/gpu/shader"
	"github.com/lumenforge/framegraph/gpu/texture"
)

// fakeExecShader is a minimal shader.Shader for exercising passShaders/
// shaderOf without a real reflected shader.
type fakeExecShader struct {
	stage shader.ShaderType
}

func (f *fakeExecShader) Key() common.Name           { return 0 }
func (f *fakeExecShader) Source() string             { return "" }
func (f *fakeExecShader) ShaderType() shader.ShaderType { return f.stage }
func (f *fakeExecShader) EntryPoint() string         { return "" }
func (f *fakeExecShader) WorkgroupSize() [3]uint32   { return [3]uint32{} }
func (f *fakeExecShader) VertexLayouts() map[int][]wgpu.VertexBufferLayout { return nil }
func (f *fakeExecShader) Module() *wgpu.ShaderModuleDescriptor             { return nil }
func (f *fakeExecShader) Reflection() shader.Reflection                   { return shader.Reflection{} }
func (f *fakeExecShader) BindGroupLayoutDescriptor(group shader.Group) (wgpu.BindGroupLayoutDescriptor, bool) {
	return wgpu.BindGroupLayoutDescriptor{}, false
}

var _ shader.Shader = &fakeExecShader{}

func TestPassShadersSkipsZeroNames(t *testing.T) {
	g := New(nil, resourcecache.New(), nil, 2)
	p := &pass{params: Params{ShaderSetup: ShaderSetup{}}}
	shaders, err := g.passShaders(p)
	if err != nil {
		t.Fatalf("passShaders error: %v", err)
	}
	if len(shaders) != 0 {
		t.Errorf("expected no shaders for an all-zero ShaderSetup, got %d", len(shaders))
	}
}

func TestPassShadersFetchesEachNonZeroStage(t *testing.T) {
	cache := resourcecache.New()
	vs, fs := common.NewName("vs"), common.NewName("fs")
	cache.Store(resourcecache.Shader, vs, shader.Shader(&fakeExecShader{stage: shader.ShaderTypeVertex}))
	cache.Store(resourcecache.Shader, fs, shader.Shader(&fakeExecShader{stage: shader.ShaderTypeFragment}))

	g := New(nil, cache, nil, 2)
	p := &pass{params: Params{ShaderSetup: ShaderSetup{Vertex: vs, Fragment: fs}}}
	shaders, err := g.passShaders(p)
	if err != nil {
		t.Fatalf("passShaders error: %v", err)
	}
	if len(shaders) != 2 {
		t.Fatalf("expected 2 shaders, got %d", len(shaders))
	}
}

func TestPassShadersErrorsWhenNotCached(t *testing.T) {
	g := New(nil, resourcecache.New(), nil, 2)
	p := &pass{params: Params{ShaderSetup: ShaderSetup{Vertex: common.NewName("missing")}}}
	if _, err := g.passShaders(p); err == nil {
		t.Errorf("expected an error when a named shader was never cached")
	}
}

func TestShaderOfFindsMatchingStage(t *testing.T) {
	vs := &fakeExecShader{stage: shader.ShaderTypeVertex}
	fs := &fakeExecShader{stage: shader.ShaderTypeFragment}
	shaders := []shader.Shader{vs, fs}
	if got := shaderOf(shaders, shader.ShaderTypeFragment); got != shader.Shader(fs) {
		t.Errorf("shaderOf(Fragment) did not return the fragment shader")
	}
	if got := shaderOf(shaders, shader.ShaderTypeCompute); got != nil {
		t.Errorf("expected nil for a stage with no matching shader, got %v", got)
	}
}

func TestGroupLayoutErrorsWithNilPipeline(t *testing.T) {
	g := New(nil, resourcecache.New(), nil, 2)
	if _, err := groupLayout(g, nil, common.NewName("some_pass"), shader.GroupMaterial); err == nil {
		t.Errorf("expected an error deriving a group layout from a nil pipeline")
	}
}

func TestGroupLayoutErrorsWhenLayoutNotCached(t *testing.T) {
	g := New(nil, resourcecache.New(), nil, 2)
	pl := pipeline.New(common.NewName("some_pass"), pipeline.TypeRender)
	if _, err := groupLayout(g, pl, common.NewName("some_pass"), shader.GroupMaterial); err == nil {
		t.Errorf("expected an error when no layout was cached under the derived key")
	}
}

func TestToBufferEntriesPreservesFieldsInOrder(t *testing.T) {
	in := []BufferBinding{{Binding: 2, Offset: 8, Size: 16}, {Binding: 0}}
	out := toBufferEntries(in)
	if len(out) != 2 || out[0].Binding != 2 || out[0].Offset != 8 || out[0].Size != 16 || out[1].Binding != 0 {
		t.Errorf("toBufferEntries mismatch: %+v", out)
	}
}

func TestToTextureEntriesPreservesBindingIndex(t *testing.T) {
	in := []TextureBinding{{Binding: 3}}
	out := toTextureEntries(in)
	if len(out) != 1 || out[0].Binding != 3 {
		t.Errorf("toTextureEntries mismatch: %+v", out)
	}
}

func TestToSamplerEntriesPreservesBindingIndex(t *testing.T) {
	in := []SamplerBinding{{Binding: 5}}
	out := toSamplerEntries(in)
	if len(out) != 1 || out[0].Binding != 5 {
		t.Errorf("toSamplerEntries mismatch: %+v", out)
	}
}

func TestToNativeLoadOpMapsClearAndLoad(t *testing.T) {
	if got := toNativeLoadOp(texture.LoadOpClear); got != wgpu.LoadOpClear {
		t.Errorf("toNativeLoadOp(LoadOpClear) = %v, want wgpu.LoadOpClear", got)
	}
	if got := toNativeLoadOp(texture.LoadOpLoad); got != wgpu.LoadOpLoad {
		t.Errorf("toNativeLoadOp(LoadOpLoad) = %v, want wgpu.LoadOpLoad", got)
	}
}

func TestToNativeStoreOpMapsStoreAndDiscard(t *testing.T) {
	if got := toNativeStoreOp(texture.StoreOpStore); got != wgpu.StoreOpStore {
		t.Errorf("toNativeStoreOp(StoreOpStore) = %v, want wgpu.StoreOpStore", got)
	}
	if got := toNativeStoreOp(texture.StoreOpDiscard); got != wgpu.StoreOpDiscard {
		t.Errorf("toNativeStoreOp(StoreOpDiscard) = %v, want wgpu.StoreOpDiscard", got)
	}
}

func TestResolveImageTextureErrorsOnBufferHandle(t *testing.T) {
	g := New(nil, resourcecache.New(), nil, 2)
	h := g.RegisterBuffer(common.NewName("some_buffer"))
	if _, err := g.resolveImageTexture(h); err == nil {
		t.Errorf("expected an error resolving a buffer handle as an image texture")
	}
}
