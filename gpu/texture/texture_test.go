package texture

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

func TestUsageHasDetectsSetFlag(t *testing.T) {
	u := UsageTextureBinding | UsageCopyDst
	if !u.Has(UsageTextureBinding) {
		t.Errorf("expected UsageTextureBinding to be set")
	}
	if u.Has(UsageStorageBinding) {
		t.Errorf("expected UsageStorageBinding to be unset")
	}
}

func TestToNativeUsageMapsEachFlag(t *testing.T) {
	cases := []struct {
		in   Usage
		want wgpu.TextureUsage
	}{
		{UsageTextureBinding, wgpu.TextureUsageTextureBinding},
		{UsageStorageBinding, wgpu.TextureUsageStorageBinding},
		{UsageRenderAttachment, wgpu.TextureUsageRenderAttachment},
		{UsageCopySrc, wgpu.TextureUsageCopySrc},
		{UsageCopyDst, wgpu.TextureUsageCopyDst},
	}
	for _, c := range cases {
		if got := toNativeUsage(c.in); got != c.want {
			t.Errorf("toNativeUsage(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToNativeUsageCombinesFlags(t *testing.T) {
	got := toNativeUsage(UsageTextureBinding | UsageRenderAttachment)
	want := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment
	if got != want {
		t.Errorf("toNativeUsage combined = %v, want %v", got, want)
	}
}

func TestToNativeUsageZeroIsZero(t *testing.T) {
	if got := toNativeUsage(0); got != 0 {
		t.Errorf("toNativeUsage(0) = %v, want 0", got)
	}
}

func TestFilterTypeFromFormatDepthFormats(t *testing.T) {
	depthFormats := []wgpu.TextureFormat{
		wgpu.TextureFormatDepth16Unorm,
		wgpu.TextureFormatDepth24Plus,
		wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float,
	}
	for _, f := range depthFormats {
		if got := FilterTypeFromFormat(f); got != wgpu.TextureSampleTypeDepth {
			t.Errorf("FilterTypeFromFormat(%v) = %v, want Depth", f, got)
		}
	}
}

func TestFilterTypeFromFormatIntegerFormats(t *testing.T) {
	if got := FilterTypeFromFormat(wgpu.TextureFormatR32Uint); got != wgpu.TextureSampleTypeUint {
		t.Errorf("FilterTypeFromFormat(R32Uint) = %v, want Uint", got)
	}
	if got := FilterTypeFromFormat(wgpu.TextureFormatRGBA32Sint); got != wgpu.TextureSampleTypeSint {
		t.Errorf("FilterTypeFromFormat(RGBA32Sint) = %v, want Sint", got)
	}
}

func TestFilterTypeFromFormatDefaultsToFloat(t *testing.T) {
	if got := FilterTypeFromFormat(wgpu.TextureFormatRGBA8Unorm); got != wgpu.TextureSampleTypeFloat {
		t.Errorf("FilterTypeFromFormat(RGBA8Unorm) = %v, want Float", got)
	}
}

func TestDimensionFromTypeName(t *testing.T) {
	cases := map[string]wgpu.TextureViewDimension{
		"texture_1d":          wgpu.TextureViewDimension1D,
		"texture_2d":          wgpu.TextureViewDimension2D,
		"texture_2d_array":    wgpu.TextureViewDimension2DArray,
		"texture_cube":        wgpu.TextureViewDimensionCube,
		"texture_cube_array":  wgpu.TextureViewDimensionCubeArray,
		"texture_3d":          wgpu.TextureViewDimension3D,
		"texture_unknown_foo": wgpu.TextureViewDimension2D,
	}
	for name, want := range cases {
		if got := DimensionFromTypeName(name); got != want {
			t.Errorf("DimensionFromTypeName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMipViewOutOfRangeReturnsNil(t *testing.T) {
	tex := &texture{mipViews: make([]*wgpu.TextureView, 2)}
	if got := tex.MipView(5); got != nil {
		t.Errorf("expected out-of-range MipView to return nil, got %v", got)
	}
}

func TestLayerViewOutOfRangeReturnsNil(t *testing.T) {
	tex := &texture{layerViews: make([]*wgpu.TextureView, 1)}
	if got := tex.LayerView(3); got != nil {
		t.Errorf("expected out-of-range LayerView to return nil, got %v", got)
	}
}

func TestNameWidthHeightFormatAccessors(t *testing.T) {
	name := common.NewName("test_texture")
	tex := &texture{name: name, format: wgpu.TextureFormatRGBA8Unorm, width: 64, height: 32}
	if tex.Name() != name {
		t.Errorf("Name() = %v, want %v", tex.Name(), name)
	}
	if tex.Format() != wgpu.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", tex.Format())
	}
	if tex.Width() != 64 || tex.Height() != 32 {
		t.Errorf("Width/Height = %d/%d, want 64/32", tex.Width(), tex.Height())
	}
}

func TestLoadStoreClearValueAccessors(t *testing.T) {
	cv := wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	tex := &texture{loadOp: LoadOpLoad, storeOp: StoreOpDiscard, clearValue: cv}
	if tex.LoadOp() != LoadOpLoad {
		t.Errorf("LoadOp() = %v, want LoadOpLoad", tex.LoadOp())
	}
	if tex.StoreOp() != StoreOpDiscard {
		t.Errorf("StoreOp() = %v, want StoreOpDiscard", tex.StoreOp())
	}
	if tex.ClearValue() != cv {
		t.Errorf("ClearValue() = %v, want %v", tex.ClearValue(), cv)
	}
}

func TestWrapExternalDefaultsToClearAndStore(t *testing.T) {
	cache := resourcecache.New()
	name := common.NewName("swapchain")
	got := WrapExternal(cache, name, nil, nil, wgpu.TextureFormatBGRA8Unorm, 1920, 1080)
	if got.LoadOp() != LoadOpClear {
		t.Errorf("WrapExternal LoadOp() = %v, want LoadOpClear", got.LoadOp())
	}
	if got.StoreOp() != StoreOpStore {
		t.Errorf("WrapExternal StoreOp() = %v, want StoreOpStore", got.StoreOp())
	}
	stored, ok := cache.Fetch(resourcecache.Image, name)
	if !ok || stored.(Texture) != got {
		t.Errorf("expected WrapExternal to store the wrapper under %v", name)
	}
}
