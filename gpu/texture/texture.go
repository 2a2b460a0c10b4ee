// Package texture implements the Texture GPU resource wrapper: cached
// creation, default/per-mip/per-layer view management, and the pure
// reflection helpers (filter/dimension inference) shader binding synthesis
// relies on.
package texture

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

// Usage mirrors the bit-flag set a Texture's config declares.
type Usage uint32

const (
	UsageTextureBinding Usage = 1 << iota
	UsageStorageBinding
	UsageRenderAttachment
	UsageCopySrc
	UsageCopyDst
)

// Has reports whether flag is set in u.
func (u Usage) Has(flag Usage) bool { return u&flag != 0 }

// LoadOp and StoreOp mirror the attachment load/store behavior a pass
// requests for this texture when used as a render target.
type LoadOp uint8

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

type StoreOp uint8

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// StagingData holds RGBA pixel data pending GPU upload for a texture
// binding. Moved here (was common.TextureStagingData in the teacher) since
// staging data is a texture-wrapper concern, not a generic shared type.
type StagingData struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// SamplerStagingData holds sampler configuration pending GPU creation.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                              wgpu.MipmapFilterMode
	LodMinClamp, LodMaxClamp                  float32
	Compare                                   wgpu.CompareFunction
	MaxAnisotropy                             uint16
}

// Config enumerates everything Texture.Create needs.
type Config struct {
	Name       common.Name
	Width      uint32
	Height     uint32
	Depth      uint32 // depth or array-layer count; 1 for a plain 2D texture
	MipLevels  uint32
	SampleCount uint32
	Dimension  wgpu.TextureDimension
	Format     wgpu.TextureFormat
	Usage      Usage
	ClearValue wgpu.Color
	LoadOp     LoadOp
	StoreOp    StoreOp

	OneViewPerMip   bool
	OneViewPerLayer bool

	Force bool
}

// Texture wraps a native GPU texture plus its default view and any
// per-mip/per-layer views the config requested.
type Texture interface {
	Name() common.Name
	Native() *wgpu.Texture
	DefaultView() *wgpu.TextureView
	MipView(mip uint32) *wgpu.TextureView
	LayerView(layer uint32) *wgpu.TextureView
	Format() wgpu.TextureFormat
	Width() uint32
	Height() uint32
	LoadOp() LoadOp
	StoreOp() StoreOp
	ClearValue() wgpu.Color
	Release()
}

type texture struct {
	name       common.Name
	nat        *wgpu.Texture
	defaultView *wgpu.TextureView
	mipViews   []*wgpu.TextureView
	layerViews []*wgpu.TextureView
	format     wgpu.TextureFormat
	width      uint32
	height     uint32
	loadOp     LoadOp
	storeOp    StoreOp
	clearValue wgpu.Color
}

var _ Texture = &texture{}

func toNativeUsage(u Usage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u.Has(UsageTextureBinding) {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u.Has(UsageStorageBinding) {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u.Has(UsageRenderAttachment) {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u.Has(UsageCopySrc) {
		out |= wgpu.TextureUsageCopySrc
	}
	if u.Has(UsageCopyDst) {
		out |= wgpu.TextureUsageCopyDst
	}
	return out
}

// Create fetches or creates the texture named in cfg.Name from cache. When
// cfg.Force is set, an existing cached texture is released and rebuilt —
// this is how resolution_change invalidation is propagated to persistent
// HZB/entity-id/GI targets.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to fetch/store the wrapper in
//   - cfg: texture configuration
//
// Returns:
//   - Texture: the cached or newly-created texture wrapper
//   - error: an error if native texture or view creation failed
func Create(dev *wgpu.Device, cache resourcecache.Cache, cfg Config) (Texture, error) {
	if existing, ok := cache.Fetch(resourcecache.Image, cfg.Name); ok && !cfg.Force {
		return existing.(Texture), nil
	}
	if existing, ok := cache.Fetch(resourcecache.Image, cfg.Name); ok && cfg.Force {
		existing.(Texture).Release()
		cache.Remove(resourcecache.Image, cfg.Name)
	}

	mips := cfg.MipLevels
	if mips == 0 {
		mips = 1
	}
	samples := cfg.SampleCount
	if samples == 0 {
		samples = 1
	}
	depth := cfg.Depth
	if depth == 0 {
		depth = 1
	}

	nat, err := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: cfg.Name.String(),
		Size: wgpu.Extent3D{
			Width:              cfg.Width,
			Height:             cfg.Height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     cfg.Dimension,
		Format:        cfg.Format,
		Usage:         toNativeUsage(cfg.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("texture: create %s: %w", cfg.Name, err)
	}

	defaultView, err := nat.CreateView(nil)
	if err != nil {
		nat.Release()
		return nil, fmt.Errorf("texture: default view %s: %w", cfg.Name, err)
	}

	t := &texture{
		name:        cfg.Name,
		nat:         nat,
		defaultView: defaultView,
		format:      cfg.Format,
		width:       cfg.Width,
		height:      cfg.Height,
		loadOp:      cfg.LoadOp,
		storeOp:     cfg.StoreOp,
		clearValue:  cfg.ClearValue,
	}

	if cfg.OneViewPerMip {
		t.mipViews = make([]*wgpu.TextureView, mips)
		for i := uint32(0); i < mips; i++ {
			v, viewErr := nat.CreateView(&wgpu.TextureViewDescriptor{
				Label:           fmt.Sprintf("%s mip %d", cfg.Name, i),
				BaseMipLevel:    i,
				MipLevelCount:   1,
				BaseArrayLayer:  0,
				ArrayLayerCount: depth,
			})
			if viewErr != nil {
				return nil, fmt.Errorf("texture: mip view %d of %s: %w", i, cfg.Name, viewErr)
			}
			t.mipViews[i] = v
		}
	}

	if cfg.OneViewPerLayer {
		t.layerViews = make([]*wgpu.TextureView, depth)
		for i := uint32(0); i < depth; i++ {
			v, viewErr := nat.CreateView(&wgpu.TextureViewDescriptor{
				Label:           fmt.Sprintf("%s layer %d", cfg.Name, i),
				BaseMipLevel:    0,
				MipLevelCount:   mips,
				BaseArrayLayer:  i,
				ArrayLayerCount: 1,
			})
			if viewErr != nil {
				return nil, fmt.Errorf("texture: layer view %d of %s: %w", i, cfg.Name, viewErr)
			}
			t.layerViews[i] = v
		}
	}

	cache.Store(resourcecache.Image, cfg.Name, Texture(t))
	return t, nil
}

func (t *texture) Name() common.Name              { return t.name }
func (t *texture) Native() *wgpu.Texture          { return t.nat }
func (t *texture) DefaultView() *wgpu.TextureView { return t.defaultView }
func (t *texture) Format() wgpu.TextureFormat     { return t.format }
func (t *texture) Width() uint32                  { return t.width }
func (t *texture) Height() uint32                 { return t.height }
func (t *texture) LoadOp() LoadOp                 { return t.loadOp }
func (t *texture) StoreOp() StoreOp               { return t.storeOp }
func (t *texture) ClearValue() wgpu.Color         { return t.clearValue }

func (t *texture) MipView(mip uint32) *wgpu.TextureView {
	if int(mip) >= len(t.mipViews) {
		return nil
	}
	return t.mipViews[mip]
}

func (t *texture) LayerView(layer uint32) *wgpu.TextureView {
	if int(layer) >= len(t.layerViews) {
		return nil
	}
	return t.layerViews[layer]
}

func (t *texture) Release() {
	for _, v := range t.mipViews {
		v.Release()
	}
	for _, v := range t.layerViews {
		v.Release()
	}
	t.defaultView.Release()
	t.nat.Release()
}

// WrapExternal stores a natively-owned texture (the swapchain's acquired
// frame, most commonly) as a Texture under name, so a render graph's
// RegisterImage call can address it like any cache-backed resource. The
// caller must not call Release on the returned Texture: device.Present
// releases nat, and view stays with whoever acquired it from
// device.AcquireSurfaceTexture.
//
// The wrapper is always given LoadOpClear/StoreOpStore: a swapchain image
// is a fresh per-frame render target with no prior content worth
// preserving, and the present pass is always its only writer.
//
// Parameters:
//   - cache: the resource cache to store the wrapper in
//   - name: the key RegisterImage will look this texture up under
//   - nat: the externally-owned native texture
//   - view: nat's default view
//   - format: nat's format
//   - width: nat's width in pixels
//   - height: nat's height in pixels
//
// Returns:
//   - Texture: the stored wrapper
func WrapExternal(cache resourcecache.Cache, name common.Name, nat *wgpu.Texture, view *wgpu.TextureView, format wgpu.TextureFormat, width, height uint32) Texture {
	t := &texture{
		name:        name,
		nat:         nat,
		defaultView: view,
		format:      format,
		width:       width,
		height:      height,
		loadOp:      LoadOpClear,
		storeOp:     StoreOpStore,
		clearValue:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	cache.Store(resourcecache.Image, name, Texture(t))
	return t
}

// FilterTypeFromFormat returns the filterable sample type reflection should
// report for format: depth/stencil formats are non-filterable by default
// comparison-less samplers, integer formats are never filterable, and
// everything else is float-filterable.
//
// Parameters:
//   - format: the texture format to classify
//
// Returns:
//   - wgpu.TextureSampleType: the sample type reflection should record
func FilterTypeFromFormat(format wgpu.TextureFormat) wgpu.TextureSampleType {
	switch format {
	case wgpu.TextureFormatDepth16Unorm, wgpu.TextureFormatDepth24Plus, wgpu.TextureFormatDepth24PlusStencil8, wgpu.TextureFormatDepth32Float:
		return wgpu.TextureSampleTypeDepth
	case wgpu.TextureFormatR32Uint, wgpu.TextureFormatRG32Uint, wgpu.TextureFormatRGBA32Uint:
		return wgpu.TextureSampleTypeUint
	case wgpu.TextureFormatR32Sint, wgpu.TextureFormatRG32Sint, wgpu.TextureFormatRGBA32Sint:
		return wgpu.TextureSampleTypeSint
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

// DimensionFromTypeName maps a WGSL texture type name (as produced by
// shader reflection, e.g. "texture_2d_array", "texture_cube") to its native
// view dimension.
//
// Parameters:
//   - typeName: the WGSL texture type name
//
// Returns:
//   - wgpu.TextureViewDimension: the matching view dimension
func DimensionFromTypeName(typeName string) wgpu.TextureViewDimension {
	switch typeName {
	case "texture_1d":
		return wgpu.TextureViewDimension1D
	case "texture_2d":
		return wgpu.TextureViewDimension2D
	case "texture_2d_array":
		return wgpu.TextureViewDimension2DArray
	case "texture_cube":
		return wgpu.TextureViewDimensionCube
	case "texture_cube_array":
		return wgpu.TextureViewDimensionCubeArray
	case "texture_3d":
		return wgpu.TextureViewDimension3D
	default:
		return wgpu.TextureViewDimension2D
	}
}
