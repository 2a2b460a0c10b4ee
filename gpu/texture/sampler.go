package texture

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

// CreateSampler fetches or creates the sampler named name, applying the
// same linear/repeat defaults the engine falls back to when a staging
// field is left zero-valued.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to fetch/store the sampler in
//   - name: cache key
//   - staging: sampler configuration
//
// Returns:
//   - *wgpu.Sampler: the cached or newly-created sampler
//   - error: an error if creation failed
func CreateSampler(dev *wgpu.Device, cache resourcecache.Cache, name common.Name, staging SamplerStagingData) (*wgpu.Sampler, error) {
	if existing, ok := cache.Fetch(resourcecache.Sampler, name); ok {
		return existing.(*wgpu.Sampler), nil
	}

	samp, err := dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         name.String(),
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(staging.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
		Compare:       staging.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("texture: create sampler %s: %w", name, err)
	}
	cache.Store(resourcecache.Sampler, name, samp)
	return samp, nil
}

// CreateComparisonSampler creates a PCF shadow-comparison sampler
// (clamp-to-edge, linear filtering, CompareFunctionLess). Nothing in this
// module calls it; the sampler is not cached.
//
// Parameters:
//   - dev: the native device to allocate from
//
// Returns:
//   - *wgpu.Sampler: the comparison sampler
//   - error: an error if creation failed
func CreateComparisonSampler(dev *wgpu.Device) (*wgpu.Sampler, error) {
	samp, err := dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "shadow comparison sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("texture: create comparison sampler: %w", err)
	}
	return samp, nil
}
