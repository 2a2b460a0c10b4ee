// Package bindgroup implements the BindGroup GPU resource wrapper: a
// cached native bind group built against either a pipeline's inferred
// layout or an explicit layout synthesized from shader reflection, plus
// the bindless BindingTable free-list exposed per binding slot.
package bindgroup

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
	"github.com/lumenforge/framegraph/gpu/shader"
)

// BufferEntry, TextureEntry and SamplerEntry describe one resolved
// resource to bind at a given binding index. Only one of the three
// entry kinds is used per binding.
type BufferEntry struct {
	Binding uint32
	Buffer  *wgpu.Buffer
	Offset  uint64
	Size    uint64
}

type TextureEntry struct {
	Binding uint32
	View    *wgpu.TextureView
}

type SamplerEntry struct {
	Binding uint32
	Sampler *wgpu.Sampler
}

// Config describes a bind group's resolved bindings. Group identifies
// which of the three reflection-ordered slots (Global=0, Pass=1,
// Material=2) this group is built for.
type Config struct {
	Name     common.Name
	Group    shader.Group
	Layout   *wgpu.BindGroupLayout
	Buffers  []BufferEntry
	Textures []TextureEntry
	Samplers []SamplerEntry
	Force    bool
}

// BindGroup wraps a native bind group plus, per binding index, an
// optional bindless BindingTable for callers that sub-allocate bindless
// resource slots within a single binding (e.g. a bindless material
// texture array).
type BindGroup interface {
	Name() common.Name
	Group() shader.Group
	Native() *wgpu.BindGroup

	// Table returns the BindingTable for binding, creating one with the
	// given capacity on first use. Subsequent calls with a different
	// capacity still return the original table.
	//
	// Parameters:
	//   - binding: the binding index this table manages bindless slots for
	//   - capacity: the table's capacity, used only on first creation
	//
	// Returns:
	//   - *BindingTable: the table for binding
	Table(binding uint32, capacity uint32) *BindingTable

	Release()
}

type bindGroup struct {
	name   common.Name
	group  shader.Group
	native *wgpu.BindGroup
	tables map[uint32]*BindingTable
}

var _ BindGroup = &bindGroup{}

// Create fetches or creates the bind group named in cfg.Name from cache.
// When cfg.Force is set, any existing cached bind group is released and
// rebuilt — this is how resolution_change invalidation propagates to bind
// groups referencing persistent images.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to fetch/store the wrapper in
//   - cfg: resolved binding configuration
//
// Returns:
//   - BindGroup: the cached or newly-created bind group
//   - error: an error if native creation failed
func Create(dev *wgpu.Device, cache resourcecache.Cache, cfg Config) (BindGroup, error) {
	if existing, ok := cache.Fetch(resourcecache.BindGroup, cfg.Name); ok && !cfg.Force {
		return existing.(BindGroup), nil
	}
	if existing, ok := cache.Fetch(resourcecache.BindGroup, cfg.Name); ok && cfg.Force {
		existing.(BindGroup).Release()
		cache.Remove(resourcecache.BindGroup, cfg.Name)
	}

	if cfg.Layout == nil {
		return nil, fmt.Errorf("bindgroup: %s has no layout", cfg.Name)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(cfg.Buffers)+len(cfg.Textures)+len(cfg.Samplers))
	for _, b := range cfg.Buffers {
		// Size left zero binds from Offset to the end of the buffer, which
		// is how a caller that doesn't track its own size (e.g. a pass
		// input resolved straight from config.size) should bind it.
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: b.Binding,
			Buffer:  b.Buffer,
			Offset:  b.Offset,
			Size:    b.Size,
		})
	}
	for _, t := range cfg.Textures {
		entries = append(entries, wgpu.BindGroupEntry{Binding: t.Binding, TextureView: t.View})
	}
	for _, s := range cfg.Samplers {
		entries = append(entries, wgpu.BindGroupEntry{Binding: s.Binding, Sampler: s.Sampler})
	}

	native, err := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   cfg.Name.String(),
		Layout:  cfg.Layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bindgroup: create %s: %w", cfg.Name, err)
	}

	bg := &bindGroup{
		name:   cfg.Name,
		group:  cfg.Group,
		native: native,
		tables: make(map[uint32]*BindingTable),
	}

	cache.Store(resourcecache.BindGroup, cfg.Name, BindGroup(bg))
	return bg, nil
}

func (b *bindGroup) Name() common.Name       { return b.name }
func (b *bindGroup) Group() shader.Group     { return b.group }
func (b *bindGroup) Native() *wgpu.BindGroup { return b.native }

func (b *bindGroup) Table(binding uint32, capacity uint32) *BindingTable {
	if t, ok := b.tables[binding]; ok {
		return t
	}
	t := NewBindingTable(capacity)
	b.tables[binding] = t
	return t
}

func (b *bindGroup) Release() {
	b.native.Release()
	b.tables = nil
}
