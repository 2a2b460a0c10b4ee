// Package shader implements the Shader GPU resource wrapper: source
// loading through the include/define preprocessor, WGSL reflection into
// ordered Global/Pass/Material bind groups, and the cached Shader type
// pipeline construction consumes.
package shader

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

// Reflection is the tagged-union record produced by parsing a shader's
// source: group index -> ordered bindings declared in that group.
type Reflection struct {
	Groups map[Group][]Binding
}

// Binding looks up a single reflected binding by group and index.
//
// Parameters:
//   - group: the bind group index
//   - index: the binding index within that group
//
// Returns:
//   - Binding: the matching binding
//   - bool: true if found
func (r Reflection) Binding(group Group, index uint32) (Binding, bool) {
	for _, b := range r.Groups[group] {
		if b.Index == index {
			return b, true
		}
	}
	return Binding{}, false
}

// Shader wraps a compiled shader module plus everything reflection
// extracted from its source: entry point, vertex layouts (vertex stage
// only), workgroup size (compute stage only), and ordered bind group
// reflection.
type Shader interface {
	Key() common.Name
	Source() string
	ShaderType() ShaderType
	EntryPoint() string
	WorkgroupSize() [3]uint32
	VertexLayouts() map[int][]wgpu.VertexBufferLayout
	Module() *wgpu.ShaderModuleDescriptor
	Reflection() Reflection

	// BindGroupLayoutDescriptor builds the wgpu layout descriptor for group,
	// with visibility set to this shader's stage. Returns false if the
	// shader declares no bindings in that group.
	BindGroupLayoutDescriptor(group Group) (wgpu.BindGroupLayoutDescriptor, bool)
}

type shader struct {
	key        common.Name
	source     string
	shaderType ShaderType
	entryPoint string
	workgroup  [3]uint32
	vertex     map[int][]wgpu.VertexBufferLayout
	module     *wgpu.ShaderModuleDescriptor
	reflection Reflection
}

var _ Shader = &shader{}

func shaderStage(t ShaderType) wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return 0
	}
}

// Create loads sourcePath through pp, reflects the result, and caches the
// resulting Shader under name. Returns the cached shader unchanged if
// already present.
//
// Parameters:
//   - cache: the resource cache to fetch/store the wrapper in
//   - name: cache key
//   - shaderType: which pipeline stage this module targets
//   - sourcePath: path to the shader's top-level source file
//   - pp: the include/define preprocessor to resolve sourcePath through
//
// Returns:
//   - Shader: the cached or newly-created shader wrapper
//   - error: an error if the source could not be read, preprocessed, or reflected
func Create(cache resourcecache.Cache, name common.Name, shaderType ShaderType, sourcePath string, pp Preprocessor) (Shader, error) {
	if existing, ok := cache.Fetch(resourcecache.Shader, name); ok {
		return existing.(Shader), nil
	}

	processed, err := pp.Process(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader: preprocess %s: %w", sourcePath, err)
	}

	s := &shader{
		key:        name,
		source:     processed,
		shaderType: shaderType,
		entryPoint: parseEntryPoint(processed, shaderType),
		reflection: Reflection{Groups: parseBindGroups(processed)},
	}

	if shaderType == ShaderTypeVertex {
		s.vertex = parseVertexLayouts(processed)
	}
	if shaderType == ShaderTypeCompute {
		s.workgroup = parseWorkgroupSize(processed)
	} else {
		s.workgroup = [3]uint32{1, 1, 1}
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label:          name.String(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: processed},
	}

	cache.Store(resourcecache.Shader, name, Shader(s))
	return s, nil
}

func (s *shader) Key() common.Name                                { return s.key }
func (s *shader) Source() string                                  { return s.source }
func (s *shader) ShaderType() ShaderType                           { return s.shaderType }
func (s *shader) EntryPoint() string                               { return s.entryPoint }
func (s *shader) WorkgroupSize() [3]uint32                         { return s.workgroup }
func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout { return s.vertex }
func (s *shader) Module() *wgpu.ShaderModuleDescriptor             { return s.module }
func (s *shader) Reflection() Reflection                           { return s.reflection }

func (s *shader) BindGroupLayoutDescriptor(group Group) (wgpu.BindGroupLayoutDescriptor, bool) {
	bindings, ok := s.reflection.Groups[group]
	if !ok || len(bindings) == 0 {
		return wgpu.BindGroupLayoutDescriptor{}, false
	}

	visibility := shaderStage(s.shaderType)
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		entries = append(entries, toLayoutEntry(b, visibility))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })

	return wgpu.BindGroupLayoutDescriptor{Entries: entries}, true
}

// MergeReflections merges the bind group layouts of several shaders
// belonging to the same pipeline (e.g. a render pipeline's vertex and
// fragment stages), OR-ing stage visibility where both declare the same
// group/binding. Used to build a single wgpu.BindGroupLayout per group
// that satisfies every stage referencing it.
//
// Parameters:
//   - shaders: the shaders to merge, in any order
//
// Returns:
//   - map[Group]wgpu.BindGroupLayoutDescriptor: merged descriptors keyed by group
func MergeReflections(shaders ...Shader) map[Group]wgpu.BindGroupLayoutDescriptor {
	type key struct {
		group   Group
		binding uint32
	}
	merged := make(map[key]wgpu.BindGroupLayoutEntry)
	order := make(map[Group][]uint32)

	for _, s := range shaders {
		if s == nil {
			continue
		}
		visibility := shaderStage(s.ShaderType())
		for group, bindings := range s.Reflection().Groups {
			for _, b := range bindings {
				k := key{group, b.Index}
				if existing, ok := merged[k]; ok {
					existing.Visibility |= visibility
					merged[k] = existing
					continue
				}
				merged[k] = toLayoutEntry(b, visibility)
				order[group] = append(order[group], b.Index)
			}
		}
	}

	result := make(map[Group]wgpu.BindGroupLayoutDescriptor, len(order))
	for group, indices := range order {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(indices))
		seen := make(map[uint32]bool, len(indices))
		for _, idx := range indices {
			if seen[idx] {
				continue
			}
			seen[idx] = true
			entries = append(entries, merged[key{group, idx}])
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		result[group] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}

	return result
}

// toLayoutEntry maps a reflected Binding back to the native layout entry
// shape pipeline and bind-group construction need.
func toLayoutEntry(b Binding, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: b.Index, Visibility: visibility}

	switch b.Kind {
	case BindingUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case BindingStorage:
		if b.Access == AccessReadWrite {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
	case BindingSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case BindingTexture:
		entry.Texture.ViewDimension = b.Dimension
		entry.Texture.SampleType = b.SampleType
	case BindingStorageTexture:
		entry.StorageTexture.ViewDimension = b.Dimension
		entry.StorageTexture.Format = b.TexelFormat
		switch b.Access {
		case AccessWrite:
			entry.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
		case AccessRead:
			entry.StorageTexture.Access = wgpu.StorageTextureAccessReadOnly
		case AccessReadWrite:
			entry.StorageTexture.Access = wgpu.StorageTextureAccessReadWrite
		}
	}

	return entry
}
