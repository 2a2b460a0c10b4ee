package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderType identifies which pipeline stage a shader module targets.
type ShaderType uint8

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
	ShaderTypeCompute
)

// Group is a reflected bind group index. Reflection always assigns groups
// in this fixed order regardless of declaration order in source.
type Group uint8

const (
	GroupGlobal Group = iota
	GroupPass
	GroupMaterial
)

// BindingKind classifies the resource type a reflected binding names.
type BindingKind uint8

const (
	BindingUniform BindingKind = iota
	BindingStorage
	BindingTexture
	BindingStorageTexture
	BindingSampler
)

// Access reports the read/write mode a storage binding declared.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

// Binding is one reflected @group/@binding declaration.
type Binding struct {
	Index      uint32
	VarName    string
	Kind       BindingKind
	Access     Access
	Dimension  wgpu.TextureViewDimension
	SampleType wgpu.TextureSampleType
	TexelFormat wgpu.TextureFormat
}

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// sampledTextureInfo holds the view dimension and multisampled flag for a sampled texture type
type sampledTextureInfo struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to size structs that reference other structs; no binding size is
// recorded from it.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
