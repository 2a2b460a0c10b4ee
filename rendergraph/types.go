package rendergraph

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/gpu/texture"
)

// Flags is the set of behaviors a pass opts into.
type Flags uint8

const (
	FlagGraphics Flags = 1 << iota
	FlagCompute
	// FlagPresent marks a pass as the frame's terminal consumer: it is
	// never culled regardless of reference count, since its purpose
	// (presenting to the screen) has no downstream reader to observe.
	FlagPresent
	// FlagGraphLocal bypasses the shared per-submit command encoder and
	// records its own, for passes that must run outside the normal
	// pass ordering (e.g. an upload that must commit before anything
	// else begins).
	FlagGraphLocal
)

// Has reports whether flag is set in f.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// View selects a non-default view of an attached or bound image resource;
// the zero value means "use the resource's default view".
type View struct {
	UseMip   bool
	Mip      uint32
	UseLayer bool
	Layer    uint32
}

// ShaderSetup names the shader(s) a pass's pipeline and bind groups are
// synthesized from. Shaders must already be created (via gpu/shader.Create)
// and cached under these names before Submit runs.
type ShaderSetup struct {
	Vertex   common.Name
	Fragment common.Name
	Compute  common.Name
}

// Params is everything AddPass needs beyond the executor: the resources a
// pass touches and how its pipeline/bind groups should be built.
type Params struct {
	Inputs  []Handle
	Outputs []Handle

	// DepthStencilAttachment is zero (no handle ever encodes to 0 with a
	// valid index of 0 and version 0 only at the very first allocation;
	// callers that want no depth attachment leave this unset) when the
	// pass has no depth target.
	DepthStencilAttachment Handle
	HasDepthStencil        bool

	InputViews  map[Handle]View
	OutputViews map[Handle]View

	ShaderSetup ShaderSetup

	// SkipBindGroupSetup skips synthesizing the pass's own bind group from
	// reflection; the pass still receives the global bind group. The
	// executor must bind anything else itself.
	SkipBindGroupSetup bool
	// SkipPipelineSetup skips building/binding a pipeline for this pass;
	// the executor must call SetPipeline itself.
	SkipPipelineSetup bool

	// ForceKeep prevents culling even at zero reference count.
	ForceKeep bool

	// DispatchX/Y/Z are the compute workgroup counts; unused for graphics
	// passes.
	DispatchX, DispatchY, DispatchZ uint32

	// Attachment load/store behavior and clear color are not configured
	// here: the graph reads LoadOp/StoreOp/ClearValue off each output's
	// materialized Texture (from its ImageDesc) when it builds the
	// render pass descriptor, so every pass writing the same physical
	// image shares one load-op policy rather than each AddPass call
	// overriding it.

	// PassBuffers/PassTextures/PassSamplers are this pass's resolved
	// Group=Pass (1) bindings; MaterialBuffers/Textures/Samplers are its
	// resolved Group=Material (2) bindings. The graph does not infer these
	// from Inputs/Outputs automatically — the caller resolves Handles to
	// concrete GPU bindings (by shader reflection var name) before calling
	// AddPass, since that mapping depends on which WGSL variable name a
	// given Handle is meant to satisfy.
	PassBuffers      []BufferBinding
	PassTextures     []TextureBinding
	PassSamplers     []SamplerBinding
	MaterialBuffers  []BufferBinding
	MaterialTextures []TextureBinding
	MaterialSamplers []SamplerBinding
}

// BufferBinding, TextureBinding and SamplerBinding resolve one shader
// binding index to a concrete GPU resource for pass/material bind group
// synthesis.
type BufferBinding struct {
	Binding uint32
	Buffer  *wgpu.Buffer
	Offset  uint64
	Size    uint64
}

type TextureBinding struct {
	Binding uint32
	View    *wgpu.TextureView
}

type SamplerBinding struct {
	Binding uint32
	Sampler *wgpu.Sampler
}

// Executor is invoked once per non-culled pass with a live Context bound to
// the physical pass (render or compute) the graph opened for it.
type Executor func(ctx *Context)

// ImageDesc describes a logical image resource to be materialized lazily
// on first reference. Mirrors texture.Config minus the Name (assigned by
// the graph) and Force (never applies to transient graph resources).
type ImageDesc struct {
	Width, Height, Depth, MipLevels, SampleCount uint32
	Dimension                                    wgpu.TextureDimension
	Format                                       wgpu.TextureFormat
	Usage                                        texture.Usage
	ClearValue                                   wgpu.Color
	LoadOp                                       texture.LoadOp
	StoreOp                                      texture.StoreOp
	// MaxFrameLifetime bounds how many frames past last_user the physical
	// resource is kept around before becoming eligible for destruction.
	// Zero means "destroy as soon as last_user has passed".
	MaxFrameLifetime uint32
}

// BufferDesc describes a logical buffer resource to be materialized lazily.
type BufferDesc struct {
	Size             uint64
	Usage            buffer.Usage
	CPUReadback      bool
	MaxFrameLifetime uint32
}
