// Package pipeline implements the PipelineState GPU resource wrapper: a
// render or compute pipeline descriptor built from reflected shaders,
// created once per pass name and cached by that name.
package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/shader"
)

// Type identifies whether a Pipeline is a render or compute pipeline.
type Type int

const (
	TypeRender Type = iota
	TypeCompute
)

// Pipeline holds the shader references and fixed-function state a render
// or compute pipeline is built from, plus the native pipeline object once
// Create has run.
type Pipeline interface {
	Type() Type
	Name() common.Name
	Shader(t shader.ShaderType) shader.Shader

	// Native returns *wgpu.RenderPipeline or *wgpu.ComputePipeline depending
	// on Type. The caller type-asserts.
	Native() any

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	DepthBias() int32
	DepthBiasSlopeScale() float32
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	SetRenderPipeline(p *wgpu.RenderPipeline)
	SetComputePipeline(p *wgpu.ComputePipeline)
}

type pipeline struct {
	pipelineType Type
	name         common.Name

	vertexShader, fragmentShader, computeShader shader.Shader

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// New constructs an unregistered Pipeline descriptor; pass it to Create to
// build and cache the native object.
//
// Parameters:
//   - name: cache key, also used as the pass name this pipeline belongs to
//   - pipelineType: render or compute
//   - opts: functional options configuring fixed-function state and shaders
//
// Returns:
//   - Pipeline: the configured (not yet created) pipeline descriptor
func New(name common.Name, pipelineType Type, opts ...Option) Pipeline {
	p := &pipeline{
		name:              name,
		pipelineType:      pipelineType,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() Type         { return p.pipelineType }
func (p *pipeline) Name() common.Name  { return p.name }

func (p *pipeline) Native() any {
	switch p.pipelineType {
	case TypeRender:
		return p.renderPipeline
	case TypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) DepthTestEnabled() bool          { return p.depthTestEnabled }
func (p *pipeline) DepthWriteEnabled() bool         { return p.depthWriteEnabled }
func (p *pipeline) DepthBias() int32                { return p.depthBias }
func (p *pipeline) DepthBiasSlopeScale() float32    { return p.depthBiasSlopeScale }
func (p *pipeline) BlendEnabled() bool              { return p.blendEnabled }
func (p *pipeline) CullMode() wgpu.CullMode         { return p.cullMode }
func (p *pipeline) Topology() wgpu.PrimitiveTopology { return p.topology }
func (p *pipeline) FrontFace() wgpu.FrontFace       { return p.frontFace }
func (p *pipeline) WriteMask() wgpu.ColorWriteMask  { return p.writeMask }
func (p *pipeline) BlendState() *wgpu.BlendState    { return p.blendState }

func (p *pipeline) Shader(t shader.ShaderType) shader.Shader {
	switch t {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline)   { p.renderPipeline = rp }
func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) { p.computePipeline = cp }
