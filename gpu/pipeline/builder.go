package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/gpu/shader"
)

// Option is a functional option configuring a Pipeline during New.
type Option func(*pipeline)

func WithVertexShader(s shader.Shader) Option   { return func(p *pipeline) { p.vertexShader = s } }
func WithFragmentShader(s shader.Shader) Option { return func(p *pipeline) { p.fragmentShader = s } }
func WithComputeShader(s shader.Shader) Option  { return func(p *pipeline) { p.computeShader = s } }

func WithDepthTestEnabled(enabled bool) Option {
	return func(p *pipeline) { p.depthTestEnabled = enabled }
}

func WithDepthWriteEnabled(enabled bool) Option {
	return func(p *pipeline) { p.depthWriteEnabled = enabled }
}

func WithDepthBias(bias int32, slopeScale float32) Option {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

func WithBlendEnabled(enabled bool) Option { return func(p *pipeline) { p.blendEnabled = enabled } }

func WithCullMode(mode wgpu.CullMode) Option { return func(p *pipeline) { p.cullMode = mode } }

func WithTopology(topology wgpu.PrimitiveTopology) Option {
	return func(p *pipeline) { p.topology = topology }
}

func WithFrontFace(frontFace wgpu.FrontFace) Option {
	return func(p *pipeline) { p.frontFace = frontFace }
}

func WithWriteMask(writeMask wgpu.ColorWriteMask) Option {
	return func(p *pipeline) { p.writeMask = writeMask }
}

func WithBlendState(blendState *wgpu.BlendState) Option {
	return func(p *pipeline) { p.blendState = blendState }
}
