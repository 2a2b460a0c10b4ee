package pipeline

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
	"github.com/lumenforge/framegraph/gpu/shader"
)

// RenderTargets carries the physical attachment shapes a render pipeline
// must be compatible with; the render graph resolves these from the pass's
// declared outputs before calling Create.
type RenderTargets struct {
	ColorFormats []wgpu.TextureFormat
	SampleCount  uint32
	// DepthFormat is wgpu.TextureFormatUndefined when the pass has no depth attachment.
	DepthFormat wgpu.TextureFormat
}

// Create builds and caches the native pipeline object for p, deriving bind
// group layouts from shader reflection. Created once per Name per spec
// §4.4; a cache hit returns the existing Pipeline unchanged.
//
// Parameters:
//   - dev: the native device to allocate from
//   - cache: the resource cache to fetch/store the pipeline and its derived bind group layouts in
//   - p: the configured (unregistered) pipeline descriptor
//   - targets: render target shapes; ignored for compute pipelines
//
// Returns:
//   - Pipeline: the cached or newly-created pipeline
//   - error: an error if shader requirements are unmet or native creation failed
func Create(dev *wgpu.Device, cache resourcecache.Cache, p Pipeline, targets RenderTargets) (Pipeline, error) {
	if existing, ok := cache.Fetch(resourcecache.Pipeline, p.Name()); ok {
		return existing.(Pipeline), nil
	}

	switch p.Type() {
	case TypeRender:
		if err := createRender(dev, cache, p, targets); err != nil {
			return nil, err
		}
	case TypeCompute:
		if err := createCompute(dev, cache, p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("pipeline: unknown pipeline type for %s", p.Name())
	}

	cache.Store(resourcecache.Pipeline, p.Name(), p)
	return p, nil
}

// bindGroupLayoutName derives the resource cache key for the Nth group's
// layout belonging to pipeline name, breaking the pipeline<->layout cycle
// by hash rather than a direct reference.
func bindGroupLayoutName(pipelineName common.Name, group shader.Group) common.Name {
	return common.NewName(fmt.Sprintf("%s#group%d", pipelineName, group))
}

func buildLayouts(dev *wgpu.Device, cache resourcecache.Cache, pipelineName common.Name, merged map[shader.Group]wgpu.BindGroupLayoutDescriptor) ([]*wgpu.BindGroupLayout, error) {
	maxGroup := -1
	for g := range merged {
		if int(g) > maxGroup {
			maxGroup = int(g)
		}
	}
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)

	groups := make([]int, 0, len(merged))
	for g := range merged {
		groups = append(groups, int(g))
	}
	sort.Ints(groups)

	for _, gi := range groups {
		g := shader.Group(gi)
		name := bindGroupLayoutName(pipelineName, g)
		if existing, ok := cache.Fetch(resourcecache.BindGroupLayout, name); ok {
			layouts[g] = existing.(*wgpu.BindGroupLayout)
			continue
		}
		desc := merged[g]
		layout, err := dev.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("pipeline: bind group layout for group %d of %s: %w", g, pipelineName, err)
		}
		cache.Store(resourcecache.BindGroupLayout, name, layout)
		layouts[g] = layout
	}

	return layouts, nil
}

func createRender(dev *wgpu.Device, cache resourcecache.Cache, p Pipeline, targets RenderTargets) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return fmt.Errorf("pipeline: %s requires both vertex and fragment shaders", p.Name())
	}

	vs, err := dev.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("pipeline: vertex module for %s: %w", p.Name(), err)
	}
	fs, err := dev.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("pipeline: fragment module for %s: %w", p.Name(), err)
	}

	merged := shader.MergeReflections(vertexShader, fragmentShader)
	layouts, err := buildLayouts(dev, cache, p.Name(), merged)
	if err != nil {
		return err
	}

	pipelineLayout, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Name().String(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("pipeline: layout for %s: %w", p.Name(), err)
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayouts()[i]...)
	}

	colorTargets := make([]wgpu.ColorTargetState, 0, len(targets.ColorFormats))
	for _, format := range targets.ColorFormats {
		state := wgpu.ColorTargetState{Format: format, WriteMask: p.WriteMask()}
		if p.BlendEnabled() {
			state.Blend = p.BlendState()
		}
		colorTargets = append(colorTargets, state)
	}

	sampleCount := targets.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}

	var depthStencil *wgpu.DepthStencilState
	if targets.DepthFormat != wgpu.TextureFormatUndefined {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              targets.DepthFormat,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Name().String(),
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    colorTargets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return fmt.Errorf("pipeline: create render pipeline %s: %w", p.Name(), err)
	}

	p.SetRenderPipeline(created)
	return nil
}

func createCompute(dev *wgpu.Device, cache resourcecache.Cache, p Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return fmt.Errorf("pipeline: %s requires a compute shader", p.Name())
	}

	mod, err := dev.CreateShaderModule(computeShader.Module())
	if err != nil {
		return fmt.Errorf("pipeline: compute module for %s: %w", p.Name(), err)
	}

	merged := shader.MergeReflections(computeShader)
	layouts, err := buildLayouts(dev, cache, p.Name(), merged)
	if err != nil {
		return err
	}

	layout, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Name().String(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("pipeline: layout for %s: %w", p.Name(), err)
	}

	created, err := dev.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.Name().String(),
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     mod,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline: create compute pipeline %s: %w", p.Name(), err)
	}

	p.SetComputePipeline(created)
	return nil
}
