package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/bindgroup"
	"github.com/lumenforge/framegraph/gpu/pipeline"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
	"github.com/lumenforge/framegraph/gpu/shader"
	"github.com/lumenforge/framegraph/gpu/texture"
)

// Submit compiles the recorded frame (cull, sort, first/last-use) and
// executes every surviving pass in order against one shared command
// encoder, binding global at every pass. GraphLocal passes record into
// their own encoder instead and submit immediately.
//
// Parameters:
//   - global: the Group=Global (0) bind group bound to every pass
//
// Returns:
//   - error: the first error encountered materializing resources, building
//     a pipeline/bind group, or submitting commands
func (g *Graph) Submit(global bindgroup.BindGroup) error {
	g.compile()

	encoder, err := g.dev.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("rendergraph: create command encoder: %w", err)
	}

	for _, passIndex := range g.order {
		p := g.passes[passIndex]
		if p.flags.Has(FlagGraphLocal) {
			if err := g.executeGraphLocal(p, global); err != nil {
				encoder.Release()
				return err
			}
			continue
		}
		if err := g.executePass(encoder, p, global); err != nil {
			encoder.Release()
			return fmt.Errorf("rendergraph: pass %s: %w", p.name, err)
		}
	}

	for _, fn := range g.postCommands {
		fn(encoder)
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("rendergraph: finish command encoder: %w", err)
	}
	g.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	for _, fn := range g.readbackDrains {
		fn()
	}

	g.collectGarbage()
	return nil
}

func (g *Graph) executeGraphLocal(p *pass, global bindgroup.BindGroup) error {
	encoder, err := g.dev.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	if err := g.executePass(encoder, p, global); err != nil {
		encoder.Release()
		return err
	}
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return err
	}
	g.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (g *Graph) executePass(encoder *wgpu.CommandEncoder, p *pass, global bindgroup.BindGroup) error {
	shaders, err := g.passShaders(p)
	if err != nil {
		return err
	}

	var pl pipeline.Pipeline
	if !p.params.SkipPipelineSetup {
		pl, err = g.ensurePipeline(p, shaders)
		if err != nil {
			return err
		}
	}

	ctx := &Context{graph: g, Encoder: encoder, DispatchX: p.params.DispatchX, DispatchY: p.params.DispatchY, DispatchZ: p.params.DispatchZ}

	if p.flags.Has(FlagCompute) {
		cp := encoder.BeginComputePass(nil)
		ctx.ComputePass = cp
		if pl != nil {
			cp.SetPipeline(pl.Native().(*wgpu.ComputePipeline))
		}
		if err := g.bindGroups(cp, nil, p, pl, global, shaders); err != nil {
			cp.End()
			return err
		}
		p.executor(ctx)
		cp.End()
		return nil
	}

	desc, err := g.buildRenderPassDescriptor(p)
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(desc)
	ctx.RenderPass = rp
	if pl != nil {
		rp.SetPipeline(pl.Native().(*wgpu.RenderPipeline))
	}
	if err := g.bindGroups(nil, rp, p, pl, global, shaders); err != nil {
		rp.End()
		return err
	}
	p.executor(ctx)
	rp.End()
	return nil
}

func (g *Graph) passShaders(p *pass) ([]shader.Shader, error) {
	var out []shader.Shader
	fetch := func(name common.Name) (shader.Shader, error) {
		if name == 0 {
			return nil, nil
		}
		obj, ok := g.cache.Fetch(resourcecache.Shader, name)
		if !ok {
			return nil, fmt.Errorf("shader %s not created before pass", name)
		}
		return obj.(shader.Shader), nil
	}
	if s, err := fetch(p.params.ShaderSetup.Vertex); err != nil {
		return nil, err
	} else if s != nil {
		out = append(out, s)
	}
	if s, err := fetch(p.params.ShaderSetup.Fragment); err != nil {
		return nil, err
	} else if s != nil {
		out = append(out, s)
	}
	if s, err := fetch(p.params.ShaderSetup.Compute); err != nil {
		return nil, err
	} else if s != nil {
		out = append(out, s)
	}
	return out, nil
}

func (g *Graph) ensurePipeline(p *pass, shaders []shader.Shader) (pipeline.Pipeline, error) {
	ptype := pipeline.TypeRender
	if p.flags.Has(FlagCompute) {
		ptype = pipeline.TypeCompute
	}
	pl := pipeline.New(p.name, ptype,
		pipeline.WithVertexShader(shaderOf(shaders, shader.ShaderTypeVertex)),
		pipeline.WithFragmentShader(shaderOf(shaders, shader.ShaderTypeFragment)),
		pipeline.WithComputeShader(shaderOf(shaders, shader.ShaderTypeCompute)),
	)

	targets, err := g.renderTargetsFor(p)
	if err != nil {
		return nil, err
	}
	return pipeline.Create(g.dev, g.cache, pl, targets)
}

func shaderOf(shaders []shader.Shader, t shader.ShaderType) shader.Shader {
	for _, s := range shaders {
		if s.ShaderType() == t {
			return s
		}
	}
	return nil
}

func (g *Graph) renderTargetsFor(p *pass) (pipeline.RenderTargets, error) {
	var targets pipeline.RenderTargets
	for _, h := range p.params.Outputs {
		r, err := g.resourceAt(h)
		if err != nil {
			return targets, err
		}
		if r.rtype != ResourceImage {
			continue
		}
		if err := g.materializeResource(r); err != nil {
			return targets, err
		}
		obj, _ := g.cache.Fetch(resourcecache.Image, r.physicalName)
		if obj == nil {
			continue
		}
		targets.ColorFormats = append(targets.ColorFormats, obj.(texture.Texture).Format())
	}
	targets.SampleCount = 1
	targets.DepthFormat = wgpu.TextureFormatUndefined
	if p.params.HasDepthStencil {
		r, err := g.resourceAt(p.params.DepthStencilAttachment)
		if err != nil {
			return targets, err
		}
		if err := g.materializeResource(r); err != nil {
			return targets, err
		}
		obj, _ := g.cache.Fetch(resourcecache.Image, r.physicalName)
		if obj != nil {
			targets.DepthFormat = obj.(texture.Texture).Format()
		}
	}
	return targets, nil
}

func toNativeLoadOp(op texture.LoadOp) wgpu.LoadOp {
	if op == texture.LoadOpClear {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

func toNativeStoreOp(op texture.StoreOp) wgpu.StoreOp {
	if op == texture.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func (g *Graph) buildRenderPassDescriptor(p *pass) (*wgpu.RenderPassDescriptor, error) {
	desc := &wgpu.RenderPassDescriptor{}
	for _, h := range p.params.Outputs {
		_, view, err := g.resolveImageView(h, p.params.OutputViews[h])
		if err != nil {
			return nil, err
		}
		t, err := g.resolveImageTexture(h)
		if err != nil {
			return nil, err
		}
		cv := t.ClearValue()
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     toNativeLoadOp(t.LoadOp()),
			StoreOp:    toNativeStoreOp(t.StoreOp()),
			ClearValue: wgpu.Color{R: cv.R, G: cv.G, B: cv.B, A: cv.A},
		})
	}
	if p.params.HasDepthStencil {
		_, view, err := g.resolveImage(p.params.DepthStencilAttachment)
		if err != nil {
			return nil, err
		}
		t, err := g.resolveImageTexture(p.params.DepthStencilAttachment)
		if err != nil {
			return nil, err
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     toNativeLoadOp(t.LoadOp()),
			DepthStoreOp:    toNativeStoreOp(t.StoreOp()),
			DepthClearValue: float32(t.ClearValue().R),
		}
	}
	return desc, nil
}

func (g *Graph) bindGroups(cp *wgpu.ComputePassEncoder, rp *wgpu.RenderPassEncoder, p *pass, pl pipeline.Pipeline, global bindgroup.BindGroup, shaders []shader.Shader) error {
	setBindGroup := func(index uint32, bg bindgroup.BindGroup) {
		if bg == nil {
			return
		}
		if rp != nil {
			rp.SetBindGroup(index, bg.Native(), nil)
		} else if cp != nil {
			cp.SetBindGroup(index, bg.Native(), nil)
		}
	}

	setBindGroup(uint32(shader.GroupGlobal), global)

	if p.params.SkipBindGroupSetup {
		return nil
	}

	force := g.dirtyBindGroups[p.name]
	if force {
		delete(g.dirtyBindGroups, p.name)
	}

	if len(p.params.PassBuffers)+len(p.params.PassTextures)+len(p.params.PassSamplers) > 0 {
		layout, err := groupLayout(g, pl, p.name, shader.GroupPass)
		if err != nil {
			return err
		}
		bg, err := bindgroup.Create(g.dev, g.cache, bindgroup.Config{
			Name:     common.NewName(fmt.Sprintf("%s#pass", p.name)),
			Group:    shader.GroupPass,
			Layout:   layout,
			Buffers:  toBufferEntries(p.params.PassBuffers),
			Textures: toTextureEntries(p.params.PassTextures),
			Samplers: toSamplerEntries(p.params.PassSamplers),
			Force:    force,
		})
		if err != nil {
			return err
		}
		setBindGroup(uint32(shader.GroupPass), bg)
	}

	if len(p.params.MaterialBuffers)+len(p.params.MaterialTextures)+len(p.params.MaterialSamplers) > 0 {
		layout, err := groupLayout(g, pl, p.name, shader.GroupMaterial)
		if err != nil {
			return err
		}
		bg, err := bindgroup.Create(g.dev, g.cache, bindgroup.Config{
			Name:     common.NewName(fmt.Sprintf("%s#material", p.name)),
			Group:    shader.GroupMaterial,
			Layout:   layout,
			Buffers:  toBufferEntries(p.params.MaterialBuffers),
			Textures: toTextureEntries(p.params.MaterialTextures),
			Samplers: toSamplerEntries(p.params.MaterialSamplers),
			Force:    force,
		})
		if err != nil {
			return err
		}
		setBindGroup(uint32(shader.GroupMaterial), bg)
	}

	return nil
}

func groupLayout(g *Graph, pl pipeline.Pipeline, passName common.Name, group shader.Group) (*wgpu.BindGroupLayout, error) {
	if pl == nil {
		return nil, fmt.Errorf("rendergraph: pass %s needs a pipeline to derive group %d's layout", passName, group)
	}
	name := common.NewName(fmt.Sprintf("%s#group%d", passName, group))
	obj, ok := g.cache.Fetch(resourcecache.BindGroupLayout, name)
	if !ok {
		return nil, fmt.Errorf("rendergraph: no layout cached for %s group %d", passName, group)
	}
	return obj.(*wgpu.BindGroupLayout), nil
}

func toBufferEntries(in []BufferBinding) []bindgroup.BufferEntry {
	out := make([]bindgroup.BufferEntry, len(in))
	for i, b := range in {
		out[i] = bindgroup.BufferEntry{Binding: b.Binding, Buffer: b.Buffer, Offset: b.Offset, Size: b.Size}
	}
	return out
}

func toTextureEntries(in []TextureBinding) []bindgroup.TextureEntry {
	out := make([]bindgroup.TextureEntry, len(in))
	for i, t := range in {
		out[i] = bindgroup.TextureEntry{Binding: t.Binding, View: t.View}
	}
	return out
}

func toSamplerEntries(in []SamplerBinding) []bindgroup.SamplerEntry {
	out := make([]bindgroup.SamplerEntry, len(in))
	for i, s := range in {
		out[i] = bindgroup.SamplerEntry{Binding: s.Binding, Sampler: s.Sampler}
	}
	return out
}
