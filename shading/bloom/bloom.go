// Package bloom implements the bloom post-process pass: a 4-iteration
// compute downsample, a 3-step compute upsample, then a fullscreen
// graphics resolve pass.
package bloom

import (
	"encoding/binary"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/rendergraph"
)

const (
	downsampleIterations = 4
	upsampleSteps        = 3
	workgroupSize        = 8
)

// MipChain is the set of progressively half-resolution images bloom
// downsamples into and upsamples back out of. Index 0 is full (source)
// resolution; index len-1 is the smallest mip.
type MipChain struct {
	Images  []rendergraph.Handle
	Widths  []uint32
	Heights []uint32
}

// Extent is the per-iteration uniform layout: source and destination
// extents plus which step of the chain this iteration is.
type Extent struct {
	SrcWidth, SrcHeight uint32
	DstWidth, DstHeight uint32
	Step                uint32
}

// Bytes packs Extent into the 20-byte std140-compatible layout the
// downsample/upsample shaders read.
func (e Extent) Bytes() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], e.SrcWidth)
	binary.LittleEndian.PutUint32(buf[4:8], e.SrcHeight)
	binary.LittleEndian.PutUint32(buf[8:12], e.DstWidth)
	binary.LittleEndian.PutUint32(buf[12:16], e.DstHeight)
	binary.LittleEndian.PutUint32(buf[16:20], e.Step)
	return buf
}

// Params configures one frame's bloom pass registration.
type Params struct {
	// Source is the HDR image bloom reads its brightest pixels from
	// (typically the deferred lighting output before tonemapping).
	Source rendergraph.Handle
	// Chain holds downsampleIterations+1 images (source res down to the
	// smallest mip); the caller allocates these once per resolution.
	Chain MipChain
	// Output is the fullscreen resolve target, additively combined with
	// Source by the final graphics pass.
	Output rendergraph.Handle

	DownsampleShader common.Name
	UpsampleShader   common.Name
	ResolveShader    common.Name

	// ExtentUniforms holds one pre-created uniform buffer per iteration
	// (downsampleIterations + upsampleSteps, in that order), reused frame
	// to frame and rewritten here via Queue each frame.
	ExtentUniforms []buffer.Buffer
	Queue          *wgpu.Queue
}

// AddPasses records the downsample chain, upsample chain, and resolve pass
// into graph. Each iteration gets its own compute pass name
// (bloom_downsample_i / bloom_upsample_i) so the graph can track their
// distinct input/output resources independently.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - p: this frame's bloom configuration
func AddPasses(graph *rendergraph.Graph, p Params) error {
	if len(p.Chain.Images) < downsampleIterations+1 {
		return fmt.Errorf("bloom: mip chain needs %d images, got %d", downsampleIterations+1, len(p.Chain.Images))
	}
	if len(p.ExtentUniforms) < downsampleIterations+upsampleSteps {
		return fmt.Errorf("bloom: need %d extent uniforms, got %d", downsampleIterations+upsampleSteps, len(p.ExtentUniforms))
	}

	src := p.Source
	for i := 0; i < downsampleIterations; i++ {
		dst := p.Chain.Images[i+1]
		extent := Extent{
			SrcWidth: widthAt(p.Chain, i), SrcHeight: heightAt(p.Chain, i),
			DstWidth: widthAt(p.Chain, i+1), DstHeight: heightAt(p.Chain, i+1),
			Step: uint32(i),
		}
		uniform := p.ExtentUniforms[i]
		uniform.Write(p.Queue, extent.Bytes(), 0)

		name := common.NewName(fmt.Sprintf("bloom_downsample_%d", i))
		graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      []rendergraph.Handle{src},
			Outputs:     []rendergraph.Handle{dst},
			ShaderSetup: rendergraph.ShaderSetup{Compute: p.DownsampleShader},
			DispatchX:   dispatchCount(extent.DstWidth),
			DispatchY:   dispatchCount(extent.DstHeight),
			DispatchZ:   1,
			PassBuffers: []rendergraph.BufferBinding{{Binding: 0, Buffer: uniform.Native(), Size: uniform.Size()}},
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, 1)
		})
		src = dst
	}

	for i := 0; i < upsampleSteps; i++ {
		level := downsampleIterations - 1 - i
		dst := p.Chain.Images[level]
		extent := Extent{
			SrcWidth: widthAt(p.Chain, level+1), SrcHeight: heightAt(p.Chain, level+1),
			DstWidth: widthAt(p.Chain, level), DstHeight: heightAt(p.Chain, level),
			Step: uint32(i),
		}
		uniform := p.ExtentUniforms[downsampleIterations+i]
		uniform.Write(p.Queue, extent.Bytes(), 0)

		name := common.NewName(fmt.Sprintf("bloom_upsample_%d", i))
		graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      []rendergraph.Handle{src},
			Outputs:     []rendergraph.Handle{dst},
			ShaderSetup: rendergraph.ShaderSetup{Compute: p.UpsampleShader},
			DispatchX:   dispatchCount(extent.DstWidth),
			DispatchY:   dispatchCount(extent.DstHeight),
			DispatchZ:   1,
			PassBuffers: []rendergraph.BufferBinding{{Binding: 0, Buffer: uniform.Native(), Size: uniform.Size()}},
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, 1)
		})
		src = dst
	}

	graph.AddPass(common.NewName("bloom_resolve"), rendergraph.FlagGraphics, rendergraph.Params{
		Inputs:      []rendergraph.Handle{p.Source, src},
		Outputs:     []rendergraph.Handle{p.Output},
		ShaderSetup: rendergraph.ShaderSetup{Vertex: p.ResolveShader, Fragment: p.ResolveShader},
	}, func(ctx *rendergraph.Context) {
		ctx.RenderPass.Draw(3, 1, 0, 0)
	})

	return nil
}

func widthAt(c MipChain, i int) uint32 {
	if i < len(c.Widths) {
		return c.Widths[i]
	}
	return 0
}

func heightAt(c MipChain, i int) uint32 {
	if i < len(c.Heights) {
		return c.Heights[i]
	}
	return 0
}

func dispatchCount(extent uint32) uint32 {
	if extent == 0 {
		return 0
	}
	return (extent + workgroupSize - 1) / workgroupSize
}
