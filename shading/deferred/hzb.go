package deferred

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/rendergraph"
)

// HZBPyramid is one view's hierarchical-Z mip chain: mip 0 reduces from
// the depth buffer, every subsequent mip reduces from the previous one.
type HZBPyramid struct {
	Image       rendergraph.Handle // single texture with MipLevelCount == len(MipSizes)
	MipUniforms []buffer.Buffer
	MipSizes    []MipSize
}

// MipSize is a single HZB mip's dimensions.
type MipSize struct{ Width, Height uint32 }

// npot rounds v up to the next power of two (v itself if already a power
// of two).
func npot(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	if v&(v-1) == 0 {
		return v
	}
	return 1 << bits.Len32(v)
}

// HZBMipCount returns the number of mips the HZB reduction chain
// generates for a width x height depth buffer:
// ceil(max(log2(npot(W)), log2(npot(H)))), i.e. mip 0 (the first
// reduction from the raw depth buffer) through mip count-1. The last mip
// is 1x1 unless a dimension is itself 2^count, in which case that
// dimension ends at 2 (1920x1080 ends at 1x1, 1024x1024 at 2x2).
func HZBMipCount(width, height uint32) uint32 {
	w := npot(width)
	h := npot(height)
	return uint32(max(bits.Len32(w)-1, bits.Len32(h)-1))
}

// HZBMipSize returns mip i's dimensions: max(1, W>>i) x max(1, H>>i).
func HZBMipSize(width, height uint32, i uint32) MipSize {
	w := width >> i
	if w < 1 {
		w = 1
	}
	h := height >> i
	if h < 1 {
		h = 1
	}
	return MipSize{Width: w, Height: h}
}

// mipExtent is the per-mip uniform layout: (src_w, src_h, dst_w, dst_h).
type mipExtent struct{ SrcW, SrcH, DstW, DstH uint32 }

func (m mipExtent) bytes() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], m.SrcW)
	binary.LittleEndian.PutUint32(buf[4:8], m.SrcH)
	binary.LittleEndian.PutUint32(buf[8:12], m.DstW)
	binary.LittleEndian.PutUint32(buf[12:16], m.DstH)
	return buf
}

// NewHZBPyramid sizes MipSizes/MipUniforms for a width x height depth
// buffer; the caller materializes Image (a MipLevelCount ==
// HZBMipCount(width,height) storage texture) and the per-mip uniform
// buffers via gpu/texture.Create and gpu/buffer.Create before ReduceHZB
// runs, and registers Image into the graph via RegisterImage.
//
// Parameters:
//   - width, height: the view's depth buffer dimensions
func NewHZBPyramid(width, height uint32) HZBPyramid {
	count := HZBMipCount(width, height)
	sizes := make([]MipSize, count)
	for i := range sizes {
		sizes[i] = HZBMipSize(width, height, uint32(i))
	}
	return HZBPyramid{MipSizes: sizes}
}

// ReduceHZB records the log2(max(npot(W),npot(H)))-pass HZB reduction
// chain into graph. Mip 0 reads depth; mip i (i>0) reads mip i-1.
//
// Parameters:
//   - graph: the render graph to add passes to
//   - viewIndex: disambiguates pass/resource names across multiple views
//   - depth: the depth image mip 0 reduces from
//   - hzb: the destination mip chain, with MipUniforms/MipSizes already sized
//   - queue: device queue, used to write this frame's per-mip extents
//   - reduceShader: the compute shader performing one mip's max-reduction
func ReduceHZB(graph *rendergraph.Graph, viewIndex uint32, depth rendergraph.Handle, hzb HZBPyramid, queue *wgpu.Queue, reduceShader common.Name) {
	for i := range hzb.MipSizes {
		dst := hzb.MipSizes[i]
		var srcW, srcH uint32
		if i == 0 {
			srcW, srcH = dst.Width, dst.Height
		} else {
			srcW, srcH = hzb.MipSizes[i-1].Width, hzb.MipSizes[i-1].Height
		}
		extent := mipExtent{SrcW: srcW, SrcH: srcH, DstW: dst.Width, DstH: dst.Height}
		if i < len(hzb.MipUniforms) {
			hzb.MipUniforms[i].Write(queue, extent.bytes(), 0)
		}

		mipIndex := uint32(i)
		name := common.NewName(fmt.Sprintf("hzb_reduce_view%d_mip%d", viewIndex, i))
		input := depth
		inputView := rendergraph.View{}
		if i > 0 {
			input = hzb.Image
			inputView = rendergraph.View{UseMip: true, Mip: mipIndex - 1}
		}
		outputView := rendergraph.View{UseMip: true, Mip: mipIndex}

		var passBuffers []rendergraph.BufferBinding
		if i < len(hzb.MipUniforms) {
			u := hzb.MipUniforms[i]
			passBuffers = []rendergraph.BufferBinding{{Binding: 0, Buffer: u.Native(), Size: u.Size()}}
		}

		graph.AddPass(name, rendergraph.FlagCompute, rendergraph.Params{
			Inputs:      []rendergraph.Handle{input},
			Outputs:     []rendergraph.Handle{hzb.Image},
			InputViews:  map[rendergraph.Handle]rendergraph.View{input: inputView},
			OutputViews: map[rendergraph.Handle]rendergraph.View{hzb.Image: outputView},
			ShaderSetup: rendergraph.ShaderSetup{Compute: reduceShader},
			DispatchX:   dispatchCount(dst.Width),
			DispatchY:   dispatchCount(dst.Height),
			DispatchZ:   1,
			PassBuffers: passBuffers,
		}, func(ctx *rendergraph.Context) {
			ctx.ComputePass.DispatchWorkgroups(ctx.DispatchX, ctx.DispatchY, 1)
		})
	}
}

const hzbWorkgroupSize = 8

func dispatchCount(extent uint32) uint32 {
	if extent == 0 {
		return 0
	}
	return (extent + hzbWorkgroupSize - 1) / hzbWorkgroupSize
}
