package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/buffer"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
	"github.com/lumenforge/framegraph/gpu/texture"
)

func (g *Graph) materializeResource(r *resource) error {
	if r.materialized {
		return nil
	}
	switch r.rtype {
	case ResourceImage:
		if r.imageDesc == nil {
			return fmt.Errorf("rendergraph: image %s has no descriptor to materialize from", r.name)
		}
		d := r.imageDesc
		_, err := texture.Create(g.dev, g.cache, texture.Config{
			Name:        r.physicalName,
			Width:       d.Width,
			Height:      d.Height,
			Depth:       d.Depth,
			MipLevels:   d.MipLevels,
			SampleCount: d.SampleCount,
			Dimension:   d.Dimension,
			Format:      d.Format,
			Usage:       d.Usage,
			ClearValue:  d.ClearValue,
			LoadOp:      d.LoadOp,
			StoreOp:     d.StoreOp,
		})
		if err != nil {
			return fmt.Errorf("rendergraph: materialize image %s: %w", r.name, err)
		}
	case ResourceBuffer:
		if r.bufferDesc == nil {
			return fmt.Errorf("rendergraph: buffer %s has no descriptor to materialize from", r.name)
		}
		d := r.bufferDesc
		_, err := buffer.Create(g.dev, g.cache, buffer.Config{
			Name:        r.physicalName,
			Size:        d.Size,
			Usage:       d.Usage,
			CPUReadback: d.CPUReadback,
		}, g.bufferedFrameCount)
		if err != nil {
			return fmt.Errorf("rendergraph: materialize buffer %s: %w", r.name, err)
		}
	}
	r.materialized = true
	return nil
}

func (g *Graph) resolveImage(h Handle) (*wgpu.Texture, *wgpu.TextureView, error) {
	return g.resolveImageView(h, View{})
}

// resolveImageView resolves handle and selects the requested mip/layer
// view, falling back to the texture's default view when none was
// requested or the requested one doesn't exist (e.g. OneViewPerMip/Layer
// wasn't set on its ImageDesc).
func (g *Graph) resolveImageView(h Handle, v View) (*wgpu.Texture, *wgpu.TextureView, error) {
	r, err := g.resourceAt(h)
	if err != nil {
		return nil, nil, err
	}
	if r.rtype != ResourceImage {
		return nil, nil, fmt.Errorf("rendergraph: handle does not refer to an image")
	}
	if err := g.materializeResource(r); err != nil {
		return nil, nil, err
	}
	obj, ok := g.cache.Fetch(resourcecache.Image, r.physicalName)
	if !ok {
		return nil, nil, fmt.Errorf("rendergraph: image %s missing from cache after materialization", r.name)
	}
	t := obj.(texture.Texture)
	g.touchTransient(r.physicalName)

	view := t.DefaultView()
	if v.UseMip {
		if mv := t.MipView(v.Mip); mv != nil {
			view = mv
		}
	} else if v.UseLayer {
		if lv := t.LayerView(v.Layer); lv != nil {
			view = lv
		}
	}
	return t.Native(), view, nil
}

// resolveImageTexture resolves handle to its materialized Texture wrapper,
// for callers (render pass descriptor construction) that need the
// resource's configured LoadOp/StoreOp/ClearValue rather than just its
// native view.
func (g *Graph) resolveImageTexture(h Handle) (texture.Texture, error) {
	r, err := g.resourceAt(h)
	if err != nil {
		return nil, err
	}
	if r.rtype != ResourceImage {
		return nil, fmt.Errorf("rendergraph: handle does not refer to an image")
	}
	if err := g.materializeResource(r); err != nil {
		return nil, err
	}
	obj, ok := g.cache.Fetch(resourcecache.Image, r.physicalName)
	if !ok {
		return nil, fmt.Errorf("rendergraph: image %s missing from cache after materialization", r.name)
	}
	return obj.(texture.Texture), nil
}

func (g *Graph) resolveBuffer(h Handle) (*wgpu.Buffer, error) {
	r, err := g.resourceAt(h)
	if err != nil {
		return nil, err
	}
	if r.rtype != ResourceBuffer {
		return nil, fmt.Errorf("rendergraph: handle does not refer to a buffer")
	}
	if err := g.materializeResource(r); err != nil {
		return nil, err
	}
	obj, ok := g.cache.Fetch(resourcecache.Buffer, r.physicalName)
	if !ok {
		return nil, fmt.Errorf("rendergraph: buffer %s missing from cache after materialization", r.name)
	}
	b := obj.(buffer.Buffer)
	g.touchTransient(r.physicalName)
	return b.Native(), nil
}

func (g *Graph) touchTransient(name common.Name) {
	if t, ok := g.transients[name]; ok {
		t.lastUsedFrame = g.frameIndex
	}
}

// collectGarbage releases the physical backing of every transient (created,
// non-persistent) resource whose last use is more than MaxFrameLifetime
// frames in the past. Registered resources are never touched here.
func (g *Graph) collectGarbage() {
	for name, t := range g.transients {
		if g.frameIndex-t.lastUsedFrame <= uint64(t.maxFrameLifetime) {
			continue
		}
		switch t.rtype {
		case ResourceImage:
			if obj, ok := g.cache.Fetch(resourcecache.Image, name); ok {
				obj.(texture.Texture).Release()
				g.cache.Remove(resourcecache.Image, name)
			}
		case ResourceBuffer:
			if obj, ok := g.cache.Fetch(resourcecache.Buffer, name); ok {
				obj.(buffer.Buffer).Release()
				g.cache.Remove(resourcecache.Buffer, name)
			}
		}
		delete(g.transients, name)
	}
}
