// Package rendergraph implements the render graph: per-frame resource and
// pass bookkeeping, compilation (cull unreferenced passes, order them,
// compute first/last use), and execution against the native device.
package rendergraph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lumenforge/framegraph/common"
	"github.com/lumenforge/framegraph/gpu/resourcecache"
)

// transientEntry records enough about a created (non-registered) resource
// to garbage-collect its physical backing once it falls out of its
// lifetime window, independent of whether this frame's graph still
// references its Name.
type transientEntry struct {
	rtype            ResourceType
	maxFrameLifetime uint32
	lastUsedFrame    uint64
}

// Graph is the per-frame render graph builder/compiler/executor. One Graph
// is reused across frames; Begin/Submit/Reset bracket each frame.
type Graph struct {
	dev   *wgpu.Device
	cache resourcecache.Cache
	queue *wgpu.Queue

	bufferedFrameCount uint32
	frameIndex         uint64

	passes    []*pass
	resources []*resource

	sceneOrder map[common.Name]int

	dirtyBindGroups map[common.Name]bool

	postCommands   []func(*wgpu.CommandEncoder)
	readbackDrains []func()

	transients map[common.Name]*transientEntry

	compiled bool
	order    []int // compiled pass execution order, indices into passes
}

// New creates a Graph bound to dev/cache/queue. bufferedFrameCount is the
// shadow-buffer depth used by any CPUReadback buffers the graph creates.
func New(dev *wgpu.Device, cache resourcecache.Cache, queue *wgpu.Queue, bufferedFrameCount uint32) *Graph {
	return &Graph{
		dev:                dev,
		cache:              cache,
		queue:              queue,
		bufferedFrameCount: bufferedFrameCount,
		sceneOrder:         make(map[common.Name]int),
		dirtyBindGroups:    make(map[common.Name]bool),
		transients:         make(map[common.Name]*transientEntry),
	}
}

// Begin starts a new frame: the pass list and per-frame resource table are
// cleared. Resources registered or created in a prior frame must be
// re-registered/re-created this frame to be referenced; a Handle from a
// previous frame is not valid after Begin.
func (g *Graph) Begin() {
	g.frameIndex++
	g.passes = g.passes[:0]
	g.resources = g.resources[:0]
	g.compiled = false
	g.order = nil
}

// SetSceneOrder configures a custom per-scene pass ordering: passes named
// here sort before any pass not named, in the given order; unlisted passes
// keep their insertion order relative to each other, appended after the
// listed ones.
func (g *Graph) SetSceneOrder(names []common.Name) {
	g.sceneOrder = make(map[common.Name]int, len(names))
	for i, n := range names {
		g.sceneOrder[n] = i
	}
}

// MarkPassCacheBindGroupsDirty forces the pass's cached bind groups to be
// rebuilt on next execution, e.g. after a persistent image was resized.
func (g *Graph) MarkPassCacheBindGroupsDirty(passName common.Name) {
	g.dirtyBindGroups[passName] = true
}

// QueuePostCommand enqueues a command recorded into the frame's shared
// command encoder after every pass has executed (before Finish), used for
// end-of-frame buffer shadow-copies feeding readback.
func (g *Graph) QueuePostCommand(fn func(*wgpu.CommandEncoder)) {
	g.postCommands = append(g.postCommands, fn)
}

// QueueReadbackDrain enqueues a callback run after the frame's command
// buffer has been submitted, used to issue async buffer map requests once
// the copy they read from is guaranteed to have been recorded.
func (g *Graph) QueueReadbackDrain(fn func()) {
	g.readbackDrains = append(g.readbackDrains, fn)
}

func (g *Graph) newResource(name common.Name, rtype ResourceType) (Handle, *resource) {
	index := uint32(len(g.resources))
	version := uint16(g.frameIndex)
	r := &resource{
		selfIndex: int(index),
		name:      name,
		rtype:     rtype,
		version:   version,
		firstUser: -1,
		lastUser:  -1,
	}
	g.resources = append(g.resources, r)
	return EncodeHandle(index, rtype, version), r
}

func (g *Graph) resourceAt(h Handle) (*resource, error) {
	index, rtype, version := DecodeHandle(h)
	if int(index) >= len(g.resources) {
		return nil, fmt.Errorf("rendergraph: handle index %d out of range", index)
	}
	r := g.resources[index]
	if r.rtype != rtype || r.version != version {
		return nil, fmt.Errorf("rendergraph: stale handle (resource reallocated or from a previous frame)")
	}
	return r, nil
}

// CreateImage allocates a logical image resource materialized lazily on
// first reference. The physical texture is cached under a Name derived
// from name, so a create_image call that recurs with the same name across
// frames reuses the same physical backing as long as it falls within
// MaxFrameLifetime of its last use.
func (g *Graph) CreateImage(name common.Name, desc ImageDesc) Handle {
	h, r := g.newResource(name, ResourceImage)
	r.imageDesc = &desc
	r.physicalName = name
	g.transients[name] = &transientEntry{rtype: ResourceImage, maxFrameLifetime: desc.MaxFrameLifetime, lastUsedFrame: g.frameIndex}
	return h
}

// RegisterImage wraps an already-materialized texture cached under name,
// making it addressable by a graph-local Handle this frame. Registered
// resources are always persistent: the graph never destroys them.
func (g *Graph) RegisterImage(name common.Name) Handle {
	h, r := g.newResource(name, ResourceImage)
	r.isPersistent = true
	r.physicalName = name
	r.materialized = true
	return h
}

// CreateBuffer allocates a logical buffer resource materialized lazily on
// first reference, with the same reuse/lifetime semantics as CreateImage.
func (g *Graph) CreateBuffer(name common.Name, desc BufferDesc) Handle {
	h, r := g.newResource(name, ResourceBuffer)
	r.bufferDesc = &desc
	r.physicalName = name
	g.transients[name] = &transientEntry{rtype: ResourceBuffer, maxFrameLifetime: desc.MaxFrameLifetime, lastUsedFrame: g.frameIndex}
	return h
}

// RegisterBuffer wraps an already-materialized buffer cached under name.
func (g *Graph) RegisterBuffer(name common.Name) Handle {
	h, r := g.newResource(name, ResourceBuffer)
	r.isPersistent = true
	r.physicalName = name
	r.materialized = true
	return h
}

// AddPass records a pass. Each output increments the pass's own reference
// count (a pass with nothing downstream reading any of its outputs is a
// culling candidate); each input increments that resource's reference
// count and records the producer/consumer link used for both culling and
// first/last-use tracking.
//
// Parameters:
//   - name: the pass's identifying Name, also used to cache its pipeline/bind groups
//   - flags: behavior flags (Graphics, Compute, Present, GraphLocal)
//   - params: resources, shader setup, and execution options
//   - executor: invoked with a live Context once the pass begins
func (g *Graph) AddPass(name common.Name, flags Flags, params Params, executor Executor) {
	passIndex := len(g.passes)
	p := &pass{
		name:     name,
		flags:    flags,
		params:   params,
		executor: executor,
		order:    passIndex,
	}
	if custom, ok := g.sceneOrder[name]; ok {
		p.order = custom
	} else {
		p.order = len(g.sceneOrder) + passIndex
	}

	p.referenceCount += len(params.Outputs)
	for _, h := range params.Outputs {
		if r, err := g.resourceAt(h); err == nil {
			r.touch(passIndex, true)
		}
	}
	for _, h := range params.Inputs {
		if r, err := g.resourceAt(h); err == nil {
			r.referenceCount++
			r.touch(passIndex, false)
		}
	}
	if params.HasDepthStencil {
		if r, err := g.resourceAt(params.DepthStencilAttachment); err == nil {
			r.touch(passIndex, true)
		}
	}

	g.passes = append(g.passes, p)
}

// Reset releases the graph's frame-scoped bookkeeping between Submit and
// the next Begin. It does not touch anything in the resource cache.
func (g *Graph) Reset() {
	g.postCommands = g.postCommands[:0]
	g.readbackDrains = g.readbackDrains[:0]
}
