package rendergraph

import "github.com/lumenforge/framegraph/common"

// resource is the per-frame metadata the graph tracks for one logical or
// registered physical resource, addressed by the Handle the graph handed
// back from create_image/register_image/create_buffer/register_buffer.
type resource struct {
	selfIndex int
	name      common.Name
	rtype     ResourceType
	version   uint16

	isPersistent bool // registered (wraps an existing physical object) vs created (lazy)
	imageDesc    *ImageDesc
	bufferDesc   *BufferDesc

	// physicalName is the resourcecache key the physical object lives
	// under once materialized. It is set to name when the resource is
	// registered or created, so a created resource that recurs under the
	// same name in a later frame reuses the same physical object.
	physicalName common.Name
	materialized bool

	referenceCount int
	firstUser      int
	lastUser       int
	producers      []int
	consumers      []int

	maxFrameLifetime uint32
	lastUsedFrame    uint64

	culledProducer bool
}

func (r *resource) touch(passIndex int, asProducer bool) {
	if r.firstUser == -1 || passIndex < r.firstUser {
		r.firstUser = passIndex
	}
	if passIndex > r.lastUser {
		r.lastUser = passIndex
	}
	if asProducer {
		r.producers = append(r.producers, passIndex)
	} else {
		r.consumers = append(r.consumers, passIndex)
	}
}
