package rendergraph

import "github.com/lumenforge/framegraph/common"

// pass is one recorded node in the frame's pass list.
type pass struct {
	name  common.Name
	flags Flags
	order int // custom scene order position, or len(sceneOrder)+insertion index if unlisted

	params   Params
	executor Executor

	referenceCount int
	culled         bool

	physicalPipelineName common.Name
}

func (p *pass) isForceKept() bool {
	return p.params.ForceKeep || p.flags.Has(FlagPresent)
}
