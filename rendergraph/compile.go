package rendergraph

import "sort"

// compile runs the three-phase compilation described for the render
// graph's Submit step: cull unreferenced passes, sort the survivors into
// execution order, then recompute each resource's first/last use against
// that final order.
func (g *Graph) compile() {
	g.cull()
	g.order = g.sortPasses()
	g.computeFirstLastUser()
	g.compiled = true
}

// cull seeds a worklist with every resource at zero reference count, then
// walks backward through producers: a producer whose reference count
// drops to zero (and isn't force-kept) is culled, and its own inputs lose
// a reference in turn, possibly culling further upstream passes.
func (g *Graph) cull() {
	stack := make([]int, 0, len(g.resources))
	for _, r := range g.resources {
		if r.referenceCount == 0 {
			stack = append(stack, r.selfIndex)
		}
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r := g.resources[idx]

		for _, pi := range r.producers {
			p := g.passes[pi]
			if p.isForceKept() || p.culled {
				continue
			}
			p.referenceCount--
			if p.referenceCount > 0 {
				continue
			}
			p.culled = true
			for _, inH := range p.params.Inputs {
				ir, err := g.resourceAt(inH)
				if err != nil {
					continue
				}
				ir.referenceCount--
				if ir.referenceCount == 0 {
					stack = append(stack, ir.selfIndex)
				}
			}
		}
	}
}

// sortPasses orders non-culled passes by custom scene order (falling back
// to insertion order for passes SetSceneOrder didn't name), stably.
func (g *Graph) sortPasses() []int {
	indices := make([]int, 0, len(g.passes))
	for i, p := range g.passes {
		if !p.culled {
			indices = append(indices, i)
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return g.passes[indices[a]].order < g.passes[indices[b]].order
	})
	return indices
}

// computeFirstLastUser recomputes first_user/last_user per resource as the
// min/max position (in final execution order) among its non-culled
// producers and consumers.
func (g *Graph) computeFirstLastUser() {
	position := make(map[int]int, len(g.order))
	for pos, passIndex := range g.order {
		position[passIndex] = pos
	}

	for _, r := range g.resources {
		r.firstUser = -1
		r.lastUser = -1
		consider := func(passIndex int) {
			if g.passes[passIndex].culled {
				return
			}
			pos, ok := position[passIndex]
			if !ok {
				return
			}
			if r.firstUser == -1 || pos < r.firstUser {
				r.firstUser = pos
			}
			if pos > r.lastUser {
				r.lastUser = pos
			}
		}
		for _, pi := range r.producers {
			consider(pi)
		}
		for _, pi := range r.consumers {
			consider(pi)
		}
	}
}
