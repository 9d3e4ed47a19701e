package rendergraph

import "sort"

// ResourceLifetime records the first and last pass index (in final
// plan order) at which a transient resource is used, per the domain
// model's compilation step 5. The plan only records these lifetimes;
// it allocates no backing memory and does no aliasing of transient
// resources.
type ResourceLifetime struct {
	First int
	Last  int
}

// Plan is the ordered, barrier-annotated output of [Graph.Compile].
type Plan struct {
	g         *Graph
	target    ResourceID
	passes    []*pass
	barriers  []PipelineBarrier // indexed by position in passes
	lifetimes map[ResourceID]ResourceLifetime
}

// Passes returns the plan's passes in execution order.
func (p *Plan) Passes() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.name
	}
	return names
}

// Barrier returns the pipeline barrier bound immediately before the
// pass at position i in the plan's order.
func (p *Plan) Barrier(i int) PipelineBarrier { return p.barriers[i] }

// Lifetime returns the first/last-use pass indices for a transient
// resource; ok is false for imported resources or ids unused by the
// plan.
func (p *Plan) Lifetime(id ResourceID) (lt ResourceLifetime, ok bool) {
	lt, ok = p.lifetimes[id]
	return
}

// Compile builds the execution plan that produces target, per the
// domain model's five-step compilation algorithm. Panics if target is
// unknown.
func (g *Graph) Compile(target ResourceID) (*Plan, error) {
	g.mustResolve(target)

	n := len(g.passes)

	// step 1: bipartite dependency graph. dependsOn[i] holds the set
	// of pass indices that pass i must run after, derived from "reads
	// the most recent writer" and "writes the same resource as a
	// previous write" (write-after-write).
	dependsOn := make([]map[int]struct{}, n)
	for i := range dependsOn {
		dependsOn[i] = make(map[int]struct{})
	}
	lastWriter := make(map[ResourceID]int)
	lastWriterOfTarget := -1

	for i, p := range g.passes {
		seen := make(map[int]struct{})
		addDep := func(from int) {
			if from < 0 || from == i {
				return
			}
			if _, ok := seen[from]; ok {
				return
			}
			seen[from] = struct{}{}
			dependsOn[i][from] = struct{}{}
		}
		for _, u := range p.reads {
			if w, ok := lastWriter[u.resource]; ok {
				addDep(w)
			}
		}
		for _, u := range p.writes {
			if w, ok := lastWriter[u.resource]; ok {
				addDep(w)
			}
		}
		for _, u := range p.writes {
			lastWriter[u.resource] = i
			if u.resource == target {
				lastWriterOfTarget = i
			}
		}
	}

	if lastWriterOfTarget < 0 {
		return nil, &RenderGraphError{Kind: ErrCompileInconsistent, Msg: "target resource has no writer"}
	}

	// step 2: prune to passes transitively reachable (via dependsOn)
	// from the target's last writer.
	required := make(map[int]struct{})
	var walk func(i int)
	walk = func(i int) {
		if _, ok := required[i]; ok {
			return
		}
		required[i] = struct{}{}
		for dep := range dependsOn[i] {
			walk(dep)
		}
	}
	walk(lastWriterOfTarget)

	// step 3: topological sort of the required subgraph, Kahn's
	// algorithm with ties broken by declaration order for determinism.
	inDegree := make(map[int]int, len(required))
	for i := range required {
		inDegree[i] = 0
	}
	for i := range required {
		for dep := range dependsOn[i] {
			if _, ok := required[dep]; ok {
				inDegree[i]++
			}
		}
	}
	// successors, restricted to the required set
	successors := make(map[int][]int, len(required))
	for i := range required {
		for dep := range dependsOn[i] {
			if _, ok := required[dep]; ok {
				successors[dep] = append(successors[dep], i)
			}
		}
	}
	for i := range successors {
		sort.Ints(successors[i])
	}

	var ready []int
	for i := range required {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	order := make([]int, 0, len(required))
	for len(ready) > 0 {
		sort.Ints(ready)
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, s := range successors[cur] {
			inDegree[s]--
			if inDegree[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	if len(order) != len(required) {
		return nil, &RenderGraphError{Kind: ErrCycleDetected}
	}

	finalPasses := make([]*pass, len(order))
	finalIndex := make(map[int]int, len(order)) // declaration index -> final plan position
	for pos, declIdx := range order {
		finalPasses[pos] = g.passes[declIdx]
		finalIndex[declIdx] = pos
	}

	// step 4: per-resource use sequences in final order, emitting a
	// barrier attached to the later pass whenever access/layout
	// differs from the immediately preceding use.
	barriers := make([]PipelineBarrier, len(finalPasses))
	type use struct {
		pos    int
		access AccessMask
	}
	usesByResource := make(map[ResourceID][]use)
	for pos, p := range finalPasses {
		combined := make(map[ResourceID]AccessMask)
		for _, u := range p.reads {
			combined[u.resource] |= u.access
		}
		for _, u := range p.writes {
			combined[u.resource] |= u.access
		}
		for rid, access := range combined {
			usesByResource[rid] = append(usesByResource[rid], use{pos: pos, access: access})
		}
	}
	for rid, uses := range usesByResource {
		sort.Slice(uses, func(a, b int) bool { return uses[a].pos < uses[b].pos })
		res := g.resources[rid]
		for i := 1; i < len(uses); i++ {
			prev, cur := uses[i-1], uses[i]
			if !needsBarrier(prev.access, cur.access) {
				continue
			}
			b := &barriers[cur.pos]
			if res.kind == ResourceBuffer {
				b.BufferBarriers = append(b.BufferBarriers, BufferBarrier{
					Resource:  rid,
					SrcAccess: prev.access,
					DstAccess: cur.access,
				})
			} else {
				b.ImageBarriers = append(b.ImageBarriers, ImageBarrier{
					Resource:  rid,
					SrcAccess: prev.access,
					DstAccess: cur.access,
					OldLayout: layoutFor(prev.access),
					NewLayout: layoutFor(cur.access),
				})
			}
		}
	}

	// step 5: transient resource lifetimes across the final plan.
	lifetimes := make(map[ResourceID]ResourceLifetime)
	for rid, uses := range usesByResource {
		res := g.resources[rid]
		if !res.transient {
			continue
		}
		lt := ResourceLifetime{First: uses[0].pos, Last: uses[0].pos}
		for _, u := range uses[1:] {
			if u.pos < lt.First {
				lt.First = u.pos
			}
			if u.pos > lt.Last {
				lt.Last = u.pos
			}
		}
		lifetimes[rid] = lt
	}

	return &Plan{
		g:         g,
		target:    target,
		passes:    finalPasses,
		barriers:  barriers,
		lifetimes: lifetimes,
	}, nil
}

// needsBarrier decides whether two chronologically consecutive uses of
// the same resource require a barrier between them. Two reads of the
// same access category never need one; anything involving a write, or
// a category change, does.
func needsBarrier(prev, cur AccessMask) bool {
	if !prev.isWrite() && !cur.isWrite() && prev.layoutCategory() == cur.layoutCategory() {
		return false
	}
	return true
}
