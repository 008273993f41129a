package cbdg

// compressGraph repeatedly folds degree-1 unitig junctions into single nodes
// until no compressible edge remains in componentID (spec.md §4.3.3).
func (g *Graph) compressGraph(componentID int) {
	for {
		e, ok := g.findCompressibleEdge(componentID)
		if !ok {
			return
		}
		g.compressNode(e)
	}
}

// isPotentialBuddyEdge reports whether e is the single edge joining two
// nodes that each have exactly one edge crossing the junction in their
// respective directions — the unitig-merge condition (spec.md §4.3.3.1).
func (g *Graph) isPotentialBuddyEdge(e Edge) bool {
	if e.IsSelfLoop() {
		return false
	}
	u, okU := g.nodes[e.Src]
	v, okV := g.nodes[e.Dst]
	if !okU || !okV || u.GetComponentId() != v.GetComponentId() {
		return false
	}
	if len(u.FindEdgesInDirection(e.Kind.SrcSign())) != 1 {
		return false
	}
	mirror := e.Mirror()
	if len(v.FindEdgesInDirection(mirror.Kind.SrcSign())) != 1 {
		return false
	}
	return true
}

func (g *Graph) findCompressibleEdge(componentID int) (Edge, bool) {
	for _, id := range sortedNodeIDs(g.nodes) {
		n := g.nodes[id]
		if n.GetComponentId() != componentID {
			continue
		}
		for _, e := range n.Edges() {
			if g.isPotentialBuddyEdge(e) {
				return e, true
			}
		}
	}
	return Edge{}, false
}

// compressNode merges v=nodes[e.Dst] into u=nodes[e.Src] across e, re-homes
// v's remaining edges onto u, and removes v from the table. Source/sink ids
// are updated in place if either endpoint is absorbed.
func (g *Graph) compressNode(e Edge) {
	u, v := g.nodes[e.Src], g.nodes[e.Dst]
	if u == nil || v == nil || u == v {
		return
	}
	vID := v.Identifier()
	mirror := e.Mirror()

	u.Merge(v, e.Kind, g.currK)
	u.EraseEdge(e)

	for _, ve := range v.Edges() {
		if ve == mirror || ve.IsSelfLoop() {
			continue
		}
		nbr := g.nodes[ve.Dst]
		if nbr == nil {
			continue
		}
		newEdge := Edge{Src: u.Identifier(), Dst: ve.Dst, Kind: ve.Kind}
		u.EmplaceEdge(newEdge)
		nbr.EraseEdge(ve.Mirror())
		nbr.EmplaceEdge(newEdge.Mirror())
	}

	delete(g.nodes, vID)
	if g.sourceID == vID {
		g.sourceID = u.Identifier()
	}
	if g.sinkID == vID {
		g.sinkID = u.Identifier()
	}
}

// removeTips drops short, non-reference dead-end nodes (out-degree <= 1,
// unique sequence length SeqLength()-k+1 shorter than the current k-mer
// length) that linger after compression
// (spec.md §4.3.3.2). Runs to a fixed-point or a small iteration cap, since
// removing one tip can expose another.
func (g *Graph) removeTips(componentID int) {
	const maxTipPasses = 10
	for pass := 0; pass < maxTipPasses; pass++ {
		var toRemove []NodeID
		for id, n := range g.nodes {
			if n.GetComponentId() != componentID || id == g.sourceID || id == g.sinkID || n.IsReference() {
				continue
			}
			if n.NumOutEdges() <= 1 && n.SeqLength()-g.currK+1 < g.currK {
				toRemove = append(toRemove, id)
			}
		}
		if len(toRemove) == 0 {
			return
		}
		g.removeNodes(toRemove)
	}
}

// hasCycle runs a textbook white/gray/black DFS over every node currently in
// the table, fully exploring each component before any node's color is
// finalized to black (SPEC_FULL.md Open Question decision: the reference
// implementation erases a node's gray mark early in one branch; this
// diverges and always completes the recursion, which is the textbook and
// unambiguously-correct form of the algorithm). The walk is sign-consistent:
// a node entered with sign s is left only through edges whose SrcSign is s,
// so an edge's own mirror is never mistaken for a back edge. Colors are kept
// per (node, sign) state, and every node is used as a Plus-sign start.
func (g *Graph) hasCycle() bool {
	const (
		white = iota
		gray
		black
	)
	type state struct {
		id  NodeID
		dir Sign
	}
	color := make(map[state]int, 2*len(g.nodes))

	var visit func(s state) bool
	visit = func(s state) bool {
		color[s] = gray
		n := g.nodes[s.id]
		for _, e := range n.FindEdgesInDirection(s.dir) {
			if e.IsSelfLoop() {
				continue
			}
			next := state{id: e.Dst, dir: e.Kind.DstSign()}
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[s] = black
		return false
	}

	for _, id := range sortedNodeIDs(g.nodes) {
		start := state{id: id, dir: Plus}
		if color[start] == white {
			if visit(start) {
				return true
			}
		}
	}
	return false
}
