package cbdg

import "sort"

// MaxFlowWalker enumerates source-to-sink paths through a pruned graph, one
// haplotype sequence per call to NextPath, preferring paths that traverse at
// least one not-yet-seen edge until none remain (spec.md §4.4).
type MaxFlowWalker struct {
	nodes    map[NodeID]*Node
	sourceID NodeID
	sinkID   NodeID
	k        int
	limit    int
	seen     map[Edge]bool
}

// NewMaxFlowWalker builds a walker over nodes (which it does not mutate),
// rooted at source and sink for the current k-mer length k. limit bounds the
// number of non-sink nodes expanded per path search (spec.md §4.3's
// DefaultGraphTraversalLimit).
func NewMaxFlowWalker(nodes map[NodeID]*Node, source, sink NodeID, k, limit int) *MaxFlowWalker {
	return &MaxFlowWalker{
		nodes:    nodes,
		sourceID: source,
		sinkID:   sink,
		k:        k,
		limit:    limit,
		seen:     make(map[Edge]bool),
	}
}

// NextPath returns the next haplotype sequence, or ok=false once the path
// findPath reaches first (unseen edges tried first at each node) uses no new
// edge. The search stops at that first path, so a path through an unseen
// edge elsewhere in the graph is not returned once that happens.
func (w *MaxFlowWalker) NextPath() (string, bool) {
	path := w.findPath()
	if path == nil {
		return "", false
	}
	anyNew := false
	for _, e := range path {
		if !w.seen[e] {
			anyNew = true
			break
		}
	}
	if !anyNew {
		return "", false
	}
	for _, e := range path {
		w.seen[e] = true
	}
	return w.buildSequence(path), true
}

// findPath runs a deterministic DFS from source to sink. At each node,
// candidate edges are sorted so that unseen edges are tried before seen
// ones, then ties break on (Dst, Kind) for reproducibility (spec.md §4.4).
func (w *MaxFlowWalker) findPath() []Edge {
	visited := map[NodeID]bool{w.sourceID: true}
	var path []Edge

	visits := 0
	var dfs func(id NodeID) bool
	dfs = func(id NodeID) bool {
		if id == w.sinkID {
			return true
		}
		visits++
		if visits > w.limit {
			return false
		}
		n := w.nodes[id]
		if n == nil {
			return false
		}
		edges := append([]Edge(nil), n.Edges()...)
		sort.Slice(edges, func(i, j int) bool {
			si, sj := w.seen[edges[i]], w.seen[edges[j]]
			if si != sj {
				return !si
			}
			if edges[i].Dst != edges[j].Dst {
				return edges[i].Dst < edges[j].Dst
			}
			return edges[i].Kind < edges[j].Kind
		})
		for _, e := range edges {
			if e.IsSelfLoop() || visited[e.Dst] {
				continue
			}
			visited[e.Dst] = true
			path = append(path, e)
			if dfs(e.Dst) {
				return true
			}
			path = path[:len(path)-1]
			visited[e.Dst] = false
		}
		return false
	}

	if !dfs(w.sourceID) {
		return nil
	}
	return path
}

// buildSequence concatenates node sequences along path, orienting each node
// by the sign the traversing edge requires and trimming the k-1 base
// overlap every de Bruijn edge implies (spec.md §4.4's BuildSequence).
func (w *MaxFlowWalker) buildSequence(path []Edge) string {
	first := w.nodes[w.sourceID]
	if len(path) == 0 {
		return first.SequenceFor(Default)
	}

	overlap := w.k - 1
	seq := first.SequenceFor(SignToOrdering(Plus, path[0].Kind.SrcSign()))

	for _, e := range path {
		nbr := w.nodes[e.Dst]
		nseq := nbr.SequenceFor(SignToOrdering(Plus, e.Kind.DstSign()))
		if len(nseq) > overlap {
			seq += nseq[overlap:]
		}
	}
	return seq
}
