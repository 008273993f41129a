package cbdg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allKmersCanonicallyDistinct reports whether every k-mer window of seq maps
// to a distinct NodeID, i.e. the reference spine contains no duplicated or
// self-reverse-complementary k-mer that would merge two distinct positions
// into one graph node.
func allKmersCanonicallyDistinct(seq string, k int) bool {
	seen := make(map[NodeID]bool)
	for _, win := range slidingWindows(seq, k) {
		id := CanonicalHash(win)
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// TestGraph_BuildCompressWalk_RoundTripsReferenceSequence exercises
// buildGraph, compressGraph, and MaxFlowWalker together: a repeat-free
// linear reference has exactly one source-to-sink path, and that path must
// reconstruct the original sequence exactly (the de Bruijn round-trip
// invariant spec.md §4.3 relies on).
func TestGraph_BuildCompressWalk_RoundTripsReferenceSequence(t *testing.T) {
	const k = 11
	r := rand.New(rand.NewSource(99))
	seq := randomSeq(r, 50)
	require.True(t, allKmersCanonicallyDistinct(seq, k), "test fixture must have no two k-mers sharing a canonical id")

	g := NewGraph(DefaultParams(), nil)
	g.currK = k
	g.regionSeq = seq
	g.buildGraph(k)

	require.Equal(t, len(seq)-k, len(g.refNodeIDs)-1)
	g.sourceID = g.refNodeIDs[0]
	g.sinkID = g.refNodeIDs[len(g.refNodeIDs)-1]

	g.compressGraph(0)

	walker := NewMaxFlowWalker(g.nodes, g.sourceID, g.sinkID, k, 1000)
	got, ok := walker.NextPath()
	require.True(t, ok)
	assert.Equal(t, seq, got)

	_, ok2 := walker.NextPath()
	assert.False(t, ok2, "a repeat-free linear reference graph has exactly one path")
}

func TestHasCycle_FullyExploresBeforeErasing(t *testing.T) {
	// A -> B -> C -> A is a 3-cycle; a DFS that erases gray marks
	// prematurely on backtrack could miss the back edge depending on visit
	// order. The textbook coloring DFS must catch it regardless.
	g := NewGraph(DefaultParams(), nil)
	g.nodes = map[NodeID]*Node{
		1: NewNode(NewKmer("ACGTACGTACG"), LabelReference),
		2: NewNode(NewKmer("CGTACGTACGT"), LabelReference),
		3: NewNode(NewKmer("GTACGTACGTA"), LabelReference),
	}
	g.nodes[1].EmplaceEdge(Edge{Src: 1, Dst: 2, Kind: PlusPlus})
	g.nodes[2].EmplaceEdge(Edge{Src: 2, Dst: 3, Kind: PlusPlus})
	g.nodes[3].EmplaceEdge(Edge{Src: 3, Dst: 1, Kind: PlusPlus})

	assert.True(t, g.hasCycle())
}

func TestHasCycle_FalseOnDAG(t *testing.T) {
	g := NewGraph(DefaultParams(), nil)
	g.nodes = map[NodeID]*Node{
		1: NewNode(NewKmer("ACGTACGTACG"), LabelReference),
		2: NewNode(NewKmer("CGTACGTACGT"), LabelReference),
		3: NewNode(NewKmer("GTACGTACGTA"), LabelReference),
	}
	g.nodes[1].EmplaceEdge(Edge{Src: 1, Dst: 2, Kind: PlusPlus})
	g.nodes[1].EmplaceEdge(Edge{Src: 1, Dst: 3, Kind: PlusPlus})
	g.nodes[2].EmplaceEdge(Edge{Src: 2, Dst: 3, Kind: PlusPlus})

	assert.False(t, g.hasCycle())
}

func TestMarkConnectedComponents_SplitsDisjointSubgraphs(t *testing.T) {
	g := NewGraph(DefaultParams(), nil)
	g.nodes = map[NodeID]*Node{
		1: NewNode(NewKmer("ACGTACGTACG"), LabelReference),
		2: NewNode(NewKmer("CGTACGTACGT"), LabelReference),
		3: NewNode(NewKmer("TTTTTTTTTTT"), LabelReference),
	}
	g.nodes[1].EmplaceEdge(Edge{Src: 1, Dst: 2, Kind: PlusPlus})
	g.nodes[2].EmplaceEdge(Edge{Src: 2, Dst: 1, Kind: RevEdgeKind(PlusPlus)})

	components := g.markConnectedComponents()
	require.Len(t, components, 2)
	assert.Equal(t, 2, components[0].numNodes)
	assert.Equal(t, 1, components[1].numNodes)
	assert.NotEqual(t, g.nodes[1].GetComponentId(), g.nodes[3].GetComponentId())
	assert.Equal(t, g.nodes[1].GetComponentId(), g.nodes[2].GetComponentId())
}

func TestRemoveLowCovNodes_KeepsAnchorsAndHighCoverage(t *testing.T) {
	g := NewGraph(DefaultParams(), nil)
	low := NewNode(NewKmer("ACGTACGTACG"), LabelReference)
	low.IncrementReadSupport(LabelTumor) // single tumor, single normal -> singleton-singleton rule
	low.IncrementReadSupport(LabelNormal)

	high := NewNode(NewKmer("CGTACGTACGT"), LabelReference)
	for i := 0; i < 5; i++ {
		high.IncrementReadSupport(LabelNormal)
	}

	anchor := NewNode(NewKmer("GTACGTACGTA"), LabelReference)

	g.nodes = map[NodeID]*Node{low.Identifier(): low, high.Identifier(): high, anchor.Identifier(): anchor}
	g.sourceID = anchor.Identifier()
	g.params.MinNodeCov = 2

	g.removeLowCovNodes(0)

	_, lowStillThere := g.nodes[low.Identifier()]
	_, highStillThere := g.nodes[high.Identifier()]
	_, anchorStillThere := g.nodes[anchor.Identifier()]
	assert.False(t, lowStillThere)
	assert.True(t, highStillThere)
	assert.True(t, anchorStillThere, "source/sink anchors are never pruned")
}
