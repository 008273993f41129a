package cbdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond wires source -> {viaB, viaA} -> sink, a minimal graph with
// two alternate source-to-sink paths, to exercise the walker's
// one-path-per-call and unseen-edge-priority behavior.
func buildDiamond() (nodes map[NodeID]*Node, source, sink NodeID) {
	s := NewNode(NewKmer("AACGT"), LabelReference)
	a := NewNode(NewKmer("ACGTT"), LabelNormal)
	b := NewNode(NewKmer("TTGCA"), LabelTumor)
	t := NewNode(NewKmer("GCATT"), LabelReference)

	s.EmplaceEdge(Edge{Src: s.Identifier(), Dst: a.Identifier(), Kind: PlusPlus})
	a.EmplaceEdge(Edge{Src: a.Identifier(), Dst: t.Identifier(), Kind: PlusPlus})
	s.EmplaceEdge(Edge{Src: s.Identifier(), Dst: b.Identifier(), Kind: PlusPlus})
	b.EmplaceEdge(Edge{Src: b.Identifier(), Dst: t.Identifier(), Kind: PlusPlus})

	nodes = map[NodeID]*Node{
		s.Identifier(): s,
		a.Identifier(): a,
		b.Identifier(): b,
		t.Identifier(): t,
	}
	return nodes, s.Identifier(), t.Identifier()
}

func TestMaxFlowWalker_EnumeratesBothPathsThenStops(t *testing.T) {
	nodes, source, sink := buildDiamond()
	w := NewMaxFlowWalker(nodes, source, sink, 3, 100)

	first, ok := w.NextPath()
	require.True(t, ok)

	second, ok := w.NextPath()
	require.True(t, ok)

	assert.NotEqual(t, first, second, "the two diamond branches must yield distinct haplotype sequences")

	_, ok = w.NextPath()
	assert.False(t, ok, "every edge has now been used at least once")
}

func TestMaxFlowWalker_TieBreaksOnDestinationID(t *testing.T) {
	nodes, source, sink := buildDiamond()
	w := NewMaxFlowWalker(nodes, source, sink, 3, 100)

	path := w.findPath()
	require.Len(t, path, 2)

	// All edges are unseen on the first call, so the DFS must pick the
	// branch whose first edge has the smaller Dst id.
	s := nodes[source]
	candidates := s.Edges()
	minDst := candidates[0].Dst
	for _, e := range candidates {
		if e.Dst < minDst {
			minDst = e.Dst
		}
	}
	assert.Equal(t, minDst, path[0].Dst)
}
