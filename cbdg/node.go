package cbdg

// Label identifies which collaborator contributed a k-mer to the graph
// (spec.md §3's "label set indicating which sample color(s) contributed").
type Label int8

const (
	LabelReference Label = iota
	LabelNormal
	LabelTumor
)

// Reserved NodeIDs for the two special source/sink nodes (spec.md §3,
// Node invariant (a)).
const (
	SourceID NodeID = 0
	SinkID   NodeID = 1
)

// Node is a single canonical k-mer (after compression, a compacted unitig)
// in the cDBG. Nodes are owned by Graph's node table and referenced
// elsewhere only by NodeID (spec.md §9's arena-ownership design note).
type Node struct {
	id          NodeID
	dfltSeq     cord
	oppoSeq     cord
	componentID int
	edges       []Edge

	normalSupport   uint32
	tumorSupport    uint32
	referenceLabel  bool
}

// NewNode creates a node anchored at a single k-mer. label marks the node as
// part of the reference spine; read support is always added afterward via
// IncrementReadSupport, so a fresh read-derived node starts with zero
// support (spec.md §4.3: "read-support is monotonically non-decreasing
// during build").
func NewNode(km Kmer, label Label) *Node {
	n := &Node{
		id:      km.ID(),
		dfltSeq: newCord(km.SeqFor(Default)),
		oppoSeq: newCord(km.SeqFor(Opposite)),
	}
	if label == LabelReference {
		n.referenceLabel = true
	}
	return n
}

// IncrementReadSupport bumps this node's per-sample counters for one more
// observed read k-mer.
func (n *Node) IncrementReadSupport(label Label) {
	switch label {
	case LabelReference:
		n.referenceLabel = true
	case LabelNormal:
		n.normalSupport++
	case LabelTumor:
		n.tumorSupport++
	}
}

// Identifier is this node's NodeID.
func (n *Node) Identifier() NodeID { return n.id }

// GetComponentId / SetComponentId track which connected component (within
// one k's graph build) this node belongs to; 0 means unassigned.
func (n *Node) GetComponentId() int     { return n.componentID }
func (n *Node) SetComponentId(id int)   { n.componentID = id }

// NormalReadSupport, TumorReadSupport, TotalReadSupport report per-sample
// coverage used by low-coverage pruning and anchor selection (spec.md
// §4.3.2).
func (n *Node) NormalReadSupport() uint32 { return n.normalSupport }
func (n *Node) TumorReadSupport() uint32  { return n.tumorSupport }
func (n *Node) TotalReadSupport() uint32  { return n.normalSupport + n.tumorSupport }
func (n *Node) IsReference() bool         { return n.referenceLabel }

// IsNormalOnly, IsTumorOnly, IsShared classify a node by which samples
// contributed reads to it (used for .dot coloring and the low-coverage
// "tumor-singleton AND normal-singleton" removal rule).
func (n *Node) IsNormalOnly() bool { return n.normalSupport > 0 && n.tumorSupport == 0 }
func (n *Node) IsTumorOnly() bool  { return n.tumorSupport > 0 && n.normalSupport == 0 }
func (n *Node) IsShared() bool     { return n.normalSupport > 0 && n.tumorSupport > 0 }

// SignFor reports the sign this node has in the requested orientation. By
// construction a node's Default orientation always holds its canonical
// (Plus) sequence.
func (n *Node) SignFor(ord Ordering) Sign {
	if ord == Default {
		return Plus
	}
	return Minus
}

// SequenceFor materializes the node's sequence in the requested
// orientation.
func (n *Node) SequenceFor(ord Ordering) string {
	if ord == Default {
		return n.dfltSeq.String()
	}
	return n.oppoSeq.String()
}

// SeqLength is the current (possibly compacted) sequence length.
func (n *Node) SeqLength() int { return n.dfltSeq.Len() }

// NumOutEdges is the node's out-degree.
func (n *Node) NumOutEdges() int { return len(n.edges) }

// Edges exposes the node's outgoing edges for iteration (mirrors the C++
// Node's begin()/end()).
func (n *Node) Edges() []Edge { return n.edges }

// HasSelfLoop reports whether any outgoing edge is a self-loop.
func (n *Node) HasSelfLoop() bool {
	for _, e := range n.edges {
		if e.IsSelfLoop() {
			return true
		}
	}
	return false
}

// FindEdgesInDirection returns the outgoing edges whose SrcSign equals dir.
func (n *Node) FindEdgesInDirection(dir Sign) []Edge {
	var out []Edge
	for _, e := range n.edges {
		if e.Kind.SrcSign() == dir {
			out = append(out, e)
		}
	}
	return out
}

// EmplaceEdge adds an edge if it is not already present (idempotent, like
// the C++ flat_hash_set<Edge> backing a node's adjacency list).
func (n *Node) EmplaceEdge(e Edge) {
	for _, existing := range n.edges {
		if existing == e {
			return
		}
	}
	n.edges = append(n.edges, e)
}

// EraseEdge removes an edge if present.
func (n *Node) EraseEdge(e Edge) {
	for i, existing := range n.edges {
		if existing == e {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)
			return
		}
	}
}

// Merge folds other's sequence into n across an edge of kind k (spec.md
// §4.3.3.1's cord-merge table). kmerLen is the current k-mer length; the
// overlap between n's existing suffix/prefix and other's contributed piece
// is k-1 bases and is trimmed before appending/prepending.
func (n *Node) Merge(other *Node, k Kind, kmerLen int) {
	overlap := kmerLen - 1
	otherDflt, otherOppo := other.dfltSeq.String(), other.oppoSeq.String()

	switch k {
	case PlusPlus:
		if len(otherDflt) > overlap {
			n.dfltSeq.append(otherDflt[overlap:])
		}
		if len(otherOppo) > overlap {
			n.oppoSeq.prepend(otherOppo[:len(otherOppo)-overlap])
		}
	case PlusMinus:
		if len(otherOppo) > overlap {
			n.dfltSeq.append(otherOppo[overlap:])
		}
		if len(otherDflt) > overlap {
			n.oppoSeq.prepend(otherDflt[:len(otherDflt)-overlap])
		}
	case MinusPlus:
		if len(otherOppo) > overlap {
			n.dfltSeq.prepend(otherOppo[:len(otherOppo)-overlap])
		}
		if len(otherDflt) > overlap {
			n.oppoSeq.append(otherDflt[overlap:])
		}
	case MinusMinus:
		if len(otherDflt) > overlap {
			n.dfltSeq.prepend(otherDflt[:len(otherDflt)-overlap])
		}
		if len(otherOppo) > overlap {
			n.oppoSeq.append(otherOppo[overlap:])
		}
	}

	n.normalSupport += other.normalSupport
	n.tumorSupport += other.tumorSupport
	n.referenceLabel = n.referenceLabel || other.referenceLabel
}
