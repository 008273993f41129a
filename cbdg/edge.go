package cbdg

// Kind records the sign of both endpoints of an edge in its forward
// (Src->Dst) orientation (spec.md §3). Every edge has a mirror edge at its
// destination node with swapped endpoints and reversed signs.
type Kind uint8

const (
	PlusPlus Kind = iota
	PlusMinus
	MinusPlus
	MinusMinus
)

// MakeFwdEdgeKind composes a Kind from the (src, dst) sign pair.
func MakeFwdEdgeKind(srcSign, dstSign Sign) Kind {
	switch {
	case srcSign == Plus && dstSign == Plus:
		return PlusPlus
	case srcSign == Plus && dstSign == Minus:
		return PlusMinus
	case srcSign == Minus && dstSign == Plus:
		return MinusPlus
	default:
		return MinusMinus
	}
}

// SrcSign returns the sign of the edge's source endpoint.
func (k Kind) SrcSign() Sign {
	if k == PlusPlus || k == PlusMinus {
		return Plus
	}
	return Minus
}

// DstSign returns the sign of the edge's destination endpoint.
func (k Kind) DstSign() Sign {
	if k == PlusPlus || k == MinusPlus {
		return Plus
	}
	return Minus
}

// RevEdgeKind returns the Kind of the mirror edge: endpoints swapped, both
// signs flipped.
func RevEdgeKind(k Kind) Kind {
	return MakeFwdEdgeKind(RevSign(k.DstSign()), RevSign(k.SrcSign()))
}

// Edge is a directed, signed connection between two nodes in the cDBG.
type Edge struct {
	Src, Dst NodeID
	Kind     Kind
}

// IsSelfLoop reports whether the edge connects a node to itself.
func (e Edge) IsSelfLoop() bool { return e.Src == e.Dst }

// Mirror returns the edge that must exist at Dst for e to satisfy the
// bidirected-edge invariant (spec.md §3, tested in edge_test.go).
func (e Edge) Mirror() Edge {
	return Edge{Src: e.Dst, Dst: e.Src, Kind: RevEdgeKind(e.Kind)}
}
