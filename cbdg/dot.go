package cbdg

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeDotFile emits a Graphviz snapshot of componentID's current nodes
// under params.GraphsDir, named by build stage (SPEC_FULL.md SUPPLEMENTED
// #4, grounded on the reference implementation's --graphs-dir option).
// Failures are swallowed: a missing/unwritable debug directory must never
// abort a variant-calling run.
func writeDotFile(g *Graph, stage string, componentID int) {
	name := fmt.Sprintf("k%d_%s_c%d.dot", g.currK, stage, componentID)
	f, err := os.Create(filepath.Join(g.params.GraphsDir, name))
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintln(f, "digraph G {")
	for _, id := range sortedNodeIDs(g.nodes) {
		n := g.nodes[id]
		if n.GetComponentId() != componentID {
			continue
		}
		color := "black"
		switch {
		case n.IsShared():
			color = "purple"
		case n.IsTumorOnly():
			color = "red"
		case n.IsNormalOnly():
			color = "blue"
		}
		shape := "ellipse"
		if id == g.sourceID || id == g.sinkID {
			shape = "doublecircle"
		}
		fmt.Fprintf(f, "  %d [color=%q shape=%q label=%q];\n", id, color, shape, fmt.Sprintf("%d (%dbp)", id, n.SeqLength()))
		for _, e := range n.Edges() {
			fmt.Fprintf(f, "  %d -> %d [label=%q];\n", e.Src, e.Dst, kindLabel(e.Kind))
		}
	}
	fmt.Fprintln(f, "}")
}

func kindLabel(k Kind) string {
	switch k {
	case PlusPlus:
		return "++"
	case PlusMinus:
		return "+-"
	case MinusPlus:
		return "-+"
	default:
		return "--"
	}
}
