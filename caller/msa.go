package caller

import (
	"fmt"
	"strings"

	"github.com/nygenome/lancet/biosimd"
)

// MSA is the column-aligned output of BuildMSA: every row has equal length,
// row 0 is the reference anchor, gap character '-' (spec.md §4.5).
type MSA struct {
	Rows []string
}

// BuildMSA aligns every alternate haplotype (haplotypes[1:]) against the
// reference anchor (haplotypes[0]) independently — both forward and
// reverse-complement, keeping the better-scoring orientation — then merges
// the pairwise alignments into one multiple alignment anchored on the
// reference's columns (spec.md §4.5). A true partial-order-alignment graph
// is unnecessary here: every downstream consumer (VariantSet, §4.6) only
// ever compares the reference row against one alternate row at a time, so a
// star/profile alignment centered on the reference produces the same
// columns a POA traceback would for that comparison.
func BuildMSA(haplotypes []string) (MSA, error) {
	if len(haplotypes) == 0 {
		return MSA{}, fmt.Errorf("caller: BuildMSA requires at least a reference anchor")
	}
	ref := haplotypes[0]
	if len(haplotypes) == 1 {
		return MSA{Rows: []string{ref}}, nil
	}

	pairs := make([]alignedPair, len(haplotypes)-1)
	for i, alt := range haplotypes[1:] {
		pairs[i] = bestOrientationAlignment(ref, alt)
	}

	return mergeStarAlignment(ref, pairs), nil
}

// bestOrientationAlignment scores alt against ref both as given and
// reverse-complemented, keeping whichever orientation aligns better.
func bestOrientationAlignment(ref, alt string) alignedPair {
	fwd := globalAlign(ref, alt)
	rc := make([]byte, len(alt))
	biosimd.ReverseComp8NoValidate(rc, []byte(alt))
	rev := globalAlign(ref, string(rc))
	if rev.score > fwd.score {
		return rev
	}
	return fwd
}

// mergeStarAlignment folds N independent ref-vs-alt pairwise alignments
// into one MSA by harmonizing, at each reference coordinate, the longest
// insertion any alternate introduced there (classic star/profile-alignment
// merge).
func mergeStarAlignment(ref string, pairs []alignedPair) MSA {
	n := len(ref)
	insertions := make([][]string, len(pairs)) // insertions[p][refSlot]
	baseCols := make([][]byte, len(pairs))      // baseCols[p][refIdx]

	for p, pair := range pairs {
		ins, base := splitAlignment(pair, n)
		insertions[p] = ins
		baseCols[p] = base
	}

	maxIns := make([]int, n+1)
	for slot := 0; slot <= n; slot++ {
		for p := range pairs {
			if l := len(insertions[p][slot]); l > maxIns[slot] {
				maxIns[slot] = l
			}
		}
	}

	refRow := make([]byte, 0, n*2)
	altRows := make([][]byte, len(pairs))
	for p := range pairs {
		altRows[p] = make([]byte, 0, n*2)
	}

	for slot := 0; slot <= n; slot++ {
		for p := range pairs {
			altRows[p] = append(altRows[p], padRight(insertions[p][slot], maxIns[slot])...)
		}
		for k := 0; k < maxIns[slot]; k++ {
			refRow = append(refRow, '-')
		}
		if slot < n {
			refRow = append(refRow, ref[slot])
			for p := range pairs {
				altRows[p] = append(altRows[p], baseCols[p][slot])
			}
		}
	}

	rows := make([]string, 0, len(pairs)+1)
	rows = append(rows, string(refRow))
	for p := range pairs {
		rows = append(rows, string(altRows[p]))
	}
	return MSA{Rows: rows}
}

// splitAlignment decomposes one ref-vs-query pairwise alignment into, for
// each of the n+1 "slots" between (and around) reference bases, the
// inserted query run at that slot, plus the single query character aligned
// to each reference base (which may itself be '-' for a deletion).
func splitAlignment(pair alignedPair, n int) ([]string, []byte) {
	insertions := make([]string, n+1)
	base := make([]byte, n)

	var run strings.Builder
	refIdx := 0
	for i := 0; i < len(pair.ref); i++ {
		if pair.ref[i] == '-' {
			run.WriteByte(pair.query[i])
			continue
		}
		insertions[refIdx] = run.String()
		run.Reset()
		base[refIdx] = pair.query[i]
		refIdx++
	}
	insertions[refIdx] = run.String()
	return insertions, base
}

func padRight(s string, width int) []byte {
	out := make([]byte, width)
	copy(out, s)
	for i := len(s); i < width; i++ {
		out[i] = '-'
	}
	return out
}
