// Package caller implements per-window variant discovery on top of a
// cDBG-derived haplotype set: partial-order-style multiple sequence
// alignment, pairwise REF/ALT variant extraction, read realignment and
// genotyping, and VCF record formatting (spec.md §4.5-4.8).
package caller

import "math"

// asm5 scoring parameters (spec.md §4.5): match/mismatch plus a dual-affine
// (convex) gap model with two (open, extend) tiers, the cheaper of which
// wins at any given gap length.
const (
	matchScore    = 1
	mismatchScore = -19
	gapOpen1      = -81
	gapExtend1    = -1
	gapOpen2      = -39
	gapExtend2    = -3
)

const negInf = math.MinInt32 / 2

// alignedPair is one sequence's global alignment against a reference, both
// strings equal length with '-' as the gap character.
type alignedPair struct {
	ref   string
	query string
	score int
}

// globalAlign runs Gotoh's algorithm with two parallel affine-gap matrices
// (dual-affine / "convex" scoring) and returns the best global alignment of
// a against b (spec.md §4.5, the asm5 parameter set).
func globalAlign(a, b string) alignedPair {
	n, m := len(a), len(b)
	idx := func(i, j int) int { return i*(m+1) + j }

	h := make([]int, (n+1)*(m+1))
	e1 := make([]int, (n+1)*(m+1))
	e2 := make([]int, (n+1)*(m+1))
	f1 := make([]int, (n+1)*(m+1))
	f2 := make([]int, (n+1)*(m+1))

	for i := range h {
		e1[i], e2[i], f1[i], f2[i] = negInf, negInf, negInf, negInf
	}
	h[idx(0, 0)] = 0

	for i := 1; i <= n; i++ {
		f1[idx(i, 0)] = maxInt(h[idx(i-1, 0)]+gapOpen1, f1[idx(i-1, 0)]+gapExtend1)
		f2[idx(i, 0)] = maxInt(h[idx(i-1, 0)]+gapOpen2, f2[idx(i-1, 0)]+gapExtend2)
		h[idx(i, 0)] = maxInt(f1[idx(i, 0)], f2[idx(i, 0)])
	}
	for j := 1; j <= m; j++ {
		e1[idx(0, j)] = maxInt(h[idx(0, j-1)]+gapOpen1, e1[idx(0, j-1)]+gapExtend1)
		e2[idx(0, j)] = maxInt(h[idx(0, j-1)]+gapOpen2, e2[idx(0, j-1)]+gapExtend2)
		h[idx(0, j)] = maxInt(e1[idx(0, j)], e2[idx(0, j)])
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := mismatchScore
			if a[i-1] == b[j-1] {
				sub = matchScore
			}
			diag := h[idx(i-1, j-1)] + sub

			e1[idx(i, j)] = maxInt(h[idx(i, j-1)]+gapOpen1, e1[idx(i, j-1)]+gapExtend1)
			e2[idx(i, j)] = maxInt(h[idx(i, j-1)]+gapOpen2, e2[idx(i, j-1)]+gapExtend2)
			f1[idx(i, j)] = maxInt(h[idx(i-1, j)]+gapOpen1, f1[idx(i-1, j)]+gapExtend1)
			f2[idx(i, j)] = maxInt(h[idx(i-1, j)]+gapOpen2, f2[idx(i-1, j)]+gapExtend2)

			gapScore := maxInt(maxInt(e1[idx(i, j)], e2[idx(i, j)]), maxInt(f1[idx(i, j)], f2[idx(i, j)]))
			h[idx(i, j)] = maxInt(diag, gapScore)
		}
	}

	alignedA, alignedB := traceback(a, b, h, e1, e2, f1, f2, idx, n, m)
	return alignedPair{ref: alignedA, query: alignedB, score: h[idx(n, m)]}
}

func traceback(a, b string, h, e1, e2, f1, f2 []int, idx func(i, j int) int, n, m int) (string, string) {
	var outA, outB []byte
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && h[idx(i, j)] == h[idx(i-1, j-1)]+subScore(a[i-1], b[j-1]):
			outA = append(outA, a[i-1])
			outB = append(outB, b[j-1])
			i--
			j--
		case j > 0 && (h[idx(i, j)] == e1[idx(i, j)] || h[idx(i, j)] == e2[idx(i, j)]):
			outA = append(outA, '-')
			outB = append(outB, b[j-1])
			j--
		case i > 0:
			outA = append(outA, a[i-1])
			outB = append(outB, '-')
			i--
		default:
			outA = append(outA, '-')
			outB = append(outB, b[j-1])
			j--
		}
	}
	reverseBytes(outA)
	reverseBytes(outB)
	return string(outA), string(outB)
}

func subScore(x, y byte) int {
	if x == y {
		return matchScore
	}
	return mismatchScore
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func maxInt(vs ...int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
