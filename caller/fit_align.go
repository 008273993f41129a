package caller

// fittingResult is the outcome of aligning a short read against one
// (typically much longer) haplotype: the read is aligned end-to-end but is
// free to start/stop anywhere along the haplotype without penalty ("fitting"
// / semi-global alignment), which is the appropriate model for placing a
// ~100-150bp read within a ~1kb assembled haplotype (spec.md §4.7).
type fittingResult struct {
	HapStart int // 0-based, inclusive
	HapEnd   int // 0-based, exclusive
	Score    int
	// ReadToHapCol[i] is the haplotype column read position i aligned to
	// (match/mismatch), or -1 if read position i falls in an
	// insertion-relative-to-haplotype run.
	ReadToHapCol []int
}

// fittingAlign aligns read (rows) against hap (columns) with free end-gaps
// on the haplotype dimension only: starting and ending the read anywhere
// within hap costs nothing, but every read base must be accounted for
// (matched, mismatched, or involved in an internal gap).
func fittingAlign(hap, read string) fittingResult {
	n, m := len(read), len(hap)
	idx := func(i, j int) int { return i*(m+1) + j }

	h := make([]int, (n+1)*(m+1))
	e1 := make([]int, (n+1)*(m+1))
	e2 := make([]int, (n+1)*(m+1))
	f1 := make([]int, (n+1)*(m+1))
	f2 := make([]int, (n+1)*(m+1))
	for i := range h {
		e1[i], e2[i], f1[i], f2[i] = negInf, negInf, negInf, negInf
	}
	// Row 0: read hasn't started yet — free to sit at any hap column.
	for j := 0; j <= m; j++ {
		h[idx(0, j)] = 0
	}
	for i := 1; i <= n; i++ {
		f1[idx(i, 0)] = maxInt(h[idx(i-1, 0)]+gapOpen1, f1[idx(i-1, 0)]+gapExtend1)
		f2[idx(i, 0)] = maxInt(h[idx(i-1, 0)]+gapOpen2, f2[idx(i-1, 0)]+gapExtend2)
		h[idx(i, 0)] = maxInt(f1[idx(i, 0)], f2[idx(i, 0)])
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			diag := h[idx(i-1, j-1)] + subScore(read[i-1], hap[j-1])
			e1[idx(i, j)] = maxInt(h[idx(i, j-1)]+gapOpen1, e1[idx(i, j-1)]+gapExtend1)
			e2[idx(i, j)] = maxInt(h[idx(i, j-1)]+gapOpen2, e2[idx(i, j-1)]+gapExtend2)
			f1[idx(i, j)] = maxInt(h[idx(i-1, j)]+gapOpen1, f1[idx(i-1, j)]+gapExtend1)
			f2[idx(i, j)] = maxInt(h[idx(i-1, j)]+gapOpen2, f2[idx(i-1, j)]+gapExtend2)
			gapScore := maxInt(maxInt(e1[idx(i, j)], e2[idx(i, j)]), maxInt(f1[idx(i, j)], f2[idx(i, j)]))
			h[idx(i, j)] = maxInt(diag, gapScore)
		}
	}

	bestJ, bestScore := 0, h[idx(n, 0)]
	for j := 1; j <= m; j++ {
		if s := h[idx(n, j)]; s > bestScore {
			bestScore, bestJ = s, j
		}
	}

	// Trace back from (n, bestJ) to find where the read's alignment began,
	// recording each read position's aligned haplotype column as we go.
	readToHapCol := make([]int, n)
	for k := range readToHapCol {
		readToHapCol[k] = -1
	}
	i, j := n, bestJ
	for i > 0 {
		switch {
		case j > 0 && h[idx(i, j)] == h[idx(i-1, j-1)]+subScore(read[i-1], hap[j-1]):
			readToHapCol[i-1] = j - 1
			i--
			j--
		case j > 0 && (h[idx(i, j)] == e1[idx(i, j)] || h[idx(i, j)] == e2[idx(i, j)]):
			j--
		default:
			i--
		}
	}

	return fittingResult{HapStart: j, HapEnd: bestJ, Score: bestScore, ReadToHapCol: readToHapCol}
}
