package caller

import (
	"sort"
	"strconv"
)

// WindowAnchor carries just enough window identity for variant positioning
// without caller needing to import the core package (which itself imports
// caller) — chromosome index and the window's 1-based start (spec.md §3's
// Window/Region).
type WindowAnchor struct {
	ChromIndex int
	Start1     int
}

// ExtractVariants walks an MSA's reference row against every alternate row
// and returns a sorted, deduplicated set of RawVariants (spec.md §4.6).
func ExtractVariants(msa MSA, anchor WindowAnchor) []RawVariant {
	byKey := make(map[[4]string]*RawVariant)
	var order [][4]string

	ref := msa.Rows[0]
	for hapIdx := 1; hapIdx < len(msa.Rows); hapIdx++ {
		alt := msa.Rows[hapIdx]
		for _, rv := range variantsForHaplotype(ref, alt, hapIdx, anchor) {
			key := [4]string{strconv.Itoa(rv.ChromIndex), strconv.Itoa(rv.GenomeStart1), rv.RefAllele, rv.AltAllele}
			if existing, ok := byKey[key]; ok {
				for h, idx := range rv.HapStart0Idxs {
					existing.HapStart0Idxs[h] = idx
				}
				continue
			}
			cp := rv
			byKey[key] = &cp
			order = append(order, key)
		}
	}

	out := make([]RawVariant, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.Slice(out, func(i, j int) bool {
		ci, si, ri, ai := out[i].SortKey()
		cj, sj, rj, aj := out[j].SortKey()
		if ci != cj {
			return ci < cj
		}
		if si != sj {
			return si < sj
		}
		if ri != rj {
			return ri < rj
		}
		return ai < aj
	})
	return out
}

func variantsForHaplotype(ref, alt string, hapIdx int, anchor WindowAnchor) []RawVariant {
	gapFreeStart, gapFreeEnd, ok := gapFreeRange(ref, alt)
	if !ok {
		return nil
	}

	var out []RawVariant
	i := gapFreeStart
	for i <= gapFreeEnd {
		if ref[i] == alt[i] {
			i++
			continue
		}
		j := i
		for j <= gapFreeEnd && ref[j] != alt[j] {
			j++
		}

		rangeStart := i
		for rangeStart > 0 && ref[rangeStart-1] == '-' && alt[rangeStart-1] == '-' {
			rangeStart--
		}

		if rv, ok := buildVariant(ref, alt, rangeStart, j, hapIdx, anchor); ok {
			out = append(out, rv)
		}
		i = j
	}
	return out
}

// gapFreeRange trims leading/trailing columns where either row is a gap,
// matching spec.md §4.6 step 1.
func gapFreeRange(ref, alt string) (start, end int, ok bool) {
	n := len(ref)
	start = 0
	for start < n && (ref[start] == '-' || alt[start] == '-') {
		start++
	}
	end = n - 1
	for end >= start && (ref[end] == '-' || alt[end] == '-') {
		end--
	}
	if start > end {
		return 0, 0, false
	}
	return start, end, true
}

// buildVariant materializes one mismatch run [rangeStart, rangeEnd) into a
// RawVariant, prepending one anchor column on the left if needed so indels
// always carry a shared leading base (spec.md §4.6 steps 3-8).
func buildVariant(ref, alt string, rangeStart, rangeEnd, hapIdx int, anchor WindowAnchor) (RawVariant, bool) {
	refAllele := degap(ref[rangeStart:rangeEnd])
	altAllele := degap(alt[rangeStart:rangeEnd])

	anchorCol := rangeStart
	if (refAllele == "" || altAllele == "") && rangeStart > 0 {
		anchorCol = rangeStart - 1
		refAllele = degap(ref[anchorCol:rangeEnd])
		altAllele = degap(alt[anchorCol:rangeEnd])
	}
	if refAllele == "" || altAllele == "" {
		return RawVariant{}, false
	}

	numSuperfluous := 0
	for len(refAllele) > 1 && len(altAllele) > 1 && refAllele[0] == altAllele[0] {
		refAllele = refAllele[1:]
		altAllele = altAllele[1:]
		numSuperfluous++
	}

	var vtype VariantType
	switch {
	case len(refAllele) == len(altAllele) && len(refAllele) == 1:
		vtype = SNV
	case len(refAllele) == len(altAllele):
		vtype = MNP
	case len(refAllele) > len(altAllele):
		vtype = DEL
	default:
		vtype = INS
	}

	startRef0 := ungappedIndex(ref, anchorCol) + numSuperfluous
	alleleLen := len(refAllele)
	if len(altAllele) > alleleLen {
		alleleLen = len(altAllele)
	}

	hapStarts := map[int]int{
		0:      ungappedIndex(ref, anchorCol) + numSuperfluous,
		hapIdx: ungappedIndex(alt, anchorCol) + numSuperfluous,
	}

	return RawVariant{
		ChromIndex:    anchor.ChromIndex,
		GenomeStart1:  anchor.Start1 + startRef0,
		Type:          vtype,
		RefAllele:     refAllele,
		AltAllele:     altAllele,
		AlleleLength:  alleleLen,
		HapStart0Idxs: hapStarts,
	}, true
}

func degap(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ungappedIndex returns the number of non-gap characters in row before
// column col — i.e. col's position in row's ungapped sequence.
func ungappedIndex(row string, col int) int {
	n := 0
	for i := 0; i < col; i++ {
		if row[i] != '-' {
			n++
		}
	}
	return n
}

