package caller

// FindSTR looks for a short tandem repeat motif (period 1-6bp, at least 3
// full repeat units) overlapping offset in seq, searching outward from
// offset for the longest qualifying repeat run (spec.md §4.8's STR/STR_LEN/
// STR_MOTIF info fields).
func FindSTR(seq string, offset int) *STRAnnotation {
	if offset < 0 || offset >= len(seq) {
		return nil
	}

	var best *STRAnnotation
	for period := 1; period <= 6; period++ {
		start, end := repeatSpan(seq, offset, period)
		units := (end - start) / period
		if units < 3 {
			continue
		}
		length := end - start
		if best == nil || length > best.Length {
			best = &STRAnnotation{Motif: seq[start : start+period], Length: length}
		}
	}
	return best
}

// repeatSpan finds the maximal [start, end) window around offset over which
// seq repeats with the given period.
func repeatSpan(seq string, offset, period int) (int, int) {
	// Anchor the motif at the period-aligned position at or before offset.
	anchor := offset - (offset % period)
	if anchor+period > len(seq) {
		return offset, offset
	}
	motif := seq[anchor : anchor+period]

	end := anchor + period
	for end+period <= len(seq) && seq[end:end+period] == motif {
		end += period
	}
	start := anchor
	for start-period >= 0 && seq[start-period:start] == motif {
		start -= period
	}
	if offset < start || offset >= end {
		return offset, offset
	}
	return start, end
}
