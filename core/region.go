// Package core implements the window-driven assembly pipeline: turning
// region specs into Windows, collecting reads per window, driving the
// cDBG/MSA/genotyper machinery per worker, and merging results into a
// genome-sorted VariantStore (spec.md §4.1-4.2, §4.9-4.10).
package core

import "fmt"

// Region is a closed 1-based genomic interval: Start1 and End1 are both
// inclusive, and a non-empty Sequence has len(Sequence) == End1-Start1+1
// (spec.md §3).
type Region struct {
	ChromIndex int
	ChromName  string
	Start1     int // 1-based inclusive
	End1       int // 1-based inclusive
	Sequence   string
}

// Len returns the region's length in bases.
func (r Region) Len() int { return r.End1 - r.Start1 + 1 }

// Valid reports whether the region's invariants hold.
func (r Region) Valid() error {
	if r.End1 < r.Start1 {
		return fmt.Errorf("core: region %s:%d-%d has end before start", r.ChromName, r.Start1, r.End1)
	}
	if r.Sequence != "" && len(r.Sequence) != r.Len() {
		return fmt.Errorf("core: region %s:%d-%d sequence length %d != %d", r.ChromName, r.Start1, r.End1, len(r.Sequence), r.Len())
	}
	return nil
}

// String renders the region samtools-style, quoting the chrom name if it
// contains a colon (spec.md §6).
func (r Region) String() string {
	name := r.ChromName
	for _, c := range name {
		if c == ':' {
			name = "{" + name + "}"
			break
		}
	}
	return fmt.Sprintf("%s:%d-%d", name, r.Start1, r.End1)
}

// Pad grows the region by n bases on each side, clamped to [1, chromLen].
func (r Region) Pad(n, chromLen int) Region {
	start := r.Start1 - n
	if start < 1 {
		start = 1
	}
	end := r.End1 + n
	if end > chromLen {
		end = chromLen
	}
	r.Start1 = start
	r.End1 = end
	r.Sequence = ""
	return r
}
