package core

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/nygenome/lancet/caller"
)

// VariantStore is the shared, mutex-guarded map of in-flight VariantCalls
// workers merge their window results into (spec.md §4.9).
type VariantStore struct {
	mu    sync.Mutex
	calls map[string]caller.VariantCall
}

// NewVariantStore constructs an empty store.
func NewVariantStore() *VariantStore {
	return &VariantStore{calls: make(map[string]caller.VariantCall)}
}

// AddVariants merges one worker's output into the store. Duplicates (same
// ID) are resolved by keeping the call with higher total coverage, then
// higher site quality (spec.md §4.9).
func (s *VariantStore) AddVariants(calls []caller.VariantCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range calls {
		existing, ok := s.calls[c.ID]
		if !ok || betterVariantCall(c, existing) {
			s.calls[c.ID] = c
		}
	}
}

func betterVariantCall(a, b caller.VariantCall) bool {
	if a.TotalCoverage() != b.TotalCoverage() {
		return a.TotalCoverage() > b.TotalCoverage()
	}
	return a.SiteQuality > b.SiteQuality
}

// FlushBefore moves out and returns every call whose (chrom_index, start1)
// is strictly before (window.ChromIndex, window.End1), sorted by
// (chrom, start1, ref, alt, length, category), with NONE-state or
// REF-category calls dropped (spec.md §4.9).
func (s *VariantStore) FlushBefore(window Window) []caller.VariantCall {
	s.mu.Lock()
	var flushed []caller.VariantCall
	var remaining = make(map[string]caller.VariantCall, len(s.calls))
	for id, c := range s.calls {
		if beforeWindow(c, window) {
			flushed = append(flushed, c)
		} else {
			remaining[id] = c
		}
	}
	s.calls = remaining
	s.mu.Unlock()

	return sortAndFilterCalls(flushed)
}

// FlushAll drains every remaining call in the store (spec.md §4.9).
func (s *VariantStore) FlushAll() []caller.VariantCall {
	s.mu.Lock()
	flushed := make([]caller.VariantCall, 0, len(s.calls))
	for _, c := range s.calls {
		flushed = append(flushed, c)
	}
	s.calls = make(map[string]caller.VariantCall)
	s.mu.Unlock()

	return sortAndFilterCalls(flushed)
}

func beforeWindow(c caller.VariantCall, window Window) bool {
	if c.Variant.ChromIndex != window.ChromIndex {
		return c.Variant.ChromIndex < window.ChromIndex
	}
	return c.Variant.GenomeStart1 < window.End1
}

func sortAndFilterCalls(calls []caller.VariantCall) []caller.VariantCall {
	out := calls[:0]
	for _, c := range calls {
		if c.State == caller.StateNone || c.Category == "REF" {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, si, ri, ai, li, cati := out[i].SortKey()
		cj, sj, rj, aj, lj, catj := out[j].SortKey()
		if ci != cj {
			return ci < cj
		}
		if si != sj {
			return si < sj
		}
		if ri != rj {
			return ri < rj
		}
		if ai != aj {
			return ai < aj
		}
		if li != lj {
			return li < lj
		}
		return cati < catj
	})
	return out
}

// WriteVariants renders each VariantCall as a tab-separated VCF body line
// (spec.md §6's Output VCF contract) and writes it LF-terminated to w.
func WriteVariants(w io.Writer, calls []caller.VariantCall, chromNames map[int]string, sampleOrder []string) error {
	for _, c := range calls {
		line, err := formatVariantLine(c, chromNames, sampleOrder)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("core: write VCF record: %w", err)
		}
	}
	return nil
}

func formatVariantLine(c caller.VariantCall, chromNames map[int]string, sampleOrder []string) (string, error) {
	chrom, ok := chromNames[c.Variant.ChromIndex]
	if !ok {
		return "", fmt.Errorf("core: unknown chrom index %d", c.Variant.ChromIndex)
	}
	info := ""
	for i, f := range c.InfoFlags {
		if i > 0 {
			info += ";"
		}
		info += f
	}
	line := fmt.Sprintf("%s\t%d\t.\t%s\t%s\t%.1f\t.\t%s\tGT:AD:ADF:ADR:DP:WDC:WTC:PRF:VAF:RAQS:AAQS:RMQS:AMQS:RAPDS:AAPDS:GQ:PL",
		chrom, c.Variant.GenomeStart1, c.Variant.RefAllele, c.Variant.AltAllele, c.SiteQuality, info)
	for _, sample := range sampleOrder {
		format, ok := c.Formats[sample]
		if !ok {
			return "", fmt.Errorf("core: variant %s missing FORMAT for sample %s", c.ID, sample)
		}
		line += "\t" + format.String()
	}
	return line, nil
}
