package core

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// WindowBuilderParams controls WindowBuilder.Build (spec.md §4.1).
type WindowBuilderParams struct {
	WindowLength   int // [500, 5000], default 1000
	RegionPadding  int // [0, 1000], default 500
	PercentOverlap int // [50, 90], default 50
}

// DefaultWindowBuilderParams mirrors the reference implementation's
// defaults.
func DefaultWindowBuilderParams() WindowBuilderParams {
	return WindowBuilderParams{WindowLength: 1000, RegionPadding: 500, PercentOverlap: 50}
}

// Validate checks the parameter bounds spec.md §4.1 requires.
func (p WindowBuilderParams) Validate() error {
	if p.WindowLength < 500 || p.WindowLength > 5000 {
		return fmt.Errorf("core: window-length %d outside [500, 5000]", p.WindowLength)
	}
	if p.RegionPadding < 0 || p.RegionPadding > 1000 {
		return fmt.Errorf("core: region-padding %d outside [0, 1000]", p.RegionPadding)
	}
	if p.PercentOverlap < 50 || p.PercentOverlap > 90 {
		return fmt.Errorf("core: pct-overlap %d outside [50, 90]", p.PercentOverlap)
	}
	return nil
}

// step computes the fixed-window sliding stride (spec.md §4.1).
func (p WindowBuilderParams) step() int {
	return int(math.Ceil((1-float64(p.PercentOverlap)/100)*float64(p.WindowLength)/100)) * 100
}

// excludedChromSuffixes and excludedChromPrefixes are the contig-name
// filters spec.md §4.1 requires (decoys, unplaced scaffolds, alt contigs).
var (
	excludedChromNames    = map[string]bool{"MT": true, "chrM": true}
	excludedChromPrefixes = []string{"GL", "chrUn", "chrEBV", "HLA-"}
	excludedChromSuffixes = []string{"_random", "_alt", "_decoy"}
)

func isExcludedChrom(name string) bool {
	if excludedChromNames[name] {
		return true
	}
	for _, p := range excludedChromPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range excludedChromSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// WindowBuilder turns region specs (and/or a BED file) into a sorted,
// deduplicated list of Windows (spec.md §4.1).
type WindowBuilder struct {
	ref    ReferenceFasta
	params WindowBuilderParams
}

// NewWindowBuilder constructs a WindowBuilder against the given reference.
func NewWindowBuilder(ref ReferenceFasta, params WindowBuilderParams) *WindowBuilder {
	return &WindowBuilder{ref: ref, params: params}
}

// Build computes the final Window list. If regionSpecs and bedPath are both
// empty, every non-excluded chromosome is used in full.
func (wb *WindowBuilder) Build(regionSpecs []string, bedPath string) ([]Window, error) {
	if err := wb.params.Validate(); err != nil {
		return nil, err
	}

	var regions []Region
	for _, spec := range regionSpecs {
		r, err := wb.ref.ParseRegion(spec)
		if err != nil {
			return nil, fmt.Errorf("core: invalid region %q: %w", spec, err)
		}
		regions = append(regions, r)
	}
	if bedPath != "" {
		bedRegions, err := parseBED(wb.ref, bedPath)
		if err != nil {
			return nil, err
		}
		regions = append(regions, bedRegions...)
	}
	if len(regions) == 0 {
		for _, c := range wb.ref.ListChroms() {
			if isExcludedChrom(c.Name) {
				continue
			}
			regions = append(regions, Region{ChromIndex: c.Index, ChromName: c.Name, Start1: 1, End1: c.Length})
		}
	}

	chromLen := make(map[int]int)
	for _, c := range wb.ref.ListChroms() {
		chromLen[c.Index] = c.Length
	}

	step := wb.params.step()
	var windows []Window
	for _, r := range regions {
		if isExcludedChrom(r.ChromName) {
			continue
		}
		length := chromLen[r.ChromIndex]
		padded := r.Pad(wb.params.RegionPadding, length)
		if padded.Len() < wb.params.WindowLength {
			padded.End1 = padded.Start1 + wb.params.WindowLength - 1
			if padded.End1 > length {
				padded.End1 = length
			}
			if padded.Len() < wb.params.WindowLength {
				padded.Start1 = padded.End1 - wb.params.WindowLength + 1
				if padded.Start1 < 1 {
					padded.Start1 = 1
				}
			}
		}

		if padded.Len() <= wb.params.WindowLength {
			windows = append(windows, Window{Region: padded})
			continue
		}
		for start := padded.Start1; start <= padded.End1; start += step {
			end := start + wb.params.WindowLength - 1
			done := false
			if end >= padded.End1 {
				end = padded.End1
				done = true
			}
			windows = append(windows, Window{Region: Region{
				ChromIndex: padded.ChromIndex,
				ChromName:  padded.ChromName,
				Start1:     start,
				End1:       end,
			}})
			if done {
				break
			}
		}
	}

	windows = dedupWindows(windows)
	sort.Slice(windows, func(i, j int) bool {
		ci, si, ei := windows[i].SortKey()
		cj, sj, ej := windows[j].SortKey()
		if ci != cj {
			return ci < cj
		}
		if si != sj {
			return si < sj
		}
		return ei < ej
	})
	for i := range windows {
		windows[i].GenomeIndex = i
	}
	return windows, nil
}

func dedupWindows(windows []Window) []Window {
	seen := make(map[[3]int]bool, len(windows))
	out := windows[:0]
	for _, w := range windows {
		key := [3]int{w.ChromIndex, w.Start1, w.End1}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// parseBED reads a minimal BED3 file (chrom, start0, end0 per line,
// tab-or-space separated, '#'-prefixed lines and blank lines skipped).
func parseBED(ref ReferenceFasta, path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("core: open BED %q: %w", path, err)
	}
	defer f.Close()

	chromByName := make(map[string]ChromInfo)
	for _, c := range ref.ListChroms() {
		chromByName[c.Name] = c
	}

	var regions []Region
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("core: %s:%d: expected at least 3 BED fields, got %d", path, lineNum, len(fields))
		}
		chrom, ok := chromByName[fields[0]]
		if !ok {
			return nil, fmt.Errorf("core: %s:%d: chromosome %q not in reference", path, lineNum, fields[0])
		}
		start0, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("core: %s:%d: bad start %q: %w", path, lineNum, fields[1], err)
		}
		end0, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("core: %s:%d: bad end %q: %w", path, lineNum, fields[2], err)
		}
		regions = append(regions, Region{ChromIndex: chrom.Index, ChromName: chrom.Name, Start1: start0 + 1, End1: end0})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("core: scan BED %q: %w", path, err)
	}
	return regions, nil
}
