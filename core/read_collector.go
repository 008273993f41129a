package core

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// MateInfo is the subset of mate-pair metadata a Read carries (spec.md §3).
type MateInfo struct {
	ChromIndex int
	Start0     int
	ProperPair bool
}

// Read is one retained alignment, trimmed to what the assembler and
// genotyper need (spec.md §3).
type Read struct {
	QName      string
	Sample     string
	Tag        SampleTag
	ChromIndex int
	Start0     int
	Sequence   string
	Quals      []byte
	CIGAR      []CIGAROp
	Mate       MateInfo
	MapQual    int
	Flags      AlignmentFlags
	Tags       map[string]interface{}
}

func (r Read) tagInt(name string) (int, bool) {
	v, ok := r.Tags[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func (r Read) tagString(name string) (string, bool) {
	v, ok := r.Tags[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// CollectReads runs the full ReadCollector algorithm for one region
// (spec.md §4.2).
func CollectReads(ctx context.Context, region Region, params ReadCollectorParams) ([]Read, []SampleInfo, error) {
	randFn := params.DownsampleRandFn
	if randFn == nil {
		randFn = fixedSeedUniform()
	}

	var allReads []Read
	var sampleInfos []SampleInfo
	var mateCoords []MateCoord

	for _, sp := range params.Samples {
		raw, err := fetchAll(ctx, sp.Stream, region)
		if err != nil {
			return nil, nil, fmt.Errorf("core: fetch sample %s: %w", sp.Name, err)
		}

		totalBases := 0
		for _, a := range raw {
			totalBases += overlapBases(a, region)
		}
		estCov := 0.0
		if region.Len() > 0 {
			estCov = float64(totalBases) / float64(region.Len())
		}
		keepP := 1.0
		if estCov > 0 && params.MaxSampleCovX > 0 {
			keepP = math.Min(1.0, params.MaxSampleCovX/estCov)
		}
		sampleInfos = append(sampleInfos, SampleInfo{
			Name: sp.Name, Tag: sp.Tag, MinInsert: sp.MinInsert, MaxInsert: sp.MaxInsert,
			EstimatedCovX: estCov, DownsampleKeepP: keepP,
		})

		applyTumorFilter := sp.Tag == TagTumor && !params.NoFilterReads
		for _, a := range raw {
			if a.Flags.Duplicate || a.Flags.QCFail || a.Flags.Secondary {
				continue
			}
			if keepP < 1.0 && randFn() >= keepP {
				continue
			}
			if applyTumorFilter && !passesTumorFilter(a) {
				continue
			}

			read := alignmentToRead(a, sp)
			allReads = append(allReads, read)

			if params.ExtractPairs && shouldRescueMate(a, sp.MinInsert, sp.MaxInsert) {
				mateCoords = append(mateCoords, MateCoord{ChromIndex: a.MateChromIndex, Pos0: a.MateStart0})
			}
		}
	}

	if params.ExtractPairs && len(mateCoords) > 0 {
		mateCoords = dedupMateCoords(mateCoords)
		for _, sp := range params.Samples {
			mates, err := fetchMateSet(ctx, sp.Stream, mateCoords)
			if err != nil {
				return nil, nil, fmt.Errorf("core: fetch mates for sample %s: %w", sp.Name, err)
			}
			for _, a := range mates {
				allReads = append(allReads, alignmentToRead(a, sp))
			}
		}
	}

	sort.Slice(allReads, func(i, j int) bool {
		a, b := allReads[i], allReads[j]
		if a.Tag != b.Tag {
			return a.Tag < b.Tag
		}
		if a.Sample != b.Sample {
			return a.Sample < b.Sample
		}
		if a.QName != b.QName {
			return a.QName < b.QName
		}
		if a.ChromIndex != b.ChromIndex {
			return a.ChromIndex < b.ChromIndex
		}
		return a.Start0 < b.Start0
	})

	return allReads, sampleInfos, nil
}

func fetchAll(ctx context.Context, stream AlignmentStream, region Region) ([]Alignment, error) {
	it, err := stream.Fetch(ctx, region)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []Alignment
	for it.Next() {
		out = append(out, it.Alignment())
	}
	return out, it.Close()
}

func fetchMateSet(ctx context.Context, stream AlignmentStream, coords []MateCoord) ([]Alignment, error) {
	it, err := stream.FetchMulti(ctx, coords)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []Alignment
	for it.Next() {
		out = append(out, it.Alignment())
	}
	return out, it.Close()
}

func overlapBases(a Alignment, region Region) int {
	start := a.Start0
	if start < region.Start1-1 {
		start = region.Start1 - 1
	}
	end := a.End0
	if end > region.End1 {
		end = region.End1
	}
	if end <= start {
		return 0
	}
	return end - start
}

// passesTumorFilter applies spec.md §4.2 step 2's tumor-only filters.
func passesTumorFilter(a Alignment) bool {
	if a.MapQual < 20 {
		return false
	}
	if _, ok := a.Tags["XT"]; ok {
		return false
	}
	if _, ok := a.Tags["XA"]; ok {
		return false
	}
	as, hasAS := tagIntOf(a, "AS")
	xs, hasXS := tagIntOf(a, "XS")
	if hasAS && hasXS {
		diff := as - xs
		if diff < 0 {
			diff = -diff
		}
		if diff < 5 {
			return false
		}
	}
	return true
}

func tagIntOf(a Alignment, name string) (int, bool) {
	v, ok := a.Tags[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

// shouldRescueMate reports whether an out-of-region, non-proper-pair mate
// is worth fetching (spec.md §4.2 step 3).
func shouldRescueMate(a Alignment, minInsert, maxInsert int) bool {
	if a.Flags.MateUnmapped {
		return false
	}
	if _, hasSA := a.Tags["SA"]; hasSA {
		return true
	}
	normalInsert := a.InsertSize >= minInsert && a.InsertSize <= maxInsert
	if a.Flags.ProperPair && normalInsert {
		return false
	}
	return true
}

func dedupMateCoords(coords []MateCoord) []MateCoord {
	seen := make(map[MateCoord]bool, len(coords))
	out := coords[:0]
	for _, c := range coords {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChromIndex != out[j].ChromIndex {
			return out[i].ChromIndex < out[j].ChromIndex
		}
		return out[i].Pos0 < out[j].Pos0
	})
	return out
}

func alignmentToRead(a Alignment, sp SampleParams) Read {
	return Read{
		QName:      a.QName,
		Sample:     sp.Name,
		Tag:        sp.Tag,
		ChromIndex: a.ChromIndex,
		Start0:     a.Start0,
		Sequence:   a.Sequence,
		Quals:      a.BaseQuals,
		CIGAR:      a.CIGAR,
		Mate:       MateInfo{ChromIndex: a.MateChromIndex, Start0: a.MateStart0, ProperPair: a.Flags.ProperPair},
		MapQual:    a.MapQual,
		Flags:      a.Flags,
		Tags:       a.Tags,
	}
}

// fixedSeedUniform returns a deterministic pseudo-random [0,1) generator
// seeded identically every run, matching spec.md §5's determinism
// requirement that downsampler content (not just order) be reproducible.
func fixedSeedUniform() func() float64 {
	var state uint64 = 0x2545F4914F6CDD1D
	return func() float64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return float64(state>>11) / float64(1<<53)
	}
}

// IsActiveRegion implements the active-region test (spec.md §4.2): counts,
// per reference position, mismatches (from the MD tag), inserted bases,
// deleted bases, and soft-clipped bases; active if any exceeds 2 at a
// single position.
func IsActiveRegion(reads []Read) bool {
	mismatch := make(map[int]int)
	ins := make(map[int]int)
	del := make(map[int]int)
	softclip := make(map[int]int)

	for _, r := range reads {
		refPos := r.Start0
		md, hasMD := r.tagString("MD")
		var mdMismatches []int
		if hasMD {
			mdMismatches = mismatchPositionsFromMD(md, r.Start0, r.CIGAR)
		}
		for _, p := range mdMismatches {
			mismatch[p]++
		}

		for _, op := range r.CIGAR {
			switch op.Op {
			case 'M', '=', 'X':
				refPos += op.Len
			case 'D', 'N':
				for p := refPos; p < refPos+op.Len; p++ {
					del[p]++
				}
				refPos += op.Len
			case 'I':
				ins[refPos]++
			case 'S':
				softclip[refPos]++
			}
		}
	}

	for _, counts := range []map[int]int{mismatch, ins, del, softclip} {
		for _, n := range counts {
			if n > 2 {
				return true
			}
		}
	}
	return false
}

// mismatchPositionsFromMD decodes an MD tag (e.g. "10A5^GC3") into the
// 0-based reference positions of mismatched bases, skipping deleted runs.
func mismatchPositionsFromMD(md string, refStart int, cigar []CIGAROp) []int {
	var positions []int
	refPos := refStart
	i := 0
	num := 0
	haveNum := false
	flushNum := func() {
		if haveNum {
			refPos += num
			num = 0
			haveNum = false
		}
	}
	for i < len(md) {
		c := md[i]
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			haveNum = true
			i++
		case c == '^':
			flushNum()
			i++
			for i < len(md) && md[i] >= 'A' && md[i] <= 'Z' {
				refPos++
				i++
			}
		case c >= 'A' && c <= 'Z':
			flushNum()
			positions = append(positions, refPos)
			refPos++
			i++
		default:
			i++
		}
	}
	return positions
}
