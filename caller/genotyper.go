package caller

import (
	"math"

	"github.com/nygenome/lancet/biosimd"
)

// SampleTag classifies which collaborator a read came from (spec.md §3's
// Read.tag); mirrors cbdg.Label without importing cbdg, keeping caller
// independent of the graph package.
type SampleTag uint8

const (
	TagReference SampleTag = iota
	TagNormal
	TagTumor
)

// ReadView is the minimal read projection the genotyper needs.
type ReadView struct {
	Seq           string
	Qual          []byte // phred, 1:1 with Seq
	Sample        string
	Tag           SampleTag
	MapQual       int
	ReverseStrand bool
}

const flankLen = 5

// VariantSupport accumulates per-(sample, RawVariant) evidence (spec.md
// §4.7): base qualities split by which allele the supporting read carried,
// mapping qualities, per-strand counts, and alignment-score percent-diffs.
type VariantSupport struct {
	RefBaseQuals []int
	AltBaseQuals []int
	RefMapQuals  []int
	AltMapQuals  []int
	RefPctDiffs  []float64
	AltPctDiffs  []float64

	RefForward int
	RefReverse int
	AltForward int
	AltReverse int
}

func (vs *VariantSupport) addRef(baseQual, mapQual int, pctDiff float64, reverse bool) {
	vs.RefBaseQuals = append(vs.RefBaseQuals, baseQual)
	vs.RefMapQuals = append(vs.RefMapQuals, mapQual)
	vs.RefPctDiffs = append(vs.RefPctDiffs, pctDiff)
	if reverse {
		vs.RefReverse++
	} else {
		vs.RefForward++
	}
}

func (vs *VariantSupport) addAlt(baseQual, mapQual int, pctDiff float64, reverse bool) {
	vs.AltBaseQuals = append(vs.AltBaseQuals, baseQual)
	vs.AltMapQuals = append(vs.AltMapQuals, mapQual)
	vs.AltPctDiffs = append(vs.AltPctDiffs, pctDiff)
	if reverse {
		vs.AltReverse++
	} else {
		vs.AltForward++
	}
}

// TotalDepth is the read count backing either allele at this variant.
func (vs *VariantSupport) TotalDepth() int { return len(vs.RefBaseQuals) + len(vs.AltBaseQuals) }

// AltDepth is the number of reads supporting the alt allele.
func (vs *VariantSupport) AltDepth() int { return len(vs.AltBaseQuals) }

// VAF is the alt allele fraction.
func (vs *VariantSupport) VAF() float64 {
	total := vs.TotalDepth()
	if total == 0 {
		return 0
	}
	return float64(vs.AltDepth()) / float64(total)
}

// SupportKey identifies one (sample, RawVariant) support bucket.
type SupportKey struct {
	Sample  string
	Variant int // index into the RawVariant slice passed to Genotype
}

// Genotyper realigns reads against every haplotype and collects evidence
// for each RawVariant a read is assigned to support (spec.md §4.7).
type Genotyper struct{}

// NewGenotyper constructs a Genotyper. There is no per-instance state today,
// but the type mirrors the reference implementation's
// graph/msa/genotyper-per-worker ownership model (spec.md §4.10).
func NewGenotyper() *Genotyper { return &Genotyper{} }

// Genotype returns, for every (sample, variant) pair with at least one
// supporting read, the accumulated VariantSupport.
func (g *Genotyper) Genotype(haplotypes []string, variants []RawVariant, reads []ReadView) map[SupportKey]*VariantSupport {
	out := make(map[SupportKey]*VariantSupport)

	for _, read := range reads {
		bestHap, bestFit, bestSeq, secondScore := bestHaplotypeMatch(haplotypes, read.Seq)
		if bestHap < 0 {
			continue
		}
		pctDiff := 0.0
		if bestFit.Score != 0 {
			pctDiff = math.Abs(float64(bestFit.Score-secondScore)) / math.Abs(float64(bestFit.Score))
		}

		for vIdx, v := range variants {
			hapStart0, onHap := v.HapStart0Idxs[bestHap]
			if !onHap {
				continue
			}
			alleleLen := len(v.RefAllele)
			if bestHap != 0 {
				alleleLen = len(v.AltAllele)
			}
			spanStart, spanEnd := hapStart0, hapStart0+alleleLen
			if bestFit.HapStart+flankLen > spanStart || bestFit.HapEnd-flankLen < spanEnd {
				continue
			}

			key := SupportKey{Sample: read.Sample, Variant: vIdx}
			support, ok := out[key]
			if !ok {
				support = &VariantSupport{}
				out[key] = support
			}

			baseQual := meanQualAtHapSpan(bestSeq, read.Qual, bestFit, spanStart, spanEnd)
			if bestHap == 0 {
				support.addRef(baseQual, read.MapQual, pctDiff, read.ReverseStrand)
			} else {
				support.addAlt(baseQual, read.MapQual, pctDiff, read.ReverseStrand)
			}
		}
	}
	return out
}

// bestHaplotypeMatch fits read (both orientations) against every haplotype
// and returns the best-scoring haplotype's index, its fitting result, the
// sequence orientation that won, and the second-best score across all
// haplotypes (for the alignment-score percent-diff metric).
func bestHaplotypeMatch(haplotypes []string, seq string) (int, fittingResult, string, int) {
	rc := make([]byte, len(seq))
	biosimd.ReverseComp8NoValidate(rc, []byte(seq))
	revSeq := string(rc)

	bestHap := -1
	var bestFit fittingResult
	var bestSeq string
	bestScore, secondScore := negInf, negInf

	for hapIdx, hap := range haplotypes {
		fwd := fittingAlign(hap, seq)
		rev := fittingAlign(hap, revSeq)
		fit, used := fwd, seq
		if rev.Score > fwd.Score {
			fit, used = rev, revSeq
		}
		if fit.Score > bestScore {
			secondScore = bestScore
			bestScore, bestHap, bestFit, bestSeq = fit.Score, hapIdx, fit, used
		} else if fit.Score > secondScore {
			secondScore = fit.Score
		}
	}
	return bestHap, bestFit, bestSeq, secondScore
}

// meanQualAtHapSpan averages the base qualities of read positions whose
// fitting-alignment column falls within [spanStart, spanEnd) on the
// haplotype, falling back to the read's overall mean quality if none of its
// aligned columns land in the span (e.g. the span is a pure insertion).
func meanQualAtHapSpan(seq string, qual []byte, fit fittingResult, spanStart, spanEnd int) int {
	sum, n := 0, 0
	for readPos, hapCol := range fit.ReadToHapCol {
		if hapCol < 0 || hapCol < spanStart || hapCol >= spanEnd || readPos >= len(qual) {
			continue
		}
		sum += int(qual[readPos])
		n++
	}
	if n > 0 {
		return sum / n
	}
	return meanQual(qual)
}

func meanQual(qual []byte) int {
	if len(qual) == 0 {
		return 0
	}
	sum := 0
	for _, q := range qual {
		sum += int(q)
	}
	return sum / len(qual)
}
