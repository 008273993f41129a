package caller

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// FisherExactPhred runs a one-sided Fisher's exact test on the 2x2 table of
// (tumor alt, tumor ref) vs (normal alt, normal ref) read counts and
// returns the phred-scaled p-value for "tumor alt fraction is higher than
// normal's" (spec.md §4.8's site quality).
//
// The hypergeometric PMF is evaluated via log-gamma generalized binomial
// coefficients (`gonum.org/v1/gonum/stat/combin.LogGeneralizedBinomial`)
// rather than direct factorial ratios, which overflow for realistic read
// depths; this mirrors the log-space combinatorics the pack's
// `arvados-lightning` and `kortschak-loopy` statistical-genomics code
// leans on gonum for.
func FisherExactPhred(tumorAlt, tumorRef, normalAlt, normalRef int) float64 {
	population := tumorAlt + tumorRef + normalAlt + normalRef
	successesInPopulation := tumorAlt + normalAlt // total alt across both samples
	draws := tumorAlt + tumorRef                  // total tumor reads
	if population == 0 || draws == 0 || successesInPopulation == 0 {
		return 0
	}

	maxSuccess := successesInPopulation
	if draws < maxSuccess {
		maxSuccess = draws
	}

	logTotal := combin.LogGeneralizedBinomial(float64(population), float64(draws))
	pValue := 0.0
	for k := tumorAlt; k <= maxSuccess; k++ {
		logNumerator := combin.LogGeneralizedBinomial(float64(successesInPopulation), float64(k)) +
			combin.LogGeneralizedBinomial(float64(population-successesInPopulation), float64(draws-k))
		pValue += math.Exp(logNumerator - logTotal)
	}
	return PhredScale(pValue)
}

// PhredScale converts a probability in (0, 1] to a phred-scaled score,
// clamping at a ceiling so p=0 doesn't produce +Inf.
func PhredScale(p float64) float64 {
	const maxPhred = 255.0
	if p <= 0 {
		return maxPhred
	}
	phred := -10 * math.Log10(p)
	if phred > maxPhred {
		return maxPhred
	}
	return phred
}

// OddsRatio is tumor VAF / normal VAF, clamped to [0, 255] (spec.md §4.8).
func OddsRatio(tumorVAF, normalVAF float64) float64 {
	if normalVAF == 0 {
		if tumorVAF == 0 {
			return 0
		}
		return 255
	}
	ratio := tumorVAF / normalVAF
	switch {
	case ratio < 0:
		return 0
	case ratio > 255:
		return 255
	default:
		return ratio
	}
}
