package caller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFisherExactPhred_NoSignalReturnsLowScore(t *testing.T) {
	// Identical alt fractions in tumor and normal: nothing unusual.
	phred := FisherExactPhred(5, 45, 5, 45)
	assert.Less(t, phred, 10.0)
}

func TestFisherExactPhred_StrongTumorOnlySignalReturnsHighScore(t *testing.T) {
	// All-alt in tumor, zero-alt in normal at reasonable depth is a clean
	// somatic signal.
	phred := FisherExactPhred(30, 0, 0, 40)
	assert.Greater(t, phred, 20.0)
}

func TestFisherExactPhred_ZeroPopulationReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, FisherExactPhred(0, 0, 0, 0))
}

func TestFisherExactPhred_ZeroAltAnywhereReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, FisherExactPhred(0, 10, 0, 10))
}

func TestPhredScale_BoundsAndMonotonicity(t *testing.T) {
	assert.Equal(t, 255.0, PhredScale(0))
	assert.InDelta(t, 0.0, PhredScale(1), 1e-9)
	assert.Greater(t, PhredScale(0.001), PhredScale(0.1))
}

func TestPhredScale_ClampsAtCeiling(t *testing.T) {
	assert.Equal(t, 255.0, PhredScale(1e-300))
}

func TestOddsRatio_ZeroNormalVAF(t *testing.T) {
	assert.Equal(t, 0.0, OddsRatio(0, 0))
	assert.Equal(t, 255.0, OddsRatio(0.5, 0))
}

func TestOddsRatio_ClampsAtCeiling(t *testing.T) {
	assert.Equal(t, 255.0, OddsRatio(1.0, 0.001))
}

func TestOddsRatio_NormalCase(t *testing.T) {
	assert.InDelta(t, 2.0, OddsRatio(0.4, 0.2), 1e-9)
}
