package caller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalAlign_IdenticalSequencesScorePerfectMatch(t *testing.T) {
	seq := "ACGTACGTACGT"
	pair := globalAlign(seq, seq)
	assert.Equal(t, seq, pair.ref)
	assert.Equal(t, seq, pair.query)
	assert.Equal(t, matchScore*len(seq), pair.score)
}

func TestGlobalAlign_SingleInsertionProducesGapInRef(t *testing.T) {
	ref := "ACGTACGT"
	query := "ACGTAACGT" // extra 'A' inserted after position 4
	pair := globalAlign(ref, query)
	require.Len(t, pair.ref, len(pair.query))
	assert.Contains(t, pair.ref, "-")
	assert.Equal(t, degap(pair.query), query)
	assert.Equal(t, degap(pair.ref), ref)
}

func TestGlobalAlign_SingleDeletionProducesGapInQuery(t *testing.T) {
	ref := "ACGTAACGT"
	query := "ACGTACGT" // missing one 'A' relative to ref
	pair := globalAlign(ref, query)
	assert.Contains(t, pair.query, "-")
	assert.Equal(t, degap(pair.ref), ref)
	assert.Equal(t, degap(pair.query), query)
}

func TestGlobalAlign_DualAffinePicksCheaperGapTier(t *testing.T) {
	// A single 4bp gap is cheap under tier 2 (open -39, extend -3) despite
	// tier 1 having a steeper open (-81): the dual-affine model should pick
	// whichever tier is cheaper at this length, not assume tier 1 always wins.
	ref := "AAAACCCCGGGGTTTT"
	query := "AAAAGGGGTTTT" // one clean 4bp deletion of "CCCC"
	pair := globalAlign(ref, query)
	tier1 := gapOpen1 + 3*gapExtend1
	tier2 := gapOpen2 + 3*gapExtend2
	bestGapCost := maxInt(tier1, tier2)
	expectedBest := matchScore*len(query) + bestGapCost
	assert.Equal(t, expectedBest, pair.score)
	assert.Equal(t, degap(pair.ref), ref)
	assert.Equal(t, degap(pair.query), query)
}

func TestReverseBytes(t *testing.T) {
	b := []byte("ACGT")
	reverseBytes(b)
	assert.Equal(t, "TGCA", string(b))
}

func TestMaxInt(t *testing.T) {
	assert.Equal(t, 5, maxInt(1, 5, 3))
	assert.Equal(t, -1, maxInt(-5, -1, -9))
}
