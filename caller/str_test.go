package caller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSTR_DetectsMononucleotideRun(t *testing.T) {
	seq := "GGGGAAAAAAACCCC" // 7x 'A' run, offset 8 sits in the middle
	str := FindSTR(seq, 8)
	require.NotNil(t, str)
	assert.Equal(t, "A", str.Motif)
	assert.GreaterOrEqual(t, str.Length, 6)
}

func TestFindSTR_DetectsDinucleotideRepeat(t *testing.T) {
	seq := "GGGGCACACACACAGGGG" // (CA)x5
	str := FindSTR(seq, 9)
	require.NotNil(t, str)
	assert.Equal(t, 2, len(str.Motif))
}

func TestFindSTR_NoRepeatReturnsNil(t *testing.T) {
	seq := "ACGTTGCAACGTTGCA"
	str := FindSTR(seq, 4)
	assert.Nil(t, str)
}

func TestFindSTR_OffsetOutOfRangeReturnsNil(t *testing.T) {
	assert.Nil(t, FindSTR("ACGT", -1))
	assert.Nil(t, FindSTR("ACGT", 10))
}

func TestFindSTR_RequiresMinimumUnits(t *testing.T) {
	// Only two repeat units of "AT" — FindSTR should reject it (min 3 units).
	seq := "GGGGATATGGGG"
	str := FindSTR(seq, 5)
	assert.Nil(t, str)
}
