package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsActiveRegion_FalseWhenNoMismatchesOrIndelsExceedThreshold(t *testing.T) {
	reads := []Read{
		{CIGAR: []CIGAROp{{Op: 'M', Len: 50}}, Start0: 100, Tags: map[string]interface{}{"MD": "50"}},
		{CIGAR: []CIGAROp{{Op: 'M', Len: 50}}, Start0: 100, Tags: map[string]interface{}{"MD": "50"}},
	}
	assert.False(t, IsActiveRegion(reads))
}

func TestIsActiveRegion_TrueWhenMismatchesExceedThresholdAtOnePosition(t *testing.T) {
	reads := make([]Read, 3)
	for i := range reads {
		reads[i] = Read{CIGAR: []CIGAROp{{Op: 'M', Len: 50}}, Start0: 100, Tags: map[string]interface{}{"MD": "10A39"}}
	}
	assert.True(t, IsActiveRegion(reads))
}

func TestIsActiveRegion_TrueWhenInsertionsExceedThreshold(t *testing.T) {
	reads := make([]Read, 3)
	for i := range reads {
		reads[i] = Read{CIGAR: []CIGAROp{{Op: 'M', Len: 10}, {Op: 'I', Len: 2}, {Op: 'M', Len: 38}}, Start0: 100}
	}
	assert.True(t, IsActiveRegion(reads))
}

func TestIsActiveRegion_TrueWhenDeletionsExceedThreshold(t *testing.T) {
	reads := make([]Read, 3)
	for i := range reads {
		reads[i] = Read{CIGAR: []CIGAROp{{Op: 'M', Len: 10}, {Op: 'D', Len: 3}, {Op: 'M', Len: 38}}, Start0: 100}
	}
	assert.True(t, IsActiveRegion(reads))
}

func TestIsActiveRegion_TrueWhenSoftClipsExceedThreshold(t *testing.T) {
	reads := make([]Read, 3)
	for i := range reads {
		reads[i] = Read{CIGAR: []CIGAROp{{Op: 'S', Len: 10}, {Op: 'M', Len: 40}}, Start0: 100}
	}
	assert.True(t, IsActiveRegion(reads))
}

func TestMismatchPositionsFromMD_DecodesSimpleMismatch(t *testing.T) {
	positions := mismatchPositionsFromMD("10A39", 100, nil)
	require.Len(t, positions, 1)
	assert.Equal(t, 110, positions[0])
}

func TestMismatchPositionsFromMD_SkipsDeletionRuns(t *testing.T) {
	positions := mismatchPositionsFromMD("5^AC10T5", 0, nil)
	require.Len(t, positions, 1)
	assert.Equal(t, 17, positions[0]) // 5 matches + 2 deleted + 10 matches = position 17
}

func TestMismatchPositionsFromMD_MultipleMismatches(t *testing.T) {
	positions := mismatchPositionsFromMD("2A2C2", 0, nil)
	require.Len(t, positions, 2)
	assert.Equal(t, 2, positions[0])
	assert.Equal(t, 5, positions[1])
}

func TestCollectReads_FiltersDuplicatesAndSortsDeterministically(t *testing.T) {
	region := Region{ChromIndex: 0, Start1: 1, End1: 200}
	stream := &fakeAlignmentStream{alignments: []Alignment{
		{QName: "r2", ChromIndex: 0, Start0: 10, End0: 60, Sequence: "A", MapQual: 40},
		{QName: "r1", ChromIndex: 0, Start0: 5, End0: 55, Sequence: "A", MapQual: 40},
		{QName: "dup", ChromIndex: 0, Start0: 20, End0: 70, Sequence: "A", MapQual: 40, Flags: AlignmentFlags{Duplicate: true}},
	}}
	params := ReadCollectorParams{
		Samples:       []SampleParams{{Name: "normal", Tag: TagNormal, Stream: stream, MinInsert: 0, MaxInsert: 1000}},
		Reference:     testReference(),
		MaxSampleCovX: 1000,
	}
	reads, samples, err := CollectReads(context.Background(), region, params)
	require.NoError(t, err)
	require.Len(t, reads, 2)
	require.Len(t, samples, 1)
	assert.Equal(t, "r1", reads[0].QName)
	assert.Equal(t, "r2", reads[1].QName)
}

func TestCollectReads_TumorFilterDropsLowMapQ(t *testing.T) {
	region := Region{ChromIndex: 0, Start1: 1, End1: 200}
	stream := &fakeAlignmentStream{alignments: []Alignment{
		{QName: "low", ChromIndex: 0, Start0: 10, End0: 60, Sequence: "A", MapQual: 5},
		{QName: "high", ChromIndex: 0, Start0: 10, End0: 60, Sequence: "A", MapQual: 40},
	}}
	params := ReadCollectorParams{
		Samples:       []SampleParams{{Name: "tumor", Tag: TagTumor, Stream: stream, MinInsert: 0, MaxInsert: 1000}},
		Reference:     testReference(),
		MaxSampleCovX: 1000,
	}
	reads, _, err := CollectReads(context.Background(), region, params)
	require.NoError(t, err)
	require.Len(t, reads, 1)
	assert.Equal(t, "high", reads[0].QName)
}

func TestCollectReads_NoFilterReadsKeepsLowMapQTumorReads(t *testing.T) {
	region := Region{ChromIndex: 0, Start1: 1, End1: 200}
	stream := &fakeAlignmentStream{alignments: []Alignment{
		{QName: "low", ChromIndex: 0, Start0: 10, End0: 60, Sequence: "A", MapQual: 5},
	}}
	params := ReadCollectorParams{
		Samples:       []SampleParams{{Name: "tumor", Tag: TagTumor, Stream: stream, MinInsert: 0, MaxInsert: 1000}},
		Reference:     testReference(),
		MaxSampleCovX: 1000,
		NoFilterReads: true,
	}
	reads, _, err := CollectReads(context.Background(), region, params)
	require.NoError(t, err)
	require.Len(t, reads, 1)
}

func TestPassesTumorFilter_DropsAlignmentsWithXTTag(t *testing.T) {
	a := Alignment{MapQual: 40, Tags: map[string]interface{}{"XT": "U"}}
	assert.False(t, passesTumorFilter(a))
}

func TestPassesTumorFilter_DropsSmallASXSDiff(t *testing.T) {
	a := Alignment{MapQual: 40, Tags: map[string]interface{}{"AS": 100, "XS": 98}}
	assert.False(t, passesTumorFilter(a))
}

func TestPassesTumorFilter_KeepsLargeASXSDiff(t *testing.T) {
	a := Alignment{MapQual: 40, Tags: map[string]interface{}{"AS": 100, "XS": 80}}
	assert.True(t, passesTumorFilter(a))
}
