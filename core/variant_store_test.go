package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nygenome/lancet/caller"
)

func makeCall(id string, chromIndex, start1 int, ref, alt string, state caller.VariantState, category string, dp int, quality float64) caller.VariantCall {
	return caller.VariantCall{
		ID: id,
		Variant: caller.RawVariant{
			ChromIndex: chromIndex, GenomeStart1: start1, RefAllele: ref, AltAllele: alt,
			AlleleLength: len(alt) - len(ref),
		},
		State:       state,
		Category:    category,
		SiteQuality: quality,
		InfoFlags:   []string{"TYPE=SNV"},
		Formats: map[string]caller.SampleFormat{
			"tumor": {GT: "0/1", DP: dp},
		},
	}
}

func TestVariantStore_AddVariants_KeepsHigherCoverageOnDuplicateID(t *testing.T) {
	s := NewVariantStore()
	low := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 5, 10)
	high := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 50, 10)
	s.AddVariants([]caller.VariantCall{low})
	s.AddVariants([]caller.VariantCall{high})
	flushed := s.FlushAll()
	require.Len(t, flushed, 1)
	assert.Equal(t, 50, flushed[0].Formats["tumor"].DP)
}

func TestVariantStore_AddVariants_KeepsHigherQualityWhenCoverageTies(t *testing.T) {
	s := NewVariantStore()
	lowQ := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 5)
	highQ := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 50)
	s.AddVariants([]caller.VariantCall{lowQ})
	s.AddVariants([]caller.VariantCall{highQ})
	flushed := s.FlushAll()
	require.Len(t, flushed, 1)
	assert.Equal(t, 50.0, flushed[0].SiteQuality)
}

func TestVariantStore_AddVariants_DoesNotOverwriteWithWorseDuplicate(t *testing.T) {
	s := NewVariantStore()
	high := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 50, 10)
	low := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 5, 10)
	s.AddVariants([]caller.VariantCall{high})
	s.AddVariants([]caller.VariantCall{low})
	flushed := s.FlushAll()
	require.Len(t, flushed, 1)
	assert.Equal(t, 50, flushed[0].Formats["tumor"].DP)
}

func TestVariantStore_FlushBefore_OnlyRemovesCallsBeforeWindowEnd(t *testing.T) {
	s := NewVariantStore()
	early := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	late := makeCall("v2", 0, 5000, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	s.AddVariants([]caller.VariantCall{early, late})

	window := Window{Region: Region{ChromIndex: 0, Start1: 1, End1: 1000}}
	flushed := s.FlushBefore(window)
	require.Len(t, flushed, 1)
	assert.Equal(t, "v1", flushed[0].ID)

	remaining := s.FlushAll()
	require.Len(t, remaining, 1)
	assert.Equal(t, "v2", remaining[0].ID)
}

func TestVariantStore_FlushBefore_DropsNoneStateAndREFCategory(t *testing.T) {
	s := NewVariantStore()
	none := makeCall("v1", 0, 100, "A", "T", caller.StateNone, "SNV", 10, 10)
	refCat := makeCall("v2", 0, 200, "A", "T", caller.StateSomatic, "REF", 10, 10)
	real := makeCall("v3", 0, 300, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	s.AddVariants([]caller.VariantCall{none, refCat, real})

	window := Window{Region: Region{ChromIndex: 0, Start1: 1, End1: 1000}}
	flushed := s.FlushBefore(window)
	require.Len(t, flushed, 1)
	assert.Equal(t, "v3", flushed[0].ID)
}

func TestVariantStore_FlushBefore_SortsByChromPositionRefAlt(t *testing.T) {
	s := NewVariantStore()
	c1 := makeCall("v1", 0, 300, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	c2 := makeCall("v2", 0, 100, "C", "G", caller.StateSomatic, "SNV", 10, 10)
	c3 := makeCall("v3", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	s.AddVariants([]caller.VariantCall{c1, c2, c3})

	window := Window{Region: Region{ChromIndex: 0, Start1: 1, End1: 1000}}
	flushed := s.FlushBefore(window)
	require.Len(t, flushed, 3)
	assert.Equal(t, "v3", flushed[0].ID)
	assert.Equal(t, "v2", flushed[1].ID)
	assert.Equal(t, "v1", flushed[2].ID)
}

func TestVariantStore_FlushAll_DrainsEverything(t *testing.T) {
	s := NewVariantStore()
	s.AddVariants([]caller.VariantCall{
		makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 10),
		makeCall("v2", 1, 200, "C", "G", caller.StateShared, "SNV", 10, 10),
	})
	flushed := s.FlushAll()
	assert.Len(t, flushed, 2)
	assert.Empty(t, s.FlushAll())
}

func TestWriteVariants_ProducesTabSeparatedLineWithFormatPerSample(t *testing.T) {
	c := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 42.5)
	c.Formats["normal"] = caller.SampleFormat{GT: "0/0", DP: 20}

	var buf strings.Builder
	err := WriteVariants(&buf, []caller.VariantCall{c}, map[int]string{0: "chr1"}, []string{"normal", "tumor"})
	require.NoError(t, err)

	line := strings.TrimSuffix(buf.String(), "\n")
	fields := strings.Split(line, "\t")
	require.Len(t, fields, 11)
	assert.Equal(t, "chr1", fields[0])
	assert.Equal(t, "100", fields[1])
	assert.Equal(t, "A", fields[3])
	assert.Equal(t, "T", fields[4])
	assert.Equal(t, "42.5", fields[5])
	assert.True(t, strings.HasPrefix(fields[8], "GT:AD:ADF:ADR:DP:"))
	assert.True(t, strings.HasPrefix(fields[9], "0/0:"))
	assert.True(t, strings.HasPrefix(fields[10], "0/1:"))
}

func TestWriteVariants_ErrorsOnUnknownChromIndex(t *testing.T) {
	c := makeCall("v1", 9, 100, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	var buf strings.Builder
	err := WriteVariants(&buf, []caller.VariantCall{c}, map[int]string{0: "chr1"}, []string{"tumor"})
	assert.Error(t, err)
}

func TestWriteVariants_ErrorsOnMissingSampleFormat(t *testing.T) {
	c := makeCall("v1", 0, 100, "A", "T", caller.StateSomatic, "SNV", 10, 10)
	var buf strings.Builder
	err := WriteVariants(&buf, []caller.VariantCall{c}, map[int]string{0: "chr1"}, []string{"normal"})
	assert.Error(t, err)
}
