// Package vcfio renders VariantCalls from core.VariantStore as a
// VCFv4.3 stream: header construction, a bgzip-framed writer, and a
// tabix post-pass (spec.md §6's Output VCF contract).
package vcfio

import (
	"fmt"
	"strings"
	"time"

	"github.com/nygenome/lancet/core"
)

// infoLines is the fixed INFO schema spec.md §4.8 requires.
var infoLines = []string{
	`##INFO=<ID=SHARED,Number=0,Type=Flag,Description="Present in both tumor and normal">`,
	`##INFO=<ID=NORMAL,Number=0,Type=Flag,Description="Present only in normal">`,
	`##INFO=<ID=TUMOR,Number=0,Type=Flag,Description="Somatic: present in tumor, absent/rare in normal">`,
	`##INFO=<ID=TYPE,Number=1,Type=String,Description="Variant type: SNV, MNP, DEL, or INS">`,
	`##INFO=<ID=LENGTH,Number=1,Type=Integer,Description="Alt allele length minus ref allele length">`,
	`##INFO=<ID=KMERLEN,Number=1,Type=Integer,Description="De Bruijn graph k-mer size that produced the supporting haplotype">`,
	`##INFO=<ID=STR,Number=0,Type=Flag,Description="Alt allele overlaps a short tandem repeat motif">`,
	`##INFO=<ID=STR_LEN,Number=1,Type=Integer,Description="Repeat unit length of the overlapping STR motif">`,
	`##INFO=<ID=STR_MOTIF,Number=1,Type=String,Description="Repeat unit sequence of the overlapping STR motif">`,
}

// formatLines is the fixed per-sample FORMAT schema spec.md §4.8 requires,
// in the exact field order caller.SampleFormat.String renders.
var formatLines = []string{
	`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
	`##FORMAT=<ID=AD,Number=2,Type=Integer,Description="Ref, alt allele depth">`,
	`##FORMAT=<ID=ADF,Number=2,Type=Integer,Description="Ref, alt allele depth, forward strand">`,
	`##FORMAT=<ID=ADR,Number=2,Type=Integer,Description="Ref, alt allele depth, reverse strand">`,
	`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Total read depth at the site">`,
	`##FORMAT=<ID=WDC,Number=1,Type=Integer,Description="Window-level distinct read depth covering this site">`,
	`##FORMAT=<ID=WTC,Number=1,Type=Integer,Description="Window-level total read depth covering this site">`,
	`##FORMAT=<ID=PRF,Number=1,Type=Float,Description="Fraction of this sample's reads supporting either allele">`,
	`##FORMAT=<ID=VAF,Number=1,Type=Float,Description="Variant allele fraction (alt depth / total depth)">`,
	`##FORMAT=<ID=RAQS,Number=4,Type=Integer,Description="Ref allele base quality: min, median, max, MAD">`,
	`##FORMAT=<ID=AAQS,Number=4,Type=Integer,Description="Alt allele base quality: min, median, max, MAD">`,
	`##FORMAT=<ID=RMQS,Number=4,Type=Integer,Description="Ref allele mapping quality: min, median, max, MAD">`,
	`##FORMAT=<ID=AMQS,Number=4,Type=Integer,Description="Alt allele mapping quality: min, median, max, MAD">`,
	`##FORMAT=<ID=RAPDS,Number=4,Type=Integer,Description="Ref allele alignment-score percent diff x100: min, median, max, MAD">`,
	`##FORMAT=<ID=AAPDS,Number=4,Type=Integer,Description="Alt allele alignment-score percent diff x100: min, median, max, MAD">`,
	`##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`,
	`##FORMAT=<ID=PL,Number=3,Type=Integer,Description="Phred-scaled genotype likelihoods for 0/0, 0/1, 1/1">`,
}

// HeaderParams configures BuildHeader's free-text lines.
type HeaderParams struct {
	Source      string // e.g. "lancet-v1.0"
	CommandLine string
	GeneratedAt time.Time // zero value omits the ##fileDate line
}

// BuildHeader renders the full VCFv4.3 header, terminated by the #CHROM
// column line, LF-terminated throughout (spec.md §6).
func BuildHeader(chroms []core.ChromInfo, sampleOrder []string, params HeaderParams) string {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.3\n")
	if !params.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "##fileDate=%s\n", params.GeneratedAt.Format("20060102"))
	}
	if params.Source != "" {
		fmt.Fprintf(&b, "##source=%s\n", params.Source)
	}
	if params.CommandLine != "" {
		fmt.Fprintf(&b, "##lancetcmd=%s\n", params.CommandLine)
	}
	for _, c := range chroms {
		fmt.Fprintf(&b, "##contig=<ID=%s,length=%d>\n", c.Name, c.Length)
	}
	for _, line := range infoLines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, line := range formatLines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT")
	for _, s := range sampleOrder {
		b.WriteByte('\t')
		b.WriteString(s)
	}
	b.WriteByte('\n')
	return b.String()
}
