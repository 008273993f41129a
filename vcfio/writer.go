package vcfio

import (
	"fmt"
	"io"

	"github.com/grailbio/hts/bgzf"

	"github.com/nygenome/lancet/caller"
	"github.com/nygenome/lancet/core"
)

// Writer frames a VCF header + body as bgzip, matching the tabix-compatible
// stream htslib-based tools expect (spec.md §6's "host wraps it with bgzip
// framing" note). Grounded on grailbio-bio/pileup/snp/output.go's
// bgzf.NewWriter(w, parallelism) usage.
type Writer struct {
	dst       io.Writer
	bgzfw     *bgzf.Writer
	wroteHead bool
}

// NewWriter wraps dst in bgzip framing using parallelism compression
// goroutines (0 uses the bgzf package's default).
func NewWriter(dst io.Writer, parallelism int) *Writer {
	return &Writer{dst: dst, bgzfw: bgzf.NewWriter(dst, parallelism)}
}

// WriteHeader writes the VCF header exactly once.
func (w *Writer) WriteHeader(chroms []core.ChromInfo, sampleOrder []string, params HeaderParams) error {
	if w.wroteHead {
		return fmt.Errorf("vcfio: header already written")
	}
	if _, err := io.WriteString(w.bgzfw, BuildHeader(chroms, sampleOrder, params)); err != nil {
		return fmt.Errorf("vcfio: write header: %w", err)
	}
	w.wroteHead = true
	return nil
}

// WriteVariants appends a batch of VariantCalls as VCF body lines, in the
// order given (callers are expected to pass already genome-sorted calls,
// e.g. from VariantStore.FlushBefore/FlushAll).
func (w *Writer) WriteVariants(calls []caller.VariantCall, chromNames map[int]string, sampleOrder []string) error {
	if !w.wroteHead {
		return fmt.Errorf("vcfio: WriteVariants called before WriteHeader")
	}
	return core.WriteVariants(w.bgzfw, calls, chromNames, sampleOrder)
}

// BodyWriter exposes the bgzip-framed sink directly, for callers (like
// core.PipelineRunner) that write VariantCalls themselves via
// core.WriteVariants rather than through WriteVariants above.
func (w *Writer) BodyWriter() io.Writer {
	return w.bgzfw
}

// Close flushes and closes the bgzip stream. It does not close dst.
func (w *Writer) Close() error {
	return w.bgzfw.Close()
}
