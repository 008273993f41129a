// Package pipeline wires config.Params to concrete htsio/vcfio
// implementations and drives core.PipelineRunner, following bio-pileup's
// cmd/<tool>/<pkg> split between flag parsing (in cmd/lancet) and run logic
// (here).
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"

	"github.com/nygenome/lancet/config"
	"github.com/nygenome/lancet/core"
	"github.com/nygenome/lancet/htsio"
	"github.com/nygenome/lancet/vcfio"
)

// defaultInsertBounds is the mate-rescue proper-pair insert-size window
// assumed for every sample; spec.md §4.2 takes this as a caller-supplied
// per-sample parameter but never specifies a default or a CLI flag for it, so
// lancet uses a single fixed, generous bound (DESIGN.md open question).
const (
	defaultMinInsert = 0
	defaultMaxInsert = 1000
)

// Run executes one pipeline invocation end to end: open inputs, build
// windows, run workers, write and index the output VCF.
func Run(p config.Params) error {
	ctx := vcontext.Background()
	logger, err := newLogger(p.Verbose)
	if err != nil {
		return fmt.Errorf("pipeline: build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ref, err := htsio.OpenFasta(p.Reference)
	if err != nil {
		return fmt.Errorf("pipeline: open reference: %w", err)
	}

	samples, err := openSamples(p)
	if err != nil {
		return err
	}

	if !p.NoContigCheck {
		if err := checkContigs(ref, samples); err != nil {
			return err
		}
	}

	windows, err := core.NewWindowBuilder(ref, p.WindowBuilderParams()).Build(p.Regions, p.BedFile)
	if err != nil {
		return fmt.Errorf("pipeline: build windows: %w", err)
	}
	logger.Info("windows built", zap.Int("count", len(windows)))

	chromNames := make(map[int]string, len(ref.ListChroms()))
	for _, c := range ref.ListChroms() {
		chromNames[c.Index] = c.Name
	}
	sampleOrder := sampleOrderOf(samples)

	outFile, err := file.Create(ctx, p.OutVCFGz)
	if err != nil {
		return fmt.Errorf("pipeline: create output %q: %w", p.OutVCFGz, err)
	}
	vcfWriter := vcfio.NewWriter(outFile.Writer(ctx), 0)
	if err := vcfWriter.WriteHeader(ref.ListChroms(), sampleOrder, vcfio.HeaderParams{Source: "lancet"}); err != nil {
		outFile.Close(ctx) //nolint:errcheck
		return fmt.Errorf("pipeline: write VCF header: %w", err)
	}

	store := core.NewVariantStore()
	runner := core.PipelineRunner{NumWorkers: p.NumThreads, Store: store, Logger: logger}
	workerCfg := core.WorkerConfig{
		GraphParams:       p.GraphParams(),
		VariantCallParams: p.VariantCallParams(),
		Samples:           samples,
		Reference:         ref,
		MaxSampleCovX:     p.MaxSampleCov,
		ExtractPairs:      p.ExtractPairs,
		NoActiveRegion:    p.NoActiveRegion,
		Logger:            logger,
	}

	stats, runErr := runner.Run(context.Background(), windows, workerCfg, vcfWriter.BodyWriter(), chromNames, sampleOrder)
	closeErr := vcfWriter.Close()
	fileErr := outFile.Close(ctx)
	if runErr != nil {
		return fmt.Errorf("pipeline: run: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("pipeline: close VCF writer: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("pipeline: close output file: %w", fileErr)
	}

	if err := vcfio.Index(p.OutVCFGz); err != nil {
		return fmt.Errorf("pipeline: tabix index: %w", err)
	}

	if p.RuntimeStats != "" {
		if err := writeRuntimeStats(ctx, p.RuntimeStats, stats, chromNames); err != nil {
			return fmt.Errorf("pipeline: write runtime stats: %w", err)
		}
	}

	logSummary(logger, stats)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openSamples(p config.Params) ([]core.SampleParams, error) {
	var samples []core.SampleParams
	for _, path := range p.Normal {
		stream, err := htsio.OpenBam(path)
		if err != nil {
			return nil, fmt.Errorf("pipeline: open normal %q: %w", path, err)
		}
		samples = append(samples, core.SampleParams{
			Name: sampleNameOf(path), Tag: core.TagNormal, Stream: stream,
			MinInsert: defaultMinInsert, MaxInsert: defaultMaxInsert,
		})
	}
	for _, path := range p.Tumor {
		stream, err := htsio.OpenBam(path)
		if err != nil {
			return nil, fmt.Errorf("pipeline: open tumor %q: %w", path, err)
		}
		samples = append(samples, core.SampleParams{
			Name: sampleNameOf(path), Tag: core.TagTumor, Stream: stream,
			MinInsert: defaultMinInsert, MaxInsert: defaultMaxInsert,
		})
	}
	return samples, nil
}

func sampleNameOf(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	return base
}

func sampleOrderOf(samples []core.SampleParams) []string {
	order := make([]string, len(samples))
	for i, s := range samples {
		order[i] = s.Name
	}
	return order
}

// checkContigs validates, one goroutine per sample via traverse.Each, that
// every contig a sample's alignments reference also exists in ref.
func checkContigs(ref *htsio.FastaReference, samples []core.SampleParams) error {
	refNames := make(map[string]bool, len(ref.ListChroms()))
	for _, c := range ref.ListChroms() {
		refNames[c.Name] = true
	}
	return traverse.Each(len(samples), func(i int) error {
		s := samples[i]
		streamer, ok := s.Stream.(interface{ ListChroms() ([]string, error) })
		if !ok {
			return nil
		}
		names, err := streamer.ListChroms()
		if err != nil {
			return fmt.Errorf("pipeline: list contigs for %s: %w", s.Name, err)
		}
		for _, n := range names {
			if !refNames[n] {
				return fmt.Errorf("pipeline: sample %s has contig %q absent from reference (use --no-contig-check to bypass)", s.Name, n)
			}
		}
		return nil
	})
}

func writeRuntimeStats(ctx context.Context, path string, stats core.RunStats, chromNames map[int]string) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, f, &err)
	w := f.Writer(ctx)
	for _, r := range stats.Results {
		_, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\n",
			chromNames[r.Window.ChromIndex], r.Window.Start1, r.Window.End1,
			r.Status.String(), r.WallRuntime/1e6, r.NumVariants)
		if err != nil {
			return err
		}
	}
	return nil
}

func logSummary(logger *zap.Logger, stats core.RunStats) {
	total, variants := 0, 0
	for _, r := range stats.Results {
		total++
		variants += r.NumVariants
	}
	logger.Info("pipeline done", zap.Int("windows", total), zap.Int("variants", variants))
}
