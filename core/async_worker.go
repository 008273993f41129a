package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nygenome/lancet/caller"
	"github.com/nygenome/lancet/cbdg"
)

// WorkerConfig bundles everything an AsyncWorker needs to turn a Window
// into genotyped VariantCalls (spec.md §4.10's per-worker VariantBuilder
// state: graph + msa + genotyper).
type WorkerConfig struct {
	GraphParams       cbdg.Params
	VariantCallParams caller.VariantCallParams
	Samples           []SampleParams
	Reference         ReferenceFasta
	MaxSampleCovX     float64
	ExtractPairs      bool
	NoFilterReads     bool
	NoActiveRegion    bool // --no-active-region: force assembly regardless of scan_active
	Logger            *zap.Logger
}

// AsyncWorker processes Windows pulled off a shared input channel and
// writes one Result per window to a shared output channel, stopping early
// if stopCh is closed (spec.md §4.10).
type AsyncWorker struct {
	ID    int
	Cfg   WorkerConfig
	Store *VariantStore
}

// Run drains input until it is closed or stopCh fires between windows; it
// never suspends mid-window (spec.md §4.10's cancellation contract).
func (w *AsyncWorker) Run(ctx context.Context, stopCh <-chan struct{}, input <-chan Window, output chan<- Result) {
	genotyper := caller.NewGenotyper()
	for {
		select {
		case <-stopCh:
			return
		default:
		}
		window, ok := <-input
		if !ok {
			return
		}
		start := time.Now()
		result := w.processWindow(ctx, window, genotyper)
		result.WallRuntime = time.Since(start).Nanoseconds()
		output <- result
	}
}

func (w *AsyncWorker) processWindow(ctx context.Context, window Window, genotyper *caller.Genotyper) (result Result) {
	log := w.Cfg.Logger
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("core: window %s panicked: %v", window.String(), r)
			if log != nil {
				log.Error("window panicked", zap.String("window", window.String()), zap.Error(err))
			}
			result = Result{Window: window, Status: StatusUnknown, Err: err}
		}
	}()
	refSeq, err := w.Cfg.Reference.Fetch(window.ChromIndex, window.Start1, window.End1)
	if err != nil {
		if log != nil {
			log.Error("fetch reference failed", zap.String("window", window.String()), zap.Error(err))
		}
		return Result{Window: window, Status: StatusUnknown, Err: err}
	}
	if allN(refSeq) {
		return Result{Window: window, Status: StatusSkippedNOnlyRefBases}
	}

	collectorParams := ReadCollectorParams{
		Samples: w.Cfg.Samples, Reference: w.Cfg.Reference, MaxSampleCovX: w.Cfg.MaxSampleCovX,
		ExtractPairs: w.Cfg.ExtractPairs, NoFilterReads: w.Cfg.NoFilterReads,
	}
	reads, _, err := CollectReads(ctx, window.Region, collectorParams)
	if err != nil {
		if log != nil {
			log.Error("collect reads failed", zap.String("window", window.String()), zap.Error(err))
		}
		return Result{Window: window, Status: StatusUnknown, Err: err}
	}

	if !w.Cfg.NoActiveRegion && !IsActiveRegion(reads) {
		return Result{Window: window, Status: StatusSkippedInactiveRegion}
	}

	graph := cbdg.NewGraph(w.Cfg.GraphParams, w.Cfg.Logger)
	graphReads := make([]cbdg.ReadSeq, len(reads))
	for i, r := range reads {
		graphReads[i] = cbdg.ReadSeq{Seq: r.Sequence, Qual: r.Quals, Label: sampleTagToLabel(r.Tag), MateKey: r.Sample + "|" + r.QName}
	}
	haplotypes := graph.MakeHaplotypes(refSeq, graphReads)
	if len(haplotypes) <= 1 {
		return Result{Window: window, Status: StatusSkippedNoAsmHaplotype}
	}

	msa, err := caller.BuildMSA(haplotypes)
	if err != nil {
		if log != nil {
			log.Error("build MSA failed", zap.String("window", window.String()), zap.Error(err))
		}
		return Result{Window: window, Status: StatusUnknown, Err: err}
	}
	anchor := caller.WindowAnchor{ChromIndex: window.ChromIndex, Start1: window.Start1}
	variants := caller.ExtractVariants(msa, anchor)
	if len(variants) == 0 {
		return Result{Window: window, Status: StatusMissingNoMSAVariants}
	}
	for i := range variants {
		variants[i].STR = caller.FindSTR(refSeq, variants[i].HapStart0Idxs[0])
	}

	readViews := make([]caller.ReadView, len(reads))
	for i, r := range reads {
		readViews[i] = caller.ReadView{
			Seq: r.Sequence, Qual: r.Quals, Sample: r.Sample,
			Tag: sampleTagToCallerTag(r.Tag), MapQual: r.MapQual, ReverseStrand: r.Flags.ReverseStrand,
		}
	}
	support := genotyper.Genotype(haplotypes, variants, readViews)

	sampleTags := make(map[string]caller.SampleTag, len(w.Cfg.Samples))
	for _, sp := range w.Cfg.Samples {
		sampleTags[sp.Name] = sampleTagToCallerTag(sp.Tag)
	}

	calls := make([]caller.VariantCall, len(variants))
	for i, v := range variants {
		calls[i] = caller.BuildVariantCall(v, i, support, sampleTags, w.Cfg.VariantCallParams)
	}
	w.Store.AddVariants(calls)

	return Result{Window: window, Status: StatusFoundGenotypedVariant, NumVariants: len(calls)}
}

func allN(seq string) bool {
	for i := 0; i < len(seq); i++ {
		if seq[i] != 'N' {
			return false
		}
	}
	return len(seq) > 0
}

func sampleTagToLabel(t SampleTag) cbdg.Label {
	switch t {
	case TagNormal:
		return cbdg.LabelNormal
	case TagTumor:
		return cbdg.LabelTumor
	default:
		return cbdg.LabelReference
	}
}

func sampleTagToCallerTag(t SampleTag) caller.SampleTag {
	switch t {
	case TagNormal:
		return caller.TagNormal
	case TagTumor:
		return caller.TagTumor
	default:
		return caller.TagReference
	}
}
