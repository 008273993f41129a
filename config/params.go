// Package config holds the pipeline subcommand's flag surface, defaults, and
// validation, grounded on grailbio-bio/pileup/snp's Opts/DefaultOpts pattern
// (spec.md §6's CLI contract).
package config

import (
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"

	"github.com/nygenome/lancet/caller"
	"github.com/nygenome/lancet/cbdg"
	"github.com/nygenome/lancet/core"
)

// Params is the full set of pipeline subcommand flags (spec.md §6).
type Params struct {
	Normal     []string
	Tumor      []string
	Reference  string
	OutVCFGz   string
	Regions    []string
	BedFile    string
	GraphsDir  string
	RuntimeStats string

	WindowSize  int
	Padding     int
	PctOverlap  int
	NumThreads  int

	MinKmer       int
	MaxKmer       int
	MinAnchorCov  int
	MinNodeCov    int
	MaxSampleCov  float64

	MinAltQual   int
	MinNmlCov    int
	MinTmrCov    int
	MaxNmlVAF    float64
	MinOddsRatio float64
	MinFisher    float64
	MinSTRFisher float64

	Verbose        bool
	ExtractPairs   bool
	NoActiveRegion bool
	NoContigCheck  bool
}

// DefaultParams mirrors spec.md §4's documented defaults.
func DefaultParams() Params {
	g := cbdg.DefaultParams()
	v := caller.DefaultVariantCallParams()
	w := core.DefaultWindowBuilderParams()
	return Params{
		WindowSize: w.WindowLength,
		Padding:    w.RegionPadding,
		PctOverlap: w.PercentOverlap,
		NumThreads: 2,

		MinKmer:      g.MinKmerLen,
		MaxKmer:      g.MaxKmerLen,
		MinAnchorCov: int(g.MinAnchorCov),
		MinNodeCov:   int(g.MinNodeCov),
		MaxSampleCov: 600,

		MinAltQual:   0,
		MinNmlCov:    4,
		MinTmrCov:    v.MinTumorCov,
		MaxNmlVAF:    v.MaxNormalVAF,
		MinOddsRatio: v.MinOddsRatio,
		MinFisher:    v.MinFisher,
		MinSTRFisher: v.MinSTRFisher,
	}
}

// Validate checks required fields and parameter bounds, returning every
// problem found rather than stopping at the first (spec.md §7's "Input
// validation: fatal at startup" error kind).
func (p Params) Validate() error {
	var errs errors.Once

	if len(p.Normal) == 0 {
		errs.Set(errors.New("config: --normal is required"))
	}
	if p.Reference == "" {
		errs.Set(errors.New("config: --reference is required"))
	}
	if p.OutVCFGz == "" {
		errs.Set(errors.New("config: --out-vcfgz is required"))
	}
	if p.BedFile != "" && len(p.Regions) > 0 {
		errs.Set(errors.New("config: --bed-file and --region are mutually exclusive"))
	}
	if p.NumThreads < 1 {
		errs.Set(errors.New("config: --num-threads must be >= 1"))
	}
	if p.MinKmer < 11 || p.MinKmer%2 == 0 {
		errs.Set(errors.New("config: --min-kmer must be an odd value >= 11"))
	}
	if p.MaxKmer < p.MinKmer || p.MaxKmer%2 == 0 {
		errs.Set(errors.New("config: --max-kmer must be odd and >= --min-kmer"))
	}
	wb := core.WindowBuilderParams{WindowLength: p.WindowSize, RegionPadding: p.Padding, PercentOverlap: p.PctOverlap}
	if err := wb.Validate(); err != nil {
		errs.Set(err)
	}
	if p.MaxSampleCov <= 0 {
		errs.Set(errors.New("config: --max-sample-cov must be > 0"))
	}
	if p.MaxNmlVAF < 0 || p.MaxNmlVAF > 1 {
		errs.Set(errors.New("config: --max-nml-vaf must be in [0, 1]"))
	}
	if p.MinFisher < 0 || p.MinSTRFisher < 0 {
		errs.Set(errors.New("config: --min-fisher and --min-str-fisher must be >= 0"))
	}
	if p.MinOddsRatio < 0 {
		errs.Set(errors.New("config: --min-odds-ratio must be >= 0"))
	}

	p.checkInputsExist(&errs)

	return errs.Err()
}

// checkInputsExist stats every input path up front so a typo fails fast with
// spec.md §7's "fatal at startup" error kind, instead of partway through a
// multi-hour assembly run. Uses github.com/grailbio/base/file so a reference
// or BAM living on a blob store validates the same way a local path does.
func (p Params) checkInputsExist(errs *errors.Once) {
	ctx := vcontext.Background()
	check := func(flag, path string) {
		if path == "" {
			return
		}
		if _, err := file.Stat(ctx, path); err != nil {
			errs.Set(errors.E(err, "config: "+flag+" "+path+" not found"))
		}
	}
	check("--reference", p.Reference)
	if p.Reference != "" {
		check("--reference index", p.Reference+".fai")
	}
	check("--bed-file", p.BedFile)
	for _, path := range p.Normal {
		check("--normal", path)
	}
	for _, path := range p.Tumor {
		check("--tumor", path)
	}
}

// VariantCallParams adapts the CLI's somatic-classification flags into the
// caller package's parameter struct.
func (p Params) VariantCallParams() caller.VariantCallParams {
	return caller.VariantCallParams{
		MinTumorCov:  p.MinTmrCov,
		MaxNormalVAF: p.MaxNmlVAF,
		MinFisher:    p.MinFisher,
		MinSTRFisher: p.MinSTRFisher,
		MinAltQual:   p.MinAltQual,
		MinOddsRatio: p.MinOddsRatio,
	}
}

// GraphParams adapts the CLI's assembly-graph flags into cbdg.Params.
func (p Params) GraphParams() cbdg.Params {
	d := cbdg.DefaultParams()
	return cbdg.Params{
		MinKmerLen:          p.MinKmer,
		MaxKmerLen:          p.MaxKmer,
		MinNodeCovRatio:     d.MinNodeCovRatio,
		MinNodeCov:          uint32(p.MinNodeCov),
		MinAnchorCov:        uint32(p.MinAnchorCov),
		GraphTraversalLimit: d.GraphTraversalLimit,
		GraphsDir:           p.GraphsDir,
	}
}

// WindowBuilderParams adapts the CLI's window-geometry flags.
func (p Params) WindowBuilderParams() core.WindowBuilderParams {
	return core.WindowBuilderParams{WindowLength: p.WindowSize, RegionPadding: p.Padding, PercentOverlap: p.PctOverlap}
}

// NormalPaths splits a --normal PATH[,PATH...] argument list back into one
// path-per-file slice; lancet accepts a single flag value with commas
// (spec.md §6) the way cobra's StringSliceVar renders it.
func NormalPaths(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
