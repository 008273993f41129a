package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nygenome/lancet/cmd/lancet/pipeline"
	"github.com/nygenome/lancet/config"
)

func newPipelineCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Call somatic variants over a normal/tumor BAM pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(v)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("normal", nil, "normal sample BAM/CRAM path(s), comma-separated or repeated")
	flags.StringSlice("tumor", nil, "tumor sample BAM/CRAM path(s), comma-separated or repeated")
	flags.String("reference", "", "reference FASTA path (must have a .fai)")
	flags.String("out-vcfgz", "", "output bgzip VCF path")
	flags.StringSlice("region", nil, "region REF[:START-END], repeatable")
	flags.String("bed-file", "", "BED file of regions, mutually exclusive with --region")
	flags.Int("window-size", 1000, "assembly window length in bases, [500, 5000]")
	flags.Int("padding", 500, "per-region padding in bases, [0, 1000]")
	flags.Int("pct-overlap", 50, "adjacent window overlap percentage, [50, 90]")
	flags.Int("num-threads", 2, "worker goroutines")
	flags.Int("min-kmer", 11, "minimum de Bruijn graph k-mer size, odd")
	flags.Int("max-kmer", 101, "maximum de Bruijn graph k-mer size, odd")
	flags.Int("min-anchor-cov", 5, "minimum coverage for a source/sink anchor node")
	flags.Int("min-node-cov", 2, "minimum coverage to retain a graph node")
	flags.Float64("max-sample-cov", 600, "per-sample coverage cap before downsampling")
	flags.Int("min-alt-qual", 0, "minimum median alt base quality for a sample to count as having alt support")
	flags.Int("min-nml-cov", 4, "minimum normal coverage (accepted, but not applied by any filter or classification)")
	flags.Int("min-tmr-cov", 3, "minimum tumor alt depth for SOMATIC classification")
	flags.Float64("max-nml-vaf", 0.02, "maximum normal VAF for SOMATIC classification")
	flags.Float64("min-odds-ratio", 0, "minimum tumor/normal VAF odds ratio for SOMATIC classification")
	flags.Float64("min-fisher", 8, "minimum phred-scaled Fisher exact score for SOMATIC classification")
	flags.Float64("min-str-fisher", 12, "minimum phred-scaled Fisher exact score at STR sites")
	flags.Bool("verbose", false, "debug-level logging")
	flags.Bool("extract-pairs", false, "fetch out-of-region mates for retained reads")
	flags.Bool("no-active-region", false, "force assembly even when the active-region scan is negative")
	flags.Bool("no-contig-check", false, "skip reference/alignment contig-name agreement check")
	flags.String("runtime-stats", "", "optional per-window runtime TSV output path")
	flags.String("graphs-dir", "", "optional directory for per-window graph .dot snapshots")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.SetEnvPrefix("lancet")
	v.AutomaticEnv()

	return cmd
}

func runPipeline(v *viper.Viper) error {
	p := config.Params{
		Normal:       config.NormalPaths(v.GetStringSlice("normal")),
		Tumor:        config.NormalPaths(v.GetStringSlice("tumor")),
		Reference:    v.GetString("reference"),
		OutVCFGz:     v.GetString("out-vcfgz"),
		Regions:      v.GetStringSlice("region"),
		BedFile:      v.GetString("bed-file"),
		GraphsDir:    v.GetString("graphs-dir"),
		RuntimeStats: v.GetString("runtime-stats"),

		WindowSize: v.GetInt("window-size"),
		Padding:    v.GetInt("padding"),
		PctOverlap: v.GetInt("pct-overlap"),
		NumThreads: v.GetInt("num-threads"),

		MinKmer:      v.GetInt("min-kmer"),
		MaxKmer:      v.GetInt("max-kmer"),
		MinAnchorCov: v.GetInt("min-anchor-cov"),
		MinNodeCov:   v.GetInt("min-node-cov"),
		MaxSampleCov: v.GetFloat64("max-sample-cov"),

		MinAltQual:   v.GetInt("min-alt-qual"),
		MinNmlCov:    v.GetInt("min-nml-cov"),
		MinTmrCov:    v.GetInt("min-tmr-cov"),
		MaxNmlVAF:    v.GetFloat64("max-nml-vaf"),
		MinOddsRatio: v.GetFloat64("min-odds-ratio"),
		MinFisher:    v.GetFloat64("min-fisher"),
		MinSTRFisher: v.GetFloat64("min-str-fisher"),

		Verbose:        v.GetBool("verbose"),
		ExtractPairs:   v.GetBool("extract-pairs"),
		NoActiveRegion: v.GetBool("no-active-region"),
		NoContigCheck:  v.GetBool("no-contig-check"),
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return pipeline.Run(p)
}
