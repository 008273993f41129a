// lancet is a somatic small-variant caller: colored de Bruijn graph
// assembly, POA-MSA variant extraction, read-realignment genotyping, VCF
// output (spec.md §1). Command wiring follows bio-pileup's cmd/<tool>/<pkg>
// split: this file and pipeline_cmd.go hold flag plumbing, cmd/lancet/pipeline
// holds the actual run logic.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lancet",
		Short:         "Colored de Bruijn graph somatic variant caller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPipelineCmd())
	return root
}
