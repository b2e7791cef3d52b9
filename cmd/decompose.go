package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/meshdecomp/decompose"
)

// DecomposeCmd represents the decompose command
var DecomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Split the global mesh and fields at a step into partitions",
	Long: `
Reads <mesh>_<step> and the named fields from the working directory, assigns
every cell to a partition and writes each partition into <mesh><ID>/ with its
mesh, cell index log and field files.

meshdecomp decompose -I input.yaml --total 4 --type GRAPH`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			sc  *decompose.SimulationContext
			rpt *decompose.DecomposeReport
		)
		if sc, err = newContext(cmd); err != nil {
			return
		}
		defer func() {
			if cerr := sc.Close(); err == nil {
				err = cerr
			}
		}()
		if rpt, err = decompose.NewDecomposer(sc).Decompose(cmd.Context()); err != nil {
			return
		}
		out := cmd.OutOrStdout()
		if rpt.Shortcut {
			fmt.Fprintln(out, "single partition, nothing written")
			return
		}
		fmt.Fprintf(out, "step %d (mesh step %d): %d partitions by %v, %d ghost facets\n",
			rpt.Step, rpt.MeshStep, rpt.Total, rpt.Strategy, rpt.GhostFacets)
		for id, n := range rpt.Counts {
			fmt.Fprintf(out, "  partition %d: %d cells\n", id, n)
		}
		for _, name := range rpt.Skipped {
			fmt.Fprintf(out, "  skipped field %s\n", name)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(DecomposeCmd)
}
