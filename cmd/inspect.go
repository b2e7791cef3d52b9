package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/notargets/meshdecomp/decompose"
)

// InspectCmd represents the inspect command
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a decomposition already on disk",
	Long: `
Reads back every partition mesh and cell index log, prints cell, facet and
ghost boundary counts per partition and checks the ghost boundaries pair up.

meshdecomp inspect -I input.yaml --total 4`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			sc    *decompose.SimulationContext
			parts []decompose.PartitionSummary
		)
		if sc, err = newContext(cmd); err != nil {
			return
		}
		defer func() {
			if cerr := sc.Close(); err == nil {
				err = cerr
			}
		}()
		parts, err = decompose.Inspect(cmd.Context(), sc)
		out := cmd.OutOrStdout()
		for _, ps := range parts {
			fmt.Fprintf(out, "partition %d (mesh step %d, index step %d): %d cells, %d facets, %d vertices\n",
				ps.ID, ps.MeshStep, ps.IndexStep, ps.Stats.Cells, ps.Stats.Facets, ps.Stats.Vertices)
			nbrs := make([]int, 0, len(ps.Ghosts))
			for nbr := range ps.Ghosts {
				nbrs = append(nbrs, nbr)
			}
			sort.Ints(nbrs)
			for _, nbr := range nbrs {
				fmt.Fprintf(out, "  interMesh_%d_%d: %d facets\n", ps.ID, nbr, ps.Ghosts[nbr])
			}
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(InspectCmd)
}
