package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/meshdecomp/decompose"
)

// MergeCmd represents the merge command
var MergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Reassemble partition fields at a step into global fields",
	Long: `
Reads the field files every partition wrote at a step, places their values
through the stored cell index logs and writes <field><step> into the working
directory.

meshdecomp merge -I input.yaml --step 100`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			sc  *decompose.SimulationContext
			rpt *decompose.MergeReport
		)
		if sc, err = newContext(cmd); err != nil {
			return
		}
		defer func() {
			if cerr := sc.Close(); err == nil {
				err = cerr
			}
		}()
		rpt, err = decompose.NewMerger(sc).Merge(cmd.Context())
		if err != nil && !errors.Is(err, decompose.ErrNoPartitionsContributed) {
			return
		}
		out := cmd.OutOrStdout()
		for _, mf := range rpt.Missing {
			fmt.Fprintf(out, "  missing %s from partition %d: %v\n", mf.Field, mf.Partition, mf.Err)
		}
		for _, name := range rpt.Written {
			fmt.Fprintf(out, "merged %s from partitions %v\n", name, rpt.Contributors[name])
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(MergeCmd)
}
