package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
)

var patternCmd = &cobra.Command{
	Use:   "pattern <id>",
	Short: "Print the edges of a motif pattern id",
	Long: `Decode a pattern id into its adjacency matrix and edge list. Nodes are
numbered from 1.

Examples:
  motifs pattern 6 --size 3     # path 1 -> 2 -> 3 up to relabeling
  motifs pattern 25 --size 3    # directed cycle`,
	Args: cobra.ExactArgs(1),
	RunE: runPattern,
}

func init() {
	rootCmd.AddCommand(patternCmd)
}

func runPattern(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid pattern id %q: %w", args[0], err)
	}

	size := cfg.MotifSize()
	g, err := digraph.FromPatternID(id, size)
	if err != nil {
		return err
	}

	for i := 1; i <= size; i++ {
		for j := 1; j <= size; j++ {
			bit := 0
			if g.HasEdge(i, j) {
				bit = 1
			}
			fmt.Fprintf(os.Stdout, "%d ", bit)
		}
		fmt.Fprintln(os.Stdout)
	}
	fmt.Fprintln(os.Stdout)
	return g.WriteEdgeList(os.Stdout)
}
