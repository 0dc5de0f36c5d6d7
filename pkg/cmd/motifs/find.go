package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/service"
	"github.com/gilchrisn/graph-motif-service/pkg/stats"
)

var (
	findRandom bool
	findTop    int
	findOutput string
)

var findCmd = &cobra.Command{
	Use:   "find <cohort/metric>",
	Short: "Find the motif distribution of one group",
	Long: `Threshold every graph of a group, count its motifs and print the top
patterns by mean frequency. Use "rand/uniform" for the random control group.

Examples:
  motifs find AD/corr --dataset groups.json --size 3 --degree 10
  motifs find NL/lcorr --random --output nl.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().BoolVar(&findRandom, "random", false, "Use edge-swapped graphs (run 'motifs swap' first)")
	findCmd.Flags().IntVar(&findTop, "top", 10, "Number of patterns to print")
	findCmd.Flags().StringVarP(&findOutput, "output", "o", "", "Write the full result to a .json or .yaml file")
}

func runFind(cmd *cobra.Command, args []string) error {
	group, err := models.ParseGroupKey(args[0])
	if err != nil {
		return err
	}

	svc, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Find(cmd.Context(), service.FindRequest{
		Group:     group,
		MotifSize: cfg.MotifSize(),
		Degree:    cfg.Degree(),
		Random:    findRandom,
	})
	if err != nil {
		return err
	}

	if findOutput != "" {
		if err := export(findOutput, result); err != nil {
			return fmt.Errorf("failed to write %s: %w", findOutput, err)
		}
		logger.Info().Str("path", findOutput).Msg("Result written")
	}

	fmt.Fprintf(os.Stdout, "%s: %d patterns over %d graphs (cached: %v)\n",
		result.Key.Group, len(result.Distribution), result.Distribution.Slots(), result.Cached)
	if result.Run != nil {
		fmt.Fprintf(os.Stdout, "processed %d, rejected %d, failed %d in %s\n",
			result.Run.Processed, result.Run.Rejected, result.Run.Failed, result.Run.Duration)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tMEAN\tSTD")
	for _, p := range stats.Summary(result.Distribution, findTop) {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\n", p.Pattern, p.Mean, p.Std)
	}
	return tw.Flush()
}
