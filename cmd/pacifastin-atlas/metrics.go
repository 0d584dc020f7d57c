package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/phyletic"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [taxonomy.csv]",
	Short: "Compute phyletic spread and depth per lineage stratum",
	Long: `Metrics computes the evolutionary metrics of each (lineage, supergroup)
stratum from the validated taxonomy table: phyletic spread (Si, the
number of unique phyla) and phyletic depth (Di, average sequence copies
per species), stratified into Arthropoda vs Non-Arthropoda.`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("output", "results/metrics/phyletic_metrics.csv", "output metrics CSV")

	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	observations, err := phyletic.ReadObservationsCSV(args[0])
	if err != nil {
		return err
	}
	metrics := phyletic.Metrics(observations)

	if err := ensureOutputDirs(outputPath); err != nil {
		return err
	}
	if err := phyletic.WriteMetricsCSV(outputPath, metrics); err != nil {
		return err
	}

	for _, m := range metrics {
		fmt.Printf("%-20s %-16s Si=%d Di=%.2f (%d seq, %d species)\n",
			m.Lineage, m.Supergroup, m.Spread, m.Depth, m.Sequences, m.Species)
	}
	return nil
}
