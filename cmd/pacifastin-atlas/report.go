package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/report"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compile pipeline results into a study report",
	Long: `Report compiles the classification, detection, metrics, regression,
and landscape tables into a single Markdown or LaTeX document. Missing
stage outputs are noted in the document rather than failing the run.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("title", "Pacifastin Homolog Atlas", "report title")
	reportCmd.Flags().String("format", "markdown", "output format: markdown or latex")
	reportCmd.Flags().String("output-dir", "output/reports", "directory the report is written to")
	reportCmd.Flags().String("classification", "results/classification/classification.csv", "classification CSV")
	reportCmd.Flags().String("methods", "results/mining/method_by_phylum.csv", "method summary CSV")
	reportCmd.Flags().String("metrics", "results/metrics/phyletic_metrics.csv", "phyletic metrics CSV")
	reportCmd.Flags().String("coefficients", "results/glm/coefficients.csv", "regression coefficient CSV")
	reportCmd.Flags().String("dispersion", "results/landscape/dispersion.csv", "dispersion summary CSV")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	format, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	classification, _ := cmd.Flags().GetString("classification")
	methods, _ := cmd.Flags().GetString("methods")
	metrics, _ := cmd.Flags().GetString("metrics")
	coefficients, _ := cmd.Flags().GetString("coefficients")
	dispersion, _ := cmd.Flags().GetString("dispersion")

	sections, err := report.Compile(report.Inputs{
		ClassificationCSV: classification,
		MethodSummaryCSV:  methods,
		MetricsCSV:        metrics,
		CoefficientsCSV:   coefficients,
		DispersionCSV:     dispersion,
	})
	if err != nil {
		return err
	}

	cfg := types.ReportConfig{
		OutputDir: outputDir,
		Format:    types.OutputFormat(format),
	}
	path, err := report.Write(cfg, title, sections)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}
