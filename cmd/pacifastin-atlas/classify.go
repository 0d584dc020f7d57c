package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/classify"
	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [domains.fasta]",
	Short: "Classify domains into loop-topology lineages",
	Long: `Classify assigns each pacifastin-like domain to a structural lineage
from the length of its C1-C2 loop: 9-12 residues is Compact-loop, 13-20
is Extended-loop, anything else Unclassified. Sequences without the
canonical 6-cysteine scaffold are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("output", "results/classification/classification.csv", "output classification CSV")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	records, err := fasta.ParseFile(args[0])
	if err != nil {
		return err
	}

	if err := ensureOutputDirs(outputPath); err != nil {
		return err
	}

	classifications, _ := classify.ClassifyBatch(records, os.Stdout)
	return classify.WriteCSV(outputPath, classifications)
}
