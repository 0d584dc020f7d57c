package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/mine"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

var mineCmd = &cobra.Command{
	Use:   "mine [proteins.fasta]",
	Short: "Mine pacifastin homologs by sequence and structure",
	Long: `Mine runs a profile HMM search (hmmsearch) and a structural similarity
search (foldseek) over the extracted protein set, merges the hits, and
labels each homolog with its detection method: Sequence-only,
Structure-only, or Common. One failing detector degrades the run to the
other; both failing is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runMine,
}

func init() {
	mineCmd.Flags().String("profile", "data/profiles/pacifastin.hmm", "pacifastin HMM profile")
	mineCmd.Flags().String("templates", "data/models/templates", "reference structure directory for foldseek")
	mineCmd.Flags().String("models-dir", "data/models", "predicted model directory searched by foldseek")
	mineCmd.Flags().String("results-dir", "results/mining", "directory for mining outputs")
	mineCmd.Flags().String("metadata", "data/sequences/metadata.csv", "CDS metadata CSV for phylum labels")
	mineCmd.Flags().Float64("evalue", 0, "E-value inclusion cutoff (default 1e-5)")
	mineCmd.Flags().String("hmmsearch-bin", "", "hmmsearch binary (default from PATH)")
	mineCmd.Flags().String("foldseek-bin", "", "foldseek binary (default from PATH)")

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	profilePath, _ := cmd.Flags().GetString("profile")
	templateDir, _ := cmd.Flags().GetString("templates")
	modelsDir, _ := cmd.Flags().GetString("models-dir")
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	metadataPath, _ := cmd.Flags().GetString("metadata")
	evalue, _ := cmd.Flags().GetFloat64("evalue")
	hmmBin, _ := cmd.Flags().GetString("hmmsearch-bin")
	foldseekBin, _ := cmd.Flags().GetString("foldseek-bin")

	cfg := types.MiningConfig{
		HMMSearchBin: hmmBin,
		FoldseekBin:  foldseekBin,
		EValueCutoff: evalue,
		ProfilePath:  profilePath,
		TemplateDir:  templateDir,
		ResultsDir:   resultsDir,
	}

	phylumByID, err := loadPhylumIndex(metadataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: no phylum labels: %v\n", err)
	}

	out, err := mine.Mine(
		mine.NewHMMERDetector(cfg),
		mine.NewFoldseekDetector(cfg, modelsDir),
		args[0], cfg, phylumByID, os.Stdout,
	)
	if err != nil {
		return err
	}
	for _, derr := range out.DetectorErrors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", derr)
	}
	return nil
}

// loadPhylumIndex maps protein IDs to phyla using the taxonomy column of
// the CDS metadata CSV. The phylum is the second element of the
// semicolon-joined lineage.
func loadPhylumIndex(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no metadata rows", path)
	}

	out := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 5 {
			continue
		}
		lineage := strings.Split(row[4], ";")
		if len(lineage) < 2 {
			continue
		}
		out[row[1]] = strings.TrimSpace(lineage[1])
	}
	return out, nil
}
