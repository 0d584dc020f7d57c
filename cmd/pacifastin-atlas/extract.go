package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/genbank"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract CDS translations from downloaded GenBank records",
	Long: `Extract parses every GenBank file in the input directory and writes
each CDS protein translation to a FASTA file, with per-CDS metadata
(protein ID, locus tag, organism, taxonomy) to a CSV. Malformed files are
reported and skipped.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("genbank-dir", "data/genbank", "directory of .gb/.gbk input files")
	extractCmd.Flags().String("fasta", "data/sequences/proteins.fasta", "output FASTA file")
	extractCmd.Flags().String("metadata", "data/sequences/metadata.csv", "output metadata CSV")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	genbankDir, _ := cmd.Flags().GetString("genbank-dir")
	fastaPath, _ := cmd.Flags().GetString("fasta")
	metadataPath, _ := cmd.Flags().GetString("metadata")

	cfg := types.ExtractionConfig{
		GenBankDir:   genbankDir,
		FastaPath:    fastaPath,
		MetadataPath: metadataPath,
	}

	summary, err := genbank.ExtractDir(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed extraction", summary.Failed)
	}
	return nil
}
