package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
	"github.com/pdiddy/pacifastin-atlas/internal/fold"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// ESMFold recommends throttling submissions to the public endpoint.
const defaultFoldDelay = 2 * time.Second

var foldCmd = &cobra.Command{
	Use:   "fold",
	Short: "Acquire 3D structure models for homolog candidates",
	Long: `Fold obtains one PDB model per candidate sequence, either by submitting
sequences to the ESMFold API (predict) or by downloading precomputed
AlphaFold models from the published archive (archive). Existing models
are skipped so interrupted runs resume.`,
}

var foldPredictCmd = &cobra.Command{
	Use:   "predict [proteins.fasta]",
	Short: "Predict models with the ESMFold API",
	Args:  cobra.ExactArgs(1),
	RunE:  runFoldPredict,
}

var foldArchiveCmd = &cobra.Command{
	Use:   "archive [ids...]",
	Short: "Download precomputed AlphaFold models from the archive",
	RunE:  runFoldArchive,
}

func init() {
	foldCmd.PersistentFlags().String("models-dir", "data/models", "directory PDB models are written to")
	foldCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	foldCmd.PersistentFlags().Duration("delay", 0, "delay between consecutive requests (default 2s)")
	foldCmd.PersistentFlags().Int("retries", 0, "retry attempts per request (default 3)")

	foldPredictCmd.Flags().String("api-url", "", "ESMFold endpoint (default public API)")
	foldPredictCmd.Flags().String("failed-log", "data/models/failed.log", "file failed sequence IDs are appended to")

	foldArchiveCmd.Flags().String("archive-url", "", "base URL of the model archive (Zenodo record files)")

	foldCmd.AddCommand(foldPredictCmd)
	foldCmd.AddCommand(foldArchiveCmd)
	rootCmd.AddCommand(foldCmd)
}

func foldConfig(cmd *cobra.Command) types.FoldConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultFoldDelay
	}
	retries, _ := cmd.Flags().GetInt("retries")
	modelsDir, _ := cmd.Flags().GetString("models-dir")

	return types.FoldConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxRetries:   retries,
		RequestDelay: delay,
		ModelsDir:    modelsDir,
	}
}

func runFoldPredict(cmd *cobra.Command, args []string) error {
	cfg := foldConfig(cmd)
	cfg.APIURL, _ = cmd.Flags().GetString("api-url")
	cfg.FailedLog, _ = cmd.Flags().GetString("failed-log")

	records, err := fasta.ParseFile(args[0])
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	result, err := fold.PredictBatch(context.Background(), client, records, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d sequence(s) failed prediction (see %s)", result.Failed, cfg.FailedLog)
	}
	return nil
}

func runFoldArchive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more model IDs")
	}

	cfg := foldConfig(cmd)
	cfg.ArchiveURL, _ = cmd.Flags().GetString("archive-url")
	if cfg.ArchiveURL == "" {
		return fmt.Errorf("--archive-url is required")
	}

	client := &http.Client{Timeout: cfg.Timeout}
	result := fold.RetrieveBatch(context.Background(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d model(s) failed to download", result.Failed)
	}
	return nil
}
