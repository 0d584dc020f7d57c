package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/entrez"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pacifastin-atlas/0.1"

	// NCBI allows 3 requests per second without an API key.
	defaultFetchDelay = 350 * time.Millisecond
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [accessions...]",
	Short: "Download GenBank records from NCBI Entrez",
	Long: `Fetch downloads nucleotide records from NCBI efetch as GenBank flat
files. Existing records are skipped so interrupted runs resume. An NCBI
API key (flag, or ncbi-api-key in .secrets/) raises the rate limit.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive requests (default 350ms)")
	fetchCmd.Flags().String("genbank-dir", "data/genbank", "directory for downloaded records")
	fetchCmd.Flags().String("api-key", "", "NCBI API key (overrides .secrets/ncbi-api-key)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more nucleotide accessions")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultFetchDelay
	}
	genbankDir, _ := cmd.Flags().GetString("genbank-dir")
	apiKey, _ := cmd.Flags().GetString("api-key")

	cfg := types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:       secretDefault("ncbi-api-key", apiKey),
		RequestDelay: delay,
		GenBankDir:   genbankDir,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := entrez.FetchBatch(context.Background(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d record(s) failed to download", result.Failed)
	}
	return nil
}
