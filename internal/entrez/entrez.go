// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez downloads GenBank records from the NCBI E-utilities
// efetch endpoint to build the initial sequence database.
package entrez

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pacifastin-atlas/internal/httputil"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// efetchBase is the E-utilities efetch endpoint. Overridden in tests.
var efetchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of accessions processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any accessions failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchRecord downloads one GenBank flat file by accession into
// cfg.GenBankDir. If the file already exists, the download is skipped.
// The skipped return value indicates whether the download was skipped.
func FetchRecord(ctx context.Context, client *http.Client, accession string, cfg types.EntrezConfig, w io.Writer) (skipped bool, err error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return false, fmt.Errorf("empty accession")
	}

	destPath := filepath.Join(cfg.GenBankDir, accession+".gb")
	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", accession)
		return true, nil
	}

	if err := os.MkdirAll(cfg.GenBankDir, 0o755); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", cfg.GenBankDir, err)
	}

	params := url.Values{
		"db":      {"nuccore"},
		"id":      {accession},
		"rettype": {"gb"},
		"retmode": {"text"},
	}
	if cfg.APIKey != "" {
		params.Set("api_key", cfg.APIKey)
	}

	req, err := http.NewRequest(http.MethodGet, efetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	fmt.Fprintf(w, "fetching: %s\n", accession)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, w)
	if err != nil {
		return false, fmt.Errorf("efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("efetch returned HTTP %d for %s", resp.StatusCode, accession)
	}

	if err := writeAtomic(destPath, resp.Body); err != nil {
		return false, fmt.Errorf("writing %s: %w", accession, err)
	}
	return false, nil
}

// FetchBatch downloads multiple accessions, printing per-item status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive requests.
func FetchBatch(ctx context.Context, client *http.Client, accessions []string, cfg types.EntrezConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, acc := range accessions {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(cfg.RequestDelay):
			}
		}
		wasSkipped, err := FetchRecord(ctx, client, acc, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", acc, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// writeAtomic streams body to destPath via a temporary file so a partial
// download never leaves a truncated record behind.
func writeAtomic(destPath string, body io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
