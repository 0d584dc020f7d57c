// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fold acquires 3D structure models for homolog candidates,
// either by submitting sequences to the ESMFold API or by retrieving
// precomputed AlphaFold models from the published archive.
package fold

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
	"github.com/pdiddy/pacifastin-atlas/internal/httputil"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// defaultAPIURL is the public ESMFold folding endpoint.
const defaultAPIURL = "https://api.esmatlas.com/foldSequence/v1/pdb/"

// BatchResult holds the outcome of a batch prediction run.
type BatchResult struct {
	Predicted int
	Skipped   int
	Failed    int
}

// Total returns the total number of sequences processed.
func (r BatchResult) Total() int {
	return r.Predicted + r.Skipped + r.Failed
}

// HasFailures reports whether any sequences failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Predict submits one sequence to the ESMFold API and returns the PDB
// text. Transient API failures are retried with backoff; a non-200 final
// response is an error.
func Predict(ctx context.Context, client *http.Client, sequence string, cfg types.FoldConfig, w io.Writer) (string, error) {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(sequence))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries, w)
	if err != nil {
		return "", fmt.Errorf("ESMFold request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ESMFold API returned HTTP %d", resp.StatusCode)
	}

	pdb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading PDB response: %w", err)
	}
	if len(pdb) == 0 {
		return "", fmt.Errorf("ESMFold returned empty model")
	}
	return string(pdb), nil
}

// PredictBatch models every sequence in records, writing one PDB file per
// sequence ID to cfg.ModelsDir. Existing models are skipped so interrupted
// runs can resume. Failed IDs are appended to cfg.FailedLog and the batch
// continues.
func PredictBatch(ctx context.Context, client *http.Client, records []fasta.Record, cfg types.FoldConfig, w io.Writer) (BatchResult, error) {
	if err := os.MkdirAll(cfg.ModelsDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating models directory %s: %w", cfg.ModelsDir, err)
	}

	var result BatchResult
	total := len(records)

	for i, rec := range records {
		outPath := filepath.Join(cfg.ModelsDir, rec.ID+".pdb")
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "[%d/%d] skipped %s (already exists)\n", i+1, total, rec.ID)
			result.Skipped++
			continue
		}

		if result.Predicted+result.Failed > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.RequestDelay):
			}
		}

		fmt.Fprintf(w, "[%d/%d] modeling %s...\n", i+1, total, rec.ID)
		pdb, err := Predict(ctx, client, rec.Sequence, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", rec.ID, err)
			if logErr := appendFailed(cfg.FailedLog, rec.ID); logErr != nil {
				fmt.Fprintf(w, "warning: could not record failure: %v\n", logErr)
			}
			result.Failed++
			continue
		}

		if err := os.WriteFile(outPath, []byte(pdb), 0o644); err != nil {
			return result, fmt.Errorf("writing model %s: %w", outPath, err)
		}
		meta := ModelMeta{ID: rec.ID, Source: SourceESMFold, SequenceLength: len(rec.Sequence)}
		if err := writeMeta(cfg.ModelsDir, meta); err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
		}
		result.Predicted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d predicted, %d skipped, %d failed (total: %d)\n",
		result.Predicted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// appendFailed records a failed sequence ID so the run can be audited and
// retried later.
func appendFailed(path, id string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, id)
	return err
}
