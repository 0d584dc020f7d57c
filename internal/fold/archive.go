// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fold

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/pacifastin-atlas/internal/httputil"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// RetrieveModel downloads one precomputed AlphaFold model from the
// published archive into cfg.ModelsDir. Existing models are skipped.
// The skipped return value indicates whether the download was skipped.
func RetrieveModel(ctx context.Context, client *http.Client, id string, cfg types.FoldConfig, w io.Writer) (skipped bool, err error) {
	if cfg.ArchiveURL == "" {
		return false, fmt.Errorf("no archive URL configured")
	}

	destPath := filepath.Join(cfg.ModelsDir, id+".pdb")
	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", id)
		return true, nil
	}

	if err := os.MkdirAll(cfg.ModelsDir, 0o755); err != nil {
		return false, fmt.Errorf("creating models directory %s: %w", cfg.ModelsDir, err)
	}

	modelURL := fmt.Sprintf("%s/%s.pdb", cfg.ArchiveURL, id)
	req, err := http.NewRequest(http.MethodGet, modelURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	fmt.Fprintf(w, "downloading: %s\n", id)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries, w)
	if err != nil {
		return false, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("archive returned HTTP %d for %s", resp.StatusCode, id)
	}

	// Download to a temp file, rename on success.
	tmpFile, err := os.CreateTemp(cfg.ModelsDir, ".model-*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("writing model: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("renaming temp file: %w", err)
	}
	meta := ModelMeta{ID: id, Source: SourceArchive, URL: modelURL}
	if err := writeMeta(cfg.ModelsDir, meta); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	return false, nil
}

// RetrieveBatch downloads multiple precomputed models, continuing after
// individual failures.
func RetrieveBatch(ctx context.Context, client *http.Client, ids []string, cfg types.FoldConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, id := range ids {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(cfg.RequestDelay):
			}
		}
		wasSkipped, err := RetrieveModel(ctx, client, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Predicted++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Predicted, result.Skipped, result.Failed, result.Total())
	return result
}
