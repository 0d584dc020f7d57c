// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fold

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
	"github.com/pdiddy/pacifastin-atlas/internal/httputil"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const samplePDB = "HEADER    PREDICTED MODEL\nATOM      1  N   MET A   1       0.000   0.000   0.000\nEND\n"

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func TestPredict(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(samplePDB))
	}))
	defer ts.Close()

	cfg := types.FoldConfig{APIURL: ts.URL}
	pdb, err := Predict(context.Background(), ts.Client(), "MKTCIPGG", cfg, io.Discard)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pdb != samplePDB {
		t.Errorf("Predict() = %q", pdb)
	}
	if gotBody != "MKTCIPGG" {
		t.Errorf("request body = %q, want raw sequence", gotBody)
	}
}

func TestPredictRetriesTransientFailure(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		// The request body must survive the retry.
		body, _ := io.ReadAll(r.Body)
		if string(body) != "MKTC" {
			t.Errorf("retried body = %q, want %q", body, "MKTC")
		}
		w.Write([]byte(samplePDB))
	}))
	defer ts.Close()

	cfg := types.FoldConfig{APIURL: ts.URL, MaxRetries: 3}
	pdb, err := Predict(context.Background(), ts.Client(), "MKTC", cfg, io.Discard)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pdb != samplePDB {
		t.Errorf("Predict() = %q", pdb)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPredictBatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "X") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(samplePDB))
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := types.FoldConfig{
		APIURL:    ts.URL,
		ModelsDir: dir,
		FailedLog: filepath.Join(dir, "failed.log"),
	}

	// P2 already modeled: must be skipped without a request.
	if err := os.WriteFile(filepath.Join(dir, "P2.pdb"), []byte(samplePDB), 0o644); err != nil {
		t.Fatal(err)
	}

	records := []fasta.Record{
		{ID: "P1", Sequence: "MKTCIPGG"},
		{ID: "P2", Sequence: "ACDEF"},
		{ID: "P3", Sequence: "XXXX"},
	}

	var buf bytes.Buffer
	result, err := PredictBatch(context.Background(), ts.Client(), records, cfg, &buf)
	if err != nil {
		t.Fatalf("PredictBatch() error = %v", err)
	}
	if result.Predicted != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 predicted, 1 skipped, 1 failed", result)
	}

	if _, err := os.Stat(filepath.Join(dir, "P1.pdb")); err != nil {
		t.Errorf("P1 model not written: %v", err)
	}
	meta, err := ReadMeta(dir, "P1")
	if err != nil {
		t.Fatalf("ReadMeta() error = %v", err)
	}
	if meta.Source != SourceESMFold || meta.SequenceLength != len("MKTCIPGG") {
		t.Errorf("meta = %+v, want esmfold source with sequence length 8", meta)
	}

	failed, err := os.ReadFile(cfg.FailedLog)
	if err != nil {
		t.Fatalf("reading failed log: %v", err)
	}
	if strings.TrimSpace(string(failed)) != "P3" {
		t.Errorf("failed log = %q, want P3", failed)
	}
}

func TestRetrieveModel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/AF001.pdb") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(samplePDB))
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := types.FoldConfig{ArchiveURL: ts.URL + "/record/12345/files", ModelsDir: dir}

	skipped, err := RetrieveModel(context.Background(), ts.Client(), "AF001", cfg, io.Discard)
	if err != nil {
		t.Fatalf("RetrieveModel() error = %v", err)
	}
	if skipped {
		t.Error("RetrieveModel() skipped fresh download")
	}

	data, err := os.ReadFile(filepath.Join(dir, "AF001.pdb"))
	if err != nil {
		t.Fatalf("reading model: %v", err)
	}
	if string(data) != samplePDB {
		t.Errorf("model content = %q", data)
	}

	meta, err := ReadMeta(dir, "AF001")
	if err != nil {
		t.Fatalf("ReadMeta() error = %v", err)
	}
	if meta.Source != SourceArchive || !strings.HasSuffix(meta.URL, "/AF001.pdb") {
		t.Errorf("meta = %+v, want archive source with model URL", meta)
	}

	// Second call skips.
	skipped, err = RetrieveModel(context.Background(), ts.Client(), "AF001", cfg, io.Discard)
	if err != nil {
		t.Fatalf("RetrieveModel() second call error = %v", err)
	}
	if !skipped {
		t.Error("RetrieveModel() did not skip existing model")
	}
}

func TestRetrieveBatchContinuesAfterFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "MISSING") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(samplePDB))
	}))
	defer ts.Close()

	cfg := types.FoldConfig{ArchiveURL: ts.URL, ModelsDir: t.TempDir()}

	var buf bytes.Buffer
	result := RetrieveBatch(context.Background(), ts.Client(), []string{"AF001", "MISSING", "AF002"}, cfg, &buf)
	if result.Predicted != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 downloaded, 1 failed", result)
	}
}
