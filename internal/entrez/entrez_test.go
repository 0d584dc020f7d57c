// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const sampleRecord = "LOCUS       AB123456  420 bp\nACCESSION   AB123456\n//\n"

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := efetchBase
	efetchBase = ts.URL
	t.Cleanup(func() { efetchBase = old })
	return ts
}

func TestFetchRecord(t *testing.T) {
	var gotQuery string
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleRecord))
	})

	dir := t.TempDir()
	cfg := types.EntrezConfig{
		GenBankDir: dir,
		APIKey:     "nk_test",
	}
	cfg.UserAgent = "pacifastin-atlas/test"

	var buf bytes.Buffer
	skipped, err := FetchRecord(context.Background(), ts.Client(), "AB123456", cfg, &buf)
	if err != nil {
		t.Fatalf("FetchRecord() error = %v", err)
	}
	if skipped {
		t.Error("FetchRecord() skipped fresh download")
	}

	data, err := os.ReadFile(filepath.Join(dir, "AB123456.gb"))
	if err != nil {
		t.Fatalf("reading downloaded record: %v", err)
	}
	if string(data) != sampleRecord {
		t.Errorf("downloaded content = %q", data)
	}

	for _, param := range []string{"db=nuccore", "id=AB123456", "rettype=gb", "api_key=nk_test"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q missing %q", gotQuery, param)
		}
	}
}

func TestFetchRecordSkipsExisting(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server hit despite existing file")
	})

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "AB123456.gb"), []byte(sampleRecord), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	skipped, err := FetchRecord(context.Background(), ts.Client(), "AB123456", types.EntrezConfig{GenBankDir: dir}, &buf)
	if err != nil {
		t.Fatalf("FetchRecord() error = %v", err)
	}
	if !skipped {
		t.Error("FetchRecord() did not skip existing file")
	}
}

func TestFetchRecordHTTPError(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := FetchRecord(context.Background(), ts.Client(), "NOPE1", types.EntrezConfig{GenBankDir: t.TempDir()}, new(bytes.Buffer))
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("FetchRecord() error = %v, want HTTP 404 error", err)
	}
}

func TestFetchBatch(t *testing.T) {
	calls := 0
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if strings.Contains(r.URL.RawQuery, "BAD") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(sampleRecord))
	})

	dir := t.TempDir()
	// Pre-existing record for the skip path.
	if err := os.WriteFile(filepath.Join(dir, "OLD1.gb"), []byte(sampleRecord), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result := FetchBatch(context.Background(), ts.Client(),
		[]string{"NEW1", "OLD1", "BAD1"}, types.EntrezConfig{GenBankDir: dir}, &buf)

	if result.Downloaded != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 downloaded, 1 skipped, 1 failed", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 (skip must not hit the network)", calls)
	}
	if !strings.Contains(buf.String(), "Batch summary: 1 downloaded, 1 skipped, 1 failed") {
		t.Errorf("summary line missing:\n%s", buf.String())
	}
}
