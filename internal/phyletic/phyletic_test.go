// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package phyletic

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

func TestMetrics(t *testing.T) {
	obs := []Observation{
		// Compact / Arthropoda: 3 sequences, 2 species, 1 phylum.
		{SequenceID: "S1", Lineage: types.LineageCompact, Phylum: "Arthropoda", Species: "Locusta migratoria"},
		{SequenceID: "S2", Lineage: types.LineageCompact, Phylum: "Arthropoda", Species: "Locusta migratoria"},
		{SequenceID: "S3", Lineage: types.LineageCompact, Phylum: "Arthropoda", Species: "Penaeus monodon"},
		// Extended / Non-Arthropoda: 2 sequences, 2 species, 2 phyla.
		{SequenceID: "S4", Lineage: types.LineageExtended, Phylum: "Chordata", Species: "Danio rerio"},
		{SequenceID: "S5", Lineage: types.LineageExtended, Phylum: "Mollusca", Species: "Crassostrea gigas"},
		// Extended / Arthropoda: 1 sequence.
		{SequenceID: "S6", Lineage: types.LineageExtended, Phylum: "Arthropoda", Species: "Drosophila melanogaster"},
	}

	metrics := Metrics(obs)
	if len(metrics) != 3 {
		t.Fatalf("got %d strata, want 3", len(metrics))
	}

	// Sorted by lineage then supergroup: Compact-loop < Extended-loop.
	m0 := metrics[0]
	if m0.Lineage != types.LineageCompact || m0.Supergroup != types.SupergroupArthropoda {
		t.Fatalf("first stratum = %+v", m0)
	}
	if m0.Spread != 1 || m0.Sequences != 3 || m0.Species != 2 {
		t.Errorf("compact/arthropoda = %+v", m0)
	}
	if math.Abs(m0.Depth-1.5) > 1e-9 {
		t.Errorf("compact/arthropoda depth = %v, want 1.5", m0.Depth)
	}

	m2 := metrics[2]
	if m2.Lineage != types.LineageExtended || m2.Supergroup != types.SupergroupNonArthropoda {
		t.Fatalf("third stratum = %+v", m2)
	}
	if m2.Spread != 2 || m2.Sequences != 2 || m2.Species != 2 || m2.Depth != 1.0 {
		t.Errorf("extended/non-arthropoda = %+v", m2)
	}
}

func TestMetricsEmpty(t *testing.T) {
	if got := Metrics(nil); len(got) != 0 {
		t.Errorf("Metrics(nil) = %v, want empty", got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "taxonomy.csv")
	content := "Sequence_ID,Lineage,Phylum,Species\n" +
		"S1,Compact-loop,Arthropoda,Locusta migratoria\n" +
		"S2,Extended-loop,Chordata,Danio rerio\n"
	if err := os.WriteFile(inPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	obs, err := ReadObservationsCSV(inPath)
	if err != nil {
		t.Fatalf("ReadObservationsCSV() error = %v", err)
	}
	if len(obs) != 2 || obs[1].Species != "Danio rerio" {
		t.Errorf("observations = %+v", obs)
	}

	outPath := filepath.Join(dir, "metrics.csv")
	if err := WriteMetricsCSV(outPath, Metrics(obs)); err != nil {
		t.Fatalf("WriteMetricsCSV() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "Lineage,Supergroup,Si,Di,N_Seq,N_Species" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("got %d lines, want header + 2 strata", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Compact-loop,Arthropoda,1,1.0000,1,1") {
		t.Errorf("first stratum line = %q", lines[1])
	}
}

func TestReadObservationsCSVMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Sequence_ID,Lineage,Phylum,Species\nS1,Compact-loop\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadObservationsCSV(path); err == nil {
		t.Error("ReadObservationsCSV() accepted short row")
	}
}
