// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogoMatrixConservedColumn(t *testing.T) {
	aligned := []string{
		"CAK",
		"CAR",
		"CGK",
		"CGR",
	}

	profiles, err := LogoMatrix(aligned)
	if err != nil {
		t.Fatalf("LogoMatrix() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("got %d positions, want 3", len(profiles))
	}

	// Position 1 is fully conserved cysteine: maximum information.
	p1 := profiles[0]
	if p1.Probabilities['C'] != 1.0 {
		t.Errorf("P(C) at position 1 = %v, want 1.0", p1.Probabilities['C'])
	}
	wantBits := math.Log2(20)
	if math.Abs(p1.InformationBits-wantBits) > 1e-9 {
		t.Errorf("information at position 1 = %v, want %v", p1.InformationBits, wantBits)
	}

	// Position 2 is a 50/50 split: one bit of entropy.
	p2 := profiles[1]
	if p2.Probabilities['A'] != 0.5 || p2.Probabilities['G'] != 0.5 {
		t.Errorf("position 2 probabilities = %v", p2.Probabilities)
	}
	if math.Abs(p2.InformationBits-(wantBits-1)) > 1e-9 {
		t.Errorf("information at position 2 = %v, want %v", p2.InformationBits, wantBits-1)
	}
}

func TestLogoMatrixGapsExcluded(t *testing.T) {
	profiles, err := LogoMatrix([]string{"K-", "K-", "-A"})
	if err != nil {
		t.Fatalf("LogoMatrix() error = %v", err)
	}
	if profiles[0].Probabilities['K'] != 1.0 {
		t.Errorf("P(K) = %v, want 1.0 with gap excluded", profiles[0].Probabilities['K'])
	}
	if profiles[1].Probabilities['A'] != 1.0 {
		t.Errorf("P(A) = %v, want 1.0 with gaps excluded", profiles[1].Probabilities['A'])
	}
}

func TestLogoMatrixErrors(t *testing.T) {
	if _, err := LogoMatrix(nil); err == nil {
		t.Error("LogoMatrix(nil) succeeded")
	}
	if _, err := LogoMatrix([]string{"AC", "A"}); err == nil {
		t.Error("LogoMatrix() accepted ragged alignment")
	}
	if _, err := LogoMatrix([]string{"AZ"}); err == nil {
		t.Error("LogoMatrix() accepted unknown residue")
	}
}

func TestReadMSACSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msa.csv")
	content := "Pos1,Pos2,Pos3\nC,A,K\nC,G,R\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	aligned, err := ReadMSACSV(path)
	if err != nil {
		t.Fatalf("ReadMSACSV() error = %v", err)
	}
	if len(aligned) != 2 || aligned[0] != "CAK" || aligned[1] != "CGR" {
		t.Errorf("aligned = %v", aligned)
	}
}

func TestWriteLogoCSV(t *testing.T) {
	profiles, err := LogoMatrix([]string{"CK", "CR"})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "logo.csv")
	if err := WriteLogoCSV(path, profiles); err != nil {
		t.Fatalf("WriteLogoCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 positions", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Position,A,C,D") || !strings.HasSuffix(lines[0], "Information_Bits") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestP1Landscape(t *testing.T) {
	obs := []P1Observation{
		{Phylum: "Arthropoda", Residue: "K"},
		{Phylum: "Arthropoda", Residue: "K"},
		{Phylum: "Arthropoda", Residue: "R"},
		{Phylum: "Chordata", Residue: "K"},
		{Phylum: "Chordata", Residue: "L"},
		{Phylum: "Chordata", Residue: "L"},
	}

	cells := P1Landscape(obs)
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}

	byKey := make(map[string]P1Cell)
	for _, c := range cells {
		byKey[c.Phylum+"/"+c.Residue] = c
	}

	ak := byKey["Arthropoda/K"]
	if ak.Count != 2 || math.Abs(ak.Frequency-2.0/3.0) > 1e-9 {
		t.Errorf("Arthropoda/K = %+v", ak)
	}
	// K peaks in Arthropoda, so its dominance there is 1.
	if math.Abs(ak.RelativeDominance-1.0) > 1e-9 {
		t.Errorf("Arthropoda/K dominance = %v, want 1", ak.RelativeDominance)
	}
	// Chordata uses K at 1/3, half the Arthropoda rate.
	ck := byKey["Chordata/K"]
	if math.Abs(ck.RelativeDominance-0.5) > 1e-9 {
		t.Errorf("Chordata/K dominance = %v, want 0.5", ck.RelativeDominance)
	}
	// L occurs only in Chordata: dominance 1 by construction.
	cl := byKey["Chordata/L"]
	if math.Abs(cl.RelativeDominance-1.0) > 1e-9 {
		t.Errorf("Chordata/L dominance = %v, want 1", cl.RelativeDominance)
	}

	// Sorted by phylum then residue.
	if cells[0].Phylum != "Arthropoda" || cells[0].Residue != "K" {
		t.Errorf("first cell = %+v", cells[0])
	}
}

func TestP1CSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	obsPath := filepath.Join(dir, "p1.csv")
	content := "Lineage,Phylum,P1_Residue\nCompact-loop,Arthropoda,K\nExtended-loop,Chordata,L\n"
	if err := os.WriteFile(obsPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	obs, err := ReadP1CSV(obsPath)
	if err != nil {
		t.Fatalf("ReadP1CSV() error = %v", err)
	}
	if len(obs) != 2 || obs[0].Phylum != "Arthropoda" || obs[1].Residue != "L" {
		t.Errorf("observations = %+v", obs)
	}

	outPath := filepath.Join(dir, "landscape.csv")
	if err := WriteP1CSV(outPath, P1Landscape(obs)); err != nil {
		t.Fatalf("WriteP1CSV() error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Phylum,P1_Residue,Count,Frequency,Relative_Dominance") {
		t.Errorf("header line = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}
