// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fasta

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `>P1 Pacifastin-like domain, Locusta migratoria
MKTCIPGG
TCAQRC
>P2
ACDEFGHIK

>P3 trailing record
M`

	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Parse() returned %d records, want 3", len(records))
	}

	if records[0].ID != "P1" {
		t.Errorf("records[0].ID = %q, want %q", records[0].ID, "P1")
	}
	if records[0].Description != "Pacifastin-like domain, Locusta migratoria" {
		t.Errorf("records[0].Description = %q", records[0].Description)
	}
	if records[0].Sequence != "MKTCIPGGTCAQRC" {
		t.Errorf("records[0].Sequence = %q, want concatenated lines", records[0].Sequence)
	}
	if records[1].Description != "" {
		t.Errorf("records[1].Description = %q, want empty", records[1].Description)
	}
	if records[2].Sequence != "M" {
		t.Errorf("records[2].Sequence = %q, want %q", records[2].Sequence, "M")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"sequence before header", "ACDEF\n>P1\nMK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	records, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Parse() returned %d records, want 0", len(records))
	}
}

func TestWriteWraps(t *testing.T) {
	long := strings.Repeat("A", 150)
	var buf bytes.Buffer
	err := Write(&buf, []Record{{ID: "X1", Description: "long", Sequence: long}})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != ">X1 long" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 sequence lines", len(lines))
	}
	if len(lines[1]) != 70 || len(lines[3]) != 10 {
		t.Errorf("wrap widths = %d, %d, %d", len(lines[1]), len(lines[2]), len(lines[3]))
	}
}

func TestRoundTrip(t *testing.T) {
	records := []Record{
		{ID: "A1", Description: "first", Sequence: "MKTCIPGGTCAQRC"},
		{ID: "B2", Sequence: strings.Repeat("CPK", 40)},
	}

	path := filepath.Join(t.TempDir(), "out.fasta")
	if err := WriteFile(path, records); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("round trip returned %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}
