// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fasta reads and writes FASTA formatted sequence data.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is a single FASTA record. ID is the first whitespace-delimited
// token of the header; Description is the remainder.
type Record struct {
	ID          string
	Description string
	Sequence    string
}

// Parse reads FASTA records from r. Sequence lines belonging to one header
// are concatenated; blank lines are ignored. Sequence data before the
// first header is an error.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	var current *Record
	var seq strings.Builder
	lineNo := 0

	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			records = append(records, *current)
			seq.Reset()
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			header := strings.TrimSpace(line[1:])
			id, desc, _ := strings.Cut(header, " ")
			current = &Record{ID: id, Description: strings.TrimSpace(desc)}
		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: sequence data before first header", lineNo)
			}
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading FASTA: %w", err)
	}
	flush()
	return records, nil
}

// ParseFile reads all FASTA records from the file at path.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FASTA %s: %w", path, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// lineWidth is the wrap width for sequence lines on output.
const lineWidth = 70

// Write writes records to w in FASTA format, wrapping sequences at 70
// columns.
func Write(w io.Writer, records []Record) error {
	for _, rec := range records {
		header := rec.ID
		if rec.Description != "" {
			header += " " + rec.Description
		}
		if _, err := fmt.Fprintf(w, ">%s\n", header); err != nil {
			return err
		}
		for i := 0; i < len(rec.Sequence); i += lineWidth {
			end := i + lineWidth
			if end > len(rec.Sequence) {
				end = len(rec.Sequence)
			}
			if _, err := fmt.Fprintln(w, rec.Sequence[i:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile writes records to the file at path.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating FASTA %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := Write(bw, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return bw.Flush()
}
