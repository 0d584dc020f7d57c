// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// hmmsearchTable is the per-target table filename hmmsearch writes into
// the results directory.
const hmmsearchTable = "hmmsearch.tbl"

// HMMERDetector runs hmmsearch with the pacifastin profile against a
// protein FASTA database and parses the --tblout table.
type HMMERDetector struct {
	tool tool
}

// NewHMMERDetector creates a detector using the configured hmmsearch
// binary (default "hmmsearch").
func NewHMMERDetector(cfg types.MiningConfig) *HMMERDetector {
	bin := cfg.HMMSearchBin
	if bin == "" {
		bin = "hmmsearch"
	}
	return &HMMERDetector{tool: tool{bin: bin, exec: defaultExec}}
}

// Name returns the detector name used in status output.
func (d *HMMERDetector) Name() string { return "hmmer" }

// Detect runs hmmsearch and returns the sequence IDs of all targets at or
// below the E-value cutoff.
func (d *HMMERDetector) Detect(fastaPath string, cfg types.MiningConfig, w io.Writer) ([]Hit, error) {
	tblPath := filepath.Join(cfg.ResultsDir, hmmsearchTable)
	args := []string{
		"--tblout", tblPath,
		"--noali",
		"-E", strconv.FormatFloat(cfg.EValueCutoff, 'g', -1, 64),
		cfg.ProfilePath,
		fastaPath,
	}
	if err := d.tool.run(args, w); err != nil {
		return nil, err
	}

	f, err := os.Open(tblPath)
	if err != nil {
		return nil, fmt.Errorf("opening hmmsearch table %s: %w", tblPath, err)
	}
	defer f.Close()

	seqHits, err := ParseHMMERTable(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", tblPath, err)
	}

	hits := make([]Hit, 0, len(seqHits))
	for _, h := range seqHits {
		if h.EValue > cfg.EValueCutoff {
			continue
		}
		hits = append(hits, Hit{SequenceID: h.Target, EValue: h.EValue, BitScore: h.BitScore})
	}
	return hits, nil
}

// ParseHMMERTable parses hmmsearch --tblout output. Comment lines start
// with '#'; data lines are whitespace-delimited with the target name in
// column 1, query name in column 3, full-sequence E-value in column 5 and
// score in column 6.
func ParseHMMERTable(r io.Reader) ([]types.SequenceHit, error) {
	scanner := bufio.NewScanner(r)
	var hits []types.SequenceHit
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("line %d: expected at least 6 columns, got %d", lineNo, len(fields))
		}

		evalue, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad E-value %q: %w", lineNo, fields[4], err)
		}
		score, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad score %q: %w", lineNo, fields[5], err)
		}

		hits = append(hits, types.SequenceHit{
			Target:   fields[0],
			Query:    fields[2],
			EValue:   evalue,
			BitScore: score,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hmmsearch table: %w", err)
	}
	return hits, nil
}
