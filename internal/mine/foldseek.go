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

const (
	// foldseekResult is the alignment TSV filename under the results directory.
	foldseekResult = "foldseek.tsv"

	// foldseekColumns is the --format-output column list the parser expects.
	foldseekColumns = "query,target,fident,alnlen,evalue,bits"
)

// FoldseekDetector runs foldseek easy-search of predicted models against
// the pacifastin template structures and parses the tabular output.
type FoldseekDetector struct {
	tool tool

	// ModelsDir is the directory of query PDB models.
	ModelsDir string
}

// NewFoldseekDetector creates a detector using the configured foldseek
// binary (default "foldseek") querying modelsDir.
func NewFoldseekDetector(cfg types.MiningConfig, modelsDir string) *FoldseekDetector {
	bin := cfg.FoldseekBin
	if bin == "" {
		bin = "foldseek"
	}
	return &FoldseekDetector{
		tool:      tool{bin: bin, exec: defaultExec},
		ModelsDir: modelsDir,
	}
}

// Name returns the detector name used in status output.
func (d *FoldseekDetector) Name() string { return "foldseek" }

// Detect runs foldseek easy-search and returns one hit per query model at
// or below the E-value cutoff. The sequence ID is the query filename with
// its extension stripped (models are named <sequence_id>.pdb).
func (d *FoldseekDetector) Detect(fastaPath string, cfg types.MiningConfig, w io.Writer) ([]Hit, error) {
	outPath := filepath.Join(cfg.ResultsDir, foldseekResult)
	tmpDir := filepath.Join(cfg.ResultsDir, "foldseek-tmp")

	args := []string{
		"easy-search",
		d.ModelsDir,
		cfg.TemplateDir,
		outPath,
		tmpDir,
		"--format-output", foldseekColumns,
		"-e", strconv.FormatFloat(cfg.EValueCutoff, 'g', -1, 64),
	}
	if err := d.tool.run(args, w); err != nil {
		return nil, err
	}

	f, err := os.Open(outPath)
	if err != nil {
		return nil, fmt.Errorf("opening foldseek result %s: %w", outPath, err)
	}
	defer f.Close()

	structHits, err := ParseFoldseekTSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", outPath, err)
	}

	// Keep the best alignment per query model.
	best := make(map[string]types.StructureHit)
	for _, h := range structHits {
		if h.EValue > cfg.EValueCutoff {
			continue
		}
		if prev, ok := best[h.Query]; !ok || h.EValue < prev.EValue {
			best[h.Query] = h
		}
	}

	hits := make([]Hit, 0, len(best))
	for query, h := range best {
		id := strings.TrimSuffix(query, filepath.Ext(query))
		hits = append(hits, Hit{SequenceID: id, EValue: h.EValue, BitScore: h.BitScore})
	}
	return hits, nil
}

// ParseFoldseekTSV parses foldseek tabular output with the column layout
// of foldseekColumns.
func ParseFoldseekTSV(r io.Reader) ([]types.StructureHit, error) {
	scanner := bufio.NewScanner(r)
	var hits []types.StructureHit
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: expected 6 columns, got %d", lineNo, len(fields))
		}

		fident, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad fident %q: %w", lineNo, fields[2], err)
		}
		alnlen, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad alnlen %q: %w", lineNo, fields[3], err)
		}
		evalue, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad evalue %q: %w", lineNo, fields[4], err)
		}
		bits, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad bits %q: %w", lineNo, fields[5], err)
		}

		hits = append(hits, types.StructureHit{
			Query:             fields[0],
			Target:            fields[1],
			FractionIdentical: fident,
			AlignmentLength:   alnlen,
			EValue:            evalue,
			BitScore:          bits,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading foldseek result: %w", err)
	}
	return hits, nil
}
