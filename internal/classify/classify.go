// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns pacifastin-like domains to structural lineages
// from the length of the N-terminal C1-C2 loop.
package classify

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Architecture windows on the C1-C2 loop length.
const (
	compactMin  = 9
	compactMax  = 12
	extendedMin = 13
	extendedMax = 20
)

// scaffoldCysteines is the cysteine count of the canonical pacifastin
// scaffold. Sequences with fewer cysteines are rejected before
// classification.
const scaffoldCysteines = 6

// loopPattern matches the first C...C interval of the domain.
var loopPattern = regexp.MustCompile(`C([^C]+)C`)

// Summary holds per-lineage counts from a classification run.
type Summary struct {
	Compact      int
	Extended     int
	Unclassified int
	Rejected     int
}

// Total returns the number of sequences processed.
func (s Summary) Total() int {
	return s.Compact + s.Extended + s.Unclassified + s.Rejected
}

// LoopSequence extracts the C1-C2 interval of seq: the residues between
// the first two cysteines. ok is false when the sequence has no such
// interval.
func LoopSequence(seq string) (loop string, ok bool) {
	m := loopPattern.FindStringSubmatch(seq)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ClassifyLength maps a C1-C2 loop length to its structural lineage.
func ClassifyLength(n int) types.Lineage {
	switch {
	case n >= compactMin && n <= compactMax:
		return types.LineageCompact
	case n >= extendedMin && n <= extendedMax:
		return types.LineageExtended
	default:
		return types.LineageUnclassified
	}
}

// HasCanonicalScaffold reports whether seq carries at least the six
// cysteines of the canonical pacifastin scaffold.
func HasCanonicalScaffold(seq string) bool {
	return strings.Count(seq, "C") >= scaffoldCysteines
}

// Classify labels one domain sequence. ok is false when the sequence does
// not conform to the canonical scaffold or has no C1-C2 interval.
func Classify(rec fasta.Record) (types.Classification, bool) {
	if !HasCanonicalScaffold(rec.Sequence) {
		return types.Classification{}, false
	}
	loop, found := LoopSequence(rec.Sequence)
	if !found {
		return types.Classification{}, false
	}
	return types.Classification{
		SequenceID:   rec.ID,
		LoopLength:   len(loop),
		LoopSequence: loop,
		Lineage:      ClassifyLength(len(loop)),
	}, true
}

// ClassifyBatch labels every record, printing rejected sequences to w and
// returning the classified set with a summary.
func ClassifyBatch(records []fasta.Record, w io.Writer) ([]types.Classification, Summary) {
	var out []types.Classification
	var summary Summary

	for _, rec := range records {
		c, ok := Classify(rec)
		if !ok {
			fmt.Fprintf(w, "rejected: %s (non-canonical scaffold)\n", rec.ID)
			summary.Rejected++
			continue
		}
		switch c.Lineage {
		case types.LineageCompact:
			summary.Compact++
		case types.LineageExtended:
			summary.Extended++
		default:
			summary.Unclassified++
		}
		out = append(out, c)
	}

	fmt.Fprintf(w, "\nClassification summary: %d compact, %d extended, %d unclassified, %d rejected (total: %d)\n",
		summary.Compact, summary.Extended, summary.Unclassified, summary.Rejected, summary.Total())
	return out, summary
}

// classificationHeader is the column layout of the classification CSV.
var classificationHeader = []string{"Sequence_ID", "C1_C2_Length", "Loop_Sequence", "Lineage"}

// WriteCSV writes classifications to a CSV file.
func WriteCSV(path string, classifications []types.Classification) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating classification CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(classificationHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, c := range classifications {
		row := []string{c.SequenceID, strconv.Itoa(c.LoopLength), c.LoopSequence, string(c.Lineage)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", c.SequenceID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a classification CSV written by WriteCSV.
func ReadCSV(path string) ([]types.Classification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening classification CSV %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty classification file", path)
	}

	var out []types.Classification
	for i, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("%s row %d: expected 4 columns, got %d", path, i+2, len(row))
		}
		n, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad loop length %q: %w", path, i+2, row[1], err)
		}
		out = append(out, types.Classification{
			SequenceID:   row[0],
			LoopLength:   n,
			LoopSequence: row[2],
			Lineage:      types.Lineage(row[3]),
		})
	}
	return out, nil
}
