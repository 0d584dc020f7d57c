// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package atlas

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// readDetectionCSV reads the detection table (Sequence_ID, Method,
// Phylum) keyed by sequence ID.
func readDetectionCSV(path string) (map[string]types.Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening detection table %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty detection table", path)
	}

	out := make(map[string]types.Detection, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("%s row %d: expected 3 columns, got %d", path, i+2, len(row))
		}
		out[row[0]] = types.Detection{
			SequenceID: row[0],
			Method:     types.DetectionMethod(row[1]),
			Phylum:     row[2],
		}
	}
	return out, nil
}

// readMetadataCSV reads the CDS metadata table (File, Protein_ID,
// Locus_Tag, Organism, Taxonomy) keyed by protein ID.
func readMetadataCSV(path string) (map[string]types.CDSRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty metadata table", path)
	}

	out := make(map[string]types.CDSRecord, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 5 {
			return nil, fmt.Errorf("%s row %d: expected 5 columns, got %d", path, i+2, len(row))
		}
		out[row[1]] = types.CDSRecord{
			File:      row[0],
			ProteinID: row[1],
			LocusTag:  row[2],
			Organism:  row[3],
			Taxonomy:  row[4],
		}
	}
	return out, nil
}
