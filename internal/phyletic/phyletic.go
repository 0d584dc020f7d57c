// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phyletic computes the evolutionary spread and depth metrics of
// pacifastin lineages, stratified by supergroup.
package phyletic

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Observation is one taxonomically validated homolog.
type Observation struct {
	SequenceID string
	Lineage    types.Lineage
	Phylum     string
	Species    string
}

// Metrics computes per-stratum spread (S_i, unique phyla) and depth (D_i,
// sequences per species) for every (lineage, supergroup) combination
// present in the observations. Strata are sorted by lineage then
// supergroup.
func Metrics(observations []Observation) []types.StratumMetrics {
	type key struct {
		lineage    types.Lineage
		supergroup types.Supergroup
	}
	type acc struct {
		sequences int
		phyla     map[string]struct{}
		species   map[string]struct{}
	}

	strata := make(map[key]*acc)
	for _, obs := range observations {
		k := key{obs.Lineage, types.SupergroupOf(obs.Phylum)}
		a := strata[k]
		if a == nil {
			a = &acc{phyla: make(map[string]struct{}), species: make(map[string]struct{})}
			strata[k] = a
		}
		a.sequences++
		a.phyla[obs.Phylum] = struct{}{}
		a.species[obs.Species] = struct{}{}
	}

	var out []types.StratumMetrics
	for k, a := range strata {
		m := types.StratumMetrics{
			Lineage:    k.lineage,
			Supergroup: k.supergroup,
			Spread:     len(a.phyla),
			Sequences:  a.sequences,
			Species:    len(a.species),
		}
		if m.Species > 0 {
			m.Depth = float64(m.Sequences) / float64(m.Species)
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Lineage != out[j].Lineage {
			return out[i].Lineage < out[j].Lineage
		}
		return out[i].Supergroup < out[j].Supergroup
	})
	return out
}

// ReadObservationsCSV reads the validated taxonomy file with columns
// Sequence_ID, Lineage, Phylum, Species.
func ReadObservationsCSV(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening taxonomy CSV %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no observation rows", path)
	}

	var out []Observation
	for i, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("%s row %d: expected 4 columns, got %d", path, i+2, len(row))
		}
		out = append(out, Observation{
			SequenceID: row[0],
			Lineage:    types.Lineage(row[1]),
			Phylum:     row[2],
			Species:    row[3],
		})
	}
	return out, nil
}

// WriteMetricsCSV writes the stratified metrics table.
func WriteMetricsCSV(path string, metrics []types.StratumMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Lineage", "Supergroup", "Si", "Di", "N_Seq", "N_Species"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			string(m.Lineage),
			string(m.Supergroup),
			strconv.Itoa(m.Spread),
			strconv.FormatFloat(m.Depth, 'f', 4, 64),
			strconv.Itoa(m.Sequences),
			strconv.Itoa(m.Species),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s/%s: %w", m.Lineage, m.Supergroup, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
