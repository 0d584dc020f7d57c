// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile computes domain-profile statistics for classified
// homolog sets: per-position residue probabilities with information
// content for sequence logos, and the P1 reactive-site specificity
// landscape.
package profile

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Alphabet is the 20-letter amino acid alphabet, in the conventional
// single-letter order.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// Gap is the alignment gap character. Gap cells are excluded from
// per-position probability denominators.
const Gap = '-'

// PositionProfile holds the residue distribution of one alignment column.
type PositionProfile struct {
	// Position is the 1-based alignment column.
	Position int

	// Probabilities maps each alphabet residue to its frequency among the
	// non-gap residues of the column.
	Probabilities map[byte]float64

	// InformationBits is the Shannon information content of the column,
	// log2(20) minus the column entropy.
	InformationBits float64
}

// LogoMatrix computes per-position residue probabilities and information
// content from a cysteine-anchored alignment. All rows must have equal
// length.
func LogoMatrix(aligned []string) ([]PositionProfile, error) {
	if len(aligned) == 0 {
		return nil, fmt.Errorf("empty alignment")
	}
	width := len(aligned[0])
	for i, row := range aligned {
		if len(row) != width {
			return nil, fmt.Errorf("alignment row %d has length %d, want %d", i+1, len(row), width)
		}
	}

	maxBits := math.Log2(float64(len(Alphabet)))
	profiles := make([]PositionProfile, 0, width)

	for pos := 0; pos < width; pos++ {
		counts := make(map[byte]int)
		total := 0
		for _, row := range aligned {
			r := row[pos]
			if r == Gap {
				continue
			}
			if !strings.ContainsRune(Alphabet, rune(r)) {
				return nil, fmt.Errorf("position %d: unknown residue %q", pos+1, string(r))
			}
			counts[r]++
			total++
		}

		p := PositionProfile{Position: pos + 1, Probabilities: make(map[byte]float64, len(Alphabet))}
		entropy := 0.0
		for i := 0; i < len(Alphabet); i++ {
			r := Alphabet[i]
			var freq float64
			if total > 0 {
				freq = float64(counts[r]) / float64(total)
			}
			p.Probabilities[r] = freq
			if freq > 0 {
				entropy -= freq * math.Log2(freq)
			}
		}
		if total > 0 {
			p.InformationBits = maxBits - entropy
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// ReadMSACSV reads an anchored alignment matrix: one sequence per row, one
// residue per cell. A non-residue first row is treated as a header and
// skipped.
func ReadMSACSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MSA %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var aligned []string
	for i, row := range rows {
		var b strings.Builder
		ok := true
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if len(cell) != 1 {
				ok = false
				break
			}
			b.WriteString(cell)
		}
		if !ok {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("%s row %d: cells must hold single residues", path, i+1)
		}
		aligned = append(aligned, b.String())
	}
	if len(aligned) == 0 {
		return nil, fmt.Errorf("%s: no alignment rows", path)
	}
	return aligned, nil
}

// WriteLogoCSV writes the logo matrix: one row per alignment position with
// the 20 residue probabilities and the information content.
func WriteLogoCSV(path string, profiles []PositionProfile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating logo CSV %s: %w", path, err)
	}
	defer f.Close()

	header := []string{"Position"}
	for i := 0; i < len(Alphabet); i++ {
		header = append(header, string(Alphabet[i]))
	}
	header = append(header, "Information_Bits")

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range profiles {
		row := []string{strconv.Itoa(p.Position)}
		for i := 0; i < len(Alphabet); i++ {
			row = append(row, formatFloat(p.Probabilities[Alphabet[i]]))
		}
		row = append(row, formatFloat(p.InformationBits))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for position %d: %w", p.Position, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// P1Observation is one labeled P1 reactive-site residue.
type P1Observation struct {
	Lineage types.Lineage
	Phylum  string
	Residue string
}

// P1Cell is one (phylum, residue) point of the specificity landscape.
type P1Cell struct {
	Phylum  string
	Residue string
	Count   int

	// Frequency is the residue's share of the phylum's observations.
	Frequency float64

	// RelativeDominance is the frequency scaled by the maximum frequency
	// of the same residue across phyla.
	RelativeDominance float64
}

// P1Landscape computes per-phylum P1 residue frequencies and their
// row-scaled dominance. Cells are sorted by phylum then residue.
func P1Landscape(observations []P1Observation) []P1Cell {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	for _, obs := range observations {
		if counts[obs.Phylum] == nil {
			counts[obs.Phylum] = make(map[string]int)
		}
		counts[obs.Phylum][obs.Residue]++
		totals[obs.Phylum]++
	}

	var cells []P1Cell
	maxFreq := make(map[string]float64)
	for phylum, byResidue := range counts {
		for residue, n := range byResidue {
			freq := float64(n) / float64(totals[phylum])
			cells = append(cells, P1Cell{
				Phylum:    phylum,
				Residue:   residue,
				Count:     n,
				Frequency: freq,
			})
			if freq > maxFreq[residue] {
				maxFreq[residue] = freq
			}
		}
	}

	for i := range cells {
		cells[i].RelativeDominance = cells[i].Frequency / maxFreq[cells[i].Residue]
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Phylum != cells[j].Phylum {
			return cells[i].Phylum < cells[j].Phylum
		}
		return cells[i].Residue < cells[j].Residue
	})
	return cells
}

// ReadP1CSV reads the P1 observation file with columns Lineage, Phylum,
// P1_Residue.
func ReadP1CSV(path string) ([]P1Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening P1 observations %s: %w", path, err)
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

	var out []P1Observation
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("%s row %d: expected 3 columns, got %d", path, i+2, len(row))
		}
		out = append(out, P1Observation{
			Lineage: types.Lineage(row[0]),
			Phylum:  row[1],
			Residue: row[2],
		})
	}
	return out, nil
}

// WriteP1CSV writes the specificity landscape table.
func WriteP1CSV(path string, cells []P1Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating P1 landscape CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Phylum", "P1_Residue", "Count", "Frequency", "Relative_Dominance"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, c := range cells {
		row := []string{c.Phylum, c.Residue, strconv.Itoa(c.Count), formatFloat(c.Frequency), formatFloat(c.RelativeDominance)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s/%s: %w", c.Phylum, c.Residue, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
