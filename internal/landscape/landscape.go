// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package landscape embeds the pairwise structural RMSD matrix into a
// low-dimensional conformational space via classical multidimensional
// scaling and quantifies per-lineage structural dispersion.
package landscape

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const defaultComponents = 2

// symmetryTolerance bounds the allowed asymmetry of the input matrix;
// RMSD matrices from alignment tools can differ slightly across the
// diagonal.
const symmetryTolerance = 1e-6

// Point is one embedded structure.
type Point struct {
	SequenceID string
	Dim1       float64
	Dim2       float64
	Lineage    types.Lineage
}

// DispersionIndex is the mean distance to the lineage centroid in the
// embedded space.
type DispersionIndex struct {
	Lineage types.Lineage
	Index   float64
	N       int
}

// MDS performs classical (Torgerson) multidimensional scaling of the
// symmetric distance matrix d: double-center the squared distances and
// eigendecompose. Negative eigenvalues are clamped to zero.
func MDS(d *mat.SymDense, components int) (*mat.Dense, error) {
	n := d.SymmetricDim()
	if components <= 0 {
		components = defaultComponents
	}
	if n < components {
		return nil, fmt.Errorf("matrix of size %d cannot embed into %d components", n, components)
	}

	// B = -1/2 J D^2 J, with J the centering matrix.
	sq := make([][]float64, n)
	rowMean := make([]float64, n)
	grand := 0.0
	for i := 0; i < n; i++ {
		sq[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			v := d.At(i, j)
			sq[i][j] = v * v
			rowMean[i] += sq[i][j]
		}
		rowMean[i] /= float64(n)
		grand += rowMean[i]
	}
	grand /= float64(n)

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -0.5*(sq[i][j]-rowMean[i]-rowMean[j]+grand))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(b, true) {
		return nil, fmt.Errorf("eigendecomposition of the centered matrix failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues come back ascending; the embedding uses the largest.
	coords := mat.NewDense(n, components, nil)
	for c := 0; c < components; c++ {
		idx := n - 1 - c
		ev := values[idx]
		if ev < 0 {
			ev = 0
		}
		scale := math.Sqrt(ev)
		for i := 0; i < n; i++ {
			coords.Set(i, c, vectors.At(i, idx)*scale)
		}
	}
	return coords, nil
}

// Embed runs the two-component MDS and joins lineage labels. IDs missing
// from lineageByID are labeled Unclassified.
func Embed(ids []string, d *mat.SymDense, lineageByID map[string]types.Lineage, components int) ([]Point, error) {
	if len(ids) != d.SymmetricDim() {
		return nil, fmt.Errorf("%d IDs for a %d-row matrix", len(ids), d.SymmetricDim())
	}
	coords, err := MDS(d, components)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(ids))
	for i, id := range ids {
		lineage, ok := lineageByID[id]
		if !ok {
			lineage = types.LineageUnclassified
		}
		points[i] = Point{
			SequenceID: id,
			Dim1:       coords.At(i, 0),
			Dim2:       coords.At(i, 1),
			Lineage:    lineage,
		}
	}
	return points, nil
}

// Dispersion computes the structural dispersion index of each lineage:
// the mean Euclidean distance of its points to their centroid. Results
// are sorted by lineage.
func Dispersion(points []Point) []DispersionIndex {
	byLineage := make(map[types.Lineage][]Point)
	for _, p := range points {
		byLineage[p.Lineage] = append(byLineage[p.Lineage], p)
	}

	var out []DispersionIndex
	for lineage, subset := range byLineage {
		var cx, cy float64
		for _, p := range subset {
			cx += p.Dim1
			cy += p.Dim2
		}
		n := float64(len(subset))
		cx /= n
		cy /= n

		var sum float64
		for _, p := range subset {
			sum += math.Hypot(p.Dim1-cx, p.Dim2-cy)
		}
		out = append(out, DispersionIndex{Lineage: lineage, Index: sum / n, N: len(subset)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lineage < out[j].Lineage })
	return out
}

// ReadRMSDMatrixCSV reads a labeled all-vs-all RMSD matrix: header row of
// sequence IDs, one labeled row per structure.
func ReadRMSDMatrixCSV(path string) ([]string, *mat.SymDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening RMSD matrix %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%s: no matrix rows", path)
	}

	ids := rows[0][1:]
	n := len(ids)
	if len(rows)-1 != n {
		return nil, nil, fmt.Errorf("%s: %d rows for %d columns", path, len(rows)-1, n)
	}

	d := mat.NewSymDense(n, nil)
	for i, row := range rows[1:] {
		if len(row) != n+1 {
			return nil, nil, fmt.Errorf("%s row %d: expected %d cells, got %d", path, i+2, n+1, len(row))
		}
		if row[0] != ids[i] {
			return nil, nil, fmt.Errorf("%s row %d: label %q does not match column %q", path, i+2, row[0], ids[i])
		}
		for j := 1; j <= n; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d: bad distance %q: %w", path, i+2, row[j], err)
			}
			if j-1 < i {
				if math.Abs(v-d.At(i, j-1)) > symmetryTolerance {
					return nil, nil, fmt.Errorf("%s: matrix not symmetric at (%d,%d)", path, i+1, j)
				}
				continue
			}
			d.SetSym(i, j-1, v)
		}
	}
	return ids, d, nil
}

// ReadMetadataCSV reads lineage labels from a metadata file with
// Sequence_ID and Lineage columns.
func ReadMetadataCSV(path string) (map[string]types.Lineage, error) {
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no metadata rows", path)
	}

	idCol, lineageCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "Sequence_ID":
			idCol = i
		case "Lineage":
			lineageCol = i
		}
	}
	if idCol < 0 || lineageCol < 0 {
		return nil, fmt.Errorf("%s: missing Sequence_ID or Lineage column", path)
	}

	out := make(map[string]types.Lineage, len(rows)-1)
	for _, row := range rows[1:] {
		out[row[idCol]] = types.Lineage(row[lineageCol])
	}
	return out, nil
}

// WriteCoordinatesCSV writes the embedded coordinates with lineage labels.
func WriteCoordinatesCSV(path string, points []Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating coordinates CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Sequence_ID", "Dim1", "Dim2", "Lineage"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range points {
		row := []string{
			p.SequenceID,
			strconv.FormatFloat(p.Dim1, 'f', 6, 64),
			strconv.FormatFloat(p.Dim2, 'f', 6, 64),
			string(p.Lineage),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", p.SequenceID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDispersionCSV writes the per-lineage dispersion summary.
func WriteDispersionCSV(path string, indices []DispersionIndex) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dispersion CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Lineage", "Dispersion_Index", "N"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, di := range indices {
		row := []string{string(di.Lineage), strconv.FormatFloat(di.Index, 'f', 6, 64), strconv.Itoa(di.N)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", di.Lineage, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
