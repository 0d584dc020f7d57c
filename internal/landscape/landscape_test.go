// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package landscape

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// planarDistances builds the symmetric distance matrix of a known 2D
// configuration so the embedding can be checked against ground truth.
func planarDistances(points [][2]float64) *mat.SymDense {
	n := len(points)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dist := math.Hypot(points[i][0]-points[j][0], points[i][1]-points[j][1])
			d.SetSym(i, j, dist)
		}
	}
	return d
}

func TestMDSPreservesDistances(t *testing.T) {
	truth := [][2]float64{{0, 0}, {4, 0}, {0, 3}, {4, 3}}
	d := planarDistances(truth)

	coords, err := MDS(d, 2)
	if err != nil {
		t.Fatalf("MDS() error = %v", err)
	}

	// The embedding is unique up to rotation and reflection, so compare
	// pairwise distances rather than coordinates.
	for i := 0; i < len(truth); i++ {
		for j := i + 1; j < len(truth); j++ {
			got := math.Hypot(coords.At(i, 0)-coords.At(j, 0), coords.At(i, 1)-coords.At(j, 1))
			want := d.At(i, j)
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("distance(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestMDSTooFewPoints(t *testing.T) {
	d := mat.NewSymDense(1, nil)
	if _, err := MDS(d, 2); err == nil {
		t.Error("MDS() accepted 1x1 matrix for 2 components")
	}
}

func TestEmbed(t *testing.T) {
	truth := [][2]float64{{0, 0}, {1, 0}, {10, 0}, {11, 0}}
	d := planarDistances(truth)
	ids := []string{"A1", "A2", "B1", "B2"}
	lineages := map[string]types.Lineage{
		"A1": types.LineageCompact,
		"A2": types.LineageCompact,
		"B1": types.LineageExtended,
		// B2 unlabeled on purpose.
	}

	points, err := Embed(ids, d, lineages, 2)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	if points[0].Lineage != types.LineageCompact {
		t.Errorf("A1 lineage = %q", points[0].Lineage)
	}
	if points[3].Lineage != types.LineageUnclassified {
		t.Errorf("unlabeled point lineage = %q, want unclassified", points[3].Lineage)
	}

	// A1/A2 sit close together and far from B1/B2 in the embedding.
	near := math.Hypot(points[0].Dim1-points[1].Dim1, points[0].Dim2-points[1].Dim2)
	far := math.Hypot(points[0].Dim1-points[2].Dim1, points[0].Dim2-points[2].Dim2)
	if near >= far {
		t.Errorf("embedded near distance %v not smaller than far distance %v", near, far)
	}
}

func TestEmbedIDMismatch(t *testing.T) {
	d := mat.NewSymDense(2, nil)
	if _, err := Embed([]string{"only-one"}, d, nil, 2); err == nil {
		t.Error("Embed() accepted mismatched IDs")
	}
}

func TestDispersion(t *testing.T) {
	points := []Point{
		// Compact cluster around the origin: all 1 away from centroid.
		{SequenceID: "C1", Dim1: 1, Dim2: 0, Lineage: types.LineageCompact},
		{SequenceID: "C2", Dim1: -1, Dim2: 0, Lineage: types.LineageCompact},
		// Extended cluster, twice as spread.
		{SequenceID: "E1", Dim1: 2, Dim2: 5, Lineage: types.LineageExtended},
		{SequenceID: "E2", Dim1: -2, Dim2: 5, Lineage: types.LineageExtended},
	}

	indices := Dispersion(points)
	if len(indices) != 2 {
		t.Fatalf("got %d indices, want 2", len(indices))
	}
	if indices[0].Lineage != types.LineageCompact || math.Abs(indices[0].Index-1.0) > 1e-9 {
		t.Errorf("compact dispersion = %+v, want index 1", indices[0])
	}
	if indices[1].Lineage != types.LineageExtended || math.Abs(indices[1].Index-2.0) > 1e-9 {
		t.Errorf("extended dispersion = %+v, want index 2", indices[1])
	}
	if indices[0].N != 2 || indices[1].N != 2 {
		t.Errorf("counts = %+v", indices)
	}
}

func TestReadRMSDMatrixCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmsd.csv")
	content := ",S1,S2,S3\n" +
		"S1,0.0,1.5,2.5\n" +
		"S2,1.5,0.0,3.0\n" +
		"S3,2.5,3.0,0.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, d, err := ReadRMSDMatrixCSV(path)
	if err != nil {
		t.Fatalf("ReadRMSDMatrixCSV() error = %v", err)
	}
	if len(ids) != 3 || ids[2] != "S3" {
		t.Errorf("ids = %v", ids)
	}
	if d.At(0, 1) != 1.5 || d.At(2, 1) != 3.0 {
		t.Errorf("matrix values wrong: %v", mat.Formatted(d))
	}
}

func TestReadRMSDMatrixCSVAsymmetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := ",S1,S2\n" +
		"S1,0.0,1.5\n" +
		"S2,9.9,0.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadRMSDMatrixCSV(path); err == nil || !strings.Contains(err.Error(), "not symmetric") {
		t.Errorf("error = %v, want symmetry violation", err)
	}
}

func TestReadMetadataCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.csv")
	content := "Sequence_ID,Organism,Lineage\nS1,Locusta migratoria,Compact-loop\nS2,Danio rerio,Extended-loop\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lineages, err := ReadMetadataCSV(path)
	if err != nil {
		t.Fatalf("ReadMetadataCSV() error = %v", err)
	}
	if lineages["S1"] != types.LineageCompact || lineages["S2"] != types.LineageExtended {
		t.Errorf("lineages = %v", lineages)
	}
}

func TestWriteCoordinatesCSV(t *testing.T) {
	dir := t.TempDir()
	points := []Point{
		{SequenceID: "S1", Dim1: 0.5, Dim2: -1.25, Lineage: types.LineageCompact},
	}

	coordPath := filepath.Join(dir, "coords.csv")
	if err := WriteCoordinatesCSV(coordPath, points); err != nil {
		t.Fatalf("WriteCoordinatesCSV() error = %v", err)
	}
	data, err := os.ReadFile(coordPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "Sequence_ID,Dim1,Dim2,Lineage" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "S1,0.500000,-1.250000,Compact-loop") {
		t.Errorf("row = %q", lines[1])
	}

	dispPath := filepath.Join(dir, "dispersion.csv")
	if err := WriteDispersionCSV(dispPath, Dispersion(points)); err != nil {
		t.Fatalf("WriteDispersionCSV() error = %v", err)
	}
}
