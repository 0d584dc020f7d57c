// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Detector finds pacifastin homolog candidates with one search method.
// HMMERDetector and FoldseekDetector implement it.
type Detector interface {
	Name() string
	Detect(fastaPath string, cfg types.MiningConfig, w io.Writer) ([]Hit, error)
}

// Hit is one homolog candidate from a single detector.
type Hit struct {
	SequenceID string
	EValue     float64
	BitScore   float64
}

// Output holds the merged mining results.
type Output struct {
	Detections     []types.Detection
	DetectorErrors []string
}

// detectionTable is the merged detection table filename.
const detectionTable = "detection_table.csv"

// methodSummary is the per-phylum method-count filename.
const methodSummary = "method_by_phylum.csv"

// Mine runs the sequence and structure detectors against the candidate
// database, merges the hit sets into per-sequence detection labels, and
// writes the detection table and per-phylum summary to cfg.ResultsDir.
// A failing detector is reported and its hits treated as empty; mining
// fails only when both detectors fail. phylumByID annotates each
// detection with its source phylum.
func Mine(sequence, structural Detector, fastaPath string, cfg types.MiningConfig, phylumByID map[string]string, w io.Writer) (Output, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return Output{}, fmt.Errorf("creating results directory %s: %w", cfg.ResultsDir, err)
	}

	var detectorErrors []string

	runDetector := func(d Detector) []Hit {
		fmt.Fprintf(w, "running %s...\n", d.Name())
		hits, err := d.Detect(fastaPath, cfg, w)
		if err != nil {
			detectorErrors = append(detectorErrors, fmt.Sprintf("%s: %v", d.Name(), err))
			fmt.Fprintf(w, "warning: detector %s failed: %v\n", d.Name(), err)
			return nil
		}
		fmt.Fprintf(w, "%s: %d hits\n", d.Name(), len(hits))
		return hits
	}

	seqHits := runDetector(sequence)
	structHits := runDetector(structural)

	if len(detectorErrors) == 2 {
		return Output{DetectorErrors: detectorErrors}, fmt.Errorf("all detectors failed")
	}

	detections := Merge(seqHits, structHits, phylumByID)

	if err := writeDetectionTable(filepath.Join(cfg.ResultsDir, detectionTable), detections); err != nil {
		return Output{}, err
	}
	counts := CountByPhylum(detections)
	if err := writeMethodSummary(filepath.Join(cfg.ResultsDir, methodSummary), counts); err != nil {
		return Output{}, err
	}

	fmt.Fprintf(w, "\n%d homologs detected (%d sequence-only, %d structure-only, %d common)\n",
		len(detections),
		countMethod(detections, types.MethodSequenceOnly),
		countMethod(detections, types.MethodStructureOnly),
		countMethod(detections, types.MethodCommon))

	return Output{Detections: detections, DetectorErrors: detectorErrors}, nil
}

// Merge combines sequence-search and structure-search hits into one
// detection label per sequence ID: Common when both methods found it,
// otherwise Sequence-only or Structure-only. Results are sorted by ID.
func Merge(seqHits, structHits []Hit, phylumByID map[string]string) []types.Detection {
	bySeq := make(map[string]bool, len(seqHits))
	for _, h := range seqHits {
		bySeq[h.SequenceID] = true
	}
	byStruct := make(map[string]bool, len(structHits))
	for _, h := range structHits {
		byStruct[h.SequenceID] = true
	}

	ids := make(map[string]bool, len(bySeq)+len(byStruct))
	for id := range bySeq {
		ids[id] = true
	}
	for id := range byStruct {
		ids[id] = true
	}

	detections := make([]types.Detection, 0, len(ids))
	for id := range ids {
		var method types.DetectionMethod
		switch {
		case bySeq[id] && byStruct[id]:
			method = types.MethodCommon
		case bySeq[id]:
			method = types.MethodSequenceOnly
		default:
			method = types.MethodStructureOnly
		}
		detections = append(detections, types.Detection{
			SequenceID: id,
			Method:     method,
			Phylum:     phylumByID[id],
		})
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].SequenceID < detections[j].SequenceID
	})
	return detections
}

// PhylumCount is one row of the per-phylum method summary.
type PhylumCount struct {
	Phylum        string
	SequenceOnly  int
	StructureOnly int
	Common        int
}

// Total returns the number of homologs detected in the phylum.
func (c PhylumCount) Total() int {
	return c.SequenceOnly + c.StructureOnly + c.Common
}

// CountByPhylum aggregates detections into per-phylum method counts,
// sorted by total abundance descending. Detections without a phylum are
// grouped under "Unknown".
func CountByPhylum(detections []types.Detection) []PhylumCount {
	byPhylum := make(map[string]*PhylumCount)
	for _, d := range detections {
		phylum := d.Phylum
		if phylum == "" {
			phylum = "Unknown"
		}
		c, ok := byPhylum[phylum]
		if !ok {
			c = &PhylumCount{Phylum: phylum}
			byPhylum[phylum] = c
		}
		switch d.Method {
		case types.MethodSequenceOnly:
			c.SequenceOnly++
		case types.MethodStructureOnly:
			c.StructureOnly++
		case types.MethodCommon:
			c.Common++
		}
	}

	counts := make([]PhylumCount, 0, len(byPhylum))
	for _, c := range byPhylum {
		counts = append(counts, *c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Total() != counts[j].Total() {
			return counts[i].Total() > counts[j].Total()
		}
		return counts[i].Phylum < counts[j].Phylum
	})
	return counts
}

func countMethod(detections []types.Detection, method types.DetectionMethod) int {
	n := 0
	for _, d := range detections {
		if d.Method == method {
			n++
		}
	}
	return n
}

func writeDetectionTable(path string, detections []types.Detection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating detection table %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Sequence_ID", "Method", "Phylum"}); err != nil {
		return fmt.Errorf("writing detection table header: %w", err)
	}
	for _, d := range detections {
		if err := cw.Write([]string{d.SequenceID, string(d.Method), d.Phylum}); err != nil {
			return fmt.Errorf("writing detection row for %s: %w", d.SequenceID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMethodSummary(path string, counts []PhylumCount) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating method summary %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Phylum", "Sequence-only", "Structure-only", "Common", "Total"}); err != nil {
		return fmt.Errorf("writing method summary header: %w", err)
	}
	for _, c := range counts {
		row := []string{
			c.Phylum,
			fmt.Sprint(c.SequenceOnly),
			fmt.Sprint(c.StructureOnly),
			fmt.Sprint(c.Common),
			fmt.Sprint(c.Total()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing method summary row for %s: %w", c.Phylum, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
