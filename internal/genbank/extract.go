// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genbank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/internal/fasta"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// metadataHeader is the column layout of the CDS metadata CSV.
var metadataHeader = []string{"File", "Protein_ID", "Locus_Tag", "Organism", "Taxonomy"}

// Summary holds counts from a CDS extraction run.
type Summary struct {
	Files  int
	CDS    int
	Failed int
}

// HasFailures reports whether any input files failed to parse.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractDir processes every .gb/.gbk file under cfg.GenBankDir, writing
// protein translations to cfg.FastaPath and per-CDS metadata to
// cfg.MetadataPath. It continues after individual file failures and
// prints per-file status to w.
func ExtractDir(cfg types.ExtractionConfig, w io.Writer) (Summary, error) {
	entries, err := os.ReadDir(cfg.GenBankDir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading GenBank directory %s: %w", cfg.GenBankDir, err)
	}

	var summary Summary
	var seqs []fasta.Record
	var meta []types.CDSRecord

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".gb") || strings.HasSuffix(name, ".gbk")) {
			continue
		}

		records, err := ParseFile(filepath.Join(cfg.GenBankDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			summary.Failed++
			continue
		}
		summary.Files++

		count := 0
		for _, rec := range records {
			for _, cds := range CDS(rec, name) {
				seqs = append(seqs, fasta.Record{
					ID:          cds.ProteinID,
					Description: "| " + cds.Organism,
					Sequence:    cds.Translation,
				})
				meta = append(meta, cds)
				count++
			}
		}
		summary.CDS += count
		fmt.Fprintf(w, "processed: %s (%d CDS)\n", name, count)
	}

	for _, out := range []string{cfg.FastaPath, cfg.MetadataPath} {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return summary, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := fasta.WriteFile(cfg.FastaPath, seqs); err != nil {
		return summary, err
	}
	if err := writeMetadata(cfg.MetadataPath, meta); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nExtracted %d CDS records from %d files (%d failed)\n",
		summary.CDS, summary.Files, summary.Failed)
	return summary, nil
}

// writeMetadata writes CDS metadata rows to a CSV file.
func writeMetadata(path string, records []types.CDSRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metadata CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(metadataHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{r.File, r.ProteinID, r.LocusTag, r.Organism, r.Taxonomy}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.ProteinID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
