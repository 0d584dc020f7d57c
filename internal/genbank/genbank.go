// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genbank parses GenBank flat files and extracts CDS translations
// with taxonomic metadata. Only the fields the pipeline needs are parsed:
// accession, organism, taxonomy lineage, and the feature table.
package genbank

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// Feature is one entry of a GenBank feature table.
type Feature struct {
	// Key is the feature key (e.g. "CDS", "gene", "source").
	Key string

	// Location is the raw location string (e.g. "join(12..78,134..202)").
	Location string

	// Qualifiers maps qualifier names to values, quotes stripped and
	// continuation lines joined. Sequence-valued qualifiers (translation)
	// are joined without spaces; all others with a single space.
	Qualifiers map[string]string
}

// Record holds the parsed fields of one GenBank record.
type Record struct {
	Accession  string
	Definition string
	Organism   string

	// Taxonomy is the lineage as listed under ORGANISM, split on ";".
	Taxonomy []string

	Features []Feature
}

// Feature table layout: keys start at column 5, qualifiers at column 21.
const (
	featureKeyIndent  = 5
	recordTerminator  = "//"
	featuresKeyword   = "FEATURES"
	originKeyword     = "ORIGIN"
	organismKeyword   = "ORGANISM"
	accessionKeyword  = "ACCESSION"
	definitionKeyword = "DEFINITION"
)

// Parse reads all GenBank records from r. Records are terminated by "//".
// A record without an accession is an error; unknown sections are skipped.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	var cur *Record
	var section string // current top-level keyword
	var taxBuf strings.Builder
	var curFeature *Feature
	var qualName string
	var qualBuf strings.Builder
	lineNo := 0

	flushQualifier := func() {
		if curFeature != nil && qualName != "" {
			curFeature.Qualifiers[qualName] = strings.Trim(qualBuf.String(), `"`)
		}
		qualName = ""
		qualBuf.Reset()
	}
	flushFeature := func() {
		flushQualifier()
		if cur != nil && curFeature != nil {
			cur.Features = append(cur.Features, *curFeature)
		}
		curFeature = nil
	}
	flushRecord := func() error {
		flushFeature()
		if cur == nil {
			return nil
		}
		if cur.Accession == "" {
			return fmt.Errorf("line %d: record has no ACCESSION", lineNo)
		}
		cur.Taxonomy = splitLineage(taxBuf.String())
		taxBuf.Reset()
		records = append(records, *cur)
		cur = nil
		section = ""
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, "LOCUS") {
			if err := flushRecord(); err != nil {
				return nil, err
			}
			cur = &Record{}
			section = "LOCUS"
			continue
		}
		if cur == nil {
			continue
		}
		if strings.TrimSpace(line) == recordTerminator {
			if err := flushRecord(); err != nil {
				return nil, err
			}
			continue
		}

		// New top-level keyword (column 0).
		if len(line) > 0 && line[0] != ' ' {
			word, rest, _ := strings.Cut(line, " ")
			section = word
			rest = strings.TrimSpace(rest)
			switch word {
			case accessionKeyword:
				// First token only; secondary accessions are ignored.
				if fields := strings.Fields(rest); len(fields) > 0 {
					cur.Accession = fields[0]
				}
			case definitionKeyword:
				cur.Definition = rest
			case featuresKeyword:
				flushFeature()
			case originKeyword:
				flushFeature()
			}
			continue
		}

		trimmed := strings.TrimSpace(line)

		switch section {
		case definitionKeyword:
			cur.Definition += " " + trimmed
		case "SOURCE":
			if strings.HasPrefix(trimmed, organismKeyword) {
				cur.Organism = strings.TrimSpace(strings.TrimPrefix(trimmed, organismKeyword))
				section = organismKeyword
			}
		case organismKeyword:
			if taxBuf.Len() > 0 {
				taxBuf.WriteString(" ")
			}
			taxBuf.WriteString(trimmed)
		case featuresKeyword:
			if isFeatureKeyLine(line) {
				flushFeature()
				fields := strings.Fields(trimmed)
				curFeature = &Feature{Key: fields[0], Qualifiers: map[string]string{}}
				if len(fields) > 1 {
					curFeature.Location = strings.Join(fields[1:], "")
				}
				continue
			}
			if curFeature == nil {
				continue
			}
			if strings.HasPrefix(trimmed, "/") {
				flushQualifier()
				name, value, hasValue := strings.Cut(trimmed[1:], "=")
				qualName = name
				if hasValue {
					qualBuf.WriteString(value)
				}
				continue
			}
			// Continuation line: location or qualifier value.
			if qualName != "" {
				if qualName == "translation" {
					qualBuf.WriteString(trimmed)
				} else {
					qualBuf.WriteString(" " + trimmed)
				}
			} else {
				curFeature.Location += trimmed
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading GenBank: %w", err)
	}
	if err := flushRecord(); err != nil {
		return nil, err
	}
	return records, nil
}

// isFeatureKeyLine reports whether a feature-table line starts a new
// feature (key at column 5) rather than continuing a qualifier (column 21).
func isFeatureKeyLine(line string) bool {
	return len(line) > featureKeyIndent && line[featureKeyIndent] != ' '
}

// splitLineage splits the ORGANISM lineage text on semicolons, trimming
// whitespace and the terminal period.
func splitLineage(s string) []string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CDS extracts one types.CDSRecord per CDS feature of rec that carries a
// translation. Features without a translation qualifier are skipped.
func CDS(rec Record, file string) []types.CDSRecord {
	var out []types.CDSRecord
	for _, f := range rec.Features {
		if f.Key != "CDS" {
			continue
		}
		translation := f.Qualifiers["translation"]
		if translation == "" {
			continue
		}
		out = append(out, types.CDSRecord{
			File:        file,
			ProteinID:   qualifierOr(f, "protein_id", "N/A"),
			LocusTag:    qualifierOr(f, "locus_tag", "N/A"),
			Organism:    rec.Organism,
			Taxonomy:    strings.Join(rec.Taxonomy, "; "),
			Translation: translation,
		})
	}
	return out
}

func qualifierOr(f Feature, name, fallback string) string {
	if v := f.Qualifiers[name]; v != "" {
		return v
	}
	return fallback
}

// ParseFile reads all GenBank records from the file at path.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}
