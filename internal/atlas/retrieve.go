// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package atlas

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// QueryOptions holds parameters for atlas queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over organism, phylum,
	// and lineage.
	Query string

	// Lineage filters by structural lineage.
	Lineage types.Lineage

	// Method filters by detection method.
	Method types.DetectionMethod

	// Phylum filters by exact phylum name.
	Phylum string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Lineage == "" && q.Method == "" && q.Phylum == ""
}

// Retrieve queries the atlas with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by ID otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Homolog, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT h.id, h.organism, h.phylum, h.species, h.lineage, h.method,
				h.loop_length, h.loop_seq, h.p1_residue, h.sequence
			FROM homologs_fts
			JOIN homologs h ON h.rowid = homologs_fts.rowid
			WHERE homologs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT h.id, h.organism, h.phylum, h.species, h.lineage, h.method,
				h.loop_length, h.loop_seq, h.p1_residue, h.sequence
			FROM homologs h
			WHERE 1=1`)
	}

	if opts.Lineage != "" {
		qb.WriteString(` AND h.lineage = ?`)
		args = append(args, string(opts.Lineage))
	}
	if opts.Method != "" {
		qb.WriteString(` AND h.method = ?`)
		args = append(args, string(opts.Method))
	}
	if opts.Phylum != "" {
		qb.WriteString(` AND h.phylum = ?`)
		args = append(args, opts.Phylum)
	}

	if useFTS {
		qb.WriteString(` ORDER BY homologs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY h.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying atlas: %w", err)
	}
	defer rows.Close()

	var results []types.Homolog
	for rows.Next() {
		var h types.Homolog
		var lineage, method string
		if err := rows.Scan(
			&h.ID, &h.Organism, &h.Phylum, &h.Species, &lineage, &method,
			&h.LoopLength, &h.LoopSequence, &h.P1Residue, &h.Sequence,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		h.Lineage = types.Lineage(lineage)
		h.Method = types.DetectionMethod(method)
		results = append(results, h)
	}
	return results, rows.Err()
}

// TaxonSummary is the per-phylum detection method breakdown.
type TaxonSummary struct {
	Phylum        string `json:"phylum" yaml:"phylum"`
	SequenceOnly  int    `json:"sequence_only" yaml:"sequence_only"`
	StructureOnly int    `json:"structure_only" yaml:"structure_only"`
	Common        int    `json:"common" yaml:"common"`
}

// Total returns the number of homologs in the phylum.
func (t TaxonSummary) Total() int {
	return t.SequenceOnly + t.StructureOnly + t.Common
}

// Taxa returns the per-phylum method summaries, sorted by total count
// descending then phylum name.
func (s *Store) Taxa(ctx context.Context) ([]TaxonSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phylum, sequence_only, structure_only, common FROM taxa
		 ORDER BY (sequence_only + structure_only + common) DESC, phylum`)
	if err != nil {
		return nil, fmt.Errorf("querying taxa: %w", err)
	}
	defer rows.Close()

	var out []TaxonSummary
	for rows.Next() {
		var t TaxonSummary
		if err := rows.Scan(&t.Phylum, &t.SequenceOnly, &t.StructureOnly, &t.Common); err != nil {
			return nil, fmt.Errorf("scanning taxa row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
