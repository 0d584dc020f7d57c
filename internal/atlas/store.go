// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package atlas persists the homolog dataset in SQLite and builds a
// full-text retrieval index over it.
package atlas

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pacifastin-atlas/internal/classify"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

const dbFile = "atlas.db"

// Store manages the atlas SQLite database.
type Store struct {
	db         *sql.DB
	atlasDir   string
	maxResults int
}

// NewStore opens or creates the atlas database at atlasDir/atlas.db,
// creating the schema if it does not exist.
func NewStore(cfg types.AtlasConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.AtlasDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating atlas directory: %w", err)
	}

	dbPath := filepath.Join(cfg.AtlasDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, atlasDir: cfg.AtlasDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS homologs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			organism TEXT,
			phylum TEXT,
			species TEXT,
			lineage TEXT,
			method TEXT,
			loop_length INTEGER,
			loop_seq TEXT,
			p1_residue TEXT,
			sequence TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_homologs_lineage ON homologs(lineage)`,
		`CREATE INDEX IF NOT EXISTS idx_homologs_phylum ON homologs(phylum)`,
		`CREATE TABLE IF NOT EXISTS taxa (
			phylum TEXT PRIMARY KEY,
			sequence_only INTEGER NOT NULL DEFAULT 0,
			structure_only INTEGER NOT NULL DEFAULT 0,
			common INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source_file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='homologs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE homologs_fts USING fts5(
				organism, phylum, lineage, content=homologs, content_rowid=rowid)`,
			`CREATE TRIGGER homologs_ai AFTER INSERT ON homologs BEGIN
				INSERT INTO homologs_fts(rowid, organism, phylum, lineage)
				VALUES (new.rowid, new.organism, new.phylum, new.lineage);
			END`,
			`CREATE TRIGGER homologs_ad AFTER DELETE ON homologs BEGIN
				INSERT INTO homologs_fts(homologs_fts, rowid, organism, phylum, lineage)
				VALUES('delete', old.rowid, old.organism, old.phylum, old.lineage);
			END`,
			`CREATE TRIGGER homologs_au AFTER UPDATE ON homologs BEGIN
				INSERT INTO homologs_fts(homologs_fts, rowid, organism, phylum, lineage)
				VALUES('delete', old.rowid, old.organism, old.phylum, old.lineage);
				INSERT INTO homologs_fts(rowid, organism, phylum, lineage)
				VALUES (new.rowid, new.organism, new.phylum, new.lineage);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Sources names the pipeline result files the atlas is built from.
type Sources struct {
	// ClassificationCSV is the loop-topology classification table.
	ClassificationCSV string

	// DetectionCSV is the detection table with method labels.
	DetectionCSV string

	// MetadataCSV is the CDS metadata table with organism and taxonomy.
	MetadataCSV string
}

func (src Sources) paths() []string {
	return []string{src.ClassificationCSV, src.DetectionCSV, src.MetadataCSV}
}

// IngestSummary holds counts from an atlas indexing run.
type IngestSummary struct {
	Indexed int
	Skipped int
	Failed  int
}

// Total returns the number of source files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Skipped + s.Failed
}

// Ingest joins the pipeline result files into homolog records and
// populates the database. Source files whose modification time matches
// the stored ingest status are counted as skipped; when none changed the
// database is left untouched. A changed source rebuilds the full set in
// one transaction.
func (s *Store) Ingest(ctx context.Context, src Sources, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	modTimes := make(map[string]string)
	changed := false
	for _, path := range src.paths() {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)
		modTimes[path] = modTime

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE source_file = ?`, path,
		).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", filepath.Base(path))
			summary.Skipped++
			continue
		}
		changed = true
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d source file(s) unreadable", summary.Failed)
	}
	if !changed {
		fmt.Fprintf(w, "\nindexed: 0, skipped: %d, failed: 0\n", summary.Skipped)
		return summary, nil
	}

	homologs, err := joinSources(src)
	if err != nil {
		return summary, err
	}

	if err := s.rebuild(ctx, homologs, src, modTimes); err != nil {
		return summary, err
	}

	summary.Indexed = len(src.paths()) - summary.Skipped
	fmt.Fprintf(w, "indexing %d homologs from %d source file(s)\n", len(homologs), summary.Indexed)
	fmt.Fprintf(w, "\nindexed: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

// joinSources merges the classification, detection, and metadata tables
// into homolog records, keyed by sequence ID.
func joinSources(src Sources) ([]types.Homolog, error) {
	classifications, err := classify.ReadCSV(src.ClassificationCSV)
	if err != nil {
		return nil, err
	}
	detections, err := readDetectionCSV(src.DetectionCSV)
	if err != nil {
		return nil, err
	}
	metadata, err := readMetadataCSV(src.MetadataCSV)
	if err != nil {
		return nil, err
	}

	var homologs []types.Homolog
	for _, c := range classifications {
		h := types.Homolog{
			ID:           c.SequenceID,
			Lineage:      c.Lineage,
			LoopLength:   c.LoopLength,
			LoopSequence: c.LoopSequence,
		}
		if d, ok := detections[c.SequenceID]; ok {
			h.Method = d.Method
			h.Phylum = d.Phylum
		}
		if m, ok := metadata[c.SequenceID]; ok {
			h.Organism = m.Organism
			h.Species = m.Organism
		}
		homologs = append(homologs, h)
	}
	return homologs, nil
}

// rebuild replaces the homolog and taxa tables inside one transaction and
// records the source file modification times.
func (s *Store) rebuild(ctx context.Context, homologs []types.Homolog, src Sources, modTimes map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM homologs`); err != nil {
		return fmt.Errorf("clearing homologs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM taxa`); err != nil {
		return fmt.Errorf("clearing taxa: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO homologs (id, organism, phylum, species, lineage, method,
			loop_length, loop_seq, p1_residue, sequence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range homologs {
		_, err := stmt.ExecContext(ctx,
			h.ID, h.Organism, h.Phylum, h.Species, string(h.Lineage), string(h.Method),
			h.LoopLength, h.LoopSequence, h.P1Residue, h.Sequence,
		)
		if err != nil {
			return fmt.Errorf("inserting homolog %s: %w", h.ID, err)
		}
	}

	// Per-phylum method counts.
	taxaStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO taxa (phylum, sequence_only, structure_only, common)
		 SELECT phylum,
			SUM(method = ?), SUM(method = ?), SUM(method = ?)
		 FROM homologs WHERE phylum != '' GROUP BY phylum`)
	if err != nil {
		return fmt.Errorf("preparing taxa summary: %w", err)
	}
	defer taxaStmt.Close()
	if _, err := taxaStmt.ExecContext(ctx,
		string(types.MethodSequenceOnly), string(types.MethodStructureOnly), string(types.MethodCommon),
	); err != nil {
		return fmt.Errorf("building taxa summary: %w", err)
	}

	for path, modTime := range modTimes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingest_status (source_file, file_mod_time) VALUES (?, ?)
			 ON CONFLICT(source_file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
			path, modTime,
		)
		if err != nil {
			return fmt.Errorf("updating ingest status: %w", err)
		}
	}

	return tx.Commit()
}
