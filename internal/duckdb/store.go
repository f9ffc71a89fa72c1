// Package duckdb persists uORF scan results and caches parsed transcript
// records.
// Parsed records are cached as gob files (fast, pure Go).
// Scan results are stored in DuckDB (queryable, one row set per run).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for scan results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP,
		input VARCHAR,
		records BIGINT,
		accepted BIGINT,
		rejected BIGINT,
		candidates_found BIGINT,
		candidates_retained BIGINT,
		unterminated BIGINT,
		transcripts_with_uorfs BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS uorf_results (
		run_id VARCHAR,
		transcript_index BIGINT,
		transcript_id VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		uorf_start BIGINT,
		uorf_end BIGINT,
		frame BIGINT,
		start_codon VARCHAR,
		stop_codon VARCHAR,
		overlap_class VARCHAR,
		unterminated BOOLEAN,
		length_nt BIGINT,
		length_aa BIGINT,
		gc_fraction DOUBLE,
		canonical_start BOOLEAN,
		distance_to_cds BIGINT,
		kozak VARCHAR,
		peptide VARCHAR,
		PRIMARY KEY (run_id, transcript_id, uorf_start)
	)`,
	`CREATE TABLE IF NOT EXISTS rejections (
		run_id VARCHAR,
		record_index BIGINT,
		transcript_id VARCHAR,
		reason VARCHAR,
		detail VARCHAR
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
