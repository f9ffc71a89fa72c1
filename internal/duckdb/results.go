package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-uorf/internal/compile"
	"github.com/inodb/vibe-uorf/internal/pipeline"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

// ErrNoRuns is returned when a lookup needs a run but none are stored.
var ErrNoRuns = errors.New("no runs stored")

// Run identifies one scan stored in the database.
type Run struct {
	ID                   string
	StartedAt            time.Time
	Input                string
	Records              int
	Accepted             int
	Rejected             int
	CandidatesFound      int
	CandidatesRetained   int
	Unterminated         int
	TranscriptsWithUORFs int
}

// NewRun creates a run with a fresh random ID.
func NewRun(input string, started time.Time) Run {
	return Run{ID: uuid.NewString(), StartedAt: started, Input: input}
}

// StoredResult is a uORF result read back from the database.
type StoredResult struct {
	RunID string
	uorf.Result
}

// SaveRun writes every retained result, every rejection and finally the run
// row. Lookups only see runs with a run row, so a run is visible once all of
// its rows are in. On failure the rows written so far are removed.
func (s *Store) SaveRun(run Run, rs *pipeline.ResultSet, d *pipeline.RunDiagnostics) error {
	run.Records = d.Records
	run.Accepted = d.Accepted
	run.Rejected = d.Rejected()
	run.CandidatesFound = d.CandidatesFound
	run.CandidatesRetained = d.CandidatesRetained
	run.Unterminated = d.Unterminated
	run.TranscriptsWithUORFs = d.TranscriptsWithUORFs

	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM runs WHERE run_id=?`, run.ID).Scan(&n); err != nil {
		return fmt.Errorf("check run %s: %w", run.ID, err)
	}
	if n > 0 {
		return fmt.Errorf("run %s is already stored", run.ID)
	}

	err := s.WriteResults(run.ID, rs.Results)
	if err == nil {
		err = s.WriteRejections(run.ID, d.Rejections)
	}
	if err == nil {
		err = s.WriteRun(run)
	}
	if err != nil {
		return errors.Join(err, s.deleteRun(run.ID))
	}
	return nil
}

// deleteRun removes every row of a run from all tables.
func (s *Store) deleteRun(runID string) error {
	var errs []error
	for _, table := range []string{"runs", "uorf_results", "rejections"} {
		if _, err := s.db.Exec(`DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
			errs = append(errs, fmt.Errorf("remove partial run from %s: %w", table, err))
		}
	}
	return errors.Join(errs...)
}

// WriteRun inserts one row into the runs table.
func (s *Store) WriteRun(run Run) error {
	if _, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.Input,
		int64(run.Records), int64(run.Accepted), int64(run.Rejected),
		int64(run.CandidatesFound), int64(run.CandidatesRetained),
		int64(run.Unterminated), int64(run.TranscriptsWithUORFs),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// WriteResults batch-inserts results into DuckDB using the Appender API.
func (s *Store) WriteResults(runID string, results []uorf.Result) error {
	if len(results) == 0 {
		return nil
	}
	return s.appendRows("uorf_results", func(a *goduckdb.Appender) error {
		for i := range results {
			r := &results[i]
			if err := a.AppendRow(
				runID, int64(r.TranscriptIndex), r.TranscriptID, r.GeneID, r.GeneName,
				int64(r.Start), int64(r.End), int64(r.Frame),
				r.StartCodon, r.StopCodon, r.Class.String(), r.Unterminated,
				int64(r.LengthNT), int64(r.LengthAA), r.GCFraction, r.CanonicalStart,
				int64(r.DistanceToCDS), string(r.Kozak), r.Peptide,
			); err != nil {
				return fmt.Errorf("append uorf result: %w", err)
			}
		}
		return nil
	})
}

// WriteRejections batch-inserts compile rejections.
func (s *Store) WriteRejections(runID string, rejections []compile.Rejection) error {
	if len(rejections) == 0 {
		return nil
	}
	return s.appendRows("rejections", func(a *goduckdb.Appender) error {
		for _, rej := range rejections {
			if err := a.AppendRow(runID, int64(rej.Index), rej.ID, rej.Reason, rej.Detail); err != nil {
				return fmt.Errorf("append rejection: %w", err)
			}
		}
		return nil
	})
}

// appendRows opens an appender on table, runs fill and flushes.
func (s *Store) appendRows(table string, fill func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, started_at, input, records, accepted, rejected,
		candidates_found, candidates_retained, unterminated, transcripts_with_uorfs
		FROM runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.Input, &r.Records, &r.Accepted, &r.Rejected,
			&r.CandidatesFound, &r.CandidatesRetained, &r.Unterminated, &r.TranscriptsWithUORFs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRunID returns the ID of the most recent run.
func (s *Store) LatestRunID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT run_id FROM runs ORDER BY started_at DESC, run_id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return id, nil
}

// LookupTranscript returns the stored uORFs of one transcript in a run,
// ordered by start. An empty runID selects the latest run.
func (s *Store) LookupTranscript(runID, transcriptID string) ([]StoredResult, error) {
	if runID == "" {
		id, err := s.LatestRunID()
		if err != nil {
			return nil, err
		}
		runID = id
	}

	rows, err := s.db.Query(`SELECT
		run_id, transcript_index, transcript_id, gene_id, gene_name,
		uorf_start, uorf_end, frame, start_codon, stop_codon, overlap_class,
		unterminated, length_nt, length_aa, gc_fraction, canonical_start,
		distance_to_cds, kozak, peptide
		FROM uorf_results
		WHERE run_id=? AND transcript_id=?
		ORDER BY uorf_start`, runID, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// Rejections returns the stored rejections of a run in input order.
func (s *Store) Rejections(runID string) ([]compile.Rejection, error) {
	rows, err := s.db.Query(`SELECT record_index, transcript_id, reason, detail
		FROM rejections WHERE run_id=? ORDER BY record_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	defer rows.Close()

	var out []compile.Rejection
	for rows.Next() {
		var rej compile.Rejection
		if err := rows.Scan(&rej.Index, &rej.ID, &rej.Reason, &rej.Detail); err != nil {
			return nil, fmt.Errorf("scan rejection: %w", err)
		}
		out = append(out, rej)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rejections: %w", err)
	}
	return out, nil
}

// scanResults scans rows into StoredResult slices.
func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]StoredResult, error) {
	var results []StoredResult
	for rows.Next() {
		var r StoredResult
		var class, kozak string
		if err := rows.Scan(
			&r.RunID, &r.TranscriptIndex, &r.TranscriptID, &r.GeneID, &r.GeneName,
			&r.Start, &r.End, &r.Frame, &r.StartCodon, &r.StopCodon, &class,
			&r.Unterminated, &r.LengthNT, &r.LengthAA, &r.GCFraction, &r.CanonicalStart,
			&r.DistanceToCDS, &kozak, &r.Peptide,
		); err != nil {
			return nil, fmt.Errorf("scan uorf result: %w", err)
		}
		oc, err := uorf.ParseOverlapClass(class)
		if err != nil {
			return nil, fmt.Errorf("scan uorf result: %w", err)
		}
		r.Class = oc
		r.Kozak = uorf.Kozak(kozak)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uorf results: %w", err)
	}
	return results, nil
}
