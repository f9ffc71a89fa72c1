// Package pipeline drives a batch of transcript records through compilation
// and parallel uORF scanning, producing an ordered result set and merged
// run diagnostics.
package pipeline

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/inodb/vibe-uorf/internal/cache"
	"github.com/inodb/vibe-uorf/internal/compile"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

// ResultSet holds retained uORFs in input transcript order, then by start.
type ResultSet struct {
	Results []uorf.Result
}

// Len returns the number of retained uORFs.
func (rs *ResultSet) Len() int {
	return len(rs.Results)
}

// ByTranscript returns the results for one transcript ID.
func (rs *ResultSet) ByTranscript(id string) []uorf.Result {
	var out []uorf.Result
	for _, r := range rs.Results {
		if r.TranscriptID == id {
			out = append(out, r)
		}
	}
	return out
}

// RunDiagnostics aggregates compile and per-transcript diagnostics for a run.
type RunDiagnostics struct {
	Records              int
	Accepted             int
	RejectedByReason     map[string]int
	Rejections           []compile.Rejection
	CandidatesFound      int
	CandidatesRetained   int
	Unterminated         int
	FilteredByReason     map[string]int
	TranscriptsWithUORFs int
}

func newRunDiagnostics(records int, cd compile.Diagnostics) *RunDiagnostics {
	d := &RunDiagnostics{
		Records:          records,
		Accepted:         cd.Accepted,
		RejectedByReason: make(map[string]int, len(cd.RejectedByReason)),
		Rejections:       cd.Rejections,
		FilteredByReason: make(map[string]int),
	}
	maps.Copy(d.RejectedByReason, cd.RejectedByReason)
	return d
}

// Rejected returns the number of records rejected by compilation.
func (d *RunDiagnostics) Rejected() int {
	return len(d.Rejections)
}

// merge adds one transcript's diagnostics.
func (d *RunDiagnostics) merge(pd uorf.Diagnostics, retained int) {
	d.CandidatesFound += pd.CandidatesFound
	d.Unterminated += pd.Unterminated
	d.CandidatesRetained += retained
	for reason, n := range pd.FilteredByReason {
		d.FilteredByReason[reason] += n
	}
	if retained > 0 {
		d.TranscriptsWithUORFs++
	}
}

// Runner runs batches with a fixed configuration.
type Runner struct {
	cfg     uorf.Config
	workers int
	logger  *zap.Logger
}

// NewRunner creates a runner. A nil genetic code selects the standard code.
func NewRunner(cfg uorf.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// SetWorkers sets the worker count. 0 means runtime.NumCPU().
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// Run compiles records, scans every accepted entry in parallel and collects
// the results in input order. Invalid records are reported in diagnostics
// and do not stop the run. An invariant violation aborts the run and no
// partial result set is returned.
func (r *Runner) Run(records []*cache.Record) (*ResultSet, *RunDiagnostics, error) {
	entries, cd := compile.Compile(records)
	for _, rej := range cd.Rejections {
		r.logger.Debug("record rejected",
			zap.Int("index", rej.Index),
			zap.String("id", rej.ID),
			zap.String("reason", rej.Reason),
			zap.String("detail", rej.Detail))
	}

	diag := newRunDiagnostics(len(records), cd)
	rs := &ResultSet{}

	items := make(chan WorkItem, 2*max(r.workers, 1))
	go func() {
		defer close(items)
		for i, e := range entries {
			items <- WorkItem{Seq: i, Entry: e}
		}
	}()

	results := ParallelProcess(items, r.cfg, r.workers)
	err := OrderedCollect(results, func(wr WorkResult) error {
		if wr.Err != nil {
			return fmt.Errorf("scan %s: %w", wr.Entry.ID, wr.Err)
		}
		diag.merge(wr.Output.Diagnostics, len(wr.Output.Candidates))
		rs.Results = append(rs.Results, wr.Output.Results(wr.Entry)...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.logger.Info("scan complete",
		zap.Int("records", diag.Records),
		zap.Int("accepted", diag.Accepted),
		zap.Int("rejected", diag.Rejected()),
		zap.Int("candidates", diag.CandidatesFound),
		zap.Int("retained", diag.CandidatesRetained),
		zap.Int("transcripts_with_uorfs", diag.TranscriptsWithUORFs))

	return rs, diag, nil
}

// Run is a convenience wrapper around a Runner with default settings.
func Run(records []*cache.Record, cfg uorf.Config) (*ResultSet, *RunDiagnostics, error) {
	return NewRunner(cfg).Run(records)
}
