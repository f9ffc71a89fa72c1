package output

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-uorf/internal/compile"
	"github.com/inodb/vibe-uorf/internal/pipeline"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

// Summary is the YAML run report.
type Summary struct {
	RunID      string          `yaml:"run_id,omitempty"`
	Input      string          `yaml:"input,omitempty"`
	StartedAt  time.Time       `yaml:"started_at"`
	Duration   string          `yaml:"duration"`
	Records    int             `yaml:"records"`
	Compile    CompileSummary  `yaml:"compile"`
	Candidates CandidateCounts `yaml:"candidates"`
}

// CompileSummary reports accepted and rejected records.
type CompileSummary struct {
	Accepted   int                 `yaml:"accepted"`
	Rejected   map[string]int      `yaml:"rejected,omitempty"`
	Rejections []compile.Rejection `yaml:"rejections,omitempty"`
}

// CandidateCounts reports what happened to scanned candidates.
type CandidateCounts struct {
	Found                int            `yaml:"found"`
	Retained             int            `yaml:"retained"`
	Unterminated         int            `yaml:"unterminated"`
	Filtered             map[string]int `yaml:"filtered,omitempty"`
	ByClass              map[string]int `yaml:"by_class,omitempty"`
	TranscriptsWithUORFs int            `yaml:"transcripts_with_uorfs"`
}

// NewSummary builds a Summary from a finished run.
func NewSummary(runID, input string, started time.Time, elapsed time.Duration, rs *pipeline.ResultSet, d *pipeline.RunDiagnostics) *Summary {
	s := &Summary{
		RunID:     runID,
		Input:     input,
		StartedAt: started.UTC(),
		Duration:  elapsed.Round(time.Millisecond).String(),
		Records:   d.Records,
		Compile: CompileSummary{
			Accepted:   d.Accepted,
			Rejected:   d.RejectedByReason,
			Rejections: d.Rejections,
		},
		Candidates: CandidateCounts{
			Found:                d.CandidatesFound,
			Retained:             d.CandidatesRetained,
			Unterminated:         d.Unterminated,
			Filtered:             d.FilteredByReason,
			TranscriptsWithUORFs: d.TranscriptsWithUORFs,
		},
	}
	if rs != nil && rs.Len() > 0 {
		s.Candidates.ByClass = make(map[string]int, len(uorf.AllClasses))
		for _, r := range rs.Results {
			s.Candidates.ByClass[r.Class.String()]++
		}
	}
	return s
}

// WriteSummary writes s as YAML.
func WriteSummary(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return enc.Close()
}
