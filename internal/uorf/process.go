package uorf

import (
	"fmt"

	"github.com/inodb/vibe-uorf/internal/codon"
	"github.com/inodb/vibe-uorf/internal/compile"
)

// Config holds the read-only settings shared by every Process call.
type Config struct {
	Code   *codon.GeneticCode
	Filter Filter
}

// DefaultConfig returns the standard genetic code with ATG-only starts,
// no minimum length, unterminated candidates excluded and all classes kept.
func DefaultConfig() Config {
	return Config{Code: codon.Standard()}
}

// Diagnostics counts what happened to one transcript's candidates.
type Diagnostics struct {
	CandidatesFound  int
	Unterminated     int
	FilteredByReason map[string]int
}

// Output is the per-transcript result of Process.
type Output struct {
	Candidates  []Candidate // Retained, sorted by Start
	Diagnostics Diagnostics
}

// Process scans one entry, classifies and annotates every candidate and
// applies the filter. Dropped candidates are counted by reason.
// The only error is an *InvariantError, which means the entry or the scanner
// is broken and the run must stop.
func Process(e *compile.Entry, cfg Config) (Output, error) {
	code := cfg.Code
	if code == nil {
		code = codon.Standard()
	}

	found := Scan(e, code)
	out := Output{
		Diagnostics: Diagnostics{
			CandidatesFound:  len(found),
			FilteredByReason: make(map[string]int),
		},
	}

	for i := range found {
		c := &found[i]
		annotate(c, e, code)
		if err := checkInvariants(c, e); err != nil {
			return Output{}, err
		}
		if c.Unterminated {
			out.Diagnostics.Unterminated++
		}
		if reason := cfg.Filter.Reason(c, code); reason != "" {
			out.Diagnostics.FilteredByReason[reason]++
			continue
		}
		out.Candidates = append(out.Candidates, *c)
	}

	return out, nil
}

// Results wraps retained candidates with their transcript identity.
func (o Output) Results(e *compile.Entry) []Result {
	results := make([]Result, len(o.Candidates))
	for i, c := range o.Candidates {
		results[i] = Result{
			TranscriptIndex: e.Index,
			TranscriptID:    e.ID,
			GeneID:          e.GeneID,
			GeneName:        e.GeneName,
			Candidate:       c,
		}
	}
	return results
}

func checkInvariants(c *Candidate, e *compile.Entry) error {
	var detail string
	switch {
	case c.Start >= c.End:
		detail = "empty interval"
	case (c.End-c.Start)%3 != 0:
		detail = fmt.Sprintf("length %d is not a multiple of 3", c.End-c.Start)
	case c.Frame != c.Start%3:
		detail = fmt.Sprintf("frame %d does not match start", c.Frame)
	case c.Start >= e.CDSStart:
		detail = fmt.Sprintf("start not upstream of CDS start %d", e.CDSStart)
	case c.End > e.CDSEnd:
		detail = fmt.Sprintf("end beyond CDS end %d", e.CDSEnd)
	case !c.Class.Valid():
		detail = "unclassified"
	case !c.Unterminated && c.StopCodon == "":
		detail = "terminated without stop codon"
	default:
		return nil
	}
	return &InvariantError{TranscriptID: e.ID, Start: c.Start, End: c.End, Detail: detail}
}
