// Package uorf scans transcript leaders for upstream open reading frames and
// classifies them against the annotated main CDS.
package uorf

import (
	"errors"
	"fmt"
	"strings"
)

// OverlapClass is the positional and frame relationship of a uORF to the main CDS.
type OverlapClass uint8

const (
	ClassUnknown OverlapClass = iota
	NonOverlapping
	OverlappingOutOfFrame
	OverlappingInFrame
)

// Overlap class names as reported in output.
const (
	NameNonOverlapping        = "non_overlapping"
	NameOverlappingOutOfFrame = "overlapping_out_of_frame"
	NameOverlappingInFrame    = "overlapping_in_frame"
)

// AllClasses lists every valid overlap class in reporting order.
var AllClasses = []OverlapClass{NonOverlapping, OverlappingOutOfFrame, OverlappingInFrame}

// String returns the snake_case class name.
func (c OverlapClass) String() string {
	switch c {
	case NonOverlapping:
		return NameNonOverlapping
	case OverlappingOutOfFrame:
		return NameOverlappingOutOfFrame
	case OverlappingInFrame:
		return NameOverlappingInFrame
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the three overlap classes.
func (c OverlapClass) Valid() bool {
	return c >= NonOverlapping && c <= OverlappingInFrame
}

// ParseOverlapClass parses a class name (case-insensitive; "-" is accepted for "_").
func ParseOverlapClass(s string) (OverlapClass, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, c := range AllClasses {
		if c.String() == name {
			return c, nil
		}
	}
	return ClassUnknown, fmt.Errorf("unknown overlap class %q", s)
}

// Kozak is the strength of the translation initiation context around a start codon.
type Kozak string

const (
	KozakStrong   Kozak = "strong"   // purine at -3 and G at +4
	KozakAdequate Kozak = "adequate" // exactly one of the two
	KozakWeak     Kozak = "weak"     // neither
	KozakUnknown  Kozak = "unknown"  // -3 outside the sequence
)

// Candidate is an upstream ORF found in one transcript.
// Start and End are 0-based half-open coordinates in the (strand-normalized)
// transcript sequence.
type Candidate struct {
	Start        int
	End          int
	Frame        int    // Start % 3
	StartCodon   string // Observed start codon
	StopCodon    string // Observed stop codon, empty if unterminated
	Class        OverlapClass
	Unterminated bool // No in-frame stop before the CDS end

	LengthNT       int     // End - Start, stop codon included
	LengthAA       int     // Codons excluding the stop
	GCFraction     float64 // G+C fraction of [Start, End)
	CanonicalStart bool    // StartCodon is the canonical start codon
	DistanceToCDS  int     // CDSStart - End; <= 0 when overlapping the CDS
	Kozak          Kozak
	Peptide        string // Translation without the stop
}

// Result is a retained candidate together with its transcript.
type Result struct {
	TranscriptIndex int // Input order of the transcript
	TranscriptID    string
	GeneID          string
	GeneName        string
	Candidate
}

// ErrInvariant is wrapped by every InvariantError.
var ErrInvariant = errors.New("uorf invariant violated")

// InvariantError reports a candidate that breaks a structural invariant.
// It signals a defect in compilation or scanning, not bad input data.
type InvariantError struct {
	TranscriptID string
	Start        int
	End          int
	Detail       string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: transcript %s candidate [%d,%d): %s", ErrInvariant, e.TranscriptID, e.Start, e.End, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}
