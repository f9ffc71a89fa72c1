// Package cache loads transcript sequence records and CDS annotations.
package cache

import "strings"

// Strand is the transcript orientation relative to the supplied sequence.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

// ParseStrand converts "+", "-", "1", "-1" to a Strand.
// Anything else is returned as-is so validation can reject it later.
func ParseStrand(s string) Strand {
	t := strings.TrimSpace(s)
	switch t {
	case "+", "1", "+1":
		return Forward
	case "-", "-1":
		return Reverse
	case "":
		return 0
	default:
		return Strand(t[0])
	}
}

// String returns the single-character strand symbol.
func (s Strand) String() string {
	if s == 0 {
		return "."
	}
	return string(rune(s))
}

// Record is a transcript sequence plus its annotated main CDS, as read from disk.
// CDS coordinates are 0-based half-open and refer to Sequence as given,
// i.e. before any reverse complementing.
type Record struct {
	ID       string // Transcript ID, version stripped (e.g., ENST00000311936)
	GeneID   string // Parent gene ID, may be empty
	GeneName string // Parent gene symbol, may be empty
	Sequence string // Nucleotide sequence
	CDSStart int    // CDS start (0-based, inclusive)
	CDSEnd   int    // CDS end (0-based, exclusive)
	Strand   Strand // Orientation of Sequence
}

// stripVersion removes a numeric version suffix from Ensembl IDs
// (ENST00000311936.8 -> ENST00000311936). Suffixes such as .10_PAR_Y are
// kept so PAR copies stay distinct from the primary transcript.
func stripVersion(id string) string {
	idx := strings.LastIndex(id, ".")
	if idx == -1 || idx == len(id)-1 {
		return id
	}
	for _, c := range id[idx+1:] {
		if c < '0' || c > '9' {
			return id
		}
	}
	return id[:idx]
}
