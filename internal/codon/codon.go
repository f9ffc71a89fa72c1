// Package codon provides codon classification, translation and strand helpers
// for upstream ORF scanning.
package codon

import (
	"fmt"
	"strings"
)

// Kind is the role a codon plays under a genetic code.
type Kind uint8

const (
	Other Kind = iota
	Start
	Stop
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Stop:
		return "stop"
	default:
		return "other"
	}
}

// CanonicalStart is the canonical AUG start codon in DNA form.
const CanonicalStart = "ATG"

// StandardStops are the stop codons of the standard genetic code.
var StandardStops = []string{"TAA", "TAG", "TGA"}

// GeneticCode classifies codons as start, stop or other.
// It is read-only after construction and safe for concurrent use.
type GeneticCode struct {
	canonical    string
	alternatives []string
	stops        []string
	kinds        [64]Kind
}

// NewGeneticCode builds a genetic code from literal codon strings.
// Codons are case-insensitive and must consist of A, C, G and T only.
// A codon may not be both a start and a stop codon.
func NewGeneticCode(canonical string, alternatives, stops []string) (*GeneticCode, error) {
	gc := &GeneticCode{}

	canonical = strings.ToUpper(canonical)
	idx, ok := index(canonical)
	if !ok {
		return nil, fmt.Errorf("invalid canonical start codon %q", canonical)
	}
	gc.canonical = canonical
	gc.kinds[idx] = Start

	if len(stops) == 0 {
		return nil, fmt.Errorf("genetic code needs at least one stop codon")
	}
	for _, s := range stops {
		s = strings.ToUpper(s)
		idx, ok := index(s)
		if !ok {
			return nil, fmt.Errorf("invalid stop codon %q", s)
		}
		if gc.kinds[idx] == Start {
			return nil, fmt.Errorf("codon %s cannot be both start and stop", s)
		}
		if gc.kinds[idx] == Stop {
			continue
		}
		gc.kinds[idx] = Stop
		gc.stops = append(gc.stops, s)
	}

	for _, a := range alternatives {
		a = strings.ToUpper(a)
		idx, ok := index(a)
		if !ok {
			return nil, fmt.Errorf("invalid alternative start codon %q", a)
		}
		switch gc.kinds[idx] {
		case Stop:
			return nil, fmt.Errorf("codon %s cannot be both start and stop", a)
		case Start:
			continue // duplicate or the canonical codon itself
		}
		gc.kinds[idx] = Start
		gc.alternatives = append(gc.alternatives, a)
	}

	return gc, nil
}

// Standard returns the standard genetic code with ATG as the only start codon.
func Standard() *GeneticCode {
	gc, err := NewGeneticCode(CanonicalStart, nil, StandardStops)
	if err != nil {
		panic(err)
	}
	return gc
}

// Classify returns the kind of a 3-nt window.
// Windows of the wrong length or containing anything other than A, C, G, T
// (in either case) are always Other.
func (gc *GeneticCode) Classify(window string) Kind {
	idx, ok := index(window)
	if !ok {
		return Other
	}
	return gc.kinds[idx]
}

// IsStart reports whether the window is a canonical or alternative start codon.
func (gc *GeneticCode) IsStart(window string) bool {
	return gc.Classify(window) == Start
}

// IsStop reports whether the window is a stop codon.
func (gc *GeneticCode) IsStop(window string) bool {
	return gc.Classify(window) == Stop
}

// IsCanonicalStart reports whether the window is the canonical start codon.
func (gc *GeneticCode) IsCanonicalStart(window string) bool {
	return strings.EqualFold(window, gc.canonical) && gc.Classify(window) == Start
}

// Canonical returns the canonical start codon.
func (gc *GeneticCode) Canonical() string {
	return gc.canonical
}

// StartCodons returns the canonical start codon followed by the alternatives.
func (gc *GeneticCode) StartCodons() []string {
	out := make([]string, 0, 1+len(gc.alternatives))
	out = append(out, gc.canonical)
	return append(out, gc.alternatives...)
}

// AlternativeStarts returns the non-canonical start codons.
func (gc *GeneticCode) AlternativeStarts() []string {
	return append([]string(nil), gc.alternatives...)
}

// StopCodons returns the stop codons.
func (gc *GeneticCode) StopCodons() []string {
	return append([]string(nil), gc.stops...)
}

// index encodes a codon as a 6-bit table index (A=0, C=1, G=2, T=3).
func index(window string) (int, bool) {
	if len(window) != 3 {
		return 0, false
	}
	idx := 0
	for i := 0; i < 3; i++ {
		v, ok := baseValue(window[i])
		if !ok {
			return 0, false
		}
		idx = idx<<2 | v
	}
	return idx, true
}

func baseValue(b byte) (int, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	default:
		return 0, false
	}
}
