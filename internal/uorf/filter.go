package uorf

import (
	"strings"

	"github.com/inodb/vibe-uorf/internal/codon"
)

// Drop reasons, checked in this order.
const (
	DropUnterminated = "unterminated"
	DropStartCodon   = "start_codon"
	DropMinLength    = "min_length"
	DropOverlapClass = "overlap_class"
)

// DropReasons lists every drop reason in evaluation order.
var DropReasons = []string{DropUnterminated, DropStartCodon, DropMinLength, DropOverlapClass}

// Filter decides which candidates are retained.
type Filter struct {
	// MinLengthNT is the minimum ORF length including the stop codon.
	MinLengthNT int
	// AllowedStartCodons limits retained start codons. Empty means the
	// canonical start codon only.
	AllowedStartCodons []string
	// IncludeUnterminated retains candidates without an in-frame stop.
	IncludeUnterminated bool
	// OverlapClassesKept limits retained classes. Empty means all.
	OverlapClassesKept []OverlapClass
}

// Reason returns the first predicate c fails, or "" if c is retained.
func (f *Filter) Reason(c *Candidate, code *codon.GeneticCode) string {
	if c.Unterminated && !f.IncludeUnterminated {
		return DropUnterminated
	}
	if !f.startAllowed(c.StartCodon, code) {
		return DropStartCodon
	}
	if c.LengthNT < f.MinLengthNT {
		return DropMinLength
	}
	if !f.classKept(c.Class) {
		return DropOverlapClass
	}
	return ""
}

func (f *Filter) startAllowed(startCodon string, code *codon.GeneticCode) bool {
	if len(f.AllowedStartCodons) == 0 {
		return code.IsCanonicalStart(startCodon)
	}
	for _, s := range f.AllowedStartCodons {
		if strings.EqualFold(s, startCodon) {
			return true
		}
	}
	return false
}

func (f *Filter) classKept(c OverlapClass) bool {
	if len(f.OverlapClassesKept) == 0 {
		return true
	}
	for _, k := range f.OverlapClassesKept {
		if k == c {
			return true
		}
	}
	return false
}
