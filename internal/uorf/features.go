package uorf

import (
	"github.com/inodb/vibe-uorf/internal/codon"
	"github.com/inodb/vibe-uorf/internal/compile"
)

// annotate classifies c and fills in its derived features.
func annotate(c *Candidate, e *compile.Entry, code *codon.GeneticCode) {
	seq := e.Sequence[c.Start:c.End]

	c.Class = Classify(c.Start, c.End, e.CDSStart, e.CDSEnd)
	c.LengthNT = c.End - c.Start
	c.LengthAA = c.LengthNT / 3
	if !c.Unterminated {
		c.LengthAA--
	}
	c.GCFraction = codon.GCFraction(seq)
	c.CanonicalStart = code.IsCanonicalStart(c.StartCodon)
	c.DistanceToCDS = e.CDSStart - c.End
	c.Kozak = kozakContext(e.Sequence, c.Start)
	c.Peptide = peptide(seq, c.LengthAA)
}

// kozakContext scores the -3 and +4 positions around the start codon at pos
// (A of AUG is +1). A missing +4 counts as not G.
func kozakContext(seq string, pos int) Kozak {
	minus3, plus4 := pos-3, pos+3
	if minus3 < 0 {
		return KozakUnknown
	}
	purine := seq[minus3] == 'A' || seq[minus3] == 'G'
	g := plus4 < len(seq) && seq[plus4] == 'G'
	switch {
	case purine && g:
		return KozakStrong
	case purine || g:
		return KozakAdequate
	default:
		return KozakWeak
	}
}

// peptide translates an ORF, dropping the stop. Initiation always inserts
// methionine, also at near-cognate start codons.
func peptide(orf string, aa int) string {
	if aa <= 0 {
		return ""
	}
	p := []byte(codon.Translate(orf[:aa*3]))
	p[0] = 'M'
	return string(p)
}
