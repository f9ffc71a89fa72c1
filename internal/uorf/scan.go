package uorf

import (
	"sort"

	"github.com/inodb/vibe-uorf/internal/codon"
	"github.com/inodb/vibe-uorf/internal/compile"
)

// Scan finds uORF candidates in sequence[0, CDSEnd) across all three frames.
//
// In each frame codons are read left to right. A start codon upstream of
// CDSStart opens a candidate when none is open; starts inside an open
// candidate are ignored. The first in-frame stop closes it and the search
// for the next start resumes after the stop. A candidate still open at the
// end of the region is returned as unterminated, ending at the last complete
// codon. Starts at or after CDSStart belong to the main CDS region and never
// open a candidate.
//
// Only coordinates, codons, frame and the unterminated flag are set;
// classification and features are added by Process.
// Candidates are returned sorted by Start.
func Scan(e *compile.Entry, code *codon.GeneticCode) []Candidate {
	seq := e.Sequence
	var cands []Candidate

	for frame := 0; frame < 3; frame++ {
		open := -1
		i := frame
		for ; i+3 <= e.CDSEnd; i += 3 {
			window := seq[i : i+3]
			if open < 0 {
				if i >= e.CDSStart {
					break
				}
				if code.IsStart(window) {
					open = i
				}
				continue
			}
			if code.IsStop(window) {
				cands = append(cands, Candidate{
					Start:      open,
					End:        i + 3,
					Frame:      frame,
					StartCodon: seq[open : open+3],
					StopCodon:  window,
				})
				open = -1
			}
		}
		if open >= 0 {
			cands = append(cands, Candidate{
				Start:        open,
				End:          i,
				Frame:        frame,
				StartCodon:   seq[open : open+3],
				Unterminated: true,
			})
		}
	}

	sort.Slice(cands, func(a, b int) bool {
		return cands[a].Start < cands[b].Start
	})
	return cands
}
