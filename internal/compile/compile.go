// Package compile validates and normalizes transcript records into
// strand-agnostic entries ready for uORF scanning.
package compile

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-uorf/internal/cache"
	"github.com/inodb/vibe-uorf/internal/codon"
)

// Rejection reason codes.
const (
	ReasonMissingID       = "missing_id"
	ReasonEmptySequence   = "empty_sequence"
	ReasonInvalidAlphabet = "invalid_alphabet"
	ReasonInvalidStrand   = "invalid_strand"
	ReasonInvalidCDSRange = "invalid_cds_range"
	ReasonDuplicateID     = "duplicate_id"
)

// Entry is a validated transcript. If the source record was on the reverse
// strand, Sequence is already the reverse complement and the CDS interval
// has been remapped, so scanning never needs to look at Strand.
// Entries are immutable once returned by Compile.
type Entry struct {
	Index    int    // Position in compiled (input) order
	ID       string // Transcript ID, unique within a batch
	GeneID   string
	GeneName string
	Sequence string       // Uppercase, alphabet {A,C,G,T,N}
	Strand   cache.Strand // Strand of the source record
	CDSStart int          // 0-based, inclusive
	CDSEnd   int          // 0-based, exclusive
}

// Leader returns the 5' leader, Sequence[0:CDSStart]. It may be empty.
func (e *Entry) Leader() string {
	return e.Sequence[:e.CDSStart]
}

// Rejection records why an input record was excluded.
type Rejection struct {
	Index  int    // Position of the record in the input batch
	ID     string // Record ID as given (may be empty)
	Reason string // One of the Reason* codes
	Detail string
}

// Diagnostics summarizes a Compile call.
type Diagnostics struct {
	Accepted         int
	RejectedByReason map[string]int
	Rejections       []Rejection
}

// Rejected returns the total number of rejected records.
func (d *Diagnostics) Rejected() int {
	return len(d.Rejections)
}

func (d *Diagnostics) reject(index int, id, reason, detail string) {
	d.RejectedByReason[reason]++
	d.Rejections = append(d.Rejections, Rejection{Index: index, ID: id, Reason: reason, Detail: detail})
}

// Compile validates records and returns accepted entries in input order.
// A bad record is rejected and counted; it never stops the batch.
// When an ID appears more than once the first valid occurrence wins.
func Compile(records []*cache.Record) ([]*Entry, Diagnostics) {
	diag := Diagnostics{RejectedByReason: make(map[string]int)}
	entries := make([]*Entry, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, r := range records {
		if r == nil {
			diag.reject(i, "", ReasonMissingID, "nil record")
			continue
		}
		if reason, detail := validate(r); reason != "" {
			diag.reject(i, r.ID, reason, detail)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			diag.reject(i, r.ID, ReasonDuplicateID, "id already seen in this batch")
			continue
		}
		seen[r.ID] = struct{}{}

		entries = append(entries, normalize(r, len(entries)))
	}

	diag.Accepted = len(entries)
	return entries, diag
}

// validate returns the first failing reason code for a record, or "".
func validate(r *cache.Record) (reason, detail string) {
	if strings.TrimSpace(r.ID) == "" {
		return ReasonMissingID, "empty transcript id"
	}
	if len(r.Sequence) == 0 {
		return ReasonEmptySequence, "no sequence"
	}
	if pos, ok := checkAlphabet(r.Sequence); !ok {
		return ReasonInvalidAlphabet, fmt.Sprintf("symbol %q at position %d", r.Sequence[pos], pos)
	}
	if r.Strand != cache.Forward && r.Strand != cache.Reverse {
		return ReasonInvalidStrand, fmt.Sprintf("strand %q", r.Strand.String())
	}
	if r.CDSStart < 0 || r.CDSStart >= r.CDSEnd || r.CDSEnd > len(r.Sequence) {
		return ReasonInvalidCDSRange, fmt.Sprintf("cds [%d,%d) on sequence of length %d", r.CDSStart, r.CDSEnd, len(r.Sequence))
	}
	return "", ""
}

// checkAlphabet returns the position of the first symbol outside
// {A,C,G,T,N} (either case).
func checkAlphabet(seq string) (int, bool) {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return i, false
		}
	}
	return 0, true
}

// normalize uppercases the sequence and maps reverse-strand records onto
// their reverse complement.
func normalize(r *cache.Record, index int) *Entry {
	seq := strings.ToUpper(r.Sequence)
	start, end := r.CDSStart, r.CDSEnd
	if r.Strand == cache.Reverse {
		seq = codon.ReverseComplement(seq)
		start, end = codon.RemapInterval(start, end, len(seq))
	}
	return &Entry{
		Index:    index,
		ID:       r.ID,
		GeneID:   r.GeneID,
		GeneName: r.GeneName,
		Sequence: seq,
		Strand:   r.Strand,
		CDSStart: start,
		CDSEnd:   end,
	}
}
