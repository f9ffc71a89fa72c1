// Package output provides uORF result formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-uorf/internal/uorf"
)

// ResultWriter defines the interface for writing uORF results.
type ResultWriter interface {
	WriteHeader() error
	Write(r *uorf.Result) error
	Flush() error
}

// TabWriter writes results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Transcript_ID",
			"Gene_ID",
			"Gene",
			"Start",
			"End",
			"Frame",
			"Start_codon",
			"Stop_codon",
			"Overlap_class",
			"Unterminated",
			"Length_nt",
			"Length_aa",
			"GC_fraction",
			"Canonical_start",
			"Distance_to_CDS",
			"Kozak",
			"Peptide",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single result. Start and End are 0-based half-open.
func (tw *TabWriter) Write(r *uorf.Result) error {
	values := []string{
		orDash(r.TranscriptID),
		orDash(r.GeneID),
		orDash(r.GeneName),
		strconv.Itoa(r.Start),
		strconv.Itoa(r.End),
		strconv.Itoa(r.Frame),
		r.StartCodon,
		orDash(r.StopCodon),
		r.Class.String(),
		yesDash(r.Unterminated),
		strconv.Itoa(r.LengthNT),
		strconv.Itoa(r.LengthAA),
		strconv.FormatFloat(r.GCFraction, 'f', 4, 64),
		yesDash(r.CanonicalStart),
		strconv.Itoa(r.DistanceToCDS),
		string(r.Kozak),
		orDash(r.Peptide),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesDash(b bool) string {
	if b {
		return "YES"
	}
	return "-"
}
