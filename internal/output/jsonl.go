package output

import (
	"bufio"
	"io"

	json "github.com/goccy/go-json"

	"github.com/inodb/vibe-uorf/internal/uorf"
)

// jsonResult is the JSON Lines record for one uORF.
type jsonResult struct {
	TranscriptID   string  `json:"transcript_id"`
	GeneID         string  `json:"gene_id,omitempty"`
	GeneName       string  `json:"gene_name,omitempty"`
	Start          int     `json:"start"`
	End            int     `json:"end"`
	Frame          int     `json:"frame"`
	StartCodon     string  `json:"start_codon"`
	StopCodon      string  `json:"stop_codon,omitempty"`
	OverlapClass   string  `json:"overlap_class"`
	Unterminated   bool    `json:"unterminated"`
	LengthNT       int     `json:"length_nt"`
	LengthAA       int     `json:"length_aa"`
	GCFraction     float64 `json:"gc_fraction"`
	CanonicalStart bool    `json:"canonical_start"`
	DistanceToCDS  int     `json:"distance_to_cds"`
	Kozak          string  `json:"kozak"`
	Peptide        string  `json:"peptide,omitempty"`
}

// JSONLWriter writes one JSON object per result line.
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a new JSON Lines writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	return &JSONLWriter{w: bw, enc: json.NewEncoder(bw)}
}

// WriteHeader is a no-op; JSON Lines has no header.
func (jw *JSONLWriter) WriteHeader() error {
	return nil
}

// Write writes a single result.
func (jw *JSONLWriter) Write(r *uorf.Result) error {
	return jw.enc.Encode(jsonResult{
		TranscriptID:   r.TranscriptID,
		GeneID:         r.GeneID,
		GeneName:       r.GeneName,
		Start:          r.Start,
		End:            r.End,
		Frame:          r.Frame,
		StartCodon:     r.StartCodon,
		StopCodon:      r.StopCodon,
		OverlapClass:   r.Class.String(),
		Unterminated:   r.Unterminated,
		LengthNT:       r.LengthNT,
		LengthAA:       r.LengthAA,
		GCFraction:     r.GCFraction,
		CanonicalStart: r.CanonicalStart,
		DistanceToCDS:  r.DistanceToCDS,
		Kozak:          string(r.Kozak),
		Peptide:        r.Peptide,
	})
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JSONLWriter) Flush() error {
	return jw.w.Flush()
}
