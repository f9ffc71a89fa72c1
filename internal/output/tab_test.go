package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-uorf/internal/cache"
	"github.com/inodb/vibe-uorf/internal/pipeline"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

func sampleResult() *uorf.Result {
	return &uorf.Result{
		TranscriptID: "ENST00000000001",
		GeneID:       "ENSG00000000001",
		GeneName:     "GENEA",
		Candidate: uorf.Candidate{
			Start:          3,
			End:            12,
			Frame:          0,
			StartCodon:     "ATG",
			StopCodon:      "TAG",
			Class:          uorf.NonOverlapping,
			LengthNT:       9,
			LengthAA:       2,
			GCFraction:     2.0 / 9.0,
			CanonicalStart: true,
			DistanceToCDS:  3,
			Kozak:          uorf.KozakWeak,
			Peptide:        "MK",
		},
	}
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	assert.True(t, strings.HasPrefix(header, "#Transcript_ID\t"))
	for _, col := range []string{"Start", "End", "Overlap_class", "Unterminated", "Kozak", "Peptide"} {
		assert.Contains(t, header, col)
	}
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	assert.Equal(t, []string{
		"ENST00000000001", "ENSG00000000001", "GENEA",
		"3", "12", "0", "ATG", "TAG", "non_overlapping", "-",
		"9", "2", "0.2222", "YES", "3", "weak", "MK",
	}, fields)
}

func TestTabWriter_Write_Unterminated(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	r := sampleResult()
	r.GeneID = ""
	r.StopCodon = ""
	r.Unterminated = true
	r.Class = uorf.OverlappingOutOfFrame

	require.NoError(t, w.Write(r))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 17)
	assert.Equal(t, "-", fields[1])
	assert.Equal(t, "-", fields[7])
	assert.Equal(t, "overlapping_out_of_frame", fields[8])
	assert.Equal(t, "YES", fields[9])
}

func TestJSONLWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "ENST00000000001", got["transcript_id"])
	assert.Equal(t, "non_overlapping", got["overlap_class"])
	assert.Equal(t, float64(3), got["start"])
	assert.Equal(t, "TAG", got["stop_codon"])
	assert.Equal(t, false, got["unterminated"])
}

func TestWriteSummary(t *testing.T) {
	rs, diag, err := pipeline.Run([]*cache.Record{
		{ID: "T1", Sequence: "CCCATGAAATAGCCCATGGGGTAA", CDSStart: 15, CDSEnd: 24, Strand: cache.Forward},
		{ID: "T2", Sequence: "CCCATGAXATAG", CDSStart: 3, CDSEnd: 12, Strand: cache.Forward},
	}, uorf.DefaultConfig())
	require.NoError(t, err)

	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSummary("run-1", "in.fa", started, 1500*time.Millisecond, rs, diag)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))

	var back Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "run-1", back.RunID)
	assert.Equal(t, "1.5s", back.Duration)
	assert.Equal(t, 2, back.Records)
	assert.Equal(t, 1, back.Compile.Accepted)
	assert.Equal(t, map[string]int{"invalid_alphabet": 1}, back.Compile.Rejected)
	assert.Equal(t, 1, back.Candidates.Retained)
	assert.Equal(t, map[string]int{"non_overlapping": 1}, back.Candidates.ByClass)
	assert.Contains(t, buf.String(), "transcripts_with_uorfs: 1")
}
