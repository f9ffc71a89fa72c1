package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotationLine(t *testing.T) {
	a, err := parseAnnotationLine("ENST00000311936.8\t191\t760\t-\tKRAS")
	require.NoError(t, err)
	assert.Equal(t, "ENST00000311936", a.TranscriptID)
	assert.Equal(t, 190, a.CDSStart)
	assert.Equal(t, 760, a.CDSEnd)
	assert.Equal(t, Reverse, a.Strand)
	assert.Equal(t, "KRAS", a.GeneName)

	_, err = parseAnnotationLine("ENST1\tx\t10\t+")
	assert.Error(t, err)
	_, err = parseAnnotationLine("ENST1\t1\tx\t+")
	assert.Error(t, err)
	_, err = parseAnnotationLine("ENST1\t1\t10")
	assert.Error(t, err)
}

func TestAnnotationLoader_Parse(t *testing.T) {
	content := "# comment\n" +
		"transcript_id\tcds_start\tcds_end\tstrand\n" +
		"TX1\t4\t12\t+\n" +
		"\n" +
		"TX2\t1\t9\t-1\r\n" +
		"broken\n"

	l := NewAnnotationLoader("")
	rows, err := l.parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, l.Skipped())

	assert.Equal(t, "TX1", rows[0].TranscriptID)
	assert.Equal(t, 3, rows[0].CDSStart)
	assert.Equal(t, 12, rows[0].CDSEnd)
	assert.Equal(t, Forward, rows[0].Strand)
	assert.Equal(t, Reverse, rows[1].Strand)
}

func TestAnnotationLoader_LoadAndMerge(t *testing.T) {
	fa := NewFASTALoader("../../testdata/sample_transcripts.fa")
	require.NoError(t, fa.Load())

	l := NewAnnotationLoader("../../testdata/sample_annotation.tsv")
	rows, err := l.Load()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, l.Skipped())

	records, missing := MergeAnnotations(rows, fa)
	require.Len(t, records, 3)
	assert.Equal(t, 1, missing)

	assert.Equal(t, "ENST00000000001", records[0].ID)
	assert.Equal(t, "GENEA", records[0].GeneName)
	assert.Equal(t, "ENSG00000000001", records[0].GeneID)
	assert.Equal(t, 15, records[0].CDSStart)
	assert.Equal(t, 24, records[0].CDSEnd)

	// Gene symbol falls back to the FASTA header when the table has none
	assert.Equal(t, "GENEC", records[1].GeneName)
	assert.Equal(t, Reverse, records[1].Strand)
	assert.Equal(t, 9, records[1].CDSStart)
	assert.Equal(t, 18, records[1].CDSEnd)

	// Missing sequence is kept with an empty sequence
	assert.Equal(t, "ENST00000000009", records[2].ID)
	assert.Empty(t, records[2].Sequence)
}
