package uorf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-uorf/internal/codon"
	"github.com/inodb/vibe-uorf/internal/compile"
)

func entry(id, seq string, cdsStart, cdsEnd int) *compile.Entry {
	return &compile.Entry{ID: id, GeneName: "G1", Sequence: seq, CDSStart: cdsStart, CDSEnd: cdsEnd}
}

func TestProcess_UpstreamStopsBeforeCDS(t *testing.T) {
	e := entry("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)

	c := out.Candidates[0]
	assert.Equal(t, 3, c.Start)
	assert.Equal(t, 12, c.End)
	assert.Equal(t, 0, c.Frame)
	assert.Equal(t, "ATG", c.StartCodon)
	assert.Equal(t, "TAG", c.StopCodon)
	assert.Equal(t, NonOverlapping, c.Class)
	assert.False(t, c.Unterminated)
	assert.Equal(t, 9, c.LengthNT)
	assert.Equal(t, 2, c.LengthAA)
	assert.Equal(t, "MK", c.Peptide)
	assert.Equal(t, 3, c.DistanceToCDS)
	assert.True(t, c.CanonicalStart)
	assert.Equal(t, KozakWeak, c.Kozak)
	assert.InDelta(t, 2.0/9.0, c.GCFraction, 1e-9)

	assert.Equal(t, 1, out.Diagnostics.CandidatesFound)
	assert.Equal(t, 0, out.Diagnostics.Unterminated)
	assert.Empty(t, out.Diagnostics.FilteredByReason)
}

func TestProcess_NoLeader(t *testing.T) {
	out, err := Process(entry("T1", "ATGAAATAA", 0, 9), DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, out.Candidates)
	assert.Equal(t, 0, out.Diagnostics.CandidatesFound)
	assert.Empty(t, out.Diagnostics.FilteredByReason)
}

func TestProcess_Unterminated(t *testing.T) {
	// ATG at 1 in frame 1 runs through the CDS without an in-frame stop.
	e := entry("T1", "CATGCCATGCCCCCCTAA", 6, 18)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, out.Candidates)
	assert.Equal(t, 1, out.Diagnostics.CandidatesFound)
	assert.Equal(t, 1, out.Diagnostics.Unterminated)
	assert.Equal(t, 1, out.Diagnostics.FilteredByReason[DropUnterminated])

	cfg := DefaultConfig()
	cfg.Filter.IncludeUnterminated = true
	out, err = Process(e, cfg)
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)

	c := out.Candidates[0]
	assert.True(t, c.Unterminated)
	assert.Equal(t, 1, c.Start)
	assert.Equal(t, 16, c.End)
	assert.Empty(t, c.StopCodon)
	assert.Equal(t, 5, c.LengthAA)
	assert.Equal(t, OverlappingOutOfFrame, c.Class)
}

func TestProcess_NestedStartsIgnored(t *testing.T) {
	e := entry("T1", "ATGATGTAACCCATGTAA", 12, 18)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, 0, out.Candidates[0].Start)
	assert.Equal(t, 9, out.Candidates[0].End)
	assert.Equal(t, "TAA", out.Candidates[0].StopCodon)
}

func TestProcess_StartAfterStopReopens(t *testing.T) {
	e := entry("T1", "ATGTAAATGTAGCCCATGTAA", 15, 21)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, 0, out.Candidates[0].Start)
	assert.Equal(t, 6, out.Candidates[0].End)
	assert.Equal(t, 6, out.Candidates[1].Start)
	assert.Equal(t, 12, out.Candidates[1].End)
}

func TestProcess_OverlappingInFrame(t *testing.T) {
	e := entry("T1", "ATGCCCATGCCCTAA", 6, 15)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)

	c := out.Candidates[0]
	assert.Equal(t, OverlappingInFrame, c.Class)
	assert.Equal(t, 0, c.Start)
	assert.Equal(t, 15, c.End)
	assert.Equal(t, -9, c.DistanceToCDS)
	assert.Equal(t, KozakUnknown, c.Kozak)
	assert.Equal(t, "MPMP", c.Peptide)
}

func TestProcess_OverlappingOutOfFrame(t *testing.T) {
	e := entry("T1", "CATGCCATGACCTAA", 6, 15)

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)

	c := out.Candidates[0]
	assert.Equal(t, OverlappingOutOfFrame, c.Class)
	assert.Equal(t, 1, c.Start)
	assert.Equal(t, 10, c.End)
	assert.Equal(t, "TGA", c.StopCodon)
}

func TestProcess_Filters(t *testing.T) {
	e := entry("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24)

	t.Run("min length", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Filter.MinLengthNT = 12
		out, err := Process(e, cfg)
		require.NoError(t, err)
		assert.Empty(t, out.Candidates)
		assert.Equal(t, 1, out.Diagnostics.FilteredByReason[DropMinLength])
	})

	t.Run("min length inclusive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Filter.MinLengthNT = 9
		out, err := Process(e, cfg)
		require.NoError(t, err)
		assert.Len(t, out.Candidates, 1)
	})

	t.Run("overlap class", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Filter.OverlapClassesKept = []OverlapClass{OverlappingInFrame}
		out, err := Process(e, cfg)
		require.NoError(t, err)
		assert.Empty(t, out.Candidates)
		assert.Equal(t, 1, out.Diagnostics.FilteredByReason[DropOverlapClass])
	})
}

func TestProcess_NearCognateStart(t *testing.T) {
	code, err := codon.NewGeneticCode("ATG", []string{"CTG"}, codon.StandardStops)
	require.NoError(t, err)
	e := entry("T1", "CTGAAATAGCCCATGTAA", 12, 18)

	out, err := Process(e, Config{Code: code})
	require.NoError(t, err)
	assert.Empty(t, out.Candidates)
	assert.Equal(t, 1, out.Diagnostics.FilteredByReason[DropStartCodon])

	out, err = Process(e, Config{Code: code, Filter: Filter{AllowedStartCodons: []string{"ATG", "ctg"}}})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "CTG", out.Candidates[0].StartCodon)
	assert.False(t, out.Candidates[0].CanonicalStart)
	assert.Equal(t, "MK", out.Candidates[0].Peptide)

	// The standard code never opens at CTG.
	out, err = Process(e, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Diagnostics.CandidatesFound)
}

func TestProcess_FirstFailingReasonCounted(t *testing.T) {
	code, err := codon.NewGeneticCode("ATG", []string{"CTG"}, codon.StandardStops)
	require.NoError(t, err)
	// Unterminated CTG start: unterminated is checked before start codon.
	e := entry("T1", "CCTGCCATGCCCCCCTAA", 6, 18)

	out, err := Process(e, Config{Code: code})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{DropUnterminated: 1}, out.Diagnostics.FilteredByReason)
}

func TestProcess_NilCodeUsesStandard(t *testing.T) {
	out, err := Process(entry("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24), Config{})
	require.NoError(t, err)
	assert.Len(t, out.Candidates, 1)
}

func TestProcess_Idempotent(t *testing.T) {
	e := entry("T1", "ATGTAAATGTAGCCCATGTAA", 15, 21)
	cfg := DefaultConfig()

	first, err := Process(e, cfg)
	require.NoError(t, err)
	second, err := Process(e, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOutput_Results(t *testing.T) {
	e := entry("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24)
	e.Index = 4
	e.GeneID = "ENSG1"

	out, err := Process(e, DefaultConfig())
	require.NoError(t, err)

	results := out.Results(e)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].TranscriptIndex)
	assert.Equal(t, "T1", results[0].TranscriptID)
	assert.Equal(t, "ENSG1", results[0].GeneID)
	assert.Equal(t, "G1", results[0].GeneName)
	assert.Equal(t, 3, results[0].Start)
}

func TestCheckInvariants(t *testing.T) {
	e := entry("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24)

	tests := []struct {
		name string
		c    Candidate
	}{
		{"empty", Candidate{Start: 3, End: 3, Class: NonOverlapping}},
		{"not codon multiple", Candidate{Start: 3, End: 11, Frame: 0, Class: NonOverlapping, StopCodon: "TAG"}},
		{"frame mismatch", Candidate{Start: 3, End: 12, Frame: 1, Class: NonOverlapping, StopCodon: "TAG"}},
		{"start in CDS", Candidate{Start: 15, End: 24, Frame: 0, Class: OverlappingInFrame, StopCodon: "TAA"}},
		{"end past CDS", Candidate{Start: 3, End: 27, Frame: 0, Class: OverlappingInFrame, StopCodon: "TAA"}},
		{"unclassified", Candidate{Start: 3, End: 12, Frame: 0, StopCodon: "TAG"}},
		{"missing stop", Candidate{Start: 3, End: 12, Frame: 0, Class: NonOverlapping}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInvariants(&tt.c, e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvariant))

			var ie *InvariantError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "T1", ie.TranscriptID)
		})
	}

	ok := Candidate{Start: 3, End: 12, Frame: 0, Class: NonOverlapping, StopCodon: "TAG"}
	assert.NoError(t, checkInvariants(&ok, e))
}
