package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-uorf/internal/cache"
	"github.com/inodb/vibe-uorf/internal/compile"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

func record(id, seq string, cdsStart, cdsEnd int) *cache.Record {
	return &cache.Record{ID: id, Sequence: seq, CDSStart: cdsStart, CDSEnd: cdsEnd, Strand: cache.Forward}
}

// makeRecords builds n records that alternate between transcripts with one,
// two and zero upstream ORFs.
func makeRecords(n int) []*cache.Record {
	templates := []struct {
		seq      string
		cdsStart int
	}{
		{"CCCATGAAATAGCCCATGGGGTAA", 15},
		{"ATGTAAATGTAGCCCATGTAA", 15},
		{"ATGAAATAA", 0},
	}
	recs := make([]*cache.Record, n)
	for i := range n {
		tpl := templates[i%len(templates)]
		recs[i] = record(fmt.Sprintf("ENST%011d", i), tpl.seq, tpl.cdsStart, len(tpl.seq))
	}
	return recs
}

func TestRun_UpstreamScenario(t *testing.T) {
	rs, diag, err := Run([]*cache.Record{
		record("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24),
	}, uorf.DefaultConfig())
	require.NoError(t, err)

	require.Equal(t, 1, rs.Len())
	r := rs.Results[0]
	assert.Equal(t, "T1", r.TranscriptID)
	assert.Equal(t, 3, r.Start)
	assert.Equal(t, 12, r.End)
	assert.Equal(t, uorf.NonOverlapping, r.Class)

	assert.Equal(t, 1, diag.Accepted)
	assert.Equal(t, 1, diag.CandidatesFound)
	assert.Equal(t, 1, diag.CandidatesRetained)
	assert.Equal(t, 1, diag.TranscriptsWithUORFs)
	assert.Equal(t, 0, diag.Rejected())
}

func TestRun_InvalidAlphabetContinues(t *testing.T) {
	rs, diag, err := Run([]*cache.Record{
		record("T1", "CCCATGAAATAGCCCATGGGGTAA", 15, 24),
		record("T2", "CCCATGAXATAGCCCATGGGGTAA", 15, 24),
		record("T3", "ATGTAAATGTAGCCCATGTAA", 15, 21),
	}, uorf.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, diag.Records)
	assert.Equal(t, 2, diag.Accepted)
	assert.Equal(t, map[string]int{compile.ReasonInvalidAlphabet: 1}, diag.RejectedByReason)
	require.Len(t, diag.Rejections, 1)
	assert.Equal(t, "T2", diag.Rejections[0].ID)
	assert.Equal(t, 1, diag.Rejections[0].Index)

	require.Equal(t, 3, rs.Len())
	assert.Len(t, rs.ByTranscript("T1"), 1)
	assert.Len(t, rs.ByTranscript("T3"), 2)
	assert.Empty(t, rs.ByTranscript("T2"))
}

func TestRun_ReverseStrand(t *testing.T) {
	// Given text is the reverse complement of CCATGAAATAGCCATGTAA
	// (leader CCATGAAATAGCC, CDS ATGTAA); CDS [0,6) on the given text.
	rec := record("TX", "TTACATGGCTATTTCATGG", 0, 6)
	rec.Strand = cache.Reverse

	rs, diag, err := Run([]*cache.Record{rec}, uorf.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, diag.Accepted)

	require.Equal(t, 1, rs.Len())
	r := rs.Results[0]
	assert.Equal(t, "TX", r.TranscriptID)
	assert.Equal(t, 2, r.Start)
	assert.Equal(t, 11, r.End)
	assert.Equal(t, 2, r.Frame)
	assert.Equal(t, "ATG", r.StartCodon)
	assert.Equal(t, "TAG", r.StopCodon)
	assert.Equal(t, uorf.NonOverlapping, r.Class)
	assert.Equal(t, 2, r.DistanceToCDS)
	assert.Equal(t, "MK", r.Peptide)
}

func TestRun_RepeatedIDCounted(t *testing.T) {
	rs, diag, err := Run([]*cache.Record{
		record("ENST1", "CCCATGAAATAG", 3, 12),
		record("ENST1", "GGGATGCCCTAA", 3, 12),
	}, uorf.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, diag.Records)
	assert.Equal(t, 1, diag.Accepted)
	assert.Equal(t, map[string]int{compile.ReasonDuplicateID: 1}, diag.RejectedByReason)
	require.Len(t, diag.Rejections, 1)
	assert.Equal(t, 1, diag.Rejections[0].Index)
	assert.Equal(t, 0, rs.Len())
}

func TestRun_UnterminatedCounted(t *testing.T) {
	rs, diag, err := Run([]*cache.Record{
		record("T1", "CATGCCATGCCCCCCTAA", 6, 18),
	}, uorf.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, 1, diag.CandidatesFound)
	assert.Equal(t, 1, diag.Unterminated)
	assert.Equal(t, 1, diag.FilteredByReason[uorf.DropUnterminated])
	assert.Equal(t, 0, diag.TranscriptsWithUORFs)
}

func TestRun_LeaderlessTranscript(t *testing.T) {
	rs, diag, err := Run([]*cache.Record{record("T1", "ATGAAATAA", 0, 9)}, uorf.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, 1, diag.Accepted)
	assert.Equal(t, 0, diag.CandidatesFound)
	assert.Empty(t, diag.FilteredByReason)
	assert.Empty(t, diag.RejectedByReason)
}

func TestRun_WorkerCountDoesNotChangeOutput(t *testing.T) {
	recs := makeRecords(300)

	single := NewRunner(uorf.DefaultConfig())
	single.SetWorkers(1)
	want, wantDiag, err := single.Run(recs)
	require.NoError(t, err)

	for _, workers := range []int{2, 8, 0} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			r := NewRunner(uorf.DefaultConfig())
			r.SetWorkers(workers)
			got, gotDiag, err := r.Run(recs)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, wantDiag, gotDiag)
		})
	}

	// Results follow input order, then start position.
	prevIdx, prevStart := -1, -1
	for _, res := range want.Results {
		if res.TranscriptIndex == prevIdx {
			assert.Greater(t, res.Start, prevStart)
		} else {
			assert.Greater(t, res.TranscriptIndex, prevIdx)
		}
		prevIdx, prevStart = res.TranscriptIndex, res.Start
	}
	assert.Equal(t, 300, want.Len())
	assert.Equal(t, 200, wantDiag.TranscriptsWithUORFs)
}

func TestRun_EmptyBatch(t *testing.T) {
	rs, diag, err := Run(nil, uorf.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, 0, diag.Accepted)
}

func TestOrderedCollect_OutOfOrder(t *testing.T) {
	results := make(chan WorkResult, 5)
	for _, seq := range []int{3, 1, 4, 0, 2} {
		results <- WorkResult{Seq: seq}
	}
	close(results)

	var got []int
	err := OrderedCollect(results, func(r WorkResult) error {
		got = append(got, r.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	invariant := &uorf.InvariantError{TranscriptID: "T1", Detail: "bad"}
	results := make(chan WorkResult, 10)
	for i := range 10 {
		wr := WorkResult{Seq: i}
		if i == 2 {
			wr.Err = invariant
		}
		results <- wr
	}
	close(results)

	var seen int
	err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			return r.Err
		}
		seen++
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, uorf.ErrInvariant))
	assert.Equal(t, 2, seen)
	assert.Empty(t, results, "remaining results should be drained")
}

func TestParallelProcess_AllItemsProcessed(t *testing.T) {
	entries, _ := compile.Compile(makeRecords(50))
	items := make(chan WorkItem, len(entries))
	for i, e := range entries {
		items <- WorkItem{Seq: i, Entry: e}
	}
	close(items)

	seen := make(map[int]bool)
	for r := range ParallelProcess(items, uorf.DefaultConfig(), 4) {
		require.NoError(t, r.Err)
		seen[r.Seq] = true
	}
	assert.Len(t, seen, 50)
}
