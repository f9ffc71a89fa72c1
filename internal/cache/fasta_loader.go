package cache

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// FASTALoader loads transcript sequences from FASTA files.
// GENCODE pc_transcripts headers additionally carry gene identity and the
// CDS range, so those files need no separate annotation.
type FASTALoader struct {
	path    string
	entries []fastaEntry   // every FASTA record, in file order
	index   map[string]int // transcript_id -> first entry with that ID
}

type fastaEntry struct {
	id       string
	sequence string
	cds      [2]int // [cdsStart, cdsEnd], 1-based from header
	hasCDS   bool
	geneID   string
	geneName string
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:  path,
		index: make(map[string]int),
	}
}

// Load parses the FASTA file and stores sequences indexed by transcript ID.
func (l *FASTALoader) Load() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parseFASTA(reader)
}

// parseFASTA parses FASTA content.
// GENCODE pc_transcripts headers look like:
// >ENST00000456328.2|ENSG00000290825.1|OTTHUMG00000002860.3|OTTHUMT00000007999.2|DDX11L2-202|DDX11L2|459|UTR5:1-200|CDS:201-459|UTR3:460-1657|
func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	sc := seqio.NewScanner(fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		header := s.ID

		id := parseHeader(header)
		if id == "" {
			continue
		}
		e := fastaEntry{id: id, sequence: string(s.Seq)}
		if cdsStart, cdsEnd, ok := parseCDSRange(header); ok {
			e.cds = [2]int{cdsStart, cdsEnd}
			e.hasCDS = true
		}
		e.geneID, e.geneName, _ = parseGene(header)

		// Repeated IDs stay separate entries; compile rejects all but the first.
		if _, dup := l.index[id]; !dup {
			l.index[id] = len(l.entries)
		}
		l.entries = append(l.entries, e)
	}
	if err := sc.Error(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}
	return nil
}

// parseHeader extracts the transcript ID from a FASTA header.
// The biogo reader has already split off anything after the first space.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.Index(header, "|"); idx != -1 {
		header = header[:idx]
	}
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		header = header[:idx]
	}
	return stripVersion(header)
}

// parseGene extracts the gene ID (field 2) and gene symbol (field 6) from a
// GENCODE header.
func parseGene(header string) (geneID, geneName string, ok bool) {
	fields := strings.Split(header, "|")
	if len(fields) < 6 {
		return "", "", false
	}
	return stripVersion(fields[1]), fields[5], true
}

// parseCDSRange extracts CDS start and end positions from a GENCODE FASTA header.
// Header format: >ENST...|...|CDS:90-920|...
// Returns 1-based inclusive start and end positions.
func parseCDSRange(header string) (start, end int, ok bool) {
	for _, field := range strings.Split(header, "|") {
		field = strings.TrimSpace(field)
		if !strings.HasPrefix(field, "CDS:") {
			continue
		}
		s, e, found := strings.Cut(field[4:], "-")
		if !found {
			return 0, 0, false
		}
		sv, err1 := strconv.Atoi(s)
		ev, err2 := strconv.Atoi(e)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return sv, ev, true
	}
	return 0, 0, false
}

// Records returns one forward-strand record per sequence whose header carries
// a CDS range, in file order. Repeated IDs are returned as they appear.
// CDS ranges are converted to 0-based half-open.
func (l *FASTALoader) Records() []*Record {
	records := make([]*Record, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.hasCDS {
			continue
		}
		records = append(records, &Record{
			ID:       e.id,
			GeneID:   e.geneID,
			GeneName: e.geneName,
			Sequence: e.sequence,
			CDSStart: e.cds[0] - 1,
			CDSEnd:   e.cds[1],
			Strand:   Forward,
		})
	}
	return records
}

// Unannotated returns the number of sequences without a CDS range in their header.
func (l *FASTALoader) Unannotated() int {
	var n int
	for _, e := range l.entries {
		if !e.hasCDS {
			n++
		}
	}
	return n
}

// lookup finds the first entry for a transcript ID, with or without version.
func (l *FASTALoader) lookup(transcriptID string) (*fastaEntry, bool) {
	i, ok := l.index[stripVersion(transcriptID)]
	if !ok {
		i, ok = l.index[transcriptID]
	}
	if !ok {
		return nil, false
	}
	return &l.entries[i], true
}

// GetSequence returns the full sequence for a transcript ID, with or without version.
// When the ID is repeated, the first occurrence is returned.
func (l *FASTALoader) GetSequence(transcriptID string) string {
	if e, ok := l.lookup(transcriptID); ok {
		return e.sequence
	}
	return ""
}

// GeneOf returns the gene ID and symbol parsed from the header, if any.
func (l *FASTALoader) GeneOf(transcriptID string) (geneID, geneName string) {
	if e, ok := l.lookup(transcriptID); ok {
		return e.geneID, e.geneName
	}
	return "", ""
}

// SequenceCount returns the number of loaded sequences, repeats included.
func (l *FASTALoader) SequenceCount() int {
	return len(l.entries)
}

// HasSequence checks if a sequence exists for the given transcript ID.
func (l *FASTALoader) HasSequence(transcriptID string) bool {
	_, ok := l.lookup(transcriptID)
	return ok
}
