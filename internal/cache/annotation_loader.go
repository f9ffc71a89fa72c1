package cache

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Annotation is one row of a CDS annotation table.
type Annotation struct {
	TranscriptID string
	GeneName     string
	CDSStart     int // 0-based, inclusive
	CDSEnd       int // 0-based, exclusive
	Strand       Strand
}

// AnnotationLoader loads CDS boundaries from a tab-delimited table:
//
//	transcript_id  cds_start  cds_end  strand  [gene_name]
//
// cds_start and cds_end are 1-based inclusive, matching GENCODE headers.
// Coordinates refer to the transcript sequence in the FASTA file; for "-"
// rows the FASTA sequence is the genomic (forward) strand.
type AnnotationLoader struct {
	path    string
	skipped int
}

// NewAnnotationLoader creates a new annotation table loader.
func NewAnnotationLoader(path string) *AnnotationLoader {
	return &AnnotationLoader{path: path}
}

// Load parses the annotation table, returning rows in file order.
func (l *AnnotationLoader) Load() ([]Annotation, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parse(reader)
}

// Skipped returns the number of malformed lines ignored by the last Load.
func (l *AnnotationLoader) Skipped() int {
	return l.skipped
}

func (l *AnnotationLoader) parse(reader io.Reader) ([]Annotation, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	l.skipped = 0
	var rows []Annotation
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		// Skip comments, blank lines and the header
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "transcript_id\t") {
			continue
		}

		row, err := parseAnnotationLine(line)
		if err != nil {
			l.skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan annotation file: %w", err)
	}
	return rows, nil
}

func parseAnnotationLine(line string) (Annotation, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 4 {
		return Annotation{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Annotation{}, fmt.Errorf("parse cds_start: %w", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Annotation{}, fmt.Errorf("parse cds_end: %w", err)
	}

	a := Annotation{
		TranscriptID: stripVersion(strings.TrimSpace(fields[0])),
		CDSStart:     start - 1,
		CDSEnd:       end,
		Strand:       ParseStrand(fields[3]),
	}
	if len(fields) > 4 {
		a.GeneName = strings.TrimSpace(fields[4])
	}
	return a, nil
}

// MergeAnnotations pairs annotation rows with sequences from a FASTA loader,
// producing records in annotation order. Rows whose transcript has no
// sequence still yield a record (with an empty sequence) so that downstream
// validation accounts for them. The second return value counts those rows.
func MergeAnnotations(rows []Annotation, fa *FASTALoader) ([]*Record, int) {
	records := make([]*Record, 0, len(rows))
	missing := 0
	for _, a := range rows {
		seq := fa.GetSequence(a.TranscriptID)
		if seq == "" {
			missing++
		}
		geneID, geneName := fa.GeneOf(a.TranscriptID)
		if a.GeneName != "" {
			geneName = a.GeneName
		}
		records = append(records, &Record{
			ID:       a.TranscriptID,
			GeneID:   geneID,
			GeneName: geneName,
			Sequence: seq,
			CDSStart: a.CDSStart,
			CDSEnd:   a.CDSEnd,
			Strand:   a.Strand,
		})
	}
	return records, missing
}
