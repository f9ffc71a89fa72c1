package duckdb

import (
	"os"
	"strconv"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
// The zero value stands for "no file".
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
// An empty path yields the zero fingerprint.
func StatFile(path string) (FileFingerprint, error) {
	if path == "" {
		return FileFingerprint{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// metaEntries returns the key=value pairs recorded for fp under prefix.
func (fp FileFingerprint) metaEntries(prefix string) [][2]string {
	modTime := ""
	if !fp.ModTime.IsZero() {
		modTime = fp.ModTime.UTC().Format(time.RFC3339Nano)
	}
	return [][2]string{
		{prefix + "_size", strconv.FormatInt(fp.Size, 10)},
		{prefix + "_modtime", modTime},
	}
}

// Sources fingerprints every input a record cache was built from.
type Sources struct {
	FASTA      FileFingerprint
	Annotation FileFingerprint
	Canonical  FileFingerprint
	// Options captures loader settings that change the parsed records
	// (e.g. "gencode" or "annotation").
	Options string
}

func (s Sources) metaEntries() [][2]string {
	var out [][2]string
	out = append(out, s.FASTA.metaEntries("fasta")...)
	out = append(out, s.Annotation.metaEntries("annotation")...)
	out = append(out, s.Canonical.metaEntries("canonical")...)
	out = append(out, [2]string{"options", s.Options})
	return out
}
