package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inodb/vibe-uorf/internal/cache"
)

// RecordCache manages gob-serialized transcript records on disk.
// Files are stored alongside the GENCODE source files:
//
//	~/.vibe-uorf/{assembly}/records.gob       (serialized records)
//	~/.vibe-uorf/{assembly}/records.gob.meta  (source file fingerprints)
type RecordCache struct {
	dir string // cache directory (e.g. ~/.vibe-uorf/grch38)
}

// NewRecordCache creates a record cache for the given directory.
func NewRecordCache(dir string) *RecordCache {
	return &RecordCache{dir: dir}
}

func (rc *RecordCache) gobPath() string {
	return filepath.Join(rc.dir, "records.gob")
}

func (rc *RecordCache) metaPath() string {
	return filepath.Join(rc.dir, "records.gob.meta")
}

// Valid checks whether the cached records match the current source files.
func (rc *RecordCache) Valid(src Sources) bool {
	meta, err := rc.readMeta()
	if err != nil {
		return false
	}

	for _, kv := range src.metaEntries() {
		if v, ok := meta[kv[0]]; !ok || v != kv[1] {
			return false
		}
	}

	// Verify gob file exists
	if _, err := os.Stat(rc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized records from disk.
func (rc *RecordCache) Load() ([]*cache.Record, error) {
	f, err := os.Open(rc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open record cache: %w", err)
	}
	defer f.Close()

	var records []*cache.Record
	if err := gob.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode record cache: %w", err)
	}
	return records, nil
}

// Write serializes records to disk together with their source fingerprints.
func (rc *RecordCache) Write(records []*cache.Record, src Sources) error {
	if err := os.MkdirAll(rc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(rc.gobPath())
	if err != nil {
		return fmt.Errorf("create record cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(records); err != nil {
		f.Close()
		os.Remove(rc.gobPath())
		return fmt.Errorf("encode record cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close record cache: %w", err)
	}

	return rc.writeMeta(src)
}

// Clear removes the cached record files.
func (rc *RecordCache) Clear() {
	os.Remove(rc.gobPath())
	os.Remove(rc.metaPath())
}

func (rc *RecordCache) writeMeta(src Sources) error {
	var lines []string
	for _, kv := range src.metaEntries() {
		lines = append(lines, kv[0]+"="+kv[1])
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(rc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (rc *RecordCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(rc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
