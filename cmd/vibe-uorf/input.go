package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-uorf/internal/cache"
	"github.com/inodb/vibe-uorf/internal/duckdb"
)

// inputFiles names the files a scan reads records from.
type inputFiles struct {
	FASTA      string
	Annotation string // optional TSV with CDS coordinates
	Canonical  string // optional Genome Nexus canonical table
	CacheDir   string // where parsed records are cached; empty disables caching
}

// options describes loader settings that change the parsed records.
func (in inputFiles) options(canonicalOnly bool) string {
	opts := "gencode"
	if in.Annotation != "" {
		opts = "annotation"
	}
	if canonicalOnly {
		opts += ",canonical"
	}
	return opts
}

// loadRecords reads transcript records, using the gob record cache when it
// is still valid for the input files.
func loadRecords(in inputFiles, canonicalOnly bool, logger *zap.Logger) ([]*cache.Record, error) {
	var rc *duckdb.RecordCache
	var src duckdb.Sources
	if in.CacheDir != "" {
		var err error
		if src, err = fingerprint(in, canonicalOnly); err != nil {
			return nil, err
		}
		rc = duckdb.NewRecordCache(in.CacheDir)
		if rc.Valid(src) {
			records, err := rc.Load()
			if err == nil {
				logger.Info("loaded records from cache",
					zap.String("dir", in.CacheDir),
					zap.Int("records", len(records)))
				return records, nil
			}
			logger.Warn("record cache unreadable, reparsing", zap.Error(err))
		}
	}

	records, err := parseRecords(in, canonicalOnly, logger)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		if err := rc.Write(records, src); err != nil {
			logger.Warn("could not write record cache", zap.Error(err))
		}
	}
	return records, nil
}

func fingerprint(in inputFiles, canonicalOnly bool) (duckdb.Sources, error) {
	var src duckdb.Sources
	var err error
	if src.FASTA, err = duckdb.StatFile(in.FASTA); err != nil {
		return src, fmt.Errorf("stat FASTA: %w", err)
	}
	if src.Annotation, err = duckdb.StatFile(in.Annotation); err != nil {
		return src, fmt.Errorf("stat annotation: %w", err)
	}
	if canonicalOnly {
		if src.Canonical, err = duckdb.StatFile(in.Canonical); err != nil {
			return src, fmt.Errorf("stat canonical table: %w", err)
		}
	}
	src.Options = in.options(canonicalOnly)
	return src, nil
}

func parseRecords(in inputFiles, canonicalOnly bool, logger *zap.Logger) ([]*cache.Record, error) {
	fa := cache.NewFASTALoader(in.FASTA)
	if err := fa.Load(); err != nil {
		return nil, err
	}
	logger.Info("loaded FASTA",
		zap.String("path", in.FASTA),
		zap.Int("sequences", fa.SequenceCount()))

	var records []*cache.Record
	if in.Annotation != "" {
		al := cache.NewAnnotationLoader(in.Annotation)
		rows, err := al.Load()
		if err != nil {
			return nil, err
		}
		var missing int
		records, missing = cache.MergeAnnotations(rows, fa)
		logger.Info("loaded annotation",
			zap.String("path", in.Annotation),
			zap.Int("rows", len(rows)),
			zap.Int("malformed", al.Skipped()),
			zap.Int("without_sequence", missing))
	} else {
		records = fa.Records()
		if skipped := fa.Unannotated(); skipped > 0 {
			logger.Info("skipped sequences without CDS range", zap.Int("count", skipped))
		}
	}

	if canonicalOnly {
		if in.Canonical == "" {
			return nil, usagef("--canonical needs a canonical transcript table (--canonical-file or vibe-uorf download)")
		}
		overrides, err := cache.LoadCanonicalOverrides(in.Canonical)
		if err != nil {
			return nil, err
		}
		var dropped int
		records, dropped = cache.FilterCanonical(records, overrides)
		logger.Info("kept canonical transcripts",
			zap.Int("kept", len(records)),
			zap.Int("dropped", dropped))
	}

	return records, nil
}
