package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-uorf/internal/config"
	"github.com/inodb/vibe-uorf/internal/duckdb"
	"github.com/inodb/vibe-uorf/internal/output"
	"github.com/inodb/vibe-uorf/internal/pipeline"
)

type scanFlags struct {
	fasta         string
	annotation    string
	canonicalFile string
	assembly      string
	outputFile    string
	canonicalOnly bool
	noCache       bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan [transcripts.fa]",
		Short: "Scan transcript leaders for upstream ORFs",
		Long: `Scan transcript 5' leaders for upstream open reading frames.

Input is either a GENCODE pc_transcripts FASTA, whose headers carry the CDS
range, or any transcript FASTA plus an annotation table (--annotation) with
columns transcript_id, cds_start, cds_end, strand (1-based, inclusive).
Without an input file the GENCODE files fetched by "vibe-uorf download" are used.`,
		Example: `  vibe-uorf scan
  vibe-uorf scan gencode.v46.pc_transcripts.fa.gz -o uorfs.tsv
  vibe-uorf scan --fasta tx.fa --annotation cds.tsv -f jsonl
  vibe-uorf scan --canonical --min-length 30 --start-codons ATG,CTG --genetic-code 1
  vibe-uorf scan --duckdb results.duckdb --summary run.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if f.fasta != "" {
					return usagef("give the FASTA either as argument or with --fasta, not both")
				}
				f.fasta = args[0]
			}
			return runScan(cmd.OutOrStdout(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.fasta, "fasta", "", "Transcript FASTA (plain or .gz)")
	fl.StringVar(&f.annotation, "annotation", "", "CDS annotation TSV: transcript_id, cds_start, cds_end, strand")
	fl.StringVar(&f.canonicalFile, "canonical-file", "", "Genome Nexus canonical transcript table")
	fl.StringVar(&f.assembly, "assembly", "GRCh38", "Genome assembly of downloaded files: GRCh37 or GRCh38")
	fl.StringVarP(&f.outputFile, "output", "o", "", "Output file (default: stdout)")
	fl.BoolVar(&f.canonicalOnly, "canonical", false, "Only scan the canonical transcript of each gene")
	fl.BoolVar(&f.noCache, "no-cache", false, "Do not read or write the parsed record cache")

	fl.Int("min-length", 0, "Minimum uORF length in nucleotides, stop codon included")
	fl.StringSlice("start-codons", nil, "Start codons to report (default: canonical ATG only)")
	fl.StringSlice("alt-starts", nil, "Near-cognate start codons that open candidates (e.g. CTG,GTG)")
	fl.Bool("include-unterminated", false, "Report uORFs without an in-frame stop before the CDS end")
	fl.StringSlice("classes", nil, "Overlap classes to report: non_overlapping, overlapping_out_of_frame, overlapping_in_frame")
	fl.Int("genetic-code", 0, "NCBI translation table for start/stop codons (0: ATG start, TAA/TAG/TGA stops)")
	fl.StringP("format", "f", "tab", "Output format: tab, jsonl")
	fl.String("duckdb", "", "Store results in this DuckDB database")
	fl.String("summary", "", "Write a YAML run summary to this file")
	fl.Int("workers", 0, "Number of scan workers (default: number of CPUs)")

	if err := bindFlags(cmd, scanFlagKeys); err != nil {
		panic(err)
	}

	return cmd
}

// scanFlagKeys maps config keys to the scan flags that override them.
var scanFlagKeys = map[string]string{
	"filter.min_length":           "min-length",
	"filter.start_codons":         "start-codons",
	"genetic_code.alternatives":   "alt-starts",
	"filter.include_unterminated": "include-unterminated",
	"filter.classes":              "classes",
	"genetic_code.table":          "genetic-code",
	"output.format":               "format",
	"output.duckdb":               "duckdb",
	"output.summary":              "summary",
	"workers":                     "workers",
}

// bindFlags binds each config key to the named flag of cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			return fmt.Errorf("bind %s: no flag --%s", key, name)
		}
		if err := viper.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func runScan(stdout io.Writer, f scanFlags) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return usageError{err}
	}
	uc, err := cfg.UORFConfig()
	if err != nil {
		return usageError{err}
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	in, err := resolveInputs(f)
	if err != nil {
		return err
	}

	records, err := loadRecords(in, f.canonicalOnly, logger)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(uc)
	runner.SetLogger(logger)
	runner.SetWorkers(cfg.Workers)

	started := time.Now()
	rs, diag, err := runner.Run(records)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	if err := writeResults(stdout, f.outputFile, cfg.Output.Format, rs); err != nil {
		return err
	}

	run := duckdb.NewRun(in.FASTA, started)
	if cfg.Output.DuckDB != "" {
		if err := saveRun(cfg.Output.DuckDB, run, rs, diag); err != nil {
			return err
		}
		logger.Info("stored run", zap.String("db", cfg.Output.DuckDB), zap.String("run_id", run.ID))
	}

	if cfg.Output.Summary != "" {
		if err := writeSummary(cfg.Output.Summary, output.NewSummary(run.ID, in.FASTA, started, elapsed, rs, diag)); err != nil {
			return err
		}
	}

	return nil
}

// resolveInputs picks explicit files or falls back to downloaded GENCODE files.
func resolveInputs(f scanFlags) (inputFiles, error) {
	if f.fasta != "" {
		return inputFiles{FASTA: f.fasta, Annotation: f.annotation, Canonical: f.canonicalFile}, nil
	}
	if f.annotation != "" {
		return inputFiles{}, usagef("--annotation needs --fasta")
	}

	fastaPath, canonicalPath, found := FindGENCODEFiles(f.assembly)
	if !found {
		return inputFiles{}, fmt.Errorf("no GENCODE transcripts found for %s; download them with: vibe-uorf download --assembly %s", f.assembly, f.assembly)
	}
	in := inputFiles{FASTA: fastaPath, Canonical: canonicalPath}
	if f.canonicalFile != "" {
		in.Canonical = f.canonicalFile
	}
	if !f.noCache {
		in.CacheDir = DefaultGENCODEPath(f.assembly)
	}
	return in, nil
}

func writeResults(stdout io.Writer, path, format string, rs *pipeline.ResultSet) error {
	out := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	var w output.ResultWriter
	switch format {
	case "jsonl":
		w = output.NewJSONLWriter(out)
	default:
		w = output.NewTabWriter(out)
	}

	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range rs.Results {
		if err := w.Write(&rs.Results[i]); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return w.Flush()
}

func saveRun(path string, run duckdb.Run, rs *pipeline.ResultSet, diag *pipeline.RunDiagnostics) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(run, rs, diag)
}

func writeSummary(path string, s *output.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary file: %w", err)
	}
	defer file.Close()
	return output.WriteSummary(file, s)
}
