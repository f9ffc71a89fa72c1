package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-uorf/internal/cache"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// getGENCODEURL returns the pc_transcripts FASTA URL for the given assembly.
func getGENCODEURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.pc_transcripts.fa.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.pc_transcripts.fa.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	var assembly, outputDir string
	var skipCanonical bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE transcript sequences",
		Long: fmt.Sprintf(`Download GENCODE %s protein-coding transcript sequences and the Genome Nexus
canonical transcript table. The pc_transcripts FASTA headers carry the CDS
range of every transcript, so no separate annotation is needed.

After downloading, "vibe-uorf scan" finds these files automatically.`, gencodeVersion),
		Example: `  vibe-uorf download
  vibe-uorf download --assembly GRCh37
  vibe-uorf download --output /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.OutOrStdout(), assembly, outputDir, skipCanonical)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.vibe-uorf/)")
	cmd.Flags().BoolVar(&skipCanonical, "no-canonical", false, "Skip the canonical transcript table")

	return cmd
}

func runDownload(out io.Writer, assembly, outputDir string, skipCanonical bool) error {
	if !strings.EqualFold(assembly, "GRCh37") && !strings.EqualFold(assembly, "GRCh38") {
		return usagef("unknown assembly %q (want GRCh37 or GRCh38)", assembly)
	}

	if outputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		outputDir = filepath.Join(home, ".vibe-uorf")
	}

	// Create assembly-specific subdirectory
	destDir := filepath.Join(outputDir, strings.ToLower(assembly))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	fmt.Fprintf(out, "Downloading GENCODE %s transcripts for %s...\n", gencodeVersion, assembly)
	fmt.Fprintf(out, "Destination: %s\n\n", destDir)

	fastaURL := getGENCODEURL(assembly)
	if err := downloadFile(out, fastaURL, filepath.Join(destDir, filepath.Base(fastaURL))); err != nil {
		return fmt.Errorf("downloading FASTA: %w", err)
	}

	if !skipCanonical {
		canonicalFile := filepath.Join(destDir, cache.CanonicalFileName())
		if err := downloadFile(out, cache.CanonicalFileURL(assembly), canonicalFile); err != nil {
			// Non-fatal: only --canonical needs it
			fmt.Fprintf(os.Stderr, "Warning: could not download canonical transcript table: %v\n", err)
		}
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To scan for uORFs, run:\n")
	fmt.Fprintf(out, "  vibe-uorf scan --assembly %s\n", assembly)
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(out io.Writer, url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// DefaultGENCODEPath returns the default directory for downloaded files.
func DefaultGENCODEPath(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vibe-uorf", strings.ToLower(assembly))
}

// FindGENCODEFiles looks for downloaded files in the default location.
// Returns fastaPath, canonicalPath (empty if absent), and whether the FASTA was found.
func FindGENCODEFiles(assembly string) (fastaPath, canonicalPath string, found bool) {
	dir := DefaultGENCODEPath(assembly)
	if dir == "" {
		return "", "", false
	}
	return findGENCODEFilesIn(dir, assembly)
}

func findGENCODEFilesIn(dir, assembly string) (fastaPath, canonicalPath string, found bool) {
	pattern := "gencode.v*.pc_transcripts.fa.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		pattern = "gencode.v*lift37.pc_transcripts.fa.gz"
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", "", false
	}
	fastaPath = matches[len(matches)-1]

	cPath := filepath.Join(dir, cache.CanonicalFileName())
	if _, err := os.Stat(cPath); err == nil {
		canonicalPath = cPath
	}

	return fastaPath, canonicalPath, true
}
