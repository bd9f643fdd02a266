package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Illumina product-file URLs per array flavor.
const (
	manifest450kURL = "https://webdata.illumina.com/downloads/productfiles/humanmethylation450/humanmethylation450_15017482_v1-2.csv"
	manifestEPICURL = "https://webdata.illumina.com/downloads/productfiles/methylationEPIC/infinium-methylationepic-v-1-0-b5-manifest-file.csv"
)

// manifestURL returns the manifest CSV URL for the given array flavor.
func manifestURL(array string) (string, error) {
	switch strings.ToLower(array) {
	case "450k":
		return manifest450kURL, nil
	case "epic":
		return manifestEPICURL, nil
	default:
		return "", fmt.Errorf("unknown array %q (want 450k or epic)", array)
	}
}

func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	var (
		array     string
		outputDir string
	)

	fs.StringVar(&array, "array", "450k", "Array flavor: 450k or epic")
	fs.StringVar(&outputDir, "output", "", "Output directory (default: ~/.methview/)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Download the Illumina array manifest used for probe annotation.

Usage:
  methview download [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Download the 450k manifest (default)
  methview download

  # Download the EPIC manifest
  methview download --array epic

  # Download to a custom directory
  methview download --output /data/manifests

The manifest is large (~170MB for 450k). After downloading, convert it once
for fast reopening:
  methview convert --input <manifest.csv> --output manifest.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	url, err := manifestURL(array)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	if outputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot determine home directory: %v\n", err)
			return ExitError
		}
		outputDir = filepath.Join(home, ".methview")
	}

	destDir := filepath.Join(outputDir, strings.ToLower(array))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create directory %s: %v\n", destDir, err)
		return ExitError
	}

	fmt.Printf("Downloading %s manifest...\n", array)
	fmt.Printf("Destination: %s\n\n", destDir)

	destFile := filepath.Join(destDir, filepath.Base(url))
	if err := downloadFile(url, destFile); err != nil {
		// Downstream stages depend on the manifest; a failed fetch is fatal.
		fmt.Fprintf(os.Stderr, "Error downloading manifest: %v\n", err)
		return ExitError
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To plot a gene, run:\n")
	fmt.Printf("  methview plot --gene HOXD1 --betas betas.tsv\n")

	return ExitSuccess
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute, // Long timeout for large files
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

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
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

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
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

// DefaultManifestDir returns the default directory of an array's manifest.
func DefaultManifestDir(array string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".methview", strings.ToLower(array))
}

// FindManifestFile looks for a manifest in the default location, preferring
// a converted DuckDB database over the raw CSV.
func FindManifestFile(array string) (path string, found bool) {
	dir := DefaultManifestDir(array)
	if dir == "" {
		return "", false
	}

	for _, pattern := range []string{"*.duckdb", "*.db", "*.csv", "*.csv.gz"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err == nil && len(matches) > 0 {
			return matches[0], true
		}
	}
	return "", false
}
