// Package archive downloads a release's source distribution and summarizes
// its contents: file counts, extension histogram, and line-class counts for
// Python sources.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pypilens/pypilens/pkg/fetch"
	"github.com/pypilens/pypilens/pkg/record"
)

// maxArchiveBytes caps how much of an sdist is read. Oversized archives are
// rejected rather than truncated so counts stay honest.
const maxArchiveBytes = 128 << 20

// Directories whose subtrees carry no signal about the shipped code.
var skipDirs = map[string]bool{
	"__pycache__": true,
	"tests":       true,
	"test":        true,
	"docs":        true,
}

// Top-level packaging boilerplate excluded from the counts.
var skipFiles = map[string]bool{
	"setup.py":       true,
	"setup.cfg":      true,
	"pyproject.toml": true,
	"README.md":      true,
	"LICENSE":        true,
}

// Analyzer fetches and inspects source distributions.
type Analyzer struct {
	fetcher   *fetch.Fetcher
	indexBase string
	logger    *log.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithIndexBase overrides the registry index URL. Used in tests.
func WithIndexBase(base string) AnalyzerOption {
	return func(a *Analyzer) { a.indexBase = base }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates an analyzer over the given fetcher.
func NewAnalyzer(f *fetch.Fetcher, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		fetcher:   f,
		indexBase: "https://pypi.org/pypi",
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// versionDocument is the per-version index payload; only the file list is
// needed here.
type versionDocument struct {
	URLs []struct {
		Filename    string `json:"filename"`
		PackageType string `json:"packagetype"`
		URL         string `json:"url"`
	} `json:"urls"`
}

// Analyze downloads the sdist for name at version and returns its summary.
// The archive is inspected as a stream; nothing is written to disk.
func (a *Analyzer) Analyze(ctx context.Context, name, version string) (*record.SourceAnalysis, error) {
	url := fmt.Sprintf("%s/%s/%s/json", a.indexBase, name, version)
	resp, err := a.fetcher.Fetch(ctx, url, fetch.Options{})
	if err != nil {
		return nil, err
	}
	var doc versionDocument
	if err := resp.JSON(&doc); err != nil {
		return nil, fmt.Errorf("decoding version document: %w", err)
	}

	var sdistURL, filename string
	for _, f := range doc.URLs {
		if f.PackageType == "sdist" {
			sdistURL, filename = f.URL, f.Filename
			break
		}
	}
	if sdistURL == "" {
		return nil, fmt.Errorf("no source distribution for %s %s", name, version)
	}

	a.logger.Debug("downloading source archive", "package", name, "file", filename)
	archive, err := a.fetcher.Fetch(ctx, sdistURL, fetch.Options{})
	if err != nil {
		return nil, err
	}
	if len(archive.Body) > maxArchiveBytes {
		return nil, fmt.Errorf("archive too large: %d bytes", len(archive.Body))
	}

	switch {
	case strings.HasSuffix(filename, ".tar.gz"), strings.HasSuffix(filename, ".tgz"):
		return analyzeTarGz(archive.Body)
	case strings.HasSuffix(filename, ".zip"):
		return analyzeZip(archive.Body)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filename)
	}
}

func analyzeTarGz(data []byte) (*record.SourceAnalysis, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	analysis := newAnalysis()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar stream: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		countEntry(analysis, hdr.Name, tr)
	}
	return analysis, nil
}

func analyzeZip(data []byte) (*record.SourceAnalysis, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}

	analysis := newAnalysis()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		countEntry(analysis, f.Name, rc)
		rc.Close()
	}
	return analysis, nil
}

func newAnalysis() *record.SourceAnalysis {
	return &record.SourceAnalysis{FileTypes: make(map[string]int)}
}

// countEntry folds one archive member into the summary. Members under
// excluded directories and packaging boilerplate are skipped; Python
// sources additionally get per-line classification.
func countEntry(analysis *record.SourceAnalysis, name string, r io.Reader) {
	// Sdists nest everything under a "<name>-<version>/" prefix; skip
	// rules apply to the path below it.
	rel := name
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		rel = rel[i+1:]
	}
	if rel == "" || excluded(rel) {
		return
	}

	analysis.FileCount++
	analysis.FileTypes[extension(rel)]++

	if !strings.HasSuffix(rel, ".py") {
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		analysis.TotalLines++
		switch {
		case line == "":
			analysis.BlankLines++
		case strings.HasPrefix(line, "#"):
			analysis.CommentLines++
		default:
			analysis.CodeLines++
		}
	}
}

func excluded(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if skipDirs[dir] || strings.HasPrefix(dir, ".") {
			return true
		}
	}
	base := parts[len(parts)-1]
	return skipFiles[base] || strings.HasPrefix(base, ".")
}

func extension(rel string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
	if ext == "" {
		return "none"
	}
	return ext
}
