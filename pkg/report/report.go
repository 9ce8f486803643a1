// Package report renders aggregated package records to the supported
// output formats and writes them to versioned report files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pypilens/pypilens/pkg/record"
)

// Format identifies an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// extensions maps formats to report file extensions.
var extensions = map[Format]string{
	FormatText:     "txt",
	FormatJSON:     "json",
	FormatMarkdown: "md",
	FormatHTML:     "html",
}

// ParseFormat validates a format name. Accepts a few common aliases; the
// empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, markdown, or html)", s)
	}
}

// executor is satisfied by both text and html templates.
type executor interface {
	Execute(w io.Writer, data any) error
}

// Render serializes one record in the given format.
func Render(rec *record.PackageRecord, format Format) ([]byte, error) {
	var tmpl executor
	switch format {
	case FormatJSON:
		return json.MarshalIndent(rec, "", "  ")
	case FormatText:
		tmpl = textTemplate
	case FormatMarkdown:
		tmpl = markdownTemplate
	case FormatHTML:
		tmpl = htmlTemplate
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rec); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders the record and writes it under dir, using one directory per
// package and version so repeated runs never clobber older reports:
//
//	<dir>/<name>/<version>/<name>_<version>_<timestamp>.<ext>
//
// Returns the path of the written file.
func Save(dir string, rec *record.PackageRecord, format Format) (string, error) {
	data, err := Render(rec, format)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, rec.Name, rec.Version)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.%s",
		rec.Name, rec.Version, time.Now().Format("20060102T150405"), extensions[format])
	path := filepath.Join(target, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
