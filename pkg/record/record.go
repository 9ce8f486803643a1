// Package record defines the aggregated package-metadata model and the
// normalization helpers applied while building it.
package record

import "time"

// Sentinel values used when a source stage yields nothing. Downstream
// consumers rely on these exact strings, so they are part of the output
// contract.
const (
	// VersionUnresolved marks a record whose version could not be
	// determined from any source.
	VersionUnresolved = "unresolved"

	// NoDependencies is the single-element dependency list emitted when a
	// release declares no requirements.
	NoDependencies = "No dependencies listed"

	// LicenseNotSpecified is the license field default.
	LicenseNotSpecified = "License not specified"

	// ReadmeUnavailable is the readme field default.
	ReadmeUnavailable = "No README content available"
)

// PackageRecord is the complete aggregated view of one package. Fields that
// no source could populate keep their documented defaults rather than being
// omitted, so every record has the same shape.
type PackageRecord struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	ReleaseDate     *time.Time        `json:"release_date,omitempty"`
	Description     string            `json:"description"`
	Author          string            `json:"author"`
	AuthorEmail     string            `json:"author_email"`
	License         string            `json:"license"`
	Dependencies    []string          `json:"dependencies"`
	DevDependencies []string          `json:"dev_dependencies"`
	Links           map[string]string `json:"project_urls"`
	VCSURL          string            `json:"github_url,omitempty"`
	VCSStats        map[string]any    `json:"github_stats,omitempty"`
	VersionHistory  []string          `json:"version_history"`
	Downloads       map[string]int    `json:"downloads,omitempty"`
	Classifiers     []string          `json:"classifiers,omitempty"`
	Readme          string            `json:"readme"`
	SourceAnalysis  *SourceAnalysis   `json:"source_analysis,omitempty"`

	// Error is set when the record could not be aggregated: the primary
	// metadata fetch failed, the worker processing it panicked, or a bulk
	// run was cancelled before the package was dispatched. Such a record
	// carries nothing beyond the name.
	Error string `json:"error,omitempty"`
}

// SourceAnalysis summarizes the contents of a release's source archive.
type SourceAnalysis struct {
	FileCount    int            `json:"file_count"`
	FileTypes    map[string]int `json:"file_types"`
	TotalLines   int            `json:"total_lines"`
	CodeLines    int            `json:"code_lines"`
	CommentLines int            `json:"comment_lines"`
	BlankLines   int            `json:"blank_lines"`
}

// New returns a record for name with all defaults applied.
func New(name string) *PackageRecord {
	return &PackageRecord{
		Name:    name,
		Version: VersionUnresolved,
		License: LicenseNotSpecified,
		Readme:  ReadmeUnavailable,
	}
}
