package scrape

// indexDocument is the registry's JSON metadata document for a package.
// Only the fields the aggregator consumes are modeled.
type indexDocument struct {
	Info     indexInfo                `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
	URLs     []releaseFile            `json:"urls"`
}

type indexInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Summary      string            `json:"summary"`
	Author       string            `json:"author"`
	AuthorEmail  string            `json:"author_email"`
	License      string            `json:"license"`
	Classifiers  []string          `json:"classifiers"`
	RequiresDist []string          `json:"requires_dist"`
	ProjectURLs  map[string]string `json:"project_urls"`
}

type releaseFile struct {
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
	URL         string `json:"url"`
	UploadTime  string `json:"upload_time_iso_8601"`
}
