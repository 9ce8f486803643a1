// Package scrape aggregates package metadata from multiple registry
// sources into a single record.
//
// The pipeline runs a fixed sequence of source stages per package: the
// registry's JSON index document, the rendered project page, the download
// stats API, repository statistics, and an optional source-archive
// analysis. Only the index stage is fatal; every later stage degrades to
// the record's documented defaults when its source fails.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pypilens/pypilens/pkg/cache"
	"github.com/pypilens/pypilens/pkg/errors"
	"github.com/pypilens/pypilens/pkg/fetch"
	"github.com/pypilens/pypilens/pkg/record"
)

// Endpoints are the base URLs of the upstream sources. Overridable for
// testing against local servers.
type Endpoints struct {
	Index     string // JSON metadata documents
	Project   string // rendered project pages
	User      string // user profile pages
	Stats     string // download statistics API
	GitHubAPI string // repository REST API
	GitHubWeb string // public repository pages
}

// DefaultEndpoints returns the production source URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Index:     "https://pypi.org/pypi",
		Project:   "https://pypi.org/project",
		User:      "https://pypi.org/user",
		Stats:     "https://pypistats.org/api/packages",
		GitHubAPI: "https://api.github.com",
		GitHubWeb: "https://github.com",
	}
}

// SourceAnalyzer inspects a release's source archive. Implemented by the
// archive package; declared here so the aggregator stays decoupled from
// download mechanics.
type SourceAnalyzer interface {
	Analyze(ctx context.Context, name, version string) (*record.SourceAnalysis, error)
}

// Aggregator builds complete package records by combining source stages.
type Aggregator struct {
	fetcher     *fetch.Fetcher
	store       cache.Cache
	endpoints   Endpoints
	githubToken string
	useBrowser  bool
	analyzer    SourceAnalyzer
	logger      *log.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithCache sets the response cache. Defaults to no caching.
func WithCache(c cache.Cache) AggregatorOption {
	return func(a *Aggregator) { a.store = c }
}

// WithEndpoints overrides the upstream base URLs.
func WithEndpoints(e Endpoints) AggregatorOption {
	return func(a *Aggregator) { a.endpoints = e }
}

// WithGitHubToken enables authenticated repository API calls. Without a
// token, repository statistics fall back to scraping the public page.
func WithGitHubToken(token string) AggregatorOption {
	return func(a *Aggregator) { a.githubToken = token }
}

// WithBrowser routes page scrapes through the fetcher's renderer.
func WithBrowser(enabled bool) AggregatorOption {
	return func(a *Aggregator) { a.useBrowser = enabled }
}

// WithSourceAnalyzer enables the source-archive analysis stage.
func WithSourceAnalyzer(sa SourceAnalyzer) AggregatorOption {
	return func(a *Aggregator) { a.analyzer = sa }
}

// WithAggregatorLogger sets the structured logger.
func WithAggregatorLogger(l *log.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an aggregator over the given fetcher.
func NewAggregator(f *fetch.Fetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher:   f,
		store:     cache.Null{},
		endpoints: DefaultEndpoints(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the full record for one package.
//
// If the index document cannot be fetched the returned record carries only
// the name and an error message, and the error is returned as well. Every
// other stage failure is logged and absorbed; the affected fields keep
// their defaults.
func (a *Aggregator) Aggregate(ctx context.Context, name string) (*record.PackageRecord, error) {
	rec := record.New(name)
	logger := a.logger.With("package", name)

	doc, err := a.indexDocument(ctx, name)
	if err != nil {
		ferr := errors.Wrap(errors.ErrCodePipelineFatal, err, "no index document for %s", name)
		rec.Error = errors.UserMessage(ferr)
		return rec, ferr
	}
	a.applyIndex(rec, doc)
	logger.Debug("index document applied", "version", rec.Version)

	if details, err := a.projectPage(ctx, name); err != nil {
		logger.Warn("project page unavailable", "err", err)
	} else {
		if details.License != "" && rec.License == record.LicenseNotSpecified {
			rec.License = details.License
		}
		if details.Readme != "" {
			rec.Readme = details.Readme
		}
	}

	if downloads, err := a.downloadStats(ctx, name); err != nil {
		logger.Warn("download stats unavailable", "err", err)
	} else {
		rec.Downloads = downloads
	}

	if rec.VCSURL != "" {
		if stats, err := a.repoStats(ctx, rec.VCSURL); err != nil {
			logger.Warn("repository stats unavailable", "err", err)
		} else {
			rec.VCSStats = stats
		}
	}

	if a.analyzer != nil && rec.Version != record.VersionUnresolved {
		if analysis, err := a.analyzer.Analyze(ctx, name, rec.Version); err != nil {
			logger.Warn("source analysis unavailable", "err", err)
		} else {
			rec.SourceAnalysis = analysis
		}
	}

	return rec, nil
}

// indexDocument fetches and decodes the package's JSON metadata.
func (a *Aggregator) indexDocument(ctx context.Context, name string) (*indexDocument, error) {
	url := fmt.Sprintf("%s/%s/json", a.endpoints.Index, name)
	resp, err := a.get(ctx, url, cache.TTLMetadata, fetch.Options{})
	if err != nil {
		return nil, err
	}
	var doc indexDocument
	if err := resp.JSON(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decoding index document")
	}
	return &doc, nil
}

// applyIndex populates every field derivable from the index document.
func (a *Aggregator) applyIndex(rec *record.PackageRecord, doc *indexDocument) {
	info := doc.Info
	if info.Version != "" {
		rec.Version = info.Version
	}
	rec.Description = info.Summary
	rec.Author = info.Author
	rec.AuthorEmail = info.AuthorEmail
	// Registries historically report "UNKNOWN" for an unset license.
	if info.License != "" && !strings.EqualFold(info.License, "UNKNOWN") {
		rec.License = info.License
	}
	rec.Classifiers = info.Classifiers
	rec.Dependencies, rec.DevDependencies = record.SplitRequirements(info.RequiresDist)
	rec.Links = record.CleanLinks(info.ProjectURLs)
	rec.VCSURL = record.DeriveVCSURL(rec.Links)

	if len(doc.Releases) > 0 {
		versions := make([]string, 0, len(doc.Releases))
		for v := range doc.Releases {
			versions = append(versions, v)
		}
		rec.VersionHistory = record.SortVersions(versions)
	}
	rec.ReleaseDate = releaseDate(doc, rec.Version)
}

// releaseDate is the earliest upload time among the current version's files.
func releaseDate(doc *indexDocument, version string) *time.Time {
	files := doc.Releases[version]
	var earliest *time.Time
	for _, f := range files {
		t, err := time.Parse(time.RFC3339, f.UploadTime)
		if err != nil {
			continue
		}
		if earliest == nil || t.Before(*earliest) {
			earliest = &t
		}
	}
	return earliest
}

// projectPage scrapes the rendered project page.
func (a *Aggregator) projectPage(ctx context.Context, name string) (pageDetails, error) {
	url := fmt.Sprintf("%s/%s/", a.endpoints.Project, name)
	resp, err := a.get(ctx, url, cache.TTLPage, fetch.Options{Browser: a.useBrowser})
	if err != nil {
		return pageDetails{}, err
	}
	return parseProjectPage(resp.Body)
}

// downloadStats fetches recent download counts.
func (a *Aggregator) downloadStats(ctx context.Context, name string) (map[string]int, error) {
	url := fmt.Sprintf("%s/%s/recent", a.endpoints.Stats, name)
	resp, err := a.get(ctx, url, cache.TTLDownloads, fetch.Options{})
	if err != nil {
		return nil, err
	}
	var doc statsDocument
	if err := resp.JSON(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decoding download stats")
	}
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("empty stats document")
	}
	return doc.Data, nil
}

// get performs a cached fetch. Cache hits skip the network entirely; only
// successful responses are stored.
func (a *Aggregator) get(ctx context.Context, url string, ttl time.Duration, opts fetch.Options) (*fetch.Response, error) {
	if data, ok, err := a.store.Get(ctx, url); err != nil {
		a.logger.Warn("cache read failed", "url", url, "err", err)
	} else if ok {
		return &fetch.Response{Status: 200, Body: data}, nil
	}

	resp, err := a.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	if err := a.store.Set(ctx, url, resp.Body, ttl); err != nil {
		a.logger.Warn("cache write failed", "url", url, "err", err)
	}
	return resp, nil
}
