package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pypilens/pypilens/pkg/cache"
	"github.com/pypilens/pypilens/pkg/fetch"
)

// repoDocument is the subset of the GitHub repository API response the
// aggregator cares about.
type repoDocument struct {
	StargazersCount  int    `json:"stargazers_count"`
	ForksCount       int    `json:"forks_count"`
	OpenIssuesCount  int    `json:"open_issues_count"`
	SubscribersCount int    `json:"subscribers_count"`
	Language         string `json:"language"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
	DefaultBranch    string `json:"default_branch"`
	License          *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

// splitRepoPath extracts "owner/repo" from a GitHub URL. Deep links keep
// only the first two path segments; a ".git" suffix is dropped.
func splitRepoPath(vcsURL string) (string, bool) {
	i := strings.Index(strings.ToLower(vcsURL), "github.com/")
	if i < 0 {
		return "", false
	}
	rest := vcsURL[i+len("github.com/"):]

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	repo := strings.TrimSuffix(parts[1], ".git")
	return parts[0] + "/" + repo, true
}

// repoStats collects repository statistics for a GitHub URL. With an API
// token it queries the REST API; without one it scrapes the public page for
// the handful of counters exposed there.
func (a *Aggregator) repoStats(ctx context.Context, vcsURL string) (map[string]any, error) {
	path, ok := splitRepoPath(vcsURL)
	if !ok {
		return nil, fmt.Errorf("not a repository url: %s", vcsURL)
	}
	if a.githubToken != "" {
		return a.repoStatsAPI(ctx, path)
	}
	return a.repoStatsPage(ctx, path)
}

func (a *Aggregator) repoStatsAPI(ctx context.Context, path string) (map[string]any, error) {
	url := a.endpoints.GitHubAPI + "/repos/" + path
	resp, err := a.get(ctx, url, cache.TTLMetadata, fetch.Options{
		Headers: map[string]string{
			"Authorization": "Bearer " + a.githubToken,
			"Accept":        "application/vnd.github+json",
		},
	})
	if err != nil {
		return nil, err
	}

	var doc repoDocument
	if err := resp.JSON(&doc); err != nil {
		return nil, fmt.Errorf("decoding repository document: %w", err)
	}

	stats := map[string]any{
		"stars":          doc.StargazersCount,
		"forks":          doc.ForksCount,
		"open_issues":    doc.OpenIssuesCount,
		"watchers":       doc.SubscribersCount,
		"default_branch": doc.DefaultBranch,
	}
	if doc.Language != "" {
		stats["language"] = doc.Language
	}
	if doc.License != nil {
		if doc.License.SPDXID != "" && doc.License.SPDXID != "NOASSERTION" {
			stats["license"] = doc.License.SPDXID
		} else if doc.License.Name != "" {
			stats["license"] = doc.License.Name
		}
	}
	if doc.CreatedAt != "" {
		stats["created_at"] = doc.CreatedAt
	}
	if doc.UpdatedAt != "" {
		stats["updated_at"] = doc.UpdatedAt
	}
	return stats, nil
}

func (a *Aggregator) repoStatsPage(ctx context.Context, path string) (map[string]any, error) {
	url := a.endpoints.GitHubWeb + "/" + path
	resp, err := a.get(ctx, url, cache.TTLPage, fetch.Options{Browser: a.useBrowser})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing repository page: %w", err)
	}

	stats := make(map[string]any)
	if n, ok := countFromAnchor(doc, "/stargazers"); ok {
		stats["stars"] = n
	}
	if n, ok := countFromAnchor(doc, "/forks"); ok {
		stats["forks"] = n
	}
	if lang := strings.TrimSpace(doc.Find(`span[itemprop="programmingLanguage"]`).First().Text()); lang != "" {
		stats["language"] = lang
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no statistics found on repository page")
	}
	return stats, nil
}

// countFromAnchor reads a numeric counter from the first anchor whose href
// ends in suffix. Counters like "12,345" are de-commaed; abbreviated ones
// like "1.2k" are skipped rather than guessed at.
func countFromAnchor(doc *goquery.Document, suffix string) (int, bool) {
	var found int
	var ok bool
	doc.Find(fmt.Sprintf(`a[href$=%q]`, suffix)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Find("span.Counter, span.social-count").First().Text())
		if text == "" {
			text = strings.TrimSpace(s.Text())
		}
		text = strings.ReplaceAll(text, ",", "")
		n, err := strconv.Atoi(text)
		if err != nil {
			return true
		}
		found, ok = n, true
		return false
	})
	return found, ok
}
