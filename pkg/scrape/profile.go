package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pypilens/pypilens/pkg/cache"
	"github.com/pypilens/pypilens/pkg/fetch"
)

// ResolveProfile returns the packages maintained by a registry user, in the
// order they appear on the profile page, without duplicates.
func (a *Aggregator) ResolveProfile(ctx context.Context, username string) ([]string, error) {
	url := fmt.Sprintf("%s/%s/", a.endpoints.User, username)
	resp, err := a.get(ctx, url, cache.TTLPage, fetch.Options{Browser: a.useBrowser})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing profile page: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	doc.Find(`a[href^="/project/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		name := strings.Trim(strings.TrimPrefix(href, "/project/"), "/")
		// Deep links like /project/foo/1.0/ still resolve to foo.
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[:i]
		}
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	})

	if len(names) == 0 {
		return nil, fmt.Errorf("no packages found for user %s", username)
	}
	return names, nil
}
