package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageDetails holds the fields only available on the rendered project page.
type pageDetails struct {
	License string
	Readme  string
}

// parseProjectPage extracts the license and readme from a project page.
// The license comes from the sidebar's "License:" entry, falling back to
// the trove classifiers; the readme is the rendered description block.
// Missing fields are returned empty so callers keep their defaults.
func parseProjectPage(html []byte) (pageDetails, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return pageDetails{}, fmt.Errorf("parsing project page: %w", err)
	}

	var d pageDetails

	doc.Find(".sidebar-section p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if rest, ok := strings.CutPrefix(text, "License:"); ok {
			d.License = strings.TrimSpace(rest)
			return false
		}
		return true
	})

	if d.License == "" {
		doc.Find("a.sidebar-section__classifier").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if !strings.Contains(text, "License ::") {
				return true
			}
			if i := strings.LastIndex(text, " :: "); i >= 0 {
				d.License = strings.TrimSpace(text[i+len(" :: "):])
				return false
			}
			return true
		})
	}

	if desc := doc.Find("div.project-description"); desc.Length() > 0 {
		d.Readme = strings.TrimSpace(desc.Text())
	}

	return d, nil
}
