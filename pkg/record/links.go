package record

import (
	"slices"
	"strings"
)

// vcsLinkKeys are checked in priority order when deriving the repository
// URL from a package's project links.
var vcsLinkKeys = []string{
	"GitHub",
	"Source",
	"Source Code",
	"Repository",
	"Code",
	"Homepage",
}

// CleanLinks returns a copy of links with empty keys and values removed.
// A nil or fully-empty map yields nil so the field is omitted from output.
func CleanLinks(links map[string]string) map[string]string {
	var out map[string]string
	for k, v := range links {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(links))
		}
		out[k] = v
	}
	return out
}

// DeriveVCSURL picks the package's GitHub repository URL from its project
// links. Well-known link names are tried first in priority order; if none
// of them points at GitHub, every remaining value is scanned in a stable
// order. Returns "" when no GitHub link exists.
func DeriveVCSURL(links map[string]string) string {
	for _, key := range vcsLinkKeys {
		for k, v := range links {
			if strings.EqualFold(k, key) && isGitHubURL(v) {
				return normalizeVCSURL(v)
			}
		}
	}

	keys := make([]string, 0, len(links))
	for k := range links {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if isGitHubURL(links[k]) {
			return normalizeVCSURL(links[k])
		}
	}
	return ""
}

func isGitHubURL(u string) bool {
	return strings.Contains(strings.ToLower(u), "github.com")
}

// normalizeVCSURL strips query strings, fragments, and trailing slashes.
func normalizeVCSURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}
