// Package identity produces randomized client-identity profiles for outbound
// HTTP requests.
//
// Remote endpoints rate-limit and bot-gate aggressively; varying the
// user-agent and header fingerprint between requests keeps the fetcher from
// presenting a uniform signature. Profiles are drawn from a weighted mix of a
// large generated pool and a small curated list, and every profile's headers
// are internally consistent: a Chrome user-agent always ships Chrome client
// hints, a Firefox one never does.
package identity

import (
	"fmt"
	"maps"
	"math/rand/v2"
)

// Profile is one client identity: a user-agent string plus the browser-like
// header set that matches it.
type Profile struct {
	UserAgent string
	Headers   map[string]string
}

// Pool hands out pseudo-random identity profiles. It holds no mutable state
// after construction and is safe for concurrent use.
type Pool struct {
	rotating []Profile
	curated  []Profile

	// rotatingWeight is the probability of drawing from the rotating pool.
	rotatingWeight float64
}

// Option configures a Pool.
type Option func(*Pool)

// WithoutRotation disables the generated rotating pool, leaving only the
// curated list. Useful for deterministic tests.
func WithoutRotation() Option {
	return func(p *Pool) { p.rotating = nil }
}

// NewPool creates a pool seeded with a generated rotating set (~90 profiles
// across Chrome, Firefox, Safari and Edge) and a small curated static list.
// If the rotating set is unavailable the pool silently serves the curated
// list only; NewPool never fails.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		rotating:       generateProfiles(),
		curated:        curatedProfiles(),
		rotatingWeight: 0.7,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next returns a pseudo-random profile. Roughly 70% of draws come from the
// rotating pool and the rest from the curated list; if the rotating pool is
// empty all draws fall back to the curated list. The returned header map is
// a copy and may be mutated by the caller.
func (p *Pool) Next() Profile {
	src := p.curated
	if len(p.rotating) > 0 && rand.Float64() < p.rotatingWeight {
		src = p.rotating
	}
	chosen := src[rand.IntN(len(src))]
	return Profile{
		UserAgent: chosen.UserAgent,
		Headers:   maps.Clone(chosen.Headers),
	}
}

// Size returns the total number of distinct profiles in the pool.
func (p *Pool) Size() int { return len(p.rotating) + len(p.curated) }

// baseHeaders are the headers every profile carries regardless of family.
// Accept-Encoding is deliberately absent: the transport negotiates it so
// that response decompression stays automatic.
func baseHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
		"Referer":                   "https://www.google.com/",
	}
}

type platform struct {
	uaToken string // token used inside the user-agent string
	chName  string // value for Sec-CH-UA-Platform
}

var desktopPlatforms = []platform{
	{"Windows NT 10.0; Win64; x64", `"Windows"`},
	{"Macintosh; Intel Mac OS X 10_15_7", `"macOS"`},
	{"X11; Linux x86_64", `"Linux"`},
}

// generateProfiles builds the rotating pool: recent release trains of the
// four major browser families across desktop platforms.
func generateProfiles() []Profile {
	var out []Profile
	for v := 119; v <= 126; v++ {
		for _, pl := range desktopPlatforms {
			out = append(out, chromeProfile(v, pl))
		}
	}
	for v := 115; v <= 130; v++ {
		for _, pl := range desktopPlatforms {
			out = append(out, firefoxProfile(v, pl))
		}
	}
	for _, v := range []string{"16.5", "16.6", "17.0", "17.1", "17.2", "17.3"} {
		out = append(out, safariProfile(v))
	}
	for v := 119; v <= 126; v++ {
		out = append(out, edgeProfile(v))
	}
	return out
}

func chromeProfile(version int, pl platform) Profile {
	h := baseHeaders()
	h["Sec-CH-UA"] = fmt.Sprintf(`"Chromium";v="%d", "Google Chrome";v="%d", "Not?A_Brand";v="24"`, version, version)
	h["Sec-CH-UA-Mobile"] = "?0"
	h["Sec-CH-UA-Platform"] = pl.chName
	return Profile{
		UserAgent: fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36", pl.uaToken, version),
		Headers:   h,
	}
}

func firefoxProfile(version int, pl platform) Profile {
	h := baseHeaders()
	// Firefox sends a trailing TE header and no client hints.
	h["TE"] = "trailers"
	return Profile{
		UserAgent: fmt.Sprintf("Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0", pl.uaToken, version, version),
		Headers:   h,
	}
}

func safariProfile(version string) Profile {
	return Profile{
		UserAgent: fmt.Sprintf("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Safari/605.1.15", version),
		Headers:   baseHeaders(),
	}
}

func edgeProfile(version int) Profile {
	h := baseHeaders()
	h["Sec-CH-UA"] = fmt.Sprintf(`"Chromium";v="%d", "Microsoft Edge";v="%d", "Not?A_Brand";v="24"`, version, version)
	h["Sec-CH-UA-Mobile"] = "?0"
	h["Sec-CH-UA-Platform"] = `"Windows"`
	return Profile{
		UserAgent: fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36 Edg/%d.0.0.0", version, version),
		Headers:   h,
	}
}

// curatedProfiles is the small static fallback list. These stay pinned to
// widely deployed releases so the pool still looks plausible when the
// rotating set is disabled.
func curatedProfiles() []Profile {
	return []Profile{
		chromeProfile(119, desktopPlatforms[1]),
		chromeProfile(119, desktopPlatforms[0]),
		safariProfile("16.6"),
		firefoxProfile(119, desktopPlatforms[0]),
		chromeProfile(119, desktopPlatforms[2]),
		{
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			Headers:   baseHeaders(),
		},
	}
}
