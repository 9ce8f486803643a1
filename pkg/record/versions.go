package record

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// SortVersions orders version strings newest-first.
//
// When every string parses as a dotted numeric version (with an optional
// pre-release suffix on the last segment, like "2.0.0rc1"), versions are
// compared numerically with pre-releases ranking below their final release.
// If even one string does not parse, the whole list falls back to a
// tokenized comparison where non-numeric tokens rank above all numbers.
// The comparator is uniform across the list; the two schemes never mix.
func SortVersions(versions []string) []string {
	out := slices.Clone(versions)

	parsed := make([]semver, len(out))
	semantic := true
	for i, v := range out {
		sv, ok := parseSemver(v)
		if !ok {
			semantic = false
			break
		}
		parsed[i] = sv
	}

	if semantic {
		slices.SortStableFunc(out, func(a, b string) int {
			sa, _ := parseSemver(a)
			sb, _ := parseSemver(b)
			if c := sa.compare(sb); c != 0 {
				return -c
			}
			return -strings.Compare(a, b)
		})
		return out
	}

	slices.SortStableFunc(out, func(a, b string) int {
		if c := compareTokenized(a, b); c != 0 {
			return -c
		}
		return -strings.Compare(a, b)
	})
	return out
}

type semver struct {
	nums []int
	pre  string // empty means final release
}

// parseSemver accepts dotted numeric versions. The last segment may carry a
// trailing pre-release suffix ("1.2.0rc1", "3.0b2"); anything else fails.
func parseSemver(v string) (semver, bool) {
	if v == "" {
		return semver{}, false
	}
	parts := strings.Split(v, ".")
	sv := semver{nums: make([]int, 0, len(parts))}
	for i, part := range parts {
		if part == "" {
			return semver{}, false
		}
		digits := len(part)
		for j, r := range part {
			if r < '0' || r > '9' {
				digits = j
				break
			}
		}
		if digits == 0 {
			return semver{}, false
		}
		if digits < len(part) {
			// Suffixes are only valid on the final segment.
			if i != len(parts)-1 {
				return semver{}, false
			}
			sv.pre = part[digits:]
		}
		n, err := strconv.Atoi(part[:digits])
		if err != nil {
			return semver{}, false
		}
		sv.nums = append(sv.nums, n)
	}
	return sv, true
}

func (a semver) compare(b semver) int {
	for i := 0; i < len(a.nums) || i < len(b.nums); i++ {
		var av, bv int
		if i < len(a.nums) {
			av = a.nums[i]
		}
		if i < len(b.nums) {
			bv = b.nums[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	// A final release outranks any pre-release of the same number.
	switch {
	case a.pre == "" && b.pre != "":
		return 1
	case a.pre != "" && b.pre == "":
		return -1
	default:
		return strings.Compare(a.pre, b.pre)
	}
}

// compareTokenized compares dot-separated tokens where any token containing
// a non-digit ranks above every numeric token.
func compareTokenized(a, b string) int {
	ta, tb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(ta) || i < len(tb); i++ {
		av, bv := float64(-1), float64(-1)
		if i < len(ta) {
			av = tokenValue(ta[i])
		}
		if i < len(tb) {
			bv = tokenValue(tb[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func tokenValue(tok string) float64 {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return math.Inf(1)
	}
	return float64(n)
}
