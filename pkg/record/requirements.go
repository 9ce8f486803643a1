package record

import "strings"

// devMarkers are the environment-marker fragments that classify a
// requirement as development-only.
var devMarkers = []string{
	"extra == 'dev'",
	"extra == 'test'",
	"extra == 'docs'",
}

// SplitRequirements partitions raw requirement strings into runtime and
// development dependencies. A requirement whose environment marker names a
// dev, test, or docs extra is development-only; everything else is runtime.
// The marker is used for classification only; the stored value is the full
// requirement string, marker included. An empty runtime list is replaced by
// the NoDependencies sentinel so the field is never empty.
func SplitRequirements(requires []string) (deps, dev []string) {
	for _, raw := range requires {
		req := strings.TrimSpace(raw)
		if req == "" {
			continue
		}
		_, marker, _ := strings.Cut(req, ";")
		if isDevMarker(marker) {
			dev = append(dev, req)
			continue
		}
		deps = append(deps, req)
	}
	if len(deps) == 0 {
		deps = []string{NoDependencies}
	}
	return deps, dev
}

func isDevMarker(marker string) bool {
	marker = strings.ToLower(marker)
	for _, m := range devMarkers {
		if strings.Contains(marker, m) {
			return true
		}
	}
	return false
}
