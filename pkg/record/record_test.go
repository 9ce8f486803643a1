package record

import (
	"slices"
	"testing"
)

func TestNewAppliesDefaults(t *testing.T) {
	rec := New("requests")
	if rec.Name != "requests" {
		t.Errorf("unexpected name: %q", rec.Name)
	}
	if rec.Version != VersionUnresolved {
		t.Errorf("expected version %q, got %q", VersionUnresolved, rec.Version)
	}
	if rec.License != LicenseNotSpecified {
		t.Errorf("expected default license, got %q", rec.License)
	}
	if rec.Readme != ReadmeUnavailable {
		t.Errorf("expected default readme, got %q", rec.Readme)
	}
}

func TestSortVersionsSemantic(t *testing.T) {
	got := SortVersions([]string{"1.0.0", "2.0.0", "1.10.0", "1.2.0"})
	want := []string{"2.0.0", "1.10.0", "1.2.0", "1.0.0"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortVersionsPreReleaseBelowFinal(t *testing.T) {
	got := SortVersions([]string{"2.0.0rc1", "2.0.0", "1.9.9"})
	want := []string{"2.0.0", "2.0.0rc1", "1.9.9"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortVersionsFallbackUniform(t *testing.T) {
	// One unparsable entry switches the entire list to tokenized
	// comparison, where non-numeric tokens outrank every number.
	got := SortVersions([]string{"1.0", "1.0.dev1", "0.9"})
	want := []string{"1.0.dev1", "1.0", "0.9"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortVersionsFallbackKeepsNumericOrder(t *testing.T) {
	got := SortVersions([]string{"1.10", "1.9", "weekly"})
	want := []string{"weekly", "1.10", "1.9"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortVersionsDoesNotMutateInput(t *testing.T) {
	in := []string{"1.0.0", "2.0.0"}
	SortVersions(in)
	if !slices.Equal(in, []string{"1.0.0", "2.0.0"}) {
		t.Error("input slice was mutated")
	}
}

func TestSplitRequirements(t *testing.T) {
	requires := []string{
		"charset-normalizer<4,>=2",
		"urllib3<3,>=1.21.1",
		"pytest>=7 ; extra == 'dev'",
		"sphinx ; extra == 'docs'",
		"coverage; extra == 'test'",
	}
	deps, dev := SplitRequirements(requires)

	wantDeps := []string{"charset-normalizer<4,>=2", "urllib3<3,>=1.21.1"}
	if !slices.Equal(deps, wantDeps) {
		t.Errorf("deps = %v, want %v", deps, wantDeps)
	}
	wantDev := []string{"pytest>=7 ; extra == 'dev'", "sphinx ; extra == 'docs'", "coverage; extra == 'test'"}
	if !slices.Equal(dev, wantDev) {
		t.Errorf("dev = %v, want %v", dev, wantDev)
	}
}

func TestSplitRequirementsKeepsMarkerInStoredValue(t *testing.T) {
	deps, dev := SplitRequirements([]string{
		"foo>=1.0",
		"bar; extra == 'dev'",
		"baz; python_version < '3.8'",
	})

	wantDeps := []string{"foo>=1.0", "baz; python_version < '3.8'"}
	if !slices.Equal(deps, wantDeps) {
		t.Errorf("deps = %v, want %v", deps, wantDeps)
	}
	if !slices.Equal(dev, []string{"bar; extra == 'dev'"}) {
		t.Errorf("dev = %v, want the full string with its marker", dev)
	}
}

func TestSplitRequirementsEmptyUsesSentinel(t *testing.T) {
	deps, dev := SplitRequirements(nil)
	if !slices.Equal(deps, []string{NoDependencies}) {
		t.Errorf("deps = %v, want sentinel", deps)
	}
	if len(dev) != 0 {
		t.Errorf("dev = %v, want empty", dev)
	}
}

func TestSplitRequirementsOnlyDevUsesSentinel(t *testing.T) {
	deps, dev := SplitRequirements([]string{"pytest ; extra == 'test'"})
	if !slices.Equal(deps, []string{NoDependencies}) {
		t.Errorf("deps = %v, want sentinel", deps)
	}
	if !slices.Equal(dev, []string{"pytest ; extra == 'test'"}) {
		t.Errorf("dev = %v, want the full requirement", dev)
	}
}

func TestSplitRequirementsMarkerCaseInsensitive(t *testing.T) {
	_, dev := SplitRequirements([]string{"black ; Extra == 'DEV'"})
	if !slices.Equal(dev, []string{"black ; Extra == 'DEV'"}) {
		t.Errorf("dev = %v, want the full requirement", dev)
	}
}

func TestCleanLinksDropsEmptyValues(t *testing.T) {
	got := CleanLinks(map[string]string{
		"Homepage": "https://example.com",
		"Docs":     "",
		"  ":       "https://ignored.example.com",
	})
	if len(got) != 1 || got["Homepage"] != "https://example.com" {
		t.Errorf("unexpected links: %v", got)
	}

	if got := CleanLinks(map[string]string{"Docs": ""}); got != nil {
		t.Errorf("expected nil for all-empty map, got %v", got)
	}
}

func TestDeriveVCSURL(t *testing.T) {
	tests := []struct {
		name  string
		links map[string]string
		want  string
	}{
		{
			name: "priority key wins over homepage",
			links: map[string]string{
				"Homepage": "https://github.com/org/homepage",
				"Source":   "https://github.com/org/source",
			},
			want: "https://github.com/org/source",
		},
		{
			name: "case insensitive key match",
			links: map[string]string{
				"repository": "https://github.com/org/repo",
			},
			want: "https://github.com/org/repo",
		},
		{
			name: "priority key skipped when not github",
			links: map[string]string{
				"Source":   "https://gitlab.com/org/repo",
				"Homepage": "https://github.com/org/site",
			},
			want: "https://github.com/org/site",
		},
		{
			name: "fallback scans all values",
			links: map[string]string{
				"Changelog": "https://github.com/org/repo/blob/main/CHANGES.md",
			},
			want: "https://github.com/org/repo/blob/main/CHANGES.md",
		},
		{
			name: "query and fragment stripped",
			links: map[string]string{
				"GitHub": "https://github.com/org/repo?tab=readme#intro",
			},
			want: "https://github.com/org/repo",
		},
		{
			name:  "no github link",
			links: map[string]string{"Homepage": "https://example.com"},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveVCSURL(tt.links); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
