package pathmatch_test

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/xtsenc/pkg/pathmatch"
)

// Case is a single pattern and path from a YAML golden file.
type Case struct {
	Pattern     string `yaml:"pattern"`
	Path        string `yaml:"path"`
	Match       bool   `yaml:"match"`
	Description string `yaml:"description,omitempty"`
}

// Group is a named collection of cases.
type Group struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`
}

func loadGroups(t *testing.T) []Group {
	t.Helper()

	files, err := filepath.Glob("testdata/*.yml")
	if err != nil {
		t.Fatalf("globbing testdata: %v", err)
	}

	if len(files) == 0 {
		t.Fatal("no testdata/*.yml files found")
	}

	var all []Group

	for _, f := range files {
		data, err := os.ReadFile(f) //nolint:gosec // test helper reads known testdata files
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}

		var groups []Group
		if err := yaml.Unmarshal(data, &groups); err != nil {
			t.Fatalf("parsing %s: %v", f, err)
		}

		all = append(all, groups...)
	}

	return all
}

// forEachCase runs fn as a parallel subtest for every golden case.
func forEachCase(t *testing.T, fn func(t *testing.T, tc Case)) {
	t.Helper()

	for _, group := range loadGroups(t) {
		t.Run(group.Name, func(t *testing.T) {
			t.Parallel()

			for i, tc := range group.Cases {
				name := tc.Description
				if name == "" {
					name = fmt.Sprintf("case_%d", i)
				}

				t.Run(name, func(t *testing.T) {
					t.Parallel()
					fn(t, tc)
				})
			}
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	forEachCase(t, func(t *testing.T, tc Case) {
		t.Helper()

		got, err := pathmatch.Match(tc.Pattern, tc.Path)
		if err != nil {
			t.Fatalf("Match(%q, %q) error = %v", tc.Pattern, tc.Path, err)
		}

		if got != tc.Match {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.Pattern, tc.Path, got, tc.Match)
		}
	})
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	forEachCase(t, func(t *testing.T, tc Case) {
		t.Helper()

		// A pattern that cannot match anything must not change the outcome.
		matcher, err := pathmatch.NewMatcher([]string{"\x00never", tc.Pattern})
		if err != nil {
			t.Fatalf("NewMatcher(%q) error = %v", tc.Pattern, err)
		}

		if got := matcher.MatchAny(tc.Path); got != tc.Match {
			t.Errorf("MatchAny(%q) with %q = %v, want %v", tc.Path, tc.Pattern, got, tc.Match)
		}
	})
}

func TestEmptyMatcher(t *testing.T) {
	t.Parallel()

	matcher, err := pathmatch.NewMatcher(nil)
	if err != nil {
		t.Fatal(err)
	}

	if matcher.Len() != 0 || matcher.MatchAny("anything") {
		t.Error("empty matcher matched a path")
	}
}

func TestInvalidPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		want    error
	}{
		{pattern: `dir\`, want: pathmatch.ErrTrailingEscape},
		{pattern: "log[0-9", want: pathmatch.ErrUnclosedClass},
		{pattern: "[!]", want: pathmatch.ErrUnclosedClass},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()

			if _, err := pathmatch.Match(tt.pattern, "x"); !errors.Is(err, tt.want) {
				t.Errorf("Match(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}

			if _, err := pathmatch.NewMatcher([]string{"*", tt.pattern}); !errors.Is(err, tt.want) {
				t.Errorf("NewMatcher(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	for _, literal := range []string{".xts", "*.enc", "what?", "[x]", `back\slash`, "plain"} {
		pattern := "*" + pathmatch.Escape(literal)

		if ok, err := pathmatch.Match(pattern, "dir/file"+literal); err != nil || !ok {
			t.Errorf("Match(%q, %q) = %v, %v, want a match", pattern, "dir/file"+literal, ok, err)
		}

		if ok, _ := pathmatch.Match(pathmatch.Escape(literal), literal+"x"); ok {
			t.Errorf("escaped %q matched a longer path", literal)
		}
	}

	if ok, _ := pathmatch.Match("*"+pathmatch.Escape("*.enc"), "file.enc"); ok {
		t.Error("escaped star acted as a wildcard")
	}
}

// TestFindParity checks every golden case against find -path itself.
func TestFindParity(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("find"); err != nil {
		t.Skip("find not available")
	}

	forEachCase(t, func(t *testing.T, tc Case) {
		t.Helper()

		if got := find(t, tc.Pattern, tc.Path); got != tc.Match {
			t.Errorf("find -path %q on %q = %v, golden file says %v", tc.Pattern, tc.Path, got, tc.Match)
		}
	})
}

// find creates path below a temporary root and reports whether find -path selects it.
func find(t *testing.T, pattern, path string) bool {
	t.Helper()

	root := t.TempDir()
	full := filepath.Join(root, path)

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("creating parent of %q: %v", path, err)
	}

	if err := os.WriteFile(full, nil, 0o600); err != nil {
		t.Fatalf("creating %q: %v", path, err)
	}

	//nolint:gosec // arguments come from the golden files
	out, err := exec.CommandContext(t.Context(), "find", root, "-type", "f", "-path", root+"/"+pattern).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.Logf("find stderr: %s", exitErr.Stderr)
		}

		t.Fatalf("running find: %v", err)
	}

	return strings.TrimSpace(string(out)) != ""
}
