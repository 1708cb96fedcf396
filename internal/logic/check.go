package logic

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/filter"
	"github.com/idelchi/xtsenc/pkg/pathmatch"
)

var (
	// ErrNoPatterns is returned by RunCheck when there is nothing to check.
	ErrNoPatterns = errors.New("no include or exclude patterns to check")
	// ErrUnmatchedPattern is returned by RunCheck when a pattern selects no file.
	ErrUnmatchedPattern = errors.New("pattern matched no files")
)

// RunCheck validates that every include/exclude pattern matches at least one file below
// cfg.Files, reporting each pattern's count to w.
func RunCheck(w io.Writer, cfg *config.Config) error {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return err
	}

	if len(includes) == 0 && len(excludes) == 0 {
		return ErrNoPatterns
	}

	candidates, _, _, err := filter.Resolve(cfg.Files, nil, nil, "")
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}

	for i, path := range candidates {
		candidates[i] = filepath.ToSlash(path)
	}

	failures := checkPatterns(w, "include", includes, candidates, cfg.Quiet) +
		checkPatterns(w, "exclude", excludes, candidates, cfg.Quiet)

	if failures > 0 {
		return fmt.Errorf("%w: %d pattern(s)", ErrUnmatchedPattern, failures)
	}

	return nil
}

// checkPatterns tests each pattern on its own against candidates.
// Returns the number of patterns that are invalid or matched zero files.
func checkPatterns(w io.Writer, kind string, patterns, candidates []string, quiet bool) int {
	var failures int

	for _, pattern := range patterns {
		matcher, err := pathmatch.NewMatcher([]string{strings.TrimPrefix(pattern, "./")})
		if err != nil {
			fmt.Fprintf(w, "%s: %s: invalid pattern: %v\n", kind, pattern, err)

			failures++

			continue
		}

		var count int

		for _, path := range candidates {
			if matcher.MatchAny(path) {
				count++
			}
		}

		switch {
		case count == 0:
			fmt.Fprintf(w, "%s: %s: 0 files (ERROR)\n", kind, pattern)

			failures++
		case !quiet:
			fmt.Fprintf(w, "%s: %s: %d files\n", kind, pattern, count)
		}
	}

	return failures
}
