// Package filter turns command line arguments and file lists into the inputs of a run.
//
// Directories are walked and their files selected with include/exclude patterns using
// find -path semantics; explicitly named files bypass the patterns.
package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/xtsenc/pkg/pathmatch"
)

var (
	// ErrNotRegular is returned for explicitly named inputs that are not regular files or directories.
	ErrNotRegular = errors.New("not a regular file")
	// ErrNoFiles is returned when no input is left after filtering.
	ErrNoFiles = errors.New("no files to process")
)

// Filter selects files based on include/exclude patterns.
// Empty includes means "match all". Excludes always win.
// A suffix, when set, is required of every file, explicitly named ones included.
type Filter struct {
	includes *pathmatch.Matcher
	excludes *pathmatch.Matcher
	suffix   *pathmatch.Matcher
}

// NewFilter compiles include/exclude patterns and the required suffix into a reusable filter.
func NewFilter(includes, excludes []string, suffix string) (*Filter, error) {
	inc, err := pathmatch.NewMatcher(normalize(includes))
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(normalize(excludes))
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	var required []string
	if suffix != "" {
		required = []string{"*" + pathmatch.Escape(suffix)}
	}

	suf, err := pathmatch.NewMatcher(required)
	if err != nil {
		return nil, fmt.Errorf("compiling suffix: %w", err)
	}

	return &Filter{includes: inc, excludes: exc, suffix: suf}, nil
}

// Match reports whether a walked path is selected.
func (f *Filter) Match(path string) bool {
	path = filepath.ToSlash(filepath.Clean(path))

	if f.includes.Len() > 0 && !f.includes.MatchAny(path) {
		return false
	}

	return !f.excludes.MatchAny(path) && f.hasSuffix(path)
}

func (f *Filter) hasSuffix(path string) bool {
	return f.suffix.Len() == 0 || f.suffix.MatchAny(filepath.ToSlash(path))
}

// Resolve expands args into the files to process, keeping the first occurrence of each.
// Files are added directly, subject only to the suffix. Directories are walked and filtered.
// Returns the matched files, the number of candidates seen and how many of them were
// filtered out.
func (f *Filter) Resolve(args []string) (files []string, scanned, excluded int, err error) {
	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil {
			return nil, scanned, excluded, fmt.Errorf("stat %q: %w", arg, err)
		}

		if info.IsDir() {
			walked, total, err := f.walkDir(arg)
			if err != nil {
				return nil, scanned, excluded, err
			}

			scanned += total
			excluded += total - len(walked)

			for _, path := range walked {
				add(path)
			}

			continue
		}

		if !info.Mode().IsRegular() {
			return nil, scanned, excluded, fmt.Errorf("%w: %q", ErrNotRegular, arg)
		}

		scanned++

		if !f.hasSuffix(arg) {
			excluded++

			continue
		}

		add(arg)
	}

	if len(files) == 0 {
		return nil, scanned, excluded, fmt.Errorf("%w: %d scanned, %d excluded", ErrNoFiles, scanned, excluded)
	}

	return files, scanned, excluded, nil
}

// Resolve is a shorthand for NewFilter followed by Filter.Resolve.
func Resolve(args, includes, excludes []string, suffix string) (files []string, scanned, excluded int, err error) {
	flt, err := NewFilter(includes, excludes, suffix)
	if err != nil {
		return nil, 0, 0, err
	}

	return flt.Resolve(args)
}

// walkDir walks root recursively, returning the regular files that pass the filter.
// Paths keep root as their prefix, e.g. "src/main.go" when root is ".".
func (f *Filter) walkDir(root string) (files []string, total int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		total++

		if f.Match(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}

// normalize strips a leading "./" from each pattern so they match cleaned paths.
func normalize(patterns []string) []string {
	out := make([]string, len(patterns))

	for i, p := range patterns {
		out[i] = strings.TrimPrefix(p, "./")
	}

	return out
}
