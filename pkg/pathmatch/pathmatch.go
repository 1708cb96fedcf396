// Package pathmatch matches paths against globs with find -path semantics.
//
// Patterns follow fnmatch(3) without FNM_PATHNAME, so wildcards cross directory separators:
//   - * matches any run of characters, / included
//   - ? matches exactly one character, / included
//   - [...] matches one character of the set, [!...] or [^...] one character outside it
//   - \ makes the next character literal
//
// filepath.Match differs: there * and ? stop at a separator.
package pathmatch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrTrailingEscape is returned for patterns ending in a lone backslash.
	ErrTrailingEscape = errors.New("trailing backslash")
	// ErrUnclosedClass is returned for a [ without its closing ].
	ErrUnclosedClass = errors.New("unclosed character class")
)

// Match reports whether path matches pattern.
func Match(pattern, path string) (bool, error) {
	re, err := compile(pattern)
	if err != nil {
		return false, err
	}

	return re.MatchString(path), nil
}

// Matcher holds a set of compiled patterns.
type Matcher struct {
	res []*regexp.Regexp
}

// NewMatcher compiles patterns once for matching against many paths.
func NewMatcher(patterns []string) (*Matcher, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := compile(pattern)
		if err != nil {
			return nil, err
		}

		res = append(res, re)
	}

	return &Matcher{res: res}, nil
}

// Len returns the number of patterns in the matcher.
func (m *Matcher) Len() int {
	return len(m.res)
}

// MatchAny reports whether path matches at least one pattern.
// An empty matcher matches nothing.
func (m *Matcher) MatchAny(path string) bool {
	for _, re := range m.res {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

// Escape quotes the wildcard characters in s so that it matches only itself.
func Escape(s string) string {
	var b strings.Builder

	for _, r := range s {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

var compiled sync.Map //nolint:gochecknoglobals // pattern cache shared by all matchers

func compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := compiled.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil //nolint:forcetypeassert // only *regexp.Regexp is stored
	}

	expr, err := translate(pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	compiled.Store(pattern, re)

	return re, nil
}

// translate turns a glob into an anchored regular expression.
func translate(pattern string) (string, error) {
	var b strings.Builder

	// (?s) lets wildcards match newlines, which are valid in file names.
	b.WriteString(`(?s)^`)

	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '\\':
			if i+1 == len(pattern) {
				return "", ErrTrailingEscape
			}

			i++
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		case '[':
			end, err := classEnd(pattern, i)
			if err != nil {
				return "", err
			}

			class := pattern[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}

			b.WriteString("[" + class + "]")

			i = end
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}

	b.WriteString(`$`)

	return b.String(), nil
}

// classEnd returns the index of the ] closing the class opened at start.
// A ] right after the opening bracket, or after its negation, is a member of the set.
func classEnd(pattern string, start int) (int, error) {
	i := start + 1

	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}

	if i < len(pattern) && pattern[i] == ']' {
		i++
	}

	for ; i < len(pattern); i++ {
		if pattern[i] == ']' {
			return i, nil
		}
	}

	return 0, ErrUnclosedClass
}
