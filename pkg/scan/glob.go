// Octa lists stored numbers by glob pattern (KEYS num:*); the following module implements glob matching over key
// streams.

package scan

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"v.io/v23/glob"
)

var ErrInvalidPattern = errors.New("invalid glob pattern")

// MatchGlob lazily filters `keys` down to the ones matching the glob `pattern`. Patterns follow the usual `*`, `?` and
// `[...]` syntax; `/` is rejected since keys are flat names, not paths.
func MatchGlob(pattern string, keys iter.Seq[string]) (iter.Seq[string], error) {
	if strings.Contains(pattern, "/") {
		return nil, fmt.Errorf("%w: %q contains '/'", ErrInvalidPattern, pattern)
	}
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	matcher := parsedPattern.Head()
	return func(yield func(string) bool) {
		for key := range keys {
			if matcher.Match(key) {
				if !yield(key) {
					return
				}
			}
		}
	}, nil
}
