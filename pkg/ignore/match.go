package ignore

import (
	"path/filepath"
	"strings"
)

// matchPath matches a slash-separated pattern against a slash-separated
// relative path, segment by segment. A "**" segment greedily matches any
// number of path segments (including none); every other segment is matched
// with filepath.Match.
func matchPath(pattern, relPath string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(relPath, "/"))
}

func matchSegments(patterns, segments []string) bool {
	if len(patterns) == 0 {
		return len(segments) == 0
	}

	if patterns[0] == "**" {
		for i := 0; i <= len(segments); i++ {
			if matchSegments(patterns[1:], segments[i:]) {
				return true
			}
		}
		return false
	}

	if len(segments) == 0 {
		return false
	}
	if ok, _ := filepath.Match(patterns[0], segments[0]); !ok {
		return false
	}
	return matchSegments(patterns[1:], segments[1:])
}

// validate checks a compiled pattern for malformed glob syntax. Pattern
// compilation must be total for well-formed globs, so a bad pattern is
// surfaced at compile time rather than silently never matching.
func validate(pattern string) error {
	for _, segment := range strings.Split(pattern, "/") {
		if segment == "**" {
			continue
		}
		if _, err := filepath.Match(segment, "x"); err != nil {
			return err
		}
	}
	return nil
}
