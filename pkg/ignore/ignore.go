// Package ignore compiles .tdmignore exclusion patterns into a rule set
// usable against root-relative paths and individual path segments.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/rs/zerolog"
)

// File is the reserved ignore-file name looked up at the walk root.
const File = ".tdmignore"

// RuleSet holds the compiled exclusion patterns derived from an ignore file.
type RuleSet struct {
	patterns []string
	logger   zerolog.Logger
}

// Compile parses ignore-file contents into a RuleSet. Each raw line yields
// one or two patterns:
//   - "name/" (directory rule): the bare name plus "name/**" for anything
//     nested beneath it
//   - "a/b" (path rule): the literal path plus "a/b/**"
//   - "name": a single pattern matched against bare path segments
//
// Blank lines and lines starting with '#' are skipped. A single leading
// separator is stripped (matching is always root-relative). Malformed glob
// syntax is an error, not a skipped rule.
func Compile(contents string) (*RuleSet, error) {
	rs := &RuleSet{logger: logging.GetLogger("ignore")}

	for _, line := range strings.Split(contents, "\n") {
		pattern := strings.TrimSpace(line)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		pattern = strings.TrimPrefix(pattern, "/")

		switch {
		case strings.HasSuffix(pattern, "/"):
			name := strings.TrimSuffix(pattern, "/")
			rs.patterns = append(rs.patterns, name, name+"/**")
		case strings.Contains(pattern, "/"):
			rs.patterns = append(rs.patterns, pattern, pattern+"/**")
		default:
			rs.patterns = append(rs.patterns, pattern)
		}
	}

	for _, p := range rs.patterns {
		if err := validate(p); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIgnorePattern,
				"invalid ignore pattern %q", p)
		}
	}

	rs.logger.Debug().Int("patterns", len(rs.patterns)).Msg("Compiled ignore rules")
	return rs, nil
}

// Load reads the ignore file under root and compiles it. A missing ignore
// file means an empty rule set, not an error.
func Load(root string) (*RuleSet, error) {
	contents, err := os.ReadFile(filepath.Join(root, File))
	if err != nil {
		if os.IsNotExist(err) {
			return Compile("")
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead,
			"failed to read ignore file in %s", root)
	}
	return Compile(string(contents))
}

// Match reports whether relPath (slash-separated, root-relative) is excluded.
// A path is excluded when the full path matches any pattern, or when any
// single path segment matches any pattern. The segment check is what makes a
// bare-name rule apply at any depth in the tree.
func (rs *RuleSet) Match(relPath string) bool {
	if rs == nil || len(rs.patterns) == 0 {
		return false
	}

	for _, pattern := range rs.patterns {
		if matchPath(pattern, relPath) {
			return true
		}
	}

	for _, segment := range strings.Split(relPath, "/") {
		for _, pattern := range rs.patterns {
			if !strings.Contains(pattern, "/") {
				if ok, _ := filepath.Match(pattern, segment); ok {
					return true
				}
			}
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.patterns)
}
