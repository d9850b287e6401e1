// Package walker enumerates filesystem entries under a root directory,
// applying hidden-path and ignore-rule filtering. It produces two disjoint
// sets: regular files to include, and directories that are empty once the
// same filtering is applied to their children.
package walker

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/ignore"
	"github.com/mrtigerst/tdm/pkg/logging"
)

// Entry is a filesystem path discovered under the walk root. RelPath is
// slash-separated and relative to the root, never absolute.
type Entry struct {
	RelPath string
	AbsPath string
}

// Options controls filtering during a walk.
type Options struct {
	// IncludeHidden keeps entries beneath dot-directories. When false, a
	// file is excluded if any ancestor directory name starts with '.'; a
	// directory is additionally excluded by its own dot-name.
	IncludeHidden bool

	// ExcludeIgnoreFile drops the .tdmignore file itself from the file set.
	// The ignore file is never subject to hidden or ignore-rule filtering
	// for this determination.
	ExcludeIgnoreFile bool

	// Rules is the compiled exclusion set. Nil means no rules.
	Rules *ignore.RuleSet
}

// Result holds the two disjoint walk outputs.
type Result struct {
	Files     []Entry
	EmptyDirs []Entry
}

// Walk traverses every entry reachable from root. The root directory itself
// is never emitted, even when empty.
func Walk(root string, opts Options) (*Result, error) {
	logger := logging.GetLogger("walker")
	res := &Result{}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", p)
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return errors.Wrapf(relErr, errors.ErrInternal, "failed to relativize %s", p)
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			empty, derr := isEmptyAfterFilter(p, rel, opts)
			if derr != nil {
				return derr
			}
			if empty {
				res.EmptyDirs = append(res.EmptyDirs, Entry{RelPath: rel, AbsPath: p})
			}
			return nil
		}

		// Only regular files populate the file set; symlinks and other
		// special entries are never archived.
		if !d.Type().IsRegular() {
			return nil
		}

		if path.Base(rel) == ignore.File {
			if !opts.ExcludeIgnoreFile {
				res.Files = append(res.Files, Entry{RelPath: rel, AbsPath: p})
			}
			return nil
		}

		if !opts.IncludeHidden && underHiddenDir(rel) {
			return nil
		}
		if opts.Rules.Match(rel) {
			return nil
		}

		res.Files = append(res.Files, Entry{RelPath: rel, AbsPath: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("files", len(res.Files)).
		Int("emptyDirs", len(res.EmptyDirs)).
		Str("root", root).
		Msg("Walk complete")
	return res, nil
}

// isEmptyAfterFilter reports whether the directory at abs (relative path rel)
// belongs in the empty-directory set: not itself filtered, and with zero
// direct children surviving hidden/ignore filtering.
func isEmptyAfterFilter(abs, rel string, opts Options) (bool, error) {
	if !opts.IncludeHidden && hasHiddenSegment(rel) {
		return false, nil
	}
	if opts.Rules.Match(rel) {
		return false, nil
	}

	children, err := os.ReadDir(abs)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRead, "failed to read directory %s", abs)
	}

	for _, child := range children {
		name := child.Name()
		if name == ignore.File {
			if opts.ExcludeIgnoreFile {
				continue
			}
			return false, nil
		}
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if opts.Rules.Match(path.Join(rel, name)) {
			continue
		}
		return false, nil
	}
	return true, nil
}

// underHiddenDir reports whether any ancestor directory segment of rel
// (not the final segment) starts with '.'.
func underHiddenDir(rel string) bool {
	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// hasHiddenSegment reports whether any segment of rel, including the final
// one, starts with '.'.
func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
