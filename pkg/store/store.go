// Package store maps template names to archive files on disk. It owns
// naming, listing, deletion, and import/export of archives; it never walks
// trees or touches archive contents.
package store

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrtigerst/tdm/pkg/config"
	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/rs/zerolog"
)

// Extension is the archive file suffix; a template name maps 1:1 to
// <dir>/<name>.tdm.
const Extension = ".tdm"

// Store locates template archives beneath a single directory.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreAccess,
			"failed to create template directory %s", dir)
	}
	return &Store{dir: dir, logger: logging.GetLogger("store")}, nil
}

// Open resolves the template directory from configuration and returns a
// Store over it.
func Open(cfg *config.Config) (*Store, error) {
	return New(cfg.TemplateDir())
}

// Dir returns the directory holding the archives.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the archive location for a template name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+Extension)
}

// Exists reports whether a template with the given name is stored.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// List returns the stored template names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreAccess,
			"failed to read template directory %s", s.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a template. Archives are deleted wholesale, never patched.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrTemplateNotFound, "template '%s' not found", name)
		}
		return errors.Wrapf(err, errors.ErrStoreAccess, "failed to delete template '%s'", name)
	}
	s.logger.Info().Str("template", name).Msg("Template deleted")
	return nil
}

// Reader opens a stored archive for reading.
func (s *Store) Reader(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrTemplateNotFound, "template '%s' not found", name)
		}
		return nil, errors.Wrapf(err, errors.ErrStoreAccess, "failed to open template '%s'", name)
	}
	return f, nil
}

// Write creates or replaces an archive by streaming through write. The
// archive is assembled in a temporary file and renamed into place only
// after write returns, so a failed create never leaves a partial archive
// under the template's name.
func (s *Store) Write(name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess,
			"failed to create archive for template '%s'", name)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to finalize archive for template '%s'", name)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess,
			"failed to store template '%s'", name)
	}
	s.logger.Info().Str("template", name).Str("path", s.Path(name)).Msg("Template stored")
	return nil
}

// Import copies an external archive file into the store. An empty name
// derives the template name from the file's base name.
func (s *Store) Import(file, name string) (string, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), Extension)
	}

	src, err := os.Open(file)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileRead, "failed to open %s", file)
	}
	defer src.Close()

	if err := s.Write(name, func(w io.Writer) error {
		if _, err := io.Copy(w, src); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to import %s", file)
		}
		return nil
	}); err != nil {
		return "", err
	}
	return name, nil
}

// Export copies a stored archive into outDir, creating it if needed.
func (s *Store) Export(name, outDir string) error {
	src, err := s.Reader(name)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create output directory %s", outDir)
	}

	dst, err := os.Create(filepath.Join(outDir, name+Extension))
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to export template '%s'", name)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to export template '%s'", name)
	}
	return nil
}
