// Package testutil provides filesystem helpers shared by the test suites.
// Trees are built on the real filesystem: the round-trip properties under
// test are about real directory and file behavior.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree materializes files (relative slash-path -> contents) under root,
// creating parent directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, contents := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(contents), 0o644))
	}
}

// MkDirs creates the given directories (relative slash-paths) under root.
func MkDirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, rel := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755))
	}
}

// ReadTree returns every regular file under root as a map of relative
// slash-path -> contents.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

// DirExists asserts that rel under root exists and is a directory.
func DirExists(t *testing.T, root, rel string) {
	t.Helper()
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err, "expected directory %s", rel)
	require.True(t, info.IsDir(), "expected %s to be a directory", rel)
}
