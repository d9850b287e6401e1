package commands_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mrtigerst/tdm/pkg/commands"
	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/ignore"
	"github.com/mrtigerst/tdm/pkg/store"
	"github.com/mrtigerst/tdm/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "templates"))
	require.NoError(t, err)
	return s
}

func TestCreateThenApply_RoundTrip(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a.txt":          "hi",
		"src/main.go":    "package main\n",
		"src/sub/deep.c": "int x;\n",
	})
	testutil.MkDirs(t, src, "logs", "assets/img")

	st := newStore(t)
	ctx := context.Background()

	created, err := commands.Create(ctx, st, commands.CreateOptions{
		Name: "proj",
		Root: src,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.FileCount)
	assert.Equal(t, 2, created.DirCount)
	assert.True(t, st.Exists("proj"))

	dest := t.TempDir()
	applied, err := commands.Apply(ctx, st, commands.ApplyOptions{
		Name: "proj",
		Dest: dest,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, applied.FileCount)
	assert.Equal(t, 2, applied.DirCount)
	assert.Empty(t, applied.Warnings)

	assert.Equal(t, testutil.ReadTree(t, src), testutil.ReadTree(t, dest))
	testutil.DirExists(t, dest, "logs")
	testutil.DirExists(t, dest, "assets/img")
}

func TestCreate_AppliesIgnoreRules(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a.txt":        "hi",
		"logs/app.log": "noise",
		ignore.File:    "*.log\n",
	})

	st := newStore(t)
	created, err := commands.Create(context.Background(), st, commands.CreateOptions{
		Name:              "clean",
		Root:              src,
		ExcludeIgnoreFile: true,
	})
	require.NoError(t, err)

	// a.txt only; app.log is filtered, which leaves logs/ empty
	assert.Equal(t, 1, created.FileCount)
	assert.Equal(t, 1, created.DirCount)

	dest := t.TempDir()
	_, err = commands.Apply(context.Background(), st, commands.ApplyOptions{
		Name: "clean",
		Dest: dest,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"a.txt": "hi"}, testutil.ReadTree(t, dest))
	testutil.DirExists(t, dest, "logs")
}

func TestCreate_MalformedIgnoreFileIsFatalBeforeTraversal(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		ignore.File: "[bad\n",
		"a.txt":     "hi",
	})

	st := newStore(t)
	_, err := commands.Create(context.Background(), st, commands.CreateOptions{
		Name: "broken",
		Root: src,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIgnorePattern))
	assert.False(t, st.Exists("broken"))
}

func TestApply_MissingTemplate(t *testing.T) {
	st := newStore(t)
	_, err := commands.Apply(context.Background(), st, commands.ApplyOptions{
		Name: "ghost",
		Dest: t.TempDir(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
}
