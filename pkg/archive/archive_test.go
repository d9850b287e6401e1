package archive_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrtigerst/tdm/pkg/archive"
	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/mrtigerst/tdm/pkg/testutil"
	"github.com/mrtigerst/tdm/pkg/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkAll(t *testing.T, root string) *walker.Result {
	t.Helper()
	res, err := walker.Walk(root, walker.Options{})
	require.NoError(t, err)
	return res
}

func TestEncodeWriteParseRoundTrip(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a.txt":       "hi",
		"src/main.go": "package main\n\nfunc main() {}\n",
		"bin/blob":    "\x00\x01\x02\xff binary \n bytes",
	})
	testutil.MkDirs(t, src, "logs")

	enc := &archive.Encoder{}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)
	require.Len(t, records, 4)

	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf, records))

	// directory records precede file records on the wire
	text := buf.String()
	assert.Less(t, strings.Index(text, "DIR: logs"), strings.Index(text, "FILE: "))

	parsed, err := archive.NewDecoder().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	dest := t.TempDir()
	app := &archive.Applier{}
	require.NoError(t, app.Apply(context.Background(), parsed, dest))

	assert.Equal(t, map[string]string{
		"a.txt":       "hi",
		"src/main.go": "package main\n\nfunc main() {}\n",
		"bin/blob":    "\x00\x01\x02\xff binary \n bytes",
	}, testutil.ReadTree(t, dest))
	testutil.DirExists(t, dest, "logs")
}

func TestEncode_UnreadableFileAbortsCreate(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"ok.txt":     "fine",
		"secret.txt": "nope",
	})
	require.NoError(t, os.Chmod(filepath.Join(src, "secret.txt"), 0o000))

	enc := &archive.Encoder{}
	_, err := enc.Encode(context.Background(), walkAll(t, src))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileRead))
	assert.Contains(t, err.Error(), "secret.txt")
}

func TestEncode_PayloadIsSingleLineBase64(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"multi.txt": "line one\nline two\nline three\n",
	})

	enc := &archive.Encoder{}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.NotContains(t, records[0].Payload, "\n")
	assert.Equal(t, len(records[0].Payload), records[0].DeclaredLen)
}

func TestEncode_ReportsProgress(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a": "1", "b": "2", "c": "3",
	})

	counter := progress.New(3, nil)
	enc := &archive.Encoder{Progress: counter}
	_, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)

	value, _ := counter.Get()
	assert.Equal(t, uint64(3), value)
}

func TestParse_DirSentinelMismatchIsRecoverable(t *testing.T) {
	input := "DIR: logs\n" +
		"WRONG_SENTINEL\n" +
		"DIR: cache\n" +
		"END_OF_DIR\n"

	dec := archive.NewDecoder()
	records, err := dec.Parse(strings.NewReader(input))
	require.NoError(t, err)

	// the malformed record is reported but still produced, and parsing
	// resumes with the following record
	require.Len(t, records, 2)
	assert.Equal(t, "logs", records[0].Path)
	assert.Equal(t, "cache", records[1].Path)
	require.Len(t, dec.Warnings(), 1)
	assert.Contains(t, dec.Warnings()[0], "logs")
}

func TestParse_FileStructuralBreakIsFatal(t *testing.T) {
	t.Run("missing_size_line", func(t *testing.T) {
		input := "FILE: a.txt\n" +
			"not a size line\n"
		_, err := archive.NewDecoder().Parse(strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveFormat))
	})

	t.Run("wrong_sentinel", func(t *testing.T) {
		input := "FILE: a.txt\n" +
			"SIZE: 4\n" +
			"aGk=\n" +
			"NOT_THE_SENTINEL\n"
		_, err := archive.NewDecoder().Parse(strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveFormat))
	})

	t.Run("records_before_break_are_returned", func(t *testing.T) {
		input := "DIR: logs\n" +
			"END_OF_DIR\n" +
			"FILE: broken\n" +
			"SIZE: oops\n"
		records, err := archive.NewDecoder().Parse(strings.NewReader(input))
		require.Error(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "logs", records[0].Path)
	})
}

func TestParse_RejectsEscapingPaths(t *testing.T) {
	t.Run("file_record_is_fatal", func(t *testing.T) {
		input := "FILE: ../evil\n" +
			"SIZE: 4\n" +
			"aGk=\n" +
			"END_OF_FILE\n"
		_, err := archive.NewDecoder().Parse(strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveFormat))
	})

	t.Run("dir_record_is_skipped", func(t *testing.T) {
		input := "DIR: /abs\n" +
			"END_OF_DIR\n" +
			"DIR: fine\n" +
			"END_OF_DIR\n"
		dec := archive.NewDecoder()
		records, err := dec.Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "fine", records[0].Path)
		assert.NotEmpty(t, dec.Warnings())
	})
}

func TestApply_SizeMismatchIsAdvisoryOnly(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.txt": "hi"})

	enc := &archive.Encoder{}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf, records))

	// corrupt the declared SIZE value
	corrupted := strings.Replace(buf.String(), "SIZE: 4", "SIZE: 9999", 1)
	require.NotEqual(t, buf.String(), corrupted)

	parsed, err := archive.NewDecoder().Parse(strings.NewReader(corrupted))
	require.NoError(t, err)

	dest := t.TempDir()
	app := &archive.Applier{}
	require.NoError(t, app.Apply(context.Background(), parsed, dest))

	// content restores correctly despite the bogus declared length
	assert.Equal(t, map[string]string{"a.txt": "hi"}, testutil.ReadTree(t, dest))
}

func TestApply_MalformedPayloadFailsThatRecord(t *testing.T) {
	records := []archive.Record{
		{Kind: archive.KindFile, Path: "bad.txt", Payload: "!!!not base64!!!", DeclaredLen: 16},
	}

	dest := t.TempDir()
	app := &archive.Applier{}
	err := app.Apply(context.Background(), records, dest)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchivePayload))

	_, statErr := os.Stat(filepath.Join(dest, "bad.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApply_OverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.txt": "new contents"})

	enc := &archive.Encoder{}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)

	dest := t.TempDir()
	testutil.WriteTree(t, dest, map[string]string{"a.txt": "old contents"})

	app := &archive.Applier{}
	require.NoError(t, app.Apply(context.Background(), records, dest))
	assert.Equal(t, map[string]string{"a.txt": "new contents"}, testutil.ReadTree(t, dest))
}

func TestApply_CreatesMissingAncestors(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"deep/nested/tree/file.txt": "x"})

	enc := &archive.Encoder{}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)

	dest := t.TempDir()
	app := &archive.Applier{}
	require.NoError(t, app.Apply(context.Background(), records, dest))
	assert.Equal(t, map[string]string{"deep/nested/tree/file.txt": "x"}, testutil.ReadTree(t, dest))
}

func TestApply_CustomKeyRoundTrip(t *testing.T) {
	key := []byte("rotated-key-01")
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.txt": "hi"})

	enc := &archive.Encoder{Key: key}
	records, err := enc.Encode(context.Background(), walkAll(t, src))
	require.NoError(t, err)

	dest := t.TempDir()
	app := &archive.Applier{Key: key}
	require.NoError(t, app.Apply(context.Background(), records, dest))
	assert.Equal(t, map[string]string{"a.txt": "hi"}, testutil.ReadTree(t, dest))
}
