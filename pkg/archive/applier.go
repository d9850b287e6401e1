package archive

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Applier writes parsed records back to the filesystem. Directories are
// created sequentially before any file work starts, which keeps
// ancestor-creation races out of the parallel stage entirely; file records
// are then decoded and written in parallel.
type Applier struct {
	// Key is the XOR transform key. Defaults to DefaultKey when empty.
	Key []byte

	// Workers bounds the parallel decode-and-write stage. Defaults to 4x
	// the CPU count.
	Workers int

	// Progress is incremented once per written file. Nil is a valid no-op.
	Progress *progress.Counter
}

func (a *Applier) key() []byte {
	if len(a.Key) == 0 {
		return DefaultKey
	}
	return a.Key
}

func (a *Applier) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return runtime.NumCPU() * 4
}

// Apply restores records beneath dest. Existing files at record paths are
// overwritten unconditionally; directory creation is idempotent. There is no
// rollback: a failure mid-apply leaves the files already written in place,
// though no new file tasks are scheduled after the first observed failure.
func (a *Applier) Apply(ctx context.Context, records []Record, dest string) error {
	logger := logging.GetLogger("archive.applier")

	for _, rec := range records {
		if rec.Kind != KindDir {
			continue
		}
		dir := filepath.Join(dest, filepath.FromSlash(rec.Path))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create directory %s", rec.Path)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())

	for _, rec := range records {
		if rec.Kind != KindFile {
			continue
		}
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.applyFile(logger, rec, dest)
		})
	}
	return g.Wait()
}

func (a *Applier) applyFile(logger zerolog.Logger, rec Record, dest string) error {
	if len(rec.Payload) != rec.DeclaredLen {
		// Advisory only: the declared length is diagnostic, the payload wins.
		logger.Warn().
			Str("path", rec.Path).
			Int("declared", rec.DeclaredLen).
			Int("actual", len(rec.Payload)).
			Msg("Declared size does not match encoded content")
	}

	data, err := base64.StdEncoding.DecodeString(rec.Payload)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchivePayload,
			"malformed payload for %s", rec.Path)
	}

	target := filepath.Join(dest, filepath.FromSlash(rec.Path))
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create parent directories for %s", rec.Path)
		}
	}

	if err := os.WriteFile(target, Transform(data, a.key()), 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write %s", rec.Path)
	}

	a.Progress.Add(1)
	return nil
}
