package archive

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/mrtigerst/tdm/pkg/walker"
	"golang.org/x/sync/errgroup"
)

// Encoder builds archive records from walk results. File payloads are read,
// transformed, and encoded in parallel; any unreadable file aborts the whole
// encode so no partial archive is ever produced.
type Encoder struct {
	// Key is the XOR transform key. Defaults to DefaultKey when empty.
	Key []byte

	// Workers bounds the parallel read stage. Defaults to 4x the CPU count.
	Workers int

	// Progress is incremented once per encoded file. Nil is a valid no-op.
	Progress *progress.Counter
}

func (e *Encoder) key() []byte {
	if len(e.Key) == 0 {
		return DefaultKey
	}
	return e.Key
}

func (e *Encoder) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.NumCPU() * 4
}

// Encode produces the full record set in memory: one directory record per
// empty directory, then one file record per selected file. Each file is
// read and encoded by exactly one worker.
func (e *Encoder) Encode(ctx context.Context, res *walker.Result) ([]Record, error) {
	logger := logging.GetLogger("archive.encoder")

	records := make([]Record, 0, len(res.EmptyDirs)+len(res.Files))
	for _, dir := range res.EmptyDirs {
		records = append(records, Record{Kind: KindDir, Path: dir.RelPath})
	}

	fileRecords := make([]Record, len(res.Files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	for i, file := range res.Files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file.AbsPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileRead,
					"failed to read %s", file.RelPath)
			}
			encoded := base64.StdEncoding.EncodeToString(Transform(data, e.key()))
			fileRecords[i] = Record{
				Kind:        KindFile,
				Path:        file.RelPath,
				Payload:     encoded,
				DeclaredLen: len(encoded),
			}
			e.Progress.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records = append(records, fileRecords...)
	logger.Debug().
		Int("files", len(res.Files)).
		Int("dirs", len(res.EmptyDirs)).
		Msg("Encoded records")
	return records, nil
}

// Write serializes records to w, directory records first. Each record is a
// self-delimited block closed by its kind's sentinel line.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)

	for _, rec := range records {
		if rec.Kind != KindDir {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s%s\n%s\n", dirHeader, rec.Path, dirSentinel); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to write archive")
		}
	}

	for _, rec := range records {
		if rec.Kind != KindFile {
			continue
		}
		_, err := fmt.Fprintf(bw, "%s%s\n%s%d\n%s\n%s\n",
			fileHeader, rec.Path, sizeHeader, len(rec.Payload), rec.Payload, fileSentinel)
		if err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to write archive")
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write archive")
	}
	return nil
}
