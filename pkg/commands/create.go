// Package commands implements the operations behind the CLI: each function
// wires the walker, archive pipeline, and template store together for one
// user-visible action.
package commands

import (
	"context"
	"io"
	"time"

	"github.com/mrtigerst/tdm/pkg/archive"
	"github.com/mrtigerst/tdm/pkg/ignore"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/mrtigerst/tdm/pkg/store"
	"github.com/mrtigerst/tdm/pkg/walker"
)

// CreateOptions configures a template create operation.
type CreateOptions struct {
	// Name identifies the template within the store.
	Name string

	// Root is the directory to snapshot.
	Root string

	// IncludeHidden keeps entries beneath dot-directories.
	IncludeHidden bool

	// ExcludeIgnoreFile drops the .tdmignore file itself from the archive.
	ExcludeIgnoreFile bool

	// Key is the transform key; empty selects the default.
	Key []byte

	// Workers bounds the parallel encode stage; zero selects the default.
	Workers int

	// NewProgress, when set, is called with the file count to obtain a
	// progress counter for the encode stage.
	NewProgress func(total int) *progress.Counter
}

// CreateResult summarizes a completed create.
type CreateResult struct {
	FileCount int
	DirCount  int
	Path      string
}

// Create snapshots opts.Root into the store under opts.Name. Ignore rules
// are compiled before any traversal; an unreadable file aborts the whole
// operation, and the archive only appears in the store once fully written.
func Create(ctx context.Context, st *store.Store, opts CreateOptions) (*CreateResult, error) {
	logger := logging.GetLogger("commands.create")
	defer logging.LogDuration(time.Now(), "create")

	rules, err := ignore.Load(opts.Root)
	if err != nil {
		return nil, err
	}

	res, err := walker.Walk(opts.Root, walker.Options{
		IncludeHidden:     opts.IncludeHidden,
		ExcludeIgnoreFile: opts.ExcludeIgnoreFile,
		Rules:             rules,
	})
	if err != nil {
		return nil, err
	}

	var counter *progress.Counter
	if opts.NewProgress != nil {
		counter = opts.NewProgress(len(res.Files))
	}

	enc := &archive.Encoder{Key: opts.Key, Workers: opts.Workers, Progress: counter}
	records, err := enc.Encode(ctx, res)
	if err != nil {
		return nil, err
	}

	if err := st.Write(opts.Name, func(w io.Writer) error {
		return archive.Write(w, records)
	}); err != nil {
		return nil, err
	}

	logger.Info().
		Str("template", opts.Name).
		Int("files", len(res.Files)).
		Int("emptyDirs", len(res.EmptyDirs)).
		Msg("Template created")

	return &CreateResult{
		FileCount: len(res.Files),
		DirCount:  len(res.EmptyDirs),
		Path:      st.Path(opts.Name),
	}, nil
}
