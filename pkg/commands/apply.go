package commands

import (
	"context"
	"time"

	"github.com/mrtigerst/tdm/pkg/archive"
	"github.com/mrtigerst/tdm/pkg/logging"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/mrtigerst/tdm/pkg/store"
)

// ApplyOptions configures a template apply operation.
type ApplyOptions struct {
	// Name identifies the template within the store.
	Name string

	// Dest is the restore root; record paths are relative to it.
	Dest string

	// Key is the transform key; empty selects the default.
	Key []byte

	// Workers bounds the parallel write stage; zero selects the default.
	Workers int

	// NewProgress, when set, is called with the file count to obtain a
	// progress counter for the write stage.
	NewProgress func(total int) *progress.Counter
}

// ApplyResult summarizes a completed apply.
type ApplyResult struct {
	FileCount int
	DirCount  int

	// Warnings holds the recoverable format problems reported while
	// parsing the archive.
	Warnings []string
}

// Apply restores the named template beneath opts.Dest. A missing template
// surfaces as ErrTemplateNotFound so the caller can treat it as a reported
// no-op rather than a process failure.
func Apply(ctx context.Context, st *store.Store, opts ApplyOptions) (*ApplyResult, error) {
	logger := logging.GetLogger("commands.apply")
	defer logging.LogDuration(time.Now(), "apply")

	r, err := st.Reader(opts.Name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	dec := archive.NewDecoder()
	records, err := dec.Parse(r)
	if err != nil {
		return nil, err
	}

	var files, dirs int
	for _, rec := range records {
		if rec.Kind == archive.KindFile {
			files++
		} else {
			dirs++
		}
	}

	var counter *progress.Counter
	if opts.NewProgress != nil {
		counter = opts.NewProgress(files)
	}

	app := &archive.Applier{Key: opts.Key, Workers: opts.Workers, Progress: counter}
	if err := app.Apply(ctx, records, opts.Dest); err != nil {
		return nil, err
	}

	logger.Info().
		Str("template", opts.Name).
		Int("files", files).
		Int("dirs", dirs).
		Msg("Template applied")

	return &ApplyResult{FileCount: files, DirCount: dirs, Warnings: dec.Warnings()}, nil
}
