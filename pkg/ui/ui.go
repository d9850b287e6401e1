// Package ui renders progress and status messages on the terminal with
// pterm. Rendering degrades to plain counting when stdout is not a TTY,
// so scripted use never sees control sequences.
package ui

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/mrtigerst/tdm/pkg/progress"
	"github.com/pterm/pterm"
)

// NewProgressCounter returns a counter that drives a terminal progress bar.
// On a non-TTY, or when the bar fails to start, the counter still counts
// but renders nothing, which keeps it a valid progress hook either way.
func NewProgressCounter(title string, total int) *progress.Counter {
	if total <= 0 || !isatty.IsTerminal(os.Stdout.Fd()) {
		return progress.New(uint64(total), nil)
	}

	bar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle(title).Start()
	if err != nil {
		return progress.New(uint64(total), nil)
	}

	// pterm's printer is not safe for concurrent increments; the counter's
	// report callback runs on whichever worker finished, so serialize here.
	var mu sync.Mutex
	return progress.New(uint64(total), func(value, max uint64) {
		mu.Lock()
		defer mu.Unlock()
		bar.Increment()
		if value >= max {
			_, _ = bar.Stop()
		}
	})
}

// Success prints a styled success line.
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Info prints a styled informational line.
func Info(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// Warning prints a styled warning line.
func Warning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Error prints a styled error line.
func Error(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}
