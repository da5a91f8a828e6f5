package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const (
	progressDescription = "Packing files"
	progressWidth       = 40
	progressThrottle    = 65 * time.Millisecond
	progressItsString   = "files/s"
)

// progressReporter renders per-file pipeline progress as a bar on writer.
type progressReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

func newProgressReporter(writer io.Writer) *progressReporter {
	return &progressReporter{writer: writer}
}

func (reporter *progressReporter) Start(total int) {
	reporter.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(reporter.writer),
		progressbar.OptionSetDescription(progressDescription),
		progressbar.OptionSetWidth(progressWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(progressItsString),
		progressbar.OptionThrottle(progressThrottle),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(reporter.writer)
		}),
	)
}

// Advance is safe for concurrent use; the bar serializes updates internally.
func (reporter *progressReporter) Advance(string) {
	if reporter.bar != nil {
		_ = reporter.bar.Add(1)
	}
}

func (reporter *progressReporter) Finish() {
	if reporter.bar != nil {
		_ = reporter.bar.Finish()
	}
}
