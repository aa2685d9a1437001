package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Installed 42 mods (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// downloadProgress returns an install progress callback. Every percent
// step is logged at debug level; completion is logged at info level.
func downloadProgress(l *log.Logger) func(pack.File, float64) {
	return func(f pack.File, percent float64) {
		msg := progressMessage(f.Entry().Name, percent)
		if percent >= 100 {
			l.Info(msg)
			return
		}
		l.Debug(msg)
	}
}

// progressMessage formats a download progress line, e.g.
// "Downloading jei.jar. 42.5% Done".
func progressMessage(name string, percent float64) string {
	return "Downloading " + name + ". " + strconv.FormatFloat(percent, 'f', -1, 64) + "% Done"
}
