// Package cli implements the mandelview command-line interface.
//
// The CLI renders single frames, runs the interactive terminal explorer,
// serves frames over HTTP and manages palettes, bookmarks, the frame cache
// and the config file. It is built using cobra and logs with
// charmbracelet/log.
//
// # Commands
//
//   - render: Paint one frame to a PNG or JPEG file
//   - explore: Zoom and pan around the set in the terminal
//   - serve: Serve frames, palettes and bookmarks over HTTP
//   - palette: List, preview and export palettes
//   - bookmark: Save and recall views
//   - cache: Manage the frame cache
//   - config: Write or print the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long operations can report progress.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelview/pkg/render"
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
	step   int // last tenth reported by rows
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Rendered 700x700 frame (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// rows returns a render.ProgressFunc that logs at debug level each time
// another tenth of the rows is painted. Paint serialises the calls.
func (p *progress) rows() render.ProgressFunc {
	return func(done, total int) {
		step := done * 10 / max(total, 1)
		if step == p.step {
			return
		}
		p.step = step
		p.logger.Debug("painting", "rows", done, "of", total, "elapsed", time.Since(p.start).Round(time.Millisecond))
	}
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
