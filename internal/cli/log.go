// Package cli implements the modelgraph command-line interface.
//
// Commands work on projects kept in the configured store (a directory of
// TOML files or a MongoDB collection) through a workspace.Runner. Derived
// results such as summaries and exports are cached in a file or Redis
// cache. Files outside the store can be checked with validate and fmt.
//
// # Commands
//
//   - new, list, inspect, import: manage stored projects
//   - validate, fmt: check or canonicalize project files
//   - closure, delete, duplicate: edit the model and view graphs
//   - export: write a diagram as DOT, SVG, PlantUML or N-Quads
//   - serve: expose the same operations over HTTP
//   - cache: clear or locate the cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so library code logs with the same settings.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, as the "took" field:
//
//	14:32:01.45 INFO Deleted 7 elements from shop took=12ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
