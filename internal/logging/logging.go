// Package logging builds the structured logger shared by the CLI, the MCP
// server and the render engine, and carries it through context.Context.
//
// Output always goes to stderr in the server: stdout belongs to the MCP
// protocol stream.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "IMAGE_OVERLAY_LOG_LEVEL"

// New creates a logger writing to w at level, with "HH:MM:SS.ms" timestamps.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel converts a level name to a log.Level. Unknown or empty names
// yield log.InfoLevel.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(strings.TrimSpace(name))
	if err != nil || name == "" {
		return log.InfoLevel
	}
	return lvl
}

// Level resolves the effective level: the EnvLevel variable when set,
// otherwise configured.
func Level(configured string) log.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		return ParseLevel(env)
	}
	return ParseLevel(configured)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
			return l
		}
	}
	return log.Default()
}
