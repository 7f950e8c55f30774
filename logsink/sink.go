// Package logsink defines the logging sink contract the injector core
// consults before formatting any diagnostic (§6 "Logging sink
// contract"): Enabled must be checked first so a disabled level never
// pays for message construction.
package logsink

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
)

// Level mirrors slog.Level's ordering without forcing callers to import
// log/slog just to pick a level.
type Level int

const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// Sink is the collaborator the injector core logs through. Enabled must
// be cheap and side-effect free; Log is only ever called after Enabled
// returned true for the same level.
type Sink interface {
	Enabled(level Level) bool
	Log(level Level, msg string, args ...any)
}

// slogSink adapts a *slog.Logger to Sink.
type slogSink struct {
	logger *slog.Logger
}

// NewSlog wraps an existing *slog.Logger as a Sink.
func NewSlog(logger *slog.Logger) Sink {
	return &slogSink{logger: logger}
}

func (s *slogSink) Enabled(level Level) bool {
	return s.logger.Enabled(context.Background(), slog.Level(level))
}

func (s *slogSink) Log(level Level, msg string, args ...any) {
	s.logger.Log(context.Background(), slog.Level(level), msg, args...)
}

var (
	defaultOnce sync.Once
	defaultSink Sink
)

// Default returns the package-wide default Sink: a tint-coloured
// slog.Logger writing to stderr at info level, matching the
// human-readable diagnostic style the rest of the ecosystem uses.
func Default() Sink {
	defaultOnce.Do(func() {
		handler := tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})
		defaultSink = NewSlog(slog.New(handler))
	})
	return defaultSink
}

// Discard is a Sink that never logs, for tests and silent embeddings.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Enabled(Level) bool        { return false }
func (discardSink) Log(Level, string, ...any) {}
