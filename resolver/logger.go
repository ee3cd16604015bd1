package resolver

import (
	"context"
	"log/slog"
)

// Logger receives the resolver's diagnostic events. Arguments are slog-style
// alternating keys and values:
//
//	log.Debug("resolved reference", "ref", "#/components/schemas/User", "depth", 2)
//
// Failures are returned as errors, never logged, so there is no Error level.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)

	// With returns a Logger that adds args to every event.
	With(args ...any) Logger
}

// NopLogger drops every event. It is the default.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)  {}
func (NopLogger) Info(string, ...any)   {}
func (NopLogger) Warn(string, ...any)   {}
func (n NopLogger) With(...any) Logger { return n }

// SlogAdapter sends resolver events to a *slog.Logger.
type SlogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a Logger backed by l, or by slog.Default() when l is
// nil.
func NewSlogAdapter(l *slog.Logger) *SlogAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &SlogAdapter{l: l}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.log(slog.LevelDebug, msg, args) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.log(slog.LevelInfo, msg, args) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.log(slog.LevelWarn, msg, args) }

func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{l: s.l.With(args...)}
}

// log skips disabled levels before the handler sees the arguments; debug
// events fire once per expanded $ref.
func (s *SlogAdapter) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, msg, args...)
}

var (
	_ Logger = NopLogger{}
	_ Logger = (*SlogAdapter)(nil)
)
