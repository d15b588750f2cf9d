package storetest

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is one captured log record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogSink is a slog.Handler that keeps every record.
type LogSink struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewLogSink returns an empty sink.
func NewLogSink() *LogSink {
	return &LogSink{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (s *LogSink) Enabled(context.Context, slog.Level) bool { return true }

func (s *LogSink) Handle(_ context.Context, r slog.Record) error {
	e := LogEntry{Level: r.Level, Message: r.Message, Attrs: map[string]any{}}
	for _, a := range s.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs[a.Key] = a.Value.Any()
		return true
	})
	s.mu.Lock()
	*s.entries = append(*s.entries, e)
	s.mu.Unlock()
	return nil
}

func (s *LogSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, s.attrs...), attrs...)
	return &LogSink{mu: s.mu, entries: s.entries, attrs: merged}
}

func (s *LogSink) WithGroup(string) slog.Handler { return s }

// Entries returns a copy of all captured records.
func (s *LogSink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, len(*s.entries))
	copy(out, *s.entries)
	return out
}

// AtLevel returns the captured records with exactly level.
func (s *LogSink) AtLevel(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range s.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
