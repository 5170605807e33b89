package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log record.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer keeps the most recent log entries in a ring. It is safe for
// concurrent use, since the emulator and the signal goroutine both log.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	count   int
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, size)}
}

func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.next] = entry
	lb.next = (lb.next + 1) % len(lb.entries)
	if lb.count < len(lb.entries) {
		lb.count++
	}
}

// Recent returns up to max entries, newest first. max <= 0 returns all.
func (lb *LogBuffer) Recent(max int) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	n := lb.count
	if max > 0 && max < n {
		n = max
	}
	out := make([]LogEntry, n)
	size := len(lb.entries)
	for i := range out {
		out[i] = lb.entries[(lb.next-1-i+size)%size]
	}
	return out
}

// LogHandler is a slog.Handler that records into a LogBuffer. Its level
// can be changed while running.
type LogHandler struct {
	buffer *LogBuffer
	level  *slog.LevelVar
	attrs  string
}

func NewLogHandler(buffer *LogBuffer, level *slog.LevelVar) *LogHandler {
	return &LogHandler{buffer: buffer, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: sb.String(),
	})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	return &LogHandler{buffer: h.buffer, level: h.level, attrs: sb.String()}
}

// WithGroup is not supported; grouped attributes are flattened.
func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}

// FormatLogEntry renders an entry as a single panel line.
func FormatLogEntry(entry LogEntry) string {
	var level string
	switch {
	case entry.Level >= slog.LevelError:
		level = "ERR"
	case entry.Level >= slog.LevelWarn:
		level = "WRN"
	case entry.Level >= slog.LevelInfo:
		level = "INF"
	default:
		level = "DBG"
	}
	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
