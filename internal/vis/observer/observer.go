// Package observer collects planner log records for display.
package observer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event is one recorded planner log record.
type Event struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string // key=value pairs in record order
}

func (e Event) String() string {
	if e.Attrs == "" {
		return e.Message
	}
	return e.Message + " " + e.Attrs
}

// Log keeps the most recent events of a planner run. It is a slog.Handler,
// so a planner logs into it like into any other logger.
type Log struct {
	mu     *sync.Mutex
	events *[]Event
	limit  int
	level  slog.Level
	prefix string // attrs bound by WithAttrs
	group  string
}

// NewLog keeps up to limit events at or above level.
func NewLog(limit int, level slog.Level) *Log {
	return &Log{mu: new(sync.Mutex), events: new([]Event), limit: limit, level: level}
}

// Logger returns a slog.Logger writing into l.
func (l *Log) Logger() *slog.Logger { return slog.New(l) }

// Enabled implements slog.Handler.
func (l *Log) Enabled(_ context.Context, level slog.Level) bool { return level >= l.level }

// Handle implements slog.Handler.
func (l *Log) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(l.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, l.group, a)
		return true
	})
	ev := Event{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: strings.TrimSpace(b.String())}

	l.mu.Lock()
	defer l.mu.Unlock()
	*l.events = append(*l.events, ev)
	if over := len(*l.events) - l.limit; l.limit > 0 && over > 0 {
		*l.events = append((*l.events)[:0], (*l.events)[over:]...)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (l *Log) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(l.prefix)
	for _, a := range attrs {
		writeAttr(&b, l.group, a)
	}
	c := *l
	c.prefix = b.String()
	return &c
}

// WithGroup implements slog.Handler.
func (l *Log) WithGroup(name string) slog.Handler {
	if name == "" {
		return l
	}
	c := *l
	if c.group != "" {
		c.group += "."
	}
	c.group += name
	return &c
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Resolve())
}

// Events returns a copy of the kept events, oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), *l.events...)
}

// Clear drops all events.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.events = (*l.events)[:0]
}
