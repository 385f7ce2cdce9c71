package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// consoleOutput is shared by a handler and every handler derived from it so
// concurrent records never interleave.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler renders one header line per record followed by indented
// "- key: value" lines:
//
//	2026-03-01 10:00:00 INFO [fetch] p1a2b3c4d5e6 – archive downloaded
//	    - archive: p1a2b3c4d5e6.zip
type consoleHandler struct {
	out       *consoleOutput
	level     slog.Leveler
	addSource bool
	prefix    string
	fields    []field
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &consoleOutput{w: w}, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, attr := range attrs {
		next.fields = appendField(next.fields, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.prefix, attr)
		return true
	})

	var component, session string
	body := make([]field, 0, len(fields))
	for _, f := range mergeFields(fields) {
		switch f.key {
		case FieldComponent:
			component = attrString(f.value)
		case FieldSessionID:
			session = attrString(f.value)
		case FieldRunID:
			// Shown only at debug level; JSON output always carries it.
			if record.Level < slog.LevelInfo {
				body = append(body, f)
			}
		default:
			body = append(body, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(formatTimestamp(ts))
	b.WriteString(" " + levelLabel(record.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	if session != "" {
		b.WriteString(" " + session)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(" – " + msg)
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
	for _, f := range body {
		fmt.Fprintf(&b, "    - %s: %s\n", f.key, formatValue(f.value))
	}

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, b.String())
	return err
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() != slog.KindGroup {
		return append(dst, field{key: prefix + attr.Key, value: attr.Value})
	}
	if attr.Key != "" {
		prefix += attr.Key + "."
	}
	for _, member := range attr.Value.Group() {
		dst = appendField(dst, prefix, member)
	}
	return dst
}

// mergeFields keeps the first position of each key with its last value, so
// a stage re-attached by a nested context replaces the outer one in place.
func mergeFields(fields []field) []field {
	index := make(map[string]int, len(fields))
	merged := fields[:0:0]
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			merged[i].value = f.value
			continue
		}
		index[f.key] = len(merged)
		merged = append(merged, f)
	}
	return merged
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
