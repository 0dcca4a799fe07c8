package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Handler is a slog.Handler writing compact or JSON lines.
// Attributes keep their insertion order; group names prefix keys with dots.
type Handler struct {
	format Format
	level  slog.Leveler
	colors bool

	mu  *sync.Mutex
	out io.Writer

	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	// Level is the minimum level to output (defaults to info).
	Level slog.Leveler
	// Output is where records are written (defaults to os.Stderr).
	Output io.Writer
	// Colors enables ANSI level colors in the compact format.
	Colors bool
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
		out:    opts.Output,
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.out == nil {
		h.out = os.Stderr
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := h.collect(r)

	var buf bytes.Buffer
	var err error
	if h.format == FormatJSON {
		err = h.writeJSON(&buf, r, fields)
	} else {
		err = h.writeCompact(&buf, r, fields)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix(a.Key)
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) prefix(key string) string {
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return key
}

type field struct {
	key   string
	value any
}

func (h *Handler) collect(r slog.Record) []field {
	fields := make([]field, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = appendAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix(""), a)
		return true
	})
	return fields
}

func appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, member := range a.Value.Group() {
			fields = appendAttr(fields, groupPrefix, member)
		}
		return fields
	}

	value := a.Value.Any()
	if err, ok := value.(error); ok {
		value = err.Error()
	}
	return append(fields, field{key: prefix + a.Key, value: value})
}

// writeCompact renders "2006-01-02 15:04:05 LEVEL Message → {"key":"value"}".
func (h *Handler) writeCompact(buf *bytes.Buffer, r slog.Record, fields []field) error {
	buf.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')

	level := fmt.Sprintf("%5s", levelString(r.Level))
	if h.colors {
		buf.WriteString(colorForLevel(r.Level))
		buf.WriteString(level)
		buf.WriteString(colorReset)
	} else {
		buf.WriteString(level)
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if len(fields) > 0 {
		buf.WriteString(" → ")
		if err := writeObject(buf, fields); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	return nil
}

func (h *Handler) writeJSON(buf *bytes.Buffer, r slog.Record, fields []field) error {
	head := []field{
		{key: slog.TimeKey, value: r.Time.Format("2006-01-02T15:04:05")},
		{key: slog.LevelKey, value: levelString(r.Level)},
		{key: slog.MessageKey, value: r.Message},
	}
	if err := writeObject(buf, append(head, fields...)); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return nil
}

// writeObject encodes fields as a JSON object preserving their order.
func writeObject(buf *bytes.Buffer, fields []field) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(f.value)
		if err != nil {
			value, _ = json.Marshal(fmt.Sprint(f.value))
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}
