package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handler.
type palette struct {
	key, text, number, good, bad, time lipgloss.Style

	trace, debug, info, warn, error lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:    fg("8"),
		text:   fg("6"),
		number: fg("3"),
		good:   fg("2"),
		bad:    fg("1"),
		time:   fg("4"),
		trace:  fg("5"),
		debug:  fg("4"),
		info:   fg("2"),
		warn:   fg("3").Bold(true),
		error:  fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// field is one rendered key/value pair.
type field struct {
	key   string
	value string
	style lipgloss.Style
}

// prettyHandler writes colored records, either as a single line of key=value
// pairs or as an indented object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	json   bool
	groups []string
	fields []field // from WithAttrs
}

func newPrettyHandler(w io.Writer, json bool, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
		json: json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.fields)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.appendAttr(fields, nil, slog.Time(slog.TimeKey, r.Time))
	}

	if lvl := h.replace(nil, slog.Any(slog.LevelKey, r.Level)); lvl.Key != "" {
		fields = append(fields, field{
			key:   lvl.Key,
			value: lvl.Value.String(),
			style: h.pal.level(r.Level),
		})
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			fields = h.appendAttr(fields, nil, slog.String(slog.SourceKey, loc))
		}
	}

	fields = h.appendAttr(fields, nil, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.groups, a)

		return true
	})

	var buf bytes.Buffer
	if h.json {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = slices.Clip(h.fields)

	for _, a := range attrs {
		c.fields = h.appendAttr(c.fields, h.groups, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) replace(groups []string, a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(groups, a)
}

// appendAttr renders a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, groups []string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		a = h.replace(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return fields
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, groups, g)
		}

		return fields
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	value, style := h.render(a.Value)

	return append(fields, field{key: key, value: value, style: style})
}

func (h *prettyHandler) render(v slog.Value) (string, lipgloss.Style) {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return v.String(), h.pal.number

	case slog.KindBool:
		if v.Bool() {
			return "true", h.pal.good
		}

		return "false", h.pal.bad

	case slog.KindTime:
		return v.Time().Format(DefaultTimeLayout), h.pal.time

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error(), h.pal.bad
		}
	}

	return v.String(), h.pal.text
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(paint(h.pal.key, f.key))
		buf.WriteByte('=')
		buf.WriteString(paint(f.style, f.value))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		buf.WriteString("  ")
		buf.WriteString(paint(h.pal.key, f.key))
		buf.WriteString(": ")
		buf.WriteString(paint(f.style, f.value))

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

// paint renders s with style. Multi-line text is written as is, since
// lipgloss pads every line to a common width.
func paint(style lipgloss.Style, s string) string {
	if s == "" || strings.ContainsRune(s, '\n') {
		return s
	}

	return style.Render(s)
}
