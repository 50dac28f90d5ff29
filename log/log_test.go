package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var l Logger

	l.Info("ignored", slog.String("key", "value"))
	l.ErrorContext(context.Background(), "ignored")

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", l.Level(), DefaultLevel)
	}

	if l.Writes(context.Background(), LevelError) {
		t.Error("zero Logger reports writing records")
	}

	if got := l.With(slog.Int("n", 1)); got.Logger != nil {
		t.Error("With on zero Logger returned a live logger")
	}
}

func TestLogger_Level_Filters(t *testing.T) {
	tests := []struct {
		level Level
		want  []string
		skip  []string
	}{
		{LevelTrace, []string{"t-msg", "d-msg", "i-msg", "e-msg"}, nil},
		{LevelDebug, []string{"d-msg", "i-msg", "e-msg"}, []string{"t-msg"}},
		{LevelWarn, []string{"e-msg"}, []string{"t-msg", "d-msg", "i-msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithLevel(tt.level), WithPretty(false))
			l.Trace("t-msg")
			l.Debug("d-msg")
			l.Info("i-msg")
			l.Error("e-msg")

			out := buf.String()

			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}

			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestLogger_JSON_LevelNames(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf,
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)
	l.Trace("deep", slog.String("key", "value"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["key"] != "value" {
		t.Errorf("key = %v, want value", rec["key"])
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		check  func(string) bool
	}{
		{"none", func(s string) bool { return !strings.Contains(s, "time=") }},
		{"", func(s string) bool { return !strings.Contains(s, "time=") }},
		{"kitchen", func(s string) bool { return strings.Contains(s, "M ") }},
		{"2006", func(s string) bool {
			return strings.Contains(s, "time="+time.Now().Format("2006"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithTimeLayout(tt.layout), WithPretty(false))
			l.Info("hello")

			if !tt.check(buf.String()) {
				t.Errorf("unexpected output for layout %q: %s", tt.layout, buf.String())
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithCaller(true), WithPretty(false))
	l.Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("source not reported: %s", buf.String())
	}
}

func TestLogger_WrapKeepsAttrs(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false)).With(slog.String("file", "a.cfg"))
	l = l.Wrap(WithLevel(LevelDebug))
	l.Debug("parsed")

	out := buf.String()
	if !strings.Contains(out, "file=a.cfg") {
		t.Errorf("attribute lost after Wrap: %s", out)
	}

	if l.Level() != LevelDebug {
		t.Errorf("Level() = %v, want debug", l.Level())
	}
}

func TestPretty_Text(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"), WithFormat(FormatText))
	l.With(slog.String("file", "a.cfg")).Warn("bad line",
		slog.Int("line", 3),
		slog.Bool("fatal", false),
		slog.Group("diag", slog.String("kind", "syntax")),
		slog.Any("err", errors.New("boom")),
	)

	// buffers have no color profile, so output is plain
	want := "level=WARN msg=bad line file=a.cfg line=3 fatal=false diag.kind=syntax err=boom\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"), WithFormat(FormatJSON))
	l.Info("done", slog.Int("count", 2))

	want := "{\n  level: INFO,\n  msg: done,\n  count: 2\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for name := range Formats() {
		if got := ParseFormat(strings.ToUpper(name)).String(); got != name {
			t.Errorf("ParseFormat(%q) = %q", name, got)
		}
	}

	if got := ParseFormat("xml"); got != DefaultFormat {
		t.Errorf("ParseFormat(xml) = %v, want default", got)
	}
}

func TestLevels_RoundTrip(t *testing.T) {
	n := 0

	for name := range Levels() {
		n++

		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}

	if n != 5 {
		t.Errorf("Levels() yielded %d names, want 5", n)
	}
}

func TestDefault_Config(t *testing.T) {
	saved := Default()
	defer SetDefault(saved)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false), WithFormat(FormatJSON)))
	Config(WithLevel(LevelDebug))

	Debug("via package", slog.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, `"msg":"via package"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected output: %s", out)
	}
}
