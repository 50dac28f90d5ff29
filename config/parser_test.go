package config

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/blockcfg/log"
)

// writeFiles creates each file under dir and returns dir.
func writeFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func parseString(t *testing.T, input string, opts ...Option) (*Parser, error) {
	t.Helper()

	dir := writeFiles(t, t.TempDir(), map[string]string{"main.cfg": input})
	p := NewParser(opts...)

	return p, p.ParseFile(context.Background(), filepath.Join(dir, "main.cfg"))
}

func TestParser_Values(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "top level",
			input: "a = 1\nb = two words\nc = x = y\n",
			want:  map[string]string{"a": "1", "b": "two words", "c": "x = y"},
		},
		{
			name:  "empty value",
			input: "key =\n",
			want:  map[string]string{"key": ""},
		},
		{
			name:  "nested blocks",
			input: "block A\n  block B\n    key = v\n  endblock\nendblock\n",
			want:  map[string]string{"A:B:key": "v"},
		},
		{
			name: "sibling blocks",
			input: `
block A
  block B
    x = 1
  endblock
  block C
    y = 2
  endblock
  z = 3
endblock
w = 4
`,
			want: map[string]string{"A:B:x": "1", "A:C:y": "2", "A:z": "3", "w": "4"},
		},
		{
			name:  "last write wins",
			input: "k = 1\nk = 2\n",
			want:  map[string]string{"k": "2"},
		},
		{
			name:  "comments",
			input: "# header\n\n   \nkey = value # trailing comment\n  # indented\n",
			want:  map[string]string{"key": "value"},
		},
		{
			name:  "local macros",
			input: "x := 5\na = $LOCAL{x}\nx := 6\nb = $LOCAL{x}\n",
			want:  map[string]string{"a": "5", "b": "6"},
		},
		{
			name:  "macros ignore blocks",
			input: "block s\n  x := in\nendblock\nv = $LOCAL{x}\n",
			want:  map[string]string{"v": "in"},
		},
		{
			name:  "config reference",
			input: "block db\n  host = h\nendblock\nurl = tcp://$CONFIG{db:host}\n",
			want:  map[string]string{"db:host": "h", "url": "tcp://h"},
		},
		{
			name:  "environment",
			input: "home = $ENV{HOME}\nmissing = $ENV{NOPE}\n",
			want:  map[string]string{"home": "/home/test", "missing": "$ENV{NOPE}"},
		},
	}

	env := WithEnv(mapEnv(map[string]string{"HOME": "/home/test"}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parseString(t, tt.input, env)
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}

			if got := p.Block().Map(); !maps.Equal(got, tt.want) {
				t.Errorf("entries = %v, want %v", got, tt.want)
			}

			if n := len(p.Diagnostics()); n != 0 {
				t.Errorf("%d diagnostics: %v", n, p.Diagnostics())
			}
		})
	}
}

func TestParser_Include(t *testing.T) {
	dir := writeFiles(t, t.TempDir(), map[string]string{
		"a/b/c.cfg": "before = 1\ninclude relative/path.cfg\nblock s\ninclude " +
			"../shared.cfg\nendblock\nafter = 2\nbad line here\n",
		"a/b/relative/path.cfg": "inner = yes\n",
		"a/shared.cfg":          "common = true\n",
	})

	abs := filepath.Join(dir, "abs.cfg")
	writeFiles(t, dir, map[string]string{
		"abs.cfg":  "absolute = 1\n",
		"main.cfg": "include " + abs + "\n",
	})

	p := NewParser()
	err := p.ParseFile(context.Background(), filepath.Join(dir, "a/b/c.cfg"))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}

	want := map[string]string{
		"before":   "1",
		"inner":    "yes",
		"s:common": "true",
		"after":    "2",
	}
	if got := p.Block().Map(); !maps.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	// line numbers of the parent resume after each include
	if len(perr.Diagnostics) != 1 || perr.Diagnostics[0].Line != 7 {
		t.Fatalf("diagnostics = %v, want one on line 7", perr.Diagnostics)
	}

	if !strings.HasSuffix(perr.Diagnostics[0].File, filepath.Join("a", "b", "c.cfg")) {
		t.Errorf("diagnostic file = %q", perr.Diagnostics[0].File)
	}

	if n := len(p.Files()); n != 3 {
		t.Errorf("Files() = %v", p.Files())
	}

	p = NewParser()
	if err := p.ParseFile(context.Background(), filepath.Join(dir, "main.cfg")); err != nil {
		t.Fatalf("absolute include: %v", err)
	}

	if v, _ := p.Block().Get("absolute"); v != "1" {
		t.Errorf("absolute = %q", v)
	}
}

func TestParser_IncludeMissing(t *testing.T) {
	p, err := parseString(t, "a = 1\ninclude nowhere.cfg\nb = 2\n")

	if !errors.Is(err, ErrSourceNotFound) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}

	if p.Block().Has("b") {
		t.Error("parsing continued after missing include")
	}
}

func TestParser_MissingFile(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "none.cfg"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestParser_IncludeCycle(t *testing.T) {
	dir := writeFiles(t, t.TempDir(), map[string]string{
		"a.cfg": "a = 1\ninclude b.cfg\n",
		"b.cfg": "b = 1\ninclude ./a.cfg\nc = 1\n",
	})

	p := NewParser()
	err := p.ParseFile(context.Background(), filepath.Join(dir, "a.cfg"))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}

	if perr.Diagnostics.Count(DiagIncludeCycle) != 1 {
		t.Errorf("diagnostics = %v", perr.Diagnostics)
	}

	if !p.Block().Has("c") {
		t.Error("parsing stopped at the cycle")
	}
}

func TestParser_UnclosedBlock(t *testing.T) {
	p, err := parseString(t, "a = 1\nblock X\n  b = 2\n")

	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("err = %v, want ErrParseFailed", err)
	}

	var d Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("no diagnostic in %v", err)
	}

	if d.Kind != DiagUnclosedBlock || d.Line != 2 || !strings.HasSuffix(d.File, "main.cfg") {
		t.Errorf("diagnostic = %+v", d)
	}

	if !strings.Contains(err.Error(), "unclosed block X") {
		t.Errorf("message %q does not name the block", err.Error())
	}

	if v, _ := p.Block().Get("X:b"); v != "2" {
		t.Errorf("X:b = %q", v)
	}
}

func TestParser_UnmatchedEndBlock(t *testing.T) {
	p, err := parseString(t, "a = 1\nendblock\nbad syntax line\nb = 2\n")

	if !errors.Is(err, ErrUnmatchedEndBlock) {
		t.Fatalf("err = %v, want ErrUnmatchedEndBlock", err)
	}

	var perr *ParseError
	if errors.As(err, &perr) {
		t.Error("unmatched endblock reported as latched error")
	}

	if p.Block().Has("b") {
		t.Error("parsing continued after unmatched endblock")
	}
}

func TestParser_SyntaxErrors(t *testing.T) {
	input := strings.Join([]string{
		"foo bar = 1", // 1: two names
		"ok1 = 1",
		"lonely",       // 3: no operator
		"block",        // 4: no name
		"block = 3",    // 5: operator instead of name
		"= 5",          // 6: no name
		"include",      // 7: no path
		"ok2 = 2",
		"relativepath", // 9: no name
	}, "\n")

	p, err := parseString(t, input)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}

	var lines []int
	for _, d := range perr.Diagnostics {
		if d.Kind != DiagSyntax {
			t.Errorf("unexpected kind %v", d.Kind)
		}

		lines = append(lines, d.Line)
	}

	want := []int{1, 3, 4, 5, 6, 7, 9}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}

	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines = %v, want %v", lines, want)

			break
		}
	}

	if perr.Diagnostics[0].Text != "foo bar = 1" {
		t.Errorf("text = %q", perr.Diagnostics[0].Text)
	}

	got := p.Block().Map()
	if !maps.Equal(got, map[string]string{"ok1": "1", "ok2": "2"}) {
		t.Errorf("entries = %v", got)
	}
}

func TestParser_RelativePath(t *testing.T) {
	dir := writeFiles(t, t.TempDir(), map[string]string{
		"x/y/cfg.txt": "relativepath img = photo.png\n" +
			"relativepath abs = /etc/passwd\n" +
			"relativepath up = ../z\n" +
			"plain = photo.png\n",
	})

	b, err := ReadFile(context.Background(), filepath.Join(dir, "x/y/cfg.txt"))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"img":   filepath.Join(dir, "x", "y", "photo.png"),
		"abs":   "/etc/passwd",
		"up":    filepath.Join(dir, "x", "z"),
		"plain": "photo.png",
	}
	if got := b.Map(); !maps.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestParser_ReadOnlyStore(t *testing.T) {
	store := NewBlock("")
	_ = store.Set("locked", "orig")
	store.MarkReadOnly("locked")

	_, err := parseString(t, "locked = new\nfree = ok\n", WithStore(store))

	var d Diagnostic
	if !errors.As(err, &d) || d.Kind != DiagStore || !errors.Is(err, ErrReadOnly) {
		t.Fatalf("err = %v, want store diagnostic", err)
	}

	if v, _ := store.Get("locked"); v != "orig" {
		t.Errorf("locked = %q", v)
	}

	if v, _ := store.Get("free"); v != "ok" {
		t.Errorf("free = %q", v)
	}
}

func TestParser_ExpansionFailure(t *testing.T) {
	failing := ProviderFunc{Name: "VAULT", Func: func(context.Context, string) (string, error) {
		return "", errors.New("sealed")
	}}

	p, err := parseString(t, "secret = $VAULT{key}\nother = 1\n", WithProviders(failing))

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Diagnostics.Count(DiagExpansion) != 1 {
		t.Fatalf("err = %v, want one expansion diagnostic", err)
	}

	if p.Block().Has("secret") || !p.Block().Has("other") {
		t.Errorf("entries = %v", p.Block().Map())
	}
}

func TestParser_Separator(t *testing.T) {
	p, err := parseString(t, "block a\nk = v\nendblock\n", WithSeparator("."))
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := p.Block().Get("a.k"); v != "v" {
		t.Errorf("entries = %v", p.Block().Map())
	}
}

func TestParser_FreshSession(t *testing.T) {
	p := NewParser()

	err := p.Parse(context.Background(), "one.cfg", strings.NewReader("x := 1\nblock b\nbroken\n"))
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("first parse err = %v", err)
	}

	err = p.Parse(context.Background(), "two.cfg", strings.NewReader("v = $LOCAL{x}\n"))
	if err != nil {
		t.Fatalf("second parse err = %v", err)
	}

	if v, _ := p.Block().Get("v"); v != "$LOCAL{x}" {
		t.Errorf("symbols leaked between sessions: v = %q", v)
	}

	if len(p.Diagnostics()) != 0 || p.Symbols().Len() != 0 {
		t.Errorf("state leaked: %v", p.Diagnostics())
	}
}

func TestParser_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := writeFiles(t, t.TempDir(), map[string]string{"a.cfg": "a = 1\n"})

	_, err := ReadFile(ctx, filepath.Join(dir, "a.cfg"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParser_Logs(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelDebug), log.WithPretty(false))

	_, _ = parseString(t, "block s\nk = v\nendblock\noops\n", WithLogger(logger))

	out := buf.String()
	for _, want := range []string{"opened block", "added entry", "closed block", "invalid syntax"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
