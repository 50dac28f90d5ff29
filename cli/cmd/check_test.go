package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"good.cfg": "a = 1\nb = 2\n",
		"bad.cfg":  "block s\nx 1\ny = $CONFIG{nope\n",
		"end.cfg":  "a = 1\nendblock\nb = 2\n",
	})

	good := filepath.Join(dir, "good.cfg")
	bad := filepath.Join(dir, "bad.cfg")
	missing := filepath.Join(dir, "missing.cfg")
	end := filepath.Join(dir, "end.cfg")

	t.Run("clean", func(t *testing.T) {
		ctx, buf := testContext(t)

		c := Check{Source: []string{good}}
		if err := c.Run(ctx); err != nil {
			t.Fatal(err)
		}

		if want := good + ": ok (2 entries)\n"; buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("defects", func(t *testing.T) {
		ctx, buf := testContext(t)

		c := Check{Source: []string{good, bad, missing}}
		if err := c.Run(ctx); !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("err = %v, want ErrCheckFailed", err)
		}

		out := buf.String()

		for _, want := range []string{
			good + ": ok",
			bad + ":2: syntax: ",
			"    x 1\n",
			bad + ":1: unclosed block: ",
			missing + ": error: ",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unmatched endblock located", func(t *testing.T) {
		ctx, buf := testContext(t)

		c := Check{Source: []string{end}}
		if err := c.Run(ctx); !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("err = %v, want ErrCheckFailed", err)
		}

		if want := end + ":2: error: "; !strings.HasPrefix(buf.String(), want) {
			t.Errorf("got %q, want prefix %q", buf.String(), want)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		ctx, buf := testContext(t)

		c := Check{Quiet: true, Source: []string{bad}}
		if err := c.Run(ctx); !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("err = %v", err)
		}

		if buf.Len() != 0 {
			t.Errorf("quiet output = %q", buf.String())
		}
	})
}
