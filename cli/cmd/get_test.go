package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestGet(t *testing.T) {
	dir := writeSources(t, map[string]string{"app.cfg": dumpSource})
	src := filepath.Join(dir, "app.cfg")

	tests := []struct {
		name    string
		cmd     Get
		want    string
		wantErr string
	}{
		{name: "value", cmd: Get{Key: "server:port"}, want: "8080\n"},
		{name: "expanded", cmd: Get{Key: "data"}, want: "/srv/data\n"},
		{name: "default", cmd: Get{Key: "server:tls", Default: ptr("off")}, want: "off\n"},
		{name: "empty default", cmd: Get{Key: "server:tls", Default: ptr("")}, want: "\n"},
		{name: "default unused", cmd: Get{Key: "server:port", Default: ptr("")}, want: "8080\n"},
		{name: "suggest", cmd: Get{Key: "port"}, wantErr: "did you mean server:port?"},
		{name: "no suggestion", cmd: Get{Key: "zzz"}, wantErr: `unknown key: "zzz"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := testContext(t)

			tt.cmd.Source = src
			err := tt.cmd.Run(ctx)

			if tt.wantErr != "" {
				if !errors.Is(err, ErrUnknownKey) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("err = %v, want %q", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestGet_DefaultFlag(t *testing.T) {
	dir := writeSources(t, map[string]string{"app.cfg": dumpSource})
	src := filepath.Join(dir, "app.cfg")

	tests := []struct {
		name string
		args []string
		want *string
	}{
		{"unset", []string{src, "k"}, nil},
		{"empty", []string{"--default=", src, "k"}, ptr("")},
		{"value", []string{"--default", "x", src, "k"}, ptr("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Get

			parser, err := kong.New(&g)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := parser.Parse(tt.args); err != nil {
				t.Fatal(err)
			}

			switch {
			case tt.want == nil && g.Default != nil:
				t.Errorf("Default = %q, want unset", *g.Default)
			case tt.want != nil && (g.Default == nil || *g.Default != *tt.want):
				t.Errorf("Default = %v, want %q", g.Default, *tt.want)
			}
		})
	}
}
