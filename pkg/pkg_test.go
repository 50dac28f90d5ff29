package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if strings.ContainsAny(Version, " \t\r\n") {
		t.Errorf("Version %q contains whitespace", Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestIdent(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/blockcfg":     "blockcfg",
		"/tmp/__debug_bin12345": Name,
		"/opt/.hidden":          "hidden",
		"C:/tools/app.exe":      "app",
		"/weird/...":            Name,
	}

	for exe, want := range tests {
		if got := ident(exe); got != want {
			t.Errorf("ident(%q) = %q, want %q", exe, got, want)
		}
	}
}

func TestUserDir(t *testing.T) {
	fail := func() (string, error) { return "", errors.New("unset") }
	ok := func() (string, error) { return "/base", nil }

	if got, want := userDir(ok, ".x"), filepath.Join("/base", Ident()); got != want {
		t.Errorf("userDir = %q, want %q", got, want)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got, want := userDir(fail, ".cache"), filepath.Join(home, ".cache", Ident()); got != want {
		t.Errorf("fallback userDir = %q, want %q", got, want)
	}
}
