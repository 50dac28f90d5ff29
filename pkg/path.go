package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	debugBin   = regexp.MustCompile(`^__debug_bin\d+$`)
	leadingDot = regexp.MustCompile(`^\.+`)
)

// Ident returns the identifier used for directory and variable names.
//
// It is the base name of the running executable without extension. Binaries
// built by the dlv debugger map to [Name] and leading dots are removed.
//
//nolint:gochecknoglobals
var Ident = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		return ident(exe)
	},
)

func ident(exe string) string {
	base := filepath.Base(exe)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if debugBin.MatchString(base) {
		return Name
	}

	if id := leadingDot.ReplaceAllString(base, ""); id != "" {
		return id
	}

	return Name
}

// InstallPrefix returns the installation prefix of the running executable,
// the parent of the directory containing it (e.g. /usr/local for
// /usr/local/bin/blockcfg).
//
//nolint:gochecknoglobals
var InstallPrefix = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			return ""
		}

		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}

		return filepath.Dir(filepath.Dir(exe))
	},
)

// ConfigDir returns the per-user configuration directory.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the per-user directory for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir joins [Ident] to the directory returned by base. If base fails, the
// hidden directory home under the user's home directory is used, then the
// working directory.
func userDir(base func() (string, error), home string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, home)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Ident())
}
