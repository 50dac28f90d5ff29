package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/ardnew/mung"
)

// Search describes where [ReadSearchPath] looks for configuration files.
type Search struct {
	App     string // application name, used for directory and variable names
	Version string // optional version subdirectory
	Prefix  string // installation prefix, such as /usr/local
	Merge   bool   // read every match instead of only the first

	// ConfigDir overrides the per-user configuration directory
	// (default [os.UserConfigDir]).
	ConfigDir string

	// Env looks up <APP>_CONFIG_PATH (default [os.LookupEnv]).
	Env LookupEnvFunc
}

// PathVar returns the name of the environment variable listing extra search
// directories: the upper-cased application name followed by _CONFIG_PATH.
func (s Search) PathVar() string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}

		return '_'
	}, s.App)

	return name + "_CONFIG_PATH"
}

// Dirs returns the existing search directories, most preferred first: the
// entries of [Search.PathVar], then the versioned and unversioned per-user
// directories, then the versioned and unversioned directories under the
// installation prefix.
func (s Search) Dirs() []string {
	lookup := s.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var extra []string
	if v, ok := lookup(s.PathVar()); ok {
		extra = filepath.SplitList(v)
	}

	user := s.ConfigDir
	if user == "" {
		user, _ = os.UserConfigDir()
	}

	var std []string

	if user != "" && s.App != "" {
		if s.Version != "" {
			std = append(std, filepath.Join(user, s.App, s.Version))
		}

		std = append(std, filepath.Join(user, s.App))
	}

	if s.Prefix != "" && s.App != "" {
		share := filepath.Join(s.Prefix, "share", s.App)
		if s.Version != "" {
			std = append(std, filepath.Join(share, s.Version, "config"))
		}

		std = append(std, filepath.Join(share, "config"))
	}

	list := mung.Make(
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(append(extra, std...)...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		dir = filepath.Clean(dir)
		if dir != "." && isDir(dir) && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// Files returns the path of name in every search directory that contains it,
// most preferred first.
func (s Search) Files(name string) []string {
	var files []string

	for _, dir := range s.Dirs() {
		path := filepath.Join(dir, name)

		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			files = append(files, path)
		}
	}

	return files
}

// ReadSearchPath parses the configuration file name found on the search path
// described by s.
//
// Without [Search.Merge] only the most preferred file is read. With it, every
// file found is read into the same store, least preferred first, so values
// from preferred directories win. If no file is found the error wraps
// [ErrSourceNotFound].
//
// Parse errors of individual files are joined; the returned block holds the
// values of every file read.
func ReadSearchPath(ctx context.Context, name string, s Search, opts ...Option) (*Block, error) {
	files := s.Files(name)
	if len(files) == 0 {
		return nil, ErrSourceNotFound.With(
			slog.String("name", name),
			slog.String("app", s.App),
		)
	}

	if !s.Merge {
		files = files[:1]
	}

	p := NewParser(opts...)

	var errs []error

	for _, path := range slices.Backward(files) {
		err := p.ParseFile(ctx, path)

		var perr *ParseError
		if err != nil && !errors.As(err, &perr) {
			return p.Block(), err
		}

		errs = append(errs, err)
	}

	return p.Block(), errors.Join(errs...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
