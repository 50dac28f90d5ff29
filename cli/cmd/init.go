package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/log"
	"github.com/ardnew/blockcfg/profile"
)

// Init writes the settings file with the current value of every global flag.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: settings file path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	b := i.settings(ctx)

	if err := b.Format(file, true); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
		slog.Int("entries", b.Len()),
	)

	return nil
}

// settings returns a block holding the value of every global flag, keyed by
// the flag name with each "-" replaced by the block separator, so that
// --log-level is written as key level inside block log.
func (i *Init) settings(ctx context.Context) *config.Block {
	ktx := kongContextFrom(ctx)
	b := newParser(ctx).Block()

	ignore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		value, ok := flagString(ktx, flag)
		if !ok {
			continue
		}

		key := strings.ReplaceAll(flag.Name, "-", b.Separator())

		if err := b.Set(key, value); err != nil {
			continue
		}

		b.SetDescription(key, flag.Help)
	}

	return b
}

// flagString returns the value of flag in the form kong parses back, or false
// if the flag has no value worth writing.
func flagString(ktx *kong.Context, flag *kong.Flag) (string, bool) {
	val := ktx.FlagValue(flag)
	if val == nil {
		return "", false
	}

	switch v := val.(type) {
	case string:
		return v, v != ""

	case []string:
		return strings.Join(v, ","), len(v) > 0

	case map[string]string:
		pairs := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			pairs = append(pairs, k+"="+v[k])
		}

		return strings.Join(pairs, ";"), len(v) > 0

	default:
		return fmt.Sprint(v), true
	}
}
