package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/log"
)

// load returns a [kong.ConfigurationLoader] that parses a settings file
// written in the configuration language itself.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(load(ctx), "/path/to/config")
//
// A flag is looked up by its name and by its name with each "-" replaced by
// the block separator, so --log-level is set by either of:
//
//	log-level = debug
//
//	block log
//	  level = debug
//	endblock
//
// Flags of a subcommand are first looked up inside a block named after the
// command. Command-line flags override settings file values.
//
// A settings file with errors is reported and the values it did define are
// still used.
func load(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var path string
		if f, ok := r.(interface{ Name() string }); ok {
			path = f.Name()
		}

		p := config.NewParser(config.WithLogger(log.Default()))

		if err := p.Parse(ctx, path, r); err != nil {
			log.WarnContext(ctx, "settings file has errors",
				slog.String("file", path),
				slog.Any("error", err),
			)
		}

		return settings{p.Block()}, nil
	}
}

// settings implements [kong.Resolver] over a parsed settings file.
type settings struct {
	*config.Block
}

// Validate implements [kong.Resolver].
func (settings) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (s settings) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range s.keys(parent, flag) {
		if value, ok := s.Get(key); ok {
			return value, nil
		}
	}

	return nil, nil
}

// keys returns the settings keys that may hold the value of flag, in order
// of preference.
func (s settings) keys(parent *kong.Path, flag *kong.Flag) []string {
	name := flag.Name
	nested := strings.ReplaceAll(name, "-", s.Separator())

	var keys []string

	if parent != nil && parent.Command != nil {
		cmd := parent.Command.Name
		keys = append(keys, s.Join(cmd, name))

		if nested != name {
			keys = append(keys, s.Join(cmd, nested))
		}
	}

	keys = append(keys, name)

	if nested != name {
		keys = append(keys, nested)
	}

	return keys
}
