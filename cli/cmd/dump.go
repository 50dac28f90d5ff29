package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/log"
)

// Dump parses sources and prints the resulting configuration.
type Dump struct {
	output `embed:""`

	Block  string `help:"Print only the entries under this block path." short:"b"`
	Filter string `help:"Print only entries for which this expression is true; key and value are in scope." short:"x"`

	Source []string `arg:"" default:"-" help:"Source files, or '-' for stdin. Later sources override earlier ones." name:"source"`
}

// Run executes the dump command.
//
// Values read before a parse error are still printed; the parse error is
// returned afterward.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	keep, err := compileFilter(d.Filter)
	if err != nil {
		return err
	}

	p := newParser(ctx)

	perr := readSources(ctx, p, d.Source)

	var cerr *Error
	if errors.As(perr, &cerr) {
		return perr
	}

	b := p.Block()
	if d.Block != "" {
		b = b.Subblock(d.Block)
	}

	if b, err = selectEntries(b, keep); err != nil {
		return err
	}

	log.DebugContext(ctx, "dump",
		slog.String("format", d.Format),
		slog.Int("entries", b.Len()),
	)

	if err := d.write(ctx, outputFrom(ctx), b); err != nil {
		return err
	}

	return perr
}

// filter reports whether the entry key = value is selected.
type filter func(key, value string) (bool, error)

// compileFilter compiles src into a predicate over the variables key and
// value. An empty src selects everything.
func compileFilter(src string) (filter, error) {
	if src == "" {
		return nil, nil
	}

	program, err := expr.Compile(
		src,
		expr.Env(map[string]any{"key": "", "value": ""}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrFilter.Wrap(err).With(slog.String("filter", src))
	}

	return func(key, value string) (bool, error) {
		return runFilter(program, key, value)
	}, nil
}

func runFilter(program *vm.Program, key, value string) (bool, error) {
	out, err := expr.Run(program, map[string]any{"key": key, "value": value})
	if err != nil {
		return false, ErrFilter.Wrap(err).With(slog.String("key", key))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// selectEntries returns a copy of b holding the entries keep selects, with
// their descriptions. A nil keep returns b unchanged.
func selectEntries(b *config.Block, keep filter) (*config.Block, error) {
	if keep == nil {
		return b, nil
	}

	sel := config.NewBlockSeparator(b.Name(), b.Separator())

	for k, v := range b.All() {
		ok, err := keep(k, v)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		if err := sel.Set(k, v); err != nil {
			return nil, err
		}

		sel.SetDescription(k, b.Description(k))
	}

	return sel, nil
}
