package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/blockcfg/config"
)

// Get prints the value of a single key.
type Get struct {
	Default *string `help:"Print this instead of failing when the key is not set. May be empty." placeholder:"VALUE"`

	Source string `arg:"" help:"Source file, or '-' for stdin." name:"source"`
	Key    string `arg:"" help:"Fully qualified key, such as server:port."`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p := newParser(ctx)

	perr := readSources(ctx, p, []string{g.Source})

	var cerr *Error
	if errors.As(perr, &cerr) {
		return perr
	}

	b := p.Block()

	value, ok := b.Get(g.Key)
	if !ok {
		if g.Default == nil {
			return unknownKey(g.Key, b.Keys(), perr)
		}

		value = *g.Default
	}

	_, err = fmt.Fprintln(outputFrom(ctx), value)

	return err
}

// unknownKey returns an [ErrUnknownKey] naming the closest known keys.
func unknownKey(key string, known []string, cause error) error {
	err := ErrUnknownKey.With(slog.String("key", key))

	if alt := config.Suggest(key, known); len(alt) > 0 {
		err = err.
			With(slog.Any("suggestions", alt)).
			Wrap(fmt.Errorf("%q: did you mean %s?", key, strings.Join(alt, ", ")))
	} else {
		err = err.Wrap(fmt.Errorf("%q", key))
	}

	if cause != nil {
		return errors.Join(err, cause)
	}

	return err
}
