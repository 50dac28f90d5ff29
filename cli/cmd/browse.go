package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ardnew/blockcfg/cli/cmd/browse"
	"github.com/ardnew/blockcfg/log"
)

// Browse opens an interactive viewer of the parsed configuration. The
// selected entry is printed on exit.
type Browse struct {
	Source []string `arg:"" help:"Source files. Later sources override earlier ones." name:"source" type:"existingfile"`
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p := newParser(ctx)

	perr := readSources(ctx, p, b.Source)

	var cerr *Error
	if errors.As(perr, &cerr) {
		return perr
	}

	opts := []browse.Option{browse.WithLogger(log.Default())}

	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			opts = append(opts, browse.WithHistory(
				browse.NewHistory(filepath.Join(dir, browse.BaseHistory)),
			))
		}
	}

	sel, err := browse.Run(ctx, p.Block(), opts...)
	if err != nil {
		return err
	}

	if sel != nil {
		fmt.Fprintf(outputFrom(ctx), "%s = %s\n", sel.Key, sel.Value)
	}

	return perr
}
