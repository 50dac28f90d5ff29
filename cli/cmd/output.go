package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/blockcfg/config"
)

// Output formats.
const (
	formatNative = "native"
	formatNested = "nested"
	formatJSON   = "json"
	formatYAML   = "yaml"
)

// output selects how a block is printed. It is embedded by commands that
// print configuration.
type output struct {
	Format string `default:"native" enum:"native,nested,json,yaml" help:"Output format (${enum})." short:"o"`
	Indent int    `default:"2"                                       help:"Indent width for json and yaml output."`
}

func (o output) write(ctx context.Context, w io.Writer, b *config.Block) error {
	switch o.Format {
	case formatNative, "":
		return b.Format(w, false)
	case formatNested:
		return b.Format(w, true)
	case formatJSON:
		return b.FormatJSON(w, o.Indent)
	case formatYAML:
		return b.FormatYAML(ctx, w, o.Indent)
	default:
		return ErrInvalidFormat.With(slog.String("format", o.Format))
	}
}
