package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/blockcfg/config"
)

// Check parses each source on its own and reports every defect found.
type Check struct {
	Quiet bool `help:"Print nothing; report only through the exit status." short:"q"`

	Source []string `arg:"" default:"-" help:"Source files, or '-' for stdin." name:"source"`
}

type checkStyle struct {
	path, line, kind, text, ok lipgloss.Style
}

func newCheckStyle(w io.Writer) checkStyle {
	r := lipgloss.NewRenderer(w)

	return checkStyle{
		path: r.NewStyle().Bold(true),
		line: r.NewStyle().Foreground(lipgloss.Color("6")),
		kind: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		text: r.NewStyle().Foreground(lipgloss.Color("8")),
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Run executes the check command. It fails with [ErrCheckFailed] if any source
// has a defect.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)
	if c.Quiet {
		w = io.Discard
	}

	style := newCheckStyle(w)

	var failed, defects int

	for _, src := range uniqueSources(c.Source) {
		p := newParser(ctx)
		err := readSources(ctx, p, []string{src})

		name := src
		if src == stdinSource {
			name = "<stdin>"
		}

		if err == nil {
			fmt.Fprintf(w, "%s: %s (%d entries)\n",
				style.path.Render(name), style.ok.Render("ok"), p.Block().Len())

			continue
		}

		failed++

		var perr *config.ParseError
		if !errors.As(err, &perr) {
			defects++

			style.failure(w, name, err)

			continue
		}

		for _, d := range perr.Diagnostics {
			defects++

			style.diagnostic(w, d)
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("sources", failed),
			slog.Int("defects", defects),
		)
	}

	return nil
}

func (s checkStyle) diagnostic(w io.Writer, d config.Diagnostic) {
	msg := d.Message
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}

	fmt.Fprintf(w, "%s:%s: %s: %s\n",
		s.path.Render(d.File),
		s.line.Render(strconv.Itoa(d.Line)),
		s.kind.Render(d.Kind.String()),
		msg,
	)

	if d.Text != "" {
		fmt.Fprintf(w, "    %s\n", s.text.Render(d.Text))
	}
}

// failure reports an error that stopped the parse of source, located at the
// file and line recorded on it when known.
func (s checkStyle) failure(w io.Writer, source string, err error) {
	where := s.path.Render(source)

	var cerr *config.Error
	if errors.As(err, &cerr) {
		var (
			file string
			line int64
		)

		for _, a := range cerr.Attrs() {
			switch a.Key {
			case "file":
				file = a.Value.String()
			case "line":
				line = a.Value.Int64()
			}
		}

		if file != "" && line > 0 {
			where = s.path.Render(file) + ":" + s.line.Render(strconv.FormatInt(line, 10))
		}
	}

	fmt.Fprintf(w, "%s: %s: %v\n", where, s.kind.Render("error"), errors.Unwrap(err))
}
