package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/log"
)

type (
	contextKey       struct{}
	parserOptionsKey struct{}
	outputKey        struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithParserOptions returns a new context.Context carrying options applied to
// every [config.Parser] a command creates. Options accumulate across calls.
func WithParserOptions(ctx context.Context, opts ...config.Option) context.Context {
	prev := parserOptionsFrom(ctx)

	return context.WithValue(
		ctx,
		parserOptionsKey{},
		append(append([]config.Option(nil), prev...), opts...),
	)
}

func parserOptionsFrom(ctx context.Context) []config.Option {
	opts, _ := ctx.Value(parserOptionsKey{}).([]config.Option)

	return opts
}

// newParser returns a parser logging to the default logger, configured with
// the options stored in ctx followed by extra.
func newParser(ctx context.Context, extra ...config.Option) *config.Parser {
	opts := []config.Option{config.WithLogger(log.Default())}
	opts = append(opts, parserOptionsFrom(ctx)...)

	return config.NewParser(append(opts, extra...)...)
}

// WithOutput returns a new context.Context directing command output to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by [WithOutput], or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey returns false if the underlying Sys() data is not of type
// *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

// uniqueSources removes duplicate sources, comparing files by device and
// inode so that symlinks and relative paths to the same file collapse to the
// first occurrence. Every "-" collapses into a single stdin source placed
// last. Paths that cannot be stat'ed are kept so that parsing reports them.
func uniqueSources(sources []string) []string {
	var (
		out      []string
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})
	named := make(map[string]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, stdinOK := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		info, err := os.Stat(src)
		if err != nil {
			abs, _ := filepath.Abs(src)
			if _, dup := named[abs]; !dup {
				named[abs] = struct{}{}
				out = append(out, src)
			}

			continue
		}

		key, ok := makeFileKey(info)
		if !ok {
			out = append(out, src)

			continue
		}

		if stdinOK && key == stdinKey {
			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, src)
	}

	if hasStdin {
		out = append(out, stdinSource)
	}

	return out
}

// readSources parses every source into the store of p, in order, so later
// sources override earlier ones.
//
// A hard failure stops immediately. Parse errors are logged, joined, and
// returned after every source has been read; the store then holds every value
// that could be read.
func readSources(ctx context.Context, p *config.Parser, sources []string) error {
	var errs []error

	for _, src := range uniqueSources(sources) {
		var err error

		if src == stdinSource {
			err = p.Parse(ctx, "", os.Stdin)
		} else {
			err = p.ParseFile(ctx, src)
		}

		var perr *config.ParseError

		switch {
		case err == nil:
		case errors.As(err, &perr):
			errs = append(errs, err)
		default:
			return ErrReadSource.Wrap(err).With(slog.String("source", src))
		}
	}

	return errors.Join(errs...)
}
