package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/blockcfg/log"
)

// Watch parses a source, prints it, and prints it again each time the source
// or any file it includes changes.
type Watch struct {
	output `embed:""`

	Debounce time.Duration `default:"100ms" help:"Wait this long after the last change before re-parsing."`

	Source string `arg:"" help:"Source file." name:"source" type:"path"`
}

// watchSet holds the files of the most recent parse and the directories
// watched for them.
type watchSet struct {
	files map[string]struct{}
	dirs  map[string]struct{}
}

// Run executes the watch command. It returns when ctx is canceled.
func (w *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	set := watchSet{dirs: make(map[string]struct{})}
	w.reload(ctx, watcher, &set)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !set.affects(evt) {
				continue
			}

			log.TraceContext(ctx, "source changed",
				slog.String("file", evt.Name),
				slog.String("op", evt.Op.String()),
			)

			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}

			timerC = timer.C

		case <-timerC:
			timerC = nil

			w.reload(ctx, watcher, &set)
		}
	}
}

// reload re-parses the source, prints the result if the parse succeeded, and
// watches the directory of every file the parse opened.
func (w *Watch) reload(ctx context.Context, watcher *fsnotify.Watcher, set *watchSet) {
	p := newParser(ctx)
	err := p.ParseFile(ctx, w.Source)

	set.files = map[string]struct{}{canonical(w.Source): {}}
	for _, f := range p.Files() {
		set.files[f] = struct{}{}
	}

	for f := range set.files {
		dir := filepath.Dir(f)
		if _, ok := set.dirs[dir]; ok {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			log.WarnContext(ctx, "cannot watch directory",
				slog.String("dir", dir),
				slog.Any("error", err),
			)

			continue
		}

		set.dirs[dir] = struct{}{}
	}

	if err != nil {
		log.ErrorContext(ctx, "parse failed",
			slog.String("source", w.Source),
			slog.Any("error", err),
		)

		return
	}

	out := outputFrom(ctx)
	if err := w.write(ctx, out, p.Block()); err != nil {
		log.ErrorContext(ctx, "write failed", slog.Any("error", err))

		return
	}

	fmt.Fprintln(out, "---")
}

// affects reports whether evt changes one of the watched files.
func (s *watchSet) affects(evt fsnotify.Event) bool {
	if !evt.Op.Has(fsnotify.Create) && !evt.Op.Has(fsnotify.Write) &&
		!evt.Op.Has(fsnotify.Remove) && !evt.Op.Has(fsnotify.Rename) {
		return false
	}

	_, ok := s.files[canonical(evt.Name)]

	return ok
}

// canonical returns the absolute path of name with the directory's symlinks
// resolved, matching the paths reported by [config.Parser.Files] even for
// files that no longer exist.
func canonical(name string) string {
	abs, err := filepath.Abs(name)
	if err != nil {
		return filepath.Clean(name)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	dir, base := filepath.Split(abs)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolved, base)
	}

	return abs
}
