// Package log wraps [log/slog] with the levels, formats and colors used by
// blockcfg.
//
// A [Logger] is an immutable value. Its zero value discards every message,
// so types embedding one need no setup to stay quiet.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//
//	logger.Debug("added entry", slog.String("key", "server:port"))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is written as TRACE. Expansion of
// every reference is logged at this level.
//
// # Pretty output
//
// With [WithPretty] enabled, text records are written as key=value pairs and
// JSON records as an indented object, both colored with lipgloss styles. The
// color profile is detected from the output writer, so output to a file or a
// buffer carries no escape sequences.
//
// # Default logger
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger that [Config] reconfigures.
package log
