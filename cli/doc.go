// Package cli contains the command line interface for blockcfg.
//
// # Commands
//
//	blockcfg dump FILE...       print the merged configuration
//	blockcfg get FILE KEY       print one value
//	blockcfg check FILE...      report every defect
//	blockcfg watch FILE         re-print on every change
//	blockcfg browse FILE...     fuzzy-filter keys interactively
//	blockcfg init               write the settings file
//	blockcfg version            print version information
//
// dump is the default command, so "blockcfg app.conf" prints app.conf.
//
// # Settings
//
// Flag defaults are read from settings files written in the configuration
// language itself, found in each directory of BLOCKCFG_CONFIG_PATH, the
// per-user configuration directory, and the installation prefix. A flag is
// set by its name or by a block path derived from it:
//
//	log-level = debug
//
//	block log
//	  format = json
//	endblock
//
//	block dump
//	  format = yaml
//	endblock
//
// Flags given on the command line override every settings file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp layout (rfc3339, kitchen, none, or a Go layout)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output written to a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o blockcfg .
//
// It is then enabled with --pprof-mode and written below --pprof-dir.
package cli
