// Package cmd implements the blockcfg subcommands.
//
// Every command parses its sources with a [config.Parser] configured from
// the options stored in the command context by [WithParserOptions], and
// writes to the stream stored by [WithOutput].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the settings file written by [Init].
	ConfigIdentifier = "config"
)
