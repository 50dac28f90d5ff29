package config

import "github.com/ardnew/blockcfg/log"

// Option configures a [Parser].
type Option func(*Parser)

// WithLogger sets the logger receiving parse events and diagnostics.
// The default logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithStore sets the store receiving key/value pairs. The default is a new
// [Block].
func WithStore(store Store) Option {
	return func(p *Parser) { p.store = store }
}

// WithEnv sets the function used by the $ENV{} provider. The default is
// [os.LookupEnv].
func WithEnv(lookup LookupEnvFunc) Option {
	return func(p *Parser) { p.lookupEnv = lookup }
}

// WithProviders registers additional providers, consulted after the
// standard ones.
func WithProviders(providers ...Provider) Option {
	return func(p *Parser) { p.extra = append(p.extra, providers...) }
}

// WithSeparator sets the string joining block names and keys. It applies to
// the default store only; a store given with [WithStore] keeps its own.
func WithSeparator(sep string) Option {
	return func(p *Parser) {
		if sep != "" {
			p.sep = sep
		}
	}
}
