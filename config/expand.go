package config

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/blockcfg/log"
)

// Provider resolves references of the form $PREFIX{name}.
//
// Resolve returns [ErrUnresolved] (or an error wrapping it) when it does not
// know name; the reference is then offered to the next provider with the same
// prefix and, failing that, left verbatim. Any other error fails the
// expansion.
type Provider interface {
	Prefix() string
	Resolve(ctx context.Context, name string) (string, error)
}

// Suggester is implemented by providers that can enumerate their names. It is
// used to suggest alternatives for unresolved references.
type Suggester interface {
	Names() []string
}

// referencePattern matches $TYPE{name}.
var referencePattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)\{([^{}]*)\}`)

// maxSuggestions bounds the number of fuzzy alternatives reported.
const maxSuggestions = 3

// Expander substitutes provider references in text.
type Expander struct {
	providers []Provider
	logger    log.Logger
}

// NewExpander returns an Expander consulting providers in the given order.
func NewExpander(providers ...Provider) *Expander {
	return &Expander{providers: providers}
}

// Register appends a provider. Providers registered earlier take precedence.
func (e *Expander) Register(p Provider) { e.providers = append(e.providers, p) }

// Providers returns the registered providers in order.
func (e *Expander) Providers() []Provider {
	return append([]Provider(nil), e.providers...)
}

// Expand returns raw with every resolvable reference replaced. Substituted
// text is not scanned again.
//
// If a provider fails, the reference is left verbatim, scanning continues and
// the first failure is returned wrapped in [ErrExpand] together with the
// partially expanded text.
func (e *Expander) Expand(ctx context.Context, raw string) (string, error) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}

	var failed error

	out := referencePattern.ReplaceAllStringFunc(raw, func(ref string) string {
		m := referencePattern.FindStringSubmatch(ref)
		prefix, name := m[1], m[2]

		value, err := e.resolve(ctx, prefix, name)

		switch {
		case err == nil:
			e.logger.TraceContext(ctx, "expanded reference",
				slog.String("reference", ref),
				slog.String("value", value),
			)

			return value

		case errors.Is(err, ErrUnresolved):
			attrs := []slog.Attr{slog.String("reference", ref)}
			if alt := e.suggest(prefix, name); len(alt) > 0 {
				attrs = append(attrs, slog.Any("suggest", alt))
			}

			e.logger.DebugContext(ctx, "unresolved reference", attrs...)

		default:
			if failed == nil {
				failed = ErrExpand.Wrap(err).With(slog.String("reference", ref))
			}
		}

		return ref
	})

	return out, failed
}

func (e *Expander) resolve(ctx context.Context, prefix, name string) (string, error) {
	for _, p := range e.providers {
		if p.Prefix() != prefix {
			continue
		}

		v, err := p.Resolve(ctx, name)
		if errors.Is(err, ErrUnresolved) {
			continue
		}

		return v, err
	}

	return "", ErrUnresolved
}

// Suggest returns names close to name known by providers of the given prefix,
// best match first.
func (e *Expander) Suggest(prefix, name string) []string {
	return e.suggest(prefix, name)
}

func (e *Expander) suggest(prefix, name string) []string {
	var names []string

	for _, p := range e.providers {
		if s, ok := p.(Suggester); ok && p.Prefix() == prefix {
			names = append(names, s.Names()...)
		}
	}

	return Suggest(name, names)
}

// Suggest ranks candidates by fuzzy similarity to pattern and returns the best
// few.
func Suggest(pattern string, candidates []string) []string {
	if pattern == "" || len(candidates) == 0 {
		return nil
	}

	matches := fuzzy.Find(pattern, candidates)

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}
