package config

import (
	"context"
	"slices"
)

// PrefixLocal is the reference type served by [SymbolTable].
const PrefixLocal = "LOCAL"

// SymbolTable holds local macros defined with ":=". It is a single flat
// namespace; block prefixes do not apply. A later definition of the same name
// replaces the earlier one.
type SymbolTable struct {
	values map[string]string
	order  []string
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[string]string)}
}

// Define sets name to value.
func (t *SymbolTable) Define(name, value string) {
	if _, ok := t.values[name]; !ok {
		t.order = append(t.order, name)
	}

	t.values[name] = value
}

// Lookup returns the value of name.
func (t *SymbolTable) Lookup(name string) (string, bool) {
	v, ok := t.values[name]

	return v, ok
}

// Len returns the number of defined symbols.
func (t *SymbolTable) Len() int { return len(t.order) }

// Names returns the defined names in order of first definition.
func (t *SymbolTable) Names() []string { return slices.Clone(t.order) }

// Prefix implements [Provider].
func (t *SymbolTable) Prefix() string { return PrefixLocal }

// Resolve implements [Provider].
func (t *SymbolTable) Resolve(_ context.Context, name string) (string, error) {
	if v, ok := t.values[name]; ok {
		return v, nil
	}

	return "", ErrUnresolved
}
