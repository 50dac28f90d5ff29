package config

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// DefaultSeparator joins block names and keys.
const DefaultSeparator = ":"

// Store receives fully qualified key/value pairs from a [Parser].
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool)
}

// Block is an in-memory [Store] keyed by separator-joined names.
//
// A Block is not safe for concurrent mutation.
type Block struct {
	name     string
	sep      string
	values   map[string]string
	descr    map[string]string
	readOnly map[string]struct{}
}

// NewBlock returns an empty Block using [DefaultSeparator].
func NewBlock(name string) *Block {
	return NewBlockSeparator(name, DefaultSeparator)
}

// NewBlockSeparator returns an empty Block using sep to join names.
func NewBlockSeparator(name, sep string) *Block {
	if sep == "" {
		sep = DefaultSeparator
	}

	return &Block{
		name:     name,
		sep:      sep,
		values:   make(map[string]string),
		descr:    make(map[string]string),
		readOnly: make(map[string]struct{}),
	}
}

// Name returns the name the block was created with.
func (b *Block) Name() string { return b.name }

// Separator returns the string joining nested names.
func (b *Block) Separator() string { return b.sep }

// Len returns the number of keys.
func (b *Block) Len() int { return len(b.values) }

// Has reports whether key is set.
func (b *Block) Has(key string) bool {
	_, ok := b.values[key]

	return ok
}

// Get implements [Store].
func (b *Block) Get(key string) (string, bool) {
	v, ok := b.values[key]

	return v, ok
}

// Value returns the value of key, or def if key is not set.
func (b *Block) Value(key, def string) string {
	if v, ok := b.values[key]; ok {
		return v
	}

	return def
}

// Lookup returns the value of key or an error wrapping [ErrKeyNotFound].
func (b *Block) Lookup(key string) (string, error) {
	if v, ok := b.values[key]; ok {
		return v, nil
	}

	return "", ErrKeyNotFound.With(slog.String("key", key))
}

// Set implements [Store]. Setting a read-only key fails with [ErrReadOnly].
func (b *Block) Set(key, value string) error {
	if b.IsReadOnly(key) {
		return ErrReadOnly.With(slog.String("key", key))
	}

	b.values[key] = value

	return nil
}

// Unset removes key and its description. Unsetting a read-only key fails
// with [ErrReadOnly].
func (b *Block) Unset(key string) error {
	if b.IsReadOnly(key) {
		return ErrReadOnly.With(slog.String("key", key))
	}

	delete(b.values, key)
	delete(b.descr, key)

	return nil
}

// SetDescription attaches a description to key. The description is written
// as a comment by [Block.Format].
func (b *Block) SetDescription(key, descr string) {
	if descr == "" {
		delete(b.descr, key)

		return
	}

	b.descr[key] = descr
}

// Description returns the description of key, if any.
func (b *Block) Description(key string) string { return b.descr[key] }

// MarkReadOnly prevents further changes to key.
func (b *Block) MarkReadOnly(key string) { b.readOnly[key] = struct{}{} }

// IsReadOnly reports whether key is read-only.
func (b *Block) IsReadOnly(key string) bool {
	_, ok := b.readOnly[key]

	return ok
}

// Keys returns all keys in sorted order.
func (b *Block) Keys() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// All returns an iterator over all key/value pairs in sorted key order.
func (b *Block) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range b.Keys() {
			if !yield(k, b.values[k]) {
				return
			}
		}
	}
}

// Join returns the names joined by the block separator.
func (b *Block) Join(names ...string) string {
	return strings.Join(names, b.sep)
}

// Subblock returns a copy of the entries under prefix, with prefix and the
// following separator removed from each key. Descriptions and read-only marks
// are copied too.
func (b *Block) Subblock(prefix string) *Block {
	sub := NewBlockSeparator(prefix, b.sep)
	lead := prefix + b.sep

	for k, v := range b.values {
		rest, ok := strings.CutPrefix(k, lead)
		if !ok || rest == "" {
			continue
		}

		sub.values[rest] = v

		if d, ok := b.descr[k]; ok {
			sub.descr[rest] = d
		}

		if b.IsReadOnly(k) {
			sub.readOnly[rest] = struct{}{}
		}
	}

	return sub
}

// Merge copies every entry of other into b; entries of other win. Merging
// stops at the first read-only key in b that other would change.
func (b *Block) Merge(other *Block) error {
	for k, v := range other.All() {
		if cur, ok := b.values[k]; ok && cur == v {
			continue
		}

		if err := b.Set(k, v); err != nil {
			return err
		}

		if d := other.Description(k); d != "" {
			b.descr[k] = d
		}
	}

	return nil
}

// Map returns a copy of the entries as a plain map.
func (b *Block) Map() map[string]string { return maps.Clone(b.values) }
