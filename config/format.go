package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes every entry in the configuration language, in key order.
// Descriptions are written as comments above their entry.
//
// If nested is true, keys are grouped into block sections by separator;
// otherwise each entry is written on one line with its full key. Either way
// the output parses back to the same entries.
func (b *Block) Format(w io.Writer, nested bool) error {
	var sb strings.Builder

	if nested {
		b.formatNested(&sb)
	} else {
		for _, key := range b.Keys() {
			b.formatEntry(&sb, 0, key, key)
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func (b *Block) formatNested(sb *strings.Builder) {
	var open []string

	for _, key := range b.Keys() {
		path, leaf := b.splitKey(key)

		n := 0
		for n < len(open) && n < len(path) && open[n] == path[n] {
			n++
		}

		for len(open) > n {
			open = open[:len(open)-1]
			writeIndent(sb, len(open))
			sb.WriteString(keywordEndBlock + "\n")
		}

		for _, name := range path[n:] {
			writeIndent(sb, len(open))
			sb.WriteString(keywordBlock + " " + name + "\n")

			open = append(open, name)
		}

		b.formatEntry(sb, len(open), key, leaf)
	}

	for len(open) > 0 {
		open = open[:len(open)-1]
		writeIndent(sb, len(open))
		sb.WriteString(keywordEndBlock + "\n")
	}
}

// splitKey returns the block path and final name of key. Keys with a segment
// that cannot be written as a block name, or whose final name would read as
// a statement keyword, are not split.
func (b *Block) splitKey(key string) ([]string, string) {
	parts := strings.Split(key, b.sep)

	path, leaf := parts[:len(parts)-1], parts[len(parts)-1]
	if slices.Contains(keywords, leaf) || slices.ContainsFunc(path, func(s string) bool {
		return s == "" || strings.ContainsAny(s, " \t=#")
	}) {
		return nil, key
	}

	return path, leaf
}

func (b *Block) formatEntry(sb *strings.Builder, depth int, key, name string) {
	if d := b.descr[key]; d != "" {
		for line := range strings.Lines(d) {
			writeIndent(sb, depth)
			sb.WriteString("# " + strings.TrimRight(line, "\r\n") + "\n")
		}
	}

	writeIndent(sb, depth)
	fmt.Fprintf(sb, "%s %s %s\n", escapeComment(name), OpAssign,
		escapeComment(b.values[key]))
}

// escapeComment protects every '#' in s from starting a comment.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "#", `\#`)
}

func writeIndent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

// FormatJSON writes the entries as a flat JSON object keyed by full key.
// A positive indent pretty-prints the object.
func (b *Block) FormatJSON(w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(b.values, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(b.values)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the entries as a YAML mapping nested by separator. A key
// that holds a value and also names a block stores its value under the empty
// key of that block's mapping. A positive indent sets the indentation;
// otherwise flow style is used.
func (b *Block) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, b.tree().mapSlice(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// node is one level of the block hierarchy.
type node struct {
	value    *string
	children map[string]*node
}

func (b *Block) tree() *node {
	root := &node{}

	for k, v := range b.values {
		n := root

		for _, part := range strings.Split(k, b.sep) {
			if n.children == nil {
				n.children = make(map[string]*node)
			}

			child, ok := n.children[part]
			if !ok {
				child = &node{}
				n.children[part] = child
			}

			n = child
		}

		n.value = &v
	}

	return root
}

func (n *node) mapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(n.children)+1)

	if n.value != nil && len(n.children) > 0 {
		out = append(out, yaml.MapItem{Key: "", Value: *n.value})
	}

	for _, name := range slices.Sorted(maps.Keys(n.children)) {
		child := n.children[name]

		var value any
		if len(child.children) > 0 {
			value = child.mapSlice()
		} else if child.value != nil {
			value = *child.value
		}

		out = append(out, yaml.MapItem{Key: name, Value: value})
	}

	return out
}
