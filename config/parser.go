package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/blockcfg/log"
)

// Parser reads configuration files into a [Store].
//
// Each call to [Parser.ParseFile] or [Parser.Parse] runs a fresh session:
// the symbol table, the block stack and the diagnostics start empty, while
// the store keeps accumulating values. A Parser must not be used from more
// than one goroutine at a time.
type Parser struct {
	store     Store
	sep       string
	lookupEnv LookupEnvFunc
	extra     []Provider
	logger    log.Logger

	last *session
}

// session is the state of one top-level parse.
type session struct {
	ctx      context.Context
	blocks   *blockStack
	symbols  *SymbolTable
	expander *Expander
	diags    Diagnostics
	open     int      // files currently being processed
	active   []string // canonical paths of files being processed
	files    []string // canonical paths of every file opened
}

// NewParser returns a Parser configured by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{sep: DefaultSeparator}

	for _, opt := range opts {
		opt(p)
	}

	if p.store == nil {
		p.store = NewBlockSeparator("", p.sep)
	} else if b, ok := p.store.(*Block); ok {
		p.sep = b.Separator()
	}

	return p
}

// ReadFile parses the file at path into a new [Block].
//
// The returned block holds every value stored before a failure, so it is
// usable for inspection even when err is a [*ParseError].
func ReadFile(ctx context.Context, path string, opts ...Option) (*Block, error) {
	p := NewParser(opts...)
	err := p.ParseFile(ctx, path)

	return p.Block(), err
}

// Store returns the store receiving values.
func (p *Parser) Store() Store { return p.store }

// Block returns the store if it is a [*Block], or nil.
func (p *Parser) Block() *Block {
	b, _ := p.store.(*Block)

	return b
}

// Diagnostics returns the defects recorded by the most recent parse.
func (p *Parser) Diagnostics() Diagnostics {
	if p.last == nil {
		return nil
	}

	return slices.Clone(p.last.diags)
}

// Files returns the canonical path of every file opened by the most recent
// parse, in the order they were opened.
func (p *Parser) Files() []string {
	if p.last == nil {
		return nil
	}

	return slices.Clone(p.last.files)
}

// Symbols returns the local macros defined by the most recent parse.
func (p *Parser) Symbols() *SymbolTable {
	if p.last == nil {
		return NewSymbolTable()
	}

	return p.last.symbols
}

// ParseFile parses the file at path and every file it includes.
//
// A missing or unreadable file fails immediately with [ErrSourceNotFound] or
// [ErrReadInput], and an endblock without an open block fails immediately
// with [ErrUnmatchedEndBlock]. Other defects are collected; if any were found
// a [*ParseError] is returned after the whole input has been read.
func (p *Parser) ParseFile(ctx context.Context, path string) error {
	s := p.begin(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	return p.processFile(s, abs)
}

// Parse parses the contents of r as if read from the file at path. Relative
// includes and relativepath values are resolved against the directory of
// path; an empty path means the working directory.
func (p *Parser) Parse(ctx context.Context, path string, r io.Reader) error {
	s := p.begin(ctx)

	if path == "" {
		path = "<input>"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	return p.process(s, abs, r)
}

func (p *Parser) begin(ctx context.Context) *session {
	s := &session{
		ctx:     ctx,
		blocks:  newBlockStack(p.sep),
		symbols: NewSymbolTable(),
	}

	s.expander = NewExpander(
		NewEnvProvider(p.lookupEnv),
		SysEnvProvider{},
		NewConfigProvider(p.store),
		s.symbols,
	)
	s.expander.logger = p.logger

	for _, extra := range p.extra {
		s.expander.Register(extra)
	}

	p.last = s

	return s
}

// processFile opens path and processes it. The file is closed before
// returning, including when an included file fails.
func (p *Parser) processFile(s *session, path string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrSourceNotFound.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	return p.process(s, path, f)
}

// process reads statements from r until end of input.
func (p *Parser) process(s *session, path string, r io.Reader) error {
	canon := canonicalPath(path)

	s.active = append(s.active, canon)
	defer func() { s.active = s.active[:len(s.active)-1] }()

	if !slices.Contains(s.files, canon) {
		s.files = append(s.files, canon)
	}

	s.open++

	dir := filepath.Dir(path)
	sc := NewScanner(r)

	p.logger.DebugContext(s.ctx, "processing file",
		slog.String("file", path),
		slog.Int("depth", s.open),
	)

	for {
		tok, err := sc.Next()
		if err != nil {
			return ErrReadInput.Wrap(err).With(slog.String("path", path))
		}

		if tok.Kind == KindEOF {
			return p.finish(s, path)
		}

		switch tok.Text {
		case keywordInclude:
			if err := p.include(s, sc, path, dir); err != nil {
				return err
			}

		case keywordBlock:
			p.openBlock(s, sc, path)

		case keywordEndBlock:
			sc.Flush()

			f, ok := s.blocks.pop()
			if !ok {
				return ErrUnmatchedEndBlock.With(
					slog.String("file", path),
					slog.Int("line", sc.Line()),
				)
			}

			p.logger.DebugContext(s.ctx, "closed block",
				slog.String("block", f.name),
				slog.String("file", path),
				slog.Int("line", sc.Line()),
			)

		default:
			p.assign(s, sc, tok, path, dir)
		}
	}
}

// finish handles end of input for one file. At the end of the outermost file
// it reports unclosed blocks and returns the collected diagnostics.
func (p *Parser) finish(s *session, path string) error {
	s.open--
	if s.open > 0 {
		return nil
	}

	for s.blocks.depth() > 0 {
		f, _ := s.blocks.pop()

		p.latch(s, Diagnostic{
			Kind:    DiagUnclosedBlock,
			File:    f.file,
			Line:    f.line,
			Message: "unclosed block " + f.name,
		})
	}

	if len(s.diags) == 0 {
		return nil
	}

	return &ParseError{Path: path, Diagnostics: slices.Clone(s.diags)}
}

// include handles "include <path>". The rest of the line is the path.
func (p *Parser) include(s *session, sc *Scanner, path, dir string) error {
	target := sc.Rest()
	sc.Flush()

	if target == "" {
		p.syntaxError(s, sc, path, "missing include path")

		return nil
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}

	if slices.Contains(s.active, canonicalPath(target)) {
		p.latch(s, Diagnostic{
			Kind:    DiagIncludeCycle,
			File:    path,
			Line:    sc.Line(),
			Text:    sc.LastLine(),
			Message: "include cycle on " + target,
		})

		return nil
	}

	p.logger.DebugContext(s.ctx, "including file",
		slog.String("include", target),
		slog.String("file", path),
		slog.Int("line", sc.Line()),
	)

	return p.processFile(s, target)
}

// openBlock handles "block <name>".
func (p *Parser) openBlock(s *session, sc *Scanner, path string) {
	name, err := sc.Next()
	if err != nil || name.Kind != KindLHS {
		p.syntaxError(s, sc, path, "invalid syntax")
		sc.Flush()

		return
	}

	s.blocks.push(name.Text, path, sc.Line())
	sc.Flush()

	p.logger.DebugContext(s.ctx, "opened block",
		slog.String("block", s.blocks.path()),
		slog.String("file", path),
		slog.Int("line", sc.Line()),
	)
}

// assign handles "[relativepath] <lhs> (=|:=) <rhs>".
func (p *Parser) assign(s *session, sc *Scanner, tok Token, path, dir string) {
	var relative bool

	if tok.Text == keywordRelativePath {
		relative = true

		tok, _ = sc.Next()
	}

	if tok.Kind != KindLHS || tok.Text == "" {
		p.syntaxError(s, sc, path, "invalid syntax")
		sc.Flush()

		return
	}

	lhs := tok.Text

	op, _ := sc.Next()
	if op.Kind != KindAssign {
		p.syntaxError(s, sc, path, "invalid syntax")
		sc.Flush()

		return
	}

	rhs, _ := sc.Next()
	if rhs.Kind != KindRHS {
		p.syntaxError(s, sc, path, "invalid syntax")
		sc.Flush()

		return
	}

	value, err := s.expander.Expand(s.ctx, rhs.Text)
	if err != nil {
		p.latch(s, Diagnostic{
			Kind:    DiagExpansion,
			File:    path,
			Line:    sc.Line(),
			Text:    sc.LastLine(),
			Message: "cannot expand value",
			Err:     err,
		})

		return
	}

	if op.Text == OpDefine {
		s.symbols.Define(lhs, value)

		p.logger.DebugContext(s.ctx, "defined symbol",
			slog.String("name", lhs),
			slog.String("value", value),
		)

		return
	}

	if relative && !filepath.IsAbs(value) {
		value = filepath.Join(dir, value)
	}

	key := s.blocks.qualify(lhs)

	if err := p.store.Set(key, value); err != nil {
		p.latch(s, Diagnostic{
			Kind:    DiagStore,
			File:    path,
			Line:    sc.Line(),
			Text:    sc.LastLine(),
			Message: "cannot set " + key,
			Err:     err,
		})

		return
	}

	p.logger.DebugContext(s.ctx, "added entry",
		slog.String("key", key),
		slog.String("value", value),
	)
}

func (p *Parser) syntaxError(s *session, sc *Scanner, path, msg string) {
	p.latch(s, Diagnostic{
		Kind:    DiagSyntax,
		File:    path,
		Line:    sc.Line(),
		Text:    sc.LastLine(),
		Message: msg,
	})
}

// latch records a diagnostic and reports it to the logger.
func (p *Parser) latch(s *session, d Diagnostic) {
	s.diags = append(s.diags, d)

	p.logger.ErrorContext(s.ctx, d.Message, slog.Any("diagnostic", d))
}

// canonicalPath returns an absolute, symlink-free form of path for identity
// comparisons. Paths that cannot be resolved are returned cleaned.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}
