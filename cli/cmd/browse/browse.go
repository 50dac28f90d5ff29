// Package browse is an interactive, fuzzy-filtered viewer of a configuration
// block.
package browse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/blockcfg/config"
	"github.com/ardnew/blockcfg/log"
)

const (
	prompt        = "/ "
	defaultWidth  = 80
	defaultHeight = 20
	// chrome is the number of lines around the entry list: input, status,
	// and description.
	chrome = 3
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
)

// Entry is a key/value pair of the browsed block.
type Entry struct {
	Key, Value, Description string
}

// entries implements [fuzzy.Source] over the keys.
type entries []Entry

func (e entries) String(i int) string { return e[i].Key }
func (e entries) Len() int            { return len(e) }

type settings struct {
	history *History
	in      io.Reader
	out     io.Writer
	logger  log.Logger
}

// Option configures [Run].
type Option func(settings) settings

// WithHistory records accepted filter queries in h and offers them with
// ctrl+p and ctrl+n.
func WithHistory(h *History) Option {
	return func(s settings) settings {
		s.history = h

		return s
	}
}

// WithIO sets the terminal streams. Nil values keep the defaults.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s settings) settings {
		s.in, s.out = in, out

		return s
	}
}

// WithLogger sets the logger receiving trace events.
func WithLogger(logger log.Logger) Option {
	return func(s settings) settings {
		s.logger = logger

		return s
	}
}

// Run shows b until the user selects an entry or quits. It returns the
// selected entry, or nil if the user quit without selecting.
func Run(ctx context.Context, b *config.Block, opts ...Option) (*Entry, error) {
	var s settings
	for _, opt := range opts {
		s = opt(s)
	}

	if s.history == nil {
		s.history = NewHistory("")
	}

	if err := s.history.Load(); err != nil {
		s.logger.WarnContext(ctx, "cannot load history", slog.Any("error", err))
	}

	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if s.in != nil {
		popts = append(popts, tea.WithInput(s.in))
	}

	if s.out != nil {
		popts = append(popts, tea.WithOutput(s.out))
	}

	final, err := tea.NewProgram(newModel(ctx, b, s), popts...).Run()
	if err != nil {
		return nil, err
	}

	m, _ := final.(model)

	return m.chosen, nil
}

type model struct {
	ctx      context.Context
	logger   log.Logger
	input    textinput.Model
	entries  entries
	matches  fuzzy.Matches
	history  *History
	histIdx  int
	cursor   int
	offset   int
	width    int
	height   int
	chosen   *Entry
	quitting bool
}

func newModel(ctx context.Context, b *config.Block, s settings) model {
	if s.history == nil {
		s.history = NewHistory("")
	}

	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Placeholder = "filter keys"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth - len(prompt)

	list := make(entries, 0, b.Len())
	for k, v := range b.All() {
		list = append(list, Entry{Key: k, Value: v, Description: b.Description(k)})
	}

	m := model{
		ctx:     ctx,
		logger:  s.logger,
		input:   ti,
		entries: list,
		history: s.history,
		histIdx: s.history.Len(),
		width:   defaultWidth,
		height:  defaultHeight - chrome,
	}
	m.refresh()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-chrome, 1)
		m.input.Width = max(msg.Width-len(prompt)-1, 1)
		m.scroll()

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "browse keypress", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) == 0 {
			return m, nil
		}

		sel := m.entries[m.matches[m.cursor].Index]
		m.chosen = &sel

		if err := m.history.Add(m.input.Value()); err != nil {
			m.logger.WarnContext(m.ctx, "cannot save history", slog.Any("error", err))
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlK:
		m.move(-1)

		return m, nil

	case tea.KeyDown, tea.KeyCtrlJ:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.height)

		return m, nil

	case tea.KeyPgDown:
		m.move(m.height)

		return m, nil

	case tea.KeyCtrlP:
		m.recall(-1)

		return m, nil

	case tea.KeyCtrlN:
		m.recall(1)

		return m, nil
	}

	prev := m.input.Value()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != prev {
		m.cursor = 0
		m.refresh()
	}

	return m, cmd
}

// refresh recomputes the matches for the current query, best first. An empty
// query matches every entry in key order.
func (m *model) refresh() {
	query := strings.TrimSpace(m.input.Value())

	if query == "" {
		m.matches = make(fuzzy.Matches, len(m.entries))
		for i, e := range m.entries {
			m.matches[i] = fuzzy.Match{Str: e.Key, Index: i}
		}
	} else {
		m.matches = fuzzy.FindFrom(query, m.entries)
	}

	m.cursor = min(m.cursor, max(len(m.matches)-1, 0))
	m.scroll()
}

func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.matches)-1)
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *model) scroll() {
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+m.height:
		m.offset = m.cursor - m.height + 1
	}

	m.offset = max(min(m.offset, len(m.matches)-m.height), 0)
}

// recall steps through the query history; stepping past the newest entry
// clears the query.
func (m *model) recall(delta int) {
	n := m.history.Len()
	if n == 0 {
		return
	}

	m.histIdx = min(max(m.histIdx+delta, 0), n)

	query, _ := m.history.At(m.histIdx)
	m.input.SetValue(query)
	m.input.CursorEnd()

	m.cursor = 0
	m.refresh()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderMatch(m.matches[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render(fmt.Sprintf("%d/%d", len(m.matches), len(m.entries))))
	b.WriteString("\n")

	if len(m.matches) > 0 {
		if d := m.entries[m.matches[m.cursor].Index].Description; d != "" {
			b.WriteString(hintStyle.Render(firstLine(d)))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) renderMatch(match fuzzy.Match, selected bool) string {
	e := m.entries[match.Index]

	if selected {
		return selectedStyle.Render("> " + e.Key + " = " + e.Value)
	}

	var key strings.Builder

	hit := make(map[int]struct{}, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hit[i] = struct{}{}
	}

	for i, r := range e.Key {
		if _, ok := hit[i]; ok {
			key.WriteString(matchStyle.Render(string(r)))
		} else {
			key.WriteString(keyStyle.Render(string(r)))
		}
	}

	return "  " + key.String() + hintStyle.Render(" = ") + valueStyle.Render(e.Value)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}
