package config

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// scanState is the tokenizer automaton state.
type scanState int

const (
	stateAwaitingLine scanState = iota
	stateScanningLeft
	stateScanningOperator
	stateScanningRight
)

func (s scanState) String() string {
	switch s {
	case stateAwaitingLine:
		return "AwaitingLine"
	case stateScanningLeft:
		return "ScanningLeft"
	case stateScanningOperator:
		return "ScanningOperator"
	case stateScanningRight:
		return "ScanningRight"
	default:
		return "Unknown"
	}
}

// step is the tokenizer transition function. Given the current state and the
// unconsumed remainder of the current line, it returns the next state, the new
// remainder, and the token produced.
//
// step never reads input; stateAwaitingLine with a non-empty buffer is treated
// as stateScanningLeft, which is how [Scanner] feeds a freshly read line.
func step(state scanState, buf string) (scanState, string, Token) {
	if buf == "" &&
		(state == stateScanningLeft || state == stateScanningOperator) {
		return stateAwaitingLine, "", Token{Kind: KindEOL}
	}

	switch state {
	case stateAwaitingLine, stateScanningLeft:
		idx := strings.IndexAny(buf, " \t=")
		if idx < 0 {
			idx = len(buf)
		}

		// Keep ":=" together instead of ending the word at ':'.
		if idx > 1 && idx < len(buf) && buf[idx-1] == ':' && buf[idx] == '=' {
			idx--
		}

		tok := Token{Kind: KindLHS, Text: buf[:idx]}
		rest := trimLeft(buf[idx:])

		if rest == "" || !isAlnum(rest[0]) {
			return stateScanningOperator, rest, tok
		}

		return stateScanningLeft, rest, tok

	case stateScanningOperator:
		var (
			tok Token
			n   int
		)

		switch buf[0] {
		case ':':
			tok, n = Token{Kind: KindAssign, Text: OpDefine}, len(OpDefine)
		case '=':
			tok, n = Token{Kind: KindAssign, Text: OpAssign}, len(OpAssign)
		default:
			n = strings.IndexAny(buf, " \t")
			if n < 0 {
				n = len(buf)
			}

			tok = Token{Kind: KindLHS, Text: buf[:n]}
		}

		n = min(n, len(buf))

		return stateScanningRight, trimLeft(buf[n:]), tok

	case stateScanningRight:
		return stateAwaitingLine, "", Token{Kind: KindRHS, Text: buf}
	}

	return stateAwaitingLine, "", Token{Kind: KindEOF}
}

// Scanner converts a stream of configuration text into tokens.
//
// It combines the line reader, which strips comments and blank lines and
// counts physical lines, with the tokenizer automaton implemented by [step].
type Scanner struct {
	reader  *bufio.Reader
	state   scanState
	buf     string
	line    int
	lastRaw string
	eof     bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{reader: bufio.NewReader(r)}
}

// Line returns the 1-based number of the last physical line read.
func (s *Scanner) Line() int { return s.line }

// LastLine returns the last physical line read, before trimming and comment
// removal.
func (s *Scanner) LastLine() string { return s.lastRaw }

// Rest returns the unconsumed remainder of the current line.
func (s *Scanner) Rest() string { return s.buf }

// Flush discards the remainder of the current line so that the next call to
// [Scanner.Next] starts on a new line.
func (s *Scanner) Flush() {
	s.state = stateAwaitingLine
	s.buf = ""
}

// Next returns the next token. After [KindEOF] is returned, every further
// call returns [KindEOF] again. A read error other than io.EOF is returned
// with a [KindEOF] token.
func (s *Scanner) Next() (Token, error) {
	if s.state == stateAwaitingLine {
		line, ok, err := s.ReadLine()
		if err != nil {
			return Token{Kind: KindEOF}, err
		}

		if !ok {
			s.Flush()

			return Token{Kind: KindEOF}, nil
		}

		s.buf = line
		s.state = stateScanningLeft
	}

	var tok Token

	s.state, s.buf, tok = step(s.state, s.buf)

	return tok, nil
}

// ReadLine returns the next line with content. Leading and trailing
// whitespace and comments are removed; lines left empty are skipped. The line
// counter is advanced for every physical line consumed.
func (s *Scanner) ReadLine() (string, bool, error) {
	for !s.eof {
		raw, err := s.reader.ReadString('\n')
		if err == io.EOF {
			s.eof = true

			if raw == "" {
				break
			}
		} else if err != nil {
			return "", false, err
		}

		s.line++
		s.lastRaw = strings.TrimRight(raw, "\r\n")

		line := stripComment(strings.TrimSpace(s.lastRaw))
		if line == "" {
			continue
		}

		return line, true, nil
	}

	return "", false, nil
}

// stripComment truncates s at the first '#' not preceded by a backslash and
// trims the result. Escaped "\#" sequences become a literal '#'.
func stripComment(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '#' {
			sb.WriteByte('#')
			i++

			continue
		}

		if s[i] == '#' {
			break
		}

		sb.WriteByte(s[i])
	}

	return strings.TrimSpace(sb.String())
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
