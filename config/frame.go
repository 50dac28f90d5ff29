package config

import "strings"

// frame records an open block.
type frame struct {
	name  string // block name
	file  string // file containing the block statement
	line  int    // line of the block statement
	saved string // prefix in effect before the block
}

// blockStack tracks nested blocks and the key prefix they produce.
type blockStack struct {
	sep    string
	prefix string
	frames []frame
}

func newBlockStack(sep string) *blockStack {
	return &blockStack{sep: sep}
}

// push opens a block and extends the prefix with name and the separator.
func (s *blockStack) push(name, file string, line int) {
	s.frames = append(s.frames, frame{
		name:  name,
		file:  file,
		line:  line,
		saved: s.prefix,
	})
	s.prefix += name + s.sep
}

// pop closes the innermost block and restores the prefix saved when it was
// opened. It reports false if no block is open.
func (s *blockStack) pop() (frame, bool) {
	if len(s.frames) == 0 {
		return frame{}, false
	}

	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.prefix = f.saved

	return f, true
}

// qualify returns key prefixed by every open block.
func (s *blockStack) qualify(key string) string { return s.prefix + key }

func (s *blockStack) depth() int { return len(s.frames) }

// path returns the open block names joined by the separator.
func (s *blockStack) path() string {
	return strings.TrimSuffix(s.prefix, s.sep)
}
