package config

import "strconv"

// Kind identifies the syntactic class of a [Token].
type Kind int

const (
	// KindLHS is an identifier-like word preceding an operator.
	KindLHS Kind = iota + 1
	// KindAssign is one of the assignment operators "=" or ":=".
	KindAssign
	// KindRHS is the remainder of a line following an operator.
	KindRHS
	// KindEOL marks the end of a statement that had no right-hand side.
	KindEOL
	// KindEOF marks the end of the input stream.
	KindEOF
)

// String returns the name of the token kind.
func (k Kind) String() string {
	switch k {
	case KindLHS:
		return "LHS"
	case KindAssign:
		return "ASSIGN"
	case KindRHS:
		return "RHS"
	case KindEOL:
		return "EOL"
	case KindEOF:
		return "EOF"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a single lexical unit produced by [Scanner.Next].
type Token struct {
	Kind Kind
	Text string
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}

	return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")"
}

// Operators recognized by the tokenizer.
const (
	OpAssign = "="
	OpDefine = ":="
)

// Keywords recognized at the start of a statement.
const (
	keywordInclude      = "include"
	keywordBlock        = "block"
	keywordEndBlock     = "endblock"
	keywordRelativePath = "relativepath"
)

var keywords = []string{
	keywordInclude,
	keywordBlock,
	keywordEndBlock,
	keywordRelativePath,
}
