package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	KEYWORD TokenKind = iota
	OPERATOR
	IDENTIFIER
	LITERAL
	DECLARATION_SEPARATOR
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		KEYWORD:               "KEYWORD",
		OPERATOR:              "OPERATOR",
		IDENTIFIER:            "IDENTIFIER",
		LITERAL:               "LITERAL",
		DECLARATION_SEPARATOR: "DECLARATION_SEPARATOR",
	}
	return data[t]
}

func (t TokenKind) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// WordSpan covers a word of n characters starting at p.
func WordSpan(p Position, n int) Span {
	to := p
	if n > 0 {
		to.Column += n - 1
	}
	return Span{p, to}
}

// Token is immutable once produced by the lexer.
type Token struct {
	Kind     TokenKind
	Lexeme   string
	Location Span
}

func (t Token) String() string {
	if t.Kind == DECLARATION_SEPARATOR && t.Lexeme == "\n" {
		return fmt.Sprintf("%s(\\n)", t.Kind)
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
}
