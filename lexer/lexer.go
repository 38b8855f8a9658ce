package lexer

import (
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/Maxkoz777/OJavaTranspiler/types"
)

var declarationSeparators = []string{";", "\n"}

// Operators is ordered: word operators first, then symbolic operators with
// the longer lexemes ahead of their prefixes.
var Operators = []string{
	"and", "or", "xor", "not",
	":=", "<=", ">=", "/=", "==", "->",
	"<", ">", "=", "*", "/", "%", "+", "-",
	"[", "]", "(", ")", ":", ",", ".",
}

var Keywords = []string{
	"var", "is", "type", "end",
	"array", "if", "then", "else", "size", "true", "false", "for",
	"in", "loop", "return", "while",
	"class", "method", "extends", "this", "function",
}

var (
	identifierPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)
	integerPattern     = regexp.MustCompile(`^[0-9]+$`)
	realLiteralPattern = regexp.MustCompile(`^([0-9]+\.[0-9]*|\.[0-9]+)$`)
)

type word struct {
	text string
	pos  types.Position
}

type Lexer struct {
	reader   io.Reader
	filename string
	words    []word
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		reader:   reader,
		filename: filename,
	}
}

// Tokenize is a shorthand for lexing an in-memory program.
func Tokenize(program string, filename string) ([]types.Token, error) {
	return NewLexer(strings.NewReader(program), filename).Tokenize()
}

func (l *Lexer) Tokenize() ([]types.Token, error) {
	data, err := io.ReadAll(l.reader)
	if err != nil {
		return nil, err
	}

	l.words = l.split(string(data))
	l.separateDeclarations()

	for _, operator := range Operators {
		l.separateOperator(operator)
	}

	return l.convert()
}

func (l *Lexer) split(program string) []word {
	program = strings.ReplaceAll(program, "\r\n", "\n")

	var (
		words   []word
		current strings.Builder
		start   types.Position
		pos     = types.Position{Line: 1, Column: 0, Filename: l.filename}
	)

	flush := func() {
		if current.Len() > 0 {
			words = append(words, word{current.String(), start})
			current.Reset()
		}
	}

	for _, r := range program {
		pos.Column++

		switch {
		case r == '\n':
			flush()
			words = append(words, word{"\n", pos})
			pos.Line++
			pos.Column = 0
		case unicode.IsSpace(r):
			flush()
		default:
			if current.Len() == 0 {
				start = pos
			}
			current.WriteRune(r)
		}
	}
	flush()

	return words
}

func (l *Lexer) separateDeclarations() {
	for i := 0; i < len(l.words); i++ {
		w := l.words[i]
		if len(w.text) <= 1 {
			continue
		}

		index := separatorIndex(w.text)
		if index == -1 {
			continue
		}

		l.splitAt(i, index, 1)
	}

	l.removeBlank()
}

func separatorIndex(text string) int {
	index := -1
	for _, separator := range declarationSeparators {
		at := strings.Index(text, separator)
		if at == -1 {
			continue
		}
		if index != -1 && at > index {
			continue
		}
		index = at
	}
	return index
}

func (l *Lexer) separateOperator(operator string) {
	if !isSymbolic(operator) {
		return
	}

	for i := 0; i < len(l.words); i++ {
		text := l.words[i].text
		if isLiteral(text) || isOperator(text) {
			continue
		}

		index := strings.Index(text, operator)
		if index == -1 {
			continue
		}

		l.splitAt(i, index, len(operator))
	}

	l.removeBlank()
}

// splitAt replaces words[i] with left, middle and right parts, the middle
// being n bytes long starting at index.
func (l *Lexer) splitAt(i, index, n int) {
	w := l.words[i]
	at := func(offset int) types.Position {
		p := w.pos
		p.Column += offset
		return p
	}

	parts := []word{
		{w.text[:index], w.pos},
		{w.text[index : index+n], at(index)},
		{w.text[index+n:], at(index + n)},
	}

	rest := append([]word{}, l.words[i+1:]...)
	l.words = append(append(l.words[:i], parts...), rest...)
}

func (l *Lexer) removeBlank() {
	kept := l.words[:0]
	for _, w := range l.words {
		if w.text != "" {
			kept = append(kept, w)
		}
	}
	l.words = kept
}

func (l *Lexer) convert() ([]types.Token, error) {
	tokens := make([]types.Token, 0, len(l.words))
	for _, w := range l.words {
		token, err := resolveToken(w)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func resolveToken(w word) (types.Token, error) {
	kinded := func(kind types.TokenKind) types.Token {
		return types.Token{
			Kind:     kind,
			Lexeme:   w.text,
			Location: types.WordSpan(w.pos, len(w.text)),
		}
	}

	switch {
	case contains(Keywords, w.text):
		return kinded(types.KEYWORD), nil
	case isOperator(w.text):
		return kinded(types.OPERATOR), nil
	case contains(declarationSeparators, w.text):
		return kinded(types.DECLARATION_SEPARATOR), nil
	case identifierPattern.MatchString(w.text):
		return kinded(types.IDENTIFIER), nil
	case isLiteral(w.text):
		return kinded(types.LITERAL), nil
	}

	return types.Token{}, errors.LexicalError{
		Lexeme:   w.text,
		Location: types.WordSpan(w.pos, len(w.text)),
	}
}

func isSymbolic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isOperator(s string) bool {
	return contains(Operators, s)
}

// IsOperator reports whether s is a declared operator lexeme.
func IsOperator(s string) bool {
	return isOperator(s)
}

func isLiteral(s string) bool {
	return integerPattern.MatchString(s) || realLiteralPattern.MatchString(s)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
