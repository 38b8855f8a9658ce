package errors

import (
	"errors"
	"fmt"

	"github.com/Maxkoz777/OJavaTranspiler/types"
)

// ErrNotSealed is returned when the global check is requested before every
// expected unit has been registered.
var ErrNotSealed = errors.New("session is still collecting units")

// ErrSealed is returned when a unit is registered after the session was sealed.
var ErrSealed = errors.New("session is sealed, no more units can be registered")

type LexicalError struct {
	Lexeme   string
	Location types.Span
}

func (e LexicalError) Error() string {
	return fmt.Sprintf("Lexeme '%s' is invalid. %s", e.Lexeme, e.Location)
}

type SyntaxError struct {
	Expected string
	Got      string
	EOF      bool
	Location types.Span
}

func (e SyntaxError) Error() string {
	if e.EOF {
		return fmt.Sprintf("unexpected end of input, expected %s. %s", e.Expected, e.Location)
	}
	return fmt.Sprintf("expected %s, got '%s'. %s", e.Expected, e.Got, e.Location)
}

type SemanticError struct {
	Msg      string
	Unit     string
	Location types.Span
}

func (e SemanticError) Error() string {
	if e.Unit == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s. %s", e.Msg, e.Location)
}

func Semantic(format string, args ...interface{}) SemanticError {
	return SemanticError{Msg: fmt.Sprintf(format, args...)}
}
