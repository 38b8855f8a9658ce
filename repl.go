package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/repr"
	"github.com/peterh/liner"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/driver"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/parser"
)

const (
	promptMain = "ojava> "
	promptCont = "...... "
)

type replCommand struct {
	Quit   bool       `":" ( @"quit"`
	Reset  bool       `    | @"reset"`
	Tokens bool       `    | @"tokens"`
	AST    bool       `    | @"ast"`
	Check  bool       `    | @"check"`
	Load   *string    `    | "load" @String`
	Type   *typeQuery `    | "type" @@ )`
}

type typeQuery struct {
	Class string `@Ident`
	Name  string `@Ident`
}

var commandParser = participle.MustBuild(&replCommand{})

func parseCommand(line string) (*replCommand, error) {
	cmd := &replCommand{}
	if err := commandParser.ParseString(line, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// replState holds the units entered so far. Every accepted unit is checked
// together with the previous ones in a fresh session.
type replState struct {
	out    io.Writer
	units  []driver.Source
	result *driver.Result
	count  int
}

func newREPLState(out io.Writer) *replState {
	return &replState{out: out}
}

// incomplete reports whether src is a prefix of a class declaration that
// more lines could complete.
func incomplete(src string) bool {
	tokens, err := lexer.Tokenize(src, "repl")
	if err != nil {
		return false
	}
	_, err = parser.Parse(tokens, "repl")
	var syntax errors.SyntaxError
	return stderrors.As(err, &syntax) && syntax.EOF
}

// add registers a unit along with every unit accepted before it. A unit
// that fails is discarded.
func (r *replState) add(src driver.Source) error {
	units := append(append([]driver.Source{}, r.units...), src)
	result, err := driver.CompileSources(units, driver.Options{Stdlib: true})
	if err != nil {
		return err
	}
	r.units, r.result = units, result

	tree := result.Units[len(result.Units)-1]
	fmt.Fprintf(r.out, "registered %s\n", strings.Join(ast.ClassNames(tree), ", "))
	return nil
}

func (r *replState) enter(src string) error {
	r.count++
	return r.add(driver.Source{Filename: fmt.Sprintf("repl%d.olang", r.count), Content: src})
}

func (r *replState) last() (driver.Source, bool) {
	if len(r.units) == 0 {
		return driver.Source{}, false
	}
	return r.units[len(r.units)-1], true
}

// exec runs a meta command and reports whether the REPL should stop.
func (r *replState) exec(cmd *replCommand) (bool, error) {
	switch {
	case cmd.Quit:
		return true, nil
	case cmd.Reset:
		r.units, r.result, r.count = nil, nil, 0
		fmt.Fprintln(r.out, "reset")
	case cmd.Tokens:
		src, ok := r.last()
		if !ok {
			return false, fmt.Errorf("no units entered")
		}
		tokens, err := lexer.Tokenize(src.Content, src.Filename)
		if err != nil {
			return false, err
		}
		repr.New(r.out).Println(tokens)
	case cmd.AST:
		src, ok := r.last()
		if !ok {
			return false, fmt.Errorf("no units entered")
		}
		tree, err := driver.Load(src)
		if err != nil {
			return false, err
		}
		data, err := tree.MarshalIndent()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, string(data))
	case cmd.Check:
		if r.result == nil {
			return false, fmt.Errorf("no units entered")
		}
		fmt.Fprintf(r.out, "ok: %d units\n", len(r.result.Units))
	case cmd.Load != nil:
		data, err := ioutil.ReadFile(*cmd.Load)
		if err != nil {
			return false, err
		}
		return false, r.add(driver.Source{Filename: filepath.Base(*cmd.Load), Content: string(data)})
	case cmd.Type != nil:
		t, err := r.typeOf(cmd.Type.Class, cmd.Type.Name)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%s.%s: %s\n", cmd.Type.Class, cmd.Type.Name, t)
	}
	return false, nil
}

// typeOf resolves a field or the return type of a method.
func (r *replState) typeOf(className, name string) (string, error) {
	if r.result == nil {
		return "", fmt.Errorf("no units entered")
	}
	s := r.result.Session
	if _, field := s.FindField(className, name); field != nil {
		return s.TypeOf(field)
	}
	if _, method := s.FindMethod(className, name); method != nil {
		t, err := s.ReturnTypeOf(method)
		if t == "" && err == nil {
			t = "<none>"
		}
		return t, err
	}
	return "", fmt.Errorf("no member %s in %s", name, className)
}

// handle processes one complete input and reports whether to stop.
func (r *replState) handle(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}

	var err error
	if strings.HasPrefix(trimmed, ":") {
		var cmd *replCommand
		cmd, err = parseCommand(trimmed)
		if err == nil {
			var quit bool
			if quit, err = r.exec(cmd); quit {
				return true
			}
		}
	} else {
		err = r.enter(input)
	}
	if err != nil {
		fmt.Fprintln(r.out, err)
	}
	return false
}

// prompter reads one line of input; *liner.State is the interactive one.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readByParseProbe reads lines until they form a command or a unit that is
// not merely cut short. It reports false when input ends or fails.
func readByParseProbe(ln prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if stderrors.Is(err, io.EOF) || stderrors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") || !incomplete(src) {
			return src, true
		}
	}
}

func runREPL(out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := newREPLState(out)
	for {
		src, ok := readByParseProbe(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if r.handle(src) {
			return nil
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}
