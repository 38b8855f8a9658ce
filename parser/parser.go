package parser

import (
	"fmt"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/Maxkoz777/OJavaTranspiler/types"
)

// binaryOperators are the lexemes an OPERATION node may carry.
var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"=": true, "==": true, "/=": true,
	"and": true, "or": true, "xor": true,
}

// Failure is the result of a production that could not match. It is plain
// data: the caller restores the cursor and tries its next alternative.
type Failure struct {
	Expected string
	Got      types.Token
	EOF      bool

	pos int
}

func (f *Failure) String() string {
	if f.EOF {
		return fmt.Sprintf("expected %s at end of input", f.Expected)
	}
	return fmt.Sprintf("expected %s, got %s", f.Expected, f.Got)
}

type production func(parent *ast.Node) *Failure

type mark struct {
	pos      int
	children int
}

type Parser struct {
	tokens   []types.Token
	pos      int
	filename string
	furthest *Failure
}

func NewParser(tokens []types.Token, filename string) *Parser {
	return &Parser{
		tokens:   tokens,
		filename: filename,
	}
}

// Parse reduces the whole token stream to one or more class declarations.
func (p *Parser) Parse() (*ast.Tree, error) {
	tree := ast.NewTree(p.filename)

	for {
		if _, ok := p.peek(); !ok {
			break
		}
		if f := p.classDeclaration(tree.Root); f != nil {
			return nil, p.syntaxError()
		}
	}

	if len(tree.Root.Children) == 0 {
		p.fail("'class'")
		return nil, p.syntaxError()
	}

	tree.ClassName, _ = ast.ClassSignature(ast.MainClass(tree))
	return tree, nil
}

// Furthest is the failure that got deepest into the token stream, if any.
func (p *Parser) Furthest() *Failure {
	return p.furthest
}

func (p *Parser) syntaxError() error {
	f := p.furthest
	err := errors.SyntaxError{
		Expected: f.Expected,
		Got:      f.Got.Lexeme,
		EOF:      f.EOF,
		Location: f.Got.Location,
	}
	if f.EOF && len(p.tokens) > 0 {
		err.Location = p.tokens[len(p.tokens)-1].Location
	}
	return err
}

func (p *Parser) save(parent *ast.Node) mark {
	return mark{p.pos, len(parent.Children)}
}

func (p *Parser) restore(parent *ast.Node, m mark) {
	p.pos = m.pos
	parent.Truncate(m.children)
}

func (p *Parser) skipSeparators() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == types.DECLARATION_SEPARATOR {
		p.pos++
	}
}

func (p *Parser) peek() (types.Token, bool) {
	p.skipSeparators()
	if p.pos >= len(p.tokens) {
		return types.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) peekIs(lexeme string) bool {
	tok, ok := p.peek()
	return ok && tok.Kind != types.IDENTIFIER && tok.Kind != types.LITERAL && tok.Lexeme == lexeme
}

// raw returns the token right after the current one, separators included.
func (p *Parser) raw(offset int) (types.Token, bool) {
	if p.pos+offset >= len(p.tokens) {
		return types.Token{}, false
	}
	return p.tokens[p.pos+offset], true
}

func (p *Parser) fail(expected string) *Failure {
	tok, ok := p.peek()
	f := &Failure{Expected: expected, Got: tok, EOF: !ok, pos: p.pos}
	if p.furthest == nil || f.pos >= p.furthest.pos {
		p.furthest = f
	}
	return f
}

// node runs build against a fresh child of parent tagged with rule, and
// rewinds both the cursor and parent's children when build fails.
func (p *Parser) node(parent *ast.Node, rule ast.Rule, build func(n *ast.Node) *Failure) *Failure {
	m := p.save(parent)
	tok, _ := p.peek()
	n := parent.Add(rule, "", tok.Location.From)
	if f := build(n); f != nil {
		p.restore(parent, m)
		return f
	}
	return nil
}

// alternatives tries each production in order; the first match wins.
func (p *Parser) alternatives(parent *ast.Node, prods ...production) *Failure {
	var last *Failure
	for _, prod := range prods {
		m := p.save(parent)
		if last = prod(parent); last == nil {
			return nil
		}
		p.restore(parent, m)
	}
	return last
}

func (p *Parser) expect(lexeme string) *Failure {
	if !p.peekIs(lexeme) {
		return p.fail(fmt.Sprintf("'%s'", lexeme))
	}
	p.pos++
	return nil
}

func (p *Parser) optional(lexeme string) bool {
	if !p.peekIs(lexeme) {
		return false
	}
	p.pos++
	return true
}

// expectCompound accepts a two-character operator either as one token or as
// two adjacent single-character operator tokens.
func (p *Parser) expectCompound(op string) *Failure {
	if p.optional(op) {
		return nil
	}
	first, ok := p.peek()
	second, ok2 := p.raw(1)
	if ok && ok2 &&
		first.Kind == types.OPERATOR && second.Kind == types.OPERATOR &&
		first.Lexeme+second.Lexeme == op {
		p.pos += 2
		return nil
	}
	return p.fail(fmt.Sprintf("'%s'", op))
}

func (p *Parser) identifier(parent *ast.Node) *Failure {
	tok, ok := p.peek()
	if !ok || tok.Kind != types.IDENTIFIER {
		return p.fail("identifier")
	}
	p.pos++
	parent.Add(ast.Identifier, tok.Lexeme, tok.Location.From)
	return nil
}

// classDeclaration := 'class' className ('extends' className)? 'is' memberDeclaration* 'end'
func (p *Parser) classDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.ClassDeclaration, func(n *ast.Node) *Failure {
		if f := p.expect("class"); f != nil {
			return f
		}
		if f := p.className(n, true); f != nil {
			return f
		}
		if p.optional("extends") {
			if f := p.className(n, true); f != nil {
				return f
			}
		}
		if f := p.expect("is"); f != nil {
			return f
		}
		for p.memberDeclaration(n) == nil {
		}
		return p.expect("end")
	})
}

// className := identifier ('[' className ']')?
func (p *Parser) className(parent *ast.Node, allowNested bool) *Failure {
	return p.node(parent, ast.ClassName, func(n *ast.Node) *Failure {
		if f := p.identifier(n); f != nil {
			return f
		}
		if !allowNested || !p.optional("[") {
			return nil
		}
		if f := p.className(n, false); f != nil {
			return f
		}
		return p.expect("]")
	})
}

func (p *Parser) memberDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.MemberDeclaration, func(n *ast.Node) *Failure {
		return p.alternatives(n,
			p.variableDeclaration,
			p.methodDeclaration,
			p.constructorDeclaration,
			p.classDeclaration,
			p.functionDeclaration,
		)
	})
}

// variableDeclaration := 'var' identifier ':' value
func (p *Parser) variableDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.VariableDeclaration, func(n *ast.Node) *Failure {
		if f := p.expect("var"); f != nil {
			return f
		}
		if f := p.identifier(n); f != nil {
			return f
		}
		if f := p.expect(":"); f != nil {
			return f
		}
		return p.value(n)
	})
}

// methodDeclaration := 'method' identifier parameters? (':' className)? 'is' body 'end'
func (p *Parser) methodDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.MethodDeclaration, func(n *ast.Node) *Failure {
		if f := p.expect("method"); f != nil {
			return f
		}
		if f := p.identifier(n); f != nil {
			return f
		}
		if p.peekIs("(") {
			if f := p.parameters(n); f != nil {
				return f
			}
		}
		if p.optional(":") {
			if f := p.className(n, true); f != nil {
				return f
			}
		}
		if f := p.expect("is"); f != nil {
			return f
		}
		p.body(n)
		return p.expect("end")
	})
}

// constructorDeclaration := 'this' parameters? 'is' body 'end'
func (p *Parser) constructorDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.ConstructorDeclaration, func(n *ast.Node) *Failure {
		if f := p.expect("this"); f != nil {
			return f
		}
		if p.peekIs("(") {
			if f := p.parameters(n); f != nil {
				return f
			}
		}
		if f := p.expect("is"); f != nil {
			return f
		}
		p.body(n)
		return p.expect("end")
	})
}

// functionDeclaration := 'function' '<' identifier ',' identifier '>' identifier ':=' identifier '->' value
func (p *Parser) functionDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.FunctionDeclaration, func(n *ast.Node) *Failure {
		steps := []func() *Failure{
			func() *Failure { return p.expect("function") },
			func() *Failure { return p.expect("<") },
			func() *Failure { return p.identifier(n) },
			func() *Failure { return p.expect(",") },
			func() *Failure { return p.identifier(n) },
			func() *Failure { return p.expect(">") },
			func() *Failure { return p.identifier(n) },
			func() *Failure { return p.expectCompound(":=") },
			func() *Failure { return p.identifier(n) },
			func() *Failure { return p.expectCompound("->") },
			func() *Failure { return p.value(n) },
		}
		for _, step := range steps {
			if f := step(); f != nil {
				return f
			}
		}
		return nil
	})
}

// parameters := '(' (parameterDeclaration (',' parameterDeclaration)*)? ')'
func (p *Parser) parameters(parent *ast.Node) *Failure {
	return p.node(parent, ast.Parameters, func(n *ast.Node) *Failure {
		if f := p.expect("("); f != nil {
			return f
		}
		if p.optional(")") {
			return nil
		}
		for {
			if f := p.parameterDeclaration(n); f != nil {
				return f
			}
			if !p.optional(",") {
				break
			}
		}
		return p.expect(")")
	})
}

// parameterDeclaration := identifier ':' className
func (p *Parser) parameterDeclaration(parent *ast.Node) *Failure {
	return p.node(parent, ast.ParameterDeclaration, func(n *ast.Node) *Failure {
		if f := p.identifier(n); f != nil {
			return f
		}
		if f := p.expect(":"); f != nil {
			return f
		}
		return p.className(n, true)
	})
}

// body := (variableDeclaration | statement | functionDeclaration)*
//
// A body never fails; it stops at the first token none of its alternatives
// accept and leaves that token for the enclosing production.
func (p *Parser) body(parent *ast.Node) {
	p.node(parent, ast.Body, func(n *ast.Node) *Failure {
		for p.alternatives(n, p.variableDeclaration, p.statement, p.functionDeclaration) == nil {
		}
		return nil
	})
}

func (p *Parser) statement(parent *ast.Node) *Failure {
	return p.node(parent, ast.Statement, func(n *ast.Node) *Failure {
		return p.alternatives(n,
			p.assignment,
			p.whileLoop,
			p.ifStatement,
			p.returnStatement,
		)
	})
}

// assignment := ('this' '.')? identifier ':=' value
func (p *Parser) assignment(parent *ast.Node) *Failure {
	return p.node(parent, ast.Assignment, func(n *ast.Node) *Failure {
		if p.peekIs("this") {
			if next, ok := p.raw(1); ok && next.Lexeme == "." {
				p.pos += 2
				n.Value = "this"
			}
		}
		if f := p.identifier(n); f != nil {
			return f
		}
		if f := p.expectCompound(":="); f != nil {
			return f
		}
		return p.value(n)
	})
}

// whileLoop := 'while' value 'loop' body 'end'
func (p *Parser) whileLoop(parent *ast.Node) *Failure {
	return p.node(parent, ast.WhileLoop, func(n *ast.Node) *Failure {
		if f := p.expect("while"); f != nil {
			return f
		}
		if f := p.value(n); f != nil {
			return f
		}
		if f := p.expect("loop"); f != nil {
			return f
		}
		p.body(n)
		return p.expect("end")
	})
}

// ifStatement := 'if' value 'then' body ('else' body)? 'end'
func (p *Parser) ifStatement(parent *ast.Node) *Failure {
	return p.node(parent, ast.IfStatement, func(n *ast.Node) *Failure {
		if f := p.expect("if"); f != nil {
			return f
		}
		if f := p.value(n); f != nil {
			return f
		}
		if f := p.expect("then"); f != nil {
			return f
		}
		p.body(n)
		if p.optional("else") {
			p.body(n)
		}
		return p.expect("end")
	})
}

// returnStatement := 'return' value
func (p *Parser) returnStatement(parent *ast.Node) *Failure {
	return p.node(parent, ast.ReturnStatement, func(n *ast.Node) *Failure {
		if f := p.expect("return"); f != nil {
			return f
		}
		return p.value(n)
	})
}

// value tries a one-level math expression before a bare expression.
func (p *Parser) value(parent *ast.Node) *Failure {
	return p.alternatives(parent, p.mathExpression, p.expression)
}

// mathExpression := expression operation expression
func (p *Parser) mathExpression(parent *ast.Node) *Failure {
	return p.node(parent, ast.MathExpression, func(n *ast.Node) *Failure {
		if f := p.expression(n); f != nil {
			return f
		}
		if f := p.operation(n); f != nil {
			return f
		}
		return p.expression(n)
	})
}

// operation takes one OPERATOR token, and a second adjacent one when the two
// lexemes together form a declared binary operator.
func (p *Parser) operation(parent *ast.Node) *Failure {
	tok, ok := p.peek()
	if !ok || tok.Kind != types.OPERATOR {
		return p.fail("operator")
	}

	lexeme, width := tok.Lexeme, 1
	if next, ok := p.raw(1); ok && next.Kind == types.OPERATOR && binaryOperators[lexeme+next.Lexeme] {
		lexeme, width = lexeme+next.Lexeme, 2
	}
	if !binaryOperators[lexeme] {
		return p.fail("operator")
	}

	p.pos += width
	parent.Add(ast.Operation, lexeme, tok.Location.From)
	return nil
}

// expression := primary arguments? ('.' identifier arguments?)*
func (p *Parser) expression(parent *ast.Node) *Failure {
	return p.node(parent, ast.Expression, func(n *ast.Node) *Failure {
		if f := p.primary(n); f != nil {
			return f
		}
		if p.peekIs("(") {
			if f := p.arguments(n); f != nil {
				return f
			}
		}
		for p.optional(".") {
			if f := p.identifier(n); f != nil {
				return f
			}
			if p.peekIs("(") {
				if f := p.arguments(n); f != nil {
					return f
				}
			}
		}
		return nil
	})
}

// arguments := '(' (value (',' value)*)? ')'
func (p *Parser) arguments(parent *ast.Node) *Failure {
	return p.node(parent, ast.Arguments, func(n *ast.Node) *Failure {
		if f := p.expect("("); f != nil {
			return f
		}
		if p.optional(")") {
			return nil
		}
		for {
			if f := p.value(n); f != nil {
				return f
			}
			if !p.optional(",") {
				break
			}
		}
		return p.expect(")")
	})
}

// primary := literal | '-' literal | 'true' | 'false' | 'this' | className
func (p *Parser) primary(parent *ast.Node) *Failure {
	return p.node(parent, ast.Primary, func(n *ast.Node) *Failure {
		tok, ok := p.peek()
		if !ok {
			return p.fail("expression")
		}

		switch {
		case tok.Kind == types.LITERAL:
			p.pos++
			n.Value = tok.Lexeme
			return nil
		case tok.Kind == types.OPERATOR && tok.Lexeme == "-":
			if next, ok := p.raw(1); ok && next.Kind == types.LITERAL {
				p.pos += 2
				n.Value = "-" + next.Lexeme
				return nil
			}
			return p.fail("expression")
		case tok.Kind == types.KEYWORD:
			switch tok.Lexeme {
			case "true", "false", "this":
				p.pos++
				n.Value = tok.Lexeme
				return nil
			}
			return p.fail("expression")
		}

		return p.className(n, true)
	})
}

func Parse(tokens []types.Token, filename string) (*ast.Tree, error) {
	return NewParser(tokens, filename).Parse()
}
