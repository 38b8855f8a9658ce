package emitter

import (
	"fmt"
	"strconv"

	. "github.com/dave/jennifer/jen"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/stdlib"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

// scope is where a piece of code is emitted from.
type scope struct {
	class *typechecker.Class
	// node is the innermost method, constructor or class declaration.
	node *ast.Node
	// fn is set while the body of a first-class function is emitted.
	fn          *ast.Node
	constructor bool
	returns     string
}

func (g *gen) chainTypes(sc *scope, expr *ast.Node) ([]string, error) {
	if sc.fn != nil {
		return g.session.FunctionChainTypes(g.unit, sc.fn, expr)
	}
	return g.session.ChainTypes(g.unit, sc.node, expr)
}

func (g *gen) exprType(sc *scope, expr *ast.Node) (string, error) {
	if sc.fn != nil {
		return g.session.FunctionExpressionType(g.unit, sc.fn, expr)
	}
	return g.session.ExpressionType(g.unit, sc.node, expr)
}

// isTypeName reports whether expr is nothing but the name of a type, as in
// var x: Integer.
func (g *gen) isTypeName(class *typechecker.Class, expr *ast.Node) bool {
	if !expr.Is(ast.Expression) || len(expr.Children) != 1 {
		return false
	}
	name := expr.Child(0).First(ast.ClassName)
	if name == nil {
		return false
	}
	base := ast.BaseTypeName(ast.ClassNameString(name))
	return g.session.IsKnownType(base) || class != nil && base == class.TypeParam
}

func (g *gen) body(sc *scope, body *ast.Node) []Code {
	var ret []Code
	for _, child := range body.Children {
		switch child.Rule {
		case ast.VariableDeclaration:
			ret = append(ret, g.local(sc, child)...)
		case ast.FunctionDeclaration:
			name := safe(ast.FunctionOf(child).Name)
			ret = append(ret,
				Id(name).Op(":=").Add(g.function(sc, child)),
				Id("_").Op("=").Id(name),
			)
		case ast.Statement:
			ret = append(ret, g.statement(sc, child.Child(0)))
		}
	}
	return ret
}

func (g *gen) local(sc *scope, decl *ast.Node) []Code {
	name := safe(ast.VariableName(decl))
	init := ast.VariableExpression(decl)

	var stmt *Statement
	if g.isTypeName(sc.class, init) {
		t, err := g.session.TypeOf(decl)
		if err != nil {
			g.fail(err)
			return nil
		}
		stmt = Var().Id(name).Add(g.goType(sc.class, t))
	} else {
		stmt = Id(name).Op(":=").Add(g.value(sc, init))
	}
	return []Code{stmt, Id("_").Op("=").Id(name)}
}

func (g *gen) statement(sc *scope, stmt *ast.Node) Code {
	switch stmt.Rule {
	case ast.Assignment:
		return g.assignment(sc, stmt)
	case ast.WhileLoop:
		return For(g.value(sc, stmt.Child(0))).Block(g.body(sc, stmt.Child(1))...)
	case ast.IfStatement:
		view := ast.IfStatementOf(stmt)
		s := If(g.value(sc, view.Condition)).Block(g.body(sc, view.Then)...)
		if view.Else != nil {
			s.Else().Block(g.body(sc, view.Else)...)
		}
		return s
	case ast.ReturnStatement:
		if sc.constructor {
			return Return(Id("this"))
		}
		value := stmt.Child(0)
		return Return(g.coerce(sc, value, g.value(sc, value), sc.returns))
	}
	g.fail(fmt.Errorf("emitter: unexpected %s in body", stmt.Rule))
	return Null()
}

func (g *gen) assignment(sc *scope, n *ast.Node) Code {
	name := ast.AssignmentTarget(n)
	value := ast.AssignmentValue(n)
	from := sc.node
	if n.Value == "this" {
		from = sc.class.Node
	}

	b, ok := g.session.Lookup(g.unit, from, name)
	if !ok {
		g.fail(fmt.Errorf("emitter: no definition for variable %s", name))
		return Null()
	}

	target := Id(safe(name))
	if b.Owner != nil {
		target = Id("this").Dot(member(b.Owner, name))
	}

	declared := ""
	switch b.Kind {
	case typechecker.ParameterBinding:
		declared = ast.ParameterType(b.Node)
	case typechecker.VariableBinding:
		t, err := g.session.TypeOf(b.Node)
		if err != nil {
			g.fail(err)
			return Null()
		}
		declared = t
	}
	return target.Op("=").Add(g.coerce(sc, value, g.value(sc, value), declared))
}

// function renders a first-class function as a func literal.
func (g *gen) function(sc *scope, fn *ast.Node) *Statement {
	view := ast.FunctionOf(fn)
	fs := &scope{class: sc.class, node: sc.node, fn: fn}
	return Func().
		Params(Id(safe(view.Param)).Add(g.goType(sc.class, view.Input))).
		Add(g.goType(sc.class, view.Output)).
		Block(Return(g.coerce(fs, view.Body, g.value(fs, view.Body), view.Output)))
}

// coerce adapts code, the rendition of expr, to the type target: numeric
// values are converted and subclasses are reached through their embedded
// parent.
func (g *gen) coerce(sc *scope, expr *ast.Node, code *Statement, target string) *Statement {
	if target == "" {
		return code
	}
	t, err := g.exprType(sc, expr)
	if err != nil {
		g.fail(err)
		return code
	}

	switch {
	case t == target:
		return code
	case isNumeric(t) && isNumeric(target):
		return g.convert(expr, code, target)
	case g.session.IsSubclass(t, target) && g.session.Class(target) != nil:
		ret := Op("&").Add(code)
		for _, ancestor := range g.session.Ancestors(t)[1:] {
			ret.Dot(ancestor.Name)
			if ancestor.Name == ast.BaseTypeName(target) {
				break
			}
		}
		return ret
	}
	return code
}

// convert turns a numeric value into target. Literals are rewritten in
// place, since Go refuses to convert a constant with a fractional part.
func (g *gen) convert(expr *ast.Node, code *Statement, target string) *Statement {
	if expr.Is(ast.Expression) && len(expr.Children) == 1 {
		if primary := expr.Child(0); primary.First(ast.ClassName) == nil {
			if lit, ok := g.literal(primary.Value, target); ok {
				return lit
			}
		}
	}
	return scalarType(target).Call(code)
}

func (g *gen) literal(text, typeName string) (*Statement, bool) {
	if typeName == typechecker.Real {
		v, err := strconv.ParseFloat(text, 64)
		return Lit(v), err == nil
	}
	if v, err := strconv.Atoi(text); err == nil {
		return Lit(v), true
	}
	v, err := strconv.ParseFloat(text, 64)
	return Lit(int(v)), err == nil
}

func (g *gen) value(sc *scope, n *ast.Node) *Statement {
	switch n.Rule {
	case ast.MathExpression:
		return g.math(sc, n)
	case ast.Expression:
		return g.expression(sc, n)
	}
	g.fail(fmt.Errorf("emitter: unexpected %s in expression", n.Rule))
	return Null()
}

func (g *gen) math(sc *scope, n *ast.Node) *Statement {
	leftNode, rightNode := n.Child(0), n.Child(2)
	left, right := g.value(sc, leftNode), g.value(sc, rightNode)

	lt, err := g.exprType(sc, leftNode)
	if err != nil {
		g.fail(err)
		return Null()
	}
	rt, err := g.exprType(sc, rightNode)
	if err != nil {
		g.fail(err)
		return Null()
	}
	if lt != rt && isNumeric(lt) && isNumeric(rt) {
		right = g.convert(rightNode, right, lt)
	}
	return binary(goOperator(n.Child(1).Value), lt == typechecker.Real, left, right)
}

func (g *gen) arguments(sc *scope, args *ast.Node) []Code {
	if args == nil {
		return nil
	}
	var ret []Code
	for _, arg := range args.Children {
		ret = append(ret, g.value(sc, arg))
	}
	return ret
}

func (g *gen) expression(sc *scope, expr *ast.Node) *Statement {
	chain, err := g.chainTypes(sc, expr)
	if err != nil {
		g.fail(err)
		return Null()
	}

	links := ast.Chain(expr)
	current := g.primary(sc, links[0], chain[0])
	for i, link := range links[1:] {
		current = g.member(sc, current, chain[i], link)
	}
	return current
}

func (g *gen) primary(sc *scope, link ast.Link, t string) *Statement {
	node := link.Node
	name := node.First(ast.ClassName)
	if name == nil {
		switch node.Value {
		case "true":
			return True()
		case "false":
			return False()
		case "this":
			return Id("this")
		}
		lit, ok := g.literal(node.Value, t)
		if !ok {
			g.fail(fmt.Errorf("emitter: invalid numeric literal %s", node.Value))
		}
		return lit
	}

	typeName := ast.ClassNameString(name)
	base := ast.BaseTypeName(typeName)

	if sc.fn != nil && base == ast.FunctionOf(sc.fn).Param && !link.IsCall() {
		return Id(safe(base))
	}
	if g.session.IsKnownType(base) {
		if link.IsCall() {
			return g.construct(sc, typeName, link.Args)
		}
		return g.static(sc.class, typeName)
	}
	if base == sc.class.TypeParam {
		return Nil()
	}
	if link.IsCall() {
		return g.call(sc, base, g.arguments(sc, link.Args))
	}

	b, ok := g.session.Lookup(g.unit, sc.node, base)
	if !ok {
		g.fail(fmt.Errorf("emitter: no definition for variable %s", base))
		return Null()
	}
	if b.Owner != nil {
		return Id("this").Dot(member(b.Owner, base))
	}
	return Id(safe(base))
}

// static is a type name used as a value: the zero value of scalars and a
// throwaway instance of classes, whose members can then be reached.
func (g *gen) static(class *typechecker.Class, typeName string) *Statement {
	base := ast.BaseTypeName(typeName)
	switch {
	case base == typechecker.Integer:
		return Lit(0)
	case base == typechecker.Real:
		return Lit(0.0)
	case base == typechecker.Boolean:
		return False()
	case base == typechecker.Array:
		return Nil()
	}
	target := g.session.Class(base)
	if target == nil {
		return Nil()
	}
	return Parens(Op("&").Add(g.classRef(target)).Values())
}

func (g *gen) construct(sc *scope, typeName string, argsNode *ast.Node) *Statement {
	base := ast.BaseTypeName(typeName)
	args := g.arguments(sc, argsNode)

	switch {
	case stdlib.IsScalar(base):
		if len(args) == 0 {
			return g.static(sc.class, typeName)
		}
		return scalarType(base).Call(args[0])
	case base == typechecker.Array:
		if len(args) == 0 {
			return g.goType(sc.class, typeName).Values()
		}
		return Make(g.goType(sc.class, typeName), args[0])
	}

	class := g.session.Class(base)
	if class == nil {
		g.fail(fmt.Errorf("emitter: no definition for type %s", base))
		return Null()
	}
	if len(class.Constructors) == 0 {
		return g.qualify(class, constructorName(class, nil)).Call()
	}
	return g.qualify(class, constructorName(class, constructorFor(class, len(args)))).Call(args...)
}

// call renders name(args...) without a receiver: a method of the enclosing
// class hierarchy or a first-class function in scope.
func (g *gen) call(sc *scope, name string, args []Code) *Statement {
	if owner, method := g.session.FindMethod(sc.class.Name, name); method != nil {
		return Id("this").Dot(member(owner, name)).Call(args...)
	}
	if b, ok := g.session.Lookup(g.unit, sc.node, name); ok && b.Kind == typechecker.FunctionBinding {
		if b.Owner != nil {
			return Id("this").Dot(member(b.Owner, name)).Call(args...)
		}
		return Id(safe(name)).Call(args...)
	}
	g.fail(fmt.Errorf("emitter: no definition for method %s", name))
	return Null()
}

func (g *gen) member(sc *scope, recv *Statement, recvType string, link ast.Link) *Statement {
	name := link.Node.Value

	if stdlib.IsScalar(recvType) {
		return g.scalarMember(sc, recv, ast.BaseTypeName(recvType), link)
	}

	var args []Code
	if link.IsCall() {
		args = g.arguments(sc, link.Args)
	}
	if owner, method := g.session.FindMethod(recvType, name); method != nil {
		return recv.Dot(member(owner, name)).Call(args...)
	}
	if owner, fn := g.session.FindFunction(recvType, name); fn != nil {
		recv.Dot(member(owner, name))
		if link.IsCall() {
			recv.Call(args...)
		}
		return recv
	}
	if owner, field := g.session.FindField(recvType, name); field != nil {
		return recv.Dot(member(owner, name))
	}
	g.fail(fmt.Errorf("emitter: no member %s of %s", name, recvType))
	return Null()
}

func (g *gen) scalarMember(sc *scope, recv *Statement, recvType string, link ast.Link) *Statement {
	name := link.Node.Value
	class := g.session.Class(recvType)
	if class != nil && !link.IsCall() {
		if _, ok := class.Fields[name]; ok {
			return scalarType(recvType).Call(g.qualify(class, class.Name+exported(name)))
		}
	}

	var args []Code
	if link.IsCall() {
		for _, arg := range link.Args.Children {
			code := g.value(sc, arg)
			if t, err := g.exprType(sc, arg); err == nil && t != recvType && isNumeric(t) && isNumeric(recvType) {
				code = g.convert(arg, code, recvType)
			}
			args = append(args, code)
		}
	}

	ret, ok := scalarMethod(recvType, name, recv, args)
	if !ok {
		g.fail(fmt.Errorf("emitter: no Go rendition for %s.%s", recvType, name))
		return Null()
	}
	return ret
}
