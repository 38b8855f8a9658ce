package emitter

import (
	"fmt"
	"strconv"

	. "github.com/dave/jennifer/jen"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/stdlib"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

func (g *gen) class(f *File, class *typechecker.Class) {
	var fields []Code
	if parent := g.session.Class(class.Parent); parent != nil {
		fields = append(fields, g.classRef(parent))
	}
	for _, decl := range ast.Members(class.Node, ast.VariableDeclaration) {
		t, err := g.session.TypeOf(decl)
		if err != nil {
			g.fail(err)
			continue
		}
		fields = append(fields, Id(member(class, ast.VariableName(decl))).Add(g.goType(class, t)))
	}
	for _, fn := range ast.Members(class.Node, ast.FunctionDeclaration) {
		view := ast.FunctionOf(fn)
		fields = append(fields, Id(member(class, view.Name)).Add(g.funcType(class, view)))
	}
	f.Type().Id(class.Name).Struct(fields...)

	if len(class.Constructors) == 0 {
		g.constructor(f, class, nil)
	}
	for _, ctor := range class.Constructors {
		g.constructor(f, class, ctor)
	}
	for _, method := range ast.Members(class.Node, ast.MethodDeclaration) {
		g.method(f, class, method)
	}
}

func (g *gen) funcType(class *typechecker.Class, view ast.FunctionView) *Statement {
	return Func().Params(g.goType(class, view.Input)).Add(g.goType(class, view.Output))
}

// constructorName is New<Class>, suffixed with the arity when the class has
// several constructors, and with the declaration index when arities clash.
func constructorName(class *typechecker.Class, ctor *ast.Node) string {
	name := "New" + class.Name
	if len(class.Constructors) <= 1 || ctor == nil {
		return name
	}

	arity := len(ast.MethodParameters(ctor))
	same, index := 0, 0
	for i, c := range class.Constructors {
		if len(ast.MethodParameters(c)) == arity {
			same++
		}
		if c == ctor {
			index = i
		}
	}
	name += strconv.Itoa(arity)
	if same > 1 {
		name += "_" + strconv.Itoa(index)
	}
	return name
}

// constructorFor picks the constructor a call with argc arguments reaches.
func constructorFor(class *typechecker.Class, argc int) *ast.Node {
	for _, ctor := range class.Constructors {
		if len(ast.MethodParameters(ctor)) == argc {
			return ctor
		}
	}
	return nil
}

func (g *gen) params(class *typechecker.Class, callable *ast.Node) []Code {
	var ret []Code
	for _, param := range ast.MethodParameters(callable) {
		ret = append(ret, Id(safe(ast.ParameterName(param))).Add(g.goType(class, ast.ParameterType(param))))
	}
	return ret
}

func (g *gen) constructor(f *File, class *typechecker.Class, ctor *ast.Node) {
	body := []Code{
		Id("this").Op(":=").Op("&").Id(class.Name).Values(),
	}
	body = append(body, g.initializers(class)...)

	var params []Code
	if ctor != nil {
		params = g.params(class, ctor)
		sc := &scope{class: class, node: ctor, constructor: true}
		body = append(body, g.body(sc, ast.MethodBody(ctor))...)
	}
	body = append(body, Return(Id("this")))

	f.Func().Id(constructorName(class, ctor)).Params(params...).Op("*").Id(class.Name).Block(body...)
}

// initializers set up the parent part, the fields and the function members
// of a freshly allocated this.
func (g *gen) initializers(class *typechecker.Class) []Code {
	var ret []Code
	sc := &scope{class: class, node: class.Node}

	parent := g.session.Class(class.Parent)
	if parent != nil && !stdlib.IsScalar(parent.Name) && (len(parent.Constructors) == 0 || constructorFor(parent, 0) != nil) {
		ctor := g.qualify(parent, constructorName(parent, constructorFor(parent, 0)))
		ret = append(ret, Id("this").Dot(parent.Name).Op("=").Op("*").Add(ctor).Call())
	}

	for _, decl := range ast.Members(class.Node, ast.VariableDeclaration) {
		init := ast.VariableExpression(decl)
		if g.isTypeName(class, init) {
			continue
		}
		ret = append(ret, Id("this").Dot(member(class, ast.VariableName(decl))).Op("=").Add(g.value(sc, init)))
	}
	for _, fn := range ast.Members(class.Node, ast.FunctionDeclaration) {
		ret = append(ret, Id("this").Dot(member(class, ast.FunctionOf(fn).Name)).Op("=").Add(g.function(sc, fn)))
	}
	return ret
}

func (g *gen) method(f *File, class *typechecker.Class, method *ast.Node) {
	ret, err := g.session.ReturnTypeOf(method)
	if err != nil {
		g.fail(err)
		return
	}

	sc := &scope{class: class, node: method, returns: ret}
	body := g.body(sc, ast.MethodBody(method))
	if ret != "" && !terminates(ast.MethodBody(method)) {
		body = append(body, Panic(Lit(fmt.Sprintf("%s.%s: missing return", class.Name, ast.MethodName(method)))))
	}

	decl := f.Func().Params(Id("this").Op("*").Id(class.Name)).Id(member(class, ast.MethodName(method))).Params(g.params(class, method)...)
	if ret != "" {
		decl.Add(g.goType(class, ret))
	}
	decl.Block(body...)
}

// terminates reports whether the last statement of body ends every path
// with a return.
func terminates(body *ast.Node) bool {
	last := body.Child(len(body.Children) - 1)
	if !last.Is(ast.Statement) {
		return false
	}
	stmt := last.Child(0)
	switch stmt.Rule {
	case ast.ReturnStatement:
		return true
	case ast.IfStatement:
		view := ast.IfStatementOf(stmt)
		return view.Else != nil && terminates(view.Then) && terminates(view.Else)
	}
	return false
}

// scalarClass emits a library scalar class as a named Go type whose methods
// are implemented with Go operators.
func (g *gen) scalarClass(f *File, class *typechecker.Class) {
	f.Type().Id(class.Name).Add(scalarType(class.Name))

	for _, decl := range ast.Members(class.Node, ast.VariableDeclaration) {
		t, err := g.session.TypeOf(decl)
		if err != nil {
			g.fail(err)
			continue
		}
		sc := &scope{class: class, node: class.Node}
		f.Const().Id(class.Name + exported(ast.VariableName(decl))).Id(t).Op("=").Add(g.value(sc, ast.VariableExpression(decl)))
	}

	for _, method := range ast.Members(class.Node, ast.MethodDeclaration) {
		name := ast.MethodName(method)
		ret := ast.MethodReturnType(method)

		var params, args []Code
		for _, param := range ast.MethodParameters(method) {
			p := safe(ast.ParameterName(param))
			t := ast.ParameterType(param)
			params = append(params, Id(p).Id(t))
			args = append(args, scalarType(t).Call(Id(p)))
		}

		result, ok := scalarMethod(class.Name, name, scalarType(class.Name).Call(Id("this")), args)
		if !ok {
			g.fail(fmt.Errorf("emitter: no Go rendition for %s.%s", class.Name, name))
			continue
		}

		decl := f.Func().Params(Id("this").Id(class.Name)).Id(exported(name)).Params(params...)
		if ret == "" {
			decl.Block(Id("_").Op("=").Add(result))
			continue
		}
		decl.Id(ret).Block(Return(Id(ret).Call(result)))
	}
}
