package parser

import (
	stderrors "errors"
	"testing"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, program string) *ast.Tree {
	tokens, err := lexer.Tokenize(program, "test.olang")
	require.NoError(t, err)

	tree, err := Parse(tokens, "test.olang")
	require.NoError(t, err, program)
	return tree
}

func parseError(t *testing.T, program string) errors.SyntaxError {
	tokens, err := lexer.Tokenize(program, "test.olang")
	require.NoError(t, err)

	_, err = Parse(tokens, "test.olang")
	require.Error(t, err, program)

	var syntax errors.SyntaxError
	require.True(t, stderrors.As(err, &syntax), program)
	return syntax
}

func TestParser_SingleVariableAndMethod(t *testing.T) {
	tree := parseString(t, "class A is var i: Integer method getI is return i end end")

	assert.Equal(t, "A", tree.ClassName)
	assert.Equal(t, []ast.Rule{
		ast.Program,
		ast.ClassDeclaration,
		ast.ClassName, ast.Identifier,
		ast.MemberDeclaration,
		ast.VariableDeclaration, ast.Identifier,
		ast.Expression, ast.Primary, ast.ClassName, ast.Identifier,
		ast.MemberDeclaration,
		ast.MethodDeclaration, ast.Identifier,
		ast.Body, ast.Statement, ast.ReturnStatement,
		ast.Expression, ast.Primary, ast.ClassName, ast.Identifier,
	}, ast.PreOrderRules(tree.Root))

	class := ast.MainClass(tree)
	vars := ast.Members(class, ast.VariableDeclaration)
	require.Len(t, vars, 1)
	assert.Equal(t, "i", ast.VariableName(vars[0]))
	assert.Equal(t, "Integer", ast.ExpressionString(ast.VariableExpression(vars[0])))

	methods := ast.Members(class, ast.MethodDeclaration)
	require.Len(t, methods, 1)
	assert.Equal(t, "getI", ast.MethodName(methods[0]))
	assert.Empty(t, ast.MethodReturnType(methods[0]))
}

func TestParser_Idempotent(t *testing.T) {
	program := `class Point is
	var x: Integer
	var y: Integer
	this(a: Integer, b: Integer) is
		x := a
		y := b
	end
	method sum: Integer is
		return x.Plus(y)
	end
end`
	tokens, err := lexer.Tokenize(program, "point.olang")
	require.NoError(t, err)

	first, err := Parse(tokens, "point.olang")
	require.NoError(t, err)
	second, err := Parse(tokens, "point.olang")
	require.NoError(t, err)

	assert.Equal(t, ast.PreOrderRules(first.Root), ast.PreOrderRules(second.Root))
}

func TestParser_IfStatements(t *testing.T) {
	testData := []struct {
		Program string
		Else    bool
	}{
		{"class A is method m(a: Integer): Integer is if a < 1 then return 1 else return a end end end", true},
		{"class A is method m(a: Integer): Integer is if a < 1 then return 1 end\nreturn a end end", false},
		{"class A is method m(a: Boolean): Boolean is if a then return true else return false end end end", true},
		{"class A is method m(a: Boolean) is if a then end end end", false},
	}
	for _, data := range testData {
		tree := parseString(t, data.Program)
		ifs := ast.FindAll(tree.Root, ast.IfStatement)
		require.Len(t, ifs, 1, data.Program)

		assert.Equal(t, data.Else, ast.IsElseCondition(ifs[0]), data.Program)
		view := ast.IfStatementOf(ifs[0])
		assert.NotNil(t, view.Condition)
		assert.Equal(t, data.Else, view.Else != nil, data.Program)
	}
}

func TestParser_ConstructorAndParameters(t *testing.T) {
	tree := parseString(t, "class Point is var x: Integer\nthis(a: Integer) is x := a end end")

	ctors := ast.Members(ast.MainClass(tree), ast.ConstructorDeclaration)
	require.Len(t, ctors, 1)

	params := ast.MethodParameters(ctors[0])
	require.Len(t, params, 1)
	assert.Equal(t, "a", ast.ParameterName(params[0]))
	assert.Equal(t, "Integer", ast.ParameterType(params[0]))

	assignments := ast.FindAll(ctors[0], ast.Assignment)
	require.Len(t, assignments, 1)
	assert.Equal(t, "x", ast.AssignmentTarget(assignments[0]))
}

func TestParser_QualifiedAssignment(t *testing.T) {
	tree := parseString(t, "class P is var x: Integer\nthis(x: Integer) is this.x := x end end")

	assignments := ast.FindAll(tree.Root, ast.Assignment)
	require.Len(t, assignments, 1)
	assert.Equal(t, "this", assignments[0].Value)
	assert.Equal(t, "x", ast.AssignmentTarget(assignments[0]))
}

func TestParser_ExtendsAndGenerics(t *testing.T) {
	tree := parseString(t, "class B[T] extends A is var v: Array[Integer] end")

	class := ast.MainClass(tree)
	name, parent := ast.ClassSignature(class)
	assert.Equal(t, "B", name)
	assert.Equal(t, "A", parent)
	assert.Equal(t, "B[T]", ast.ClassNameString(class.Child(0)))

	vars := ast.Members(class, ast.VariableDeclaration)
	require.Len(t, vars, 1)
	assert.Equal(t, "Array[Integer]", ast.ExpressionString(ast.VariableExpression(vars[0])))
}

func TestParser_NestedClassAndFunction(t *testing.T) {
	tree := parseString(t, `class Outer is
	class Inner is var y: Integer end
	function<Integer, Integer> inc := x -> x.Plus(1)
end`)

	outer := ast.MainClass(tree)
	inner := ast.Members(outer, ast.ClassDeclaration)
	require.Len(t, inner, 1)
	name, _ := ast.ClassSignature(inner[0])
	assert.Equal(t, "Inner", name)
	assert.Equal(t, []string{"Outer", "Inner"}, ast.ClassNames(tree))

	functions := ast.Members(outer, ast.FunctionDeclaration)
	require.Len(t, functions, 1)
	fn := ast.FunctionOf(functions[0])
	assert.Equal(t, ast.FunctionView{
		Input:  "Integer",
		Output: "Integer",
		Name:   "inc",
		Param:  "x",
		Body:   fn.Body,
	}, fn)
	assert.Equal(t, "x.Plus(1)", ast.ExpressionString(fn.Body))
}

func TestParser_WhileLoop(t *testing.T) {
	tree := parseString(t, `class A is
	method count: Integer is
		var i: 0
		while i < 10 loop
			i := i.Plus(1)
		end
		return i
	end
end`)

	loops := ast.FindAll(tree.Root, ast.WhileLoop)
	require.Len(t, loops, 1)
	assert.Equal(t, "i < 10", ast.ExpressionString(loops[0].Child(0)))
	assert.Len(t, ast.FindAll(loops[0], ast.Assignment), 1)
}

func TestParser_Expressions(t *testing.T) {
	testData := []struct {
		Value    string
		Rendered string
		Rule     ast.Rule
	}{
		{"Point(1, 2).getX()", "Point(1, 2).getX()", ast.Expression},
		{"a.b.c", "a.b.c", ast.Expression},
		{"this.x", "this.x", ast.Expression},
		{"-5", "-5", ast.Expression},
		{"3.14", "3.14", ast.Expression},
		{"a <= b", "a <= b", ast.MathExpression},
		{"x.Plus(1) /= 3", "x.Plus(1) /= 3", ast.MathExpression},
		{"a and b", "a and b", ast.MathExpression},
		{"getI()", "getI()", ast.Expression},
	}
	for _, data := range testData {
		tree := parseString(t, "class A is var v: "+data.Value+" end")
		vars := ast.FindAll(tree.Root, ast.VariableDeclaration)
		require.Len(t, vars, 1, data.Value)

		expr := ast.VariableExpression(vars[0])
		assert.Equal(t, data.Rule, expr.Rule, data.Value)
		assert.Equal(t, data.Rendered, ast.ExpressionString(expr), data.Value)
	}
}

func TestParser_SplitOperatorsAreRejoined(t *testing.T) {
	at := func(kind types.TokenKind, lexeme string) types.Token {
		return types.Token{Kind: kind, Lexeme: lexeme}
	}
	tokens := []types.Token{
		at(types.KEYWORD, "class"), at(types.IDENTIFIER, "A"), at(types.KEYWORD, "is"),
		at(types.KEYWORD, "method"), at(types.IDENTIFIER, "m"), at(types.KEYWORD, "is"),
		at(types.IDENTIFIER, "x"), at(types.OPERATOR, ":"), at(types.OPERATOR, "="),
		at(types.IDENTIFIER, "a"), at(types.OPERATOR, "<"), at(types.OPERATOR, "="), at(types.IDENTIFIER, "b"),
		at(types.KEYWORD, "end"),
		at(types.KEYWORD, "end"),
	}

	tree, err := Parse(tokens, "split.olang")
	require.NoError(t, err)

	operations := ast.FindAll(tree.Root, ast.Operation)
	require.Len(t, operations, 1)
	assert.Equal(t, "<=", operations[0].Value)
	assert.Len(t, ast.FindAll(tree.Root, ast.Assignment), 1)
}

func TestParser_MultipleTopLevelClasses(t *testing.T) {
	tree := parseString(t, "class A is end\nclass B extends A is end")

	require.Len(t, tree.Root.Children, 2)
	assert.Equal(t, "A", tree.ClassName)
	assert.Equal(t, []string{"A", "B"}, ast.ClassNames(tree))
}

func TestParser_SyntaxErrors(t *testing.T) {
	testData := []struct {
		Program  string
		Expected string
		Got      string
		EOF      bool
	}{
		{Program: "class A is var x Integer end", Expected: "':'", Got: "Integer"},
		{Program: "class A is var x: Integer", Expected: "'end'", EOF: true},
		{Program: "class A is end foo", Expected: "'class'", Got: "foo"},
		{Program: "", Expected: "'class'", EOF: true},
		{Program: "class A is method m is return 1 + end end", Expected: "expression", Got: "end"},
		{Program: "class A is method m(a Integer) is end end", Expected: "':'", Got: "Integer"},
		{Program: "var x: Integer", Expected: "'class'", Got: "var"},
	}
	for _, data := range testData {
		err := parseError(t, data.Program)
		assert.Equal(t, data.Expected, err.Expected, data.Program)
		assert.Equal(t, data.EOF, err.EOF, data.Program)
		if !data.EOF {
			assert.Equal(t, data.Got, err.Got, data.Program)
		}
	}
}

func TestParser_FailureKeepsTreeClean(t *testing.T) {
	tokens, err := lexer.Tokenize("class A is var x: Integer method m is", "t.olang")
	require.NoError(t, err)

	p := NewParser(tokens, "t.olang")
	tree, err := p.Parse()
	assert.Nil(t, tree)
	require.Error(t, err)
	require.NotNil(t, p.Furthest())
	assert.True(t, p.Furthest().EOF)
}
