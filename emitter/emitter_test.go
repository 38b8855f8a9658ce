package emitter

import (
	"fmt"
	"testing"

	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/parser"
	"github.com/Maxkoz777/OJavaTranspiler/stdlib"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, programs ...string) *typechecker.Session {
	library, err := stdlib.Trees()
	require.NoError(t, err)

	s := typechecker.NewSession(len(library) + len(programs))
	for _, tree := range library {
		require.NoError(t, s.Register(tree))
	}
	for i, program := range programs {
		filename := fmt.Sprintf("unit%d.olang", i)
		tokens, err := lexer.Tokenize(program, filename)
		require.NoError(t, err)
		tree, err := parser.Parse(tokens, filename)
		require.NoError(t, err, program)
		require.NoError(t, s.Register(tree))
	}
	return s
}

func emit(t *testing.T, programs ...string) map[string]string {
	s := newSession(t, programs...)
	require.NoError(t, s.Check())

	files, err := NewEmitter(s, Config{ImportPath: "example.com/out"}).Emit()
	require.NoError(t, err)

	ret := map[string]string{}
	for _, file := range files {
		ret[file.Path] = file.Content
	}
	return ret
}

const point = `class Point is
	var x: Integer
	var y: Integer

	this(a: Integer, b: Integer) is
		x := a
		y := b
	end

	method sum: Integer is
		return x + y
	end

	method scaled(k: Real): Real is
		return x.ToReal() * k
	end
end`

func TestEmit_RequiresCheck(t *testing.T) {
	s := newSession(t, point)

	_, err := NewEmitter(s, Config{}).Emit()
	assert.Equal(t, ErrNotChecked, err)
}

func TestEmit_Class(t *testing.T) {
	files := emit(t, point)
	content, ok := files["point.go"]
	require.True(t, ok)

	for _, expected := range []string{
		"// Code generated by ojava. DO NOT EDIT.",
		"package app",
		"type Point struct {",
		"\tx int\n",
		"func NewPoint(a int, b int) *Point {",
		"this := &Point{}",
		"this.x = a",
		"return this",
		"func (this *Point) sum() int {",
		"return (this.x + this.y)",
		"func (this *Point) scaled(k float64) float64 {",
		"return (float64(this.x) * k)",
	} {
		assert.Contains(t, content, expected)
	}
}

func TestEmit_LibraryPlacement(t *testing.T) {
	files := emit(t, point, `class Main is
	this is
		var p: Point(1, 2)
		var m: MathUtils.Max(p.sum, 3)
	end
end`)

	main := files["main.go"]
	assert.Contains(t, main, `"example.com/out/lib"`)
	assert.Contains(t, main, "p := NewPoint(1, 2)")
	assert.Contains(t, main, "m := (&lib.MathUtils{}).Max(p.sum(), 3)")
	assert.Contains(t, main, "_ = m")

	mathutils, ok := files["lib/mathutils.go"]
	require.True(t, ok)
	assert.Contains(t, mathutils, "package lib")
	assert.Contains(t, mathutils, "func (this *MathUtils) Max(a int, b int) int {")
	assert.Contains(t, mathutils, "return (-a)")
	assert.Contains(t, mathutils, "result := 1")
	assert.Contains(t, mathutils, "result = (result * base)")
}

func TestEmit_ScalarLibrary(t *testing.T) {
	files := emit(t)

	integer := files["lib/integer.go"]
	assert.Contains(t, integer, "type Integer int")
	assert.Contains(t, integer, "const IntegerMax Integer = 2147483647")
	assert.Contains(t, integer, "func (this Integer) Plus(p Integer) Integer {")
	assert.Contains(t, integer, "return Integer((int(this) + int(p)))")
	assert.Contains(t, integer, "func (this Integer) Less(p Integer) Boolean {")
	assert.Contains(t, integer, "func (this Integer) ToReal() Real {")

	boolean := files["lib/boolean.go"]
	assert.Contains(t, boolean, "type Boolean bool")
	assert.Contains(t, boolean, "return Boolean((bool(this) || bool(p)))")
	assert.Contains(t, boolean, "map[bool]int{")

	real := files["lib/real.go"]
	assert.Contains(t, real, "type Real float64")
	assert.Contains(t, real, "const RealEpsilon Real = 1e-07")
}

func TestEmit_Inheritance(t *testing.T) {
	files := emit(t, `class Animal is
	var legs: 4
	method Legs: Integer is
		return legs
	end
end`, `class Dog extends Animal is
	this is
		legs := 3
	end
	method Parent: Animal is
		return this
	end
end`)

	dog := files["dog.go"]
	assert.Contains(t, dog, "type Dog struct {\n\tAnimal\n}")
	assert.Contains(t, dog, "this.Animal = *NewAnimal()")
	assert.Contains(t, dog, "this.legs = 3")
	assert.Contains(t, dog, "func (this *Dog) Parent() *Animal {")
	assert.Contains(t, dog, "return &this.Animal")

	animal := files["animal.go"]
	assert.Contains(t, animal, "this.legs = 4")
	assert.Contains(t, animal, "func NewAnimal() *Animal {")
}

func TestEmit_Functions(t *testing.T) {
	files := emit(t, `class F is
	function<Integer, Integer> inc := x -> x.Plus(1)

	method twice(v: Integer): Integer is
		return inc(inc(v))
	end
end`)

	content := files["f.go"]
	assert.Contains(t, content, "inc func(int) int")
	assert.Contains(t, content, "this.inc = func(x int) int {")
	assert.Contains(t, content, "return (x + 1)")
	assert.Contains(t, content, "return this.inc(this.inc(v))")
}

func TestEmit_Statements(t *testing.T) {
	files := emit(t, `class C is
	var r: 1.5

	method sign(n: Integer): Integer is
		if n < 0 then
			return -1
		else
			return 1
		end
	end

	method count(n: Integer): Integer is
		var i: 0
		while i < n loop
			i := i + 1
		end
		return i
	end

	method first: Integer is
		if true then
			return 1
		end
	end

	method twice: Real is
		return r * 2
	end

	method keywords is
		var range: 1
	end
end`)

	content := files["c.go"]
	assert.Contains(t, content, "return -1")
	assert.Contains(t, content, "} else {")
	assert.NotContains(t, content, "C.sign: missing return")
	assert.Contains(t, content, "i := 0")
	assert.Contains(t, content, "i = (i + 1)")
	assert.Contains(t, content, `panic("C.first: missing return")`)
	assert.Contains(t, content, "return (this.r * 2.0)")
	assert.Contains(t, content, "range_ := 1")
	assert.Contains(t, content, "func (this *C) keywords() {")
}

func TestEmit_Constructors(t *testing.T) {
	files := emit(t, `class P is
	this is
	end
	this(a: Integer) is
	end
end`, `class Q is
	var p: P(5)
	var ps: Array[Integer](3)
end`)

	p := files["p.go"]
	assert.Contains(t, p, "func NewP0() *P {")
	assert.Contains(t, p, "func NewP1(a int) *P {")

	q := files["q.go"]
	assert.Contains(t, q, "p  *P")
	assert.Contains(t, q, "this.p = NewP1(5)")
	assert.Contains(t, q, "this.ps = make([]int, 3)")
}

func TestConstructorName(t *testing.T) {
	s := newSession(t, `class P is
	this(a: Integer) is
	end
	this(b: Real) is
	end
end`)
	class := s.Class("P")
	require.NotNil(t, class)

	assert.Equal(t, "NewP1_0", constructorName(class, class.Constructors[0]))
	assert.Equal(t, "NewP1_1", constructorName(class, class.Constructors[1]))
}

func TestGoOperator(t *testing.T) {
	testData := []struct {
		op       string
		expected string
	}{
		{"=", "=="},
		{"/=", "!="},
		{"and", "&&"},
		{"or", "||"},
		{"xor", "!="},
		{"<=", "<="},
		{"+", "+"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, goOperator(data.op), data.op)
	}
}
