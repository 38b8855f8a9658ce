package emitter

import (
	. "github.com/dave/jennifer/jen"

	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

var operators = map[string]string{
	"=":   "==",
	"/=":  "!=",
	"and": "&&",
	"or":  "||",
	"xor": "!=",
}

// binaryMethods are the methods of the scalar classes that take one
// parameter and map onto a Go operator.
var binaryMethods = map[string]string{
	"Plus":         "+",
	"Minus":        "-",
	"Mult":         "*",
	"Div":          "/",
	"Rem":          "%",
	"Less":         "<",
	"LessEqual":    "<=",
	"Greater":      ">",
	"GreaterEqual": ">=",
	"Equal":        "==",
	"Or":           "||",
	"And":          "&&",
	"Xor":          "!=",
}

func goOperator(op string) string {
	if mapped, ok := operators[op]; ok {
		return mapped
	}
	return op
}

// scalarType is the Go type backing a scalar class.
func scalarType(name string) *Statement {
	switch name {
	case typechecker.Real:
		return Float64()
	case typechecker.Boolean:
		return Bool()
	}
	return Int()
}

// binary renders left op right. Remainders of reals go through math.Mod.
func binary(op string, real bool, left, right Code) *Statement {
	if op == "%" && real {
		return Qual("math", "Mod").Call(left, right)
	}
	return Parens(Add(left).Op(op).Add(right))
}

// unaryMethod renders a parameterless scalar method applied to recv.
func unaryMethod(recvType, name string, recv Code) (*Statement, bool) {
	switch name {
	case "UnaryMinus":
		return Parens(Op("-").Add(recv)), true
	case "Not":
		return Parens(Op("!").Add(recv)), true
	case "ToReal":
		return Float64().Call(recv), true
	case "ToInteger":
		if recvType == typechecker.Boolean {
			return Map(Bool()).Int().Values(Dict{False(): Lit(0), True(): Lit(1)}).Index(recv), true
		}
		return Int().Call(recv), true
	case "ToBoolean":
		return Parens(Add(recv).Op("!=").Lit(0)), true
	}
	return nil, false
}

// scalarMethod renders recv.name(args...) for a scalar receiver.
func scalarMethod(recvType, name string, recv Code, args []Code) (*Statement, bool) {
	if len(args) == 0 {
		return unaryMethod(recvType, name, recv)
	}
	op, ok := binaryMethods[name]
	if !ok || len(args) != 1 {
		return nil, false
	}
	return binary(op, recvType == typechecker.Real, recv, args[0]), true
}

func isNumeric(name string) bool {
	return name == typechecker.Integer || name == typechecker.Real
}
