package ast

import (
	"fmt"

	"github.com/Maxkoz777/OJavaTranspiler/types"
)

// Rule tags a node with the grammar production that built it.
type Rule int

const (
	Program Rule = iota
	ClassDeclaration
	ClassName
	Identifier
	MemberDeclaration
	VariableDeclaration
	MethodDeclaration
	ConstructorDeclaration
	FunctionDeclaration
	Parameters
	ParameterDeclaration
	Body
	Statement
	Assignment
	WhileLoop
	IfStatement
	ReturnStatement
	Expression
	MathExpression
	Operation
	Arguments
	Primary
)

var ruleNames = map[Rule]string{
	Program:                "PROGRAM",
	ClassDeclaration:       "CLASS_DECLARATION",
	ClassName:              "CLASS_NAME",
	Identifier:             "IDENTIFIER",
	MemberDeclaration:      "MEMBER_DECLARATION",
	VariableDeclaration:    "VARIABLE_DECLARATION",
	MethodDeclaration:      "METHOD_DECLARATION",
	ConstructorDeclaration: "CONSTRUCTOR_DECLARATION",
	FunctionDeclaration:    "FUNCTION_DECLARATION",
	Parameters:             "PARAMETERS",
	ParameterDeclaration:   "PARAMETER_DECLARATION",
	Body:                   "BODY",
	Statement:              "STATEMENT",
	Assignment:             "ASSIGNMENT",
	WhileLoop:              "WHILE_LOOP",
	IfStatement:            "IF_STATEMENT",
	ReturnStatement:        "RETURN_STATEMENT",
	Expression:             "EXPRESSION",
	MathExpression:         "MATH_EXPRESSION",
	Operation:              "OPERATION",
	Arguments:              "ARGUMENTS",
	Primary:                "PRIMARY",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(text []byte) error {
	for rule, name := range ruleNames {
		if name == string(text) {
			*r = rule
			return nil
		}
	}
	return fmt.Errorf("unknown rule %q", text)
}

// Node owns its children exclusively; there are no parent pointers.
type Node struct {
	Rule     Rule           `json:"rule"`
	Value    string         `json:"value,omitempty"`
	Children []*Node        `json:"children,omitempty"`
	Pos      types.Position `json:"-"`
}

func NewNode(rule Rule, value string, pos types.Position) *Node {
	return &Node{Rule: rule, Value: value, Pos: pos}
}

// Add appends a new child and returns it.
func (n *Node) Add(rule Rule, value string, pos types.Position) *Node {
	child := NewNode(rule, value, pos)
	n.Children = append(n.Children, child)
	return child
}

// Truncate discards every child from index size onwards.
func (n *Node) Truncate(size int) {
	for i := size; i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = n.Children[:size]
}

func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) Is(rules ...Rule) bool {
	if n == nil {
		return false
	}
	for _, rule := range rules {
		if n.Rule == rule {
			return true
		}
	}
	return false
}

// First returns the first direct child tagged with rule.
func (n *Node) First(rule Rule) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Rule == rule {
			return child
		}
	}
	return nil
}

// All returns the direct children tagged with rule.
func (n *Node) All(rule Rule) []*Node {
	if n == nil {
		return nil
	}
	var ret []*Node
	for _, child := range n.Children {
		if child.Rule == rule {
			ret = append(ret, child)
		}
	}
	return ret
}

// Designation tells the emitter where a unit's output goes.
type Designation int

const (
	Class Designation = iota
	Library
)

func (d Designation) String() string {
	if d == Library {
		return "LIBRARY"
	}
	return "CLASS"
}

func (d Designation) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Designation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LIBRARY":
		*d = Library
	case "CLASS":
		*d = Class
	default:
		return fmt.Errorf("unknown designation %q", text)
	}
	return nil
}

// Tree is one compilation unit.
type Tree struct {
	Root        *Node       `json:"root"`
	ClassName   string      `json:"className"`
	Filename    string      `json:"filename,omitempty"`
	Designation Designation `json:"designation"`
}

func NewTree(filename string) *Tree {
	return &Tree{
		Root:     NewNode(Program, "", types.Position{Line: 1, Filename: filename}),
		Filename: filename,
	}
}
