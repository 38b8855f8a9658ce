package ast

import (
	"encoding/json"
	"strings"
)

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// FindAll collects the nodes tagged with any of rules, in pre-order.
func FindAll(root *Node, rules ...Rule) []*Node {
	var ret []*Node
	Walk(root, func(n *Node) bool {
		if n.Is(rules...) {
			ret = append(ret, n)
		}
		return true
	})
	return ret
}

// PreOrderRules lists the rule of every node of the tree in pre-order.
func PreOrderRules(root *Node) []Rule {
	var ret []Rule
	Walk(root, func(n *Node) bool {
		ret = append(ret, n.Rule)
		return true
	})
	return ret
}

// Contains reports whether target is root or one of its descendants.
func Contains(root, target *Node) bool {
	found := false
	Walk(root, func(n *Node) bool {
		if found {
			return false
		}
		if n == target {
			found = true
			return false
		}
		return true
	})
	return found
}

func MainClass(t *Tree) *Node {
	return t.Root.Child(0)
}

// ClassNameString renders a CLASS_NAME node, including its bracketed
// parameter: Array[Integer].
func ClassNameString(n *Node) string {
	if n == nil {
		return ""
	}
	name := n.First(Identifier).Value
	if inner := n.First(ClassName); inner != nil {
		name += "[" + ClassNameString(inner) + "]"
	}
	return name
}

// BaseTypeName strips the bracketed parameter from a type name.
func BaseTypeName(name string) string {
	if i := strings.IndexByte(name, '['); i != -1 {
		return name[:i]
	}
	return name
}

// ClassSignature returns the name of a class declaration and the name of the
// class it extends, which is empty when there is none.
func ClassSignature(class *Node) (name, parent string) {
	names := class.All(ClassName)
	if len(names) > 0 {
		name = names[0].First(Identifier).Value
	}
	if len(names) > 1 {
		parent = names[1].First(Identifier).Value
	}
	return
}

func ClassNames(t *Tree) []string {
	var ret []string
	for _, class := range FindAll(t.Root, ClassDeclaration) {
		name, _ := ClassSignature(class)
		ret = append(ret, name)
	}
	return ret
}

// Members returns the declarations of a class tagged with rule, skipping the
// MEMBER_DECLARATION wrapper.
func Members(class *Node, rule Rule) []*Node {
	var ret []*Node
	for _, member := range class.All(MemberDeclaration) {
		if decl := member.Child(0); decl.Is(rule) {
			ret = append(ret, decl)
		}
	}
	return ret
}

// Scope finds the nearest METHOD_DECLARATION, CONSTRUCTOR_DECLARATION or
// CLASS_DECLARATION strictly above node by walking down from the root.
func Scope(t *Tree, node *Node) *Node {
	return findScope(t.Root, node, nil)
}

func findScope(n, target, current *Node) *Node {
	if n == target {
		return current
	}
	if n.Is(MethodDeclaration, ConstructorDeclaration, ClassDeclaration) {
		current = n
	}
	for _, child := range n.Children {
		if found := findScope(child, target, current); found != nil {
			return found
		}
	}
	return nil
}

// EnclosingClass returns the class declaration that holds node; a class
// declaration is its own enclosing class.
func EnclosingClass(t *Tree, node *Node) *Node {
	for n := node; n != nil; n = Scope(t, n) {
		if n.Is(ClassDeclaration) {
			return n
		}
	}
	return nil
}

// IsElseCondition is true when the IF_STATEMENT carries two bodies.
func IsElseCondition(n *Node) bool {
	return len(n.All(Body)) == 2
}

type IfView struct {
	Condition *Node
	Then      *Node
	Else      *Node
}

func IfStatementOf(n *Node) IfView {
	view := IfView{Condition: n.Child(0), Then: n.Child(1)}
	if IsElseCondition(n) {
		view.Else = n.Child(2)
	}
	return view
}

func VariableName(decl *Node) string {
	return decl.Child(0).Value
}

func VariableExpression(decl *Node) *Node {
	return decl.Child(1)
}

func MethodName(method *Node) string {
	return method.First(Identifier).Value
}

func MethodParameters(method *Node) []*Node {
	return method.First(Parameters).All(ParameterDeclaration)
}

// MethodReturnType is the declared return type, or empty.
func MethodReturnType(method *Node) string {
	return ClassNameString(method.First(ClassName))
}

func MethodBody(method *Node) *Node {
	return method.First(Body)
}

func ParameterName(param *Node) string {
	return param.Child(0).Value
}

func ParameterType(param *Node) string {
	return ClassNameString(param.First(ClassName))
}

type FunctionView struct {
	Input  string
	Output string
	Name   string
	Param  string
	Body   *Node
}

func FunctionOf(n *Node) FunctionView {
	return FunctionView{
		Input:  n.Child(0).Value,
		Output: n.Child(1).Value,
		Name:   n.Child(2).Value,
		Param:  n.Child(3).Value,
		Body:   n.Child(4),
	}
}

func AssignmentTarget(n *Node) string {
	return n.Child(0).Value
}

func AssignmentValue(n *Node) *Node {
	return n.Child(1)
}

// PrimaryText is the literal, keyword or class name held by a PRIMARY node.
func PrimaryText(n *Node) string {
	if name := n.First(ClassName); name != nil {
		return ClassNameString(name)
	}
	return n.Value
}

// Link is one segment of an expression chain: the PRIMARY or member
// IDENTIFIER, and the ARGUMENTS applied to it when it is a call.
type Link struct {
	Node *Node
	Args *Node
}

func (l Link) IsCall() bool {
	return l.Args != nil
}

// Chain splits an EXPRESSION into its segments, primary first.
func Chain(expr *Node) []Link {
	var ret []Link
	for _, child := range expr.Children {
		switch child.Rule {
		case Primary, Identifier:
			ret = append(ret, Link{Node: child})
		case Arguments:
			if len(ret) > 0 {
				ret[len(ret)-1].Args = child
			}
		}
	}
	return ret
}

// ExpressionString renders an EXPRESSION or MATH_EXPRESSION back into
// source form.
func ExpressionString(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Rule {
	case MathExpression:
		return ExpressionString(n.Child(0)) + " " + n.Child(1).Value + " " + ExpressionString(n.Child(2))
	case Expression:
		var b strings.Builder
		for _, child := range n.Children {
			switch child.Rule {
			case Primary:
				b.WriteString(PrimaryText(child))
			case Identifier:
				b.WriteString(".")
				b.WriteString(child.Value)
			case Arguments:
				var args []string
				for _, arg := range child.Children {
					args = append(args, ExpressionString(arg))
				}
				b.WriteString("(" + strings.Join(args, ", ") + ")")
			}
		}
		return b.String()
	}
	return n.Value
}

func (t *Tree) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

func DecodeTree(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
