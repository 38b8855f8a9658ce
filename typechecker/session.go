package typechecker

import (
	"sort"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/Maxkoz777/OJavaTranspiler/types"
)

const (
	Integer  = "Integer"
	Real     = "Real"
	Boolean  = "Boolean"
	Char     = "Char"
	String   = "String"
	Array    = "Array"
	Function = "Function"
)

// builtinTypes are known before any unit is registered.
var builtinTypes = []string{Integer, Real, Boolean, Array}

type State int

const (
	Collecting State = iota
	Sealed
)

func (s State) String() string {
	if s == Sealed {
		return "SEALED"
	}
	return "COLLECTING"
}

// Class is the registry entry for one class declaration.
type Class struct {
	Name         string
	Parent       string
	TypeParam    string
	Node         *ast.Node
	Unit         *ast.Tree
	Methods      map[string]*ast.Node
	Fields       map[string]*ast.Node
	Functions    map[string]*ast.Node
	Constructors []*ast.Node
}

// DebtVariable is a variable whose type can only be settled once every unit
// is visible.
type DebtVariable struct {
	Name       string
	Decl       *ast.Node
	Unit       *ast.Tree
	Scope      *ast.Node
	Declared   string
	Candidates []Candidate
}

// Candidate is one expression that assigns a value to a debt variable.
type Candidate struct {
	Expr  *ast.Node
	Scope *ast.Node
}

// orphan is an assignment whose target is not declared in its own unit.
type orphan struct {
	Unit  *ast.Tree
	Node  *ast.Node
	Scope *ast.Node
}

// Session is the registry shared by every unit of one compilation run. It
// collects units until the expected number has been registered, after which
// it is sealed and the global check may run.
type Session struct {
	expected   int
	state      State
	knownTypes map[string]bool
	units      []*ast.Tree
	classes    map[string]*Class
	order      []*Class

	debts     map[*ast.Node]*DebtVariable
	debtOrder []*DebtVariable
	orphans   []orphan

	declUnit    map[*ast.Node]*ast.Tree
	methodClass map[*ast.Node]*Class

	variableTypes map[*ast.Node]string
	returnTypes   map[*ast.Node]string
	resolving     map[*ast.Node]bool
	checked       bool
}

func NewSession(expected int) *Session {
	s := &Session{
		expected:      expected,
		knownTypes:    map[string]bool{},
		classes:       map[string]*Class{},
		debts:         map[*ast.Node]*DebtVariable{},
		declUnit:      map[*ast.Node]*ast.Tree{},
		methodClass:   map[*ast.Node]*Class{},
		variableTypes: map[*ast.Node]string{},
		returnTypes:   map[*ast.Node]string{},
		resolving:     map[*ast.Node]bool{},
	}
	for _, name := range builtinTypes {
		s.knownTypes[name] = true
	}
	if expected <= 0 {
		s.state = Sealed
	}
	return s
}

// Expect raises the number of units the session waits for.
func (s *Session) Expect(n int) error {
	if s.state == Sealed {
		return errors.ErrSealed
	}
	s.expected += n
	return nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Sealed() bool {
	return s.state == Sealed
}

// Pending is the number of units still to be registered.
func (s *Session) Pending() int {
	return s.expected - len(s.units)
}

func (s *Session) Units() []*ast.Tree {
	return s.units
}

// KnownTypes lists every type name seen so far, sorted.
func (s *Session) KnownTypes() []string {
	ret := make([]string, 0, len(s.knownTypes))
	for name := range s.knownTypes {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (s *Session) IsKnownType(name string) bool {
	return s.knownTypes[ast.BaseTypeName(name)]
}

// Class returns the registry entry for a type name, ignoring any bracketed
// parameter.
func (s *Session) Class(name string) *Class {
	return s.classes[ast.BaseTypeName(name)]
}

// Classes lists the registered classes in registration order.
func (s *Session) Classes() []*Class {
	return s.order
}

func (s *Session) Debts() []*DebtVariable {
	return s.debtOrder
}

// Register runs the per-unit analysis for tree. The session seals itself
// once the expected number of units has been registered.
func (s *Session) Register(tree *ast.Tree) error {
	if s.state == Sealed {
		return errors.ErrSealed
	}

	name, _ := ast.ClassSignature(ast.MainClass(tree))
	tree.ClassName = name

	var classes []*Class
	seen := map[string]bool{}
	for _, node := range ast.FindAll(tree.Root, ast.ClassDeclaration) {
		class, err := newClass(tree, node)
		if err != nil {
			return err
		}
		if _, ok := s.classes[class.Name]; ok || seen[class.Name] {
			return semantic(tree, node, "Class %s is declared more than once", class.Name)
		}
		seen[class.Name] = true
		classes = append(classes, class)
	}

	for _, class := range classes {
		s.classes[class.Name] = class
		s.order = append(s.order, class)
		s.knownTypes[class.Name] = true
		for _, method := range class.Methods {
			s.methodClass[method] = class
		}
		for _, ctor := range class.Constructors {
			s.methodClass[ctor] = class
		}
	}

	s.collectDebts(tree)

	s.units = append(s.units, tree)
	if len(s.units) >= s.expected {
		s.state = Sealed
	}
	return nil
}

func newClass(tree *ast.Tree, node *ast.Node) (*Class, error) {
	name, parent := ast.ClassSignature(node)
	class := &Class{
		Name:      name,
		Parent:    parent,
		Node:      node,
		Unit:      tree,
		Methods:   map[string]*ast.Node{},
		Fields:    map[string]*ast.Node{},
		Functions: map[string]*ast.Node{},
	}
	if inner := node.Child(0).First(ast.ClassName); inner != nil {
		class.TypeParam = ast.ClassNameString(inner)
	}

	for _, method := range ast.Members(node, ast.MethodDeclaration) {
		methodName := ast.MethodName(method)
		if _, ok := class.Methods[methodName]; ok {
			return nil, semantic(tree, method, "Duplicated method declarations detected. Overloading is not supported.")
		}
		class.Methods[methodName] = method
	}
	for _, field := range ast.Members(node, ast.VariableDeclaration) {
		class.Fields[ast.VariableName(field)] = field
	}
	for _, fn := range ast.Members(node, ast.FunctionDeclaration) {
		class.Functions[ast.FunctionOf(fn).Name] = fn
	}
	class.Constructors = ast.Members(node, ast.ConstructorDeclaration)

	return class, nil
}

// collectDebts attaches every assignment of the unit to the declaration it
// targets, and turns declarations that are assigned or lack a literal type
// into debt variables.
func (s *Session) collectDebts(tree *ast.Tree) {
	assigned := map[*ast.Node][]Candidate{}
	for _, assignment := range ast.FindAll(tree.Root, ast.Assignment) {
		scope := ast.Scope(tree, assignment)
		from := scope
		if assignment.Value == "this" {
			from = ast.EnclosingClass(tree, scope)
		}

		binding, ok := s.lookupInUnit(tree, from, ast.AssignmentTarget(assignment))
		if ok && binding.Kind == VariableBinding && binding.Unit == tree {
			assigned[binding.Node] = append(assigned[binding.Node], Candidate{ast.AssignmentValue(assignment), scope})
			continue
		}
		s.orphans = append(s.orphans, orphan{tree, assignment, scope})
	}

	for _, decl := range ast.FindAll(tree.Root, ast.VariableDeclaration) {
		s.declUnit[decl] = tree

		literal := literalType(ast.VariableExpression(decl))
		candidates := assigned[decl]
		if literal != "" && len(candidates) == 0 {
			s.variableTypes[decl] = literal
			continue
		}

		debt := &DebtVariable{
			Name:       ast.VariableName(decl),
			Decl:       decl,
			Unit:       tree,
			Scope:      ast.Scope(tree, decl),
			Declared:   literal,
			Candidates: candidates,
		}
		if literal == "" {
			debt.Candidates = append([]Candidate{{ast.VariableExpression(decl), debt.Scope}}, debt.Candidates...)
		}
		s.debts[decl] = debt
		s.debtOrder = append(s.debtOrder, debt)
	}
}

// literalType is the type of an expression made of a single literal or a
// single scalar type name, or empty.
func literalType(expr *ast.Node) string {
	if !expr.Is(ast.Expression) || len(expr.Children) != 1 {
		return ""
	}
	primary := expr.Child(0)
	if name := primary.First(ast.ClassName); name != nil {
		switch typeName := ast.ClassNameString(name); typeName {
		case Integer, Real, Boolean:
			return typeName
		}
		return ""
	}
	switch primary.Value {
	case "true", "false":
		return Boolean
	case "this", "":
		return ""
	}
	if t, ok := numericType(primary.Value); ok {
		return t
	}
	return ""
}

func semantic(unit *ast.Tree, node *ast.Node, format string, args ...interface{}) errors.SemanticError {
	err := errors.Semantic(format, args...)
	if unit != nil {
		err.Unit = unit.ClassName
	}
	if node != nil {
		err.Location = types.SingleCharSpan(node.Pos)
	}
	return err
}
