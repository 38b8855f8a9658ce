package typechecker

import (
	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
)

// Check runs the global pass over every registered unit. It stops at the
// first semantic error.
func (s *Session) Check() error {
	if !s.Sealed() {
		return errors.ErrNotSealed
	}

	for _, debt := range s.debtOrder {
		if _, err := s.variableType(debt.Decl); err != nil {
			return err
		}
	}

	for _, o := range s.orphans {
		if err := s.checkOrphan(o); err != nil {
			return err
		}
	}

	for _, class := range s.order {
		if err := s.checkSignatures(class); err != nil {
			return err
		}
		for _, method := range ast.Members(class.Node, ast.MethodDeclaration) {
			if _, err := s.returnType(method); err != nil {
				return err
			}
		}
	}

	for _, unit := range s.units {
		for _, node := range ast.FindAll(unit.Root, ast.IfStatement, ast.WhileLoop) {
			if err := s.checkCondition(unit, node); err != nil {
				return err
			}
		}
		for _, fn := range ast.FindAll(unit.Root, ast.FunctionDeclaration) {
			if err := s.checkFunction(unit, fn); err != nil {
				return err
			}
		}
	}

	s.checked = true
	return nil
}

// Checked reports whether Check has completed without error.
func (s *Session) Checked() bool {
	return s.checked
}

// TypeOf returns the resolved type of a VARIABLE_DECLARATION.
func (s *Session) TypeOf(decl *ast.Node) (string, error) {
	if !s.Sealed() {
		return "", errors.ErrNotSealed
	}
	return s.variableType(decl)
}

// ReturnTypeOf returns the declared or inferred return type of a method,
// empty when the method returns nothing.
func (s *Session) ReturnTypeOf(method *ast.Node) (string, error) {
	if !s.Sealed() {
		return "", errors.ErrNotSealed
	}
	return s.returnType(method)
}

func (s *Session) checkOrphan(o orphan) error {
	name := ast.AssignmentTarget(o.Node)
	from := o.Scope
	if o.Node.Value == "this" {
		from = ast.EnclosingClass(o.Unit, o.Scope)
	}

	b, ok := s.Lookup(o.Unit, from, name)
	if !ok {
		return semantic(o.Unit, o.Node, "No definition for variable %s", name)
	}
	if b.Kind == FunctionBinding {
		return semantic(o.Unit, o.Node, "Cannot assign to function %s", name)
	}

	declared, err := s.bindingType(b)
	if err != nil {
		return err
	}
	value, err := s.typeOf(env{unit: o.Unit, scope: o.Scope}, ast.AssignmentValue(o.Node))
	if err != nil {
		return err
	}
	if !s.assignable(value, declared) {
		return semantic(o.Unit, o.Node, "Multiple types for variable %s provided", name)
	}
	return nil
}

// checkSignatures makes sure every type named by a parameter or a declared
// return type exists.
func (s *Session) checkSignatures(class *Class) error {
	callables := append(ast.Members(class.Node, ast.MethodDeclaration), class.Constructors...)
	for _, callable := range callables {
		for _, param := range ast.MethodParameters(callable) {
			if t := ast.ParameterType(param); !s.IsKnownType(t) && t != class.TypeParam {
				return semantic(class.Unit, param, "No definition for type %s", t)
			}
		}
		if t := ast.MethodReturnType(callable); t != "" && !s.IsKnownType(t) && t != class.TypeParam {
			return semantic(class.Unit, callable, "No definition for type %s", t)
		}
	}
	if class.Parent != "" && !s.IsKnownType(class.Parent) {
		return semantic(class.Unit, class.Node, "No definition for type %s", class.Parent)
	}
	return nil
}

func (s *Session) checkCondition(unit *ast.Tree, node *ast.Node) error {
	condition := node.Child(0)
	t, err := s.typeOf(env{unit: unit, scope: ast.Scope(unit, node)}, condition)
	if err != nil {
		return err
	}
	if !sameType(t, Boolean) {
		return semantic(unit, condition, "Condition must be Boolean, got %s", t)
	}
	return nil
}

func (s *Session) checkFunction(unit *ast.Tree, fn *ast.Node) error {
	view := ast.FunctionOf(fn)
	for _, t := range []string{view.Input, view.Output} {
		if !s.IsKnownType(t) {
			return semantic(unit, fn, "No definition for type %s", t)
		}
	}

	t, err := s.typeOf(functionEnv(unit, fn), view.Body)
	if err != nil {
		return err
	}
	if !s.assignable(t, view.Output) {
		return semantic(unit, fn, "Function %s yields %s but declares %s", view.Name, t, view.Output)
	}
	return nil
}
