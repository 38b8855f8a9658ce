package typechecker

import (
	"github.com/Maxkoz777/OJavaTranspiler/ast"
)

type BindingKind int

const (
	ParameterBinding BindingKind = iota
	VariableBinding
	FunctionBinding
)

func (k BindingKind) String() string {
	switch k {
	case ParameterBinding:
		return "parameter"
	case VariableBinding:
		return "variable"
	}
	return "function"
}

// Binding is what a bare name resolves to.
type Binding struct {
	Kind BindingKind
	Name string
	Node *ast.Node
	Unit *ast.Tree

	// Owner is the class the name was found in, when it is a class member.
	Owner *Class
}

// Lookup resolves a bare name as seen from scope: parameters and locals of
// the innermost method or constructor, then the members of the enclosing
// class, then the members it inherits, then the enclosing classes outwards.
func (s *Session) Lookup(unit *ast.Tree, scope *ast.Node, name string) (Binding, bool) {
	return s.lookup(unit, scope, name, true)
}

// lookupInUnit is Lookup without inherited members, usable before every
// unit is registered.
func (s *Session) lookupInUnit(unit *ast.Tree, scope *ast.Node, name string) (Binding, bool) {
	return s.lookup(unit, scope, name, false)
}

func (s *Session) lookup(unit *ast.Tree, scope *ast.Node, name string, inherited bool) (Binding, bool) {
	for sc := scope; sc != nil; sc = ast.Scope(unit, sc) {
		switch sc.Rule {
		case ast.MethodDeclaration, ast.ConstructorDeclaration:
			if b, ok := lookupCallable(unit, sc, name); ok {
				return b, true
			}
		case ast.ClassDeclaration:
			className, parent := ast.ClassSignature(sc)
			if b, ok := lookupMembers(unit, sc, name); ok {
				b.Owner = s.classes[className]
				return b, true
			}
			if !inherited || parent == "" {
				continue
			}
			if b, ok := s.lookupInherited(parent, name); ok {
				return b, true
			}
		}
	}
	return Binding{}, false
}

func lookupCallable(unit *ast.Tree, callable *ast.Node, name string) (Binding, bool) {
	for _, param := range ast.MethodParameters(callable) {
		if ast.ParameterName(param) == name {
			return Binding{Kind: ParameterBinding, Name: name, Node: param, Unit: unit}, true
		}
	}

	body := ast.MethodBody(callable)
	for _, decl := range ast.FindAll(body, ast.VariableDeclaration) {
		if ast.VariableName(decl) == name {
			return Binding{Kind: VariableBinding, Name: name, Node: decl, Unit: unit}, true
		}
	}
	for _, fn := range ast.FindAll(body, ast.FunctionDeclaration) {
		if ast.FunctionOf(fn).Name == name {
			return Binding{Kind: FunctionBinding, Name: name, Node: fn, Unit: unit}, true
		}
	}
	return Binding{}, false
}

func lookupMembers(unit *ast.Tree, class *ast.Node, name string) (Binding, bool) {
	for _, decl := range ast.Members(class, ast.VariableDeclaration) {
		if ast.VariableName(decl) == name {
			return Binding{Kind: VariableBinding, Name: name, Node: decl, Unit: unit}, true
		}
	}
	for _, fn := range ast.Members(class, ast.FunctionDeclaration) {
		if ast.FunctionOf(fn).Name == name {
			return Binding{Kind: FunctionBinding, Name: name, Node: fn, Unit: unit}, true
		}
	}
	return Binding{}, false
}

func (s *Session) lookupInherited(typeName, name string) (Binding, bool) {
	for _, class := range s.Ancestors(typeName) {
		if field, ok := class.Fields[name]; ok {
			return Binding{Kind: VariableBinding, Name: name, Node: field, Unit: class.Unit, Owner: class}, true
		}
		if fn, ok := class.Functions[name]; ok {
			return Binding{Kind: FunctionBinding, Name: name, Node: fn, Unit: class.Unit, Owner: class}, true
		}
	}
	return Binding{}, false
}

// Ancestors returns the class registered under typeName followed by the
// classes it extends, nearest first. Unknown parents end the list.
func (s *Session) Ancestors(typeName string) []*Class {
	var ret []*Class
	visited := map[string]bool{}
	for class := s.Class(typeName); class != nil && !visited[class.Name]; class = s.Class(class.Parent) {
		visited[class.Name] = true
		ret = append(ret, class)
		if class.Parent == "" {
			break
		}
	}
	return ret
}

// IsSubclass reports whether child is parent or extends it, directly or not.
func (s *Session) IsSubclass(child, parent string) bool {
	if sameType(child, parent) {
		return true
	}
	for _, class := range s.Ancestors(child) {
		if sameType(class.Name, ast.BaseTypeName(parent)) {
			return true
		}
	}
	return false
}

func (s *Session) FindMethod(typeName, name string) (*Class, *ast.Node) {
	for _, class := range s.Ancestors(typeName) {
		if method, ok := class.Methods[name]; ok {
			return class, method
		}
	}
	return nil, nil
}

func (s *Session) FindField(typeName, name string) (*Class, *ast.Node) {
	for _, class := range s.Ancestors(typeName) {
		if field, ok := class.Fields[name]; ok {
			return class, field
		}
	}
	return nil, nil
}

func (s *Session) FindFunction(typeName, name string) (*Class, *ast.Node) {
	for _, class := range s.Ancestors(typeName) {
		if fn, ok := class.Functions[name]; ok {
			return class, fn
		}
	}
	return nil, nil
}

// OwnerOf returns the class declaring a method or constructor.
func (s *Session) OwnerOf(callable *ast.Node) *Class {
	return s.methodClass[callable]
}
