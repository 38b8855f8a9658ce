package typechecker

import (
	stderrors "errors"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
)

// errCycle marks a declaration whose type is requested while it is being
// resolved. Callers collecting candidate types skip it.
var errCycle = stderrors.New("type depends on itself")

var numericPattern = regexp2.MustCompile(`^(?=[+-]?\.?[0-9])[+-]?[0-9]*\.?[0-9]*$`, regexp2.None)

var (
	comparisonOperators = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "=": true, "==": true, "/=": true}
	logicalOperators    = map[string]bool{"and": true, "or": true, "xor": true}
	libraryTypes        = map[string]bool{Real: true, Char: true, Integer: true, String: true}
)

// env is the place an expression is resolved from. params binds the
// parameter of a first-class function while its body is resolved.
type env struct {
	unit   *ast.Tree
	scope  *ast.Node
	params map[string]string
}

func numericType(text string) (string, bool) {
	ok, err := numericPattern.MatchString(text)
	if err != nil || !ok {
		return "", false
	}
	if strings.Contains(text, ".") {
		return Real, true
	}
	return Integer, true
}

func sameType(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// ExpressionType resolves an EXPRESSION or MATH_EXPRESSION found under scope
// in unit.
func (s *Session) ExpressionType(unit *ast.Tree, scope *ast.Node, expr *ast.Node) (string, error) {
	if !s.Sealed() {
		return "", errors.ErrNotSealed
	}
	return s.typeOf(env{unit: unit, scope: scope}, expr)
}

// ChainTypes resolves an EXPRESSION segment by segment and returns the type
// reached after each one.
func (s *Session) ChainTypes(unit *ast.Tree, scope *ast.Node, expr *ast.Node) ([]string, error) {
	if !s.Sealed() {
		return nil, errors.ErrNotSealed
	}
	return s.chain(env{unit: unit, scope: scope}, expr)
}

// FunctionChainTypes is ChainTypes for an expression in the body of fn,
// with the function's parameter bound.
func (s *Session) FunctionChainTypes(unit *ast.Tree, fn *ast.Node, expr *ast.Node) ([]string, error) {
	if !s.Sealed() {
		return nil, errors.ErrNotSealed
	}
	return s.chain(functionEnv(unit, fn), expr)
}

// FunctionExpressionType is ExpressionType for an expression in the body of
// fn.
func (s *Session) FunctionExpressionType(unit *ast.Tree, fn *ast.Node, expr *ast.Node) (string, error) {
	if !s.Sealed() {
		return "", errors.ErrNotSealed
	}
	return s.typeOf(functionEnv(unit, fn), expr)
}

func functionEnv(unit *ast.Tree, fn *ast.Node) env {
	view := ast.FunctionOf(fn)
	return env{
		unit:   unit,
		scope:  ast.Scope(unit, fn),
		params: map[string]string{view.Param: view.Input},
	}
}

func (s *Session) typeOf(e env, expr *ast.Node) (string, error) {
	switch expr.Rule {
	case ast.MathExpression:
		left, err := s.typeOf(e, expr.Child(0))
		if err != nil {
			return "", err
		}
		right, err := s.typeOf(e, expr.Child(2))
		if err != nil {
			return "", err
		}
		return operatorType(e, expr.Child(1), left, right)
	case ast.Expression:
		chain, err := s.chain(e, expr)
		if err != nil {
			return "", err
		}
		return chain[len(chain)-1], nil
	}
	return "", semantic(e.unit, expr, "Unexpected %s in expression", expr.Rule)
}

func operatorType(e env, operation *ast.Node, left, right string) (string, error) {
	op := operation.Value
	promoted := (sameType(left, Integer) && sameType(right, Real)) || (sameType(left, Real) && sameType(right, Integer))
	if !sameType(left, right) && !promoted {
		return "", semantic(e.unit, operation, "Trying to apply %s to types: %s & %s", op, left, right)
	}

	switch {
	case comparisonOperators[op]:
		return Boolean, nil
	case logicalOperators[op]:
		if !sameType(left, Boolean) {
			return "", semantic(e.unit, operation, "Trying to apply %s to types: %s & %s", op, left, right)
		}
		return Boolean, nil
	}

	if !libraryTypes[left] {
		return "", semantic(e.unit, operation, "Trying to apply %s to entities of non-lib type: %s", op, left)
	}
	return left, nil
}

func (s *Session) chain(e env, expr *ast.Node) ([]string, error) {
	links := ast.Chain(expr)
	if len(links) == 0 {
		return nil, semantic(e.unit, expr, "Empty expression")
	}

	current, err := s.primaryType(e, links[0])
	if err != nil {
		return nil, err
	}
	ret := []string{current}

	for _, link := range links[1:] {
		current, err = s.memberType(e, current, link)
		if err != nil {
			return nil, err
		}
		ret = append(ret, current)
	}
	return ret, nil
}

func (s *Session) primaryType(e env, link ast.Link) (string, error) {
	primary := link.Node
	name := primary.First(ast.ClassName)
	if name == nil {
		switch primary.Value {
		case "true", "false":
			return Boolean, nil
		case "this":
			class := ast.EnclosingClass(e.unit, e.scope)
			if class == nil {
				return "", semantic(e.unit, primary, "No definition for variable this")
			}
			className, _ := ast.ClassSignature(class)
			return className, nil
		}
		if t, ok := numericType(primary.Value); ok {
			return t, nil
		}
		return "", semantic(e.unit, primary, "Invalid numeric literal %s", primary.Value)
	}

	typeName := ast.ClassNameString(name)
	base := ast.BaseTypeName(typeName)

	if t, ok := e.params[base]; ok && !link.IsCall() {
		return t, nil
	}

	if s.IsKnownType(base) {
		if link.IsCall() {
			if err := s.checkConstructor(e, primary, base, link.Args); err != nil {
				return "", err
			}
		}
		return typeName, nil
	}

	if class := s.enclosing(e); class != nil && class.TypeParam == base {
		return typeName, nil
	}

	if link.IsCall() {
		return s.callType(e, primary, base)
	}

	b, ok := s.Lookup(e.unit, e.scope, base)
	if !ok {
		return "", semantic(e.unit, primary, "No definition for variable %s", base)
	}
	return s.bindingType(b)
}

func (s *Session) checkConstructor(e env, node *ast.Node, typeName string, args *ast.Node) error {
	class := s.Class(typeName)
	if class == nil || len(class.Constructors) == 0 {
		return nil
	}
	for _, ctor := range class.Constructors {
		if len(ast.MethodParameters(ctor)) == len(args.Children) {
			return nil
		}
	}
	return semantic(e.unit, node, "No constructor of %s takes %d arguments", typeName, len(args.Children))
}

func (s *Session) enclosing(e env) *Class {
	node := ast.EnclosingClass(e.unit, e.scope)
	if node == nil {
		return nil
	}
	name, _ := ast.ClassSignature(node)
	return s.classes[name]
}

// callType resolves name(...) called without a receiver: a method of the
// enclosing class or its ancestors, or a first-class function in scope.
func (s *Session) callType(e env, node *ast.Node, name string) (string, error) {
	if class := s.enclosing(e); class != nil {
		if _, method := s.FindMethod(class.Name, name); method != nil {
			return s.valueReturnType(e, node, method)
		}
	}

	if b, ok := s.Lookup(e.unit, e.scope, name); ok && b.Kind == FunctionBinding {
		return ast.FunctionOf(b.Node).Output, nil
	}
	return "", semantic(e.unit, node, "No definition for method %s", name)
}

func (s *Session) memberType(e env, current string, link ast.Link) (string, error) {
	name := link.Node.Value
	if s.Class(current) == nil {
		return "", semantic(e.unit, link.Node, "No definition for type %s", current)
	}

	if _, method := s.FindMethod(current, name); method != nil {
		return s.valueReturnType(e, link.Node, method)
	}
	if _, fn := s.FindFunction(current, name); fn != nil {
		if link.IsCall() {
			return ast.FunctionOf(fn).Output, nil
		}
		return Function, nil
	}
	if link.IsCall() {
		return "", semantic(e.unit, link.Node, "No definition for method %s", name)
	}
	if _, field := s.FindField(current, name); field != nil {
		return s.variableType(field)
	}
	return "", semantic(e.unit, link.Node, "No definition for variable %s", name)
}

func (s *Session) valueReturnType(e env, node *ast.Node, method *ast.Node) (string, error) {
	t, err := s.returnType(method)
	if err != nil {
		return "", err
	}
	if t == "" {
		return "", semantic(e.unit, node, "Method %s does not return a value", ast.MethodName(method))
	}
	return t, nil
}

func (s *Session) bindingType(b Binding) (string, error) {
	switch b.Kind {
	case ParameterBinding:
		return ast.ParameterType(b.Node), nil
	case VariableBinding:
		return s.variableType(b.Node)
	}
	return Function, nil
}

// variableType settles the type of a VARIABLE_DECLARATION, resolving its
// debt on first use.
func (s *Session) variableType(decl *ast.Node) (string, error) {
	if t, ok := s.variableTypes[decl]; ok {
		return t, nil
	}

	debt, ok := s.debts[decl]
	if !ok {
		return "", semantic(nil, decl, "No type for variable %s found", ast.VariableName(decl))
	}
	if s.resolving[decl] {
		return "", errCycle
	}

	s.resolving[decl] = true
	defer delete(s.resolving, decl)

	t, err := s.resolveDebt(debt)
	if err != nil {
		return "", err
	}
	s.variableTypes[decl] = t
	return t, nil
}

func (s *Session) resolveDebt(debt *DebtVariable) (string, error) {
	set := newTypeSet()
	if debt.Declared != "" {
		set.add(debt.Declared)
	}

	for _, candidate := range debt.Candidates {
		t, err := s.typeOf(env{unit: debt.Unit, scope: candidate.Scope}, candidate.Expr)
		if stderrors.Is(err, errCycle) {
			continue
		}
		if err != nil {
			return "", err
		}
		set.add(t)
	}

	switch set.len() {
	case 0:
		return "", semantic(debt.Unit, debt.Decl, "No type for variable %s found", debt.Name)
	case 1:
		return set.first(), nil
	}
	return "", semantic(debt.Unit, debt.Decl, "Multiple types for variable %s provided", debt.Name)
}

// returnType is the declared return type of a method, or the one inferred
// from its return statements. Methods without any return yield "".
func (s *Session) returnType(method *ast.Node) (string, error) {
	if t, ok := s.returnTypes[method]; ok {
		return t, nil
	}

	class := s.methodClass[method]
	if class == nil {
		return "", semantic(nil, method, "No definition for method %s", ast.MethodName(method))
	}
	unit := class.Unit
	name := ast.MethodName(method)
	returns := ast.FindAll(ast.MethodBody(method), ast.ReturnStatement)

	if declared := ast.MethodReturnType(method); declared != "" {
		s.returnTypes[method] = declared
		for _, ret := range returns {
			t, err := s.typeOf(env{unit: unit, scope: method}, ret.Child(0))
			if stderrors.Is(err, errCycle) {
				continue
			}
			if err == nil && !s.assignable(t, declared) {
				err = semantic(unit, ret, "Method %s returns %s but declares %s", name, t, declared)
			}
			if err != nil {
				delete(s.returnTypes, method)
				return "", err
			}
		}
		return declared, nil
	}

	if len(returns) == 0 {
		s.returnTypes[method] = ""
		return "", nil
	}
	if s.resolving[method] {
		return "", errCycle
	}

	s.resolving[method] = true
	defer delete(s.resolving, method)

	set := newTypeSet()
	cycled := false
	for _, ret := range returns {
		t, err := s.typeOf(env{unit: unit, scope: method}, ret.Child(0))
		if stderrors.Is(err, errCycle) {
			cycled = true
			continue
		}
		if err != nil {
			return "", err
		}
		set.add(t)
	}

	switch set.len() {
	case 0:
		// An outer declaration still being resolved may settle these returns.
		if cycled && len(s.resolving) > 1 {
			return "", errCycle
		}
		return "", semantic(unit, method, "No type for method %s provided", name)
	case 1:
		s.returnTypes[method] = set.first()
		return set.first(), nil
	}
	return "", semantic(unit, method, "Multiple types for method %s provided", name)
}

func (s *Session) assignable(value, declared string) bool {
	return sameType(value, declared) || s.IsSubclass(value, declared)
}

// typeSet keeps type names unique under case folding, in insertion order.
type typeSet struct {
	fold  cases.Caser
	seen  map[string]bool
	names []string
}

func newTypeSet() *typeSet {
	return &typeSet{fold: cases.Fold(), seen: map[string]bool{}}
}

func (t *typeSet) add(name string) {
	key := t.fold.String(name)
	if t.seen[key] {
		return
	}
	t.seen[key] = true
	t.names = append(t.names, name)
}

func (t *typeSet) len() int {
	return len(t.names)
}

func (t *typeSet) first() string {
	return t.names[0]
}
