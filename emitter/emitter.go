package emitter

import (
	"bytes"
	stderrors "errors"
	"path"
	"strings"
	"unicode"

	. "github.com/dave/jennifer/jen"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/stdlib"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

// ErrNotChecked is returned when emission is requested for a session whose
// global check has not succeeded.
var ErrNotChecked = stderrors.New("emitter: session has not been checked")

// LibraryPackage is the package, and the output subdirectory, of library
// units.
const LibraryPackage = "lib"

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "fallthrough": true, "func": true, "go": true,
	"goto": true, "import": true, "interface": true, "map": true, "package": true,
	"range": true, "select": true, "struct": true, "switch": true, "type": true,
}

type Config struct {
	// Package names the Go package of class units.
	Package string
	// ImportPath is the import path of the output directory. Library units
	// are imported from ImportPath/lib.
	ImportPath string
}

// Output is one generated Go source file, Path being relative to the output
// directory.
type Output struct {
	Path    string
	Content string
}

type Emitter struct {
	session *typechecker.Session
	config  Config
	err     error
}

func NewEmitter(session *typechecker.Session, config Config) *Emitter {
	if config.Package == "" {
		config.Package = "app"
	}
	return &Emitter{session: session, config: config}
}

// Emit generates one file per registered unit.
func (e *Emitter) Emit() ([]Output, error) {
	if !e.session.Checked() {
		return nil, ErrNotChecked
	}

	var files []Output
	for _, unit := range e.session.Units() {
		file, err := e.EmitUnit(unit)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (e *Emitter) EmitUnit(unit *ast.Tree) (Output, error) {
	if !e.session.Checked() {
		return Output{}, ErrNotChecked
	}
	e.err = nil

	pkg, dir := e.config.Package, ""
	if unit.Designation == ast.Library {
		pkg, dir = LibraryPackage, LibraryPackage
	}

	f := NewFile(pkg)
	f.HeaderComment("Code generated by ojava. DO NOT EDIT.")

	for _, node := range ast.FindAll(unit.Root, ast.ClassDeclaration) {
		name, _ := ast.ClassSignature(node)
		class := e.session.Class(name)
		g := &gen{Emitter: e, unit: unit}
		if unit.Designation == ast.Library && stdlib.IsScalar(class.Name) {
			g.scalarClass(f, class)
			continue
		}
		g.class(f, class)
	}
	if e.err != nil {
		return Output{}, e.err
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return Output{}, err
	}
	return Output{
		Path:    path.Join(dir, strings.ToLower(unit.ClassName)+".go"),
		Content: buf.String(),
	}, nil
}

func (e *Emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Emitter) libraryPath() string {
	return path.Join(e.config.ImportPath, LibraryPackage)
}

// gen emits the declarations of one unit.
type gen struct {
	*Emitter
	unit *ast.Tree
}

// classRef names a class from the unit being emitted.
func (g *gen) classRef(class *typechecker.Class) *Statement {
	return g.qualify(class, class.Name)
}

// qualify names a package-level identifier declared next to class.
func (g *gen) qualify(class *typechecker.Class, name string) *Statement {
	if class.Unit.Designation == ast.Library && g.unit.Designation != ast.Library {
		return Qual(g.libraryPath(), name)
	}
	return Id(name)
}

// member is the Go name of a field, method or function of owner. Members of
// library classes are exported so class units can reach them.
func member(owner *typechecker.Class, name string) string {
	if owner != nil && owner.Unit.Designation == ast.Library {
		return exported(name)
	}
	return safe(name)
}

func exported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func safe(name string) string {
	if goKeywords[name] {
		return name + "_"
	}
	return name
}

// goType maps a type name onto a Go type. Scalars become Go scalars, classes
// pointers to their structs, type parameters and unknown types interface{}.
func (g *gen) goType(class *typechecker.Class, name string) *Statement {
	base := ast.BaseTypeName(name)
	switch base {
	case typechecker.Integer:
		return Int()
	case typechecker.Real:
		return Float64()
	case typechecker.Boolean:
		return Bool()
	case typechecker.Array:
		if i := strings.IndexByte(name, '['); i != -1 && strings.HasSuffix(name, "]") {
			return Index().Add(g.goType(class, name[i+1:len(name)-1]))
		}
		return Index().Interface()
	}

	if class != nil && base == class.TypeParam {
		return Interface()
	}
	target := g.session.Class(base)
	if target == nil {
		return Interface()
	}
	return Op("*").Add(g.classRef(target))
}
