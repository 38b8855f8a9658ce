package driver

import (
	"bytes"
	stderrors "errors"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/emitter"
	"github.com/Maxkoz777/OJavaTranspiler/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ztrue/tracerr"
)

const point = `class Point is
	var x: Integer
	this(a: Integer) is
		x := a
	end
	method get: Integer is
		return x
	end
end`

const main = `class Main is
	this is
		var p: Point(1)
		var sq: Geometry.Twice(p.get)
	end
end`

const geometry = `class Geometry is
	method Twice(a: Integer): Integer is
		return a * 2
	end
end`

func writeProject(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestDiscover(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"src/Point.olang":    point,
		"src/Main.olang":     main,
		"src/notes.txt":      "not a unit",
		"lib/Geometry.olang": geometry,
	})

	sources, err := Discover(Options{Library: filepath.Join(dir, "lib"), Source: filepath.Join(dir, "src")})
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.Equal(t, "Geometry.olang", filepath.Base(sources[0].Filename))
	assert.Equal(t, ast.Library, sources[0].Designation)
	assert.Equal(t, "Main.olang", filepath.Base(sources[1].Filename))
	assert.Equal(t, ast.Class, sources[1].Designation)
	assert.Equal(t, "Point.olang", filepath.Base(sources[2].Filename))
}

func TestDiscover_MissingLibraryIsFine(t *testing.T) {
	dir := writeProject(t, map[string]string{"src/Point.olang": point})

	sources, err := Discover(Options{Library: filepath.Join(dir, "lib"), Source: filepath.Join(dir, "src")})
	require.NoError(t, err)
	assert.Len(t, sources, 1)

	_, err = Discover(Options{Source: filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"src/Point.olang":    point,
		"src/Main.olang":     main,
		"lib/Geometry.olang": geometry,
	})

	var buf bytes.Buffer
	result, err := Compile(Options{
		Library: filepath.Join(dir, "lib"),
		Source:  filepath.Join(dir, "src"),
		Stdlib:  true,
		Logger:  log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	assert.Len(t, result.Units, 7)
	assert.True(t, result.Session.Checked())
	assert.Contains(t, buf.String(), "driver: lexing Point.olang")
	assert.Contains(t, buf.String(), "driver: sealed session with 7 units")

	var designations []ast.Designation
	for _, unit := range result.Units {
		designations = append(designations, unit.Designation)
	}
	assert.Equal(t, []ast.Designation{
		ast.Library, ast.Library, ast.Library, ast.Library,
		ast.Library, ast.Class, ast.Class,
	}, designations)
}

func TestCompile_Errors(t *testing.T) {
	testData := []struct {
		name    string
		program string
		check   func(t *testing.T, err error)
	}{
		{
			"lexical",
			"class A is var x: a$b end",
			func(t *testing.T, err error) {
				var lexical errors.LexicalError
				require.True(t, stderrors.As(tracerr.Unwrap(err), &lexical), err.Error())
			},
		},
		{
			"syntax",
			"class A is var x Integer end",
			func(t *testing.T, err error) {
				var syntax errors.SyntaxError
				require.True(t, stderrors.As(tracerr.Unwrap(err), &syntax), err.Error())
				assert.Equal(t, "':'", syntax.Expected)
			},
		},
		{
			"semantic",
			"class A is method m: Integer is return y end end",
			func(t *testing.T, err error) {
				var semantic errors.SemanticError
				require.True(t, stderrors.As(tracerr.Unwrap(err), &semantic), err.Error())
				assert.Equal(t, "No definition for variable y", semantic.Msg)
			},
		},
	}

	for _, data := range testData {
		_, err := CompileSources([]Source{{Filename: "A.olang", Content: data.program}}, Options{Stdlib: true})
		require.Error(t, err, data.name)
		data.check(t, err)
	}
}

func TestCompile_RegistersBeforeLexingNext(t *testing.T) {
	var buf bytes.Buffer
	_, err := CompileSources([]Source{
		{Filename: "A.olang", Content: "class A is end"},
		{Filename: "Again.olang", Content: "class A is end"},
		{Filename: "Bad.olang", Content: "class B is var x: a$b end"},
	}, Options{Logger: log.New(&buf, "", 0)})
	require.Error(t, err)

	var semantic errors.SemanticError
	require.True(t, stderrors.As(tracerr.Unwrap(err), &semantic), err.Error())
	assert.Equal(t, "Class A is declared more than once", semantic.Msg)
	assert.NotContains(t, buf.String(), "driver: lexing Bad.olang")
}

func TestCompile_NoUnits(t *testing.T) {
	_, err := CompileSources(nil, Options{})
	assert.Equal(t, ErrNoUnits, tracerr.Unwrap(err))
}

func TestEmit(t *testing.T) {
	result, err := CompileSources([]Source{
		{Filename: "Point.olang", Content: point},
		{Filename: "Geometry.olang", Content: geometry, Designation: ast.Library},
		{Filename: "Main.olang", Content: main},
	}, Options{Stdlib: true})
	require.NoError(t, err)

	out := t.TempDir()
	written, err := Emit(result, out, emitter.Config{Package: "app", ImportPath: "example.com/app"}, nil)
	require.NoError(t, err)
	assert.Len(t, written, 7)

	data, err := ioutil.ReadFile(filepath.Join(out, "lib", "geometry.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "func (this *Geometry) Twice(a int) int {")

	data, err = ioutil.ReadFile(filepath.Join(out, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "sq := (&lib.Geometry{}).Twice(p.get())")
}
