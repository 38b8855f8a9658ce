// Package driver runs the compilation pipeline over a project: discovery of
// library and class units, lexing, parsing, registration into one session,
// the global check and finally Go emission.
package driver

import (
	"errors"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ztrue/tracerr"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/emitter"
	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/parser"
	"github.com/Maxkoz777/OJavaTranspiler/stdlib"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

// ErrNoUnits is returned when there is nothing to compile.
var ErrNoUnits = errors.New("no units to compile")

type Options struct {
	// Library is the directory holding library units, may be empty.
	Library string
	// Source is the directory holding class units.
	Source string
	// Stdlib registers the embedded library units ahead of everything else.
	Stdlib bool
	Logger *log.Logger
}

// Source is one unit to compile, read from disk or held in memory.
type Source struct {
	Filename    string
	Content     string
	Designation ast.Designation
}

type Result struct {
	Session *typechecker.Session
	Units   []*ast.Tree
}

func logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return log.New(io.Discard, "", 0)
}

// Discover lists the units of a project: every file with the source
// extension in the library directory, then in the source directory, each
// sorted by name.
func Discover(opts Options) ([]Source, error) {
	var ret []Source
	for _, dir := range []struct {
		path        string
		designation ast.Designation
	}{
		{opts.Library, ast.Library},
		{opts.Source, ast.Class},
	} {
		if dir.path == "" {
			continue
		}
		fis, err := ioutil.ReadDir(dir.path)
		if os.IsNotExist(err) && dir.designation == ast.Library {
			continue
		}
		if err != nil {
			return nil, tracerr.Wrap(err)
		}

		var names []string
		for _, fi := range fis {
			if !fi.IsDir() && strings.HasSuffix(fi.Name(), stdlib.Extension) {
				names = append(names, fi.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			filename := filepath.Join(dir.path, name)
			data, err := ioutil.ReadFile(filename)
			if err != nil {
				return nil, tracerr.Wrap(err)
			}
			ret = append(ret, Source{Filename: filename, Content: string(data), Designation: dir.designation})
		}
	}
	return ret, nil
}

// Load lexes and parses one unit.
func Load(src Source) (*ast.Tree, error) {
	tokens, err := lexer.Tokenize(src.Content, src.Filename)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	tree, err := parser.Parse(tokens, src.Filename)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	tree.Designation = src.Designation
	return tree, nil
}

// Compile discovers the units of a project and checks them.
func Compile(opts Options) (*Result, error) {
	sources, err := Discover(opts)
	if err != nil {
		return nil, err
	}
	return CompileSources(sources, opts)
}

// CompileSources runs the pipeline over the given units. The first error of
// any stage aborts the run.
func CompileSources(sources []Source, opts Options) (*Result, error) {
	l := logger(opts)

	var library []*ast.Tree
	if opts.Stdlib {
		var err error
		library, err = stdlib.Trees()
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		l.Printf("driver: loaded %d stdlib units", len(library))
	}

	total := len(library) + len(sources)
	if total == 0 {
		return nil, tracerr.Wrap(ErrNoUnits)
	}

	session := typechecker.NewSession(total)
	trees := make([]*ast.Tree, 0, total)
	register := func(tree *ast.Tree) error {
		l.Printf("driver: registering %s (%s)", tree.Filename, tree.Designation)
		if err := session.Register(tree); err != nil {
			return tracerr.Wrap(err)
		}
		trees = append(trees, tree)
		return nil
	}

	for _, tree := range library {
		if err := register(tree); err != nil {
			return nil, err
		}
	}
	for _, src := range sources {
		l.Printf("driver: lexing %s", filepath.Base(src.Filename))
		tree, err := Load(src)
		if err != nil {
			return nil, err
		}
		if err := register(tree); err != nil {
			return nil, err
		}
	}
	l.Printf("driver: sealed session with %d units", len(trees))

	if err := session.Check(); err != nil {
		return nil, tracerr.Wrap(err)
	}
	l.Printf("driver: checked %d classes", len(session.Classes()))

	return &Result{Session: session, Units: trees}, nil
}

// Emit generates Go code for a checked result and writes it under out.
// It returns the paths of the written files.
func Emit(result *Result, out string, config emitter.Config, l *log.Logger) ([]string, error) {
	if l == nil {
		l = logger(Options{})
	}

	files, err := emitter.NewEmitter(result.Session, config).Emit()
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	var written []string
	for _, file := range files {
		path := filepath.Join(out, filepath.FromSlash(file.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, tracerr.Wrap(err)
		}
		if err := ioutil.WriteFile(path, []byte(file.Content), 0644); err != nil {
			return nil, tracerr.Wrap(err)
		}
		l.Printf("driver: wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
