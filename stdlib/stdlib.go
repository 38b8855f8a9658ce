// Package stdlib holds the library units every program is compiled against.
// Integer, Real and Boolean only declare their interface: the emitter maps
// them onto Go's scalar types and implements their methods natively.
package stdlib

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/parser"
)

//go:embed *.olang
var sources embed.FS

const Extension = ".olang"

var scalars = map[string]bool{
	"Integer": true,
	"Real":    true,
	"Boolean": true,
}

// IsScalar reports whether name is one of the library classes backed by a Go
// scalar type.
func IsScalar(name string) bool {
	return scalars[ast.BaseTypeName(name)]
}

type Source struct {
	Filename string
	Content  string
}

// Sources returns the embedded library sources sorted by file name.
func Sources() ([]Source, error) {
	entries, err := fs.ReadDir(sources, ".")
	if err != nil {
		return nil, err
	}

	var ret []Source
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != Extension {
			continue
		}
		data, err := sources.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		ret = append(ret, Source{entry.Name(), string(data)})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Filename < ret[j].Filename
	})
	return ret, nil
}

// Names lists the classes provided by the library.
func Names() []string {
	srcs, err := Sources()
	if err != nil {
		return nil
	}
	var ret []string
	for _, src := range srcs {
		ret = append(ret, strings.TrimSuffix(src.Filename, Extension))
	}
	return ret
}

// Trees lexes and parses every library unit, designated as Library.
func Trees() ([]*ast.Tree, error) {
	srcs, err := Sources()
	if err != nil {
		return nil, err
	}

	var ret []*ast.Tree
	for _, src := range srcs {
		filename := "stdlib/" + src.Filename
		tokens, err := lexer.Tokenize(src.Content, filename)
		if err != nil {
			return nil, fmt.Errorf("stdlib %s: %w", src.Filename, err)
		}
		tree, err := parser.Parse(tokens, filename)
		if err != nil {
			return nil, fmt.Errorf("stdlib %s: %w", src.Filename, err)
		}
		tree.Designation = ast.Library
		ret = append(ret, tree)
	}
	return ret, nil
}
