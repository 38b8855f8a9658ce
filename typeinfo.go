package main

import (
	"encoding/json"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/Maxkoz777/OJavaTranspiler/ast"
	"github.com/Maxkoz777/OJavaTranspiler/reader"
	"github.com/Maxkoz777/OJavaTranspiler/typechecker"
)

var scalarTypes = map[string]types.Type{
	typechecker.Integer: &types.IntType{BitSize: 32, TypeName: typechecker.Integer},
	typechecker.Real:    &types.FloatType{Kind: types.FloatKindDouble, TypeName: typechecker.Real},
	typechecker.Boolean: &types.IntType{BitSize: 1, TypeName: typechecker.Boolean},
}

type classInfo struct {
	Parent  string            `json:"parent,omitempty"`
	Fields  map[string]string `json:"fields"`
	Methods map[string]string `json:"methods"`
}

type typeInfo struct {
	Classes map[string]classInfo `json:"classes"`
}

// collectTypeInfo lists the class units of a checked session with their
// resolved field types and method return types.
func collectTypeInfo(s *typechecker.Session) (typeInfo, error) {
	t := typeInfo{Classes: map[string]classInfo{}}
	for _, class := range s.Classes() {
		if class.Unit.Designation == ast.Library {
			continue
		}

		info := classInfo{
			Parent:  class.Parent,
			Fields:  map[string]string{},
			Methods: map[string]string{},
		}
		for name, decl := range class.Fields {
			kind, err := s.TypeOf(decl)
			if err != nil {
				return typeInfo{}, err
			}
			info.Fields[name] = kind
		}
		for name, method := range class.Methods {
			kind, err := s.ReturnTypeOf(method)
			if err != nil {
				return typeInfo{}, err
			}
			info.Methods[name] = kind
		}
		t.Classes[class.Name] = info
	}
	return t, nil
}

func llvmType(name string) types.Type {
	if t, ok := scalarTypes[ast.BaseTypeName(name)]; ok {
		return t
	}
	return types.I8Ptr
}

// typeInfoModule builds an IR module holding one struct definition per
// class and the JSON type information as an immutable global.
func typeInfoModule(t typeInfo) (*ir.Module, error) {
	m := ir.NewModule()
	for _, name := range []string{typechecker.Boolean, typechecker.Integer, typechecker.Real} {
		m.NewTypeDef(name, scalarTypes[name])
	}

	var names []string
	for name := range t.Classes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := t.Classes[name]
		var fields []string
		for field := range info.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		var elems []types.Type
		if info.Parent != "" {
			elems = append(elems, types.I8Ptr)
		}
		for _, field := range fields {
			elems = append(elems, llvmType(info.Fields[field]))
		}
		m.NewTypeDef(name, types.NewStruct(elems...))
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	g := m.NewGlobalDef(reader.Symbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
	return m, nil
}

func getTypeInfoFromFile(f string) (t typeInfo, err error) {
	data, err := reader.ReadTypeInfo(f)
	if err != nil {
		return typeInfo{}, err
	}

	err = json.Unmarshal([]byte(data), &t)
	return
}
