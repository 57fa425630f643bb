// Package stdlib is the standard-library loader stand-in (§6 "Inputs to
// the core"): it registers the fixed set of builtin types in the package
// table, and builds the Preamble and CoreTypes handles every file's
// checking starts from. A real toolchain would load this from a
// bundled core package; here it is frozen in Go instead.
package stdlib

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/symtab"
)

// CorePackage is the package identity every builtin type belongs to.
var CorePackage = ident.PackageName{Org: "core", Name: "math", Version: ident.Version{Major: 1}}

func coreSym(segment string) ident.Symbol {
	return ident.NewSymbol(CorePackage, segment)
}

// Load registers every builtin into table, and returns the preamble and
// CoreTypes handle for it (§3.5, §6).
func Load(table *symtab.Table) (symtab.Preamble, *symtab.CoreTypes, error) {
	ct := &symtab.CoreTypes{
		Unit:    coreSym("Unit"),
		Nothing: coreSym("Nothing"),
		Boolean: coreSym("Boolean"),
		Int:     coreSym("Int"),
		Float:   coreSym("Float"),
		String:  coreSym("String"),
		List:    coreSym("List"),
		Set:     coreSym("Set"),
		Map:     coreSym("Map"),
		Option:  coreSym("Option"),
		Async:   coreSym("Async"),
	}

	atoms := []ident.Symbol{ct.Unit, ct.Nothing, ct.Boolean, ct.Int, ct.Float, ct.String}
	for _, sym := range atoms {
		if err := table.Declare(sym, &symtab.AccessRecord{
			Access: ident.Public,
			Name:   sym.Name(),
			Module: sym,
			Type:   &cir.AtomType{Name: sym},
		}); err != nil {
			return nil, nil, err
		}
	}

	generics := []ident.Symbol{ct.List, ct.Set, ct.Map, ct.Option, ct.Async}
	for _, sym := range generics {
		arity := 1
		if sym == ct.Map {
			arity = 2
		}
		tparams := make([]*cir.TypeParameterType, arity)
		for i := range tparams {
			name := "K"
			if arity == 1 || i == 1 {
				name = "T"
				if arity == 2 {
					name = "V"
				}
			}
			tparams[i] = &cir.TypeParameterType{Name: coreSym(sym.Name() + "." + name)}
		}
		if err := table.Declare(sym, &symtab.AccessRecord{
			Access: ident.Public,
			Name:   sym.Name(),
			Module: sym,
			Type:   &cir.StructType{Name: sym, TypeParams: tparams},
		}); err != nil {
			return nil, nil, err
		}
	}

	preamble := symtab.Preamble{
		"Unit":    ct.Unit,
		"Nothing": ct.Nothing,
		"Boolean": ct.Boolean,
		"Int":     ct.Int,
		"Float":   ct.Float,
		"String":  ct.String,
		"List":    ct.List,
		"Set":     ct.Set,
		"Map":     ct.Map,
		"Option":  ct.Option,
		"Async":   ct.Async,
	}

	if err := loadOperators(table, ct, preamble); err != nil {
		return nil, nil, err
	}
	if err := loadCoreModule(table, ct, preamble); err != nil {
		return nil, nil, err
	}

	return preamble, ct, nil
}

func atomType(sym ident.Symbol) cir.TypeExpression { return &cir.AtomType{Name: sym} }

// loadOperators seeds the arithmetic operators the surface language
// desugars `1 + 1`-style expressions into (§4.3.3 "no category is
// recovered from" applies equally to a failed overload match on these):
// each is an overloaded function over Int/Int and Float/Float, since rxc
// has no numeric-tower coercion.
func loadOperators(table *symtab.Table, ct *symtab.CoreTypes, preamble symtab.Preamble) error {
	names := []string{"+", "-", "*", "/"}
	for _, name := range names {
		sym := coreSym(name)
		overload := &cir.OverloadFunctionType{Branches: []*cir.FunctionType{
			{Params: []cir.FuncParam{{Type: atomType(ct.Int)}, {Type: atomType(ct.Int)}}, Result: atomType(ct.Int)},
			{Params: []cir.FuncParam{{Type: atomType(ct.Float)}, {Type: atomType(ct.Float)}}, Result: atomType(ct.Float)},
		}}
		if err := table.Declare(sym, &symtab.AccessRecord{Access: ident.Public, Name: name, Module: sym, Type: overload}); err != nil {
			return err
		}
		preamble[name] = sym
	}
	return nil
}

// loadCoreModule registers the `core::list::{get,map}` functions (§8 S2,
// S4) under a `core` module symbol, so that StaticAccess resolution
// (checkStaticAccess) can walk `core` -> `list` -> `get`/`map` the same
// way it walks any user-declared nested module.
func loadCoreModule(table *symtab.Table, ct *symtab.CoreTypes, preamble symtab.Preamble) error {
	root := ident.NewSymbol(CorePackage)
	list := root.Child("list")

	if err := table.Declare(root, &symtab.AccessRecord{Access: ident.Public, Name: "core", Module: root, Type: &cir.ModuleType{Name: root}}); err != nil {
		return err
	}
	if err := table.Declare(list, &symtab.AccessRecord{Access: ident.Public, Name: "list", Module: list, Type: &cir.ModuleType{Name: list}}); err != nil {
		return err
	}
	preamble["core"] = root

	tParam := func(name string) *cir.TypeParameterType { return &cir.TypeParameterType{Name: coreSym("list." + name)} }

	getSym := list.Child("get")
	t := tParam("get.T")
	getType := &cir.FunctionType{
		TypeParams: []*cir.TypeParameterType{t},
		Params: []cir.FuncParam{
			{Type: &cir.ParameterizedType{Base: &cir.NominalType{Name: ct.List}, Args: []cir.TypeExpression{t}}},
			{Type: atomType(ct.Int)},
		},
		Result: t,
	}
	if err := table.Declare(getSym, &symtab.AccessRecord{Access: ident.Public, Name: "get", Module: getSym, Type: getType}); err != nil {
		return err
	}

	mapSym := list.Child("map")
	mt, mu := tParam("map.T"), tParam("map.U")
	mapperParamPhase := phase.Val
	mapType := &cir.FunctionType{
		TypeParams: []*cir.TypeParameterType{mt, mu},
		Params: []cir.FuncParam{
			{Type: &cir.ParameterizedType{Base: &cir.NominalType{Name: ct.List}, Args: []cir.TypeExpression{mt}}},
			{Type: &cir.FunctionType{Params: []cir.FuncParam{{Phase: &mapperParamPhase, Type: mt}}, Result: mu}},
		},
		Result: &cir.ParameterizedType{Base: &cir.NominalType{Name: ct.List}, Args: []cir.TypeExpression{mu}},
	}
	return table.Declare(mapSym, &symtab.AccessRecord{Access: ident.Public, Name: "map", Module: mapSym, Type: mapType})
}
