// Package collect implements symbol collection and type-expression
// qualification (§4.1): building a file's flat local-scope map from
// short names to fully qualified symbols, and resolving parsed (nominal)
// type expressions against it.
package collect

import (
	"github.com/rxlang/rxc/internal/depmgr"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

// Scope is the flat short-name → fully-qualified-symbol map a file's
// body starts checking from (§4.1).
type Scope map[string]ident.Symbol

// CollectDeclarations scans every top-level declaration in file and every
// name file's imports bring in, producing file's local Scope.
//
// Precedence, highest first: the file's own top-level declarations, then
// explicit imports, then the preamble (see DESIGN.md). A file that
// imports a name it also declares sees its own declaration, matching
// ordinary shadowing intuition.
func CollectDeclarations(self ident.PackageName, file *pir.File, dm depmgr.Manager, table *symtab.Table, preamble symtab.Preamble) (Scope, error) {
	scope := make(Scope, len(preamble))
	for name, sym := range preamble {
		scope[name] = sym
	}

	for _, imp := range file.Imports {
		syms, err := dm.BreakdownImport(imp)
		if err != nil {
			return nil, err
		}
		for _, sym := range syms {
			if _, ok := table.Lookup(sym); !ok {
				return nil, diag.New(diag.ResUnknownImportSymbol, "collect", imp.Pos,
					"import %s does not resolve to a known symbol", sym)
			}
			scope[sym.Name()] = sym
		}
	}

	moduleSym := ident.NewSymbol(self, file.Path)
	for _, d := range file.Declarations {
		name, sym := declSymbol(moduleSym, d)
		scope[name] = sym
	}

	return scope, nil
}

func declSymbol(module ident.Symbol, d pir.Declaration) (string, ident.Symbol) {
	switch v := d.(type) {
	case *pir.FunctionDecl:
		return v.Name, module.Child(v.Name)
	case *pir.ConstantDecl:
		return v.Name, module.Child(v.Name)
	case *pir.DataDecl:
		return v.Name, module.Child(v.Name)
	default:
		return "", ident.Symbol{}
	}
}
