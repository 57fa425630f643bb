// Package importver implements the import verifier (§4.2): for every
// import in a file, it expands the import to its candidate symbols,
// confirms each resolves in the package table, and applies the access
// predicate between the importing module and the declaring module.
package importver

import (
	"github.com/rxlang/rxc/internal/depmgr"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

// Verify checks every import in file. from is the importing module's own
// symbol (its file/directory path within self's package).
func Verify(self ident.PackageName, from ident.Symbol, file *pir.File, dm depmgr.Manager, table *symtab.Table) error {
	for _, imp := range file.Imports {
		syms, err := dm.BreakdownImport(imp)
		if err != nil {
			return err
		}
		for _, sym := range syms {
			rec, ok := table.Lookup(sym)
			if !ok {
				return diag.New(diag.ResUnknownImportSymbol, "import", imp.Pos,
					"import %s does not resolve to a known symbol", sym)
			}
			if !permitted(rec.Access, from, rec.Module) {
				return diag.New(diag.ResAccessDenied, "import", imp.Pos,
					"%s is %s and not visible from %s", sym, rec.Access, from).
					WithData("access", rec.Access.String()).
					WithData("from", from.String()).
					WithData("to", rec.Module.String())
			}
		}
	}
	return nil
}

// permitted implements the access predicate table of §4.2.
func permitted(access ident.AccessLevel, from, to ident.Symbol) bool {
	switch access {
	case ident.Private:
		return from == to
	case ident.Protected:
		parent, ok := to.Parent()
		return ok && parent.IsParent(from)
	case ident.Package:
		return from.Package().Equal(to.Package())
	case ident.Internal:
		return from.Package().SameAssembly(to.Package())
	case ident.Public:
		return true
	default:
		return false
	}
}
