package importver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

var widgets = ident.PackageName{Org: "acme", Name: "widgets", Version: ident.Version{Major: 1}}
var gadgets = ident.PackageName{Org: "globex", Name: "gadgets", Version: ident.Version{Major: 1}}

// fixedManager hands back a fixed symbol set for every import, standing
// in for a real depmgr.Manager since these fixtures don't need path
// resolution.
type fixedManager struct {
	syms []ident.Symbol
}

func (f fixedManager) BreakdownImport(*pir.ImportDecl) ([]ident.Symbol, error) {
	return f.syms, nil
}

func fileImporting(syms ...ident.Symbol) *pir.File {
	return &pir.File{Imports: []*pir.ImportDecl{{Path: "whatever"}}}
}

func declare(t *testing.T, table *symtab.Table, sym ident.Symbol, access ident.AccessLevel, module ident.Symbol) {
	t.Helper()
	require.NoError(t, table.Declare(sym, &symtab.AccessRecord{Access: access, Name: sym.Name(), Module: module, Type: &cir.AtomType{Name: sym}}))
}

func verify(t *testing.T, from ident.Symbol, table *symtab.Table, target ident.Symbol) error {
	t.Helper()
	return Verify(widgets, from, fileImporting(target), fixedManager{syms: []ident.Symbol{target}}, table)
}

func TestVerifyPublicAlwaysPermitted(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	target := mod.Child("Thing")
	declare(t, table, target, ident.Public, mod)

	err := verify(t, ident.NewSymbol(gadgets, "other.rx"), table, target)
	assert.NoError(t, err)
}

func TestVerifyPrivateOnlyFromTheSameSymbol(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	target := mod.Child("Thing")
	declare(t, table, target, ident.Private, target)

	err := verify(t, target, table, target)
	assert.NoError(t, err)

	err = verify(t, mod.Child("Other"), table, target)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.ResAccessDenied, d.Code)
}

func TestVerifyProtectedRequiresParentRelation(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	target := mod.Child("Thing")
	declare(t, table, target, ident.Protected, mod)

	err := verify(t, mod.Child("Sibling"), table, target)
	assert.NoError(t, err)

	err = verify(t, ident.NewSymbol(widgets, "other.rx"), table, target)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.ResAccessDenied, d.Code)
}

func TestVerifyPackageRequiresSamePackage(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	target := mod.Child("Thing")
	declare(t, table, target, ident.Package, mod)

	err := verify(t, ident.NewSymbol(widgets, "other.rx"), table, target)
	assert.NoError(t, err)

	err = verify(t, ident.NewSymbol(gadgets, "other.rx"), table, target)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.ResAccessDenied, d.Code)
}

func TestVerifyInternalRequiresSameAssembly(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	target := mod.Child("Thing")
	declare(t, table, target, ident.Internal, mod)

	sameOrgDifferentName := ident.PackageName{Org: widgets.Org, Name: "other-widget", Version: widgets.Version}
	err := verify(t, ident.NewSymbol(sameOrgDifferentName, "x.rx"), table, target)
	assert.NoError(t, err)

	err = verify(t, ident.NewSymbol(gadgets, "other.rx"), table, target)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.ResAccessDenied, d.Code)
}

func TestVerifyUnknownImportSymbolFails(t *testing.T) {
	table := symtab.NewTable()
	mod := ident.NewSymbol(widgets, "lib.rx")
	ghost := mod.Child("Ghost")

	err := verify(t, ident.NewSymbol(widgets, "other.rx"), table, ghost)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.ResUnknownImportSymbol, d.Code)
}
