package depmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
)

var selfPkg = ident.PackageName{Org: "acme", Name: "widgets", Version: ident.Version{Major: 1}}
var libPkg = ident.PackageName{Org: "acme", Name: "lib", Version: ident.Version{Major: 1}}

type fixedResolver struct {
	pkgs map[string]ident.PackageName
}

func (r fixedResolver) ResolvePackage(path string) (ident.PackageName, bool) {
	pkg, ok := r.pkgs[path]
	return pkg, ok
}

func pos() ident.Pos { return ident.Pos{Path: "a.rx", Line: 1, Column: 1} }

func TestBreakdownImportWholeModule(t *testing.T) {
	m := New(selfPkg, fixedResolver{pkgs: map[string]ident.PackageName{"lib": libPkg}})

	syms, err := m.BreakdownImport(&pir.ImportDecl{Pos: pos(), Path: "lib"})
	require.NoError(t, err)
	assert.Equal(t, []ident.Symbol{ident.NewSymbol(libPkg)}, syms)
}

func TestBreakdownImportFlatNames(t *testing.T) {
	m := New(selfPkg, fixedResolver{pkgs: map[string]ident.PackageName{"lib": libPkg}})

	syms, err := m.BreakdownImport(&pir.ImportDecl{
		Pos:  pos(),
		Path: "lib",
		Names: []pir.ImportName{
			{Name: "a"},
			{Name: "b"},
		},
	})
	require.NoError(t, err)

	root := ident.NewSymbol(libPkg)
	assert.ElementsMatch(t, []ident.Symbol{root.Child("a"), root.Child("b")}, syms)
}

func TestBreakdownImportNestedNames(t *testing.T) {
	m := New(selfPkg, fixedResolver{pkgs: map[string]ident.PackageName{"lib": libPkg}})

	syms, err := m.BreakdownImport(&pir.ImportDecl{
		Pos:  pos(),
		Path: "lib",
		Names: []pir.ImportName{
			{Name: "a"},
			{Name: "b", Nested: []pir.ImportName{{Name: "c"}, {Name: "d"}}},
		},
	})
	require.NoError(t, err)

	root := ident.NewSymbol(libPkg)
	b := root.Child("b")
	assert.ElementsMatch(t, []ident.Symbol{root.Child("a"), b.Child("c"), b.Child("d")}, syms)
}

func TestBreakdownImportUndeclaredPathFails(t *testing.T) {
	m := New(selfPkg, fixedResolver{pkgs: map[string]ident.PackageName{}})

	_, err := m.BreakdownImport(&pir.ImportDecl{Pos: pos(), Path: "nope"})
	require.Error(t, err)
}
