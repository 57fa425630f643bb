// Package depmgr implements the DependencyManager (§3.6): the per-package
// object that knows a package's declared dependencies and expands a
// parsed import expression into the set of fully qualified symbols it
// refers to.
package depmgr

import (
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
)

// Manager is the DependencyManager interface (§3.6, §6).
type Manager interface {
	// BreakdownImport flattens a (possibly nested) import expression,
	// e.g. `pkg/{a, b::{c, d}}`, into the set of fully qualified symbols
	// it denotes.
	BreakdownImport(imp *pir.ImportDecl) ([]ident.Symbol, error)
}

// PathResolver maps the string path prefix of an import (e.g. "pkg") to
// the PackageName that declares it, per this package's own declared
// dependencies.
type PathResolver interface {
	ResolvePackage(path string) (ident.PackageName, bool)
}

// manager is the default Manager, backed by a PathResolver.
type manager struct {
	self     ident.PackageName
	resolver PathResolver
}

// New builds a Manager for the package `self`, resolving import paths via
// resolver.
func New(self ident.PackageName, resolver PathResolver) Manager {
	return &manager{self: self, resolver: resolver}
}

func (m *manager) BreakdownImport(imp *pir.ImportDecl) ([]ident.Symbol, error) {
	pkg, ok := m.resolver.ResolvePackage(imp.Path)
	if !ok {
		return nil, imp.Pos.Fail("package %q is not a declared dependency of %s", imp.Path, m.self)
	}

	root := ident.NewSymbol(pkg)
	if len(imp.Names) == 0 {
		// Whole-module import: the package's root symbol is returned
		// as is. Callers look that root symbol up in the package table
		// directly; it is not expanded into the module's individual
		// symbols.
		return []ident.Symbol{root}, nil
	}
	return expandNames(root, imp.Names), nil
}

// expandNames recursively flattens `pkg/{a, b::{c, d}}` into individual
// fully qualified symbols (§4.1).
func expandNames(base ident.Symbol, names []pir.ImportName) []ident.Symbol {
	var out []ident.Symbol
	for _, n := range names {
		child := base.Child(n.Name)
		if len(n.Nested) == 0 {
			out = append(out, child)
			continue
		}
		out = append(out, expandNames(child, n.Nested)...)
	}
	return out
}
