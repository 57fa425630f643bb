// Package symtab holds the package-level tables produced by symbol
// collection and consumed by every later stage (§3.5): the
// Map<PackageName, Map<Symbol, AccessRecord>>, the short-name preamble,
// and the CoreTypes handle used by the checker for literal/constructor
// typing.
package symtab

import (
	"sync"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/ident"
)

// AccessRecord is the record a declared Symbol is filed under (§3.5).
type AccessRecord struct {
	Access ident.AccessLevel
	Name   string        // short name, for diagnostics
	Module ident.Symbol  // the module (file/directory) symbol that declares it
	Type   cir.TypeExpression
}

// Table is the package-level symbol table: every declared Symbol across
// every known package, keyed first by package, then by symbol. It is
// built once during symbol collection and is read-only afterwards (§5).
type Table struct {
	mu   sync.RWMutex
	pkgs map[ident.PackageName]map[ident.Symbol]*AccessRecord
}

// NewTable builds an empty Table.
func NewTable() *Table {
	return &Table{pkgs: make(map[ident.PackageName]map[ident.Symbol]*AccessRecord)}
}

// Declare records sym's AccessRecord. It is an internal invariant
// violation (§7 class 5) for the same Symbol to be declared twice; the
// caller (internal/collect) is expected to have already deduplicated.
func (t *Table) Declare(sym ident.Symbol, rec *AccessRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	pkg := sym.Package()
	m, ok := t.pkgs[pkg]
	if !ok {
		m = make(map[ident.Symbol]*AccessRecord)
		t.pkgs[pkg] = m
	}
	if _, exists := m[sym]; exists {
		return ident.Pos{}.Fail("internal invariant violated: symbol %s declared twice", sym)
	}
	m[sym] = rec
	return nil
}

// Lookup finds the AccessRecord for sym, if any.
func (t *Table) Lookup(sym ident.Symbol) (*AccessRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.pkgs[sym.Package()]
	if !ok {
		return nil, false
	}
	rec, ok := m[sym]
	return rec, ok
}

// Package returns every symbol declared in pkg.
func (t *Table) Package(pkg ident.PackageName) map[ident.Symbol]*AccessRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[ident.Symbol]*AccessRecord, len(t.pkgs[pkg]))
	for k, v := range t.pkgs[pkg] {
		out[k] = v
	}
	return out
}

// Preamble is the short-name → fully-qualified-symbol map merged into
// every file's initial scope (§3.5, §GLOSSARY).
type Preamble map[string]ident.Symbol

// CoreTypes holds direct handles to the fixed set of builtin types the
// checker uses for literal/constructor typing (§3.5).
type CoreTypes struct {
	Unit    ident.Symbol
	Nothing ident.Symbol
	Boolean ident.Symbol
	Int     ident.Symbol
	Float   ident.Symbol
	String  ident.Symbol
	List    ident.Symbol
	Set     ident.Symbol
	Map     ident.Symbol
	Option  ident.Symbol
	Async   ident.Symbol
}
