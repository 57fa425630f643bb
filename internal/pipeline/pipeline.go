// Package pipeline provides a unified compilation pipeline for rxc: one
// Run call sequences symbol collection, import verification, checking,
// and reactive lowering over a set of source files sharing a package
// table (§5, §6).
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rxlang/rxc/internal/check"
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/collect"
	"github.com/rxlang/rxc/internal/depmgr"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/importver"
	"github.com/rxlang/rxc/internal/lower"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/stdlib"
	"github.com/rxlang/rxc/internal/symtab"
	"github.com/rxlang/rxc/internal/tir"
)

// Config controls one pipeline run.
type Config struct {
	// Self is this package's own identity, used to scope every symbol
	// the run declares.
	Self ident.PackageName
	// Resolver expands a file's import path prefixes to the
	// PackageName that declares them (§3.6); a project manifest loaded
	// via depmgr.LoadManifest produces one via
	// depmgr.NewManifestResolver.
	Resolver depmgr.PathResolver
	// MaxConcurrency bounds how many files' symbol collection runs at
	// once (§5); zero means "let errgroup pick an unbounded count".
	MaxConcurrency int
	// SkipLowering stops after checking, for callers (e.g. `rxc check`)
	// that only want diagnostics, not a T-IR.
	SkipLowering bool
}

// Source is one parsed input file.
type Source struct {
	Path string
	File *pir.File
}

// Artifacts holds the intermediate representations produced for one
// source, for callers that want to inspect a specific stage (§6).
type Artifacts struct {
	Scope   collect.Scope
	Checked *cir.File
	Lowered *tir.File
}

// Result is the outcome of one Run: either every file's artifacts, or
// the first Diagnostic any stage raised (§7 "fail-fast").
type Result struct {
	Table     *symtab.Table
	Artifacts map[string]*Artifacts // keyed by Source.Path
}

// Run executes the full pipeline over every source: concurrent symbol
// collection bounded by cfg.MaxConcurrency (§5), then sequential import
// verification, checking, and lowering per file, since those stages
// read the now-complete package table built during collection.
func Run(ctx context.Context, cfg Config, sources []Source) (Result, error) {
	table := symtab.NewTable()
	preamble, core, err := stdlib.Load(table)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: loading stdlib: %w", err)
	}
	dm := depmgr.New(cfg.Self, cfg.Resolver)

	scopes := make([]collect.Scope, len(sources))
	moduleSymbols := make([]ident.Symbol, len(sources))

	g, _ := errgroup.WithContext(ctx)
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}
	for i, src := range sources {
		i, src := i, src
		moduleSymbols[i] = ident.NewSymbol(cfg.Self, src.File.Path)
		g.Go(func() error {
			scope, err := collect.CollectDeclarations(cfg.Self, src.File, dm, table, preamble)
			if err != nil {
				return err
			}
			scopes[i] = scope
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Table: table, Artifacts: make(map[string]*Artifacts, len(sources))}
	for i, src := range sources {
		if err := importver.Verify(cfg.Self, moduleSymbols[i], src.File, dm, table); err != nil {
			return Result{}, err
		}

		checker := check.New(table, core, moduleSymbols[i], scopes[i])
		checked, err := checker.CheckFile(src.File)
		if err != nil {
			return Result{}, err
		}
		art := &Artifacts{Scope: scopes[i], Checked: checked}

		if !cfg.SkipLowering {
			lowered, err := lower.New().LowerFile(checked)
			if err != nil {
				return Result{}, err
			}
			art.Lowered = lowered
		}
		result.Artifacts[src.Path] = art
	}
	return result, nil
}

// Diagnostics extracts the *diag.Diagnostic from a Run error, if it is
// one. Most collect/import/check/lower failures are Diagnostics (§7);
// an import path depmgr cannot resolve, a duplicate symtab.Table.Declare
// and a stdlib load failure come back as plain errors, as does anything
// else (e.g. a manifest I/O failure).
func Diagnostics(err error) (*diag.Diagnostic, bool) {
	if err == nil {
		return nil, false
	}
	return diag.As(err)
}
