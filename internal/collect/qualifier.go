package collect

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

// Qualifier resolves parsed type expressions against a file's Scope and
// the package table (§4.1 "Qualifier.checkTypeExpression").
type Qualifier struct {
	Scope Scope
	Table *symtab.Table
}

// NewQualifier builds a Qualifier bound to the given scope and table.
func NewQualifier(scope Scope, table *symtab.Table) *Qualifier {
	return &Qualifier{Scope: scope, Table: table}
}

// CheckTypeExpression resolves a parsed type expression into a checked
// one. Nominal names are resolved against q.Scope; parameterized types
// instantiate their base recursively; function types preserve their
// shape verbatim (phase, per-parameter phase, result).
func (q *Qualifier) CheckTypeExpression(te pir.TypeExpr) (cir.TypeExpression, error) {
	switch t := te.(type) {
	case *pir.NominalTypeExpr:
		sym, ok := q.Scope[t.Name]
		if !ok {
			return nil, diag.New(diag.ResUnknownName, "collect", t.Pos, "unknown type name %q", t.Name)
		}
		rec, ok := q.Table.Lookup(sym)
		if !ok {
			return nil, diag.New(diag.InvShouldNeverHappen, "collect", t.Pos,
				"symbol %s resolved in scope but missing from the package table", sym)
		}
		base := &cir.NominalType{Name: sym}
		if len(t.Args) == 0 {
			return baseOrDeclared(base, rec.Type), nil
		}
		args := make([]cir.TypeExpression, len(t.Args))
		for i, a := range t.Args {
			checked, err := q.CheckTypeExpression(a)
			if err != nil {
				return nil, err
			}
			args[i] = checked
		}
		return &cir.ParameterizedType{Base: base, Args: args}, nil

	case *pir.FunctionTypeExpr:
		fnPhase, err := phase.ParseFunction(orDefault(t.Phase, "fun"))
		if err != nil {
			return nil, diag.New(diag.TypMismatch, "collect", t.Pos, "%s", err)
		}
		params := make([]cir.FuncParam, len(t.Params))
		for i, p := range t.Params {
			checkedType, err := q.CheckTypeExpression(p.Type)
			if err != nil {
				return nil, err
			}
			var ph *phase.Expression
			if p.Phase != "" {
				parsed, err := phase.ParseExpression(p.Phase)
				if err != nil {
					return nil, diag.New(diag.TypMismatch, "collect", t.Pos, "%s", err)
				}
				ph = &parsed
			}
			params[i] = cir.FuncParam{Phase: ph, Type: checkedType}
		}
		result, err := q.CheckTypeExpression(t.Result)
		if err != nil {
			return nil, err
		}
		return &cir.FunctionType{Phase: fnPhase, Params: params, Result: result}, nil

	default:
		return nil, diag.New(diag.InvShouldNeverHappen, "collect", te.Position(), "unhandled parsed type expression %T", te)
	}
}

// baseOrDeclared prefers the fully structural declared type (so that
// struct/enum field lookups later have something to walk) over the bare
// nominal reference, when the table has one on file.
func baseOrDeclared(base *cir.NominalType, declared cir.TypeExpression) cir.TypeExpression {
	if declared == nil {
		return base
	}
	return declared
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
