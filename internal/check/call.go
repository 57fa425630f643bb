package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
)

// checkCall implements §4.3.3: callee resolution (including overload
// branch selection by arity/first-match and generic unification against
// a single FunctionType), argument phase adjustment per §4.3.4, and the
// callee's own function-phase imposition on the call's result phase.
func (c *Checker) checkCall(scope *Scope, v *pir.Call, expected cir.TypeExpression) (cir.Expr, error) {
	fn, err := c.checkExpr(scope, v.Func, nil)
	if err != nil {
		return nil, err
	}

	switch ft := fn.ExprType().(type) {
	case *cir.OverloadFunctionType:
		return c.checkOverloadCall(scope, v, fn, ft)
	case *cir.FunctionType:
		return c.checkDirectCall(scope, v, fn, ft)
	default:
		return nil, diag.New(diag.TypNonCallable, "check", v.Pos, "%s is not callable", fn.ExprType())
	}
}

// checkOverloadCall picks the first branch whose arity matches and whose
// arguments all check successfully, per the first-match-wins semantics
// of §3.4 invariant 5: overload branches are never generic, so no
// unification is needed here.
func (c *Checker) checkOverloadCall(scope *Scope, v *pir.Call, fn cir.Expr, ft *cir.OverloadFunctionType) (cir.Expr, error) {
	for _, branch := range ft.Branches {
		if len(branch.Params) != len(v.Args) {
			continue
		}
		call, err := c.checkDirectCall(scope, v, fn, branch)
		if err == nil {
			return call, nil
		}
	}
	return nil, diag.New(diag.TypNoOverloadMatches, "check", v.Pos, "no overload of %s matches the given %d argument(s)", fn.ExprType(), len(v.Args))
}

// checkDirectCall checks a call against one concrete FunctionType,
// performing generic unification first when ft carries type parameters
// (§4.3.3 "Generic inference").
func (c *Checker) checkDirectCall(scope *Scope, v *pir.Call, fn cir.Expr, ft *cir.FunctionType) (cir.Expr, error) {
	if len(ft.Params) != len(v.Args) {
		return nil, diag.New(diag.TypArityMismatch, "check", v.Pos, "expected %d argument(s), got %d", len(ft.Params), len(v.Args))
	}

	subst := make(map[string]cir.TypeExpression)
	args := make([]cir.Expr, len(v.Args))
	combined := phase.Const

	for i, a := range v.Args {
		expectedType := ft.Params[i].Type
		if len(ft.TypeParams) > 0 {
			expectedType = applySubst(expectedType, subst)
		}
		argExpr, err := c.checkExpr(scope, a, expectedType)
		if err != nil {
			return nil, err
		}
		if len(ft.TypeParams) > 0 {
			unify(expectedType, argExpr.ExprType(), subst)
			expectedType = applySubst(ft.Params[i].Type, subst)
		}
		if !c.checkAssignable(argExpr.ExprType(), expectedType) {
			return nil, diag.New(diag.TypMismatch, "check", v.Pos, "argument %d: cannot assign %s to %s", i, argExpr.ExprType(), expectedType)
		}

		adjusted, ok := phase.AdjustResult(ft.Params[i].Phase, argExpr.ExprPhase())
		if !ok {
			return nil, diag.New(diag.PhaVarArgumentRequired, "check", v.Pos, "argument %d: phase %s not permitted here", i, argExpr.ExprPhase())
		}
		combined = phase.Join(combined, adjusted)
		args[i] = argExpr
	}

	if len(ft.TypeParams) > 0 {
		for _, tp := range ft.TypeParams {
			if _, ok := subst[tp.Name.Name()]; !ok {
				return nil, diag.New(diag.TypUnresolvedGeneric, "check", v.Pos, "could not infer type parameter %s", tp.Name)
			}
		}
	}

	resultType := applySubst(ft.Result, subst)
	resultPhase := phase.ResultForCallee(ft.Phase, combined)

	return &cir.Call{
		Base:         cir.Base{Pos: v.Pos, Type: resultType, Phase: resultPhase},
		Func:         fn,
		Args:         args,
		ResolvedFunc: ft,
	}, nil
}

// unify walks expected/actual in parallel, recording a binding in subst
// for every TypeParameterType encountered in expected (§4.3.3). It is
// intentionally permissive: a mismatch simply leaves earlier bindings
// untouched, letting the assignability check downstream report the
// precise error.
func unify(expected, actual cir.TypeExpression, subst map[string]cir.TypeExpression) {
	switch e := expected.(type) {
	case *cir.TypeParameterType:
		if _, bound := subst[e.Name.Name()]; !bound {
			subst[e.Name.Name()] = actual
		}
	case *cir.ParameterizedType:
		a, ok := actual.(*cir.ParameterizedType)
		if !ok || len(a.Args) != len(e.Args) {
			return
		}
		for i := range e.Args {
			unify(e.Args[i], a.Args[i], subst)
		}
	case *cir.FunctionType:
		a, ok := actual.(*cir.FunctionType)
		if !ok || len(a.Params) != len(e.Params) {
			return
		}
		for i := range e.Params {
			unify(e.Params[i].Type, a.Params[i].Type, subst)
		}
		unify(e.Result, a.Result, subst)
	}
}

// applySubst substitutes every resolved type parameter in t, leaving any
// still-unbound parameter as-is (caught by the unresolved-generic check
// in checkDirectCall).
func applySubst(t cir.TypeExpression, subst map[string]cir.TypeExpression) cir.TypeExpression {
	if len(subst) == 0 {
		return t
	}
	return t.Substitute(subst)
}
