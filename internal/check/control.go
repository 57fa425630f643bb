package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
)

func (c *Checker) checkBoolOp(scope *Scope, v *pir.BoolOp) (cir.Expr, error) {
	left, err := c.checkExpr(scope, v.Left, nil)
	if err != nil {
		return nil, err
	}
	combined := left.ExprPhase()
	var right cir.Expr
	if v.Right != nil {
		right, err = c.checkExpr(scope, v.Right, nil)
		if err != nil {
			return nil, err
		}
		combined = phase.Join(combined, right.ExprPhase())
	}
	return &cir.BoolOp{
		Base:  cir.Base{Pos: v.Pos, Type: &cir.NominalType{Name: c.Core.Boolean}, Phase: combined},
		Kind:  cir.BoolOpKind(v.Kind),
		Left:  left,
		Right: right,
	}, nil
}

// checkIf implements §4.3.2 "If": both branches (when present) must join
// to a common type; a one-armed `if` wraps the Then branch's type in
// Option<T> (§8.10). The result phase joins the condition's phase with
// both branches'.
func (c *Checker) checkIf(scope *Scope, v *pir.If, expected cir.TypeExpression) (cir.Expr, error) {
	cond, err := c.checkExpr(scope, v.Cond, nil)
	if err != nil {
		return nil, err
	}
	then, err := c.checkExpr(scope, v.Then, expected)
	if err != nil {
		return nil, err
	}

	combined := phase.Join(cond.ExprPhase(), then.ExprPhase())

	var elseExpr cir.Expr
	var resultType cir.TypeExpression
	if v.Else != nil {
		elseExpr, err = c.checkExpr(scope, v.Else, expected)
		if err != nil {
			return nil, err
		}
		combined = phase.Join(combined, elseExpr.ExprPhase())
		resultType, err = c.mergeTypes(then.ExprType(), elseExpr.ExprType(), v.Pos)
		if err != nil {
			return nil, err
		}
	} else {
		resultType = c.optionOf(then.ExprType())
	}

	return &cir.If{
		Base: cir.Base{Pos: v.Pos, Type: resultType, Phase: combined},
		Cond: cond,
		Then: then,
		Else: elseExpr,
	}, nil
}

// checkLambda checks a function literal (§4.3.1). Parameter types come
// from the lambda's own annotations when present, otherwise from the
// matching slot of expected (an expected *cir.FunctionType supplied by
// the call site, e.g. a `sig` argument position).
func (c *Checker) checkLambda(scope *Scope, v *pir.Lambda, expected cir.TypeExpression) (cir.Expr, error) {
	declaredPhase := phase.Fun
	if v.Phase != "" {
		p, err := phase.ParseFunction(v.Phase)
		if err != nil {
			return nil, diag.New(diag.TypMismatch, "check", v.Pos, "%s", err)
		}
		declaredPhase = p
	} else if expectedFn, ok := expected.(*cir.FunctionType); ok {
		declaredPhase = expectedFn.Phase
	}

	var expectedFn *cir.FunctionType
	if ef, ok := expected.(*cir.FunctionType); ok {
		expectedFn = ef
	}

	sym := ident.Symbol{}
	fnScope := scope.ChildFunction(sym, declaredPhase)
	params := make([]cir.LambdaParam, len(v.Params))
	ftParams := make([]cir.FuncParam, len(v.Params))

	for i, p := range v.Params {
		var pt cir.TypeExpression
		var err error
		if p.Type != nil {
			pt, err = c.Qual.CheckTypeExpression(p.Type)
			if err != nil {
				return nil, err
			}
		} else if expectedFn != nil && i < len(expectedFn.Params) {
			pt = expectedFn.Params[i].Type
		} else {
			return nil, diag.New(diag.TypMismatch, "check", p.Pos, "cannot infer type of parameter %q", p.Name)
		}

		ph := phase.Val
		if p.Phase != "" {
			ph, err = phase.ParseExpression(p.Phase)
			if err != nil {
				return nil, diag.New(diag.TypMismatch, "check", p.Pos, "%s", err)
			}
		} else if expectedFn != nil && i < len(expectedFn.Params) && expectedFn.Params[i].Phase != nil {
			ph = *expectedFn.Params[i].Phase
		}
		if err := validateParamPhase(declaredPhase, ph, p.Pos); err != nil {
			return nil, err
		}

		params[i] = cir.LambdaParam{Name: p.Name, Type: pt, Phase: ph}
		ftParams[i] = cir.FuncParam{Phase: &ph, Type: pt}
		fnScope.Declare(p.Name, &Binding{Type: pt, Phase: ph})
	}

	var expectedResult cir.TypeExpression
	if v.Result != nil {
		var err error
		expectedResult, err = c.Qual.CheckTypeExpression(v.Result)
		if err != nil {
			return nil, err
		}
		fnScope.Fn.ResultType = expectedResult
	} else if expectedFn != nil {
		expectedResult = expectedFn.Result
	}

	body, err := c.checkExpr(fnScope, v.Body, expectedResult)
	if err != nil {
		return nil, err
	}
	resultType, err := c.mergeTypes(fnScope.Fn.ResultType, body.ExprType(), v.Pos)
	if err != nil {
		return nil, err
	}

	if err := c.validateFunctionSideConditions(declaredPhase, fnScope.Fn, v.Pos); err != nil {
		return nil, err
	}

	closure := make([]ident.Symbol, 0, len(fnScope.Fn.Closure))
	for sym := range fnScope.Fn.Closure {
		closure = append(closure, sym)
	}

	fnType := &cir.FunctionType{Phase: declaredPhase, Params: ftParams, Result: resultType}
	return &cir.Lambda{
		Base:       cir.Base{Pos: v.Pos, Type: fnType, Phase: phase.Const},
		Params:     params,
		Body:       body,
		ClosureSet: closure,
	}, nil
}

// checkBlock implements §4.3.5: a block's type/phase mirror its final
// expression statement, with every preceding statement checked in a
// nested scope so `val`/`var` bindings it introduces go out of scope
// after the block.
func (c *Checker) checkBlock(scope *Scope, v *pir.Block, expected cir.TypeExpression) (cir.Expr, error) {
	inner := scope.Child()
	stmts := make([]cir.Stmt, len(v.Stmts))
	var lastType cir.TypeExpression
	lastPhase := phase.Const

	for i, s := range v.Stmts {
		var expectedHere cir.TypeExpression
		if i == len(v.Stmts)-1 {
			expectedHere = expected
		}
		checked, t, p, err := c.checkStmt(inner, s, expectedHere)
		if err != nil {
			return nil, err
		}
		stmts[i] = checked
		lastType, lastPhase = t, p
	}
	if lastType == nil {
		lastType = &cir.NominalType{Name: c.Core.Unit}
	}
	return &cir.Block{Base: cir.Base{Pos: v.Pos, Type: lastType, Phase: lastPhase}, Stmts: stmts}, nil
}

func (c *Checker) checkReturn(scope *Scope, v *pir.Return) (cir.Expr, error) {
	var value cir.Expr
	valuePhase := phase.Const
	if v.Value != nil {
		var err error
		var expected cir.TypeExpression
		if scope.Fn != nil {
			expected = scope.Fn.ResultType
		}
		value, err = c.checkExpr(scope, v.Value, expected)
		if err != nil {
			return nil, err
		}
		valuePhase = value.ExprPhase()
		if scope.Fn != nil {
			merged, err := c.mergeTypes(scope.Fn.ResultType, value.ExprType(), v.Pos)
			if err != nil {
				return nil, err
			}
			scope.Fn.ResultType = merged
		}
	}
	if scope.Fn != nil {
		if !scope.Fn.sawReturn {
			scope.Fn.ReturnPhase = valuePhase
			scope.Fn.sawReturn = true
		} else {
			scope.Fn.ReturnPhase = phase.Join(scope.Fn.ReturnPhase, valuePhase)
		}
	}
	return &cir.Return{Base: cir.Base{Pos: v.Pos, Type: &cir.NominalType{Name: c.Core.Nothing}, Phase: phase.Const}, Value: value}, nil
}

func (c *Checker) checkListLit(scope *Scope, v *pir.ListLit, expected cir.TypeExpression) (cir.Expr, error) {
	elemExpected := elementExpected(expected)
	elems := make([]cir.Expr, len(v.Elems))
	var elemType cir.TypeExpression
	combined := phase.Const
	for i, e := range v.Elems {
		checked, err := c.checkExpr(scope, e, elemExpected)
		if err != nil {
			return nil, err
		}
		elemType, err = c.mergeTypes(elemType, checked.ExprType(), v.Pos)
		if err != nil {
			return nil, err
		}
		combined = phase.Join(combined, checked.ExprPhase())
		elems[i] = checked
	}
	if elemType == nil {
		elemType = c.nothingType()
	}
	return &cir.ListLit{
		Base:  cir.Base{Pos: v.Pos, Type: &cir.ParameterizedType{Base: &cir.NominalType{Name: c.Core.List}, Args: []cir.TypeExpression{elemType}}, Phase: combined},
		Elems: elems,
	}, nil
}

func (c *Checker) checkSetLit(scope *Scope, v *pir.SetLit, expected cir.TypeExpression) (cir.Expr, error) {
	elemExpected := elementExpected(expected)
	elems := make([]cir.Expr, len(v.Elems))
	var elemType cir.TypeExpression
	combined := phase.Const
	for i, e := range v.Elems {
		checked, err := c.checkExpr(scope, e, elemExpected)
		if err != nil {
			return nil, err
		}
		elemType, err = c.mergeTypes(elemType, checked.ExprType(), v.Pos)
		if err != nil {
			return nil, err
		}
		combined = phase.Join(combined, checked.ExprPhase())
		elems[i] = checked
	}
	if elemType == nil {
		elemType = c.nothingType()
	}
	return &cir.SetLit{
		Base:  cir.Base{Pos: v.Pos, Type: &cir.ParameterizedType{Base: &cir.NominalType{Name: c.Core.Set}, Args: []cir.TypeExpression{elemType}}, Phase: combined},
		Elems: elems,
	}, nil
}

func (c *Checker) checkMapLit(scope *Scope, v *pir.MapLit, expected cir.TypeExpression) (cir.Expr, error) {
	entries := make([]cir.MapEntry, len(v.Entries))
	keyExpected, valExpected := elementExpectedPair(expected)
	var keyType, valType cir.TypeExpression
	combined := phase.Const
	for i, e := range v.Entries {
		k, err := c.checkExpr(scope, e.Key, keyExpected)
		if err != nil {
			return nil, err
		}
		val, err := c.checkExpr(scope, e.Value, valExpected)
		if err != nil {
			return nil, err
		}
		keyType, err = c.mergeTypes(keyType, k.ExprType(), v.Pos)
		if err != nil {
			return nil, err
		}
		valType, err = c.mergeTypes(valType, val.ExprType(), v.Pos)
		if err != nil {
			return nil, err
		}
		combined = phase.Join(combined, phase.Join(k.ExprPhase(), val.ExprPhase()))
		entries[i] = cir.MapEntry{Key: k, Value: val}
	}
	if keyType == nil {
		keyType = c.nothingType()
	}
	if valType == nil {
		valType = c.nothingType()
	}
	return &cir.MapLit{
		Base:    cir.Base{Pos: v.Pos, Type: &cir.ParameterizedType{Base: &cir.NominalType{Name: c.Core.Map}, Args: []cir.TypeExpression{keyType, valType}}, Phase: combined},
		Entries: entries,
	}, nil
}

// elementExpected unwraps List<T>/Set<T> to its element type, for
// driving the bidirectional checking of a literal's elements.
func elementExpected(expected cir.TypeExpression) cir.TypeExpression {
	pt, ok := expected.(*cir.ParameterizedType)
	if !ok || len(pt.Args) != 1 {
		return nil
	}
	return pt.Args[0]
}

// elementExpectedPair unwraps Map<K,V> to its key/value type arguments,
// for driving the bidirectional checking of a map literal's entries;
// either return is nil when expected isn't a two-argument parameterized
// type.
func elementExpectedPair(expected cir.TypeExpression) (key, val cir.TypeExpression) {
	pt, ok := expected.(*cir.ParameterizedType)
	if !ok || len(pt.Args) != 2 {
		return nil, nil
	}
	return pt.Args[0], pt.Args[1]
}
