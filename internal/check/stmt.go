package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
)

// checkStmt checks one block statement, returning the checked statement
// alongside the type/phase it contributes if it is the block's final
// statement (§4.3.5); non-final statements' type/phase are unused by the
// caller but are returned uniformly to keep the dispatch simple.
func (c *Checker) checkStmt(scope *Scope, s pir.Stmt, expected cir.TypeExpression) (cir.Stmt, cir.TypeExpression, phase.Expression, error) {
	switch v := s.(type) {
	case *pir.Assignment:
		return c.checkAssignment(scope, v)
	case *pir.Reassignment:
		return c.checkReassignment(scope, v)
	case *pir.ExprStmt:
		checked, err := c.checkExpr(scope, v.Expr, expected)
		if err != nil {
			return nil, nil, 0, err
		}
		return &cir.ExprStmt{Pos: v.Pos, Expr: checked}, checked.ExprType(), checked.ExprPhase(), nil
	case *pir.FunctionStmt:
		decl, err := c.checkFunctionDecl(scope, v.Decl)
		if err != nil {
			return nil, nil, 0, err
		}
		return &cir.FunctionStmt{Pos: v.Pos, Decl: decl}, &cir.NominalType{Name: c.Core.Unit}, phase.Const, nil
	default:
		return nil, nil, 0, diag.New(diag.InvShouldNeverHappen, "check", s.Position(), "unhandled parsed statement %T", s)
	}
}

// checkAssignment implements §4.3.5: a new binding's declared phase must
// be at least as reactive as its initializer's phase (const < val < var <
// flow): a const/val binding cannot be initialized from a var/flow
// expression, and a var binding cannot be initialized from a flow one.
func (c *Checker) checkAssignment(scope *Scope, v *pir.Assignment) (cir.Stmt, cir.TypeExpression, phase.Expression, error) {
	var expectedType cir.TypeExpression
	if v.Type != nil {
		var err error
		expectedType, err = c.Qual.CheckTypeExpression(v.Type)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	value, err := c.checkExpr(scope, v.Value, expectedType)
	if err != nil {
		return nil, nil, 0, err
	}

	declaredPhase := value.ExprPhase()
	if v.Phase != "" {
		declaredPhase, err = phase.ParseExpression(v.Phase)
		if err != nil {
			return nil, nil, 0, diag.New(diag.TypMismatch, "check", v.Pos, "%s", err)
		}
	}
	if declaredPhase < value.ExprPhase() {
		return nil, nil, 0, diag.New(diag.PhaDeclaredPhaseMismatch, "check", v.Pos,
			"binding %q declared %s cannot be initialized from a %s expression", v.Name, declaredPhase, value.ExprPhase())
	}
	if declaredPhase == phase.Var || declaredPhase == phase.Flow {
		if scope.Fn != nil {
			scope.Fn.DeclaredReactive = true
		}
	}

	valueType := value.ExprType()
	if expectedType != nil {
		if !c.checkAssignable(valueType, expectedType) {
			return nil, nil, 0, diag.New(diag.TypMismatch, "check", v.Pos, "cannot assign %s to %s", valueType, expectedType)
		}
		valueType = expectedType
	}

	sym := ident.Symbol{}
	if scope.Fn != nil {
		sym = scope.Fn.Symbol.Child(v.Name)
	}
	scope.Declare(v.Name, &Binding{Symbol: sym, Type: valueType, Phase: declaredPhase, IsVar: declaredPhase == phase.Var})

	stmt := &cir.Assignment{Pos: v.Pos, Symbol: sym, Phase: declaredPhase, Type: valueType, Value: value}
	return stmt, valueType, declaredPhase, nil
}

// checkReassignment implements §4.3.5/§4.3.4: only a `var` binding may
// be reassigned, and only from inside a `sig` function.
func (c *Checker) checkReassignment(scope *Scope, v *pir.Reassignment) (cir.Stmt, cir.TypeExpression, phase.Expression, error) {
	target, err := c.checkExpr(scope, v.Target, nil)
	if err != nil {
		return nil, nil, 0, err
	}

	root := rootBinding(scope, v.Target)
	if root == nil || !root.IsVar {
		return nil, nil, 0, diag.New(diag.PhaReassignNonVar, "check", v.Pos, "cannot reassign a non-var binding")
	}
	if scope.Fn == nil || scope.Fn.Phase != phase.Sig {
		return nil, nil, 0, diag.New(diag.PhaReassignOutsideSig, "check", v.Pos, "reassignment is only permitted inside sig")
	}
	scope.Fn.Reassigned = true

	value, err := c.checkExpr(scope, v.Value, target.ExprType())
	if err != nil {
		return nil, nil, 0, err
	}
	if !c.checkAssignable(value.ExprType(), target.ExprType()) {
		return nil, nil, 0, diag.New(diag.TypMismatch, "check", v.Pos, "cannot assign %s to %s", value.ExprType(), target.ExprType())
	}

	stmt := &cir.Reassignment{Pos: v.Pos, Target: target, Value: value}
	return stmt, &cir.NominalType{Name: c.Core.Unit}, phase.Val, nil
}

// rootBinding walks an Identifier/FieldAccess chain down to its root
// Identifier and resolves the Binding it names, or nil if the chain
// does not root at a plain name (§GLOSSARY "Projection").
func rootBinding(scope *Scope, e pir.Expr) *Binding {
	for {
		switch v := e.(type) {
		case *pir.Identifier:
			b, ok := scope.Lookup(v.Name)
			if !ok {
				return nil
			}
			return b
		case *pir.FieldAccess:
			e = v.Base
		default:
			return nil
		}
	}
}

// validateFunctionSideConditions enforces the per-function-phase rules
// of §4.3.4 that can only be checked once a whole body has been walked:
// declared reactive bindings, reassignment, and the closure set's
// consistency with the declaring function's own phase.
func (c *Checker) validateFunctionSideConditions(fn phase.Function, fs *FunctionScope, pos ident.Pos) error {
	switch fn {
	case phase.Fun:
		if fs.DeclaredReactive {
			return diag.New(diag.PhaReactiveInFun, "check", pos, "fun may not declare a var/flow binding")
		}
		if fs.Reassigned {
			return diag.New(diag.PhaReassignOutsideSig, "check", pos, "fun may not reassign a var binding")
		}
	case phase.Def:
		if fs.Reassigned {
			return diag.New(diag.PhaReassignOutsideSig, "check", pos, "def may not reassign a var binding")
		}
		if fs.sawReturn && fs.ReturnPhase != phase.Flow {
			return diag.New(diag.PhaDeclaredPhaseMismatch, "check", pos, "def must return a flow expression, got %s", fs.ReturnPhase)
		}
	case phase.Sig:
		if fs.DeclaredReactive {
			return diag.New(diag.PhaReactiveInFun, "check", pos, "sig may not declare a var/flow binding")
		}
	}

	// Closure phases are already demoted at capture time (recordCapture,
	// scope.go), so by construction every entry in fs.Closure already
	// reflects this function's own phase discipline.
	return nil
}
