package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/collect"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

// Checker elaborates a file's P-IR into C-IR (§4.3). One Checker is built
// per file; the package Table it reads is shared and read-only.
type Checker struct {
	Table  *symtab.Table
	Core   *symtab.CoreTypes
	Module ident.Symbol
	Qual   *collect.Qualifier
}

// New builds a Checker for a file whose own module symbol is module,
// using scope (as built by internal/collect) to resolve names.
func New(table *symtab.Table, core *symtab.CoreTypes, module ident.Symbol, scope collect.Scope) *Checker {
	return &Checker{Table: table, Core: core, Module: module, Qual: collect.NewQualifier(scope, table)}
}

// CheckFile elaborates every declaration in file, in order. Data
// declarations are processed first, so that functions and constants in
// the same file may reference types declared later in source order.
func (c *Checker) CheckFile(file *pir.File) (*cir.File, error) {
	out := &cir.File{Path: file.Path}
	root := NewRootScope()

	for _, d := range file.Declarations {
		if dd, ok := d.(*pir.DataDecl); ok {
			checked, err := c.checkDataDecl(dd)
			if err != nil {
				return nil, err
			}
			out.Data = append(out.Data, checked)
		}
	}

	for _, d := range file.Declarations {
		switch v := d.(type) {
		case *pir.FunctionDecl:
			checked, err := c.checkFunctionDecl(root, v)
			if err != nil {
				return nil, err
			}
			out.Functions = append(out.Functions, checked)
		case *pir.ConstantDecl:
			checked, err := c.checkConstantDecl(root, v)
			if err != nil {
				return nil, err
			}
			out.Constants = append(out.Constants, checked)
		}
	}
	return out, nil
}

func (c *Checker) accessLevel(a pir.Access) (ident.AccessLevel, error) {
	return ident.ParseAccessLevel(string(a))
}

func (c *Checker) checkFunctionDecl(scope *Scope, d *pir.FunctionDecl) (*cir.FunctionDecl, error) {
	sym := c.Module.Child(d.Name)
	access, err := c.accessLevel(d.Access)
	if err != nil {
		return nil, diag.New(diag.TypMismatch, "check", d.Pos, "%s", err)
	}

	declaredPhase, err := phase.ParseFunction(orDefault(d.Phase, "fun"))
	if err != nil {
		return nil, diag.New(diag.TypMismatch, "check", d.Pos, "%s", err)
	}

	params := make([]cir.FuncParam, len(d.Params))
	lambdaParams := make([]cir.LambdaParam, len(d.Params))
	fnScope := scope.ChildFunction(sym, declaredPhase)
	for i, p := range d.Params {
		pt, err := c.Qual.CheckTypeExpression(p.Type)
		if err != nil {
			return nil, err
		}
		ph, err := phase.ParseExpression(orDefault(p.Phase, "val"))
		if err != nil {
			return nil, diag.New(diag.TypMismatch, "check", p.Pos, "%s", err)
		}
		if err := validateParamPhase(declaredPhase, ph, p.Pos); err != nil {
			return nil, err
		}
		params[i] = cir.FuncParam{Phase: &ph, Type: pt}
		lambdaParams[i] = cir.LambdaParam{Name: p.Name, Type: pt, Phase: ph}
		fnScope.Declare(p.Name, &Binding{Symbol: sym.Child(p.Name), Type: pt, Phase: ph})
	}

	var expectedResult cir.TypeExpression
	if d.Result != nil {
		expectedResult, err = c.Qual.CheckTypeExpression(d.Result)
		if err != nil {
			return nil, err
		}
		fnScope.Fn.ResultType = expectedResult
	}

	body, err := c.checkExpr(fnScope, d.Body, expectedResult)
	if err != nil {
		return nil, err
	}

	resultType := fnScope.Fn.ResultType
	resultType, err = c.mergeTypes(resultType, body.ExprType(), d.Pos)
	if err != nil {
		return nil, err
	}

	if err := c.validateFunctionSideConditions(declaredPhase, fnScope.Fn, d.Pos); err != nil {
		return nil, err
	}

	fnType := &cir.FunctionType{Phase: declaredPhase, Params: params, Result: resultType}
	if err := c.Table.Declare(sym, &symtab.AccessRecord{Access: access, Name: d.Name, Module: sym, Type: fnType}); err != nil {
		return nil, diag.New(diag.InvShouldNeverHappen, "check", d.Pos, "%s", err)
	}
	return &cir.FunctionDecl{Pos: d.Pos, Symbol: sym, Access: access, Type: fnType, Params: lambdaParams, Body: body}, nil
}

func (c *Checker) checkConstantDecl(scope *Scope, d *pir.ConstantDecl) (*cir.ConstantDecl, error) {
	sym := c.Module.Child(d.Name)
	access, err := c.accessLevel(d.Access)
	if err != nil {
		return nil, diag.New(diag.TypMismatch, "check", d.Pos, "%s", err)
	}

	var expected cir.TypeExpression
	if d.Type != nil {
		expected, err = c.Qual.CheckTypeExpression(d.Type)
		if err != nil {
			return nil, err
		}
	}

	value, err := c.checkExpr(scope, d.Value, expected)
	if err != nil {
		return nil, err
	}

	declaredPhase, err := phase.ParseExpression(orDefault(d.Phase, value.ExprPhase().String()))
	if err != nil {
		return nil, diag.New(diag.TypMismatch, "check", d.Pos, "%s", err)
	}
	if value.ExprPhase() > declaredPhase {
		return nil, diag.New(diag.PhaReactiveInFun, "check", d.Pos,
			"constant %s declared %s cannot be initialized from a %s expression", d.Name, declaredPhase, value.ExprPhase())
	}

	if err := c.Table.Declare(sym, &symtab.AccessRecord{Access: access, Name: d.Name, Module: sym, Type: value.ExprType()}); err != nil {
		return nil, diag.New(diag.InvShouldNeverHappen, "check", d.Pos, "%s", err)
	}
	return &cir.ConstantDecl{Pos: d.Pos, Symbol: sym, Access: access, Phase: declaredPhase, Type: value.ExprType(), Value: value}, nil
}

// validateParamPhase enforces the function-declaration side-conditions of
// §4.3.4 that are checkable purely from a parameter's declared phase.
func validateParamPhase(fn phase.Function, paramPhase phase.Expression, pos ident.Pos) error {
	switch fn {
	case phase.Fun:
		if paramPhase != phase.Const && paramPhase != phase.Val {
			return diag.New(diag.PhaReactiveInFun, "check", pos, "fun parameters must be const/val, got %s", paramPhase)
		}
	case phase.Sig:
		if paramPhase == phase.Flow {
			return diag.New(diag.PhaReactiveInFun, "check", pos, "sig may not accept a flow parameter")
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
