package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
)

// checkExpr is the bidirectional entry point: every construct is checked
// against an optional expected type, used to drive lambda parameter
// inference, generic unification, and literal-collection element types
// (§4.3).
func (c *Checker) checkExpr(scope *Scope, e pir.Expr, expected cir.TypeExpression) (cir.Expr, error) {
	switch v := e.(type) {
	case *pir.Literal:
		return c.checkLiteral(v)
	case *pir.Identifier:
		return c.checkIdentifier(scope, v)
	case *pir.FieldAccess:
		return c.checkFieldAccess(scope, v)
	case *pir.StaticAccess:
		return c.checkStaticAccess(scope, v)
	case *pir.Construct:
		return c.checkConstruct(scope, v)
	case *pir.Call:
		return c.checkCall(scope, v, expected)
	case *pir.BoolOp:
		return c.checkBoolOp(scope, v)
	case *pir.If:
		return c.checkIf(scope, v, expected)
	case *pir.Lambda:
		return c.checkLambda(scope, v, expected)
	case *pir.Block:
		return c.checkBlock(scope, v, expected)
	case *pir.Return:
		return c.checkReturn(scope, v)
	case *pir.ListLit:
		return c.checkListLit(scope, v, expected)
	case *pir.SetLit:
		return c.checkSetLit(scope, v, expected)
	case *pir.MapLit:
		return c.checkMapLit(scope, v, expected)
	default:
		return nil, diag.New(diag.InvShouldNeverHappen, "check", e.Position(), "unhandled parsed expression %T", e)
	}
}

func (c *Checker) checkLiteral(v *pir.Literal) (cir.Expr, error) {
	var sym = c.Core.Unit
	var kind cir.LitKind
	switch v.Kind {
	case pir.IntLit:
		sym, kind = c.Core.Int, cir.IntLit
	case pir.FloatLit:
		sym, kind = c.Core.Float, cir.FloatLit
	case pir.BoolLit:
		sym, kind = c.Core.Boolean, cir.BoolLit
	case pir.StringLit:
		sym, kind = c.Core.String, cir.StringLit
	case pir.UnitLit:
		sym, kind = c.Core.Unit, cir.UnitLit
	}
	return &cir.Literal{
		Base:  cir.Base{Pos: v.Pos, Type: &cir.NominalType{Name: sym}, Phase: phase.Const},
		Kind:  kind,
		Value: v.Value,
	}, nil
}

func (c *Checker) checkIdentifier(scope *Scope, v *pir.Identifier) (cir.Expr, error) {
	b, ok := scope.Lookup(v.Name)
	if !ok {
		return c.checkTableIdentifier(v.Pos, v.Name)
	}
	observedPhase := b.Phase
	if b.Owner != scope.Fn && scope.Fn != nil {
		observedPhase = phase.DemoteCapturedPhase(scope.Fn.Phase, b.Phase)
	}
	return &cir.Identifier{
		Base:   cir.Base{Pos: v.Pos, Type: b.Type, Phase: observedPhase},
		Symbol: b.Symbol,
	}, nil
}

// checkTableIdentifier resolves a name with no local binding against the
// file's collected Scope and the package Table (§4.1, §5): every
// top-level declaration, import, and preamble entry, including
// core::list::get/map and the arithmetic operators stdlib registers, is
// reachable this way, not just through the local binding chain. Such a
// reference is always const-phase: it names a fixed declaration, never a
// live reactive cell.
func (c *Checker) checkTableIdentifier(pos ident.Pos, name string) (cir.Expr, error) {
	sym, ok := c.Qual.Scope[name]
	if !ok {
		return nil, diag.New(diag.ResUnknownName, "check", pos, "unknown name %q", name)
	}
	rec, ok := c.Table.Lookup(sym)
	if !ok {
		return nil, diag.New(diag.InvShouldNeverHappen, "check", pos,
			"symbol %s resolved in scope but missing from the package table", sym)
	}
	return &cir.Identifier{
		Base:   cir.Base{Pos: pos, Type: rec.Type, Phase: phase.Const},
		Symbol: sym,
	}, nil
}

func (c *Checker) checkFieldAccess(scope *Scope, v *pir.FieldAccess) (cir.Expr, error) {
	base, err := c.checkExpr(scope, v.Base, nil)
	if err != nil {
		return nil, err
	}
	ft, err := c.resolveFieldType(base.ExprType(), v.Field, v.Pos)
	if err != nil {
		return nil, err
	}
	return &cir.FieldAccess{
		Base:   cir.Base{Pos: v.Pos, Type: ft, Phase: base.ExprPhase()},
		Target: base,
		Field:  v.Field,
	}, nil
}

// resolveFieldType implements §4.3.2 "Field access": struct fields by
// name (with generic substitution against the base's type arguments),
// tuple fields by `v0..vN`; atoms and modules have none.
func (c *Checker) resolveFieldType(baseType cir.TypeExpression, field string, pos ident.Pos) (cir.TypeExpression, error) {
	switch t := baseType.(type) {
	case *cir.StructType:
		if ft, ok := structFieldLookup(t.Fields, field); ok {
			return ft, nil
		}
		return nil, diag.New(diag.ResUnknownField, "check", pos, "struct %s has no field %q", t.Name, field)

	case *cir.TupleType:
		idx, ok := tupleFieldIndex(field)
		if !ok || idx < 0 || idx >= len(t.Fields) {
			return nil, diag.New(diag.ResUnknownField, "check", pos, "tuple %s has no field %q", t.Name, field)
		}
		return t.Fields[idx], nil

	case *cir.ParameterizedType:
		base := t.Base
		rec, ok := c.Table.Lookup(base.Name)
		if !ok {
			return nil, diag.New(diag.ResUnknownName, "check", pos, "unknown type %s", base.Name)
		}
		var tparams []*cir.TypeParameterType
		switch declared := rec.Type.(type) {
		case *cir.StructType:
			tparams = declared.TypeParams
		case *cir.TupleType:
			tparams = declared.TypeParams
		}
		substituted := substituteTypeParams(tparams, t.Args, rec.Type)
		return c.resolveFieldType(substituted, field, pos)

	default:
		return nil, diag.New(diag.ResUnknownField, "check", pos, "%s has no fields", baseType)
	}
}

func structFieldLookup(fields interface{ Get(string) (cir.TypeExpression, bool) }, name string) (cir.TypeExpression, bool) {
	return fields.Get(name)
}

func (c *Checker) checkStaticAccess(scope *Scope, v *pir.StaticAccess) (cir.Expr, error) {
	if len(v.Segments) == 0 {
		return nil, diag.New(diag.InvShouldNeverHappen, "check", v.Pos, "empty static access")
	}
	head, err := func() (cir.Expr, error) {
		if b, ok := scope.Lookup(v.Segments[0]); ok {
			return &cir.Identifier{Base: cir.Base{Pos: v.Pos, Type: b.Type, Phase: b.Phase}, Symbol: b.Symbol}, nil
		}
		return c.checkTableIdentifier(v.Pos, v.Segments[0])
	}()
	if err != nil {
		return nil, err
	}
	sym := head.(*cir.Identifier).Symbol
	cur := head.ExprType()
	for _, seg := range v.Segments[1:] {
		switch t := cur.(type) {
		case *cir.ModuleType:
			sym = t.Name.Child(seg)
			rec, ok := c.Table.Lookup(sym)
			if !ok {
				return nil, diag.New(diag.ResUnknownName, "check", v.Pos, "unknown symbol %s", sym)
			}
			cur = rec.Type
		case *cir.EnumType:
			variant, ok := t.Variants.Get(seg)
			if !ok {
				return nil, diag.New(diag.ResUnknownField, "check", v.Pos, "enum %s has no variant %q", t.Name, seg)
			}
			sym = sym.Child(seg)
			cur = variant
		default:
			return nil, diag.New(diag.ResUnknownField, "check", v.Pos, "%s cannot be navigated further with %q", cur, seg)
		}
	}
	return &cir.StaticAccess{Base: cir.Base{Pos: v.Pos, Type: cur, Phase: phase.Const}, Symbol: sym}, nil
}

func (c *Checker) checkConstruct(scope *Scope, v *pir.Construct) (cir.Expr, error) {
	baseExpr, err := c.checkExpr(scope, v.Base, nil)
	if err != nil {
		return nil, err
	}

	var st *cir.StructType
	var targetSym ident.Symbol
	switch bt := baseExpr.ExprType().(type) {
	case *cir.StructType:
		st, targetSym = bt, bt.Name
	default:
		return nil, diag.New(diag.TypNonConstructible, "check", v.Pos, "%s is not constructible", baseExpr.ExprType())
	}

	declaredNames := st.Fields.Keys()
	seen := make(map[string]bool, len(v.Fields))
	fields := make([]cir.ConstructField, len(v.Fields))
	combinedPhase := phase.Const
	subst := make(map[string]cir.TypeExpression)
	for i, f := range v.Fields {
		declaredType, ok := structFieldLookup(st.Fields, f.Name)
		if !ok {
			return nil, diag.New(diag.ResUnknownField, "check", v.Pos, "%s has no field %q", targetSym, f.Name)
		}
		seen[f.Name] = true
		expectedType := declaredType
		if len(st.TypeParams) > 0 {
			expectedType = applySubst(declaredType, subst)
		}
		val, err := c.checkExpr(scope, f.Value, expectedType)
		if err != nil {
			return nil, err
		}
		if len(st.TypeParams) > 0 {
			unify(expectedType, val.ExprType(), subst)
			expectedType = applySubst(declaredType, subst)
		}
		if !c.checkAssignable(val.ExprType(), expectedType) {
			return nil, diag.New(diag.TypMismatch, "check", v.Pos, "field %q: cannot assign %s to %s", f.Name, val.ExprType(), expectedType)
		}
		combinedPhase = phase.Join(combinedPhase, val.ExprPhase())
		fields[i] = cir.ConstructField{Name: f.Name, Value: val}
	}
	for _, name := range declaredNames {
		if !seen[name] {
			return nil, diag.New(diag.TypArityMismatch, "check", v.Pos, "missing field %q in construction of %s", name, targetSym)
		}
	}

	if len(st.TypeParams) > 0 {
		for _, tp := range st.TypeParams {
			if _, ok := subst[tp.Name.Name()]; !ok {
				return nil, diag.New(diag.TypUnresolvedGeneric, "check", v.Pos, "could not infer type parameter %s", tp.Name)
			}
		}
	}

	instantiated := applySubst(baseExpr.ExprType(), subst)

	return &cir.Construct{
		Base:   cir.Base{Pos: v.Pos, Type: instantiated, Phase: combinedPhase},
		Target: targetSym,
		Fields: fields,
	}, nil
}
