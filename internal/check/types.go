package check

import (
	"strconv"
	"strings"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
)

// isNothing reports whether t is the bottom type (§4.3.2 "Join").
func (c *Checker) isNothing(t cir.TypeExpression) bool {
	n, ok := t.(*cir.NominalType)
	return ok && n.Name == c.Core.Nothing
}

func (c *Checker) nothingType() cir.TypeExpression {
	return &cir.NominalType{Name: c.Core.Nothing}
}

func (c *Checker) optionOf(t cir.TypeExpression) cir.TypeExpression {
	return &cir.ParameterizedType{Base: &cir.NominalType{Name: c.Core.Option}, Args: []cir.TypeExpression{t}}
}

// mergeTypes implements the join rule of §4.3.2: equal types unify to
// themselves; Nothing is absorbing-left; otherwise the supertype (per
// checkAssignable) wins; otherwise fail at pos.
func (c *Checker) mergeTypes(a, b cir.TypeExpression, pos ident.Pos) (cir.TypeExpression, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.Equals(b) {
		return a, nil
	}
	if c.isNothing(a) {
		return b, nil
	}
	if c.isNothing(b) {
		return a, nil
	}
	if c.checkAssignable(b, a) {
		return a, nil
	}
	if c.checkAssignable(a, b) {
		return b, nil
	}
	return nil, diag.New(diag.TypMismatch, "check", pos, "cannot join types %s and %s", a, b)
}

// checkAssignable implements §4.3.2 "Assignability": can a value of type
// from be used where a value of type to is expected?
func (c *Checker) checkAssignable(from, to cir.TypeExpression) bool {
	if from.Equals(to) {
		return true
	}
	if c.isNothing(from) {
		return true
	}
	if _, ok := to.(*cir.TypeParameterType); ok {
		return true // bounds reserved for future (§4.3.2)
	}
	if _, ok := from.(*cir.TypeParameterType); ok {
		return true
	}

	switch toT := to.(type) {
	case *cir.FunctionType:
		fromT, ok := from.(*cir.FunctionType)
		if !ok || fromT.Phase != toT.Phase || len(fromT.Params) != len(toT.Params) {
			return false
		}
		// Contravariant result, per source (spec §4.3.2, §9 open question):
		// `to`'s result must assign to `from`'s result.
		if !c.checkAssignable(toT.Result, fromT.Result) {
			return false
		}
		for i := range fromT.Params {
			fp, tp := fromT.Params[i], toT.Params[i]
			if (fp.Phase == nil) != (tp.Phase == nil) {
				return false
			}
			if fp.Phase != nil && *fp.Phase != *tp.Phase {
				return false
			}
			// Covariant parameter types at the nominal level (spec text).
			if !c.checkAssignable(fp.Type, tp.Type) {
				return false
			}
		}
		return true

	case *cir.ParameterizedType:
		fromT, ok := from.(*cir.ParameterizedType)
		if !ok || !fromT.Base.Equals(toT.Base) || len(fromT.Args) != len(toT.Args) {
			return false
		}
		for i := range fromT.Args {
			if !c.checkAssignable(fromT.Args[i], toT.Args[i]) {
				return false
			}
		}
		return true

	case *cir.EnumType:
		// A variant's Struct/Tuple/AtomType assigns to its EnumType parent.
		if parent := enumParentOf(from); parent != nil && *parent == toT.Name {
			return true
		}
		return false
	}
	return false
}

func enumParentOf(t cir.TypeExpression) *ident.Symbol {
	switch v := t.(type) {
	case *cir.StructType:
		return v.EnumParent
	case *cir.TupleType:
		return v.EnumParent
	case *cir.AtomType:
		return v.EnumParent
	}
	return nil
}

// structuralFields returns the field-name -> type mapping for a struct
// type (generic substitution already applied by the caller), and ok=false
// if t has no named fields (tuple/atom/module).
func structuralFields(t cir.TypeExpression) (map[string]cir.TypeExpression, []string, bool) {
	st, ok := t.(*cir.StructType)
	if !ok {
		return nil, nil, false
	}
	out := make(map[string]cir.TypeExpression, st.Fields.Len())
	st.Fields.Each(func(k string, v cir.TypeExpression) { out[k] = v })
	return out, st.Fields.Keys(), true
}

// tupleFieldIndex parses a `vN` tuple-field accessor name into its index
// (§4.3.2 "Field access", §9 "Tuple-variant field access").
func tupleFieldIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "v") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// substituteTypeParams builds a substitution map from a type's declared
// TypeParams to the given instantiation args (by position) and applies
// it to target.
func substituteTypeParams(params []*cir.TypeParameterType, args []cir.TypeExpression, target cir.TypeExpression) cir.TypeExpression {
	if len(params) == 0 {
		return target
	}
	subst := make(map[string]cir.TypeExpression, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p.Name.Name()] = args[i]
		}
	}
	return target.Substitute(subst)
}
