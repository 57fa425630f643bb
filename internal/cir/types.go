// Package cir defines the Checked IR (C-IR): the output of internal/check.
// Every expression node carries a well-formed TypeExpression and an
// ExpressionPhase (§3.4). Declarations carry their resolved Symbol.
package cir

import (
	"fmt"
	"strings"

	"github.com/rxlang/rxc/internal/coll"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
)

// TypeExpression is the common interface for every checked type shape
// (§3.4). Types are immutable and structurally compared.
type TypeExpression interface {
	fmt.Stringer
	Equals(TypeExpression) bool
	// Substitute replaces free type-parameter symbols per the given
	// substitution, returning a new TypeExpression (or itself if nothing
	// changed).
	Substitute(subst map[string]TypeExpression) TypeExpression
	typeExpressionNode()
}

func key(s ident.Symbol) string { return s.String() }

// NominalType references a declared data/enum type by symbol.
type NominalType struct {
	Name ident.Symbol
}

func (t *NominalType) String() string { return t.Name.String() }
func (t *NominalType) Equals(o TypeExpression) bool {
	other, ok := o.(*NominalType)
	return ok && other.Name == t.Name
}
func (t *NominalType) Substitute(map[string]TypeExpression) TypeExpression { return t }
func (t *NominalType) typeExpressionNode()                                 {}

// ParameterizedType instantiates a NominalType with type arguments.
type ParameterizedType struct {
	Base *NominalType
	Args []TypeExpression
}

func (t *ParameterizedType) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Base.String(), strings.Join(args, ", "))
}
func (t *ParameterizedType) Equals(o TypeExpression) bool {
	other, ok := o.(*ParameterizedType)
	if !ok || !t.Base.Equals(other.Base) || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}
func (t *ParameterizedType) Substitute(subst map[string]TypeExpression) TypeExpression {
	args := make([]TypeExpression, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(subst)
	}
	return &ParameterizedType{Base: t.Base, Args: args}
}
func (t *ParameterizedType) typeExpressionNode() {}

// FuncParam is one parameter slot of a FunctionType.
type FuncParam struct {
	Phase *phase.Expression // nil means unspecified
	Type  TypeExpression
}

// FunctionType is the checked shape of a function signature (§3.4).
type FunctionType struct {
	Phase      phase.Function
	TypeParams []*TypeParameterType
	Params     []FuncParam
	Result     TypeExpression
}

func (t *FunctionType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		if p.Phase != nil {
			params[i] = fmt.Sprintf("%s %s", p.Phase, p.Type)
		} else {
			params[i] = p.Type.String()
		}
	}
	return fmt.Sprintf("%s(%s) -> %s", t.Phase, strings.Join(params, ", "), t.Result)
}
func (t *FunctionType) Equals(o TypeExpression) bool {
	other, ok := o.(*FunctionType)
	if !ok || t.Phase != other.Phase || len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Type.Equals(other.Params[i].Type) {
			return false
		}
		if (t.Params[i].Phase == nil) != (other.Params[i].Phase == nil) {
			return false
		}
		if t.Params[i].Phase != nil && *t.Params[i].Phase != *other.Params[i].Phase {
			return false
		}
	}
	return t.Result.Equals(other.Result)
}
func (t *FunctionType) Substitute(subst map[string]TypeExpression) TypeExpression {
	params := make([]FuncParam, len(t.Params))
	for i, p := range t.Params {
		params[i] = FuncParam{Phase: p.Phase, Type: p.Type.Substitute(subst)}
	}
	return &FunctionType{Phase: t.Phase, TypeParams: t.TypeParams, Params: params, Result: t.Result.Substitute(subst)}
}
func (t *FunctionType) typeExpressionNode() {}

// OverloadFunctionType groups several non-generic FunctionType branches
// under one name (§3.4 invariant 5); it never appears as a binding's
// declared type, only as the synthesized type of a call target.
type OverloadFunctionType struct {
	Branches []*FunctionType
}

func (t *OverloadFunctionType) String() string {
	parts := make([]string, len(t.Branches))
	for i, b := range t.Branches {
		parts[i] = b.String()
	}
	return strings.Join(parts, " | ")
}
func (t *OverloadFunctionType) Equals(o TypeExpression) bool {
	other, ok := o.(*OverloadFunctionType)
	if !ok || len(t.Branches) != len(other.Branches) {
		return false
	}
	for i := range t.Branches {
		if !t.Branches[i].Equals(other.Branches[i]) {
			return false
		}
	}
	return true
}
func (t *OverloadFunctionType) Substitute(map[string]TypeExpression) TypeExpression { return t }
func (t *OverloadFunctionType) typeExpressionNode()                                 {}

// ModuleType is a package path used in static access.
type ModuleType struct {
	Name ident.Symbol
}

func (t *ModuleType) String() string                                          { return t.Name.String() }
func (t *ModuleType) Equals(o TypeExpression) bool                            { other, ok := o.(*ModuleType); return ok && other.Name == t.Name }
func (t *ModuleType) Substitute(map[string]TypeExpression) TypeExpression     { return t }
func (t *ModuleType) typeExpressionNode()                                     {}

// StructType is a product type with named fields.
type StructType struct {
	Name       ident.Symbol
	TypeParams []*TypeParameterType
	Fields     coll.OrderedMap[string, TypeExpression]
	EnumParent *ident.Symbol
}

func (t *StructType) String() string { return t.Name.String() }
func (t *StructType) Equals(o TypeExpression) bool {
	other, ok := o.(*StructType)
	return ok && other.Name == t.Name
}
func (t *StructType) Substitute(subst map[string]TypeExpression) TypeExpression {
	fields := coll.NewOrderedMap[string, TypeExpression]()
	t.Fields.Each(func(k string, v TypeExpression) {
		fields = fields.Set(k, v.Substitute(subst))
	})
	return &StructType{Name: t.Name, TypeParams: t.TypeParams, Fields: fields, EnumParent: t.EnumParent}
}
func (t *StructType) typeExpressionNode() {}

// TupleType is a product type with positional fields (`v0..vN`).
type TupleType struct {
	Name       ident.Symbol
	TypeParams []*TypeParameterType
	Fields     []TypeExpression
	EnumParent *ident.Symbol
}

func (t *TupleType) String() string { return t.Name.String() }
func (t *TupleType) Equals(o TypeExpression) bool {
	other, ok := o.(*TupleType)
	return ok && other.Name == t.Name
}
func (t *TupleType) Substitute(subst map[string]TypeExpression) TypeExpression {
	fields := make([]TypeExpression, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Substitute(subst)
	}
	return &TupleType{Name: t.Name, TypeParams: t.TypeParams, Fields: fields, EnumParent: t.EnumParent}
}
func (t *TupleType) typeExpressionNode() {}

// AtomType is a nullary data constructor.
type AtomType struct {
	Name       ident.Symbol
	TypeParams []*TypeParameterType
	EnumParent *ident.Symbol
}

func (t *AtomType) String() string                                      { return t.Name.String() }
func (t *AtomType) Equals(o TypeExpression) bool                        { other, ok := o.(*AtomType); return ok && other.Name == t.Name }
func (t *AtomType) Substitute(map[string]TypeExpression) TypeExpression { return t }
func (t *AtomType) typeExpressionNode()                                 {}

// EnumType is a sum type; each variant is itself a Struct/Tuple/AtomType
// whose EnumParent points back here.
type EnumType struct {
	Name       ident.Symbol
	TypeParams []*TypeParameterType
	Variants   coll.OrderedMap[string, TypeExpression]
}

func (t *EnumType) String() string { return t.Name.String() }
func (t *EnumType) Equals(o TypeExpression) bool {
	other, ok := o.(*EnumType)
	return ok && other.Name == t.Name
}
func (t *EnumType) Substitute(subst map[string]TypeExpression) TypeExpression {
	variants := coll.NewOrderedMap[string, TypeExpression]()
	t.Variants.Each(func(k string, v TypeExpression) {
		variants = variants.Set(k, v.Substitute(subst))
	})
	return &EnumType{Name: t.Name, TypeParams: t.TypeParams, Variants: variants}
}
func (t *EnumType) typeExpressionNode() {}

// TypeParameterType is a reference to a generic type parameter.
type TypeParameterType struct {
	Name ident.Symbol
}

func (t *TypeParameterType) String() string { return t.Name.Name() }
func (t *TypeParameterType) Equals(o TypeExpression) bool {
	other, ok := o.(*TypeParameterType)
	return ok && other.Name == t.Name
}
func (t *TypeParameterType) Substitute(subst map[string]TypeExpression) TypeExpression {
	if sub, ok := subst[t.Name.Name()]; ok {
		return sub
	}
	return t
}
func (t *TypeParameterType) typeExpressionNode() {}
