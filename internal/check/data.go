package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/coll"
	"github.com/rxlang/rxc/internal/collect"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/symtab"
)

// checkDataDecl resolves a parsed data/enum declaration into its checked
// StructType/TupleType/AtomType/EnumType, registering both the type
// itself and any nested variants into the package table so that later
// files in the same package can reference them by symbol.
func (c *Checker) checkDataDecl(d *pir.DataDecl) (*cir.DataDecl, error) {
	sym := c.Module.Child(d.Name)
	access, err := c.accessLevel(d.Access)
	if err != nil {
		return nil, diag.New(diag.TypMismatch, "check", d.Pos, "%s", err)
	}

	typ, err := c.buildDataType(sym, d, nil)
	if err != nil {
		return nil, err
	}

	if err := c.Table.Declare(sym, &symtab.AccessRecord{Access: access, Name: d.Name, Module: sym, Type: typ}); err != nil {
		return nil, err
	}
	return &cir.DataDecl{Pos: d.Pos, Symbol: sym, Access: access, Type: typ}, nil
}

// buildDataType builds the structural type for d. enumParent is non-nil
// when d is one variant of an enum declaration.
func (c *Checker) buildDataType(sym ident.Symbol, d *pir.DataDecl, enumParent *ident.Symbol) (cir.TypeExpression, error) {
	tparams, scope, err := c.declareTypeParams(sym, d.TypeParams)
	if err != nil {
		return nil, err
	}
	qual := collect.NewQualifier(scope, c.Table)

	switch d.Kind {
	case pir.DataAtom:
		return &cir.AtomType{Name: sym, TypeParams: tparams, EnumParent: enumParent}, nil

	case pir.DataStruct:
		fields := coll.NewOrderedMap[string, cir.TypeExpression]()
		for _, f := range d.Fields {
			ft, err := qual.CheckTypeExpression(f.Type)
			if err != nil {
				return nil, err
			}
			fields = fields.Set(f.Name, ft)
		}
		return &cir.StructType{Name: sym, TypeParams: tparams, Fields: fields, EnumParent: enumParent}, nil

	case pir.DataTuple:
		fields := make([]cir.TypeExpression, len(d.Fields))
		for i, f := range d.Fields {
			ft, err := qual.CheckTypeExpression(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ft
		}
		return &cir.TupleType{Name: sym, TypeParams: tparams, Fields: fields, EnumParent: enumParent}, nil

	case pir.DataEnum:
		variants := coll.NewOrderedMap[string, cir.TypeExpression]()
		for _, v := range d.Variants {
			variantSym := sym.Child(v.Name)
			variantType, err := c.buildDataType(variantSym, v, &sym)
			if err != nil {
				return nil, err
			}
			variantAccess, err := c.accessLevel(v.Access)
			if err != nil {
				return nil, diag.New(diag.TypMismatch, "check", v.Pos, "%s", err)
			}
			if err := c.Table.Declare(variantSym, &symtab.AccessRecord{
				Access: variantAccess, Name: v.Name, Module: variantSym, Type: variantType,
			}); err != nil {
				return nil, err
			}
			variants = variants.Set(v.Name, variantType)
		}
		return &cir.EnumType{Name: sym, TypeParams: tparams, Variants: variants}, nil

	default:
		return nil, diag.New(diag.InvShouldNeverHappen, "check", d.Pos, "unknown data kind %d", d.Kind)
	}
}

// declareTypeParams registers each of a data declaration's type
// parameters as a locally scoped symbol (child of sym) holding a
// TypeParameterType, and returns both the checked list and an extended
// Scope field-type resolution can use to see them.
func (c *Checker) declareTypeParams(sym ident.Symbol, names []string) ([]*cir.TypeParameterType, collect.Scope, error) {
	scope := make(collect.Scope)
	out := make([]*cir.TypeParameterType, len(names))
	for i, name := range names {
		paramSym := sym.Child(name)
		tp := &cir.TypeParameterType{Name: paramSym}
		out[i] = tp
		scope[name] = paramSym
		if _, ok := c.Table.Lookup(paramSym); !ok {
			if err := c.Table.Declare(paramSym, &symtab.AccessRecord{Access: ident.Private, Name: name, Module: paramSym, Type: tp}); err != nil {
				return nil, nil, err
			}
		}
	}
	// Overlay onto the qualifier's own scope so non-type-param names
	// (other declared types, preamble) remain visible.
	merged := make(collect.Scope, len(c.Qual.Scope)+len(scope))
	for k, v := range c.Qual.Scope {
		merged[k] = v
	}
	for k, v := range scope {
		merged[k] = v
	}
	return out, merged, nil
}
