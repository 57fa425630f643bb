package pir

import (
	"encoding/json"
	"fmt"

	"github.com/rxlang/rxc/internal/ident"
)

// Fixtures are hand-authored JSON documents standing in for a real
// parser's output (see the package doc comment); every polymorphic node
// (Declaration, Expr, Stmt, TypeExpr) is tagged with a "$kind" string
// discriminator, mirroring the wire-tree convention internal/tir/codec.go
// uses for its own (binary) serialization.
type wireNode map[string]json.RawMessage

func (w wireNode) kind() (string, error) {
	raw, ok := w["$kind"]
	if !ok {
		return "", fmt.Errorf("pir: wire node missing $kind")
	}
	var k string
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", err
	}
	return k, nil
}

func (w wireNode) pos() ident.Pos {
	var p ident.Pos
	if raw, ok := w["pos"]; ok {
		_ = json.Unmarshal(raw, &p)
	}
	return p
}

func (w wireNode) str(key string) string {
	var s string
	if raw, ok := w[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (w wireNode) field(key string, out interface{}) error {
	raw, ok := w[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// DecodeFile parses a JSON fixture into a *File.
func DecodeFile(data []byte) (*File, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	f := &File{Pos: w.pos(), Path: w.str("path")}

	var rawImports []wireNode
	if err := w.field("imports", &rawImports); err != nil {
		return nil, err
	}
	for _, ri := range rawImports {
		imp, err := decodeImportDecl(ri)
		if err != nil {
			return nil, err
		}
		f.Imports = append(f.Imports, imp)
	}

	var rawDecls []wireNode
	if err := w.field("declarations", &rawDecls); err != nil {
		return nil, err
	}
	for _, rd := range rawDecls {
		d, err := decodeDeclaration(rd)
		if err != nil {
			return nil, err
		}
		f.Declarations = append(f.Declarations, d)
	}
	return f, nil
}

func decodeImportDecl(w wireNode) (*ImportDecl, error) {
	imp := &ImportDecl{Pos: w.pos(), Path: w.str("path")}
	var names []ImportName
	if err := w.field("names", &names); err != nil {
		return nil, err
	}
	imp.Names = names
	return imp, nil
}

func decodeDeclaration(w wireNode) (Declaration, error) {
	kind, err := w.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "function":
		return decodeFunctionDecl(w)
	case "constant":
		return decodeConstantDecl(w)
	case "data":
		return decodeDataDecl(w)
	default:
		return nil, fmt.Errorf("pir: unknown declaration kind %q", kind)
	}
}

func decodeFunctionDecl(w wireNode) (*FunctionDecl, error) {
	d := &FunctionDecl{
		Pos:    w.pos(),
		Access: Access(w.str("access")),
		Name:   w.str("name"),
		Phase:  w.str("phase"),
	}
	if err := w.field("typeParams", &d.TypeParams); err != nil {
		return nil, err
	}
	var rawParams []wireNode
	if err := w.field("params", &rawParams); err != nil {
		return nil, err
	}
	for _, rp := range rawParams {
		p, err := decodeParam(rp)
		if err != nil {
			return nil, err
		}
		d.Params = append(d.Params, p)
	}
	if raw, ok := w["result"]; ok {
		var rw wireNode
		if err := json.Unmarshal(raw, &rw); err != nil {
			return nil, err
		}
		t, err := decodeTypeExpr(rw)
		if err != nil {
			return nil, err
		}
		d.Result = t
	}
	if raw, ok := w["body"]; ok {
		var bw wireNode
		if err := json.Unmarshal(raw, &bw); err != nil {
			return nil, err
		}
		body, err := decodeExpr(bw)
		if err != nil {
			return nil, err
		}
		d.Body = body
	}
	return d, nil
}

func decodeParam(w wireNode) (Param, error) {
	p := Param{Pos: w.pos(), Name: w.str("name"), Phase: w.str("phase")}
	if raw, ok := w["type"]; ok {
		var tw wireNode
		if err := json.Unmarshal(raw, &tw); err != nil {
			return p, err
		}
		t, err := decodeTypeExpr(tw)
		if err != nil {
			return p, err
		}
		p.Type = t
	}
	return p, nil
}

func decodeConstantDecl(w wireNode) (*ConstantDecl, error) {
	d := &ConstantDecl{
		Pos:    w.pos(),
		Access: Access(w.str("access")),
		Name:   w.str("name"),
		Phase:  w.str("phase"),
	}
	if raw, ok := w["type"]; ok {
		var tw wireNode
		if err := json.Unmarshal(raw, &tw); err != nil {
			return nil, err
		}
		t, err := decodeTypeExpr(tw)
		if err != nil {
			return nil, err
		}
		d.Type = t
	}
	var vw wireNode
	if err := w.field("value", &vw); err != nil {
		return nil, err
	}
	value, err := decodeExpr(vw)
	if err != nil {
		return nil, err
	}
	d.Value = value
	return d, nil
}

func decodeDataDecl(w wireNode) (*DataDecl, error) {
	d := &DataDecl{Pos: w.pos(), Access: Access(w.str("access")), Name: w.str("name")}
	switch w.str("kind") {
	case "struct":
		d.Kind = DataStruct
	case "tuple":
		d.Kind = DataTuple
	case "atom":
		d.Kind = DataAtom
	case "enum":
		d.Kind = DataEnum
	}
	if err := w.field("typeParams", &d.TypeParams); err != nil {
		return nil, err
	}

	var rawFields []wireNode
	if err := w.field("fields", &rawFields); err != nil {
		return nil, err
	}
	for _, rf := range rawFields {
		f := Field{Pos: rf.pos(), Name: rf.str("name")}
		if raw, ok := rf["type"]; ok {
			var tw wireNode
			if err := json.Unmarshal(raw, &tw); err != nil {
				return nil, err
			}
			t, err := decodeTypeExpr(tw)
			if err != nil {
				return nil, err
			}
			f.Type = t
		}
		d.Fields = append(d.Fields, f)
	}

	var rawVariants []wireNode
	if err := w.field("variants", &rawVariants); err != nil {
		return nil, err
	}
	for _, rv := range rawVariants {
		v, err := decodeDataDecl(rv)
		if err != nil {
			return nil, err
		}
		d.Variants = append(d.Variants, v)
	}
	return d, nil
}

func decodeTypeExpr(w wireNode) (TypeExpr, error) {
	kind, err := w.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "nominal":
		t := &NominalTypeExpr{Pos: w.pos(), Name: w.str("name")}
		var rawArgs []wireNode
		if err := w.field("args", &rawArgs); err != nil {
			return nil, err
		}
		for _, ra := range rawArgs {
			a, err := decodeTypeExpr(ra)
			if err != nil {
				return nil, err
			}
			t.Args = append(t.Args, a)
		}
		return t, nil
	case "function":
		t := &FunctionTypeExpr{Pos: w.pos(), Phase: w.str("phase")}
		if err := w.field("typeParams", &t.TypeParams); err != nil {
			return nil, err
		}
		var rawParams []wireNode
		if err := w.field("params", &rawParams); err != nil {
			return nil, err
		}
		for _, rp := range rawParams {
			var pt TypeExpr
			if raw, ok := rp["type"]; ok {
				var tw wireNode
				if err := json.Unmarshal(raw, &tw); err != nil {
					return nil, err
				}
				var err2 error
				pt, err2 = decodeTypeExpr(tw)
				if err2 != nil {
					return nil, err2
				}
			}
			t.Params = append(t.Params, FunctionTypeParam{Phase: rp.str("phase"), Type: pt})
		}
		if raw, ok := w["result"]; ok {
			var rw wireNode
			if err := json.Unmarshal(raw, &rw); err != nil {
				return nil, err
			}
			res, err := decodeTypeExpr(rw)
			if err != nil {
				return nil, err
			}
			t.Result = res
		}
		return t, nil
	default:
		return nil, fmt.Errorf("pir: unknown type expression kind %q", kind)
	}
}

func decodeExpr(w wireNode) (Expr, error) {
	kind, err := w.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "literal":
		lit := &Literal{Pos: w.pos()}
		switch w.str("litKind") {
		case "int":
			lit.Kind = IntLit
		case "float":
			lit.Kind = FloatLit
		case "bool":
			lit.Kind = BoolLit
		case "string":
			lit.Kind = StringLit
		case "unit":
			lit.Kind = UnitLit
		}
		if err := w.field("value", &lit.Value); err != nil {
			return nil, err
		}
		return lit, nil

	case "identifier":
		return &Identifier{Pos: w.pos(), Name: w.str("name")}, nil

	case "fieldAccess":
		base, err := decodeExprField(w, "base")
		if err != nil {
			return nil, err
		}
		return &FieldAccess{Pos: w.pos(), Base: base, Field: w.str("field")}, nil

	case "staticAccess":
		fa := &StaticAccess{Pos: w.pos()}
		if err := w.field("segments", &fa.Segments); err != nil {
			return nil, err
		}
		return fa, nil

	case "construct":
		base, err := decodeExprField(w, "base")
		if err != nil {
			return nil, err
		}
		c := &Construct{Pos: w.pos(), Base: base}
		var rawFields []wireNode
		if err := w.field("fields", &rawFields); err != nil {
			return nil, err
		}
		for _, rf := range rawFields {
			v, err := decodeExprField(rf, "value")
			if err != nil {
				return nil, err
			}
			c.Fields = append(c.Fields, ConstructField{Name: rf.str("name"), Value: v})
		}
		return c, nil

	case "call":
		fn, err := decodeExprField(w, "func")
		if err != nil {
			return nil, err
		}
		call := &Call{Pos: w.pos(), Func: fn}
		var rawArgs []wireNode
		if err := w.field("args", &rawArgs); err != nil {
			return nil, err
		}
		for _, ra := range rawArgs {
			a, err := decodeExpr(ra)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, a)
		}
		return call, nil

	case "boolOp":
		op := &BoolOp{Pos: w.pos()}
		switch w.str("op") {
		case "is":
			op.Kind = OpIs
		case "not":
			op.Kind = OpNot
		case "and":
			op.Kind = OpAnd
		case "or":
			op.Kind = OpOr
		}
		left, err := decodeExprField(w, "left")
		if err != nil {
			return nil, err
		}
		op.Left = left
		if _, ok := w["right"]; ok {
			right, err := decodeExprField(w, "right")
			if err != nil {
				return nil, err
			}
			op.Right = right
		}
		return op, nil

	case "if":
		cond, err := decodeExprField(w, "cond")
		if err != nil {
			return nil, err
		}
		then, err := decodeExprField(w, "then")
		if err != nil {
			return nil, err
		}
		v := &If{Pos: w.pos(), Cond: cond, Then: then}
		if _, ok := w["else"]; ok {
			e, err := decodeExprField(w, "else")
			if err != nil {
				return nil, err
			}
			v.Else = e
		}
		return v, nil

	case "lambda":
		lam := &Lambda{Pos: w.pos(), Phase: w.str("phase")}
		var rawParams []wireNode
		if err := w.field("params", &rawParams); err != nil {
			return nil, err
		}
		for _, rp := range rawParams {
			p, err := decodeParam(rp)
			if err != nil {
				return nil, err
			}
			lam.Params = append(lam.Params, p)
		}
		if raw, ok := w["result"]; ok {
			var rw wireNode
			if err := json.Unmarshal(raw, &rw); err != nil {
				return nil, err
			}
			res, err := decodeTypeExpr(rw)
			if err != nil {
				return nil, err
			}
			lam.Result = res
		}
		body, err := decodeExprField(w, "body")
		if err != nil {
			return nil, err
		}
		lam.Body = body
		return lam, nil

	case "block":
		blk := &Block{Pos: w.pos()}
		var rawStmts []wireNode
		if err := w.field("stmts", &rawStmts); err != nil {
			return nil, err
		}
		for _, rs := range rawStmts {
			s, err := decodeStmt(rs)
			if err != nil {
				return nil, err
			}
			blk.Stmts = append(blk.Stmts, s)
		}
		return blk, nil

	case "return":
		ret := &Return{Pos: w.pos()}
		if _, ok := w["value"]; ok {
			v, err := decodeExprField(w, "value")
			if err != nil {
				return nil, err
			}
			ret.Value = v
		}
		return ret, nil

	case "listLit", "setLit":
		var rawElems []wireNode
		if err := w.field("elems", &rawElems); err != nil {
			return nil, err
		}
		elems := make([]Expr, len(rawElems))
		for i, re := range rawElems {
			e, err := decodeExpr(re)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		if kind == "listLit" {
			return &ListLit{Pos: w.pos(), Elems: elems}, nil
		}
		return &SetLit{Pos: w.pos(), Elems: elems}, nil

	case "mapLit":
		m := &MapLit{Pos: w.pos()}
		var rawEntries []wireNode
		if err := w.field("entries", &rawEntries); err != nil {
			return nil, err
		}
		for _, re := range rawEntries {
			k, err := decodeExprField(re, "key")
			if err != nil {
				return nil, err
			}
			v, err := decodeExprField(re, "value")
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: k, Value: v})
		}
		return m, nil

	default:
		return nil, fmt.Errorf("pir: unknown expression kind %q", kind)
	}
}

func decodeExprField(w wireNode, key string) (Expr, error) {
	raw, ok := w[key]
	if !ok {
		return nil, fmt.Errorf("pir: missing %q field", key)
	}
	var ew wireNode
	if err := json.Unmarshal(raw, &ew); err != nil {
		return nil, err
	}
	return decodeExpr(ew)
}

func decodeStmt(w wireNode) (Stmt, error) {
	kind, err := w.kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "assignment":
		value, err := decodeExprField(w, "value")
		if err != nil {
			return nil, err
		}
		a := &Assignment{Pos: w.pos(), Name: w.str("name"), Phase: w.str("phase"), Value: value}
		if raw, ok := w["type"]; ok {
			var tw wireNode
			if err := json.Unmarshal(raw, &tw); err != nil {
				return nil, err
			}
			t, err := decodeTypeExpr(tw)
			if err != nil {
				return nil, err
			}
			a.Type = t
		}
		return a, nil

	case "reassignment":
		target, err := decodeExprField(w, "target")
		if err != nil {
			return nil, err
		}
		value, err := decodeExprField(w, "value")
		if err != nil {
			return nil, err
		}
		return &Reassignment{Pos: w.pos(), Target: target, Value: value}, nil

	case "exprStmt":
		e, err := decodeExprField(w, "expr")
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: w.pos(), Expr: e}, nil

	case "functionStmt":
		var dw wireNode
		if err := w.field("decl", &dw); err != nil {
			return nil, err
		}
		decl, err := decodeFunctionDecl(dw)
		if err != nil {
			return nil, err
		}
		return &FunctionStmt{Pos: w.pos(), Decl: decl}, nil

	default:
		return nil, fmt.Errorf("pir: unknown statement kind %q", kind)
	}
}
