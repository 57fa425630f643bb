package tir

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MarshalBinary encodes a lowered File to msgpack, for downstream emitter
// tooling that prefers a compact wire format over JSON when shipping a
// lowered file across a process boundary. The wire shape is a generic,
// self-describing tree (every node tagged with its "$kind") rather than a
// mirrored struct set, so that adding a T-IR node doesn't require a
// parallel wire type.
func (f *File) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(fileToWire(f))
}

// UnmarshalBinary decodes a msgpack-encoded File produced by
// MarshalBinary.
func (f *File) UnmarshalBinary(data []byte) error {
	var w map[string]interface{}
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := fileFromWire(w)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func fileToWire(f *File) map[string]interface{} {
	decls := make([]interface{}, len(f.Decls))
	for i, d := range f.Decls {
		decls[i] = declToWire(d)
	}
	return map[string]interface{}{
		"path":    f.Path,
		"prelude": f.Prelude,
		"decls":   decls,
	}
}

func fileFromWire(w map[string]interface{}) (*File, error) {
	path, _ := w["path"].(string)
	var prelude []string
	for _, p := range asSlice(w["prelude"]) {
		if s, ok := p.(string); ok {
			prelude = append(prelude, s)
		}
	}
	var decls []Decl
	for _, raw := range asSlice(w["decls"]) {
		dm, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tir: malformed decl entry")
		}
		d, err := declFromWire(dm)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return &File{Path: path, Prelude: prelude, Decls: decls}, nil
}

func declToWire(d Decl) map[string]interface{} {
	switch v := d.(type) {
	case *FuncDecl:
		return map[string]interface{}{
			"$kind": "func", "name": v.Name, "params": v.Params, "body": blockToWire(v.Body),
		}
	case *ConstDecl:
		w := map[string]interface{}{"$kind": "const", "name": v.Name}
		if v.Value != nil {
			w["value"] = exprToWire(v.Value)
		}
		if v.Body != nil {
			w["body"] = blockToWire(v.Body)
		}
		return w
	case *DataDecl:
		return map[string]interface{}{
			"$kind": "data", "name": v.Name, "fields": v.Fields, "variants": v.Variants,
		}
	default:
		return map[string]interface{}{"$kind": "unknown"}
	}
}

func declFromWire(w map[string]interface{}) (Decl, error) {
	switch w["$kind"] {
	case "func":
		body, err := blockFromWire(w["body"])
		if err != nil {
			return nil, err
		}
		return &FuncDecl{Name: str(w["name"]), Params: strs(w["params"]), Body: body}, nil
	case "const":
		cd := &ConstDecl{Name: str(w["name"])}
		if v, ok := w["value"]; ok {
			e, err := exprFromWire(v)
			if err != nil {
				return nil, err
			}
			cd.Value = e
		}
		if b, ok := w["body"]; ok {
			blk, err := blockFromWire(b)
			if err != nil {
				return nil, err
			}
			cd.Body = blk
		}
		return cd, nil
	case "data":
		return &DataDecl{Name: str(w["name"]), Fields: strs(w["fields"]), Variants: strs(w["variants"])}, nil
	default:
		return nil, fmt.Errorf("tir: unknown decl kind %v", w["$kind"])
	}
}

func blockToWire(b *Block) map[string]interface{} {
	if b == nil {
		return nil
	}
	stmts := make([]interface{}, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = stmtToWire(s)
	}
	w := map[string]interface{}{"stmts": stmts}
	if b.Result != nil {
		w["result"] = exprToWire(b.Result)
	}
	return w
}

func blockFromWire(raw interface{}) (*Block, error) {
	if raw == nil {
		return nil, nil
	}
	w, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("tir: malformed block")
	}
	var stmts []Stmt
	for _, s := range asSlice(w["stmts"]) {
		sm, ok := s.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tir: malformed stmt entry")
		}
		st, err := stmtFromWire(sm)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	var result Expr
	if r, ok := w["result"]; ok {
		e, err := exprFromWire(r)
		if err != nil {
			return nil, err
		}
		result = e
	}
	return &Block{Stmts: stmts, Result: result}, nil
}

func stmtToWire(s Stmt) map[string]interface{} {
	switch v := s.(type) {
	case *Let:
		return map[string]interface{}{"$kind": "let", "name": v.Name, "value": exprToWire(v.Value)}
	case *ExprStmt:
		return map[string]interface{}{"$kind": "expr", "value": exprToWire(v.Expr)}
	case *Return:
		return map[string]interface{}{"$kind": "return", "value": exprToWire(v.Value)}
	default:
		return map[string]interface{}{"$kind": "unknown"}
	}
}

func stmtFromWire(w map[string]interface{}) (Stmt, error) {
	switch w["$kind"] {
	case "let":
		e, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &Let{Name: str(w["name"]), Value: e}, nil
	case "expr":
		e, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: e}, nil
	case "return":
		e, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &Return{Value: e}, nil
	default:
		return nil, fmt.Errorf("tir: unknown stmt kind %v", w["$kind"])
	}
}

func exprToWire(e Expr) map[string]interface{} {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *Ident:
		return map[string]interface{}{"$kind": "ident", "name": v.Name}
	case *Lit:
		return map[string]interface{}{"$kind": "lit", "litKind": int(v.Kind), "value": v.Value}
	case *FieldAccess:
		return map[string]interface{}{"$kind": "field", "target": exprToWire(v.Target), "field": v.Field}
	case *Construct:
		fields := make([]interface{}, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = map[string]interface{}{"name": f.Name, "value": exprToWire(f.Value)}
		}
		return map[string]interface{}{"$kind": "construct", "target": v.Target, "fields": fields}
	case *Call:
		args := make([]interface{}, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprToWire(a)
		}
		return map[string]interface{}{"$kind": "call", "func": exprToWire(v.Func), "args": args}
	case *If:
		w := map[string]interface{}{"$kind": "if", "cond": exprToWire(v.Cond), "then": exprToWire(v.Then)}
		if v.Else != nil {
			w["else"] = exprToWire(v.Else)
		}
		return w
	case *ListLit:
		return map[string]interface{}{"$kind": "list", "elems": exprList(v.Elems)}
	case *SetLit:
		return map[string]interface{}{"$kind": "set", "elems": exprList(v.Elems)}
	case *MapLit:
		entries := make([]interface{}, len(v.Entries))
		for i, en := range v.Entries {
			entries[i] = map[string]interface{}{"key": exprToWire(en.Key), "value": exprToWire(en.Value)}
		}
		return map[string]interface{}{"$kind": "map", "entries": entries}
	case *Lambda:
		return map[string]interface{}{"$kind": "lambda", "params": v.Params, "body": blockToWire(v.Body)}
	case *Return:
		return map[string]interface{}{"$kind": "return", "value": exprToWire(v.Value)}
	case *Singleton:
		return map[string]interface{}{"$kind": "singleton", "value": exprToWire(v.Value)}
	case *Get:
		return map[string]interface{}{"$kind": "get", "target": exprToWire(v.Target)}
	case *Set:
		return map[string]interface{}{"$kind": "set_op", "target": exprToWire(v.Target), "value": exprToWire(v.Value)}
	case *Projection:
		return map[string]interface{}{"$kind": "projection", "root": exprToWire(v.Root), "path": v.Path}
	case *ReactiveWrap:
		return map[string]interface{}{
			"$kind": "reactive", "reactiveKind": int(v.Kind), "inputs": exprList(v.Inputs),
			"params": v.Params, "body": blockToWire(v.Body),
		}
	default:
		return map[string]interface{}{"$kind": "unknown"}
	}
}

func exprList(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = exprToWire(e)
	}
	return out
}

func exprFromWire(raw interface{}) (Expr, error) {
	if raw == nil {
		return nil, nil
	}
	w, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("tir: malformed expr")
	}
	switch w["$kind"] {
	case "ident":
		return &Ident{Name: str(w["name"])}, nil
	case "lit":
		return &Lit{Kind: LitKind(toInt(w["litKind"])), Value: w["value"]}, nil
	case "field":
		t, err := exprFromWire(w["target"])
		if err != nil {
			return nil, err
		}
		return &FieldAccess{Target: t, Field: str(w["field"])}, nil
	case "construct":
		var fields []ConstructField
		for _, raw := range asSlice(w["fields"]) {
			fm := raw.(map[string]interface{})
			v, err := exprFromWire(fm["value"])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ConstructField{Name: str(fm["name"]), Value: v})
		}
		return &Construct{Target: str(w["target"]), Fields: fields}, nil
	case "call":
		fn, err := exprFromWire(w["func"])
		if err != nil {
			return nil, err
		}
		args, err := exprsFromWire(w["args"])
		if err != nil {
			return nil, err
		}
		return &Call{Func: fn, Args: args}, nil
	case "if":
		cond, err := exprFromWire(w["cond"])
		if err != nil {
			return nil, err
		}
		then, err := exprFromWire(w["then"])
		if err != nil {
			return nil, err
		}
		var els Expr
		if e, ok := w["else"]; ok {
			els, err = exprFromWire(e)
			if err != nil {
				return nil, err
			}
		}
		return &If{Cond: cond, Then: then, Else: els}, nil
	case "list":
		elems, err := exprsFromWire(w["elems"])
		if err != nil {
			return nil, err
		}
		return &ListLit{Elems: elems}, nil
	case "set":
		elems, err := exprsFromWire(w["elems"])
		if err != nil {
			return nil, err
		}
		return &SetLit{Elems: elems}, nil
	case "map":
		var entries []MapEntry
		for _, raw := range asSlice(w["entries"]) {
			em := raw.(map[string]interface{})
			k, err := exprFromWire(em["key"])
			if err != nil {
				return nil, err
			}
			v, err := exprFromWire(em["value"])
			if err != nil {
				return nil, err
			}
			entries = append(entries, MapEntry{Key: k, Value: v})
		}
		return &MapLit{Entries: entries}, nil
	case "lambda":
		body, err := blockFromWire(w["body"])
		if err != nil {
			return nil, err
		}
		return &Lambda{Params: strs(w["params"]), Body: body}, nil
	case "return":
		v, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &Return{Value: v}, nil
	case "singleton":
		v, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &Singleton{Value: v}, nil
	case "get":
		t, err := exprFromWire(w["target"])
		if err != nil {
			return nil, err
		}
		return &Get{Target: t}, nil
	case "set_op":
		t, err := exprFromWire(w["target"])
		if err != nil {
			return nil, err
		}
		v, err := exprFromWire(w["value"])
		if err != nil {
			return nil, err
		}
		return &Set{Target: t, Value: v}, nil
	case "projection":
		r, err := exprFromWire(w["root"])
		if err != nil {
			return nil, err
		}
		return &Projection{Root: r, Path: strs(w["path"])}, nil
	case "reactive":
		inputs, err := exprsFromWire(w["inputs"])
		if err != nil {
			return nil, err
		}
		body, err := blockFromWire(w["body"])
		if err != nil {
			return nil, err
		}
		return &ReactiveWrap{Kind: ReactiveKind(toInt(w["reactiveKind"])), Inputs: inputs, Params: strs(w["params"]), Body: body}, nil
	default:
		return nil, fmt.Errorf("tir: unknown expr kind %v", w["$kind"])
	}
}

func exprsFromWire(raw interface{}) ([]Expr, error) {
	var out []Expr
	for _, e := range asSlice(raw) {
		ex, err := exprFromWire(e)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

func asSlice(raw interface{}) []interface{} {
	s, _ := raw.([]interface{})
	return s
}

func str(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

func strs(raw interface{}) []string {
	var out []string
	for _, s := range asSlice(raw) {
		if v, ok := s.(string); ok {
			out = append(out, v)
		}
	}
	return out
}

func toInt(raw interface{}) int {
	switch v := raw.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
