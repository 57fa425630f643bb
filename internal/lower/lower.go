// Package lower implements reactive lowering (§4.4): translating a
// checked C-IR file into the host-level Target IR, reifying the phase
// discipline as explicit calls into the reactive runtime
// (singleton/get/set/flow/def/projection) only where the checker proved
// they are needed.
//
//   - fun bodies lower structurally: every binding they can see is
//     already const/val by the time the checker is done with them
//     (var/flow captures are demoted, §4.3.1), so no runtime calls are
//     emitted at all.
//   - sig bodies may read and reassign `var` cells; reads of a
//     var/flow-phased name lower to a runtime Get, and each
//     Reassignment lowers to a Set.
//   - def functions are themselves one reactive derivation: the whole
//     body is wrapped in a def(inputs, fn) over the function's own
//     parameters, mirroring a flow local declared inside any function
//     phase.
package lower

import (
	"sort"
	"strconv"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/tir"
)

// Lowerer holds the monotonic temp-name counter shared across one file's
// lowering (§4.4 "deterministic naming").
type Lowerer struct {
	temps *tir.TempSource
}

// New builds a Lowerer with a fresh temp-name counter.
func New() *Lowerer {
	return &Lowerer{temps: &tir.TempSource{}}
}

// ctx threads the enclosing function phase and an identifier
// substitution (used when a reactive wrap rebinds a captured name to a
// fresh local parameter, §4.4) through one function body's lowering.
type ctx struct {
	fnPhase phase.Function
	subst   map[ident.Symbol]string
}

func (c ctx) withSubst(extra map[ident.Symbol]string) ctx {
	merged := make(map[ident.Symbol]string, len(c.subst)+len(extra))
	for k, v := range c.subst {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return ctx{fnPhase: c.fnPhase, subst: merged}
}

// LowerFile lowers every declaration of a checked file.
func (l *Lowerer) LowerFile(f *cir.File) (*tir.File, error) {
	out := &tir.File{Path: f.Path, Prelude: []string{"rx/runtime"}}

	for _, d := range f.Data {
		out.Decls = append(out.Decls, lowerDataDecl(d))
	}
	for _, d := range f.Constants {
		cd, err := l.lowerConstantDecl(d)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, cd)
	}
	for _, d := range f.Functions {
		fd, err := l.lowerFunctionDecl(d)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, fd)
	}
	return out, nil
}

func lowerDataDecl(d *cir.DataDecl) *tir.DataDecl {
	out := &tir.DataDecl{Name: d.Symbol.String()}
	switch t := d.Type.(type) {
	case *cir.StructType:
		out.Fields = append(out.Fields, t.Fields.Keys()...)
	case *cir.TupleType:
		for i := range t.Fields {
			out.Fields = append(out.Fields, tupleFieldName(i))
		}
	case *cir.EnumType:
		out.Variants = append(out.Variants, t.Variants.Keys()...)
	}
	return out
}

func tupleFieldName(i int) string {
	return "v" + strconv.Itoa(i)
}

func (l *Lowerer) lowerFunctionDecl(d *cir.FunctionDecl) (*tir.FuncDecl, error) {
	fnPhase := d.Type.Phase
	c := ctx{fnPhase: fnPhase, subst: map[ident.Symbol]string{}}

	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name
		// A const/val parameter is referenced in the body by its host
		// parameter name.
		if p.Phase == phase.Const || p.Phase == phase.Val {
			c.subst[d.Symbol.Child(p.Name)] = p.Name
		}
	}

	body, err := l.lowerToBlock(c, d.Body)
	if err != nil {
		return nil, err
	}

	if fnPhase == phase.Def {
		body = l.wrapDefFunction(d, body)
	}

	return &tir.FuncDecl{Name: d.Symbol.String(), Params: params, Body: body}, nil
}

// wrapDefFunction implements the "def functions are one reactive
// derivation" rule: the body becomes the recompute function of a
// def(inputs, fn) call over the declaration's own parameters, and the
// FuncDecl itself becomes a thin wrapper that returns that cell.
func (l *Lowerer) wrapDefFunction(d *cir.FunctionDecl, body *tir.Block) *tir.Block {
	inputs := make([]tir.Expr, len(d.Params))
	localParams := make([]string, len(d.Params))
	for i, p := range d.Params {
		inputs[i] = &tir.Ident{Name: p.Name}
		localParams[i] = p.Name
	}
	wrap := &tir.ReactiveWrap{Kind: tir.KindDef, Inputs: inputs, Params: localParams, Body: body}
	return &tir.Block{Result: wrap}
}

func (l *Lowerer) lowerConstantDecl(d *cir.ConstantDecl) (*tir.ConstDecl, error) {
	c := ctx{fnPhase: phase.Fun, subst: map[ident.Symbol]string{}}
	value, stmts, err := l.lowerExpr(c, d.Value)
	if err != nil {
		return nil, err
	}
	if d.Phase == phase.Var || d.Phase == phase.Flow {
		value = &tir.Singleton{Value: value}
	}
	if len(stmts) == 0 {
		return &tir.ConstDecl{Name: d.Symbol.String(), Value: value}, nil
	}
	return &tir.ConstDecl{Name: d.Symbol.String(), Body: &tir.Block{Stmts: stmts, Result: value}}, nil
}

// lowerToBlock lowers e into a tir.Block: a cir.Block lowers directly,
// statement by statement; anything else lowers to a single-result block
// with no statements, or with hoisted statements when lowering it
// required intermediates (§4.4 "block hoisting").
func (l *Lowerer) lowerToBlock(c ctx, e cir.Expr) (*tir.Block, error) {
	if b, ok := e.(*cir.Block); ok {
		return l.lowerBlock(c, b)
	}
	result, stmts, err := l.lowerExpr(c, e)
	if err != nil {
		return nil, err
	}
	return &tir.Block{Stmts: stmts, Result: result}, nil
}

func (l *Lowerer) lowerBlock(c ctx, b *cir.Block) (*tir.Block, error) {
	out := &tir.Block{}
	for i, s := range b.Stmts {
		stmts, result, err := l.lowerStmt(c, s)
		if err != nil {
			return nil, err
		}
		out.Stmts = append(out.Stmts, stmts...)
		if i == len(b.Stmts)-1 {
			out.Result = result
		} else if result != nil {
			out.Stmts = append(out.Stmts, &tir.ExprStmt{Expr: result})
		}
	}
	return out, nil
}

func (l *Lowerer) lowerStmt(c ctx, s cir.Stmt) ([]tir.Stmt, tir.Expr, error) {
	switch v := s.(type) {
	case *cir.Assignment:
		return l.lowerAssignment(c, v)
	case *cir.Reassignment:
		return l.lowerReassignment(c, v)
	case *cir.ExprStmt:
		result, stmts, err := l.lowerExpr(c, v.Expr)
		if err != nil {
			return nil, nil, err
		}
		return stmts, result, nil
	case *cir.FunctionStmt:
		nested, err := l.lowerFunctionDecl(v.Decl)
		if err != nil {
			return nil, nil, err
		}
		return []tir.Stmt{&tir.Let{Name: nested.Name, Value: &tir.Lambda{Params: nested.Params, Body: nested.Body}}}, nil, nil
	default:
		return nil, nil, diag.New(diag.InvShouldNeverHappen, "lower", s.Position(), "unhandled checked statement %T", s)
	}
}

// lowerAssignment implements the per-binding phase wrapping: const/val
// bindings copy their initializer verbatim; var bindings wrap it in a
// singleton (a mutable cell, §GLOSSARY); flow bindings wrap it in
// flow(inputs, fn) over every reactive name the initializer reads
// (§4.4).
func (l *Lowerer) lowerAssignment(c ctx, v *cir.Assignment) ([]tir.Stmt, tir.Expr, error) {
	if v.Phase == phase.Flow {
		value, stmts, err := l.lowerFlowBinding(c, v.Value)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, &tir.Let{Name: v.Symbol.String(), Value: value})
		return stmts, nil, nil
	}

	value, stmts, err := l.lowerExpr(c, v.Value)
	if err != nil {
		return nil, nil, err
	}
	if v.Phase == phase.Var {
		value = &tir.Singleton{Value: value}
	}
	stmts = append(stmts, &tir.Let{Name: v.Symbol.String(), Value: value})
	return stmts, nil, nil
}

// lowerFlowBinding builds the flow(inputs, fn) wrapper for a flow-phased
// local: inputs are every distinct reactive (var/flow) identifier the
// initializer reads, dereferenced with Get; the wrapper's own body
// re-lowers the initializer with each of those names rebound to a fresh
// local parameter.
func (l *Lowerer) lowerFlowBinding(c ctx, value cir.Expr) (tir.Expr, []tir.Stmt, error) {
	reactiveSyms := collectReactiveIdents(value)
	inputs := make([]tir.Expr, len(reactiveSyms))
	params := make([]string, len(reactiveSyms))
	substMap := make(map[ident.Symbol]string, len(reactiveSyms))
	for i, sym := range reactiveSyms {
		inputs[i] = &tir.Get{Target: &tir.Ident{Name: sym.String()}}
		p := l.temps.Next()
		params[i] = p
		substMap[sym] = p
	}

	bodyBlock, err := l.lowerToBlock(c.withSubst(substMap), value)
	if err != nil {
		return nil, nil, err
	}
	return &tir.ReactiveWrap{Kind: tir.KindFlow, Inputs: inputs, Params: params, Body: bodyBlock}, nil, nil
}

func (l *Lowerer) lowerReassignment(c ctx, v *cir.Reassignment) ([]tir.Stmt, tir.Expr, error) {
	target, stmts, err := l.lowerExpr(c, v.Target)
	if err != nil {
		return nil, nil, err
	}
	value, valStmts, err := l.lowerExpr(c, v.Value)
	if err != nil {
		return nil, nil, err
	}
	stmts = append(stmts, valStmts...)
	stmts = append(stmts, &tir.ExprStmt{Expr: &tir.Set{Target: target, Value: value}})
	return stmts, nil, nil
}

// lowerExpr lowers e to a single result expression, hoisting any
// statements the translation needed (e.g. a nested Block) out to the
// returned slice (§4.4 "block hoisting").
func (l *Lowerer) lowerExpr(c ctx, e cir.Expr) (tir.Expr, []tir.Stmt, error) {
	switch v := e.(type) {
	case *cir.Literal:
		return &tir.Lit{Kind: tir.LitKind(v.Kind), Value: v.Value}, nil, nil

	case *cir.Identifier:
		if name, ok := c.subst[v.Symbol]; ok {
			return &tir.Ident{Name: name}, nil, nil
		}
		ref := tir.Expr(&tir.Ident{Name: v.Symbol.String()})
		if v.ExprPhase() == phase.Var || v.ExprPhase() == phase.Flow {
			ref = &tir.Get{Target: ref}
		}
		return ref, nil, nil

	case *cir.FieldAccess:
		target, stmts, err := l.lowerExpr(c, v.Target)
		if err != nil {
			return nil, nil, err
		}
		return &tir.FieldAccess{Target: target, Field: v.Field}, stmts, nil

	case *cir.StaticAccess:
		return &tir.Ident{Name: v.Symbol.String()}, nil, nil

	case *cir.Construct:
		if c.fnPhase == phase.Def {
			fieldExprs := make([]cir.Expr, len(v.Fields))
			for i, f := range v.Fields {
				fieldExprs[i] = f.Value
			}
			return l.lowerReactiveOperands(c, fieldExprs, tir.KindFlow, func(vals []tir.Expr) tir.Expr {
				fields := make([]tir.ConstructField, len(v.Fields))
				for i, f := range v.Fields {
					fields[i] = tir.ConstructField{Name: f.Name, Value: vals[i]}
				}
				return &tir.Construct{Target: v.Target.String(), Fields: fields}
			})
		}
		var stmts []tir.Stmt
		fields := make([]tir.ConstructField, len(v.Fields))
		for i, f := range v.Fields {
			val, s, err := l.lowerExpr(c, f.Value)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			fields[i] = tir.ConstructField{Name: f.Name, Value: val}
		}
		return &tir.Construct{Target: v.Target.String(), Fields: fields}, stmts, nil

	case *cir.Call:
		if c.fnPhase == phase.Def {
			return l.lowerDefCall(c, v)
		}
		var stmts []tir.Stmt
		fn, s, err := l.lowerExpr(c, v.Func)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s...)
		args := make([]tir.Expr, len(v.Args))
		for i, a := range v.Args {
			av, s, err := l.lowerExpr(c, a)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			args[i] = av
		}
		return &tir.Call{Func: fn, Args: args}, stmts, nil

	case *cir.BoolOp:
		return l.lowerBoolOp(c, v)

	case *cir.If:
		return l.lowerIf(c, v)

	case *cir.Lambda:
		return l.lowerLambda(c, v)

	case *cir.Block:
		blk, err := l.lowerBlock(c, v)
		if err != nil {
			return nil, nil, err
		}
		return hoistBlock(blk), nil, nil

	case *cir.Return:
		return l.lowerReturn(c, v)

	case *cir.ListLit:
		if c.fnPhase == phase.Def {
			return l.lowerReactiveOperands(c, v.Elems, tir.KindFlow, func(elems []tir.Expr) tir.Expr { return &tir.ListLit{Elems: elems} })
		}
		return l.lowerCollectionLit(c, v.Elems, func(elems []tir.Expr) tir.Expr { return &tir.ListLit{Elems: elems} })

	case *cir.SetLit:
		if c.fnPhase == phase.Def {
			return l.lowerReactiveOperands(c, v.Elems, tir.KindFlow, func(elems []tir.Expr) tir.Expr { return &tir.SetLit{Elems: elems} })
		}
		return l.lowerCollectionLit(c, v.Elems, func(elems []tir.Expr) tir.Expr { return &tir.SetLit{Elems: elems} })

	case *cir.MapLit:
		if c.fnPhase == phase.Def {
			// Keys and values interleave into one flat operand list so a
			// reactive key and a reactive value both register as inputs;
			// build re-pairs them into the two-element [key, value]
			// entries the wrapped literal carries.
			operands := make([]cir.Expr, 0, len(v.Entries)*2)
			for _, e := range v.Entries {
				operands = append(operands, e.Key, e.Value)
			}
			return l.lowerReactiveOperands(c, operands, tir.KindFlow, func(vals []tir.Expr) tir.Expr {
				entries := make([]tir.MapEntry, len(v.Entries))
				for i := range v.Entries {
					entries[i] = tir.MapEntry{Key: vals[2*i], Value: vals[2*i+1]}
				}
				return &tir.MapLit{Entries: entries}
			})
		}
		var stmts []tir.Stmt
		entries := make([]tir.MapEntry, len(v.Entries))
		for i, e := range v.Entries {
			k, s, err := l.lowerExpr(c, e.Key)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			val, s, err := l.lowerExpr(c, e.Value)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			entries[i] = tir.MapEntry{Key: k, Value: val}
		}
		return &tir.MapLit{Entries: entries}, stmts, nil

	default:
		return nil, nil, diag.New(diag.InvShouldNeverHappen, "lower", e.Position(), "unhandled checked expression %T", e)
	}
}

func (l *Lowerer) lowerCollectionLit(c ctx, elems []cir.Expr, build func([]tir.Expr) tir.Expr) (tir.Expr, []tir.Stmt, error) {
	var stmts []tir.Stmt
	out := make([]tir.Expr, len(elems))
	for i, e := range elems {
		v, s, err := l.lowerExpr(c, e)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s...)
		out[i] = v
	}
	return build(out), stmts, nil
}

// lowerReactiveOperands implements the "inside a def" rewrite for
// construct fields and collection-literal elements (§4.4): every
// distinct var/flow-phased identifier any operand reads is pulled out
// by name into a fresh local parameter, and the whole literal is
// rebuilt inside a flow(inputs, fn) wrapper over those parameters. When
// no operand is reactive, operands lower structurally and build's
// result is returned bare, exactly as outside a def.
func (l *Lowerer) lowerReactiveOperands(c ctx, operands []cir.Expr, kind tir.ReactiveKind, build func([]tir.Expr) tir.Expr) (tir.Expr, []tir.Stmt, error) {
	reactiveSyms := collectReactiveOperandIdents(operands)
	if len(reactiveSyms) == 0 {
		return l.lowerCollectionLit(c, operands, build)
	}

	inputs := make([]tir.Expr, len(reactiveSyms))
	params := make([]string, len(reactiveSyms))
	substMap := make(map[ident.Symbol]string, len(reactiveSyms))
	for i, sym := range reactiveSyms {
		inputs[i] = &tir.Get{Target: &tir.Ident{Name: sym.String()}}
		p := l.temps.Next()
		params[i] = p
		substMap[sym] = p
	}

	inner := c.withSubst(substMap)
	var stmts []tir.Stmt
	out := make([]tir.Expr, len(operands))
	for i, e := range operands {
		v, s, err := l.lowerExpr(inner, e)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s...)
		out[i] = v
	}
	body := &tir.Block{Stmts: stmts, Result: build(out)}
	return &tir.ReactiveWrap{Kind: kind, Inputs: inputs, Params: params, Body: body}, nil, nil
}

func collectReactiveOperandIdents(operands []cir.Expr) []ident.Symbol {
	seen := map[ident.Symbol]bool{}
	var out []ident.Symbol
	for _, e := range operands {
		for _, sym := range collectReactiveIdents(e) {
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// lowerDefCall implements the call-splitting rule of §4.4 "Inside a
// def": a flow-phase parameter's non-reactive argument is promoted to a
// cell with singleton; a var-phase parameter's argument lowers to its
// own cell reference (or a projection, for an access chain); every
// other (unspecified-phase) argument that is itself reactive is pulled
// out by name and the whole call wrapped in flow(...), or def(...) when
// the callee's own function phase is def.
func (l *Lowerer) lowerDefCall(c ctx, v *cir.Call) (tir.Expr, []tir.Stmt, error) {
	fn, stmts, err := l.lowerExpr(c, v.Func)
	if err != nil {
		return nil, nil, err
	}

	args := make([]tir.Expr, len(v.Args))
	var pending []int
	seen := map[ident.Symbol]bool{}
	var reactiveSyms []ident.Symbol

	for i, a := range v.Args {
		var paramPhase *phase.Expression
		if v.ResolvedFunc != nil && i < len(v.ResolvedFunc.Params) {
			paramPhase = v.ResolvedFunc.Params[i].Phase
		}
		switch {
		case paramPhase != nil && *paramPhase == phase.Flow:
			av, s, err := l.lowerFlowParamArg(c, a)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			args[i] = av
		case paramPhase != nil && *paramPhase == phase.Var:
			av, s, err := l.lowerCellForm(c, a)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			args[i] = av
		case a.ExprPhase() == phase.Var || a.ExprPhase() == phase.Flow:
			for _, sym := range collectReactiveIdents(a) {
				if !seen[sym] {
					seen[sym] = true
					reactiveSyms = append(reactiveSyms, sym)
				}
			}
			pending = append(pending, i)
		default:
			av, s, err := l.lowerExpr(c, a)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
			args[i] = av
		}
	}

	if len(reactiveSyms) == 0 {
		return &tir.Call{Func: fn, Args: args}, stmts, nil
	}

	sort.Slice(reactiveSyms, func(i, j int) bool { return reactiveSyms[i].String() < reactiveSyms[j].String() })
	inputs := make([]tir.Expr, len(reactiveSyms))
	params := make([]string, len(reactiveSyms))
	substMap := make(map[ident.Symbol]string, len(reactiveSyms))
	for i, sym := range reactiveSyms {
		inputs[i] = &tir.Get{Target: &tir.Ident{Name: sym.String()}}
		p := l.temps.Next()
		params[i] = p
		substMap[sym] = p
	}

	inner := c.withSubst(substMap)
	var bodyStmts []tir.Stmt
	for _, i := range pending {
		av, s, err := l.lowerExpr(inner, v.Args[i])
		if err != nil {
			return nil, nil, err
		}
		bodyStmts = append(bodyStmts, s...)
		args[i] = av
	}

	kind := tir.KindFlow
	if v.ResolvedFunc != nil && v.ResolvedFunc.Phase == phase.Def {
		kind = tir.KindDef
	}
	body := &tir.Block{Stmts: bodyStmts, Result: &tir.Call{Func: fn, Args: args}}
	return &tir.ReactiveWrap{Kind: kind, Inputs: inputs, Params: params, Body: body}, stmts, nil
}

// lowerFlowParamArg lowers a call argument bound to a flow-phase
// parameter: a non-reactive value is promoted to a cell via singleton;
// an already-reactive value is passed through as its own cell (via
// lowerCellForm) rather than dereferenced.
func (l *Lowerer) lowerFlowParamArg(c ctx, a cir.Expr) (tir.Expr, []tir.Stmt, error) {
	if a.ExprPhase() == phase.Var || a.ExprPhase() == phase.Flow {
		return l.lowerCellForm(c, a)
	}
	value, stmts, err := l.lowerExpr(c, a)
	if err != nil {
		return nil, nil, err
	}
	return &tir.Singleton{Value: value}, stmts, nil
}

// lowerCellForm lowers a var/flow-phased expression to a reference to
// its own cell rather than its dereferenced value: a bare identifier
// passes its cell through unchanged, and a field-access chain rooted at
// a reactive identifier becomes a projection addressing the nested
// field (§4.3.4, §4.4).
func (l *Lowerer) lowerCellForm(c ctx, e cir.Expr) (tir.Expr, []tir.Stmt, error) {
	switch v := e.(type) {
	case *cir.Identifier:
		if name, ok := c.subst[v.Symbol]; ok {
			return &tir.Ident{Name: name}, nil, nil
		}
		return &tir.Ident{Name: v.Symbol.String()}, nil, nil
	case *cir.FieldAccess:
		root, path := flattenFieldAccess(v)
		rootExpr, stmts, err := l.lowerCellForm(c, root)
		if err != nil {
			return nil, nil, err
		}
		return &tir.Projection{Root: rootExpr, Path: path}, stmts, nil
	default:
		return l.lowerExpr(c, e)
	}
}

// flattenFieldAccess walks a chain of field accesses down to its root
// expression, returning the root and the field path in access order.
func flattenFieldAccess(v *cir.FieldAccess) (cir.Expr, []string) {
	var path []string
	var cur cir.Expr = v
	for {
		fa, ok := cur.(*cir.FieldAccess)
		if !ok {
			break
		}
		path = append([]string{fa.Field}, path...)
		cur = fa.Target
	}
	return cur, path
}

func (l *Lowerer) lowerBoolOp(c ctx, v *cir.BoolOp) (tir.Expr, []tir.Stmt, error) {
	left, stmts, err := l.lowerExpr(c, v.Left)
	if err != nil {
		return nil, nil, err
	}
	if v.Right == nil {
		return &tir.Call{Func: &tir.Ident{Name: "rx.not"}, Args: []tir.Expr{left}}, stmts, nil
	}
	right, s, err := l.lowerExpr(c, v.Right)
	if err != nil {
		return nil, nil, err
	}
	stmts = append(stmts, s...)
	op := map[cir.BoolOpKind]string{cir.OpIs: "rx.is", cir.OpAnd: "rx.and", cir.OpOr: "rx.or"}[v.Kind]
	return &tir.Call{Func: &tir.Ident{Name: op}, Args: []tir.Expr{left, right}}, stmts, nil
}

// lowerIf translates a checked `if` to a plain host tir.If when its
// phase is const/val (both branches evaluated eagerly, structurally);
// when the overall expression's phase is flow, or var inside a def (the
// condition or a branch reads a reactive cell), it lowers to
// flow([cond], (c0) => if (c0) then .. else ..) per §4.4, so that the
// whole conditional re-evaluates when its condition cell changes. A
// var-phased `if` outside a def lowers plainly, its var reads becoming Gets.
func (l *Lowerer) lowerIf(c ctx, v *cir.If) (tir.Expr, []tir.Stmt, error) {
	reactive := v.ExprPhase() == phase.Flow || (v.ExprPhase() == phase.Var && c.fnPhase == phase.Def)
	if !reactive {
		cond, stmts, err := l.lowerExpr(c, v.Cond)
		if err != nil {
			return nil, nil, err
		}
		then, s, err := l.lowerExpr(c, v.Then)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s...)
		var elseExpr tir.Expr
		if v.Else != nil {
			elseExpr, s, err = l.lowerExpr(c, v.Else)
			if err != nil {
				return nil, nil, err
			}
			stmts = append(stmts, s...)
		}
		return &tir.If{Cond: cond, Then: then, Else: elseExpr}, stmts, nil
	}

	condSym := collectReactiveIdents(v.Cond)
	param := l.temps.Next()
	var condInput tir.Expr
	if len(condSym) == 1 {
		condInput = &tir.Get{Target: &tir.Ident{Name: condSym[0].String()}}
	} else {
		cond, _, err := l.lowerExpr(c, v.Cond)
		if err != nil {
			return nil, nil, err
		}
		condInput = cond
	}
	substMap := map[ident.Symbol]string{}
	if len(condSym) == 1 {
		substMap[condSym[0]] = param
	}
	inner := c.withSubst(substMap)

	then, thenStmts, err := l.lowerExpr(inner, v.Then)
	if err != nil {
		return nil, nil, err
	}
	var elseExpr tir.Expr
	var elseStmts []tir.Stmt
	if v.Else != nil {
		elseExpr, elseStmts, err = l.lowerExpr(inner, v.Else)
		if err != nil {
			return nil, nil, err
		}
	}
	body := &tir.Block{
		Stmts:  append(thenStmts, elseStmts...),
		Result: &tir.If{Cond: &tir.Ident{Name: param}, Then: then, Else: elseExpr},
	}
	return &tir.ReactiveWrap{Kind: tir.KindFlow, Inputs: []tir.Expr{condInput}, Params: []string{param}, Body: body}, nil, nil
}

func (l *Lowerer) lowerLambda(c ctx, v *cir.Lambda) (tir.Expr, []tir.Stmt, error) {
	params := make([]string, len(v.Params))
	for i, p := range v.Params {
		params[i] = p.Name
	}
	lambdaPhase := phase.Fun
	if ft, ok := v.ExprType().(*cir.FunctionType); ok {
		lambdaPhase = ft.Phase
	}
	body, err := l.lowerToBlock(ctx{fnPhase: lambdaPhase, subst: c.subst}, v.Body)
	if err != nil {
		return nil, nil, err
	}
	return &tir.Lambda{Params: params, Body: body}, nil, nil
}

// lowerReturn implements the return-wrapping rule (§4.4): inside a def,
// a const/val-phased return value is wrapped in a singleton so every
// path out of a def function yields a cell uniformly; a flow-phased
// value is already a cell and passes through unwrapped.
func (l *Lowerer) lowerReturn(c ctx, v *cir.Return) (tir.Expr, []tir.Stmt, error) {
	if v.Value == nil {
		return &tir.Return{}, nil, nil
	}
	value, stmts, err := l.lowerExpr(c, v.Value)
	if err != nil {
		return nil, nil, err
	}
	if c.fnPhase == phase.Def && v.Value.ExprPhase() != phase.Flow {
		value = &tir.Singleton{Value: value}
	}
	return &tir.Return{Value: value}, stmts, nil
}

// hoistBlock turns a Block used in expression position into a single
// expression: an immediately-invoked lambda when it carries statements,
// or its bare result otherwise (§4.4 "block hoisting").
func hoistBlock(b *tir.Block) tir.Expr {
	if len(b.Stmts) == 0 {
		return b.Result
	}
	return &tir.Call{Func: &tir.Lambda{Body: b}}
}

// collectReactiveIdents returns, in a deterministic (sorted) order,
// every distinct symbol referenced by a var/flow-phased Identifier
// anywhere inside e, the dependency set a flow/def wrapper closes
// over (§4.4).
func collectReactiveIdents(e cir.Expr) []ident.Symbol {
	seen := map[ident.Symbol]bool{}
	var walk func(cir.Expr)
	walk = func(e cir.Expr) {
		if e == nil {
			return
		}
		switch v := e.(type) {
		case *cir.Identifier:
			if v.ExprPhase() == phase.Var || v.ExprPhase() == phase.Flow {
				seen[v.Symbol] = true
			}
		case *cir.FieldAccess:
			walk(v.Target)
		case *cir.Construct:
			for _, f := range v.Fields {
				walk(f.Value)
			}
		case *cir.Call:
			walk(v.Func)
			for _, a := range v.Args {
				walk(a)
			}
		case *cir.BoolOp:
			walk(v.Left)
			walk(v.Right)
		case *cir.If:
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case *cir.Block:
			for _, s := range v.Stmts {
				walkStmt(s, walk)
			}
		case *cir.Return:
			walk(v.Value)
		case *cir.ListLit:
			for _, e := range v.Elems {
				walk(e)
			}
		case *cir.SetLit:
			for _, e := range v.Elems {
				walk(e)
			}
		case *cir.MapLit:
			for _, e := range v.Entries {
				walk(e.Key)
				walk(e.Value)
			}
		}
	}
	walk(e)

	out := make([]ident.Symbol, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func walkStmt(s cir.Stmt, walk func(cir.Expr)) {
	switch v := s.(type) {
	case *cir.Assignment:
		walk(v.Value)
	case *cir.Reassignment:
		walk(v.Value)
	case *cir.ExprStmt:
		walk(v.Expr)
	}
}
