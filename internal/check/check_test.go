package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/diag"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
	"github.com/rxlang/rxc/internal/pir"
	"github.com/rxlang/rxc/internal/stdlib"
	"github.com/rxlang/rxc/internal/symtab"
)

var testPkg = ident.PackageName{Org: "acme", Name: "widgets", Version: ident.Version{Major: 1}}

func testPos() ident.Pos { return ident.Pos{Path: "widget.rx", Line: 1, Column: 1} }

// newTestChecker builds a Checker against a fresh table seeded with
// stdlib's preamble, with extraNames declared as if they were this
// file's own top-level declarations (mirroring what collect.Scope would
// hold after CollectDeclarations, without needing a depmgr.Manager since
// these fixtures import nothing).
func newTestChecker(t *testing.T, extraNames ...string) (*Checker, ident.Symbol) {
	t.Helper()
	table := symtab.NewTable()
	preamble, core, err := stdlib.Load(table)
	require.NoError(t, err)

	module := ident.NewSymbol(testPkg, "widget.rx")
	scope := make(map[string]ident.Symbol, len(preamble)+len(extraNames))
	for name, sym := range preamble {
		scope[name] = sym
	}
	for _, name := range extraNames {
		scope[name] = module.Child(name)
	}

	return New(table, core, module, scope), module
}

func intLit(v int64) *pir.Literal {
	return &pir.Literal{Pos: testPos(), Kind: pir.IntLit, Value: v}
}

func nominal(name string) *pir.NominalTypeExpr {
	return &pir.NominalTypeExpr{Pos: testPos(), Name: name}
}

func TestCheckBlockEmptyIsUnitConst(t *testing.T) {
	c, _ := newTestChecker(t)
	result, err := c.checkBlock(NewRootScope(), &pir.Block{Pos: testPos()}, nil)
	require.NoError(t, err)

	nt, ok := result.ExprType().(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Unit, nt.Name)
	assert.Equal(t, phase.Const, result.ExprPhase())
}

func TestCheckLiteralTypes(t *testing.T) {
	c, _ := newTestChecker(t)

	cases := []struct {
		name string
		kind pir.LitKind
		want ident.Symbol
	}{
		{"int", pir.IntLit, c.Core.Int},
		{"float", pir.FloatLit, c.Core.Float},
		{"bool", pir.BoolLit, c.Core.Boolean},
		{"string", pir.StringLit, c.Core.String},
		{"unit", pir.UnitLit, c.Core.Unit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := c.checkLiteral(&pir.Literal{Pos: testPos(), Kind: tc.kind})
			require.NoError(t, err)
			nt, ok := result.ExprType().(*cir.NominalType)
			require.True(t, ok)
			assert.Equal(t, tc.want, nt.Name)
			assert.Equal(t, phase.Const, result.ExprPhase())
		})
	}
}

func TestCheckIfWithoutElseWrapsOption(t *testing.T) {
	c, _ := newTestChecker(t)
	ifExpr := &pir.If{Pos: testPos(), Cond: &pir.Literal{Pos: testPos(), Kind: pir.BoolLit, Value: true}, Then: intLit(1)}

	result, err := c.checkIf(NewRootScope(), ifExpr, nil)
	require.NoError(t, err)

	pt, ok := result.ExprType().(*cir.ParameterizedType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Option, pt.Base.Name)
	require.Len(t, pt.Args, 1)
	elem, ok := pt.Args[0].(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, elem.Name)
	assert.Equal(t, phase.Const, result.ExprPhase())
}

// S1 (spec.md §8): `1 + 1` resolves the `+` preamble overload and checks
// to Int, const.
func TestCheckCallArithmeticOverload(t *testing.T) {
	c, _ := newTestChecker(t)
	call := &pir.Call{
		Pos:  testPos(),
		Func: &pir.Identifier{Pos: testPos(), Name: "+"},
		Args: []pir.Expr{intLit(1), intLit(1)},
	}

	result, err := c.checkExpr(NewRootScope(), call, nil)
	require.NoError(t, err)

	nt, ok := result.ExprType().(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, nt.Name)
	assert.Equal(t, phase.Const, result.ExprPhase())
}

// S2: `core::list::get([1], 0)` walks the StaticAccess chain down to the
// registered core.list.get function and unifies its type parameter.
func TestCheckStaticAccessCoreListGet(t *testing.T) {
	c, _ := newTestChecker(t)
	call := &pir.Call{
		Pos:  testPos(),
		Func: &pir.StaticAccess{Pos: testPos(), Segments: []string{"core", "list", "get"}},
		Args: []pir.Expr{
			&pir.ListLit{Pos: testPos(), Elems: []pir.Expr{intLit(1)}},
			intLit(0),
		},
	}

	result, err := c.checkExpr(NewRootScope(), call, nil)
	require.NoError(t, err)

	nt, ok := result.ExprType().(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, nt.Name)
}

// S3: a lambda with an annotated parameter and an inferred result merges
// its body's type into a concrete fun(Int) -> Int.
func TestCheckLambdaInfersParamAndResult(t *testing.T) {
	c, _ := newTestChecker(t)
	lambda := &pir.Lambda{
		Pos:    testPos(),
		Params: []pir.Param{{Pos: testPos(), Name: "x", Type: nominal("Int")}},
		Body:   &pir.Identifier{Pos: testPos(), Name: "x"},
	}

	result, err := c.checkExpr(NewRootScope(), lambda, nil)
	require.NoError(t, err)

	ft, ok := result.ExprType().(*cir.FunctionType)
	require.True(t, ok)
	assert.Equal(t, phase.Fun, ft.Phase)
	require.Len(t, ft.Params, 1)
	paramType, ok := ft.Params[0].Type.(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, paramType.Name)
	resultType, ok := ft.Result.(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, resultType.Name)
}

// S4: `core::list::map` instantiates both of its type parameters from
// the call site, one from the list element, one from the mapper result.
func TestCheckStaticAccessCoreListMap(t *testing.T) {
	c, _ := newTestChecker(t)
	call := &pir.Call{
		Pos:  testPos(),
		Func: &pir.StaticAccess{Pos: testPos(), Segments: []string{"core", "list", "map"}},
		Args: []pir.Expr{
			&pir.ListLit{Pos: testPos(), Elems: []pir.Expr{intLit(1), intLit(2)}},
			&pir.Lambda{
				Pos:    testPos(),
				Params: []pir.Param{{Pos: testPos(), Name: "x", Type: nominal("Int")}},
				Body:   &pir.Literal{Pos: testPos(), Kind: pir.StringLit, Value: "x"},
			},
		},
	}

	result, err := c.checkExpr(NewRootScope(), call, nil)
	require.NoError(t, err)

	pt, ok := result.ExprType().(*cir.ParameterizedType)
	require.True(t, ok)
	assert.Equal(t, c.Core.List, pt.Base.Name)
	require.Len(t, pt.Args, 1)
	elem, ok := pt.Args[0].(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.String, elem.Name)
}

// S6: a `fun` that declares a `var` binding violates the phase side
// conditions of §4.3.4, regardless of what it does with the binding.
func TestCheckFunctionDeclRejectsVarBinding(t *testing.T) {
	c, module := newTestChecker(t, "f")
	decl := &pir.FunctionDecl{
		Pos:    testPos(),
		Name:   "f",
		Phase:  "fun",
		Result: nominal("Int"),
		Body: &pir.Block{
			Pos: testPos(),
			Stmts: []pir.Stmt{
				&pir.Assignment{Pos: testPos(), Name: "x", Phase: "var", Value: intLit(0)},
				&pir.ExprStmt{Pos: testPos(), Expr: &pir.Return{Pos: testPos(), Value: &pir.Identifier{Pos: testPos(), Name: "x"}}},
			},
		},
	}

	_, err := c.checkFunctionDecl(NewRootScope(), decl)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.PhaReactiveInFun, d.Code)
	_ = module
}

// A `def` must return a flow expression; declaring one that only ever
// returns a const value is itself a phase violation.
func TestCheckFunctionDeclDefMustReturnFlow(t *testing.T) {
	c, _ := newTestChecker(t, "g")
	decl := &pir.FunctionDecl{
		Pos:    testPos(),
		Name:   "g",
		Phase:  "def",
		Result: nominal("Int"),
		Body: &pir.Block{
			Pos:   testPos(),
			Stmts: []pir.Stmt{&pir.ExprStmt{Pos: testPos(), Expr: &pir.Return{Pos: testPos(), Value: intLit(0)}}},
		},
	}

	_, err := c.checkFunctionDecl(NewRootScope(), decl)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.PhaDeclaredPhaseMismatch, d.Code)
}

// Reassignment is only legal inside `sig`, targeting a binding declared
// `var` (invariant §3.4 #4).
func TestCheckReassignmentOutsideSigRejected(t *testing.T) {
	c, _ := newTestChecker(t, "h")
	decl := &pir.FunctionDecl{
		Pos:    testPos(),
		Name:   "h",
		Phase:  "fun",
		Result: nominal("Int"),
		Body: &pir.Block{
			Pos: testPos(),
			Stmts: []pir.Stmt{
				&pir.Assignment{Pos: testPos(), Name: "x", Phase: "var", Value: intLit(0)},
				&pir.Reassignment{Pos: testPos(), Target: &pir.Identifier{Pos: testPos(), Name: "x"}, Value: intLit(1)},
				&pir.ExprStmt{Pos: testPos(), Expr: &pir.Return{Pos: testPos(), Value: &pir.Identifier{Pos: testPos(), Name: "x"}}},
			},
		},
	}

	_, err := c.checkFunctionDecl(NewRootScope(), decl)
	require.Error(t, err)
	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, diag.PhaReassignOutsideSig, d.Code)
}

func TestCheckConstantDeclDeclaresIntoTable(t *testing.T) {
	c, module := newTestChecker(t, "answer")
	decl := &pir.ConstantDecl{Pos: testPos(), Name: "answer", Value: intLit(42)}

	checked, err := c.checkConstantDecl(NewRootScope(), decl)
	require.NoError(t, err)
	assert.Equal(t, module.Child("answer"), checked.Symbol)

	rec, ok := c.Table.Lookup(module.Child("answer"))
	require.True(t, ok)
	nt, ok := rec.Type.(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, nt.Name)
}

// Once a function is checked, its own name is reachable from later
// top-level code through the package table fallback (checkTableIdentifier),
// not just through the local binding chain.
func TestCheckFunctionDeclIsReachableByNameAfterChecking(t *testing.T) {
	c, module := newTestChecker(t, "one")
	decl := &pir.FunctionDecl{
		Pos:    testPos(),
		Name:   "one",
		Phase:  "fun",
		Result: nominal("Int"),
		Body:   &pir.Block{Pos: testPos(), Stmts: []pir.Stmt{&pir.ExprStmt{Pos: testPos(), Expr: &pir.Return{Pos: testPos(), Value: intLit(1)}}}},
	}
	_, err := c.checkFunctionDecl(NewRootScope(), decl)
	require.NoError(t, err)

	result, err := c.checkTableIdentifier(testPos(), "one")
	require.NoError(t, err)
	assert.Equal(t, module.Child("one"), result.(*cir.Identifier).Symbol)
	assert.Equal(t, phase.Const, result.ExprPhase())
}

// Constructing a generic struct unifies its type parameter against the
// field argument given, and the resulting Construct node carries the
// instantiated (not bare generic) struct type.
func TestCheckConstructInstantiatesGenericStructField(t *testing.T) {
	c, module := newTestChecker(t, "Box")
	dataDecl := &pir.DataDecl{
		Pos:        testPos(),
		Name:       "Box",
		Kind:       pir.DataStruct,
		TypeParams: []string{"T"},
		Fields:     []pir.Field{{Pos: testPos(), Name: "val", Type: nominal("T")}},
	}
	_, err := c.checkDataDecl(dataDecl)
	require.NoError(t, err)

	construct := &pir.Construct{
		Pos:    testPos(),
		Base:   &pir.Identifier{Pos: testPos(), Name: "Box"},
		Fields: []pir.ConstructField{{Name: "val", Value: intLit(5)}},
	}

	result, err := c.checkExpr(NewRootScope(), construct, nil)
	require.NoError(t, err)

	st, ok := result.ExprType().(*cir.StructType)
	require.True(t, ok)
	assert.Equal(t, module.Child("Box"), st.Name)
	fieldType, ok := st.Fields.Get("val")
	require.True(t, ok)
	nt, ok := fieldType.(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, nt.Name, "field type should be instantiated to Int, not left as the bare type parameter")
}

// A map literal's expected Map<K,V> type threads both the key and the
// value type argument through to its entries, so a literal whose
// elements need the expected type to check (e.g. an empty collection
// literal used as a value) resolves correctly instead of checking every
// entry against nil.
func TestCheckMapLitUsesExpectedKeyAndValueTypes(t *testing.T) {
	c, _ := newTestChecker(t)
	expected := &cir.ParameterizedType{
		Base: &cir.NominalType{Name: c.Core.Map},
		Args: []cir.TypeExpression{&cir.NominalType{Name: c.Core.Int}, &cir.NominalType{Name: c.Core.String}},
	}
	lit := &pir.MapLit{
		Pos: testPos(),
		Entries: []pir.MapEntry{
			{Key: intLit(1), Value: &pir.Literal{Pos: testPos(), Kind: pir.StringLit, Value: "one"}},
		},
	}

	result, err := c.checkExpr(NewRootScope(), lit, expected)
	require.NoError(t, err)

	pt, ok := result.ExprType().(*cir.ParameterizedType)
	require.True(t, ok)
	require.Len(t, pt.Args, 2)
	keyType, ok := pt.Args[0].(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.Int, keyType.Name)
	valType, ok := pt.Args[1].(*cir.NominalType)
	require.True(t, ok)
	assert.Equal(t, c.Core.String, valType.Name)
}
