package tir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileMarshalBinaryRoundTripsThroughMsgpack builds a File with a
// func, a const and a data decl (let and expr statements, a return as a
// block result, ident/lit/get/set/if/construct expressions), and
// confirms MarshalBinary -> UnmarshalBinary reproduces an equal tree.
func TestFileMarshalBinaryRoundTripsThroughMsgpack(t *testing.T) {
	f := &File{
		Path:    "widget.rx",
		Prelude: []string{"rx/runtime"},
		Decls: []Decl{
			&FuncDecl{
				Name:   "f",
				Params: []string{"x"},
				Body: &Block{
					Stmts: []Stmt{
						&Let{Name: "y", Value: &Lit{Kind: IntLit, Value: int64(1)}},
						&ExprStmt{Expr: &Set{Target: &Get{Target: &Ident{Name: "y"}}, Value: &Ident{Name: "x"}}},
					},
					Result: &Return{Value: &If{
						Cond: &Ident{Name: "x"},
						Then: &Lit{Kind: IntLit, Value: int64(1)},
						Else: &Lit{Kind: IntLit, Value: int64(2)},
					}},
				},
			},
			&ConstDecl{Name: "c", Value: &Construct{Target: "Widget", Fields: []ConstructField{
				{Name: "count", Value: &Lit{Kind: IntLit, Value: int64(3)}},
			}}},
			&DataDecl{Name: "Shape", Fields: []string{"radius"}, Variants: []string{"Circle"}},
		},
	}

	data, err := f.MarshalBinary()
	require.NoError(t, err)

	got := &File{}
	require.NoError(t, got.UnmarshalBinary(data))

	assert.Equal(t, f.Path, got.Path)
	assert.Equal(t, f.Prelude, got.Prelude)
	require.Len(t, got.Decls, 3)

	fd, ok := got.Decls[0].(*FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "f", fd.Name)
	assert.Equal(t, []string{"x"}, fd.Params)
	require.Len(t, fd.Body.Stmts, 2)

	let, ok := fd.Body.Stmts[0].(*Let)
	require.True(t, ok)
	assert.Equal(t, "y", let.Name)
	lit, ok := let.Value.(*Lit)
	require.True(t, ok)
	assert.Equal(t, IntLit, lit.Kind)

	exprStmt, ok := fd.Body.Stmts[1].(*ExprStmt)
	require.True(t, ok)
	set, ok := exprStmt.Expr.(*Set)
	require.True(t, ok)
	get, ok := set.Target.(*Get)
	require.True(t, ok)
	ident, ok := get.Target.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "y", ident.Name)

	ret, ok := fd.Body.Result.(*Return)
	require.True(t, ok)
	ifExpr, ok := ret.Value.(*If)
	require.True(t, ok)
	require.NotNil(t, ifExpr.Else)

	cd, ok := got.Decls[1].(*ConstDecl)
	require.True(t, ok)
	construct, ok := cd.Value.(*Construct)
	require.True(t, ok)
	assert.Equal(t, "Widget", construct.Target)
	require.Len(t, construct.Fields, 1)
	assert.Equal(t, "count", construct.Fields[0].Name)

	dd, ok := got.Decls[2].(*DataDecl)
	require.True(t, ok)
	assert.Equal(t, []string{"radius"}, dd.Fields)
	assert.Equal(t, []string{"Circle"}, dd.Variants)
}

// A ReactiveWrap (flow/def) and its reactive-kind discriminator also
// round-trip, since lowering's own output (§4.4) is the codec's primary
// payload.
func TestReactiveWrapRoundTripsWithKindAndInputs(t *testing.T) {
	f := &File{
		Decls: []Decl{
			&ConstDecl{Name: "total", Value: &ReactiveWrap{
				Kind:   KindFlow,
				Inputs: []Expr{&Get{Target: &Ident{Name: "x"}}},
				Params: []string{"t1"},
				Body:   &Block{Result: &Ident{Name: "t1"}},
			}},
		},
	}

	data, err := f.MarshalBinary()
	require.NoError(t, err)

	got := &File{}
	require.NoError(t, got.UnmarshalBinary(data))

	cd := got.Decls[0].(*ConstDecl)
	wrap, ok := cd.Value.(*ReactiveWrap)
	require.True(t, ok)
	assert.Equal(t, KindFlow, wrap.Kind)
	assert.Equal(t, []string{"t1"}, wrap.Params)
	require.Len(t, wrap.Inputs, 1)
	get := wrap.Inputs[0].(*Get)
	assert.Equal(t, "x", get.Target.(*Ident).Name)
}

// Projection, list/set/map literals, and lambdas also round-trip.
func TestProjectionListsAndLambdaRoundTrip(t *testing.T) {
	f := &File{
		Decls: []Decl{
			&ConstDecl{Name: "p", Value: &Projection{Root: &Ident{Name: "root"}, Path: []string{"meta", "count"}}},
			&ConstDecl{Name: "xs", Value: &ListLit{Elems: []Expr{&Lit{Kind: IntLit, Value: int64(1)}}}},
			&ConstDecl{Name: "ys", Value: &SetLit{Elems: []Expr{}}},
			&ConstDecl{Name: "zs", Value: &MapLit{Entries: []MapEntry{
				{Key: &Lit{Kind: StringLit, Value: "a"}, Value: &Lit{Kind: IntLit, Value: int64(1)}},
			}}},
			&ConstDecl{Name: "fn", Value: &Lambda{Params: []string{"a"}, Body: &Block{Result: &Ident{Name: "a"}}}},
		},
	}

	data, err := f.MarshalBinary()
	require.NoError(t, err)

	got := &File{}
	require.NoError(t, got.UnmarshalBinary(data))
	require.Len(t, got.Decls, 5)

	proj := got.Decls[0].(*ConstDecl).Value.(*Projection)
	assert.Equal(t, []string{"meta", "count"}, proj.Path)

	xs := got.Decls[1].(*ConstDecl).Value.(*ListLit)
	require.Len(t, xs.Elems, 1)

	ys := got.Decls[2].(*ConstDecl).Value.(*SetLit)
	assert.Empty(t, ys.Elems)

	zs := got.Decls[3].(*ConstDecl).Value.(*MapLit)
	require.Len(t, zs.Entries, 1)

	fn := got.Decls[4].(*ConstDecl).Value.(*Lambda)
	assert.Equal(t, []string{"a"}, fn.Params)
}

func TestDeclFromWireRejectsUnknownKind(t *testing.T) {
	_, err := declFromWire(map[string]interface{}{"$kind": "mystery"})
	assert.Error(t, err)
}

func TestExprFromWireRejectsUnknownKind(t *testing.T) {
	_, err := exprFromWire(map[string]interface{}{"$kind": "mystery"})
	assert.Error(t, err)
}
