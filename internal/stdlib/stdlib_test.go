package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/symtab"
)

func TestLoadRegistersAtomsAsPublic(t *testing.T) {
	table := symtab.NewTable()
	_, ct, err := Load(table)
	require.NoError(t, err)

	rec, ok := table.Lookup(ct.Int)
	require.True(t, ok)
	assert.Equal(t, "Int", rec.Name)
	_, ok = rec.Type.(*cir.AtomType)
	assert.True(t, ok)
}

func TestLoadPreambleCoversEveryCoreType(t *testing.T) {
	table := symtab.NewTable()
	preamble, ct, err := Load(table)
	require.NoError(t, err)

	for name, want := range map[string]interface{ String() string }{
		"Unit":    ct.Unit,
		"Int":     ct.Int,
		"Float":   ct.Float,
		"String":  ct.String,
		"Boolean": ct.Boolean,
		"List":    ct.List,
		"Set":     ct.Set,
		"Map":     ct.Map,
		"Option":  ct.Option,
		"Async":   ct.Async,
	} {
		got, ok := preamble[name]
		require.True(t, ok, "missing preamble entry %q", name)
		assert.Equal(t, want.String(), got.String())
	}
}

func TestLoadGenericsCarryCorrectTypeParamArity(t *testing.T) {
	table := symtab.NewTable()
	_, ct, err := Load(table)
	require.NoError(t, err)

	listRec, ok := table.Lookup(ct.List)
	require.True(t, ok)
	listType := listRec.Type.(*cir.StructType)
	assert.Len(t, listType.TypeParams, 1)

	mapRec, ok := table.Lookup(ct.Map)
	require.True(t, ok)
	mapType := mapRec.Type.(*cir.StructType)
	assert.Len(t, mapType.TypeParams, 2)
}

func TestLoadOperatorsAreOverloadedOverIntAndFloat(t *testing.T) {
	table := symtab.NewTable()
	preamble, _, err := Load(table)
	require.NoError(t, err)

	for _, op := range []string{"+", "-", "*", "/"} {
		sym, ok := preamble[op]
		require.True(t, ok, "missing operator %q in preamble", op)
		rec, ok := table.Lookup(sym)
		require.True(t, ok)
		overload, ok := rec.Type.(*cir.OverloadFunctionType)
		require.True(t, ok)
		require.Len(t, overload.Branches, 2)
	}
}

func TestLoadCoreModuleRegistersListGetAndMap(t *testing.T) {
	table := symtab.NewTable()
	preamble, _, err := Load(table)
	require.NoError(t, err)

	core, ok := preamble["core"]
	require.True(t, ok)
	_, ok = table.Lookup(core)
	require.True(t, ok)

	list := core.Child("list")
	_, ok = table.Lookup(list)
	require.True(t, ok)

	getRec, ok := table.Lookup(list.Child("get"))
	require.True(t, ok)
	getType, ok := getRec.Type.(*cir.FunctionType)
	require.True(t, ok)
	require.Len(t, getType.TypeParams, 1)
	require.Len(t, getType.Params, 2)

	mapRec, ok := table.Lookup(list.Child("map"))
	require.True(t, ok)
	mapType, ok := mapRec.Type.(*cir.FunctionType)
	require.True(t, ok)
	require.Len(t, mapType.TypeParams, 2)
	require.Len(t, mapType.Params, 2)

	// The mapper-function parameter must carry an explicit phase: a
	// nil-vs-non-nil Phase mismatch against a checked lambda's param
	// (always non-nil, per checkLambda) would fail checkAssignable's
	// FunctionType case unconditionally.
	mapperType, ok := mapType.Params[1].Type.(*cir.FunctionType)
	require.True(t, ok)
	require.Len(t, mapperType.Params, 1)
	require.NotNil(t, mapperType.Params[0].Phase)
}
