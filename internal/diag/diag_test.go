package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/ident"
)

func pos() ident.Pos {
	return ident.Pos{Path: "widget.rx", Line: 3, Column: 7}
}

func TestKindOfPrefixDispatch(t *testing.T) {
	assert.Equal(t, KindResolution, KindOf(ResUnknownName))
	assert.Equal(t, KindType, KindOf(TypMismatch))
	assert.Equal(t, KindPhase, KindOf(PhaReassignNonVar))
	assert.Equal(t, KindInternal, KindOf(InvShouldNeverHappen))
	assert.Equal(t, KindInternal, KindOf("???"))
	assert.Equal(t, KindInternal, KindOf(""))
}

func TestNewBuildsASchemaStampedDiagnostic(t *testing.T) {
	d := New(TypMismatch, "check", pos(), "expected %s, got %s", "Int", "String")
	assert.Equal(t, Schema, d.Schema)
	assert.Equal(t, TypMismatch, d.Code)
	assert.Equal(t, "check", d.Stage)
	assert.Equal(t, "expected Int, got String", d.Message)
	assert.Equal(t, KindType, d.Kind())
}

func TestDiagnosticErrorIncludesPositionCodeAndSortedData(t *testing.T) {
	d := New(ResUnknownField, "check", pos(), "no field %q", "count")
	d.WithData("zeta", 1).WithData("alpha", 2)

	msg := d.Error()
	assert.Contains(t, msg, pos().String())
	assert.Contains(t, msg, ResUnknownField)
	assert.Contains(t, msg, "no field \"count\"")

	alphaIdx := indexOf(msg, "alpha")
	zetaIdx := indexOf(msg, "zeta")
	require.GreaterOrEqual(t, alphaIdx, 0)
	require.GreaterOrEqual(t, zetaIdx, 0)
	assert.Less(t, alphaIdx, zetaIdx, "Data keys must render in sorted order")
}

func TestAsExtractsADiagnosticFromAnErrorChain(t *testing.T) {
	d := New(InvShouldNeverHappen, "lower", pos(), "unreachable")
	var err error = d
	got, ok := As(err)
	require.True(t, ok)
	assert.Same(t, d, got)

	_, ok = As(errors.New("plain error"))
	assert.False(t, ok)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
