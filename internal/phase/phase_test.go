package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpressionRoundTrip(t *testing.T) {
	for _, p := range []Expression{Const, Val, Var, Flow} {
		parsed, err := ParseExpression(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestParseExpressionUnknown(t *testing.T) {
	_, err := ParseExpression("reactive")
	assert.Error(t, err)
}

func TestParseFunctionRoundTrip(t *testing.T) {
	for _, p := range []Function{Fun, Def, Sig} {
		parsed, err := ParseFunction(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}

func TestJoinIsLeastUpperBound(t *testing.T) {
	cases := []struct {
		a, b, want Expression
	}{
		{Const, Const, Const},
		{Const, Val, Val},
		{Val, Var, Var},
		{Var, Flow, Flow},
		{Flow, Const, Flow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Join(c.a, c.b))
		assert.Equal(t, c.want, Join(c.b, c.a), "Join must be commutative")
	}
}

func TestAdjustResultUnspecifiedExpected(t *testing.T) {
	cases := []struct {
		actual Expression
		want   Expression
		ok     bool
	}{
		{Const, Const, true},
		{Val, Val, true},
		{Var, Flow, true},
		{Flow, Flow, true},
	}
	for _, c := range cases {
		got, ok := AdjustResult(nil, c.actual)
		require.Equal(t, c.ok, ok)
		assert.Equal(t, c.want, got)
	}
}

func TestAdjustResultTable(t *testing.T) {
	expr := func(p Expression) *Expression { return &p }
	cases := []struct {
		name     string
		expected *Expression
		actual   Expression
		want     Expression
		ok       bool
	}{
		{"const param accepts const", expr(Const), Const, Const, true},
		{"const param rejects val", expr(Const), Val, 0, false},
		{"const param rejects var", expr(Const), Var, 0, false},
		{"const param rejects flow", expr(Const), Flow, 0, false},

		{"val param accepts const", expr(Val), Const, Val, true},
		{"val param accepts val", expr(Val), Val, Val, true},
		{"val param rejects var", expr(Val), Var, 0, false},
		{"val param rejects flow", expr(Val), Flow, 0, false},

		{"var param requires var", expr(Var), Var, Flow, true},
		{"var param rejects const", expr(Var), Const, 0, false},
		{"var param rejects val", expr(Var), Val, 0, false},
		{"var param rejects flow", expr(Var), Flow, 0, false},

		{"flow param accepts const", expr(Flow), Const, Const, true},
		{"flow param accepts val", expr(Flow), Val, Val, true},
		{"flow param accepts var", expr(Flow), Var, Flow, true},
		{"flow param accepts flow", expr(Flow), Flow, Flow, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := AdjustResult(c.expected, c.actual)
			require.Equal(t, c.ok, ok)
			if ok {
				assert.Equal(t, c.want, got)
			}
		})
	}
}

func TestResultForCalleeImposesFunctionPhase(t *testing.T) {
	assert.Equal(t, Flow, ResultForCallee(Def, Const))
	assert.Equal(t, Flow, ResultForCallee(Def, Flow))
	assert.Equal(t, Val, ResultForCallee(Sig, Const))
	assert.Equal(t, Val, ResultForCallee(Sig, Flow))
	assert.Equal(t, Const, ResultForCallee(Fun, Const))
	assert.Equal(t, Flow, ResultForCallee(Fun, Flow))
}

func TestDemoteCapturedPhase(t *testing.T) {
	assert.Equal(t, Val, DemoteCapturedPhase(Fun, Var))
	assert.Equal(t, Val, DemoteCapturedPhase(Fun, Flow))
	assert.Equal(t, Const, DemoteCapturedPhase(Fun, Const))
	assert.Equal(t, Val, DemoteCapturedPhase(Fun, Val))
	assert.Equal(t, Var, DemoteCapturedPhase(Def, Var), "only fun demotes captures")
	assert.Equal(t, Flow, DemoteCapturedPhase(Sig, Flow), "only fun demotes captures")
}
