// Package check implements the checker (§4.3): bidirectional type
// inference with generics, overload resolution, structural
// assignability, and the parallel phase discipline of §4.3.4.
package check

import (
	"github.com/rxlang/rxc/internal/cir"
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
)

// Binding is one name bound in a Scope.
type Binding struct {
	Symbol ident.Symbol
	Type   cir.TypeExpression
	Phase  phase.Expression
	IsVar  bool // true for a `var` binding (§3.4 invariant 4)
	Owner  *FunctionScope
}

// FunctionScope is the frame for one function/lambda body (§4.3.1).
type FunctionScope struct {
	Symbol     ident.Symbol
	Phase      phase.Function
	ResultType cir.TypeExpression // widened upward by each `return`, via Join
	Parent     *FunctionScope
	// Closure records every outer-function binding this function
	// captures, keyed by symbol, with the phase it is seen at from
	// inside this function (post-demotion, §4.3.1/§4.3.4).
	Closure map[ident.Symbol]phase.Expression
	// DeclaredReactive is true once this function body declares a
	// var/flow binding directly (§4.3.4 side conditions).
	DeclaredReactive bool
	// Reassigned is true once this function body contains a
	// Reassignment statement.
	Reassigned bool
	// ReturnPhase is the join of every `return`'s value phase seen so
	// far, used to enforce `def`'s "must return flow" condition.
	ReturnPhase phase.Expression
	sawReturn   bool
}

func newFunctionScope(sym ident.Symbol, fnPhase phase.Function, parent *FunctionScope) *FunctionScope {
	return &FunctionScope{Symbol: sym, Phase: fnPhase, Parent: parent, Closure: make(map[ident.Symbol]phase.Expression)}
}

// Scope is a linked stack of bindings plus a pointer to the enclosing
// FunctionScope (§4.3.1).
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
	Fn       *FunctionScope
}

// NewRootScope builds the outermost Scope for a file, with no enclosing
// function.
func NewRootScope() *Scope {
	return &Scope{bindings: make(map[string]*Binding)}
}

// Child creates a nested block-level Scope within the same function.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, bindings: make(map[string]*Binding), Fn: s.Fn}
}

// ChildFunction creates a nested Scope that starts a new FunctionScope
// (for a function/lambda body).
func (s *Scope) ChildFunction(sym ident.Symbol, fnPhase phase.Function) *Scope {
	return &Scope{parent: s, bindings: make(map[string]*Binding), Fn: newFunctionScope(sym, fnPhase, s.Fn)}
}

// Declare adds a new binding visible from this Scope onward.
func (s *Scope) Declare(name string, b *Binding) {
	b.Owner = s.Fn
	s.bindings[name] = b
}

// Lookup walks the scope chain for name. If the binding belongs to an
// enclosing function (not the current one), it is recorded in the
// current function's closure set, demoted per §4.3.1 if the current
// function is `fun`.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			s.recordCapture(b)
			return b, true
		}
	}
	return nil, false
}

func (s *Scope) recordCapture(b *Binding) {
	if s.Fn == nil || b.Owner == s.Fn {
		return
	}
	observed := phase.DemoteCapturedPhase(s.Fn.Phase, b.Phase)
	s.Fn.Closure[b.Symbol] = observed
}
