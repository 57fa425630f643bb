package cir

import (
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
)

// Expr is the common interface for every checked expression node. Every
// Expr carries a Type and a Phase (§3.4 invariant 1–2): Phase is always
// one of const/val/flow, never var, since var only ever names a
// binding, never an expression's own reactivity.
type Expr interface {
	Position() ident.Pos
	ExprType() TypeExpression
	ExprPhase() phase.Expression
	exprNode()
}

// Base is embedded by every checked expression node.
type Base struct {
	Pos   ident.Pos
	Type  TypeExpression
	Phase phase.Expression
}

func (b Base) Position() ident.Pos            { return b.Pos }
func (b Base) ExprType() TypeExpression       { return b.Type }
func (b Base) ExprPhase() phase.Expression    { return b.Phase }

// LitKind mirrors pir.LitKind for the checked literal node.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	BoolLit
	StringLit
	UnitLit
)

// Literal is a checked literal; always phase const (§4.3.2).
type Literal struct {
	Base
	Kind  LitKind
	Value interface{}
}

func (e *Literal) exprNode() {}

// Identifier is a checked name reference, inheriting its binding's type
// and phase.
type Identifier struct {
	Base
	Symbol ident.Symbol
}

func (e *Identifier) exprNode() {}

// FieldAccess is a checked `base.field`; its phase equals the base's
// phase (§4.3.2).
type FieldAccess struct {
	Base
	Target Expr
	Field  string
}

func (e *FieldAccess) exprNode() {}

// StaticAccess is a checked dotted path; always phase const.
type StaticAccess struct {
	Base
	Symbol ident.Symbol
}

func (e *StaticAccess) exprNode() {}

// ConstructField is one checked `name: value` argument.
type ConstructField struct {
	Name  string
	Value Expr
}

// Construct is a checked struct/variant construction expression.
type Construct struct {
	Base
	Target ident.Symbol // the struct or enum-struct-variant being built
	Fields []ConstructField
}

func (e *Construct) exprNode() {}

// Call is a checked function/constructor/overload application.
type Call struct {
	Base
	Func         Expr
	Args         []Expr
	ResolvedFunc *FunctionType // the specific branch selected, for overloads
}

func (e *Call) exprNode() {}

// BoolOpKind mirrors pir.BoolOpKind.
type BoolOpKind int

const (
	OpIs BoolOpKind = iota
	OpNot
	OpAnd
	OpOr
)

// BoolOp is a checked boolean connective.
type BoolOp struct {
	Base
	Kind  BoolOpKind
	Left  Expr
	Right Expr // nil for Not
}

func (e *BoolOp) exprNode() {}

// If is a checked conditional; Else is nil when the source omitted it,
// in which case Type wraps the Then branch's type in Option<T> (§8.10).
type If struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (e *If) exprNode() {}

// Lambda is a checked function literal; Base.Type is always a
// *FunctionType.
type Lambda struct {
	Base
	Params []LambdaParam
	Body   Expr
	// ClosureSet is the set of outer-function symbols this lambda
	// captures, for phase validation (§4.3.1, §4.3.4).
	ClosureSet []ident.Symbol
}

// LambdaParam is one checked lambda parameter.
type LambdaParam struct {
	Name  string
	Type  TypeExpression
	Phase phase.Expression
}

func (e *Lambda) exprNode() {}

// Block is a checked statement sequence; Base.Type/Phase mirror the last
// statement.
type Block struct {
	Base
	Stmts []Stmt
}

func (e *Block) exprNode() {}

// Return is a checked return statement-as-expression; Base.Type is
// always Nothing (§4.3.2).
type Return struct {
	Base
	Value Expr
}

func (e *Return) exprNode() {}

// ListLit, SetLit, MapLit are checked literal collection constructors.
type ListLit struct {
	Base
	Elems []Expr
}

func (e *ListLit) exprNode() {}

type SetLit struct {
	Base
	Elems []Expr
}

func (e *SetLit) exprNode() {}

type MapEntry struct {
	Key   Expr
	Value Expr
}

type MapLit struct {
	Base
	Entries []MapEntry
}

func (e *MapLit) exprNode() {}

// Stmt is a checked statement inside a Block.
type Stmt interface {
	Position() ident.Pos
	stmtNode()
}

// Assignment introduces a new binding (§4.3.5).
type Assignment struct {
	Pos    ident.Pos
	Symbol ident.Symbol
	Phase  phase.Expression
	Type   TypeExpression
	Value  Expr
}

func (s *Assignment) Position() ident.Pos { return s.Pos }
func (s *Assignment) stmtNode()           {}

// Reassignment updates an existing `var`, possibly through a
// field-projection path (§4.3.5, §GLOSSARY "Projection").
type Reassignment struct {
	Pos    ident.Pos
	Target Expr // Identifier or FieldAccess chain rooted at a var
	Value  Expr
}

func (s *Reassignment) Position() ident.Pos { return s.Pos }
func (s *Reassignment) stmtNode()           {}

// ExprStmt wraps a bare checked expression used as a statement.
type ExprStmt struct {
	Pos  ident.Pos
	Expr Expr
}

func (s *ExprStmt) Position() ident.Pos { return s.Pos }
func (s *ExprStmt) stmtNode()           {}

// FunctionStmt is a checked nested function declaration.
type FunctionStmt struct {
	Pos  ident.Pos
	Decl *FunctionDecl
}

func (s *FunctionStmt) Position() ident.Pos { return s.Pos }
func (s *FunctionStmt) stmtNode()           {}
