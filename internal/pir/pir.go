// Package pir defines the Parsed IR (P-IR): the shape the external parser
// hands the core (§3.4, §6). Every node carries a position; nothing here
// is resolved or typed yet; name resolution happens in internal/collect,
// typing and phase-checking in internal/check.
//
// pir is deliberately a thin, JSON-friendly tree: a real parser builds it
// directly, and cmd/rxc's `compile`/`repl` commands decode fixtures of it
// from JSON, since the lexer and parser themselves are out of scope here.
package pir

import "github.com/rxlang/rxc/internal/ident"

// Node is the common interface implemented by every P-IR node.
type Node interface {
	Position() ident.Pos
}

// File is a single parsed source file.
type File struct {
	Path         string
	Pos          ident.Pos
	Imports      []*ImportDecl
	Declarations []Declaration
}

func (f *File) Position() ident.Pos { return f.Pos }

// ImportDecl is a (possibly nested) import expression, e.g.
// `pkg/{a, b::{c, d}}`, prior to expansion by the DependencyManager.
type ImportDecl struct {
	Pos   ident.Pos
	Path  string       // the package path, e.g. "pkg"
	Names []ImportName // selected names; empty means "whole module"
}

func (i *ImportDecl) Position() ident.Pos { return i.Pos }

// ImportName is one leaf or nested group of an import expression.
type ImportName struct {
	Name   string
	Nested []ImportName // present for `b::{c, d}` style nesting
}

// Declaration is a top-level (or, for FunctionDecl nested inside a body,
// block-level) declaration.
type Declaration interface {
	Node
	declarationNode()
}

// Access is the optional access-level annotation on a declaration; an
// empty string defers to ident.Internal (§3.2).
type Access string

// FunctionDecl declares a function or lambda-bound name at the top level.
type FunctionDecl struct {
	Pos      ident.Pos
	Access   Access
	Name     string
	Phase    string // "fun" | "def" | "sig", empty means inferred
	TypeParams []string
	Params   []Param
	Result   TypeExpr // nil means inferred from body
	Body     Expr
}

func (d *FunctionDecl) Position() ident.Pos { return d.Pos }
func (d *FunctionDecl) declarationNode()    {}

// Param is one function parameter.
type Param struct {
	Pos   ident.Pos
	Name  string
	Phase string // expected expression phase, "" means unspecified
	Type  TypeExpr
}

// ConstantDecl declares a top-level const/val binding.
type ConstantDecl struct {
	Pos    ident.Pos
	Access Access
	Name   string
	Phase  string // "const" | "val", "" means inferred
	Type   TypeExpr
	Value  Expr
}

func (d *ConstantDecl) Position() ident.Pos { return d.Pos }
func (d *ConstantDecl) declarationNode()    {}

// DataKind distinguishes the shape of a data declaration.
type DataKind int

const (
	DataStruct DataKind = iota
	DataTuple
	DataAtom
	DataEnum
)

// DataDecl declares a product (struct/tuple), atom, or sum (enum) type.
type DataDecl struct {
	Pos        ident.Pos
	Access     Access
	Name       string
	Kind       DataKind
	TypeParams []string
	Fields     []Field     // struct fields, or tuple field types (Name=="")
	Variants   []*DataDecl // enum only; each variant is itself a DataDecl
}

func (d *DataDecl) Position() ident.Pos { return d.Pos }
func (d *DataDecl) declarationNode()    {}

// Field is a single struct field or tuple element.
type Field struct {
	Pos  ident.Pos
	Name string // "" for tuple elements
	Type TypeExpr
}

// TypeExpr is an unresolved, parser-level type expression.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NominalTypeExpr names a type, optionally with arguments.
type NominalTypeExpr struct {
	Pos  ident.Pos
	Name string
	Args []TypeExpr
}

func (t *NominalTypeExpr) Position() ident.Pos { return t.Pos }
func (t *NominalTypeExpr) typeExprNode()       {}

// FunctionTypeExpr is a parsed function-type signature.
type FunctionTypeExpr struct {
	Pos        ident.Pos
	Phase      string
	TypeParams []string
	Params     []FunctionTypeParam
	Result     TypeExpr
}

func (t *FunctionTypeExpr) Position() ident.Pos { return t.Pos }
func (t *FunctionTypeExpr) typeExprNode()       {}

// FunctionTypeParam is one parameter slot inside a parsed function type.
type FunctionTypeParam struct {
	Phase string // "" means unspecified
	Type  TypeExpr
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// LitKind distinguishes the kind of a literal.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	BoolLit
	StringLit
	UnitLit
)

// Literal is a literal constant.
type Literal struct {
	Pos   ident.Pos
	Kind  LitKind
	Value interface{}
}

func (e *Literal) Position() ident.Pos { return e.Pos }
func (e *Literal) exprNode()           {}

// Identifier is a bare name reference.
type Identifier struct {
	Pos  ident.Pos
	Name string
}

func (e *Identifier) Position() ident.Pos { return e.Pos }
func (e *Identifier) exprNode()           {}

// FieldAccess is `base.field`.
type FieldAccess struct {
	Pos   ident.Pos
	Base  Expr
	Field string
}

func (e *FieldAccess) Position() ident.Pos { return e.Pos }
func (e *FieldAccess) exprNode()           {}

// StaticAccess is a dotted path of identifiers (`pkg::Type::Variant`,
// rendered here as segments rather than the source's `::` spelling).
type StaticAccess struct {
	Pos      ident.Pos
	Segments []string
}

func (e *StaticAccess) Position() ident.Pos { return e.Pos }
func (e *StaticAccess) exprNode()           {}

// Construct builds a struct/variant value by field name.
type Construct struct {
	Pos    ident.Pos
	Base   Expr // resolves to a StructType or enum struct variant
	Fields []ConstructField
}

func (e *Construct) Position() ident.Pos { return e.Pos }
func (e *Construct) exprNode()           {}

// ConstructField is one `name: value` pair in a Construct.
type ConstructField struct {
	Name  string
	Value Expr
}

// Call applies Func to Args.
type Call struct {
	Pos  ident.Pos
	Func Expr
	Args []Expr
}

func (e *Call) Position() ident.Pos { return e.Pos }
func (e *Call) exprNode()           {}

// BoolOpKind distinguishes the boolean-connective operators.
type BoolOpKind int

const (
	OpIs BoolOpKind = iota
	OpNot
	OpAnd
	OpOr
)

// BoolOp is one of is/not/and/or (§4.3.2).
type BoolOp struct {
	Pos   ident.Pos
	Kind  BoolOpKind
	Left  Expr
	Right Expr // nil for Not
}

func (e *BoolOp) Position() ident.Pos { return e.Pos }
func (e *BoolOp) exprNode()           {}

// If is a conditional expression; Else may be nil.
type If struct {
	Pos  ident.Pos
	Cond Expr
	Then Expr
	Else Expr
}

func (e *If) Position() ident.Pos { return e.Pos }
func (e *If) exprNode()           {}

// Lambda is an anonymous function literal. Phase names the function
// phase ("fun" | "def" | "sig") when the lambda is written with an
// explicit block-phase marker, e.g. a `sig { ... }` event handler passed
// as a call argument; empty means "infer from the expected function
// type, defaulting to fun".
type Lambda struct {
	Pos    ident.Pos
	Phase  string
	Params []Param
	Result TypeExpr // nil if not annotated
	Body   Expr
}

func (e *Lambda) Position() ident.Pos { return e.Pos }
func (e *Lambda) exprNode()           {}

// Block is a sequence of statements; the last statement's value (if an
// expression statement) is the block's value.
type Block struct {
	Pos   ident.Pos
	Stmts []Stmt
}

func (e *Block) Position() ident.Pos { return e.Pos }
func (e *Block) exprNode()           {}

// Return returns a value from the enclosing function.
type Return struct {
	Pos   ident.Pos
	Value Expr
}

func (e *Return) Position() ident.Pos { return e.Pos }
func (e *Return) exprNode()           {}

// ListLit, SetLit, MapLit are literal collection constructors.
type ListLit struct {
	Pos   ident.Pos
	Elems []Expr
}

func (e *ListLit) Position() ident.Pos { return e.Pos }
func (e *ListLit) exprNode()           {}

type SetLit struct {
	Pos   ident.Pos
	Elems []Expr
}

func (e *SetLit) Position() ident.Pos { return e.Pos }
func (e *SetLit) exprNode()           {}

type MapEntry struct {
	Key   Expr
	Value Expr
}

type MapLit struct {
	Pos     ident.Pos
	Entries []MapEntry
}

func (e *MapLit) Position() ident.Pos { return e.Pos }
func (e *MapLit) exprNode()           {}

// Stmt is a statement inside a Block.
type Stmt interface {
	Node
	stmtNode()
}

// Assignment introduces a new binding with a declared phase.
type Assignment struct {
	Pos   ident.Pos
	Name  string
	Phase string // "const" | "val" | "var" | "flow"
	Type  TypeExpr // nil means inferred
	Value Expr
}

func (s *Assignment) Position() ident.Pos { return s.Pos }
func (s *Assignment) stmtNode()           {}

// Reassignment updates an existing `var` binding, possibly through a
// field-projection path.
type Reassignment struct {
	Pos    ident.Pos
	Target Expr // Identifier or FieldAccess chain rooted at a var
	Value  Expr
}

func (s *Reassignment) Position() ident.Pos { return s.Pos }
func (s *Reassignment) stmtNode()           {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Pos  ident.Pos
	Expr Expr
}

func (s *ExprStmt) Position() ident.Pos { return s.Pos }
func (s *ExprStmt) stmtNode()           {}

// FunctionStmt is a nested function declaration inside a block.
type FunctionStmt struct {
	Pos  ident.Pos
	Decl *FunctionDecl
}

func (s *FunctionStmt) Position() ident.Pos { return s.Pos }
func (s *FunctionStmt) stmtNode()           {}
