package cir

import (
	"github.com/rxlang/rxc/internal/ident"
	"github.com/rxlang/rxc/internal/phase"
)

// FunctionDecl is a checked top-level or nested function declaration.
type FunctionDecl struct {
	Pos    ident.Pos
	Symbol ident.Symbol
	Access ident.AccessLevel
	Type   *FunctionType
	Params []LambdaParam
	Body   Expr
}

// ConstantDecl is a checked top-level const/val binding.
type ConstantDecl struct {
	Pos    ident.Pos
	Symbol ident.Symbol
	Access ident.AccessLevel
	Phase  phase.Expression
	Type   TypeExpression
	Value  Expr
}

// DataDecl is a checked data/enum declaration. Type holds the resolved
// StructType/TupleType/AtomType/EnumType.
type DataDecl struct {
	Pos    ident.Pos
	Symbol ident.Symbol
	Access ident.AccessLevel
	Type   TypeExpression
}

// File is the checked form of one input file: every declaration fully
// elaborated.
type File struct {
	Path      string
	Functions []*FunctionDecl
	Constants []*ConstantDecl
	Data      []*DataDecl
}
