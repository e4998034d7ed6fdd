// Package codebase implements the reflection builder and populator: it
// turns per-file AST declarations into a resolved, queryable model of
// every classlike, function, type alias, and constant in the program.
package codebase

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// PropertyInfo is a resolved classlike property .
type PropertyInfo struct {
	Name interner.ID
	Type ttype.Union
	IsStatic bool
	Visibility ast.Visibility
	HasDefault bool
	Pos ast.Position
}

// ConstantInfo is a resolved class or top-level constant.
type ConstantInfo struct {
	Name interner.ID
	Type ttype.Union
	Pos ast.Position
}

// TypeParamInfo is a resolved declared template slot on a classlike,
// carrying the variance component H's comparator needs (
// "variance per template slot").
type TypeParamInfo struct {
	Name interner.ID
	Variance ttype.Variance
	AsType ttype.Union
}

// TypeConstantInfo is a resolved class type-constant.
type TypeConstantInfo struct {
	Name interner.ID
	AsType ttype.Union
	Value *ttype.Union // nil when abstract
}

// FunctionLikeInfo is component C/D's record for a function, method, or
// closure ("functionlikes"). ClassID is interner.Empty for
// top-level functions.
type FunctionLikeInfo struct {
	ClassID interner.ID
	MethodID interner.ID
	Params []ParamInfo
	Return ttype.Union
	Effects ttype.Effect
	TypeParams []ttype.GenericParam
	WhereBounds map[string]ttype.Union
	IsAsync bool
	IsAbstract bool
	IsStatic bool
	IsFinal bool
	HasYield bool
	TaintSources []string
	TaintSinks []string
	Body []ast.Statement
	Pos ast.Position

	// FromTraitID, when non-empty, records the trait this method was
	// flattened in from during population ("trait uses").
	FromTraitID interner.ID
}

// ParamInfo is a resolved function parameter.
type ParamInfo struct {
	Name interner.ID
	Type ttype.Union
	Optional bool
	Variadic bool
	ByRef bool
}

// ClassLikeInfo is component C/D's record for a class, interface, trait,
// or enum ("classlikes").
type ClassLikeInfo struct {
	Name interner.ID
	Kind ast.ClassLikeKind
	IsAbstract bool
	IsFinal bool
	Pos ast.Position

	// Direct, name-level (unresolved) relationships recorded by the
	// reflection pass; the populator resolves these into the ID-keyed
	// fields below.
	ParentName string
	ImplementsName []string
	TraitUseNames []string

	ParentID interner.ID
	HasParent bool
	InterfaceIDs []interner.ID
	TraitIDs []interner.ID

	TypeParams []TypeParamInfo
	Properties map[interner.ID]*PropertyInfo
	Methods map[interner.ID]*FunctionLikeInfo
	Constants map[interner.ID]*ConstantInfo
	TypeConsts map[interner.ID]*TypeConstantInfo

	EnumType *ttype.Union
	EnumCases []interner.ID

	// AllParentInterfaces/AllParentClasses are the transitive closure,
	// computed by the populator ("descendants").
	AllParentInterfaces map[interner.ID]bool
	AllParentClasses map[interner.ID]bool

	// InvalidDependencies marks a classlike whose parent chain could not
	// be resolved (unknown symbol) or which participates in an
	// inheritance cycle ("cyclic class hierarchies").
	InvalidDependencies bool
}

// TypeDefinitionInfo is a resolved top-level type alias.
type TypeDefinitionInfo struct {
	Name interner.ID
	TypeParams []ttype.GenericParam
	AsType ttype.Union
}

// FileInfo records what a single scanned file contributed, for
// incremental-diff and descendant invalidation bookkeeping .
type FileInfo struct {
	PathID uint32
	Path string
	ClassIDs []interner.ID
	FunctionIDs []interner.ID
	AliasIDs []interner.ID
	ParseError *ast.ParseError
}
