package ast

import "github.com/slackhq/hakana-sub001/internal/interner"

// ClassLikeKind distinguishes class/interface/trait/enum declarations
// ("Classlike kind").
type ClassLikeKind int

const (
	KindClass ClassLikeKind = iota
	KindInterface
	KindTrait
	KindEnum
)

// TypeParamDecl is a declared template slot on a classlike or functionlike
// ("template params, variance per template slot").
type TypeParamDecl struct {
	Name interner.ID
	Variance int // ttype.Variance, duplicated here to avoid an ast->ttype import
	AsType TypeHint
	Pos Position
}

// TypeHint is the syntactic type annotation as written in source; the
// reflection builder (component C) turns these into ttype.Union values.
type TypeHint struct {
	Text string // raw annotation text, e.g. "?Vector<int>"
	Nullable bool
	Pos Position
}

// PropertyDecl is a classlike property or XHP attribute.
type PropertyDecl struct {
	Name interner.ID
	Type TypeHint
	HasDefault bool
	IsRequired bool // XHP `@required`
	IsStatic bool
	Visibility Visibility
	Pos Position
}

type Visibility int

const (
	VisPublic Visibility = iota
	VisProtected
	VisPrivate
)

// ParamDecl is a function/method/closure parameter.
type ParamDecl struct {
	Name interner.ID
	Type TypeHint
	Optional bool
	Variadic bool
	ByRef bool
	DefaultVal Expression
	Pos Position
}

// ConstDecl is a class constant or top-level constant.
type ConstDecl struct {
	Name interner.ID
	Type TypeHint
	Value Expression
	Pos Position
}

// TypeConstDecl is a class type-constant (`const type TFoo as Bar = ...`).
type TypeConstDecl struct {
	Name interner.ID
	AsType TypeHint
	Value *TypeHint // nil when abstract/unset
	Pos Position
}

// FunctionDecl covers both top-level functions and methods; methods are
// nested inside a ClassDecl's Methods slice (
// "functionlikes: (class_id, method_id)").
type FunctionDecl struct {
	Name interner.ID
	Params []ParamDecl
	Return TypeHint
	TypeParams []TypeParamDecl
	WhereBounds map[string]TypeHint
	IsAsync bool
	HasYield bool
	IsAbstract bool
	IsStatic bool
	IsFinal bool
	Visibility Visibility
	Body []Statement // nil for abstract/interface methods
	TaintSources []string // named sources this function introduces, if any
	TaintSinks []string // named sinks this function's params feed, if any
	PosInfo Position
}

func (f *FunctionDecl) Pos() Position { return f.PosInfo }
func (f *FunctionDecl) Accept(v Visitor) { v.VisitFunctionDecl(f) }
func (f *FunctionDecl) declarationNode() {}

// ClassDecl is a class/interface/trait/enum declaration.
type ClassDecl struct {
	Name interner.ID
	Kind ClassLikeKind
	IsAbstract bool
	IsFinal bool
	Parent *TypeHint // extends; traits/interfaces may have none
	Implements []TypeHint
	TraitUses []TypeHint
	TypeParams []TypeParamDecl
	Properties []PropertyDecl
	Methods []*FunctionDecl
	Constants []ConstDecl
	TypeConstants []TypeConstDecl
	EnumType *TypeHint // enum's underlying scalar type, e.g. `enum Foo: int`
	EnumCases []interner.ID
	PosInfo Position
}

func (c *ClassDecl) Pos() Position { return c.PosInfo }
func (c *ClassDecl) Accept(v Visitor) { v.VisitClassDecl(c) }
func (c *ClassDecl) declarationNode() {}

// TypeAliasDecl is a top-level `type Foo<T> = ...` declaration.
type TypeAliasDecl struct {
	Name interner.ID
	TypeParams []TypeParamDecl
	AsType TypeHint
	PosInfo Position
}

func (t *TypeAliasDecl) Pos() Position { return t.PosInfo }
func (t *TypeAliasDecl) Accept(v Visitor) { v.VisitTypeAliasDecl(t) }
func (t *TypeAliasDecl) declarationNode() {}

// GlobalConstDecl is a top-level constant.
type GlobalConstDecl struct {
	ConstDecl
}

func (g *GlobalConstDecl) Pos() Position { return g.ConstDecl.Pos }
func (g *GlobalConstDecl) Accept(v Visitor) { v.VisitGlobalConstDecl(g) }
func (g *GlobalConstDecl) declarationNode() {}
