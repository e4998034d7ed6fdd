package ast

import "github.com/slackhq/hakana-sub001/internal/interner"

// Variable is a `$foo` reference (data-flow "VariableSource").
type Variable struct {
	Name interner.ID
	PosInfo Position
}

func (n *Variable) Pos() Position { return n.PosInfo }
func (n *Variable) Accept(v Visitor) { v.VisitVariable(n) }
func (*Variable) expressionNode() {}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// Literal is a scalar literal ("Literal").
type Literal struct {
	Kind LiteralKind
	Int int64
	Float float64
	Str string
	Bool bool
	PosInfo Position
}

func (n *Literal) Pos() Position { return n.PosInfo }
func (n *Literal) Accept(v Visitor) { v.VisitLiteral(n) }
func (*Literal) expressionNode() {}

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcat
	OpEq
	OpNotEq
	OpIdentical
	OpNotIdentical
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpCoalesce // ??
	OpSpaceship
)

// BinaryOp is a binary expression (assertion derivation reads
// comparisons of this shape directly, e.g. `$x === null`).
type BinaryOp struct {
	Op BinaryOperator
	Left Expression
	Right Expression
	PosInfo Position
}

func (n *BinaryOp) Pos() Position { return n.PosInfo }
func (n *BinaryOp) Accept(v Visitor) { v.VisitBinaryOp(n) }
func (*BinaryOp) expressionNode() {}

type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpNeg
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

// UnaryOp covers negation and `!` (derives Truthy/Falsy
// assertions from `!$expr`).
type UnaryOp struct {
	Op UnaryOperator
	Operand Expression
	PosInfo Position
}

func (n *UnaryOp) Pos() Position { return n.PosInfo }
func (n *UnaryOp) Accept(v Visitor) { v.VisitUnaryOp(n) }
func (*UnaryOp) expressionNode() {}

// Assign is `$lhs = $rhs` (or a compound op when CompoundOp is set).
type Assign struct {
	Target Expression
	Value Expression
	CompoundOp BinaryOperator
	IsCompound bool
	ByRef bool
	PosInfo Position
}

func (n *Assign) Pos() Position { return n.PosInfo }
func (n *Assign) Accept(v Visitor) { v.VisitAssign(n) }
func (*Assign) expressionNode() {}

// ArrayFetch is `$arr[$key]` (— vec/dict/keyset
// element access, including `CoalesceOnAccess`/`null` behavior).
type ArrayFetch struct {
	Array Expression
	Key Expression // nil for `$arr[]` append targets
	Nullsafe bool
	PosInfo Position
}

func (n *ArrayFetch) Pos() Position { return n.PosInfo }
func (n *ArrayFetch) Accept(v Visitor) { v.VisitArrayFetch(n) }
func (*ArrayFetch) expressionNode() {}

// PropertyFetch is `$obj->prop` / `$obj?->prop` .
type PropertyFetch struct {
	Object Expression
	Property interner.ID
	Nullsafe bool
	PosInfo Position
}

func (n *PropertyFetch) Pos() Position { return n.PosInfo }
func (n *PropertyFetch) Accept(v Visitor) { v.VisitPropertyFetch(n) }
func (*PropertyFetch) expressionNode() {}

// StaticPropertyFetch is `ClassName::$prop`.
type StaticPropertyFetch struct {
	ClassName interner.ID
	Property interner.ID
	PosInfo Position
}

func (n *StaticPropertyFetch) Pos() Position { return n.PosInfo }
func (n *StaticPropertyFetch) Accept(v Visitor) { v.VisitStaticPropertyFetch(n) }
func (*StaticPropertyFetch) expressionNode() {}

// MethodCall is `$obj->method(args)` .
type MethodCall struct {
	Object Expression
	Method interner.ID
	Args []Expression
	Nullsafe bool
	PosInfo Position
}

func (n *MethodCall) Pos() Position { return n.PosInfo }
func (n *MethodCall) Accept(v Visitor) { v.VisitMethodCall(n) }
func (*MethodCall) expressionNode() {}

// StaticCall is `ClassName::method(args)`.
type StaticCall struct {
	ClassName interner.ID
	Method interner.ID
	Args []Expression
	PosInfo Position
}

func (n *StaticCall) Pos() Position { return n.PosInfo }
func (n *StaticCall) Accept(v Visitor) { v.VisitStaticCall(n) }
func (*StaticCall) expressionNode() {}

// FunctionCall is a call to a top-level or closure-valued function.
type FunctionCall struct {
	Callee Expression // closure-valued callee; unused when IsNamed (Name identifies the function)
	Name interner.ID
	IsNamed bool
	Args []Expression
	PosInfo Position
}

func (n *FunctionCall) Pos() Position { return n.PosInfo }
func (n *FunctionCall) Accept(v Visitor) { v.VisitFunctionCall(n) }
func (*FunctionCall) expressionNode() {}

// NewExpr is `new ClassName(args)` .
type NewExpr struct {
	ClassName interner.ID
	IsStatic bool // `new static(...)`
	Args []Expression
	PosInfo Position
}

func (n *NewExpr) Pos() Position { return n.PosInfo }
func (n *NewExpr) Accept(v Visitor) { v.VisitNewExpr(n) }
func (*NewExpr) expressionNode() {}

// ClosureExpr is an anonymous function or arrow function literal.
type ClosureExpr struct {
	Params []ParamDecl
	Return TypeHint
	Body []Statement
	IsArrow bool // `($x) ==> expr` single-expression form
	IsAsync bool
	UsesVars []interner.ID // `use (...)` captures
	PosInfo Position
}

func (n *ClosureExpr) Pos() Position { return n.PosInfo }
func (n *ClosureExpr) Accept(v Visitor) { v.VisitClosureExpr(n) }
func (*ClosureExpr) expressionNode() {}

type ArrayLiteralKind int

const (
	ArrayLiteralVec ArrayLiteralKind = iota
	ArrayLiteralDict
	ArrayLiteralKeyset
)

// ArrayLiteralEntry is one `key => value` (Key nil for vec/keyset
// positional entries).
type ArrayLiteralEntry struct {
	Key Expression
	Value Expression
}

// ArrayLiteral is `vec[...]`, `dict[...]`, `keyset[...]` literal syntax.
type ArrayLiteral struct {
	Kind ArrayLiteralKind
	Entries []ArrayLiteralEntry
	PosInfo Position
}

func (n *ArrayLiteral) Pos() Position { return n.PosInfo }
func (n *ArrayLiteral) Accept(v Visitor) { v.VisitArrayLiteral(n) }
func (*ArrayLiteral) expressionNode() {}

// Ternary is `$cond ? $a : $b`, with IsElvis set for `$cond ?: $b`.
type Ternary struct {
	Cond Expression
	Then Expression // nil when IsElvis
	Else Expression
	IsElvis bool
	PosInfo Position
}

func (n *Ternary) Pos() Position { return n.PosInfo }
func (n *Ternary) Accept(v Visitor) { v.VisitTernary(n) }
func (*Ternary) expressionNode() {}

// Cast is an explicit scalar cast, `(int)$x`.
type Cast struct {
	ToType TypeHint
	Operand Expression
	PosInfo Position
}

func (n *Cast) Pos() Position { return n.PosInfo }
func (n *Cast) Accept(v Visitor) { v.VisitCast(n) }
func (*Cast) expressionNode() {}

// AwaitExpr is `await $x` inside an async function .
type AwaitExpr struct {
	Operand Expression
	PosInfo Position
}

func (n *AwaitExpr) Pos() Position { return n.PosInfo }
func (n *AwaitExpr) Accept(v Visitor) { v.VisitAwaitExpr(n) }
func (*AwaitExpr) expressionNode() {}

// IssetExpr is `isset($a['b']->c[0])` — the reconciler  treats
// its operand as a compound key to tokenize.
type IssetExpr struct {
	Operands []Expression
	PosInfo Position
}

func (n *IssetExpr) Pos() Position { return n.PosInfo }
func (n *IssetExpr) Accept(v Visitor) { v.VisitIssetExpr(n) }
func (*IssetExpr) expressionNode() {}
