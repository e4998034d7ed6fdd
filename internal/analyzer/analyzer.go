// Package analyzer implements the expression analyzer (component E,
//) and the statement analyzer / loop engine (component F,
//): a scope-context-threaded recursive walk over function
// bodies that maintains per-variable refined types, reconciles
// assertions across branches, and records a data-flow graph of value
// provenance.
package analyzer

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/reconcile"
	"github.com/slackhq/hakana-sub001/internal/scopectx"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// ExprKey is the (start_offset, end_offset) map key step 3
// describes for expr_types.
type ExprKey struct {
	Start int
	End int
}

// Analyzer walks one function body; a fresh Analyzer is created per
// analysis worker ("each worker owns its ScopeContext").
type Analyzer struct {
	ast.BaseVisitor

	Codebase *codebase.Codebase
	Issues *issue.Collector
	Graph *dataflow.Graph
	Refs *issue.SymbolReferences

	ExprTypes map[ExprKey]ttype.Union
	PureExprs map[ExprKey]bool

	// result communicates VisitX's computed union back to the caller
	// that invoked node.Accept(a), using a side-channel field on the
	// visitor rather than threading a return value through the
	// ast.Visitor interface.
	result ttype.Union
	resultOK bool

	scope *scopectx.ScopeContext

	// currentFunc is the functionlike AnalyzeFunction is currently
	// walking, used by VisitReturnStmt to check the returned value
	// against its declared return type .
	currentFunc *codebase.FunctionLikeInfo
}

func New(cb *codebase.Codebase, refs *issue.SymbolReferences) *Analyzer {
	return &Analyzer{
		Codebase: cb,
		Issues: &issue.Collector{},
		Graph: dataflow.New(dataflow.GraphFunctionBody),
		Refs: refs,
		ExprTypes: make(map[ExprKey]ttype.Union),
		PureExprs: make(map[ExprKey]bool),
	}
}

// eval is the component-E entry point: recurse into e, threading the
// scope context, and return the computed union (step 1-2).
func (a *Analyzer) eval(scope *scopectx.ScopeContext, e ast.Expression) ttype.Union {
	prevScope := a.scope
	a.scope = scope
	a.result = ttype.Union{}
	a.resultOK = false
	e.Accept(a)
	a.scope = prevScope
	if !a.resultOK {
		return ttype.Single(ttype.Mixed)
	}
	u := a.result
	a.storeExprType(e.Pos(), u)
	return u
}

func (a *Analyzer) set(u ttype.Union) {
	a.result = u
	a.resultOK = true
}

func (a *Analyzer) storeExprType(pos ast.Position, u ttype.Union) {
	key := ExprKey{Start: pos.StartLine*100000 + pos.StartCol, End: pos.EndLine*100000 + pos.EndCol}
	a.ExprTypes[key] = u
}

func (a *Analyzer) markPure(pos ast.Position, pure bool) {
	key := ExprKey{Start: pos.StartLine*100000 + pos.StartCol, End: pos.EndLine*100000 + pos.EndCol}
	a.PureExprs[key] = pure
}

func (a *Analyzer) emit(kind issue.Kind, pos ast.Position, format string, args ...interface{}) {
	a.Issues.Add(issue.New(kind, fmt.Sprintf(format, args...), pos).WithOwner(a.scope.FunctionContext.ClassID, a.scope.FunctionContext.MethodID))
}

// varID renders the simple `$name` form for a bare variable reference.
func varID(in *interner.Interner, name interner.ID) scopectx.VarID {
	return scopectx.VarID("$" + in.Lookup(name))
}

// AnalyzeFunction runs the statement analyzer over a function's body
//  and returns the populated scope context for callers that
// need the post-analysis state (e.g. the pipeline's end-to-end tests).
func AnalyzeFunction(a *Analyzer, f *codebase.FunctionLikeInfo) *scopectx.ScopeContext {
	a.currentFunc = f
	scope := scopectx.New(scopectx.FunctionContext{ClassID: f.ClassID, MethodID: f.MethodID})
	for _, p := range f.Params {
		id := varID(a.Codebase.Interner, p.Name)
		u := p.Type
		scope.Set(id, u)
		scope.ProtectedVarIDs[id] = true
	}
	a.AnalyzeStatements(scope, f.Body)
	return scope
}

func (a *Analyzer) reconcileHierarchy() reconcile.Hierarchy {
	return a.Codebase
}
