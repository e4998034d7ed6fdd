package analyzer

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/reconcile"
	"github.com/slackhq/hakana-sub001/internal/scopectx"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// AnalyzeStatements runs the statement analyzer (component F) over a
// straight-line block, threading a.scope through each statement's Accept
// call and stopping early once a path has definitely returned.
func (a *Analyzer) AnalyzeStatements(scope *scopectx.ScopeContext, stmts []ast.Statement) {
	a.scope = scope
	for _, s := range stmts {
		if a.scope.HasReturned {
			break
		}
		s.Accept(a)
	}
}

func (a *Analyzer) VisitExprStmt(n *ast.ExprStmt) {
	a.eval(a.scope, n.Expr)
}

func (a *Analyzer) VisitBlockStmt(n *ast.BlockStmt) {
	a.AnalyzeStatements(a.scope, n.Body)
}

// VisitIfStmt implements : each branch analyzes against its own
// clone of the pre-branch scope, narrowed by the condition's (or its
// negation's) derived assertions, then every branch's ending state merges
// back pointwise.
func (a *Analyzer) VisitIfStmt(n *ast.IfStmt) {
	pre := a.scope
	a.eval(pre, n.Cond)
	assertions := a.deriveAssertions(n.Cond)

	thenScope := pre.Clone()
	a.applyAssertions(thenScope, assertions, n.Cond.Pos())
	a.AnalyzeStatements(thenScope, n.Then)
	branches := []*scopectx.ScopeContext{thenScope}

	chainScope := pre.Clone()
	a.applyAssertions(chainScope, reconcile.Negate(assertions), n.Cond.Pos())

	for _, ei := range n.ElseIfs {
		a.eval(chainScope, ei.Cond)
		eiAssertions := a.deriveAssertions(ei.Cond)

		eiThen := chainScope.Clone()
		a.applyAssertions(eiThen, eiAssertions, ei.Cond.Pos())
		a.AnalyzeStatements(eiThen, ei.Body)
		branches = append(branches, eiThen)

		chainScope = chainScope.Clone()
		a.applyAssertions(chainScope, reconcile.Negate(eiAssertions), ei.Cond.Pos())
	}

	if len(n.Else) > 0 {
		a.AnalyzeStatements(chainScope, n.Else)
	}
	branches = append(branches, chainScope)

	merged := branches[0]
	for _, b := range branches[1:] {
		merged = merged.MergeBranch(pre, b)
	}
	a.scope = merged
}

func (a *Analyzer) VisitWhileStmt(n *ast.WhileStmt) {
	pre := a.scope
	a.runLoop(pre, func(scope *scopectx.ScopeContext) {
		a.eval(scope, n.Cond)
		assertions := a.deriveAssertions(n.Cond)
		a.applyAssertions(scope, assertions, n.Cond.Pos())
		a.AnalyzeStatements(scope, n.Body)
	})
}

func (a *Analyzer) VisitForStmt(n *ast.ForStmt) {
	pre := a.scope
	for _, e := range n.Init {
		a.eval(pre, e)
	}
	a.runLoop(pre, func(scope *scopectx.ScopeContext) {
		if n.Cond != nil {
			a.eval(scope, n.Cond)
		}
		a.AnalyzeStatements(scope, n.Body)
		for _, e := range n.Step {
			a.eval(scope, e)
		}
	})
}

// VisitForeachStmt binds the key/value variables from the iterable's
// element type (Vec/Dict/Keyset element derivation reused
// here) before running the loop fixpoint over the body.
func (a *Analyzer) VisitForeachStmt(n *ast.ForeachStmt) {
	pre := a.scope
	iterUnion := a.eval(pre, n.Iterable)

	var keyAtoms, valAtoms []ttype.Atomic
	for _, at := range iterUnion.Types {
		switch v := at.(type) {
		case ttype.Vec:
			keyAtoms = append(keyAtoms, ttype.Int)
			valAtoms = append(valAtoms, v.Elem.Types...)
		case ttype.Dict:
			if v.Params != nil {
				keyAtoms = append(keyAtoms, v.Params.Key.Types...)
				valAtoms = append(valAtoms, v.Params.Value.Types...)
			} else {
				keyAtoms = append(keyAtoms, ttype.Arraykey)
				valAtoms = append(valAtoms, ttype.Mixed)
			}
		case ttype.Keyset:
			keyAtoms = append(keyAtoms, v.Elem.Types...)
			valAtoms = append(valAtoms, v.Elem.Types...)
		default:
			keyAtoms = append(keyAtoms, ttype.Mixed)
			valAtoms = append(valAtoms, ttype.Mixed)
		}
	}
	keyUnion := ttype.Single(ttype.Mixed)
	if len(keyAtoms) > 0 {
		keyUnion = ttype.Combine(keyAtoms)
	}
	valUnion := ttype.Single(ttype.Mixed)
	if len(valAtoms) > 0 {
		valUnion = ttype.Combine(valAtoms)
	}

	a.runLoop(pre, func(scope *scopectx.ScopeContext) {
		if n.HasKey {
			scope.Set(varID(a.Codebase.Interner, n.KeyVar), keyUnion)
		}
		scope.Set(varID(a.Codebase.Interner, n.ValueVar), valUnion)
		a.AnalyzeStatements(scope, n.Body)
	})
}

func (a *Analyzer) VisitReturnStmt(n *ast.ReturnStmt) {
	var u ttype.Union
	if n.Value != nil {
		u = a.eval(a.scope, n.Value)
	} else {
		u = ttype.Single(ttype.Void)
	}
	a.checkReturn(u, n.PosInfo)
	a.scope.HasReturned = true
}

// checkReturn checks containment of the returned value in the declared
// return type (for an async function, after stripping Awaitable from both
// the value and the declared type), emitting NullableReturnStatement when the declared type rejects
// null but the value may be null, and InvalidReturnStatement on outright
// mismatch.
func (a *Analyzer) checkReturn(u ttype.Union, pos ast.Position) {
	f := a.currentFunc
	if f == nil || f.Return.Types == nil {
		return
	}
	declared := f.Return
	if f.IsAsync {
		var inner []ttype.Atomic
		for _, at := range u.Types {
			if aw, ok := at.(ttype.Awaitable); ok {
				inner = append(inner, aw.Inner.Types...)
			} else {
				inner = append(inner, at)
			}
		}
		if len(inner) > 0 {
			u = ttype.Combine(inner)
		}
		for _, at := range declared.Types {
			if aw, ok := at.(ttype.Awaitable); ok {
				declared = aw.Inner
			}
		}
	}

	// Check the non-null members for containment on their own terms:
	// IsContainedBy's null handling rejects Null against any non-null
	// container outright, which would otherwise make a nullable value
	// reported as a flat InvalidReturnStatement instead of the more
	// specific NullableReturnStatement below.
	checked := u
	if u.HasNull() && !declared.HasNull() {
		var nonNull []ttype.Atomic
		for _, at := range u.Types {
			if at.Kind() != ttype.KNull {
				nonNull = append(nonNull, at)
			}
		}
		if len(nonNull) > 0 {
			checked = ttype.Combine(nonNull)
		}
	}

	result := &ttype.Result{}
	if !ttype.IsUnionContainedBy(checked, declared, false, result, a.Codebase) {
		a.emit(issue.InvalidReturnStatement, pos, "returned %s does not match declared return type %s", u.String(), declared.String())
		return
	}
	if u.HasNull() && !declared.HasNull() {
		a.emit(issue.NullableReturnStatement, pos, "returned value may be null but return type %s excludes it", declared.String())
	}
}

func (a *Analyzer) VisitBreakStmt(n *ast.BreakStmt) {}
func (a *Analyzer) VisitContinueStmt(n *ast.ContinueStmt) {}

func (a *Analyzer) VisitThrowStmt(n *ast.ThrowStmt) {
	a.eval(a.scope, n.Value)
	a.scope.HasReturned = true
}

// VisitTryStmt threads the scope through the body, then analyzes every
// catch from a clone of the pre-try state merged with whatever the
// finally_scope accumulated across the body ("finally_scope
// (shared, mutable)").
func (a *Analyzer) VisitTryStmt(n *ast.TryStmt) {
	pre := a.scope
	fs := scopectx.NewFinallyScope()

	bodyScope := pre.Clone()
	bodyScope.FinallyScope = fs
	a.AnalyzeStatements(bodyScope, n.Body)
	branches := []*scopectx.ScopeContext{bodyScope}

	for _, c := range n.Catches {
		catchScope := pre.Clone()
		for id, u := range fs.VarsInScope {
			if cur, ok := catchScope.Get(id); ok {
				catchScope.Set(id, ttype.Combine(append(append([]ttype.Atomic(nil), cur.Types...), u.Types...)))
			} else {
				catchScope.Set(id, u)
			}
		}
		catchScope.FinallyScope = fs
		catchScope.Set(varID(a.Codebase.Interner, c.VarName), ttype.Single(ttype.Object))
		a.AnalyzeStatements(catchScope, c.Body)
		branches = append(branches, catchScope)
	}

	merged := branches[0]
	for _, b := range branches[1:] {
		merged = merged.MergeBranch(pre, b)
	}

	if len(n.Finally) > 0 {
		finallyScope := merged.Clone()
		finallyScope.FinallyScope = nil
		for id, u := range fs.VarsInScope {
			finallyScope.Set(id, u)
		}
		a.AnalyzeStatements(finallyScope, n.Finally)
		merged = finallyScope
	}

	a.scope = merged
}

// VisitSwitchStmt treats each case as an independent branch off the
// pre-switch state (branch-merge model generalizes directly;
// fallthrough between cases isn't modeled since the front end doesn't
// distinguish an explicit `break` from a falling-through case body here).
func (a *Analyzer) VisitSwitchStmt(n *ast.SwitchStmt) {
	pre := a.scope
	a.eval(pre, n.Subject)

	var branches []*scopectx.ScopeContext
	for _, c := range n.Cases {
		caseScope := pre.Clone()
		if c.Value != nil {
			a.eval(caseScope, c.Value)
		}
		a.AnalyzeStatements(caseScope, c.Body)
		branches = append(branches, caseScope)
	}
	if len(branches) == 0 {
		return
	}
	merged := branches[0]
	for _, b := range branches[1:] {
		merged = merged.MergeBranch(pre, b)
	}
	a.scope = merged
}
