package analyzer

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/reconcile"
	"github.com/slackhq/hakana-sub001/internal/scopectx"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// varIDOfExpr renders a stable scope var-id for an expression whose shape
// the reconciler can track (a bare variable or a literal-keyed compound
// path); ok is false for anything else ("compound keys").
func (a *Analyzer) varIDOfExpr(e ast.Expression) (scopectx.VarID, bool) {
	root, steps, ok := a.compoundPath(e)
	if !ok {
		return "", false
	}
	return renderCompoundID(root, steps), true
}

// deriveAssertions maps a boolean condition expression to the var-id ->
// disjunction-of-conjunctions-of-assertions model. Conditions this
// doesn't recognize contribute no assertions, which is always sound
// (the reconciler simply narrows nothing for that var).
func (a *Analyzer) deriveAssertions(e ast.Expression) reconcile.AssertionMap {
	switch n := e.(type) {
	case *ast.Variable:
		return reconcile.TruthyOf(string(varID(a.Codebase.Interner, n.Name)))
	case *ast.UnaryOp:
		if n.Op == ast.OpNot {
			return reconcile.Negate(a.deriveAssertions(n.Operand))
		}
	case *ast.IssetExpr:
		out := reconcile.AssertionMap{}
		for _, op := range n.Operands {
			if id, ok := a.varIDOfExpr(op); ok {
				for k, v := range reconcile.IssetOf(string(id)) {
					out[k] = v
				}
			}
		}
		return out
	case *ast.BinaryOp:
		switch n.Op {
		case ast.OpAnd:
			return mergeConjunctive(a.deriveAssertions(n.Left), a.deriveAssertions(n.Right))
		case ast.OpOr:
			return mergeDisjunctive(a.deriveAssertions(n.Left), a.deriveAssertions(n.Right))
		case ast.OpIdentical, ast.OpEq:
			return a.deriveEquality(n.Left, n.Right)
		case ast.OpNotIdentical, ast.OpNotEq:
			return reconcile.Negate(a.deriveEquality(n.Left, n.Right))
		}
	case *ast.Ternary:
		if n.IsElvis {
			return a.deriveAssertions(n.Cond)
		}
	}
	return reconcile.AssertionMap{}
}

// deriveEquality handles `$x === null` / `null === $x` (worked
// examples); other equality comparisons aren't precise enough to assert on
// without a literal-type identity the comparator doesn't expose here.
func (a *Analyzer) deriveEquality(left, right ast.Expression) reconcile.AssertionMap {
	if id, ok := a.varIDOfExpr(left); ok {
		if lit, isLit := right.(*ast.Literal); isLit && lit.Kind == ast.LitNull {
			return reconcile.IsTypeOf(string(id), ttype.Null)
		}
	}
	if id, ok := a.varIDOfExpr(right); ok {
		if lit, isLit := left.(*ast.Literal); isLit && lit.Kind == ast.LitNull {
			return reconcile.IsTypeOf(string(id), ttype.Null)
		}
	}
	return reconcile.AssertionMap{}
}

func mergeConjunctive(x, y reconcile.AssertionMap) reconcile.AssertionMap {
	out := make(reconcile.AssertionMap, len(x)+len(y))
	for k, v := range x {
		out[k] = v
	}
	for k, v := range y {
		existing, has := out[k]
		if !has {
			out[k] = v
			continue
		}
		var merged reconcile.Disjunction
		for _, ec := range existing {
			for _, vc := range v {
				merged = append(merged, append(append(reconcile.Conjunction(nil), ec...), vc...))
			}
		}
		out[k] = merged
	}
	return out
}

func mergeDisjunctive(x, y reconcile.AssertionMap) reconcile.AssertionMap {
	out := make(reconcile.AssertionMap, len(x)+len(y))
	for k, v := range x {
		out[k] = v
	}
	for k, v := range y {
		if existing, has := out[k]; has {
			out[k] = append(append(reconcile.Disjunction(nil), existing...), v...)
		} else {
			out[k] = v
		}
	}
	return out
}

// applyAssertions narrows scope's variables according to m ,
// emitting RedundantTypeComparison/ImpossibleTypeComparison when a
// conjunction's every assertion was already guaranteed, or contradicted
// the prior type, respectively.
func (a *Analyzer) applyAssertions(scope *scopectx.ScopeContext, m reconcile.AssertionMap, pos ast.Position) {
	hierarchy := a.reconcileHierarchy()
	for id, disj := range m {
		cur, exists := scope.Get(scopectx.VarID(id))
		if !exists {
			continue
		}
		var branches []ttype.Atomic
		anyOk := false
		anyEmpty := false
		for _, conj := range disj {
			u := cur
			empty := false
			for _, assertion := range conj {
				res := reconcile.ApplyAssertion(u, assertion, hierarchy)
				u = res.Union
				if res.Status == reconcile.Empty {
					empty = true
					anyEmpty = true
					break
				}
				if res.Status == reconcile.Ok {
					anyOk = true
				}
			}
			if !empty {
				branches = append(branches, u.Types...)
			}
		}
		if len(branches) == 0 {
			scope.Set(scopectx.VarID(id), ttype.NothingUnion())
			if anyEmpty {
				a.emit(issue.ImpossibleTypeComparison, pos, "type comparison on %s is never true", id)
			}
			continue
		}
		scope.Set(scopectx.VarID(id), ttype.Combine(branches))
		if !anyOk && !anyEmpty {
			a.emit(issue.RedundantTypeComparison, pos, "type comparison on %s is always true", id)
		}
	}
}
