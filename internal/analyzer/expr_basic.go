package analyzer

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/reconcile"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

func (a *Analyzer) VisitVariable(n *ast.Variable) {
	id := varID(a.Codebase.Interner, n.Name)
	a.scope.Reference(id)
	if u, ok := a.scope.Get(id); ok {
		a.markPure(n.PosInfo, true)
		a.set(u)
		return
	}
	a.markPure(n.PosInfo, true)
	a.set(ttype.Single(ttype.Mixed))
}

func (a *Analyzer) VisitLiteral(n *ast.Literal) {
	a.markPure(n.PosInfo, true)
	switch n.Kind {
	case ast.LitInt:
		a.set(ttype.Single(ttype.LiteralInt{Value: n.Int}))
	case ast.LitFloat:
		a.set(ttype.Single(ttype.Float))
	case ast.LitString:
		a.set(ttype.Single(ttype.NewLiteralString(a.Codebase.Interner, n.Str)))
	case ast.LitBool:
		if n.Bool {
			a.set(ttype.Single(ttype.True))
		} else {
			a.set(ttype.Single(ttype.False))
		}
	case ast.LitNull:
		a.set(ttype.Single(ttype.Null))
	default:
		a.set(ttype.Single(ttype.Mixed))
	}
}

func (a *Analyzer) VisitBinaryOp(n *ast.BinaryOp) {
	scope := a.scope
	left := a.eval(scope, n.Left)
	right := a.eval(scope, n.Right)

	leftPure := a.PureExprs[exprKeyOf(n.Left.Pos())]
	rightPure := a.PureExprs[exprKeyOf(n.Right.Pos())]
	a.markPure(n.PosInfo, leftPure && rightPure)

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		a.set(arithmeticResult(left, right))
	case ast.OpConcat:
		a.set(ttype.Single(ttype.String))
	case ast.OpEq, ast.OpNotEq, ast.OpIdentical, ast.OpNotIdentical,
		ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		a.set(ttype.Single(ttype.Bool))
	case ast.OpAnd, ast.OpOr:
		a.set(ttype.Single(ttype.Bool))
	case ast.OpCoalesce:
		kept := stripNull(left)
		a.set(ttype.Combine(append(append([]ttype.Atomic(nil), kept.Types...), right.Types...)))
	case ast.OpSpaceship:
		a.set(ttype.Single(ttype.Int))
	default:
		a.set(ttype.Single(ttype.Mixed))
	}
}

func stripNull(u ttype.Union) ttype.Union {
	var kept []ttype.Atomic
	for _, at := range u.Types {
		if at.Kind() != ttype.KNull {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		return ttype.NothingUnion()
	}
	return ttype.New(kept...)
}

func arithmeticResult(left, right ttype.Union) ttype.Union {
	if left.HasKind(ttype.KFloat) || right.HasKind(ttype.KFloat) {
		return ttype.Single(ttype.Float)
	}
	return ttype.Single(ttype.Int)
}

func (a *Analyzer) VisitUnaryOp(n *ast.UnaryOp) {
	operand := a.eval(a.scope, n.Operand)
	switch n.Op {
	case ast.OpNot:
		a.set(ttype.Single(ttype.Bool))
	case ast.OpNeg:
		a.set(operand)
	default:
		a.set(operand)
	}
	a.markPure(n.PosInfo, a.PureExprs[exprKeyOf(n.Operand.Pos())])
}

func (a *Analyzer) VisitAssign(n *ast.Assign) {
	value := a.eval(a.scope, n.Value)
	a.bindTarget(n.Target, value)
	a.markPure(n.PosInfo, false)
	a.set(value)
}

// bindTarget writes value into the scope slot n.Target names, handling
// the three assignable expression shapes (route
// through the array/property analyzers; a bare Variable writes
// directly).
func (a *Analyzer) bindTarget(target ast.Expression, value ttype.Union) {
	switch t := target.(type) {
	case *ast.Variable:
		id := varID(a.Codebase.Interner, t.Name)
		value = a.recordAssignment(value, t.PosInfo, "$"+a.Codebase.Interner.Lookup(t.Name))
		a.scope.Set(id, value)
	case *ast.ArrayFetch:
		a.assignArrayFetch(t, value)
	case *ast.PropertyFetch:
		a.assignPropertyFetch(t, value)
	default:
		a.eval(a.scope, target)
	}
}

// recordAssignment links value's existing provenance to a fresh
// assignment node (an edge per parent, so a multi-branch value keeps
// every branch's provenance) and returns value tagged with that node as
// its new parent, so a later read of the bound variable traces back
// through the assignment site.
func (a *Analyzer) recordAssignment(value ttype.Union, pos ast.Position, label string) ttype.Union {
	node := newAssignmentNode(a.Graph, label, pos)
	for _, parent := range value.ParentNodeIDs() {
		a.Graph.AddEdge(&dataflow.Edge{From: parent, To: node.ID, Path: dataflow.PathPlain})
	}
	return value.WithParent(node.ID)
}

func (a *Analyzer) VisitTernary(n *ast.Ternary) {
	condUnion := a.eval(a.scope, n.Cond)
	if n.IsElvis {
		thenResult := reconcile.ApplyAssertion(condUnion, reconcile.Assertion{Kind: reconcile.Truthy}, a.reconcileHierarchy())
		elseU := a.eval(a.scope, n.Else)
		a.set(ttype.Combine(append(append([]ttype.Atomic(nil), thenResult.Union.Types...), elseU.Types...)))
		return
	}
	thenU := a.eval(a.scope, n.Then)
	elseU := a.eval(a.scope, n.Else)
	a.set(ttype.Combine(append(append([]ttype.Atomic(nil), thenU.Types...), elseU.Types...)))
}

func (a *Analyzer) VisitCast(n *ast.Cast) {
	a.eval(a.scope, n.Operand)
	switch n.ToType.Text {
	case "int":
		a.set(ttype.Single(ttype.Int))
	case "float":
		a.set(ttype.Single(ttype.Float))
	case "string":
		a.set(ttype.Single(ttype.String))
	case "bool":
		a.set(ttype.Single(ttype.Bool))
	default:
		a.set(ttype.Single(ttype.Mixed))
	}
}

func (a *Analyzer) VisitAwaitExpr(n *ast.AwaitExpr) {
	u := a.eval(a.scope, n.Operand)
	var inner []ttype.Atomic
	for _, at := range u.Types {
		if aw, ok := at.(ttype.Awaitable); ok {
			inner = append(inner, aw.Inner.Types...)
		} else {
			inner = append(inner, at)
		}
	}
	if len(inner) == 0 {
		a.set(ttype.Single(ttype.Mixed))
		return
	}
	a.set(ttype.Combine(inner))
}

func (a *Analyzer) VisitIssetExpr(n *ast.IssetExpr) {
	for _, op := range n.Operands {
		a.eval(a.scope, op)
	}
	a.set(ttype.Single(ttype.Bool))
}

func (a *Analyzer) VisitArrayLiteral(n *ast.ArrayLiteral) {
	switch n.Kind {
	case ast.ArrayLiteralVec:
		items := make(map[int]ttype.VecItem, len(n.Entries))
		var elemAtoms []ttype.Atomic
		for i, entry := range n.Entries {
			v := a.eval(a.scope, entry.Value)
			items[i] = ttype.VecItem{Type: v}
			elemAtoms = append(elemAtoms, v.Types...)
		}
		elem := ttype.NothingUnion()
		if len(elemAtoms) > 0 {
			elem = ttype.Combine(elemAtoms)
		}
		count := len(n.Entries)
		a.set(ttype.Single(ttype.Vec{Elem: elem, KnownItems: items, KnownCount: &count, NonEmpty: count > 0}))
	case ast.ArrayLiteralKeyset:
		var elemAtoms []ttype.Atomic
		for _, entry := range n.Entries {
			v := a.eval(a.scope, entry.Value)
			elemAtoms = append(elemAtoms, v.Types...)
		}
		elem := ttype.Single(ttype.Arraykey)
		if len(elemAtoms) > 0 {
			elem = ttype.Combine(elemAtoms)
		}
		a.set(ttype.Single(ttype.Keyset{Elem: elem}))
	default: // dict
		items := make(map[ttype.DictKey]ttype.DictItem, len(n.Entries))
		var keyAtoms, valAtoms []ttype.Atomic
		for _, entry := range n.Entries {
			v := a.eval(a.scope, entry.Value)
			valAtoms = append(valAtoms, v.Types...)
			if lit, ok := entry.Key.(*ast.Literal); ok {
				switch lit.Kind {
				case ast.LitInt:
					items[ttype.IntKey(lit.Int)] = ttype.DictItem{Type: v}
					keyAtoms = append(keyAtoms, ttype.Int)
					continue
				case ast.LitString:
					items[ttype.StringKey(a.Codebase.Interner.Intern(lit.Str))] = ttype.DictItem{Type: v}
					keyAtoms = append(keyAtoms, ttype.String)
					continue
				}
			}
			if entry.Key != nil {
				k := a.eval(a.scope, entry.Key)
				keyAtoms = append(keyAtoms, k.Types...)
			}
		}
		keyU := ttype.Single(ttype.Arraykey)
		if len(keyAtoms) > 0 {
			keyU = ttype.Combine(keyAtoms)
		}
		valU := ttype.Single(ttype.Mixed)
		if len(valAtoms) > 0 {
			valU = ttype.Combine(valAtoms)
		}
		d := ttype.NewDict(a.Codebase.Interner, &ttype.DictParams{Key: keyU, Value: valU})
		d.KnownItems = items
		d.NonEmpty = len(items) > 0
		a.set(ttype.Single(d))
	}
}

func (a *Analyzer) VisitClosureExpr(n *ast.ClosureExpr) {
	var params []ttype.ClosureParam
	for _, p := range n.Params {
		params = append(params, ttype.ClosureParam{
			Type: codebase.ParseTypeHint(a.Codebase.Interner, p.Type),
			Optional: p.Optional,
			Variadic: p.Variadic,
			ByRef: p.ByRef,
		})
	}
	ret := codebase.ParseTypeHint(a.Codebase.Interner, n.Return)
	a.set(ttype.Single(ttype.Closure{Params: params, Return: &ret}))
}

func exprKeyOf(pos ast.Position) ExprKey {
	return ExprKey{Start: pos.StartLine*100000 + pos.StartCol, End: pos.EndLine*100000 + pos.EndCol}
}

// node id helper used by data-flow edge construction across the
// expr_*.go files.
func newAssignmentNode(g *dataflow.Graph, label string, pos ast.Position) *dataflow.Node {
	n := &dataflow.Node{
		ID: dataflow.NewNodeID(),
		Kind: dataflow.KindAssignment,
		Label: label,
		Pos: dataflow.Position{
			FileID: pos.FileID, StartLine: pos.StartLine, StartCol: pos.StartCol,
			EndLine: pos.EndLine, EndCol: pos.EndCol,
		},
	}
	g.AddNode(n)
	return n
}
