package analyzer

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/scopectx"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// accessStep is one link of a compound variable path (
// mirrored in string form by internal/reconcile's KeyStep).
type accessStep struct {
	isProperty bool
	propName string
	isIntKey bool
	intKey int64
	isStrKey bool
	strVal string
}

// compoundPath walks an assignable/fetchable expression down to its root
// variable, collecting the chain of literal-keyed array/property steps.
// ok is false whenever a step can't be rendered as a stable id (an unknown
// key, an append target, or a non-literal base) — callers fall back to
// structural-only handling in that case.
func (a *Analyzer) compoundPath(e ast.Expression) (root scopectx.VarID, steps []accessStep, ok bool) {
	switch t := e.(type) {
	case *ast.Variable:
		return varID(a.Codebase.Interner, t.Name), nil, true
	case *ast.ArrayFetch:
		root, steps, ok = a.compoundPath(t.Array)
		if !ok || t.Key == nil {
			return "", nil, false
		}
		lit, isLit := t.Key.(*ast.Literal)
		if !isLit {
			return "", nil, false
		}
		switch lit.Kind {
		case ast.LitInt:
			return root, append(steps, accessStep{isIntKey: true, intKey: lit.Int}), true
		case ast.LitString:
			return root, append(steps, accessStep{isStrKey: true, strVal: lit.Str}), true
		default:
			return "", nil, false
		}
	case *ast.PropertyFetch:
		root, steps, ok = a.compoundPath(t.Object)
		if !ok {
			return "", nil, false
		}
		return root, append(steps, accessStep{isProperty: true, propName: a.Codebase.Interner.Lookup(t.Property)}), true
	default:
		return "", nil, false
	}
}

func renderCompoundID(root scopectx.VarID, steps []accessStep) scopectx.VarID {
	s := string(root)
	for _, st := range steps {
		switch {
		case st.isProperty:
			s += "->" + st.propName
		case st.isIntKey:
			s += fmt.Sprintf("[%d]", st.intKey)
		default:
			s += "['" + st.strVal + "']"
		}
	}
	return scopectx.VarID(s)
}

func (a *Analyzer) dictKeyOf(lit *ast.Literal) (ttype.DictKey, bool) {
	if lit == nil {
		return ttype.DictKey{}, false
	}
	switch lit.Kind {
	case ast.LitInt:
		return ttype.IntKey(lit.Int), true
	case ast.LitString:
		return ttype.StringKey(a.Codebase.Interner.Intern(lit.Str)), true
	default:
		return ttype.DictKey{}, false
	}
}

// elementTypeOf resolves the fetched element type of an array access,
// combining across every atomic of arr and flagging whether a
// literal-keyed lookup missed a known-items entry.
func (a *Analyzer) elementTypeOf(arr ttype.Union, key ast.Expression) (ttype.Union, bool) {
	var lit *ast.Literal
	if key != nil {
		lit, _ = key.(*ast.Literal)
	}

	var resultAtoms []ttype.Atomic
	possiblyUndefined := false

	for _, at := range arr.Types {
		switch v := at.(type) {
		case ttype.Vec:
			if lit != nil && lit.Kind == ast.LitInt && v.KnownItems != nil {
				if item, ok := v.KnownItems[int(lit.Int)]; ok {
					resultAtoms = append(resultAtoms, item.Type.Types...)
					if item.PossiblyUndefined {
						possiblyUndefined = true
					}
					continue
				}
				possiblyUndefined = true
			}
			resultAtoms = append(resultAtoms, v.Elem.Types...)
		case ttype.Dict:
			if dk, ok := a.dictKeyOf(lit); ok && v.KnownItems != nil {
				if item, ok := v.KnownItems[dk]; ok {
					resultAtoms = append(resultAtoms, item.Type.Types...)
					if item.PossiblyUndefined {
						possiblyUndefined = true
					}
					continue
				}
				possiblyUndefined = true
			}
			if v.Params != nil {
				resultAtoms = append(resultAtoms, v.Params.Value.Types...)
			} else {
				resultAtoms = append(resultAtoms, ttype.Mixed)
			}
		case ttype.Keyset:
			resultAtoms = append(resultAtoms, v.Elem.Types...)
		default:
			resultAtoms = append(resultAtoms, ttype.Mixed)
		}
	}

	if len(resultAtoms) == 0 {
		return ttype.Single(ttype.Mixed), false
	}
	return ttype.Combine(resultAtoms), possiblyUndefined
}

func (a *Analyzer) VisitArrayFetch(n *ast.ArrayFetch) {
	arrUnion := a.eval(a.scope, n.Array)
	if n.Key != nil {
		a.eval(a.scope, n.Key)
	}

	if root, steps, ok := a.compoundPath(n); ok {
		if u, exists := a.scope.Get(renderCompoundID(root, steps)); exists {
			a.markPure(n.PosInfo, true)
			a.set(u)
			return
		}
	}

	if arrUnion.IsMixed() {
		a.emit(issue.MixedArrayAccess, n.PosInfo, "array access on a mixed-typed value")
	}

	result, possiblyUndefined := a.elementTypeOf(arrUnion, n.Key)
	if possiblyUndefined {
		if lit, ok := n.Key.(*ast.Literal); ok {
			switch lit.Kind {
			case ast.LitInt:
				a.emit(issue.PossiblyUndefinedIntArrayOffset, n.PosInfo, "possibly undefined array offset %d", lit.Int)
			case ast.LitString:
				a.emit(issue.PossiblyUndefinedStringArrayOffset, n.PosInfo, "possibly undefined array offset '%s'", lit.Str)
			}
		}
	}
	a.markPure(n.PosInfo, true)
	a.set(result)
}

// assignArrayFetch implements : the assigned value is stored
// both under the compound path's own var-id (so a later fetch through the
// identical literal-keyed chain sees the refined type directly) and, when
// the root is a bare variable, folded back into the root's structural Vec/
// Dict known_items so foreach and other structural consumers see it too.
func (a *Analyzer) assignArrayFetch(t *ast.ArrayFetch, value ttype.Union) {
	a.eval(a.scope, t.Array)
	if t.Key != nil {
		a.eval(a.scope, t.Key)
	}

	if t.Key == nil {
		a.assignArrayAppend(t.Array, value)
		return
	}

	root, steps, ok := a.compoundPath(t)
	if !ok {
		return
	}
	value = a.recordArrayWrite(value, t.PosInfo, renderCompoundID(root, steps), dataflow.PathArrayAssignmentLiteralKey)
	a.scope.Set(renderCompoundID(root, steps), value)

	cur, exists := a.scope.Get(root)
	if !exists {
		cur = ttype.Single(ttype.Mixed)
	}
	a.scope.Set(root, applyKnownItemUpdate(cur, steps, value, a))
}

// assignArrayAppend implements the `$a[] = value` form also
// covers: unlike a literal-keyed write, the index is unknown, so rather
// than growing known_items it widens the root variable's Vec element
// type to cover value (loop-fixpoint worked example relies
// on this to let an accumulator variable settle on vec<T> across
// iterations). Only a bare-variable root is handled; anything else
// (appending into a nested property/array) falls back to no-op, matching
// compoundPath's own literal-path-only guarantee.
func (a *Analyzer) assignArrayAppend(arrExpr ast.Expression, value ttype.Union) {
	v, ok := arrExpr.(*ast.Variable)
	if !ok {
		return
	}
	root := varID(a.Codebase.Interner, v.Name)
	cur, exists := a.scope.Get(root)
	if !exists {
		return
	}

	out := make([]ttype.Atomic, 0, len(cur.Types))
	for _, at := range cur.Types {
		vec, isVec := at.(ttype.Vec)
		if !isVec {
			out = append(out, at)
			continue
		}
		elemAtoms := append(append([]ttype.Atomic(nil), vec.Elem.Types...), value.Types...)
		vec.Elem = ttype.Combine(elemAtoms)
		vec.KnownItems = nil
		vec.KnownCount = nil
		vec.NonEmpty = true
		out = append(out, vec)
	}
	next := a.recordArrayWrite(value, v.PosInfo, string(root)+"[]", dataflow.PathArrayAssignmentUnknownKey)
	a.scope.Set(root, ttype.New(out...).WithParents(cur).WithParents(next))
}

// recordArrayWrite links value's provenance to a fresh assignment node
// tagged with kind (literal vs unknown key), returning value re-parented
// to that node so the stored element carries the write site forward.
func (a *Analyzer) recordArrayWrite(value ttype.Union, pos ast.Position, label string, kind dataflow.PathKind) ttype.Union {
	node := newAssignmentNode(a.Graph, label, pos)
	for _, parent := range value.ParentNodeIDs() {
		a.Graph.AddEdge(&dataflow.Edge{From: parent, To: node.ID, Path: kind})
	}
	return value.WithParent(node.ID)
}

// applyKnownItemUpdate rebuilds u's Vec/Dict known_items along steps,
// writing value at the leaf. Atomics that aren't Vec/Dict, or where the
// chain doesn't resolve to a literal array key at the first step, are left
// unchanged — structural refinement only applies along the literal-keyed
// path the reconciler itself can re-derive.
func applyKnownItemUpdate(u ttype.Union, steps []accessStep, value ttype.Union, a *Analyzer) ttype.Union {
	if len(steps) == 0 {
		return value
	}
	step := steps[0]
	rest := steps[1:]

	out := make([]ttype.Atomic, 0, len(u.Types))
	for _, at := range u.Types {
		out = append(out, updateOneAtomic(at, step, rest, value, a))
	}
	return ttype.New(out...).WithParents(u)
}

func updateOneAtomic(at ttype.Atomic, step accessStep, rest []accessStep, value ttype.Union, a *Analyzer) ttype.Atomic {
	switch v := at.(type) {
	case ttype.Vec:
		if !step.isIntKey {
			return at
		}
		items := make(map[int]ttype.VecItem, len(v.KnownItems)+1)
		for k, item := range v.KnownItems {
			items[k] = item
		}
		leaf := value
		if len(rest) > 0 {
			existing := v.Elem
			if item, ok := items[int(step.intKey)]; ok {
				existing = item.Type
			}
			leaf = applyKnownItemUpdate(existing, rest, value, a)
		}
		items[int(step.intKey)] = ttype.VecItem{Type: leaf}
		v.KnownItems = items
		v.NonEmpty = true
		return v
	case ttype.Dict:
		dk, ok := dictKeyFromStep(step, a)
		if !ok {
			return at
		}
		items := make(map[ttype.DictKey]ttype.DictItem, len(v.KnownItems)+1)
		for k, item := range v.KnownItems {
			items[k] = item
		}
		leaf := value
		if len(rest) > 0 {
			existing := ttype.Single(ttype.Mixed)
			if v.Params != nil {
				existing = v.Params.Value
			}
			if item, ok := items[dk]; ok {
				existing = item.Type
			}
			leaf = applyKnownItemUpdate(existing, rest, value, a)
		}
		items[dk] = ttype.DictItem{Type: leaf}
		v.KnownItems = items
		v.NonEmpty = true
		return v
	default:
		return at
	}
}

func dictKeyFromStep(step accessStep, a *Analyzer) (ttype.DictKey, bool) {
	switch {
	case step.isIntKey:
		return ttype.IntKey(step.intKey), true
	case step.isStrKey:
		return ttype.StringKey(a.Codebase.Interner.Intern(step.strVal)), true
	default:
		return ttype.DictKey{}, false
	}
}
