package analyzer

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// resolveProperty finds name on classID or one of its ancestors,
// walking the inheritance chain.
func resolveProperty(cb *codebase.Codebase, classID, name interner.ID) (*codebase.PropertyInfo, bool) {
	c, ok := cb.ClassLike(classID)
	if !ok {
		return nil, false
	}
	if p, ok := c.Properties[name]; ok {
		return p, true
	}
	for parentID := range c.AllParentClasses {
		if pc, ok := cb.ClassLike(parentID); ok {
			if p, ok := pc.Properties[name]; ok {
				return p, true
			}
		}
	}
	return nil, false
}

func (a *Analyzer) propertyTypeOf(objUnion ttype.Union, propName interner.ID) ttype.Union {
	var atoms []ttype.Atomic
	for _, at := range objUnion.Types {
		n, isNamed := at.(ttype.Named)
		if !isNamed {
			atoms = append(atoms, ttype.Mixed)
			continue
		}
		if p, ok := resolveProperty(a.Codebase, n.Name, propName); ok {
			atoms = append(atoms, p.Type.Types...)
			continue
		}
		atoms = append(atoms, ttype.Mixed)
	}
	if len(atoms) == 0 {
		return ttype.Single(ttype.Mixed)
	}
	return ttype.Combine(atoms)
}

func (a *Analyzer) VisitPropertyFetch(n *ast.PropertyFetch) {
	objUnion := a.eval(a.scope, n.Object)

	if root, steps, ok := a.compoundPath(n); ok {
		if u, exists := a.scope.Get(renderCompoundID(root, steps)); exists {
			a.markPure(n.PosInfo, true)
			a.set(u)
			return
		}
	}

	result := a.propertyTypeOf(objUnion, n.Property)
	for _, at := range objUnion.Types {
		named, isNamed := at.(ttype.Named)
		if !isNamed {
			continue
		}
		if _, ok := resolveProperty(a.Codebase, named.Name, n.Property); ok {
			result = result.WithParent(a.propertyNode(named.Name, n.Property).ID)
		}
	}
	if n.Nullsafe && objUnion.HasNull() {
		result = ttype.NullableOf(result)
	}
	a.markPure(n.PosInfo, true)
	a.set(result)
}

// propertyNode registers (idempotently: AddNode overwrites by id) the
// data-flow node shared by every read/write of classID's member
// property, so an assignment's edges and a later fetch's provenance
// meet at the same node.
func (a *Analyzer) propertyNode(classID, member interner.ID) *dataflow.Node {
	id := dataflow.PropertyNodeID(a.Codebase.Interner.Lookup(classID), a.Codebase.Interner.Lookup(member))
	n := &dataflow.Node{ID: id, Kind: dataflow.KindProperty, Label: a.Codebase.Interner.Lookup(member), ClassID: a.Codebase.Interner.Lookup(classID), Member: a.Codebase.Interner.Lookup(member)}
	a.Graph.AddNode(n)
	return n
}

func (a *Analyzer) VisitStaticPropertyFetch(n *ast.StaticPropertyFetch) {
	if p, ok := resolveProperty(a.Codebase, n.ClassName, n.Property); ok {
		a.markPure(n.PosInfo, true)
		a.set(p.Type)
		return
	}
	a.markPure(n.PosInfo, true)
	a.set(ttype.Single(ttype.Mixed))
}

// assignPropertyFetch implements write side: the refined
// value is recorded under the compound path (mirroring assignArrayFetch)
// and checked against the declared property type, emitting
// InvalidPropertyAssignmentValue on outright mismatch or
// PropertyTypeCoercion when containment only holds via coercion.
func (a *Analyzer) assignPropertyFetch(t *ast.PropertyFetch, value ttype.Union) {
	objUnion := a.eval(a.scope, t.Object)

	if root, steps, ok := a.compoundPath(t); ok {
		a.scope.Set(renderCompoundID(root, steps), value)
	}

	for _, at := range objUnion.Types {
		n, isNamed := at.(ttype.Named)
		if !isNamed {
			continue
		}
		p, ok := resolveProperty(a.Codebase, n.Name, t.Property)
		if !ok {
			continue
		}
		propNode := a.propertyNode(n.Name, t.Property)
		for _, parent := range value.ParentNodeIDs() {
			a.Graph.AddEdge(&dataflow.Edge{From: parent, To: propNode.ID, Path: dataflow.PathPropertyAssignment})
		}

		result := &ttype.Result{}
		if !ttype.IsUnionContainedBy(value, p.Type, false, result, a.Codebase) {
			a.emit(issue.InvalidPropertyAssignmentValue, t.PosInfo,
				"property %s expects %s, assigned %s", a.Codebase.Interner.Lookup(t.Property), p.Type.String(), value.String())
		} else if result.TypeCoerced {
			a.emit(issue.PropertyTypeCoercion, t.PosInfo,
				"assigned value for property %s is coerced to %s", a.Codebase.Interner.Lookup(t.Property), p.Type.String())
		}
	}
}
