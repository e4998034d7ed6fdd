package ttype

import (
	"sort"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/dataflow"
)

// Union is a non-empty, insertion-ordered set of atomics plus data-flow
// side-channel bits. Unions are frequently shared across scope entries,
// so callers must treat a Union value as immutable and use
// WithParents/Widen-style copy-on-write helpers rather than mutating
// Types in place.
type Union struct {
	Types []Atomic

	IgnoreFalsableIssues bool
	ReferenceFree bool
	PossiblyUndefinedFromTry bool
	HadTemplate bool

	parents *dataflowParents
}

// New builds a Union from a non-empty slice of atomics without running
// the combiner. Use Combine when the atomics may overlap or need
// dominance rules applied.
func New(atomics ...Atomic) Union {
	if len(atomics) == 0 {
		panic("ttype: empty union")
	}
	return Union{Types: atomics}
}

// Single is a convenience constructor for a one-atomic union.
func Single(a Atomic) Union {
	return Union{Types: []Atomic{a}}
}

// NothingUnion is the canonical empty-bottom union substituted whenever a
// combiner input or a narrowing result would otherwise be empty: an
// empty union is never valid, so combiners must substitute Nothing
// instead.
func NothingUnion() Union {
	return Single(Nothing)
}

// NullableOf returns t | null.
func NullableOf(t Union) Union {
	return Combine(append(append([]Atomic(nil), t.Types...), Null))
}

// IsSingle reports whether the union has exactly one atomic.
func (u Union) IsSingle() bool {
	return len(u.Types) == 1
}

// HasKind reports whether any atomic in the union has the given Kind.
func (u Union) HasKind(k Kind) bool {
	for _, a := range u.Types {
		if a.Kind() == k {
			return true
		}
	}
	return false
}

// HasNull reports whether the union includes an explicit null member.
func (u Union) HasNull() bool { return u.HasKind(KNull) }

// IsNothing reports whether the union is the degenerate bottom type.
func (u Union) IsNothing() bool {
	return len(u.Types) == 1 && u.Types[0].Kind() == KNothing
}

// IsMixed reports whether the union contains any of the Mixed* family
// ("Mixed family").
func (u Union) IsMixed() bool {
	for _, a := range u.Types {
		switch a.Kind() {
		case KMixed, KMixedAny, KNonnullMixed, KTruthyMixed, KFalsyMixed, KMixedFromLoopIsset:
			return true
		}
	}
	return false
}

// IsMixedAny reports the "any"-tainted escape hatch specifically; it
// triggers any-tainted diagnostics wherever it flows.
func (u Union) IsMixedAny() bool { return u.HasKind(KMixedAny) }

// ParentNodeIDs returns the data-flow parent nodes attached to this
// union, deduplicated by id .
func (u Union) ParentNodeIDs() []dataflow.NodeID {
	return u.parents.ids()
}

// WithParent returns a copy of u with id added to its parent-node set.
// This is the copy-on-write path requires so that narrowing a
// shared union does not disturb the original's data-flow lineage.
func (u Union) WithParent(id dataflow.NodeID) Union {
	np := newDataflowParents()
	np.addAll(u.parents)
	np.add(id)
	u.parents = np
	return u
}

// WithParents merges every parent node of other into a copy of u.
func (u Union) WithParents(other Union) Union {
	np := newDataflowParents()
	np.addAll(u.parents)
	np.addAll(other.parents)
	u.parents = np
	return u
}

// SameParentNodes reports whether u and o carry identical (by id) parent
// node sets. Two unions with the same atomic sequence but different
// parent-node sets are distinguishable for data-flow purposes but
// equivalent for subtype checks; this method is the data-flow-aware
// equality, and subtype checks must never call it.
func (u Union) SameParentNodes(o Union) bool {
	a, b := u.ParentNodeIDs(), o.ParentNodeIDs()
	if len(a) != len(b) {
		return false
	}
	seen := make(map[dataflow.NodeID]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

// GetID renders a structural identity string for the union: the sorted
// set of atomic String forms. The loop fixpoint engine compares these
// strings across iterations to detect convergence; data-flow-sensitive
// identity must use SameParentNodes instead, since GetID intentionally
// ignores parent-node sets.
func (u Union) GetID() string {
	parts := make([]string, len(u.Types))
	for i, a := range u.Types {
		parts[i] = a.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// String renders a debug form (not the end-user pretty-printer, which is
// the caller's concern per).
func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, a := range u.Types {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}

// Clone returns a deep-enough copy of u suitable for independent mutation
// of Types (the atomics themselves are treated as immutable values).
func (u Union) Clone() Union {
	cp := u
	cp.Types = append([]Atomic(nil), u.Types...)
	return cp
}
