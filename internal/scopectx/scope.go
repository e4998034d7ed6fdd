// Package scopectx implements the mutable per-analysis frame the
// expression and statement analyzers thread through a function body.
// One ScopeContext exists per concurrently-running analysis worker;
// each worker owns its ScopeContext.
package scopectx

import (
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// VarID is a variable-like path: `$x`, `$o->p`, `$a['k']` .
// Kept as a string rather than interner.ID since these are compound,
// synthesized keys rather than source identifiers.
type VarID string

// FunctionContext names the calling class and functionlike the current
// analysis is running inside of ("function_context").
type FunctionContext struct {
	ClassID interner.ID
	MethodID interner.ID
}

// FinallyScope accumulates types observed on every path that enters a
// given try's finally block; it's shared (by pointer) across the try
// body, every catch, and the finally block itself (
// "finally_scope (shared, mutable)").
type FinallyScope struct {
	VarsInScope map[VarID]ttype.Union
}

func NewFinallyScope() *FinallyScope {
	return &FinallyScope{VarsInScope: make(map[VarID]ttype.Union)}
}

// Merge folds another scope's vars into the finally accumulator,
// combining types for keys seen on more than one path.
func (fs *FinallyScope) Merge(vars map[VarID]ttype.Union) {
	for id, u := range vars {
		if existing, ok := fs.VarsInScope[id]; ok {
			fs.VarsInScope[id] = ttype.Combine(append(append([]ttype.Atomic(nil), existing.Types...), u.Types...))
		} else {
			fs.VarsInScope[id] = u
		}
	}
}

// ScopeContext is the mutable per-analysis frame .
type ScopeContext struct {
	VarsInScope map[VarID]*ttype.Union

	PossiblyAssignedVarIDs map[VarID]bool
	AssignedVarIDs map[VarID]bool
	ReferencedVarIDs map[VarID]bool

	Clauses []Clause

	InsideAssignment bool
	InsideConditional bool
	InsideLoop bool
	InsideIsset bool
	InsideGeneralUse bool
	InsideUnset bool
	InsideReturn bool

	HasReturned bool
	AllowTaints bool

	ProtectedVarIDs map[VarID]bool
	FinallyScope *FinallyScope

	FunctionContext FunctionContext
}

// Clause is one disjunctive clause describing what is known from the
// path taken. Each entry maps a variable id to
// the set of assertion strings that must ALL hold for that variable
// along this clause (an "or" of possibilities is represented by more
// than one entry in Possibilities); Clauses as a whole is an "and" of
// these.
type Clause struct {
	// Possibilities maps a variable id to the alternative assertion
	// strings it could satisfy (OR within the variable, AND across
	// variables, matching Psalm/Hakana's clause representation).
	Possibilities map[VarID][]string
	// Generated marks a clause synthesized by reconciliation rather than
	// parsed directly off an `if` condition; generated clauses are
	// dropped first when simplifying at branch merge points.
	Generated bool
	Redundant bool
}

func New(fc FunctionContext) *ScopeContext {
	return &ScopeContext{
		VarsInScope: make(map[VarID]*ttype.Union),
		PossiblyAssignedVarIDs: make(map[VarID]bool),
		AssignedVarIDs: make(map[VarID]bool),
		ReferencedVarIDs: make(map[VarID]bool),
		ProtectedVarIDs: make(map[VarID]bool),
		FunctionContext: fc,
	}
}

// Clone returns a deep-enough copy for branching into a sub-path: branch
// merge needs an independent copy per branch before merging the results
// back. VarsInScope's Union values are copy-on-write so only the map
// structure, not every Union, needs duplicating.
func (s *ScopeContext) Clone() *ScopeContext {
	out := &ScopeContext{
		VarsInScope: make(map[VarID]*ttype.Union, len(s.VarsInScope)),
		PossiblyAssignedVarIDs: cloneSet(s.PossiblyAssignedVarIDs),
		AssignedVarIDs: cloneSet(s.AssignedVarIDs),
		ReferencedVarIDs: cloneSet(s.ReferencedVarIDs),
		ProtectedVarIDs: s.ProtectedVarIDs, // shared: pins never change mid-function
		Clauses: append([]Clause(nil), s.Clauses...),
		InsideAssignment: s.InsideAssignment,
		InsideConditional: s.InsideConditional,
		InsideLoop: s.InsideLoop,
		InsideIsset: s.InsideIsset,
		InsideGeneralUse: s.InsideGeneralUse,
		InsideUnset: s.InsideUnset,
		InsideReturn: s.InsideReturn,
		HasReturned: s.HasReturned,
		AllowTaints: s.AllowTaints,
		FinallyScope: s.FinallyScope,
		FunctionContext: s.FunctionContext,
	}
	for k, v := range s.VarsInScope {
		clone := v.Clone()
		out.VarsInScope[k] = &clone
	}
	return out
}

func cloneSet(m map[VarID]bool) map[VarID]bool {
	out := make(map[VarID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *ScopeContext) Get(id VarID) (ttype.Union, bool) {
	u, ok := s.VarsInScope[id]
	if !ok {
		return ttype.Union{}, false
	}
	return *u, true
}

func (s *ScopeContext) Set(id VarID, u ttype.Union) {
	s.VarsInScope[id] = &u
	s.AssignedVarIDs[id] = true
	s.PossiblyAssignedVarIDs[id] = true
	if s.FinallyScope != nil {
		s.FinallyScope.Merge(map[VarID]ttype.Union{id: u})
	}
}

func (s *ScopeContext) Reference(id VarID) {
	s.ReferencedVarIDs[id] = true
}

// Remove deletes a variable entry, e.g. on `unset($x)`.
func (s *ScopeContext) Remove(id VarID) {
	delete(s.VarsInScope, id)
}

// MergeBranch merges another branch's ending state into s following an
// if/else : variables present (with possibly different
// types) on both sides combine; variables assigned on only one
// non-protected branch become possibly-undefined (dropped) rather than
// leaking a type that only held on one path, unless they're pinned in
// ProtectedVarIDs, in which case the pre-branch type is kept as a
// fallback.
func (s *ScopeContext) MergeBranch(pre *ScopeContext, other *ScopeContext) *ScopeContext {
	merged := New(s.FunctionContext)
	merged.ProtectedVarIDs = s.ProtectedVarIDs
	merged.FinallyScope = s.FinallyScope

	seen := make(map[VarID]bool)
	for id, u := range s.VarsInScope {
		seen[id] = true
		if ou, ok := other.VarsInScope[id]; ok {
			combined := ttype.Combine(append(append([]ttype.Atomic(nil), u.Types...), ou.Types...))
			merged.VarsInScope[id] = &combined
		} else if s.ProtectedVarIDs[id] {
			if pu, ok := pre.VarsInScope[id]; ok {
				c := pu.Clone()
				merged.VarsInScope[id] = &c
			}
		}
	}
	for id, ou := range other.VarsInScope {
		if seen[id] {
			continue
		}
		if s.ProtectedVarIDs[id] {
			if pu, ok := pre.VarsInScope[id]; ok {
				c := pu.Clone()
				merged.VarsInScope[id] = &c
			}
		}
		_ = ou
	}

	for id := range s.AssignedVarIDs {
		merged.AssignedVarIDs[id] = true
	}
	for id := range other.AssignedVarIDs {
		merged.AssignedVarIDs[id] = true
	}
	merged.HasReturned = s.HasReturned && other.HasReturned
	return merged
}
