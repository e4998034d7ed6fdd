package reconcile

import "github.com/slackhq/hakana-sub001/internal/ttype"

// Status is the outcome of applying one assertion to one variable's
// union ("IsType(Null) applied to int|null yields null with
// status Ok; applied to int yields status Empty").
type Status int

const (
	Ok Status = iota
	Redundant
	Empty
)

// Hierarchy is the subset of ttype.Hierarchy/ClassResolver the
// reconciler needs to decide IsType/IsNotType containment; declared
// locally so this package doesn't need to import codebase.
type Hierarchy = ttype.Hierarchy

// Result is the reconciled union plus what happened, for the caller
// (the expression/statement analyzer) to decide whether to emit a
// RedundantTypeComparison or ImpossibleTypeComparison issue.
type Result struct {
	Union ttype.Union
	Status Status
}

// ApplyAssertion narrows u according to one Assertion .
func ApplyAssertion(u ttype.Union, a Assertion, hierarchy Hierarchy) Result {
	switch a.Kind {
	case Truthy:
		return applyTruthy(u)
	case Falsy:
		return applyFalsy(u)
	case IsType:
		return applyIsType(u, a.Atomic, hierarchy)
	case IsNotType:
		return applyIsNotType(u, a.Atomic, hierarchy)
	case IsEqual:
		return applyIsType(u, a.Atomic, hierarchy)
	case IsNotEqual:
		return applyIsNotType(u, a.Atomic, hierarchy)
	case IsIsset:
		return applyIsset(u)
	case IsNotIsset:
		return Result{Union: ttype.NullableOf(ttype.NothingUnion()), Status: Ok}
	default:
		return Result{Union: u, Status: Ok}
	}
}

func applyTruthy(u ttype.Union) Result {
	var kept []ttype.Atomic
	for _, a := range u.Types {
		if isFalsyOnly(a) {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return Result{Union: ttype.NothingUnion(), Status: Empty}
	}
	status := Ok
	if len(kept) == len(u.Types) && !u.HasNull() {
		status = Redundant
	}
	return Result{Union: ttype.New(kept...).WithParents(u), Status: status}
}

func applyFalsy(u ttype.Union) Result {
	var kept []ttype.Atomic
	for _, a := range u.Types {
		if isFalsyCompatible(a) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return Result{Union: ttype.NothingUnion(), Status: Empty}
	}
	return Result{Union: ttype.New(kept...).WithParents(u), Status: Ok}
}

func isFalsyOnly(a ttype.Atomic) bool {
	switch v := a.(type) {
	case ttype.LiteralInt:
		return v.Value == 0
	default:
		return a.Kind() == ttype.KNull || a.Kind() == ttype.KVoid
	}
}

func isFalsyCompatible(a ttype.Atomic) bool {
	switch a.Kind() {
	case ttype.KNull, ttype.KVoid, ttype.KMixed, ttype.KMixedAny, ttype.KFalsyMixed:
		return true
	default:
		if v, ok := a.(ttype.LiteralInt); ok {
			return v.Value == 0
		}
		return false
	}
}

func applyIsset(u ttype.Union) Result {
	var kept []ttype.Atomic
	for _, a := range u.Types {
		if a.Kind() == ttype.KNull || a.Kind() == ttype.KVoid {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return Result{Union: ttype.NothingUnion(), Status: Empty}
	}
	status := Ok
	if len(kept) == len(u.Types) {
		status = Redundant
	}
	return Result{Union: ttype.New(kept...).WithParents(u), Status: status}
}

func applyIsType(u ttype.Union, target ttype.Atomic, hierarchy Hierarchy) Result {
	var kept []ttype.Atomic
	for _, a := range u.Types {
		if compatibleKind(a, target, hierarchy) {
			kept = append(kept, narrowTo(a, target))
		}
	}
	if len(kept) == 0 {
		return Result{Union: ttype.NothingUnion(), Status: Empty}
	}
	status := Ok
	if len(kept) == len(u.Types) && u.IsSingle() {
		status = Redundant
	}
	return Result{Union: ttype.New(kept...).WithParents(u), Status: status}
}

func applyIsNotType(u ttype.Union, target ttype.Atomic, hierarchy Hierarchy) Result {
	var kept []ttype.Atomic
	for _, a := range u.Types {
		if !compatibleKind(a, target, hierarchy) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return Result{Union: ttype.NothingUnion(), Status: Empty}
	}
	status := Ok
	if len(kept) == len(u.Types) {
		status = Redundant
	}
	return Result{Union: ttype.New(kept...).WithParents(u), Status: status}
}

// compatibleKind decides whether atomic a could be narrowed to/from
// target: same kind family, or (for named objects) a descendant
// relationship in either direction.
func compatibleKind(a, target ttype.Atomic, hierarchy Hierarchy) bool {
	if a.Kind() == target.Kind() {
		return true
	}
	an, aok := a.(ttype.Named)
	tn, tok := target.(ttype.Named)
	if aok && tok && hierarchy != nil {
		return hierarchy.IsDescendant(an.Name, tn.Name) || hierarchy.IsDescendant(tn.Name, an.Name)
	}
	switch target.Kind() {
	case ttype.KNull:
		return a.Kind() == ttype.KNull
	case ttype.KArraykey:
		return a.Kind() == ttype.KInt || a.Kind() == ttype.KString
	}
	return a.Kind() == ttype.KMixed || a.Kind() == ttype.KMixedAny
}

func narrowTo(a, target ttype.Atomic) ttype.Atomic {
	if a.Kind() == ttype.KMixed || a.Kind() == ttype.KMixedAny {
		return target
	}
	if _, aok := a.(ttype.Named); aok {
		if tn, tok := target.(ttype.Named); tok {
			return tn
		}
	}
	return a
}
