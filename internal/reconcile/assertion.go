// Package reconcile implements the assertion/reconciler (component G,
//): it maps boolean conditions into narrow/widen assertions
// and applies them to a scope context.
package reconcile

import "github.com/slackhq/hakana-sub001/internal/ttype"

// AssertionKind enumerates assertion vocabulary.
type AssertionKind int

const (
	Truthy AssertionKind = iota
	Falsy
	IsType
	IsNotType
	IsEqual
	IsNotEqual
	IsIsset
	IsNotIsset
	HasNonnullEntryForKey
	DoesNotHaveNonnullEntryForKey
	NonEmptyCountable
	RemoveTaints
	IgnoreTaints
	DontIgnoreTaints
)

// Assertion is one conjunct applied to a single variable id.
type Assertion struct {
	Kind AssertionKind

	// Atomic is populated for IsType/IsNotType/IsEqual/IsNotEqual.
	Atomic ttype.Atomic

	// Key is populated for HasNonnullEntryForKey/DoesNotHaveNonnullEntryForKey.
	Key ttype.DictKey

	// Count is populated for NonEmptyCountable(n).
	Count int

	// Taints is populated for RemoveTaints.
	Taints []string
}

// Conjunction is an AND of Assertions; Disjunction is an OR of
// Conjunctions — together they form the "disjunction of conjunctions of
// assertions" maps each var-id to.
type Conjunction []Assertion
type Disjunction []Conjunction

// AssertionMap is the reconciler's output for one boolean expression:
// var-id -> disjunction of conjunctions .
type AssertionMap map[string]Disjunction

func single(kind AssertionKind) Disjunction {
	return Disjunction{{{Kind: kind}}}
}

func TruthyOf(varID string) AssertionMap { return AssertionMap{varID: single(Truthy)} }
func FalsyOf(varID string) AssertionMap { return AssertionMap{varID: single(Falsy)} }
func IssetOf(varID string) AssertionMap { return AssertionMap{varID: single(IsIsset)} }
func NotIssetOf(varID string) AssertionMap { return AssertionMap{varID: single(IsNotIsset)} }

func IsTypeOf(varID string, a ttype.Atomic) AssertionMap {
	return AssertionMap{varID: Disjunction{{{Kind: IsType, Atomic: a}}}}
}

func IsNotTypeOf(varID string, a ttype.Atomic) AssertionMap {
	return AssertionMap{varID: Disjunction{{{Kind: IsNotType, Atomic: a}}}}
}

// Negate flips every assertion kind to its complement, used when a
// condition appears in an `else` branch or behind a `!` (
// "Clauses are ANDed with the branch's negation/affirmation").
func Negate(m AssertionMap) AssertionMap {
	out := make(AssertionMap, len(m))
	for varID, disj := range m {
		var negConj Conjunction
		for _, conj := range disj {
			for _, a := range conj {
				negConj = append(negConj, negateOne(a))
			}
		}
		out[varID] = Disjunction{negConj}
	}
	return out
}

func negateOne(a Assertion) Assertion {
	switch a.Kind {
	case Truthy:
		return Assertion{Kind: Falsy}
	case Falsy:
		return Assertion{Kind: Truthy}
	case IsType:
		return Assertion{Kind: IsNotType, Atomic: a.Atomic}
	case IsNotType:
		return Assertion{Kind: IsType, Atomic: a.Atomic}
	case IsEqual:
		return Assertion{Kind: IsNotEqual, Atomic: a.Atomic}
	case IsNotEqual:
		return Assertion{Kind: IsEqual, Atomic: a.Atomic}
	case IsIsset:
		return Assertion{Kind: IsNotIsset}
	case IsNotIsset:
		return Assertion{Kind: IsIsset}
	case HasNonnullEntryForKey:
		return Assertion{Kind: DoesNotHaveNonnullEntryForKey, Key: a.Key}
	case DoesNotHaveNonnullEntryForKey:
		return Assertion{Kind: HasNonnullEntryForKey, Key: a.Key}
	case IgnoreTaints:
		return Assertion{Kind: DontIgnoreTaints}
	case DontIgnoreTaints:
		return Assertion{Kind: IgnoreTaints}
	default:
		return a
	}
}
