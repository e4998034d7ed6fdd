// Package ttype implements the atomic/union type algebra: the sum type
// of atomic type constructors, the non-empty union that is the value
// model of every expression, the combiner that reduces a bag of atomics
// to its minimal union, the subtype comparator, and the alias/template
// expander.
package ttype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/interner"
)

// Atomic is a single, non-union, non-nullable type constructor. Every
// concrete type in this package implements this interface.
type Atomic interface {
	// Kind classifies the atomic for combiner/comparator dispatch without
	// repeated type switches everywhere.
	Kind() Kind
	// String renders a debug form; this is not the same as a caller-owned
	// end-user pretty-printer.
	String() string
}

// Kind tags the atomic's dynamic type cheaply.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KString
	KBool
	KTrue
	KFalse
	KNum
	KArraykey
	KScalar
	KNull
	KVoid
	KNothing

	KLiteralInt
	KLiteralString
	KStringWithFlags

	KMixed
	KMixedAny
	KNonnullMixed
	KTruthyMixed
	KFalsyMixed
	KMixedFromLoopIsset

	KVec
	KDict
	KKeyset

	KNamed
	KObject
	KEnum
	KEnumLiteralCase

	KClosure
	KClosureAlias

	KGenericParam

	KTypeAlias
	KClassname
	KTypename
	KMemberReference
	KClassTypeConstant

	KRegexPattern
	KAwaitable
	KReference
)

// ---- plain scalars ("Scalars") ----

type simple struct {
	kind Kind
	name string
}

func (s simple) Kind() Kind { return s.kind }
func (s simple) String() string { return s.name }

var (
	Int Atomic = simple{KInt, "int"}
	Float Atomic = simple{KFloat, "float"}
	String Atomic = simple{KString, "string"}
	Bool Atomic = simple{KBool, "bool"}
	True Atomic = simple{KTrue, "true"}
	False Atomic = simple{KFalse, "false"}
	Num Atomic = simple{KNum, "num"}
	Arraykey Atomic = simple{KArraykey, "arraykey"}
	Scalar Atomic = simple{KScalar, "scalar"}
	Null Atomic = simple{KNull, "null"}
	Void Atomic = simple{KVoid, "void"}
	Nothing Atomic = simple{KNothing, "nothing"}
	Object Atomic = simple{KObject, "object"}
)

// combinerKey is the string bucket key the combiner's feature-scrape pass
// (pass 1) uses to merge like atomics pointwise. Structural
// atomics (Vec/Dict/Keyset/Named/...) override this with a key that
// captures their identity (e.g. the class name) so distinct instances are
// merged rather than deduplicated away.
func combinerKey(a Atomic) string {
	switch v := a.(type) {
	case simple:
		return "simple:" + v.name
	case Vec:
		return "vec"
	case Dict:
		return "dict"
	case Keyset:
		return "keyset"
	case Named:
		return "named:" + fmt.Sprint(uint32(v.Name))
	case Enum:
		return "enum:" + fmt.Sprint(uint32(v.Name))
	case EnumLiteralCase:
		return "enumcase:" + fmt.Sprint(uint32(v.Enum)) + "::" + fmt.Sprint(uint32(v.Member))
	case Closure:
		return "closure"
	case LiteralInt:
		return "litint"
	case LiteralString:
		return "litstr"
	case StringWithFlags:
		return "strflags"
	default:
		return fmt.Sprintf("other:%T", a)
	}
}

// dataflowParents is an ordered, deduplicated-by-id set of data-flow
// parent nodes, per ("must be deduplicated by node id to prevent
// quadratic blow-up over loops").
type dataflowParents struct {
	order []dataflow.NodeID
	seen map[dataflow.NodeID]struct{}
}

func newDataflowParents() *dataflowParents {
	return &dataflowParents{seen: make(map[dataflow.NodeID]struct{})}
}

func (p *dataflowParents) add(id dataflow.NodeID) {
	if p == nil {
		return
	}
	if _, ok := p.seen[id]; ok {
		return
	}
	p.seen[id] = struct{}{}
	p.order = append(p.order, id)
}

func (p *dataflowParents) addAll(o *dataflowParents) {
	if p == nil || o == nil {
		return
	}
	for _, id := range o.order {
		p.add(id)
	}
}

func (p *dataflowParents) ids() []dataflow.NodeID {
	if p == nil {
		return nil
	}
	return p.order
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func internedOrQuestion(in *interner.Interner, id interner.ID) string {
	if in == nil {
		return "?"
	}
	return in.Lookup(id)
}

func joinUnions(us []Union, sep string) string {
	parts := make([]string, len(us))
	for i, u := range us {
		parts[i] = u.String()
	}
	return strings.Join(parts, sep)
}
