package ttype

import (
	"sort"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// Hierarchy is the minimal class-graph query the combiner and comparator
// need from the populated Codebase: is `sub` a descendant of `super`,
// for the "A|B => A when B extends A" dominance rule and the analogous
// rule for interfaces. Implemented by internal/codebase.Codebase; kept
// as an interface here so ttype never imports codebase (codebase
// imports ttype, not the reverse).
type Hierarchy interface {
	// IsDescendant reports whether sub is super, or extends/implements
	// super directly or transitively.
	IsDescendant(sub, super interner.ID) bool
}

type combinerConfig struct {
	hierarchy Hierarchy
	overwriteEmptyArray bool
}

// CombineOpt configures a single Combine call.
type CombineOpt func(*combinerConfig)

// WithHierarchy supplies the class graph used for named-object and
// enum-case collapsing. Omit it (e.g. when combining types before
// population has finished) and those collapses are simply skipped.
func WithHierarchy(h Hierarchy) CombineOpt {
	return func(c *combinerConfig) { c.hierarchy = h }
}

// literalCap is the "more than 20 literal ints or strings collapse"
// threshold from pass 2.
const literalCap = 20

// combination is the accumulator built by pass 1 ("feature
// scrape"): a single walk that records everything pass 2 needs without
// yet making any deletion decisions.
type combination struct {
	vanillaMixed, anyMixed, nonnullMixed, truthyMixed, falsyMixed, fromLoopMixed bool

	// structural/value types bucketed by combinerKey; merged pointwise as
	// they're scraped (spec: "accumulated dict/vec/keyset structure").
	order []string // first-seen order of bucket keys, for deterministic emit
	byKey map[string]Atomic

	literalInts map[int64]struct{}
	literalIntsOrd []int64
	literalStrs map[interner.ID]struct{}
	literalStrsOrd []interner.ID

	enumCasesByEnum map[interner.ID]map[interner.ID]EnumLiteralCase
	enumCaseOrder map[interner.ID][]interner.ID
	enumFull map[interner.ID]Enum

	namedByName map[interner.ID]Named
	namedOrder []interner.ID

	hasVoid bool
	hasNull bool
}

func newCombination() *combination {
	return &combination{
		byKey: make(map[string]Atomic),
		literalInts: make(map[int64]struct{}),
		literalStrs: make(map[interner.ID]struct{}),
		enumCasesByEnum: make(map[interner.ID]map[interner.ID]EnumLiteralCase),
		enumCaseOrder: make(map[interner.ID][]interner.ID),
		enumFull: make(map[interner.ID]Enum),
		namedByName: make(map[interner.ID]Named),
	}
}

func (c *combination) remember(key string, a Atomic) {
	if _, ok := c.byKey[key]; !ok {
		c.order = append(c.order, key)
	}
	c.byKey[key] = a
}

// Combine reduces an unordered bag of atomics to the minimal equivalent
// union. len<=1 short-circuits (a single atomic is already minimal; an
// empty bag yields NothingUnion, since an empty union is never valid).
func Combine(atomics []Atomic, opts ...CombineOpt) Union {
	if len(atomics) == 0 {
		return NothingUnion()
	}
	if len(atomics) == 1 {
		return Union{Types: atomics}
	}

	cfg := &combinerConfig{}
	for _, o := range opts {
		o(cfg)
	}

	c := newCombination()
	for _, a := range atomics {
		scrape(a, c, cfg)
	}

	return Union{Types: emit(c, cfg)}
}

// scrape is pass 1: a single walk recording presence/accumulation facts
// without applying any dominance rule yet.
func scrape(a Atomic, c *combination, cfg *combinerConfig) {
	switch v := a.(type) {
	case simple:
		switch v.kind {
		case KMixed:
			c.vanillaMixed = true
			return
		case KMixedAny:
			c.anyMixed = true
			return
		case KNonnullMixed:
			c.nonnullMixed = true
			return
		case KTruthyMixed:
			c.truthyMixed = true
			return
		case KFalsyMixed:
			c.falsyMixed = true
			return
		case KMixedFromLoopIsset:
			c.fromLoopMixed = true
			return
		case KVoid:
			c.hasVoid = true
			return
		case KNothing:
			// assemble emits Nothing only when no other atomic remains.
			return
		case KNull:
			c.hasNull = true
			c.remember("simple:null", v)
			return
		}
		c.remember(combinerKey(v), v)

	case LiteralInt:
		if _, ok := c.literalInts[v.Value]; !ok {
			c.literalInts[v.Value] = struct{}{}
			c.literalIntsOrd = append(c.literalIntsOrd, v.Value)
		}

	case LiteralString:
		if _, ok := c.literalStrs[v.Value]; !ok {
			c.literalStrs[v.Value] = struct{}{}
			c.literalStrsOrd = append(c.literalStrsOrd, v.Value)
		}

	case StringWithFlags:
		key := "strflags"
		if existing, ok := c.byKey[key]; ok {
			ex := existing.(StringWithFlags)
			merged := StringWithFlags{
				IsTruthy: ex.IsTruthy && v.IsTruthy,
				IsNonEmpty: ex.IsNonEmpty && v.IsNonEmpty,
				IsNonSpecificLiteral: ex.IsNonSpecificLiteral || v.IsNonSpecificLiteral,
			}
			c.byKey[key] = merged
		} else {
			c.remember(key, v)
		}

	case Vec:
		key := "vec"
		if existing, ok := c.byKey[key]; ok {
			ex := existing.(Vec)
			merged := Vec{
				Elem: Combine(append(append([]Atomic(nil), ex.Elem.Types...), v.Elem.Types...)),
				KnownItems: mergeVecKnownItems(ex.KnownItems, v.KnownItems),
				NonEmpty: ex.NonEmpty && v.NonEmpty,
			}
			if merged.KnownItems == nil && cfg.overwriteEmptyArray {
				merged.KnownCount = nil
			}
			c.byKey[key] = merged
		} else {
			c.remember(key, v)
		}

	case Dict:
		key := "dict"
		if existing, ok := c.byKey[key]; ok {
			ex := existing.(Dict)
			merged := Dict{in: ex.in, NonEmpty: ex.NonEmpty && v.NonEmpty}
			merged.KnownItems = mergeDictKnownItems(ex.KnownItems, v.KnownItems)
			if ex.Params != nil && v.Params != nil {
				merged.Params = &DictParams{
					Key: Combine(append(append([]Atomic(nil), ex.Params.Key.Types...), v.Params.Key.Types...)),
					Value: Combine(append(append([]Atomic(nil), ex.Params.Value.Types...), v.Params.Value.Types...)),
				}
			} else if ex.Params != nil {
				merged.Params = ex.Params
			} else {
				merged.Params = v.Params
			}
			if ex.ShapeName != nil && v.ShapeName != nil && *ex.ShapeName == *v.ShapeName {
				merged.ShapeName = ex.ShapeName
			}
			c.byKey[key] = merged
		} else {
			c.remember(key, v)
		}

	case Keyset:
		key := "keyset"
		if existing, ok := c.byKey[key]; ok {
			ex := existing.(Keyset)
			c.byKey[key] = Keyset{Elem: Combine(append(append([]Atomic(nil), ex.Elem.Types...), v.Elem.Types...))}
		} else {
			c.remember(key, v)
		}

	case EnumLiteralCase:
		if c.enumCasesByEnum[v.Enum] == nil {
			c.enumCasesByEnum[v.Enum] = make(map[interner.ID]EnumLiteralCase)
		}
		if _, ok := c.enumCasesByEnum[v.Enum][v.Member]; !ok {
			c.enumCaseOrder[v.Enum] = append(c.enumCaseOrder[v.Enum], v.Member)
		}
		c.enumCasesByEnum[v.Enum][v.Member] = v

	case Enum:
		c.enumFull[v.Name] = v

	case Named:
		if existing, ok := c.namedByName[v.Name]; ok {
			// Merge type params pointwise (: "per-class generic
			// parameter accumulations merged pointwise by combining each
			// slot").
			merged := existing
			if len(existing.TypeParams) == len(v.TypeParams) {
				tp := make([]Union, len(existing.TypeParams))
				for i := range tp {
					tp[i] = Combine(append(append([]Atomic(nil), existing.TypeParams[i].Types...), v.TypeParams[i].Types...))
				}
				merged.TypeParams = tp
			}
			merged.IsThis = existing.IsThis && v.IsThis
			c.namedByName[v.Name] = merged
		} else {
			c.namedByName[v.Name] = v
			c.namedOrder = append(c.namedOrder, v.Name)
		}

	default:
		c.remember(combinerKey(a), a)
	}
}

// emit is pass 2+3: apply dominance rules, then emit in the documented
// order (structural first, literals, scalars, Nothing only if nothing
// else remains).
func emit(c *combination, cfg *combinerConfig) []Atomic {
	// Mixed* dominance (spec: "Any Mixed* dominates its specific kind").
	if c.anyMixed {
		return []Atomic{MixedAny}
	}
	if c.vanillaMixed {
		return []Atomic{Mixed}
	}
	if c.falsyMixed {
		if len(c.order) > 0 || len(c.namedOrder) > 0 || len(c.literalIntsOrd) > 0 || len(c.literalStrsOrd) > 0 {
			return []Atomic{Mixed}
		}
		return []Atomic{FalsyMixed}
	}
	if c.truthyMixed {
		if len(c.order) > 0 || len(c.namedOrder) > 0 || len(c.literalIntsOrd) > 0 || len(c.literalStrsOrd) > 0 {
			return []Atomic{Mixed}
		}
		return []Atomic{TruthyMixed}
	}
	if c.nonnullMixed {
		if c.hasNull {
			return []Atomic{Mixed}
		}
		return []Atomic{NonnullMixed}
	}
	if c.fromLoopMixed {
		return []Atomic{MixedFromLoopIsset}
	}

	// Named object / enum collapse (spec: "if class B extends A, A|B =>
	// A", applied symmetrically for interfaces/implementations).
	collapseNamed(c, cfg)
	collapseEnumCases(c)

	// Scalar widenings (pass 2 bullet list), applied on the
	// bucket-by-key structural set before literal folding.
	applyScalarWidenings(c)

	// Literal folding: cap at 20 distinct values, else collapse.
	foldLiterals(c)

	if c.hasVoid {
		if c.hasNull {
			// "void" is absorbed into null when both present.
		} else {
			c.remember("simple:void", simple{KVoid, "void"})
		}
	}

	return assemble(c)
}

func collapseNamed(c *combination, cfg *combinerConfig) {
	if cfg.hierarchy == nil || len(c.namedOrder) < 2 {
		return
	}
	keep := make(map[interner.ID]bool, len(c.namedOrder))
	for _, id := range c.namedOrder {
		keep[id] = true
	}
	for _, a := range c.namedOrder {
		if !keep[a] {
			continue
		}
		for _, b := range c.namedOrder {
			if a == b || !keep[b] {
				continue
			}
			// b is redundant if a is an ancestor of b (b extends/implements a).
			if cfg.hierarchy.IsDescendant(b, a) {
				keep[b] = false
			}
		}
	}
	newOrder := c.namedOrder[:0]
	for _, id := range c.namedOrder {
		if keep[id] {
			newOrder = append(newOrder, id)
		}
	}
	c.namedOrder = newOrder
}

func collapseEnumCases(c *combination) {
	for enumID, cases := range c.enumCasesByEnum {
		if full, ok := c.enumFull[enumID]; ok {
			_ = full
			delete(c.enumCasesByEnum, enumID)
			continue
		}
		_ = cases
	}
}

func applyScalarWidenings(c *combination) {
	has := func(k string) bool { _, ok := c.byKey[k]; return ok }
	drop := func(ks ...string) {
		for _, k := range ks {
			delete(c.byKey, k)
		}
	}

	trueP, falseP := has("simple:true"), has("simple:false")
	if trueP && falseP {
		drop("simple:true", "simple:false")
		c.remember("simple:bool", simple{KBool, "bool"})
	}
	if (trueP || falseP) && has("simple:bool") {
		drop("simple:true", "simple:false")
	}

	str, i, f, b := has("simple:string"), has("simple:int"), has("simple:float"), has("simple:bool")
	if str && i && f && b {
		drop("simple:string", "simple:int", "simple:float", "simple:bool")
		c.remember("simple:scalar", simple{KScalar, "scalar"})
		return
	}
	if str && i {
		drop("simple:string", "simple:int")
		c.remember("simple:arraykey", simple{KArraykey, "arraykey"})
	}
	if has("simple:int") && f {
		drop("simple:int", "simple:float")
		c.remember("simple:num", simple{KNum, "num"})
	}
}

func foldLiterals(c *combination) {
	if len(c.literalIntsOrd) > literalCap {
		c.remember("simple:int", simple{KInt, "int"})
		c.literalIntsOrd = nil
	}
	if len(c.literalStrsOrd) > literalCap {
		c.remember("strflags", StringWithFlags{IsNonSpecificLiteral: true})
		c.literalStrsOrd = nil
	}
}

func assemble(c *combination) []Atomic {
	var structural, literals, scalars []Atomic

	emitted := make(map[string]bool, len(c.order))
	for _, key := range c.order {
		// Keys dropped by a widening stay in c.order, and a key re-added
		// after a drop appears there twice; emit each live key once.
		a, ok := c.byKey[key]
		if !ok || emitted[key] {
			continue
		}
		emitted[key] = true
		switch a.Kind() {
		case KVec, KDict, KKeyset:
			structural = append(structural, a)
		case KLiteralInt, KLiteralString, KStringWithFlags:
			literals = append(literals, a)
		default:
			scalars = append(scalars, a)
		}
	}
	for _, name := range c.namedOrder {
		structural = append(structural, c.namedByName[name])
	}
	for enumID, cases := range c.enumCasesByEnum {
		ids := c.enumCaseOrder[enumID]
		for _, m := range ids {
			if _, ok := cases[m]; ok {
				structural = append(structural, cases[m])
			}
		}
	}
	for enumID, full := range c.enumFull {
		_ = enumID
		structural = append(structural, full)
	}

	for _, v := range c.literalIntsOrd {
		literals = append(literals, LiteralInt{Value: v})
	}
	for _, s := range c.literalStrsOrd {
		literals = append(literals, LiteralString{Value: s})
	}

	out := make([]Atomic, 0, len(structural)+len(literals)+len(scalars)+1)
	out = append(out, structural...)
	out = append(out, literals...)
	out = append(out, scalars...)

	if len(out) == 0 {
		return []Atomic{Nothing}
	}
	return out
}

// stableSortStrings is a small helper kept local to avoid an unused
// import when callers don't need determinism beyond insertion order.
func stableSortStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
