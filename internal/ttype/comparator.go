package ttype

import "github.com/slackhq/hakana-sub001/internal/interner"

// ClassResolver is the richer query the comparator needs beyond Hierarchy
// (component D's Codebase implements both): template variance per slot,
// used by step 6 of is_contained_by.
type ClassResolver interface {
	Hierarchy
	// TemplateVariance returns the declared variance of the paramIndex'th
	// template slot of the named classlike.
	TemplateVariance(name interner.ID, paramIndex int) Variance
}

// Result accumulates the coercion/inference side-channel 
// describes for is_contained_by.
type Result struct {
	TypeCoerced bool
	TypeCoercedFromNestedMixed bool
	TypeCoercedFromNestedAny bool
	TypeCoercedFromAsMixed bool
	UpcastedAwaitable bool
	ReplacementUnion *Union

	// TemplateLowerBounds/UpperBounds record inference bounds discovered
	// while comparing template parameters.
	TemplateLowerBounds map[string]Union
	TemplateUpperBounds map[string]Union
}

func (r *Result) addLowerBound(name string, u Union) {
	if r.TemplateLowerBounds == nil {
		r.TemplateLowerBounds = make(map[string]Union)
	}
	if existing, ok := r.TemplateLowerBounds[name]; ok {
		r.TemplateLowerBounds[name] = Combine(append(append([]Atomic(nil), existing.Types...), u.Types...))
	} else {
		r.TemplateLowerBounds[name] = u
	}
}

func (r *Result) addUpperBound(name string, u Union) {
	if r.TemplateUpperBounds == nil {
		r.TemplateUpperBounds = make(map[string]Union)
	}
	r.TemplateUpperBounds[name] = u
}

// IsUnionContainedBy reports whether every atomic of input is contained
// by some atomic of container (: "union containment is 'every
// input atomic is contained by some container atomic'").
func IsUnionContainedBy(input, container Union, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if result == nil {
		result = &Result{}
	}
	if input.HasNull() && !container.HasNull() && !hasNullableTemplate(container) {
		// Still attempt per-atomic containment for the non-null members;
		// Null's own rule (step 10) decides the null member itself.
	}
	ok := true
	for _, inAtomic := range input.Types {
		if !isAtomicContainedByAny(inAtomic, container.Types, allowInterfaceEquality, result, resolver) {
			ok = false
		}
	}
	return ok
}

func hasNullableTemplate(u Union) bool {
	for _, a := range u.Types {
		if g, isG := a.(GenericParam); isG && g.AsType.HasNull() {
			return true
		}
	}
	return false
}

func isAtomicContainedByAny(input Atomic, containers []Atomic, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	for _, c := range containers {
		if IsContainedBy(input, c, allowInterfaceEquality, result, resolver) {
			return true
		}
	}
	// Record coercion reasons even on overall failure, matching the
	// "sets flags even on a false return" behavior of step 2.
	for _, c := range containers {
		IsContainedBy(input, c, allowInterfaceEquality, result, resolver)
	}
	return false
}

// IsContainedBy implements per-atomic-pair algorithm.
func IsContainedBy(input, container Atomic, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if result == nil {
		result = &Result{}
	}

	// Step 1: identity and Mixed/Nothing/Placeholder shortcuts.
	if input.Kind() == container.Kind() && simpleIdentical(input, container) {
		return true
	}
	if container.Kind() == KMixed || container.Kind() == KMixedAny {
		return true
	}
	if input.Kind() == KNothing {
		return true
	}

	// Step 2: any-mixed input coerces and fails containment.
	if input.Kind() == KMixedAny {
		result.TypeCoerced = true
		result.TypeCoercedFromAsMixed = true
		return false
	}
	if input.Kind() == KMixed || input.Kind() == KNonnullMixed || input.Kind() == KTruthyMixed || input.Kind() == KFalsyMixed || input.Kind() == KMixedFromLoopIsset {
		result.TypeCoerced = true
		result.TypeCoercedFromNestedMixed = true
		return false
	}

	// Step 3: scalars.
	if ok, handled := scalarContainedBy(input, container, result); handled {
		return ok
	}

	// Step 4: closures.
	if inC, isInC := input.(Closure); isInC {
		if contC, isContC := container.(Closure); isContC {
			return closureContainedBy(inC, contC, allowInterfaceEquality, result, resolver)
		}
		return false
	}

	// Step 5: collections.
	if ok, handled := collectionContainedBy(input, container, allowInterfaceEquality, result, resolver); handled {
		return ok
	}

	// Step 7: container widening (Dict/Vec/Keyset <: HH\Container/KeyedContainer).
	if ok, handled := containerWideningContainedBy(input, container, result); handled {
		return ok
	}

	// Step 6: named objects.
	if inN, isInN := input.(Named); isInN {
		if contN, isContN := container.(Named); isContN {
			return namedContainedBy(inN, contN, allowInterfaceEquality, result, resolver)
		}
	}
	if inE, isInE := input.(Enum); isInE {
		if contN, isContN := container.(Named); isContN {
			return resolver != nil && resolver.IsDescendant(inE.Name, contN.Name)
		}
	}
	if inC, isInC := input.(EnumLiteralCase); isInC {
		switch cont := container.(type) {
		case Enum:
			return inC.Enum == cont.Name
		case EnumLiteralCase:
			return inC.Enum == cont.Enum && inC.Member == cont.Member
		}
	}
	if container.Kind() == KObject {
		switch input.(type) {
		case Named, Enum, EnumLiteralCase, Closure:
			return true
		}
	}

	// Step 8: template parameters compare via their upper bound.
	if inG, isInG := input.(GenericParam); isInG {
		if IsUnionContainedBy(inG.AsType, Union{Types: []Atomic{container}}, allowInterfaceEquality, result, resolver) {
			return true
		}
	}
	if contG, isContG := container.(GenericParam); isContG {
		result.addUpperBound(containerTemplateKey(contG), Union{Types: []Atomic{input}})
		return IsUnionContainedBy(Union{Types: []Atomic{input}}, contG.AsType, allowInterfaceEquality, result, resolver)
	}

	// Step 9: type aliases — nominal equality on the head, else expand.
	if inA, isInA := input.(TypeAlias); isInA {
		if contA, isContA := container.(TypeAlias); isContA && inA.Name == contA.Name {
			return typeParamsContainedBy(inA.TypeParams, contA.TypeParams, Invariant, allowInterfaceEquality, result, resolver)
		}
		return IsUnionContainedBy(inA.AsType, Union{Types: []Atomic{container}}, allowInterfaceEquality, result, resolver)
	}
	if contA, isContA := container.(TypeAlias); isContA {
		return IsUnionContainedBy(Union{Types: []Atomic{input}}, contA.AsType, allowInterfaceEquality, result, resolver)
	}

	// Step 10: null.
	if input.Kind() == KNull {
		if container.Kind() == KNull {
			return true
		}
		if g, isG := container.(GenericParam); isG {
			return g.AsType.HasNull()
		}
		return false
	}

	return false
}

func simpleIdentical(a, b Atomic) bool {
	sa, aok := a.(simple)
	sb, bok := b.(simple)
	if aok && bok {
		return sa.kind == sb.kind
	}
	switch a.(type) {
	case Vec, Dict, Keyset, Named, Closure, TypeAlias, Classname, Typename, ClassTypeConstant, GenericParam, Awaitable:
		// These hold slices, maps or unions, which == cannot compare.
		return false
	}
	return a == b
}

func containerTemplateKey(g GenericParam) string {
	return g.DefiningEntity + "::" + g.String()
}

// scalarContainedBy implements step 3. handled=false means the
// pair isn't a scalar pair and the caller should continue to later steps.
func scalarContainedBy(input, container Atomic, result *Result) (ok bool, handled bool) {
	isScalarKind := func(k Kind) bool {
		switch k {
		case KInt, KFloat, KString, KBool, KTrue, KFalse, KNum, KArraykey, KScalar, KVoid,
			KLiteralInt, KLiteralString, KStringWithFlags:
			return true
		}
		return false
	}
	if !isScalarKind(input.Kind()) {
		return false, false
	}

	switch c := container.(type) {
	case simple:
		switch c.kind {
		case KScalar:
			return isScalarKind(input.Kind()), true
		case KArraykey:
			switch input.Kind() {
			case KInt, KString, KLiteralInt, KLiteralString, KStringWithFlags, KArraykey:
				return true, true
			}
			return false, true
		case KNum:
			switch input.Kind() {
			case KInt, KFloat, KLiteralInt, KNum:
				return true, true
			}
			return false, true
		case KInt:
			switch v := input.(type) {
			case LiteralInt:
				_ = v
				return true, true
			case simple:
				return v.kind == KInt, true
			}
			return false, true
		case KFloat:
			_, isSimple := input.(simple)
			if isSimple {
				return input.(simple).kind == KFloat, true
			}
			return false, true
		case KString:
			switch input.(type) {
			case LiteralString, StringWithFlags:
				return true, true
			case simple:
				return input.(simple).kind == KString, true
			}
			return false, true
		case KBool:
			switch input.Kind() {
			case KBool, KTrue, KFalse:
				return true, true
			}
			return false, true
		case KTrue:
			return input.Kind() == KTrue, true
		case KFalse:
			return input.Kind() == KFalse, true
		}

	case StringWithFlags:
		switch v := input.(type) {
		case StringWithFlags:
			return c.widens(v), true
		case LiteralString:
			return true, true
		}
		return false, true

	case LiteralInt:
		if v, isLit := input.(LiteralInt); isLit {
			return v.Value == c.Value, true
		}
		return false, true

	case LiteralString:
		if v, isLit := input.(LiteralString); isLit {
			return v.Value == c.Value, true
		}
		return false, true
	}

	return false, false
}

func closureContainedBy(input, container Closure, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	// Parameter contravariance by position; missing optional params OK.
	for i, cp := range container.Params {
		if i >= len(input.Params) {
			if !cp.Optional {
				return false
			}
			continue
		}
		ip := input.Params[i]
		// contravariant: container's param type must be contained by
		// input's param type (caller supplies a wider-accepting fn).
		if !IsUnionContainedBy(cp.Type, ip.Type, allowInterfaceEquality, result, resolver) {
			return false
		}
	}
	// Return covariance.
	if input.Return != nil && container.Return != nil {
		if !IsUnionContainedBy(*input.Return, *container.Return, allowInterfaceEquality, result, resolver) {
			return false
		}
	}
	// Effect lattice compatibility: a closure may only be passed where
	// its declared effects are no more permissive than required.
	if !container.Effects.Contains(input.Effects) {
		return false
	}
	return true
}

func collectionContainedBy(input, container Atomic, allowInterfaceEquality bool, result *Result, resolver ClassResolver) (ok, handled bool) {
	switch in := input.(type) {
	case Vec:
		contV, isV := container.(Vec)
		if !isV {
			return false, false
		}
		return vecContainedBy(in, contV, allowInterfaceEquality, result, resolver), true
	case Dict:
		contD, isD := container.(Dict)
		if !isD {
			return false, false
		}
		return dictContainedBy(in, contD, allowInterfaceEquality, result, resolver), true
	case Keyset:
		contK, isK := container.(Keyset)
		if !isK {
			return false, false
		}
		return IsUnionContainedBy(in.Elem, contK.Elem, allowInterfaceEquality, result, resolver), true
	}
	return false, false
}

func vecContainedBy(in, container Vec, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if container.KnownItems != nil {
		if in.KnownItems == nil {
			return false
		}
		for k, cItem := range container.KnownItems {
			iItem, ok := in.KnownItems[k]
			if !ok {
				if !cItem.PossiblyUndefined {
					return false
				}
				continue
			}
			if iItem.PossiblyUndefined && !cItem.PossiblyUndefined {
				return false
			}
			if !IsUnionContainedBy(iItem.Type, cItem.Type, allowInterfaceEquality, result, resolver) {
				return false
			}
		}
	}
	if container.NonEmpty && !in.NonEmpty {
		return false
	}
	return IsUnionContainedBy(in.Elem, container.Elem, allowInterfaceEquality, result, resolver)
}

func dictContainedBy(in, container Dict, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if container.KnownItems != nil {
		if in.KnownItems == nil {
			return false
		}
		for k, cItem := range container.KnownItems {
			iItem, ok := in.KnownItems[k]
			if !ok {
				if !cItem.PossiblyUndefined {
					return false
				}
				continue
			}
			if iItem.PossiblyUndefined && !cItem.PossiblyUndefined {
				return false
			}
			if !IsUnionContainedBy(iItem.Type, cItem.Type, allowInterfaceEquality, result, resolver) {
				return false
			}
		}
	}
	if container.NonEmpty && !in.NonEmpty {
		return false
	}
	if container.Params != nil {
		if in.Params == nil {
			return true // known-items-only input with no generic params is fine if keys matched above
		}
		if !IsUnionContainedBy(in.Params.Key, container.Params.Key, allowInterfaceEquality, result, resolver) {
			return false
		}
		if !IsUnionContainedBy(in.Params.Value, container.Params.Value, allowInterfaceEquality, result, resolver) {
			return false
		}
	}
	return true
}

// containerWideningContainedBy implements step 7: Dict/Vec/
// Keyset is contained by HH\Container<V> / HH\KeyedContainer<K,V> when
// the element/params are contained.
func containerWideningContainedBy(input, container Atomic, result *Result) (ok, handled bool) {
	contN, isContN := container.(Named)
	if !isContN {
		return false, false
	}
	name := contN.String()
	switch name {
	case "HH\\Container":
		if len(contN.TypeParams) != 1 {
			return false, true
		}
		switch in := input.(type) {
		case Vec:
			return IsUnionContainedBy(in.Elem, contN.TypeParams[0], true, result, nil), true
		case Keyset:
			return IsUnionContainedBy(in.Elem, contN.TypeParams[0], true, result, nil), true
		case Dict:
			if in.Params != nil {
				return IsUnionContainedBy(in.Params.Value, contN.TypeParams[0], true, result, nil), true
			}
		}
	case "HH\\KeyedContainer":
		if len(contN.TypeParams) != 2 {
			return false, true
		}
		if in, isD := input.(Dict); isD && in.Params != nil {
			return IsUnionContainedBy(in.Params.Key, contN.TypeParams[0], true, result, nil) &&
				IsUnionContainedBy(in.Params.Value, contN.TypeParams[1], true, result, nil), true
		}
		if in, isV := input.(Vec); isV {
			return IsUnionContainedBy(Single(Int), contN.TypeParams[0], true, result, nil) &&
				IsUnionContainedBy(in.Elem, contN.TypeParams[1], true, result, nil), true
		}
	}
	return false, false
}

func namedContainedBy(input, container Named, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if input.Name == container.Name {
		return typeParamsContainedByVariance(input.Name, input.TypeParams, container.TypeParams, allowInterfaceEquality, result, resolver)
	}
	if resolver == nil {
		return false
	}
	if !resolver.IsDescendant(input.Name, container.Name) {
		if allowInterfaceEquality {
			return resolver.IsDescendant(container.Name, input.Name)
		}
		return false
	}
	return typeParamsContainedByVariance(container.Name, input.TypeParams, container.TypeParams, allowInterfaceEquality, result, resolver)
}

func typeParamsContainedByVariance(classID interner.ID, input, container []Union, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if len(input) != len(container) {
		// Arity mismatch across inheritance is resolved by the
		// populator's template_extended_params; at the comparator level
		// we simply require at least the container's declared arity.
		if len(input) < len(container) {
			return false
		}
	}
	for i := range container {
		if i >= len(input) {
			return false
		}
		variance := Invariant
		if resolver != nil {
			variance = resolver.TemplateVariance(classID, i)
		}
		switch variance {
		case Covariant:
			if !IsUnionContainedBy(input[i], container[i], allowInterfaceEquality, result, resolver) {
				return false
			}
		case Contravariant:
			if !IsUnionContainedBy(container[i], input[i], allowInterfaceEquality, result, resolver) {
				return false
			}
		default:
			if !IsUnionContainedBy(input[i], container[i], allowInterfaceEquality, result, resolver) ||
				!IsUnionContainedBy(container[i], input[i], allowInterfaceEquality, result, resolver) {
				return false
			}
		}
	}
	return true
}

func typeParamsContainedBy(input, container []Union, variance Variance, allowInterfaceEquality bool, result *Result, resolver ClassResolver) bool {
	if len(input) != len(container) {
		return false
	}
	for i := range container {
		if !IsUnionContainedBy(input[i], container[i], allowInterfaceEquality, result, resolver) {
			return false
		}
	}
	return true
}
