package ttype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// VecItem is one entry of a Vec's KnownItems map .
type VecItem struct {
	PossiblyUndefined bool
	Type Union
}

// Vec is the `vec<T>` collection atomic. KnownItems, when non-nil, is
// authoritative for the listed integer offsets; Elem covers every offset
// not listed (invariant).
type Vec struct {
	Elem Union
	KnownItems map[int]VecItem // nil means "no precise shape known"
	KnownCount *int
	NonEmpty bool
}

func (Vec) Kind() Kind { return KVec }

func (v Vec) String() string {
	if v.KnownItems != nil {
		keys := make([]int, 0, len(v.KnownItems))
		for k := range v.KnownItems {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			item := v.KnownItems[k]
			suffix := ""
			if item.PossiblyUndefined {
				suffix = "?"
			}
			parts[i] = fmt.Sprintf("%d%s: %s", k, suffix, item.Type.String())
		}
		return "vec{" + strings.Join(parts, ", ") + "}"
	}
	prefix := "vec"
	if v.NonEmpty {
		prefix = "non-empty-vec"
	}
	return fmt.Sprintf("%s<%s>", prefix, v.Elem.String())
}

// DictKey is a dict key: either a literal int or an interned string.
type DictKey struct {
	IsInt bool
	Int int64
	String interner.ID
}

func IntKey(i int64) DictKey { return DictKey{IsInt: true, Int: i} }
func StringKey(id interner.ID) DictKey { return DictKey{String: id} }

func (k DictKey) less(o DictKey) bool {
	if k.IsInt != o.IsInt {
		return k.IsInt
	}
	if k.IsInt {
		return k.Int < o.Int
	}
	return k.String < o.String
}

func (k DictKey) format(in *interner.Interner) string {
	if k.IsInt {
		return fmt.Sprintf("%d", k.Int)
	}
	return fmt.Sprintf("%q", internedOrQuestion(in, k.String))
}

// DictItem is one entry of a Dict's KnownItems map .
type DictItem struct {
	PossiblyUndefined bool
	Type Union
}

// DictParams is the generic (key, value) pair used when no known-items
// shape is tracked.
type DictParams struct {
	Key Union
	Value Union
}

// Dict is the `dict<K, V>` collection atomic, also used to represent
// Hack-style shapes via ShapeName + KnownItems .
type Dict struct {
	Params *DictParams
	KnownItems map[DictKey]DictItem
	NonEmpty bool
	ShapeName *interner.ID
	in *interner.Interner
}

func NewDict(in *interner.Interner, params *DictParams) Dict {
	return Dict{Params: params, in: in}
}

func (Dict) Kind() Kind { return KDict }

func (d Dict) String() string {
	if d.KnownItems != nil {
		keys := make([]DictKey, 0, len(d.KnownItems))
		for k := range d.KnownItems {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
		parts := make([]string, len(keys))
		for i, k := range keys {
			item := d.KnownItems[k]
			suffix := ""
			if item.PossiblyUndefined {
				suffix = "?"
			}
			parts[i] = fmt.Sprintf("%s%s: %s", k.format(d.in), suffix, item.Type.String())
		}
		prefix := "dict"
		if d.ShapeName != nil {
			prefix = "shape(" + internedOrQuestion(d.in, *d.ShapeName) + ")"
		}
		return prefix + "{" + strings.Join(parts, ", ") + "}"
	}
	prefix := "dict"
	if d.NonEmpty {
		prefix = "non-empty-dict"
	}
	if d.Params == nil {
		return prefix + "<arraykey, mixed>"
	}
	return fmt.Sprintf("%s<%s, %s>", prefix, d.Params.Key.String(), d.Params.Value.String())
}

// Keyset is the `keyset<T>` collection atomic.
type Keyset struct {
	Elem Union
}

func (Keyset) Kind() Kind { return KKeyset }
func (k Keyset) String() string { return fmt.Sprintf("keyset<%s>", k.Elem.String()) }

// mergeVecKnownItems implements the combiner's structural merge for two
// Vec known-item maps (pass 1): keys present on both sides
// combine their types; a key present on only one side becomes
// possibly-undefined in the merge, matching "missing-from-one-side
// entries become possibly-undefined on merge".
func mergeVecKnownItems(a, b map[int]VecItem) map[int]VecItem {
	if a == nil || b == nil {
		return nil
	}
	out := make(map[int]VecItem, len(a)+len(b))
	for k, av := range a {
		if bv, ok := b[k]; ok {
			out[k] = VecItem{
				PossiblyUndefined: av.PossiblyUndefined || bv.PossiblyUndefined,
				Type: Combine(append(append([]Atomic(nil), av.Type.Types...), bv.Type.Types...)),
			}
		} else {
			out[k] = VecItem{PossiblyUndefined: true, Type: av.Type}
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = VecItem{PossiblyUndefined: true, Type: bv.Type}
		}
	}
	return out
}

func mergeDictKnownItems(a, b map[DictKey]DictItem) map[DictKey]DictItem {
	if a == nil || b == nil {
		return nil
	}
	out := make(map[DictKey]DictItem, len(a)+len(b))
	for k, av := range a {
		if bv, ok := b[k]; ok {
			out[k] = DictItem{
				PossiblyUndefined: av.PossiblyUndefined || bv.PossiblyUndefined,
				Type: Combine(append(append([]Atomic(nil), av.Type.Types...), bv.Type.Types...)),
			}
		} else {
			out[k] = DictItem{PossiblyUndefined: true, Type: av.Type}
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = DictItem{PossiblyUndefined: true, Type: bv.Type}
		}
	}
	return out
}
