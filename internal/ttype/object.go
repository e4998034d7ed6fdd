package ttype

import (
	"fmt"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// Named is a class/interface/trait instance type, optionally generic.
// IsThis is meaningful only inside methods of the class and is cleared
// when the containing method is final or when assigning to a
// parent-typed slot — callers (the expression analyzer) are responsible
// for clearing it at those points; this package only carries the bit.
type Named struct {
	Name interner.ID
	TypeParams []Union // nil means non-generic or not yet specialized
	IsThis bool
	ExtraTypes map[string]Atomic // additional interface/trait bounds (intersection types)
	RemappedParams bool
	in *interner.Interner
}

func NewNamed(in *interner.Interner, name interner.ID, typeParams ...Union) Named {
	var tp []Union
	if len(typeParams) > 0 {
		tp = typeParams
	}
	return Named{Name: name, TypeParams: tp, in: in}
}

func (Named) Kind() Kind { return KNamed }

func (n Named) String() string {
	s := internedOrQuestion(n.in, n.Name)
	if n.IsThis {
		s = "this@" + s
	}
	if len(n.TypeParams) > 0 {
		s += "<" + joinUnions(n.TypeParams, ", ") + ">"
	}
	if len(n.ExtraTypes) > 0 {
		extras := make([]string, 0, len(n.ExtraTypes))
		for _, a := range n.ExtraTypes {
			extras = append(extras, a.String())
		}
		s += "&" + strings.Join(extras, "&")
	}
	return s
}

// Enum is an enum class as a whole. The combiner drops an enum's case
// atomics when the Enum itself is in the same bag; it does not collapse a
// complete set of cases into the Enum, since it has no list of an enum's
// cases.
type Enum struct {
	Name interner.ID
	in *interner.Interner
}

func (Enum) Kind() Kind { return KEnum }
func (e Enum) String() string { return internedOrQuestion(e.in, e.Name) }

// EnumLiteralCase is a single, precisely-known enum case.
type EnumLiteralCase struct {
	Enum interner.ID
	Member interner.ID
	in *interner.Interner
}

func (EnumLiteralCase) Kind() Kind { return KEnumLiteralCase }
func (c EnumLiteralCase) String() string {
	return fmt.Sprintf("%s::%s", internedOrQuestion(c.in, c.Enum), internedOrQuestion(c.in, c.Member))
}
