package ttype

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// TypeAlias is an unexpanded `type Foo<T> = ...` reference. The
// expander replaces these with AsType as stored; TypeParams are not
// substituted for the alias's own declared parameters.
type TypeAlias struct {
	Name interner.ID
	TypeParams []Union
	AsType Union
	in *interner.Interner
}

func (TypeAlias) Kind() Kind { return KTypeAlias }
func (t TypeAlias) String() string {
	s := internedOrQuestion(t.in, t.Name)
	if len(t.TypeParams) > 0 {
		s += "<" + joinUnions(t.TypeParams, ", ") + ">"
	}
	return s
}

// Classname is `classname<T>` (a string holding a class name, reified).
type Classname struct{ AsType Union }

func (Classname) Kind() Kind { return KClassname }
func (c Classname) String() string { return fmt.Sprintf("classname<%s>", c.AsType.String()) }

// Typename is `typename<T>` (a string holding a type-alias name).
type Typename struct{ AsType Union }

func (Typename) Kind() Kind { return KTypename }
func (t Typename) String() string { return fmt.Sprintf("typename<%s>", t.AsType.String()) }

// MemberReference is an unresolved `Foo::TMember` type-constant access.
type MemberReference struct {
	Classlike interner.ID
	Member interner.ID
	in *interner.Interner
}

func (MemberReference) Kind() Kind { return KMemberReference }
func (m MemberReference) String() string {
	return fmt.Sprintf("%s::%s", internedOrQuestion(m.in, m.Classlike), internedOrQuestion(m.in, m.Member))
}

// ClassTypeConstant is a resolved-head-but-not-yet-expanded class type
// constant access: ClassType::Member, with AsType the constant's declared
// upper bound until full expansion substitutes the concrete value.
type ClassTypeConstant struct {
	ClassType Union
	Member interner.ID
	AsType Union
	in *interner.Interner
}

func (ClassTypeConstant) Kind() Kind { return KClassTypeConstant }
func (c ClassTypeConstant) String() string {
	return fmt.Sprintf("%s::%s", c.ClassType.String(), internedOrQuestion(c.in, c.Member))
}
