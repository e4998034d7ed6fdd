package ttype

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// LiteralInt is a precisely-known integer literal .
type LiteralInt struct {
	Value int64
}

func (LiteralInt) Kind() Kind { return KLiteralInt }
func (l LiteralInt) String() string { return fmt.Sprintf("%d", l.Value) }

// LiteralString is a precisely-known string literal, stored as an
// interned id so large literal sets stay cheap to compare.
type LiteralString struct {
	Value interner.ID
	in *interner.Interner
}

// NewLiteralString interns s and returns the literal atomic. The
// interner is retained only for String; equality/combining never needs
// it (ids are compared directly).
func NewLiteralString(in *interner.Interner, s string) LiteralString {
	return LiteralString{Value: in.Intern(s), in: in}
}

func (LiteralString) Kind() Kind { return KLiteralString }
func (l LiteralString) String() string {
	return fmt.Sprintf("%q", internedOrQuestion(l.in, l.Value))
}

// StringWithFlags represents a string whose exact value is unknown but
// whose shape is partially known via three independent bits .
type StringWithFlags struct {
	IsTruthy bool
	IsNonEmpty bool
	IsNonSpecificLiteral bool
}

func (StringWithFlags) Kind() Kind { return KStringWithFlags }
func (s StringWithFlags) String() string {
	flags := ""
	if s.IsTruthy {
		flags += "+truthy"
	}
	if s.IsNonEmpty {
		flags += "+nonempty"
	}
	if s.IsNonSpecificLiteral {
		flags += "+literal"
	}
	return "string" + flags
}

// widens reports whether s is a supertype of other under the
// StringWithFlags bit lattice used by the comparator: a flag set on the
// container must also be set (or implied) on the input.
func (s StringWithFlags) widens(other StringWithFlags) bool {
	if s.IsTruthy && !other.IsTruthy {
		return false
	}
	if s.IsNonEmpty && !other.IsNonEmpty && !other.IsTruthy {
		return false
	}
	return true
}
