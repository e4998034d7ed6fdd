package ttype

import (
	"fmt"
	"strings"
)

// ClosureParam is one parameter of a Closure atomic .
type ClosureParam struct {
	Type Union
	Optional bool
	Variadic bool
	ByRef bool
}

// Closure is a first-class closure type ("Closure").
type Closure struct {
	Params []ClosureParam
	Return *Union // nil means unknown/void-inferred
	Effects Effect
}

func (Closure) Kind() Kind { return KClosure }

func (c Closure) String() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		s := p.Type.String()
		if p.Variadic {
			s = "..." + s
		}
		if p.Optional {
			s += "="
		}
		parts[i] = s
	}
	ret := "void"
	if c.Return != nil {
		ret = c.Return.String()
	}
	return fmt.Sprintf("(function(%s): %s)", strings.Join(parts, ", "), ret)
}

// ClosureAlias refers to a named function-as-closure (`foo<>` style
// first-class callable) that has not yet been resolved to a concrete
// Closure atomic.
type ClosureAlias struct {
	ID string // interned functionlike id, "class_id::method_id" or "::func_id"
}

func (ClosureAlias) Kind() Kind { return KClosureAlias }
func (c ClosureAlias) String() string { return c.ID + "<>" }
