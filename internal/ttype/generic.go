package ttype

import "github.com/slackhq/hakana-sub001/internal/interner"

// Variance of a declared template slot.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// GenericParam is an unresolved reference to a declared template
// parameter ("Generics"). DefiningEntity is the classlike or
// functionlike id that declared the parameter, used to disambiguate two
// same-named parameters on unrelated declarations.
type GenericParam struct {
	Name interner.ID
	DefiningEntity string
	AsType Union
	in *interner.Interner
}

func (GenericParam) Kind() Kind { return KGenericParam }
func (g GenericParam) String() string {
	return "T:" + internedOrQuestion(g.in, g.Name)
}
