package ttype

import "github.com/slackhq/hakana-sub001/internal/interner"

// StaticClassType enumerates how `static` should expand .
type StaticClassType int

const (
	StaticNone StaticClassType = iota
	StaticNamed
	StaticObject
)

// ExpansionOptions drives the expander .
type ExpansionOptions struct {
	SelfClass interner.ID
	HasSelfClass bool
	StaticClassType StaticClassType
	StaticClassName interner.ID
	ParentClass interner.ID
	HasParentClass bool
	FunctionIsFinal bool
	ExpandTemplates bool
	ExpandGeneric bool
	ExpandTypeAliases bool
	ForceAliasExpansion bool
	WhereConstraints map[string]Union
}

// AliasResolver looks up what a TypeAlias/MemberReference/ClassTypeConstant
// ultimately resolves to. Implemented by component D's Codebase.
type AliasResolver interface {
	ResolveTypeAlias(name interner.ID) (params []interner.ID, asType Union, ok bool)
	ResolveMemberReference(classlike, member interner.ID) (Union, bool)
	ResolveClassTypeConstant(classType Union, member interner.ID) (Union, bool)
	ResolveClosureAlias(id string) (Closure, bool)
}

// Expander walks a union, replacing TypeAlias, MemberReference,
// ClassTypeConstant, Classname, ClosureAlias, and this/static with their
// resolved forms. It carries a monotonically incrementing cost counter
// so hosts can budget recursion against pathological aliases.
type Expander struct {
	Resolver AliasResolver
	Cost int
	// MaxCost aborts expansion (returning the union as-is, un-expanded
	// further) once Cost exceeds it; zero means unbounded.
	MaxCost int
}

func NewExpander(resolver AliasResolver, maxCost int) *Expander {
	return &Expander{Resolver: resolver, MaxCost: maxCost}
}

func (e *Expander) budgetExceeded() bool {
	return e.MaxCost > 0 && e.Cost > e.MaxCost
}

// Expand returns the union with every expandable atomic replaced,
// according to opts. It does not mutate u.Types in place; it returns a
// new Union built from the expanded atomics (copy-on-write per).
func (e *Expander) Expand(u Union, opts ExpansionOptions) Union {
	out := make([]Atomic, 0, len(u.Types))
	for _, a := range u.Types {
		out = append(out, e.expandAtomic(a, opts)...)
	}
	result := u
	result.Types = out
	return result
}

func (e *Expander) expandAtomic(a Atomic, opts ExpansionOptions) []Atomic {
	if e.budgetExceeded() {
		return []Atomic{a}
	}
	e.Cost++

	switch v := a.(type) {
	case Named:
		if v.IsThis {
			switch opts.StaticClassType {
			case StaticNamed:
				v.Name = opts.StaticClassName
				v.IsThis = false
			case StaticObject:
				return []Atomic{Object}
			}
		}
		if len(v.TypeParams) > 0 && opts.ExpandGeneric {
			tp := make([]Union, len(v.TypeParams))
			for i, p := range v.TypeParams {
				tp[i] = e.Expand(p, opts)
			}
			v.TypeParams = tp
		}
		return []Atomic{v}

	case GenericParam:
		if opts.ExpandTemplates {
			if opts.WhereConstraints != nil {
				if constraint, ok := opts.WhereConstraints[v.String()]; ok {
					return constraint.Types
				}
			}
			expanded := e.Expand(v.AsType, opts)
			return expanded.Types
		}
		return []Atomic{v}

	case TypeAlias:
		if !opts.ExpandTypeAliases && !opts.ForceAliasExpansion {
			return []Atomic{v}
		}
		if e.Resolver == nil {
			return []Atomic{v}
		}
		expanded := e.Expand(v.AsType, opts)
		return expanded.Types

	case MemberReference:
		if e.Resolver == nil {
			return []Atomic{v}
		}
		if resolved, ok := e.Resolver.ResolveMemberReference(v.Classlike, v.Member); ok {
			return e.Expand(resolved, opts).Types
		}
		return []Atomic{v}

	case ClassTypeConstant:
		if e.Resolver == nil {
			return []Atomic{v}
		}
		if resolved, ok := e.Resolver.ResolveClassTypeConstant(v.ClassType, v.Member); ok {
			return e.Expand(resolved, opts).Types
		}
		return []Atomic{v}

	case Classname:
		expanded := e.Expand(v.AsType, opts)
		v.AsType = expanded
		return []Atomic{v}

	case Typename:
		expanded := e.Expand(v.AsType, opts)
		v.AsType = expanded
		return []Atomic{v}

	case ClosureAlias:
		if e.Resolver == nil {
			return []Atomic{v}
		}
		if closure, ok := e.Resolver.ResolveClosureAlias(v.ID); ok {
			return []Atomic{closure}
		}
		return []Atomic{v}

	case Awaitable:
		v.Inner = e.Expand(v.Inner, opts)
		return []Atomic{v}

	default:
		return []Atomic{a}
	}
}
