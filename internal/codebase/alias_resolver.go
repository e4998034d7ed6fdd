package codebase

import "github.com/slackhq/hakana-sub001/internal/ttype"
import "github.com/slackhq/hakana-sub001/internal/interner"

// Codebase implements ttype.AliasResolver so the expander (component B,
//) can resolve TypeAlias/MemberReference/ClassTypeConstant/
// ClosureAlias atomics without importing codebase itself (dependency
// inversion keeps B free of a B->D import cycle).

func (cb *Codebase) ResolveTypeAlias(name interner.ID) ([]interner.ID, ttype.Union, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	t, ok := cb.typeDefinitions[name]
	if !ok {
		return nil, ttype.Union{}, false
	}
	params := make([]interner.ID, len(t.TypeParams))
	for i, p := range t.TypeParams {
		params[i] = p.Name
	}
	return params, t.AsType, true
}

func (cb *Codebase) ResolveMemberReference(classlike, member interner.ID) (ttype.Union, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	c, ok := cb.classlikes[classlike]
	if !ok {
		return ttype.Union{}, false
	}
	if tc, ok := c.TypeConsts[member]; ok {
		if tc.Value != nil {
			return *tc.Value, true
		}
		return tc.AsType, true
	}
	return ttype.Union{}, false
}

func (cb *Codebase) ResolveClassTypeConstant(classType ttype.Union, member interner.ID) (ttype.Union, bool) {
	for _, a := range classType.Types {
		named, ok := a.(ttype.Named)
		if !ok {
			continue
		}
		if u, ok := cb.ResolveMemberReference(named.Name, member); ok {
			return u, true
		}
	}
	return ttype.Union{}, false
}

func (cb *Codebase) ResolveClosureAlias(id string) (ttype.Closure, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	name, ok := cb.Interner.Get(id)
	if !ok {
		return ttype.Closure{}, false
	}
	t, ok := cb.typeDefinitions[name]
	if !ok || !t.AsType.IsSingle() {
		return ttype.Closure{}, false
	}
	closure, ok := t.AsType.Types[0].(ttype.Closure)
	return closure, ok
}
