package codebase

import (
	"sync"

	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// methodKey is the composite (class_id, method_id) key used to look up
// functionlikes. Top-level functions use ClassID == interner.Empty.
type methodKey struct {
	ClassID interner.ID
	MethodID interner.ID
}

// Codebase is the whole-program symbol table the reflection builder,
// populator, and analyzer all query against. All maps are guarded by mu
// so the reflection pass can populate them from parallel per-file
// workers.
type Codebase struct {
	Interner *interner.Interner

	mu sync.RWMutex
	classlikes map[interner.ID]*ClassLikeInfo
	functionlikes map[methodKey]*FunctionLikeInfo
	typeDefinitions map[interner.ID]*TypeDefinitionInfo
	constants map[interner.ID]*ConstantInfo
	files map[uint32]*FileInfo

	// directDescendants[x] is the set of classlikes that directly name x
	// as a parent/interface/trait. allDescendants[x] is the transitive
	// closure, computed by the populator (
	// "all_classlike_descendants / direct_classlike_descendants").
	directDescendants map[interner.ID]map[interner.ID]bool
	allDescendants map[interner.ID]map[interner.ID]bool
}

func New(in *interner.Interner) *Codebase {
	return &Codebase{
		Interner: in,
		classlikes: make(map[interner.ID]*ClassLikeInfo),
		functionlikes: make(map[methodKey]*FunctionLikeInfo),
		typeDefinitions: make(map[interner.ID]*TypeDefinitionInfo),
		constants: make(map[interner.ID]*ConstantInfo),
		files: make(map[uint32]*FileInfo),
		directDescendants: make(map[interner.ID]map[interner.ID]bool),
		allDescendants: make(map[interner.ID]map[interner.ID]bool),
	}
}

func (cb *Codebase) AddClassLike(c *ClassLikeInfo) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.classlikes[c.Name] = c
}

func (cb *Codebase) ClassLike(id interner.ID) (*ClassLikeInfo, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	c, ok := cb.classlikes[id]
	return c, ok
}

func (cb *Codebase) AllClassLikes() []*ClassLikeInfo {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	out := make([]*ClassLikeInfo, 0, len(cb.classlikes))
	for _, c := range cb.classlikes {
		out = append(out, c)
	}
	return out
}

func (cb *Codebase) AddFunctionLike(classID interner.ID, f *FunctionLikeInfo) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.functionlikes[methodKey{classID, f.MethodID}] = f
}

func (cb *Codebase) FunctionLike(classID, methodID interner.ID) (*FunctionLikeInfo, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	f, ok := cb.functionlikes[methodKey{classID, methodID}]
	return f, ok
}

// FunctionlikeStringID renders (classID, methodID) as the stable string
// identity used to key data-flow nodes for a functionlike: bare method
// name for a top-level function (classID == interner.Empty), otherwise
// "Class::method". Both the per-function analyzer and the whole-program
// taint wiring pass call this so they derive identical data-flow node
// ids for the same functionlike without sharing any other state.
func (cb *Codebase) FunctionlikeStringID(classID, methodID interner.ID) string {
	if classID == interner.Empty {
		return cb.Interner.Lookup(methodID)
	}
	return cb.Interner.Lookup(classID) + "::" + cb.Interner.Lookup(methodID)
}

// AllFunctionLikes returns every registered functionlike, used by the
// taint engine's source/sink wiring pass to scan TaintSources/TaintSinks
// across the whole program .
func (cb *Codebase) AllFunctionLikes() []*FunctionLikeInfo {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	out := make([]*FunctionLikeInfo, 0, len(cb.functionlikes))
	for _, f := range cb.functionlikes {
		out = append(out, f)
	}
	return out
}

func (cb *Codebase) AddTypeDefinition(t *TypeDefinitionInfo) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.typeDefinitions[t.Name] = t
}

func (cb *Codebase) TypeDefinition(id interner.ID) (*TypeDefinitionInfo, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	t, ok := cb.typeDefinitions[id]
	return t, ok
}

func (cb *Codebase) AddConstant(c *ConstantInfo) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.constants[c.Name] = c
}

func (cb *Codebase) Constant(id interner.ID) (*ConstantInfo, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	c, ok := cb.constants[id]
	return c, ok
}

func (cb *Codebase) AddFile(f *FileInfo) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.files[f.PathID] = f
}

func (cb *Codebase) File(pathID uint32) (*FileInfo, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	f, ok := cb.files[pathID]
	return f, ok
}

func (cb *Codebase) DirectDescendants(id interner.ID) map[interner.ID]bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.directDescendants[id]
}

func (cb *Codebase) AllDescendants(id interner.ID) map[interner.ID]bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.allDescendants[id]
}

// IsDescendant implements ttype.Hierarchy: sub is super, or
// extends/implements super directly or transitively (
// collapse-to-ancestor rules).
func (cb *Codebase) IsDescendant(sub, super interner.ID) bool {
	if sub == super {
		return true
	}
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	c, ok := cb.classlikes[sub]
	if !ok {
		return false
	}
	if c.AllParentClasses[super] || c.AllParentInterfaces[super] {
		return true
	}
	return false
}

// TemplateVariance implements ttype.ClassResolver (step 6).
func (cb *Codebase) TemplateVariance(name interner.ID, paramIndex int) ttype.Variance {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	c, ok := cb.classlikes[name]
	if !ok || paramIndex < 0 || paramIndex >= len(c.TypeParams) {
		return ttype.Invariant
	}
	return c.TypeParams[paramIndex].Variance
}
