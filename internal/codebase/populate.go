package codebase

import "github.com/slackhq/hakana-sub001/internal/interner"

// Populate is component D ("Population pass"): resolve every
// classlike's name-level parent/interface/trait references into IDs,
// flatten trait methods in, compute the transitive ancestor and
// descendant sets, and mark InvalidDependencies on cycles or unknown
// symbols. Runs single-threaded after every file has been reflected
// ("population... run single-threaded").
func Populate(cb *Codebase) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	resolveNames(cb)
	detectCyclesLocked(cb)
	computeAncestorsLocked(cb)
	flattenTraitsLocked(cb)
	computeDescendantsLocked(cb)
}

func resolveNames(cb *Codebase) {
	for _, c := range cb.classlikes {
		if c.ParentName != "" {
			if id, ok := cb.Interner.Get(c.ParentName); ok {
				if _, exists := cb.classlikes[id]; exists {
					c.ParentID = id
					c.HasParent = true
				} else {
					c.InvalidDependencies = true
				}
			} else {
				c.InvalidDependencies = true
			}
		}
		c.InterfaceIDs = c.InterfaceIDs[:0]
		for _, name := range c.ImplementsName {
			id, ok := cb.Interner.Get(name)
			if !ok {
				c.InvalidDependencies = true
				continue
			}
			if _, exists := cb.classlikes[id]; !exists {
				c.InvalidDependencies = true
				continue
			}
			c.InterfaceIDs = append(c.InterfaceIDs, id)
		}
		c.TraitIDs = c.TraitIDs[:0]
		for _, name := range c.TraitUseNames {
			id, ok := cb.Interner.Get(name)
			if !ok {
				c.InvalidDependencies = true
				continue
			}
			if _, exists := cb.classlikes[id]; !exists {
				c.InvalidDependencies = true
				continue
			}
			c.TraitIDs = append(c.TraitIDs, id)
		}
	}
}

// detectCyclesLocked walks each classlike's parent chain with a
// visited-set; when a classlike is encountered twice before reaching a
// root, InvalidDependencies is set on every classlike on the walked path:
// the members of the cycle and any classlikes whose chain leads into it
// ("cyclic class hierarchies").
func detectCyclesLocked(cb *Codebase) {
	state := make(map[interner.ID]int) // 0 unvisited, 1 in-progress, 2 done
	var visit func(id interner.ID, path []interner.ID)
	visit = func(id interner.ID, path []interner.ID) {
		switch state[id] {
		case 1:
			for _, p := range path {
				if c, ok := cb.classlikes[p]; ok {
					c.InvalidDependencies = true
				}
			}
			return
		case 2:
			return
		}
		state[id] = 1
		path = append(path, id)
		if c, ok := cb.classlikes[id]; ok && c.HasParent {
			visit(c.ParentID, path)
		}
		state[id] = 2
	}
	for id := range cb.classlikes {
		if state[id] == 0 {
			visit(id, nil)
		}
	}
}

// computeAncestorsLocked fills AllParentClasses/AllParentInterfaces via
// memoized transitive closure, skipping classlikes already marked
// InvalidDependencies to avoid infinite recursion on residual cycles.
func computeAncestorsLocked(cb *Codebase) {
	memo := make(map[interner.ID]bool)
	var resolve func(id interner.ID)
	resolve = func(id interner.ID) {
		if memo[id] {
			return
		}
		memo[id] = true
		c, ok := cb.classlikes[id]
		if !ok || c.InvalidDependencies {
			return
		}
		c.AllParentClasses = make(map[interner.ID]bool)
		c.AllParentInterfaces = make(map[interner.ID]bool)
		if c.HasParent {
			resolve(c.ParentID)
			c.AllParentClasses[c.ParentID] = true
			if pc, ok := cb.classlikes[c.ParentID]; ok {
				for k := range pc.AllParentClasses {
					c.AllParentClasses[k] = true
				}
				for k := range pc.AllParentInterfaces {
					c.AllParentInterfaces[k] = true
				}
			}
		}
		for _, ifaceID := range c.InterfaceIDs {
			resolve(ifaceID)
			c.AllParentInterfaces[ifaceID] = true
			if ic, ok := cb.classlikes[ifaceID]; ok {
				for k := range ic.AllParentInterfaces {
					c.AllParentInterfaces[k] = true
				}
				for k := range ic.AllParentClasses {
					c.AllParentInterfaces[k] = true
				}
			}
		}
	}
	for id := range cb.classlikes {
		resolve(id)
	}
}

// flattenTraitsLocked copies each used trait's methods and properties
// into the using classlike, unless already overridden locally. Methods
// inherited this way record FromTraitID.
func flattenTraitsLocked(cb *Codebase) {
	for _, c := range cb.classlikes {
		if c.InvalidDependencies {
			continue
		}
		for _, traitID := range c.TraitIDs {
			trait, ok := cb.classlikes[traitID]
			if !ok {
				continue
			}
			for name, m := range trait.Methods {
				if _, exists := c.Methods[name]; exists {
					continue
				}
				flattened := *m
				flattened.ClassID = c.Name
				flattened.FromTraitID = traitID
				c.Methods[name] = &flattened
			}
			for name, p := range trait.Properties {
				if _, exists := c.Properties[name]; exists {
					continue
				}
				c.Properties[name] = p
			}
		}
	}
}

func computeDescendantsLocked(cb *Codebase) {
	cb.directDescendants = make(map[interner.ID]map[interner.ID]bool)
	cb.allDescendants = make(map[interner.ID]map[interner.ID]bool)
	for id, c := range cb.classlikes {
		record := func(parent interner.ID) {
			if cb.directDescendants[parent] == nil {
				cb.directDescendants[parent] = make(map[interner.ID]bool)
			}
			cb.directDescendants[parent][id] = true
		}
		if c.HasParent {
			record(c.ParentID)
		}
		for _, ifaceID := range c.InterfaceIDs {
			record(ifaceID)
		}
		for _, traitID := range c.TraitIDs {
			record(traitID)
		}
	}
	for id, c := range cb.classlikes {
		all := make(map[interner.ID]bool)
		for k := range c.AllParentClasses {
			all[k] = true
		}
		for k := range c.AllParentInterfaces {
			all[k] = true
		}
		for ancestor := range all {
			if cb.allDescendants[ancestor] == nil {
				cb.allDescendants[ancestor] = make(map[interner.ID]bool)
			}
			cb.allDescendants[ancestor][id] = true
		}
	}
}
