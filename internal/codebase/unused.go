package codebase

import "github.com/slackhq/hakana-sub001/internal/interner"

// UnusedSymbol is one finding of the unused-code sweep, grounded on
// honnef.co/go/tools/unused's reachability-from-roots approach, adapted
// here to classlikes/functionlikes instead of SSA values.
type UnusedSymbol struct {
	Name   interner.ID
	ClassID interner.ID // interner.Empty for a top-level function or a whole classlike
	Kind   UnusedKind
}

type UnusedKind int

const (
	UnusedFunction UnusedKind = iota
	UnusedMethod
	UnusedClassLike
	UnusedProperty
)

// ReferenceLookup is the subset of internal/issue.SymbolReferences this
// pass needs: "is anything in the program calling/reading this symbol".
// Declared here (not imported from internal/issue) to keep D free of a
// dependency on the ambient issue package.
type ReferenceLookup interface {
	HasReferenceTo(classID, memberID interner.ID) bool
	HasReferenceToClassLike(classID interner.ID) bool
}

// entryPoints are symbol names the sweep never reports, mirroring the
// magic-method / framework-root exclusions go-tools' unused pass
// applies for exported API surfaces.
var entryPointNames = map[string]bool{
	"__construct": true,
	"__destruct":  true,
	"__toString":  true,
	"main":        true,
}

// FindUnused walks every classlike/functionlike in cb and reports those
// with no recorded reference, skipping abstract/interface members
// (nothing to "call" there — the concrete override is what gets
// referenced) and the conventional entry points above.
func FindUnused(cb *Codebase, refs ReferenceLookup) []UnusedSymbol {
	var out []UnusedSymbol
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	for classID, c := range cb.classlikes {
		if c.InvalidDependencies {
			continue
		}
		if !refs.HasReferenceToClassLike(classID) && classID != interner.Empty {
			out = append(out, UnusedSymbol{Name: classID, ClassID: interner.Empty, Kind: UnusedClassLike})
		}
		for methodID, m := range c.Methods {
			if m.IsAbstract || m.FromTraitID != interner.Empty {
				continue
			}
			name := cb.Interner.Lookup(methodID)
			if entryPointNames[name] {
				continue
			}
			if !refs.HasReferenceTo(classID, methodID) {
				out = append(out, UnusedSymbol{Name: methodID, ClassID: classID, Kind: UnusedMethod})
			}
		}
	}
	for key, f := range cb.functionlikes {
		if key.ClassID != interner.Empty {
			continue // methods handled via classlikes above
		}
		name := cb.Interner.Lookup(key.MethodID)
		if entryPointNames[name] {
			continue
		}
		if !refs.HasReferenceTo(interner.Empty, key.MethodID) {
			out = append(out, UnusedSymbol{Name: key.MethodID, ClassID: interner.Empty, Kind: UnusedFunction})
		}
		_ = f
	}
	return out
}
