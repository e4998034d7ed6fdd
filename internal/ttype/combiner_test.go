package ttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Combining a union with itself is a no-op up to structural identity
// ("Combiner idempotence": Combine(Combine(xs)) == Combine(xs)).
func TestCombinerIdempotence(t *testing.T) {
	once := Combine([]Atomic{Int, String, Null})
	twice := Combine(once.Types)
	assert.Equal(t, once.GetID(), twice.GetID())
}

func TestCombinerDedupesIdenticalAtomics(t *testing.T) {
	u := Combine([]Atomic{Int, Int, Int})
	assert.Len(t, u.Types, 1)
	assert.Equal(t, KInt, u.Types[0].Kind())
}

func TestCombinerOrderIndependent(t *testing.T) {
	a := Combine([]Atomic{Int, String, Bool})
	b := Combine([]Atomic{Bool, Int, String})
	assert.Equal(t, a.GetID(), b.GetID())
}

func TestCombinerAnyMixedAbsorbsEverything(t *testing.T) {
	u := Combine([]Atomic{Int, String, MixedAny})
	assert.True(t, u.IsMixedAny())
}
