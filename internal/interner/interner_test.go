package interner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	in := New()
	id := in.Intern("App\\Controller\\HomeController")
	require.Equal(t, "App\\Controller\\HomeController", in.Lookup(id))
}

func TestIdempotent(t *testing.T) {
	in := New()
	a := in.Intern("Foo")
	b := in.Intern("Foo")
	assert.Equal(t, a, b)
}

func TestDistinctStringsDistinctIDs(t *testing.T) {
	in := New()
	a := in.Intern("Foo")
	b := in.Intern("Bar")
	assert.NotEqual(t, a, b)
}

func TestGetNoAllocate(t *testing.T) {
	in := New()
	_, ok := in.Get("NeverInterned")
	assert.False(t, ok)

	id := in.Intern("NeverInterned")
	got, ok := in.Get("NeverInterned")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestWellKnownIDsStable(t *testing.T) {
	in := New()
	assert.Equal(t, "$this", in.Lookup(This))
	assert.Equal(t, "__construct", in.Lookup(Construct))
	// Interning the same literal again must return the reserved constant.
	assert.Equal(t, This, in.Intern("$this"))
}

func TestConcurrentIntern(t *testing.T) {
	in := New()
	var wg sync.WaitGroup
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	ids := make([][]ID, len(names))
	for i := range ids {
		ids[i] = make([]ID, 50)
	}
	for i, name := range names {
		for j := 0; j < 50; j++ {
			wg.Add(1)
			go func(i, j int, name string) {
				defer wg.Done()
				ids[i][j] = in.Intern(name)
			}(i, j, name)
		}
	}
	wg.Wait()
	for i := range names {
		for j := 1; j < len(ids[i]); j++ {
			assert.Equal(t, ids[i][0], ids[i][j])
		}
	}
}
