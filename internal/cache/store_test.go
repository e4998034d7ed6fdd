package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGetRoundTrip(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	env, err := Encode("build-1", payload{Name: "a", Count: 1})
	require.NoError(t, err)

	require.NoError(t, s.Put("src/a.php", "sha-a", "build-1", env))

	got, sum, ok, err := s.Get("src/a.php")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sha-a", sum)
	assert.Equal(t, env, got)

	_, _, ok, err = s.Get("src/missing.php")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreOverwritesOnConflict(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	env1, _ := Encode("build-1", payload{Count: 1})
	env2, _ := Encode("build-1", payload{Count: 2})
	require.NoError(t, s.Put("src/a.php", "sha-1", "build-1", env1))
	require.NoError(t, s.Put("src/a.php", "sha-2", "build-1", env2))

	got, sum, ok, err := s.Get("src/a.php")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sha-2", sum)
	assert.Equal(t, env2, got)
}

func TestStoreForgetAndPaths(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	env, _ := Encode("build-1", payload{Count: 1})
	require.NoError(t, s.Put("a.php", "sha", "build-1", env))
	require.NoError(t, s.Put("b.php", "sha", "build-1", env))

	paths, err := s.Paths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.php", "b.php"}, paths)

	require.NoError(t, s.Forget("a.php"))
	paths, err = s.Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.php"}, paths)
}
