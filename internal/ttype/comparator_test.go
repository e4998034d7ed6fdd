package ttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Containment reflexivity : every union contains itself.
func TestContainmentReflexivity(t *testing.T) {
	cases := []Union{
		Single(Int),
		Single(String),
		Combine([]Atomic{Int, String}),
		Combine([]Atomic{Int, Null}),
		Single(Mixed),
	}
	for _, u := range cases {
		assert.True(t, IsUnionContainedBy(u, u, false, nil, nil), "expected %s to contain itself", u.String())
	}
}

func TestContainmentMixedAcceptsAnything(t *testing.T) {
	assert.True(t, IsUnionContainedBy(Single(Int), Single(Mixed), false, nil, nil))
	assert.True(t, IsUnionContainedBy(Combine([]Atomic{Int, String, Null}), Single(Mixed), false, nil, nil))
}

func TestContainmentNullRejectedByNonNullContainer(t *testing.T) {
	assert.False(t, IsUnionContainedBy(Single(Null), Single(String), false, nil, nil))
	assert.True(t, IsUnionContainedBy(Single(Null), NullableOf(Single(String)), false, nil, nil))
}

func TestContainmentArraykeyAcceptsIntAndString(t *testing.T) {
	assert.True(t, IsUnionContainedBy(Single(Int), Single(Arraykey), false, nil, nil))
	assert.True(t, IsUnionContainedBy(Single(String), Single(Arraykey), false, nil, nil))
	assert.False(t, IsUnionContainedBy(Single(Bool), Single(Arraykey), false, nil, nil))
}
