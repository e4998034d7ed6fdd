package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string
	Count int
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := payload{Name: "widget", Count: 3}
	data, err := Encode("build-1", in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, Decode(data, "build-1", &out))
	assert.Equal(t, in, out)
}

func TestDecodeStaleBuildChecksum(t *testing.T) {
	data, err := Encode("build-1", payload{Name: "x"})
	require.NoError(t, err)

	var out payload
	err = Decode(data, "build-2", &out)
	assert.ErrorIs(t, err, ErrStale)
}

func TestDecodeCorruptedPayloadDetected(t *testing.T) {
	data, err := Encode("build-1", payload{Name: "x"})
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF

	var out payload
	err = Decode(data, "build-1", &out)
	require.Error(t, err)
}
