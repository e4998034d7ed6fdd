// Package cache implements the on-disk envelope format 
// describes for a populated Codebase: gob-encode the payload, then wrap
// it in a checksummed envelope so a caller can detect staleness without
// re-running population. The checksum uses HighwayHash the way
// viant/linager/inspector/graph/hash.go content-hashes its graph nodes
// ("identical Codebase under a content-hash equality").
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is fixed rather than derived per-project: the cache is keyed
// by (buildChecksum, payload hash) together, so collisions across
// projects using the same key are harmless — nothing here is a security
// boundary, only a staleness check.
var hashKey = []byte("hakana-core-cache-hw-hash-key!!!")

// Envelope is the on-disk unit describes: a build-checksum
// (invalidates the whole cache on a binary upgrade) plus a
// content-hash-verified payload.
type Envelope struct {
	BuildChecksum string
	PayloadHash uint64
	Payload []byte
}

// Encode gob-encodes value, wraps it with buildChecksum and a HighwayHash
// digest of the encoded bytes, then gob-encodes the envelope itself.
func Encode(buildChecksum string, value any) ([]byte, error) {
	var payloadBuf bytes.Buffer
	if err := gob.NewEncoder(&payloadBuf).Encode(value); err != nil {
		return nil, fmt.Errorf("cache: encoding payload: %w", err)
	}
	payload := payloadBuf.Bytes()

	digest, err := sum(payload)
	if err != nil {
		return nil, err
	}

	env := Envelope{BuildChecksum: buildChecksum, PayloadHash: digest, Payload: payload}
	var envBuf bytes.Buffer
	if err := gob.NewEncoder(&envBuf).Encode(env); err != nil {
		return nil, fmt.Errorf("cache: encoding envelope: %w", err)
	}
	return envBuf.Bytes(), nil
}

// Decode reverses Encode, verifying the payload hash and the build
// checksum before unmarshaling into dest. A checksum or hash mismatch
// returns ErrStale rather than attempting a partial decode.
func Decode(data []byte, buildChecksum string, dest any) error {
	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return fmt.Errorf("cache: decoding envelope: %w", err)
	}
	if env.BuildChecksum != buildChecksum {
		return ErrStale
	}
	digest, err := sum(env.Payload)
	if err != nil {
		return err
	}
	if digest != env.PayloadHash {
		return ErrStale
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(dest); err != nil {
		return fmt.Errorf("cache: decoding payload: %w", err)
	}
	return nil
}

// ErrStale is returned by Decode when the envelope's build checksum or
// content hash no longer matches, per "a mismatch invalidates
// the cache" — modeled as a plain sentinel error, not a custom type,
// matching "surface as caller-level errors" for tier-1 faults.
var ErrStale = fmt.Errorf("cache: stale envelope")

func sum(data []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, fmt.Errorf("cache: initializing hash: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return 0, fmt.Errorf("cache: hashing payload: %w", err)
	}
	return h.Sum64(), nil
}
