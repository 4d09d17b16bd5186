// Package hashtable implements a concurrent extendible hash table. It
// is used as the buffer pool's page-id -> frame-id directory, but the
// container itself knows nothing about pages or frames: it is a
// general-purpose associative map keyed by any comparable type, the way
// the buffer pool and (independently) other collaborators can reuse it.
package hashtable

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a uniformly distributed 64-bit value. The table
// treats it as opaque; only its low bits are ever inspected.
type Hasher[K any] func(K) uint64

// XXHashUint64 hashes uint64 keys with xxhash, the production hasher
// for integer-keyed tables such as the buffer pool's page table.
func XXHashUint64() Hasher[uint64] {
	return func(k uint64) uint64 {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], k)
		return xxhash.Sum64(b[:])
	}
}

// XXHashString hashes string keys with xxhash.
func XXHashString() Hasher[string] {
	return xxhash.Sum64String
}

// IdentityHasher returns keys unchanged. Tests use it to get a
// deterministic, hand-computable bucket layout; production callers
// should prefer an XXHash* hasher.
func IdentityHasher() Hasher[uint64] {
	return func(k uint64) uint64 { return k }
}
