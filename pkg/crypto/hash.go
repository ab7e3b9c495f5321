// Package crypto collects the core primitives the rest of the module is
// built on: Blake2b content hashing, aggregated BLS signatures, and the
// ECIES-style sleeve used to store a delegate's BLS private key at rest.
package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the width of every digest and signature placeholder in the
// wire format (§6).
const HashSize = 32

// Hash is a 256-bit Blake2b digest.
type Hash [HashSize]byte

// IsZero reports whether h is the all-zero digest, used as the epoch
// boundary marker (§3) and as "lower than any non-zero digest" in tip
// comparisons (§4.6.1).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns a copy of the digest bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// BytesToHash keeps the last HashSize bytes of b and zero-pads shorter input
// on the left, go-ethereum common.BytesToHash style.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashSize {
		b = b[len(b)-HashSize:]
	}
	copy(h[HashSize-len(b):], b)
	return h
}

// Sum256 hashes data with Blake2b-256, the hash primitive named in §2.1.
func Sum256(data ...[]byte) Hash {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key length, and we never pass one.
		panic(err)
	}
	for _, d := range data {
		hasher.Write(d)
	}
	var h Hash
	hasher.Sum(h[:0])
	return h
}

// SumUint32 returns the little-endian encoding of v, for use as one Sum256
// input.
func SumUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// SumUint64 returns the little-endian encoding of v, for use as one Sum256
// input.
func SumUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
