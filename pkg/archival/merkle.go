// Package archival builds and validates the periodic checkpoint blocks of
// §4.4: MicroBlocks (one per delegate-chain snapshot interval) and
// EpochBlocks (committee rotation at the close of an epoch's last
// microblock).
package archival

import "github.com/LogosNetwork/logos-core-sub004/pkg/crypto"

// MerkleRoot computes the root over an ordered sequence of leaf hashes, per
// §4.4.1: "a Merkle root over the ordered sequence of selected
// request-block hashes (odd counts are padded by duplicating the last
// hash)". Matches invariant #5 of §8.
func MerkleRoot(leaves []crypto.Hash) crypto.Hash {
	if len(leaves) == 0 {
		return crypto.Hash{}
	}
	level := append([]crypto.Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]crypto.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, crypto.Sum256(level[i][:], level[i+1][:]))
		}
		level = next
	}
	return level[0]
}
