// Package cache holds the in-memory caches that sit in front of pkg/store:
// a small ARC cache of recently committed blocks and verified signatures
// (grounded on consensus/bsrr/berith.go's BSRR.recents/BSRR.signatures), and
// a byte-oriented fastcache of raw bootstrap responses (grounded on
// go-ethereum's core/state/snapshot disk-layer cache).
package cache

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	lru "github.com/hashicorp/golang-lru"
)

// Sizing mirrors the teacher's inmemorySnapshots/inmemorySignatures
// constants: small enough to stay resident, large enough to cover one
// reorg/retry window.
const (
	defaultRecentBlocks     = 128
	defaultRecentSignatures = 4096
)

// BlockCache caches recently committed blocks (by content hash, across all
// three consensus types) and an ARC set of hashes whose aggregated signature
// has already been verified once, so a retransmitted PostCommit doesn't pay
// BLS verification twice.
type BlockCache struct {
	recents    *lru.ARCCache
	signatures *lru.ARCCache
}

// NewBlockCache builds a BlockCache with the teacher's default sizing.
func NewBlockCache() (*BlockCache, error) {
	return NewBlockCacheSized(defaultRecentBlocks, defaultRecentSignatures)
}

// NewBlockCacheSized builds a BlockCache with explicit capacities, for tests
// that want to force eviction.
func NewBlockCacheSized(recentBlocks, recentSignatures int) (*BlockCache, error) {
	recents, err := lru.NewARC(recentBlocks)
	if err != nil {
		return nil, err
	}
	signatures, err := lru.NewARC(recentSignatures)
	if err != nil {
		return nil, err
	}
	return &BlockCache{recents: recents, signatures: signatures}, nil
}

// AddBlock caches a decoded block (model.RequestBlock / model.MicroBlock /
// model.EpochBlock) under its content hash.
func (c *BlockCache) AddBlock(hash crypto.Hash, block interface{}) {
	c.recents.Add(hash, block)
}

// GetBlock returns the cached block for hash, if present.
func (c *BlockCache) GetBlock(hash crypto.Hash) (interface{}, bool) {
	return c.recents.Get(hash)
}

// MarkVerified records that hash's aggregated signature has already passed
// verification.
func (c *BlockCache) MarkVerified(hash crypto.Hash) {
	c.signatures.Add(hash, true)
}

// IsVerified reports whether hash's aggregated signature was already
// checked.
func (c *BlockCache) IsVerified(hash crypto.Hash) bool {
	_, ok := c.signatures.Get(hash)
	return ok
}

// Purge drops every cached entry, used when an epoch handover invalidates
// assumptions baked into cached signatures (e.g. committee membership
// change).
func (c *BlockCache) Purge() {
	c.recents.Purge()
	c.signatures.Purge()
}
