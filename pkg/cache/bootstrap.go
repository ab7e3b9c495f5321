package cache

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/VictoriaMetrics/fastcache"
)

// defaultBootstrapCacheBytes bounds the raw-bytes cache of serialized
// post-committed blocks the Puller has already fetched, so a peer replaying
// the same pull range doesn't force a second disk read.
const defaultBootstrapCacheBytes = 32 * 1024 * 1024

// BootstrapCache is a byte-oriented cache of serialized PullResponse
// payloads (prequel + encoded block), keyed by content hash. fastcache's
// fixed-memory, no-GC-pressure design fits the bootstrap hot path the same
// way it fits go-ethereum's snapshot disk layer.
type BootstrapCache struct {
	bytes *fastcache.Cache
}

// NewBootstrapCache builds a BootstrapCache with the default byte budget.
func NewBootstrapCache() *BootstrapCache {
	return NewBootstrapCacheSized(defaultBootstrapCacheBytes)
}

// NewBootstrapCacheSized builds a BootstrapCache with an explicit byte
// budget.
func NewBootstrapCacheSized(maxBytes int) *BootstrapCache {
	return &BootstrapCache{bytes: fastcache.New(maxBytes)}
}

// Put stores the serialized block payload for hash.
func (b *BootstrapCache) Put(hash crypto.Hash, serialized []byte) {
	b.bytes.Set(hash[:], serialized)
}

// Get returns the cached payload for hash, if present.
func (b *BootstrapCache) Get(hash crypto.Hash) ([]byte, bool) {
	return b.bytes.HasGet(nil, hash[:])
}

// Reset drops every cached entry.
func (b *BootstrapCache) Reset() {
	b.bytes.Reset()
}
