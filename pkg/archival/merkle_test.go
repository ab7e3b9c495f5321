package archival

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/stretchr/testify/require"
)

func leaf(b byte) crypto.Hash {
	var h crypto.Hash
	h[0] = b
	return h
}

func TestMerkleRootEmpty(t *testing.T) {
	require.Equal(t, crypto.Hash{}, MerkleRoot(nil))
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	l := leaf(1)
	require.Equal(t, l, MerkleRoot([]crypto.Hash{l}))
}

func TestMerkleRootOddCountPadsLastLeaf(t *testing.T) {
	leaves := []crypto.Hash{leaf(1), leaf(2), leaf(3)}
	padded := []crypto.Hash{leaf(1), leaf(2), leaf(3), leaf(3)}
	require.Equal(t, MerkleRoot(padded), MerkleRoot(leaves))
}

func TestMerkleRootDeterministicOrdering(t *testing.T) {
	a := MerkleRoot([]crypto.Hash{leaf(1), leaf(2), leaf(3), leaf(4)})
	b := MerkleRoot([]crypto.Hash{leaf(2), leaf(1), leaf(3), leaf(4)})
	require.NotEqual(t, a, b)
}
