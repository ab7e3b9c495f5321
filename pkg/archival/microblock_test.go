package archival

import (
	"path/filepath"
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "archival.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// putChainBlock appends one request block to delegate 0's chain and
// updates the delegate's tip, returning the new block's hash.
func putChainBlock(t *testing.T, tx *store.Tx, previous crypto.Hash, sequence uint32, timestampMS uint64) crypto.Hash {
	t.Helper()
	blk := model.RequestBlock{
		Common: wire.PrePrepareCommon{
			PrimaryDelegateID: 0,
			EpochNumber:       1,
			Sequence:          sequence,
			TimestampMS:       timestampMS,
			Previous:          previous,
		},
	}
	require.NoError(t, tx.PutRequestBlock(blk))
	hash := model.HashView(blk.View())
	require.NoError(t, tx.PutRequestBlockTip(0, hash))
	return hash
}

func TestBuildMicroBlockSelectsBlocksAtOrBeforeCutoff(t *testing.T) {
	db := setupDB(t)
	var h1, h2, h3 crypto.Hash
	require.NoError(t, db.Write(func(tx *store.Tx) error {
		h1 = putChainBlock(t, tx, crypto.Hash{}, 0, 100)
		h2 = putChainBlock(t, tx, h1, 1, 200)
		h3 = putChainBlock(t, tx, h2, 2, 300)
		return nil
	}))
	_ = h3

	var mb model.MicroBlock
	require.NoError(t, db.Read(func(tx *store.Tx) error {
		var err error
		mb, err = BuildMicroBlock(tx, model.MicroBlock{}, 250, 0, 10)
		return err
	}))

	require.Equal(t, h2, mb.RequestTips[0].Digest)
	require.Equal(t, uint64(2), mb.RequestCount)
	require.Equal(t, uint32(1), mb.Common.Sequence)
	require.False(t, mb.LastMicroBlock)
}

func TestBuildMicroBlockSetsLastMicroBlockAtBudget(t *testing.T) {
	db := setupDB(t)
	prev := model.MicroBlock{Common: wire.PrePrepareCommon{Sequence: 9}}

	var mb model.MicroBlock
	require.NoError(t, db.Read(func(tx *store.Tx) error {
		var err error
		mb, err = BuildMicroBlock(tx, prev, 250, 0, 10)
		return err
	}))
	require.True(t, mb.LastMicroBlock)
}

func TestValidateMicroBlockRejectsWrongSequence(t *testing.T) {
	db := setupDB(t)
	prev := model.MicroBlock{Common: wire.PrePrepareCommon{Sequence: 3, EpochNumber: 1}}
	candidate := model.MicroBlock{Common: wire.PrePrepareCommon{Sequence: 5, EpochNumber: 1}}

	require.ErrorIs(t, db.Read(func(tx *store.Tx) error {
		return ValidateMicroBlock(tx, prev, candidate)
	}), ErrChainMismatch)
}

func TestValidateMicroBlockAcceptsMatchingBuild(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Write(func(tx *store.Tx) error {
		h1 := putChainBlock(t, tx, crypto.Hash{}, 0, 100)
		putChainBlock(t, tx, h1, 1, 200)
		return nil
	}))

	var mb model.MicroBlock
	require.NoError(t, db.Read(func(tx *store.Tx) error {
		var err error
		mb, err = BuildMicroBlock(tx, model.MicroBlock{}, 250, 0, 10)
		return err
	}))

	require.NoError(t, db.Read(func(tx *store.Tx) error {
		return ValidateMicroBlock(tx, model.MicroBlock{}, mb)
	}))
}

func TestShouldProposeSkipsWhenClockLagsOrQueued(t *testing.T) {
	require.False(t, ShouldPropose(5, 5, false))  // clock already at/ahead of expected
	require.False(t, ShouldPropose(4, 5, true))   // consensus already in flight
	require.False(t, ShouldPropose(5, 5, true))   // both
	require.True(t, ShouldPropose(4, 5, false))   // normal case: must propose
}
