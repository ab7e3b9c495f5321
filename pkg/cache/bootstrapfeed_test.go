package cache

import (
	"path/filepath"
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{ accept bool }

func (s stubVerifier) VerifyAggregate(bitmap crypto.Bitmap, sig crypto.Hash, referenceHash crypto.Hash) bool {
	return s.accept
}

func setupFeederDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFeedRequestBlockRejectsBadSignature(t *testing.T) {
	c, err := NewBlockCache()
	require.NoError(t, err)
	db := setupFeederDB(t)
	f := NewFeeder(c, db, stubVerifier{accept: false})

	blk := model.RequestBlock{Common: wire.PrePrepareCommon{EpochNumber: 1, Sequence: 1}}
	accepted, err := f.FeedRequestBlock(0, blk)
	require.NoError(t, err)
	require.False(t, accepted)

	hash := model.HashView(blk.View())
	err = db.Read(func(tx *store.Tx) error {
		_, ok, err := tx.GetRequestBlock(hash)
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestFeedRequestBlockAcceptsAndPersists(t *testing.T) {
	c, err := NewBlockCache()
	require.NoError(t, err)
	db := setupFeederDB(t)
	f := NewFeeder(c, db, stubVerifier{accept: true})

	blk := model.RequestBlock{Common: wire.PrePrepareCommon{EpochNumber: 1, Sequence: 1}}
	accepted, err := f.FeedRequestBlock(5, blk)
	require.NoError(t, err)
	require.True(t, accepted)

	hash := model.HashView(blk.View())
	require.True(t, c.IsVerified(hash))

	var tip crypto.Hash
	var ok bool
	err = db.Read(func(tx *store.Tx) error {
		got, present, err := tx.GetRequestBlock(hash)
		require.NoError(t, err)
		require.True(t, present)
		require.Equal(t, blk.Common, got.Common)
		tip, ok = tx.GetRequestBlockTip(5)
		return nil
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hash, tip)

	// A second feed of the same block reuses the cached verification
	// outcome rather than calling the verifier again.
	f.Verifier = stubVerifier{accept: false}
	accepted, err = f.FeedRequestBlock(5, blk)
	require.NoError(t, err)
	require.True(t, accepted)
}

func TestFeedEpochBlockPurgesThenRecaches(t *testing.T) {
	c, err := NewBlockCache()
	require.NoError(t, err)
	db := setupFeederDB(t)
	f := NewFeeder(c, db, stubVerifier{accept: true})

	stale := crypto.Hash{0x42}
	c.MarkVerified(stale)

	blk := model.EpochBlock{Common: wire.PrePrepareCommon{EpochNumber: 2}}
	for i := range blk.Delegates {
		blk.Delegates[i].Stake = model.ZeroAmount()
	}
	blk.TransactionFeePool = model.ZeroAmount()

	accepted, err := f.FeedEpochBlock(blk)
	require.NoError(t, err)
	require.True(t, accepted)

	require.False(t, c.IsVerified(stale))
	hash := model.HashView(blk.View())
	require.True(t, c.IsVerified(hash))

	tip, ok := func() (crypto.Hash, bool) {
		var tip crypto.Hash
		var ok bool
		_ = db.Read(func(tx *store.Tx) error {
			tip, ok = tx.GetEpochTip()
			return nil
		})
		return tip, ok
	}()
	require.True(t, ok)
	require.Equal(t, hash, tip)
}
