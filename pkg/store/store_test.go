package store

import (
	"path/filepath"
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/stretchr/testify/require"
)

func setupDB(t testing.TB) *DB {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAccountRoundTrip(t *testing.T) {
	db := setupDB(t)
	addr := model.Address{1, 2, 3}
	info := model.AccountInfo{
		Balance:          model.ZeroAmount(),
		AvailableBalance: model.ZeroAmount(),
		ModifiedEpoch:    7,
		HeadSequence:     3,
	}
	require.NoError(t, db.Write(func(tx *Tx) error {
		return tx.PutAccount(addr, info)
	}))

	var got model.AccountInfo
	var ok bool
	require.NoError(t, db.Read(func(tx *Tx) error {
		var err error
		got, ok, err = tx.GetAccount(addr)
		return err
	}))
	require.True(t, ok)
	require.Equal(t, info.ModifiedEpoch, got.ModifiedEpoch)
	require.Equal(t, info.HeadSequence, got.HeadSequence)
}

func TestRequestBlockRoundTrip(t *testing.T) {
	db := setupDB(t)
	blk := model.RequestBlock{
		Requests: []model.Request{
			{
				Kind: model.KindSend,
				Fee:  model.ZeroAmount(),
				Transactions: []model.Transaction{
					{Destination: model.Address{9}, Amount: model.ZeroAmount()},
				},
			},
			model.NullRequest(),
		},
	}
	h := model.HashView(blk.View())

	require.NoError(t, db.Write(func(tx *Tx) error {
		if err := tx.PutRequestBlock(blk); err != nil {
			return err
		}
		return tx.PutRequestBlockTip(0, h)
	}))

	var got model.RequestBlock
	var ok bool
	var tip crypto.Hash
	require.NoError(t, db.Read(func(tx *Tx) error {
		var err error
		got, ok, err = tx.GetRequestBlock(h)
		tip, _ = tx.GetRequestBlockTip(0)
		return err
	}))
	require.True(t, ok)
	require.Equal(t, h, tip)
	require.Len(t, got.Requests, 2)
	require.True(t, got.Requests[1].IsNull())
	require.Equal(t, model.Address{9}, got.Requests[0].Transactions[0].Destination)
}

func TestThawingIteratesInExpirationOrder(t *testing.T) {
	db := setupDB(t)
	addr := model.Address{4}
	target := model.Address{5}

	entries := []model.ThawingFunds{
		{TargetRep: target, Amount: model.ZeroAmount(), ExpirationEpoch: 102},
		{TargetRep: target, Amount: model.ZeroAmount(), ExpirationEpoch: 100},
		{TargetRep: target, Amount: model.ZeroAmount(), ExpirationEpoch: 101},
	}
	require.NoError(t, db.Write(func(tx *Tx) error {
		for _, e := range entries {
			if err := tx.PutThawing(addr, e); err != nil {
				return err
			}
		}
		return nil
	}))

	var seen []uint32
	require.NoError(t, db.Read(func(tx *Tx) error {
		return tx.IterateThawing(addr, func(e model.ThawingFunds) bool {
			seen = append(seen, e.ExpirationEpoch)
			return true
		})
	}))
	require.Equal(t, []uint32{100, 101, 102}, seen)
}

func TestRewardDrainDeletesRow(t *testing.T) {
	db := setupDB(t)
	rep := model.Address{6}

	remaining := model.ZeroAmount()
	remaining.SetUint64(100)
	require.NoError(t, db.Write(func(tx *Tx) error {
		return tx.PutReward(42, rep, remaining)
	}))

	remaining.SetUint64(0)
	require.NoError(t, db.Write(func(tx *Tx) error {
		return tx.DeleteReward(42, rep)
	}))

	var ok bool
	require.NoError(t, db.Read(func(tx *Tx) error {
		_, ok = tx.GetReward(42, rep)
		return nil
	}))
	require.False(t, ok)
}
