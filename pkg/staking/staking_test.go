package staking

import (
	"path/filepath"
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "staking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStakingThawMergeScenario reproduces scenario S4 exactly.
func TestStakingThawMergeScenario(t *testing.T) {
	db := setupDB(t)
	var addr, target model.Address
	addr[0], target[0] = 1, 2

	amt := func(v uint64) *model.Amount { return model.ZeroAmount().SetUint64(v) }

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Stake(tx, addr, target, amt(50), 100)
	}))
	db.Read(func(tx *store.Tx) error {
		s, ok, err := tx.GetStaked(addr)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, uint64(50), s.Amount.Uint64())
		var count int
		tx.IterateThawing(addr, func(model.ThawingFunds) bool { count++; return true })
		require.Equal(t, 0, count)
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Stake(tx, addr, target, amt(150), 100)
	}))
	db.Read(func(tx *store.Tx) error {
		s, _, _ := tx.GetStaked(addr)
		require.Equal(t, uint64(150), s.Amount.Uint64())
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Stake(tx, addr, target, amt(100), 100)
	}))
	db.Read(func(tx *store.Tx) error {
		s, _, _ := tx.GetStaked(addr)
		require.Equal(t, uint64(100), s.Amount.Uint64())
		var found model.ThawingFunds
		tx.IterateThawing(addr, func(t model.ThawingFunds) bool { found = t; return true })
		require.Equal(t, uint64(50), found.Amount.Uint64())
		require.Equal(t, uint32(142), found.ExpirationEpoch)
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Stake(tx, addr, target, amt(75), 100)
	}))
	db.Read(func(tx *store.Tx) error {
		s, _, _ := tx.GetStaked(addr)
		require.Equal(t, uint64(75), s.Amount.Uint64())
		var found model.ThawingFunds
		var count int
		tx.IterateThawing(addr, func(t model.ThawingFunds) bool { found = t; count++; return true })
		require.Equal(t, 1, count)
		require.Equal(t, uint64(75), found.Amount.Uint64())
		return nil
	})
}

// TestRewardsClaimScenario reproduces scenario S5 exactly.
func TestRewardsClaimScenario(t *testing.T) {
	db := setupDB(t)
	var rep model.Address
	rep[0] = 9
	amt := func(v uint64) *model.Amount { return model.ZeroAmount().SetUint64(v) }

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		if err := OpenEpoch(tx, 42, amt(100000)); err != nil {
			return err
		}
		return OpenRepReward(tx, 42, rep, amt(100000))
	}))

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Claim(tx, 42, rep, amt(1000))
	}))
	db.Read(func(tx *store.Tx) error {
		r, ok := tx.GetReward(42, rep)
		require.True(t, ok)
		require.Equal(t, uint64(99000), r.Uint64())
		g, ok := tx.GetGlobalReward(42)
		require.True(t, ok)
		require.Equal(t, uint64(99000), g.Uint64())
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Claim(tx, 42, rep, amt(1000))
	}))
	db.Read(func(tx *store.Tx) error {
		r, _ := tx.GetReward(42, rep)
		require.Equal(t, uint64(98000), r.Uint64())
		g, _ := tx.GetGlobalReward(42)
		require.Equal(t, uint64(98000), g.Uint64())
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return Claim(tx, 42, rep, amt(98000))
	}))
	db.Read(func(tx *store.Tx) error {
		_, ok := tx.GetReward(42, rep)
		require.False(t, ok)
		_, ok = tx.GetGlobalReward(42)
		require.False(t, ok)
		return nil
	})
}

func TestClaimRejectsExceedingRemaining(t *testing.T) {
	db := setupDB(t)
	var rep model.Address
	rep[0] = 1
	amt := func(v uint64) *model.Amount { return model.ZeroAmount().SetUint64(v) }

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		if err := OpenEpoch(tx, 1, amt(100)); err != nil {
			return err
		}
		return OpenRepReward(tx, 1, rep, amt(100))
	}))

	err := db.Write(func(tx *store.Tx) error {
		return Claim(tx, 1, rep, amt(101))
	})
	require.ErrorIs(t, err, ErrClaimExceedsRemaining)
}

func TestVotingPowerTransitionsAcrossEpoch(t *testing.T) {
	db := setupDB(t)
	var rep model.Address
	rep[0] = 5
	m := NewVotingPowerManager()

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return m.Update(tx, rep, 1, Snapshot{SelfStake: 100})
	}))
	db.Read(func(tx *store.Tx) error {
		cur, ok := tx.GetVotingPower(rep, false)
		require.True(t, ok)
		require.Equal(t, uint64(0), cur) // current hasn't transitioned in yet
		next, ok := tx.GetVotingPower(rep, true)
		require.True(t, ok)
		require.Equal(t, uint64(100), next)
		return nil
	})

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return m.Update(tx, rep, 2, Snapshot{SelfStake: 50})
	}))
	db.Read(func(tx *store.Tx) error {
		cur, _ := tx.GetVotingPower(rep, false)
		require.Equal(t, uint64(100), cur) // last epoch's Next became Current
		next, _ := tx.GetVotingPower(rep, true)
		require.Equal(t, uint64(50), next)
		return nil
	})
}

func TestLiabilityIndexRejectsConflictingSecondaryTarget(t *testing.T) {
	db := setupDB(t)
	idx := NewLiabilityIndex()
	var source, targetA, targetB model.Address
	source[0], targetA[0], targetB[0] = 1, 2, 3
	amt := model.ZeroAmount().SetUint64(10)

	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return idx.PutSecondary(tx, targetA, source, amt, 10)
	}))

	err := db.Write(func(tx *store.Tx) error {
		return idx.PutSecondary(tx, targetB, source, amt, 20)
	})
	require.ErrorIs(t, err, ErrConflictingSecondaryTarget)
}
