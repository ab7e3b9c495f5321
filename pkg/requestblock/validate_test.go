package requestblock

import (
	"path/filepath"
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/stretchr/testify/require"
)

type alwaysValid struct{}

func (alwaysValid) VerifyRequestSignature(model.Request) bool { return true }

type alwaysInvalidSig struct{}

func (alwaysInvalidSig) VerifyRequestSignature(model.Request) bool { return false }

func setupDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "requestblock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedAccount(t *testing.T, db *store.DB, addr model.Address, balance *model.Amount, head model.Hash, seq uint32) {
	t.Helper()
	require.NoError(t, db.Write(func(tx *store.Tx) error {
		return tx.PutAccount(addr, model.AccountInfo{
			Head:             head,
			HeadSequence:     seq,
			Balance:          balance,
			AvailableBalance: balance,
		})
	}))
}

func TestValidateRejectsBadSignature(t *testing.T) {
	db := setupDB(t)
	var origin model.Address
	origin[0] = 1
	seedAccount(t, db, origin, model.ZeroAmount(), model.Hash{}, 0)

	req := model.Request{Origin: origin, Previous: model.Hash{}, Sequence: 1}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, BadSignature, Validate(tx, alwaysInvalidSig{}, req))
		return nil
	})
}

func TestValidateRejectsGapPrevious(t *testing.T) {
	db := setupDB(t)
	var origin model.Address
	origin[0] = 2
	seedAccount(t, db, origin, model.ZeroAmount(), model.Hash{1}, 0)

	req := model.Request{Origin: origin, Previous: model.Hash{}, Sequence: 1}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, GapPrevious, Validate(tx, alwaysValid{}, req))
		return nil
	})
}

func TestValidateRejectsBadSequence(t *testing.T) {
	db := setupDB(t)
	var origin model.Address
	origin[0] = 3
	seedAccount(t, db, origin, model.ZeroAmount(), model.Hash{}, 5)

	req := model.Request{Origin: origin, Previous: model.Hash{}, Sequence: 1}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, BadSequence, Validate(tx, alwaysValid{}, req))
		return nil
	})
}

func TestValidateSendChecksBalanceAndFee(t *testing.T) {
	db := setupDB(t)
	var origin, dest model.Address
	origin[0], dest[0] = 4, 5
	balance := model.ZeroAmount()
	*balance = *MinTransactionFee // exactly the fee, nothing for the transfer
	seedAccount(t, db, origin, balance, model.Hash{}, 0)

	req := model.Request{
		Kind: model.KindSend, Origin: origin, Previous: model.Hash{}, Sequence: 1,
		Fee:          MinTransactionFee,
		Transactions: []model.Transaction{{Destination: dest, Amount: model.ZeroAmount().SetUint64(1)}},
	}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, InsufficientBalance, Validate(tx, alwaysValid{}, req))
		return nil
	})
}

func TestValidateSendAcceptsSufficientBalance(t *testing.T) {
	db := setupDB(t)
	var origin, dest model.Address
	origin[0], dest[0] = 6, 7
	balance := new(model.Amount).Add(MinTransactionFee, model.ZeroAmount().SetUint64(100))
	seedAccount(t, db, origin, balance, model.Hash{}, 0)

	req := model.Request{
		Kind: model.KindSend, Origin: origin, Previous: model.Hash{}, Sequence: 1,
		Fee:          MinTransactionFee,
		Transactions: []model.Transaction{{Destination: dest, Amount: model.ZeroAmount().SetUint64(100)}},
	}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, Accepted, Validate(tx, alwaysValid{}, req))
		return nil
	})
}

func TestValidateElectionVoteRequiresRepresentative(t *testing.T) {
	db := setupDB(t)
	var origin model.Address
	origin[0] = 8
	seedAccount(t, db, origin, model.ZeroAmount(), model.Hash{}, 0)

	req := model.Request{
		Kind: model.KindElectionVote, Origin: origin, Previous: model.Hash{}, Sequence: 1,
		Vote: model.ElectionVote{Candidates: []model.Address{{9}}, Votes: []uint8{10}},
	}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, NotRepresentative, Validate(tx, alwaysValid{}, req))
		return nil
	})
}

func TestValidateAnnounceCandidacyRequiresMinStake(t *testing.T) {
	db := setupDB(t)
	var origin model.Address
	origin[0] = 10
	seedAccount(t, db, origin, model.ZeroAmount(), model.Hash{}, 0)

	req := model.Request{
		Kind: model.KindAnnounceCandidacy, Origin: origin, Previous: model.Hash{}, Sequence: 1,
		Stake: model.ZeroAmount().SetUint64(1),
	}
	db.Read(func(tx *store.Tx) error {
		require.Equal(t, StakeTooLow, Validate(tx, alwaysValid{}, req))
		return nil
	})
}
