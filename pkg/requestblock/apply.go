package requestblock

import (
	"sort"

	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
)

// Publisher fans a post-committed RequestBlock out to the cache layer and
// any connected websocket listeners (§4.3.4 step 4). Kept as a narrow
// interface so pkg/requestblock never imports the transport/cache packages
// directly.
type Publisher interface {
	PublishRequestBlock(model.RequestBlock)
}

// receivedTransfer is one inbound Transaction with enough context to sort
// the destination's receive-chain into total order (timestamp, then hash).
type receivedTransfer struct {
	destination model.Address
	amount      *model.Amount
	sourceHash  model.Hash
	timestampMS uint64
}

// Apply commits a validated batch of requests as a RequestBlock inside a
// single write transaction, per §4.3.4:
//  1. append the block under a new content hash and advance the delegate's
//     tip;
//  2. update every touched account and place receives on destination
//     receive-chains in (timestamp, hash) order;
//  3. apply staking, liability and voting-power side effects (delegated to
//     pkg/staking via the injected StakingApplier); reward rows are not
//     updated here;
//  4. publish the committed block.
func Apply(db *store.DB, delegateIndex uint8, common wire.PrePrepareCommon, requests []model.Request, prepareSig, commitSig, participation wire.AggregatedSig, staking StakingApplier, pub Publisher) (model.RequestBlock, error) {
	blk := model.RequestBlock{
		Common:        common,
		Requests:      requests,
		PrepareSig:    prepareSig,
		CommitSig:     commitSig,
		Participation: participation,
	}

	err := db.Write(func(tx *store.Tx) error {
		if err := tx.PutRequestBlock(blk); err != nil {
			return err
		}
		hash := model.HashView(blk.View())
		if err := tx.PutRequestBlockTip(delegateIndex, hash); err != nil {
			return err
		}

		var transfers []receivedTransfer
		for _, r := range requests {
			if r.IsNull() {
				continue
			}
			applied, err := applyRequest(tx, r)
			if err != nil {
				return err
			}
			transfers = append(transfers, applied...)
			if staking != nil {
				if err := staking.Apply(tx, r); err != nil {
					return err
				}
			}
		}

		if err := placeReceives(tx, transfers); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return model.RequestBlock{}, err
	}

	if pub != nil {
		pub.PublishRequestBlock(blk)
	}
	return blk, nil
}

// StakingApplier lets pkg/staking hook stake/voting-power/reward side
// effects into the same write transaction that commits the block, without
// pkg/requestblock importing pkg/staking.
type StakingApplier interface {
	Apply(tx *store.Tx, r model.Request) error
}

// lockedAmounts sums addr's current staked funds and outstanding thawing
// funds from the store, for AvailableBalanceInvariant's "balance − (staked +
// thawing + secondary liabilities)" (§3, §8 invariant #3). Secondary
// liabilities are content-hash-addressed rather than indexed by source
// account (pkg/staking.LiabilityIndex is the in-memory side-index a staking
// Applier keeps for that), so they are not summed here; an account with no
// staking/proxy activity is unaffected either way.
func lockedAmounts(tx *store.Tx, addr model.Address) (staked, thawing *model.Amount, err error) {
	staked = model.ZeroAmount()
	if s, ok, ferr := tx.GetStaked(addr); ferr != nil {
		return nil, nil, ferr
	} else if ok {
		staked = s.Amount
	}

	thawing = model.ZeroAmount()
	err = tx.IterateThawing(addr, func(t model.ThawingFunds) bool {
		thawing = new(model.Amount).Add(thawing, t.Amount)
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	return staked, thawing, nil
}

// applyRequest mutates the origin account for r and returns any transfers
// it produces for downstream receive-chain placement.
func applyRequest(tx *store.Tx, r model.Request) ([]receivedTransfer, error) {
	account, ok, err := tx.GetAccount(r.Origin)
	if err != nil {
		return nil, err
	}
	if !ok {
		account = model.AccountInfo{Balance: model.ZeroAmount(), AvailableBalance: model.ZeroAmount()}
	}
	account.HeadSequence = r.Sequence
	account.Head = r.Hash()

	var transfers []receivedTransfer
	switch r.Kind {
	case model.KindSend:
		total := new(model.Amount)
		for _, txn := range r.Transactions {
			total.Add(total, txn.Amount)
			transfers = append(transfers, receivedTransfer{
				destination: txn.Destination,
				amount:      txn.Amount,
				sourceHash:  r.Hash(),
				timestampMS: r.TimestampMS,
			})
		}
		total.Add(total, r.Fee)
		account.Balance = new(model.Amount).Sub(account.Balance, total)
	case model.KindChangeRep, model.KindProxy, model.KindStartRepresenting:
		account.Representative = r.Representative
	}

	staked, thawing, err := lockedAmounts(tx, r.Origin)
	if err != nil {
		return nil, err
	}
	account.AvailableBalance = account.AvailableBalanceInvariant(staked, thawing, model.ZeroAmount())

	if err := tx.PutAccount(r.Origin, account); err != nil {
		return nil, err
	}
	return transfers, nil
}

// placeReceives applies the transfers to their destination accounts'
// balances in (timestamp, hash) order — §4.3.4 step 2 — and persists one
// receive record per transfer keyed by destination address || source
// request hash; the key does not encode the timestamp.
func placeReceives(tx *store.Tx, transfers []receivedTransfer) error {
	sort.SliceStable(transfers, func(i, j int) bool {
		if transfers[i].timestampMS != transfers[j].timestampMS {
			return transfers[i].timestampMS < transfers[j].timestampMS
		}
		return lessHash(transfers[i].sourceHash, transfers[j].sourceHash)
	})

	for _, t := range transfers {
		dest, ok, err := tx.GetAccount(t.destination)
		if err != nil {
			return err
		}
		if !ok {
			dest = model.AccountInfo{Balance: model.ZeroAmount(), AvailableBalance: model.ZeroAmount()}
		}
		dest.Balance = new(model.Amount).Add(dest.Balance, t.amount)
		dest.AvailableBalance = dest.AvailableBalanceInvariant(model.ZeroAmount(), model.ZeroAmount(), model.ZeroAmount())
		if err := tx.PutAccount(t.destination, dest); err != nil {
			return err
		}
		receiveKey := append(append([]byte{}, t.destination[:]...), t.sourceHash[:]...)
		if err := tx.PutRaw(store.TableReceives, receiveKey, t.amount.Bytes32()[:]); err != nil {
			return err
		}
	}
	return nil
}

func lessHash(a, b model.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
