// Package staking implements §4.5: staking/thawing, liability accounting,
// voting-power snapshots, and reward accrual. Grounded on
// berith/staking/point.go's selection-point accrual formula (the shape of
// "merge a prior commitment with a new one under a ratio rule"), adapted
// here into the stake/thaw transition rules of §4.5.1.
package staking

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// ThawingPeriod is THAWING_PERIOD of §4.5.1: thawed funds remain locked for
// 42 epochs after being released.
const ThawingPeriod = 42

// Stake applies a Stake(new_target, new_amount) request at epoch e to
// addr's current staking record, per §4.5.1:
//   - retargeting (new_target != current.target) thaws the whole current
//     stake and opens a fresh one at new_target;
//   - a same-target increase tops up from available balance;
//   - a same-target decrease thaws the difference.
func Stake(tx *store.Tx, addr model.Address, newTarget model.Address, newAmount *model.Amount, epoch uint32) error {
	current, ok, err := tx.GetStaked(addr)
	if err != nil {
		return err
	}
	if !ok {
		return tx.PutStaked(addr, model.StakedFunds{TargetRep: newTarget, Amount: newAmount})
	}

	if current.TargetRep != newTarget {
		if err := thaw(tx, addr, current.TargetRep, current.Amount, epoch); err != nil {
			return err
		}
		return tx.PutStaked(addr, model.StakedFunds{TargetRep: newTarget, Amount: newAmount})
	}

	switch current.Amount.Cmp(newAmount) {
	case -1: // top up
		return tx.PutStaked(addr, model.StakedFunds{TargetRep: newTarget, Amount: newAmount})
	case 1: // partial release
		diff := new(model.Amount).Sub(current.Amount, newAmount)
		if err := thaw(tx, addr, current.TargetRep, diff, epoch); err != nil {
			return err
		}
		return tx.PutStaked(addr, model.StakedFunds{TargetRep: newTarget, Amount: newAmount})
	default: // unchanged
		return nil
	}
}

// thaw moves amount into addr's thawing set for target, merging with any
// existing entry at the same (target, expiration) key per §4.5.1's
// coalesce-by-summation rule.
func thaw(tx *store.Tx, addr, target model.Address, amount *model.Amount, epoch uint32) error {
	if amount.IsZero() {
		return nil
	}
	key := model.ThawKey{TargetRep: target, ExpirationEpoch: epoch + ThawingPeriod}

	var merged *model.Amount
	err := tx.IterateThawing(addr, func(existing model.ThawingFunds) bool {
		if existing.Key() == key {
			merged = new(model.Amount).Add(existing.Amount, amount)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if merged == nil {
		merged = amount
	}
	return tx.PutThawing(addr, model.ThawingFunds{
		TargetRep:       target,
		Amount:          merged,
		ExpirationEpoch: key.ExpirationEpoch,
	})
}

// ReleaseExpiredThawing removes every thawing entry for addr that has
// reached its expiration epoch, returning the total amount released back
// to available balance. Callers invoke this lazily on account access,
// matching §4.5.2's "pruning deletes expired entries lazily on access" for
// the closely related liability table.
func ReleaseExpiredThawing(tx *store.Tx, addr model.Address, currentEpoch uint32) (*model.Amount, error) {
	released := model.ZeroAmount()
	var expired []model.ThawKey
	err := tx.IterateThawing(addr, func(t model.ThawingFunds) bool {
		if t.ExpirationEpoch <= currentEpoch {
			released = new(model.Amount).Add(released, t.Amount)
			expired = append(expired, t.Key())
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	for _, k := range expired {
		if err := tx.DeleteThawing(addr, k); err != nil {
			return nil, err
		}
	}
	return released, nil
}
