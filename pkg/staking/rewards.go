package staking

import (
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// ErrClaimExceedsRemaining is returned when a claim would harvest more than
// the representative's remaining reward.
var ErrClaimExceedsRemaining = errors.New("staking: claim exceeds remaining reward")

// OpenEpoch records the opening global remaining reward for epoch (§4.5.4),
// starting equal to totalReward. The global row stores only this remaining
// amount; total stake and total reward are not stored.
func OpenEpoch(tx *store.Tx, epoch uint32, totalReward *model.Amount) error {
	return tx.PutGlobalReward(epoch, totalReward)
}

// OpenRepReward opens a representative's per-epoch reward row, its
// remaining amount starting at share (the portion of totalReward this
// representative's stake earned).
func OpenRepReward(tx *store.Tx, epoch uint32, rep model.Address, share *model.Amount) error {
	return tx.PutReward(epoch, rep, share)
}

// Claim deducts harvested from both the per-rep and the global remaining
// record, deleting each row once drained to zero, per §4.5.4 / scenario S5.
func Claim(tx *store.Tx, epoch uint32, rep model.Address, harvested *model.Amount) error {
	repRemaining, ok := tx.GetReward(epoch, rep)
	if !ok {
		return ErrClaimExceedsRemaining
	}
	if harvested.Cmp(repRemaining) > 0 {
		return ErrClaimExceedsRemaining
	}
	globalRemaining, ok := tx.GetGlobalReward(epoch)
	if !ok {
		return ErrClaimExceedsRemaining
	}

	newRepRemaining := new(model.Amount).Sub(repRemaining, harvested)
	newGlobalRemaining := new(model.Amount).Sub(globalRemaining, harvested)

	if newRepRemaining.IsZero() {
		if err := tx.DeleteReward(epoch, rep); err != nil {
			return err
		}
	} else if err := tx.PutReward(epoch, rep, newRepRemaining); err != nil {
		return err
	}

	if newGlobalRemaining.IsZero() {
		return tx.DeleteGlobalReward(epoch)
	}
	return tx.PutGlobalReward(epoch, newGlobalRemaining)
}

// SplitClaim divides a harvested amount between the representative and its
// delegators according to levyPercent (0-100), which the caller supplies;
// no levy is stored with an epoch's reward rows (§4.5.4).
func SplitClaim(harvested *model.Amount, levyPercent uint8) (repShare, delegatorShare *model.Amount) {
	levy := model.ZeroAmount().SetUint64(uint64(levyPercent))
	hundred := model.ZeroAmount().SetUint64(100)
	repShare = new(model.Amount).Mul(harvested, levy)
	repShare.Div(repShare, hundred)
	delegatorShare = new(model.Amount).Sub(harvested, repShare)
	return repShare, delegatorShare
}
