package archival

import (
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// ErrMicroTipNotFinal is returned when an EpochBlock is built or validated
// against a microblock that is not LastMicroBlock.
var ErrMicroTipNotFinal = errors.New("archival: epoch block's microblock tip is not the epoch's final microblock")

// ErrIllegalDelegateSet is returned when an EpochBlock's delegate
// descriptors do not match the elector's output.
var ErrIllegalDelegateSet = errors.New("archival: delegate set is not a legal election output")

// Elector selects the next epoch's 32-delegate committee per §4.5's
// voting-power rules. Injected so pkg/archival never imports pkg/staking
// directly.
type Elector interface {
	SelectDelegates(tx *store.Tx) ([consensustype.DelegateCount]model.DelegateDescriptor, error)
}

// BuildEpochBlock implements §4.4.3: called once the closing epoch's final
// microblock (closingMicro, which must have LastMicroBlock set) is known.
func BuildEpochBlock(tx *store.Tx, prev model.EpochBlock, closingMicro model.MicroBlock, elector Elector, feePool *model.Amount) (model.EpochBlock, error) {
	if !closingMicro.LastMicroBlock {
		return model.EpochBlock{}, ErrMicroTipNotFinal
	}
	delegates, err := elector.SelectDelegates(tx)
	if err != nil {
		return model.EpochBlock{}, err
	}
	microHash := model.HashView(closingMicro.View())
	eb := model.EpochBlock{
		Delegates:          delegates,
		TransactionFeePool: feePool,
		MicroBlockTip:      microHash,
	}
	eb.Common.EpochNumber = prev.Common.EpochNumber + 1
	return eb, nil
}

// ValidateEpochBlock implements §4.4.3's validation: chain continuity
// (epoch_number == prev.epoch_number + 1), a fresh final micro tip, and a
// delegate set that matches the elector's recomputation of the same
// election.
func ValidateEpochBlock(tx *store.Tx, prev model.EpochBlock, closingMicro model.MicroBlock, candidate model.EpochBlock, elector Elector) error {
	wantEpoch := prev.Common.EpochNumber + 1
	if candidate.Common.EpochNumber != wantEpoch {
		return ErrChainMismatch
	}
	if !closingMicro.LastMicroBlock {
		return ErrMicroTipNotFinal
	}
	if candidate.MicroBlockTip != model.HashView(closingMicro.View()) {
		return ErrChainMismatch
	}

	delegates, err := elector.SelectDelegates(tx)
	if err != nil {
		return err
	}
	if !sameDelegateSet(delegates, candidate.Delegates) {
		return ErrIllegalDelegateSet
	}
	return nil
}

// sameDelegateSet compares two delegate-descriptor arrays by value — a
// plain `!=` would compare the Stake *Amount fields by pointer identity,
// not by the amount they point to.
func sameDelegateSet(a, b [consensustype.DelegateCount]model.DelegateDescriptor) bool {
	for i := range a {
		if a[i].Account != b[i].Account || a[i].VoteWeight != b[i].VoteWeight {
			return false
		}
		if (a[i].Stake == nil) != (b[i].Stake == nil) {
			return false
		}
		if a[i].Stake != nil && a[i].Stake.Cmp(b[i].Stake) != 0 {
			return false
		}
	}
	return true
}
