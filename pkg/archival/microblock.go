package archival

import (
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
)

// ErrMissingTip is returned when a declared chain tip cannot be found in
// the store during either building or validating a MicroBlock.
var ErrMissingTip = errors.New("archival: declared tip not found in store")

// ErrChainMismatch covers every §4.4.2 chaining/count/root failure.
var ErrChainMismatch = errors.New("archival: microblock does not chain correctly")

// BuildMicroBlock implements §4.4.1. prev is the previous MicroBlock (the
// zero value for the network's first microblock); intervalMS is I_M (10
// minutes nominal); oldestBSBTimestamp seeds the cut-off when prev is the
// zero block; epochMicroBlockBudget is the configured number of
// microblocks per epoch, used to set LastMicroBlock.
func BuildMicroBlock(tx *store.Tx, prev model.MicroBlock, intervalMS, oldestBSBTimestamp uint64, epochMicroBlockBudget uint32) (model.MicroBlock, error) {
	cutoff := prev.Common.TimestampMS
	if cutoff == 0 {
		cutoff = oldestBSBTimestamp
	}
	cutoff += intervalMS

	var tips [consensustype.DelegateCount]wire.Tip
	var selected []crypto.Hash

	for i := uint8(0); i < consensustype.DelegateCount; i++ {
		tipHash, ok := tx.GetRequestBlockTip(i)
		if !ok {
			continue // delegate chain has produced nothing yet
		}
		chosen, chain, err := walkChainToCutoff(tx, tipHash, prev.RequestTips[i].Digest, cutoff)
		if err != nil {
			return model.MicroBlock{}, err
		}
		if chosen.IsZero() {
			tips[i] = prev.RequestTips[i]
			continue
		}
		blk, ok, err := tx.GetRequestBlock(chosen)
		if err != nil {
			return model.MicroBlock{}, err
		}
		if !ok {
			return model.MicroBlock{}, ErrMissingTip
		}
		tips[i] = wire.Tip{Epoch: blk.Common.EpochNumber, Sequence: blk.Common.Sequence, Digest: chosen}
		selected = append(selected, chain...)
	}

	sequence := prev.Common.Sequence + 1
	mb := model.MicroBlock{
		Common: wire.PrePrepareCommon{
			EpochNumber: prev.Common.EpochNumber,
			Sequence:    sequence,
		},
		RequestTips:    tips,
		MerkleRoot:     MerkleRoot(selected),
		RequestCount:   uint64(len(selected)),
		LastMicroBlock: sequence == epochMicroBlockBudget,
	}
	return mb, nil
}

// walkChainToCutoff walks a single delegate chain backward from tip until
// it reaches stopAt (the previous microblock's recorded tip for this
// chain, exclusive) or a block whose timestamp exceeds cutoff. It returns
// the last block hash at or before cutoff (the new tip for this chain) and
// the ordered (oldest-first) sequence of hashes newly included.
func walkChainToCutoff(tx *store.Tx, tip, stopAt crypto.Hash, cutoff uint64) (crypto.Hash, []crypto.Hash, error) {
	var chain []crypto.Hash
	var chosen crypto.Hash
	cur := tip
	for !cur.IsZero() && cur != stopAt {
		blk, ok, err := tx.GetRequestBlock(cur)
		if err != nil {
			return crypto.Hash{}, nil, err
		}
		if !ok {
			return crypto.Hash{}, nil, ErrMissingTip
		}
		if blk.Common.TimestampMS > cutoff {
			cur = blk.Common.Previous
			continue
		}
		if chosen.IsZero() {
			chosen = cur
		}
		chain = append(chain, cur)
		cur = blk.Common.Previous
	}
	// chain was collected tip-first; reverse to oldest-first for Merkle
	// ordering.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chosen, chain, nil
}

// ValidateMicroBlock implements §4.4.2.
func ValidateMicroBlock(tx *store.Tx, prev model.MicroBlock, candidate model.MicroBlock) error {
	if candidate.Common.EpochNumber == prev.Common.EpochNumber {
		if candidate.Common.Sequence != prev.Common.Sequence+1 {
			return ErrChainMismatch
		}
	} else {
		if candidate.Common.EpochNumber != prev.Common.EpochNumber+1 || candidate.Common.Sequence != 0 {
			return ErrChainMismatch
		}
	}

	var selected []crypto.Hash
	for i := uint8(0); i < consensustype.DelegateCount; i++ {
		if candidate.RequestTips[i].Digest.IsZero() {
			continue
		}
		if _, ok, err := tx.GetRequestBlock(candidate.RequestTips[i].Digest); err != nil {
			return err
		} else if !ok {
			return ErrMissingTip
		}
		_, chain, err := walkChainToCutoff(tx, candidate.RequestTips[i].Digest, prev.RequestTips[i].Digest, ^uint64(0))
		if err != nil {
			return err
		}
		selected = append(selected, chain...)
	}
	if uint64(len(selected)) != candidate.RequestCount {
		return ErrChainMismatch
	}
	if MerkleRoot(selected) != candidate.MerkleRoot {
		return ErrChainMismatch
	}
	return nil
}

// ShouldPropose implements §4.4.4's skip rules. latestSequence is the
// highest microblock sequence already stored for this slot's epoch;
// expectedNext is the scheduler's computed next sequence number;
// consensusQueued reports whether a microblock for this (epoch, sequence)
// is already in flight in the message handler.
func ShouldPropose(latestSequence, expectedNext uint32, consensusQueued bool) bool {
	clockLagging := latestSequence >= expectedNext
	return !clockLagging && !consensusQueued
}
