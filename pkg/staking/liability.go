package staking

import (
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// ErrConflictingSecondaryTarget is returned when a source account already
// has an unexpired secondary liability pointed at a different target
// (§4.5.2's invariant: "all active secondary liabilities for one source
// share the same target").
var ErrConflictingSecondaryTarget = errors.New("staking: source has an active secondary liability to a different target")

// LiabilityIndex tracks, per source account, the single target its active
// secondary liabilities point to. This is an in-memory side index over the
// content-addressed liability table; pkg/store has no secondary index by
// source, so callers sharing one store.DB should share one LiabilityIndex.
type LiabilityIndex struct {
	secondaryTarget map[model.Address]model.Address
}

// NewLiabilityIndex builds an empty index. Callers that resume from an
// existing store must repopulate it by replaying PutSecondary calls for
// every unexpired secondary liability found on open.
func NewLiabilityIndex() *LiabilityIndex {
	return &LiabilityIndex{secondaryTarget: make(map[model.Address]model.Address)}
}

// PutPrimary records a staking/thawing obligation owed to a representative.
func PutPrimary(tx *store.Tx, target, source model.Address, amount *model.Amount, expirationEpoch uint32) error {
	return tx.PutLiability(model.Liability{
		Kind:            model.PrimaryLiability,
		Target:          target,
		Source:          source,
		Amount:          amount,
		ExpirationEpoch: expirationEpoch,
	})
}

// PutSecondary records a locked-proxy liability, enforcing the single-
// target-per-source invariant.
func (idx *LiabilityIndex) PutSecondary(tx *store.Tx, target, source model.Address, amount *model.Amount, expirationEpoch uint32) error {
	if existing, ok := idx.secondaryTarget[source]; ok && existing != target {
		return ErrConflictingSecondaryTarget
	}
	if err := tx.PutLiability(model.Liability{
		Kind:            model.SecondaryLiability,
		Target:          target,
		Source:          source,
		Amount:          amount,
		ExpirationEpoch: expirationEpoch,
	}); err != nil {
		return err
	}
	idx.secondaryTarget[source] = target
	return nil
}

// Prune deletes the liability at (target, source, expirationEpoch) if its
// ExpirationEpoch has passed, lazily on access — §4.5.2: "Pruning deletes
// expired entries lazily on access."
func (idx *LiabilityIndex) Prune(tx *store.Tx, kind model.LiabilityKind, target, source model.Address, expirationEpoch, currentEpoch uint32) (bool, error) {
	if expirationEpoch > currentEpoch {
		return false, nil
	}
	l := model.Liability{Kind: kind, Target: target, Source: source, ExpirationEpoch: expirationEpoch}
	if err := tx.DeleteLiability(l.Hash(), kind); err != nil {
		return false, err
	}
	if kind == model.SecondaryLiability {
		delete(idx.secondaryTarget, source)
	}
	return true, nil
}
