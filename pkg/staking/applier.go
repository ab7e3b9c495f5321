package staking

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// Applier wires staking, liability, and voting-power side effects into the
// same write transaction a RequestBlock commits (§4.3.4 step 3, §4.5): it
// satisfies pkg/requestblock.StakingApplier without pkg/requestblock needing
// to import this package.
//
// A fresh Applier's VotingPowerManager and LiabilityIndex start empty and
// are not rebuilt from the store: they reflect only the requests applied
// through this Applier (the derived indices are not persisted separately).
type Applier struct {
	Voting      *VotingPowerManager
	Liabilities *LiabilityIndex
	Epoch       uint32
}

// NewApplier builds an Applier for the given epoch with empty in-memory
// indices.
func NewApplier(epoch uint32) *Applier {
	return &Applier{
		Voting:      NewVotingPowerManager(),
		Liabilities: NewLiabilityIndex(),
		Epoch:       epoch,
	}
}

// Apply implements pkg/requestblock.StakingApplier, dispatching on r.Kind
// per §4.5:
//   - KindStake retargets/resizes addr's staking record (§4.5.1) and records
//     a primary liability from the target representative back to the
//     staker — proxied stake (Origin != Representative, the target field
//     KindStake shares with KindChangeRep/KindProxy) also counts toward the
//     target's LockedProxied voting power (§4.5.3); self-stake counts
//     toward SelfStake instead. A liability with ExpirationEpoch 0 is
//     "active" (not yet thawing); Stake's retarget/decrease path (thaw)
//     writes thawing entries only and leaves this liability unchanged.
//   - KindAnnounceCandidacy opens a representative's own voting-power record
//     from their announced self-stake.
//   - KindRenounceCandidacy prunes a representative's voting-power record
//     once they stop representing.
//   - KindElectionVote credits each candidate's LockedProxied snapshot by
//     the voter's weight for that candidate (§4.3.3's weighted votes feed
//     §4.5.3's voting-power accrual the same way a direct proxy stake
//     would).
func (a *Applier) Apply(tx *store.Tx, r model.Request) error {
	switch r.Kind {
	case model.KindStake:
		return a.applyStake(tx, r)
	case model.KindAnnounceCandidacy:
		return a.Voting.Update(tx, r.Origin, a.Epoch, Snapshot{SelfStake: r.Stake.Uint64()})
	case model.KindRenounceCandidacy:
		_, err := a.Voting.Prune(tx, r.Origin, false)
		return err
	case model.KindElectionVote:
		return a.applyElectionVote(tx, r)
	default:
		return nil
	}
}

func (a *Applier) applyStake(tx *store.Tx, r model.Request) error {
	if err := Stake(tx, r.Origin, r.Representative, r.Stake, a.Epoch); err != nil {
		return err
	}
	if err := PutPrimary(tx, r.Representative, r.Origin, r.Stake, 0); err != nil {
		return err
	}
	delta := Snapshot{}
	if r.Origin == r.Representative {
		delta.SelfStake = r.Stake.Uint64()
	} else {
		delta.LockedProxied = r.Stake.Uint64()
	}
	return a.Voting.Update(tx, r.Representative, a.Epoch, delta)
}

func (a *Applier) applyElectionVote(tx *store.Tx, r model.Request) error {
	for i, candidate := range r.Vote.Candidates {
		weight := uint64(r.Vote.Votes[i])
		if err := a.Voting.Update(tx, candidate, a.Epoch, Snapshot{LockedProxied: weight}); err != nil {
			return err
		}
	}
	return nil
}
