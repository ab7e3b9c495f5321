package staking

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// DilutionFactor is §4.5.3's DILUTION_FACTOR: unlocked proxied stake counts
// for 25% of its face value toward voting power.
const DilutionFactor = 25

// Snapshot is one epoch's voting-power inputs for a representative.
type Snapshot struct {
	SelfStake      uint64
	LockedProxied  uint64
	UnlockedProxied uint64
}

// Power computes self_stake + locked_proxied + unlocked_proxied *
// DILUTION_FACTOR / 100, per §4.5.3.
func (s Snapshot) Power() uint64 {
	return s.SelfStake + s.LockedProxied + (s.UnlockedProxied*DilutionFactor)/100
}

func (s Snapshot) isZero() bool {
	return s.SelfStake == 0 && s.LockedProxied == 0 && s.UnlockedProxied == 0
}

// VotingPowerInfo is one representative's current/next snapshot pair, per
// §4.5.3.
type VotingPowerInfo struct {
	Current      Snapshot
	Next         Snapshot
	EpochModified uint32
}

// VotingPowerManager owns the in-memory current/next snapshot state used to
// compute the combined voting-power number persisted by pkg/store (which
// only keeps the two already-dilution-applied totals, not the raw
// self/locked/unlocked components).
type VotingPowerManager struct {
	byRep map[model.Address]*VotingPowerInfo
}

// NewVotingPowerManager builds an empty manager.
func NewVotingPowerManager() *VotingPowerManager {
	return &VotingPowerManager{byRep: make(map[model.Address]*VotingPowerInfo)}
}

// transition copies next into current (resetting next to zero) whenever
// epoch has advanced past epoch_modified, per §4.5.3: "A transition from current
// to next occurs when any read or write happens with epoch > epoch_modified."
func (m *VotingPowerManager) transition(rep model.Address, epoch uint32) *VotingPowerInfo {
	info, ok := m.byRep[rep]
	if !ok {
		info = &VotingPowerInfo{EpochModified: epoch}
		m.byRep[rep] = info
	}
	if epoch > info.EpochModified {
		info.Current = info.Next
		info.Next = Snapshot{}
		info.EpochModified = epoch
	}
	return info
}

// Update applies delta to rep's Next snapshot at epoch and persists the
// combined current/fallback voting-power numbers to the store. The
// fallback copy (Next's power) is what in-flight votes at this epoch read
// before the epoch closes, per §4.5.3.
func (m *VotingPowerManager) Update(tx *store.Tx, rep model.Address, epoch uint32, delta Snapshot) error {
	info := m.transition(rep, epoch)
	info.Next.SelfStake += delta.SelfStake
	info.Next.LockedProxied += delta.LockedProxied
	info.Next.UnlockedProxied += delta.UnlockedProxied

	if err := tx.PutVotingPower(rep, info.Current.Power(), false); err != nil {
		return err
	}
	return tx.PutVotingPower(rep, info.Next.Power(), true)
}

// Prune removes rep's record when both snapshots are zero and the account
// is no longer a representative — §4.5.3's pruning rule.
func (m *VotingPowerManager) Prune(tx *store.Tx, rep model.Address, isRepresentative bool) (bool, error) {
	info, ok := m.byRep[rep]
	if !ok {
		return false, nil
	}
	if isRepresentative || !info.Current.isZero() || !info.Next.isZero() {
		return false, nil
	}
	delete(m.byRep, rep)
	return true, nil
}
