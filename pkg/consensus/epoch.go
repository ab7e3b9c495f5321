package consensus

import (
	"sync"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
)

// EpochManager owns one Instance per consensus type (Request, MicroBlock,
// Epoch) for the committee's current epoch, and performs epoch handover —
// §2's item 9. Lock order relative to the rest of the node
// follows §5: epoch_manager → netio → per-instance, so callers holding an
// EpochManager lock may safely acquire an Instance's internal lock but never
// the reverse.
type EpochManager struct {
	mu sync.RWMutex

	epoch        uint32
	localIndex   uint8
	primaryIndex uint8
	weights      [consensustype.DelegateCount]DelegateWeight
	instances    [consensustype.NumTypes]*Instance
}

// NewEpochManager builds the manager for the node's local delegate index,
// starting at epoch 0 with all three instances idle.
func NewEpochManager(localIndex uint8) *EpochManager {
	m := &EpochManager{localIndex: localIndex}
	for ct := consensustype.Type(0); int(ct) < consensustype.NumTypes; ct++ {
		m.instances[ct] = NewInstance(ct, m.weights)
	}
	return m
}

// Instance returns the per-type instance for ct.
func (m *EpochManager) Instance(ct consensustype.Type) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[ct]
}

// Epoch returns the manager's current epoch number.
func (m *EpochManager) Epoch() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// PrimaryIndex returns the delegate id acting as primary this epoch.
func (m *EpochManager) PrimaryIndex() uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primaryIndex
}

// RoleFor reports whether the local delegate is Primary or Backup this
// epoch. Primary selection is a deterministic round-robin over the
// committee by epoch number, rotating independently of consensus type so
// the three consensus types share one designated proposer per epoch.
func (m *EpochManager) RoleFor(ct consensustype.Type) Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.localIndex == m.primaryIndex {
		return RolePrimary
	}
	return RoleBackup
}

// PrimaryForEpoch computes the round-robin primary delegate id for epoch.
func PrimaryForEpoch(epoch uint32) uint8 {
	return uint8(epoch % consensustype.DelegateCount)
}

// BeginEpoch performs the epoch handover: it installs the new committee's
// weights and primary, then resets every consensus type's instance to Void
// so no stale PrePrepare/PostPrepare/PostCommit state leaks across the
// boundary. A round in progress on an old instance is discarded; BeginEpoch
// sends no New_Epoch rejection and arms no fallback timer.
func (m *EpochManager) BeginEpoch(epoch uint32, weights [consensustype.DelegateCount]DelegateWeight) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch = epoch
	m.weights = weights
	m.primaryIndex = PrimaryForEpoch(epoch)
	for ct := consensustype.Type(0); int(ct) < consensustype.NumTypes; ct++ {
		m.instances[ct] = NewInstance(ct, weights)
	}
}
