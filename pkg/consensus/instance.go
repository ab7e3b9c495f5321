// Package consensus implements §4.2's per-consensus-type state machine: the
// Void → PrePrepare → PostPrepare → PostCommit → Void cycle, weighted
// quorum counting over both vote-weight and stake-weight, the cancelable
// timer contract of §4.2.3, and the re-proposal subset generator of §4.3.2.
//
// Per Design Notes §9, role (Primary/Backup) and consensus type (Request,
// MicroBlock, Epoch) are orthogonal concerns: role logic — collecting
// Prepare/Commit votes toward quorum — is implemented once here, while
// per-type batch construction and validation live in pkg/requestblock and
// pkg/archival.
package consensus

import (
	"errors"
	"sync"
	"time"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
)

// Role is the tagged Primary/Backup variant of Design Notes §9, replacing a
// deep primary/backup class hierarchy.
type Role uint8

const (
	RolePrimary Role = iota
	RoleBackup
)

func (r Role) String() string {
	if r == RolePrimary {
		return "Primary"
	}
	return "Backup"
}

// State is the per-instance state of §4.2.
type State uint8

const (
	StateVoid State = iota
	StatePrePrepare
	StatePostPrepare
	StatePostCommit
)

func (s State) String() string {
	switch s {
	case StateVoid:
		return "Void"
	case StatePrePrepare:
		return "PrePrepare"
	case StatePostPrepare:
		return "PostPrepare"
	case StatePostCommit:
		return "PostCommit"
	default:
		return "Unknown"
	}
}

// ErrWrongRound is returned when a vote arrives for a hash or state that
// does not match the instance's current round.
var ErrWrongRound = errors.New("consensus: vote does not match current round")

// Instance is one (consensus_type, epoch, sequence) round's quorum
// bookkeeping, shared by the primary (which counts votes) and a backup
// (which mostly tracks its own single-round expectation).
type Instance struct {
	mu sync.Mutex

	Type  consensustype.Type
	state State

	epoch    uint32
	sequence uint32
	hash     crypto.Hash

	weights    [consensustype.DelegateCount]DelegateWeight
	totalVote  uint64
	totalStake uint64
	quorumVote uint64
	quorumStake uint64

	prepared map[uint8]crypto.Signature
	commits  map[uint8]crypto.Signature
	rejected map[uint8]struct{}

	PrepareTimer     *CancelableTimer
	PostPrepareTimer *CancelableTimer
	CommitTimer      *CancelableTimer
	FallbackTimer    *CancelableTimer

	storedPrePrepare *StoredPrePrepare
}

// NewInstance builds an idle instance for consensus type ct over the given
// committee weights.
func NewInstance(ct consensustype.Type, weights [consensustype.DelegateCount]DelegateWeight) *Instance {
	var totalVote, totalStake uint64
	for _, w := range weights {
		totalVote += w.Vote
		totalStake += w.Stake
	}
	return &Instance{
		Type:             ct,
		state:            StateVoid,
		weights:          weights,
		totalVote:        totalVote,
		totalStake:       totalStake,
		quorumVote:       consensustype.Quorum(totalVote),
		quorumStake:      consensustype.Quorum(totalStake),
		PrepareTimer:     NewCancelableTimer(),
		PostPrepareTimer: NewCancelableTimer(),
		CommitTimer:      NewCancelableTimer(),
		FallbackTimer:    NewCancelableTimer(),
	}
}

// State returns the instance's current state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Round returns the instance's current (epoch, sequence, hash).
func (i *Instance) Round() (epoch, sequence uint32, hash crypto.Hash) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.epoch, i.sequence, i.hash
}

// BeginRound moves the instance from Void into PrePrepare for a new
// (epoch, sequence, hash) — either the primary proposing it, or a backup
// accepting it after validation.
func (i *Instance) BeginRound(epoch, sequence uint32, hash crypto.Hash) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.state = StatePrePrepare
	i.epoch = epoch
	i.sequence = sequence
	i.hash = hash
	i.prepared = make(map[uint8]crypto.Signature)
	i.commits = make(map[uint8]crypto.Signature)
	i.rejected = make(map[uint8]struct{})
	i.storedPrePrepare = nil
	i.FallbackTimer.Cancel()
}

// BeginRoundAsPrimary starts a new round as the designated proposer: enters
// PrePrepare and arms PrepareTimer for timeout, PRIMARY_TIMEOUT's wait for a
// quorum of Prepares (§4.2.1 step 1).
func (i *Instance) BeginRoundAsPrimary(epoch, sequence uint32, hash crypto.Hash, timeout time.Duration, onTimeout func()) {
	i.BeginRound(epoch, sequence, hash)
	i.PrepareTimer.Schedule(timeout, onTimeout)
}

// BeginRoundAsBackup validates an incoming PrePrepare against local before
// accepting it, per §4.2.2. containsInvalidRequest folds in the result of
// running each contained Request through pkg/requestblock's per-request
// Validate against a read transaction of the store — only Request-consensus
// instances carry a request payload to check.
//
// On success (reason == Void) it enters PrePrepare for (h, candidateHash)
// and arms PrepareTimer for timeout — PREPARE_TIMEOUT, the backup's wait for
// PostPrepare after signing and sending its own Prepare. On failure it
// returns the violated reason without mutating state, leaving the caller to
// emit Rejection{reason}.
func (i *Instance) BeginRoundAsBackup(h PrePrepareHeader, candidateHash crypto.Hash, local LocalLedgerState, containsInvalidRequest bool, timeout time.Duration, onTimeout func()) consensustype.RejectionReason {
	reason := ValidatePrePrepare(h, local, containsInvalidRequest)
	if reason != consensustype.Void {
		return reason
	}
	i.BeginRound(h.EpochNumber, h.Sequence, candidateHash)
	i.PrepareTimer.Schedule(timeout, onTimeout)
	return consensustype.Void
}

// OnPrepare records a delegate's Prepare vote for hash. reachedQuorum is
// true exactly once per round, on the call that first crosses both the
// vote-weight and stake-weight quorum thresholds (§4.2: "Quorum is reached
// when both aggregated vote-weight and aggregated stake-weight ≥
// ceil((2/3)·total)"); callers use this edge to emit PostPrepare exactly
// once. Duplicate votes from the same delegate are ignored.
func (i *Instance) OnPrepare(delegate uint8, sig crypto.Signature, hash crypto.Hash) (reachedQuorum bool, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePrePrepare || hash != i.hash {
		return false, ErrWrongRound
	}
	if _, dup := i.prepared[delegate]; dup {
		return false, nil
	}
	i.prepared[delegate] = sig

	vote, stake := i.sumWeight(i.prepared)
	if vote >= i.quorumVote && stake >= i.quorumStake {
		i.state = StatePostPrepare
		return true, nil
	}
	return false, nil
}

// OnCommit records a delegate's Commit vote. Semantics mirror OnPrepare,
// transitioning PostPrepare → PostCommit on the first quorum-crossing call.
func (i *Instance) OnCommit(delegate uint8, sig crypto.Signature, hash crypto.Hash) (reachedQuorum bool, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePostPrepare || hash != i.hash {
		return false, ErrWrongRound
	}
	if _, dup := i.commits[delegate]; dup {
		return false, nil
	}
	i.commits[delegate] = sig

	vote, stake := i.sumWeight(i.commits)
	if vote >= i.quorumVote && stake >= i.quorumStake {
		i.state = StatePostCommit
		return true, nil
	}
	return false, nil
}

// OnPrepareWithTimeout wraps OnPrepare: on the quorum-crossing call it also
// cancels PrepareTimer and arms PostPrepareTimer for nextTimeout, the
// primary's POST_PREPARE_TIMEOUT wait for Commits after broadcasting
// PostPrepare (§4.2.1 step 3).
func (i *Instance) OnPrepareWithTimeout(delegate uint8, sig crypto.Signature, hash crypto.Hash, nextTimeout time.Duration, onTimeout func()) (reachedQuorum bool, err error) {
	reachedQuorum, err = i.OnPrepare(delegate, sig, hash)
	if reachedQuorum {
		i.PrepareTimer.Cancel()
		i.PostPrepareTimer.Schedule(nextTimeout, onTimeout)
	}
	return reachedQuorum, err
}

// OnCommitWithTimeout wraps OnCommit: on the quorum-crossing call it cancels
// PostPrepareTimer, since the primary's wait for Commits is now satisfied.
func (i *Instance) OnCommitWithTimeout(delegate uint8, sig crypto.Signature, hash crypto.Hash) (reachedQuorum bool, err error) {
	reachedQuorum, err = i.OnCommit(delegate, sig, hash)
	if reachedQuorum {
		i.PostPrepareTimer.Cancel()
	}
	return reachedQuorum, err
}

// OnAggregatedPostPrepare is a backup's transition from PrePrepare to
// PostPrepare on receiving a valid PostPrepare message (§4.2.2): cancels
// PrepareTimer and arms CommitTimer for timeout — COMMIT_TIMEOUT, the
// backup's wait for PostCommit after signing and sending its own Commit.
func (i *Instance) OnAggregatedPostPrepare(hash crypto.Hash, timeout time.Duration, onTimeout func()) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePrePrepare || hash != i.hash {
		return ErrWrongRound
	}
	i.state = StatePostPrepare
	i.PrepareTimer.Cancel()
	i.CommitTimer.Schedule(timeout, onTimeout)
	return nil
}

// OnAggregatedPostCommit is a backup's transition from PostPrepare to
// PostCommit on receiving a valid PostCommit message (§4.2.2): cancels
// CommitTimer and any pending fallback-promotion timer ("cancel pending
// re-proposal timer").
func (i *Instance) OnAggregatedPostCommit(hash crypto.Hash) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePostPrepare || hash != i.hash {
		return ErrWrongRound
	}
	i.state = StatePostCommit
	i.CommitTimer.Cancel()
	i.FallbackTimer.Cancel()
	i.storedPrePrepare = nil
	return nil
}

// OnRejection records a delegate's rejection of the current pre-prepare.
// unreachable is true once the remaining potential weight (total minus
// rejected, i.e. counting every non-responder as a future accept) can no
// longer reach quorum — §4.2.1 step 5's "enough rejections ... to make
// quorum unreachable" — at which point the instance returns to Void so the
// primary can compute reproposal subsets (§4.3.2).
func (i *Instance) OnRejection(delegate uint8) (unreachable bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePrePrepare {
		return false
	}
	if _, dup := i.rejected[delegate]; dup {
		return false
	}
	i.rejected[delegate] = struct{}{}

	rejectedVote, rejectedStake := i.sumWeight(rejectionSigs(i.rejected))
	remainingVote := i.totalVote - rejectedVote
	remainingStake := i.totalStake - rejectedStake
	if remainingVote < i.quorumVote || remainingStake < i.quorumStake {
		i.state = StateVoid
		return true
	}
	return false
}

// StoredPrePrepare is a backup's retained copy of a pre-prepare it rejected
// with NewEpoch while acting as the epoch transition's "Retiring/
// PersistentReject" role (§4.2.2), kept so it can be promoted into the
// primary's role if the designated primary never resolves the transition.
type StoredPrePrepare struct {
	Header PrePrepareHeader
	Hash   crypto.Hash
}

// RejectWithNewEpoch implements the Retiring/PersistentReject fallback of
// §4.2.2: stores the pre-prepare being rejected and arms FallbackTimer for
// delay (ReproposalDelay's MIN + rand_offset(range), §4.2.3). If nothing
// cancels the timer first via CancelFallback — i.e. the epoch transition
// never completes through the normal path — onPromote fires with the
// stored pre-prepare so the caller can requeue it as the backup's own
// proposal (fallback consensus).
func (i *Instance) RejectWithNewEpoch(h PrePrepareHeader, hash crypto.Hash, delay time.Duration, onPromote func(StoredPrePrepare)) {
	i.mu.Lock()
	defer i.mu.Unlock()

	stored := StoredPrePrepare{Header: h, Hash: hash}
	i.storedPrePrepare = &stored
	i.FallbackTimer.Schedule(delay, func() { onPromote(stored) })
}

// CancelFallback cancels a pending fallback promotion, e.g. once the epoch
// transition resolves through the normal PostCommit path.
func (i *Instance) CancelFallback() {
	i.FallbackTimer.Cancel()
}

// PendingFallback returns the pre-prepare most recently stashed by
// RejectWithNewEpoch, or nil if none is pending.
func (i *Instance) PendingFallback() *StoredPrePrepare {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.storedPrePrepare
}

// Reset returns the instance to Void, draining any counted votes, once the
// caller has applied (or abandoned) the current round.
func (i *Instance) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = StateVoid
	i.prepared = nil
	i.commits = nil
	i.rejected = nil
}

func (i *Instance) sumWeight(by map[uint8]crypto.Signature) (vote, stake uint64) {
	for delegate := range by {
		vote += i.weights[delegate].Vote
		stake += i.weights[delegate].Stake
	}
	return
}

// rejectionSigs adapts a rejection set's keys to sumWeight's map-keyed
// shape without needing a second weight-summation helper.
func rejectionSigs(rejected map[uint8]struct{}) map[uint8]crypto.Signature {
	out := make(map[uint8]crypto.Signature, len(rejected))
	for d := range rejected {
		out[d] = crypto.Signature{}
	}
	return out
}
