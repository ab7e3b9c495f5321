package bootstrap

import (
	"errors"
	"sync"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
)

// State is one of the four Puller states of §4.6.2.
type State uint8

const (
	StateEpoch State = iota
	StateMicro
	StateBatch
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEpoch:
		return "Epoch"
	case StateMicro:
		return "Micro"
	case StateBatch:
		return "Batch"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// ErrDisconnectSender is returned by the On*BlockResponse methods when the received
// block's previous hash does not match the outstanding pull's prev_hash
// (§4.6.3: "mismatch returns DisconnectSender").
var ErrDisconnectSender = errors.New("bootstrap: block previous hash does not match outstanding pull")

// errUnknownPull is returned, unwrapped, when a response arrives for a pull
// this Puller is not tracking.
var errUnknownPull = errors.New("bootstrap: response for unknown pull")

// PullKey identifies one outstanding PullRequest.
type PullKey struct {
	ConsensusType consensustype.Type
	Previous      crypto.Hash
	Target        crypto.Hash
}

func keyOf(r wire.PullRequest) PullKey {
	return PullKey{ConsensusType: r.ConsensusType, Previous: r.Previous, Target: r.Target}
}

// BlockCache is the narrow collaborator a received block is fed to; §4.6.3:
// "the cache validates aggregated signatures and chain continuity and
// returns success iff it accepts." Each method corresponds to one of the
// three consensus types' archival block kind.
type BlockCache interface {
	FeedRequestBlock(delegate uint8, blk model.RequestBlock) (accepted bool, err error)
	FeedMicroBlock(blk model.MicroBlock) (accepted bool, err error)
	FeedEpochBlock(blk model.EpochBlock) (accepted bool, err error)
}

// pullProgress tracks one outstanding pull. currentPrevious advances to
// each accepted block's own hash so the next response in the same pull is
// checked against the block that actually preceded it, not the pull's
// original prev_hash. numBlocksExpected is advisory (§4.6.3 names it but
// the wire protocol never reports a block count up front); it counts
// accepted blocks and nothing in this package reads it back.
type pullProgress struct {
	key               PullKey
	currentPrevious   crypto.Hash
	numBlocksExpected int
}

// Puller drives §4.6's catch-up state machine. One mutex covers state,
// waitingPulls, and ongoingPulls since pull responses arrive from network
// callbacks and contend with whatever goroutine is issuing new pulls.
type Puller struct {
	mu sync.Mutex

	state             State
	workingEpoch      uint32
	firstWorkingEpoch uint32
	local, peer       wire.TipSet

	waitingPulls []wire.PullRequest
	ongoingPulls map[PullKey]*pullProgress

	// microTips holds the just-received microblock's 32 per-delegate
	// request-chain tips, used to drive the Batch state's pulls per
	// §4.6.2. Nil until a MicroBlock pull completes.
	microTips *[consensustype.DelegateCount]wire.Tip

	cache BlockCache
}

// NewPuller builds an idle Puller feeding accepted blocks to cache.
func NewPuller(cache BlockCache) *Puller {
	return &Puller{ongoingPulls: make(map[PullKey]*pullProgress), cache: cache}
}

// State returns the current machine state.
func (p *Puller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// GetNumWaitingPulls reports how many pulls are queued but not yet issued.
func (p *Puller) GetNumWaitingPulls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waitingPulls)
}

// Init sets the working epoch to local.eb.epoch+1 and, if local trails
// peer, drives the state machine to enqueue its first pulls. If local is
// not behind, the machine starts (and stays) Done.
func (p *Puller) Init(local, peer wire.TipSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.local, p.peer = local, peer
	p.workingEpoch = local.EpochTip.Epoch + 1
	p.firstWorkingEpoch = p.workingEpoch
	p.waitingPulls = nil
	p.ongoingPulls = make(map[PullKey]*pullProgress)
	p.microTips = nil

	if !IsBehind(local, peer) {
		p.state = StateDone
		return
	}
	p.state = StateEpoch
	p.driveLocked()
}

// driveLocked advances through Epoch -> Micro -> Batch -> Done, enqueuing
// pulls at whichever state still has work, per §4.6.2.
func (p *Puller) driveLocked() {
	switch p.state {
	case StateEpoch:
		if p.local.EpochTip.Less(p.peer.EpochTip) {
			p.enqueueLocked(wire.PullRequest{
				ConsensusType: consensustype.Epoch,
				Previous:      p.local.EpochTip.Digest,
			})
			return
		}
		p.state = StateMicro
		p.driveLocked()

	case StateMicro:
		if p.local.MicroTip.Less(p.peer.MicroTip) {
			p.enqueueLocked(wire.PullRequest{
				ConsensusType: consensustype.MicroBlock,
				Previous:      p.local.MicroTip.Digest,
			})
			return
		}
		p.state = StateBatch
		p.driveLocked()

	case StateBatch:
		if p.issueBatchPullsLocked() {
			return
		}
		if p.hasNextEpochWorkLocked() {
			p.workingEpoch++
			p.state = StateEpoch
			p.driveLocked()
			return
		}
		p.state = StateDone
	}
}

// issueBatchPullsLocked implements §4.6.2's Batch rule: pull against the
// just-received microblock's 32 tips if one is in hand, otherwise pull
// directly up to the peer's current request-chain tips. Returns whether any
// pull was enqueued.
func (p *Puller) issueBatchPullsLocked() bool {
	issued := false
	if p.microTips != nil {
		for i, target := range p.microTips {
			local := p.localRequestTipLocked(uint8(i))
			if local.Less(target) {
				p.enqueueLocked(wire.PullRequest{
					ConsensusType: consensustype.Request,
					Previous:      local.Digest,
					Target:        target.Digest,
				})
				issued = true
			}
		}
		return issued
	}
	for i, target := range p.peer.RequestTips {
		local := p.localRequestTipLocked(uint8(i))
		if local.Less(target) {
			p.enqueueLocked(wire.PullRequest{
				ConsensusType: consensustype.Request,
				Previous:      local.Digest,
				Target:        target.Digest,
			})
			issued = true
		}
	}
	return issued
}

// localRequestTipLocked picks local's current-epoch tip while chasing the
// first working epoch, and the next-epoch tip once working_epoch has
// advanced past it. §4.6.2 names both arrays but never spells out the
// selection rule beyond the is_behind comparator; this mirrors it.
func (p *Puller) localRequestTipLocked(delegate uint8) wire.Tip {
	if p.workingEpoch == p.firstWorkingEpoch {
		return p.local.RequestTips[delegate]
	}
	return p.local.RequestTipsNextEpoch[delegate]
}

// hasNextEpochWorkLocked reports whether local still trails peer on any
// next-epoch request tip, per §4.6.2's "next_epoch tips remain to chase."
func (p *Puller) hasNextEpochWorkLocked() bool {
	for i := range p.local.RequestTipsNextEpoch {
		if p.local.RequestTipsNextEpoch[i].Less(p.peer.RequestTipsNextEpoch[i]) {
			return true
		}
	}
	return false
}

func (p *Puller) enqueueLocked(req wire.PullRequest) {
	key := keyOf(req)
	if _, exists := p.ongoingPulls[key]; exists {
		return
	}
	for _, w := range p.waitingPulls {
		if keyOf(w) == key {
			return
		}
	}
	p.waitingPulls = append(p.waitingPulls, req)
}

// NextPullRequest pops the oldest waiting pull and marks it ongoing, for
// the caller to issue over the network.
func (p *Puller) NextPullRequest() (wire.PullRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.waitingPulls) == 0 {
		return wire.PullRequest{}, false
	}
	req := p.waitingPulls[0]
	p.waitingPulls = p.waitingPulls[1:]
	key := keyOf(req)
	p.ongoingPulls[key] = &pullProgress{key: key, currentPrevious: req.Previous}
	return req, true
}

// requeueLocked reinserts a pull at the front of the waiting queue for
// retry against a different peer, per §4.6.3's "on transport failure."
func (p *Puller) requeueLocked(req wire.PullRequest) {
	delete(p.ongoingPulls, keyOf(req))
	p.waitingPulls = append([]wire.PullRequest{req}, p.waitingPulls...)
}

// OnTransportFailure reinserts req at the front of the waiting queue.
func (p *Puller) OnTransportFailure(req wire.PullRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requeueLocked(req)
}

// completeLocked erases the pull, records any decoded microblock tips for
// the Batch state, and re-drives the machine — §4.6.3's "erase the pull and
// call create_more_pulls."
func (p *Puller) completeLocked(req wire.PullRequest, microTips *[consensustype.DelegateCount]wire.Tip) {
	delete(p.ongoingPulls, keyOf(req))
	if microTips != nil {
		p.microTips = microTips
	}
	p.driveLocked()
}

// OnRequestBlockResponse handles a PullResponse for an outstanding Request
// pull, per §4.6.3. delegate is the chain this block belongs to; on
// acceptance the corresponding request tip (current- or next-epoch,
// matching whichever array drove this pull) advances to the new head.
func (p *Puller) OnRequestBlockResponse(req wire.PullRequest, status wire.PullStatus, delegate uint8, blk model.RequestBlock) error {
	hash := model.HashView(blk.View())
	return p.onResponse(req, status, blk.Common.Previous, hash, func() (bool, error) {
		return p.cache.FeedRequestBlock(delegate, blk)
	}, func() {
		newTip := wire.Tip{Epoch: blk.Common.EpochNumber, Sequence: blk.Common.Sequence, Digest: hash}
		if p.workingEpoch == p.firstWorkingEpoch {
			p.local.RequestTips[delegate] = newTip
		} else {
			p.local.RequestTipsNextEpoch[delegate] = newTip
		}
	}, nil)
}

// OnMicroBlockResponse handles a PullResponse for an outstanding Micro
// pull. On acceptance local's micro tip advances, and the block's 32
// request-chain tips are captured to drive the Batch state.
func (p *Puller) OnMicroBlockResponse(req wire.PullRequest, status wire.PullStatus, blk model.MicroBlock) error {
	hash := model.HashView(blk.View())
	tips := blk.RequestTips
	return p.onResponse(req, status, blk.Common.Previous, hash, func() (bool, error) {
		return p.cache.FeedMicroBlock(blk)
	}, func() {
		p.local.MicroTip = wire.Tip{Epoch: blk.Common.EpochNumber, Sequence: blk.Common.Sequence, Digest: hash}
	}, &tips)
}

// OnEpochBlockResponse handles a PullResponse for an outstanding Epoch
// pull. On acceptance local's epoch tip advances.
func (p *Puller) OnEpochBlockResponse(req wire.PullRequest, status wire.PullStatus, blk model.EpochBlock) error {
	hash := model.HashView(blk.View())
	return p.onResponse(req, status, blk.Common.Previous, hash, func() (bool, error) {
		return p.cache.FeedEpochBlock(blk)
	}, func() {
		p.local.EpochTip = wire.Tip{Epoch: blk.Common.EpochNumber, Sequence: blk.Common.Sequence, Digest: hash}
	}, nil)
}

// onResponse is the shared §4.6.3 handling: verify the block chains onto
// whatever this pull has accepted so far, feed the cache, advance local's
// tip on acceptance, and either erase-and-advance (target reached or
// LastBlock) or return Continue by doing nothing further.
func (p *Puller) onResponse(req wire.PullRequest, status wire.PullStatus, blockPrevious, blockHash crypto.Hash, feed func() (bool, error), onAdvance func(), microTips *[consensustype.DelegateCount]wire.Tip) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := keyOf(req)
	prog, ok := p.ongoingPulls[key]
	if !ok {
		return errUnknownPull
	}

	if blockPrevious != prog.currentPrevious {
		return ErrDisconnectSender
	}

	accepted, err := feed()
	if err != nil {
		return err
	}
	if !accepted {
		return nil // cache rejected; caller keeps waiting, no state change
	}

	prog.currentPrevious = blockHash
	prog.numBlocksExpected++
	if onAdvance != nil {
		onAdvance()
	}

	if blockHash == req.Target || status == wire.LastBlock {
		p.completeLocked(req, microTips)
	}
	return nil
}
