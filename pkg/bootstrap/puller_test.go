package bootstrap

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	requestAccept bool
	microAccept   bool
	epochAccept   bool
}

func (f *fakeCache) FeedRequestBlock(uint8, model.RequestBlock) (bool, error) { return f.requestAccept, nil }
func (f *fakeCache) FeedMicroBlock(model.MicroBlock) (bool, error)            { return f.microAccept, nil }
func (f *fakeCache) FeedEpochBlock(model.EpochBlock) (bool, error)            { return f.epochAccept, nil }

// newTestEpochBlock builds a well-formed EpochBlock (non-nil Stake and fee
// pool amounts, since their HashableView dereferences both) with the given
// epoch=2/sequence=1/previous fixture values.
func newTestEpochBlock(previous crypto.Hash) model.EpochBlock {
	var delegates [consensustype.DelegateCount]model.DelegateDescriptor
	for i := range delegates {
		delegates[i] = model.DelegateDescriptor{Stake: model.ZeroAmount()}
	}
	return model.EpochBlock{
		Common:             wire.PrePrepareCommon{EpochNumber: 2, Sequence: 1, Previous: previous},
		Delegates:          delegates,
		TransactionFeePool: model.ZeroAmount(),
	}
}

// TestPullerInitScenarioS3 reproduces scenario S3 exactly.
func TestPullerInitScenarioS3(t *testing.T) {
	var local, peer wire.TipSet
	local.EpochTip = tip(1, 1, 3)
	local.MicroTip = tip(2, 1, 4)
	peer.EpochTip = local.EpochTip
	peer.MicroTip = local.MicroTip
	for i := range local.RequestTips {
		local.RequestTips[i] = tip(2, 0, 0)
		peer.RequestTips[i] = tip(2, 1, byte(i+1))
	}

	p := NewPuller(&fakeCache{})
	p.Init(local, peer)

	require.Equal(t, StateBatch, p.State())
	require.Equal(t, 32, p.GetNumWaitingPulls())
}

func TestPullerInitNotBehindGoesDone(t *testing.T) {
	ts := identicalTipSet(0)
	p := NewPuller(&fakeCache{})
	p.Init(ts, ts)
	require.Equal(t, StateDone, p.State())
	require.Equal(t, 0, p.GetNumWaitingPulls())
}

func TestPullerChasesEpochThenMicroThenBatch(t *testing.T) {
	var local, peer wire.TipSet
	local.EpochTip = tip(1, 1, 3)
	local.MicroTip = tip(2, 1, 4)
	peer.MicroTip = local.MicroTip
	for i := range local.RequestTips {
		local.RequestTips[i] = tip(2, 1, byte(i+1))
		peer.RequestTips[i] = local.RequestTips[i]
	}

	closing := newTestEpochBlock(local.EpochTip.Digest)
	peer.EpochTip = wire.Tip{Epoch: 2, Sequence: 1, Digest: model.HashView(closing.View())}

	p := NewPuller(&fakeCache{epochAccept: true})
	p.Init(local, peer)
	require.Equal(t, StateEpoch, p.State())
	require.Equal(t, 1, p.GetNumWaitingPulls())

	req, ok := p.NextPullRequest()
	require.True(t, ok)
	require.Equal(t, consensustype.Epoch, req.ConsensusType)

	err := p.OnEpochBlockResponse(req, wire.LastBlock, closing)
	require.NoError(t, err)

	// Local now matches peer on epoch, micro, and every request tip, so
	// the machine runs Epoch -> Micro -> Batch -> Done in one pass.
	require.Equal(t, StateDone, p.State())
	require.Equal(t, 0, p.GetNumWaitingPulls())
}

func TestPullerOnResponseRejectsWrongPrevious(t *testing.T) {
	var local, peer wire.TipSet
	local.EpochTip = tip(1, 1, 3)
	peer.EpochTip = tip(2, 1, 5)
	local.MicroTip = tip(2, 1, 4)
	peer.MicroTip = tip(2, 1, 4)

	p := NewPuller(&fakeCache{epochAccept: true})
	p.Init(local, peer)
	req, ok := p.NextPullRequest()
	require.True(t, ok)

	wrongPrevious := crypto.BytesToHash([]byte{0xff})
	blk := newTestEpochBlock(wrongPrevious)
	err := p.OnEpochBlockResponse(req, wire.LastBlock, blk)
	require.ErrorIs(t, err, ErrDisconnectSender)
}

func TestPullerRequeuesOnTransportFailure(t *testing.T) {
	var local, peer wire.TipSet
	local.EpochTip = tip(1, 1, 3)
	peer.EpochTip = tip(2, 1, 5)

	p := NewPuller(&fakeCache{})
	p.Init(local, peer)
	req, ok := p.NextPullRequest()
	require.True(t, ok)
	require.Equal(t, 0, p.GetNumWaitingPulls())

	p.OnTransportFailure(req)
	require.Equal(t, 1, p.GetNumWaitingPulls())
}
