package bootstrap

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
	"github.com/stretchr/testify/require"
)

func tip(epoch, seq uint32, b byte) wire.Tip {
	var h crypto.Hash
	if b != 0 {
		h = crypto.BytesToHash([]byte{b})
	}
	return wire.Tip{Epoch: epoch, Sequence: seq, Digest: h}
}

func identicalTipSet(seq uint32) wire.TipSet {
	var ts wire.TipSet
	ts.EpochTip = tip(1, 1, 3)
	ts.MicroTip = tip(2, 1, 4)
	for i := range ts.RequestTips {
		ts.RequestTips[i] = tip(2, seq, byte(i+1))
		ts.RequestTipsNextEpoch[i] = tip(3, 0, 0)
	}
	return ts
}

func TestIsBehindOnEpochTip(t *testing.T) {
	local := identicalTipSet(0)
	peer := local
	peer.EpochTip = tip(2, 1, 3)
	require.True(t, IsBehind(local, peer))
	require.False(t, IsBehind(peer, local))
}

func TestIsBehindOnMicroTipWhenEpochEqual(t *testing.T) {
	local := identicalTipSet(0)
	peer := local
	peer.MicroTip = tip(2, 2, 4)
	require.True(t, IsBehind(local, peer))
	require.False(t, IsBehind(peer, local))
}

func TestIsBehindOnAnyRequestTip(t *testing.T) {
	local := identicalTipSet(0)
	peer := identicalTipSet(1)
	require.True(t, IsBehind(local, peer))
	require.False(t, IsBehind(peer, local))
}

func TestIsBehindFalseWhenIdentical(t *testing.T) {
	local := identicalTipSet(0)
	peer := identicalTipSet(0)
	require.False(t, IsBehind(local, peer))
}
