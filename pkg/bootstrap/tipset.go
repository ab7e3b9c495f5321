// Package bootstrap implements §4.6: the tip-set "behind" comparator and the
// Puller state machine that drives catch-up by negotiating tip-sets with a
// peer and issuing ordered pulls of epoch, micro, and request blocks.
package bootstrap

import "github.com/LogosNetwork/logos-core-sub004/pkg/wire"

// IsBehind implements §4.6.1: local is behind peer iff local's epoch tip is
// lower, or epoch tips are equal and local's micro tip is lower, or epoch
// and micro tips are equal and local trails peer on any of the 32
// request-chain tips (current epoch or next-epoch).
func IsBehind(local, peer wire.TipSet) bool {
	if local.EpochTip != peer.EpochTip {
		return local.EpochTip.Less(peer.EpochTip)
	}
	if local.MicroTip != peer.MicroTip {
		return local.MicroTip.Less(peer.MicroTip)
	}
	for i := range local.RequestTips {
		if local.RequestTips[i].Less(peer.RequestTips[i]) {
			return true
		}
	}
	for i := range local.RequestTipsNextEpoch {
		if local.RequestTipsNextEpoch[i].Less(peer.RequestTipsNextEpoch[i]) {
			return true
		}
	}
	return false
}
