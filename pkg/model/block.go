package model

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
)

// RequestBlock is a batch of up to MaxRequestsPerBlock Requests committed
// by one delegate's chain (§3, a.k.a. "BSB").
type RequestBlock struct {
	Common        wire.PrePrepareCommon
	Requests      []Request
	PrepareSig    wire.AggregatedSig
	CommitSig     wire.AggregatedSig
	Participation wire.AggregatedSig // bitmap mirrors CommitSig.Bitmap; kept distinct per §3's "participation bitmap"
}

// MaxRequestsPerBlock is the batch size cap of §3/§4.3.1.
const MaxRequestsPerBlock = 1500

// MicroBlock is a periodic checkpoint over the 32 delegate chains (§3, §4.4).
type MicroBlock struct {
	Common         wire.PrePrepareCommon
	RequestTips    [32]wire.Tip
	MerkleRoot     Hash
	RequestCount   uint64
	LastMicroBlock bool
	PrepareSig     wire.AggregatedSig
	CommitSig      wire.AggregatedSig
}

// DelegateDescriptor is one elected committee member's epoch-block entry
// (§3).
type DelegateDescriptor struct {
	Account    Address
	VoteWeight uint64
	Stake      *Amount
}

// EpochBlock is the committee-rotation/governance block at an epoch
// boundary (§3, §4.4.3).
type EpochBlock struct {
	Common             wire.PrePrepareCommon
	Delegates          [32]DelegateDescriptor
	TransactionFeePool *Amount
	MicroBlockTip      Hash
	PrepareSig         wire.AggregatedSig
	CommitSig          wire.AggregatedSig
}
