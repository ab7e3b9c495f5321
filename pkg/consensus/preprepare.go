package consensus

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
)

// PrePrepareHeader is the subset of a PrePrepare's common wire prefix a
// backup validates before signing Prepare (§4.2.2). Kept independent of
// pkg/wire's encoding so this package doesn't need to import it.
type PrePrepareHeader struct {
	PrimaryDelegateID uint8
	EpochNumber       uint32
	Sequence          uint32
	TimestampMS       uint64
	Previous          crypto.Hash
}

// LocalLedgerState is a backup's own view of chain tip, epoch, expected
// primary, and clock, against which an incoming PrePrepare is checked.
type LocalLedgerState struct {
	Epoch        uint32
	NextSequence uint32
	Previous     crypto.Hash
	PrimaryIndex uint8
	NowMS        uint64
}

// ValidatePrePrepare runs §4.2.2's backup-side structural checks and
// returns the first violated RejectionReason, or Void if h is valid.
//
// containsInvalidRequest is supplied by the caller: per-request validation
// (balance, signature, sequence, fee, token rules) runs in pkg/requestblock
// against a read transaction of the store — only a Request-consensus
// instance carries a request payload to check, and folding the bitmap
// result into one bool keeps this function free of a pkg/requestblock
// import.
func ValidatePrePrepare(h PrePrepareHeader, local LocalLedgerState, containsInvalidRequest bool) consensustype.RejectionReason {
	if h.PrimaryDelegateID != local.PrimaryIndex {
		return consensustype.InvalidPrimaryIndex
	}

	// MAX_CLOCK_DRIFT_MS scaled by (primary_id+1): secondary proposers are
	// allowed progressively larger drift (§4.2.2/§4.2.3).
	maxDrift := int64(MaxClockDriftBaseMS) * int64(h.PrimaryDelegateID+1)
	drift := int64(h.TimestampMS) - int64(local.NowMS)
	if drift < 0 {
		drift = -drift
	}
	if drift > maxDrift {
		return consensustype.ClockDrift
	}

	if h.EpochNumber != local.Epoch {
		return consensustype.InvalidEpoch
	}
	if h.Sequence != local.NextSequence {
		return consensustype.WrongSequenceNumber
	}
	if h.Previous != local.Previous {
		return consensustype.InvalidPreviousHash
	}
	if containsInvalidRequest {
		return consensustype.ContainsInvalidRequest
	}
	return consensustype.Void
}
