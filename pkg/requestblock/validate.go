// Package requestblock implements §4.3: batching pending Requests into a
// RequestBlock, validating each against store state, and applying a
// post-committed block inside a single write transaction.
package requestblock

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/holiman/uint256"
)

// Rejection is the per-request validation outcome of §4.3.3/§6's
// individual-failure bitmap, distinct from consensustype.RejectionReason
// (which covers whole-round rejections like ClockDrift or NewEpoch).
type Rejection uint8

const (
	Accepted Rejection = iota
	GapPrevious
	Fork
	InsufficientBalance
	OldHash
	BadSequence
	NotYetActive
	InvalidToken
	TooManyCandidates
	VoteOverflow
	NotRepresentative
	StakeTooLow
	ActiveRenouncement
	BadSignature
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case GapPrevious:
		return "Gap_Previous"
	case Fork:
		return "Fork"
	case InsufficientBalance:
		return "Insufficient_Balance"
	case OldHash:
		return "Old_Hash"
	case BadSequence:
		return "Bad_Sequence"
	case NotYetActive:
		return "Not_Yet_Active"
	case InvalidToken:
		return "Invalid_Token"
	case TooManyCandidates:
		return "Too_Many_Candidates"
	case VoteOverflow:
		return "Vote_Overflow"
	case NotRepresentative:
		return "Not_Representative"
	case StakeTooLow:
		return "Stake_Too_Low"
	case ActiveRenouncement:
		return "Active_Renouncement"
	case BadSignature:
		return "Bad_Signature"
	default:
		return "Unknown"
	}
}

// MinTransactionFee is §4.3.3's fixed minimum fee, 10^22 base units.
var MinTransactionFee = func() *uint256.Int {
	v, _ := uint256.FromDecimal("10000000000000000000000")
	return v
}()

// MinDelegateStake is the stake floor an AnnounceCandidacy request must
// meet.
var MinDelegateStake = func() *uint256.Int {
	v, _ := uint256.FromDecimal("1000000000000000000000000")
	return v
}()

// SignatureVerifier checks a Request's signature against its origin
// account's registered key. Injected rather than hard-wired: the account
// model stores an address, not a recoverable public key, so binding a
// concrete signature scheme is left to the caller (matching the narrow
// collaborator-interface shape used by pkg/validator for BLS signing).
type SignatureVerifier interface {
	VerifyRequestSignature(r model.Request) bool
}

// MaxElectionCandidates is §4.3.3's ElectionVote candidate-count cap.
const MaxElectionCandidates = 8

// Validate checks one Request against the current store state inside a
// read transaction, per §4.3.3. It returns Accepted, or the first
// Rejection reason encountered.
func Validate(tx *store.Tx, sig SignatureVerifier, r model.Request) Rejection {
	if !sig.VerifyRequestSignature(r) {
		return BadSignature
	}

	account, ok, err := tx.GetAccount(r.Origin)
	if err != nil || !ok {
		return NotYetActive
	}
	if r.Previous != account.Head {
		return GapPrevious
	}
	if r.Sequence != account.HeadSequence+1 {
		return BadSequence
	}

	switch r.Kind {
	case model.KindSend:
		return validateSend(r, account)
	case model.KindTokenAdmin:
		return validateTokenAdmin(tx, r)
	case model.KindElectionVote:
		return validateElectionVote(tx, r)
	case model.KindAnnounceCandidacy:
		return validateAnnounceCandidacy(tx, r)
	default:
		return Accepted
	}
}

func validateSend(r model.Request, account model.AccountInfo) Rejection {
	total := new(uint256.Int)
	for _, txn := range r.Transactions {
		if txn.Destination.IsZero() {
			return InvalidToken
		}
		total.Add(total, txn.Amount)
	}
	if r.Fee == nil || r.Fee.Cmp(MinTransactionFee) < 0 {
		return InsufficientBalance
	}
	total.Add(total, r.Fee)
	if total.Cmp(account.Balance) > 0 {
		return InsufficientBalance
	}
	return Accepted
}

// validateTokenAdmin checks the signer's controller-privilege bit against
// the token's settings. Controller records are stored as raw bytes in the
// not-yet-typed controllers/token_accounts tables (pkg/store.PutRaw); bit 0
// of the controller record is the per-operation privilege flag, and bit 1
// of the token's settings record (token_accounts) marks the setting
// immutable.
func validateTokenAdmin(tx *store.Tx, r model.Request) Rejection {
	key := append(append([]byte{}, r.TokenOp.Token.Bytes()...), r.Origin[:]...)
	controller, ok, err := tx.GetRaw(store.TableControllers, key)
	if err != nil || !ok || len(controller) == 0 {
		return InvalidToken
	}
	const privilegeBit = 1 << 0
	const immutableBit = 1 << 1
	if controller[0]&privilegeBit == 0 {
		return InvalidToken
	}

	settings, ok, err := tx.GetRaw(store.TableTokenAccounts, r.TokenOp.Token.Bytes())
	if err != nil || !ok || len(settings) == 0 {
		return InvalidToken
	}
	if settings[0]&immutableBit != 0 {
		return InvalidToken
	}
	return Accepted
}

func validateElectionVote(tx *store.Tx, r model.Request) Rejection {
	_, isRep, err := tx.GetRaw(store.TableRepresentatives, r.Origin[:])
	if err != nil || !isRep {
		return NotRepresentative
	}
	if len(r.Vote.Candidates) > MaxElectionCandidates || len(r.Vote.Candidates) != len(r.Vote.Votes) {
		return TooManyCandidates
	}
	var total int
	for _, v := range r.Vote.Votes {
		total += int(v)
	}
	if total > 0xff {
		return VoteOverflow
	}
	return Accepted
}

func validateAnnounceCandidacy(tx *store.Tx, r model.Request) Rejection {
	if r.Stake == nil || r.Stake.Cmp(MinDelegateStake) < 0 {
		return StakeTooLow
	}
	_, renounced, err := tx.GetRaw(store.TableControllers, append([]byte("renounce:"), r.Origin[:]...))
	if err != nil {
		return StakeTooLow
	}
	if renounced {
		return ActiveRenouncement
	}
	return Accepted
}
