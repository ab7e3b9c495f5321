package model

import "github.com/LogosNetwork/logos-core-sub004/pkg/crypto"

// RequestKind is the tag of the Request union (§3).
type RequestKind uint8

const (
	KindSend RequestKind = iota
	KindChangeRep
	KindTokenAdmin
	KindProxy
	KindStartRepresenting
	KindAnnounceCandidacy
	KindRenounceCandidacy
	KindElectionVote
	KindStake
)

func (k RequestKind) String() string {
	switch k {
	case KindSend:
		return "Send"
	case KindChangeRep:
		return "ChangeRep"
	case KindTokenAdmin:
		return "TokenAdmin"
	case KindProxy:
		return "Proxy"
	case KindStartRepresenting:
		return "StartRepresenting"
	case KindAnnounceCandidacy:
		return "AnnounceCandidacy"
	case KindRenounceCandidacy:
		return "RenounceCandidacy"
	case KindElectionVote:
		return "ElectionVote"
	case KindStake:
		return "Stake"
	default:
		return "Unknown"
	}
}

// Transaction is one (destination, amount) pair inside a Send request.
type Transaction struct {
	Destination Address
	Amount      *Amount
}

// TokenAdminOp sets or clears one controller-gated token setting (§4.3.3).
type TokenAdminOp struct {
	Token      Hash
	SettingBit uint8
	Enable     bool
}

// ElectionVote casts weighted votes for up to 8 candidates (§4.3.3).
type ElectionVote struct {
	Candidates []Address
	Votes      []uint8 // parallel to Candidates, each a u8 vote count
}

// Request is the tagged union of user/governance operations (§3). Only the
// fields relevant to Kind are populated; this mirrors the teacher's
// `core/types/originTransaction.go` tagged-field shape generalized from one
// concrete transaction type to a closed union of request kinds.
type Request struct {
	Kind RequestKind

	Origin       Address
	Previous     Hash // previous-in-subchain
	Fee          *Amount
	Sequence     uint32
	Signature    Hash
	TimestampMS  uint64

	// KindSend
	Transactions []Transaction

	// KindChangeRep, KindProxy, KindStartRepresenting
	Representative Address

	// KindTokenAdmin
	TokenOp TokenAdminOp

	// KindAnnounceCandidacy / KindStake
	Stake *Amount

	// KindElectionVote
	Vote ElectionVote
}

// IsNull reports whether r is the sentinel "null request" appended to mark
// a batch boundary (§4.3.1): a request with a zero signature is never a
// valid signed request, so it doubles as the delimiter.
func (r Request) IsNull() bool {
	return r.Signature.IsZero() && r.Origin.IsZero()
}

// NullRequest returns the sentinel batch-boundary marker.
func NullRequest() Request {
	return Request{}
}

// Hash computes the canonical content hash of a Request, used both as its
// identity in the pending queue and as the unit hashed into a RequestBlock.
func (r Request) Hash() Hash {
	fee := uint64(0)
	if r.Fee != nil {
		fee = r.Fee.Uint64()
	}
	return crypto.Sum256(
		[]byte{byte(r.Kind)},
		r.Origin[:],
		r.Previous[:],
		crypto.SumUint64(fee),
		crypto.SumUint32(r.Sequence),
		crypto.SumUint64(r.TimestampMS),
		r.Signature[:],
	)
}
