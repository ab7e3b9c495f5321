package model

import "github.com/LogosNetwork/logos-core-sub004/pkg/crypto"

// AccountInfo is the mutable per-account state mutated by applied Requests
// (§3).
type AccountInfo struct {
	Head                Hash // head of the account's send/receive chain
	StakingSubchainHead Hash // head of the account's staking subchain
	Representative      Address
	Balance             *Amount
	AvailableBalance    *Amount
	ModifiedEpoch       uint32
	HeadSequence        uint32
}

// AvailableBalanceInvariant recomputes available = balance - staked -
// thawing - secondary liabilities, enforcing invariant #3 of §8.
func (a *AccountInfo) AvailableBalanceInvariant(staked, thawing, secondaryLiabilities *Amount) *Amount {
	committed := new(Amount).Add(staked, thawing)
	committed = new(Amount).Add(committed, secondaryLiabilities)
	if committed.Cmp(a.Balance) > 0 {
		// Callers must never let committed funds exceed balance; clamp to
		// zero rather than underflow so a caller bug surfaces as "account
		// has nothing available" instead of wrapping to a huge uint256.
		return ZeroAmount()
	}
	return new(Amount).Sub(a.Balance, committed)
}

// StakedFunds is an account's single current stake record (§4.5.1).
type StakedFunds struct {
	TargetRep Address
	Amount    *Amount
}

// ThawingFunds is a released-but-not-yet-liquid stake (§4.5.1). Entries
// sharing the same (TargetRep, ExpirationEpoch) are merged by summation.
type ThawingFunds struct {
	TargetRep      Address
	Amount         *Amount
	ExpirationEpoch uint32
}

// Key returns the (target, expiration) merge key.
func (t ThawingFunds) Key() ThawKey {
	return ThawKey{TargetRep: t.TargetRep, ExpirationEpoch: t.ExpirationEpoch}
}

// ThawKey is the merge key for coalescing ThawingFunds entries.
type ThawKey struct {
	TargetRep       Address
	ExpirationEpoch uint32
}

// LiabilityKind distinguishes primary (staking/thawing obligations owed to
// a representative) from secondary (locked proxy) liabilities (§4.5.2).
type LiabilityKind uint8

const (
	PrimaryLiability LiabilityKind = iota
	SecondaryLiability
)

// Liability is a pending amount indexed by both its Target and its Source,
// content-addressed by H(target, source, expiration_epoch) (§4.5.2).
type Liability struct {
	Kind            LiabilityKind
	Target          Address
	Source          Address
	Amount          *Amount
	ExpirationEpoch uint32
}

// Hash computes the content address H(target, source, expiration_epoch).
func (l Liability) Hash() Hash {
	return crypto.Sum256(l.Target[:], l.Source[:], crypto.SumUint32(l.ExpirationEpoch))
}
