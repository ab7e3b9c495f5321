// Package validator implements §4.1's Message Validator: a delegate-indexed
// BLS keystore that signs with the local key and verifies single or
// aggregated signatures against the fixed 32-member committee.
package validator

import (
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
)

// ErrUnknownDelegate is returned when a delegate index has no registered
// public key.
var ErrUnknownDelegate = errors.New("validator: unknown delegate index")

// MessageValidator signs with the local delegate's BLS key and verifies
// against the committee's public keys, keyed by delegate id (§4.1: "Keys
// are indexed by delegate id").
type MessageValidator struct {
	localIndex uint8
	localKey   *crypto.PrivateKey
	committee  [consensustype.DelegateCount]*crypto.PublicKey
}

// New builds a MessageValidator for the local delegate at localIndex,
// signing with localKey, verifying against committee (indexed by delegate
// id; a nil entry means that seat is currently unfilled).
func New(localIndex uint8, localKey *crypto.PrivateKey, committee [consensustype.DelegateCount]*crypto.PublicKey) *MessageValidator {
	return &MessageValidator{localIndex: localIndex, localKey: localKey, committee: committee}
}

// LocalIndex returns the local delegate's committee index.
func (v *MessageValidator) LocalIndex() uint8 { return v.localIndex }

// Sign is §4.1's `sign(hash, bls_priv) → sig`.
func (v *MessageValidator) Sign(hash crypto.Hash) crypto.Signature {
	return v.localKey.Sign(hash)
}

// Verify is §4.1's `verify(hash, sig, pub)`, resolving pub by delegate id.
func (v *MessageValidator) Verify(hash crypto.Hash, sig crypto.Signature, delegateIndex uint8) bool {
	pub := v.committee[delegateIndex]
	if pub == nil {
		return false
	}
	return sig.Verify(hash, pub)
}

// AggregateSign is §4.1's `aggregate_sign(msg, [(delegate_id, sig)]) →
// (bitmap, agg_sig)`.
func (v *MessageValidator) AggregateSign(contributions []crypto.Contribution) (crypto.Bitmap, *crypto.Signature, error) {
	return crypto.AggregateSign(contributions)
}

// VerifyAggregate is §4.1's `verify_aggregate(msg, bitmap, agg_sig,
// reference_hash)`, reconstructing the aggregate public key from the
// committee positions set in bitmap.
func (v *MessageValidator) VerifyAggregate(bitmap crypto.Bitmap, aggSig *crypto.Signature, referenceHash crypto.Hash) bool {
	keys := v.committee[:]
	return crypto.VerifyAggregate(bitmap, aggSig, keys, referenceHash)
}

// BytesAggregateVerifier wraps a MessageValidator to satisfy
// pkg/cache.Feeder's AggregateVerifier collaborator, whose interface takes
// the raw wire-encoded signature rather than a decoded *crypto.Signature so
// pkg/cache never needs to import this package. It deserializes the bytes
// before delegating, returning false (never panicking) on bytes that don't
// deserialize as a BLS signature.
type BytesAggregateVerifier struct {
	V *MessageValidator
}

// VerifyAggregate implements pkg/cache.AggregateVerifier.
func (b BytesAggregateVerifier) VerifyAggregate(bitmap crypto.Bitmap, sig crypto.Hash, referenceHash crypto.Hash) bool {
	aggSig, err := crypto.SignatureFromBytes(sig[:])
	if err != nil {
		return false
	}
	return b.V.VerifyAggregate(bitmap, aggSig, referenceHash)
}

// SetDelegateKey installs or replaces the public key for delegateIndex,
// used when a KeyAdvert message introduces a new committee member at an
// epoch handover.
func (v *MessageValidator) SetDelegateKey(delegateIndex uint8, pub *crypto.PublicKey) {
	v.committee[delegateIndex] = pub
}

// DelegateKey returns the public key registered for delegateIndex.
func (v *MessageValidator) DelegateKey(delegateIndex uint8) (*crypto.PublicKey, error) {
	pub := v.committee[delegateIndex]
	if pub == nil {
		return nil, ErrUnknownDelegate
	}
	return pub, nil
}
