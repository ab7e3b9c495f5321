package crypto

import (
	"errors"
	"sync"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
)

var (
	errBadSignatureBytes = errors.New("crypto: signature does not deserialize")
	errBadPublicKeyBytes = errors.New("crypto: public key does not deserialize")
	errEmptyBitmap       = errors.New("crypto: empty participation bitmap")

	initOnce sync.Once
	initErr  error
)

// initBLS brings up the herumi BLS12-381 backend once per process. Every
// exported function in this file calls it so callers never have to.
func initBLS() error {
	initOnce.Do(func() {
		initErr = herumi.Init(herumi.BLS12_381)
		if initErr != nil {
			return
		}
		initErr = herumi.SetETHmode(herumi.EthModeDraft07)
	})
	return initErr
}

// PrivateKey is a single delegate's BLS signing key.
type PrivateKey struct {
	sk herumi.SecretKey
}

// PublicKey is a single delegate's BLS public key.
type PublicKey struct {
	pk herumi.PublicKey
}

// Signature is a single-signer or aggregated BLS signature.
type Signature struct {
	sig herumi.Sign
}

// GenerateKey creates a fresh random BLS key-pair. Used by delegates during
// key-advertisement (MessageType KeyAdvert) and by tests.
func GenerateKey() (*PrivateKey, error) {
	if err := initBLS(); err != nil {
		return nil, err
	}
	var sk herumi.SecretKey
	sk.SetByCSPRNG()
	return &PrivateKey{sk: sk}, nil
}

// PrivateKeyFromBytes restores a private key from its raw serialization,
// typically the plaintext recovered from the AES-GCM sleeve (keywrap.go).
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if err := initBLS(); err != nil {
		return nil, err
	}
	var sk herumi.SecretKey
	if err := sk.Deserialize(b); err != nil {
		return nil, err
	}
	return &PrivateKey{sk: sk}, nil
}

// Bytes returns the raw private scalar.
func (k *PrivateKey) Bytes() []byte { return k.sk.Serialize() }

// Public derives the corresponding public key.
func (k *PrivateKey) Public() *PublicKey {
	pk := k.sk.GetPublicKey()
	return &PublicKey{pk: *pk}
}

// Sign signs a 32-byte message hash. This is the "sign(hash, bls_priv) →
// sig" single-signer operation of §4.1.
func (k *PrivateKey) Sign(hash Hash) Signature {
	sig := k.sk.SignByte(hash[:])
	return Signature{sig: *sig}
}

// PublicKeyFromBytes restores a public key from its compressed serialization.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if err := initBLS(); err != nil {
		return nil, err
	}
	var pk herumi.PublicKey
	if err := pk.Deserialize(b); err != nil {
		return nil, errBadPublicKeyBytes
	}
	return &PublicKey{pk: pk}, nil
}

// Bytes returns the compressed public key serialization.
func (p *PublicKey) Bytes() []byte { return p.pk.Serialize() }

// Add returns p + other, used when reconstructing an aggregate public key
// over the bits set in a participation map.
func (p *PublicKey) Add(other *PublicKey) *PublicKey {
	sum := p.pk
	sum.Add(&other.pk)
	return &PublicKey{pk: sum}
}

// SignatureFromBytes restores a signature (single or aggregate) from its
// compressed serialization. Returns errBadSignatureBytes, never panics, so
// aggregate_sign (below) can turn a bad peer signature into a clean error
// instead of an exception (Design Notes §9: "replace exception-based control
// flow in BLS deserialisation with explicit result types").
func SignatureFromBytes(b []byte) (*Signature, error) {
	if err := initBLS(); err != nil {
		return nil, err
	}
	var sig herumi.Sign
	if err := sig.Deserialize(b); err != nil {
		return nil, errBadSignatureBytes
	}
	return &Signature{sig: sig}, nil
}

// Bytes returns the compressed signature serialization.
func (s Signature) Bytes() []byte { return s.sig.Serialize() }

// Verify checks a single-signer signature over hash — the "verify(hash,
// sig, pub)" operation of §4.1.
func (s Signature) Verify(hash Hash, pub *PublicKey) bool {
	return s.sig.VerifyByte(&pub.pk, hash[:])
}

// Contribution is one delegate's signature over the message being
// aggregated, keyed by the delegate's committee index (0..31).
type Contribution struct {
	DelegateIndex uint8
	Signature     []byte // raw serialized BLS signature bytes from the wire
	PublicKey     *PublicKey
}

// Bitmap is the 64-bit participation map of §6 (low 32 bits used for the
// fixed 32-delegate committee).
type Bitmap uint64

// Set returns a copy of b with bit i set.
func (b Bitmap) Set(i uint8) Bitmap { return b | (1 << uint(i)) }

// IsSet reports whether bit i is set.
func (b Bitmap) IsSet(i uint8) bool { return b&(1<<uint(i)) != 0 }

// PopCount returns the number of set bits.
func (b Bitmap) PopCount() int {
	count := 0
	for i := 0; i < 64; i++ {
		if b.IsSet(uint8(i)) {
			count++
		}
	}
	return count
}

// AggregateSign implements §4.1's "aggregate_sign(msg, [(delegate_id,
// sig)]) → (bitmap, agg_sig)": it sets one bit per contributing delegate,
// then aggregates the signatures in the same order the bits were
// encountered. Fails if any individual signature fails to deserialize.
func AggregateSign(contributions []Contribution) (Bitmap, *Signature, error) {
	if err := initBLS(); err != nil {
		return 0, nil, err
	}
	if len(contributions) == 0 {
		return 0, nil, errEmptyBitmap
	}
	var bitmap Bitmap
	var agg herumi.Sign
	for i, c := range contributions {
		sig, err := SignatureFromBytes(c.Signature)
		if err != nil {
			return 0, nil, err
		}
		bitmap = bitmap.Set(c.DelegateIndex)
		if i == 0 {
			agg = sig.sig
		} else {
			agg.Add(&sig.sig)
		}
	}
	return bitmap, &Signature{sig: agg}, nil
}

// VerifyAggregate implements §4.1's "verify_aggregate(msg, bitmap, agg_sig,
// reference_hash)": it reconstructs the aggregate public key by summing the
// keys whose bit is set, then verifies the aggregate signature against
// referenceHash. Fails if the bitmap is empty.
func VerifyAggregate(bitmap Bitmap, aggSig *Signature, keys []*PublicKey, referenceHash Hash) bool {
	if bitmap == 0 {
		return false
	}
	var aggPub *herumi.PublicKey
	for i, key := range keys {
		if !bitmap.IsSet(uint8(i)) {
			continue
		}
		if aggPub == nil {
			cp := key.pk
			aggPub = &cp
		} else {
			aggPub.Add(&key.pk)
		}
	}
	if aggPub == nil {
		return false
	}
	return aggSig.sig.VerifyByte(aggPub, referenceHash[:])
}
