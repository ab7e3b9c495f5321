package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Sleeve is an ECIES-wrapped, AES-GCM-sealed BLS private key as stored on
// disk (§2.1: "ECIES key wrapping, AES-GCM sleeve for private-key storage").
// The BLS scalar itself is not an ECIES-compatible curve point, so the
// sleeve wraps a symmetric data-encryption key via ECIES over a P-256
// ephemeral key-agreement, then seals the BLS private key bytes with that
// DEK under AES-GCM — the same envelope-encryption shape go-ethereum's
// keystore uses for a passphrase-derived key, adapted to a public-key
// recipient instead of a passphrase.
type Sleeve struct {
	EphemeralPub []byte // uncompressed P-256 point
	Nonce        []byte // AES-GCM nonce
	Ciphertext   []byte // sealed BLS private key bytes, tag included
}

var errShortCiphertext = errors.New("crypto: sleeve ciphertext too short")

// Wrap seals plaintext (a BLS private key's Bytes()) so that only the
// holder of recipientPriv can recover it.
func Wrap(recipientPub *ecdsa.PublicKey, plaintext []byte) (*Sleeve, error) {
	curve := elliptic.P256()
	ephPriv, ephX, ephY, err := elliptic.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, err
	}
	sharedX, _ := curve.ScalarMult(recipientPub.X, recipientPub.Y, ephPriv)

	dek, err := deriveKey(sharedX.Bytes())
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	return &Sleeve{
		EphemeralPub: elliptic.Marshal(curve, ephX, ephY),
		Nonce:        nonce,
		Ciphertext:   ciphertext,
	}, nil
}

// Unwrap recovers the plaintext BLS private key bytes using the
// recipient's ECDSA private key.
func Unwrap(recipientPriv *ecdsa.PrivateKey, s *Sleeve) ([]byte, error) {
	curve := elliptic.P256()
	ephX, ephY := elliptic.Unmarshal(curve, s.EphemeralPub)
	if ephX == nil {
		return nil, errors.New("crypto: malformed ephemeral public key")
	}
	sharedX, _ := curve.ScalarMult(ephX, ephY, recipientPriv.D.Bytes())

	dek, err := deriveKey(sharedX.Bytes())
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(s.Ciphertext) < gcm.Overhead() {
		return nil, errShortCiphertext
	}
	return gcm.Open(nil, s.Nonce, s.Ciphertext, nil)
}

// deriveKey stretches an ECDH shared secret into a 32-byte AES-256 key via
// HKDF-SHA256, the KDF half of the ECIES construction.
func deriveKey(secret []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, secret, nil, []byte("logos-core/key-sleeve"))
	dek := make([]byte, 32)
	if _, err := io.ReadFull(kdf, dek); err != nil {
		return nil, err
	}
	return dek, nil
}
