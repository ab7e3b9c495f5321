package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSleeveWrapUnwrapRoundTrip(t *testing.T) {
	recipient, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	sk, err := GenerateKey()
	require.NoError(t, err)
	plaintext := sk.Bytes()

	sleeve, err := Wrap(&recipient.PublicKey, plaintext)
	require.NoError(t, err)

	recovered, err := Unwrap(recipient, sleeve)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

func TestSleeveUnwrapWrongKeyFails(t *testing.T) {
	recipient, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	wrongKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	sk, err := GenerateKey()
	require.NoError(t, err)

	sleeve, err := Wrap(&recipient.PublicKey, sk.Bytes())
	require.NoError(t, err)

	_, err = Unwrap(wrongKey, sleeve)
	require.Error(t, err)
}
