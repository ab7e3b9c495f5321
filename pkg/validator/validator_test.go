package validator

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/stretchr/testify/require"
)

func buildCommittee(t *testing.T) ([consensustype.DelegateCount]*crypto.PrivateKey, [consensustype.DelegateCount]*crypto.PublicKey) {
	var privs [consensustype.DelegateCount]*crypto.PrivateKey
	var pubs [consensustype.DelegateCount]*crypto.PublicKey
	for i := range privs {
		sk, err := crypto.GenerateKey()
		require.NoError(t, err)
		privs[i] = sk
		pubs[i] = sk.Public()
	}
	return privs, pubs
}

func TestSignAndVerifySingle(t *testing.T) {
	privs, pubs := buildCommittee(t)
	mv := New(3, privs[3], pubs)

	hash := crypto.Sum256([]byte("prepare message"))
	sig := mv.Sign(hash)
	require.True(t, mv.Verify(hash, sig, 3))
	require.False(t, mv.Verify(hash, sig, 4))
}

func TestAggregateSignAndVerifyQuorum(t *testing.T) {
	privs, pubs := buildCommittee(t)
	mv := New(0, privs[0], pubs)

	hash := crypto.Sum256([]byte("post-prepare message"))
	quorum := consensustype.Quorum(consensustype.DelegateCount)

	var contributions []crypto.Contribution
	for i := uint64(0); i < quorum; i++ {
		idx := uint8(i)
		sig := privs[idx].Sign(hash)
		contributions = append(contributions, crypto.Contribution{
			DelegateIndex: idx,
			Signature:     sig.Bytes(),
			PublicKey:     pubs[idx],
		})
	}

	bitmap, aggSig, err := mv.AggregateSign(contributions)
	require.NoError(t, err)
	require.Equal(t, int(quorum), bitmap.PopCount())
	require.True(t, mv.VerifyAggregate(bitmap, aggSig, hash))
}

func TestVerifyAggregateRejectsMissingKey(t *testing.T) {
	privs, pubs := buildCommittee(t)
	mv := New(0, privs[0], pubs)
	mv.committee[5] = nil // simulate an unfilled committee seat

	hash := crypto.Sum256([]byte("message"))
	contributions := []crypto.Contribution{
		{DelegateIndex: 5, Signature: privs[5].Sign(hash).Bytes(), PublicKey: pubs[5]},
	}
	bitmap, aggSig, err := mv.AggregateSign(contributions)
	require.NoError(t, err)
	require.False(t, mv.VerifyAggregate(bitmap, aggSig, hash))
}

func TestSetAndGetDelegateKey(t *testing.T) {
	privs, pubs := buildCommittee(t)
	mv := New(0, privs[0], pubs)

	_, err := mv.DelegateKey(31)
	require.NoError(t, err)

	mv.SetDelegateKey(31, nil)
	_, err = mv.DelegateKey(31)
	require.ErrorIs(t, err, ErrUnknownDelegate)

	mv.SetDelegateKey(31, pubs[31])
	_, err = mv.DelegateKey(31)
	require.NoError(t, err)
}
