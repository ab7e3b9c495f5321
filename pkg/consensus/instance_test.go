package consensus

import (
	"testing"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/stretchr/testify/require"
)

func testHash(b byte) crypto.Hash {
	var h crypto.Hash
	h[0] = b
	return h
}

func TestInstanceReachesPostPrepareAtQuorum(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	// Quorum over 32*10000=320000 is 213334, so 22 votes (220000) cross it
	// but 21 (210000) do not.
	for d := uint8(0); d < 21; d++ {
		reached, err := inst.OnPrepare(d, crypto.Signature{}, hash)
		require.NoError(t, err)
		require.False(t, reached)
	}
	require.Equal(t, StatePrePrepare, inst.State())

	reached, err := inst.OnPrepare(21, crypto.Signature{}, hash)
	require.NoError(t, err)
	require.True(t, reached)
	require.Equal(t, StatePostPrepare, inst.State())
}

func TestInstanceDuplicatePrepareIgnored(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	reached, err := inst.OnPrepare(0, crypto.Signature{}, hash)
	require.NoError(t, err)
	require.False(t, reached)

	reached, err = inst.OnPrepare(0, crypto.Signature{}, hash)
	require.NoError(t, err)
	require.False(t, reached)
}

func TestInstancePrepareWrongHashRejected(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	inst.BeginRound(1, 1, testHash(1))

	_, err := inst.OnPrepare(0, crypto.Signature{}, testHash(2))
	require.ErrorIs(t, err, ErrWrongRound)
}

func TestInstanceFullRoundCycle(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	for d := uint8(0); d < 22; d++ {
		inst.OnPrepare(d, crypto.Signature{}, hash)
	}
	require.Equal(t, StatePostPrepare, inst.State())

	for d := uint8(0); d < 21; d++ {
		reached, err := inst.OnCommit(d, crypto.Signature{}, hash)
		require.NoError(t, err)
		require.False(t, reached)
	}
	reached, err := inst.OnCommit(21, crypto.Signature{}, hash)
	require.NoError(t, err)
	require.True(t, reached)
	require.Equal(t, StatePostCommit, inst.State())

	inst.Reset()
	require.Equal(t, StateVoid, inst.State())
}

func TestInstanceCommitBeforePostPrepareRejected(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	_, err := inst.OnCommit(0, crypto.Signature{}, hash)
	require.ErrorIs(t, err, ErrWrongRound)
}

func TestInstanceRejectionMakesQuorumUnreachable(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	// quorum is 213334 (22 delegates); rejecting 11 delegates leaves 21
	// delegates (210000) of remaining potential, which is already short.
	for d := uint8(0); d < 10; d++ {
		unreachable := inst.OnRejection(d)
		require.False(t, unreachable)
		require.Equal(t, StatePrePrepare, inst.State())
	}
	unreachable := inst.OnRejection(10)
	require.True(t, unreachable)
	require.Equal(t, StateVoid, inst.State())
}

func TestInstanceRejectionBelowThresholdStaysPrePrepare(t *testing.T) {
	inst := NewInstance(consensustype.Request, uniformWeights(10000))
	hash := testHash(1)
	inst.BeginRound(1, 1, hash)

	unreachable := inst.OnRejection(0)
	require.False(t, unreachable)
	require.Equal(t, StatePrePrepare, inst.State())
}
