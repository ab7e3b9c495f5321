package wire

import (
	"encoding/binary"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
)

// TipSize is the wire width of a Tip: epoch(4) + sequence(4) + digest(32).
const TipSize = 4 + 4 + crypto.HashSize

// Tip identifies the head of a chain: (epoch, sequence, digest).
type Tip struct {
	Epoch    uint32
	Sequence uint32
	Digest   crypto.Hash
}

// Less implements the lexicographic tip ordering of §4.6.1: (epoch,
// sequence, digest), with the zero digest compared as lower than any
// non-zero digest at an equal (epoch, sequence).
func (t Tip) Less(o Tip) bool {
	if t.Epoch != o.Epoch {
		return t.Epoch < o.Epoch
	}
	if t.Sequence != o.Sequence {
		return t.Sequence < o.Sequence
	}
	if t.Digest == o.Digest {
		return false
	}
	if t.Digest.IsZero() {
		return !o.Digest.IsZero()
	}
	if o.Digest.IsZero() {
		return false
	}
	for i := 0; i < crypto.HashSize; i++ {
		if t.Digest[i] != o.Digest[i] {
			return t.Digest[i] < o.Digest[i]
		}
	}
	return false
}

// Encode serializes a Tip to its fixed 40-byte wire form.
func (t Tip) Encode() []byte {
	b := make([]byte, TipSize)
	binary.LittleEndian.PutUint32(b[0:4], t.Epoch)
	binary.LittleEndian.PutUint32(b[4:8], t.Sequence)
	copy(b[8:], t.Digest[:])
	return b
}

// DecodeTip reads a Tip from the front of b.
func DecodeTip(b []byte) (Tip, []byte, error) {
	if len(b) < TipSize {
		return Tip{}, nil, ErrTruncated
	}
	t := Tip{
		Epoch:    binary.LittleEndian.Uint32(b[0:4]),
		Sequence: binary.LittleEndian.Uint32(b[4:8]),
	}
	copy(t.Digest[:], b[8:TipSize])
	return t, b[TipSize:], nil
}

// TipSetSize is Tip(eb) + Tip(mb) + 32*Tip(bsb) + 32*Tip(bsb_new_epoch) + u64 count.
const TipSetSize = TipSize*(2+2*consensustype.DelegateCount) + 8

// TipSet is the full set of chain heads exchanged during bootstrap
// negotiation (§4.6).
type TipSet struct {
	EpochTip             Tip
	MicroTip             Tip
	RequestTips          [consensustype.DelegateCount]Tip
	RequestTipsNextEpoch [consensustype.DelegateCount]Tip
	CumulativeCount      uint64
}

// Encode serializes a TipSet to its fixed wire form.
func (ts TipSet) Encode() []byte {
	b := make([]byte, 0, TipSetSize)
	b = append(b, ts.EpochTip.Encode()...)
	b = append(b, ts.MicroTip.Encode()...)
	for _, t := range ts.RequestTips {
		b = append(b, t.Encode()...)
	}
	for _, t := range ts.RequestTipsNextEpoch {
		b = append(b, t.Encode()...)
	}
	count := make([]byte, 8)
	binary.LittleEndian.PutUint64(count, ts.CumulativeCount)
	return append(b, count...)
}

// DecodeTipSet reads a TipSet from b.
func DecodeTipSet(b []byte) (TipSet, error) {
	if len(b) < TipSetSize {
		return TipSet{}, ErrTruncated
	}
	var ts TipSet
	var err error
	ts.EpochTip, b, err = DecodeTip(b)
	if err != nil {
		return TipSet{}, err
	}
	ts.MicroTip, b, err = DecodeTip(b)
	if err != nil {
		return TipSet{}, err
	}
	for i := range ts.RequestTips {
		ts.RequestTips[i], b, err = DecodeTip(b)
		if err != nil {
			return TipSet{}, err
		}
	}
	for i := range ts.RequestTipsNextEpoch {
		ts.RequestTipsNextEpoch[i], b, err = DecodeTip(b)
		if err != nil {
			return TipSet{}, err
		}
	}
	if len(b) < 8 {
		return TipSet{}, ErrTruncated
	}
	ts.CumulativeCount = binary.LittleEndian.Uint64(b[0:8])
	return ts, nil
}

// PrePrepareCommon is the fixed prefix shared by all pre-prepare messages
// (§6). Timestamp/PrimaryDelegateID are excluded from archival hashing per
// §4.1's hash contract; see pkg/model for the canonical hash views.
type PrePrepareCommon struct {
	PrimaryDelegateID uint8
	EpochNumber       uint32
	Sequence          uint32
	TimestampMS       uint64
	Previous          crypto.Hash
	PrimarySig        crypto.Hash // 32-byte BLS signature point
}

// PrePrepareCommonSize is 1 + 4 + 4 + 8 + 32 + 32.
const PrePrepareCommonSize = 1 + 4 + 4 + 8 + crypto.HashSize + crypto.HashSize

// Encode serializes the fixed pre-prepare prefix.
func (c PrePrepareCommon) Encode() []byte {
	b := make([]byte, PrePrepareCommonSize)
	b[0] = c.PrimaryDelegateID
	binary.LittleEndian.PutUint32(b[1:5], c.EpochNumber)
	binary.LittleEndian.PutUint32(b[5:9], c.Sequence)
	binary.LittleEndian.PutUint64(b[9:17], c.TimestampMS)
	copy(b[17:17+crypto.HashSize], c.Previous[:])
	copy(b[17+crypto.HashSize:], c.PrimarySig[:])
	return b
}

// DecodePrePrepareCommon reads the fixed pre-prepare prefix from b.
func DecodePrePrepareCommon(b []byte) (PrePrepareCommon, []byte, error) {
	if len(b) < PrePrepareCommonSize {
		return PrePrepareCommon{}, nil, ErrTruncated
	}
	var c PrePrepareCommon
	c.PrimaryDelegateID = b[0]
	c.EpochNumber = binary.LittleEndian.Uint32(b[1:5])
	c.Sequence = binary.LittleEndian.Uint32(b[5:9])
	c.TimestampMS = binary.LittleEndian.Uint64(b[9:17])
	copy(c.Previous[:], b[17:17+crypto.HashSize])
	copy(c.PrimarySig[:], b[17+crypto.HashSize:PrePrepareCommonSize])
	return c, b[PrePrepareCommonSize:], nil
}

// AggregatedSigSize is u64 bitmap + 32-byte signature.
const AggregatedSigSize = 8 + crypto.HashSize

// AggregatedSig is the wire form of a PostPrepare/PostCommit signature
// bundle (§6).
type AggregatedSig struct {
	Bitmap crypto.Bitmap
	Sig    crypto.Hash
}

// Encode serializes an AggregatedSig.
func (a AggregatedSig) Encode() []byte {
	b := make([]byte, AggregatedSigSize)
	binary.LittleEndian.PutUint64(b[0:8], uint64(a.Bitmap))
	copy(b[8:], a.Sig[:])
	return b
}

// DecodeAggregatedSig reads an AggregatedSig from b.
func DecodeAggregatedSig(b []byte) (AggregatedSig, []byte, error) {
	if len(b) < AggregatedSigSize {
		return AggregatedSig{}, nil, ErrTruncated
	}
	var a AggregatedSig
	a.Bitmap = crypto.Bitmap(binary.LittleEndian.Uint64(b[0:8]))
	copy(a.Sig[:], b[8:AggregatedSigSize])
	return a, b[AggregatedSigSize:], nil
}

// PullStatus is the status byte prefixing a PullResponse (§6).
type PullStatus uint8

const (
	MoreBlock PullStatus = iota
	LastBlock
	NoBlock
)

// PullRequestSize is u8 consensus_type + 32-byte previous + 32-byte target.
const PullRequestSize = 1 + crypto.HashSize + crypto.HashSize

// PullRequest asks a peer for the blocks between Previous (exclusive) and
// Target (inclusive) on the named consensus chain (§4.6.3).
type PullRequest struct {
	ConsensusType consensustype.Type
	Previous      crypto.Hash
	Target        crypto.Hash
}

// Encode serializes a PullRequest.
func (r PullRequest) Encode() []byte {
	b := make([]byte, PullRequestSize)
	b[0] = byte(r.ConsensusType)
	copy(b[1:1+crypto.HashSize], r.Previous[:])
	copy(b[1+crypto.HashSize:], r.Target[:])
	return b
}

// DecodePullRequest reads a PullRequest from b.
func DecodePullRequest(b []byte) (PullRequest, error) {
	if len(b) < PullRequestSize {
		return PullRequest{}, ErrTruncated
	}
	var r PullRequest
	r.ConsensusType = consensustype.Type(b[0])
	copy(r.Previous[:], b[1:1+crypto.HashSize])
	copy(r.Target[:], b[1+crypto.HashSize:PullRequestSize])
	return r, nil
}

// PullResponse is a status byte, followed (if status != NoBlock) by the
// serialized post-committed block (prequel + payload), per §6.
type PullResponse struct {
	Status PullStatus
	Block  []byte // prequel + payload, opaque to this package
}

// Encode serializes a PullResponse.
func (r PullResponse) Encode() []byte {
	b := make([]byte, 1, 1+len(r.Block))
	b[0] = byte(r.Status)
	if r.Status != NoBlock {
		b = append(b, r.Block...)
	}
	return b
}

// DecodePullResponse reads a PullResponse from b.
func DecodePullResponse(b []byte) (PullResponse, error) {
	if len(b) < 1 {
		return PullResponse{}, ErrTruncated
	}
	status := PullStatus(b[0])
	var block []byte
	if status != NoBlock {
		if len(b) < 1+PrequelSize {
			return PullResponse{}, ErrTruncated
		}
		block = append([]byte(nil), b[1:]...)
	}
	return PullResponse{Status: status, Block: block}, nil
}
