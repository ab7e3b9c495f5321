package store

import (
	"encoding/binary"
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
	"github.com/holiman/uint256"
)

// ErrShortRecord is returned by the decoders below when a stored record is
// shorter than its fixed layout, mirroring wire.ErrTruncated for on-disk
// records instead of wire messages.
var ErrShortRecord = errors.New("store: record truncated")

func putAmount(b []byte, a *model.Amount) {
	if a == nil {
		return
	}
	bs := a.Bytes32()
	copy(b, bs[:])
}

func getAmount(b []byte) *model.Amount {
	var bs [32]byte
	copy(bs[:], b)
	return new(uint256.Int).SetBytes32(bs[:])
}

// --- AccountInfo: Head32 | StakingSubchainHead32 | Representative20 |
// Balance32 | AvailableBalance32 | ModifiedEpoch4 | HeadSequence4 ---

const accountInfoSize = 32 + 32 + 20 + 32 + 32 + 4 + 4

func encodeAccountInfo(a model.AccountInfo) []byte {
	b := make([]byte, accountInfoSize)
	off := 0
	copy(b[off:], a.Head[:])
	off += 32
	copy(b[off:], a.StakingSubchainHead[:])
	off += 32
	copy(b[off:], a.Representative[:])
	off += 20
	putAmount(b[off:off+32], a.Balance)
	off += 32
	putAmount(b[off:off+32], a.AvailableBalance)
	off += 32
	binary.LittleEndian.PutUint32(b[off:], a.ModifiedEpoch)
	off += 4
	binary.LittleEndian.PutUint32(b[off:], a.HeadSequence)
	return b
}

func decodeAccountInfo(b []byte) (model.AccountInfo, error) {
	if len(b) < accountInfoSize {
		return model.AccountInfo{}, ErrShortRecord
	}
	var a model.AccountInfo
	off := 0
	a.Head = crypto.BytesToHash(b[off : off+32])
	off += 32
	a.StakingSubchainHead = crypto.BytesToHash(b[off : off+32])
	off += 32
	copy(a.Representative[:], b[off:off+20])
	off += 20
	a.Balance = getAmount(b[off : off+32])
	off += 32
	a.AvailableBalance = getAmount(b[off : off+32])
	off += 32
	a.ModifiedEpoch = binary.LittleEndian.Uint32(b[off:])
	off += 4
	a.HeadSequence = binary.LittleEndian.Uint32(b[off:])
	return a, nil
}

// --- StakedFunds: TargetRep20 | Amount32 ---

const stakedFundsSize = 20 + 32

func encodeStakedFunds(s model.StakedFunds) []byte {
	b := make([]byte, stakedFundsSize)
	copy(b[:20], s.TargetRep[:])
	putAmount(b[20:52], s.Amount)
	return b
}

func decodeStakedFunds(b []byte) (model.StakedFunds, error) {
	if len(b) < stakedFundsSize {
		return model.StakedFunds{}, ErrShortRecord
	}
	var s model.StakedFunds
	copy(s.TargetRep[:], b[:20])
	s.Amount = getAmount(b[20:52])
	return s, nil
}

// --- Liability: Kind1 | Target20 | Source20 | Amount32 | ExpirationEpoch4 ---

const liabilitySize = 1 + 20 + 20 + 32 + 4

func encodeLiability(l model.Liability) []byte {
	b := make([]byte, liabilitySize)
	off := 0
	b[off] = byte(l.Kind)
	off++
	copy(b[off:], l.Target[:])
	off += 20
	copy(b[off:], l.Source[:])
	off += 20
	putAmount(b[off:off+32], l.Amount)
	off += 32
	binary.LittleEndian.PutUint32(b[off:], l.ExpirationEpoch)
	return b
}

func decodeLiability(b []byte) (model.Liability, error) {
	if len(b) < liabilitySize {
		return model.Liability{}, ErrShortRecord
	}
	var l model.Liability
	off := 0
	l.Kind = model.LiabilityKind(b[off])
	off++
	copy(l.Target[:], b[off:off+20])
	off += 20
	copy(l.Source[:], b[off:off+20])
	off += 20
	l.Amount = getAmount(b[off : off+32])
	off += 32
	l.ExpirationEpoch = binary.LittleEndian.Uint32(b[off:])
	return l, nil
}

// --- Request: Kind1 | Origin20 | Previous32 | Fee32 | Sequence4 |
// Signature32 | TimestampMS8 | Representative20 | TokenOp(Token32 |
// SettingBit1 | Enable1) | Stake32 | txCount4 | tx*(Destination20|Amount32) |
// voteCount4 | vote*(Candidate20|Votes1) ---

func encodeRequest(r model.Request) []byte {
	fixed := 1 + 20 + 32 + 32 + 4 + 32 + 8 + 20 + (32 + 1 + 1) + 32 + 4
	b := make([]byte, fixed, fixed+len(r.Transactions)*52+4+len(r.Vote.Candidates)*21)
	off := 0
	b[off] = byte(r.Kind)
	off++
	copy(b[off:], r.Origin[:])
	off += 20
	copy(b[off:], r.Previous[:])
	off += 32
	putAmount(b[off:off+32], r.Fee)
	off += 32
	binary.LittleEndian.PutUint32(b[off:], r.Sequence)
	off += 4
	copy(b[off:], r.Signature[:])
	off += 32
	binary.LittleEndian.PutUint64(b[off:], r.TimestampMS)
	off += 8
	copy(b[off:], r.Representative[:])
	off += 20
	copy(b[off:], r.TokenOp.Token[:])
	off += 32
	b[off] = r.TokenOp.SettingBit
	off++
	if r.TokenOp.Enable {
		b[off] = 1
	}
	off++
	putAmount(b[off:off+32], r.Stake)
	off += 32
	binary.LittleEndian.PutUint32(b[off:], uint32(len(r.Transactions)))

	for _, tx := range r.Transactions {
		var e [52]byte
		copy(e[:20], tx.Destination[:])
		putAmount(e[20:52], tx.Amount)
		b = append(b, e[:]...)
	}

	var voteCount [4]byte
	binary.LittleEndian.PutUint32(voteCount[:], uint32(len(r.Vote.Candidates)))
	b = append(b, voteCount[:]...)
	for i, c := range r.Vote.Candidates {
		var e [21]byte
		copy(e[:20], c[:])
		if i < len(r.Vote.Votes) {
			e[20] = r.Vote.Votes[i]
		}
		b = append(b, e[:]...)
	}
	return b
}

func decodeRequest(b []byte) (model.Request, []byte, error) {
	const fixed = 1 + 20 + 32 + 32 + 4 + 32 + 8 + 20 + (32 + 1 + 1) + 32 + 4
	if len(b) < fixed {
		return model.Request{}, nil, ErrShortRecord
	}
	var r model.Request
	off := 0
	r.Kind = model.RequestKind(b[off])
	off++
	copy(r.Origin[:], b[off:off+20])
	off += 20
	r.Previous = crypto.BytesToHash(b[off : off+32])
	off += 32
	r.Fee = getAmount(b[off : off+32])
	off += 32
	r.Sequence = binary.LittleEndian.Uint32(b[off:])
	off += 4
	r.Signature = crypto.BytesToHash(b[off : off+32])
	off += 32
	r.TimestampMS = binary.LittleEndian.Uint64(b[off:])
	off += 8
	copy(r.Representative[:], b[off:off+20])
	off += 20
	r.TokenOp.Token = crypto.BytesToHash(b[off : off+32])
	off += 32
	r.TokenOp.SettingBit = b[off]
	off++
	r.TokenOp.Enable = b[off] == 1
	off++
	r.Stake = getAmount(b[off : off+32])
	off += 32
	txCount := binary.LittleEndian.Uint32(b[off:])
	off += 4

	rest := b[off:]
	for i := uint32(0); i < txCount; i++ {
		if len(rest) < 52 {
			return model.Request{}, nil, ErrShortRecord
		}
		var tx model.Transaction
		copy(tx.Destination[:], rest[:20])
		tx.Amount = getAmount(rest[20:52])
		r.Transactions = append(r.Transactions, tx)
		rest = rest[52:]
	}
	if len(rest) < 4 {
		return model.Request{}, nil, ErrShortRecord
	}
	voteCount := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]
	for i := uint32(0); i < voteCount; i++ {
		if len(rest) < 21 {
			return model.Request{}, nil, ErrShortRecord
		}
		var c model.Address
		copy(c[:], rest[:20])
		r.Vote.Candidates = append(r.Vote.Candidates, c)
		r.Vote.Votes = append(r.Vote.Votes, rest[20])
		rest = rest[21:]
	}
	return r, rest, nil
}

// --- RequestBlock: Common | reqCount4 | req* | PrepareSig | CommitSig |
// Participation ---

func encodeRequestBlock(blk model.RequestBlock) []byte {
	b := blk.Common.Encode()
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(blk.Requests)))
	b = append(b, count[:]...)
	for _, r := range blk.Requests {
		b = append(b, encodeRequest(r)...)
	}
	b = append(b, blk.PrepareSig.Encode()...)
	b = append(b, blk.CommitSig.Encode()...)
	b = append(b, blk.Participation.Encode()...)
	return b
}

func decodeRequestBlock(b []byte) (model.RequestBlock, error) {
	common, rest, err := wire.DecodePrePrepareCommon(b)
	if err != nil {
		return model.RequestBlock{}, err
	}
	if len(rest) < 4 {
		return model.RequestBlock{}, ErrShortRecord
	}
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]
	blk := model.RequestBlock{Common: common}
	for i := uint32(0); i < count; i++ {
		var r model.Request
		r, rest, err = decodeRequest(rest)
		if err != nil {
			return model.RequestBlock{}, err
		}
		blk.Requests = append(blk.Requests, r)
	}
	blk.PrepareSig, rest, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.RequestBlock{}, err
	}
	blk.CommitSig, rest, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.RequestBlock{}, err
	}
	blk.Participation, _, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.RequestBlock{}, err
	}
	return blk, nil
}

// --- MicroBlock: Common | RequestTips[32] | MerkleRoot32 | RequestCount8 |
// LastMicroBlock1 | PrepareSig | CommitSig ---

func encodeMicroBlock(blk model.MicroBlock) []byte {
	b := blk.Common.Encode()
	for _, t := range blk.RequestTips {
		b = append(b, t.Encode()...)
	}
	b = append(b, blk.MerkleRoot[:]...)
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], blk.RequestCount)
	b = append(b, count[:]...)
	if blk.LastMicroBlock {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = append(b, blk.PrepareSig.Encode()...)
	b = append(b, blk.CommitSig.Encode()...)
	return b
}

func decodeMicroBlock(b []byte) (model.MicroBlock, error) {
	common, rest, err := wire.DecodePrePrepareCommon(b)
	if err != nil {
		return model.MicroBlock{}, err
	}
	blk := model.MicroBlock{Common: common}
	for i := range blk.RequestTips {
		var t wire.Tip
		t, rest, err = wire.DecodeTip(rest)
		if err != nil {
			return model.MicroBlock{}, err
		}
		blk.RequestTips[i] = t
	}
	if len(rest) < 32+8+1 {
		return model.MicroBlock{}, ErrShortRecord
	}
	blk.MerkleRoot = crypto.BytesToHash(rest[:32])
	rest = rest[32:]
	blk.RequestCount = binary.LittleEndian.Uint64(rest)
	rest = rest[8:]
	blk.LastMicroBlock = rest[0] == 1
	rest = rest[1:]
	blk.PrepareSig, rest, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.MicroBlock{}, err
	}
	blk.CommitSig, _, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.MicroBlock{}, err
	}
	return blk, nil
}

// --- EpochBlock: Common | Delegates[32](Account20|VoteWeight8|Stake32) |
// TransactionFeePool32 | MicroBlockTip32 | PrepareSig | CommitSig ---

func encodeEpochBlock(blk model.EpochBlock) []byte {
	b := blk.Common.Encode()
	for _, d := range blk.Delegates {
		var e [60]byte
		copy(e[:20], d.Account[:])
		binary.LittleEndian.PutUint64(e[20:28], d.VoteWeight)
		putAmount(e[28:60], d.Stake)
		b = append(b, e[:]...)
	}
	b = append(b, blk.TransactionFeePool.Bytes32()[:]...)
	b = append(b, blk.MicroBlockTip[:]...)
	b = append(b, blk.PrepareSig.Encode()...)
	b = append(b, blk.CommitSig.Encode()...)
	return b
}

func decodeEpochBlock(b []byte) (model.EpochBlock, error) {
	common, rest, err := wire.DecodePrePrepareCommon(b)
	if err != nil {
		return model.EpochBlock{}, err
	}
	blk := model.EpochBlock{Common: common}
	for i := range blk.Delegates {
		if len(rest) < 60 {
			return model.EpochBlock{}, ErrShortRecord
		}
		var d model.DelegateDescriptor
		copy(d.Account[:], rest[:20])
		d.VoteWeight = binary.LittleEndian.Uint64(rest[20:28])
		d.Stake = getAmount(rest[28:60])
		blk.Delegates[i] = d
		rest = rest[60:]
	}
	if len(rest) < 64 {
		return model.EpochBlock{}, ErrShortRecord
	}
	blk.TransactionFeePool = getAmount(rest[:32])
	blk.MicroBlockTip = crypto.BytesToHash(rest[32:64])
	rest = rest[64:]
	blk.PrepareSig, rest, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.EpochBlock{}, err
	}
	blk.CommitSig, _, err = wire.DecodeAggregatedSig(rest)
	if err != nil {
		return model.EpochBlock{}, err
	}
	return blk, nil
}
