package model

import "github.com/LogosNetwork/logos-core-sub004/pkg/crypto"

// HashableView is the "canonical hashable view" abstraction of Design
// Notes §9: every message struct that needs consensus-level hashing
// implements it, and Hash() below is the one pure function that turns a
// view into a 32-byte digest — replacing the teacher's template-based
// message-hash dispatch with an interface plus a free function.
type HashableView interface {
	// fields returns the ordered byte slices to be hashed, per §4.1's
	// contract: {primary_delegate_id?, epoch_number, sequence, timestamp?,
	// previous_hash, content}. Archival views omit primary id/timestamp so
	// the digest is identical across delegates; sequence-0 views omit
	// previous_hash.
	fields() [][]byte
}

// HashView computes the canonical digest of a HashableView.
func HashView(v HashableView) crypto.Hash {
	return crypto.Sum256(v.fields()...)
}

// requestBlockView is the hashable view of a RequestBlock: includes the
// primary id and timestamp since delegates need not agree bit-for-bit on a
// Request-consensus round the way they must on archival blocks.
type requestBlockView struct {
	RequestBlock
}

func (v requestBlockView) fields() [][]byte {
	f := [][]byte{
		{v.Common.PrimaryDelegateID},
		crypto.SumUint32(v.Common.EpochNumber),
		crypto.SumUint32(v.Common.Sequence),
		crypto.SumUint64(v.Common.TimestampMS),
	}
	if v.Common.Sequence != 0 {
		f = append(f, v.Common.Previous[:])
	}
	for _, r := range v.Requests {
		h := r.Hash()
		f = append(f, h[:])
	}
	return f
}

// View wraps a RequestBlock in its HashableView.
func (b RequestBlock) View() HashableView { return requestBlockView{b} }

// archivalView is shared by MicroBlock and EpochBlock: primary id and
// timestamp are excluded so every delegate computes the identical digest
// (§4.1).
type archivalView struct {
	epoch, sequence uint32
	previous        crypto.Hash
	content         [][]byte
}

func (v archivalView) fields() [][]byte {
	f := [][]byte{
		crypto.SumUint32(v.epoch),
		crypto.SumUint32(v.sequence),
	}
	if v.sequence != 0 {
		f = append(f, v.previous[:])
	}
	return append(f, v.content...)
}

// View wraps a MicroBlock in its HashableView.
func (b MicroBlock) View() HashableView {
	content := make([][]byte, 0, len(b.RequestTips)+2)
	for _, t := range b.RequestTips {
		enc := t.Encode()
		content = append(content, enc)
	}
	root := b.MerkleRoot
	content = append(content, root[:], crypto.SumUint64(b.RequestCount))
	if b.LastMicroBlock {
		content = append(content, []byte{1})
	} else {
		content = append(content, []byte{0})
	}
	return archivalView{
		epoch:    b.Common.EpochNumber,
		sequence: b.Common.Sequence,
		previous: b.Common.Previous,
		content:  content,
	}
}

// View wraps an EpochBlock in its HashableView.
func (b EpochBlock) View() HashableView {
	content := make([][]byte, 0, len(b.Delegates)+2)
	for _, d := range b.Delegates {
		content = append(content, d.Account[:], crypto.SumUint64(d.VoteWeight), d.Stake.Bytes())
	}
	tip := b.MicroBlockTip
	content = append(content, tip[:], b.TransactionFeePool.Bytes())
	return archivalView{
		epoch:    b.Common.EpochNumber,
		sequence: b.Common.Sequence,
		previous: b.Common.Previous,
		content:  content,
	}
}
