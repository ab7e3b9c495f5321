// Package wire implements the bespoke binary protocol of spec §6: the
// 8-byte prequel header, Tip/TipSet snapshots, and PullRequest/PullResponse.
// Every encode/decode pair here is hand-rolled little-endian packing via
// encoding/binary rather than an off-the-shelf serialization library — see
// DESIGN.md for why: the layout is externally dictated byte-for-byte and
// doesn't correspond to any general-purpose scheme in the example pack.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/LogosNetwork/logos-core-sub004/pkg/consensustype"
)

// ErrTruncated is returned by every Decode function when the input buffer
// is shorter than the fixed layout requires (testable property #7).
var ErrTruncated = errors.New("wire: truncated buffer")

// PrequelSize is the fixed 8-byte header size.
const PrequelSize = 8

// Prequel is the fixed header prefixing every wire message.
type Prequel struct {
	Version       uint8
	Type          consensustype.MessageType
	ConsensusType consensustype.Type
	MPF           uint8 // multi-purpose field
	PayloadSize   uint32
}

// Encode writes the 8-byte prequel.
func (p Prequel) Encode() []byte {
	b := make([]byte, PrequelSize)
	b[0] = p.Version
	b[1] = byte(p.Type)
	b[2] = byte(p.ConsensusType)
	b[3] = p.MPF
	binary.LittleEndian.PutUint32(b[4:8], p.PayloadSize)
	return b
}

// DecodePrequel reads the 8-byte prequel from the front of b.
func DecodePrequel(b []byte) (Prequel, error) {
	if len(b) < PrequelSize {
		return Prequel{}, ErrTruncated
	}
	return Prequel{
		Version:       b[0],
		Type:          consensustype.MessageType(b[1]),
		ConsensusType: consensustype.Type(b[2]),
		MPF:           b[3],
		PayloadSize:   binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}
