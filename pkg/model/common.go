// Package model defines the entities of spec §3: accounts, staking and
// liability records, the Request tagged union, and the three block types,
// plus the canonical "hashable view" each message type exposes per §4.1.
package model

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/holiman/uint256"
)

// AddressSize mirrors go-ethereum-family 20-byte account addresses.
const AddressSize = 20

// Address identifies an account.
type Address [AddressSize]byte

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Amount is a balance/fee/stake quantity. uint256 matches the teacher
// family's convention for on-chain monetary values (DESIGN.md).
type Amount = uint256.Int

// ZeroAmount returns a fresh zero-valued Amount.
func ZeroAmount() *Amount { return uint256.NewInt(0) }

// Hash is re-exported for convenience so model callers don't need to import
// pkg/crypto directly just to spell the type.
type Hash = crypto.Hash
