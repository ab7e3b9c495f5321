package cache

import (
	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
	"github.com/LogosNetwork/logos-core-sub004/pkg/wire"
)

// AggregateVerifier checks a block's aggregated commit signature against its
// canonical hash — the "verify_aggregate" operation of §4.1. It takes the
// wire-encoded signature bytes directly (rather than a decoded
// *crypto.Signature) so this package never imports pkg/validator or decides
// how to deserialize a peer's bytes; a concrete adapter over
// pkg/validator.MessageValidator owns that step (crypto.SignatureFromBytes
// then MessageValidator.VerifyAggregate).
type AggregateVerifier interface {
	VerifyAggregate(bitmap crypto.Bitmap, sig crypto.Hash, referenceHash crypto.Hash) bool
}

// Feeder adapts a BlockCache into pkg/bootstrap.BlockCache: each Feed*
// method verifies the block's aggregated CommitSig (caching the outcome so
// a retransmitted response doesn't pay BLS verification twice per §4.6.3's
// "the cache validates aggregated signatures and chain continuity and
// returns success iff it accepts"), persists an accepted block, and reports
// acceptance back to the Puller.
type Feeder struct {
	Cache    *BlockCache
	DB       *store.DB
	Verifier AggregateVerifier
}

// NewFeeder builds a Feeder over an existing BlockCache, store and
// signature verifier.
func NewFeeder(c *BlockCache, db *store.DB, verifier AggregateVerifier) *Feeder {
	return &Feeder{Cache: c, DB: db, Verifier: verifier}
}

// verifyAndCache reports whether sig is a valid aggregated commit signature
// over hash, consulting (and updating) the signature cache first.
func (f *Feeder) verifyAndCache(hash crypto.Hash, sig wire.AggregatedSig) bool {
	if f.Cache.IsVerified(hash) {
		return true
	}
	if !f.Verifier.VerifyAggregate(sig.Bitmap, sig.Sig, hash) {
		return false
	}
	f.Cache.MarkVerified(hash)
	return true
}

// FeedRequestBlock implements pkg/bootstrap.BlockCache for a request block
// pulled from a peer: on a valid CommitSig it appends the block and
// advances delegateIndex's chain tip inside one write transaction.
func (f *Feeder) FeedRequestBlock(delegateIndex uint8, blk model.RequestBlock) (bool, error) {
	hash := model.HashView(blk.View())
	if !f.verifyAndCache(hash, blk.CommitSig) {
		return false, nil
	}
	err := f.DB.Write(func(tx *store.Tx) error {
		if err := tx.PutRequestBlock(blk); err != nil {
			return err
		}
		return tx.PutRequestBlockTip(delegateIndex, hash)
	})
	if err != nil {
		return false, err
	}
	f.Cache.AddBlock(hash, blk)
	return true, nil
}

// FeedMicroBlock implements pkg/bootstrap.BlockCache for a pulled
// microblock: PutMicroBlock advances the microblock tip atomically.
func (f *Feeder) FeedMicroBlock(blk model.MicroBlock) (bool, error) {
	hash := model.HashView(blk.View())
	if !f.verifyAndCache(hash, blk.CommitSig) {
		return false, nil
	}
	if err := f.DB.Write(func(tx *store.Tx) error { return tx.PutMicroBlock(blk) }); err != nil {
		return false, err
	}
	f.Cache.AddBlock(hash, blk)
	return true, nil
}

// FeedEpochBlock implements pkg/bootstrap.BlockCache for a pulled
// epoch block: PutEpochBlock advances the epoch tip atomically, and a
// successful feed purges cached signatures, since committee membership (and
// thus every prior aggregate's verification key set) just changed.
func (f *Feeder) FeedEpochBlock(blk model.EpochBlock) (bool, error) {
	hash := model.HashView(blk.View())
	if !f.verifyAndCache(hash, blk.CommitSig) {
		return false, nil
	}
	if err := f.DB.Write(func(tx *store.Tx) error { return tx.PutEpochBlock(blk) }); err != nil {
		return false, err
	}
	f.Cache.Purge()
	f.Cache.AddBlock(hash, blk)
	f.Cache.MarkVerified(hash)
	return true, nil
}
