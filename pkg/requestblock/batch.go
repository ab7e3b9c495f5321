package requestblock

import (
	"time"

	"github.com/LogosNetwork/logos-core-sub004/pkg/handler"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	"github.com/LogosNetwork/logos-core-sub004/pkg/store"
)

// PendingTTL is a time-to-live for accepted-but-uncommitted requests
// (§4.3.1). RequestHandler.Expired uses the ttl given to each Add call;
// nothing in this module passes PendingTTL to it.
const PendingTTL = 5 * time.Minute

// Builder assembles the next RequestBlock batch from the pending queue,
// validating each candidate against a read transaction of the store, the
// way §4.3.1 describes: "primary builds the next batch by walking the
// sequence view, validating each candidate ... dropping failures."
type Builder struct {
	Queue *handler.RequestHandler
	DB    *store.DB
	Sig   SignatureVerifier
}

// NewBuilder wires a Builder over an existing pending-request queue, block
// store, and signature verifier.
func NewBuilder(queue *handler.RequestHandler, db *store.DB, sig SignatureVerifier) *Builder {
	return &Builder{Queue: queue, DB: db, Sig: sig}
}

// BuildBatch walks the pending queue up to model.MaxRequestsPerBlock
// entries or the next boundary marker, validating each against a read
// transaction. Requests that fail validation are skipped (left in the
// queue, matching §4.3.1's "dropping failures" for batch purposes while
// still suppressing duplicates by hash).
func (b *Builder) BuildBatch() ([]model.Request, error) {
	var batch []model.Request
	err := b.DB.Read(func(tx *store.Tx) error {
		batch = b.Queue.BuildBatch(model.MaxRequestsPerBlock, func(r model.Request) bool {
			return Validate(tx, b.Sig, r) == Accepted
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}
