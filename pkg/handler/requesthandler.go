// Package handler implements §4.3.1's RequestHandler: the primary's pending
// pool of not-yet-committed requests, indexed by insertion order, content
// hash, and expiration time. Grounded on miner/unconfirmed.go's mutex-
// protected set (Insert/Shift), generalized from a fixed-depth confirmation
// ring to an order/hash/expiry multi-index.
package handler

import (
	"sync"
	"time"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	mapset "github.com/deckarep/golang-set"
)

// entry is one queued request plus its insertion bookkeeping.
type entry struct {
	request    model.Request
	insertedAt time.Time
	expiresAt  time.Time
}

// orderItem is one slot in insertion order: either a real request's hash or
// a batch-boundary marker (§4.3.1's null-request delimiter). The marker is
// tagged explicitly rather than inferred from map-membership, so compacting
// committed hashes out of the queue can never also silently drop a
// still-relevant boundary.
type orderItem struct {
	hash     crypto.Hash
	boundary bool
}

// RequestHandler is the multi-indexed pending-request pool for one
// consensus instance's Request-type queue.
type RequestHandler struct {
	mu sync.Mutex

	order  []orderItem
	byHash map[crypto.Hash]*entry
	seen   mapset.Set // dedup set, mirrors byHash's keys
}

// New builds an empty RequestHandler.
func New() *RequestHandler {
	return &RequestHandler{
		byHash: make(map[crypto.Hash]*entry),
		seen:   mapset.NewSet(),
	}
}

// Add inserts r with the given time-to-live. Returns false without
// modifying the queue if r's hash was already present (duplicate
// suppression per §4.3.1).
func (h *RequestHandler) Add(r model.Request, now time.Time, ttl time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	hash := r.Hash()
	if h.seen.Contains(hash) {
		return false
	}
	h.seen.Add(hash)
	h.order = append(h.order, orderItem{hash: hash})
	h.byHash[hash] = &entry{request: r, insertedAt: now, expiresAt: now.Add(ttl)}
	return true
}

// AddBoundary appends a batch-boundary delimiter so a batch that spans a
// re-entry point does not get split (§4.3.1: "A 'null' request is appended
// to mark batch boundary").
func (h *RequestHandler) AddBoundary() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.order = append(h.order, orderItem{boundary: true})
}

// BuildBatch walks the queue in insertion order, calling validate for each
// candidate request. Requests that fail validation are skipped (left in the
// queue — "on timeout-triggered re-proposal, entries remain so the same
// batch can be rebuilt"); walking stops at the first boundary marker or once
// max requests have been collected.
func (h *RequestHandler) BuildBatch(max int, validate func(model.Request) bool) []model.Request {
	h.mu.Lock()
	defer h.mu.Unlock()

	batch := make([]model.Request, 0, max)
	for _, item := range h.order {
		if item.boundary {
			break
		}
		if len(batch) >= max {
			break
		}
		e, ok := h.byHash[item.hash]
		if !ok {
			continue // already committed by an earlier round
		}
		if validate(e.request) {
			batch = append(batch, e.request)
		}
	}
	return batch
}

// CommitRemove erases the persisted hashes from the queue after a
// successful commit (§4.3.1: "After commit, the persisted hashes are erased
// from the queue"). Boundary markers are untouched.
func (h *RequestHandler) CommitRemove(hashes []crypto.Hash) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, hash := range hashes {
		delete(h.byHash, hash)
		h.seen.Remove(hash)
	}
	h.order = compact(h.order, h.byHash)
}

// compact drops non-boundary items whose hash no longer resolves in
// byHash, so a long-running queue doesn't accumulate tombstones forever.
func compact(order []orderItem, byHash map[crypto.Hash]*entry) []orderItem {
	kept := order[:0]
	for _, item := range order {
		if item.boundary {
			kept = append(kept, item)
			continue
		}
		if _, ok := byHash[item.hash]; ok {
			kept = append(kept, item)
		}
	}
	return kept
}

// Expired returns every request whose expiry has passed as of now, without
// removing them — the caller (consensus layer) decides whether an expired
// request is dropped or simply deprioritized.
func (h *RequestHandler) Expired(now time.Time) []model.Request {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []model.Request
	for _, item := range h.order {
		if item.boundary {
			continue
		}
		if e, ok := h.byHash[item.hash]; ok && now.After(e.expiresAt) {
			out = append(out, e.request)
		}
	}
	return out
}

// Len returns the number of non-boundary requests currently queued.
func (h *RequestHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byHash)
}

// Get returns the queued request for hash, if present.
func (h *RequestHandler) Get(hash crypto.Hash) (model.Request, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.byHash[hash]
	if !ok {
		return model.Request{}, false
	}
	return e.request, true
}
