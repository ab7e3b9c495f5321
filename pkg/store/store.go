// Package store persists the tables of §6 in a single bbolt database file.
// Write transactions are serialised globally and read transactions run
// concurrently (bbolt's native MVCC gives us this for free), matching the
// shared-resource policy of §5: "Consensus commit always uses one write
// transaction per block."
package store

import (
	"encoding/binary"
	"fmt"

	"github.com/LogosNetwork/logos-core-sub004/pkg/crypto"
	"github.com/LogosNetwork/logos-core-sub004/pkg/model"
	bolt "go.etcd.io/bbolt"
)

// DB wraps a bbolt database handle. The teacher's chain database
// (go-ethereum's leveldb-family KV store) is swapped for bbolt here because
// every commit needs true multi-bucket atomicity — a request block's
// content, its tip pointer, the touched accounts, and any voting-power/
// reward side effects must land together or not at all, which is bbolt's
// single-writer-transaction model and not goleveldb's batch-write model
// (DESIGN.md).
type DB struct {
	bolt *bolt.DB
}

// Open creates or opens the database file at path and ensures every table
// bucket of §6 exists, the way prysm's kv.NewKVStore pre-creates its bucket
// set on open (beacon-chain/db/kv/kv.go).
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db := &DB{bolt: bdb}
	err = db.bolt.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}
	return db, nil
}

// Close releases the underlying file handle.
func (db *DB) Close() error { return db.bolt.Close() }

// Write runs fn inside a single read-write transaction, serialised against
// every other writer.
func (db *DB) Write(fn func(*Tx) error) error {
	return db.bolt.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// Read runs fn inside a read-only transaction that may run concurrently
// with other readers and with at most one in-flight writer.
func (db *DB) Read(fn func(*Tx) error) error {
	return db.bolt.View(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// Tx is a transactional handle exposing typed accessors over the §6 tables.
// A Tx obtained from Write may mutate; one obtained from Read must not (the
// underlying bolt.Tx already enforces this by returning a read-only bucket
// view, so a Put/Delete on a Read-side Tx fails with bolt.ErrTxNotWritable).
type Tx struct {
	btx *bolt.Tx
}

func (tx *Tx) bucket(name []byte) *bolt.Bucket { return tx.btx.Bucket(name) }

// --- accounts ---

func (tx *Tx) PutAccount(addr model.Address, info model.AccountInfo) error {
	return tx.bucket(bucketAccounts).Put(addr[:], encodeAccountInfo(info))
}

func (tx *Tx) GetAccount(addr model.Address) (model.AccountInfo, bool, error) {
	raw := tx.bucket(bucketAccounts).Get(addr[:])
	if raw == nil {
		return model.AccountInfo{}, false, nil
	}
	info, err := decodeAccountInfo(raw)
	return info, true, err
}

// --- request blocks + per-delegate tips ---

func (tx *Tx) PutRequestBlock(blk model.RequestBlock) error {
	h := model.HashView(blk.View())
	return tx.bucket(bucketRequestBlocks).Put(h[:], encodeRequestBlock(blk))
}

func (tx *Tx) GetRequestBlock(hash crypto.Hash) (model.RequestBlock, bool, error) {
	raw := tx.bucket(bucketRequestBlocks).Get(hash[:])
	if raw == nil {
		return model.RequestBlock{}, false, nil
	}
	blk, err := decodeRequestBlock(raw)
	return blk, true, err
}

func (tx *Tx) PutRequestBlockTip(delegateIndex uint8, tip crypto.Hash) error {
	return tx.bucket(bucketRequestBlockTips).Put([]byte{delegateIndex}, tip[:])
}

func (tx *Tx) GetRequestBlockTip(delegateIndex uint8) (crypto.Hash, bool) {
	raw := tx.bucket(bucketRequestBlockTips).Get([]byte{delegateIndex})
	if raw == nil {
		return crypto.Hash{}, false
	}
	return crypto.BytesToHash(raw), true
}

// --- micro blocks ---

func (tx *Tx) PutMicroBlock(blk model.MicroBlock) error {
	h := model.HashView(blk.View())
	if err := tx.bucket(bucketMicroBlocks).Put(h[:], encodeMicroBlock(blk)); err != nil {
		return err
	}
	return tx.bucket(bucketMicroBlockTip).Put(tipSetKey, h[:])
}

func (tx *Tx) GetMicroBlock(hash crypto.Hash) (model.MicroBlock, bool, error) {
	raw := tx.bucket(bucketMicroBlocks).Get(hash[:])
	if raw == nil {
		return model.MicroBlock{}, false, nil
	}
	blk, err := decodeMicroBlock(raw)
	return blk, true, err
}

func (tx *Tx) GetMicroBlockTip() (crypto.Hash, bool) {
	raw := tx.bucket(bucketMicroBlockTip).Get(tipSetKey)
	if raw == nil {
		return crypto.Hash{}, false
	}
	return crypto.BytesToHash(raw), true
}

// --- epoch blocks ---

func (tx *Tx) PutEpochBlock(blk model.EpochBlock) error {
	h := model.HashView(blk.View())
	if err := tx.bucket(bucketEpochBlocks).Put(h[:], encodeEpochBlock(blk)); err != nil {
		return err
	}
	return tx.bucket(bucketEpochTip).Put(tipSetKey, h[:])
}

func (tx *Tx) GetEpochBlock(hash crypto.Hash) (model.EpochBlock, bool, error) {
	raw := tx.bucket(bucketEpochBlocks).Get(hash[:])
	if raw == nil {
		return model.EpochBlock{}, false, nil
	}
	blk, err := decodeEpochBlock(raw)
	return blk, true, err
}

func (tx *Tx) GetEpochTip() (crypto.Hash, bool) {
	raw := tx.bucket(bucketEpochTip).Get(tipSetKey)
	if raw == nil {
		return crypto.Hash{}, false
	}
	return crypto.BytesToHash(raw), true
}

// --- staking (§4.5.1) ---

func (tx *Tx) PutStaked(addr model.Address, s model.StakedFunds) error {
	return tx.bucket(bucketStaking).Put(addr[:], encodeStakedFunds(s))
}

func (tx *Tx) GetStaked(addr model.Address) (model.StakedFunds, bool, error) {
	raw := tx.bucket(bucketStaking).Get(addr[:])
	if raw == nil {
		return model.StakedFunds{}, false, nil
	}
	s, err := decodeStakedFunds(raw)
	return s, true, err
}

func (tx *Tx) DeleteStaked(addr model.Address) error {
	return tx.bucket(bucketStaking).Delete(addr[:])
}

// thawKey lays out account || expiration_epoch(BE) || target so a
// prefix-scan over one account, or one account+epoch, sorts correctly —
// bbolt buckets are byte-ordered B+trees, so a big-endian epoch keeps
// entries for the same account grouped chronologically.
func thawKey(addr model.Address, k model.ThawKey) []byte {
	key := make([]byte, 20+4+20)
	copy(key[:20], addr[:])
	binary.BigEndian.PutUint32(key[20:24], k.ExpirationEpoch)
	copy(key[24:], k.TargetRep[:])
	return key
}

func (tx *Tx) PutThawing(addr model.Address, t model.ThawingFunds) error {
	return tx.bucket(bucketThawing).Put(thawKey(addr, t.Key()), t.Amount.Bytes32()[:])
}

func (tx *Tx) DeleteThawing(addr model.Address, k model.ThawKey) error {
	return tx.bucket(bucketThawing).Delete(thawKey(addr, k))
}

// IterateThawing calls fn for every thawing entry belonging to addr, in
// expiration order, stopping early if fn returns false.
func (tx *Tx) IterateThawing(addr model.Address, fn func(model.ThawingFunds) bool) error {
	c := tx.bucket(bucketThawing).Cursor()
	prefix := addr[:]
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		t := model.ThawingFunds{
			TargetRep:       model.Address{},
			Amount:          getAmount(v),
			ExpirationEpoch: binary.BigEndian.Uint32(k[20:24]),
		}
		copy(t.TargetRep[:], k[24:44])
		if !fn(t) {
			break
		}
	}
	return nil
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == string(prefix)
}

// --- liabilities (§4.5.2), content-addressed by Liability.Hash() ---

func (tx *Tx) PutLiability(l model.Liability) error {
	h := l.Hash()
	bucket := bucketLiabilities
	if l.Kind == model.SecondaryLiability {
		bucket = bucketSecondaryLiabilities
	}
	return tx.bucket(bucket).Put(h[:], encodeLiability(l))
}

func (tx *Tx) GetLiability(hash crypto.Hash, kind model.LiabilityKind) (model.Liability, bool, error) {
	bucket := bucketLiabilities
	if kind == model.SecondaryLiability {
		bucket = bucketSecondaryLiabilities
	}
	raw := tx.bucket(bucket).Get(hash[:])
	if raw == nil {
		return model.Liability{}, false, nil
	}
	l, err := decodeLiability(raw)
	return l, true, err
}

func (tx *Tx) DeleteLiability(hash crypto.Hash, kind model.LiabilityKind) error {
	bucket := bucketLiabilities
	if kind == model.SecondaryLiability {
		bucket = bucketSecondaryLiabilities
	}
	return tx.bucket(bucket).Delete(hash[:])
}

// --- voting power (§4.5.3) ---

func (tx *Tx) PutVotingPower(addr model.Address, power uint64, fallback bool) error {
	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], power)
	bucket := bucketVotingPower
	if fallback {
		bucket = bucketVotingPowerFallback
	}
	return tx.bucket(bucket).Put(addr[:], v[:])
}

func (tx *Tx) GetVotingPower(addr model.Address, fallback bool) (uint64, bool) {
	bucket := bucketVotingPower
	if fallback {
		bucket = bucketVotingPowerFallback
	}
	raw := tx.bucket(bucket).Get(addr[:])
	if raw == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint64(raw), true
}

// --- rewards (§4.5.4) ---

func rewardKey(epoch uint32, rep model.Address) []byte {
	key := make([]byte, 4+20)
	binary.BigEndian.PutUint32(key[:4], epoch)
	copy(key[4:], rep[:])
	return key
}

func (tx *Tx) PutReward(epoch uint32, rep model.Address, remaining *model.Amount) error {
	return tx.bucket(bucketRewards).Put(rewardKey(epoch, rep), remaining.Bytes32()[:])
}

func (tx *Tx) GetReward(epoch uint32, rep model.Address) (*model.Amount, bool) {
	raw := tx.bucket(bucketRewards).Get(rewardKey(epoch, rep))
	if raw == nil {
		return nil, false
	}
	return getAmount(raw), true
}

// DeleteReward drops the row once its remaining reward is drained to zero
// (§4.5.4 scenario S5's third claim).
func (tx *Tx) DeleteReward(epoch uint32, rep model.Address) error {
	return tx.bucket(bucketRewards).Delete(rewardKey(epoch, rep))
}

func (tx *Tx) PutGlobalReward(epoch uint32, remaining *model.Amount) error {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], epoch)
	return tx.bucket(bucketGlobalRewards).Put(k[:], remaining.Bytes32()[:])
}

func (tx *Tx) GetGlobalReward(epoch uint32) (*model.Amount, bool) {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], epoch)
	raw := tx.bucket(bucketGlobalRewards).Get(k[:])
	if raw == nil {
		return nil, false
	}
	return getAmount(raw), true
}

// DeleteGlobalReward drops epoch's global reward row once its remaining
// reward is drained to zero (§4.5.4 scenario S5's final claim).
func (tx *Tx) DeleteGlobalReward(epoch uint32) error {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], epoch)
	return tx.bucket(bucketGlobalRewards).Delete(k[:])
}

// --- raw accessors for tables not yet given a typed wrapper: receives,
// candidacy, representatives, token_accounts, controllers. The owning
// package (requestblock, staking) adds a typed wrapper once it needs one;
// until then these let every §6 table round-trip through the same Tx. ---

func (tx *Tx) PutRaw(bucketName string, key, value []byte) error {
	b, err := rawBucket(bucketName)
	if err != nil {
		return err
	}
	return tx.bucket(b).Put(key, value)
}

func (tx *Tx) GetRaw(bucketName string, key []byte) ([]byte, bool, error) {
	b, err := rawBucket(bucketName)
	if err != nil {
		return nil, false, err
	}
	raw := tx.bucket(b).Get(key)
	if raw == nil {
		return nil, false, nil
	}
	return raw, true, nil
}

func (tx *Tx) DeleteRaw(bucketName string, key []byte) error {
	b, err := rawBucket(bucketName)
	if err != nil {
		return err
	}
	return tx.bucket(b).Delete(key)
}

func rawBucket(name string) ([]byte, error) {
	switch name {
	case "receives":
		return bucketReceives, nil
	case "candidacy":
		return bucketCandidacy, nil
	case "representatives":
		return bucketRepresentatives, nil
	case "token_accounts":
		return bucketTokenAccounts, nil
	case "controllers":
		return bucketControllers, nil
	default:
		return nil, fmt.Errorf("store: unknown raw bucket %q", name)
	}
}
