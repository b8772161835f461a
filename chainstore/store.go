// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainstore persists the header chain the client has learned,
// over an embedded ordered key-value store. It owns the tip, the orphan
// pool, and the height->hash and hash->header views, and enforces
// fixed-height checkpoints.
package chainstore

import (
	"errors"
	"time"

	"github.com/btcspv/spvnode/chaincfg"
	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/btcspv/spvnode/wire"
	"github.com/decred/dcrd/lru"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// seenCacheSize bounds the in-memory set of recently attached hashes
// consulted before falling through to the on-disk store, avoiding a
// leveldb round trip for the common case of a peer re-announcing a
// header we already processed a moment ago.
const seenCacheSize = 4096

// Store is the persistent header index. It is not safe for concurrent
// use; like every other core component it runs on the single event-loop
// thread, and the only blocking it performs is the embedded store's own
// synchronous file I/O.
type Store struct {
	db     *leveldb.DB
	params *chaincfg.Params
	tip    StoredHeader
	seen   *lru.Cache
}

// New opens the backend rooted at dataDir. On first open the genesis
// header is inserted and becomes the tip. On subsequent opens the tip is
// loaded from the reserved "tip" key; if that key is present but its
// header is missing (a partially initialised store from a prior crash),
// genesis is re-seeded.
func New(dataDir string, params *chaincfg.Params) (*Store, error) {
	db, err := leveldb.OpenFile(dataDir, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:     db,
		params: params,
		seen:   lru.NewCache(seenCacheSize),
	}

	tipRaw, err := db.Get(tipKey, nil)
	switch {
	case errors.Is(err, ldberrors.ErrNotFound):
		if err := s.seedGenesis(); err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	case err != nil:
		db.Close()
		return nil, err
	}

	var tipHash chainhash.Hash
	copy(tipHash[:], tipRaw)

	tip, err := s.findAttached(tipHash)
	if err != nil {
		log.Warnf("chainstore: tip key present but header %s missing; "+
			"re-seeding genesis", tipHash)
		if err := s.seedGenesis(); err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	}
	s.tip = tip
	return s, nil
}

func (s *Store) seedGenesis() error {
	genesis := StoredHeader{
		Header: s.params.GenesisHeader,
		Hash:   s.params.GenesisHash,
		Height: 0,
	}
	if err := s.writeHeader(genesis); err != nil {
		return err
	}
	s.tip = genesis
	return s.SaveTip()
}

// Close flushes the tip and releases the backend.
func (s *Store) Close() error {
	if err := s.SaveTip(); err != nil {
		log.Errorf("chainstore: save tip on close: %v", err)
	}
	return s.db.Close()
}

// Tip returns the stored header of greatest height reachable from
// genesis.
func (s *Store) Tip() StoredHeader {
	return s.tip
}

// SaveTip writes the current tip's hash to the reserved "tip" key. It is
// called on graceful shutdown and after every batch of incoming headers.
func (s *Store) SaveTip() error {
	return s.db.Put(tipKey, s.tip.Hash.CloneBytes(), nil)
}

// TipIsRecent reports whether the tip's timestamp is within cutoff of
// now, i.e. whether this node believes its view of the chain is
// up to date.
func (s *Store) TipIsRecent(cutoff time.Duration) bool {
	tipTime := time.Unix(int64(s.tip.Header.Timestamp), 0)
	return time.Since(tipTime) < cutoff
}

// PutHeader attaches hdr to the store. If its parent is already attached,
// hdr is assigned a height, checked against any checkpoint at that
// height, written, and any orphan(s) waiting on it are attached in turn.
// If its parent is unknown, hdr is stashed in the orphan view awaiting
// its parent.
func (s *Store) PutHeader(hdr wire.BlockHeader) error {
	blockHash := hdr.BlockHash()
	sh := StoredHeader{Header: hdr, Hash: blockHash}

	parent, err := s.findAttached(hdr.PrevBlock)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.writeOrphan(sh)
		}
		return err
	}

	sh.Height = parent.Height + 1
	if err := s.checkCheckpoint(sh); err != nil {
		return err
	}
	if err := s.writeHeader(sh); err != nil {
		return err
	}
	if err := s.updateTip(sh); err != nil {
		return err
	}
	return s.attachOrphans(sh)
}

// attachOrphans promotes the orphan directly keyed by parent's hash, if
// any, and recurses on it. The recursion terminates because each step
// deletes the orphan entry it just promoted, strictly shrinking the
// orphan view.
func (s *Store) attachOrphans(parent StoredHeader) error {
	key := orphanKey(parent.Hash)
	raw, err := s.db.Get(key, nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	child, err := decodeStoredHeader(raw)
	if err != nil {
		return err
	}
	child.Height = parent.Height + 1

	if err := s.checkCheckpoint(child); err != nil {
		return err
	}
	if err := s.writeHeader(child); err != nil {
		return err
	}
	if err := s.db.Delete(key, nil); err != nil {
		return err
	}
	if err := s.updateTip(child); err != nil {
		return err
	}
	return s.attachOrphans(child)
}

func (s *Store) updateTip(candidate StoredHeader) error {
	// First-inserted-wins on a height tie: only a strictly greater height
	// replaces the tip.
	if candidate.Height > s.tip.Height {
		s.tip = candidate
	}
	return nil
}

// checkCheckpoint enforces that a header landing on a checkpointed
// height matches the hard-coded expected hash. A mismatch is a fatal
// integrity violation.
func (s *Store) checkCheckpoint(sh StoredHeader) error {
	cp, ok := s.params.CheckpointByHeight(sh.Height)
	if !ok {
		return nil
	}
	if cp.Hash != sh.Hash {
		return &CheckpointError{Height: sh.Height, Want: cp.Hash, Got: sh.Hash}
	}
	return nil
}

func (s *Store) writeHeader(sh StoredHeader) error {
	encoded, err := sh.encode()
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(hashKey(sh.Hash), encoded)
	batch.Put(heightKey(sh.Height), sh.Hash.CloneBytes())
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.seen.Add(sh.Hash)
	return nil
}

func (s *Store) writeOrphan(sh StoredHeader) error {
	encoded, err := sh.encode()
	if err != nil {
		return err
	}
	return s.db.Put(orphanKey(sh.Header.PrevBlock), encoded, nil)
}

// findAttached looks up hash in the hash view only, i.e. returns a
// header only if it has already been attached to a chain reachable from
// genesis.
func (s *Store) findAttached(hash chainhash.Hash) (StoredHeader, error) {
	raw, err := s.db.Get(hashKey(hash), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		return StoredHeader{}, ErrNotFound
	}
	if err != nil {
		return StoredHeader{}, err
	}
	return decodeStoredHeader(raw)
}

// findOrphan scans the orphan view for an entry whose own hash (computed
// from its stored header bytes) equals hash. Orphans are indexed by
// their parent's hash, not their own, so locating one by its own hash
// has no direct key and requires a scan; in steady state the orphan
// view holds at most a handful of entries.
func (s *Store) findOrphan(hash chainhash.Hash) (StoredHeader, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{prefixOrphan}), nil)
	defer iter.Release()

	for iter.Next() {
		sh, err := decodeStoredHeader(iter.Value())
		if err != nil {
			return StoredHeader{}, err
		}
		if sh.Hash == hash {
			return sh, nil
		}
	}
	if err := iter.Error(); err != nil {
		return StoredHeader{}, err
	}
	return StoredHeader{}, ErrNotFound
}

// HasBlock reports whether hash is known, attached or not.
func (s *Store) HasBlock(hash chainhash.Hash) bool {
	if s.seen.Contains(hash) {
		return true
	}
	if _, err := s.findAttached(hash); err == nil {
		return true
	}
	_, err := s.findOrphan(hash)
	return err == nil
}

// Find returns the stored header for hash, attached or orphaned, or
// ErrNotFound.
func (s *Store) Find(hash chainhash.Hash) (StoredHeader, error) {
	if sh, err := s.findAttached(hash); err == nil {
		return sh, nil
	}
	return s.findOrphan(hash)
}
