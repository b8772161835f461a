// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"encoding/binary"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// Key-space prefixes multiplexing the three logical views over the single
// physical key-value store.
const (
	prefixHash   byte = 'h' // hash -> encoded StoredHeader
	prefixHeight byte = 'y' // big-endian height -> hash
	prefixOrphan byte = 'o' // prev_hash -> encoded StoredHeader (pending parent)
)

// tipKey is the reserved literal key holding the current tip's hash.
var tipKey = []byte("tip")

// hashKey builds the hash-view key for hash. Hashes are stored in
// internal (wire, little-endian) byte order in keys so unrelated hashes
// don't cluster, matching the height view's requirement of being
// byte-sortable by its own big-endian height rather than by hash.
func hashKey(hash chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = prefixHash
	copy(key[1:], reverseHash(hash))
	return key
}

func heightKey(height int32) []byte {
	key := make([]byte, 1+4)
	key[0] = prefixHeight
	binary.BigEndian.PutUint32(key[1:], uint32(height))
	return key
}

func orphanKey(prevHash chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = prefixOrphan
	copy(key[1:], reverseHash(prevHash))
	return key
}

// reverseHash returns hash's bytes in internal (little-endian) order,
// undoing the display-order convention chainhash.Hash otherwise holds to.
func reverseHash(hash chainhash.Hash) []byte {
	raw := hash.CloneBytes()
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return raw
}
