// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-width hash type shared by the wire,
// chaincfg, and chainstore packages.
//
// A Hash always holds its bytes in display order (the order produced by
// hashing and printed in block explorers). The wire codec is the only place
// that reverses bytes, to and from the little-endian order used on the
// network and in block headers; everything above the codec compares,
// stores, and logs hashes in display order.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the bitcoin messages and common structures. It
// typically represents the double sha256 of data.
type Hash [HashSize]byte

// String returns the Hash as a hexadecimal string. A Hash already holds
// display order, the order used by block explorers, so its bytes are
// encoded as they are.
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", nhlen, HashSize)
	}
	copy(hash[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// NewHash returns a new Hash from a byte slice. An error is returned if the
// number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the canonical hex-encoded display-order representation of a hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the display-order hexadecimal string encoding of a Hash
// to a destination, keeping the bytes in the order they appear in src. A
// string shorter than MaxHashStringSize is read as having its leading
// zeros omitted.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var decoded Hash
	_, err := hex.Decode(decoded[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	*dst = decoded
	return nil
}

// DoubleHashRaw calculates hash(hash(data)) and returns the resulting bytes
// in the internal (non-reversed) order produced by the raw sha256 sum. Call
// sites that need display order should use DoubleHashH.
func DoubleHashRaw(data []byte) [HashSize]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// DoubleHashH calculates hash(hash(b)) and returns the resulting bytes as a
// Hash, in display order.
func DoubleHashH(b []byte) Hash {
	raw := DoubleHashRaw(b)
	var h Hash
	for i, c := range raw[:HashSize/2] {
		h[i], h[HashSize-1-i] = raw[HashSize-1-i], c
	}
	return h
}
