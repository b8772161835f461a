// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// BlockHeaderLen is the number of bytes in a serialized block header, not
// including the trailing transaction-count byte carried in a headers
// message.
const BlockHeaderLen = 80

// BlockHeader holds the six fields that make up a bitcoin block header on
// the wire. It carries no derived state (hash, height, work); those belong
// to whatever owns a decoded header (see the chainstore package's
// StoredHeader).
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// BlockHash computes the double-SHA256 hash of the serialized header, in
// display order.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(BlockHeaderLen)
	_ = h.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize writes the 80-byte on-wire encoding of the header to w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := binarySerializer.PutUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if err := WriteHash(w, h.PrevBlock); err != nil {
		return err
	}
	if err := WriteHash(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, h.Timestamp); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, h.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, h.Nonce)
}

// Deserialize reads the 80-byte on-wire encoding of a header from r.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	version, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if h.PrevBlock, err = ReadHash(r); err != nil {
		return err
	}
	if h.MerkleRoot, err = ReadHash(r); err != nil {
		return err
	}
	if h.Timestamp, err = binarySerializer.Uint32(r); err != nil {
		return err
	}
	if h.Bits, err = binarySerializer.Uint32(r); err != nil {
		return err
	}
	h.Nonce, err = binarySerializer.Uint32(r)
	return err
}
