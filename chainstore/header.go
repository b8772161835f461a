// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/btcspv/spvnode/wire"
)

// encodedHeaderLen is the length of a value stored under the hash-view
// prefix: the 80 raw header bytes followed by an 8-byte little-endian
// height.
const encodedHeaderLen = wire.BlockHeaderLen + 8

// StoredHeader is a BlockHeader plus the two fields the store derives for
// it: its hash (in display order) and its height in the chain it belongs
// to. A StoredHeader with Height == 0 that isn't the genesis header is an
// orphan awaiting its parent.
type StoredHeader struct {
	Header wire.BlockHeader
	Hash   chainhash.Hash
	Height int32
}

// encode serializes h into the 88-byte on-disk value format.
func (h StoredHeader) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(encodedHeaderLen)
	if err := h.Header.Serialize(&buf); err != nil {
		return nil, err
	}
	var heightBuf [8]byte
	binary.LittleEndian.PutUint64(heightBuf[:], uint64(h.Height))
	buf.Write(heightBuf[:])
	return buf.Bytes(), nil
}

// decodeStoredHeader parses the 88-byte on-disk value format produced by
// encode, deriving the hash from the header bytes rather than trusting an
// external value for it.
func decodeStoredHeader(raw []byte) (StoredHeader, error) {
	if len(raw) != encodedHeaderLen {
		return StoredHeader{}, fmt.Errorf(
			"chainstore: corrupt header record: want %d bytes, got %d",
			encodedHeaderLen, len(raw))
	}

	var hdr wire.BlockHeader
	if err := hdr.Deserialize(bytes.NewReader(raw[:wire.BlockHeaderLen])); err != nil {
		return StoredHeader{}, err
	}
	height := int64(binary.LittleEndian.Uint64(raw[wire.BlockHeaderLen:]))

	return StoredHeader{
		Header: hdr,
		Hash:   hdr.BlockHash(),
		Height: int32(height),
	}, nil
}
