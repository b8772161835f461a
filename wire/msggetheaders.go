// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes
// allowed in a getheaders or getblocks message.
const MaxBlockLocatorsPerMsg = 2000

// locatorRequest is the shape shared by getheaders and getblocks: a
// protocol version, a locator list (sent closest-to-farthest from our
// tip), and a stop hash (the zero hash means "as many as fit").
type locatorRequest struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []chainhash.Hash
	HashStop           chainhash.Hash
}

func (r *locatorRequest) addBlockLocatorHash(hash chainhash.Hash) error {
	if len(r.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return &MessageError{
			Description: "too many block locator hashes",
		}
	}
	r.BlockLocatorHashes = append(r.BlockLocatorHashes, hash)
	return nil
}

func (r *locatorRequest) encode(w io.Writer) error {
	count := len(r.BlockLocatorHashes)
	if count > MaxBlockLocatorsPerMsg {
		return &MessageError{
			Description: fmt.Sprintf("too many block locator hashes "+
				"[count %d, max %d]", count, MaxBlockLocatorsPerMsg),
		}
	}
	if err := binarySerializer.PutUint32(w, r.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, hash := range r.BlockLocatorHashes {
		if err := WriteHash(w, hash); err != nil {
			return err
		}
	}
	return WriteHash(w, r.HashStop)
}

func (r *locatorRequest) decode(rd io.Reader) error {
	pv, err := binarySerializer.Uint32(rd)
	if err != nil {
		return err
	}
	r.ProtocolVersion = pv

	count, err := ReadVarInt(rd)
	if err != nil {
		return err
	}
	if count > MaxBlockLocatorsPerMsg {
		return &MessageError{
			Description: fmt.Sprintf("too many block locator hashes "+
				"[count %d, max %d]", count, MaxBlockLocatorsPerMsg),
		}
	}

	locators := make([]chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		hash, err := ReadHash(rd)
		if err != nil {
			return err
		}
		locators = append(locators, hash)
	}
	r.BlockLocatorHashes = locators

	r.HashStop, err = ReadHash(rd)
	return err
}

// MsgGetHeaders implements the Message interface and requests a headers
// message from the peer for blocks after the last locator hash the peer
// recognizes.
type MsgGetHeaders struct {
	locatorRequest
}

// Command returns the protocol command string for the message.
func (m *MsgGetHeaders) Command() string { return CmdGetHeaders }

// AddBlockLocatorHash appends a hash to the locator list.
func (m *MsgGetHeaders) AddBlockLocatorHash(hash chainhash.Hash) error {
	return m.addBlockLocatorHash(hash)
}

// Encode serializes m's payload fields to w.
func (m *MsgGetHeaders) Encode(w io.Writer, pver uint32) error { return m.encode(w) }

// Decode deserializes m's payload fields from r.
func (m *MsgGetHeaders) Decode(r io.Reader, pver uint32) error { return m.decode(r) }

// NewMsgGetHeaders returns a new getheaders message with an empty locator
// list.
func NewMsgGetHeaders() *MsgGetHeaders {
	return &MsgGetHeaders{
		locatorRequest{ProtocolVersion: ProtocolVersion},
	}
}
