// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// InvType represents the allowed types of an inventory vector.
type InvType uint32

// Inventory vector types.
const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
)

var ivStrings = map[InvType]string{
	InvTypeError:         "ERROR",
	InvTypeTx:            "MSG_TX",
	InvTypeBlock:         "MSG_BLOCK",
	InvTypeFilteredBlock: "MSG_FILTERED_BLOCK",
}

// String returns the InvType in human-readable form.
func (t InvType) String() string {
	if s, ok := ivStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown InvType (%d)", uint32(t))
}

// InvVect defines a bitcoin inventory vector, used to describe data,
// as specified in BIP0014, that a node has or wants.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// MaxInvPerMsg is the maximum number of inventory vectors a single inv
// message may carry.
const MaxInvPerMsg = 50000

// MsgInv implements the Message interface and is used to advertise data
// known to a peer, such as blocks and transactions. This node never
// requests data named by an inv; the handler logs and drops it.
type MsgInv struct {
	InvList []*InvVect
}

// Command returns the protocol command string for the message.
func (m *MsgInv) Command() string { return CmdInv }

// AddInvVect appends an inventory vector to the message, rejecting it if
// the message is already at MaxInvPerMsg.
func (m *MsgInv) AddInvVect(iv *InvVect) error {
	if len(m.InvList)+1 > MaxInvPerMsg {
		return &MessageError{
			Func:        "MsgInv.AddInvVect",
			Description: "too many inventory vectors in message",
		}
	}
	m.InvList = append(m.InvList, iv)
	return nil
}

// Encode serializes m's payload fields to w.
func (m *MsgInv) Encode(w io.Writer, pver uint32) error {
	count := len(m.InvList)
	if count > MaxInvPerMsg {
		return &MessageError{
			Func: "MsgInv.Encode",
			Description: fmt.Sprintf("too many inventory vectors for "+
				"message [count %d, max %d]", count, MaxInvPerMsg),
		}
	}
	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, iv := range m.InvList {
		if err := binarySerializer.PutUint32(w, uint32(iv.Type)); err != nil {
			return err
		}
		if err := WriteHash(w, iv.Hash); err != nil {
			return err
		}
	}
	return nil
}

// Decode deserializes m's payload fields from r.
func (m *MsgInv) Decode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return &MessageError{
			Func: "MsgInv.Decode",
			Description: fmt.Sprintf("too many inventory vectors for "+
				"message [count %d, max %d]", count, MaxInvPerMsg),
		}
	}

	invList := make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		typ, err := binarySerializer.Uint32(r)
		if err != nil {
			return err
		}
		hash, err := ReadHash(r)
		if err != nil {
			return err
		}
		invList = append(invList, &InvVect{Type: InvType(typ), Hash: hash})
	}
	m.InvList = invList
	return nil
}
