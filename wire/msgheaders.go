// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxHeadersPerMsg is the maximum number of headers a single headers
// message may carry.
const MaxHeadersPerMsg = 2000

// MsgHeaders implements the Message interface and carries a list of block
// headers, each followed on the wire by a single transaction-count byte
// that a conforming sender always sets to zero.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// Command returns the protocol command string for the message.
func (m *MsgHeaders) Command() string { return CmdHeaders }

// AddBlockHeader appends a header to the message, rejecting it if the
// message is already at MaxHeadersPerMsg.
func (m *MsgHeaders) AddBlockHeader(h *BlockHeader) error {
	if len(m.Headers)+1 > MaxHeadersPerMsg {
		return &MessageError{
			Func:        "MsgHeaders.AddBlockHeader",
			Description: "too many block headers in message",
		}
	}
	m.Headers = append(m.Headers, h)
	return nil
}

// Encode serializes m's payload fields to w.
func (m *MsgHeaders) Encode(w io.Writer, pver uint32) error {
	count := len(m.Headers)
	if count > MaxHeadersPerMsg {
		return &MessageError{
			Func: "MsgHeaders.Encode",
			Description: fmt.Sprintf("too many block headers for "+
				"message [count %d, max %d]", count, MaxHeadersPerMsg),
		}
	}
	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, h := range m.Headers {
		if err := h.Serialize(w); err != nil {
			return err
		}
		// Trailing transaction count, always zero for a headers-only
		// message.
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}

// Decode deserializes m's payload fields from r.
func (m *MsgHeaders) Decode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxHeadersPerMsg {
		return &MessageError{
			Func: "MsgHeaders.Decode",
			Description: fmt.Sprintf("too many block headers for "+
				"message [count %d, max %d]", count, MaxHeadersPerMsg),
		}
	}

	headers := make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		h := &BlockHeader{}
		if err := h.Deserialize(r); err != nil {
			return err
		}
		txCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return &MessageError{
				Func: "MsgHeaders.Decode",
				Description: fmt.Sprintf("block header at index %d "+
					"claims %d transactions, want 0", i, txCount),
			}
		}
		headers = append(headers, h)
	}
	m.Headers = headers
	return nil
}
