// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPong implements the Message interface and replies to a MsgPing,
// carrying back the nonce it received.
type MsgPong struct {
	Nonce uint64
}

// Command returns the protocol command string for the message.
func (m *MsgPong) Command() string { return CmdPong }

// Encode serializes m's payload fields to w.
func (m *MsgPong) Encode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, m.Nonce)
}

// Decode deserializes m's payload fields from r.
func (m *MsgPong) Decode(r io.Reader, pver uint32) error {
	nonce, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	m.Nonce = nonce
	return nil
}
