// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing implements the Message interface and is used to confirm a
// connection is still alive.
type MsgPing struct {
	Nonce uint64
}

// Command returns the protocol command string for the message.
func (m *MsgPing) Command() string { return CmdPing }

// Encode serializes m's payload fields to w.
func (m *MsgPing) Encode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, m.Nonce)
}

// Decode deserializes m's payload fields from r.
func (m *MsgPing) Decode(r io.Reader, pver uint32) error {
	nonce, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	m.Nonce = nonce
	return nil
}
