// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetAddr implements the Message interface and requests an addr message
// from the receiving peer. It carries no payload.
type MsgGetAddr struct{}

// Command returns the protocol command string for the message.
func (m *MsgGetAddr) Command() string { return CmdGetAddr }

// Encode is a no-op; getaddr has no payload.
func (m *MsgGetAddr) Encode(w io.Writer, pver uint32) error { return nil }

// Decode is a no-op; getaddr has no payload.
func (m *MsgGetAddr) Decode(r io.Reader, pver uint32) error { return nil }
