// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgVerAck implements the Message interface and is sent to acknowledge a
// version message has been processed. It carries no payload.
type MsgVerAck struct{}

// Command returns the protocol command string for the message.
func (m *MsgVerAck) Command() string { return CmdVerAck }

// Encode is a no-op; verack has no payload.
func (m *MsgVerAck) Encode(w io.Writer, pver uint32) error { return nil }

// Decode is a no-op; verack has no payload.
func (m *MsgVerAck) Decode(r io.Reader, pver uint32) error { return nil }
