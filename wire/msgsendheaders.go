// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgSendHeaders implements the Message interface and signals to the
// receiving peer a preference for headers announcements over inv. It
// carries no payload.
type MsgSendHeaders struct{}

// Command returns the protocol command string for the message.
func (m *MsgSendHeaders) Command() string { return CmdSendHeaders }

// Encode is a no-op; sendheaders has no payload.
func (m *MsgSendHeaders) Encode(w io.Writer, pver uint32) error { return nil }

// Decode is a no-op; sendheaders has no payload.
func (m *MsgSendHeaders) Decode(r io.Reader, pver uint32) error { return nil }
