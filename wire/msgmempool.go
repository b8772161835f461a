// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgMemPool implements the Message interface and requests an inv of the
// receiving peer's mempool contents. It carries no payload. This node
// never serves mempool data; the handler drops the message on receipt.
type MsgMemPool struct{}

// Command returns the protocol command string for the message.
func (m *MsgMemPool) Command() string { return CmdMemPool }

// Encode is a no-op; mempool has no payload.
func (m *MsgMemPool) Encode(w io.Writer, pver uint32) error { return nil }

// Decode is a no-op; mempool has no payload.
func (m *MsgMemPool) Decode(r io.Reader, pver uint32) error { return nil }
