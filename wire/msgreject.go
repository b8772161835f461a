// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// RejectCode represents a numeric value by which a remote peer indicates
// why a message was rejected.
type RejectCode uint8

// Supported reject codes.
const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonstandard     RejectCode = 0x40
	RejectDust            RejectCode = 0x41
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)

const maxRejectMessageLen = CommandSize
const maxRejectReasonLen = 250

// MsgReject implements the Message interface and represents a reject
// message sent in response to a misbehaving or malformed message. Handling
// it never tears down the connection; it is only logged.
type MsgReject struct {
	// Message is the command of the message that triggered the reject.
	Message string

	// Code is the numeric reject code.
	Code RejectCode

	// Reason is a human-readable string with specific details.
	Reason string

	// Hash is an optional 32-byte payload, present only when Message is
	// CmdBlock or CmdTx (the spec calls it "data").
	Hash chainhash.Hash
}

// Command returns the protocol command string for the message.
func (m *MsgReject) Command() string { return CmdReject }

// Encode serializes m's payload fields to w.
func (m *MsgReject) Encode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, m.Message); err != nil {
		return err
	}
	if err := binarySerializer.PutUint8(w, uint8(m.Code)); err != nil {
		return err
	}
	if err := WriteVarString(w, m.Reason); err != nil {
		return err
	}
	if m.Message == CmdBlock || m.Message == CmdTx {
		return WriteHash(w, m.Hash)
	}
	return nil
}

// Decode deserializes m's payload fields from r.
func (m *MsgReject) Decode(r io.Reader, pver uint32) error {
	message, err := ReadVarString(r, maxRejectMessageLen)
	if err != nil {
		return err
	}
	m.Message = message

	code, err := binarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	m.Code = RejectCode(code)

	reason, err := ReadVarString(r, maxRejectReasonLen)
	if err != nil {
		return err
	}
	m.Reason = reason

	if m.Message == CmdBlock || m.Message == CmdTx {
		hash, err := ReadHash(r)
		if err != nil {
			return err
		}
		m.Hash = hash
	}
	return nil
}

// CmdBlock and CmdTx name commands this node never sends but whose rejects
// carry a trailing hash per BIP0061; they're referenced only by MsgReject.
const (
	CmdBlock = "block"
	CmdTx    = "tx"
)
