// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// MsgVersion implements the Message interface and is exchanged as the first
// step of the connection handshake.
type MsgVersion struct {
	ProtocolVersion uint32
	Services        ServiceFlag
	Timestamp       int64
	AddrRecv        NetAddress
	AddrFrom        NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// Command returns the protocol command string for the message.
func (m *MsgVersion) Command() string { return CmdVersion }

// Encode serializes m's payload fields to w.
func (m *MsgVersion) Encode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, uint64(m.Services)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, uint64(m.Timestamp)); err != nil {
		return err
	}
	if err := writeNetAddress(w, m.AddrRecv, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, m.AddrFrom, false); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, m.UserAgent); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, uint32(m.StartHeight)); err != nil {
		return err
	}
	relay := uint8(0)
	if m.Relay {
		relay = 1
	}
	return binarySerializer.PutUint8(w, relay)
}

// Decode deserializes m's payload fields from r.
func (m *MsgVersion) Decode(r io.Reader, pver uint32) error {
	pv, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	m.ProtocolVersion = pv

	services, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	m.Services = ServiceFlag(services)

	ts, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	m.Timestamp = int64(ts)

	if m.AddrRecv, err = readNetAddress(r, false); err != nil {
		return err
	}
	if m.AddrFrom, err = readNetAddress(r, false); err != nil {
		return err
	}

	if m.Nonce, err = binarySerializer.Uint64(r); err != nil {
		return err
	}

	ua, err := ReadVarString(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	m.UserAgent = ua

	height, err := binarySerializer.Uint32(r)
	if err != nil {
		return err
	}
	m.StartHeight = int32(height)

	relay, err := binarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	m.Relay = relay != 0
	return nil
}

// NewMsgVersion returns a new version message populated with the given
// fields and the package's current ProtocolVersion. The caller supplies the
// timestamp explicitly (rather than this package reading the wall clock)
// so the codec stays a pure function of its inputs.
func NewMsgVersion(addrRecv, addrFrom Address, nonce uint64, userAgent string, startHeight int32, timestamp int64) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: ProtocolVersion,
		Services:        0,
		Timestamp:       timestamp,
		AddrRecv:        NetAddress{Addr: addrRecv},
		AddrFrom:        NetAddress{Addr: addrFrom},
		Nonce:           nonce,
		UserAgent:       userAgent,
		StartHeight:     startHeight,
		Relay:           true,
	}
}
