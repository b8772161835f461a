// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses a single addr message
// may carry.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and is used to advertise known
// peer addresses.
type MsgAddr struct {
	AddrList []NetAddress
}

// Command returns the protocol command string for the message.
func (m *MsgAddr) Command() string { return CmdAddr }

// AddAddress appends na to the message, rejecting it if the message is
// already at MaxAddrPerMsg.
func (m *MsgAddr) AddAddress(na NetAddress) error {
	if len(m.AddrList)+1 > MaxAddrPerMsg {
		return &MessageError{
			Func:        "MsgAddr.AddAddress",
			Description: "too many addresses in message",
		}
	}
	m.AddrList = append(m.AddrList, na)
	return nil
}

// Encode serializes m's payload fields to w.
func (m *MsgAddr) Encode(w io.Writer, pver uint32) error {
	count := len(m.AddrList)
	if count > MaxAddrPerMsg {
		return &MessageError{
			Func: "MsgAddr.Encode",
			Description: fmt.Sprintf("too many addresses for message "+
				"[count %d, max %d]", count, MaxAddrPerMsg),
		}
	}
	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, na := range m.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

// Decode deserializes m's payload fields from r.
func (m *MsgAddr) Decode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return &MessageError{
			Func: "MsgAddr.Decode",
			Description: fmt.Sprintf("too many addresses for message "+
				"[count %d, max %d]", count, MaxAddrPerMsg),
		}
	}

	addrList := make([]NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na, err := readNetAddress(r, true)
		if err != nil {
			return err
		}
		addrList = append(addrList, na)
	}
	m.AddrList = addrList
	return nil
}
