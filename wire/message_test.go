// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// TestPingRoundTrip matches the concrete scenario in the spec: encoding
// {nonce = 0x0123456789ABCDEF} under command "ping" produces an exact byte
// sequence, and decoding it recovers the nonce.
func TestPingRoundTrip(t *testing.T) {
	msg := &MsgPing{Nonce: 0x0123456789ABCDEF}

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, TestNet3))

	got := buf.Bytes()

	wantMagic := []byte{0x0B, 0x11, 0x09, 0x07}
	require.Equal(t, wantMagic, got[0:4])

	wantCommand := []byte("ping\x00\x00\x00\x00\x00\x00\x00\x00")
	require.Equal(t, wantCommand, got[4:16])

	wantLen := []byte{0x08, 0x00, 0x00, 0x00}
	require.Equal(t, wantLen, got[16:20])

	wantPayload, err := hex.DecodeString("efcdab8967452301")
	require.NoError(t, err)
	require.Equal(t, wantPayload, got[24:32])

	sum := checksum(wantPayload)
	require.Equal(t, sum[:], got[20:24])

	decoded, consumed, err := DecodeMessage(got, ProtocolVersion, TestNet3)
	require.NoError(t, err)
	require.Equal(t, len(got), consumed)
	ping, ok := decoded.(*MsgPing)
	require.True(t, ok)
	require.Equal(t, msg.Nonce, ping.Nonce)
}

// TestDecodeIncomplete verifies a truncated frame is reported as Incomplete
// and consumes no bytes.
func TestDecodeIncomplete(t *testing.T) {
	msg := &MsgPing{Nonce: 1}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, TestNet3))

	truncated := buf.Bytes()[:len(buf.Bytes())-1]
	_, consumed, err := DecodeMessage(truncated, ProtocolVersion, TestNet3)
	require.ErrorIs(t, err, ErrIncomplete)
	require.Equal(t, 0, consumed)
}

// TestDecodeUnknownCommandStillConsumes verifies an unrecognized command
// still reports a positive bytes_consumed.
func TestDecodeUnknownCommandStillConsumes(t *testing.T) {
	var payload bytes.Buffer
	payload.WriteString("hello")

	var hdr bytes.Buffer
	hdr.Write([]byte{0x0B, 0x11, 0x09, 0x07})
	cmd := commandBytes("alert")
	hdr.Write(cmd[:])
	lenBuf := make([]byte, 4)
	lenBuf[0] = byte(payload.Len())
	hdr.Write(lenBuf)
	sum := checksum(payload.Bytes())
	hdr.Write(sum[:])
	hdr.Write(payload.Bytes())

	_, consumed, err := DecodeMessage(hdr.Bytes(), ProtocolVersion, TestNet3)
	require.Error(t, err)
	var unknown *UnknownMessageError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, hdr.Len(), consumed)
}

// TestHeadersBoundary verifies a 2000-entry headers message is accepted and
// a 2001-entry one is rejected.
func TestHeadersBoundary(t *testing.T) {
	build := func(n int) *MsgHeaders {
		m := &MsgHeaders{}
		for i := 0; i < n; i++ {
			m.Headers = append(m.Headers, &BlockHeader{})
		}
		return m
	}

	var buf bytes.Buffer
	require.NoError(t, build(MaxHeadersPerMsg).Encode(&buf, ProtocolVersion))

	var decoded MsgHeaders
	require.NoError(t, decoded.Decode(bytes.NewReader(buf.Bytes()), ProtocolVersion))
	require.Len(t, decoded.Headers, MaxHeadersPerMsg)

	var overBuf bytes.Buffer
	err := build(MaxHeadersPerMsg + 1).Encode(&overBuf, ProtocolVersion)
	require.Error(t, err)
}

// TestAddrBoundary verifies MaxAddrPerMsg is enforced on decode.
func TestAddrBoundary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, MaxAddrPerMsg+1))
	var decoded MsgAddr
	err := decoded.Decode(bytes.NewReader(buf.Bytes()), ProtocolVersion)
	require.Error(t, err)
}

// TestGetHeadersLocator round-trips a getheaders built by NewMsgGetHeaders
// with a one-element locator, checking that the locator survives intact
// and that the unset hash_stop decodes as the zero hash.
func TestGetHeadersLocator(t *testing.T) {
	msg := NewMsgGetHeaders()
	require.NoError(t, msg.AddBlockLocatorHash(chainhash.Hash{1, 2, 3}))

	var buf bytes.Buffer
	require.NoError(t, msg.Encode(&buf, ProtocolVersion))

	var decoded MsgGetHeaders
	require.NoError(t, decoded.Decode(bytes.NewReader(buf.Bytes()), ProtocolVersion))
	require.Equal(t, []chainhash.Hash{{1, 2, 3}}, decoded.BlockLocatorHashes)
	require.Equal(t, chainhash.Hash{}, decoded.HashStop)
}

// TestMessageRoundTrip exercises decode(encode(m)) == m for one instance of
// every message type the codec defines.
func TestMessageRoundTrip(t *testing.T) {
	samples := []Message{
		&MsgVersion{
			ProtocolVersion: ProtocolVersion,
			Services:        SFNodeNetwork,
			Timestamp:       1234567890,
			AddrRecv:        NetAddress{Addr: NewAddress(nil, 18333)},
			AddrFrom:        NetAddress{Addr: NewAddress(nil, 18333)},
			Nonce:           0xdeadbeef,
			UserAgent:       "/spvnode:0.1.0/",
			StartHeight:     100,
			Relay:           true,
		},
		&MsgVerAck{},
		&MsgPing{Nonce: 42},
		&MsgPong{Nonce: 42},
		&MsgGetAddr{},
		&MsgSendHeaders{},
		&MsgMemPool{},
		&MsgAddr{AddrList: []NetAddress{
			{Timestamp: 111, Services: SFNodeNetwork, Addr: NewAddress(nil, 18333)},
		}},
		&MsgGetHeaders{locatorRequest{
			ProtocolVersion:    ProtocolVersion,
			BlockLocatorHashes: []chainhash.Hash{{1}, {2}},
			HashStop:           chainhash.Hash{},
		}},
		&MsgGetBlocks{locatorRequest{
			ProtocolVersion:    ProtocolVersion,
			BlockLocatorHashes: []chainhash.Hash{{1}},
			HashStop:           chainhash.Hash{},
		}},
		&MsgHeaders{Headers: []*BlockHeader{
			{Version: 1, Timestamp: 100, Bits: 0x1d00ffff, Nonce: 7},
		}},
		&MsgInv{InvList: []*InvVect{{Type: InvTypeBlock, Hash: chainhash.Hash{9}}}},
		&MsgReject{Message: CmdBlock, Code: RejectInvalid, Reason: "bad-checkpoint", Hash: chainhash.Hash{3}},
	}

	for _, want := range samples {
		t.Run(want.Command(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteMessage(&buf, want, ProtocolVersion, TestNet3))

			got, consumed, err := DecodeMessage(buf.Bytes(), ProtocolVersion, TestNet3)
			require.NoError(t, err)
			require.Equal(t, buf.Len(), consumed)
			require.Equal(t, want, got)
		})
	}
}
