// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestVarIntBoundaries exercises the exact boundary behaviours called out
// in the spec: the 0xFC/0xFD, 0xFFFF/0x10000, and 0xFFFFFFFF/0x100000000
// encoding switchovers.
func TestVarIntBoundaries(t *testing.T) {
	cases := []struct {
		val  uint64
		want []byte
	}{
		{0xfc, []byte{0xfc}},
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		{0xfe, []byte{0xfd, 0xfe, 0x00}},
		{0x100, []byte{0xfd, 0x00, 0x01}},
		{0xffff, []byte{0xfd, 0xff, 0xff}},
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, tc.val))
		require.Equal(t, tc.want, buf.Bytes())

		got, err := ReadVarInt(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		require.Equal(t, tc.val, got)
	}
}

// TestVarIntRoundTrip property-tests that every uint64 round-trips through
// WriteVarInt/ReadVarInt.
func TestVarIntRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		val := rapid.Uint64().Draw(rt, "val")

		var buf bytes.Buffer
		require.NoError(rt, WriteVarInt(&buf, val))
		require.Equal(rt, VarIntSerializeSize(val), buf.Len())

		got, err := ReadVarInt(bytes.NewReader(buf.Bytes()))
		require.NoError(rt, err)
		require.Equal(rt, val, got)
	})
}

// TestVarIntNonCanonical ensures a non-minimal encoding is rejected.
func TestVarIntNonCanonical(t *testing.T) {
	// 0xfd followed by a 2-byte value that fits in a single byte.
	buf := []byte{0xfd, 0x0a, 0x00}
	_, err := ReadVarInt(bytes.NewReader(buf))
	require.Error(t, err)
}

func TestHashRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "hash")
		var buf bytes.Buffer

		var h chainhash.Hash
		copy(h[:], raw)
		require.NoError(rt, WriteHash(&buf, h))

		got, err := ReadHash(bytes.NewReader(buf.Bytes()))
		require.NoError(rt, err)
		require.Equal(rt, h, got)
	})
}
