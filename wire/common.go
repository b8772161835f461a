// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// binarySerializer houses a reusable set of fixed-size scratch buffers so
// repeated reads/writes of small integers don't each allocate.
var binarySerializer binaryFreeList

// binaryFreeList is a concurrency-safe free list of byte slices used to
// provide temporary buffers for serializing and deserializing primitive
// numbers.
type binaryFreeList chan []byte

const binaryFreeListMaxItems = 1024

var bufferPool = make(binaryFreeList, binaryFreeListMaxItems)

func (l binaryFreeList) Borrow() []byte {
	var buf []byte
	select {
	case buf = <-bufferPool:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

func (l binaryFreeList) Return(buf []byte) {
	select {
	case bufferPool <- buf:
	default:
	}
}

func (l binaryFreeList) Uint8(r io.Reader) (uint8, error) {
	buf := l.Borrow()[:1]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (l binaryFreeList) Uint16(r io.Reader) (uint16, error) {
	buf := l.Borrow()[:2]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (l binaryFreeList) Uint16BE(r io.Reader) (uint16, error) {
	buf := l.Borrow()[:2]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (l binaryFreeList) Uint32(r io.Reader) (uint32, error) {
	buf := l.Borrow()[:4]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (l binaryFreeList) Uint64(r io.Reader) (uint64, error) {
	buf := l.Borrow()[:8]
	defer l.Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (l binaryFreeList) PutUint8(w io.Writer, val uint8) error {
	buf := l.Borrow()[:1]
	defer l.Return(buf)
	buf[0] = val
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint16(w io.Writer, val uint16) error {
	buf := l.Borrow()[:2]
	defer l.Return(buf)
	binary.LittleEndian.PutUint16(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint16BE(w io.Writer, val uint16) error {
	buf := l.Borrow()[:2]
	defer l.Return(buf)
	binary.BigEndian.PutUint16(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint32(w io.Writer, val uint32) error {
	buf := l.Borrow()[:4]
	defer l.Return(buf)
	binary.LittleEndian.PutUint32(buf, val)
	_, err := w.Write(buf)
	return err
}

func (l binaryFreeList) PutUint64(w io.Writer, val uint64) error {
	buf := l.Borrow()[:8]
	defer l.Return(buf)
	binary.LittleEndian.PutUint64(buf, val)
	_, err := w.Write(buf)
	return err
}

// errNonCanonicalVarInt is returned when a variable-length integer is encoded
// in a form other than the minimal possible representation.
func errNonCanonicalVarInt(val uint64, b byte, discriminant byte) error {
	return &MessageError{
		Func: "ReadVarInt",
		Description: fmt.Sprintf("%d encoded with %#x when %d encoding "+
			"was not canonical", val, b, discriminant),
	}
}

// ReadVarInt reads a variably sized unsigned integer from r and returns it
// as a uint64. A discriminant byte < 0xfd is its own value; 0xfd, 0xfe, and
// 0xff introduce a following 2-, 4-, or 8-byte little-endian value
// respectively. Non-minimal encodings are rejected.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := binarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := binarySerializer.Uint64(r)
		if err != nil {
			return 0, err
		}
		rv = sv

		// The minimum encoding for 0xff is 9 bytes, so this is only
		// valid if rv would not fit in any smaller encoding.
		if rv <= math.MaxUint32 {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0xfe)
		}

	case 0xfe:
		sv, err := binarySerializer.Uint32(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		if rv <= math.MaxUint16 {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0xfd)
		}

	case 0xfd:
		sv, err := binarySerializer.Uint16(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)

		if rv < 0xfd {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0)
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt serializes val to w using the variable-length encoding
// described by ReadVarInt, always choosing the minimal representation.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return binarySerializer.PutUint8(w, uint8(val))
	}

	if val <= math.MaxUint16 {
		if err := binarySerializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		return binarySerializer.PutUint16(w, uint16(val))
	}

	if val <= math.MaxUint32 {
		if err := binarySerializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return binarySerializer.PutUint32(w, uint32(val))
	}

	if err := binarySerializer.PutUint8(w, 0xff); err != nil {
		return err
	}
	return binarySerializer.PutUint64(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable-length integer.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= math.MaxUint16 {
		return 3
	}
	if val <= math.MaxUint32 {
		return 5
	}
	return 9
}

// ReadVarString reads a variable-length-prefixed string: a VarInt length
// followed by that many bytes of UTF-8 text.
func ReadVarString(r io.Reader, maxLen uint64) (string, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if count > maxLen {
		return "", &MessageError{
			Func: "ReadVarString",
			Description: fmt.Sprintf("variable length string is too "+
				"long [count %d, max %d]", count, maxLen),
		}
	}
	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteVarString serializes str to w as a VarInt length followed by the
// raw bytes.
func WriteVarString(w io.Writer, str string) error {
	if err := WriteVarInt(w, uint64(len(str))); err != nil {
		return err
	}
	_, err := w.Write([]byte(str))
	return err
}

// ReadHash reads a fixed 32-byte hash from r. The bytes on the wire are
// little-endian (internal order); the returned Hash is in display order.
func ReadHash(r io.Reader) (chainhash.Hash, error) {
	var buf [chainhash.HashSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return chainhash.Hash{}, err
	}
	reverse(buf[:])
	return chainhash.Hash(buf), nil
}

// WriteHash writes a Hash (held in display order) to w in the little-endian
// internal order used on the wire.
func WriteHash(w io.Writer, hash chainhash.Hash) error {
	buf := hash
	reverse(buf[:])
	_, err := w.Write(buf[:])
	return err
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// The message checksum (the first four bytes of a double-SHA256) is
// computed by checksum in message.go, next to its single call site.
