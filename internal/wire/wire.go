// Package wire implements the length-prefixed binary encoding shared by
// the transport payloads and the room snapshot codec.
//
// All multi-byte integers are big-endian. Strings are encoded as a
// 4-byte length followed by raw UTF-8 bytes. Floating point values are
// encoded as their IEEE 754 bit patterns.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortData is returned when a buffer ends before a value is complete.
var ErrShortData = errors.New("wire: short data")

// Uint64Size is the encoded size of a uint64 (and of an identifier).
const Uint64Size = 8

// AppendUint64 appends a big-endian uint64.
func AppendUint64(b []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(b, v)
}

// ConsumeUint64 reads a big-endian uint64 from the front of b and
// returns the remainder.
func ConsumeUint64(b []byte) (uint64, []byte, error) {
	if len(b) < Uint64Size {
		return 0, b, ErrShortData
	}
	return binary.BigEndian.Uint64(b[:Uint64Size]), b[Uint64Size:], nil
}

// AppendUint32 appends a big-endian uint32.
func AppendUint32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

// ConsumeUint32 reads a big-endian uint32 from the front of b and
// returns the remainder.
func ConsumeUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, b, ErrShortData
	}
	return binary.BigEndian.Uint32(b[:4]), b[4:], nil
}

// AppendUint16 appends a big-endian uint16.
func AppendUint16(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

// ConsumeUint16 reads a big-endian uint16 from the front of b and
// returns the remainder.
func ConsumeUint16(b []byte) (uint16, []byte, error) {
	if len(b) < 2 {
		return 0, b, ErrShortData
	}
	return binary.BigEndian.Uint16(b[:2]), b[2:], nil
}

// AppendByte appends a single byte.
func AppendByte(b []byte, v byte) []byte {
	return append(b, v)
}

// ConsumeByte reads one byte from the front of b and returns the
// remainder.
func ConsumeByte(b []byte) (byte, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrShortData
	}
	return b[0], b[1:], nil
}

// AppendFloat64 appends the IEEE 754 bit pattern of v.
func AppendFloat64(b []byte, v float64) []byte {
	return AppendUint64(b, math.Float64bits(v))
}

// ConsumeFloat64 reads an IEEE 754 float64 from the front of b and
// returns the remainder.
func ConsumeFloat64(b []byte) (float64, []byte, error) {
	bits, rest, err := ConsumeUint64(b)
	if err != nil {
		return 0, b, err
	}
	return math.Float64frombits(bits), rest, nil
}

// AppendString appends a 4-byte length prefix followed by the string bytes.
func AppendString(b []byte, s string) []byte {
	b = AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// ConsumeString reads a length-prefixed string from the front of b and
// returns the remainder.
func ConsumeString(b []byte) (string, []byte, error) {
	n, rest, err := ConsumeUint32(b)
	if err != nil {
		return "", b, err
	}
	if uint32(len(rest)) < n {
		return "", b, ErrShortData
	}
	return string(rest[:n]), rest[n:], nil
}
