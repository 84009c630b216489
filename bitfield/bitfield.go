// Package bitfield provides the big-endian integer helpers used by the CFDP
// header codec for its fixed and variable-width fields.
package bitfield

import (
	"encoding/binary"
	"fmt"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
)

// MaxWidth is the widest integer, in bytes, the helpers handle.
const MaxWidth = 8

// BytesToInt interprets b as a big-endian unsigned integer.
// Only the last MaxWidth bytes contribute when b is longer.
func BytesToInt(b []byte) uint64 {
	var v uint64
	for _, octet := range b {
		v = v<<8 | uint64(octet)
	}
	return v
}

// BytesToIntValidated reads width bytes at offset from buf as a big-endian
// unsigned integer. It fails with a TruncatedVariableField decode error when
// the field extends past the end of buf.
func BytesToIntValidated(buf []byte, offset, width int) (uint64, error) {
	if width < 1 || width > MaxWidth {
		return 0, cfdperrors.NewDecodeError(cfdperrors.TruncatedVariableField,
			fmt.Sprintf("field width %d outside [1,%d]", width, MaxWidth))
	}
	if offset < 0 || offset+width > len(buf) {
		return 0, cfdperrors.NewDecodeError(cfdperrors.TruncatedVariableField,
			fmt.Sprintf("field of %d bytes at offset %d exceeds buffer of %d bytes", width, offset, len(buf)))
	}
	return BytesToInt(buf[offset : offset+width]), nil
}

// IntToBytes returns the low-order width bytes of v in big-endian order.
func IntToBytes(v uint64, width int) []byte {
	var full [MaxWidth]byte
	binary.BigEndian.PutUint64(full[:], v)
	out := make([]byte, width)
	copy(out, full[MaxWidth-width:])
	return out
}

// AppendInt appends the low-order width bytes of v to dst in big-endian order.
func AppendInt(dst []byte, v uint64, width int) []byte {
	for shift := (width - 1) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(v>>uint(shift)))
	}
	return dst
}

// FitsWidth reports whether v can be represented in width bytes.
func FitsWidth(v uint64, width int) bool {
	if width >= MaxWidth {
		return true
	}
	return v>>(uint(width)*8) == 0
}

// Uint16 reads a big-endian uint16 from the first two bytes of b.
func Uint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// AppendUint16 appends v to dst as two big-endian bytes.
func AppendUint16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}
