// Package pdu implements the CFDP PDU header codec and the framing that
// separates a PDU's header, data field and checksum trailer.
package pdu

import (
	"fmt"
	"math"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/types"
)

// PDU represents a Protocol Data Unit: the header, its opaque data field
// and, when the CRC flag is set, the 4-byte checksum trailer.
type PDU struct {
	Header    Header
	DataField []byte
	Checksum  []byte
}

// New builds a PDU around data, setting the header's data field length.
// An empty data field is stored as a non-nil empty slice, as Decode does.
// checksum must be ChecksumSize bytes when h.CrcFlag is CrcPresent and
// empty otherwise.
func New(h Header, data, checksum []byte) (*PDU, error) {
	limit := math.MaxUint16
	if h.CrcFlag == types.CrcPresent {
		limit -= ChecksumSize
	}
	if len(data) > limit {
		return nil, cfdperrors.NewPDUError("build", cfdperrors.ErrPDUTooLarge,
			fmt.Sprintf("data field of %d bytes exceeds %d", len(data), limit))
	}
	if data == nil {
		data = []byte{}
	}
	h.PduDataFieldLength = uint16(len(data))
	p := &PDU{Header: h, DataField: data[:len(data):len(data)], Checksum: checksum}
	if err := p.check("build"); err != nil {
		return nil, err
	}
	return p, nil
}

// Decode parses one PDU from the start of buf. The returned PDU's data
// field and checksum alias buf. Bytes past the PDU are ignored.
func Decode(buf []byte) (*PDU, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := checkTrailer(h, "decode"); err != nil {
		return nil, err
	}

	start := h.RawSize()
	end := start + int(h.PduDataFieldLength)
	frameEnd := end
	if h.CrcFlag == types.CrcPresent {
		frameEnd += ChecksumSize
	}
	if frameEnd > len(buf) {
		return nil, cfdperrors.NewPDUError("decode", cfdperrors.ErrTruncatedPDU,
			fmt.Sprintf("need %d bytes, have %d", frameEnd, len(buf)))
	}

	p := &PDU{
		Header:    h,
		DataField: buf[start:end:end],
	}
	if frameEnd > end {
		p.Checksum = buf[end:frameEnd:frameEnd]
	}
	return p, nil
}

// Size returns the number of bytes the PDU occupies on the wire.
func (p *PDU) Size() int {
	return p.Header.RawSize() + int(p.Header.WireDataFieldLength())
}

// Encode serializes the PDU. The header's data field length must match
// DataField and the checksum trailer must agree with the CRC flag.
func (p *PDU) Encode() ([]byte, error) {
	if err := p.check("encode"); err != nil {
		return nil, err
	}
	if err := p.Header.Validate(); err != nil {
		return nil, cfdperrors.NewPDUError("encode", cfdperrors.ErrInvalidPDU, err.Error())
	}

	out := make([]byte, 0, p.Size())
	out = p.Header.AppendTo(out)
	out = append(out, p.DataField...)
	out = append(out, p.Checksum...)
	return out, nil
}

// DirectiveCode returns the directive code of a file directive PDU. ok is
// false for file data PDUs and for directive PDUs with an empty data field.
func (p *PDU) DirectiveCode() (code types.DirectiveCode, ok bool) {
	if p.Header.PduType != types.FileDirective || len(p.DataField) == 0 {
		return 0, false
	}
	return types.DirectiveCode(p.DataField[0]), true
}

// checkTrailer rejects headers whose wire length cannot hold the checksum
// trailer the CRC flag announces.
func checkTrailer(h Header, op string) error {
	if h.CrcFlag == types.CrcPresent && h.WireDataFieldLength() < ChecksumSize {
		return cfdperrors.NewPDUError(op, cfdperrors.ErrInvalidPDU,
			fmt.Sprintf("data field length %d cannot hold a %d-byte checksum", h.WireDataFieldLength(), ChecksumSize))
	}
	return nil
}

func (p *PDU) check(op string) error {
	if int(p.Header.PduDataFieldLength) != len(p.DataField) {
		return cfdperrors.NewPDUError(op, cfdperrors.ErrInvalidPDU,
			fmt.Sprintf("header announces %d data bytes, have %d", p.Header.PduDataFieldLength, len(p.DataField)))
	}

	want := 0
	if p.Header.CrcFlag == types.CrcPresent {
		want = ChecksumSize
	}
	if len(p.Checksum) != want {
		return cfdperrors.NewPDUError(op, cfdperrors.ErrInvalidPDU,
			fmt.Sprintf("checksum trailer of %d bytes with crc flag %s", len(p.Checksum), p.Header.CrcFlag))
	}
	return nil
}
