package pdu

import (
	"fmt"

	"github.com/caio-sobreiro/cfdpnet/bitfield"
	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/types"
)

// Header sizes in bytes
const (
	FixedPrefixSize = 4
	MinHeaderSize   = FixedPrefixSize + 3
	MaxHeaderSize   = FixedPrefixSize + 2*8 + 8

	// ChecksumSize is added to the wire data field length when the CRC flag is set.
	ChecksumSize = 4

	MaxVersion = 0b111
)

// First header byte
const (
	versionMask          = 0b11100000
	pduTypeMask          = 0b00010000
	directionMask        = 0b00001000
	transmissionModeMask = 0b00000100
	crcFlagMask          = 0b00000010
	largeFileFlagMask    = 0b00000001
)

// Fourth header byte
const (
	segmentationControlMask = 0b10000000
	entityIDLengthMask      = 0b01110000
	segmentMetadataFlagMask = 0b00001000
	transactionLengthMask   = 0b00000111
)

// Header is the fixed header that prefixes every CFDP PDU
type Header struct {
	Version          uint8                  `yaml:"version"`
	PduType          types.PduType          `yaml:"pdu_type"`
	Direction        types.Direction        `yaml:"direction"`
	TransmissionMode types.TransmissionMode `yaml:"transmission_mode"`
	CrcFlag          types.CrcFlag          `yaml:"crc_flag"`
	LargeFileFlag    types.LargeFileFlag    `yaml:"large_file_flag"`

	// PduDataFieldLength excludes the checksum trailer.
	PduDataFieldLength uint16 `yaml:"pdu_data_field_length"`

	SegmentationControl types.SegmentationControl `yaml:"segmentation_control"`
	SegmentMetadataFlag types.SegmentMetadataFlag `yaml:"segment_metadata_flag"`

	// Field widths in bytes, 1 to 8.
	LengthOfEntityIDs   uint8 `yaml:"length_of_entity_ids"`
	LengthOfTransaction uint8 `yaml:"length_of_transaction"`

	SourceEntityID            uint64 `yaml:"source_entity_id"`
	TransactionSequenceNumber uint64 `yaml:"transaction_sequence_number"`
	DestinationEntityID       uint64 `yaml:"destination_entity_id"`
}

// DecodeHeader parses the fixed PDU header at the start of buf.
//
// Bytes past the header are ignored; use RawSize to find where the data
// field begins. All failures match cfdperrors.ErrHeaderDecode.
func DecodeHeader(buf []byte) (Header, error) {
	var h Header

	if len(buf) < MinHeaderSize {
		return h, cfdperrors.NewDecodeError(cfdperrors.BufferTooSmall,
			fmt.Sprintf("need at least %d bytes for a PDU header, have %d", MinHeaderSize, len(buf)))
	}

	first := buf[0]
	h.Version = (first & versionMask) >> 5
	if h.Version > MaxVersion {
		return h, cfdperrors.NewDecodeError(cfdperrors.InvalidVersion,
			fmt.Sprintf("version %d is larger than %d", h.Version, MaxVersion))
	}
	h.PduType = types.PduType((first & pduTypeMask) >> 4)
	h.Direction = types.Direction((first & directionMask) >> 3)
	h.TransmissionMode = types.TransmissionMode((first & transmissionModeMask) >> 2)
	h.CrcFlag = types.CrcFlag((first & crcFlagMask) >> 1)
	h.LargeFileFlag = types.LargeFileFlag(first & largeFileFlagMask)

	h.PduDataFieldLength = bitfield.Uint16(buf[1:3])
	if h.CrcFlag == types.CrcPresent {
		h.PduDataFieldLength -= ChecksumSize
	}

	fourth := buf[3]
	h.SegmentationControl = types.SegmentationControl((fourth & segmentationControlMask) >> 7)
	h.SegmentMetadataFlag = types.SegmentMetadataFlag((fourth & segmentMetadataFlagMask) >> 3)

	// Widths are stored as width-1 to fit in three bits.
	h.LengthOfEntityIDs = ((fourth & entityIDLengthMask) >> 4) + 1
	h.LengthOfTransaction = (fourth & transactionLengthMask) + 1

	entityLen := int(h.LengthOfEntityIDs)
	txLen := int(h.LengthOfTransaction)

	var err error
	if h.SourceEntityID, err = bitfield.BytesToIntValidated(buf, FixedPrefixSize, entityLen); err != nil {
		return h, err
	}
	if h.TransactionSequenceNumber, err = bitfield.BytesToIntValidated(buf, FixedPrefixSize+entityLen, txLen); err != nil {
		return h, err
	}
	if h.DestinationEntityID, err = bitfield.BytesToIntValidated(buf, FixedPrefixSize+entityLen+txLen, entityLen); err != nil {
		return h, err
	}

	return h, nil
}

// HeaderSize returns the full header size announced by the fixed prefix
// without decoding the variable-width fields. prefix must hold at least
// FixedPrefixSize bytes.
func HeaderSize(prefix []byte) int {
	fourth := prefix[3]
	entityLen := int((fourth&entityIDLengthMask)>>4) + 1
	txLen := int(fourth&transactionLengthMask) + 1
	return FixedPrefixSize + 2*entityLen + txLen
}

// RawSize returns the number of bytes the header occupies on the wire.
func (h Header) RawSize() int {
	return FixedPrefixSize + 2*int(h.LengthOfEntityIDs) + int(h.LengthOfTransaction)
}

// WireDataFieldLength is the value carried in bytes 1-2: the data field
// length plus the checksum trailer when present.
func (h Header) WireDataFieldLength() uint16 {
	if h.CrcFlag == types.CrcPresent {
		return h.PduDataFieldLength + ChecksumSize
	}
	return h.PduDataFieldLength
}

// Validate checks the field ranges Encode relies on.
func (h Header) Validate() error {
	if h.Version > MaxVersion {
		return fmt.Errorf("version %d is larger than %d", h.Version, MaxVersion)
	}
	if h.LengthOfEntityIDs < 1 || h.LengthOfEntityIDs > bitfield.MaxWidth {
		return fmt.Errorf("length of entity IDs %d outside [1,%d]", h.LengthOfEntityIDs, bitfield.MaxWidth)
	}
	if h.LengthOfTransaction < 1 || h.LengthOfTransaction > bitfield.MaxWidth {
		return fmt.Errorf("length of transaction %d outside [1,%d]", h.LengthOfTransaction, bitfield.MaxWidth)
	}
	if h.PduType > types.FileData || h.Direction > types.ToSender || h.TransmissionMode > types.Unacknowledged ||
		h.CrcFlag > types.CrcPresent || h.LargeFileFlag > types.LargeFile ||
		h.SegmentationControl > types.BoundariesPreserved || h.SegmentMetadataFlag > types.SegmentMetadataPresent {
		return fmt.Errorf("flag field out of range")
	}
	if !bitfield.FitsWidth(h.SourceEntityID, int(h.LengthOfEntityIDs)) {
		return fmt.Errorf("source entity ID %d does not fit in %d bytes", h.SourceEntityID, h.LengthOfEntityIDs)
	}
	if !bitfield.FitsWidth(h.DestinationEntityID, int(h.LengthOfEntityIDs)) {
		return fmt.Errorf("destination entity ID %d does not fit in %d bytes", h.DestinationEntityID, h.LengthOfEntityIDs)
	}
	if !bitfield.FitsWidth(h.TransactionSequenceNumber, int(h.LengthOfTransaction)) {
		return fmt.Errorf("transaction sequence number %d does not fit in %d bytes", h.TransactionSequenceNumber, h.LengthOfTransaction)
	}
	return nil
}

// Encode packs the header into its wire layout. It panics if the version
// or either field width is out of range; see Validate.
func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, h.RawSize()))
}

// EncodeHeader is the function form of Header.Encode.
func EncodeHeader(h Header) []byte {
	return h.Encode()
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	if h.Version > MaxVersion {
		panic(fmt.Sprintf("pdu: header version %d is larger than %d", h.Version, MaxVersion))
	}
	if h.LengthOfEntityIDs < 1 || h.LengthOfEntityIDs > bitfield.MaxWidth ||
		h.LengthOfTransaction < 1 || h.LengthOfTransaction > bitfield.MaxWidth {
		panic(fmt.Sprintf("pdu: header field widths %d/%d outside [1,%d]",
			h.LengthOfEntityIDs, h.LengthOfTransaction, bitfield.MaxWidth))
	}

	first := h.Version<<5 |
		uint8(h.PduType&1)<<4 |
		uint8(h.Direction&1)<<3 |
		uint8(h.TransmissionMode&1)<<2 |
		uint8(h.CrcFlag&1)<<1 |
		uint8(h.LargeFileFlag&1)
	dst = append(dst, first)

	dst = bitfield.AppendUint16(dst, h.WireDataFieldLength())

	fourth := uint8(h.SegmentationControl&1)<<7 |
		(h.LengthOfEntityIDs-1)<<4 |
		uint8(h.SegmentMetadataFlag&1)<<3 |
		(h.LengthOfTransaction - 1)
	dst = append(dst, fourth)

	entityLen := int(h.LengthOfEntityIDs)
	dst = bitfield.AppendInt(dst, h.SourceEntityID, entityLen)
	dst = bitfield.AppendInt(dst, h.TransactionSequenceNumber, int(h.LengthOfTransaction))
	dst = bitfield.AppendInt(dst, h.DestinationEntityID, entityLen)

	return dst
}

// String renders the header for logs.
func (h Header) String() string {
	return fmt.Sprintf("v%d %s %s %s crc=%s %s len=%d seg=%s meta=%s ids=%d/%d src=%d seq=%d dst=%d",
		h.Version, h.PduType, h.Direction, h.TransmissionMode, h.CrcFlag, h.LargeFileFlag,
		h.PduDataFieldLength, h.SegmentationControl, h.SegmentMetadataFlag,
		h.LengthOfEntityIDs, h.LengthOfTransaction,
		h.SourceEntityID, h.TransactionSequenceNumber, h.DestinationEntityID)
}
