package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/types"
)

func testHeader(crc types.CrcFlag) Header {
	return Header{
		Version:                   1,
		PduType:                   types.FileDirective,
		CrcFlag:                   crc,
		LengthOfEntityIDs:         2,
		LengthOfTransaction:       3,
		SourceEntityID:            0x0A0B,
		TransactionSequenceNumber: 0x010203,
		DestinationEntityID:       0x0C0D,
	}
}

func TestNew(t *testing.T) {
	data := []byte{byte(types.DirectiveEOF), 0x00, 0x11, 0x22}

	p, err := New(testHeader(types.CrcNotPresent), data, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(len(data)), p.Header.PduDataFieldLength)
	assert.Equal(t, p.Header.RawSize()+len(data), p.Size())

	_, err = New(testHeader(types.CrcPresent), data, nil)
	assert.ErrorIs(t, err, cfdperrors.ErrInvalidPDU)

	_, err = New(testHeader(types.CrcNotPresent), data, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, cfdperrors.ErrInvalidPDU)

	_, err = New(testHeader(types.CrcNotPresent), make([]byte, 70000), nil)
	assert.ErrorIs(t, err, cfdperrors.ErrPDUTooLarge)

	// The wire length must also fit the checksum trailer.
	_, err = New(testHeader(types.CrcPresent), make([]byte, 65533), []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, cfdperrors.ErrPDUTooLarge)

	p, err = New(testHeader(types.CrcPresent), make([]byte, 65531), []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), p.Header.WireDataFieldLength())
}

func TestPDU_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		crc      types.CrcFlag
		data     []byte
		checksum []byte
	}{
		{"no CRC", types.CrcNotPresent, []byte{0x07, 0x01, 0x02}, nil},
		{"with CRC", types.CrcPresent, []byte{0x04, 0x00}, []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{"empty data field", types.CrcNotPresent, []byte{}, nil},
		{"empty data field with CRC", types.CrcPresent, []byte{}, []byte{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(testHeader(tt.crc), tt.data, tt.checksum)
			require.NoError(t, err)

			encoded, err := p.Encode()
			require.NoError(t, err)
			assert.Len(t, encoded, p.Size())

			// Trailing bytes belong to the next PDU.
			decoded, err := Decode(append(encoded, 0xFF, 0xFF))
			require.NoError(t, err)
			assert.Equal(t, p.Header, decoded.Header)
			assert.Equal(t, tt.data, decoded.DataField)
			if tt.crc == types.CrcPresent {
				assert.Equal(t, tt.checksum, decoded.Checksum)
			} else {
				assert.Empty(t, decoded.Checksum)
			}
			assert.Equal(t, len(encoded), decoded.Size())
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	p, err := New(testHeader(types.CrcPresent), []byte{0x04, 0x01, 0x02}, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	encoded, err := p.Encode()
	require.NoError(t, err)

	t.Run("header error propagates", func(t *testing.T) {
		_, err := Decode(encoded[:5])
		assert.True(t, cfdperrors.IsDecodeKind(err, cfdperrors.BufferTooSmall))
	})

	t.Run("missing checksum", func(t *testing.T) {
		_, err := Decode(encoded[:len(encoded)-1])
		assert.ErrorIs(t, err, cfdperrors.ErrTruncatedPDU)
	})

	t.Run("missing data", func(t *testing.T) {
		_, err := Decode(encoded[:p.Header.RawSize()+1])
		assert.ErrorIs(t, err, cfdperrors.ErrTruncatedPDU)
	})

	t.Run("length too short for checksum", func(t *testing.T) {
		buf := []byte{0x02, 0x00, 0x03, 0x00, 0x01, 0x02, 0x03, 0xAA, 0xBB, 0xCC}
		_, err := Decode(buf)
		assert.ErrorIs(t, err, cfdperrors.ErrInvalidPDU)
	})
}

func TestPDU_EncodeErrors(t *testing.T) {
	p := &PDU{Header: testHeader(types.CrcNotPresent), DataField: []byte{1, 2, 3}}
	_, err := p.Encode()
	assert.ErrorIs(t, err, cfdperrors.ErrInvalidPDU, "length mismatch")

	p.Header.PduDataFieldLength = 3
	p.Header.SourceEntityID = 0x10000
	_, err = p.Encode()
	assert.ErrorIs(t, err, cfdperrors.ErrInvalidPDU, "entity ID too wide")

	p.Header.SourceEntityID = 1
	encoded, err := p.Encode()
	require.NoError(t, err)
	assert.Len(t, encoded, p.Header.RawSize()+3)
}

func TestPDU_DirectiveCode(t *testing.T) {
	p, err := New(testHeader(types.CrcNotPresent), []byte{byte(types.DirectiveFinished), 0x00}, nil)
	require.NoError(t, err)

	code, ok := p.DirectiveCode()
	assert.True(t, ok)
	assert.Equal(t, types.DirectiveFinished, code)

	p.Header.PduType = types.FileData
	_, ok = p.DirectiveCode()
	assert.False(t, ok, "file data PDUs carry no directive code")

	empty, err := New(testHeader(types.CrcNotPresent), nil, nil)
	require.NoError(t, err)
	_, ok = empty.DirectiveCode()
	assert.False(t, ok)
}

func TestNew_EmptyDataFieldMatchesDecode(t *testing.T) {
	built, err := New(testHeader(types.CrcNotPresent), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, built.DataField)

	encoded, err := built.Encode()
	require.NoError(t, err)
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, built, decoded)
}
