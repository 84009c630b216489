package pdu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/metrics"
	"github.com/caio-sobreiro/cfdpnet/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeStream(t *testing.T, pdus ...*PDU) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, WithLogger(discardLogger()))
	for _, p := range pdus {
		require.NoError(t, w.WritePDU(p))
	}
	return &buf
}

func TestReader_ReadsBackToBackPDUs(t *testing.T) {
	eof, err := New(testHeader(types.CrcPresent), []byte{byte(types.DirectiveEOF), 0x00}, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	dataHeader := testHeader(types.CrcNotPresent)
	dataHeader.PduType = types.FileData
	dataHeader.LengthOfEntityIDs = 8
	dataHeader.LengthOfTransaction = 8
	fileData, err := New(dataHeader, bytes.Repeat([]byte{0x5A}, 300), nil)
	require.NoError(t, err)

	empty, err := New(testHeader(types.CrcNotPresent), nil, nil)
	require.NoError(t, err)

	stream := writeStream(t, eof, fileData, empty)
	r := NewReader(stream, WithLogger(discardLogger()))
	ctx := context.Background()

	for i, want := range []*PDU{eof, fileData, empty} {
		got, err := r.ReadPDU(ctx)
		require.NoError(t, err, "pdu %d", i)
		assert.Equal(t, want.Header, got.Header)
		assert.Equal(t, want.DataField, got.DataField)
		assert.Equal(t, want.Checksum, got.Checksum)
	}

	_, err = r.ReadPDU(ctx)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, uint64(3), r.Count())
}

func TestReader_UnexpectedEOF(t *testing.T) {
	p, err := New(testHeader(types.CrcPresent), []byte{0x04, 0x01}, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	encoded, err := p.Encode()
	require.NoError(t, err)

	for _, n := range []int{1, FixedPrefixSize, FixedPrefixSize + 1, p.Header.RawSize(), len(encoded) - 1} {
		r := NewReader(bytes.NewReader(encoded[:n]), WithLogger(discardLogger()))
		_, err := r.ReadPDU(context.Background())
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "truncated at %d bytes", n)
	}
}

func TestReader_MaxDataFieldLength(t *testing.T) {
	p, err := New(testHeader(types.CrcNotPresent), make([]byte, 64), nil)
	require.NoError(t, err)

	r := NewReader(writeStream(t, p), WithLogger(discardLogger()), WithMaxDataFieldLength(32))
	_, err = r.ReadPDU(context.Background())
	assert.ErrorIs(t, err, cfdperrors.ErrPDUTooLarge)

	var buf bytes.Buffer
	w := NewWriter(&buf, WithLogger(discardLogger()), WithMaxDataFieldLength(32))
	assert.ErrorIs(t, w.WritePDU(p), cfdperrors.ErrPDUTooLarge)
	assert.Zero(t, buf.Len())
}

func TestReader_ContextCanceled(t *testing.T) {
	p, err := New(testHeader(types.CrcNotPresent), []byte{0x04}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(writeStream(t, p), WithLogger(discardLogger()))
	_, err = r.ReadPDU(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.Count())
}

func TestReader_Metrics(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	p, err := New(testHeader(types.CrcNotPresent), []byte{0x04}, nil)
	require.NoError(t, err)
	stream := writeStream(t, p)
	stream.Write([]byte{0x02, 0x00, 0x03, 0x00, 0x01, 0x02, 0x03})

	r := NewReader(stream, WithLogger(discardLogger()), WithMetrics(m))
	_, err = r.ReadPDU(context.Background())
	require.NoError(t, err)
	_, err = r.ReadPDU(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PDUsDecoded.WithLabelValues("file-directive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("invalid-pdu")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_Errors(t *testing.T) {
	w := NewWriter(failingWriter{}, WithLogger(discardLogger()))

	p, err := New(testHeader(types.CrcNotPresent), []byte{0x04}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, w.WritePDU(p), "disk full")

	bad := &PDU{Header: testHeader(types.CrcPresent), DataField: []byte{0x04}}
	assert.ErrorIs(t, w.WritePDU(bad), cfdperrors.ErrInvalidPDU)
}
