package pdu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/metrics"
	"github.com/caio-sobreiro/cfdpnet/types"
)

// Option configures a Reader or Writer.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	maxDataField int
	metrics      *metrics.Metrics
}

// WithLogger overrides the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDataFieldLength rejects PDUs whose data field exceeds n bytes.
func WithMaxDataFieldLength(n uint16) Option {
	return func(o *options) {
		o.maxDataField = int(n)
	}
}

// WithMetrics records decode outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{maxDataField: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Reader reads back-to-back PDUs from a byte stream.
// A Reader is not safe for concurrent use.
type Reader struct {
	r      io.Reader
	opts   options
	count  uint64
	header [MaxHeaderSize]byte
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{r: r, opts: buildOptions(opts)}
}

// ReadPDU reads the next PDU. It returns io.EOF when the stream ends
// cleanly between PDUs and an error wrapping io.ErrUnexpectedEOF when it
// ends inside one.
func (r *Reader) ReadPDU(ctx context.Context) (*PDU, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := r.readPDU()
	if err != nil {
		if err != io.EOF {
			r.opts.metrics.RecordDecodeError(errorKind(err))
			r.opts.logger.WarnContext(ctx, "Error reading PDU", "error", err, "pdu_index", r.count)
		}
		return nil, err
	}

	r.count++
	r.opts.metrics.RecordDecoded(p.Header.PduType.String())
	r.opts.logger.DebugContext(ctx, "Read PDU",
		"pdu_index", r.count,
		"pdu_type", p.Header.PduType,
		"source_entity_id", p.Header.SourceEntityID,
		"destination_entity_id", p.Header.DestinationEntityID,
		"transaction_sequence_number", p.Header.TransactionSequenceNumber,
		"data_field_length", p.Header.PduDataFieldLength)
	return p, nil
}

// Count returns the number of PDUs read so far.
func (r *Reader) Count() uint64 {
	return r.count
}

func (r *Reader) readPDU() (*PDU, error) {
	// The fixed prefix announces the full header size.
	prefix := r.header[:FixedPrefixSize]
	if _, err := io.ReadFull(r.r, prefix); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read PDU header: %w", err)
	}

	size := HeaderSize(prefix)
	raw := r.header[:size]
	if _, err := io.ReadFull(r.r, raw[FixedPrefixSize:]); err != nil {
		return nil, fmt.Errorf("failed to read PDU header: %w", unexpected(err))
	}

	h, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}

	if err := checkTrailer(h, "read"); err != nil {
		return nil, err
	}

	if r.opts.maxDataField >= 0 && int(h.PduDataFieldLength) > r.opts.maxDataField {
		return nil, cfdperrors.NewPDUError("read", cfdperrors.ErrPDUTooLarge,
			fmt.Sprintf("data field of %d bytes exceeds limit of %d", h.PduDataFieldLength, r.opts.maxDataField))
	}

	body := make([]byte, int(h.WireDataFieldLength()))
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, fmt.Errorf("failed to read PDU data field: %w", unexpected(err))
	}

	n := int(h.PduDataFieldLength)
	p := &PDU{Header: h, DataField: body[:n:n]}
	if h.CrcFlag == types.CrcPresent {
		p.Checksum = body[n:]
	}
	return p, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// errorKind maps an error to the label used for decode error metrics.
func errorKind(err error) string {
	var decodeErr *cfdperrors.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return decodeErr.Kind.String()
	case errors.Is(err, cfdperrors.ErrPDUTooLarge):
		return "too-large"
	case errors.Is(err, cfdperrors.ErrInvalidPDU):
		return "invalid-pdu"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated-pdu"
	default:
		return "io"
	}
}

// Writer writes PDUs to a byte stream.
// A Writer is not safe for concurrent use.
type Writer struct {
	w    io.Writer
	opts options
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	return &Writer{w: w, opts: buildOptions(opts)}
}

// WritePDU encodes p and writes it in a single Write call.
func (w *Writer) WritePDU(p *PDU) error {
	out, err := p.Encode()
	if err != nil {
		return err
	}
	if w.opts.maxDataField >= 0 && len(p.DataField) > w.opts.maxDataField {
		return cfdperrors.NewPDUError("write", cfdperrors.ErrPDUTooLarge,
			fmt.Sprintf("data field of %d bytes exceeds limit of %d", len(p.DataField), w.opts.maxDataField))
	}
	if _, err := w.w.Write(out); err != nil {
		return fmt.Errorf("failed to write PDU: %w", err)
	}
	w.opts.logger.Debug("Wrote PDU", "pdu_type", p.Header.PduType, "size_bytes", len(out))
	return nil
}
