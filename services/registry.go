// Package services routes decoded CFDP PDUs to registered handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	cfdperrors "github.com/caio-sobreiro/cfdpnet/errors"
	"github.com/caio-sobreiro/cfdpnet/interfaces"
	"github.com/caio-sobreiro/cfdpnet/metrics"
	"github.com/caio-sobreiro/cfdpnet/pdu"
	"github.com/caio-sobreiro/cfdpnet/types"
)

// Dispatch keys reported for PDUs that carry no directive code.
const (
	FileDataKey       = "file-data"
	EmptyDirectiveKey = "empty-directive"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger overrides the logger used by the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records dispatch outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// Registry manages PDU handlers and routes incoming PDUs.
//
// File directive PDUs are routed by the directive code in the first octet
// of their data field; file data PDUs go to a single file data handler. A
// fallback handler, if set, receives anything without a dedicated handler.
//
// Example usage:
//
//	registry := services.NewRegistry()
//	registry.RegisterDirective(types.DirectiveMetadata, metadataHandler)
//	registry.RegisterFileData(fileDataHandler)
//
//	err := registry.Serve(ctx, pdu.NewReader(conn))
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	directives map[types.DirectiveCode]interfaces.PDUHandler
	fileData   interfaces.PDUHandler
	fallback   interfaces.PDUHandler

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		directives: make(map[types.DirectiveCode]interfaces.PDUHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// RegisterDirective registers the handler for a directive code, replacing
// any previous one.
func (r *Registry) RegisterDirective(code types.DirectiveCode, handler interfaces.PDUHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directives[code] = handler
}

// UnregisterDirective removes the handler for a directive code.
func (r *Registry) UnregisterDirective(code types.DirectiveCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.directives, code)
}

// RegisterFileData registers the handler for file data PDUs.
func (r *Registry) RegisterFileData(handler interfaces.PDUHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileData = handler
}

// UnregisterFileData removes the file data handler.
func (r *Registry) UnregisterFileData() {
	r.RegisterFileData(nil)
}

// SetFallback sets the handler for PDUs with no dedicated handler. A nil
// handler removes it.
func (r *Registry) SetFallback(handler interfaces.PDUHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
}

// HasDirectiveHandler returns true if a handler is registered for code.
func (r *Registry) HasDirectiveHandler(code types.DirectiveCode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.directives[code]
	return ok
}

// RegisteredDirectives returns the directive codes with handlers, in
// ascending order.
func (r *Registry) RegisteredDirectives() []types.DirectiveCode {
	r.mu.RLock()
	codes := make([]types.DirectiveCode, 0, len(r.directives))
	for code := range r.directives {
		codes = append(codes, code)
	}
	r.mu.RUnlock()

	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// HandlePDU routes p to its handler.
//
// Returns an error wrapping cfdperrors.ErrNoHandler when nothing is
// registered for the PDU, a *cfdperrors.PDUError for a file directive PDU
// with an empty data field and no fallback, or the handler's own error.
func (r *Registry) HandlePDU(ctx context.Context, p *pdu.PDU) error {
	_, err := r.dispatch(ctx, p)
	return err
}

// dispatch reports routed=false when the registry itself could not route
// p, so callers can tell that apart from a handler's error.
func (r *Registry) dispatch(ctx context.Context, p *pdu.PDU) (routed bool, err error) {
	key, handler, err := r.lookup(p)
	if err != nil {
		r.metrics.RecordDispatch(key, metrics.ResultFailure, 0)
		r.logger.WarnContext(ctx, "Cannot route PDU", "key", key, "error", err)
		return false, err
	}

	r.logger.DebugContext(ctx, "Routing PDU",
		"key", key,
		"source_entity_id", p.Header.SourceEntityID,
		"transaction_sequence_number", p.Header.TransactionSequenceNumber)

	if handler == nil {
		r.metrics.RecordDispatch(key, metrics.ResultUnhandled, 0)
		r.logger.WarnContext(ctx, "No handler registered for PDU", "key", key)
		return false, fmt.Errorf("%w for %s", cfdperrors.ErrNoHandler, key)
	}

	start := time.Now()
	err = handler.HandlePDU(ctx, p)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	r.metrics.RecordDispatch(key, result, time.Since(start))
	return true, err
}

func (r *Registry) lookup(p *pdu.PDU) (string, interfaces.PDUHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p.Header.PduType == types.FileData {
		if r.fileData != nil {
			return FileDataKey, r.fileData, nil
		}
		return FileDataKey, r.fallback, nil
	}

	code, ok := p.DirectiveCode()
	if !ok {
		if r.fallback != nil {
			return EmptyDirectiveKey, r.fallback, nil
		}
		return EmptyDirectiveKey, nil, cfdperrors.NewPDUError("dispatch", cfdperrors.ErrInvalidPDU,
			"file directive PDU has an empty data field")
	}
	if handler, ok := r.directives[code]; ok {
		return code.String(), handler, nil
	}
	return code.String(), r.fallback, nil
}

// Serve reads PDUs from src and dispatches them until src is exhausted or
// ctx is done. PDUs the registry cannot route are logged and skipped; a
// read error or handler error stops the loop and is returned. A clean end
// of input returns nil.
func (r *Registry) Serve(ctx context.Context, src interfaces.PDUSource) error {
	var handled, skipped int
	defer func() {
		r.logger.InfoContext(ctx, "PDU stream finished", "handled", handled, "skipped", skipped)
	}()

	for {
		p, err := src.ReadPDU(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error reading PDU: %w", err)
		}

		routed, err := r.dispatch(ctx, p)
		if !routed {
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("error handling PDU: %w", err)
		}
		handled++
	}
}
