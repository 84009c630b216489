// Package interfaces contains the handler interfaces used to dispatch PDUs
package interfaces

import (
	"context"

	"github.com/caio-sobreiro/cfdpnet/pdu"
)

// PDUHandler processes one decoded PDU
type PDUHandler interface {
	HandlePDU(ctx context.Context, p *pdu.PDU) error
}

// PDUHandlerFunc adapts a function to PDUHandler
type PDUHandlerFunc func(ctx context.Context, p *pdu.PDU) error

func (f PDUHandlerFunc) HandlePDU(ctx context.Context, p *pdu.PDU) error {
	return f(ctx, p)
}

// PDUSource yields PDUs one at a time until io.EOF
type PDUSource interface {
	ReadPDU(ctx context.Context) (*pdu.PDU, error)
}
