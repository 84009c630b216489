// Package errors provides CFDP-specific error types for PDU decoding and dispatch
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrHeaderDecode = errors.New("cfdp: header decode failed")
	ErrInvalidPDU   = errors.New("cfdp: invalid PDU")
	ErrTruncatedPDU = errors.New("cfdp: truncated PDU")
	ErrPDUTooLarge  = errors.New("cfdp: PDU data field exceeds limit")
	ErrNoHandler    = errors.New("cfdp: no handler registered")
)

// DecodeErrorKind identifies why a PDU header could not be decoded
type DecodeErrorKind byte

const (
	BufferTooSmall DecodeErrorKind = iota + 1
	InvalidVersion
	TruncatedVariableField
)

func (k DecodeErrorKind) String() string {
	switch k {
	case BufferTooSmall:
		return "buffer-too-small"
	case InvalidVersion:
		return "invalid-version"
	case TruncatedVariableField:
		return "truncated-variable-field"
	default:
		return "unknown"
	}
}

// DecodeError represents a failure to decode the fixed PDU header.
// Every DecodeError matches ErrHeaderDecode with errors.Is.
type DecodeError struct {
	Kind DecodeErrorKind
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v (%s): %s", ErrHeaderDecode, e.Kind, e.Msg)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrHeaderDecode
}

// NewDecodeError creates a new header decode error
func NewDecodeError(kind DecodeErrorKind, msg string) *DecodeError {
	return &DecodeError{
		Kind: kind,
		Msg:  msg,
	}
}

// IsDecodeKind reports whether err is a DecodeError of the given kind
func IsDecodeKind(err error, kind DecodeErrorKind) bool {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind == kind
	}
	return false
}

// PDUError represents a framing error around a whole PDU
type PDUError struct {
	Op  string
	Msg string
	Err error
}

func (e *PDUError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("PDU %s failed: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("PDU %s failed: %s", e.Op, e.Msg)
}

func (e *PDUError) Unwrap() error {
	return e.Err
}

// NewPDUError creates a new PDU error wrapping err
func NewPDUError(op string, err error, msg string) *PDUError {
	return &PDUError{
		Op:  op,
		Msg: msg,
		Err: err,
	}
}
