package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name string
		kind DecodeErrorKind
		str  string
	}{
		{"BufferTooSmall", BufferTooSmall, "buffer-too-small"},
		{"InvalidVersion", InvalidVersion, "invalid-version"},
		{"TruncatedVariableField", TruncatedVariableField, "truncated-variable-field"},
		{"Unknown", DecodeErrorKind(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDecodeError(tt.kind, "test error")

			if err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", err.Kind, tt.kind)
			}
			if tt.kind.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.kind.String(), tt.str)
			}
			if !strings.Contains(err.Error(), tt.str) {
				t.Errorf("Error() = %q, should contain %q", err.Error(), tt.str)
			}
			if !errors.Is(err, ErrHeaderDecode) {
				t.Error("DecodeError should match ErrHeaderDecode")
			}
		})
	}
}

func TestDecodeError_Wrapped(t *testing.T) {
	base := NewDecodeError(TruncatedVariableField, "need 4 bytes")
	wrapped := fmt.Errorf("reading header: %w", base)

	if !errors.Is(wrapped, ErrHeaderDecode) {
		t.Error("wrapped DecodeError should match ErrHeaderDecode")
	}
	if !IsDecodeKind(wrapped, TruncatedVariableField) {
		t.Error("IsDecodeKind should see through wrapping")
	}
	if IsDecodeKind(wrapped, BufferTooSmall) {
		t.Error("IsDecodeKind should not match a different kind")
	}
	if IsDecodeKind(io.EOF, BufferTooSmall) {
		t.Error("IsDecodeKind should be false for unrelated errors")
	}
	if errors.Is(ErrInvalidPDU, ErrHeaderDecode) {
		t.Error("ErrInvalidPDU should not match ErrHeaderDecode")
	}
}

func TestPDUError(t *testing.T) {
	err := NewPDUError("decode", ErrTruncatedPDU, "need 12 bytes, have 9")

	if !errors.Is(err, ErrTruncatedPDU) {
		t.Error("PDUError should unwrap to its cause")
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "decode") || !strings.Contains(errMsg, "need 12 bytes") {
		t.Errorf("unexpected message: %s", errMsg)
	}

	var pduErr *PDUError
	if !errors.As(fmt.Errorf("outer: %w", err), &pduErr) {
		t.Fatal("errors.As should find PDUError")
	}
	if pduErr.Op != "decode" {
		t.Errorf("Op = %s, want decode", pduErr.Op)
	}

	bare := &PDUError{Op: "encode", Msg: "bad checksum"}
	if bare.Unwrap() != nil {
		t.Error("Unwrap should be nil without a cause")
	}
	if bare.Error() != "PDU encode failed: bad checksum" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
