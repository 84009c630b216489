package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/caio-sobreiro/cfdpnet/pdu"
	"github.com/caio-sobreiro/cfdpnet/types"
)

// pduDocument is the YAML form of one PDU.
type pduDocument struct {
	Header     pdu.Header           `yaml:"header"`
	HeaderSize int                  `yaml:"header_size,omitempty"`
	Directive  *types.DirectiveCode `yaml:"directive,omitempty"`
	Data       hexBytes             `yaml:"data"`
	Checksum   hexBytes             `yaml:"checksum,omitempty"`
}

func newDocument(p *pdu.PDU) pduDocument {
	doc := pduDocument{
		Header:     p.Header,
		HeaderSize: p.Header.RawSize(),
		Data:       p.DataField,
		Checksum:   p.Checksum,
	}
	if code, ok := p.DirectiveCode(); ok {
		doc.Directive = &code
	}
	return doc
}

func (d pduDocument) build() (*pdu.PDU, error) {
	if err := d.Header.Validate(); err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}
	return pdu.New(d.Header, d.Data, d.Checksum)
}

// hexBytes renders as a hex string in YAML.
type hexBytes []byte

func (b hexBytes) MarshalYAML() (interface{}, error) {
	return hex.EncodeToString(b), nil
}

func (b *hexBytes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a hex string", node.Line)
	}
	decoded, err := decodeHex(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = decoded
	return nil
}

// decodeHex accepts hex with optional 0x prefix and whitespace, colon or
// underscore separators.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '_':
			return -1
		}
		return r
	}, s)
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}
