package types

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirectiveCode is the first octet of a file directive PDU's data field.
// CCSDS 727.0-B-5, Table 5-4.
type DirectiveCode uint8

const (
	DirectiveEOF       DirectiveCode = 0x04
	DirectiveFinished  DirectiveCode = 0x05
	DirectiveACK       DirectiveCode = 0x06
	DirectiveMetadata  DirectiveCode = 0x07
	DirectiveNAK       DirectiveCode = 0x08
	DirectivePrompt    DirectiveCode = 0x09
	DirectiveKeepAlive DirectiveCode = 0x0C
)

// DirectiveInfo provides human-readable information about a directive code
type DirectiveInfo struct {
	Code DirectiveCode
	Name string
	// Sender is the direction a well-formed directive of this kind travels.
	Sender Direction
}

// directiveRegistry maps directive codes to their information
var directiveRegistry = map[DirectiveCode]DirectiveInfo{
	DirectiveEOF:       {Code: DirectiveEOF, Name: "EOF", Sender: ToReceiver},
	DirectiveFinished:  {Code: DirectiveFinished, Name: "Finished", Sender: ToSender},
	DirectiveACK:       {Code: DirectiveACK, Name: "ACK", Sender: ToReceiver},
	DirectiveMetadata:  {Code: DirectiveMetadata, Name: "Metadata", Sender: ToReceiver},
	DirectiveNAK:       {Code: DirectiveNAK, Name: "NAK", Sender: ToSender},
	DirectivePrompt:    {Code: DirectivePrompt, Name: "Prompt", Sender: ToReceiver},
	DirectiveKeepAlive: {Code: DirectiveKeepAlive, Name: "Keep Alive", Sender: ToSender},
}

var directiveNames = func() map[DirectiveCode]string {
	names := make(map[DirectiveCode]string, len(directiveRegistry))
	for code, info := range directiveRegistry {
		names[code] = info.Name
	}
	return names
}()

// GetDirectiveInfo returns information about a directive code
func GetDirectiveInfo(code DirectiveCode) *DirectiveInfo {
	info, ok := directiveRegistry[code]
	if !ok {
		return &DirectiveInfo{
			Code: code,
			Name: code.String(),
		}
	}
	return &info
}

// IsKnownDirective returns true if code is a directive defined by the standard
func IsKnownDirective(code DirectiveCode) bool {
	_, ok := directiveRegistry[code]
	return ok
}

func (c DirectiveCode) String() string { return flagName(c, directiveNames) }

// MarshalYAML emits the directive name, or the bare number for codes
// outside the registry so that they still parse back.
func (c DirectiveCode) MarshalYAML() (interface{}, error) {
	if !IsKnownDirective(c) {
		return uint8(c), nil
	}
	return c.String(), nil
}

func (c *DirectiveCode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if n, err := strconv.ParseUint(strings.TrimSpace(node.Value), 0, 8); err == nil {
			*c = DirectiveCode(n)
			return nil
		}
	}
	return unmarshalFlag(node, "directive_code", c, directiveNames)
}
