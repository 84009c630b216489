// Package types holds the tagged enums carried by CFDP PDU headers.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type flag interface {
	~uint8
}

func flagName[T flag](v T, names map[T]string) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// parseFlag resolves a name (as returned by String) or a decimal/hex number
// to a value present in names.
func parseFlag[T flag](field, raw string, names map[T]string) (T, error) {
	raw = strings.TrimSpace(raw)
	for v, name := range names {
		if strings.EqualFold(raw, name) {
			return v, nil
		}
	}
	n, err := strconv.ParseUint(raw, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%s: unrecognized value %q", field, raw)
	}
	if _, ok := names[T(n)]; !ok {
		return 0, fmt.Errorf("%s: value %d out of range", field, n)
	}
	return T(n), nil
}

func unmarshalFlag[T flag](node *yaml.Node, field string, dst *T, names map[T]string) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%s: line %d: expected a scalar", field, node.Line)
	}
	v, err := parseFlag(field, node.Value, names)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*dst = v
	return nil
}
