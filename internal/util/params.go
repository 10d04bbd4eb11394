package util

import (
	"fmt"
	"strings"
)

// ParseParams builds a ParamTable from key=value items. Values may contain '='.
// Later items override earlier ones with the same key.
func ParseParams(items []string) (ParamTable, error) {
	params := ParamTable{}
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: expected key=value", item)
		}
		key, nonEmpty := TrimEmptyCheck(key)
		if !nonEmpty {
			return nil, fmt.Errorf("invalid param %q: empty key", item)
		}
		params[key] = value
	}
	return params, nil
}
