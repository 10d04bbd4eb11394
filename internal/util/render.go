package util

import (
	"regexp"
)

// ParamTable maps placeholder names to their replacement values.
type ParamTable map[string]string

var placeholderPattern = regexp.MustCompile(`\{([\p{L}\p{N}_]+)\}`)

// SubstituteString replaces every {name} token found in params. Unknown names are left verbatim.
func SubstituteString(s string, params ParamTable) string {
	if len(params) == 0 {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := params[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// Substitute walks strings and map[string]any values and resolves {name} placeholders.
// Maps are copied with their keys preserved; any other type is returned as-is.
// The input is never modified.
func Substitute(in any, params ParamTable) any {
	switch t := in.(type) {
	case string:
		return SubstituteString(t, params)
	case map[string]any:
		if t == nil {
			return t
		}
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = Substitute(v, params)
		}
		return m
	default:
		return in
	}
}

// SubstitutePayload is Substitute specialised for request payloads.
func SubstitutePayload(payload map[string]any, params ParamTable) map[string]any {
	if payload == nil {
		return nil
	}
	out, _ := Substitute(payload, params).(map[string]any)
	return out
}
