package httpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Method is the closed set of HTTP methods an endpoint may use.
type Method int

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodOptions
	MethodHead
)

var methodNames = map[Method]string{
	MethodGet:     http.MethodGet,
	MethodPost:    http.MethodPost,
	MethodPut:     http.MethodPut,
	MethodPatch:   http.MethodPatch,
	MethodDelete:  http.MethodDelete,
	MethodOptions: http.MethodOptions,
	MethodHead:    http.MethodHead,
}

// ErrUnsupportedMethod is returned by ParseMethod for names outside the supported set.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// ParseMethod resolves a method name case-insensitively.
func ParseMethod(name string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == upper {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedMethod, upper)
}

// String returns the canonical upper-case method name.
func (m Method) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}
