package httpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/loykin/apiprobe/internal/constants"
)

// Request is a fully resolved request ready to be sent by a Backend.
type Request struct {
	Method  Method
	URL     string
	Headers map[string]string
	// Payload is sent as a JSON body when non-nil.
	Payload map[string]any
}

// Response is what a Backend observed. Transport failures are folded into a
// synthetic response with Err set, so callers never branch on an error return.
type Response struct {
	Status int
	Body   string
	Err    error
}

// Backend issues a single request and reports the outcome.
type Backend interface {
	Name() string
	Do(ctx context.Context, req Request) Response
}

// Options are shared by both backend implementations.
type Options struct {
	// Timeout bounds one request; zero keeps the library default.
	Timeout time.Duration
	// Proxy is an optional HTTP proxy URL.
	Proxy string
	// TLSConfig overrides the client TLS settings when set.
	TLSConfig *tls.Config
}

// TransportFailure builds the synthetic response used when no HTTP response was received.
func TransportFailure(backend, url string, err error) Response {
	return Response{
		Status: constants.StatusTransportFailure,
		Body:   fmt.Sprintf("Error fetching %s with %s: %v", url, backend, err),
		Err:    err,
	}
}

// UnsupportedMethod builds the synthetic response for a method outside the supported set.
func UnsupportedMethod(name string) Response {
	return Response{
		Status: constants.StatusUnsupportedMethod,
		Body:   "Unsupported HTTP method: " + strings.ToUpper(strings.TrimSpace(name)),
	}
}

// TLSConfigFor builds a client TLS config from textual version bounds ("1.2", "1.3").
// It returns nil when nothing needs to change from the library default.
func TLSConfigFor(insecure bool, minVersion, maxVersion string) (*tls.Config, error) {
	minV, err := parseTLSVersion(minVersion)
	if err != nil {
		return nil, err
	}
	maxV, err := parseTLSVersion(maxVersion)
	if err != nil {
		return nil, err
	}
	if !insecure && minV == 0 && maxV == 0 {
		return nil, nil
	}
	// #nosec G402 -- insecure mode is an explicit user opt-in for test targets
	return &tls.Config{InsecureSkipVerify: insecure, MinVersion: minV, MaxVersion: maxV}, nil
}

func parseTLSVersion(v string) (uint16, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return 0, nil
	case "1.0", "tls1.0":
		return tls.VersionTLS10, nil
	case "1.1", "tls1.1":
		return tls.VersionTLS11, nil
	case "1.2", "tls1.2":
		return tls.VersionTLS12, nil
	case "1.3", "tls1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unknown TLS version %q", v)
	}
}

// ErrUnsupportedProxy is returned by ParseProxy for schemes neither backend can dial.
var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

// ParseProxy normalizes a proxy address. A bare host:port is an HTTP proxy.
// Accepted schemes are http, socks5 and socks5h. It returns nil for an empty address.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	switch u.Scheme {
	case "http", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("%w %q (use http, socks5 or socks5h)", ErrUnsupportedProxy, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing host", raw)
	}
	return u, nil
}
