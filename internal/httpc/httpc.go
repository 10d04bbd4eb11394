package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/constants"
)

// Httpc builds resty clients from Options.
type Httpc struct {
	Options Options
}

// New returns a resty.Client configured according to the receiver's options.
func (h *Httpc) New() *resty.Client {
	c := resty.New().
		SetAllowGetMethodPayload(true).
		SetPreRequestHook(attachPayload)
	if h.Options.TLSConfig != nil {
		c.SetTLSClientConfig(h.Options.TLSConfig)
	}
	if h.Options.Timeout > 0 {
		c.SetTimeout(h.Options.Timeout)
	}
	if h.Options.Proxy != "" {
		u, err := ParseProxy(h.Options.Proxy)
		if err != nil {
			common.GetLogger().WithComponent("httpc").Warn("proxy ignored", "error", err)
		} else if u != nil {
			c.SetProxy(u.String())
		}
	}
	return c
}

// RestyBackend is backend A: a plain net/http client driven through resty.
type RestyBackend struct {
	client *resty.Client
}

// NewRestyBackend creates backend A.
func NewRestyBackend(opts Options) *RestyBackend {
	h := Httpc{Options: opts}
	return &RestyBackend{client: h.New()}
}

// Name implements Backend.
func (b *RestyBackend) Name() string { return constants.BackendAName }

// Do implements Backend.
func (b *RestyBackend) Do(ctx context.Context, r Request) Response {
	req := b.client.R().SetHeaders(r.Headers)
	if r.Payload != nil {
		body, err := json.Marshal(r.Payload)
		if err != nil {
			return TransportFailure(b.Name(), r.URL, fmt.Errorf("encode payload: %w", err))
		}
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
		ctx = context.WithValue(ctx, payloadKey{}, body)
	}
	req.SetContext(ctx)

	resp, err := execByMethod(req, r.Method, r.URL)
	if err != nil {
		return TransportFailure(b.Name(), r.URL, err)
	}
	return Response{Status: resp.StatusCode(), Body: string(resp.Body())}
}

type payloadKey struct{}

// attachPayload restores the JSON body on methods resty sends without one (HEAD, OPTIONS).
func attachPayload(_ *resty.Client, req *http.Request) error {
	body, ok := req.Context().Value(payloadKey{}).([]byte)
	if !ok || (req.Body != nil && req.Body != http.NoBody) {
		return nil
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return nil
}

func execByMethod(req *resty.Request, method Method, url string) (*resty.Response, error) {
	switch method {
	case MethodGet:
		return req.Get(url)
	case MethodPost:
		return req.Post(url)
	case MethodPut:
		return req.Put(url)
	case MethodPatch:
		return req.Patch(url)
	case MethodDelete:
		return req.Delete(url)
	case MethodOptions:
		return req.Options(url)
	case MethodHead:
		return req.Head(url)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}
