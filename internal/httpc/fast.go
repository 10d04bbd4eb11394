package httpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/constants"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
)

// BrowserHeaders is the header profile backend B sends so requests look like a
// desktop Chrome session. Request headers with the same name take precedence.
var BrowserHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":             "*/*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Accept-Encoding":    "gzip, deflate, br",
	"Sec-Ch-Ua":          `"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Windows"`,
}

// FastBackend is backend B: a fasthttp client presenting a browser header profile.
type FastBackend struct {
	client *fasthttp.Client
	opts   Options
}

// NewFastBackend creates backend B.
func NewFastBackend(opts Options) *FastBackend {
	client := &fasthttp.Client{
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		TLSConfig:    opts.TLSConfig,
	}
	if opts.Proxy != "" {
		u, err := ParseProxy(opts.Proxy)
		switch {
		case err != nil:
			common.GetLogger().WithComponent("httpc").Warn("proxy ignored", "error", err)
		case u == nil:
		case u.Scheme == "http":
			client.Dial = fasthttpproxy.FasthttpHTTPDialerTimeout(u.String(), opts.Timeout)
		default:
			client.Dial = fasthttpproxy.FasthttpSocksDialer(u.String())
		}
	}
	return &FastBackend{client: client, opts: opts}
}

// Name implements Backend.
func (b *FastBackend) Name() string { return constants.BackendBName }

// Do implements Backend.
func (b *FastBackend) Do(ctx context.Context, r Request) Response {
	if err := ctx.Err(); err != nil {
		return TransportFailure(b.Name(), r.URL, err)
	}
	if !r.Method.Valid() {
		return TransportFailure(b.Name(), r.URL, fmt.Errorf("%w: %s", ErrUnsupportedMethod, r.Method))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL)
	req.Header.SetMethod(r.Method.String())
	for k, v := range BrowserHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if r.Payload != nil {
		body, err := json.Marshal(r.Payload)
		if err != nil {
			return TransportFailure(b.Name(), r.URL, fmt.Errorf("encode payload: %w", err))
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if b.opts.Timeout > 0 {
		req.SetTimeout(b.opts.Timeout)
	}
	if err := b.client.DoRedirects(req, resp, constants.MaxRedirects); err != nil {
		return TransportFailure(b.Name(), r.URL, err)
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		body = resp.Body()
	}
	return Response{Status: resp.StatusCode(), Body: string(body)}
}
