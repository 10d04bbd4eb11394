package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/loykin/apiprobe/internal/anonymize"
	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/config"
	"github.com/loykin/apiprobe/internal/httpc"
	"github.com/loykin/apiprobe/internal/retry"
	"github.com/loykin/apiprobe/internal/util"
)

// Dispatcher sends each endpoint through the selected backends, one request at a time.
// A nil backend is not selected.
type Dispatcher struct {
	Token     string
	Params    util.ParamTable
	Delay     time.Duration
	Anonymize bool

	BackendA httpc.Backend
	BackendB httpc.Backend

	Sleeper    retry.Sleeper
	Anonymizer *anonymize.Anonymizer
	Logger     *common.Logger
}

func (d *Dispatcher) logger() *common.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return common.GetLogger().WithComponent("dispatch")
}

func (d *Dispatcher) sleeper() retry.Sleeper {
	if d.Sleeper != nil {
		return d.Sleeper
	}
	return retry.WallClock{}
}

// Resolve substitutes placeholders in the endpoint URL and payload and builds
// the request headers. It is applied once per endpoint, before any request.
func (d *Dispatcher) Resolve(ep config.EndpointSpec) (string, map[string]any, map[string]string) {
	url := util.SubstituteString(ep.URL, d.Params)
	payload := util.SubstitutePayload(ep.Payload, d.Params)
	headers := map[string]string{}
	if ep.RequiresToken {
		headers["Authorization"] = d.Token
	}
	return url, payload, headers
}

// Send runs the endpoint on every selected backend, backend A first.
func (d *Dispatcher) Send(ctx context.Context, ep config.EndpointSpec) Outcome {
	method := strings.ToUpper(strings.TrimSpace(ep.Method))
	url, payload, headers := d.Resolve(ep)
	out := Outcome{URL: url, Method: method}

	if d.BackendA != nil {
		resp := d.run(ctx, d.BackendA, method, url, headers, payload)
		out.BackendAResponse, out.BackendAStatus = &resp.Body, &resp.Status
	}
	if d.BackendB != nil {
		resp := d.run(ctx, d.BackendB, method, url, headers, payload)
		out.BackendBResponse, out.BackendBStatus = &resp.Body, &resp.Status
	}
	return out
}

// Pause applies the fixed inter-endpoint delay.
func (d *Dispatcher) Pause(ctx context.Context) error {
	if d.Delay <= 0 {
		return nil
	}
	return d.sleeper().Sleep(ctx, d.Delay)
}

// Dispatch is Send followed by Pause.
func (d *Dispatcher) Dispatch(ctx context.Context, ep config.EndpointSpec) Outcome {
	out := d.Send(ctx, ep)
	if err := d.Pause(ctx); err != nil {
		d.logger().Debug("inter-endpoint delay interrupted", "error", err)
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, b httpc.Backend, method, url string, headers map[string]string, payload map[string]any) httpc.Response {
	logger := d.logger().WithBackend(b.Name()).WithRequest(method, url)

	m, err := httpc.ParseMethod(method)
	if err != nil {
		logger.Warn("unsupported method, request not sent")
		return httpc.UnsupportedMethod(method)
	}

	req := httpc.Request{Method: m, URL: url, Headers: headers, Payload: payload}
	policy := retry.RateLimit{Fallback: d.Delay, Sleeper: d.sleeper(), Logger: logger}
	resp, retried := policy.Do(ctx, func() httpc.Response { return b.Do(ctx, req) })
	if resp.Err != nil {
		logger.Warn("request failed", "error", resp.Err)
	}
	logger.Debug("response received", "status", resp.Status, "retried", retried, "response_size", len(resp.Body))

	if d.Anonymize && strings.TrimSpace(resp.Body) != "" {
		resp.Body = d.anonymizeBody(logger, resp.Body)
	}
	return resp
}

func (d *Dispatcher) anonymizeBody(logger *common.Logger, body string) string {
	a := d.Anonymizer
	if a == nil {
		a = anonymize.New(nil)
		d.Anonymizer = a
	}
	out, err := a.AnonymizeJSON(body)
	if err != nil {
		logger.Warn("response is not JSON, keeping raw text", "error", err)
		return body
	}
	return out
}
