package retry

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/constants"
	"github.com/loykin/apiprobe/internal/httpc"
	"github.com/tidwall/gjson"
)

// RetryAfter reads the retry_after field (seconds, fractions allowed) from a JSON body.
// ok is false when the body is not valid JSON; in that case no retry should happen.
// When the field is missing, null or not numeric, fallback is returned.
// The wait is capped at constants.MaxRetryAfter.
func RetryAfter(body string, fallback time.Duration) (wait time.Duration, ok bool) {
	if !gjson.Valid(body) {
		return 0, false
	}
	res := gjson.Get(body, constants.RetryAfterField)
	if !res.Exists() || res.Type == gjson.Null {
		return fallback, true
	}
	var secs float64
	switch res.Type {
	case gjson.Number:
		secs = res.Num
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(res.Str), 64)
		if err != nil {
			return fallback, true
		}
		secs = v
	default:
		return fallback, true
	}
	if math.IsNaN(secs) {
		return fallback, true
	}
	if secs <= 0 {
		return 0, true
	}
	if secs >= constants.MaxRetryAfter.Seconds() {
		return constants.MaxRetryAfter, true
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Operation issues one request.
type Operation func() httpc.Response

// RateLimit retries a rate-limited request exactly once.
type RateLimit struct {
	// Fallback is the pause used when the 429 body carries no retry_after.
	Fallback time.Duration
	Sleeper  Sleeper
	Logger   *common.Logger
}

// Do runs op and, if the response status is 429 with a JSON body, waits the
// advertised time and runs op a second and final time. It reports whether the
// retry happened.
func (p RateLimit) Do(ctx context.Context, op Operation) (httpc.Response, bool) {
	resp := op()
	if resp.Status != constants.StatusRateLimited {
		return resp, false
	}

	logger := p.Logger
	if logger == nil {
		logger = common.GetLogger().WithComponent("retry")
	}

	wait, ok := RetryAfter(resp.Body, p.Fallback)
	if !ok {
		logger.Warn("rate limited but body is not JSON, keeping response", "status", resp.Status)
		return resp, false
	}

	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = WallClock{}
	}
	logger.Info("rate limited, retrying once", "retry_delay", wait)
	if err := sleeper.Sleep(ctx, wait); err != nil {
		logger.Warn("retry abandoned", "error", err)
		return resp, false
	}
	return op(), true
}
