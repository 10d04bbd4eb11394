package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/apiprobe/internal/anonymize"
	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/config"
	"github.com/loykin/apiprobe/internal/constants"
	"github.com/loykin/apiprobe/internal/dispatch"
	"github.com/loykin/apiprobe/internal/httpc"
	"github.com/loykin/apiprobe/internal/report"
	"github.com/loykin/apiprobe/internal/retry"
	"github.com/loykin/apiprobe/internal/util"
)

// ErrNoBackend is returned when neither backend was selected.
var ErrNoBackend = errors.New("no testing method selected")

// Messages printed when a run stops before dispatching anything.
const (
	NoBackendMessage   = "Please specify at least one testing method (--tls or --aiohttp)"
	NoTokenMessage     = "No token found, exiting..."
	NoEndpointsMessage = "No URLs found, exiting..."
)

// Options holds everything a run needs.
type Options struct {
	CredentialsPath string
	EndpointsPath   string

	UseBackendA bool
	UseBackendB bool

	Full       bool
	Delay      time.Duration
	OutputPath string
	Params     util.ParamTable
	Anonymize  bool

	HTTP httpc.Options
}

// Sink receives everything the run wants to show the user.
type Sink interface {
	Outcome(o dispatch.Outcome)
	Error(msg string)
	Success(msg string)
}

// Status tells how a run ended.
type Status int

const (
	StatusCompleted Status = iota
	StatusNoToken
	StatusNoEndpoints
	StatusInterrupted
)

// Result is the outcome of a whole run.
type Result struct {
	RunID       string
	Status      Status
	Outcomes    []dispatch.Outcome
	SaveMessage string
}

// Runner drives one sequential pass over the endpoint list.
type Runner struct {
	Options Options
	Sink    Sink

	// Optional overrides; nil values get the production implementations.
	BackendA   httpc.Backend
	BackendB   httpc.Backend
	Sleeper    retry.Sleeper
	Anonymizer *anonymize.Anonymizer
}

// New creates a runner for opts reporting to sink.
func New(opts Options, sink Sink) *Runner {
	return &Runner{Options: opts, Sink: sink}
}

func (r *Runner) backends() (httpc.Backend, httpc.Backend) {
	var a, b httpc.Backend
	if r.Options.UseBackendA {
		a = r.BackendA
		if a == nil {
			a = httpc.NewRestyBackend(r.Options.HTTP)
		}
	}
	if r.Options.UseBackendB {
		b = r.BackendB
		if b == nil {
			b = httpc.NewFastBackend(r.Options.HTTP)
		}
	}
	return a, b
}

func pathOr(p, def string) string {
	if v, ok := util.TrimEmptyCheck(p); ok {
		return v
	}
	return def
}

// Run loads the inputs, dispatches every endpoint that passes the filters and
// saves the results when an output path is configured. A missing token or an
// empty endpoint list ends the run early without an error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.Options.UseBackendA && !r.Options.UseBackendB {
		return nil, ErrNoBackend
	}

	res := &Result{RunID: uuid.NewString()}
	logger := common.GetLogger().WithComponent("runner").WithRun(res.RunID)

	credsPath := pathOr(r.Options.CredentialsPath, constants.DefaultCredentialsFile)
	creds := config.LoadCredentials(credsPath)
	if !creds.HasToken() {
		logger.Debug("no token loaded", "path", credsPath)
		r.Sink.Error(NoTokenMessage)
		res.Status = StatusNoToken
		return res, nil
	}

	endpointsPath := pathOr(r.Options.EndpointsPath, constants.DefaultEndpointsFile)
	endpoints := config.LoadEndpoints(endpointsPath)
	if len(endpoints) == 0 {
		logger.Debug("no endpoints loaded", "path", endpointsPath)
		r.Sink.Error(NoEndpointsMessage)
		res.Status = StatusNoEndpoints
		return res, nil
	}

	selected := config.Filter(endpoints, creds.Include, creds.Exclude)
	logger.Info("starting run", "endpoints", len(selected), "filtered_out", len(endpoints)-len(selected))

	a, b := r.backends()
	d := &dispatch.Dispatcher{
		Token:      creds.Token,
		Params:     r.Options.Params,
		Delay:      r.Options.Delay,
		Anonymize:  r.Options.Anonymize,
		BackendA:   a,
		BackendB:   b,
		Sleeper:    r.Sleeper,
		Anonymizer: r.Anonymizer,
		Logger:     common.GetLogger().WithComponent("dispatch").WithRun(res.RunID),
	}

	res.Outcomes = make([]dispatch.Outcome, 0, len(selected))
	for _, ep := range selected {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", "completed", len(res.Outcomes), "remaining", len(selected)-len(res.Outcomes))
			res.Status = StatusInterrupted
			break
		}
		o := d.Send(ctx, ep)
		r.Sink.Outcome(o)
		res.Outcomes = append(res.Outcomes, o)
		if err := d.Pause(ctx); err != nil {
			logger.Debug("delay interrupted", "error", err)
		}
	}

	r.Sink.Success(fmt.Sprintf("Tested %d endpoint(s)", len(res.Outcomes)))

	if out := strings.TrimSpace(r.Options.OutputPath); out != "" {
		res.SaveMessage = report.Save(res.Outcomes, out)
		if strings.HasPrefix(res.SaveMessage, "Results saved") {
			r.Sink.Success(res.SaveMessage)
		} else {
			r.Sink.Error(res.SaveMessage)
		}
	}
	return res, nil
}
