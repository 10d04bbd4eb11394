package apiprobe

import (
	"context"
	"io"
	"math/rand/v2"

	"github.com/loykin/apiprobe/internal/anonymize"
	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/config"
	"github.com/loykin/apiprobe/internal/dispatch"
	"github.com/loykin/apiprobe/internal/httpc"
	"github.com/loykin/apiprobe/internal/report"
	"github.com/loykin/apiprobe/internal/runner"
	"github.com/loykin/apiprobe/internal/util"
)

// Re-export commonly used types for public API

// Outcome is the recorded result of one endpoint.
type Outcome = dispatch.Outcome

// EndpointSpec is one entry of the endpoint list.
type EndpointSpec = config.EndpointSpec

// Credentials is the content of the credentials file.
type Credentials = config.Credentials

// ParamTable maps placeholder names to values.
type ParamTable = util.ParamTable

// Options configures a run.
type Options = runner.Options

// Result summarizes a run.
type Result = runner.Result

// Sink receives console output of a run.
type Sink = runner.Sink

// Backend is an HTTP client used to send endpoints.
type Backend = httpc.Backend

// HTTPOptions configures timeout, proxy and TLS for both backends.
type HTTPOptions = httpc.Options

// Dispatcher sends single endpoints; useful for embedding without the file based run loop.
type Dispatcher = dispatch.Dispatcher

// ErrNoBackend is returned by Run when no backend is selected.
var ErrNoBackend = runner.ErrNoBackend

// Run executes a full pass over the endpoint list described by opts.
func Run(ctx context.Context, opts Options, sink Sink) (*Result, error) {
	return runner.New(opts, sink).Run(ctx)
}

// NewConsole returns a Sink that renders panels to w.
func NewConsole(w io.Writer, full bool) Sink { return report.NewConsole(w, full) }

// NewRestyBackend returns the standard client backend.
func NewRestyBackend(opts HTTPOptions) Backend { return httpc.NewRestyBackend(opts) }

// NewFastBackend returns the browser-profile backend.
func NewFastBackend(opts HTTPOptions) Backend { return httpc.NewFastBackend(opts) }

// LoadCredentials reads the YAML credentials file; a missing or invalid file yields empty credentials.
func LoadCredentials(path string) Credentials { return config.LoadCredentials(path) }

// LoadEndpoints reads the JSON endpoint list, skipping entries that cannot be decoded.
func LoadEndpoints(path string) []EndpointSpec { return config.LoadEndpoints(path) }

// FilterEndpoints applies include and exclude substring filters to endpoint URLs.
func FilterEndpoints(endpoints []EndpointSpec, include, exclude []string) []EndpointSpec {
	return config.Filter(endpoints, include, exclude)
}

// ParseParams builds a ParamTable from key=value items.
func ParseParams(items []string) (ParamTable, error) { return util.ParseParams(items) }

// Substitute replaces {name} placeholders in strings and string values of maps.
func Substitute(value any, params ParamTable) any { return util.Substitute(value, params) }

// AnonymizeJSON rewrites personal fields of a JSON document. A nil src uses a time seeded source.
func AnonymizeJSON(body string, src rand.Source) (string, error) {
	return anonymize.New(src).AnonymizeJSON(body)
}

// SaveResults writes outcomes to a .json or .txt file and returns a status message.
func SaveResults(outcomes []Outcome, path string) string { return report.Save(outcomes, path) }

// LoadResults reads a JSON results file written by SaveResults.
func LoadResults(path string) ([]Outcome, error) { return report.LoadJSON(path) }

// Logging

// Logger is the structured logger shared by all packages.
type Logger = common.Logger

// LogLevel selects logger verbosity.
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// NewLogger builds a logger writing to w in "text", "json" or "color" format.
func NewLogger(w io.Writer, level LogLevel, format string) *Logger {
	return common.NewLoggerWithWriter(w, level, format)
}

// SetDefaultLogger replaces the logger used by every package.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// RegisterSecret masks s wherever it appears in log output.
func RegisterSecret(s string) { common.RegisterSecret(s) }

// MaskSensitiveData replaces registered secrets in input.
func MaskSensitiveData(input string) string { return common.MaskSensitiveData(input) }
