package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/httpc"
	"github.com/loykin/apiprobe/internal/report"
	"github.com/loykin/apiprobe/internal/runner"
	"github.com/loykin/apiprobe/internal/util"
	"github.com/spf13/viper"
)

// ProbeConfig holds the command line settings of one run.
type ProbeConfig struct {
	CredentialsPath string
	EndpointsPath   string
	UseBackendA     bool
	UseBackendB     bool
	Full            bool
	Delay           time.Duration
	OutputPath      string
	Anonymize       bool
	Timeout         time.Duration
	Proxy           string
	Insecure        bool
	TLSMinVersion   string
	TLSMaxVersion   string
	LogLevel        string
	LogFormat       string
}

// ProbeRunner turns viper settings into a runner.Runner and executes it.
type ProbeRunner struct {
	config *ProbeConfig
	ctx    context.Context
	out    io.Writer
	logOut io.Writer
	logger *common.Logger
}

// NewProbeRunner creates a probe runner printing results to out.
func NewProbeRunner(ctx context.Context, out io.Writer) *ProbeRunner {
	return &ProbeRunner{ctx: ctx, out: out, logOut: os.Stderr, config: &ProbeConfig{}}
}

// InitializeFromViper reads the bound flags and sets up the default logger.
func (r *ProbeRunner) InitializeFromViper() {
	v := viper.GetViper()
	r.config = &ProbeConfig{
		CredentialsPath: v.GetString("config"),
		EndpointsPath:   v.GetString("urls"),
		UseBackendA:     v.GetBool("aiohttp"),
		UseBackendB:     v.GetBool("tls"),
		Full:            v.GetBool("full"),
		Delay:           time.Duration(v.GetInt("delay")) * time.Millisecond,
		OutputPath:      v.GetString("output"),
		Anonymize:       v.GetBool("anonymize"),
		Timeout:         v.GetDuration("timeout"),
		Proxy:           strings.TrimSpace(v.GetString("proxy")),
		Insecure:        v.GetBool("insecure"),
		TLSMinVersion:   v.GetString("tls_min_version"),
		TLSMaxVersion:   v.GetString("tls_max_version"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}

	logger := common.NewLoggerWithWriter(r.logOut, common.ParseLogLevel(r.config.LogLevel), r.config.LogFormat)
	common.SetDefaultLogger(logger)
	r.logger = logger.WithComponent("main")
}

// BuildOptions validates the settings and converts them into runner options.
func (r *ProbeRunner) BuildOptions(rawParams []string) (runner.Options, error) {
	params, err := util.ParseParams(rawParams)
	if err != nil {
		return runner.Options{}, fmt.Errorf("failed to parse --params: %w", err)
	}
	if r.config.Delay < 0 {
		return runner.Options{}, fmt.Errorf("--delay must not be negative, got %s", r.config.Delay)
	}
	proxy, err := httpc.ParseProxy(r.config.Proxy)
	if err != nil {
		return runner.Options{}, fmt.Errorf("invalid --proxy: %w", err)
	}
	proxyURL := ""
	if proxy != nil {
		proxyURL = proxy.String()
	}
	tlsCfg, err := httpc.TLSConfigFor(r.config.Insecure, r.config.TLSMinVersion, r.config.TLSMaxVersion)
	if err != nil {
		return runner.Options{}, fmt.Errorf("invalid TLS settings: %w", err)
	}
	return runner.Options{
		CredentialsPath: r.config.CredentialsPath,
		EndpointsPath:   r.config.EndpointsPath,
		UseBackendA:     r.config.UseBackendA,
		UseBackendB:     r.config.UseBackendB,
		Full:            r.config.Full,
		Delay:           r.config.Delay,
		OutputPath:      r.config.OutputPath,
		Params:          params,
		Anonymize:       r.config.Anonymize,
		HTTP: httpc.Options{
			Timeout:   r.config.Timeout,
			Proxy:     proxyURL,
			TLSConfig: tlsCfg,
		},
	}, nil
}

// Run executes one probe run. Missing backends, a missing token and an empty
// endpoint list are reported on the console and are not errors.
func (r *ProbeRunner) Run(rawParams []string) error {
	r.InitializeFromViper()
	console := report.NewConsole(r.out, r.config.Full)

	if !r.config.UseBackendA && !r.config.UseBackendB {
		console.Error(runner.NoBackendMessage)
		return nil
	}

	opts, err := r.BuildOptions(rawParams)
	if err != nil {
		return err
	}

	r.logger.Debug("starting apiprobe",
		"config_path", opts.CredentialsPath,
		"urls_path", opts.EndpointsPath,
		"backend_a", opts.UseBackendA,
		"backend_b", opts.UseBackendB,
		"params", len(opts.Params),
	)

	res, err := runner.New(opts, console).Run(r.ctx)
	if err != nil {
		return err
	}
	r.logger.Info("run finished", "run_id", res.RunID, "endpoints", len(res.Outcomes))
	return nil
}
