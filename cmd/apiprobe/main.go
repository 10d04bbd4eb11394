package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/apiprobe/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "apiprobe [key=value ...]",
	Short: "Test API endpoints through one or two HTTP client backends",
	Long: `apiprobe reads a token from a YAML credentials file and a list of endpoints
from a JSON file, then sends every endpoint through the selected backends and
prints the responses. Extra positional key=value arguments are added to --params.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		// StringArray keeps commas inside values; viper would split them as CSV.
		params := viper.GetStringSlice("params")
		if cmd.Flags().Changed("params") {
			params, _ = cmd.Flags().GetStringArray("params")
		}
		r := NewProbeRunner(ctx, cmd.OutOrStdout())
		return r.Run(append(params, args...))
	},
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", constants.DefaultCredentialsFile)
	v.SetDefault("urls", constants.DefaultEndpointsFile)
	v.SetDefault("tls", false)
	v.SetDefault("aiohttp", false)
	v.SetDefault("full", false)
	v.SetDefault("delay", 0)
	v.SetDefault("output", "")
	v.SetDefault("params", []string{})
	v.SetDefault("anonymize", false)
	v.SetDefault("timeout", 0)
	v.SetDefault("proxy", "")
	v.SetDefault("insecure", false)
	v.SetDefault("tls_min_version", "")
	v.SetDefault("tls_max_version", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "color")

	f := rootCmd.Flags()
	f.String("config", v.GetString("config"), "path to the YAML credentials file (token, include, exclude)")
	f.String("urls", v.GetString("urls"), "path to the JSON endpoint list")
	f.Bool("tls", v.GetBool("tls"), "test endpoints with the browser-profile client")
	f.Bool("aiohttp", v.GetBool("aiohttp"), "test endpoints with the standard client")
	f.Bool("full", v.GetBool("full"), "display full responses instead of truncated ones")
	f.Int("delay", v.GetInt("delay"), "delay between endpoints in milliseconds")
	f.String("output", v.GetString("output"), "save results to a file (.json or .txt)")
	f.StringArray("params", nil, "placeholder value in the form key=value (repeatable)")
	f.Bool("anonymize", v.GetBool("anonymize"), "replace personal fields in JSON responses with harmless values")
	f.Duration("timeout", 0, "per-request timeout (0 = client default)")
	f.String("proxy", v.GetString("proxy"), "HTTP proxy URL for both clients")
	f.Bool("insecure", v.GetBool("insecure"), "skip TLS certificate verification")
	f.String("tls-min-version", v.GetString("tls_min_version"), "minimum TLS version (1.0, 1.1, 1.2, 1.3)")
	f.String("tls-max-version", v.GetString("tls_max_version"), "maximum TLS version (1.0, 1.1, 1.2, 1.3)")
	f.String("log-level", v.GetString("log_level"), "diagnostic log level (error, warn, info, debug)")
	f.String("log-format", v.GetString("log_format"), "diagnostic log format (text, json, color)")

	_ = v.BindPFlag("config", f.Lookup("config"))
	_ = v.BindPFlag("urls", f.Lookup("urls"))
	_ = v.BindPFlag("tls", f.Lookup("tls"))
	_ = v.BindPFlag("aiohttp", f.Lookup("aiohttp"))
	_ = v.BindPFlag("full", f.Lookup("full"))
	_ = v.BindPFlag("delay", f.Lookup("delay"))
	_ = v.BindPFlag("output", f.Lookup("output"))
	_ = v.BindPFlag("anonymize", f.Lookup("anonymize"))
	_ = v.BindPFlag("timeout", f.Lookup("timeout"))
	_ = v.BindPFlag("proxy", f.Lookup("proxy"))
	_ = v.BindPFlag("insecure", f.Lookup("insecure"))
	_ = v.BindPFlag("tls_min_version", f.Lookup("tls-min-version"))
	_ = v.BindPFlag("tls_max_version", f.Lookup("tls-max-version"))
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("log_format", f.Lookup("log-format"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
