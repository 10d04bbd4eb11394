package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/loykin/apiprobe/internal/report"
	"github.com/loykin/apiprobe/internal/runner"
	"github.com/spf13/viper"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// setViper applies settings for one test and restores the previous values afterwards.
func setViper(t *testing.T, settings map[string]any) {
	t.Helper()
	v := viper.GetViper()
	prev := map[string]any{}
	for k, val := range settings {
		prev[k] = v.Get(k)
		v.Set(k, val)
	}
	t.Cleanup(func() {
		for k, val := range prev {
			v.Set(k, val)
		}
	})
}

func newTestRunner(out io.Writer) *ProbeRunner {
	r := NewProbeRunner(context.Background(), out)
	r.logOut = io.Discard
	return r
}

func TestRun_NoBackendPrintsUsageError(t *testing.T) {
	setViper(t, map[string]any{"tls": false, "aiohttp": false, "log_format": "text"})
	var out bytes.Buffer
	if err := newTestRunner(&out).Run(nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out.String(), runner.NoBackendMessage) {
		t.Fatalf("usage error not printed: %q", out.String())
	}
}

func TestRun_MalformedParamsIsAnError(t *testing.T) {
	setViper(t, map[string]any{"aiohttp": true, "tls": false, "log_format": "text"})
	var out bytes.Buffer
	err := newTestRunner(&out).Run([]string{"novalue"})
	if err == nil || !strings.Contains(err.Error(), "--params") {
		t.Fatalf("expected params error, got %v", err)
	}
}

func TestRun_InvalidTLSVersionIsAnError(t *testing.T) {
	setViper(t, map[string]any{"aiohttp": true, "tls": false, "tls_min_version": "9.9", "log_format": "text"})
	err := newTestRunner(io.Discard).Run(nil)
	if err == nil || !strings.Contains(err.Error(), "TLS") {
		t.Fatalf("expected TLS error, got %v", err)
	}
}

func TestBuildOptions_Proxy(t *testing.T) {
	tests := []struct {
		proxy   string
		want    string
		wantErr bool
	}{
		{proxy: "", want: ""},
		{proxy: "127.0.0.1:3128", want: "http://127.0.0.1:3128"},
		{proxy: "socks5://127.0.0.1:1080", want: "socks5://127.0.0.1:1080"},
		{proxy: "https://proxy:443", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.proxy, func(t *testing.T) {
			setViper(t, map[string]any{"aiohttp": true, "proxy": tt.proxy})
			r := newTestRunner(io.Discard)
			r.InitializeFromViper()
			opts, err := r.BuildOptions(nil)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "--proxy") {
					t.Fatalf("expected proxy error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("build options: %v", err)
			}
			if opts.HTTP.Proxy != tt.want {
				t.Fatalf("proxy = %q, want %q", opts.HTTP.Proxy, tt.want)
			}
		})
	}
}

func TestBuildOptions_MapsSettings(t *testing.T) {
	setViper(t, map[string]any{
		"config":    "creds.yaml",
		"urls":      "list.json",
		"aiohttp":   true,
		"tls":       true,
		"delay":     250,
		"insecure":  true,
		"proxy":     " http://127.0.0.1:3128 ",
		"anonymize": true,
	})
	r := newTestRunner(io.Discard)
	r.InitializeFromViper()
	opts, err := r.BuildOptions([]string{"id=42", "content=a=b"})
	if err != nil {
		t.Fatalf("build options: %v", err)
	}
	if opts.CredentialsPath != "creds.yaml" || opts.EndpointsPath != "list.json" {
		t.Fatalf("paths: %+v", opts)
	}
	if !opts.UseBackendA || !opts.UseBackendB || !opts.Anonymize {
		t.Fatalf("flags: %+v", opts)
	}
	if opts.Delay.Milliseconds() != 250 {
		t.Fatalf("delay = %s", opts.Delay)
	}
	if opts.Params["id"] != "42" || opts.Params["content"] != "a=b" {
		t.Fatalf("params = %v", opts.Params)
	}
	if opts.HTTP.Proxy != "http://127.0.0.1:3128" {
		t.Fatalf("proxy = %q", opts.HTTP.Proxy)
	}
	if opts.HTTP.TLSConfig == nil || !opts.HTTP.TLSConfig.InsecureSkipVerify {
		t.Fatalf("insecure TLS config expected")
	}
}

func TestRootCommand_EndToEnd(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"channel":"` + strings.TrimPrefix(r.URL.Path, "/channels/") + `"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	creds := writeFile(t, dir, "config.yaml", "token: tok\n")
	urls := writeFile(t, dir, "urls.json", `[{"url": "`+srv.URL+`/channels/{channel_id}", "method": "GET", "token": "true"}]`)
	outPath := filepath.Join(dir, "results.json")

	setViper(t, map[string]any{
		"config":     creds,
		"urls":       urls,
		"aiohttp":    true,
		"tls":        false,
		"output":     outPath,
		"params":     []string{"channel_id=12345"},
		"log_format": "text",
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	if err := rootCmd.RunE(rootCmd, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}
	printed := out.String()
	for _, want := range []string{"Testing URL:", "/channels/12345", "AIOHTTP Response (200):", "Tested 1 endpoint(s)", "Results saved to"} {
		if !strings.Contains(printed, want) {
			t.Fatalf("output missing %q:\n%s", want, printed)
		}
	}

	saved, err := report.LoadJSON(outPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(saved) != 1 || saved[0].BackendAResponse == nil {
		t.Fatalf("saved = %+v", saved)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(*saved[0].BackendAResponse), &body); err != nil || body["channel"] != "12345" {
		t.Fatalf("body = %q (%v)", *saved[0].BackendAResponse, err)
	}
	if saved[0].BackendBStatus != nil {
		t.Fatalf("backend B was not selected")
	}
}

func TestRootCommand_PositionalParamsExtendFlag(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	creds := writeFile(t, dir, "config.yaml", "token: tok\n")
	urls := writeFile(t, dir, "urls.json", `[{"url": "`+srv.URL+`/{a}/{b}", "method": "DELETE"}]`)
	setViper(t, map[string]any{
		"config":     creds,
		"urls":       urls,
		"aiohttp":    false,
		"tls":        true,
		"output":     "",
		"params":     []string{"a=one"},
		"log_format": "text",
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	if err := rootCmd.RunE(rootCmd, []string{"b=two"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p, _ := gotPath.Load().(string); p != "/one/two" {
		t.Fatalf("path = %q", p)
	}
	if !strings.Contains(out.String(), "TLS Client Response (204):") || !strings.Contains(out.String(), "No content") {
		t.Fatalf("output:\n%s", out.String())
	}
}
