package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loykin/apiprobe/internal/dispatch"
)

func ptr[T any](v T) *T { return &v }

func TestDisplayBody(t *testing.T) {
	long := strings.Repeat("a", 150)
	tests := []struct {
		name   string
		status int
		body   string
		full   bool
		want   string
	}{
		{"short body", 200, "hello", false, "hello"},
		{"exact limit", 200, strings.Repeat("b", 100), false, strings.Repeat("b", 100)},
		{"truncated", 200, long, false, strings.Repeat("a", 100) + "..."},
		{"full", 200, long, true, long},
		{"no content 200", 200, "", false, "No content"},
		{"no content 204", 204, "  ", true, "No content"},
		{"empty non-2xx", 404, "", false, ""},
		{"multibyte", 200, strings.Repeat("é", 101), false, strings.Repeat("é", 100) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayBody(tt.status, tt.body, tt.full); got != tt.want {
				t.Fatalf("DisplayBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsole_Outcome(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Outcome(dispatch.Outcome{
		URL:              "https://api.example.com/42",
		Method:           "GET",
		BackendAResponse: ptr(strings.Repeat("x", 120)),
		BackendAStatus:   ptr(200),
		BackendBResponse: ptr(""),
		BackendBStatus:   ptr(204),
	})

	out := buf.String()
	for _, want := range []string{
		"Testing URL:",
		"https://api.example.com/42",
		"Method: GET",
		"AIOHTTP Response (200):",
		strings.Repeat("x", 100) + "...",
		"TLS Client Response (204):",
		"No content",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 101)) {
		t.Error("body should be truncated")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("no ANSI escapes expected when writing to a buffer")
	}
}

func TestConsole_SkipsUnselectedBackend(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).Outcome(dispatch.Outcome{
		URL:              "http://x",
		Method:           "POST",
		BackendBResponse: ptr("ok"),
		BackendBStatus:   ptr(201),
	})
	if strings.Contains(buf.String(), "AIOHTTP") {
		t.Fatalf("backend A did not run:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "TLS Client Response (201):") {
		t.Fatalf("missing backend B panel:\n%s", buf.String())
	}
}

func TestConsole_Messages(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Error("No token found, exiting...")
	c.Success("Results saved to out.json")
	out := buf.String()
	if !strings.Contains(out, "No token found, exiting...") || !strings.Contains(out, "Results saved to out.json") {
		t.Fatalf("unexpected output %q", out)
	}
}
