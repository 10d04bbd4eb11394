package config

import (
	"path/filepath"
	"testing"
)

func TestLoadEndpoints(t *testing.T) {
	p := writeFile(t, t.TempDir(), "urls.json", `[
  {"url": "https://api.example.com/{id}", "method": "GET", "payload": null, "token": "true"},
  {"url": "https://api.example.com/post", "method": "post", "payload": {"content": "{content}"}, "token": "false"},
  {"url": "https://api.example.com/bool", "method": "DELETE", "payload": {}, "token": true},
  {"url": "https://api.example.com/odd", "method": "GET", "token": "yes"}
]`)
	eps := LoadEndpoints(p)
	if len(eps) != 4 {
		t.Fatalf("expected 4 endpoints, got %d", len(eps))
	}

	if eps[0].URL != "https://api.example.com/{id}" || eps[0].Method != "GET" || eps[0].Payload != nil || !eps[0].RequiresToken {
		t.Fatalf("endpoint 0 mismatch: %#v", eps[0])
	}
	if eps[1].RequiresToken || eps[1].Payload["content"] != "{content}" || eps[1].Method != "post" {
		t.Fatalf("endpoint 1 mismatch: %#v", eps[1])
	}
	if !eps[2].RequiresToken || eps[2].Payload != nil {
		t.Fatalf("endpoint 2 mismatch: %#v", eps[2])
	}
	if eps[3].RequiresToken {
		t.Fatalf("only the literal \"true\" enables the token: %#v", eps[3])
	}
}

func TestLoadEndpoints_SkipsBrokenEntries(t *testing.T) {
	p := writeFile(t, t.TempDir(), "urls.json", `[
  {"method": "GET"},
  {"url": "https://ok.example.com", "method": "GET", "payload": "text"},
  "not an object",
  {"url": "https://ok.example.com/b", "method": "GET"}
]`)
	eps := LoadEndpoints(p)
	if len(eps) != 1 || eps[0].URL != "https://ok.example.com/b" {
		t.Fatalf("expected only the valid entry, got %#v", eps)
	}
}

func TestLoadEndpoints_FailSoft(t *testing.T) {
	dir := t.TempDir()
	if eps := LoadEndpoints(filepath.Join(dir, "missing.json")); len(eps) != 0 {
		t.Fatalf("missing file should yield empty list, got %#v", eps)
	}
	obj := writeFile(t, dir, "obj.json", `{"url": "x"}`)
	if eps := LoadEndpoints(obj); len(eps) != 0 {
		t.Fatalf("non-array file should yield empty list, got %#v", eps)
	}
	if _, err := ReadEndpoints(obj); err == nil {
		t.Fatal("ReadEndpoints should report the parse error")
	}
	empty := writeFile(t, dir, "empty.json", `[]`)
	if eps := LoadEndpoints(empty); len(eps) != 0 {
		t.Fatalf("expected empty list, got %#v", eps)
	}
}

func TestFilter(t *testing.T) {
	eps := []EndpointSpec{
		{URL: "https://example.com/a", Method: "GET"},
		{URL: "https://other.com/b", Method: "GET"},
	}

	included := Filter(eps, []string{"example.com"}, nil)
	if len(included) != 1 || included[0].URL != "https://example.com/a" {
		t.Fatalf("include filter mismatch: %#v", included)
	}

	final := Filter(included, nil, []string{"/a"})
	if len(final) != 0 {
		t.Fatalf("exclude filter should remove the remaining endpoint: %#v", final)
	}

	if both := Filter(eps, []string{"example.com"}, []string{"/a"}); len(both) != 0 {
		t.Fatalf("combined filter mismatch: %#v", both)
	}

	if all := Filter(eps, nil, nil); len(all) != 2 || all[0].URL != eps[0].URL || all[1].URL != eps[1].URL {
		t.Fatalf("no filters should keep everything in order: %#v", all)
	}
}
