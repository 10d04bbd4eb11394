package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCredentials_Full(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yaml", `
token: "  abc.def  "
include:
  - example.com
exclude:
  - /admin
  - /logout
`)
	c := LoadCredentials(p)
	if !c.HasToken() || c.Token != "abc.def" {
		t.Fatalf("unexpected token %q", c.Token)
	}
	if !reflect.DeepEqual([]string(c.Include), []string{"example.com"}) {
		t.Fatalf("include = %#v", c.Include)
	}
	if !reflect.DeepEqual([]string(c.Exclude), []string{"/admin", "/logout"}) {
		t.Fatalf("exclude = %#v", c.Exclude)
	}
}

func TestLoadCredentials_ExcludeDisableMarkers(t *testing.T) {
	for _, marker := range []string{"false", "False", "none", "null", "~", `""`} {
		t.Run(marker, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yaml", "token: t\nexclude: "+marker+"\n")
			c, err := ReadCredentials(p)
			if err != nil {
				t.Fatalf("ReadCredentials: %v", err)
			}
			if len(c.Exclude) != 0 {
				t.Fatalf("expected no exclusions for %s, got %#v", marker, c.Exclude)
			}
		})
	}
}

func TestLoadCredentials_ScalarExcludeIsSingleItem(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yaml", "token: t\nexclude: /a\n")
	c := LoadCredentials(p)
	if !reflect.DeepEqual([]string(c.Exclude), []string{"/a"}) {
		t.Fatalf("exclude = %#v", c.Exclude)
	}
}

func TestLoadCredentials_FailSoft(t *testing.T) {
	dir := t.TempDir()

	if c := LoadCredentials(filepath.Join(dir, "missing.yaml")); c.HasToken() || len(c.Include) != 0 {
		t.Fatalf("missing file should yield zero credentials, got %#v", c)
	}

	bad := writeFile(t, dir, "bad.yaml", "token: [unclosed\n")
	if c := LoadCredentials(bad); c.HasToken() {
		t.Fatalf("unparseable file should yield no token, got %#v", c)
	}
	if _, err := ReadCredentials(bad); err == nil {
		t.Fatal("ReadCredentials should report the parse error")
	}

	mapExclude := writeFile(t, dir, "map.yaml", "token: t\nexclude:\n  a: b\n")
	if c := LoadCredentials(mapExclude); c.HasToken() {
		t.Fatalf("mapping exclude is a parse error, got %#v", c)
	}

	noToken := writeFile(t, dir, "notoken.yaml", "include: [x]\n")
	if c := LoadCredentials(noToken); c.HasToken() {
		t.Fatal("file without token must not report a token")
	}
}
