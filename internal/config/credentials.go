package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/apiprobe/internal/common"
	"gopkg.in/yaml.v3"
)

// Credentials is the content of the credentials file.
type Credentials struct {
	Token   string     `yaml:"token"`
	Include StringList `yaml:"include"`
	Exclude StringList `yaml:"exclude"`
}

// HasToken reports whether a usable token was loaded.
func (c Credentials) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// StringList is a YAML sequence of strings that also accepts a scalar.
// The scalars false, none, null, ~ and the empty string decode to an empty list,
// which lets "exclude: false" disable exclusion. Any other scalar is a one-item list.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	case yaml.ScalarNode:
		if isDisableMarker(value) {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	default:
		return fmt.Errorf("line %d: expected a sequence of strings", value.Line)
	}
}

func isDisableMarker(n *yaml.Node) bool {
	if n.Tag == "!!null" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(n.Value)) {
	case "", "false", "none", "null", "~":
		return true
	}
	return false
}

// ReadCredentials parses the credentials file and reports any failure.
func ReadCredentials(path string) (Credentials, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path is provided by the user on the command line
	data, err := os.ReadFile(clean)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file %s: %w", clean, err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials file %s: %w", clean, err)
	}
	c.Token = strings.TrimSpace(c.Token)
	return c, nil
}

// LoadCredentials is the fail-soft variant of ReadCredentials: any error yields
// zero Credentials, which the caller detects through HasToken.
func LoadCredentials(path string) Credentials {
	c, err := ReadCredentials(path)
	if err != nil {
		common.GetLogger().WithComponent("config").Debug("credentials unavailable", "error", err)
		return Credentials{}
	}
	common.RegisterSecret(c.Token)
	return c
}
