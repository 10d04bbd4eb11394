package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/apiprobe/internal/common"
	"github.com/loykin/apiprobe/internal/util"
)

// EndpointSpec describes one request to issue. It is read-only after loading.
type EndpointSpec struct {
	URL           string         `mapstructure:"url" json:"url"`
	Method        string         `mapstructure:"method" json:"method"`
	Payload       map[string]any `mapstructure:"payload" json:"payload"`
	RequiresToken bool           `mapstructure:"token" json:"token"`
}

// tokenFlagHook turns the endpoint file's "true"/"false" token strings into a bool.
// Only the literal "true" (any case) enables the token; other strings disable it.
func tokenFlagHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
		return data, nil
	}
	return strings.EqualFold(strings.TrimSpace(data.(string)), "true"), nil
}

func decodeEndpoint(raw any) (EndpointSpec, error) {
	var ep EndpointSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       tokenFlagHook,
		WeaklyTypedInput: true,
		Result:           &ep,
	})
	if err != nil {
		return EndpointSpec{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return EndpointSpec{}, err
	}
	if strings.TrimSpace(ep.URL) == "" {
		return EndpointSpec{}, fmt.Errorf("missing url")
	}
	if len(ep.Payload) == 0 {
		ep.Payload = nil
	}
	return ep, nil
}

// ReadEndpoints parses the endpoint list. The file must hold a JSON array;
// elements that cannot be decoded are skipped with a warning.
func ReadEndpoints(path string) ([]EndpointSpec, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path is provided by the user on the command line
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoints file %s: %w", clean, err)
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse endpoints file %s: %w", clean, err)
	}

	logger := common.GetLogger().WithComponent("config")
	out := make([]EndpointSpec, 0, len(raw))
	for i, item := range raw {
		ep, err := decodeEndpoint(item)
		if err != nil {
			logger.Warn("skipping endpoint entry", "index", i, "error", err)
			continue
		}
		out = append(out, ep)
	}
	return out, nil
}

// LoadEndpoints is the fail-soft variant of ReadEndpoints: any error yields an empty list.
func LoadEndpoints(path string) []EndpointSpec {
	eps, err := ReadEndpoints(path)
	if err != nil {
		common.GetLogger().WithComponent("config").Debug("endpoints unavailable", "error", err)
		return nil
	}
	return eps
}

// Filter keeps endpoints whose URL contains any include substring (when include is set),
// then drops those whose URL contains any exclude substring. Order is preserved.
func Filter(endpoints []EndpointSpec, include, exclude []string) []EndpointSpec {
	out := make([]EndpointSpec, 0, len(endpoints))
	for _, ep := range endpoints {
		if len(include) > 0 && !util.ContainsAny(ep.URL, include) {
			continue
		}
		if len(exclude) > 0 && util.ContainsAny(ep.URL, exclude) {
			continue
		}
		out = append(out, ep)
	}
	return out
}
