package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/apiprobe/internal/constants"
	"github.com/loykin/apiprobe/internal/dispatch"
)

// UnsupportedFormatMessage is returned by Save for paths not ending in .json or .txt.
const UnsupportedFormatMessage = "Unsupported file format. Please use .json or .txt."

// Save writes outcomes to path, choosing the format from its suffix, and returns
// a message describing what happened. Failures are reported in the message.
func Save(outcomes []dispatch.Outcome, path string) string {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasSuffix(path, ".json"):
		data, err = encodeJSON(outcomes)
	case strings.HasSuffix(path, ".txt"):
		data = encodeText(outcomes)
	default:
		return UnsupportedFormatMessage
	}
	if err == nil {
		err = os.WriteFile(filepath.Clean(path), data, 0o600)
	}
	if err != nil {
		return fmt.Sprintf("Error saving results to file: %v", err)
	}
	return fmt.Sprintf("Results saved to %s", path)
}

func encodeJSON(outcomes []dispatch.Outcome) ([]byte, error) {
	if outcomes == nil {
		outcomes = []dispatch.Outcome{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(outcomes); err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeText(outcomes []dispatch.Outcome) []byte {
	var b strings.Builder
	sep := strings.Repeat("=", constants.TxtSeparatorWidth)
	for _, o := range outcomes {
		fmt.Fprintf(&b, "URL: %s\n", o.URL)
		fmt.Fprintf(&b, "Method: %s\n", o.Method)
		for _, r := range o.Results(constants.BackendAName, constants.BackendBName) {
			if r.Body == "" {
				continue
			}
			fmt.Fprintf(&b, "%s Response: %s\n", BackendLabel(r.Name), r.Body)
		}
		b.WriteString(sep + "\n")
	}
	return []byte(b.String())
}

// LoadJSON reads a results file written by Save.
func LoadJSON(path string) ([]dispatch.Outcome, error) {
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read results file %s: %w", path, err)
	}
	var out []dispatch.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}
	return out, nil
}
