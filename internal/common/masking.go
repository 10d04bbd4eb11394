package common

import (
	"strings"
	"sync"
)

// MaskedValue replaces anything the masker decides is sensitive.
const MaskedValue = "***MASKED***"

// DefaultSensitiveKeys are attribute keys whose values are always masked (case-insensitive).
var DefaultSensitiveKeys = []string{"authorization", "token", "access_token", "auth_token"}

// Masker scrubs the authorization token out of log output. It masks whole
// values for sensitive keys and any literal occurrence of a registered secret.
type Masker struct {
	mu      sync.RWMutex
	keys    map[string]struct{}
	secrets []string
	enabled bool
}

// NewMasker creates a new masker with the default sensitive keys
func NewMasker() *Masker {
	m := &Masker{keys: map[string]struct{}{}, enabled: true}
	for _, k := range DefaultSensitiveKeys {
		m.keys[k] = struct{}{}
	}
	return m
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddKey marks an attribute key as sensitive.
func (m *Masker) AddKey(key string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = struct{}{}
}

// AddSecret registers a literal value that must never reach the logs.
func (m *Masker) AddSecret(secret string) {
	if strings.TrimSpace(secret) == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets = append(m.secrets, secret)
}

// MaskString replaces every registered secret found in input
func (m *Masker) MaskString(input string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return input
	}
	for _, s := range m.secrets {
		input = strings.ReplaceAll(input, s, MaskedValue)
	}
	return input
}

// MaskValue masks a value based on its key, falling back to secret scrubbing for strings.
func (m *Masker) MaskValue(key string, value any) any {
	if !m.IsEnabled() {
		return value
	}

	m.mu.RLock()
	_, sensitive := m.keys[strings.ToLower(key)]
	m.mu.RUnlock()
	if sensitive {
		return MaskedValue
	}

	switch v := value.(type) {
	case string:
		return m.MaskString(v)
	case error:
		return m.MaskString(v.Error())
	default:
		return value
	}
}

// Global masker instance
var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// RegisterSecret adds a secret to the global masker.
func RegisterSecret(secret string) {
	globalMasker.AddSecret(secret)
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}
