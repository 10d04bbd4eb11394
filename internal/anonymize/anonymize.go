// Package anonymize redacts personally identifying fields in decoded JSON documents.
package anonymize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/loykin/apiprobe/internal/constants"
)

const (
	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	hexSet  = "abcdef0123456789"
)

// rule computes the replacement for a matched field from its original value.
type rule func(a *Anonymizer, original any) any

// fieldRules is matched against object keys exactly and case-sensitively.
var fieldRules = map[string]rule{
	"id":            sameLengthDigits,
	"phone":         sameLengthDigits,
	"discriminator": sameLengthDigits,
	"username":      randomHandle,
	"global_name":   randomHandle,
	"email":         randomEmail,
	"name":          fixed(constants.AnonymizedName),
	"icon":          randomHash,
	"banner":        randomHash,
	"locale":        fixed(constants.AnonymizedLocale),
}

func sameLengthDigits(a *Anonymizer, original any) any {
	return a.pick(digits, utf8.RuneCountInString(stringify(original)))
}

func randomHandle(a *Anonymizer, _ any) any {
	return a.pick(letters, constants.AnonymizedHandleLen)
}

func randomEmail(a *Anonymizer, _ any) any {
	return a.pick(letters, constants.AnonymizedEmailLen) + constants.AnonymizedEmailDomain
}

func randomHash(a *Anonymizer, _ any) any {
	return a.pick(hexSet, constants.AnonymizedHashLen)
}

func fixed(v string) rule {
	return func(*Anonymizer, any) any { return v }
}

// Anonymizer replaces sensitive field values with random or fixed substitutes.
// It is not safe for concurrent use.
type Anonymizer struct {
	rnd *rand.Rand
}

// New returns an Anonymizer drawing randomness from src. A nil src uses a time-seeded PCG.
func New(src rand.Source) *Anonymizer {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &Anonymizer{rnd: rand.New(src)}
}

func (a *Anonymizer) pick(alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[a.rnd.IntN(len(alphabet))])
	}
	return b.String()
}

// Anonymize returns a copy of node with the recognised fields replaced.
// Arrays are processed element-wise; values of other keys and scalars are kept as-is.
func (a *Anonymizer) Anonymize(node any) any {
	switch t := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			if r, ok := fieldRules[k]; ok {
				out[k] = r(a, v)
				continue
			}
			out[k] = v
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = a.Anonymize(v)
		}
		return out
	default:
		return node
	}
}

// ErrNotJSON is returned by AnonymizeJSON when the body is not a single JSON document.
var ErrNotJSON = errors.New("response body is not valid JSON")

// AnonymizeJSON decodes body, anonymizes it and encodes it back to compact JSON.
// Numbers are preserved exactly as they appeared in the input.
func (a *Anonymizer) AnonymizeJSON(body string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return body, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return body, fmt.Errorf("%w: trailing data after document", ErrNotJSON)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a.Anonymize(doc)); err != nil {
		return body, fmt.Errorf("encode anonymized body: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// stringify renders a decoded JSON value the way its length is measured for
// same-length replacements.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e18 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
