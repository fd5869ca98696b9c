package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

// Mask replaces redacted values and prompt fragments.
const Mask = "[REDACTED]"

// Redactor masks secrets in log values.
type Redactor struct {
	patterns        []*redactPattern
	patternsEnabled bool
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey       = "api_key"
	PatternGoogleAPIKey = "google_api_key"
	PatternEmail        = "email"
	PatternBearerToken  = "bearer_token"
	PatternPassword     = "password"
	PatternAWSKey       = "aws_access_key"
)

var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternAPIKey, `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:=]\s*[a-zA-Z0-9]+)`, "sk-***"},
	{PatternGoogleAPIKey, `AIza[0-9A-Za-z_\-]{20,}`, "AIza***"},
	{PatternAWSKey, `\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`, "AKIA***"},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "***@***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternPassword, `(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***"},
}

// sensitiveKeys are attribute keys whose values are never logged.
var sensitiveKeys = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization", "private_key",
	"prompt", "negative_prompt",
}

// NewRedactor creates a redactor with the default and custom patterns.
// Invalid custom patterns are skipped.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{patternsEnabled: true}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString applies the patterns to value.
func (r *Redactor) RedactString(value string) string {
	if !r.patternsEnabled || value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr redacts one attribute, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr, fragments []string) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, Mask)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.scrub(v.String(), fragments))
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga, fragments)
		}
		return slog.Group(a.Key, out...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.String(a.Key, r.scrub(x.Error(), fragments))
		case fmt.Stringer:
			return slog.String(a.Key, r.scrub(x.String(), fragments))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// scrub masks prompt fragments, then applies the patterns.
func (r *Redactor) scrub(s string, fragments []string) string {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			s = strings.ReplaceAll(s, f, Mask)
		}
	}
	return r.RedactString(s)
}

func isSensitiveKey(key string) bool {
	lower := strings.ReplaceAll(strings.ToLower(key), "-", "_")
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
