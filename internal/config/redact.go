package config

import (
	"net/url"
	"strings"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

const redacted = "********"

// Redact returns a deep copy of ns with credentials masked.
func Redact(ns Namespace) Namespace {
	out := make(Namespace, len(ns))
	for k, v := range ns {
		out[k] = redactValue(k, v)
	}
	return out
}

// RedactSources masks the values of credential variables.
func RedactSources(values []env.Value) []env.Value {
	out := make([]env.Value, len(values))
	for i, v := range values {
		if sensitive(v.Name) {
			v.Value = redacted
		}
		out[i] = v
	}
	return out
}

func redactValue(key string, v any) any {
	if sensitive(key) {
		return redacted
	}
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = redactValue(k, inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = redactValue("", inner)
		}
		return s
	case string:
		if strings.HasSuffix(strings.ToUpper(key), "_URL") {
			return redactURL(val)
		}
	}
	return v
}

func sensitive(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, "PASSWORD") ||
		strings.Contains(upper, "SECRET_KEY") ||
		strings.HasSuffix(upper, "_PASS") ||
		upper == "BASIC_AUTH"
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
