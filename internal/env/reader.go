package env

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Source identifies where a resolved value came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceDefault     Source = "default"
	SourceSecretStore Source = "secret_store"
)

// Value is a single resolved configuration value and its provenance.
type Value struct {
	Name   string `json:"name" yaml:"name"`
	Source Source `json:"source" yaml:"source"`
	Value  any    `json:"value" yaml:"value"`
}

// LookupFunc has the semantics of os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Reader resolves configuration values from an environment and records every
// value it hands out. It is meant for a single resolution pass and is not safe
// for concurrent use.
type Reader struct {
	lookup LookupFunc
	trace  []Value
}

// New returns a Reader backed by lookup. A nil lookup reads the process environment.
func New(lookup LookupFunc) *Reader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Reader{lookup: lookup}
}

// FromEnviron returns a Reader over an environ slice in "KEY=VALUE" form.
func FromEnviron(environ []string) *Reader {
	vars := ParseEnviron(environ)
	return New(MapLookup(vars))
}

// ParseEnviron converts an environ slice into a map. Entries are split on the
// first "=" so values may contain "="; entries without one are skipped.
func ParseEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, entry := range environ {
		idx := strings.Index(entry, "=")
		if idx == -1 {
			continue
		}
		out[entry[:idx]] = entry[idx+1:]
	}
	return out
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// WithFallback returns a LookupFunc that consults primary first and fallback
// only for names primary does not define.
func WithFallback(primary LookupFunc, fallback map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		if v, ok := primary(name); ok {
			return v, true
		}
		v, ok := fallback[name]
		return v, ok
	}
}

// LoadDotenv reads a dotenv file. A missing file yields an empty map.
func LoadDotenv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read dotenv file %s: %w", path, err)
	}
	return vars, nil
}

// Lookup returns the raw value without recording it.
func (r *Reader) Lookup(name string) (string, bool) {
	return r.lookup(name)
}

// Require returns the named variable or a ConfigurationError when it is absent.
// An empty but present variable is returned as is.
func (r *Reader) Require(name string) (string, error) {
	v, ok := r.lookup(name)
	if !ok {
		return "", &ConfigurationError{Name: name}
	}
	r.record(name, SourceEnvironment, v)
	return v, nil
}

// Optional returns the named variable, or def when it is absent.
func (r *Reader) Optional(name, def string) string {
	if v, ok := r.lookup(name); ok {
		r.record(name, SourceEnvironment, v)
		return v
	}
	r.record(name, SourceDefault, def)
	return def
}

// OptionalInt is Optional with integer conversion.
func (r *Reader) OptionalInt(name string, def int) (int, error) {
	raw, ok := r.lookup(name)
	if !ok {
		r.record(name, SourceDefault, def)
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ConfigurationError{Name: name, Err: err}
	}
	r.record(name, SourceEnvironment, v)
	return v, nil
}

// OptionalInt64 is Optional with 64-bit integer conversion. def is only
// evaluated when the variable is absent.
func (r *Reader) OptionalInt64(name string, def func() (int64, error)) (int64, error) {
	raw, ok := r.lookup(name)
	if !ok {
		v, err := def()
		if err != nil {
			return 0, fmt.Errorf("default for %s: %w", name, err)
		}
		r.record(name, SourceDefault, v)
		return v, nil
	}
	v, err := parseInt64(raw)
	if err != nil {
		return 0, &ConfigurationError{Name: name, Err: err}
	}
	r.record(name, SourceEnvironment, v)
	return v, nil
}

// parseInt64 accepts integers and finite decimals such as "4123456789.0",
// truncating the fraction.
func parseInt64(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%q is out of range", raw)
	}
	return int64(f), nil
}

// OptionalFlag reads a switch and never fails. An absent variable yields def,
// an empty one false. strconv.ParseBool spellings are honoured and any other
// non-empty value counts as set.
func (r *Reader) OptionalFlag(name string, def bool) bool {
	raw, ok := r.lookup(name)
	if !ok {
		r.record(name, SourceDefault, def)
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		v = strings.TrimSpace(raw) != ""
	}
	r.record(name, SourceEnvironment, v)
	return v
}

// Record notes a value resolved outside the environment, such as a
// credential injected from a secret store. It replaces an earlier entry of
// the same name so the trace shows where the final value came from.
func (r *Reader) Record(name string, source Source, value any) {
	r.record(name, source, value)
}

// Trace returns the resolved values in resolution order.
func (r *Reader) Trace() []Value {
	out := make([]Value, len(r.trace))
	copy(out, r.trace)
	return out
}

func (r *Reader) record(name string, source Source, value any) {
	v := Value{Name: name, Source: source, Value: value}
	for i := range r.trace {
		if r.trace[i].Name == name {
			r.trace[i] = v
			return
		}
	}
	r.trace = append(r.trace, v)
}
