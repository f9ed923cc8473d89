package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Namespace maps top-level setting names to their values. It is the unit of
// override layering: a later layer replaces a colliding key wholesale, nested
// values are never merged.
type Namespace map[string]any

// Layer is one named set of top-level settings.
type Layer struct {
	Name   string
	Values Namespace
}

func toNamespace(s Settings) (Namespace, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	ns := Namespace{}
	if err := yaml.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("decode settings namespace: %w", err)
	}
	return ns, nil
}

// Apply overlays layer onto ns, last write wins per key.
func (ns Namespace) Apply(layer Namespace) {
	for k, v := range layer {
		ns[k] = v
	}
}

// Settings decodes the namespace into the typed settings. A value whose shape
// does not fit its field is taken from fallback instead, or left zero when
// fallback has no usable value, and its key is returned in untyped. The
// namespace itself is not modified.
func (ns Namespace) Settings(fallback Namespace) (s Settings, untyped []string, err error) {
	view := make(map[string]any, len(ns))
	for _, key := range slices.Sorted(maps.Keys(ns)) {
		value := ns[key]
		fits, err := fitsSettings(key, value)
		if err != nil {
			return Settings{}, nil, err
		}
		if fits {
			view[key] = value
			continue
		}
		untyped = append(untyped, key)
		if prev, ok := fallback[key]; ok {
			if fits, _ := fitsSettings(key, prev); fits {
				view[key] = prev
			}
		}
	}

	data, err := yaml.Marshal(view)
	if err != nil {
		return Settings{}, nil, fmt.Errorf("encode namespace: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, nil, fmt.Errorf("decode namespace: %w", err)
	}
	return s, untyped, nil
}

// fitsSettings reports whether value decodes into the field named key.
// Unknown keys always fit; they land in Settings.Extra.
func fitsSettings(key string, value any) (bool, error) {
	data, err := yaml.Marshal(map[string]any{key: value})
	if err != nil {
		return false, fmt.Errorf("encode setting %s: %w", key, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return false, nil
		}
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// readOverrideFile loads an optional override layer. ok is false when the
// file does not exist.
func readOverrideFile(path string) (layer Namespace, ok bool, err error) {
	if path == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read override file %s: %w", path, err)
	}

	layer = Namespace{}
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, false, fmt.Errorf("parse override file %s: %w", path, err)
	}
	return layer, true, nil
}
