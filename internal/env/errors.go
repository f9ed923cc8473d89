package env

import (
	"errors"
	"fmt"
)

// ErrImproperlyConfigured is matched by every ConfigurationError.
var ErrImproperlyConfigured = errors.New("improperly configured")

// ConfigurationError reports a required variable that is absent or a present
// variable whose value cannot be converted to the expected type.
type ConfigurationError struct {
	Name string
	// Err is the conversion failure, nil when the variable is missing.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid value for the %s environment variable: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("Set the %s environment variable", e.Name)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrImproperlyConfigured, e.Err}
	}
	return []error{ErrImproperlyConfigured}
}
