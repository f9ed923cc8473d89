package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// ModeEnv keeps credentials from the environment.
	ModeEnv = "ENV"
	// ModeAWS injects credentials from AWS Secrets Manager.
	ModeAWS = "AWS"

	defaultRegion = "us-west-1"
)

var (
	// ErrMissingField is returned when a secret payload lacks a credential field.
	ErrMissingField = errors.New("secret is missing a required field")
	// ErrNoSecretString is returned when a secret has no string payload.
	ErrNoSecretString = errors.New("secret has no string value")
)

// Client fetches the string payload of a secret by identifier.
type Client interface {
	SecretString(ctx context.Context, secretID string) (string, error)
}

// ClientFactory builds a Client for a region.
type ClientFactory func(ctx context.Context, region string) (Client, error)

// Bundle is a set of connection credentials fetched as one unit.
type Bundle struct {
	User     string
	Password string
	Host     string
	Port     string
}

// Credentials are the database and search-engine bundles a deployment needs.
// Region is set only in ModeAWS.
type Credentials struct {
	Database Bundle
	Search   Bundle
	Region   string
}

type secretPayload struct {
	User     *string      `json:"user"`
	Password *string      `json:"password"`
	Host     *string      `json:"host"`
	Port     *json.Number `json:"port"`
}

// decodeBundle parses a secret payload. requirePort is false for the
// search-engine secret, whose port is never applied.
func decodeBundle(raw string, requirePort bool) (Bundle, error) {
	var p secretPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Bundle{}, fmt.Errorf("decode secret: %w", err)
	}

	switch {
	case p.User == nil:
		return Bundle{}, fmt.Errorf("%w: user", ErrMissingField)
	case p.Password == nil:
		return Bundle{}, fmt.Errorf("%w: password", ErrMissingField)
	case p.Host == nil:
		return Bundle{}, fmt.Errorf("%w: host", ErrMissingField)
	case requirePort && p.Port == nil:
		return Bundle{}, fmt.Errorf("%w: port", ErrMissingField)
	}

	b := Bundle{User: *p.User, Password: *p.Password, Host: *p.Host}
	if p.Port != nil {
		b.Port = p.Port.String()
	}
	return b, nil
}
