package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// ServeConfig configures the read-only inspection service.
// Precedence: CLI flags > Environment variables > Defaults
type ServeConfig struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// ServeOverrides holds command-line flag overrides for the service.
type ServeOverrides struct {
	Port                  *string
	RateLimitRPS          *float64
	RateLimitBurst        *int
	DisableRequestLogging bool
}

// LoadServe resolves the service configuration.
func LoadServe(lookup env.LookupFunc, overrides *ServeOverrides) (ServeConfig, error) {
	cfg := defaultServeConfig()
	reader := env.New(lookup)

	applyServeEnv(&cfg, reader)

	if overrides != nil {
		applyServeOverrides(&cfg, overrides)
	}

	if err := validateServeConfig(cfg); err != nil {
		return ServeConfig{}, err
	}
	return cfg, nil
}

func defaultServeConfig() ServeConfig {
	return ServeConfig{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// applyServeEnv applies environment variables. Unparsable values are ignored.
func applyServeEnv(cfg *ServeConfig, reader *env.Reader) {
	if port, ok := reader.Lookup("PORT"); ok && strings.TrimSpace(port) != "" {
		cfg.Port = strings.TrimSpace(port)
	}

	if rps, ok := reader.Lookup("RATE_LIMIT_RPS"); ok {
		if value, err := strconv.ParseFloat(strings.TrimSpace(rps), 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst, ok := reader.Lookup("RATE_LIMIT_BURST"); ok {
		if value, err := strconv.Atoi(strings.TrimSpace(burst)); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

func applyServeOverrides(cfg *ServeConfig, overrides *ServeOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.DisableRequestLogging {
		cfg.EnableRequestLogging = false
	}
}

func validateServeConfig(cfg ServeConfig) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port must not be empty")
	}
	return nil
}
