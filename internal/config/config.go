package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
	"github.com/archesproject/arches-rdm-example-project/internal/secrets"
	"github.com/archesproject/arches-rdm-example-project/internal/storage"
)

const (
	packageSettingsFile = "package_settings.yaml"
	localSettingsFile   = "settings_local.yaml"
	dotenvFile          = ".env"

	layerFramework = "framework"
	layerProject   = "project"
)

// CLIOverrides holds command-line flag overrides. Empty fields fall back to
// paths derived from the app root.
type CLIOverrides struct {
	AppRoot         string
	RootDir         string
	EnvFile         string
	PackageSettings string
	LocalSettings   string
}

// Result is the outcome of one resolution pass.
type Result struct {
	Settings  Settings
	Namespace Namespace
	// Sources lists every value read from the environment or secret store.
	Sources []env.Value
	// Layers names the layers applied, lowest precedence first.
	Layers []string
	// Untyped lists override keys whose values do not fit their typed field.
	// Namespace keeps the override; Settings keeps the project value.
	Untyped []string
}

// LoadOption configures Load.
type LoadOption func(*loader)

// WithLookup replaces the process environment, primarily for tests.
func WithLookup(lookup env.LookupFunc) LoadOption {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// WithSecretsClientFactory overrides how the secret store client is built.
func WithSecretsClientFactory(factory secrets.ClientFactory) LoadOption {
	return func(l *loader) {
		l.secretsClient = factory
	}
}

// WithMemorySource overrides the available-memory source used for S3 sizing.
func WithMemorySource(measure storage.MemorySource) LoadOption {
	return func(l *loader) {
		l.memorySource = measure
	}
}

// WithLogger sets the logger used during resolution.
func WithLogger(logger *zap.Logger) LoadOption {
	return func(l *loader) {
		l.logger = logger
	}
}

type loader struct {
	lookup        env.LookupFunc
	secretsClient secrets.ClientFactory
	memorySource  storage.MemorySource
	logger        *zap.Logger
}

// Load resolves the settings namespace with precedence:
// local override file > package override file > project values > framework defaults.
// Project values come from the environment (a dotenv file sits beneath the
// process environment), the secret store and the storage selector.
func Load(ctx context.Context, overrides *CLIOverrides, opts ...LoadOption) (*Result, error) {
	l := loader{
		lookup:        os.LookupEnv,
		secretsClient: secrets.NewAWSClient,
		memorySource:  storage.SystemMemory,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&l)
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	paths, err := resolvePaths(*overrides)
	if err != nil {
		return nil, err
	}

	dotenv, err := env.LoadDotenv(paths.EnvFile)
	if err != nil {
		return nil, err
	}
	reader := env.New(env.WithFallback(l.lookup, dotenv))

	values, err := l.resolve(ctx, reader, paths.AppRoot, paths.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve environment: %w", err)
	}

	base := frameworkDefaults(paths.RootDir)
	ns, err := toNamespace(base)
	if err != nil {
		return nil, err
	}
	project, err := toNamespace(projectSettings(base, values))
	if err != nil {
		return nil, err
	}

	layers := []Layer{{Name: layerProject, Values: project}}
	for _, path := range []string{paths.PackageSettings, paths.LocalSettings} {
		layer, ok, err := readOverrideFile(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			l.logger.Debug("override file not present", zap.String("path", path))
			continue
		}
		layers = append(layers, Layer{Name: path, Values: layer})
	}

	applied := []string{layerFramework}
	var typed Namespace
	for _, layer := range layers {
		ns.Apply(layer.Values)
		applied = append(applied, layer.Name)
		if layer.Name == layerProject {
			typed = maps.Clone(ns)
		}
	}

	settings, untyped, err := ns.Settings(typed)
	if err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}
	for _, key := range untyped {
		l.logger.Warn("override does not fit the typed setting, keeping it untyped",
			zap.String("setting", key),
		)
	}
	if err := validateConfig(settings); err != nil {
		return nil, err
	}

	return &Result{
		Settings:  settings,
		Namespace: ns,
		Sources:   reader.Trace(),
		Layers:    applied,
		Untyped:   untyped,
	}, nil
}

func resolvePaths(o CLIOverrides) (CLIOverrides, error) {
	if o.AppRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return CLIOverrides{}, fmt.Errorf("determine app root: %w", err)
		}
		o.AppRoot = wd
	}
	appRoot, err := filepath.Abs(o.AppRoot)
	if err != nil {
		return CLIOverrides{}, fmt.Errorf("resolve app root: %w", err)
	}
	o.AppRoot = appRoot

	if o.RootDir == "" {
		o.RootDir = appRoot
	}
	if o.RootDir, err = filepath.Abs(o.RootDir); err != nil {
		return CLIOverrides{}, fmt.Errorf("resolve root dir: %w", err)
	}
	if o.EnvFile == "" {
		o.EnvFile = filepath.Join(appRoot, dotenvFile)
	}
	if o.PackageSettings == "" {
		o.PackageSettings = filepath.Join(appRoot, packageSettingsFile)
	}
	if o.LocalSettings == "" {
		o.LocalSettings = filepath.Join(appRoot, localSettingsFile)
	}
	return o, nil
}

// validateConfig validates the final settings.
func validateConfig(s Settings) error {
	var errs []string

	if _, ok := s.Databases["default"]; !ok {
		errs = append(errs, "DATABASES must define a default connection")
	}
	for _, host := range s.ElasticsearchHosts {
		if host.Port < 1 || host.Port > 65535 {
			errs = append(errs, fmt.Sprintf("ELASTICSEARCH_HOSTS port %d out of range", host.Port))
		}
	}
	if s.WebpackDevelopmentServerPort < 1 || s.WebpackDevelopmentServerPort > 65535 {
		errs = append(errs, "WEBPACK_DEVELOPMENT_SERVER_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(s.LanguageCode) == "" {
		errs = append(errs, "LANGUAGE_CODE must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
