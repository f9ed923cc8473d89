package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/archesproject/arches-rdm-example-project/internal/config"
	"github.com/archesproject/arches-rdm-example-project/internal/env"
)

func runCLI(t *testing.T, environ map[string]string, args ...string) (string, error) {
	t.Helper()

	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		t.Fatalf("failed to parse %v: %v", args, err)
	}

	var out bytes.Buffer
	err = c.execute(context.Background(), command, &out, zaptest.NewLogger(t),
		config.WithLookup(env.MapLookup(environ)),
	)
	return out.String(), err
}

func TestResolveIsDefaultCommand(t *testing.T) {
	appRoot := t.TempDir()

	out, err := runCLI(t, map[string]string{"PGPASSWORD": "hunter2"}, "--app-root", appRoot)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	var ns map[string]any
	if err := yaml.Unmarshal([]byte(out), &ns); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if ns["APP_NAME"] != "arches_rdm_example_project" {
		t.Fatalf("unexpected APP_NAME %v", ns["APP_NAME"])
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked into redacted output")
	}
}

func TestResolveJSONWithSecrets(t *testing.T) {
	appRoot := t.TempDir()

	out, err := runCLI(t, map[string]string{"PGPASSWORD": "hunter2"},
		"--app-root", appRoot, "resolve", "--format", "json", "--show-secrets")
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	var ns map[string]any
	if err := json.Unmarshal([]byte(out), &ns); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	db := ns["DATABASES"].(map[string]any)["default"].(map[string]any)
	if db["PASSWORD"] != "hunter2" {
		t.Fatalf("expected unredacted password, got %v", db["PASSWORD"])
	}
}

func TestResolveAppliesLocalOverrideFlag(t *testing.T) {
	appRoot := t.TempDir()
	local := filepath.Join(t.TempDir(), "local.yaml")
	if err := os.WriteFile(local, []byte("APP_TITLE: Staging\n"), 0o600); err != nil {
		t.Fatalf("failed to write override: %v", err)
	}

	out, err := runCLI(t, nil, "--app-root", appRoot, "--local-settings", local, "resolve")
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if !strings.Contains(out, "APP_TITLE: Staging") {
		t.Fatalf("expected override in output, got:\n%s", out)
	}
}

func TestWebpackCommand(t *testing.T) {
	appRoot := t.TempDir()

	out, err := runCLI(t, nil, "--app-root", appRoot, "webpack")
	if err != nil {
		t.Fatalf("webpack returned error: %v", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{
		"APP_ROOT",
		"ARCHES_APPLICATIONS",
		"PUBLIC_SERVER_ADDRESS",
		"ROOT_DIR",
		"STATIC_URL",
		"WEBPACK_DEVELOPMENT_SERVER_PORT",
	} {
		if _, ok := cfg[key]; !ok {
			t.Fatalf("missing key %s in %v", key, cfg)
		}
	}
	if len(cfg) != 6 {
		t.Fatalf("expected exactly six keys, got %d", len(cfg))
	}
}

func TestSourcesCommand(t *testing.T) {
	out, err := runCLI(t, map[string]string{"ESHOST": "search.internal"},
		"--app-root", t.TempDir(), "sources", "--format", "json")
	if err != nil {
		t.Fatalf("sources returned error: %v", err)
	}

	var values []env.Value
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	found := false
	for _, v := range values {
		if v.Name == "ESHOST" {
			found = v.Source == env.SourceEnvironment && v.Value == "search.internal"
		}
	}
	if !found {
		t.Fatalf("expected ESHOST from environment in %v", values)
	}
}

func TestMissingRequiredVariableFails(t *testing.T) {
	_, err := runCLI(t, map[string]string{"STORAGEBACKEND": "storages.backends.s3.S3Storage"},
		"--app-root", t.TempDir(), "resolve")
	if err == nil || !strings.Contains(err.Error(), "S3BUCKETNAME") {
		t.Fatalf("expected error naming S3BUCKETNAME, got %v", err)
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	c := newCLI()
	if _, err := c.app.Parse([]string{"resolve", "--format", "toml"}); err == nil {
		t.Fatalf("expected parse error for unsupported format")
	}
}

func TestServeOverrides(t *testing.T) {
	c := newCLI()
	if _, err := c.app.Parse([]string{"serve", "--port", "9000", "--rate-limit-rps", "0"}); err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	o := c.serveOverrides()
	if o.Port == nil || *o.Port != "9000" {
		t.Fatalf("expected port override")
	}
	if o.RateLimitRPS == nil || *o.RateLimitRPS != 0 {
		t.Fatalf("expected zero RPS override")
	}
	if o.RateLimitBurst != nil {
		t.Fatalf("expected burst to be left to the environment")
	}
}
