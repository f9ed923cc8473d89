package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/archesproject/arches-rdm-example-project/internal/application"
	"github.com/archesproject/arches-rdm-example-project/internal/config"
	"github.com/archesproject/arches-rdm-example-project/internal/logging"
)

var signalNotify = signal.Notify

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

type cli struct {
	app       *kingpin.Application
	overrides config.CLIOverrides
	logLevel  string

	resolveCmd  *kingpin.CmdClause
	format      string
	showSecrets bool

	sourcesCmd    *kingpin.CmdClause
	sourcesFormat string

	webpackCmd *kingpin.CmdClause

	serveCmd              *kingpin.CmdClause
	port                  string
	rateLimitRPS          float64
	rateLimitBurst        int
	disableRequestLogging bool
}

func newCLI() *cli {
	c := &cli{}
	c.app = kingpin.New("arches-settings", "Resolves the settings of the Arches RDM example project.")
	c.app.Flag("app-root", "Project package directory (defaults to the working directory).").StringVar(&c.overrides.AppRoot)
	c.app.Flag("root-dir", "Installed framework directory (defaults to the app root).").StringVar(&c.overrides.RootDir)
	c.app.Flag("env-file", "Dotenv file read beneath the process environment.").StringVar(&c.overrides.EnvFile)
	c.app.Flag("package-settings", "Package override file.").StringVar(&c.overrides.PackageSettings)
	c.app.Flag("local-settings", "Local override file.").StringVar(&c.overrides.LocalSettings)
	c.app.Flag("log-level", "Log level for this tool.").Default("info").Envar("LOG_LEVEL").StringVar(&c.logLevel)

	c.resolveCmd = c.app.Command("resolve", "Print the final settings namespace.").Default()
	c.resolveCmd.Flag("format", "Output format.").Default(formatYAML).EnumVar(&c.format, formatYAML, formatJSON)
	c.resolveCmd.Flag("show-secrets", "Print credentials unredacted.").BoolVar(&c.showSecrets)

	c.sourcesCmd = c.app.Command("sources", "Print where each environment-derived value came from.")
	c.sourcesCmd.Flag("format", "Output format.").Default(formatYAML).EnumVar(&c.sourcesFormat, formatYAML, formatJSON)

	c.webpackCmd = c.app.Command("webpack", "Print the front-end build configuration as JSON.")

	c.serveCmd = c.app.Command("serve", "Serve the resolved settings over a read-only HTTP API.")
	c.serveCmd.Flag("port", "HTTP port exposed by the service.").StringVar(&c.port)
	c.serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable).").Default("-1").Float64Var(&c.rateLimitRPS)
	c.serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter.").Default("-1").IntVar(&c.rateLimitBurst)
	c.serveCmd.Flag("no-request-log", "Disable access logging.").BoolVar(&c.disableRequestLogging)

	return c
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	logger, err := logging.New(c.logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := c.execute(context.Background(), command, os.Stdout, logger); err != nil {
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

// execute runs a parsed command. opts are passed through to config.Load.
func (c *cli) execute(ctx context.Context, command string, stdout io.Writer, logger *zap.Logger, opts ...config.LoadOption) error {
	opts = append([]config.LoadOption{config.WithLogger(logger)}, opts...)
	res, err := config.Load(ctx, &c.overrides, opts...)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	logger.Debug("settings resolved", zap.Strings("layers", res.Layers))

	switch command {
	case c.resolveCmd.FullCommand():
		ns := res.Namespace
		if !c.showSecrets {
			ns = config.Redact(ns)
		}
		return encode(stdout, c.format, ns)
	case c.sourcesCmd.FullCommand():
		return encode(stdout, c.sourcesFormat, config.RedactSources(res.Sources))
	case c.webpackCmd.FullCommand():
		return config.WriteWebpack(stdout, res.Settings)
	case c.serveCmd.FullCommand():
		return c.serve(res, logger)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *cli) serve(res *config.Result, logger *zap.Logger) error {
	serveCfg, err := config.LoadServe(os.LookupEnv, c.serveOverrides())
	if err != nil {
		return fmt.Errorf("load serve configuration: %w", err)
	}

	reportDeploymentWarnings(res.Settings, logger)

	app, err := application.New(res, serveCfg, logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	if err := app.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	shutdown(app.Server(), serveCfg.ShutdownGracePeriod, logger)
	return nil
}

func (c *cli) serveOverrides() *config.ServeOverrides {
	overrides := &config.ServeOverrides{DisableRequestLogging: c.disableRequestLogging}
	if c.port != "" {
		overrides.Port = &c.port
	}
	if c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = &c.rateLimitRPS
	}
	if c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = &c.rateLimitBurst
	}
	return overrides
}

// reportDeploymentWarnings writes to the handlers configured in LOGGING so the
// warnings land where the application's own log is read.
func reportDeploymentWarnings(s config.Settings, logger *zap.Logger) {
	warnings := config.DeploymentWarnings(s)
	if len(warnings) == 0 {
		return
	}

	appLogger, cleanup, err := logging.FromSettings(s.Logging, "arches")
	if err != nil {
		logger.Warn("LOGGING is unusable, reporting here instead", zap.Error(err))
		appLogger, cleanup = logger, func() {}
	}
	defer cleanup()

	for _, w := range warnings {
		appLogger.Warn(w)
	}
	_ = appLogger.Sync()
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
