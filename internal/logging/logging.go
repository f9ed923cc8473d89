package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/archesproject/arches-rdm-example-project/internal/config"
)

const (
	streamHandlerClass = "logging.StreamHandler"
	fileHandlerClass   = "logging.FileHandler"
)

// New creates a structured logger for the tool itself, configured for JSON
// output on stderr. An empty level means info.
func New(level string) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// FromSettings builds the logger described by the LOGGING setting for the
// named logger. Stream handlers write to stderr, file handlers append to their
// filename. The returned cleanup closes opened files.
func FromSettings(cfg config.LoggingConfig, name string) (*zap.Logger, func(), error) {
	lc, ok := cfg.Loggers[name]
	if !ok {
		return nil, nil, fmt.Errorf("logger %q is not configured", name)
	}
	loggerLevel, err := parseLevel(lc.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logger %q: %w", name, err)
	}

	var (
		cores []zapcore.Core
		files []*os.File
	)
	cleanup := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	handlers := append([]string(nil), lc.Handlers...)
	sort.Strings(handlers)
	for _, hn := range handlers {
		h, ok := cfg.Handlers[hn]
		if !ok {
			cleanup()
			return nil, nil, fmt.Errorf("logger %q references unknown handler %q", name, hn)
		}
		lvl, err := parseLevel(h.Level)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("handler %q: %w", hn, err)
		}
		if lvl < loggerLevel {
			lvl = loggerLevel
		}

		var sink zapcore.WriteSyncer
		switch h.Class {
		case streamHandlerClass:
			sink = zapcore.Lock(os.Stderr)
		case fileHandlerClass:
			f, err := os.OpenFile(h.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("handler %q: open %s: %w", hn, h.Filename, err)
			}
			files = append(files, f)
			sink = zapcore.AddSync(f)
		default:
			cleanup()
			return nil, nil, fmt.Errorf("handler %q: unsupported class %q", hn, h.Class)
		}
		cores = append(cores, zapcore.NewCore(consoleEncoder(), sink, lvl))
	}

	return zap.New(zapcore.NewTee(cores...)).Named(name), cleanup, nil
}

func consoleEncoder() zapcore.Encoder {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(enc)
}

// parseLevel accepts both zap level names and the framework's names
// (WARNING, CRITICAL).
func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "":
		return zapcore.InfoLevel, nil
	case "WARNING":
		return zapcore.WarnLevel, nil
	case "CRITICAL":
		return zapcore.FatalLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}
