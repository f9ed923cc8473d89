package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/archesproject/arches-rdm-example-project/internal/api"
	"github.com/archesproject/arches-rdm-example-project/internal/config"
)

// App encapsulates the inspection service and its HTTP server.
type App struct {
	logger   *zap.Logger
	server   *http.Server
	listener net.Listener
}

// New wires the resolved settings into the HTTP service.
func New(result *config.Result, cfg config.ServeConfig, logger *zap.Logger) (*App, error) {
	if result == nil {
		return nil, errors.New("settings result is required")
	}

	apiRouter := api.NewRouter(api.NewHandler(result), logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		logger: logger,
		server: NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and answers / with an index of
// the available endpoints.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, strings.Join(endpoints, "\n")+"\n")
	}))
	return mux
}

var endpoints = []string{
	"GET /api/health",
	"GET /api/settings",
	"GET /api/settings/{name}",
	"GET /api/sources",
	"GET /api/webpack",
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.ServeConfig, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listening socket and serves in a goroutine. Bind errors are
// returned; serve errors after that are logged.
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	go func() {
		a.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
