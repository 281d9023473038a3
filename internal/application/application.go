package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envyaml/internal/api"
	"github.com/eugenenazirov/envyaml/internal/config"
	"github.com/eugenenazirov/envyaml/internal/report"
	"github.com/eugenenazirov/envyaml/internal/storage"
)

// App encapsulates the inspection server and its dependencies.
type App struct {
	storage storage.Storage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New stores the loaded configuration and builds the HTTP server for it.
func New(settings config.ServerSettings, cfg *config.Config, summary report.Summary, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.Set(storage.Snapshot{Config: cfg, Summary: summary}); err != nil {
		return nil, fmt.Errorf("failed to store configuration: %w", err)
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, logger,
		api.WithLogging(settings.EnableRequestLogging),
		api.WithRateLimit(settings.RateLimitRPS, settings.RateLimitBurst),
	)

	return &App{
		storage: store,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  NewServer(settings, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided settings.
func NewServer(settings config.ServerSettings, handler http.Handler) *http.Server {
	addr := settings.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: settings.ReadHeaderTimeout,
		WriteTimeout:      settings.WriteTimeout,
		IdleTimeout:       settings.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
