package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envyaml/internal/application"
	"github.com/eugenenazirov/envyaml/internal/config"
	"github.com/eugenenazirov/envyaml/internal/dotenv"
	"github.com/eugenenazirov/envyaml/internal/interpolate"
	"github.com/eugenenazirov/envyaml/internal/logging"
	"github.com/eugenenazirov/envyaml/internal/report"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("envyaml", "Loads a YAML configuration file with ${VAR} and ${VAR:-default} environment interpolation")
	configFile := kingpinApp.Flag("config", "Path to the YAML configuration file").Short('c').Default(config.DefaultPath).String()
	envFile := kingpinApp.Flag("env-file", "Optional KEY=VALUE file loaded before interpolation").Default(dotenv.DefaultPath).String()
	logFile := kingpinApp.Flag("log-file", "Write logs to a rotated file instead of stderr").String()

	kingpinApp.Command("show", "Print the database URL, API base URL and log level").Default()
	checkCmd := kingpinApp.Command("check", "Report how every placeholder resolved")
	serveCmd := kingpinApp.Command("serve", "Serve the loaded configuration over a read-only HTTP API")
	port := serveCmd.Flag("port", "HTTP port exposed by the inspection server").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, envLoaded, err := load(*configFile, *envFile)
	kingpinApp.FatalIfError(err, "failed to load configuration")

	logger, err := logging.New(logging.Options{
		Level: cfg.Known().Logging.Level,
		File:  *logFile,
	})
	kingpinApp.FatalIfError(err, "failed to initialize logger")
	defer func() {
		_ = logger.Sync()
	}()

	logger.Debug("configuration loaded",
		zap.String("path", cfg.Path),
		zap.Bool("env_file_loaded", envLoaded),
	)

	switch command {
	case checkCmd.FullCommand():
		if err := runCheck(os.Stdout, cfg, interpolate.OSLookup); err != nil {
			logger.Fatal("failed to write report", zap.Error(err))
		}
	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{}
		if *port != "" {
			overrides.Port = port
		}
		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}
		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}
		runServe(cfg, overrides, logger)
	default:
		if err := report.PrintKnown(os.Stdout, cfg); err != nil {
			logger.Fatal("failed to write report", zap.Error(err))
		}
	}
}

// load reads the optional env file, then the configuration document.
func load(configPath, envPath string) (*config.Config, bool, error) {
	envLoaded, err := dotenv.Load(envPath)
	if err != nil {
		return nil, false, err
	}

	cfg, err := config.Load(configPath, interpolate.OSLookup)
	if err != nil {
		return nil, envLoaded, err
	}
	return cfg, envLoaded, nil
}

func runCheck(w io.Writer, cfg *config.Config, lookup interpolate.LookupFunc) error {
	return report.WriteCheck(w, cfg, report.Inspect(cfg.Source, lookup))
}

func runServe(cfg *config.Config, overrides *config.CLIOverrides, logger *zap.Logger) {
	settings, err := config.ResolveServerSettings(cfg, overrides)
	if err != nil {
		logger.Fatal("invalid server settings", zap.Error(err))
	}

	app, err := application.New(settings, cfg, report.Inspect(cfg.Source, interpolate.OSLookup), logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), settings.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", fmt.Sprint(sig)))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
