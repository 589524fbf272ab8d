// Package cli holds the cassa commands and the initialization they share.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cassa/internal/amqp"
	"cassa/internal/backend"
	"cassa/internal/cache"
	"cassa/internal/config"
	"cassa/internal/log"
	"cassa/internal/pos"
	"cassa/internal/report"
	"cassa/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the logger described by cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// loadConfig reads and validates the configuration; validate selects the
// checks for the command being run.
func loadConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, cancel
}

// app is the wired set of services every command builds on.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
	events  *amqp.Client
	janitor *cache.Janitor

	catalog  *services.CatalogService
	checkout *services.CheckoutService
	expenses *services.ExpenseService
	reports  *services.ReportService
}

// newApp opens the configured backend and wires the services. With
// publish set and an AMQP URL configured, history changes are announced on
// the broker; a broker that cannot be reached only disables publishing.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, publish bool) (*app, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, backend: res, janitor: cache.NewJanitor()}

	var events services.EventPublisher
	if publish && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			a.events = client
			events = client
		}
	}

	reportCache := cache.NewLRUCache[report.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	a.janitor.Register(reportCache)
	a.janitor.Start(time.Minute)

	store := res.Backend
	a.reports = services.NewReportService(store, store, reportCache, cfg.TopProductsLimit)
	a.catalog = services.NewCatalogService(store)
	a.checkout = services.NewCheckoutService(store, store, pos.NewRegister(), pos.NewFinalizer(), events, a.reports)
	a.expenses = services.NewExpenseService(store, events, a.reports)
	return a, nil
}

func (a *app) Close() error {
	a.janitor.Stop()
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("Failed to close AMQP client", log.FieldError, err.Error())
		}
	}
	return a.backend.Close()
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
