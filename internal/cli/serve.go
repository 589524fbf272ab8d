package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"cassa/internal/config"
	apphttp "cassa/internal/http"
	"cassa/internal/log"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg)

	ctx, stop := signalContext(logger)
	defer stop()

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Catalog:  a.catalog,
		Checkout: a.checkout,
		Expenses: a.expenses,
		Reports:  a.reports,
		Ready:    a.backend.Ready,
	}, apphttp.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPM:   cfg.RateLimitRPM,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting cassa server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err.Error())
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
