package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cassa/internal/amqp"
	"cassa/internal/config"
	"cassa/internal/log"
	"cassa/internal/sheets"
	gsheet "cassa/internal/sheets/google"
	sheetsmem "cassa/internal/sheets/memory"
	"cassa/internal/worker"
)

func init() {
	rootCmd.AddCommand(workerCmd)
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume history events and mirror monthly reports",
	Long: `The worker listens for sale and expense events on AMQP, rebuilds the
month each event touches and writes it to the configured spreadsheet. The
current month is also refreshed periodically. Without GOOGLE_SPREADSHEET_ID
reports are rebuilt but only kept in memory.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig((*config.Config).ValidateWorker)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg).WithComponent(log.ComponentWorker)

	ctx, stop := signalContext(logger)
	defer stop()

	a, err := newApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	publisher, err := reportPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	w := worker.NewReportWorker(a.reports, publisher)
	go w.Run(ctx, cfg.ReportRefreshInterval)

	logger.Info("Starting cassa worker", "queue", cfg.AMQPQueue, "refresh_interval", cfg.ReportRefreshInterval)
	if err := client.Consume(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		return err
	}
	logger.Info("Worker stopped gracefully")
	return nil
}

func reportPublisher(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.ReportPublisher, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetPrefix:        cfg.ReportSheetPrefix,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", log.FieldSpreadsheet, cfg.GoogleSpreadsheetID)
	return client, nil
}
