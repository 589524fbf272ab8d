package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cassa/internal/config"
	"cassa/internal/log"
	"cassa/internal/storage"
)

var migrateDBPath string

func init() {
	migrateCmd.Flags().StringVar(&migrateDBPath, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQLite schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := SetupLogger(cfg).WithComponent(log.ComponentStorage)

		path := migrateDBPath
		if path == "" {
			path = cfg.SQLiteDBPath
		}
		if path == "" {
			return fmt.Errorf("no database path: set --db or SQLITE_DB_PATH")
		}

		if err := storage.RunMigrations(path); err != nil {
			return err
		}
		version, dirty, err := storage.SchemaVersion(path)
		if err != nil {
			return err
		}
		logger.Info("Migrations applied", "path", path, "version", version, "dirty", dirty)
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}
