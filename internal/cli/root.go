package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cassa",
	Short: "Point-of-sale service: catalog, checkout and monthly reports",
	Long: `cassa runs a small retail point of sale. "serve" exposes the JSON API,
"worker" mirrors monthly reports into Google Sheets as sales and expenses
change, "report" prints a month and "migrate" prepares the SQLite schema.

Configuration comes from the environment (and .env), optionally layered
over a TOML file named by CASSA_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		LoadEnvFile()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	exitOnError(rootCmd.Execute())
}
