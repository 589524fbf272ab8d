package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cassa/internal/config"
	"cassa/internal/core"
	"cassa/internal/report"
)

var (
	reportYear  int
	reportMonth int
	reportJSON  bool
	reportDense bool
)

func init() {
	now := time.Now()
	reportCmd.Flags().IntVar(&reportYear, "year", now.Year(), "report year")
	reportCmd.Flags().IntVar(&reportMonth, "month", int(now.Month()), "report month (1-12)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	reportCmd.Flags().BoolVar(&reportDense, "dense", false, "list every day of the month, including days without sales")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the monthly report",
	Example: `  cassa report --year 2026 --month 3
  DATA_BACKEND=sqlite cassa report --json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg)

	a, err := newApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.reports.Monthly(cmd.Context(), reportYear, reportMonth)
	if err != nil {
		return err
	}
	if reportDense {
		r.DailySales = report.ZeroFill(r.DailySales, r.Period)
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return writeReport(out, r)
}

// writeReport renders r as aligned plain-text tables.
func writeReport(out io.Writer, r report.Report) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Report %s\n\n", r.Period)
	fmt.Fprintf(tw, "Total revenue\t%s\n", core.FormatAmount(r.KPIs.TotalRevenue))
	fmt.Fprintf(tw, "Total expenses\t%s\n", r.KPIs.TotalExpenses.Display())
	fmt.Fprintf(tw, "Net profit\t%s\n", r.KPIs.NetProfit.Display())
	fmt.Fprintf(tw, "Transactions\t%d\n", r.KPIs.TransactionCount)
	fmt.Fprintf(tw, "Average ticket\t%s\n", core.FormatAmount(r.KPIs.AverageTicket))
	fmt.Fprintf(tw, "Items sold\t%d\n", r.KPIs.TotalItemsSold)

	if len(r.DailySales) > 0 {
		fmt.Fprintf(tw, "\nDay\tSales\n")
		for _, d := range r.DailySales {
			fmt.Fprintf(tw, "%d\t%s\n", d.Day, core.FormatAmount(d.Total))
		}
	}

	if len(r.TopProducts) > 0 {
		fmt.Fprintf(tw, "\nProduct\tQuantity\tRevenue\n")
		for _, p := range r.TopProducts {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, p.Quantity, core.FormatAmount(p.Revenue))
		}
	}

	if len(r.PaymentMethods) > 0 {
		fmt.Fprintf(tw, "\nPayment method\tSales\n")
		for _, pm := range r.PaymentMethods {
			fmt.Fprintf(tw, "%s\t%d\n", pm.Method.Label(), pm.Count)
		}
	}

	if !r.ExpensesAvailable {
		fmt.Fprintf(tw, "\nExpenses unavailable\n")
	} else if len(r.ExpenseCategories) > 0 {
		fmt.Fprintf(tw, "\nExpense category\tAmount\n")
		for _, c := range r.ExpenseCategories {
			fmt.Fprintf(tw, "%s\t%s\n", c.Category.Label(), core.FormatAmount(c.Amount))
		}
	}

	return tw.Flush()
}
