package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/export"
	"stockledger/internal/infrastructure/http/v1/dto"
)

func (c *cli) stockBalanceCmd() *cobra.Command {
	var (
		req      dto.StockBalanceReportRequest
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "stock-balance",
		Short: "Print the stock balance per item and warehouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := req.ToFilter(c.svc.Location)
			if err != nil {
				return err
			}
			report, err := c.svc.Reports.StockBalance(commandContext(cmd), filter)
			if err != nil {
				return err
			}
			return output(cmd, "Stock Balance", report, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&req.Item, "item", "", "Item code")
	cmd.Flags().StringVar(&req.Warehouse, "warehouse", "", "Warehouse name")
	cmd.Flags().StringVar(&req.FromDate, "from-date", "", "First posting date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.ToDate, "to-date", "", "Last posting date, YYYY-MM-DD")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report to this XLSX file instead of stdout")
	return cmd
}

func (c *cli) stockLedgerCmd() *cobra.Command {
	var (
		req      dto.StockLedgerReportRequest
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "stock-ledger",
		Short: "Print ledger entries with running balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := req.ToFilter(c.svc.Location)
			if err != nil {
				return err
			}
			report, err := c.svc.Reports.StockLedger(commandContext(cmd), filter)
			if err != nil {
				return err
			}
			return output(cmd, "Stock Ledger", report, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&req.Item, "item", "", "Item code")
	cmd.Flags().StringVar(&req.Warehouse, "warehouse", "", "Warehouse name")
	cmd.Flags().StringVar(&req.From, "from", "", "Lower bound on posting time, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&req.Type, "type", "", "Receive or Consume")
	cmd.Flags().StringVar(&req.MovementID, "movement", "", "Stock entry ID")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report to this XLSX file instead of stdout")
	return cmd
}

func output(cmd *cobra.Command, title string, t reports.Table, xlsxPath string) error {
	if xlsxPath == "" {
		return writeTable(cmd.OutOrStdout(), t)
	}
	if err := export.SaveXLSX(xlsxPath, title, t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s (%d rows)\n", title, xlsxPath, len(t.Values()))
	return nil
}

// writeTable prints t as tab-aligned columns under a label header.
func writeTable(w io.Writer, t reports.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	labels := make([]string, 0, len(t.Header()))
	for _, col := range t.Header() {
		labels = append(labels, col.Label)
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	for _, row := range t.Values() {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
