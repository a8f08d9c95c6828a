package commands

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/ledger"
)

func newLedgerCommand() *cobra.Command {
	var company, fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "ledger ACCOUNT_CODE",
		Short: "Show an account's ledger with running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			from, err := parseDate(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDate(toStr)
			if err != nil {
				return err
			}

			lines, err := ledger.NewProjector(st, company).Account(args[0], from, to)
			if err != nil {
				return err
			}

			cmd.Printf("%-12s %-30s %-10s %12s %12s %12s\n", "Date", "Particulars", "Voucher", "Debit", "Credit", "Balance")
			for _, l := range lines {
				cmd.Printf("%-12s %-30s %-10s %12s %12s %12s\n",
					l.Date.Format(dateFormat), truncate(l.Narration, 30), l.VoucherID,
					blankIfZero(l.Debit), blankIfZero(l.Credit), l.RunningBal.StringFixed(2))
			}
			if len(lines) > 0 {
				cmd.Printf("Closing balance: %s\n", lines[len(lines)-1].RunningBal.StringFixed(2))
			} else {
				cmd.Println("No activity in range")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&fromStr, "from", "", "range start YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toStr, "to", "", "range end YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newTrialBalanceCommand() *cobra.Command {
	var company, fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Aggregate debit/credit totals across all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			from, err := parseDate(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDate(toStr)
			if err != nil {
				return err
			}

			tb, err := ledger.NewGenerator(st, company).Generate(from, to)
			if err != nil {
				return err
			}

			cmd.Printf("%-8s %-30s %-10s %12s %12s\n", "Code", "Account", "Type", "Debit", "Credit")
			for _, row := range tb.Rows {
				cmd.Printf("%-8s %-30s %-10s %12s %12s\n",
					row.Code, truncate(row.Name, 30), row.Type,
					row.Debit.StringFixed(2), row.Credit.StringFixed(2))
			}
			cmd.Printf("%-50s %12s %12s\n", "Totals", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
			if tb.IsBalanced {
				cmd.Println("Books are balanced")
			} else {
				cmd.Printf("OUT OF BALANCE by %s\n", tb.TotalDebit.Sub(tb.TotalCredit).Abs().StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&fromStr, "from", "", "range start YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toStr, "to", "", "range end YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func blankIfZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
