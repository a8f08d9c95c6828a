package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/fiscal"
)

func newFiscalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiscal",
		Short: "Manage a company's fiscal year and period locks",
	}
	cmd.PersistentFlags().String("company", "", "company name (required)")

	cmd.AddCommand(newFiscalCreateCommand())
	cmd.AddCommand(newFiscalLockCommand(true))
	cmd.AddCommand(newFiscalLockCommand(false))
	cmd.AddCommand(newFiscalCloseCommand())
	cmd.AddCommand(newFiscalStatusCommand())
	return cmd
}

func newFiscalCreateCommand() *cobra.Command {
	var startStr string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a fiscal year of twelve monthly periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}
			start, err := parseDate(startStr)
			if err != nil {
				return err
			}

			fy, err := fiscal.NewGuard(st, company, nil).CreateYear(start)
			if err != nil {
				return err
			}
			snapshot(cfg, "fiscal year created for "+company)
			cmd.Printf("Created fiscal year %s to %s\n",
				fy.Periods[0].StartDate.Format(dateFormat),
				fy.Periods[11].EndDate.Format(dateFormat))
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "fiscal year start date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newFiscalLockCommand(lock bool) *cobra.Command {
	use, short := "lock PERIOD", "Lock a fiscal period (PERIOD is YYYY-MM)"
	if !lock {
		use, short = "unlock PERIOD", "Unlock a fiscal period (PERIOD is YYYY-MM)"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}
			year, month, err := parsePeriod(args[0])
			if err != nil {
				return err
			}

			g := fiscal.NewGuard(st, company, nil)
			if lock {
				err = g.LockPeriod(year, month)
			} else {
				err = g.UnlockPeriod(year, month)
			}
			if err != nil {
				return err
			}

			verb := "Locked"
			if !lock {
				verb = "Unlocked"
			}
			snapshot(cfg, fmt.Sprintf("%s period %04d-%02d for %s", strings.ToLower(verb), year, month, company))
			cmd.Printf("%s period %04d-%02d\n", verb, year, month)
			return nil
		},
	}
}

func newFiscalCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the fiscal year, locking all periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			if err := fiscal.NewGuard(st, company, nil).CloseYear(); err != nil {
				return err
			}
			snapshot(cfg, "fiscal year closed for "+company)
			cmd.Println("Fiscal year closed")
			return nil
		},
	}
}

func newFiscalStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show all fiscal periods and their lock state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			company, err := requireCompany(cmd)
			if err != nil {
				return err
			}

			periods, err := fiscal.NewGuard(st, company, nil).PeriodStatus()
			if err != nil {
				return err
			}
			if len(periods) == 0 {
				cmd.Println("No fiscal year defined")
				return nil
			}

			for _, p := range periods {
				state := "open"
				if p.IsLocked {
					state = "locked"
				}
				cmd.Printf("%04d-%02d  %s to %s  %s\n",
					p.Year, p.Month,
					p.StartDate.Format(dateFormat), p.EndDate.Format(dateFormat),
					state)
			}
			return nil
		},
	}
}

// parsePeriod parses "YYYY-MM" into year and month.
func parsePeriod(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period %q (want YYYY-MM)", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in period %q", s)
	}
	return year, month, nil
}
