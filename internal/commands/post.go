package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/fiscal"
	"github.com/tallybook-dev/tallybook/internal/journal"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

func newEngine(st *store.Store, company string) *journal.Engine {
	reg := accounts.NewRegistry(st, company)
	guard := fiscal.NewGuard(st, company, nil)
	return journal.NewEngine(st, company, reg, guard, nil)
}

func newPostCommand() *cobra.Command {
	var company, dateStr, voucherType, narration string
	var lineSpecs []string
	var allowLocked bool

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced journal entry",
		Long: `Post a balanced journal entry. Each --line is CODE:DEBIT:CREDIT,
for example --line 1000:1000.00:0 --line 4000:0:1000.00.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}

			day, err := parseDate(dateStr)
			if err != nil {
				return err
			}
			lines, err := parseLines(lineSpecs)
			if err != nil {
				return err
			}

			entry, err := newEngine(st, company).Post(model.JournalEntry{
				Date:      day,
				Type:      model.VoucherType(voucherType),
				Narration: narration,
				Lines:     lines,
			}, journal.PostOptions{AllowLocked: allowLocked})
			if err != nil {
				return err
			}

			snapshot(cfg, "post: "+entry.EntryID)
			debit, _ := entry.Totals()
			cmd.Printf("Posted %s for %s\n", entry.EntryID, debit.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&dateStr, "date", "", "entry date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&voucherType, "type", string(model.VoucherJournal), "voucher type: Journal, Payment, Receipt, Contra")
	cmd.Flags().StringVar(&narration, "narration", "", "free-text narration")
	cmd.Flags().StringArrayVar(&lineSpecs, "line", nil, "journal line CODE:DEBIT:CREDIT (repeat)")
	cmd.Flags().BoolVar(&allowLocked, "allow-locked", false, "administrative override of the period lock")

	return cmd
}

func newReverseCommand() *cobra.Command {
	var company, dateStr, narration string
	var allowLocked bool

	cmd := &cobra.Command{
		Use:   "reverse ENTRY_ID",
		Short: "Post a reversing entry for a committed voucher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := loadContext(cmd)
			if err != nil {
				return err
			}
			day, err := parseDate(dateStr)
			if err != nil {
				return err
			}

			rev, err := newEngine(st, company).Reverse(args[0], day, narration, journal.PostOptions{AllowLocked: allowLocked})
			if err != nil {
				return err
			}

			snapshot(cfg, "reverse: "+args[0]+" by "+rev.EntryID)
			cmd.Printf("Reversed %s with %s\n", args[0], rev.EntryID)
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&dateStr, "date", "", "reversal date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&narration, "narration", "", "free-text narration")
	cmd.Flags().BoolVar(&allowLocked, "allow-locked", false, "administrative override of the period lock")

	return cmd
}

// parseLines converts CODE:DEBIT:CREDIT specs into journal lines.
func parseLines(specs []string) ([]model.JournalLine, error) {
	var lines []model.JournalLine
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid line %q (want CODE:DEBIT:CREDIT)", spec)
		}
		debit, err := parseAmount(parts[1])
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", spec, err)
		}
		credit, err := parseAmount(parts[2])
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", spec, err)
		}
		lines = append(lines, model.JournalLine{AccountCode: parts[0], Debit: debit, Credit: credit})
	}
	return lines, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
