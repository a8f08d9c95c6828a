package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// balanceEpsilon is the tolerance for the debit/credit balance check,
// 0.01 of a currency unit.
var balanceEpsilon = decimal.RequireFromString("0.01")

// validateEntry checks a candidate entry against the chart of
// accounts and the balance invariant. It returns the list of problems
// found (empty when the entry is valid); the error return is for
// storage failures while consulting the chart.
func validateEntry(entry model.JournalEntry, accounts AccountChecker) ([]string, error) {
	var problems []string

	if !entry.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown voucher type %q", entry.Type))
	}
	if entry.Date.IsZero() {
		problems = append(problems, "entry date is required")
	}

	if len(entry.Lines) < 2 {
		problems = append(problems, fmt.Sprintf("at least two lines are required, got %d", len(entry.Lines)))
	}

	for i, l := range entry.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d: amounts must not be negative", i+1))
		}
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			problems = append(problems, fmt.Sprintf("line %d: exactly one of debit or credit may be set", i+1))
		}
		ok, err := accounts.Exists(l.AccountCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("line %d: unknown account %q", i+1, l.AccountCode))
		}
	}

	debit, credit := entry.Totals()
	if debit.Sub(credit).Abs().GreaterThan(balanceEpsilon) {
		problems = append(problems, fmt.Sprintf(
			"debits (%s) and credits (%s) must match, difference %s",
			debit.StringFixed(2), credit.StringFixed(2), debit.Sub(credit).Abs().StringFixed(2)))
	}

	return problems, nil
}
