package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const accountsKey = "accounts"

// TrialBalanceRow is one account's aggregated activity.
type TrialBalanceRow struct {
	Code   string
	Name   string
	Type   model.AccountType
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalance is the aggregate debit/credit report across all
// accounts for a date range.
type TrialBalance struct {
	From        time.Time
	To          time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// trialBalanceEpsilon matches the posting tolerance.
var trialBalanceEpsilon = decimal.RequireFromString("0.01")

// Generator produces trial balances for one company.
type Generator struct {
	store   *store.Store
	company string
}

// NewGenerator creates a Generator bound to a company.
func NewGenerator(st *store.Store, company string) *Generator {
	return &Generator{store: st, company: company}
}

// Generate sums every account's journal-line debits and credits over
// [from, to]. Accounts with no activity in the range are omitted from
// the rows and contribute nothing to the totals. Rows are ordered by
// account code.
func (g *Generator) Generate(from, to time.Time) (TrialBalance, error) {
	var accts []model.Account
	if _, err := g.store.Load(g.company, accountsKey, &accts); err != nil {
		return TrialBalance{}, err
	}

	p := NewProjector(g.store, g.company)
	entries, err := p.entriesWithin(from, to)
	if err != nil {
		return TrialBalance{}, err
	}

	type sums struct{ debit, credit decimal.Decimal }
	activity := make(map[string]sums)
	for _, e := range entries {
		for _, l := range e.Lines {
			s := activity[l.AccountCode]
			s.debit = s.debit.Add(l.Debit)
			s.credit = s.credit.Add(l.Credit)
			activity[l.AccountCode] = s
		}
	}

	tb := TrialBalance{
		From:        model.DateOnly(from),
		To:          model.DateOnly(to),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range accts {
		s, ok := activity[a.Code]
		if !ok || (s.debit.IsZero() && s.credit.IsZero()) {
			continue
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			Code:   a.Code,
			Name:   a.Name,
			Type:   a.Type,
			Debit:  s.debit,
			Credit: s.credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(s.debit)
		tb.TotalCredit = tb.TotalCredit.Add(s.credit)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })

	tb.IsBalanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(trialBalanceEpsilon)
	return tb, nil
}
