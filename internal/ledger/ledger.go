// Package ledger derives read-only views from the committed journal:
// per-account running-balance ledgers and the trial balance. Every
// call replays from storage; nothing here mutates state.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const journalKey = "journal_entries"

// Line is one row of an account ledger.
type Line struct {
	Date       time.Time
	Narration  string
	VoucherID  string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	RunningBal decimal.Decimal
}

// Projector replays committed journal entries into account ledgers
// for one company.
type Projector struct {
	store   *store.Store
	company string
}

// NewProjector creates a Projector bound to a company.
func NewProjector(st *store.Store, company string) *Projector {
	return &Projector{store: st, company: company}
}

// Account returns the ledger for one account over [from, to]: every
// matching journal line ordered by date ascending (storage order as
// the tie-break for same-day entries) with a running balance
// accumulated as debit minus credit. The final line's running balance
// is the closing balance for the range.
func (p *Projector) Account(accountCode string, from, to time.Time) ([]Line, error) {
	entries, err := p.entriesWithin(from, to)
	if err != nil {
		return nil, err
	}

	var lines []Line
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountCode != accountCode {
				continue
			}
			lines = append(lines, Line{
				Date:      e.Date,
				Narration: e.Narration,
				VoucherID: e.EntryID,
				Debit:     l.Debit,
				Credit:    l.Credit,
			})
		}
	}

	running := decimal.Zero
	for i := range lines {
		running = running.Add(lines[i].Debit).Sub(lines[i].Credit)
		lines[i].RunningBal = running
	}
	return lines, nil
}

// ClosingBalance returns the account's balance at the end of the
// range, zero when it has no activity.
func (p *Projector) ClosingBalance(accountCode string, from, to time.Time) (decimal.Decimal, error) {
	lines, err := p.Account(accountCode, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if len(lines) == 0 {
		return decimal.Zero, nil
	}
	return lines[len(lines)-1].RunningBal, nil
}

// entriesWithin returns committed entries dated inside [from, to],
// date ascending with storage order preserved among equal dates.
func (p *Projector) entriesWithin(from, to time.Time) ([]model.JournalEntry, error) {
	var all []model.JournalEntry
	if _, err := p.store.Load(p.company, journalKey, &all); err != nil {
		return nil, err
	}

	fromDay, toDay := model.DateOnly(from), model.DateOnly(to)
	var within []model.JournalEntry
	for _, e := range all {
		day := model.DateOnly(e.Date)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		within = append(within, e)
	}

	// Stable sort keeps storage order as the same-day tie-break.
	sort.SliceStable(within, func(i, j int) bool {
		return within[i].Date.Before(within[j].Date)
	})
	return within, nil
}
