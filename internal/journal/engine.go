// Package journal validates and commits journal entries. Committed
// entries are append-only: corrections are made by posting a
// reversing entry, never by editing in place.
package journal

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const journalKey = "journal_entries"

// AccountChecker tests whether an account code exists in the
// company's chart of accounts.
type AccountChecker interface {
	Exists(code string) (bool, error)
}

// PeriodGate reports whether a posting date falls in a locked fiscal
// period.
type PeriodGate interface {
	IsLocked(date time.Time) (bool, error)
}

// Engine provides posting and reversal for one company's journal.
type Engine struct {
	store    *store.Store
	company  string
	accounts AccountChecker
	fiscal   PeriodGate
	log      *logrus.Logger
}

// NewEngine creates an Engine. A nil logger falls back to the logrus
// standard logger.
func NewEngine(st *store.Store, company string, accounts AccountChecker, fiscal PeriodGate, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{store: st, company: company, accounts: accounts, fiscal: fiscal, log: log}
}

// PostOptions adjust posting behaviour.
type PostOptions struct {
	// AllowLocked bypasses the fiscal period gate. This is the
	// administrative override; normal posting leaves it false.
	AllowLocked bool
}

// Post validates candidate and commits it to the journal. Validation
// and commit are a single atomic step under the company lock; a
// rejected entry is never partially persisted. The committed entry,
// with its assigned voucher ID, is returned.
func (e *Engine) Post(candidate model.JournalEntry, opts PostOptions) (model.JournalEntry, error) {
	var committed model.JournalEntry
	err := e.store.WithLock(e.company, func() error {
		entry, err := e.prepare(candidate, opts)
		if err != nil {
			return err
		}

		var entries []model.JournalEntry
		if _, err := e.store.Load(e.company, journalKey, &entries); err != nil {
			return err
		}
		for _, existing := range entries {
			if existing.EntryID == entry.EntryID {
				return fmt.Errorf("entry %q: %w", entry.EntryID, errs.ErrAlreadyExists)
			}
		}
		if entry.EntryID == "" {
			entry.EntryID, err = e.nextVoucherID(entry.Type)
			if err != nil {
				return err
			}
		}

		if err := e.store.Save(e.company, journalKey, append(entries, entry)); err != nil {
			return err
		}
		committed = entry
		return nil
	})
	if err != nil {
		return model.JournalEntry{}, err
	}

	e.audit("post", fmt.Sprintf("%s on %s: %s", committed.Type, committed.Date.Format("2006-01-02"), committed.Narration), committed.EntryID)
	e.log.WithField("company", e.company).WithField("entry", committed.EntryID).Info("journal entry posted")
	return committed, nil
}

// Reverse posts a reversing entry for a committed entry: the same
// lines with debit and credit swapped, dated asOf, referencing the
// original. The original is marked reversed. An entry can be reversed
// only once.
func (e *Engine) Reverse(entryID string, asOf time.Time, narration string, opts PostOptions) (model.JournalEntry, error) {
	var reversal model.JournalEntry
	err := e.store.WithLock(e.company, func() error {
		var entries []model.JournalEntry
		if _, err := e.store.Load(e.company, journalKey, &entries); err != nil {
			return err
		}

		idx := -1
		for i, existing := range entries {
			if existing.EntryID == entryID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("entry %q: %w", entryID, errs.ErrNotFound)
		}
		original := entries[idx]
		if original.Status == model.StatusReversed {
			return fmt.Errorf("entry %q is already reversed", entryID)
		}

		if narration == "" {
			narration = "Reversal of " + entryID
		}
		candidate := model.JournalEntry{
			Date:      asOf,
			Type:      original.Type,
			Narration: narration,
			Reverses:  entryID,
		}
		for _, l := range original.Lines {
			candidate.Lines = append(candidate.Lines, model.JournalLine{
				AccountCode: l.AccountCode,
				Debit:       l.Credit,
				Credit:      l.Debit,
			})
		}

		prepared, err := e.prepare(candidate, opts)
		if err != nil {
			return err
		}
		prepared.EntryID, err = e.nextVoucherID(prepared.Type)
		if err != nil {
			return err
		}

		entries[idx].Status = model.StatusReversed
		if err := e.store.Save(e.company, journalKey, append(entries, prepared)); err != nil {
			return err
		}
		reversal = prepared
		return nil
	})
	if err != nil {
		return model.JournalEntry{}, err
	}

	e.audit("reverse", fmt.Sprintf("%s reversed by %s", entryID, reversal.EntryID), reversal.EntryID)
	e.log.WithField("company", e.company).
		WithField("entry", entryID).
		WithField("reversal", reversal.EntryID).
		Info("journal entry reversed")
	return reversal, nil
}

// Entries returns all committed entries in storage order.
func (e *Engine) Entries() ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if _, err := e.store.Load(e.company, journalKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Find returns one committed entry by voucher ID.
func (e *Engine) Find(entryID string) (model.JournalEntry, error) {
	entries, err := e.Entries()
	if err != nil {
		return model.JournalEntry{}, err
	}
	for _, entry := range entries {
		if entry.EntryID == entryID {
			return entry, nil
		}
	}
	return model.JournalEntry{}, fmt.Errorf("entry %q: %w", entryID, errs.ErrNotFound)
}

// prepare runs the validation pipeline on a candidate and returns the
// normalized entry ready to commit. Must be called under the company
// lock.
func (e *Engine) prepare(candidate model.JournalEntry, opts PostOptions) (model.JournalEntry, error) {
	// Zero-amount lines are dropped silently before validation.
	kept := make([]model.JournalLine, 0, len(candidate.Lines))
	for _, l := range candidate.Lines {
		if !l.IsZero() {
			kept = append(kept, l)
		}
	}
	candidate.Lines = kept

	problems, err := validateEntry(candidate, e.accounts)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if len(problems) > 0 {
		return model.JournalEntry{}, &errs.ValidationError{Problems: problems}
	}

	if !opts.AllowLocked {
		locked, err := e.fiscal.IsLocked(candidate.Date)
		if err != nil {
			return model.JournalEntry{}, err
		}
		if locked {
			return model.JournalEntry{}, &errs.PeriodLockedError{
				Year:  candidate.Date.Year(),
				Month: int(candidate.Date.Month()),
			}
		}
	}

	candidate.Date = model.DateOnly(candidate.Date)
	candidate.Status = model.StatusPosted
	candidate.CreatedAt = time.Now().UTC()
	return candidate, nil
}

func (e *Engine) audit(action, detail, entryID string) {
	rec := auditlog.NewRecord(action, detail, entryID)
	if err := auditlog.Append(e.store.CompanyPath(e.company), []auditlog.Record{rec}); err != nil {
		e.log.WithError(err).Warn("audit log append failed")
	}
}
