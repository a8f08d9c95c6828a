package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/fiscal"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

type fixture struct {
	store  *store.Store
	reg    *accounts.Registry
	guard  *fiscal.Guard
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	st, err := store.Open(t.TempDir(), log)
	require.NoError(t, err)
	require.NoError(t, st.CreateCompany(model.CompanyMeta{Name: "Acme"}, map[string]any{
		"accounts":        accounts.DefaultChart(),
		"journal_entries": []model.JournalEntry{},
	}))
	reg := accounts.NewRegistry(st, "Acme")
	guard := fiscal.NewGuard(st, "Acme", log)
	return &fixture{
		store:  st,
		reg:    reg,
		guard:  guard,
		engine: NewEngine(st, "Acme", reg, guard, log),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func balancedEntry(amount string) model.JournalEntry {
	return model.JournalEntry{
		Date:      date(2024, time.April, 5),
		Type:      model.VoucherJournal,
		Narration: "Opening sale",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Debit: dec(amount)},
			{AccountCode: "4000", Credit: dec(amount)},
		},
	}
}

func TestPost(t *testing.T) {
	f := newFixture(t)

	entry, err := f.engine.Post(balancedEntry("1000"), PostOptions{})
	require.NoError(t, err)
	assert.Equal(t, "JV-00001", entry.EntryID)
	assert.Equal(t, model.StatusPosted, entry.Status)

	entries, err := f.engine.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	debit, credit := entries[0].Totals()
	assert.True(t, debit.Equal(credit))
}

func TestPostUnbalanced(t *testing.T) {
	f := newFixture(t)

	e := model.JournalEntry{
		Date: date(2024, time.April, 5),
		Type: model.VoucherJournal,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Debit: dec("900")},
			{AccountCode: "4000", Credit: dec("1000")},
		},
	}
	_, err := f.engine.Post(e, PostOptions{})
	require.Error(t, err)

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "900.00")
	assert.Contains(t, err.Error(), "1000.00")
	assert.Contains(t, err.Error(), "100.00")

	// Nothing persisted.
	entries, err := f.engine.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostWithinEpsilon(t *testing.T) {
	f := newFixture(t)

	e := model.JournalEntry{
		Date: date(2024, time.April, 5),
		Type: model.VoucherJournal,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Debit: dec("100.00")},
			{AccountCode: "4000", Credit: dec("100.01")},
		},
	}
	_, err := f.engine.Post(e, PostOptions{})
	require.NoError(t, err, "a 0.01 difference is within tolerance")
}

func TestPostTooFewLines(t *testing.T) {
	f := newFixture(t)

	e := model.JournalEntry{
		Date:  date(2024, time.April, 5),
		Type:  model.VoucherJournal,
		Lines: []model.JournalLine{{AccountCode: "1000", Debit: dec("50")}},
	}
	_, err := f.engine.Post(e, PostOptions{})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "two lines")
}

func TestPostUnknownAccount(t *testing.T) {
	f := newFixture(t)

	e := balancedEntry("10")
	e.Lines[1].AccountCode = "9999"
	_, err := f.engine.Post(e, PostOptions{})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), `unknown account "9999"`)
}

func TestPostDropsZeroLines(t *testing.T) {
	f := newFixture(t)

	e := balancedEntry("10")
	e.Lines = append(e.Lines, model.JournalLine{AccountCode: "5000"})

	entry, err := f.engine.Post(e, PostOptions{})
	require.NoError(t, err)
	assert.Len(t, entry.Lines, 2, "zero-amount lines are dropped before validation")
}

func TestPostZeroLinesOnly(t *testing.T) {
	f := newFixture(t)

	e := model.JournalEntry{
		Date: date(2024, time.April, 5),
		Type: model.VoucherJournal,
		Lines: []model.JournalLine{
			{AccountCode: "1000"},
			{AccountCode: "4000"},
		},
	}
	_, err := f.engine.Post(e, PostOptions{})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr, "an entry of only zero lines has too few lines left")
}

func TestPostLockedPeriod(t *testing.T) {
	f := newFixture(t)
	_, err := f.guard.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)
	require.NoError(t, f.guard.LockPeriod(2024, 4))

	e := balancedEntry("100")
	e.Date = date(2024, time.April, 15)

	_, err = f.engine.Post(e, PostOptions{})
	var locked *errs.PeriodLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 2024, locked.Year)
	assert.Equal(t, 4, locked.Month)

	// Unlock, the identical post now succeeds.
	require.NoError(t, f.guard.UnlockPeriod(2024, 4))
	_, err = f.engine.Post(e, PostOptions{})
	require.NoError(t, err)
}

func TestPostLockedPeriodOverride(t *testing.T) {
	f := newFixture(t)
	_, err := f.guard.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)
	require.NoError(t, f.guard.LockPeriod(2024, 4))

	e := balancedEntry("100")
	e.Date = date(2024, time.April, 15)

	_, err = f.engine.Post(e, PostOptions{AllowLocked: true})
	require.NoError(t, err, "administrative override bypasses the period gate")
}

func TestVoucherSequences(t *testing.T) {
	f := newFixture(t)

	first, err := f.engine.Post(balancedEntry("10"), PostOptions{})
	require.NoError(t, err)
	second, err := f.engine.Post(balancedEntry("20"), PostOptions{})
	require.NoError(t, err)
	assert.Equal(t, "JV-00001", first.EntryID)
	assert.Equal(t, "JV-00002", second.EntryID)

	payment := balancedEntry("30")
	payment.Type = model.VoucherPayment
	third, err := f.engine.Post(payment, PostOptions{})
	require.NoError(t, err)
	assert.Equal(t, "PV-00001", third.EntryID, "each voucher type has its own counter")
}

func TestPostExplicitDuplicateID(t *testing.T) {
	f := newFixture(t)

	e := balancedEntry("10")
	e.EntryID = "JV-90000"
	_, err := f.engine.Post(e, PostOptions{})
	require.NoError(t, err)

	_, err = f.engine.Post(e, PostOptions{})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestReverse(t *testing.T) {
	f := newFixture(t)

	posted, err := f.engine.Post(balancedEntry("500"), PostOptions{})
	require.NoError(t, err)

	rev, err := f.engine.Reverse(posted.EntryID, date(2024, time.April, 20), "", PostOptions{})
	require.NoError(t, err)
	assert.Equal(t, posted.EntryID, rev.Reverses)
	assert.Equal(t, "Reversal of "+posted.EntryID, rev.Narration)

	// Sides swapped.
	require.Len(t, rev.Lines, 2)
	assert.True(t, rev.Lines[0].Credit.Equal(dec("500")))
	assert.True(t, rev.Lines[1].Debit.Equal(dec("500")))

	// Original is marked reversed, both entries remain in the journal.
	original, err := f.engine.Find(posted.EntryID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReversed, original.Status)

	entries, err := f.engine.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReverseTwice(t *testing.T) {
	f := newFixture(t)

	posted, err := f.engine.Post(balancedEntry("500"), PostOptions{})
	require.NoError(t, err)
	_, err = f.engine.Reverse(posted.EntryID, date(2024, time.April, 20), "", PostOptions{})
	require.NoError(t, err)

	_, err = f.engine.Reverse(posted.EntryID, date(2024, time.April, 21), "", PostOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already reversed")
}

func TestReverseUnknownEntry(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Reverse("JV-99999", date(2024, time.April, 20), "", PostOptions{})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReverseRespectsPeriodGate(t *testing.T) {
	f := newFixture(t)

	posted, err := f.engine.Post(balancedEntry("500"), PostOptions{})
	require.NoError(t, err)

	_, err = f.guard.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)
	require.NoError(t, f.guard.LockPeriod(2024, 5))

	_, err = f.engine.Reverse(posted.EntryID, date(2024, time.May, 2), "", PostOptions{})
	var locked *errs.PeriodLockedError
	require.ErrorAs(t, err, &locked)
}

func TestPostWritesAuditTrail(t *testing.T) {
	f := newFixture(t)

	posted, err := f.engine.Post(balancedEntry("42"), PostOptions{})
	require.NoError(t, err)

	records, err := auditlog.Read(f.store.CompanyPath("Acme"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "post", records[0].Action)
	assert.Equal(t, posted.EntryID, records[0].EntryID)
	assert.NotEmpty(t, records[0].ID)
}
