package accounts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	st, err := store.Open(t.TempDir(), log)
	require.NoError(t, err)
	require.NoError(t, st.CreateCompany(model.CompanyMeta{Name: "Acme"}, map[string]any{
		"accounts":        DefaultChart(),
		"journal_entries": []model.JournalEntry{},
	}))
	return NewRegistry(st, "Acme")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDefaultChartSeeded(t *testing.T) {
	r := newRegistry(t)

	all, err := r.All()
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "1000", all[0].Code)
	assert.Equal(t, model.AccountTypeExpense, all[4].Type)
}

func TestAddDuplicateCode(t *testing.T) {
	r := newRegistry(t)

	err := r.Add(model.Account{Code: "1000", Name: "Shadow Assets", Type: model.AccountTypeAsset})
	require.Error(t, err)
	var dup *errs.DuplicateCodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1000", dup.Code)

	// Existing account untouched.
	a, err := r.Find("1000")
	require.NoError(t, err)
	assert.Equal(t, "Assets", a.Name)
}

func TestAddWithParent(t *testing.T) {
	r := newRegistry(t)

	err := r.Add(model.Account{Code: "1010", Name: "Bank", Type: model.AccountTypeAsset, Parent: "1000"})
	require.NoError(t, err)

	err = r.Add(model.Account{Code: "1020", Name: "Orphan", Type: model.AccountTypeAsset, Parent: "9999"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAddInvalidType(t *testing.T) {
	r := newRegistry(t)
	err := r.Add(model.Account{Code: "6000", Name: "Wat", Type: "contra-memo"})
	require.Error(t, err)
}

func TestUpdateKeepsCode(t *testing.T) {
	r := newRegistry(t)

	require.NoError(t, r.Update(model.Account{Code: "1000", Name: "Current Assets", Type: model.AccountTypeAsset}))

	a, err := r.Find("1000")
	require.NoError(t, err)
	assert.Equal(t, "Current Assets", a.Name)

	err = r.Update(model.Account{Code: "9999", Name: "Ghost", Type: model.AccountTypeAsset})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRemove(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Add(model.Account{Code: "1010", Name: "Bank", Type: model.AccountTypeAsset}))

	require.NoError(t, r.Remove("1010"))

	found, err := r.Exists("1010")
	require.NoError(t, err)
	assert.False(t, found)

	err = r.Remove("1010")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRemoveReferencedAccount(t *testing.T) {
	r := newRegistry(t)

	entries := []model.JournalEntry{{
		EntryID: "JV-00001",
		Date:    time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		Type:    model.VoucherJournal,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Debit: dec("100")},
			{AccountCode: "4000", Credit: dec("100")},
		},
		Status: model.StatusPosted,
	}}
	require.NoError(t, r.store.Save("Acme", "journal_entries", entries))

	err := r.Remove("1000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "referenced")

	// Still present.
	found, ferr := r.Exists("1000")
	require.NoError(t, ferr)
	assert.True(t, found)
}

func TestRecomputeBalances(t *testing.T) {
	r := newRegistry(t)

	entries := []model.JournalEntry{{
		EntryID: "JV-00001",
		Date:    time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		Type:    model.VoucherJournal,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Debit: dec("250.50")},
			{AccountCode: "4000", Credit: dec("250.50")},
		},
		Status: model.StatusPosted,
	}}
	require.NoError(t, r.store.Save("Acme", "journal_entries", entries))

	require.NoError(t, r.RecomputeBalances())

	a, err := r.Find("1000")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("250.50")), "got %s", a.Balance)

	rev, err := r.Find("4000")
	require.NoError(t, err)
	assert.True(t, rev.Balance.Equal(dec("-250.50")), "got %s", rev.Balance)
}

func TestByTypeAndSorted(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Add(model.Account{Code: "0999", Name: "Petty Cash", Type: model.AccountTypeAsset}))

	assets, err := r.ByType(model.AccountTypeAsset)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	// Insertion order.
	assert.Equal(t, "1000", assets[0].Code)

	sorted, err := r.Sorted()
	require.NoError(t, err)
	assert.Equal(t, "0999", sorted[0].Code)
}
