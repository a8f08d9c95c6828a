// Package accounts manages a company's chart of accounts on top of
// the store.
package accounts

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const (
	accountsKey = "accounts"
	journalKey  = "journal_entries"
)

// Registry provides account operations for one company. All state
// lives in the store; the registry itself is stateless.
type Registry struct {
	store   *store.Store
	company string
}

// NewRegistry creates a Registry bound to a company.
func NewRegistry(st *store.Store, company string) *Registry {
	return &Registry{store: st, company: company}
}

// All returns the chart of accounts in insertion order.
func (r *Registry) All() ([]model.Account, error) {
	var accts []model.Account
	if _, err := r.store.Load(r.company, accountsKey, &accts); err != nil {
		return nil, err
	}
	return accts, nil
}

// ByType returns accounts of one type, in insertion order.
func (r *Registry) ByType(t model.AccountType) ([]model.Account, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	var result []model.Account
	for _, a := range all {
		if a.Type == t {
			result = append(result, a)
		}
	}
	return result, nil
}

// Find returns the account with the given code.
func (r *Registry) Find(code string) (model.Account, error) {
	all, err := r.All()
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range all {
		if a.Code == code {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %q: %w", code, errs.ErrNotFound)
}

// Exists reports whether an account code exists for the company.
func (r *Registry) Exists(code string) (bool, error) {
	_, err := r.Find(code)
	if errs.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add appends a new account. The code must be unique within the
// company and the type must be valid.
func (r *Registry) Add(a model.Account) error {
	if a.Code == "" {
		return fmt.Errorf("account code must not be empty")
	}
	if !a.Type.Valid() {
		return fmt.Errorf("unknown account type %q", a.Type)
	}
	return r.store.WithLock(r.company, func() error {
		all, err := r.All()
		if err != nil {
			return err
		}
		for _, existing := range all {
			if existing.Code == a.Code {
				return &errs.DuplicateCodeError{Code: a.Code}
			}
		}
		if a.Parent != "" {
			if !hasCode(all, a.Parent) {
				return fmt.Errorf("parent account %q: %w", a.Parent, errs.ErrNotFound)
			}
		}
		return r.store.Save(r.company, accountsKey, append(all, a))
	})
}

// Update replaces every field of an account except its code, which is
// immutable after creation.
func (r *Registry) Update(a model.Account) error {
	if !a.Type.Valid() {
		return fmt.Errorf("unknown account type %q", a.Type)
	}
	return r.store.WithLock(r.company, func() error {
		all, err := r.All()
		if err != nil {
			return err
		}
		for i, existing := range all {
			if existing.Code == a.Code {
				all[i] = a
				return r.store.Save(r.company, accountsKey, all)
			}
		}
		return fmt.Errorf("account %q: %w", a.Code, errs.ErrNotFound)
	})
}

// Remove deletes an account. Deletion is rejected while any posted
// journal line references the code, so historical entries are never
// orphaned.
func (r *Registry) Remove(code string) error {
	return r.store.WithLock(r.company, func() error {
		all, err := r.All()
		if err != nil {
			return err
		}
		if !hasCode(all, code) {
			return fmt.Errorf("account %q: %w", code, errs.ErrNotFound)
		}

		refs, err := r.referenceCount(code)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("account %q is referenced by %d journal line(s) and cannot be deleted", code, refs)
		}

		kept := all[:0]
		for _, a := range all {
			if a.Code != code {
				kept = append(kept, a)
			}
		}
		return r.store.Save(r.company, accountsKey, kept)
	})
}

// RecomputeBalances rebuilds the advisory balance cache on every
// account from full journal replay. Nothing in the core reads the
// cache for correctness; it exists for display layers.
func (r *Registry) RecomputeBalances() error {
	return r.store.WithLock(r.company, func() error {
		all, err := r.All()
		if err != nil {
			return err
		}
		var entries []model.JournalEntry
		if _, err := r.store.Load(r.company, journalKey, &entries); err != nil {
			return err
		}

		totals := make(map[string]decimal.Decimal, len(all))
		for _, e := range entries {
			for _, l := range e.Lines {
				totals[l.AccountCode] = totals[l.AccountCode].Add(l.Debit).Sub(l.Credit)
			}
		}
		for i := range all {
			all[i].Balance = totals[all[i].Code]
		}
		return r.store.Save(r.company, accountsKey, all)
	})
}

// Sorted returns the chart of accounts ordered by code.
func (r *Registry) Sorted() ([]model.Account, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all, nil
}

func (r *Registry) referenceCount(code string) (int, error) {
	var entries []model.JournalEntry
	if _, err := r.store.Load(r.company, journalKey, &entries); err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountCode == code {
				count++
			}
		}
	}
	return count, nil
}

func hasCode(accts []model.Account, code string) bool {
	for _, a := range accts {
		if a.Code == code {
			return true
		}
	}
	return false
}
