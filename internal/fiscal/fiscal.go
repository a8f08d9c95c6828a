// Package fiscal manages a company's fiscal year: twelve contiguous
// monthly periods, per-period lock state, and the date gate consulted
// before every posting.
package fiscal

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

const fiscalYearKey = "fiscal_year"

// Guard provides fiscal period operations for one company.
type Guard struct {
	store   *store.Store
	company string
	log     *logrus.Logger
}

// NewGuard creates a Guard bound to a company. A nil logger falls back
// to the logrus standard logger.
func NewGuard(st *store.Store, company string, log *logrus.Logger) *Guard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Guard{store: st, company: company, log: log}
}

// Year returns the company's fiscal year, if one has been created.
func (g *Guard) Year() (model.FiscalYear, bool, error) {
	var fy model.FiscalYear
	found, err := g.store.Load(g.company, fiscalYearKey, &fy)
	if err != nil {
		return model.FiscalYear{}, false, err
	}
	return fy, found, nil
}

// CreateYear generates twelve contiguous monthly periods beginning at
// start. An open fiscal year must be closed before a new one can be
// created; a closed year is replaced.
func (g *Guard) CreateYear(start time.Time) (model.FiscalYear, error) {
	var created model.FiscalYear
	err := g.store.WithLock(g.company, func() error {
		existing, found, err := g.Year()
		if err != nil {
			return err
		}
		if found && !existing.IsClosed {
			return fmt.Errorf("open fiscal year starting %s: %w",
				existing.StartDate.Format("2006-01-02"), errs.ErrAlreadyExists)
		}
		created = model.NewFiscalYear(start)
		return g.store.Save(g.company, fiscalYearKey, created)
	})
	if err != nil {
		return model.FiscalYear{}, err
	}
	g.log.WithField("company", g.company).
		WithField("start", created.StartDate.Format("2006-01-02")).
		Info("fiscal year created")
	return created, nil
}

// PeriodFor returns the period containing date, or false when no
// fiscal year exists or the date falls outside it.
func (g *Guard) PeriodFor(date time.Time) (model.FiscalPeriod, bool, error) {
	fy, found, err := g.Year()
	if err != nil || !found {
		return model.FiscalPeriod{}, false, err
	}
	p, ok := fy.PeriodFor(date)
	return p, ok, nil
}

// IsLocked reports whether date falls in a locked period. With no
// fiscal year defined the guard imposes no restriction.
func (g *Guard) IsLocked(date time.Time) (bool, error) {
	p, ok, err := g.PeriodFor(date)
	if err != nil || !ok {
		return false, err
	}
	return p.IsLocked, nil
}

// LockPeriod marks one period locked. Locking an already locked
// period is a no-op.
func (g *Guard) LockPeriod(year, month int) error {
	return g.setLock(year, month, true)
}

// UnlockPeriod clears one period's lock. Idempotent.
func (g *Guard) UnlockPeriod(year, month int) error {
	return g.setLock(year, month, false)
}

func (g *Guard) setLock(year, month int, locked bool) error {
	err := g.store.WithLock(g.company, func() error {
		fy, found, err := g.Year()
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("fiscal year for %q: %w", g.company, errs.ErrNotFound)
		}
		for i, p := range fy.Periods {
			if p.Year == year && p.Month == month {
				fy.Periods[i].IsLocked = locked
				return g.store.Save(g.company, fiscalYearKey, fy)
			}
		}
		return fmt.Errorf("period %04d-%02d: %w", year, month, errs.ErrNotFound)
	})
	if err != nil {
		return err
	}
	g.log.WithField("company", g.company).
		WithField("period", fmt.Sprintf("%04d-%02d", year, month)).
		WithField("locked", locked).
		Info("fiscal period lock changed")
	return nil
}

// CloseYear locks all twelve periods and marks the year closed. This
// is terminal for the year object: posting can only resume once a new
// year is created.
func (g *Guard) CloseYear() error {
	err := g.store.WithLock(g.company, func() error {
		fy, found, err := g.Year()
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("fiscal year for %q: %w", g.company, errs.ErrNotFound)
		}
		for i := range fy.Periods {
			fy.Periods[i].IsLocked = true
		}
		fy.IsClosed = true
		return g.store.Save(g.company, fiscalYearKey, fy)
	})
	if err != nil {
		return err
	}
	g.log.WithField("company", g.company).Info("fiscal year closed")
	return nil
}

// PeriodStatus returns all periods of the active year in order, for
// display layers.
func (g *Guard) PeriodStatus() ([]model.FiscalPeriod, error) {
	fy, found, err := g.Year()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return fy.Periods, nil
}
