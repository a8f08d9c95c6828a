package model

import "time"

// FiscalPeriod is one month of a fiscal year. Start and end dates are
// derived from year/month and are contiguous with the neighbouring
// periods.
type FiscalPeriod struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsLocked  bool      `json:"is_locked"`
}

// Contains reports whether d falls inside the period (inclusive).
func (p FiscalPeriod) Contains(d time.Time) bool {
	day := DateOnly(d)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}

// FiscalYear is twelve contiguous monthly periods. Closing a year
// locks every period and is terminal for the year object.
type FiscalYear struct {
	StartDate time.Time      `json:"start_date"`
	IsClosed  bool           `json:"is_closed"`
	Periods   []FiscalPeriod `json:"periods"`
}

// PeriodFor returns the period containing d, if any.
func (y FiscalYear) PeriodFor(d time.Time) (FiscalPeriod, bool) {
	for _, p := range y.Periods {
		if p.Contains(d) {
			return p, true
		}
	}
	return FiscalPeriod{}, false
}

// NewFiscalPeriod builds the period for a calendar month with derived
// start and end dates.
func NewFiscalPeriod(year, month int) FiscalPeriod {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return FiscalPeriod{Year: year, Month: month, StartDate: start, EndDate: end}
}

// NewFiscalYear generates twelve contiguous monthly periods beginning
// at the month of start.
func NewFiscalYear(start time.Time) FiscalYear {
	fy := FiscalYear{StartDate: DateOnly(start)}
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		fy.Periods = append(fy.Periods, NewFiscalPeriod(cur.Year(), int(cur.Month())))
		cur = cur.AddDate(0, 1, 0)
	}
	return fy
}

// DateOnly truncates t to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
