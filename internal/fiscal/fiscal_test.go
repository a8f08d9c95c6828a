package fiscal

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/store"
)

func newGuard(t *testing.T) *Guard {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	st, err := store.Open(t.TempDir(), log)
	require.NoError(t, err)
	require.NoError(t, st.CreateCompany(model.CompanyMeta{Name: "Acme"}, nil))
	return NewGuard(st, "Acme", log)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateYearTwelveContiguousPeriods(t *testing.T) {
	g := newGuard(t)

	fy, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)
	require.Len(t, fy.Periods, 12)

	assert.Equal(t, 2024, fy.Periods[0].Year)
	assert.Equal(t, 4, fy.Periods[0].Month)
	assert.Equal(t, 2025, fy.Periods[11].Year)
	assert.Equal(t, 3, fy.Periods[11].Month)

	// No gap or overlap between neighbouring periods.
	for i := 1; i < len(fy.Periods); i++ {
		prevEnd := fy.Periods[i-1].EndDate
		start := fy.Periods[i].StartDate
		assert.Equal(t, prevEnd.AddDate(0, 0, 1), start,
			"period %d must start the day after period %d ends", i, i-1)
	}
}

func TestCreateYearRejectsOpenYear(t *testing.T) {
	g := newGuard(t)
	_, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)

	_, err = g.CreateYear(date(2025, time.April, 1))
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	// After closing, a new year may be created.
	require.NoError(t, g.CloseYear())
	_, err = g.CreateYear(date(2025, time.April, 1))
	require.NoError(t, err)
}

func TestPeriodFor(t *testing.T) {
	g := newGuard(t)
	_, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)

	p, ok, err := g.PeriodFor(date(2024, time.April, 15))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, p.Month)
	assert.Equal(t, 2024, p.Year)

	_, ok, err = g.PeriodFor(date(2026, time.January, 1))
	require.NoError(t, err)
	assert.False(t, ok, "date outside the fiscal year has no period")
}

func TestIsLockedWithoutYear(t *testing.T) {
	g := newGuard(t)

	locked, err := g.IsLocked(date(2024, time.April, 15))
	require.NoError(t, err)
	assert.False(t, locked, "no fiscal year means no restriction")
}

func TestLockUnlockIdempotent(t *testing.T) {
	g := newGuard(t)
	_, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)

	require.NoError(t, g.LockPeriod(2024, 4))
	require.NoError(t, g.LockPeriod(2024, 4))

	locked, err := g.IsLocked(date(2024, time.April, 15))
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, g.UnlockPeriod(2024, 4))
	require.NoError(t, g.UnlockPeriod(2024, 4))

	locked, err = g.IsLocked(date(2024, time.April, 15))
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockUnknownPeriod(t *testing.T) {
	g := newGuard(t)
	_, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)

	err = g.LockPeriod(2026, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCloseYearLocksAll(t *testing.T) {
	g := newGuard(t)
	_, err := g.CreateYear(date(2024, time.April, 1))
	require.NoError(t, err)

	require.NoError(t, g.CloseYear())

	status, err := g.PeriodStatus()
	require.NoError(t, err)
	require.Len(t, status, 12)
	for _, p := range status {
		assert.True(t, p.IsLocked, "period %04d-%02d must be locked after close", p.Year, p.Month)
	}

	fy, found, err := g.Year()
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, fy.IsClosed)
}

func TestPeriodStatusWithoutYear(t *testing.T) {
	g := newGuard(t)
	status, err := g.PeriodStatus()
	require.NoError(t, err)
	assert.Nil(t, status)
}
