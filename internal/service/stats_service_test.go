package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

// fakeStatsRepo computes the counters from in-memory profiles.
type fakeStatsRepo struct {
	profiles []models.Profile
	from, to models.Date
	err      error
}

func (f *fakeStatsRepo) CountMembers(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, p := range f.profiles {
		if p.Role != models.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeStatsRepo) CountPaidBetween(_ context.Context, from, to models.Date) (int, error) {
	f.from, f.to = from, to
	n := 0
	for _, p := range f.profiles {
		if p.Role == models.RoleAdmin || p.LastPaymentDate == nil {
			continue
		}
		if !p.LastPaymentDate.Before(from.Time) && p.LastPaymentDate.Before(to.Time) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStatsRepo) CountActiveEnrollments(context.Context) (int, error) { return 7, nil }

func (f *fakeStatsRepo) CountPayments(_ context.Context, status models.PaymentStatus) (int, error) {
	if status == models.PaymentStatusPending {
		return 3, nil
	}
	return 0, nil
}

func (f *fakeStatsRepo) SumPayments(context.Context, models.PaymentStatus) (float64, error) {
	return 45000, nil
}

func TestAdminStatsCountsMembersAndPaidThisMonth(t *testing.T) {
	paid := func(raw string) *models.Date {
		d, err := models.ParseDate(raw)
		require.NoError(t, err)
		return &d
	}
	repo := &fakeStatsRepo{profiles: []models.Profile{
		{ID: "a", Role: models.RoleUser, LastPaymentDate: paid("2025-03-02")},
		{ID: "b", Role: models.RoleUser, LastPaymentDate: paid("2025-03-31")},
		{ID: "c", Role: models.RoleUser, LastPaymentDate: paid("2025-02-28")},
		{ID: "d", Role: models.RoleUser},
		{ID: "e", Role: models.RoleUser, LastPaymentDate: paid("2025-04-01")},
		{ID: "admin", Role: models.RoleAdmin, LastPaymentDate: paid("2025-03-10")},
	}}
	svc := NewStatsService(repo, nil, nil, buenosAires)
	svc.clock = fixedClock(time.Date(2025, 3, 15, 12, 0, 0, 0, buenosAires))

	stats, err := svc.Admin(context.Background(), adminSession())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalUsers)
	assert.Equal(t, 2, stats.PaidThisMonth)
	assert.Equal(t, 7, stats.ActiveEnrollments)
	assert.Equal(t, 3, stats.PendingPayments)
	assert.Equal(t, 45000.0, stats.VerifiedRevenue)
	assert.Equal(t, "2025-03", stats.Month)
	assert.Equal(t, "2025-03-01", repo.from.String())
	assert.Equal(t, "2025-04-01", repo.to.String())
}

func TestAdminStatsUsesSchoolMonth(t *testing.T) {
	repo := &fakeStatsRepo{}
	svc := NewStatsService(repo, nil, nil, buenosAires)
	// Still February in Buenos Aires.
	svc.clock = fixedClock(time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC))

	stats, err := svc.Admin(context.Background(), adminSession())
	require.NoError(t, err)
	assert.Equal(t, "2025-02", stats.Month)
	assert.Equal(t, "2025-02-01", repo.from.String())
}

func TestAdminStatsGuards(t *testing.T) {
	raw := errors.New("connection reset")
	svc := NewStatsService(&fakeStatsRepo{err: raw}, nil, nil, buenosAires)

	_, err := svc.Admin(context.Background(), memberSession("u1"))
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Admin(context.Background(), adminSession())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.ErrorIs(t, err, raw)
}
