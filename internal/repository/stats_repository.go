package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daprotis-api/internal/models"
)

// StatsRepository runs the aggregate queries behind the admin counters.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountMembers counts non-admin profiles.
func (r *StatsRepository) CountMembers(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles WHERE role <> $1`, models.RoleAdmin); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

// CountPaidBetween counts non-admin profiles whose last payment date falls in [from, to).
func (r *StatsRepository) CountPaidBetween(ctx context.Context, from, to models.Date) (int, error) {
	const query = `SELECT COUNT(*) FROM profiles WHERE role <> $1 AND last_payment_date >= $2 AND last_payment_date < $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.RoleAdmin, from, to); err != nil {
		return 0, fmt.Errorf("count paid members: %w", err)
	}
	return total, nil
}

// CountActiveEnrollments counts every active enrollment.
func (r *StatsRepository) CountActiveEnrollments(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE status = $1`, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return total, nil
}

// CountPayments counts notices in the given status.
func (r *StatsRepository) CountPayments(ctx context.Context, status models.PaymentStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return total, nil
}

// SumPayments adds up the amounts of notices in the given status.
func (r *StatsRepository) SumPayments(ctx context.Context, status models.PaymentStatus) (float64, error) {
	var total float64
	if err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}
