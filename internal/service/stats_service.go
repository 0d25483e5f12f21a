package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/dto"
	"github.com/noah-isme/daprotis-api/internal/models"
)

type statsRepository interface {
	CountMembers(ctx context.Context) (int, error)
	CountPaidBetween(ctx context.Context, from, to models.Date) (int, error)
	CountActiveEnrollments(ctx context.Context) (int, error)
	CountPayments(ctx context.Context, status models.PaymentStatus) (int, error)
	SumPayments(ctx context.Context, status models.PaymentStatus) (float64, error)
}

// StatsService computes the admin dashboard counters on every call.
type StatsService struct {
	repo    statsRepository
	metrics *MetricsService
	logger  *zap.Logger
	clock   Clock
	loc     *time.Location
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{repo: repo, metrics: metrics, logger: logger, clock: systemClock, loc: loc}
}

// Admin returns member and payment totals for the current month.
func (s *StatsService) Admin(ctx context.Context, session *models.Session) (*dto.AdminStatsResponse, error) {
	if err := requireCapability(session, models.CapStatsView); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("admin_stats", time.Since(start)) }()

	now := s.clock().In(s.loc)
	from, to := MonthRange(now)

	totalUsers, err := s.repo.CountMembers(ctx)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to count members")
	}
	paid, err := s.repo.CountPaidBetween(ctx, from, to)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to count paid members")
	}
	enrollments, err := s.repo.CountActiveEnrollments(ctx)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to count enrollments")
	}
	pending, err := s.repo.CountPayments(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to count pending payments")
	}
	revenue, err := s.repo.SumPayments(ctx, models.PaymentStatusVerified)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to sum verified payments")
	}

	return &dto.AdminStatsResponse{
		TotalUsers:        totalUsers,
		PaidThisMonth:     paid,
		ActiveEnrollments: enrollments,
		PendingPayments:   pending,
		VerifiedRevenue:   revenue,
		Month:             now.Format("2006-01"),
		GeneratedAt:       now.UTC(),
	}, nil
}
