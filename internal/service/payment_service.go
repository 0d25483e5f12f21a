package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	Review(ctx context.Context, payment *models.Payment, paidOn *models.Date) error
}

// PaymentService handles transfer notices and their review.
type PaymentService struct {
	repo         paymentRepository
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	instructions models.PaymentInstructions
	clock        Clock
	loc          *time.Location
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, instructions models.PaymentInstructions, loc *time.Location) *PaymentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PaymentService{
		repo:         repo,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		instructions: instructions,
		clock:        systemClock,
		loc:          loc,
	}
}

// Instructions returns the bank transfer details shown to members.
func (s *PaymentService) Instructions() models.PaymentInstructions {
	return s.instructions
}

// Report records a transfer made by the caller as pending review.
func (s *PaymentService) Report(ctx context.Context, session *models.Session, req models.CreatePaymentRequest) (*models.Payment, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	req.Note = strings.TrimSpace(req.Note)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	payment := &models.Payment{
		UserID:    session.UserID,
		Amount:    req.Amount,
		Status:    models.PaymentStatusPending,
		Note:      req.Note,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to report payment")
	}
	return payment, nil
}

// ListMine returns the caller's notices, newest first.
func (s *PaymentService) ListMine(ctx context.Context, session *models.Session) ([]models.Payment, error) {
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	payments, err := s.repo.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// List returns the admin review queue.
func (s *PaymentService) List(ctx context.Context, session *models.Session, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	if err := requireCapability(session, models.CapPaymentsReview); err != nil {
		return nil, nil, err
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.PaymentStatusPending, models.PaymentStatusVerified, models.PaymentStatusRejected:
		default:
			return nil, nil, fieldError("status", "valores permitidos: pending verified rejected", "invalid payment filter")
		}
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageError(ctx, s.logger, err, "failed to list payments")
	}
	return payments, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Review verifies or rejects a notice. Verification sets the owner's last
// payment date to the verification day in the school's time zone.
func (s *PaymentService) Review(ctx context.Context, session *models.Session, id string, req models.ReviewPaymentRequest) (*models.Payment, error) {
	if err := requireCapability(session, models.CapPaymentsReview); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid review payload")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to load payment")
	}

	// A verification already stamped the member's last payment date.
	if payment.Status == models.PaymentStatusVerified && req.Status == models.PaymentStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already verified")
	}

	var paidOn *models.Date
	payment.Status = req.Status
	switch req.Status {
	case models.PaymentStatusVerified:
		now := s.clock()
		verifiedAt := now.UTC()
		reviewer := session.UserID
		day := models.NewDate(now.In(s.loc))
		payment.VerifiedAt = &verifiedAt
		payment.VerifiedBy = &reviewer
		paidOn = &day
	default:
		payment.VerifiedAt = nil
		payment.VerifiedBy = nil
	}

	if err := s.repo.Review(ctx, payment, paidOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to review payment")
	}
	s.cache.Invalidate(ctx, profileCacheKey(payment.UserID))
	s.logger.Info("payment reviewed",
		zap.String("payment_id", payment.ID),
		zap.String("status", string(payment.Status)),
		zap.String("reviewer", session.UserID),
	)
	return payment, nil
}
