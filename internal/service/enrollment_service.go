package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/dto"
	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

type enrollmentRepository interface {
	FindActive(ctx context.Context, userID, scheduleID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
	ListActiveByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
	CountActiveInWindow(ctx context.Context, userID string, start, end time.Time) (int, error)
	ListRoster(ctx context.Context, filter models.RosterFilter) ([]models.RosterEntry, error)
}

type scheduleFinder interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error)
}

type profileLoader interface {
	Load(ctx context.Context, id string) (*models.Profile, error)
}

type activeScheduleLister interface {
	ListActive(ctx context.Context) ([]models.TrainingSchedule, bool, error)
}

// EnrollmentService toggles class enrollments under the eligibility rules.
// Each call reads, writes at most once and re-reads; nothing is locked, so
// two concurrent enrolls for the same slot can both succeed.
type EnrollmentService struct {
	repo      enrollmentRepository
	schedules scheduleFinder
	listing   activeScheduleLister
	profiles  profileLoader
	evaluator *EligibilityEvaluator
	metrics   *MetricsService
	logger    *zap.Logger
	clock     Clock
	loc       *time.Location
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, schedules scheduleFinder, listing activeScheduleLister, profiles profileLoader, evaluator *EligibilityEvaluator, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *EnrollmentService {
	if evaluator == nil {
		evaluator = NewEligibilityEvaluator(DefaultGracePeriodDays)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EnrollmentService{
		repo:      repo,
		schedules: schedules,
		listing:   listing,
		profiles:  profiles,
		evaluator: evaluator,
		metrics:   metrics,
		logger:    logger,
		clock:     systemClock,
		loc:       loc,
	}
}

func (s *EnrollmentService) now() time.Time {
	return s.clock().In(s.loc)
}

// Toggle enrolls the caller in the slot, or removes the existing enrollment.
func (s *EnrollmentService) Toggle(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	existing, err := s.findActive(ctx, session.UserID, scheduleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.unenroll(ctx, session, existing)
	}
	return s.enroll(ctx, session, scheduleID)
}

// Enroll adds the caller to the slot. Already enrolled is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	existing, err := s.findActive(ctx, session.UserID, scheduleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya estás inscripto en este horario")
	}
	return s.enroll(ctx, session, scheduleID)
}

// Unenroll removes the caller from the slot.
func (s *EnrollmentService) Unenroll(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	existing, err := s.findActive(ctx, session.UserID, scheduleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no estás inscripto en este horario")
	}
	return s.unenroll(ctx, session, existing)
}

func (s *EnrollmentService) findActive(ctx context.Context, userID, scheduleID string) (*models.Enrollment, error) {
	existing, err := s.repo.FindActive(ctx, userID, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError(ctx, s.logger, err, "failed to check enrollment")
	}
	return existing, nil
}

func (s *EnrollmentService) unenroll(ctx context.Context, session *models.Session, existing *models.Enrollment) (*dto.ToggleEnrollmentResponse, error) {
	// A row already removed by a concurrent request still counts as unenrolled.
	if err := s.repo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageError(ctx, s.logger, err, "failed to remove enrollment")
	}
	return s.respond(ctx, session, dto.ActionUnenrolled, existing.ScheduleID, "inscripción cancelada")
}

func (s *EnrollmentService) enroll(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to load schedule")
	}
	if !schedule.IsActive {
		return nil, appErrors.Clone(appErrors.ErrConflict, "el horario no está disponible")
	}

	profile, err := s.profiles.Load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	verdict, _, err := s.evaluate(ctx, profile, now)
	if err != nil {
		return nil, err
	}
	if !verdict.Approved {
		s.metrics.RecordEnrollmentRejection(string(verdict.Reason))
		return nil, verdict.Err()
	}

	enrollment := &models.Enrollment{
		UserID:     session.UserID,
		ScheduleID: schedule.ID,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: now.UTC(),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to create enrollment")
	}
	message := fmt.Sprintf("inscripción confirmada: %s %s", schedule.DayOfWeek, schedule.TimeSlot)
	return s.respond(ctx, session, dto.ActionEnrolled, schedule.ID, message)
}

// evaluate counts the current week's enrollments and applies the rules.
func (s *EnrollmentService) evaluate(ctx context.Context, profile *models.Profile, now time.Time) (Verdict, int, error) {
	start, end := WeekWindow(now)
	count, err := s.repo.CountActiveInWindow(ctx, profile.ID, start, end)
	if err != nil {
		return Verdict{}, 0, storageError(ctx, s.logger, err, "failed to count weekly enrollments")
	}
	verdict := s.evaluator.Evaluate(EligibilityInput{
		LastPaymentDate: profile.LastPaymentDate,
		WeeklyAllowance: profile.WeeklyAllowance,
		Now:             now,
		WeeklyCount:     count,
	})
	return verdict, count, nil
}

func (s *EnrollmentService) respond(ctx context.Context, session *models.Session, action dto.ToggleAction, scheduleID, message string) (*dto.ToggleEnrollmentResponse, error) {
	s.metrics.RecordEnrollmentToggle(string(action))
	s.logger.Info("enrollment toggled",
		zap.String("user_id", session.UserID),
		zap.String("schedule_id", scheduleID),
		zap.String("action", string(action)),
	)
	enrollments, err := s.listMine(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleEnrollmentResponse{
		Action:      action,
		ScheduleID:  scheduleID,
		Message:     message,
		Enrollments: enrollments,
	}, nil
}

// ListMine returns the caller's active enrollments with slot details.
func (s *EnrollmentService) ListMine(ctx context.Context, session *models.Session) ([]models.EnrollmentDetail, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	return s.listMine(ctx, session.UserID)
}

func (s *EnrollmentService) listMine(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	return enrollments, nil
}

// Dashboard assembles the member landing page: profile, eligibility for one
// more class this week, the active slots and the member's enrollments.
func (s *EnrollmentService) Dashboard(ctx context.Context, session *models.Session) (*dto.StudentDashboardResponse, error) {
	if err := requireCapability(session, models.CapEnrollmentSelf); err != nil {
		return nil, err
	}
	profile, err := s.profiles.Load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	verdict, used, err := s.evaluate(ctx, profile, now)
	if err != nil {
		return nil, err
	}
	schedules, _, err := s.listing.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.listMine(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	weekStart, _ := WeekWindow(now)
	summary := dto.EligibilitySummary{
		CanEnroll:       verdict.Approved,
		Reason:          string(verdict.Reason),
		Message:         verdict.Message,
		GracePeriod:     verdict.Reason == ReasonGracePeriod,
		PaidThisMonth:   profile.LastPaymentDate != nil && profile.LastPaymentDate.SameMonth(now),
		WeeklyAllowance: profile.WeeklyAllowance,
		WeeklyUsed:      used,
		WeekStart:       models.NewDate(weekStart).String(),
	}
	return &dto.StudentDashboardResponse{
		Profile:     profile,
		Eligibility: summary,
		Schedules:   schedules,
		Enrollments: enrollments,
	}, nil
}

// Roster lists active enrollments across slots for admins, oldest first.
func (s *EnrollmentService) Roster(ctx context.Context, session *models.Session, filter models.RosterFilter) ([]models.RosterEntry, error) {
	if err := requireCapability(session, models.CapEnrollmentsView); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListRoster(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to list roster")
	}
	if entries == nil {
		entries = []models.RosterEntry{}
	}
	return entries, nil
}
