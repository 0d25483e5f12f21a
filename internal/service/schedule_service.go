package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

// DefaultScheduleCapacity applies when a slot is created without a capacity.
const DefaultScheduleCapacity = 15

type scheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error)
	ListActive(ctx context.Context) ([]models.TrainingSchedule, error)
	ListWithOccupancy(ctx context.Context) ([]models.ScheduleOccupancy, error)
	Create(ctx context.Context, schedule *models.TrainingSchedule) error
	Update(ctx context.Context, schedule *models.TrainingSchedule) error
	Delete(ctx context.Context, id string) (int64, error)
}

type rosterReader interface {
	ListRoster(ctx context.Context, filter models.RosterFilter) ([]models.RosterEntry, error)
}

// ScheduleService manages training slots and their occupancy.
type ScheduleService struct {
	repo            scheduleRepository
	roster          rosterReader
	cache           *CacheService
	metrics         *MetricsService
	validator       *validator.Validate
	logger          *zap.Logger
	defaultCapacity int
}

// NewScheduleService constructs a ScheduleService. A non-positive
// defaultCapacity falls back to DefaultScheduleCapacity.
func NewScheduleService(repo scheduleRepository, roster rosterReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, defaultCapacity int) *ScheduleService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultScheduleCapacity
	}
	return &ScheduleService{
		repo:            repo,
		roster:          roster,
		cache:           cache,
		metrics:         metrics,
		validator:       validate,
		logger:          logger,
		defaultCapacity: defaultCapacity,
	}
}

// ListActive returns the active slots ordered by weekday then time. The bool
// reports a cache hit.
func (s *ScheduleService) ListActive(ctx context.Context) ([]models.TrainingSchedule, bool, error) {
	var cached []models.TrainingSchedule
	if s.cache.Get(ctx, activeSchedulesCacheKey, &cached) {
		return cached, true, nil
	}
	schedules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, false, storageError(ctx, s.logger, err, "failed to list schedules")
	}
	if schedules == nil {
		schedules = []models.TrainingSchedule{}
	}
	s.cache.Set(ctx, activeSchedulesCacheKey, schedules)
	return schedules, false, nil
}

// ListWithOccupancy returns every slot with its active enrollment count.
// Always read from storage.
func (s *ScheduleService) ListWithOccupancy(ctx context.Context, session *models.Session) ([]models.ScheduleOccupancy, error) {
	if err := requireCapability(session, models.CapSchedulesManage); err != nil {
		return nil, err
	}
	start := time.Now()
	slots, err := s.repo.ListWithOccupancy(ctx)
	s.metrics.ObserveDBQuery("schedule_occupancy", time.Since(start))
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to load schedule occupancy")
	}
	for i := range slots {
		slots[i].OverCapacity = slots[i].Enrolled >= slots[i].MaxCapacity
	}
	return slots, nil
}

// Get returns one slot.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to load schedule")
	}
	return schedule, nil
}

// Create adds a slot. Slots are active unless the request says otherwise.
func (s *ScheduleService) Create(ctx context.Context, session *models.Session, req models.CreateScheduleRequest) (*models.TrainingSchedule, error) {
	if err := requireCapability(session, models.CapSchedulesManage); err != nil {
		return nil, err
	}
	req.TimeSlot = strings.TrimSpace(req.TimeSlot)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	schedule := &models.TrainingSchedule{
		ID:          uuid.NewString(),
		DayOfWeek:   req.DayOfWeek,
		TimeSlot:    req.TimeSlot,
		MaxCapacity: s.defaultCapacity,
		IsActive:    true,
	}
	if req.MaxCapacity != nil {
		schedule.MaxCapacity = *req.MaxCapacity
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to create schedule")
	}
	s.cache.Invalidate(ctx, activeSchedulesCacheKey)
	return schedule, nil
}

// Update applies the non-nil fields of req.
func (s *ScheduleService) Update(ctx context.Context, session *models.Session, id string, req models.UpdateScheduleRequest) (*models.TrainingSchedule, error) {
	if err := requireCapability(session, models.CapSchedulesManage); err != nil {
		return nil, err
	}
	if req.TimeSlot != nil {
		trimmed := strings.TrimSpace(*req.TimeSlot)
		req.TimeSlot = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = *req.DayOfWeek
	}
	if req.TimeSlot != nil {
		schedule.TimeSlot = *req.TimeSlot
	}
	if req.MaxCapacity != nil {
		schedule.MaxCapacity = *req.MaxCapacity
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to update schedule")
	}
	s.cache.Invalidate(ctx, activeSchedulesCacheKey)
	return schedule, nil
}

// Delete removes the slot together with every enrollment referencing it and
// returns how many enrollments were dropped.
func (s *ScheduleService) Delete(ctx context.Context, session *models.Session, id string) (int64, error) {
	if err := requireCapability(session, models.CapSchedulesManage); err != nil {
		return 0, err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return 0, storageError(ctx, s.logger, err, "failed to delete schedule")
	}
	s.cache.Invalidate(ctx, activeSchedulesCacheKey)
	s.logger.Info("schedule deleted", zap.String("schedule_id", id), zap.Int64("enrollments_removed", removed))
	return removed, nil
}

// EnrolledStudents lists the students in a slot, earliest enrollment first.
func (s *ScheduleService) EnrolledStudents(ctx context.Context, session *models.Session, id string) ([]models.RosterEntry, error) {
	if err := requireCapability(session, models.CapEnrollmentsView); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.roster.ListRoster(ctx, models.RosterFilter{ScheduleID: id})
	if err != nil {
		return nil, storageError(ctx, s.logger, err, "failed to list enrolled students")
	}
	return entries, nil
}
