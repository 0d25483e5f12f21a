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

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	UpdatePersonal(ctx context.Context, profile *models.Profile) error
	SetLastPaymentDate(ctx context.Context, id string, date *models.Date) error
	SetWeeklyAllowance(ctx context.Context, id string, allowance *int) error
	List(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error)
}

// ProfileService manages member profiles.
type ProfileService struct {
	repo      profileRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	loc       *time.Location
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *ProfileService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ProfileService{repo: repo, cache: cache, validator: validate, logger: logger, clock: systemClock, loc: loc}
}

// Load returns the profile by id, reading through the cache.
func (s *ProfileService) Load(ctx context.Context, id string) (*models.Profile, error) {
	profile, _, err := s.load(ctx, id)
	return profile, err
}

func (s *ProfileService) load(ctx context.Context, id string) (*models.Profile, bool, error) {
	key := profileCacheKey(id)
	var cached models.Profile
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, false, storageError(ctx, s.logger, err, "failed to load profile")
	}
	s.cache.Set(ctx, key, profile)
	return profile, false, nil
}

// GetMe returns the caller's profile and whether it came from cache.
func (s *ProfileService) GetMe(ctx context.Context, session *models.Session) (*models.Profile, bool, error) {
	if session == nil {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	return s.load(ctx, session.UserID)
}

// UpdateMe replaces the caller's personal data.
func (s *ProfileService) UpdateMe(ctx context.Context, session *models.Session, req models.UpdateProfileRequest) (*models.Profile, error) {
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	dob, err := models.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, fieldError("date_of_birth", "usar el formato AAAA-MM-DD", "invalid profile payload")
	}
	if dob.After(models.NewDate(s.clock().In(s.loc)).Time) {
		return nil, fieldError("date_of_birth", "la fecha no puede ser futura", "invalid profile payload")
	}

	profile, err := s.Load(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.Phone = req.Phone
	profile.DateOfBirth = &dob
	profile.Address = trimOptional(req.Address)

	if err := s.repo.UpdatePersonal(ctx, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to update profile")
	}
	s.cache.Invalidate(ctx, profileCacheKey(profile.ID))
	return s.Load(ctx, profile.ID)
}

// List returns profiles for the admin member list, newest first.
func (s *ProfileService) List(ctx context.Context, session *models.Session, filter models.ProfileFilter) ([]models.ProfileWithEmail, *models.Pagination, error) {
	if err := requireCapability(session, models.CapProfilesManage); err != nil {
		return nil, nil, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, fieldError("role", "valores permitidos: user admin", "invalid profile filter")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storageError(ctx, s.logger, err, "failed to list profiles")
	}
	return profiles, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// SetPaymentDate records or clears a member's last payment date.
func (s *ProfileService) SetPaymentDate(ctx context.Context, session *models.Session, id string, req models.SetPaymentDateRequest) (*models.Profile, error) {
	if err := requireCapability(session, models.CapProfilesManage); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment date")
	}
	var date *models.Date
	if req.LastPaymentDate != nil && strings.TrimSpace(*req.LastPaymentDate) != "" {
		parsed, err := models.ParseDate(*req.LastPaymentDate)
		if err != nil {
			return nil, fieldError("last_payment_date", "usar el formato AAAA-MM-DD", "invalid payment date")
		}
		date = &parsed
	}
	if err := s.repo.SetLastPaymentDate(ctx, id, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to update payment date")
	}
	s.cache.Invalidate(ctx, profileCacheKey(id))
	return s.Load(ctx, id)
}

// SetWeeklyAllowance records or clears how many classes a member may take per week.
func (s *ProfileService) SetWeeklyAllowance(ctx context.Context, session *models.Session, id string, req models.SetWeeklyAllowanceRequest) (*models.Profile, error) {
	if err := requireCapability(session, models.CapProfilesManage); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid weekly allowance")
	}
	if err := s.repo.SetWeeklyAllowance(ctx, id, req.WeeklyAllowance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, storageError(ctx, s.logger, err, "failed to update weekly allowance")
	}
	s.cache.Invalidate(ctx, profileCacheKey(id))
	return s.Load(ctx, id)
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
