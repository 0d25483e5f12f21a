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

func newProfileFixture(profiles ...*models.Profile) (*ProfileService, *fakeProfileRepo, *memoryCache) {
	repo := newFakeProfileRepo(profiles...)
	cache := newMemoryCache()
	svc := NewProfileService(repo, newTestCache(cache), nil, nil, buenosAires)
	svc.clock = fixedClock(time.Date(2025, 3, 12, 10, 0, 0, 0, buenosAires))
	return svc, repo, cache
}

func TestGetMeCachesProfile(t *testing.T) {
	svc, repo, cache := newProfileFixture(&models.Profile{ID: "u1", FirstName: "Ana", Role: models.RoleUser})
	ctx := context.Background()

	profile, hit, err := svc.GetMe(ctx, memberSession("u1"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Ana", profile.FirstName)
	assert.True(t, cache.has(profileCacheKey("u1")))

	_, hit, err = svc.GetMe(ctx, memberSession("u1"))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.findCalls)
}

func TestGetMeMissingProfile(t *testing.T) {
	svc, _, _ := newProfileFixture()
	_, _, err := svc.GetMe(context.Background(), memberSession("ghost"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateMeReportsFieldErrors(t *testing.T) {
	svc, _, _ := newProfileFixture(&models.Profile{ID: "u1", Role: models.RoleUser})

	_, err := svc.UpdateMe(context.Background(), memberSession("u1"), models.UpdateProfileRequest{
		FirstName:   "",
		LastName:    "Gómez",
		Phone:       "12-34",
		DateOfBirth: "12/03/1990",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "campo obligatorio", appErr.Details["first_name"])
	assert.Contains(t, appErr.Details, "phone")
	assert.Contains(t, appErr.Details, "date_of_birth")
	assert.NotContains(t, appErr.Details, "last_name")
}

func TestUpdateMeRejectsFutureBirthDate(t *testing.T) {
	svc, _, _ := newProfileFixture(&models.Profile{ID: "u1", Role: models.RoleUser})

	_, err := svc.UpdateMe(context.Background(), memberSession("u1"), models.UpdateProfileRequest{
		FirstName: "Ana", LastName: "Gómez", Phone: "11 5555-4444", DateOfBirth: "2030-01-01",
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "date_of_birth")
}

func TestUpdateMeInvalidatesCache(t *testing.T) {
	svc, repo, cache := newProfileFixture(&models.Profile{ID: "u1", FirstName: "Ana", Role: models.RoleUser})
	ctx := context.Background()
	_, _, err := svc.GetMe(ctx, memberSession("u1"))
	require.NoError(t, err)

	address := "  Av. Siempre Viva 742 "
	updated, err := svc.UpdateMe(ctx, memberSession("u1"), models.UpdateProfileRequest{
		FirstName: "Ana María", LastName: "Gómez", Phone: "11 5555-4444", DateOfBirth: "1990-05-04", Address: &address,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana María", updated.FirstName)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Av. Siempre Viva 742", *updated.Address)
	assert.Equal(t, "1990-05-04", updated.DateOfBirth.String())
	assert.Equal(t, "Ana María", repo.profiles["u1"].FirstName)
	assert.Contains(t, cache.deleted, profileCacheKey("u1"))
}

func TestSetPaymentDateAndAllowance(t *testing.T) {
	svc, repo, cache := newProfileFixture(&models.Profile{ID: "u1", Role: models.RoleUser})
	ctx := context.Background()
	_, err := svc.Load(ctx, "u1")
	require.NoError(t, err)

	date := "2025-03-05"
	profile, err := svc.SetPaymentDate(ctx, adminSession(), "u1", models.SetPaymentDateRequest{LastPaymentDate: &date})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", profile.LastPaymentDate.String())
	assert.Contains(t, cache.deleted, profileCacheKey("u1"))

	profile, err = svc.SetPaymentDate(ctx, adminSession(), "u1", models.SetPaymentDateRequest{})
	require.NoError(t, err)
	assert.Nil(t, profile.LastPaymentDate)

	profile, err = svc.SetWeeklyAllowance(ctx, adminSession(), "u1", models.SetWeeklyAllowanceRequest{WeeklyAllowance: intPtr(3)})
	require.NoError(t, err)
	require.NotNil(t, profile.WeeklyAllowance)
	assert.Equal(t, 3, *repo.profiles["u1"].WeeklyAllowance)

	_, err = svc.SetWeeklyAllowance(ctx, adminSession(), "u1", models.SetWeeklyAllowanceRequest{WeeklyAllowance: intPtr(0)})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "cant_por_semana")

	profile, err = svc.SetWeeklyAllowance(ctx, adminSession(), "u1", models.SetWeeklyAllowanceRequest{})
	require.NoError(t, err)
	assert.Nil(t, profile.WeeklyAllowance)
}

func TestAdminProfileOperationsRequireCapability(t *testing.T) {
	svc, _, _ := newProfileFixture(&models.Profile{ID: "u1", Role: models.RoleUser})
	ctx := context.Background()

	_, _, err := svc.List(ctx, memberSession("u1"), models.ProfileFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = svc.SetWeeklyAllowance(ctx, memberSession("u1"), "u1", models.SetWeeklyAllowanceRequest{WeeklyAllowance: intPtr(5)})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestListProfilesDefaultsPagination(t *testing.T) {
	svc, repo, _ := newProfileFixture(&models.Profile{ID: "u1", Role: models.RoleUser}, &models.Profile{ID: "u2", Role: models.RoleUser})

	profiles, pagination, err := svc.List(context.Background(), adminSession(), models.ProfileFilter{Search: "ana"})
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
	assert.Equal(t, "ana", repo.listed.Search)
}
