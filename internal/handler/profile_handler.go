package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/middleware"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

type profileService interface {
	GetMe(ctx context.Context, session *models.Session) (*models.Profile, bool, error)
	UpdateMe(ctx context.Context, session *models.Session, req models.UpdateProfileRequest) (*models.Profile, error)
	List(ctx context.Context, session *models.Session, filter models.ProfileFilter) ([]models.ProfileWithEmail, *models.Pagination, error)
	SetPaymentDate(ctx context.Context, session *models.Session, id string, req models.SetPaymentDateRequest) (*models.Profile, error)
	SetWeeklyAllowance(ctx context.Context, session *models.Session, id string, req models.SetWeeklyAllowanceRequest) (*models.Profile, error)
}

// ProfileHandler serves member profiles.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// GetMe godoc
// @Summary Current member profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/profile [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	profile, cacheHit, err := h.service.GetMe(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, profile, nil, middleware.ExtractMeta(c))
}

// UpdateMe godoc
// @Summary Update personal data
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/profile [put]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.service.UpdateMe(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List members
// @Tags Admin
// @Produce json
// @Param role query string false "user or admin"
// @Param search query string false "Name, phone or email"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	filter := models.ProfileFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := models.Role(raw)
		filter.Role = &role
	}
	filter.Page, filter.PageSize = pageParams(c)

	profiles, pagination, err := h.service.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, pagination)
}

// SetPaymentDate godoc
// @Summary Set or clear a member's last payment date
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body models.SetPaymentDateRequest true "Date or null"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/profiles/{id}/payment-date [put]
func (h *ProfileHandler) SetPaymentDate(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.SetPaymentDateRequest
	if !bindJSON(c, &req, "invalid payment date") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.SetPaymentDate(c.Request.Context(), session, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SetWeeklyAllowance godoc
// @Summary Set or clear a member's weekly class allowance
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body models.SetWeeklyAllowanceRequest true "Allowance or null"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/profiles/{id}/weekly-allowance [put]
func (h *ProfileHandler) SetWeeklyAllowance(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.SetWeeklyAllowanceRequest
	if !bindJSON(c, &req, "invalid weekly allowance") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.SetWeeklyAllowance(c.Request.Context(), session, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
