package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/dto"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/internal/service"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

type enrollmentService interface {
	Toggle(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error)
	Enroll(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error)
	Unenroll(ctx context.Context, session *models.Session, scheduleID string) (*dto.ToggleEnrollmentResponse, error)
	ListMine(ctx context.Context, session *models.Session) ([]models.EnrollmentDetail, error)
	Dashboard(ctx context.Context, session *models.Session) (*dto.StudentDashboardResponse, error)
	Roster(ctx context.Context, session *models.Session, filter models.RosterFilter) ([]models.RosterEntry, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, session *models.Session, format service.ExportFormat, filter models.RosterFilter) (*service.ExportResult, error)
}

type enrollRequest struct {
	ScheduleID string `json:"scheduleId" binding:"required"`
}

// EnrollmentHandler serves class enrollments.
type EnrollmentHandler struct {
	service  enrollmentService
	exporter rosterExporter
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService, exporter rosterExporter) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, exporter: exporter}
}

// Toggle godoc
// @Summary Toggle enrollment in a schedule
// @Description Enrolls when not enrolled (subject to payment and weekly allowance), otherwise removes the enrollment
// @Tags Enrollments
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/enrollments/{scheduleId}/toggle [post]
func (h *EnrollmentHandler) Toggle(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	scheduleID, ok := idParam(c, "scheduleId")
	if !ok {
		return
	}
	res, err := h.service.Toggle(c.Request.Context(), session, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Enroll godoc
// @Summary Enroll in a schedule
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body enrollRequest true "Schedule"
// @Success 201 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req enrollRequest
	if !bindJSON(c, &req, "scheduleId is required") {
		return
	}
	scheduleID, ok := validID(c, "scheduleId", req.ScheduleID, false)
	if !ok {
		return
	}
	res, err := h.service.Enroll(c.Request.Context(), session, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Unenroll godoc
// @Summary Leave a schedule
// @Tags Enrollments
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/enrollments/{scheduleId} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	scheduleID, ok := idParam(c, "scheduleId")
	if !ok {
		return
	}
	res, err := h.service.Unenroll(c.Request.Context(), session, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ListMine godoc
// @Summary Current member's enrollments
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/enrollments [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	enrollments, err := h.service.ListMine(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Dashboard godoc
// @Summary Member dashboard
// @Description Profile, eligibility for one more class this week, active schedules and current enrollments
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/dashboard [get]
func (h *EnrollmentHandler) Dashboard(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	res, err := h.service.Dashboard(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Roster godoc
// @Summary Active enrollment roster
// @Tags Admin
// @Produce json
// @Param scheduleId query string false "Limit to one schedule"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/enrollments [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	scheduleID, ok := validID(c, "scheduleId", c.Query("scheduleId"), true)
	if !ok {
		return
	}
	filter := models.RosterFilter{ScheduleID: scheduleID}
	entries, err := h.service.Roster(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Download the enrollment roster
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param scheduleId query string false "Limit to one schedule"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	scheduleID, ok := validID(c, "scheduleId", c.Query("scheduleId"), true)
	if !ok {
		return
	}
	filter := models.RosterFilter{ScheduleID: scheduleID}
	result, err := h.exporter.Roster(c.Request.Context(), session, format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Body)
}
