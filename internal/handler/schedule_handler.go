package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/middleware"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

type scheduleService interface {
	ListActive(ctx context.Context) ([]models.TrainingSchedule, bool, error)
	ListWithOccupancy(ctx context.Context, session *models.Session) ([]models.ScheduleOccupancy, error)
	Create(ctx context.Context, session *models.Session, req models.CreateScheduleRequest) (*models.TrainingSchedule, error)
	Update(ctx context.Context, session *models.Session, id string, req models.UpdateScheduleRequest) (*models.TrainingSchedule, error)
	Delete(ctx context.Context, session *models.Session, id string) (int64, error)
	EnrolledStudents(ctx context.Context, session *models.Session, id string) ([]models.RosterEntry, error)
}

// ScheduleHandler serves training slots.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// ListActive godoc
// @Summary Active training schedules
// @Description Active slots ordered Lunes to Sábado, then by time
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) ListActive(c *gin.Context) {
	schedules, cacheHit, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, schedules, nil, middleware.ExtractMeta(c))
}

// Occupancy godoc
// @Summary Schedules with enrollment counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/schedules [get]
func (h *ScheduleHandler) Occupancy(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	slots, err := h.service.ListWithOccupancy(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Create schedule
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateScheduleRequest true "Schedule"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update schedule
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body models.UpdateScheduleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), session, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete schedule and its enrollments
// @Tags Admin
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.service.Delete(c.Request.Context(), session, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "enrollmentsRemoved": removed}, nil)
}

// Students godoc
// @Summary Students enrolled in a schedule
// @Tags Admin
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/schedules/{id}/students [get]
func (h *ScheduleHandler) Students(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	students, err := h.service.EnrolledStudents(c.Request.Context(), session, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
