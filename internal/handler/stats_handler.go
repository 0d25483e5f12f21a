package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/dto"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

type statsService interface {
	Admin(ctx context.Context, session *models.Session) (*dto.AdminStatsResponse, error)
}

// StatsHandler serves the admin dashboard counters.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(svc statsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Admin godoc
// @Summary Admin dashboard counters
// @Description Recomputed on every call
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/stats [get]
func (h *StatsHandler) Admin(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	stats, err := h.service.Admin(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
