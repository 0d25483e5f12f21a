package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

type paymentService interface {
	Instructions() models.PaymentInstructions
	Report(ctx context.Context, session *models.Session, req models.CreatePaymentRequest) (*models.Payment, error)
	ListMine(ctx context.Context, session *models.Session) ([]models.Payment, error)
	List(ctx context.Context, session *models.Session, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error)
	Review(ctx context.Context, session *models.Session, id string, req models.ReviewPaymentRequest) (*models.Payment, error)
}

// PaymentHandler serves transfer notices.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(svc paymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// Instructions godoc
// @Summary Bank transfer instructions
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/instructions [get]
func (h *PaymentHandler) Instructions(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Instructions(), nil)
}

// Report godoc
// @Summary Report a transfer
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body models.CreatePaymentRequest true "Transfer"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/payments [post]
func (h *PaymentHandler) Report(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreatePaymentRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}
	payment, err := h.service.Report(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// ListMine godoc
// @Summary Current member's transfer notices
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/payments [get]
func (h *PaymentHandler) ListMine(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	payments, err := h.service.ListMine(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// List godoc
// @Summary Transfer review queue
// @Tags Admin
// @Produce json
// @Param status query string false "pending, verified or rejected"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var filter models.PaymentFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.PaymentStatus(raw)
		filter.Status = &status
	}
	filter.Page, filter.PageSize = pageParams(c)

	payments, pagination, err := h.service.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Review godoc
// @Summary Verify or reject a transfer
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body models.ReviewPaymentRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/payments/{id} [put]
func (h *PaymentHandler) Review(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.ReviewPaymentRequest
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.service.Review(c.Request.Context(), session, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
