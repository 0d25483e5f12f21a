package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

type paymentServiceMock struct {
	err        error
	lastReport models.CreatePaymentRequest
	lastFilter models.PaymentFilter
	lastReview models.ReviewPaymentRequest
	lastID     string
}

func (m *paymentServiceMock) Instructions() models.PaymentInstructions {
	return models.PaymentInstructions{Alias: "DAPROTIS.ENTRENA"}
}

func (m *paymentServiceMock) Report(ctx context.Context, session *models.Session, req models.CreatePaymentRequest) (*models.Payment, error) {
	m.lastReport = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Payment{ID: "pay-1", UserID: session.UserID, Amount: req.Amount, Status: models.PaymentStatusPending}, nil
}

func (m *paymentServiceMock) ListMine(ctx context.Context, session *models.Session) ([]models.Payment, error) {
	return []models.Payment{}, m.err
}

func (m *paymentServiceMock) List(ctx context.Context, session *models.Session, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.PaymentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *paymentServiceMock) Review(ctx context.Context, session *models.Session, id string, req models.ReviewPaymentRequest) (*models.Payment, error) {
	m.lastID, m.lastReview = id, req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Payment{ID: id, Status: req.Status}, nil
}

func TestPaymentHandlerInstructions(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceMock{})
	c, w := newContext(http.MethodGet, "/payments/instructions", "", nil)

	h.Instructions(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DAPROTIS.ENTRENA")
}

func TestPaymentHandlerReport(t *testing.T) {
	svc := &paymentServiceMock{}
	h := NewPaymentHandler(svc)
	c, w := newContext(http.MethodPost, "/me/payments", `{"amount":15000,"note":"octubre"}`, memberSession)

	h.Report(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 15000.0, svc.lastReport.Amount)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestPaymentHandlerReportMalformed(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceMock{})
	c, w := newContext(http.MethodPost, "/me/payments", `{"amount":"mucho"}`, memberSession)

	h.Report(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandlerListStatusFilter(t *testing.T) {
	svc := &paymentServiceMock{}
	h := NewPaymentHandler(svc)
	c, w := newContext(http.MethodGet, "/admin/payments?status=pending&page=3", "", adminSession)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.Status)
	assert.Equal(t, models.PaymentStatusPending, *svc.lastFilter.Status)
	assert.Equal(t, 3, svc.lastFilter.Page)
	assert.NotNil(t, decode(t, w).Pagination)
}

func TestPaymentHandlerListForbidden(t *testing.T) {
	h := NewPaymentHandler(&paymentServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")})
	c, w := newContext(http.MethodGet, "/admin/payments", "", memberSession)

	h.List(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentHandlerReview(t *testing.T) {
	svc := &paymentServiceMock{}
	h := NewPaymentHandler(svc)
	c, w := newContext(http.MethodPut, "/admin/payments/"+paymentID, `{"status":"verified"}`, adminSession)
	c.Params = append(c.Params, ginParam("id", paymentID))

	h.Review(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paymentID, svc.lastID)
	assert.Equal(t, models.PaymentStatusVerified, svc.lastReview.Status)
}

func TestPaymentHandlerReviewRejectsMalformedID(t *testing.T) {
	svc := &paymentServiceMock{}
	h := NewPaymentHandler(svc)
	c, w := newContext(http.MethodPut, "/admin/payments/p1", `{"status":"verified"}`, adminSession)
	c.Params = append(c.Params, ginParam("id", "p1"))

	h.Review(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.lastID)
}
