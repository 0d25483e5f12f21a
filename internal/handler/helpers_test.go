package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/internal/middleware"
	"github.com/noah-isme/daprotis-api/internal/models"
)

const (
	scheduleID = "5d0c2f8e-6b1a-4c3e-9f27-1a2b3c4d5e01"
	otherID    = "5d0c2f8e-6b1a-4c3e-9f27-1a2b3c4d5e02"
	profileID  = "7a9e4b10-2c3d-4e5f-8a6b-0c1d2e3f4a01"
	paymentID  = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b01"
	unknownID  = "00000000-0000-4000-8000-000000000000"
)

var (
	memberSession = &models.Session{UserID: "member-1", Email: "ana@example.com", Role: models.RoleUser}
	adminSession  = &models.Session{UserID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
)

func newContext(method, target, body string, session *models.Session) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if session != nil {
		c.Set(middleware.ContextUserKey, session)
	}
	return c, w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
