package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/daprotis-api/internal/middleware"
	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

// sessionFromContext returns the caller's session, writing a 401 when the
// route was mounted without the JWT middleware.
func sessionFromContext(c *gin.Context) (*models.Session, bool) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	size, _ := strconv.Atoi(strings.TrimSpace(c.Query("pageSize")))
	return page, size
}

// idParam reads a UUID path parameter, writing a 400 for anything else so
// malformed identifiers never reach the uuid columns.
func idParam(c *gin.Context, name string) (string, bool) {
	return validID(c, name, c.Param(name), false)
}

// validID checks a caller supplied identifier. Empty values pass only when
// the identifier is optional.
func validID(c *gin.Context, field, raw string, optional bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" && optional {
		return "", true
	}
	if _, err := uuid.Parse(raw); err != nil {
		response.Error(c, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "invalid identifier"),
			map[string]string{field: "identificador inválido"},
		))
		return "", false
	}
	return raw, true
}
