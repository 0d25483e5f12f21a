package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/response"
)

// ContextUserKey is the gin context key storing the caller's *models.Session.
const ContextUserKey = "currentSession"

// TokenValidator turns an access token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token. The resulting
// session is stored under ContextUserKey for handlers to pass to services.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, models.NewSession(claims))
		c.Next()
	}
}

// SessionFromContext returns the session set by JWT, or nil.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

// RequireCapability rejects callers whose role does not grant capability.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !session.Can(capability) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
