package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/pkg/config"
	"github.com/noah-isme/daprotis-api/pkg/middleware/requestid"
)

// InitSentry configures the global Sentry client. Without a DSN it is a no-op
// and the returned flush function does nothing.
func InitSentry(cfg *config.Config) (func(), error) {
	if cfg.Sentry.DSN == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Env,
		Release:     cfg.Sentry.Release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr reports err to Sentry when a client is configured and waits
// for delivery, since callers are about to terminate the process.
func CaptureErr(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}

// GinMiddleware recovers panics and reports them together with every 5xx
// response's attached errors. It replaces gin.Recovery in the chain.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		if id := requestid.Value(c); id != "" {
			hub.Scope().SetTag("request_id", id)
		}

		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				hub.CaptureException(err)
				logger.Error("panic recovered", zap.Error(err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"code": "INTERNAL_ERROR", "message": "internal server error", "status": http.StatusInternalServerError},
				})
			}
		}()

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			for _, ginErr := range c.Errors {
				hub.CaptureException(ginErr.Err)
			}
		}
	}
}
