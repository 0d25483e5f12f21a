package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/logger"
)

// Clock returns the current instant. Services convert it to the school's
// time zone themselves.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// requireCapability is the service-side counterpart of the route guard.
func requireCapability(session *models.Session, capability models.Capability) error {
	if session == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !session.Can(capability) {
		return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")
	}
	return nil
}

// storageError logs a failed storage call with the request's logger and wraps
// it as INTERNAL_ERROR, keeping the raw error in the chain.
func storageError(ctx context.Context, base *zap.Logger, err error, message string) error {
	logger.FromContext(ctx, base).Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
