package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

func TestStorageErrorKeepsRawMessageOutOfResponse(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	raw := errors.New(`pq: duplicate key value violates unique constraint "enrollments_pkey"`)

	err := storageError(context.Background(), zap.New(core), raw, "failed to enroll")

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Equal(t, "failed to enroll", appErr.Message)
	assert.NotContains(t, appErr.Message, "pq:")
	assert.True(t, errors.Is(err, raw))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "failed to enroll", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "enrollments_pkey")
}
