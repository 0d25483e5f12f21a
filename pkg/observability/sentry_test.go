package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/pkg/config"
)

func TestInitSentryWithoutDSN(t *testing.T) {
	flush, err := InitSentry(&config.Config{})
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}

func TestGinMiddlewareRecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestGinMiddlewarePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(nil))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: broken pipe"))
		c.Status(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type recordingTransport struct {
	mu      sync.Mutex
	events  []*sentry.Event
	flushed int
}

func (r *recordingTransport) Configure(sentry.ClientOptions) {}

func (r *recordingTransport) SendEvent(event *sentry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTransport) Flush(time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushed++
	return true
}

func TestCaptureErrSendsAndFlushes(t *testing.T) {
	transport := &recordingTransport{}
	require.NoError(t, sentry.Init(sentry.ClientOptions{
		Dsn:       "https://public@sentry.example.com/1",
		Transport: transport,
	}))
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })

	CaptureErr(nil)
	assert.Empty(t, transport.events)

	CaptureErr(errors.New("listen tcp :8080: bind: address already in use"))

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.events, 1)
	assert.Equal(t, 1, transport.flushed)
	require.NotEmpty(t, transport.events[0].Exception)
	assert.Contains(t, transport.events[0].Exception[0].Value, "address already in use")
}
