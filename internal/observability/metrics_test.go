package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordTransition("pending", "approved")
	m.RecordTransition("pending", "approved")
	m.RecordProvisioning("success", 3*time.Second)
	m.RecordProvisioning("failure", time.Second)
	m.SetDirectorySize(4)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("pending", "approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.provisionTotal.WithLabelValues("success")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.directoryUsers))
	assert.Equal(t, 1, testutil.CollectAndCount(m.directoryUsers))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "NOT_FOUND")
		m.RecordTransition("a", "b")
		m.RecordProvisioning("success", time.Second)
		m.SetDirectorySize(1)
	})
	assert.Nil(t, m.Registry())
}

func TestRequestLogger_RecordsFinalStatus(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("/teapot", "GET", "418")))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"}, config.AppConfig{Name: "directory-service", Version: "test"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	fallback, err := NewLogger(config.LoggerConfig{Level: "loud"}, config.AppConfig{})
	require.NoError(t, err)
	assert.False(t, fallback.Core().Enabled(zap.DebugLevel))
	assert.True(t, fallback.Core().Enabled(zap.InfoLevel))
}
