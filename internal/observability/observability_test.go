package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hirelane/recruitment-service/internal/config"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestLoggerBaseFields(t *testing.T) {
	fields := baseFields(config.LoggerConfig{Service: "recruitment-service", Env: "production", Version: "1.4.0"})
	assert.Equal(t, map[string]interface{}{"service": "recruitment-service", "env": "production", "version": "1.4.0"}, fields)
	assert.Empty(t, baseFields(config.LoggerConfig{}))

	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", Env: "development"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordIdentityMatch("national_id")
	m.RecordIdentityMatch("national_id")
	m.RecordApplication("duplicate")
	m.RecordTokenFlow("password_reset", "token_accepted_redirected")
	m.RecordNotification("user_registered", "sent")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.identity.WithLabelValues("national_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.applications.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenFlow.WithLabelValues("password_reset", "token_accepted_redirected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("user_registered", "sent")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordApplication("accepted") })
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.RecordApplication("accepted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `recruitment_applications_total{outcome="accepted"} 1`)
}

func TestRequestLoggerUsesRouteTemplate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics(prometheus.NewRegistry())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/verify/:uidb64/:token", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/boom", func(c *fiber.Ctx) error { return apperrors.NewForbidden("nope") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("unexpected") })

	resp, err := app.Test(httptest.NewRequest("GET", "/verify/abc/secret-token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/verify/:uidb64/:token", "GET", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/boom", "GET", "403")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/plain", "GET", "500")))

	require.Equal(t, 3, logs.Len())
	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.False(t, strings.Contains(f.String, "secret-token"))
		}
	}
	assert.Equal(t, zap.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, zap.ErrorLevel, logs.All()[2].Level)
}
