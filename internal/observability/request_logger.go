package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// RequestLogger logs one line per request and feeds the HTTP metrics. Routes are labelled by
// their template so link tokens never reach the logs or label sets.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		route := RouteTemplate(c)

		metrics.RecordRequest(route, c.Method(), status, elapsed)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		}
		if rid, ok := c.Locals("request_id").(string); ok && rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}

func statusFor(err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

// RouteTemplate is the registered path of the matched route, or "unmatched".
func RouteTemplate(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return "unmatched"
}
