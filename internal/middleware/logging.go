package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Logging writes a structured access line for each HTTP request. A nil logger
// falls back to the global zap logger at request time.
func Logging(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			log := logger
			if log == nil {
				log = zap.L()
			}
			fields := []zap.Field{
				zap.String("request_id", RequestIDFromContext(c)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", latency),
			}
			if err != nil {
				log.Warn("request failed", append(fields, zap.Error(err))...)
			} else {
				log.Info("request", fields...)
			}

			return err
		}
	}
}
