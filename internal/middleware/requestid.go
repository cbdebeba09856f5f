package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxRequestIDLength = 128

// RequestID injects an identifier for traceability. A caller-supplied
// X-Request-ID is reused when it is short printable ASCII.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if !validRequestID(rid) {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			return next(c)
		}
	}
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}
