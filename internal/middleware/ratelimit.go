package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/pharmacy-leads/internal/config"
)

// ScanPath is the only route the scan rate limiter applies to.
const ScanPath = "/scan"

// ScanRateLimiter applies a token bucket limiter for the /scan endpoint.
// Every scan batch fans out to the place-search API, so the bucket is shared
// by all callers.
func ScanRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	var mu sync.Mutex

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() != ScanPath {
				return next(c)
			}

			mu.Lock()
			reservation := limiter.Reserve()
			delay := reservation.Delay()
			if delay > 0 {
				reservation.Cancel()
			}
			mu.Unlock()

			if delay > 0 {
				c.Response().Header().Set("Retry-After", retryAfter(delay))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"status":  "error",
					"message": "scan rate limit exceeded",
				})
			}

			return next(c)
		}
	}
}

func retryAfter(delay time.Duration) string {
	seconds := int(delay.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
