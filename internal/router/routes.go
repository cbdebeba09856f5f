package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/pharmacy-leads/internal/config"
	"github.com/octobees/pharmacy-leads/internal/handler"
	middlewarepkg "github.com/octobees/pharmacy-leads/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Scan    *handler.ScanHandler
	Leads   *handler.LeadsHandler
	Surveys *handler.SurveysHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST(middlewarepkg.ScanPath, handlers.Scan.Run, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan))

	leads := e.Group("/leads")
	leads.GET("", handlers.Leads.List)
	leads.GET("/export", handlers.Leads.Export)
	leads.GET("/:id", handlers.Leads.Get)
	leads.PATCH("/:id", handlers.Leads.Update)
	e.GET("/analytics", handlers.Leads.Analytics)

	if handlers.Surveys != nil {
		e.POST("/surveys/responses", handlers.Surveys.SubmitResponse)
		e.GET("/surveys/responses", handlers.Surveys.ListResponses)
		e.POST("/newsletter/signup", handlers.Surveys.SignupNewsletter)
		e.GET("/newsletter/signup", handlers.Surveys.ListNewsletter)
	}

	e.GET("/dummy/local-ch", handler.DirectoryStub)
}
