package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/discovery/directory"
)

// DirectoryStub serves GET /dummy/local-ch with the canned directory listings,
// in the directory provider's own response format rather than the API envelope.
func DirectoryStub(c echo.Context) error {
	zap.L().Debug("directory stub queried", zap.String("query", c.QueryParam("query")))
	return c.JSON(http.StatusOK, directory.Fixture())
}
