package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/dto"
	middleware "github.com/octobees/pharmacy-leads/internal/middleware"
	"github.com/octobees/pharmacy-leads/internal/service"
)

// ScanHandler runs discovery and website scans for a region.
type ScanHandler struct {
	service *service.ScanService
}

// NewScanHandler constructs a scan handler.
func NewScanHandler(service *service.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Run handles POST /scan requests. The batch completes before the response is written.
func (h *ScanHandler) Run(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.City = strings.TrimSpace(req.City)

	summary, err := h.service.Run(c.Request().Context(), req.City)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Message)
		}
		zap.L().Error("scan failed",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("city", req.City),
			zap.Error(err))
		return Error(c, http.StatusInternalServerError, "scan failed")
	}

	return Success(c, http.StatusOK, fmt.Sprintf("scanned %d pharmacies in %s", summary.Count, summary.Region), summary)
}
