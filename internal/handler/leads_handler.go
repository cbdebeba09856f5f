package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/dto"
	middleware "github.com/octobees/pharmacy-leads/internal/middleware"
	"github.com/octobees/pharmacy-leads/internal/repository"
	"github.com/octobees/pharmacy-leads/internal/service"
)

const maxPerPage = 100

// LeadsHandler exposes the lead pipeline endpoints.
type LeadsHandler struct {
	service *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(service *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter := parseLeadFilter(c)
	leads, err := h.service.ListLeads(c.Request().Context(), filter)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Message)
		}
		logRequestError(c, "list leads failed", err)
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}
	meta := PageMeta{Page: filter.Page, PerPage: filter.PerPage, Count: len(leads)}
	if filter.Limit > 0 {
		meta = PageMeta{Page: 1, PerPage: filter.Limit, Count: len(leads)}
	}
	return SuccessPage(c, "leads retrieved", leads, meta)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	lead, err := h.service.GetLead(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		logRequestError(c, "get lead failed", err)
		return Error(c, http.StatusInternalServerError, "failed to fetch lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Update handles PATCH /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	var req dto.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.service.UpdateLead(c.Request().Context(), id, req)
	if err != nil {
		var validationErr service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return Error(c, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		default:
			logRequestError(c, "update lead failed", err)
			return Error(c, http.StatusInternalServerError, "failed to update lead")
		}
	}
	return Success(c, http.StatusOK, "lead updated", lead)
}

// Analytics handles GET /analytics requests.
func (h *LeadsHandler) Analytics(c echo.Context) error {
	stats, err := h.service.Analytics(c.Request().Context())
	if err != nil {
		logRequestError(c, "analytics failed", err)
		return Error(c, http.StatusInternalServerError, "failed to compute analytics")
	}
	return Success(c, http.StatusOK, "analytics retrieved", stats)
}

// Export handles GET /leads/export and streams the filtered leads as CSV.
func (h *LeadsHandler) Export(c echo.Context) error {
	filename := fmt.Sprintf("pharmacy-leads-%s.csv", time.Now().UTC().Format("20060102"))
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	err := h.service.ExportCSV(c.Request().Context(), parseLeadFilter(c), c.Response())
	if err == nil {
		return nil
	}
	if c.Response().Committed {
		logRequestError(c, "export interrupted", err)
		return nil
	}

	header.Del(echo.HeaderContentDisposition)
	var validationErr service.ValidationError
	if errors.As(err, &validationErr) {
		return Error(c, http.StatusBadRequest, validationErr.Message)
	}
	logRequestError(c, "export leads failed", err)
	return Error(c, http.StatusInternalServerError, "failed to export leads")
}

func parseLeadFilter(c echo.Context) dto.LeadFilter {
	filter := dto.LeadFilter{
		City:    filterParam(c.QueryParam("city")),
		Status:  filterParam(c.QueryParam("status")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
		Limit:   parseIntDefault(c.QueryParam("limit"), 0),
	}

	if minScoreStr := strings.TrimSpace(c.QueryParam("min_score")); minScoreStr != "" {
		if minScore, err := strconv.Atoi(minScoreStr); err == nil {
			filter.MinScore = &minScore
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > maxPerPage {
		filter.PerPage = min(max(filter.PerPage, 20), maxPerPage)
	}
	filter.HasWebshop = parseBoolParam(c.QueryParam("has_webshop"))
	filter.HasAIChatbot = parseBoolParam(c.QueryParam("has_ai_chatbot"))

	return filter
}

// filterParam treats "all" as an unset filter.
func filterParam(input string) string {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "all") {
		return ""
	}
	return input
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}

func parseBoolParam(input string) *bool {
	value, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return nil
	}
	return &value
}

func logRequestError(c echo.Context, msg string, err error) {
	zap.L().Error(msg,
		zap.String("request_id", middleware.RequestIDFromContext(c)),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err))
}
