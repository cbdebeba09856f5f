package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/repository"
	"github.com/octobees/pharmacy-leads/internal/service"
)

// SurveysHandler receives questionnaire answers and newsletter signups.
type SurveysHandler struct {
	service *service.SurveysService
}

// NewSurveysHandler wires a new SurveysHandler instance.
func NewSurveysHandler(service *service.SurveysService) *SurveysHandler {
	return &SurveysHandler{service: service}
}

// SubmitResponse handles POST /surveys/responses.
func (h *SurveysHandler) SubmitResponse(c echo.Context) error {
	var payload dto.SurveyResponseRequest
	if err := c.Bind(&payload); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	saved, err := h.service.SubmitResponse(c.Request().Context(), payload)
	if err != nil {
		return surveyError(c, err, "failed to store survey response")
	}
	return Success(c, http.StatusCreated, "survey response stored", saved)
}

// ListResponses handles GET /surveys/responses.
func (h *SurveysHandler) ListResponses(c echo.Context) error {
	responses, err := h.service.ListResponses(c.Request().Context())
	if err != nil {
		logRequestError(c, "list survey responses failed", err)
		return Error(c, http.StatusInternalServerError, "failed to list survey responses")
	}
	return Success(c, http.StatusOK, "survey responses retrieved", responses)
}

// SignupNewsletter handles POST /newsletter/signup.
func (h *SurveysHandler) SignupNewsletter(c echo.Context) error {
	var payload dto.NewsletterSignupRequest
	if err := c.Bind(&payload); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	saved, err := h.service.SignupNewsletter(c.Request().Context(), payload)
	if err != nil {
		return surveyError(c, err, "failed to store newsletter signup")
	}
	return Success(c, http.StatusCreated, "newsletter signup stored", saved)
}

// ListNewsletter handles GET /newsletter/signup.
func (h *SurveysHandler) ListNewsletter(c echo.Context) error {
	signups, err := h.service.ListNewsletterSignups(c.Request().Context())
	if err != nil {
		logRequestError(c, "list newsletter signups failed", err)
		return Error(c, http.StatusInternalServerError, "failed to list newsletter signups")
	}
	return Success(c, http.StatusOK, "newsletter signups retrieved", signups)
}

func surveyError(c echo.Context, err error, fallback string) error {
	var validationErr service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, repository.ErrLeadNotFound):
		return Error(c, http.StatusNotFound, "lead not found")
	default:
		logRequestError(c, fallback, err)
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
