package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/repository"
)

// NewsletterTag is added to leads that subscribe to the newsletter.
const NewsletterTag = "NEWSLETTER"

// SurveysService records questionnaire answers and newsletter signups and
// feeds them back into the lead pipeline.
type SurveysService struct {
	surveys  repository.SurveysRepository
	leads    repository.LeadsRepository
	validate *validator.Validate
}

// NewSurveysService creates a new instance of SurveysService.
func NewSurveysService(surveys repository.SurveysRepository, leads repository.LeadsRepository) *SurveysService {
	return &SurveysService{surveys: surveys, leads: leads, validate: newValidator()}
}

// SubmitResponse stores a survey answer. An answer tied to a lead updates the
// lead's contact and feature fields and moves it to REPLIED in the same
// transaction; an answer without a lead is linked to the lead sharing its
// email, when there is one.
func (s *SurveysService) SubmitResponse(ctx context.Context, req dto.SurveyResponseRequest) (*entity.SurveyResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ContactName = strings.TrimSpace(req.ContactName)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	resp := &entity.SurveyResponse{
		SurveyID:            uuid.MustParse(req.SurveyID),
		HasWebsite:          req.HasWebsite,
		WebsiteSatisfaction: req.WebsiteSatisfaction,
		WebshopStatus:       req.WebshopStatus,
		ITManagement:        req.ITManagement,
		AIUsage:             req.AIUsage,
		TopPriority:         req.TopPriority,
		TopPriorityOther:    req.TopPriorityOther,
		ContactName:         req.ContactName,
		Email:               req.Email,
		Phone:               req.Phone,
		ConsentAccepted:     req.ConsentAccepted,
	}
	if req.LeadID != nil {
		id := uuid.MustParse(*req.LeadID)
		resp.LeadID = &id
	}

	if resp.LeadID != nil {
		update := repository.SurveyLeadUpdate{
			ContactName:  &resp.ContactName,
			Email:        &resp.Email,
			Phone:        resp.Phone,
			HasWebshop:   resp.WebshopStatus == "Yes",
			HasAIChatbot: resp.AIUsage == "Chatbot" || resp.AIUsage == "Both",
		}
		saved, err := s.surveys.InsertResponseForLead(ctx, resp, update)
		if err != nil {
			return nil, err
		}
		zap.L().Info("lead replied to survey",
			zap.String("component", "surveys"),
			zap.String("response_id", saved.ID.String()),
			zap.String("lead_id", saved.LeadID.String()))
		return saved, nil
	}

	saved, err := s.surveys.InsertResponse(ctx, resp)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("component", "surveys"), zap.String("response_id", saved.ID.String()))

	lead, err := s.leads.FindByEmail(ctx, saved.Email)
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return saved, nil
	case err != nil:
		log.Warn("lookup lead by email failed", zap.Error(err))
		return saved, nil
	}
	if err := s.surveys.LinkResponseLead(ctx, saved.ID, lead.ID); err != nil {
		log.Warn("link survey response failed", zap.Error(err))
		return saved, nil
	}
	saved.LeadID = &lead.ID
	log.Info("survey response linked by email", zap.String("lead_id", lead.ID.String()))
	return saved, nil
}

// ListResponses returns all answers, newest first.
func (s *SurveysService) ListResponses(ctx context.Context) ([]entity.SurveyResponse, error) {
	return s.surveys.ListResponses(ctx)
}

// SignupNewsletter upserts a subscription by email and tags the linked lead
// in the same transaction.
func (s *SurveysService) SignupNewsletter(ctx context.Context, req dto.NewsletterSignupRequest) (*entity.NewsletterSignup, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	signup := &entity.NewsletterSignup{
		Email:           req.Email,
		PharmacyName:    req.PharmacyName,
		ConsentAccepted: req.ConsentAccepted,
	}
	if req.LeadID != nil {
		id := uuid.MustParse(*req.LeadID)
		signup.LeadID = &id
	}

	if signup.LeadID != nil {
		return s.surveys.UpsertNewsletterForLead(ctx, signup, NewsletterTag)
	}
	return s.surveys.UpsertNewsletter(ctx, signup)
}

// ListNewsletterSignups returns all subscriptions, newest first.
func (s *SurveysService) ListNewsletterSignups(ctx context.Context) ([]entity.NewsletterSignup, error) {
	return s.surveys.ListNewsletter(ctx)
}
