package handler

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/repository"
)

var errStore = errors.New("store unavailable")

type fakeLeadsRepo struct {
	leads      []entity.Lead
	lastFilter dto.LeadFilter
	lastPatch  dto.UpdateLeadRequest
	err        error
}

func (f *fakeLeadsRepo) FindByDedupKey(context.Context, string, *string) (*entity.Lead, error) {
	return nil, repository.ErrLeadNotFound
}

func (f *fakeLeadsRepo) UpsertScanned(_ context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	saved := *lead
	saved.ID = uuid.New()
	f.leads = append(f.leads, saved)
	return &saved, nil
}

func (f *fakeLeadsRepo) UpdateScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	return f.UpsertScanned(ctx, lead)
}

func (f *fakeLeadsRepo) List(_ context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

func (f *fakeLeadsRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.leads {
		if f.leads[i].ID == id {
			return &f.leads[i], nil
		}
	}
	return nil, repository.ErrLeadNotFound
}

func (f *fakeLeadsRepo) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateLeadRequest) (*entity.Lead, error) {
	f.lastPatch = patch
	lead, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		lead.Status = entity.LeadStatus(*patch.Status)
	}
	return lead, nil
}

func (f *fakeLeadsRepo) FindByEmail(context.Context, string) (*entity.Lead, error) {
	return nil, repository.ErrLeadNotFound
}

func (f *fakeLeadsRepo) Stats(context.Context) (entity.Analytics, error) {
	if f.err != nil {
		return entity.Analytics{}, f.err
	}
	return entity.Analytics{TotalLeads: len(f.leads), LeadsByStatus: map[entity.LeadStatus]int{entity.StatusNew: len(f.leads)}}, nil
}

// fakeSurveysRepo resolves lead references against leads, like the foreign keys do.
type fakeSurveysRepo struct {
	leads     *fakeLeadsRepo
	responses []entity.SurveyResponse
	signups   []entity.NewsletterSignup
	tagged    []string
	err       error
}

func (f *fakeSurveysRepo) InsertResponseForLead(ctx context.Context, resp *entity.SurveyResponse, _ repository.SurveyLeadUpdate) (*entity.SurveyResponse, error) {
	if _, err := f.leads.GetByID(ctx, *resp.LeadID); err != nil {
		return nil, err
	}
	return f.InsertResponse(ctx, resp)
}

func (f *fakeSurveysRepo) UpsertNewsletterForLead(ctx context.Context, signup *entity.NewsletterSignup, tag string) (*entity.NewsletterSignup, error) {
	if _, err := f.leads.GetByID(ctx, *signup.LeadID); err != nil {
		return nil, err
	}
	saved, err := f.UpsertNewsletter(ctx, signup)
	if err != nil {
		return nil, err
	}
	f.tagged = append(f.tagged, tag)
	return saved, nil
}

func (f *fakeSurveysRepo) InsertResponse(_ context.Context, resp *entity.SurveyResponse) (*entity.SurveyResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	saved := *resp
	saved.ID = uuid.New()
	f.responses = append(f.responses, saved)
	return &saved, nil
}

func (f *fakeSurveysRepo) LinkResponseLead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeSurveysRepo) ListResponses(context.Context) ([]entity.SurveyResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses, nil
}

func (f *fakeSurveysRepo) UpsertNewsletter(_ context.Context, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error) {
	if f.err != nil {
		return nil, f.err
	}
	saved := *signup
	saved.ID = uuid.New()
	f.signups = append(f.signups, saved)
	return &saved, nil
}

func (f *fakeSurveysRepo) ListNewsletter(context.Context) ([]entity.NewsletterSignup, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signups, nil
}
