package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/repository"
)

type mockLeadsRepository struct {
	findByDedupKey func(ctx context.Context, sourceID string, website *string) (*entity.Lead, error)
	upsertScanned  func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	updateScanned  func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	list           func(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error)
	getByID        func(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	update         func(ctx context.Context, id uuid.UUID, patch dto.UpdateLeadRequest) (*entity.Lead, error)
	findByEmail    func(ctx context.Context, email string) (*entity.Lead, error)
	stats          func(ctx context.Context) (entity.Analytics, error)
}

func (m *mockLeadsRepository) FindByDedupKey(ctx context.Context, sourceID string, website *string) (*entity.Lead, error) {
	if m.findByDedupKey != nil {
		return m.findByDedupKey(ctx, sourceID, website)
	}
	return nil, repository.ErrLeadNotFound
}

func (m *mockLeadsRepository) UpsertScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if m.upsertScanned != nil {
		return m.upsertScanned(ctx, lead)
	}
	return nil, errors.New("upsert not implemented")
}

func (m *mockLeadsRepository) UpdateScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if m.updateScanned != nil {
		return m.updateScanned(ctx, lead)
	}
	return nil, errors.New("update scanned not implemented")
}

func (m *mockLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, errors.New("list not implemented")
}

func (m *mockLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, repository.ErrLeadNotFound
}

func (m *mockLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateLeadRequest) (*entity.Lead, error) {
	if m.update != nil {
		return m.update(ctx, id, patch)
	}
	return nil, errors.New("update not implemented")
}

func (m *mockLeadsRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, repository.ErrLeadNotFound
}

func (m *mockLeadsRepository) Stats(ctx context.Context) (entity.Analytics, error) {
	if m.stats != nil {
		return m.stats(ctx)
	}
	return entity.Analytics{}, errors.New("stats not implemented")
}

// memoryLeads mimics the lead table: unique source_id, upsert preserving pipeline fields.
type memoryLeads struct {
	mu    sync.Mutex
	rows  []*entity.Lead
	calls []string
}

func (m *memoryLeads) repo() *mockLeadsRepository {
	return &mockLeadsRepository{
		findByDedupKey: func(_ context.Context, sourceID string, website *string) (*entity.Lead, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, row := range m.rows {
				if row.SourceID != nil && *row.SourceID == sourceID {
					return clone(row), nil
				}
			}
			if website != nil {
				for _, row := range m.rows {
					if row.WebsiteURL != nil && *row.WebsiteURL == *website {
						return clone(row), nil
					}
				}
			}
			return nil, repository.ErrLeadNotFound
		},
		upsertScanned: func(_ context.Context, lead *entity.Lead) (*entity.Lead, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.calls = append(m.calls, "upsert")
			for _, row := range m.rows {
				if row.SourceID != nil && *row.SourceID == *lead.SourceID {
					mergeScanned(row, lead)
					return clone(row), nil
				}
			}
			row := clone(lead)
			row.ID = uuid.New()
			row.Status = entity.StatusNew
			row.Tags = []string{}
			row.Notes = nil
			row.CreatedAt = lead.UpdatedAt
			m.rows = append(m.rows, row)
			return clone(row), nil
		},
		updateScanned: func(_ context.Context, lead *entity.Lead) (*entity.Lead, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.calls = append(m.calls, "update")
			for _, row := range m.rows {
				if row.ID == lead.ID {
					mergeScanned(row, lead)
					return clone(row), nil
				}
			}
			return nil, repository.ErrLeadNotFound
		},
	}
}

func mergeScanned(row, lead *entity.Lead) {
	if lead.WebsiteURL != nil {
		row.WebsiteURL = lead.WebsiteURL
	}
	row.PharmacyName = lead.PharmacyName
	row.City = lead.City
	row.OverallScore = lead.OverallScore
	row.HasWebshop = lead.HasWebshop
	row.Owner = lead.Owner
	row.CategoryScores = lead.CategoryScores
	row.LastScanned = lead.LastScanned
	row.UpdatedAt = lead.UpdatedAt
}

func clone(l *entity.Lead) *entity.Lead {
	c := *l
	c.Tags = append([]string(nil), l.Tags...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}

type mockSurveysRepository struct {
	insert        func(ctx context.Context, resp *entity.SurveyResponse) (*entity.SurveyResponse, error)
	insertForLead func(ctx context.Context, resp *entity.SurveyResponse, update repository.SurveyLeadUpdate) (*entity.SurveyResponse, error)
	link          func(ctx context.Context, responseID, leadID uuid.UUID) error
	list          func(ctx context.Context) ([]entity.SurveyResponse, error)
	upsertLetter  func(ctx context.Context, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error)
	upsertForLead func(ctx context.Context, signup *entity.NewsletterSignup, tag string) (*entity.NewsletterSignup, error)
	listLetter    func(ctx context.Context) ([]entity.NewsletterSignup, error)
}

func (m *mockSurveysRepository) InsertResponseForLead(ctx context.Context, resp *entity.SurveyResponse, update repository.SurveyLeadUpdate) (*entity.SurveyResponse, error) {
	if m.insertForLead != nil {
		return m.insertForLead(ctx, resp, update)
	}
	saved := *resp
	saved.ID = uuid.New()
	return &saved, nil
}

func (m *mockSurveysRepository) UpsertNewsletterForLead(ctx context.Context, signup *entity.NewsletterSignup, tag string) (*entity.NewsletterSignup, error) {
	if m.upsertForLead != nil {
		return m.upsertForLead(ctx, signup, tag)
	}
	saved := *signup
	saved.ID = uuid.New()
	return &saved, nil
}

func (m *mockSurveysRepository) InsertResponse(ctx context.Context, resp *entity.SurveyResponse) (*entity.SurveyResponse, error) {
	if m.insert != nil {
		return m.insert(ctx, resp)
	}
	saved := *resp
	saved.ID = uuid.New()
	return &saved, nil
}

func (m *mockSurveysRepository) LinkResponseLead(ctx context.Context, responseID, leadID uuid.UUID) error {
	if m.link != nil {
		return m.link(ctx, responseID, leadID)
	}
	return errors.New("link not implemented")
}

func (m *mockSurveysRepository) ListResponses(ctx context.Context) ([]entity.SurveyResponse, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("list not implemented")
}

func (m *mockSurveysRepository) UpsertNewsletter(ctx context.Context, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error) {
	if m.upsertLetter != nil {
		return m.upsertLetter(ctx, signup)
	}
	saved := *signup
	saved.ID = uuid.New()
	return &saved, nil
}

func (m *mockSurveysRepository) ListNewsletter(ctx context.Context) ([]entity.NewsletterSignup, error) {
	if m.listLetter != nil {
		return m.listLetter(ctx)
	}
	return nil, errors.New("list newsletter not implemented")
}
