package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/octobees/pharmacy-leads/internal/entity"
)

// SurveysRepository persists questionnaire answers and newsletter signups.
type SurveysRepository interface {
	InsertResponse(ctx context.Context, resp *entity.SurveyResponse) (*entity.SurveyResponse, error)
	LinkResponseLead(ctx context.Context, responseID, leadID uuid.UUID) error
	ListResponses(ctx context.Context) ([]entity.SurveyResponse, error)
	InsertResponseForLead(ctx context.Context, resp *entity.SurveyResponse, update SurveyLeadUpdate) (*entity.SurveyResponse, error)
	UpsertNewsletter(ctx context.Context, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error)
	UpsertNewsletterForLead(ctx context.Context, signup *entity.NewsletterSignup, tag string) (*entity.NewsletterSignup, error)
	ListNewsletter(ctx context.Context) ([]entity.NewsletterSignup, error)
}

// PGXSurveysRepository implements SurveysRepository using pgx.
type PGXSurveysRepository struct {
	pool pgxPool
}

// NewPGXSurveysRepository wires a pgx backed repository.
func NewPGXSurveysRepository(pool *pgxpool.Pool) *PGXSurveysRepository {
	return &PGXSurveysRepository{pool: pool}
}

// InsertResponse stores a survey answer and fills in its id and creation time.
func (r *PGXSurveysRepository) InsertResponse(ctx context.Context, resp *entity.SurveyResponse) (*entity.SurveyResponse, error) {
	return insertResponse(ctx, r.pool, resp)
}

// InsertResponseForLead stores a survey answer and applies it to its lead in
// one transaction. An unknown lead leaves nothing stored and yields ErrLeadNotFound.
func (r *PGXSurveysRepository) InsertResponseForLead(ctx context.Context, resp *entity.SurveyResponse, update SurveyLeadUpdate) (*entity.SurveyResponse, error) {
	if resp == nil || resp.LeadID == nil {
		return nil, eris.New("survey response has no lead")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "start survey response tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	saved, err := insertResponse(ctx, tx, resp)
	if err != nil {
		return nil, err
	}
	if err := applySurveyResponse(ctx, tx, *resp.LeadID, update); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "commit survey response tx")
	}
	return saved, nil
}

func insertResponse(ctx context.Context, db dbtx, resp *entity.SurveyResponse) (*entity.SurveyResponse, error) {
	if resp == nil {
		return nil, eris.New("survey response payload is nil")
	}

	query := `
        INSERT INTO survey_responses (
            survey_id,
            lead_id,
            has_website,
            website_satisfaction,
            webshop_status,
            it_management,
            ai_usage,
            top_priority,
            top_priority_other,
            contact_name,
            email,
            phone,
            consent_accepted
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, created_at
    `

	saved := *resp
	err := db.QueryRow(ctx, query,
		resp.SurveyID,
		resp.LeadID,
		resp.HasWebsite,
		resp.WebsiteSatisfaction,
		resp.WebshopStatus,
		resp.ITManagement,
		resp.AIUsage,
		resp.TopPriority,
		stringOrNil(resp.TopPriorityOther),
		resp.ContactName,
		resp.Email,
		stringOrNil(resp.Phone),
		resp.ConsentAccepted,
	).Scan(&saved.ID, &saved.CreatedAt)
	if isMissingLead(err) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "insert survey response")
	}
	return &saved, nil
}

// LinkResponseLead attaches a stored response to a lead.
func (r *PGXSurveysRepository) LinkResponseLead(ctx context.Context, responseID, leadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE survey_responses SET lead_id = $2 WHERE id = $1`, responseID, leadID)
	if err != nil {
		return eris.Wrapf(err, "link survey response %s", responseID)
	}
	return nil
}

// ListResponses returns every response, newest first, with the linked pharmacy's name and city.
func (r *PGXSurveysRepository) ListResponses(ctx context.Context) ([]entity.SurveyResponse, error) {
	query := `
        SELECT
            s.id,
            s.survey_id,
            s.lead_id,
            s.has_website,
            s.website_satisfaction,
            s.webshop_status,
            s.it_management,
            s.ai_usage,
            s.top_priority,
            s.top_priority_other,
            s.contact_name,
            s.email,
            s.phone,
            s.consent_accepted,
            l.pharmacy_name,
            l.city,
            s.created_at
        FROM survey_responses s
        LEFT JOIN leads l ON l.id = s.lead_id
        ORDER BY s.created_at DESC
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "list survey responses")
	}
	defer rows.Close()

	responses := []entity.SurveyResponse{}
	for rows.Next() {
		var s entity.SurveyResponse
		if err := rows.Scan(
			&s.ID,
			&s.SurveyID,
			&s.LeadID,
			&s.HasWebsite,
			&s.WebsiteSatisfaction,
			&s.WebshopStatus,
			&s.ITManagement,
			&s.AIUsage,
			&s.TopPriority,
			&s.TopPriorityOther,
			&s.ContactName,
			&s.Email,
			&s.Phone,
			&s.ConsentAccepted,
			&s.PharmacyName,
			&s.City,
			&s.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "scan survey response")
		}
		responses = append(responses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate survey responses")
	}
	return responses, nil
}

// UpsertNewsletter records a signup keyed by email. Resubmitting keeps known
// pharmacy and lead references when the new payload omits them.
func (r *PGXSurveysRepository) UpsertNewsletter(ctx context.Context, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error) {
	return upsertNewsletter(ctx, r.pool, signup)
}

// UpsertNewsletterForLead records a signup and tags its lead in one transaction.
func (r *PGXSurveysRepository) UpsertNewsletterForLead(ctx context.Context, signup *entity.NewsletterSignup, tag string) (*entity.NewsletterSignup, error) {
	if signup == nil || signup.LeadID == nil {
		return nil, eris.New("newsletter signup has no lead")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "start newsletter signup tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	saved, err := upsertNewsletter(ctx, tx, signup)
	if err != nil {
		return nil, err
	}
	if err := addLeadTag(ctx, tx, *signup.LeadID, tag); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "commit newsletter signup tx")
	}
	return saved, nil
}

func upsertNewsletter(ctx context.Context, db dbtx, signup *entity.NewsletterSignup) (*entity.NewsletterSignup, error) {
	if signup == nil {
		return nil, eris.New("newsletter signup payload is nil")
	}

	query := `
        INSERT INTO newsletter_signups (email, pharmacy_name, lead_id, consent_accepted)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email) DO UPDATE SET
            pharmacy_name = COALESCE(EXCLUDED.pharmacy_name, newsletter_signups.pharmacy_name),
            lead_id = COALESCE(EXCLUDED.lead_id, newsletter_signups.lead_id),
            consent_accepted = EXCLUDED.consent_accepted
        RETURNING id, pharmacy_name, lead_id, created_at
    `

	saved := *signup
	err := db.QueryRow(ctx, query,
		signup.Email,
		stringOrNil(signup.PharmacyName),
		signup.LeadID,
		signup.ConsentAccepted,
	).Scan(&saved.ID, &saved.PharmacyName, &saved.LeadID, &saved.CreatedAt)
	if isMissingLead(err) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "upsert newsletter signup")
	}
	return &saved, nil
}

// ListNewsletter returns every signup, newest first.
func (r *PGXSurveysRepository) ListNewsletter(ctx context.Context) ([]entity.NewsletterSignup, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, email, pharmacy_name, lead_id, consent_accepted, created_at
        FROM newsletter_signups
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, eris.Wrap(err, "list newsletter signups")
	}
	defer rows.Close()

	signups := []entity.NewsletterSignup{}
	for rows.Next() {
		var n entity.NewsletterSignup
		if err := rows.Scan(&n.ID, &n.Email, &n.PharmacyName, &n.LeadID, &n.ConsentAccepted, &n.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "scan newsletter signup")
		}
		signups = append(signups, n)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate newsletter signups")
	}
	return signups, nil
}

var _ SurveysRepository = (*PGXSurveysRepository)(nil)
