package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/entity"
)

// LeadsRepository describes persistence operations for leads.
type LeadsRepository interface {
	FindByDedupKey(ctx context.Context, sourceID string, website *string) (*entity.Lead, error)
	UpsertScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	UpdateScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	Update(ctx context.Context, id uuid.UUID, patch dto.UpdateLeadRequest) (*entity.Lead, error)
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	Stats(ctx context.Context) (entity.Analytics, error)
}

// ErrLeadNotFound indicates no lead matched the lookup.
var ErrLeadNotFound = errors.New("lead not found")

// SurveyLeadUpdate carries the lead fields derived from a survey answer.
type SurveyLeadUpdate struct {
	ContactName  *string
	Email        *string
	Phone        *string
	HasWebshop   bool
	HasAIChatbot bool
}

const (
	defaultPage    = 1
	defaultPerPage = 20
	maxPerPage     = 100
)

const leadColumns = `
            id,
            source_id,
            website_url,
            pharmacy_name,
            city,
            address,
            phone,
            contact_name,
            email,
            latitude,
            longitude,
            source,
            shop_url,
            overall_score,
            has_webshop,
            has_ai_chatbot,
            has_ai_products,
            owner,
            category_scores,
            last_scanned,
            status,
            notes,
            tags,
            created_at,
            updated_at`

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

// FindByDedupKey returns the lead sharing the source id or, failing that, the website.
// A source id match always wins over a website match.
func (r *PGXLeadsRepository) FindByDedupKey(ctx context.Context, sourceID string, website *string) (*entity.Lead, error) {
	query := `
        SELECT` + leadColumns + `
        FROM leads
        WHERE source_id = $1
           OR ($2::text IS NOT NULL AND website_url = $2::text)
        ORDER BY (source_id = $1) DESC NULLS LAST, created_at ASC
        LIMIT 1
    `

	lead, err := scanLead(r.pool.QueryRow(ctx, query, sourceID, stringOrNil(website)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, eris.Wrap(err, "find lead by dedup key")
	}
	return lead, nil
}

const upsertScannedSQL = `
        INSERT INTO leads (
            source_id,
            website_url,
            pharmacy_name,
            city,
            address,
            phone,
            latitude,
            longitude,
            source,
            overall_score,
            has_webshop,
            owner,
            category_scores,
            last_scanned,
            created_at,
            updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15
        )
        ON CONFLICT (source_id) DO UPDATE SET
            website_url = COALESCE(EXCLUDED.website_url, leads.website_url),
            pharmacy_name = EXCLUDED.pharmacy_name,
            city = EXCLUDED.city,
            address = COALESCE(EXCLUDED.address, leads.address),
            phone = COALESCE(EXCLUDED.phone, leads.phone),
            latitude = COALESCE(EXCLUDED.latitude, leads.latitude),
            longitude = COALESCE(EXCLUDED.longitude, leads.longitude),
            source = EXCLUDED.source,
            overall_score = EXCLUDED.overall_score,
            has_webshop = EXCLUDED.has_webshop,
            owner = EXCLUDED.owner,
            category_scores = EXCLUDED.category_scores,
            last_scanned = EXCLUDED.last_scanned,
            updated_at = EXCLUDED.updated_at
        RETURNING` + leadColumns

// UpsertScanned inserts a scanned lead or refreshes the descriptive and audit
// columns of the row with the same source id. Pipeline and contact fields of
// an existing row are never touched.
func (r *PGXLeadsRepository) UpsertScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if lead == nil {
		return nil, eris.New("lead payload is nil")
	}
	if lead.SourceID == nil || *lead.SourceID == "" {
		return nil, eris.New("upsert lead: source id is required")
	}

	scores, err := json.Marshal(lead.CategoryScores)
	if err != nil {
		return nil, eris.Wrap(err, "marshal category scores")
	}

	saved, err := scanLead(r.pool.QueryRow(ctx, upsertScannedSQL,
		*lead.SourceID,
		stringOrNil(lead.WebsiteURL),
		lead.PharmacyName,
		lead.City,
		stringOrNil(lead.Address),
		stringOrNil(lead.Phone),
		floatOrNil(lead.Latitude),
		floatOrNil(lead.Longitude),
		string(lead.Source),
		lead.OverallScore,
		lead.HasWebshop,
		stringOrNil(lead.Owner),
		scores,
		lead.LastScanned,
		lead.UpdatedAt,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "upsert lead %q", *lead.SourceID)
	}
	return saved, nil
}

const updateScannedSQL = `
        UPDATE leads SET
            source_id = COALESCE(source_id, $2),
            website_url = COALESCE($3, website_url),
            pharmacy_name = $4,
            city = $5,
            address = COALESCE($6, address),
            phone = COALESCE($7, phone),
            latitude = COALESCE($8, latitude),
            longitude = COALESCE($9, longitude),
            overall_score = $10,
            has_webshop = $11,
            owner = $12,
            category_scores = $13,
            last_scanned = $14,
            updated_at = $15
        WHERE id = $1
        RETURNING` + leadColumns

// UpdateScanned refreshes the descriptive and audit columns of the lead with
// lead.ID. It is used when a listing matched an existing row by website only.
func (r *PGXLeadsRepository) UpdateScanned(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if lead == nil {
		return nil, eris.New("lead payload is nil")
	}

	scores, err := json.Marshal(lead.CategoryScores)
	if err != nil {
		return nil, eris.Wrap(err, "marshal category scores")
	}

	saved, err := scanLead(r.pool.QueryRow(ctx, updateScannedSQL,
		lead.ID,
		stringOrNil(lead.SourceID),
		stringOrNil(lead.WebsiteURL),
		lead.PharmacyName,
		lead.City,
		stringOrNil(lead.Address),
		stringOrNil(lead.Phone),
		floatOrNil(lead.Latitude),
		floatOrNil(lead.Longitude),
		lead.OverallScore,
		lead.HasWebshop,
		stringOrNil(lead.Owner),
		scores,
		lead.LastScanned,
		lead.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, eris.Wrapf(err, "update scanned lead %s", lead.ID)
	}
	return saved, nil
}

// List retrieves leads matching the filter, newest first.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`
        SELECT` + leadColumns + `
        FROM leads
    `)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if city := strings.TrimSpace(filter.City); city != "" {
		clauses = append(clauses, fmt.Sprintf("city ILIKE $%d", idx))
		args = append(args, "%"+city+"%")
		idx++
	}
	if filter.MinScore != nil {
		clauses = append(clauses, fmt.Sprintf("overall_score >= $%d", idx))
		args = append(args, *filter.MinScore)
		idx++
	}
	if filter.HasWebshop != nil {
		clauses = append(clauses, fmt.Sprintf("has_webshop = $%d", idx))
		args = append(args, *filter.HasWebshop)
		idx++
	}
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, strings.ToUpper(filter.Status))
		idx++
	}
	if filter.HasAIChatbot != nil {
		clauses = append(clauses, fmt.Sprintf("has_ai_chatbot = $%d", idx))
		args = append(args, *filter.HasAIChatbot)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY created_at DESC, id ASC")

	if filter.Limit > 0 {
		baseQuery.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	} else {
		page := filter.Page
		if page <= 0 {
			page = defaultPage
		}
		perPage := filter.PerPage
		if perPage <= 0 {
			perPage = defaultPerPage
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
		offset := (page - 1) * perPage
		baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
		args = append(args, perPage, offset)
	}

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, eris.Wrap(err, "list leads")
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan lead")
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate leads")
	}
	return leads, nil
}

// GetByID loads a single lead.
func (r *PGXLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, eris.Wrapf(err, "get lead %s", id)
	}
	return lead, nil
}

// Update applies the non-nil fields of patch and refreshes updated_at.
func (r *PGXLeadsRepository) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateLeadRequest) (*entity.Lead, error) {
	var (
		sets []string
		args = []any{id}
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", strings.ToUpper(*patch.Status))
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.Tags != nil {
		add("tags", *patch.Tags)
	}
	if patch.ContactName != nil {
		add("contact_name", *patch.ContactName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.ShopURL != nil {
		add("shop_url", *patch.ShopURL)
	}
	if patch.HasWebshop != nil {
		add("has_webshop", *patch.HasWebshop)
	}
	if patch.HasAIChatbot != nil {
		add("has_ai_chatbot", *patch.HasAIChatbot)
	}
	if patch.HasAIProducts != nil {
		add("has_ai_products", *patch.HasAIProducts)
	}
	sets = append(sets, "updated_at = NOW()")

	query := "UPDATE leads SET " + strings.Join(sets, ", ") + " WHERE id = $1 RETURNING" + leadColumns
	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, eris.Wrapf(err, "update lead %s", id)
	}
	return lead, nil
}

// FindByEmail returns the most recent lead with the given contact email.
func (r *PGXLeadsRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + `
        FROM leads
        WHERE LOWER(email) = LOWER($1)
        ORDER BY created_at DESC
        LIMIT 1`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, eris.Wrap(err, "find lead by email")
	}
	return lead, nil
}

// applySurveyResponse copies survey answers onto the lead and marks it REPLIED.
func applySurveyResponse(ctx context.Context, db dbtx, id uuid.UUID, update SurveyLeadUpdate) error {
	query := `
        UPDATE leads SET
            contact_name = COALESCE($2, contact_name),
            email = COALESCE($3, email),
            phone = COALESCE($4, phone),
            has_webshop = $5,
            has_ai_chatbot = $6,
            status = $7,
            updated_at = NOW()
        WHERE id = $1
    `
	tag, err := db.Exec(ctx, query,
		id,
		stringOrNil(update.ContactName),
		stringOrNil(update.Email),
		stringOrNil(update.Phone),
		update.HasWebshop,
		update.HasAIChatbot,
		string(entity.StatusReplied),
	)
	if err != nil {
		return eris.Wrapf(err, "apply survey response to lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// addLeadTag appends tag to the lead's tags unless already present.
func addLeadTag(ctx context.Context, db dbtx, id uuid.UUID, tag string) error {
	query := `
        UPDATE leads SET
            tags = CASE WHEN $2 = ANY(tags) THEN tags ELSE array_append(tags, $2) END,
            updated_at = NOW()
        WHERE id = $1
    `
	res, err := db.Exec(ctx, query, id, tag)
	if err != nil {
		return eris.Wrapf(err, "add tag %q to lead %s", tag, id)
	}
	if res.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// Stats aggregates pipeline and audit counts over all leads.
func (r *PGXLeadsRepository) Stats(ctx context.Context) (entity.Analytics, error) {
	stats := entity.Analytics{LeadsByStatus: make(map[entity.LeadStatus]int, len(entity.LeadStatuses))}
	for _, s := range entity.LeadStatuses {
		stats.LeadsByStatus[s] = 0
	}

	totals := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE has_webshop),
            COUNT(*) FILTER (WHERE has_ai_chatbot),
            COUNT(*) FILTER (WHERE overall_score >= $1)
        FROM leads
    `
	err := r.pool.QueryRow(ctx, totals, entity.HighQualityScore).
		Scan(&stats.TotalLeads, &stats.WithWebshop, &stats.WithChatbot, &stats.HighQuality)
	if err != nil {
		return stats, eris.Wrap(err, "count leads")
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return stats, eris.Wrap(err, "count leads by status")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, eris.Wrap(err, "scan status count")
		}
		stats.LeadsByStatus[entity.LeadStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return stats, eris.Wrap(err, "iterate status counts")
	}
	return stats, nil
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead   entity.Lead
		source string
		status string
		scores []byte
	)
	err := row.Scan(
		&lead.ID,
		&lead.SourceID,
		&lead.WebsiteURL,
		&lead.PharmacyName,
		&lead.City,
		&lead.Address,
		&lead.Phone,
		&lead.ContactName,
		&lead.Email,
		&lead.Latitude,
		&lead.Longitude,
		&source,
		&lead.ShopURL,
		&lead.OverallScore,
		&lead.HasWebshop,
		&lead.HasAIChatbot,
		&lead.HasAIProducts,
		&lead.Owner,
		&scores,
		&lead.LastScanned,
		&status,
		&lead.Notes,
		&lead.Tags,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Source = entity.Source(source)
	lead.Status = entity.LeadStatus(status)
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &lead.CategoryScores); err != nil {
			return nil, eris.Wrap(err, "decode category scores")
		}
	}
	if lead.Tags == nil {
		lead.Tags = []string{}
	}
	return &lead, nil
}

var _ LeadsRepository = (*PGXLeadsRepository)(nil)
