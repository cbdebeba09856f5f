package service

import (
	"context"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/octobees/pharmacy-leads/internal/dto"
	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/repository"
)

const exportPageSize = 100

var exportHeader = []string{
	"id", "pharmacy_name", "city", "address", "phone", "email", "contact_name",
	"website_url", "source", "overall_score", "has_webshop", "has_ai_chatbot",
	"has_ai_products", "owner", "status", "tags", "last_scanned", "created_at",
}

// LeadsService exposes read/write operations on the lead pipeline.
type LeadsService struct {
	repo     repository.LeadsRepository
	validate *validator.Validate
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository) *LeadsService {
	return &LeadsService{repo: repo, validate: newValidator()}
}

// ListLeads returns leads respecting pagination defaults.
func (s *LeadsService) ListLeads(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	if filter.Status != "" && !entity.LeadStatus(strings.ToUpper(filter.Status)).Valid() {
		return nil, ValidationError{Message: "status must be one of NEW, CONTACTED, REPLIED, QUALIFIED, WON, LOST"}
	}
	return s.repo.List(ctx, filter)
}

// GetLead loads one lead.
func (s *LeadsService) GetLead(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateLead applies a validated partial update.
func (s *LeadsService) UpdateLead(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	if req.Empty() {
		return nil, ValidationError{Message: "no fields to update"}
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		req.Status = &status
	}
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		req.Tags = &tags
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, req)
}

// Analytics returns dashboard counters.
func (s *LeadsService) Analytics(ctx context.Context) (entity.Analytics, error) {
	return s.repo.Stats(ctx)
}

// ExportCSV writes every lead matching filter to w, newest first.
func (s *LeadsService) ExportCSV(ctx context.Context, filter dto.LeadFilter, w io.Writer) error {
	if filter.Status != "" && !entity.LeadStatus(strings.ToUpper(filter.Status)).Valid() {
		return ValidationError{Message: "status must be one of NEW, CONTACTED, REPLIED, QUALIFIED, WON, LOST"}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}

	filter.Limit = 0
	filter.PerPage = exportPageSize
	for page := 1; ; page++ {
		filter.Page = page
		leads, err := s.repo.List(ctx, filter)
		if err != nil {
			return eris.Wrapf(err, "export leads page %d", page)
		}
		for _, lead := range leads {
			if err := writer.Write(leadRecord(lead)); err != nil {
				return eris.Wrap(err, "write csv row")
			}
		}
		if len(leads) < exportPageSize {
			break
		}
	}

	writer.Flush()
	return eris.Wrap(writer.Error(), "flush csv")
}

func leadRecord(l entity.Lead) []string {
	lastScanned := ""
	if l.LastScanned != nil {
		lastScanned = l.LastScanned.UTC().Format(time.RFC3339)
	}
	tags := make([]string, len(l.Tags))
	for i, tag := range l.Tags {
		tags[i] = csvSafe(tag)
	}
	return []string{
		l.ID.String(),
		csvSafe(l.PharmacyName),
		csvSafe(l.City),
		csvSafe(deref(l.Address)),
		csvSafe(deref(l.Phone)),
		csvSafe(deref(l.Email)),
		csvSafe(deref(l.ContactName)),
		csvSafe(deref(l.WebsiteURL)),
		string(l.Source),
		strconv.Itoa(l.OverallScore),
		strconv.FormatBool(l.HasWebshop),
		strconv.FormatBool(l.HasAIChatbot),
		strconv.FormatBool(l.HasAIProducts),
		csvSafe(deref(l.Owner)),
		string(l.Status),
		strings.Join(tags, ";"),
		lastScanned,
		l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// phoneNumber matches an international number, which spreadsheets read as a value.
var phoneNumber = regexp.MustCompile(`^\+[0-9 ]+$`)

// csvSafe quotes a cell that a spreadsheet would otherwise evaluate as a formula.
func csvSafe(value string) string {
	if value == "" || phoneNumber.MatchString(value) {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
