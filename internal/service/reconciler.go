package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/repository"
	"github.com/octobees/pharmacy-leads/internal/scanner"
)

// Reconciler merges a discovered candidate and its scan into the lead store.
// Calls must be sequential within a batch.
type Reconciler struct {
	repo repository.LeadsRepository
	now  func() time.Time
}

// NewReconciler creates a Reconciler using the wall clock.
func NewReconciler(repo repository.LeadsRepository) *Reconciler {
	return &Reconciler{repo: repo, now: time.Now}
}

// Reconcile stores the candidate as a lead and returns the stored row.
//
// The lookup only decides which existing row keeps its identity and pipeline
// fields. Rows are created through the store's upsert on source_id, so a
// concurrent batch inserting the same listing cannot produce a duplicate.
func (r *Reconciler) Reconcile(ctx context.Context, c entity.Candidate, scan entity.ScanResult, city string) (*entity.Lead, error) {
	sourceID := strings.TrimSpace(c.SourceID)
	if sourceID == "" {
		return nil, &StoreError{Err: errors.New("candidate has no source id")}
	}

	var website *string
	if c.Website != nil {
		if normalized := scanner.NormalizeURL(*c.Website); normalized != "" {
			website = &normalized
		}
	}

	existing, err := r.repo.FindByDedupKey(ctx, sourceID, website)
	if err != nil && !errors.Is(err, repository.ErrLeadNotFound) {
		return nil, &StoreError{SourceID: sourceID, Err: err}
	}

	now := r.now().UTC()
	lead := &entity.Lead{
		SourceID:       &sourceID,
		WebsiteURL:     website,
		PharmacyName:   strings.TrimSpace(c.Name),
		City:           leadCity(c, city),
		Address:        optional(c.Address),
		Phone:          c.Phone,
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		Source:         c.Source,
		OverallScore:   scan.OverallScore,
		HasWebshop:     scan.HasWebshop,
		Owner:          scan.Owner,
		CategoryScores: scan.CategoryScores,
		LastScanned:    &now,
		Status:         entity.StatusNew,
		Tags:           []string{},
		UpdatedAt:      now,
	}

	var saved *entity.Lead
	if existing != nil && !sameSource(existing, sourceID) {
		lead.ID = existing.ID
		saved, err = r.repo.UpdateScanned(ctx, lead)
	} else {
		saved, err = r.repo.UpsertScanned(ctx, lead)
	}
	if err != nil {
		return nil, &StoreError{SourceID: sourceID, Err: err}
	}
	return saved, nil
}

func sameSource(lead *entity.Lead, sourceID string) bool {
	return lead.SourceID != nil && *lead.SourceID == sourceID
}

func leadCity(c entity.Candidate, fallback string) string {
	if c.City != nil {
		if city := strings.TrimSpace(*c.City); city != "" {
			return city
		}
	}
	return strings.TrimSpace(fallback)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
