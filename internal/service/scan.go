package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/discovery"
	"github.com/octobees/pharmacy-leads/internal/entity"
)

// Discoverer lists pharmacy candidates for a region.
type Discoverer interface {
	Discover(ctx context.Context, region string) []entity.Candidate
}

// WebsiteScanner audits a single website and never fails.
type WebsiteScanner interface {
	Scan(ctx context.Context, rawURL string) entity.ScanResult
}

// ScanRecord is the outcome for one candidate: the stored lead, or the raw
// candidate with the store error that prevented saving it.
type ScanRecord struct {
	Lead      *entity.Lead      `json:"lead,omitempty"`
	Candidate *entity.Candidate `json:"candidate,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ScanSummary reports a finished scan batch.
type ScanSummary struct {
	Region  string       `json:"region"`
	Count   int          `json:"count"`
	Results []ScanRecord `json:"results"`
}

// ScanService runs the discover, scan and reconcile pipeline.
type ScanService struct {
	discoverer Discoverer
	scanner    WebsiteScanner
	reconciler *Reconciler
}

// NewScanService wires the scan pipeline.
func NewScanService(discoverer Discoverer, scanner WebsiteScanner, reconciler *Reconciler) *ScanService {
	return &ScanService{discoverer: discoverer, scanner: scanner, reconciler: reconciler}
}

// Run discovers pharmacies in region, scans each website and stores the
// results one candidate at a time. Once started, the batch ignores
// cancellation of ctx and runs to completion.
func (s *ScanService) Run(ctx context.Context, region string) (ScanSummary, error) {
	if err := validateRegion(region); err != nil {
		return ScanSummary{}, err
	}
	ctx = context.WithoutCancel(ctx)

	parsed := discovery.ParseRegion(region)
	log := zap.L().With(zap.String("component", "scan"), zap.String("region", parsed.String()))

	candidates := s.discoverer.Discover(ctx, region)
	log.Info("scan batch started", zap.Int("candidates", len(candidates)))

	summary := ScanSummary{Region: parsed.String(), Results: make([]ScanRecord, 0, len(candidates))}
	failed := 0
	for _, c := range candidates {
		website := ""
		if c.Website != nil {
			website = *c.Website
		}
		result := s.scanner.Scan(ctx, website)

		lead, err := s.reconciler.Reconcile(ctx, c, result, parsed.String())
		if err != nil {
			failed++
			var storeErr *StoreError
			if !errors.As(err, &storeErr) {
				storeErr = &StoreError{SourceID: c.SourceID, Err: err}
			}
			log.Error("store lead failed", zap.String("source_id", c.SourceID), zap.String("name", c.Name), zap.Error(storeErr))

			candidate := c
			summary.Results = append(summary.Results, ScanRecord{Candidate: &candidate, Error: storeErr.Error()})
			continue
		}
		summary.Results = append(summary.Results, ScanRecord{Lead: lead})
	}
	summary.Count = len(summary.Results)

	log.Info("scan batch complete", zap.Int("count", summary.Count), zap.Int("failed", failed))
	return summary, nil
}
