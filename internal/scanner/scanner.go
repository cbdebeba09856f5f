package scanner

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/service/scoring"
)

// UnreachableIssue is the single issue reported when a website cannot be audited.
const UnreachableIssue = "Could not reach website"

// PageFetcher retrieves a landing page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Scanner audits a website and never fails: unreachable sites produce EmptyResult.
type Scanner struct {
	fetcher PageFetcher
	policy  scoring.Policy
}

// New returns a Scanner that scores pages with scoring.DefaultPolicy.
func New(fetcher PageFetcher) *Scanner {
	return &Scanner{fetcher: fetcher, policy: scoring.DefaultPolicy}
}

// WithPolicy returns a copy of s using policy.
func (s *Scanner) WithPolicy(policy scoring.Policy) *Scanner {
	return &Scanner{fetcher: s.fetcher, policy: policy}
}

// EmptyResult is the canonical result for a missing or unreachable website.
func EmptyResult() entity.ScanResult {
	return entity.ScanResult{
		Issues:    []string{UnreachableIssue},
		QuickWins: []string{},
	}
}

// Scan fetches rawURL and scores it.
func (s *Scanner) Scan(ctx context.Context, rawURL string) entity.ScanResult {
	if strings.TrimSpace(rawURL) == "" {
		return EmptyResult()
	}
	log := zap.L().With(zap.String("component", "scanner"), zap.String("url", rawURL))

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn("website unreachable", zap.Error(err))
		return EmptyResult()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		log.Warn("website unparsable", zap.Error(eris.Wrap(err, "scanner: parse html")))
		return EmptyResult()
	}

	res := s.policy.Evaluate(doc, page.HTML, page.Header)
	if res.ImprintURL != nil {
		log.Debug("imprint link not followed", zap.String("imprint", *res.ImprintURL))
	}

	return entity.ScanResult{
		OverallScore:   res.Overall,
		HasWebshop:     res.HasWebshop,
		Owner:          res.Owner,
		CategoryScores: res.Categories,
		Issues:         []string{},
		QuickWins:      []string{},
	}
}
