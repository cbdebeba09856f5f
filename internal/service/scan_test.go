package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/pharmacy-leads/internal/entity"
	"github.com/octobees/pharmacy-leads/internal/scanner"
)

type discoverFunc func(ctx context.Context, region string) []entity.Candidate

func (f discoverFunc) Discover(ctx context.Context, region string) []entity.Candidate {
	return f(ctx, region)
}

type scanFunc func(ctx context.Context, rawURL string) entity.ScanResult

func (f scanFunc) Scan(ctx context.Context, rawURL string) entity.ScanResult {
	return f(ctx, rawURL)
}

type pageFetcher func(ctx context.Context, rawURL string) (*scanner.Page, error)

func (f pageFetcher) Fetch(ctx context.Context, rawURL string) (*scanner.Page, error) {
	return f(ctx, rawURL)
}

func TestScanService_EndToEnd(t *testing.T) {
	store := &memoryLeads{}
	page := `<html><head><title>Apotheke X</title><meta name="description" content="Ihre Apotheke"></head>
<body><h1>Apotheke X</h1><p>Kontakt +41 44 000 00 00</p><button>a</button><button>b</button><button>c</button></body></html>`

	var fetched []string
	fetcher := pageFetcher(func(_ context.Context, rawURL string) (*scanner.Page, error) {
		fetched = append(fetched, rawURL)
		if scanner.NormalizeURL(rawURL) != "https://apotheke-x.ch" {
			return nil, errors.New("unexpected url")
		}
		return &scanner.Page{URL: "https://apotheke-x.ch", HTML: page, Header: http.Header{}}, nil
	})

	discoverer := discoverFunc(func(context.Context, string) []entity.Candidate {
		return []entity.Candidate{{Name: "Apotheke X", Website: strPtr("apotheke-x.ch"), SourceID: "p123", Source: entity.SourcePlaceSearch}}
	})

	svc := NewScanService(discoverer, scanner.New(fetcher), newTestReconciler(store.repo()))
	summary, err := svc.Run(context.Background(), "Zürich")
	require.NoError(t, err)

	assert.Equal(t, []string{"apotheke-x.ch"}, fetched)
	require.Equal(t, 1, summary.Count)
	require.Len(t, store.rows, 1)

	lead := summary.Results[0].Lead
	require.NotNil(t, lead)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, "https://apotheke-x.ch", *lead.WebsiteURL)
	assert.Equal(t, []string{}, lead.Tags)
	assert.Equal(t, "p123", *lead.SourceID)
	// 15 + 20 + 6 + 7.5 + 25 = 73.5 -> 7.35 -> 7
	assert.Equal(t, 7, lead.OverallScore)
	assert.Equal(t, "Zürich", lead.City)
}

func TestScanService_StoreErrorKeepsCandidate(t *testing.T) {
	candidates := []entity.Candidate{
		{Name: "Broken", SourceID: "p1"},
		{Name: "Fine", SourceID: "p2"},
	}
	repo := &mockLeadsRepository{
		upsertScanned: func(_ context.Context, lead *entity.Lead) (*entity.Lead, error) {
			if *lead.SourceID == "p1" {
				return nil, errors.New("deadlock detected")
			}
			return lead, nil
		},
	}

	var scanned []string
	svc := NewScanService(
		discoverFunc(func(context.Context, string) []entity.Candidate { return candidates }),
		scanFunc(func(_ context.Context, rawURL string) entity.ScanResult {
			scanned = append(scanned, rawURL)
			return scanner.EmptyResult()
		}),
		newTestReconciler(repo),
	)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"", ""}, scanned)
	assert.Equal(t, "Schweiz", summary.Region)
	require.Equal(t, 2, summary.Count)
	assert.Nil(t, summary.Results[0].Lead)
	require.NotNil(t, summary.Results[0].Candidate)
	assert.Equal(t, "Broken", summary.Results[0].Candidate.Name)
	assert.Contains(t, summary.Results[0].Error, "deadlock detected")
	require.NotNil(t, summary.Results[1].Lead)
	assert.Equal(t, "Schweiz", summary.Results[1].Lead.City)
}

func TestScanService_IgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var discoverErr, scanErr error
	svc := NewScanService(
		discoverFunc(func(ctx context.Context, _ string) []entity.Candidate {
			discoverErr = ctx.Err()
			return []entity.Candidate{{Name: "A", SourceID: "p1"}}
		}),
		scanFunc(func(ctx context.Context, _ string) entity.ScanResult {
			scanErr = ctx.Err()
			return scanner.EmptyResult()
		}),
		newTestReconciler((&memoryLeads{}).repo()),
	)

	summary, err := svc.Run(ctx, "Bern")
	require.NoError(t, err)
	assert.NoError(t, discoverErr)
	assert.NoError(t, scanErr)
	assert.Equal(t, 1, summary.Count)
}

func TestScanService_ValidatesRegion(t *testing.T) {
	called := false
	svc := NewScanService(
		discoverFunc(func(context.Context, string) []entity.Candidate {
			called = true
			return nil
		}),
		scanFunc(func(context.Context, string) entity.ScanResult { return scanner.EmptyResult() }),
		newTestReconciler(&mockLeadsRepository{}),
	)

	for _, region := range []string{strings.Repeat("a", 101), "8001", "Bern\x00", "---"} {
		_, err := svc.Run(context.Background(), region)
		var verr ValidationError
		assert.ErrorAs(t, err, &verr, "region %q", region)
	}
	assert.False(t, called)

	summary, err := svc.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.NotNil(t, summary.Results)
	assert.True(t, called)
}
