package places

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/pharmacy-leads/internal/discovery"
	"github.com/octobees/pharmacy-leads/internal/entity"
)

// ProviderName identifies this provider in logs and errors.
const ProviderName = "places"

const (
	placeholderKey    = "your_google_maps_api_key"
	detailConcurrency = 4
)

// Name implements discovery.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Search issues one text search per language, unions the hits by place id
// and enriches each listing with its phone number and website.
func (c *Client) Search(ctx context.Context, region discovery.Region) ([]entity.Candidate, error) {
	if strings.TrimSpace(c.apiKey) == "" || c.apiKey == placeholderKey {
		return nil, &discovery.ProviderError{Provider: ProviderName, Err: discovery.ErrMissingCredentials}
	}
	log := zap.L().With(zap.String("component", "discovery.places"))

	queries := region.PlaceQueries()
	hits := make([][]TextSearchResult, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			found, err := c.TextSearch(gctx, query)
			if err != nil {
				log.Warn("text search failed", zap.String("query", query), zap.Error(err))
				errs[i] = err
				return nil
			}
			hits[i] = found
			return nil
		})
	}
	_ = g.Wait()

	if allFailed(errs) {
		return nil, &discovery.ProviderError{Provider: ProviderName, Err: errs[0]}
	}

	unique := dedupe(hits)
	candidates := make([]entity.Candidate, len(unique))

	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(detailConcurrency)
	for i, hit := range unique {
		candidates[i] = toCandidate(hit, region)
		dg.Go(func() error {
			details, err := c.Details(dctx, hit.PlaceID)
			if err != nil {
				log.Warn("place details failed", zap.String("place_id", hit.PlaceID), zap.Error(err))
				return nil
			}
			candidates[i].Phone = discovery.NormalizePhone(details.FormattedPhoneNumber)
			candidates[i].Website = discovery.NormalizeWebsite(details.Website)
			return nil
		})
	}
	_ = dg.Wait()

	return candidates, nil
}

func dedupe(batches [][]TextSearchResult) []TextSearchResult {
	seen := make(map[string]struct{})
	var unique []TextSearchResult
	for _, batch := range batches {
		for _, hit := range batch {
			if hit.PlaceID == "" {
				continue
			}
			if _, ok := seen[hit.PlaceID]; ok {
				continue
			}
			seen[hit.PlaceID] = struct{}{}
			unique = append(unique, hit)
		}
	}
	return unique
}

func toCandidate(hit TextSearchResult, region discovery.Region) entity.Candidate {
	lat := hit.Geometry.Location.Lat
	lng := hit.Geometry.Location.Lng

	var city *string
	if region.CountryWide {
		city = discovery.CityFromAddress(hit.FormattedAddress)
	} else {
		name := region.City
		city = &name
	}

	return entity.Candidate{
		Name:      hit.Name,
		Address:   hit.FormattedAddress,
		City:      city,
		SourceID:  hit.PlaceID,
		Latitude:  &lat,
		Longitude: &lng,
		Source:    entity.SourcePlaceSearch,
	}
}

func allFailed(errs []error) bool {
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return len(errs) > 0
}

var _ discovery.Provider = (*Client)(nil)
