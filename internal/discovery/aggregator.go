package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/pharmacy-leads/internal/entity"
)

// ErrMissingCredentials is returned by providers configured without an API key.
var ErrMissingCredentials = errors.New("discovery: missing provider credentials")

// ProviderError wraps a failure of a single listing provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider lists pharmacies within a region.
type Provider interface {
	Name() string
	Search(ctx context.Context, region Region) ([]entity.Candidate, error)
}

// Aggregator queries every provider concurrently and concatenates their
// listings in provider order. Cross-provider duplicates are kept; the store
// resolves them.
type Aggregator struct {
	providers []Provider
}

// NewAggregator returns an Aggregator. Pass the place-search provider first.
func NewAggregator(providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Discover never fails: a provider that errors contributes no listings.
func (a *Aggregator) Discover(ctx context.Context, input string) []entity.Candidate {
	region := ParseRegion(input)
	log := zap.L().With(zap.String("component", "discovery"), zap.String("region", region.String()))

	results := make([][]entity.Candidate, len(a.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range a.providers {
		g.Go(func() error {
			found, err := p.Search(gctx, region)
			if err != nil {
				var perr *ProviderError
				if !errors.As(err, &perr) {
					perr = &ProviderError{Provider: p.Name(), Err: err}
				}
				log.Warn("provider failed", zap.String("provider", perr.Provider), zap.Error(perr))
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	var merged []entity.Candidate
	for i, found := range results {
		log.Info("provider listings", zap.String("provider", a.providers[i].Name()), zap.Int("count", len(found)))
		merged = append(merged, found...)
	}
	return merged
}
