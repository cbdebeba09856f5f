// Package directory searches pharmacies through the local.ch business directory.
package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/octobees/pharmacy-leads/internal/discovery"
	"github.com/octobees/pharmacy-leads/internal/entity"
)

// ProviderName identifies this provider in logs and errors.
const ProviderName = "local.ch"

const (
	statusSuccess  = "success"
	idPrefix       = "localch-"
	defaultTimeout = 10 * time.Second
)

// idNamespace scopes the synthesized listing ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.local.ch"))

// Listing is a single directory entry.
type Listing struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Response is the directory search payload.
type Response struct {
	Results []Listing `json:"results"`
	Source  string    `json:"source"`
	Status  string    `json:"status"`
}

// Client queries the directory search endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithTimeout bounds each directory query. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient builds a directory client, auto-configuring an ID token client when none is given.
func NewClient(client *http.Client, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("directory baseURL must not be empty")
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), c.baseURL)
		if err != nil {
			idc = &http.Client{}
		}
		idc.Timeout = c.timeout
		client = idc
	}
	c.client = client
	return c
}

// Name implements discovery.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Query runs a raw directory search, giving up after the client timeout.
func (c *Client) Query(ctx context.Context, query string) ([]Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + "?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "directory: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "directory: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("directory: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "directory: decode response")
	}
	if out.Status != statusSuccess {
		return nil, eris.Errorf("directory: status %q", out.Status)
	}
	return out.Results, nil
}

// Search implements discovery.Provider.
func (c *Client) Search(ctx context.Context, region discovery.Region) ([]entity.Candidate, error) {
	query := region.DirectoryQuery()
	zap.L().Debug("directory search", zap.String("component", "discovery.directory"), zap.String("query", query))

	listings, err := c.Query(ctx, query)
	if err != nil {
		return nil, &discovery.ProviderError{Provider: ProviderName, Err: err}
	}

	seen := make(map[string]struct{}, len(listings))
	candidates := make([]entity.Candidate, 0, len(listings))
	for _, l := range listings {
		if strings.TrimSpace(l.Name) == "" {
			continue
		}
		id := ListingID(l.Name, l.City)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, toCandidate(id, l))
	}
	return candidates, nil
}

// ListingID derives a stable id from a listing's name and city.
func ListingID(name, city string) string {
	key := strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(city))
	return idPrefix + uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func toCandidate(id string, l Listing) entity.Candidate {
	var city *string
	if c := strings.TrimSpace(l.City); c != "" {
		city = &c
	}
	return entity.Candidate{
		Name:     strings.TrimSpace(l.Name),
		Address:  formatAddress(l),
		City:     city,
		Phone:    discovery.NormalizePhone(l.Phone),
		Website:  discovery.NormalizeWebsite(l.Website),
		SourceID: id,
		Source:   entity.SourceDirectorySearch,
	}
}

func formatAddress(l Listing) string {
	street := strings.TrimSpace(l.Address)
	locality := strings.TrimSpace(strings.TrimSpace(l.Zip) + " " + strings.TrimSpace(l.City))
	switch {
	case street == "":
		return locality
	case locality == "":
		return street
	default:
		return street + ", " + locality
	}
}

var _ discovery.Provider = (*Client)(nil)
