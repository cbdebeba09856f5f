// Package places searches pharmacies through the Google Places web service.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultQPS     = 10
	regionHint     = "ch"
	detailFields   = "formatted_phone_number,website"
)

// TextSearchResult is a single listing from a text search.
type TextSearchResult struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	PlaceID          string   `json:"place_id"`
	Geometry         Geometry `json:"geometry"`
}

// Geometry holds a listing's coordinates.
type Geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

// Details carries the contact fields requested from the details endpoint.
type Details struct {
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
}

type textSearchResponse struct {
	Results      []TextSearchResult `json:"results"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
}

type detailsResponse struct {
	Result       Details `json:"result"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithQPS caps outgoing requests per second. Non-positive values disable the cap.
func WithQPS(qps float64) Option {
	return func(c *Client) {
		if qps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
}

// Client talks to the Places text search and details endpoints.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Places client. The API key is sent as a query parameter.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultQPS), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TextSearch runs a free-text query biased towards Switzerland.
func (c *Client) TextSearch(ctx context.Context, query string) ([]TextSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("region", regionHint)

	var resp textSearchResponse
	if err := c.get(ctx, "/textsearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Details fetches the phone number and website of a place.
func (c *Client) Details(ctx context.Context, placeID string) (*Details, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit")
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	default:
		return eris.Errorf("places: api status %s: %s", status, message)
	}
}
