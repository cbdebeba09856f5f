package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout  = 10 * time.Second
	maxPageBytes    = 2 << 20
	defaultAccept   = "text/html,application/xhtml+xml"
	defaultLanguage = "de-CH,de;q=0.9,fr;q=0.8,it;q=0.7,en;q=0.6"
)

// Page is a fetched landing page.
type Page struct {
	URL    string
	HTML   string
	Header http.Header
}

// FetchError reports why a page could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default http.Client. The client's timeout is left untouched.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = hc
	}
}

// WithMaxBytes overrides the 2 MiB body cap.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// Fetcher retrieves landing pages with a fixed timeout and user agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewFetcher builds a Fetcher. A non-positive timeout falls back to 10s.
func NewFetcher(timeout time.Duration, userAgent string, opts ...FetcherOption) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBytes:  maxPageBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads the page at rawURL and decodes it to UTF-8 from the declared
// or sniffed charset. Every failure is returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return nil, &FetchError{URL: rawURL, Err: eris.New("scanner: empty url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: eris.Wrap(err, "scanner: create request")}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", defaultLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: eris.Wrap(err, "scanner: send request")}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        eris.Errorf("scanner: unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "scanner: read body")}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Err: eris.New("scanner: empty body")}
	}

	decoded, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "scanner: detect charset")}
	}
	html, err := io.ReadAll(decoded)
	if err != nil {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "scanner: decode body")}
	}

	return &Page{URL: target, HTML: string(html), Header: resp.Header}, nil
}
