package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request to a place service.
const DefaultTimeout = 15 * time.Second

const maxBody = 4 << 20

// Options configures the HTTP backed services.
type Options struct {
	URL       string
	UserAgent string
	// Rate is the allowed requests per second. Zero or less means unlimited.
	Rate    float64
	Timeout time.Duration
	// Client overrides the default client, mostly for tests.
	Client *http.Client
}

type client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func newClient(opts Options) *client {
	hc := opts.Client
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	return &client{
		http:      hc,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
	}
}

func (c *client) getJSON(ctx context.Context, service, u string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &FetchError{Service: service, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{Service: service, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Service: service, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &FetchError{Service: service, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return &FetchError{Service: service, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// NominatimSearcher searches an OpenStreetMap Nominatim instance.
type NominatimSearcher struct {
	base  string
	limit int
	c     *client
}

// NewNominatimSearcher returns a Searcher for the Nominatim /search endpoint
// at opts.URL.
func NewNominatimSearcher(opts Options) *NominatimSearcher {
	return &NominatimSearcher{base: opts.URL, limit: 10, c: newClient(opts)}
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

func (n *NominatimSearcher) Search(ctx context.Context, query string) ([]Candidate, error) {
	u, err := url.Parse(n.base)
	if err != nil {
		return nil, &FetchError{Service: "search", Err: err}
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(n.limit))
	u.RawQuery = q.Encode()

	var found []nominatimPlace
	if err := n.c.getJSON(ctx, "search", u.String(), &found); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(found))
	for _, p := range found {
		lat, err1 := strconv.ParseFloat(p.Lat, 64)
		lon, err2 := strconv.ParseFloat(p.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		name := p.Name
		if name == "" {
			name = p.DisplayName
		}
		out = append(out, Candidate{
			Name:      name,
			Address:   p.DisplayName,
			State:     p.Address.State,
			Country:   p.Address.Country,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return out, nil
}

// HTTPFetcher reads a JSON array of Record from a URL.
type HTTPFetcher struct {
	url string
	c   *client
}

// NewHTTPFetcher returns a Fetcher for the directory at opts.URL.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	return &HTTPFetcher{url: opts.URL, c: newClient(opts)}
}

func (f *HTTPFetcher) FetchStudyPlaces(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := f.c.getJSON(ctx, "fetch", f.url, &records); err != nil {
		return nil, err
	}
	return records, nil
}
