// Package places talks to the location search and study place services.
// Failures never propagate as hard errors: callers get an empty result and
// the reason.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/metrics"
)

// ErrFetch matches every failure reported by a Searcher or Fetcher.
var ErrFetch = errors.New("places: fetch failed")

// FetchError records which service failed and why.
type FetchError struct {
	Service string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("places: %s: %v", e.Service, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// Candidate is a location search hit.
type Candidate struct {
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Input turns a picked candidate into a study place of the given type.
func (c Candidate) Input(placeType, custom string) app.PlaceInput {
	return app.PlaceInput{
		Name:      c.Name,
		Type:      placeType,
		Custom:    custom,
		State:     c.State,
		Country:   c.Country,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

// Record is a study place from the remote directory.
type Record struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Input converts r for app.Service.SetStudyPlaces. Records without a
// category are filed as "other".
func (r Record) Input() app.PlaceInput {
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = "other"
	}
	return app.PlaceInput{
		Name:      r.Name,
		Type:      category,
		State:     r.State,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// Searcher resolves a free text query into locations.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Fetcher lists study places from a remote directory.
type Fetcher interface {
	FetchStudyPlaces(ctx context.Context) ([]Record, error)
}

// SearchResult is the outcome of Search. Err is a *FetchError or nil.
type SearchResult struct {
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
	Err        error       `json:"-"`
}

// FetchResult is the outcome of Fetch. Err is a *FetchError or nil.
type FetchResult struct {
	Records []Record `json:"records"`
	Err     error    `json:"-"`
}

// Search runs query against s. A blank query returns no candidates without
// calling s. Candidates without a name or at 0,0 are dropped.
func Search(ctx context.Context, s Searcher, query string) SearchResult {
	query = strings.TrimSpace(query)
	res := SearchResult{Query: query, Candidates: []Candidate{}}
	if query == "" {
		return res
	}
	found, err := s.Search(ctx, query)
	if err != nil {
		metrics.Fetches.WithLabelValues("search", "error").Inc()
		log.L().WithError(err).Warnw("location search failed", "query", query)
		res.Err = asFetchError("search", err)
		return res
	}
	metrics.Fetches.WithLabelValues("search", "ok").Inc()
	for _, c := range found {
		if strings.TrimSpace(c.Name) == "" || (c.Latitude == 0 && c.Longitude == 0) {
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res
}

// Fetch lists study places from f.
func Fetch(ctx context.Context, f Fetcher) FetchResult {
	records, err := f.FetchStudyPlaces(ctx)
	if err != nil {
		metrics.Fetches.WithLabelValues("fetch", "error").Inc()
		log.L().WithError(err).Warn("study place fetch failed")
		return FetchResult{Records: []Record{}, Err: asFetchError("fetch", err)}
	}
	metrics.Fetches.WithLabelValues("fetch", "ok").Inc()
	if records == nil {
		records = []Record{}
	}
	return FetchResult{Records: records}
}

func asFetchError(service string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Service: service, Err: err}
}
