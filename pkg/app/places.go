package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/notiq/pkg/log"
	"tableflip.dev/notiq/pkg/metrics"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/store"
)

// PlaceInput describes a study place. Choosing type "other" with a non-empty
// Custom stores Custom as the type.
type PlaceInput struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Custom    string  `json:"custom,omitempty"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (in PlaceInput) place(source string) *model.StudyPlace {
	trim(&in.Name, &in.State, &in.Country)
	return &model.StudyPlace{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Type:      model.ResolvePlaceType(in.Type, in.Custom),
		State:     in.State,
		Country:   in.Country,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Source:    source,
	}
}

// AddStudyPlace saves a place the user picked.
func (s *Service) AddStudyPlace(ctx context.Context, in PlaceInput) (*model.StudyPlace, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	if strings.EqualFold(strings.TrimSpace(in.Type), "other") && strings.TrimSpace(in.Custom) == "" {
		return nil, reject("add_place", invalidf("place custom type is required when type is other"))
	}
	p := in.place("")
	if err := check(p); err != nil {
		return nil, reject("add_place", err)
	}

	s.lock()
	defer s.unlock()
	if err := s.commit(ctx, "add_place", func(ps store.Persistence) error {
		return ps.Insert(p)
	}); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// DeleteStudyPlace removes place id. Unknown ids are ignored.
func (s *Service) DeleteStudyPlace(ctx context.Context, id string) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	snap, err := s.current(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Place(id); !ok {
		return nil
	}
	return s.commit(ctx, "delete_place", func(ps store.Persistence) error {
		_, err := ps.DeleteWhere(model.KindPlace, byID(id))
		return err
	})
}

// NextSequence returns a new tag for an asynchronous study place fetch.
func (s *Service) NextSequence() uint64 {
	return s.seq.Add(1)
}

// SetStudyPlaces replaces the remotely sourced study places with results.
// Places the user added are kept. A non-zero seq at or below the last applied
// one is stale: the results are dropped and applied is false. Invalid results
// are skipped.
func (s *Service) SetStudyPlaces(ctx context.Context, seq uint64, results []PlaceInput) (applied bool, err error) {
	if s.Persistence == nil {
		return false, ErrNoPersistence
	}
	s.lock()
	defer s.unlock()

	if seq != 0 && seq <= s.applied {
		metrics.StaleResults.Inc()
		log.L().Debugw("dropping stale study places", "seq", seq, "applied", s.applied)
		return false, nil
	}

	places := make([]*model.StudyPlace, 0, len(results))
	for _, in := range results {
		p := in.place(model.SourceRemote)
		if err := check(p); err != nil {
			log.L().WithError(err).Warnw("skipping study place", "name", in.Name)
			continue
		}
		places = append(places, p)
	}

	if err := s.commit(ctx, "set_places", func(ps store.Persistence) error {
		if _, err := ps.DeleteWhere(model.KindPlace, func(r model.Record) bool {
			p, ok := r.(*model.StudyPlace)
			return ok && p.Source == model.SourceRemote
		}); err != nil {
			return err
		}
		for _, p := range places {
			if err := ps.Insert(p); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return false, err
	}
	if seq > s.applied {
		s.applied = seq
	}
	return true, nil
}
