package place

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
	"tableflip.dev/notiq/pkg/places"
	"tableflip.dev/notiq/pkg/printers"
)

// PickFunc chooses one of the candidates and returns its index.
type PickFunc func(candidates []places.Candidate) (int, error)

// Place runs the study place subcommands.
type Place struct {
	Service  *app.Service
	Searcher places.Searcher
	Fetcher  places.Fetcher
	// Pick is used to choose a search hit when adding interactively.
	// Defaults to a promptui select.
	Pick   PickFunc
	Output string
	ShowID bool
	Now    time.Time
	Out    io.Writer
	In     io.ReadCloser
}

var errNoCandidates = errors.New("no locations matched")

func (p *Place) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return color.Output
}

func (p *Place) pp() *printers.PrettyPrint {
	return &printers.PrettyPrint{ShowID: p.ShowID, Now: p.Now, Out: p.out()}
}

func (p *Place) check() error {
	if p.Service == nil {
		return errors.New("place: no service configured")
	}
	return nil
}

// Add saves a study place. When query is set the location is resolved with
// the Searcher first; with interactive the user picks among the hits,
// otherwise the best hit is used. Fields given in in take precedence.
func (p *Place) Add(ctx context.Context, in app.PlaceInput, query string, interactive bool) error {
	if err := p.check(); err != nil {
		return err
	}
	if query != "" {
		c, err := p.resolve(ctx, query, interactive)
		if err != nil {
			return err
		}
		in = merge(c.Input(in.Type, in.Custom), in)
	}
	place, err := p.Service.AddStudyPlace(ctx, in)
	if err != nil {
		return err
	}
	return printers.Emit(p.out(), p.Output, place, func() {
		pp := p.pp()
		pp.Title("Added")
		pp.Places(place)
	})
}

func (p *Place) resolve(ctx context.Context, query string, interactive bool) (places.Candidate, error) {
	if p.Searcher == nil {
		return places.Candidate{}, errors.New("place: no location search configured")
	}
	res := places.Search(ctx, p.Searcher, query)
	if res.Err != nil {
		return places.Candidate{}, res.Err
	}
	if len(res.Candidates) == 0 {
		return places.Candidate{}, fmt.Errorf("%w: %q", errNoCandidates, query)
	}
	if !interactive {
		return res.Candidates[0], nil
	}
	pick := p.Pick
	if pick == nil {
		pick = p.prompt
	}
	i, err := pick(res.Candidates)
	if err != nil {
		return places.Candidate{}, err
	}
	if i < 0 || i >= len(res.Candidates) {
		return places.Candidate{}, fmt.Errorf("place: pick %d out of range", i)
	}
	return res.Candidates[i], nil
}

// merge fills the blanks in in from found.
func merge(found, in app.PlaceInput) app.PlaceInput {
	if in.Name != "" {
		found.Name = in.Name
	}
	if in.State != "" {
		found.State = in.State
	}
	if in.Country != "" {
		found.Country = in.Country
	}
	if in.Latitude != 0 || in.Longitude != 0 {
		found.Latitude, found.Longitude = in.Latitude, in.Longitude
	}
	return found
}

// Delete removes a study place.
func (p *Place) Delete(ctx context.Context, id string) error {
	if err := p.check(); err != nil {
		return err
	}
	return p.Service.DeleteStudyPlace(ctx, id)
}

// List prints the saved study places.
func (p *Place) List(ctx context.Context) error {
	if err := p.check(); err != nil {
		return err
	}
	list := p.Service.Snapshot().Places
	return printers.Emit(p.out(), p.Output, list, func() {
		pp := p.pp()
		pp.TitleWithCount("Study places", len(list), "place")
		pp.Places(list...)
	})
}

// Search prints the location hits for query without saving anything.
func (p *Place) Search(ctx context.Context, query string) error {
	if p.Searcher == nil {
		return errors.New("place: no location search configured")
	}
	res := places.Search(ctx, p.Searcher, query)
	if res.Err != nil {
		return res.Err
	}
	return printers.Emit(p.out(), p.Output, res, func() {
		pp := p.pp()
		pp.TitleWithCount(fmt.Sprintf("Results for %q", res.Query), len(res.Candidates), "location")
		pp.Candidates(res.Candidates...)
	})
}

// Fetch replaces the directory places with the ones from the Fetcher. A
// failed fetch leaves the saved places untouched.
func (p *Place) Fetch(ctx context.Context) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.Fetcher == nil {
		return errors.New("place: no study place directory configured")
	}
	loader := &places.Loader{Fetcher: p.Fetcher, Sink: p.Service}
	outcome := loader.Load(ctx)
	if outcome.Err != nil {
		return outcome.Err
	}
	list := remote(p.Service.Snapshot().Places)
	return printers.Emit(p.out(), p.Output, outcome, func() {
		pp := p.pp()
		pp.TitleWithCount("Fetched", len(list), "place")
		pp.Places(list...)
	})
}

func remote(list []*model.StudyPlace) []*model.StudyPlace {
	out := make([]*model.StudyPlace, 0, len(list))
	for _, sp := range list {
		if sp.Source == model.SourceRemote {
			out = append(out, sp)
		}
	}
	return out
}
