package places

import (
	"context"
	"sync"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/log"
)

// Sink receives tagged study place results. app.Service implements it.
type Sink interface {
	NextSequence() uint64
	SetStudyPlaces(ctx context.Context, seq uint64, results []app.PlaceInput) (bool, error)
}

// Outcome reports what happened to one load.
type Outcome struct {
	Seq     uint64
	Count   int
	Applied bool
	Err     error
}

// Loader fetches study places and hands them to a Sink. Loads may overlap;
// the Sink drops any result older than one already applied.
type Loader struct {
	Fetcher Fetcher
	Sink    Sink

	wg sync.WaitGroup
}

// Load fetches and applies one result set synchronously. A failed fetch
// leaves the current places untouched.
func (l *Loader) Load(ctx context.Context) Outcome {
	seq := l.Sink.NextSequence()
	res := Fetch(ctx, l.Fetcher)
	if res.Err != nil {
		return Outcome{Seq: seq, Err: res.Err}
	}
	inputs := make([]app.PlaceInput, 0, len(res.Records))
	for _, r := range res.Records {
		inputs = append(inputs, r.Input())
	}
	applied, err := l.Sink.SetStudyPlaces(ctx, seq, inputs)
	if err != nil {
		log.L().WithError(err).Errorw("storing study places", "seq", seq)
	}
	return Outcome{Seq: seq, Count: len(inputs), Applied: applied, Err: err}
}

// Go runs Load in the background. The returned channel yields exactly one
// Outcome.
func (l *Loader) Go(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		out <- l.Load(ctx)
	}()
	return out
}

// Wait blocks until every load started with Go has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
