package scenario

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/dynamo"
)

// Ensemble runs independent scenarios concurrently, at most Workers at a
// time (unbounded when zero).
type Ensemble struct {
	Workers int
	Log     zerolog.Logger
}

// Run returns one result per scenario in input order. The first failing
// member cancels the rest.
func (e Ensemble) Run(ctx context.Context, scenarios []*config.Scenario) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if e.Workers > 0 {
		g.SetLimit(e.Workers)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			r, err := New(sc, WithLogger(e.Log.With().Int("member", i).Logger()))
			if err != nil {
				return err
			}
			res, err := r.Run(ctx)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
