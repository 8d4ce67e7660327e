// Package optim searches controller gains by running scenarios over a grid.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/scenario"
)

// Objective scores one parameter combination; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination and returns the lowest scoring one.
// Combinations whose objective fails are skipped; an error is returned only
// when none succeeds or ctx is done.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var lastErr error

	err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams, &lastErr)
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("no finite objective value")
		}
		return nil, best, lastErr
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
	lastErr *error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			*lastErr = err
			return nil
		}

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams, lastErr); err != nil {
			return err
		}
	}
	return nil
}

// ApplyGains sets kp, ki, kd and target from params on every PID loop of s.
// Loops configured with a negative Kp mirror the gains.
func ApplyGains(s *config.Scenario, params map[string]float64) {
	for i := range s.Controller.Loops {
		l := &s.Controller.Loops[i]
		sign := 1.0
		if l.Kp < 0 {
			sign = -1
		}
		if v, ok := params["kp"]; ok {
			l.Kp = sign * v
		}
		if v, ok := params["ki"]; ok {
			l.Ki = sign * v
		}
		if v, ok := params["kd"]; ok {
			l.Kd = sign * v
		}
		if v, ok := params["target"]; ok {
			l.Target = v
		}
	}
}

// ScenarioObjective runs base with the candidate gains applied and scores
// it by the named metric. Diverged runs fail the candidate.
func ScenarioObjective(base *config.Scenario, metric string, opts ...scenario.Option) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		s := base.Clone()
		ApplyGains(s, params)

		r, err := scenario.New(s, opts...)
		if err != nil {
			return 0, err
		}
		res, err := r.Run(ctx)
		if err != nil {
			return 0, err
		}
		val, ok := res.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("metric %q not recorded", metric)
		}
		return val, nil
	}
}
