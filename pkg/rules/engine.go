package rules

import (
	"context"

	"github.com/Gobusters/ectologger"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// Engine evaluates the ordered rule list. It is safe for concurrent use.
type Engine struct {
	logger ectologger.Logger
	rules  []Rule
}

// NewEngine creates a rule engine from thresholds
func NewEngine(logger ectologger.Logger, thresholds Thresholds) *Engine {
	return &Engine{
		logger: logger,
		rules:  Build(thresholds),
	}
}

// Rules returns the rules in evaluation order
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Labels returns every label the engine can produce, NO_MATCH last
func (e *Engine) Labels() []models.MatchLabel {
	labels := make([]models.MatchLabel, 0, len(e.rules)+1)
	for _, r := range e.rules {
		labels = append(labels, r.Label)
	}
	return append(labels, models.NoMatch)
}

// Classify returns the label of the first rule that fires, or NO_MATCH.
// Later rules are never consulted once one fires.
func (e *Engine) Classify(p models.ScoredPair) models.MatchDecision {
	decision := models.MatchDecision{AID: p.AID, BID: p.BID, Label: models.NoMatch}
	if p.A == nil || p.B == nil {
		return decision
	}
	for i := range e.rules {
		if e.rules[i].Match(&p) {
			decision.Label = e.rules[i].Label
			return decision
		}
	}
	return decision
}

// ClassifyAll labels every pair across workers. Output order matches input order.
func (e *Engine) ClassifyAll(ctx context.Context, pairs []models.ScoredPair, workers int) ([]models.MatchDecision, error) {
	if workers < 1 {
		workers = 1
	}
	decisions := make([]models.MatchDecision, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers
	for start := 0; start < len(pairs); start += chunk {
		end := min(start+chunk, len(pairs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				decisions[i] = e.Classify(pairs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"pairs":   len(pairs),
		"workers": workers,
	}).Debug("classified candidate pairs")
	return decisions, nil
}
