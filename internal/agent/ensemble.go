package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tradecouncil/internal/logger"
)

// confidenceFloor is the minimum weight a vote carries once obtained.
// A low-confidence dissenter still moves the score; do not tune this.
const confidenceFloor = 0.2

// scoreThreshold converts the aggregate score into the final call.
const scoreThreshold = 0.2

// Ensemble fans the selected agents out per ticker and folds their votes
// into one decision. It owns no request state; a single instance serves
// all requests.
type Ensemble struct {
	registry      *Registry
	maxTickers    int64
	tickerWorkers *semaphore.Weighted
}

func NewEnsemble(registry *Registry, maxConcurrentTickers int) *Ensemble {
	if maxConcurrentTickers <= 0 {
		maxConcurrentTickers = 4
	}
	return &Ensemble{
		registry:      registry,
		maxTickers:    int64(maxConcurrentTickers),
		tickerWorkers: semaphore.NewWeighted(int64(maxConcurrentTickers)),
	}
}

// Evaluate runs all selected agents for one ticker concurrently and scores
// the votes. Vote order follows the selection order, not completion order.
// An agent failure degrades to a HOLD/0 vote; Evaluate itself only fails
// on context cancellation.
func (e *Ensemble) Evaluate(ctx context.Context, ticker string, requested []string, actx Context) (TickerDecision, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	selected := e.registry.Select(requested)
	votes := make([]Vote, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range selected {
		i, a := i, a
		g.Go(func() error {
			v, err := a.Produce(gctx, ticker, actx)
			if err != nil {
				logger.Warnf("[ensemble] agent %s failed for %s: %v", a.Name(), ticker, err)
				v = Vote{
					Agent:      a.Name(),
					Action:     ActionHold,
					Confidence: 0,
					Rationale:  fmt.Sprintf("agent failed: %v", err),
				}
			}
			votes[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TickerDecision{}, err
	}
	if err := ctx.Err(); err != nil {
		return TickerDecision{}, err
	}

	score := Score(votes)
	return TickerDecision{
		Ticker:      ticker,
		Votes:       votes,
		FinalAction: actionFor(score),
		FinalScore:  score,
	}, nil
}

// EvaluateAll scores several tickers independently, bounded by the ticker
// semaphore. Results keep the caller's ticker order.
func (e *Ensemble) EvaluateAll(ctx context.Context, tickers []string, requested []string, actx Context) ([]TickerDecision, error) {
	decisions := make([]TickerDecision, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		if err := e.tickerWorkers.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		i, ticker := i, ticker
		g.Go(func() error {
			defer e.tickerWorkers.Release(1)
			d, err := e.Evaluate(gctx, ticker, requested, actx)
			if err != nil {
				return err
			}
			decisions[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// Score folds votes into the aggregate: the mean of action value times
// clamped confidence, with the 0.2 floor applied per vote.
func Score(votes []Vote) float64 {
	if len(votes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range votes {
		weight := math.Max(confidenceFloor, math.Min(1.0, v.Confidence))
		sum += v.Action.value() * weight
	}
	return sum / float64(len(votes))
}

func actionFor(score float64) Action {
	switch {
	case score > scoreThreshold:
		return ActionBuy
	case score < -scoreThreshold:
		return ActionSell
	default:
		return ActionHold
	}
}
