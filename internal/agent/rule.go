package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	talib "github.com/markcheno/go-talib"

	"tradecouncil/internal/source"
)

// Technicals agent windows. Daily bars over one year give the 50-day SMA
// enough history at the default range.
const (
	techFastWindow = 20
	techSlowWindow = 50
	techRSIWindow  = 14
)

// TechnicalsAgent votes from indicator state alone: SMA 20/50 posture and
// RSI(14) extremes, summed into a score and thresholded at ±0.2. It never
// calls a model and is the deterministic anchor of the ensemble.
type TechnicalsAgent struct {
	resolver *source.Resolver
}

func NewTechnicalsAgent(r *source.Resolver) *TechnicalsAgent {
	return &TechnicalsAgent{resolver: r}
}

func (a *TechnicalsAgent) Name() string { return "technicals" }
func (a *TechnicalsAgent) Kind() string { return "rule" }

func (a *TechnicalsAgent) Produce(ctx context.Context, ticker string, actx Context) (Vote, error) {
	rng, interval := actx.Range, actx.Interval
	if rng == "" {
		rng = "1y"
	}
	if interval == "" {
		interval = "1d"
	}
	resolved, err := a.resolver.Resolve(ctx, source.Request{Ticker: ticker, Range: rng, Interval: interval}, source.HintAuto)
	if err != nil || len(resolved.Series) < techSlowWindow+1 {
		// 数据拿不到不算失败：给一个明确的弃权票
		return Vote{
			Agent:      a.Name(),
			Action:     ActionHold,
			Confidence: 0.3,
			Rationale:  fmt.Sprintf("insufficient price history for %s; abstaining", strings.ToUpper(ticker)),
		}, nil
	}

	closes := resolved.Series.Closes()
	fast := talib.Sma(closes, techFastWindow)
	slow := talib.Sma(closes, techSlowWindow)
	rsi := talib.Rsi(closes, techRSIWindow)
	last := len(closes) - 1

	var score float64
	var reasons []string

	if fast[last] > slow[last] {
		score += 0.5
		reasons = append(reasons, fmt.Sprintf("SMA%d above SMA%d (%.2f > %.2f)", techFastWindow, techSlowWindow, fast[last], slow[last]))
	} else if fast[last] < slow[last] {
		score -= 0.5
		reasons = append(reasons, fmt.Sprintf("SMA%d below SMA%d (%.2f < %.2f)", techFastWindow, techSlowWindow, fast[last], slow[last]))
	}

	switch r := rsi[last]; {
	case r < 30:
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("RSI(%d)=%.1f oversold", techRSIWindow, r))
	case r > 70:
		score -= 0.3
		reasons = append(reasons, fmt.Sprintf("RSI(%d)=%.1f overbought", techRSIWindow, r))
	default:
		reasons = append(reasons, fmt.Sprintf("RSI(%d)=%.1f neutral", techRSIWindow, r))
	}

	action := ActionHold
	if score > 0.2 {
		action = ActionBuy
	} else if score < -0.2 {
		action = ActionSell
	}
	return Vote{
		Agent:      a.Name(),
		Action:     action,
		Confidence: math.Min(1, math.Abs(score)),
		Rationale:  strings.Join(reasons, "; "),
	}, nil
}
